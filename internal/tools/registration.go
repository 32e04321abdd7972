package tools

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Registration pairs an MCP tool definition with its handler.
type Registration struct {
	Tool    mcp.Tool
	Handler server.ToolHandlerFunc
}

// RegisterAll adds every registration to s and returns the registered tool
// names in order.
func RegisterAll(s *server.MCPServer, registrations []Registration) []string {
	names := make([]string, 0, len(registrations))
	for _, r := range registrations {
		s.AddTool(r.Tool, r.Handler)
		names = append(names, r.Tool.Name)
	}
	return names
}
