// Package tools provides shared helper utilities for MCP tool handlers.
package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jamesprial/storefront-mcp/internal/safety"
	"github.com/jamesprial/storefront-mcp/internal/storefront"
	"github.com/mark3labs/mcp-go/mcp"
)

// JSONResult marshals v to indented JSON and returns an mcp.CallToolResult.
func JSONResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("error marshaling result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// RawJSONResult re-indents raw JSON bytes. Invalid JSON is returned as an
// error result.
func RawJSONResult(raw json.RawMessage) *mcp.CallToolResult {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return ErrorResult(fmt.Sprintf("invalid JSON result: %v", err))
	}
	return JSONResult(v)
}

// ErrorResult returns an mcp.CallToolResult that describes an error condition.
func ErrorResult(msg string) *mcp.CallToolResult {
	return mcp.NewToolResultError(fmt.Sprintf("error: %s", msg))
}

// ErrorResultFor describes err, prefixed with its storefront error kind when
// it has one, e.g. "error: api: Throttled".
func ErrorResultFor(err error) *mcp.CallToolResult {
	if kind := storefront.ErrorKind(err); kind != "" {
		return ErrorResult(kind + ": " + err.Error())
	}
	return ErrorResult(err.Error())
}

// LogAudit logs a tool invocation to the audit logger, silently ignoring a nil
// logger. A nil err is recorded as "ok".
func LogAudit(audit *safety.AuditLogger, toolName string, params map[string]any, err error, start time.Time) {
	if audit == nil {
		return
	}
	entry := safety.AuditEntry{
		Timestamp: start,
		Tool:      toolName,
		Params:    params,
		Result:    "ok",
		Duration:  time.Since(start),
	}
	if err != nil {
		entry.Result = "error: " + err.Error()
		entry.ErrorKind = storefront.ErrorKind(err)
	}
	_ = audit.Log(entry)
}

// ConfirmPrompt issues a confirmation request and returns the prompt result.
func ConfirmPrompt(confirm *safety.ConfirmationTracker, toolName, resource, description string) *mcp.CallToolResult {
	token := confirm.RequestConfirmation(toolName, resource, description)
	return mcp.NewToolResultText(fmt.Sprintf(
		"Confirmation required for %s (%s).\n\n%s\n\nTo proceed, call %s again with the same arguments and confirmation_token=%q.",
		toolName, resource, description, toolName, token,
	))
}
