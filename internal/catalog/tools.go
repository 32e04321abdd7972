package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jamesprial/storefront-mcp/internal/safety"
	"github.com/jamesprial/storefront-mcp/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Tool names.
const (
	ToolQuery          = "storefront_query"
	ToolGetProduct     = "storefront_get_product"
	ToolGetCollection  = "storefront_get_collection"
	ToolSearchProducts = "storefront_search_products"
	ToolCreateCart     = "storefront_create_cart"
)

// ConfirmableTools lists the tools that may be guarded by a confirmation
// token.
var ConfirmableTools = []string{ToolCreateCart}

// CatalogTools returns the MCP tool registrations backed by svc.
func CatalogTools(
	svc Service,
	confirm *safety.ConfirmationTracker,
	audit *safety.AuditLogger,
) []tools.Registration {
	return []tools.Registration{
		toolQuery(svc, audit),
		toolGetProduct(svc, audit),
		toolGetCollection(svc, audit),
		toolSearchProducts(svc, audit),
		toolCreateCart(svc, confirm, audit),
	}
}

// ---------------------------------------------------------------------------
// Argument parsing
// ---------------------------------------------------------------------------

// parseVariables accepts the variables argument either as a JSON object or as
// a string holding one.
func parseVariables(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		if !json.Valid([]byte(val)) {
			return nil, errors.New("variables must be valid JSON")
		}
		return json.RawMessage(val), nil
	case map[string]any:
		return val, nil
	default:
		return nil, fmt.Errorf("variables must be a JSON object, got %T", v)
	}
}

// parseCartItems accepts the items argument either as an array of
// {variantId, quantity} objects or as a string holding one.
func parseCartItems(v any) ([]CartItem, error) {
	var raw []byte
	switch val := v.(type) {
	case nil:
		return []CartItem{}, nil
	case string:
		raw = []byte(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("items: %w", err)
		}
		raw = b
	}

	var items []CartItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("items must be an array of {variantId, quantity}: %w", err)
	}
	for i, it := range items {
		if it.VariantID == "" {
			return nil, fmt.Errorf("items[%d]: variantId is required", i)
		}
	}
	if items == nil {
		items = []CartItem{}
	}
	return items, nil
}

// CartResource identifies a set of cart lines for confirmation binding and
// audit records.
func CartResource(items []CartItem) string {
	data, _ := json.Marshal(items)
	sum := sha256.Sum256(data)
	return "lines:" + hex.EncodeToString(sum[:8])
}

func describeCart(items []CartItem) string {
	if len(items) == 0 {
		return "This will create an empty cart."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "This will create a cart with %d line(s):", len(items))
	for _, it := range items {
		fmt.Fprintf(&b, "\n  - %s x%d", it.VariantID, it.Quantity)
	}
	return b.String()
}

// ---------------------------------------------------------------------------
// Tools
// ---------------------------------------------------------------------------

func toolQuery(svc Service, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool(ToolQuery,
		mcp.WithDescription("Execute an arbitrary GraphQL document against the Shopify Storefront API and return its data."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("GraphQL query or mutation document"),
		),
		mcp.WithObject("variables",
			mcp.Description("Variables for the document, as a JSON object"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		query := req.GetString("query", "")
		params := map[string]any{"query": query}

		if strings.TrimSpace(query) == "" {
			err := errors.New("query is required")
			tools.LogAudit(audit, ToolQuery, params, err, start)
			return tools.ErrorResultFor(err), nil
		}

		variables, err := parseVariables(req.GetArguments()["variables"])
		if err != nil {
			tools.LogAudit(audit, ToolQuery, params, err, start)
			return tools.ErrorResultFor(err), nil
		}

		data, err := svc.Query(ctx, query, variables)
		tools.LogAudit(audit, ToolQuery, params, err, start)
		if err != nil {
			return tools.ErrorResultFor(err), nil
		}
		if len(data) == 0 {
			return mcp.NewToolResultText("null"), nil
		}
		return tools.RawJSONResult(data), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolGetProduct(svc Service, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool(ToolGetProduct,
		mcp.WithDescription("Get a product by handle, including images and variants."),
		mcp.WithString("handle",
			mcp.Required(),
			mcp.Description("Product handle (e.g. red-shirt)"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		handle := req.GetString("handle", "")
		params := map[string]any{"handle": handle}

		payload, err := svc.GetProduct(ctx, handle)
		tools.LogAudit(audit, ToolGetProduct, params, err, start)
		if err != nil {
			return tools.ErrorResultFor(err), nil
		}
		return tools.JSONResult(payload), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolGetCollection(svc Service, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool(ToolGetCollection,
		mcp.WithDescription("Get a collection by handle with a page of its products."),
		mcp.WithString("handle",
			mcp.Required(),
			mcp.Description("Collection handle"),
		),
		mcp.WithNumber("first",
			mcp.Description(fmt.Sprintf("Number of products to return (default: %d)", DefaultPageSize)),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		handle := req.GetString("handle", "")
		first := req.GetInt("first", DefaultPageSize)
		params := map[string]any{"handle": handle, "first": first}

		payload, err := svc.GetCollection(ctx, handle, first)
		tools.LogAudit(audit, ToolGetCollection, params, err, start)
		if err != nil {
			return tools.ErrorResultFor(err), nil
		}
		return tools.JSONResult(payload), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolSearchProducts(svc Service, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool(ToolSearchProducts,
		mcp.WithDescription("Search products with Shopify search syntax."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search terms (e.g. \"shirt\" or \"tag:sale\")"),
		),
		mcp.WithNumber("first",
			mcp.Description(fmt.Sprintf("Number of products to return (default: %d)", DefaultPageSize)),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		query := req.GetString("query", "")
		first := req.GetInt("first", DefaultPageSize)
		params := map[string]any{"query": query, "first": first}

		payload, err := svc.SearchProducts(ctx, query, first)
		tools.LogAudit(audit, ToolSearchProducts, params, err, start)
		if err != nil {
			return tools.ErrorResultFor(err), nil
		}
		return tools.JSONResult(payload), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

func toolCreateCart(svc Service, confirm *safety.ConfirmationTracker, audit *safety.AuditLogger) tools.Registration {
	tool := mcp.NewTool(ToolCreateCart,
		mcp.WithDescription("Create a cart from product variants and return it with its checkout URL. May require confirmation."),
		mcp.WithArray("items",
			mcp.Required(),
			mcp.Description("Cart lines as [{\"variantId\": \"gid://shopify/ProductVariant/1\", \"quantity\": 1}]"),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"variantId": map[string]any{"type": "string"},
					"quantity":  map[string]any{"type": "integer", "minimum": 0},
				},
				"required": []string{"variantId", "quantity"},
			}),
		),
		mcp.WithString("confirmation_token",
			mcp.Description("Confirmation token returned by a prior call to this tool"),
		),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		token := req.GetString("confirmation_token", "")

		items, err := parseCartItems(req.GetArguments()["items"])
		if err != nil {
			tools.LogAudit(audit, ToolCreateCart, nil, err, start)
			return tools.ErrorResultFor(err), nil
		}
		resource := CartResource(items)
		params := map[string]any{"lines": len(items), "resource": resource}

		if confirm.NeedsConfirmation(ToolCreateCart) && !confirm.Confirm(token, ToolCreateCart, resource) {
			return tools.ConfirmPrompt(confirm, ToolCreateCart, resource, describeCart(items)), nil
		}

		payload, err := svc.CreateCart(ctx, items)
		tools.LogAudit(audit, ToolCreateCart, params, err, start)
		if err != nil {
			return tools.ErrorResultFor(err), nil
		}
		return tools.JSONResult(payload), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
