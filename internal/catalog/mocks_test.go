package catalog

import (
	"context"
	"encoding/json"

	"github.com/jamesprial/storefront-mcp/internal/storefront"
)

// mockExecutor is a storefront.Executor whose behaviour is set per test.
type mockExecutor struct {
	ExecuteFunc func(ctx context.Context, query string, variables any) (json.RawMessage, error)

	calls []executeCall
}

type executeCall struct {
	operation string
	query     string
	variables any
}

func (m *mockExecutor) Execute(ctx context.Context, query string, variables any) (json.RawMessage, error) {
	m.calls = append(m.calls, executeCall{
		operation: storefront.OperationFromContext(ctx),
		query:     query,
		variables: variables,
	})
	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, query, variables)
	}
	return json.RawMessage("null"), nil
}

// returning builds a mockExecutor that answers every call with data.
func returning(data string) *mockExecutor {
	return &mockExecutor{
		ExecuteFunc: func(context.Context, string, any) (json.RawMessage, error) {
			return json.RawMessage(data), nil
		},
	}
}

// failing builds a mockExecutor that answers every call with err.
func failing(err error) *mockExecutor {
	return &mockExecutor{
		ExecuteFunc: func(context.Context, string, any) (json.RawMessage, error) {
			return nil, err
		},
	}
}

// mockService is a Service whose methods are set per test.
type mockService struct {
	QueryFunc          func(ctx context.Context, query string, variables any) (json.RawMessage, error)
	GetProductFunc     func(ctx context.Context, handle string) (*ProductPayload, error)
	GetCollectionFunc  func(ctx context.Context, handle string, first int) (*CollectionPayload, error)
	SearchProductsFunc func(ctx context.Context, query string, first int) (*SearchPayload, error)
	CreateCartFunc     func(ctx context.Context, items []CartItem) (*CartPayload, error)
}

var _ Service = (*mockService)(nil)

func (m *mockService) Query(ctx context.Context, query string, variables any) (json.RawMessage, error) {
	if m.QueryFunc != nil {
		return m.QueryFunc(ctx, query, variables)
	}
	return json.RawMessage("null"), nil
}

func (m *mockService) GetProduct(ctx context.Context, handle string) (*ProductPayload, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, handle)
	}
	return &ProductPayload{}, nil
}

func (m *mockService) GetCollection(ctx context.Context, handle string, first int) (*CollectionPayload, error) {
	if m.GetCollectionFunc != nil {
		return m.GetCollectionFunc(ctx, handle, first)
	}
	return &CollectionPayload{}, nil
}

func (m *mockService) SearchProducts(ctx context.Context, query string, first int) (*SearchPayload, error) {
	if m.SearchProductsFunc != nil {
		return m.SearchProductsFunc(ctx, query, first)
	}
	return &SearchPayload{}, nil
}

func (m *mockService) CreateCart(ctx context.Context, items []CartItem) (*CartPayload, error) {
	if m.CreateCartFunc != nil {
		return m.CreateCartFunc(ctx, items)
	}
	return &CartPayload{}, nil
}

// nodes flattens a connection into its nodes in order.
func nodes[T any](c Connection[T]) []T {
	out := make([]T, 0, len(c.Edges))
	for _, e := range c.Edges {
		out = append(out, e.Node)
	}
	return out
}
