package catalog

import (
	"context"
	"encoding/json"

	"github.com/jamesprial/storefront-mcp/internal/storefront"
)

// Compile-time interface check.
var _ Service = (*GraphQLCatalog)(nil)

// GraphQLCatalog implements Service on top of a storefront.Executor. Errors
// from the executor are returned unchanged so their kind survives.
type GraphQLCatalog struct {
	exec storefront.Executor
}

// NewGraphQLCatalog returns a GraphQLCatalog backed by exec.
func NewGraphQLCatalog(exec storefront.Executor) *GraphQLCatalog {
	if exec == nil {
		panic("storefront executor must not be nil")
	}
	return &GraphQLCatalog{exec: exec}
}

// Query executes an arbitrary document.
func (c *GraphQLCatalog) Query(ctx context.Context, query string, variables any) (json.RawMessage, error) {
	return c.exec.Execute(storefront.WithOperation(ctx, "query"), query, variables)
}

// GetProduct fetches the product with the given handle.
func (c *GraphQLCatalog) GetProduct(ctx context.Context, handle string) (*ProductPayload, error) {
	return run[ProductPayload](ctx, c.exec, ProductByHandle(handle))
}

// GetCollection fetches the collection with the given handle and up to first
// of its products.
func (c *GraphQLCatalog) GetCollection(ctx context.Context, handle string, first int) (*CollectionPayload, error) {
	return run[CollectionPayload](ctx, c.exec, CollectionByHandle(handle, first))
}

// SearchProducts runs a free-text product search.
func (c *GraphQLCatalog) SearchProducts(ctx context.Context, query string, first int) (*SearchPayload, error) {
	return run[SearchPayload](ctx, c.exec, SearchProducts(query, first))
}

// CreateCart creates a cart holding items. Mutation userErrors are part of
// the returned payload, not an error.
func (c *GraphQLCatalog) CreateCart(ctx context.Context, items []CartItem) (*CartPayload, error) {
	return run[CartPayload](ctx, c.exec, CreateCart(items))
}

func run[T any](ctx context.Context, exec storefront.Executor, op Operation) (*T, error) {
	out, err := storefront.Decode[T](storefront.WithOperation(ctx, op.Name), exec, op.Query, op.Variables)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
