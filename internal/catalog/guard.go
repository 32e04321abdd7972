package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ErrHandleNotAllowed is returned when a product or collection handle is
// rejected by the configured filter. Nothing is sent to the storefront.
var ErrHandleNotAllowed = errors.New("handle is not allowed")

// HandleFilter decides whether a handle may be looked up.
// *safety.Filter satisfies it.
type HandleFilter interface {
	IsAllowed(name string) bool
}

// guardedService rejects handle lookups the filter does not allow. Search,
// cart creation and raw queries are not handle based and pass through.
type guardedService struct {
	Service
	filter HandleFilter
}

// WithHandleFilter wraps svc so that GetProduct and GetCollection refuse
// handles the filter rejects. A nil filter returns svc unchanged.
func WithHandleFilter(svc Service, filter HandleFilter) Service {
	if filter == nil {
		return svc
	}
	return &guardedService{Service: svc, filter: filter}
}

func (g *guardedService) check(handle string) error {
	if !g.filter.IsAllowed(handle) {
		return fmt.Errorf("%w: %q", ErrHandleNotAllowed, handle)
	}
	return nil
}

func (g *guardedService) GetProduct(ctx context.Context, handle string) (*ProductPayload, error) {
	if err := g.check(handle); err != nil {
		return nil, err
	}
	return g.Service.GetProduct(ctx, handle)
}

func (g *guardedService) GetCollection(ctx context.Context, handle string, first int) (*CollectionPayload, error) {
	if err := g.check(handle); err != nil {
		return nil, err
	}
	return g.Service.GetCollection(ctx, handle, first)
}
