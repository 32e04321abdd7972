// Package catalog provides the fixed storefront operations (product lookup,
// collection listing, product search and cart creation) on top of the
// storefront GraphQL client, and registers them as MCP tools.
package catalog

import (
	"context"
	"encoding/json"
)

// CartItem is one requested cart line. VariantID is passed through
// uninterpreted.
type CartItem struct {
	VariantID string `json:"variantId"`
	Quantity  uint32 `json:"quantity"`
}

// Money is a decimal amount in a currency, as returned by the API.
type Money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

// PriceRange holds the minimum variant price of a product.
type PriceRange struct {
	MinVariantPrice Money `json:"minVariantPrice"`
}

// Image is a product or variant image.
type Image struct {
	ID      string  `json:"id,omitempty"`
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
	Width   *int    `json:"width,omitempty"`
	Height  *int    `json:"height,omitempty"`
}

// PageInfo carries the raw pagination markers of a connection. Cursors are
// absent from search results.
type PageInfo struct {
	HasNextPage     bool    `json:"hasNextPage"`
	HasPreviousPage bool    `json:"hasPreviousPage"`
	StartCursor     *string `json:"startCursor,omitempty"`
	EndCursor       *string `json:"endCursor,omitempty"`
}

// Edge wraps one node of a connection.
type Edge[T any] struct {
	Node T `json:"node"`
}

// Connection is a Relay-style list.
type Connection[T any] struct {
	Edges    []Edge[T] `json:"edges"`
	PageInfo *PageInfo `json:"pageInfo,omitempty"`
}

// SelectedOption is one option value chosen by a variant, such as
// Size: M.
type SelectedOption struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Variant is a purchasable configuration of a product.
type Variant struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Price            Money            `json:"price"`
	AvailableForSale bool             `json:"availableForSale"`
	SelectedOptions  []SelectedOption `json:"selectedOptions"`
	Image            *Image           `json:"image"`
}

// Product is the full product returned by GetProduct.
type Product struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Handle      string              `json:"handle"`
	Vendor      string              `json:"vendor"`
	ProductType string              `json:"productType"`
	Tags        []string            `json:"tags"`
	PriceRange  PriceRange          `json:"priceRange"`
	Images      Connection[Image]   `json:"images"`
	Variants    Connection[Variant] `json:"variants"`
}

// ProductSummary is the per-product shape of collection and search listings.
type ProductSummary struct {
	ID         string            `json:"id"`
	Title      string            `json:"title"`
	Handle     string            `json:"handle"`
	Vendor     string            `json:"vendor"`
	PriceRange PriceRange        `json:"priceRange"`
	Images     Connection[Image] `json:"images"`
}

// Collection is a collection with one page of products.
type Collection struct {
	ID          string                     `json:"id"`
	Title       string                     `json:"title"`
	Description string                     `json:"description"`
	Handle      string                     `json:"handle"`
	Products    Connection[ProductSummary] `json:"products"`
}

// ProductPayload is the data of the getProduct query. Product is nil when no
// product matches the handle.
type ProductPayload struct {
	Product *Product `json:"product"`
}

// CollectionPayload is the data of the getCollection query. Collection is nil
// when no collection matches the handle.
type CollectionPayload struct {
	Collection *Collection `json:"collection"`
}

// SearchPayload is the data of the searchProducts query.
type SearchPayload struct {
	Products Connection[ProductSummary] `json:"products"`
}

// CartProduct is the parent product of a cart line's variant.
type CartProduct struct {
	Title  string `json:"title"`
	Handle string `json:"handle"`
}

// Merchandise is the product variant a cart line resolves to.
type Merchandise struct {
	ID      string      `json:"id"`
	Title   string      `json:"title"`
	Price   Money       `json:"price"`
	Product CartProduct `json:"product"`
}

// CartLine is one line of a created cart.
type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Merchandise Merchandise `json:"merchandise"`
}

// CartCost holds the cart totals.
type CartCost struct {
	TotalAmount Money `json:"totalAmount"`
}

// Cart is a created cart.
type Cart struct {
	ID            string               `json:"id"`
	CheckoutURL   string               `json:"checkoutUrl"`
	TotalQuantity int                  `json:"totalQuantity"`
	Cost          CartCost             `json:"cost"`
	Lines         Connection[CartLine] `json:"lines"`
}

// UserError is a mutation-level error reported inside the data. It does not
// fail the call.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// CartCreateResult is the cartCreate field of the mutation response.
type CartCreateResult struct {
	Cart       *Cart       `json:"cart"`
	UserErrors []UserError `json:"userErrors"`
}

// CartPayload is the data of the createCart mutation. Callers must inspect
// CartCreate.UserErrors themselves.
type CartPayload struct {
	CartCreate CartCreateResult `json:"cartCreate"`
}

// Service defines the storefront operations.
type Service interface {
	// Query runs an arbitrary document and returns the raw data.
	Query(ctx context.Context, query string, variables any) (json.RawMessage, error)
	GetProduct(ctx context.Context, handle string) (*ProductPayload, error)
	GetCollection(ctx context.Context, handle string, first int) (*CollectionPayload, error)
	SearchProducts(ctx context.Context, query string, first int) (*SearchPayload, error)
	CreateCart(ctx context.Context, items []CartItem) (*CartPayload, error)
}
