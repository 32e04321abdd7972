// Package storefront provides a GraphQL client for the Shopify Storefront API.
//
// The client is schema-agnostic: it sends query text and variables, decodes
// the standard GraphQL response envelope, and reports failures as one of a
// small set of error kinds (see errors.go).
package storefront

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Config identifies the storefront a Client talks to. It is fixed when the
// Client is constructed.
type Config struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
}

// String renders the config with the access token redacted.
func (c Config) String() string {
	return fmt.Sprintf("{ShopDomain:%s APIVersion:%s AccessToken:%s}",
		c.ShopDomain, c.APIVersion, redact(c.AccessToken))
}

// GoString keeps %#v from printing the access token.
func (c Config) GoString() string {
	return "storefront.Config" + c.String()
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler. The access token
// is never emitted.
func (c Config) MarshalZerologObject(e *zerolog.Event) {
	e.Str("shop", c.ShopDomain).
		Str("api_version", c.APIVersion).
		Bool("has_token", c.AccessToken != "")
}

func redact(secret string) string {
	if secret == "" {
		return "<empty>"
	}
	return "<redacted>"
}

// Request is the JSON body of an outbound GraphQL request.
type Request struct {
	Query     string          `json:"query"`
	Variables json.RawMessage `json:"variables,omitempty"`
}

// Response is a decoded GraphQL response envelope. Execute returns Data on
// success and turns a non-empty Errors into an *APIError.
type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors gqlerror.List   `json:"errors,omitempty"`
}

// Doer sends an HTTP request. *http.Client satisfies it; hosts may supply
// their own transport (timeouts, tracing, proxies).
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Executor runs a single GraphQL document and returns the raw "data" value.
type Executor interface {
	Execute(ctx context.Context, query string, variables any) (json.RawMessage, error)
}

// Observer receives one notification per Execute call.
type Observer interface {
	ObserveRequest(operation, outcome string, duration time.Duration)
}

type operationKey struct{}

// anonymousOperation labels calls made without WithOperation.
const anonymousOperation = "anonymous"

// WithOperation returns a context that labels the next Execute call with name
// in logs and metrics. The document itself is never inspected.
func WithOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey{}, name)
}

// OperationFromContext returns the label set by WithOperation, or
// "anonymous".
func OperationFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(operationKey{}).(string); ok && name != "" {
		return name
	}
	return anonymousOperation
}
