package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
)

// DefaultAPIVersion is the Storefront API version used when none is
// configured.
const DefaultAPIVersion = "2024-01"

const (
	headerContentType = "Content-Type"
	headerAccessToken = "X-Shopify-Storefront-Access-Token"
	contentTypeJSON   = "application/json"
)

var jsonNull = json.RawMessage("null")

// Compile-time interface check.
var _ Executor = (*Client)(nil)

// Client executes GraphQL documents against one storefront. It holds no
// mutable state and is safe for concurrent use.
type Client struct {
	config      Config
	doer        Doer
	logger      zerolog.Logger
	observer    Observer
	partialData bool
}

// New returns a Client for the given shop. The three strings are not
// validated; malformed values surface as errors on the first call.
func New(shopDomain, accessToken, apiVersion string, opts ...Option) *Client {
	c := &Client{
		config: Config{
			ShopDomain:  shopDomain,
			AccessToken: accessToken,
			APIVersion:  apiVersion,
		},
		doer:   &http.Client{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.logger.Info().Str("shop", shopDomain).Msg("initializing storefront API client")
	return c
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config {
	return c.config
}

// Endpoint returns the GraphQL URL for the configured shop and API version.
func (c *Client) Endpoint() string {
	return fmt.Sprintf("https://%s/api/%s/graphql.json", c.config.ShopDomain, c.config.APIVersion)
}

// Execute sends query with optional variables and returns the "data" value
// of the response, or the JSON literal null when the response carries none.
//
// variables may be any value encoding/json can marshal. When it is nil or
// marshals to null, the "variables" key is left out of the request body.
//
// The returned error is one of *EncodeError, *TransportError, *DecodeError or
// *APIError. A response with a non-empty "errors" array always fails, even
// if "data" is also present.
func (c *Client) Execute(ctx context.Context, query string, variables any) (json.RawMessage, error) {
	start := time.Now()
	data, status, err := c.roundTrip(ctx, query, variables)
	c.record(OperationFromContext(ctx), status, time.Since(start), err)
	return data, err
}

func (c *Client) roundTrip(ctx context.Context, query string, variables any) (json.RawMessage, int, error) {
	body, err := encodeRequest(query, variables)
	if err != nil {
		return nil, 0, &EncodeError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, 0, &TransportError{Err: err}
	}
	req.Header.Set(headerContentType, contentTypeJSON)
	req.Header.Set(headerAccessToken, c.config.AccessToken)

	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, 0, &TransportError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, &TransportError{Err: err}
	}

	envelope, err := decodeEnvelope(resp.StatusCode, raw)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if len(envelope.Errors) > 0 {
		return nil, resp.StatusCode, c.apiError(envelope.Errors, envelope.Data)
	}
	return envelope.Data, resp.StatusCode, nil
}

// encodeRequest builds the request body, dropping null variables.
func encodeRequest(query string, variables any) ([]byte, error) {
	req := Request{Query: query}
	if variables != nil {
		vars, err := json.Marshal(variables)
		if err != nil {
			return nil, fmt.Errorf("marshal variables: %w", err)
		}
		if !isNull(vars) {
			req.Variables = vars
		}
	}
	return json.Marshal(req)
}

// decodeEnvelope parses body as a GraphQL envelope. Key presence is checked
// on the raw object so that an absent "data" and "data": null stay
// distinguishable from an empty body. The returned Data is never nil; it is
// the JSON literal null when the response carries no data.
func decodeEnvelope(status int, body []byte) (*Response, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &DecodeError{StatusCode: status, Err: err}
	}

	rawData, hasData := envelope["data"]
	rawErrors, hasErrors := envelope["errors"]
	if !hasData && !hasErrors {
		return nil, &DecodeError{StatusCode: status, Err: ErrEmptyEnvelope}
	}

	resp := &Response{Data: jsonNull}
	if hasData && !isNull(rawData) {
		resp.Data = rawData
	}
	if hasErrors && !isNull(rawErrors) {
		errs, err := decodeErrors(rawErrors)
		if err != nil {
			return nil, &DecodeError{StatusCode: status, Err: fmt.Errorf("errors field: %w", err)}
		}
		resp.Errors = errs
	}
	return resp, nil
}

// wireError is one entry of the "errors" array as sent. Only the message is
// relied on; locations, path and extensions are kept when they parse.
type wireError struct {
	Message    json.RawMessage `json:"message"`
	Locations  json.RawMessage `json:"locations"`
	Path       json.RawMessage `json:"path"`
	Extensions json.RawMessage `json:"extensions"`
}

// decodeErrors converts the "errors" array into a gqlerror.List. The array
// itself and each entry must be JSON objects; malformed advisory fields are
// dropped instead of failing the decode. An entry without a string message,
// or a null entry, gets MissingErrorMessage.
func decodeErrors(raw json.RawMessage) (gqlerror.List, error) {
	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, err
	}

	errs := make(gqlerror.List, 0, len(entries))
	for i, entry := range entries {
		ge := &gqlerror.Error{Message: MissingErrorMessage}
		errs = append(errs, ge)
		if isNull(entry) {
			continue
		}

		var w wireError
		if err := json.Unmarshal(entry, &w); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}

		var msg string
		if json.Unmarshal(w.Message, &msg) == nil && !isNull(w.Message) {
			ge.Message = msg
		}
		if len(w.Locations) > 0 {
			var locs []gqlerror.Location
			if json.Unmarshal(w.Locations, &locs) == nil {
				ge.Locations = locs
			}
		}
		if len(w.Path) > 0 {
			var path ast.Path
			if json.Unmarshal(w.Path, &path) == nil {
				ge.Path = path
			}
		}
		if len(w.Extensions) > 0 {
			var ext map[string]any
			if json.Unmarshal(w.Extensions, &ext) == nil {
				ge.Extensions = ext
			}
		}
	}
	return errs, nil
}

// apiError is the single place deciding what happens to data returned next
// to errors.
func (c *Client) apiError(errs gqlerror.List, data json.RawMessage) *APIError {
	apiErr := &APIError{Errors: errs}
	if c.partialData && !isNull(data) {
		apiErr.Data = data
	}
	return apiErr
}

func (c *Client) record(operation string, status int, elapsed time.Duration, err error) {
	outcome := ErrorKind(err)
	if outcome == "" {
		outcome = "ok"
	}

	if c.observer != nil {
		c.observer.ObserveRequest(operation, outcome, elapsed)
	}

	ev := c.logger.Debug()
	if err != nil {
		ev = c.logger.Warn().Err(err)
	}
	ev.Str("shop", c.config.ShopDomain).
		Str("operation", operation).
		Str("outcome", outcome).
		Int("status", status).
		Dur("elapsed", elapsed).
		Msg("storefront request")
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// Decode executes query and unmarshals the returned data into a T. A data
// value that does not fit T is reported as a *DecodeError.
func Decode[T any](ctx context.Context, exec Executor, query string, variables any) (T, error) {
	var out T
	data, err := exec.Execute(ctx, query, variables)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, &DecodeError{Err: fmt.Errorf("unmarshal %T: %w", out, err)}
	}
	return out, nil
}
