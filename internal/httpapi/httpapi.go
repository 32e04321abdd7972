// Package httpapi serves the storefront catalog as a small JSON HTTP API for
// browser clients.
package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/jamesprial/storefront-mcp/internal/catalog"
	"github.com/jamesprial/storefront-mcp/internal/safety"
	"github.com/jamesprial/storefront-mcp/internal/storefront"
	"github.com/jamesprial/storefront-mcp/internal/tools"
)

// KindInvalidRequest and KindForbidden extend the storefront error kinds for
// failures detected before any storefront call.
const (
	KindInvalidRequest = "invalid_request"
	KindForbidden      = "forbidden"
)

// AuditCreateCart is the audit record name for carts created over HTTP.
const AuditCreateCart = "http_create_cart"

const maxBodyBytes = 1 << 20

// Handler serves the catalog operations over HTTP. Cart creation is not
// confirmed here: callers are already bearer-authenticated and the API has
// no interactive round trip. Every cart attempt is audited instead.
type Handler struct {
	svc    catalog.Service
	logger zerolog.Logger
	audit  *safety.AuditLogger
}

// New returns a Handler backed by svc. audit may be nil.
func New(svc catalog.Service, logger zerolog.Logger, audit *safety.AuditLogger) *Handler {
	return &Handler{svc: svc, logger: logger, audit: audit}
}

// Routes returns a router with every endpoint, relative to its mount point.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/graphql", h.graphql)
	r.Get("/products/{handle}", h.product)
	r.Get("/collections/{handle}", h.collection)
	r.Get("/search", h.search)
	r.Post("/carts", h.createCart)
	return r
}

// graphqlRequest is the standard GraphQL-over-HTTP body. OperationName and
// Extensions are accepted so stock clients work; they are not forwarded.
type graphqlRequest struct {
	Query         string          `json:"query"`
	OperationName string          `json:"operationName,omitempty"`
	Variables     json.RawMessage `json:"variables,omitempty"`
	Extensions    json.RawMessage `json:"extensions,omitempty"`
}

type cartRequest struct {
	Items []catalog.CartItem `json:"items"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Kind    string          `json:"kind"`
	Message string          `json:"message"`
	Errors  gqlerror.List   `json:"errors,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (h *Handler) graphql(w http.ResponseWriter, r *http.Request) {
	var req graphqlRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.invalid(w, err)
		return
	}
	if req.Query == "" {
		h.invalid(w, errors.New("query is required"))
		return
	}

	var variables any
	if len(req.Variables) > 0 && !bytes.Equal(bytes.TrimSpace(req.Variables), []byte("null")) {
		variables = req.Variables
	}

	data, err := h.svc.Query(r.Context(), req.Query, variables)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]json.RawMessage{"data": data})
}

func (h *Handler) product(w http.ResponseWriter, r *http.Request) {
	payload, err := h.svc.GetProduct(r.Context(), chi.URLParam(r, "handle"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) collection(w http.ResponseWriter, r *http.Request) {
	first, err := firstParam(r)
	if err != nil {
		h.invalid(w, err)
		return
	}

	payload, err := h.svc.GetCollection(r.Context(), chi.URLParam(r, "handle"), first)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	first, err := firstParam(r)
	if err != nil {
		h.invalid(w, err)
		return
	}

	payload, err := h.svc.SearchProducts(r.Context(), r.URL.Query().Get("q"), first)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func (h *Handler) createCart(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req cartRequest
	if err := decodeBody(w, r, &req); err != nil {
		tools.LogAudit(h.audit, AuditCreateCart, nil, err, start)
		h.invalid(w, err)
		return
	}
	for i, it := range req.Items {
		if it.VariantID == "" {
			err := fmt.Errorf("items[%d]: variantId is required", i)
			tools.LogAudit(h.audit, AuditCreateCart, nil, err, start)
			h.invalid(w, err)
			return
		}
	}

	payload, err := h.svc.CreateCart(r.Context(), req.Items)
	tools.LogAudit(h.audit, AuditCreateCart, map[string]any{
		"lines":    len(req.Items),
		"resource": catalog.CartResource(req.Items),
	}, err, start)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, payload)
}

// firstParam reads the optional first query parameter. Absent means the
// catalog default.
func firstParam(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("first")
	if raw == "" {
		return catalog.DefaultPageSize, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("first must be a positive integer, got %q", raw)
	}
	return n, nil
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func (h *Handler) invalid(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusBadRequest, errorBody{Error: errorDetail{
		Kind:    KindInvalidRequest,
		Message: err.Error(),
	}})
}

// fail maps err to a status code and error body.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	detail := errorDetail{Kind: storefront.ErrorKind(err), Message: err.Error()}

	var status int
	switch {
	case errors.Is(err, catalog.ErrHandleNotAllowed):
		detail.Kind = KindForbidden
		status = http.StatusForbidden
	case detail.Kind == storefront.KindAPI:
		status = http.StatusUnprocessableEntity
		var apiErr *storefront.APIError
		if errors.As(err, &apiErr) {
			detail.Errors = apiErr.Errors
			detail.Data = apiErr.Data
		}
	case detail.Kind == storefront.KindTransport, detail.Kind == storefront.KindDecode:
		status = http.StatusBadGateway
	default:
		if detail.Kind == "" {
			detail.Kind = "internal"
		}
		status = http.StatusInternalServerError
	}

	h.logger.Warn().
		Err(err).
		Str("path", r.URL.Path).
		Str("kind", detail.Kind).
		Int("status", status).
		Msg("storefront request failed")

	writeJSON(w, status, errorBody{Error: detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
