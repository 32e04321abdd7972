package storefront

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vektah/gqlparser/v2/gqlerror"
)

// Error kinds reported by ErrorKind.
const (
	KindTransport = "transport"
	KindDecode    = "decode"
	KindAPI       = "api"
	KindEncode    = "encode"
)

// ErrEmptyEnvelope is wrapped by a DecodeError when a response body is a JSON
// object carrying neither "data" nor "errors".
var ErrEmptyEnvelope = errors.New("response has neither data nor errors")

// MissingErrorMessage stands in for the message of an "errors" entry that
// carries none, so an APIError never renders an empty segment.
const MissingErrorMessage = "unknown error"

// TransportError reports a failure before a response body was obtained:
// request construction, DNS, TLS, connection, cancellation or a body read.
// Its message is the underlying error's message, unchanged.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a response body that is not a GraphQL envelope.
type DecodeError struct {
	// StatusCode is the HTTP status of the response, or zero when the
	// failure happened after the envelope was accepted.
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("decode response: %v", e.Err)
	}
	return fmt.Sprintf("decode response (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// EncodeError reports a request that could not be serialized. Nothing was
// sent.
type EncodeError struct {
	Err error
}

func (e *EncodeError) Error() string { return fmt.Sprintf("encode request: %v", e.Err) }
func (e *EncodeError) Unwrap() error { return e.Err }

// APIError reports a non-empty "errors" array in a well-formed envelope.
type APIError struct {
	Errors gqlerror.List
	// Data holds the partial data returned next to the errors. It is only
	// populated when the client was built WithPartialData(true).
	Data json.RawMessage
}

// Error joins every error message with ", " in response order.
func (e *APIError) Error() string {
	return strings.Join(e.Messages(), ", ")
}

// Messages returns the message of every reported error in response order.
func (e *APIError) Messages() []string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ge := range e.Errors {
		if ge == nil {
			msgs = append(msgs, MissingErrorMessage)
			continue
		}
		msgs = append(msgs, ge.Message)
	}
	return msgs
}

// ErrorKind classifies err as one of the Kind constants. It returns an empty
// string for nil and for errors that did not come from a Client.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	var (
		transportErr *TransportError
		decodeErr    *DecodeError
		apiErr       *APIError
		encodeErr    *EncodeError
	)
	switch {
	case errors.As(err, &transportErr):
		return KindTransport
	case errors.As(err, &decodeErr):
		return KindDecode
	case errors.As(err, &apiErr):
		return KindAPI
	case errors.As(err, &encodeErr):
		return KindEncode
	default:
		return ""
	}
}
