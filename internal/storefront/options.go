package storefront

import "github.com/rs/zerolog"

// Option configures a Client.
type Option func(*Client)

// WithHTTPDoer swaps the transport. A nil doer is ignored.
func WithHTTPDoer(doer Doer) Option {
	return func(c *Client) {
		if doer != nil {
			c.doer = doer
		}
	}
}

// WithLogger sets the logger used for the initialization notice and per-call
// debug records.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithObserver registers an Observer notified after every call.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		c.observer = o
	}
}

// WithPartialData controls what happens to "data" returned alongside
// "errors". The call fails either way; when enabled, the data is attached to
// the APIError.
func WithPartialData(enabled bool) Option {
	return func(c *Client) {
		c.partialData = enabled
	}
}
