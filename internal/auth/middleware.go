// Package auth provides HTTP middleware for bearer token authentication.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
)

// NewAuthMiddleware returns an HTTP middleware that enforces bearer token
// authentication. If the configured token is empty, authentication is disabled
// and all requests pass through to the next handler unconditionally.
//
// When enabled, the request must carry exactly
//
//	Authorization: Bearer <token>
//
// with a case-sensitive "Bearer" prefix followed by one space. Anything else
// gets a 401 and the next handler is never called. Rejections are logged at
// warn level without the provided credential.
func NewAuthMiddleware(token string, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			const prefix = "Bearer "
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, prefix) {
				reject(w, r, logger, "missing bearer token")
				return
			}

			provided := authHeader[len(prefix):]
			if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
				reject(w, r, logger, "invalid bearer token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func reject(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, reason string) {
	logger.Warn().
		Str("path", r.URL.Path).
		Str("remote", r.RemoteAddr).
		Msg(reason)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}
