package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// okHandler records whether it was reached.
func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func Test_NewAuthMiddleware_Cases(t *testing.T) {
	const token = "correct-token"

	tests := []struct {
		name       string
		configured string
		header     *string
		wantStatus int
	}{
		{name: "valid token", configured: token, header: ptr("Bearer correct-token"), wantStatus: http.StatusOK},
		{name: "missing header", configured: token, wantStatus: http.StatusUnauthorized},
		{name: "empty header", configured: token, header: ptr(""), wantStatus: http.StatusUnauthorized},
		{name: "wrong token", configured: token, header: ptr("Bearer wrong-token"), wantStatus: http.StatusUnauthorized},
		{name: "token prefix only", configured: token, header: ptr("Bearer correct"), wantStatus: http.StatusUnauthorized},
		{name: "other scheme", configured: token, header: ptr("Basic correct-token"), wantStatus: http.StatusUnauthorized},
		{name: "lowercase scheme", configured: token, header: ptr("bearer correct-token"), wantStatus: http.StatusUnauthorized},
		{name: "double space", configured: token, header: ptr("Bearer  correct-token"), wantStatus: http.StatusUnauthorized},
		{name: "scheme without token", configured: token, header: ptr("Bearer "), wantStatus: http.StatusUnauthorized},
		{name: "scheme word only", configured: token, header: ptr("Bearer"), wantStatus: http.StatusUnauthorized},
		{name: "auth disabled without header", configured: "", wantStatus: http.StatusOK},
		{name: "auth disabled with header", configured: "", header: ptr("Bearer anything"), wantStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var called bool
			handler := NewAuthMiddleware(tt.configured, zerolog.Nop())(okHandler(&called))

			req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
			if tt.header != nil {
				req.Header.Set("Authorization", *tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status code = %d, want %d", rr.Code, tt.wantStatus)
			}
			if wantCalled := tt.wantStatus == http.StatusOK; called != wantCalled {
				t.Errorf("next called = %v, want %v", called, wantCalled)
			}
		})
	}
}

func Test_NewAuthMiddleware_LogsRejectionWithoutCredential(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	var called bool
	handler := NewAuthMiddleware("server-token", logger)(okHandler(&called))

	req := httptest.NewRequest(http.MethodGet, "/api/products/x", nil)
	req.Header.Set("Authorization", "Bearer guessed-secret")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if !strings.Contains(out, "invalid bearer token") {
		t.Errorf("log %q does not mention the rejection", out)
	}
	if !strings.Contains(out, "/api/products/x") {
		t.Errorf("log %q does not include the path", out)
	}
	for _, secret := range []string{"guessed-secret", "server-token"} {
		if strings.Contains(out, secret) {
			t.Errorf("log leaks %q: %s", secret, out)
		}
	}
}

func ptr(s string) *string { return &s }
