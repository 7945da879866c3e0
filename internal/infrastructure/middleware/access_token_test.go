package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRequireAccessToken(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := RequireAccessToken("secret-token")(next)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "secret-token", http.StatusOK},
		{"wrong token", "other-token", http.StatusForbidden},
		{"missing token", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/address?q=test", nil)
			if tt.header != "" {
				req.Header.Set("X-Access-Token", tt.header)
			}
			rec := httptest.NewRecorder()
			guarded.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRequireAccessToken_EmptyConfiguredToken(t *testing.T) {
	// An unconfigured token never matches; the route stays closed rather
	// than open.
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := RequireAccessToken("")(next)

	req := httptest.NewRequest(http.MethodGet, "/api/address", nil)
	rec := httptest.NewRecorder()
	guarded.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}
