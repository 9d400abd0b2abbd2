package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/core"
)

func TestTrustedRealIP(t *testing.T) {
	tests := []struct {
		name    string
		trusted []string
		remote  string
		headers map[string]string
		want    string
	}{
		{
			name:    "no trusted proxies ignores headers",
			remote:  "203.0.113.7:5000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1"},
			want:    "203.0.113.7",
		},
		{
			name:    "trusted proxy X-Real-IP",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.1.2.3:5000",
			headers: map[string]string{"X-Real-IP": "198.51.100.1"},
			want:    "198.51.100.1",
		},
		{
			name:    "trusted proxy first X-Forwarded-For hop",
			trusted: []string{"10.0.0.1"},
			remote:  "10.0.0.1:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.2, 10.0.0.1"},
			want:    "198.51.100.2",
		},
		{
			name:    "untrusted source",
			trusted: []string{"10.0.0.0/8"},
			remote:  "192.0.2.9:5000",
			headers: map[string]string{"X-Forwarded-For": "198.51.100.2"},
			want:    "192.0.2.9",
		},
		{
			name:    "garbage header keeps remote",
			trusted: []string{"10.0.0.0/8"},
			remote:  "10.0.0.5:5000",
			headers: map[string]string{"X-Real-IP": "not-an-ip"},
			want:    "10.0.0.5",
		},
		{
			name:    "invalid CIDR entries are skipped",
			trusted: []string{"bogus", " ", "10.0.0.0/8"},
			remote:  "10.0.0.5:5000",
			headers: map[string]string{"X-Real-IP": "198.51.100.3"},
			want:    "198.51.100.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := TrustedRealIP(tt.trusted)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = ClientIP(r)
			}))
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			h.ServeHTTP(httptest.NewRecorder(), req)
			assert.Equal(t, tt.want, got)
		})
	}
}

// fakeTokens accepts "admin" and "reader" tokens.
type fakeTokens struct{}

func (fakeTokens) ParseToken(token string) (*core.Claims, error) {
	switch token {
	case "admin":
		return &core.Claims{Username: "root", IsAdmin: true}, nil
	case "reader":
		return &core.Claims{Username: "guest"}, nil
	}
	return nil, fmt.Errorf("bad token %q: %w", token, catalog.ErrUnauthorized)
}

func TestRequireAdmin(t *testing.T) {
	var claims *core.Claims
	h := RequireAdmin(fakeTokens{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = core.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer", http.StatusUnauthorized},
		{"Basic admin", http.StatusUnauthorized},
		{"Bearer forged", http.StatusUnauthorized},
		{"Bearer reader", http.StatusForbidden},
		{"bearer admin", http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			claims = nil
			req := httptest.NewRequest(http.MethodPost, "/eventos", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.want == http.StatusNoContent {
				require.NotNil(t, claims)
				assert.Equal(t, "root", claims.Username)
			} else {
				assert.Nil(t, claims)
				assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			}
		})
	}
}

func TestRequireUser(t *testing.T) {
	var claims *core.Claims
	h := RequireUser(fakeTokens{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims = core.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		header   string
		want     int
		username string
	}{
		{"", http.StatusUnauthorized, ""},
		{"Bearer forged", http.StatusUnauthorized, ""},
		{"Bearer reader", http.StatusNoContent, "guest"},
		{"Bearer admin", http.StatusNoContent, "root"},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			claims = nil
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
			if tt.username == "" {
				assert.Nil(t, claims)
				return
			}
			require.NotNil(t, claims)
			assert.Equal(t, tt.username, claims.Username)
		})
	}
}

func TestRequireAdminHidesTokenDetail(t *testing.T) {
	h := RequireAdmin(fakeTokens{})(http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer forged")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), "forged")
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestLoggerCapturesStatus(t *testing.T) {
	var inner *responseWriter
	h := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner = w.(*responseWriter)
		w.WriteHeader(http.StatusTeapot)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("hello"))
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
	require.NotNil(t, inner)
	assert.Equal(t, http.StatusTeapot, inner.status)
	assert.EqualValues(t, 5, inner.bytes)
}
