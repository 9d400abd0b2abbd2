package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/core"
	"github.com/gst-aqn42/TP1/internal/logging"
)

// TokenParser verifies bearer tokens.
type TokenParser interface {
	ParseToken(token string) (*core.Claims, error)
}

// RequireAdmin returns middleware that admits only requests carrying a valid
// administrator token in the Authorization header. A missing or invalid token
// is answered with 401, a valid non-admin token with 403.
//
// On success the claims, client IP and user agent are stored in the request
// context for audit logging.
func RequireAdmin(tokens TokenParser) func(http.Handler) http.Handler {
	return requireToken(tokens, true)
}

// RequireUser is RequireAdmin without the administrator check: any valid
// token is admitted.
func RequireUser(tokens TokenParser) func(http.Handler) http.Handler {
	return requireToken(tokens, false)
}

func requireToken(tokens TokenParser, adminOnly bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logging.FromContext(r.Context()).With(
				"path", r.URL.Path,
				"method", r.Method,
				"ip", ClientIP(r),
			)

			claims, err := tokens.ParseToken(bearerToken(r))
			if err != nil {
				log.Warn("auth: rejected token", "error", err)
				writeAuthError(w, http.StatusUnauthorized, err)
				return
			}
			if adminOnly && !claims.IsAdmin {
				log.Warn("auth: admin required", "username", claims.Username)
				writeAuthError(w, http.StatusForbidden, catalog.ErrForbidden)
				return
			}

			ctx := core.ContextWithClaims(r.Context(), claims)
			ctx = core.ContextWithIPAddress(ctx, ClientIP(r))
			ctx = core.ContextWithUserAgent(ctx, r.UserAgent())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func writeAuthError(w http.ResponseWriter, status int, err error) {
	msg := catalog.MapError(err)
	text := err.Error()
	if errors.Is(err, catalog.ErrUnauthorized) {
		// Token parse details stay in the log.
		text = catalog.ErrUnauthorized.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="catalog"`)
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   text,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}
