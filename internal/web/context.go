package web

import (
	"context"
	"net/http"

	"github.com/gst-aqn42/TP1/internal/core"
	mw "github.com/gst-aqn42/TP1/internal/web/middleware"
)

// withRequestMetadata adds IP and User-Agent to context for audit logging.
func withRequestMetadata(r *http.Request) context.Context {
	ctx := core.ContextWithIPAddress(r.Context(), mw.ClientIP(r))
	return core.ContextWithUserAgent(ctx, r.UserAgent())
}
