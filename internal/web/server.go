// Package web provides the HTTP server and handlers for the catalog REST API.
package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gst-aqn42/TP1/internal/config"
	"github.com/gst-aqn42/TP1/internal/core"
	"github.com/gst-aqn42/TP1/internal/metrics"
	mw "github.com/gst-aqn42/TP1/internal/web/middleware"
)

// Server is the HTTP server for the catalog API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	metrics *metrics.Metrics
	router  *chi.Mux
	server  *http.Server

	limiters []*rateLimiter
}

// NewServer creates a new Server instance. m may be nil, in which case
// /metrics is not served.
func NewServer(service *core.Service, cfg *config.Config, m *metrics.Metrics) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		metrics: m,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(mw.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(mw.Logger)
	s.router.Use(middleware.Recoverer)
	if s.metrics != nil {
		s.router.Use(s.metrics.Middleware)
	}
	s.router.Use(middleware.Compress(5, "application/json"))

	// Security hardening
	s.router.Use(securityHeaders)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.RequestsPerMinute, time.Minute).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	admin := mw.RequireAdmin(s.service)
	user := mw.RequireUser(s.service)
	uploads := func(next http.Handler) http.Handler { return next }
	if s.cfg.Rate.Enabled {
		uploads = s.newRateLimiter(s.cfg.Rate.UploadLimit, time.Minute).middleware
	}

	s.router.Get("/healthz", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// Batch import can outlive the ordinary request timeout; the service
	// applies its own import deadline.
	s.router.With(admin, uploads).Post("/batch/upload-bibtex", s.handleUploadBibTeX)

	timeout := s.cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	s.router.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(timeout))

		r.Post("/auth/login", s.handleLogin)
		r.With(admin).Post("/auth/register", s.handleRegister)
		r.With(user).Get("/auth/me", s.handleMe)

		r.Route("/eventos", func(r chi.Router) {
			r.Get("/", s.handleListEvents)
			r.Get("/{id}", s.handleGetEvent)
			r.With(admin).Post("/", s.handleCreateEvent)
			r.With(admin).Put("/{id}", s.handleUpdateEvent)
			r.With(admin).Delete("/{id}", s.handleDeleteEvent)
		})

		r.Route("/edicoes", func(r chi.Router) {
			r.Get("/evento/{eventID}", s.handleListEditions)
			r.Get("/{id}", s.handleGetEdition)
			r.With(admin).Post("/", s.handleCreateEdition)
			r.With(admin).Put("/{id}", s.handleUpdateEdition)
			r.With(admin).Delete("/{id}", s.handleDeleteEdition)
		})

		r.Route("/artigos", func(r chi.Router) {
			// Static segments win over {id} in chi's tree.
			r.Get("/busca", s.handleSearch)
			r.Get("/edicao/{editionID}", s.handleListArticles)
			r.Get("/{id}", s.handleGetArticle)
			r.Get("/{id}/pdf", s.handleDownloadPDF)
			r.With(admin, uploads).Post("/", s.handleCreateArticle)
			r.With(admin, uploads).Post("/{id}/upload-pdf", s.handleUploadPDF)
			r.With(admin).Put("/{id}", s.handleUpdateArticle)
			r.With(admin).Delete("/{id}", s.handleDeleteArticle)
		})

		r.Route("/public/eventos", func(r chi.Router) {
			r.Get("/{sigla}", s.handlePublicEvent)
			r.Get("/{sigla}/{ano}", s.handlePublicEdition)
		})

		r.Route("/inscricoes", func(r chi.Router) {
			r.With(admin).Get("/", s.handleListSubscriptions)
			r.Post("/", s.handleSubscribe)
			r.Get("/total", s.handleSubscriptionTotal)
			r.Delete("/{email}", s.handleUnsubscribe)
		})

		r.Route("/notificacoes", func(r chi.Router) {
			r.Post("/inscrever", s.handleSubscribeAuthor)
			r.Post("/desinscrever/{id}", s.handleUnsubscribeAuthor)
		})

		r.With(admin).Get("/audit", s.handleAuditLog)
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "route not found")
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	sc := s.cfg.Server
	s.server = &http.Server{
		Addr:         sc.Addr(),
		Handler:      s.router,
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
		IdleTimeout:  sc.IdleTimeout,
	}

	slog.Info("starting server", "addr", sc.Addr())
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// The API serves no documents that load resources.
		w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	now      func() time.Time
	done     chan struct{}
	once     sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
// Its cleanup goroutine stops on Shutdown.
func (s *Server) newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	s.limiters = append(s.limiters, rl)
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
		}
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if rl.now().Sub(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1, // consume one token
			lastReset: now,
		}
		return true
	}

	// Reset tokens if window has passed
	if now.Sub(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = now
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP. RemoteAddr
// has already been rewritten by TrustedRealIP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(mw.ClientIP(r)) {
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// writeJSON encodes v as JSON with the given status.
// Logs encoding errors since headers are already sent.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}
