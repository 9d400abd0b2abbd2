package web

// handlers_public.go serves the reader-facing surface: public event pages,
// newsletter and author subscriptions, login and health. Only the
// subscription listing needs an administrator.

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/core"
)

func (s *Server) handlePublicEvent(w http.ResponseWriter, r *http.Request) {
	page, err := s.service.PublicEvent(r.Context(), chi.URLParam(r, "sigla"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handlePublicEdition(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "ano")
	year, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, r, catalog.ValidationError{Field: "ano", Value: raw, Message: "invalid year"})
		return
	}
	page, err := s.service.PublicEdition(r.Context(), chi.URLParam(r, "sigla"), year)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// handleSubscribe answers 201 for a new subscription and 200 when the
// address was already subscribed or is reactivated.
func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	sub, result, err := s.service.Subscribe(withRequestMetadata(r), in.Email)
	if err != nil {
		respondError(w, r, err)
		return
	}
	status := http.StatusOK
	if result == core.Subscribed {
		status = http.StatusCreated
	}
	writeJSON(w, status, sub)
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Unsubscribe(withRequestMetadata(r), chi.URLParam(r, "email")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "subscription cancelled"})
}

func (s *Server) handleSubscriptionTotal(w http.ResponseWriter, r *http.Request) {
	n, err := s.service.SubscriptionTotal(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"total": n})
}

// handleListSubscriptions lists the active newsletter subscriptions.
func (s *Server) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.service.ListSubscriptions(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// handleSubscribeAuthor answers 201 with the new subscription, or 409 when
// the address already follows the author.
func (s *Server) handleSubscribeAuthor(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Email  string `json:"email"`
		Author string `json:"nome_autor"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	sub, err := s.service.SubscribeAuthor(withRequestMetadata(r), in.Email, in.Author)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (s *Server) handleUnsubscribeAuthor(w http.ResponseWriter, r *http.Request) {
	if err := s.service.UnsubscribeAuthor(withRequestMetadata(r), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "author subscription cancelled"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &in); err != nil {
		respondError(w, r, err)
		return
	}
	token, err := s.service.Login(withRequestMetadata(r), in.Username, in.Password)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleAuditLog lists recent audit entries, optionally for one entity kind.
func (s *Server) handleAuditLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.ListAudit(r.Context(), r.URL.Query().Get("entity"), intQuery(r, "limit", core.DefaultHistoryLimit))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "total": len(entries)})
}

// healthResponse is the body of GET /healthz.
type healthResponse struct {
	Status        string                   `json:"status"`
	ImportRunning bool                     `json:"import_running"`
	Uploads       core.UploadLimiterStatus `json:"uploads"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		ImportRunning: s.service.ImportRunning(),
		Uploads:       s.service.Uploads().Status(),
	})
}
