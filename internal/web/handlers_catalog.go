package web

// handlers_catalog.go serves the Event, Edition and Article resources.

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

// =============================================================================
// Events
// =============================================================================

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.service.ListEvents(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]catalog.Event{"eventos": events})
}

func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := s.service.GetEvent(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request) {
	var ev catalog.Event
	if err := decodeJSON(w, r, &ev); err != nil {
		respondError(w, r, err)
		return
	}
	created, err := s.service.CreateEvent(r.Context(), ev)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEvent(w http.ResponseWriter, r *http.Request) {
	var ev catalog.Event
	if err := decodeJSON(w, r, &ev); err != nil {
		respondError(w, r, err)
		return
	}
	updated, err := s.service.UpdateEvent(r.Context(), chi.URLParam(r, "id"), ev)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteEvent(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "event deleted"})
}

// =============================================================================
// Editions
// =============================================================================

func (s *Server) handleListEditions(w http.ResponseWriter, r *http.Request) {
	editions, err := s.service.ListEditionsOf(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, editions)
}

func (s *Server) handleGetEdition(w http.ResponseWriter, r *http.Request) {
	ed, err := s.service.GetEdition(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ed)
}

func (s *Server) handleCreateEdition(w http.ResponseWriter, r *http.Request) {
	var ed catalog.Edition
	if err := decodeJSON(w, r, &ed); err != nil {
		respondError(w, r, err)
		return
	}
	created, err := s.service.CreateEdition(r.Context(), ed)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateEdition(w http.ResponseWriter, r *http.Request) {
	var ed catalog.Edition
	if err := decodeJSON(w, r, &ed); err != nil {
		respondError(w, r, err)
		return
	}
	updated, err := s.service.UpdateEdition(r.Context(), chi.URLParam(r, "id"), ed)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteEdition(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteEdition(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "edition deleted"})
}

// =============================================================================
// Articles
// =============================================================================

func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	articles, err := s.service.ListArticlesOf(r.Context(), chi.URLParam(r, "editionID"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, articles)
}

func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	a, err := s.service.GetArticle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleCreateArticle accepts a JSON Article, or a multipart form with the
// Article fields and an optional pdf part.
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	if !isMultipart(r) {
		var a catalog.Article
		if err := decodeJSON(w, r, &a); err != nil {
			respondError(w, r, err)
			return
		}
		created, err := s.service.CreateArticle(r.Context(), a)
		if err != nil {
			respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, created)
		return
	}

	if err := parseForm(w, r, s.cfg.Import.MaxPDFSize); err != nil {
		respondError(w, r, err)
		return
	}
	defer r.MultipartForm.RemoveAll()

	a, err := articleFromForm(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var created catalog.Article
	if f, h, ferr := r.FormFile("pdf"); ferr == nil {
		defer f.Close()
		created, err = s.service.CreateArticleWithPDF(r.Context(), a, h.Filename, f)
	} else {
		created, err = s.service.CreateArticle(r.Context(), a)
	}
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	var a catalog.Article
	if err := decodeJSON(w, r, &a); err != nil {
		respondError(w, r, err)
		return
	}
	updated, err := s.service.UpdateArticle(r.Context(), chi.URLParam(r, "id"), a)
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteArticle(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "article deleted"})
}

// handleSearch serves GET /artigos/busca?q=&tipo=&autor=&evento=.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp, err := s.service.Search(r.Context(), catalog.SearchQuery{
		Text:   q.Get("q"),
		Kind:   catalog.ParseSearchKind(q.Get("tipo")),
		Author: q.Get("autor"),
		Event:  q.Get("evento"),
	})
	if err != nil {
		respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
