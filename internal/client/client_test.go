package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

func newServer(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// =============================================================================
// Events
// =============================================================================

func TestListEvents(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /eventos", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"eventos": []catalog.Event{{ID: "e1", Name: "Simpósio", Code: "SBES"}},
		})
	})
	c := newServer(t, mux)

	events, err := c.ListEvents(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "SBES", events[0].Code)
}

func TestCreateEventSendsBearerToken(t *testing.T) {
	var gotAuth string
	var gotBody catalog.Event
	mux := http.NewServeMux()
	mux.HandleFunc("POST /eventos", func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		gotBody.ID = "new-id"
		writeJSON(w, http.StatusCreated, gotBody)
	})
	c := newServer(t, mux)
	c.SetToken("tok")

	ev, err := c.CreateEvent(context.Background(), catalog.Event{Name: "ICSE", Code: "ICSE"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", gotAuth)
	assert.Equal(t, "ICSE", gotBody.Code)
	assert.Equal(t, "new-id", ev.ID)
}

func TestNoTokenNoHeader(t *testing.T) {
	var hasAuth bool
	mux := http.NewServeMux()
	mux.HandleFunc("GET /eventos", func(w http.ResponseWriter, r *http.Request) {
		_, hasAuth = r.Header["Authorization"]
		writeJSON(w, http.StatusOK, map[string]any{"eventos": []catalog.Event{}})
	})
	c := newServer(t, mux)

	_, err := c.ListEvents(context.Background())
	require.NoError(t, err)
	assert.False(t, hasAuth)
}

// =============================================================================
// Errors
// =============================================================================

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		target  error
		message string
	}{
		{"not found", http.StatusNotFound, `{"error":"event not found"}`, catalog.ErrNotFound, "event not found"},
		{"conflict", http.StatusConflict, `{"error":"sigla already exists"}`, catalog.ErrConflict, "sigla already exists"},
		{"unauthorized", http.StatusUnauthorized, `{"error":"missing token"}`, catalog.ErrUnauthorized, "missing token"},
		{"forbidden", http.StatusForbidden, `{"error":"admin required"}`, catalog.ErrForbidden, "admin required"},
		{"message fallback", http.StatusNotFound, `{"message":"gone"}`, catalog.ErrNotFound, "gone"},
		{"plain text", http.StatusNotFound, "nope\n", catalog.ErrNotFound, "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("DELETE /eventos/{id}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			c := newServer(t, mux)

			err := c.DeleteEvent(context.Background(), "x")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			var re *catalog.RemoteError
			require.True(t, errors.As(err, &re))
			assert.Equal(t, tt.status, re.Status)
			assert.Equal(t, tt.message, re.Message)
			assert.True(t, re.IsConsistency() == (tt.status == 404 || tt.status == 409))
		})
	}
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NewServeMux())
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.ListEvents(context.Background())
	require.Error(t, err)

	var re *catalog.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Zero(t, re.Status)
	assert.Equal(t, "GET /eventos", re.Op)
}

func TestDecodeError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /edicoes/evento/{id}", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "not json")
	})
	c := newServer(t, mux)

	_, err := c.ListEditionsOf(context.Background(), "e1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

// =============================================================================
// Editions and articles
// =============================================================================

func TestListEditionsAndArticles(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /edicoes/evento/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []catalog.Edition{{ID: "ed1", EventID: r.PathValue("id"), Year: 2024}})
	})
	mux.HandleFunc("GET /artigos/edicao/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []catalog.Article{{ID: "a1", EditionID: r.PathValue("id"), Title: "T"}})
	})
	c := newServer(t, mux)
	ctx := context.Background()

	eds, err := c.ListEditionsOf(ctx, "e1")
	require.NoError(t, err)
	require.Len(t, eds, 1)
	assert.Equal(t, "e1", eds[0].EventID)

	arts, err := c.ListArticlesOf(ctx, "ed1")
	require.NoError(t, err)
	require.Len(t, arts, 1)
	assert.Equal(t, "ed1", arts[0].EditionID)
}

func TestCreateArticleWithPDF(t *testing.T) {
	var fields map[string]string
	var pdf []byte
	mux := http.NewServeMux()
	mux.HandleFunc("POST /artigos/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		fields = map[string]string{
			"titulo":    r.FormValue("titulo"),
			"autores":   r.FormValue("autores"),
			"edicao_id": r.FormValue("edicao_id"),
		}
		f, hdr, err := r.FormFile("pdf")
		require.NoError(t, err)
		defer f.Close()
		pdf, _ = io.ReadAll(f)
		writeJSON(w, http.StatusCreated, catalog.Article{ID: "a9", PDFPath: hdr.Filename})
	})
	c := newServer(t, mux)

	a := catalog.Article{
		Title:     "Paper",
		Authors:   catalog.AuthorsFromNames([]string{"Ana", "Bruno"}),
		EditionID: "ed1",
	}
	out, err := c.CreateArticleWithPDF(context.Background(), a, "paper.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	require.NoError(t, err)
	assert.Equal(t, "a9", out.ID)
	assert.Equal(t, "paper.pdf", out.PDFPath)
	assert.Equal(t, "Paper", fields["titulo"])
	assert.Equal(t, "ed1", fields["edicao_id"])
	assert.JSONEq(t, `[{"nome":"Ana"},{"nome":"Bruno"}]`, fields["autores"])
	assert.Equal(t, "%PDF-1.4", string(pdf))
}

func TestUploadAndDownloadPDF(t *testing.T) {
	var stored []byte
	mux := http.NewServeMux()
	mux.HandleFunc("POST /artigos/{id}/upload-pdf", func(w http.ResponseWriter, r *http.Request) {
		f, _, err := r.FormFile("pdf")
		require.NoError(t, err)
		defer f.Close()
		stored, _ = io.ReadAll(f)
		writeJSON(w, http.StatusOK, catalog.Article{ID: r.PathValue("id"), PDFPath: "a1.pdf"})
	})
	mux.HandleFunc("GET /artigos/{id}/pdf", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(stored)
	})
	c := newServer(t, mux)
	ctx := context.Background()

	a, err := c.UploadPDF(ctx, "a1", "a1.pdf", bytes.NewReader([]byte("%PDF-data")))
	require.NoError(t, err)
	assert.Equal(t, "a1.pdf", a.PDFPath)

	var buf bytes.Buffer
	require.NoError(t, c.DownloadPDF(ctx, "a1", &buf))
	assert.Equal(t, "%PDF-data", buf.String())
}

// =============================================================================
// Search, batch, auth, subscriptions
// =============================================================================

func TestSearchQueryParams(t *testing.T) {
	var got map[string]string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /artigos/busca", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		got = map[string]string{"q": q.Get("q"), "tipo": q.Get("tipo"), "autor": q.Get("autor")}
		writeJSON(w, http.StatusOK, catalog.SearchResponse{Total: 0, Query: q.Get("q"), Kind: catalog.SearchKind(q.Get("tipo"))})
	})
	c := newServer(t, mux)

	resp, err := c.Search(context.Background(), catalog.SearchQuery{Text: "engenharia de software", Kind: catalog.SearchTitle, Author: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "engenharia de software", got["q"])
	assert.Equal(t, "titulo", got["tipo"])
	assert.Equal(t, "Ana", got["autor"])
	assert.Equal(t, catalog.SearchTitle, resp.Kind)
}

func TestUploadBibTeX(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /batch/upload-bibtex", func(w http.ResponseWriter, r *http.Request) {
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "refs.bib", hdr.Filename)
		writeJSON(w, http.StatusOK, catalog.ImportResponse{
			Message: "ok",
			Stats:   catalog.ImportStats{Total: 3, ArticlesCreated: 2, Duplicates: 1, Errors: []catalog.SkippedEntry{}},
		})
	})
	c := newServer(t, mux)

	resp, err := c.UploadBibTeX(context.Background(), "refs.bib", bytes.NewReader([]byte("@article{a,}")))
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Stats.ArticlesCreated)
	assert.True(t, resp.Stats.Balanced())
}

func TestLoginStoresToken(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		if in["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"token": "jwt-token"})
	})
	c := newServer(t, mux)
	ctx := context.Background()

	_, err := c.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, catalog.ErrUnauthorized)
	assert.Empty(t, c.Token())

	tok, err := c.Login(ctx, "admin", "secret")
	require.NoError(t, err)
	assert.Equal(t, "jwt-token", tok)
	assert.Equal(t, "jwt-token", c.Token())
}

func TestSubscriptions(t *testing.T) {
	var deleted string
	mux := http.NewServeMux()
	mux.HandleFunc("POST /inscricoes", func(w http.ResponseWriter, r *http.Request) {
		var in map[string]string
		_ = json.NewDecoder(r.Body).Decode(&in)
		writeJSON(w, http.StatusCreated, catalog.Subscription{Email: in["email"], Active: true})
	})
	mux.HandleFunc("DELETE /inscricoes/{email}", func(w http.ResponseWriter, r *http.Request) {
		deleted = r.PathValue("email")
		writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
	})
	mux.HandleFunc("GET /inscricoes/total", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"total": 7})
	})
	c := newServer(t, mux)
	ctx := context.Background()

	sub, err := c.Subscribe(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.True(t, sub.Active)

	require.NoError(t, c.Unsubscribe(ctx, "ana@example.com"))
	assert.Equal(t, "ana@example.com", deleted)

	total, err := c.SubscriptionTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, total)
}

func TestPublicPages(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /public/eventos/{sigla}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog.EventPage{Event: catalog.Event{Code: r.PathValue("sigla")}})
	})
	mux.HandleFunc("GET /public/eventos/{sigla}/{ano}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog.EditionPage{
			Event:   catalog.Event{Code: r.PathValue("sigla")},
			Edition: catalog.Edition{Year: 2024},
		})
	})
	c := newServer(t, mux)
	ctx := context.Background()

	ep, err := c.PublicEvent(ctx, "SBES")
	require.NoError(t, err)
	assert.Equal(t, "SBES", ep.Event.Code)

	edp, err := c.PublicEdition(ctx, "SBES", 2024)
	require.NoError(t, err)
	assert.Equal(t, 2024, edp.Edition.Year)
}

func TestGetEditionAndArticle(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /edicoes/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, catalog.Edition{ID: r.PathValue("id"), Year: 2024})
	})
	mux.HandleFunc("GET /artigos/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") == "gone" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "article gone: not found"})
			return
		}
		writeJSON(w, http.StatusOK, catalog.Article{ID: r.PathValue("id"), Title: "T"})
	})
	c := newServer(t, mux)
	ctx := context.Background()

	ed, err := c.GetEdition(ctx, "ed1")
	require.NoError(t, err)
	assert.Equal(t, 2024, ed.Year)

	a, err := c.GetArticle(ctx, "a1")
	require.NoError(t, err)
	assert.Equal(t, "T", a.Title)

	_, err = c.GetArticle(ctx, "gone")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
