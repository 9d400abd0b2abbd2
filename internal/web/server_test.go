package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gst-aqn42/TP1/internal/attachments"
	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/client"
	"github.com/gst-aqn42/TP1/internal/config"
	"github.com/gst-aqn42/TP1/internal/core"
	"github.com/gst-aqn42/TP1/internal/database"
	"github.com/gst-aqn42/TP1/internal/logging"
	"github.com/gst-aqn42/TP1/internal/metrics"
)

const (
	adminUser = "admin"
	adminPass = "s3cret-pass"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 10 * time.Second
	cfg.Import.MaxPDFSize = 1 << 20
	cfg.Import.MaxBibFileSize = 1 << 20
	return cfg
}

func newTestServer(t *testing.T, mutate ...func(*config.Config)) (*Server, *core.Service) {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	files, err := attachments.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	svc := core.NewService(database.NewMemory(), files, core.Options{
		Logger:         logging.Discard(),
		JWTSecret:      []byte("0123456789abcdef0123"),
		MaxPDFSize:     cfg.Import.MaxPDFSize,
		MaxBibFileSize: cfg.Import.MaxBibFileSize,
	})
	require.NoError(t, svc.SeedAdmin(context.Background(), adminUser, adminPass))

	srv := NewServer(svc, cfg, metrics.New())
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return srv, svc
}

// newAdminClient serves srv over HTTP and returns a logged-in client.
func newAdminClient(t *testing.T, srv *Server) *client.Client {
	t.Helper()
	hs := httptest.NewServer(srv.Router())
	t.Cleanup(hs.Close)
	c := client.New(hs.URL)
	_, err := c.Login(context.Background(), adminUser, adminPass)
	require.NoError(t, err)
	return c
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &e))
	return e
}

// =============================================================================
// Authorization
// =============================================================================

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	srv, svc := newTestServer(t)
	h := srv.Router()
	ev := catalog.Event{Name: "Simpósio", Code: "SBES"}

	rec := do(t, h, http.MethodPost, "/eventos", "", ev)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH002", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/eventos", "not-a-jwt", ev)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	reader, err := svc.IssueToken("u1", "reader", false)
	require.NoError(t, err)
	rec = do(t, h, http.MethodPost, "/eventos", reader, ev)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "AUTH003", decodeError(t, rec).Code)

	admin, err := svc.IssueToken("u2", adminUser, true)
	require.NoError(t, err)
	rec = do(t, h, http.MethodPost, "/eventos", admin, ev)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// Reads stay public.
	rec = do(t, h, http.MethodGet, "/eventos", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()

	rec := do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"username": adminUser, "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "AUTH001", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/auth/login", "", map[string]string{"username": adminUser, "password": adminPass})
	require.Equal(t, http.StatusOK, rec.Code)
	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.Token)
}

func TestRegisterAndMe(t *testing.T) {
	srv, svc := newTestServer(t)
	h := srv.Router()
	admin, err := svc.Login(context.Background(), adminUser, adminPass)
	require.NoError(t, err)
	body := map[string]any{"username": "editor", "password": "long-enough"}

	rec := do(t, h, http.MethodPost, "/auth/register", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "registration is admin-only")

	rec = do(t, h, http.MethodPost, "/auth/register", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var account catalog.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &account))
	assert.Equal(t, "editor", account.Username)
	assert.False(t, account.IsAdmin)

	rec = do(t, h, http.MethodPost, "/auth/register", admin, body)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/register", admin, map[string]any{"username": "x", "password": "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	editor, err := svc.Login(context.Background(), "editor", "long-enough")
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, "/auth/me", editor, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var me catalog.Account
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &me))
	assert.Equal(t, account, me)

	rec = do(t, h, http.MethodGet, "/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/register", editor, map[string]any{"username": "other", "password": "long-enough"})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// =============================================================================
// Catalog resources, driven through the client package
// =============================================================================

func TestCatalogRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newAdminClient(t, srv)
	ctx := context.Background()

	ev, err := c.CreateEvent(ctx, catalog.Event{Name: "Simpósio Brasileiro de Engenharia de Software", Code: "SBES"})
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)

	_, err = c.CreateEvent(ctx, catalog.Event{Name: "Other", Code: "sbes"})
	assert.ErrorIs(t, err, catalog.ErrConflict)

	ed, err := c.CreateEdition(ctx, catalog.Edition{EventID: ev.ID, Year: 2024, Location: "Curitiba"})
	require.NoError(t, err)

	a, err := c.CreateArticle(ctx, catalog.Article{
		Title:     "Mutation Testing at Scale",
		Authors:   catalog.AuthorsFromNames([]string{"Ana Silva", "Bruno Lima"}),
		EditionID: ed.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, 2024, a.Year)

	events, err := c.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, events, 1)

	editions, err := c.ListEditionsOf(ctx, ev.ID)
	require.NoError(t, err)
	assert.Len(t, editions, 1)

	articles, err := c.ListArticlesOf(ctx, ed.ID)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, []string{"Ana Silva", "Bruno Lima"}, articles[0].AuthorNames())

	a.Title = "Mutation Testing at Scale, Revisited"
	updated, err := c.UpdateArticle(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, a.Title, updated.Title)

	err = c.DeleteEvent(ctx, ev.ID)
	assert.ErrorIs(t, err, catalog.ErrConflict)
	err = c.DeleteEdition(ctx, ed.ID)
	assert.ErrorIs(t, err, catalog.ErrConflict)

	require.NoError(t, c.DeleteArticle(ctx, a.ID))
	require.NoError(t, c.DeleteEdition(ctx, ed.ID))
	require.NoError(t, c.DeleteEvent(ctx, ev.ID))

	_, err = c.GetEvent(ctx, ev.ID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestMissingParentIsNotFound(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()

	rec := do(t, h, http.MethodGet, "/edicoes/evento/00000000-0000-0000-0000-000000000001", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	e := decodeError(t, rec)
	assert.Contains(t, e.Error, "dangling reference")

	rec = do(t, h, http.MethodGet, "/artigos/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValidationErrorsAreBadRequest(t *testing.T) {
	srv, svc := newTestServer(t)
	h := srv.Router()
	admin, err := svc.IssueToken("u", adminUser, true)
	require.NoError(t, err)

	rec := do(t, h, http.MethodPost, "/eventos", admin, catalog.Event{Name: "No code"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	req := httptest.NewRequest(http.MethodPost, "/eventos", strings.NewReader("{broken"))
	req.Header.Set("Authorization", "Bearer "+admin)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchIsNotShadowedByArticleID(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newAdminClient(t, srv)
	ctx := context.Background()

	ev, err := c.CreateEvent(ctx, catalog.Event{Name: "International Conference on Software Engineering", Code: "ICSE"})
	require.NoError(t, err)
	ed, err := c.CreateEdition(ctx, catalog.Edition{EventID: ev.ID, Year: 2023, Location: "Melbourne"})
	require.NoError(t, err)
	_, err = c.CreateArticle(ctx, catalog.Article{
		Title:     "Flaky Tests in the Wild",
		Authors:   catalog.AuthorsFromNames([]string{"Dana Souza"}),
		EditionID: ed.ID,
	})
	require.NoError(t, err)

	resp, err := c.Search(ctx, catalog.SearchQuery{Text: "flaky", Kind: catalog.SearchTitle})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "ICSE", resp.Results[0].EventCode)
	assert.Equal(t, 2023, resp.Results[0].EditionYear)
	assert.Equal(t, catalog.SearchTitle, resp.Kind)

	rec := do(t, srv.Router(), http.MethodGet, "/artigos/busca", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPublicPages(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newAdminClient(t, srv)
	ctx := context.Background()

	ev, err := c.CreateEvent(ctx, catalog.Event{Name: "SBES", Code: "SBES"})
	require.NoError(t, err)
	for _, y := range []int{2022, 2024, 2023} {
		_, err := c.CreateEdition(ctx, catalog.Edition{EventID: ev.ID, Year: y, Location: "Brasil"})
		require.NoError(t, err)
	}

	page, err := c.PublicEvent(ctx, "sbes")
	require.NoError(t, err)
	require.Len(t, page.Editions, 3)
	assert.Equal(t, 2024, page.Editions[0].Year)
	assert.Equal(t, 3, page.Total)

	edPage, err := c.PublicEdition(ctx, "SBES", 2023)
	require.NoError(t, err)
	assert.Equal(t, 2023, edPage.Edition.Year)

	_, err = c.PublicEdition(ctx, "SBES", 1999)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	rec := do(t, srv.Router(), http.MethodGet, "/public/eventos/SBES/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// Uploads
// =============================================================================

func TestPDFUploadAndDownload(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newAdminClient(t, srv)
	ctx := context.Background()

	ev, err := c.CreateEvent(ctx, catalog.Event{Name: "SBES", Code: "SBES"})
	require.NoError(t, err)
	ed, err := c.CreateEdition(ctx, catalog.Edition{EventID: ev.ID, Year: 2024, Location: "Curitiba"})
	require.NoError(t, err)

	pdf := "%PDF-1.7\nbody"
	a, err := c.CreateArticleWithPDF(ctx, catalog.Article{
		Title:     "With PDF",
		Authors:   catalog.AuthorsFromNames([]string{"Ana"}),
		EditionID: ed.ID,
		Keywords:  []string{"testing"},
	}, "paper.pdf", strings.NewReader(pdf))
	require.NoError(t, err)
	assert.NotEmpty(t, a.PDFPath)
	assert.Equal(t, []string{"testing"}, a.Keywords)

	var buf bytes.Buffer
	require.NoError(t, c.DownloadPDF(ctx, a.ID, &buf))
	assert.Equal(t, pdf, buf.String())

	_, err = c.UploadPDF(ctx, a.ID, "notes.txt", strings.NewReader("plain text"))
	var re *catalog.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusBadRequest, re.Status)

	replaced, err := c.UploadPDF(ctx, a.ID, "v2.pdf", strings.NewReader("%PDF-1.4\nv2"))
	require.NoError(t, err)
	assert.Equal(t, a.PDFPath, replaced.PDFPath)

	buf.Reset()
	require.NoError(t, c.DownloadPDF(ctx, a.ID, &buf))
	assert.Equal(t, "%PDF-1.4\nv2", buf.String())
}

func TestPDFTooLarge(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) { cfg.Import.MaxPDFSize = 64 })
	c := newAdminClient(t, srv)
	ctx := context.Background()

	ev, err := c.CreateEvent(ctx, catalog.Event{Name: "SBES", Code: "SBES"})
	require.NoError(t, err)
	ed, err := c.CreateEdition(ctx, catalog.Edition{EventID: ev.ID, Year: 2024, Location: "Curitiba"})
	require.NoError(t, err)
	a, err := c.CreateArticle(ctx, catalog.Article{Title: "T", Authors: catalog.AuthorsFromNames([]string{"A"}), EditionID: ed.ID})
	require.NoError(t, err)

	_, err = c.UploadPDF(ctx, a.ID, "big.pdf", strings.NewReader("%PDF-1.7\n"+strings.Repeat("x", 4096)))
	var re *catalog.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Contains(t, re.Message, "file too large")
}

const bibFile = `
@inproceedings{a1,
  title = {Mutation Testing at Scale},
  author = {Ana Silva and Bruno Lima},
  booktitle = {Anais do Simpósio Brasileiro de Engenharia de Software},
  year = 2023
}
@inproceedings{a2,
  title = {mutation testing at scale},
  author = {Bruno Lima and Ana Silva},
  booktitle = {SBES},
  year = 2023
}
@inproceedings{bad, title = {No Year}, author = {X}, booktitle = {SBES}}
`

func TestUploadBibTeX(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newAdminClient(t, srv)
	ctx := context.Background()

	resp, err := c.UploadBibTeX(ctx, "refs.bib", strings.NewReader(bibFile))
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Message)
	assert.Equal(t, 3, resp.Stats.Total)
	assert.Equal(t, 1, resp.Stats.ArticlesCreated)
	assert.Equal(t, 1, resp.Stats.Duplicates)
	assert.Equal(t, 1, resp.Stats.Failures)
	assert.True(t, resp.Stats.Balanced())

	_, err = c.UploadBibTeX(ctx, "refs.txt", strings.NewReader(bibFile))
	var re *catalog.RemoteError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, http.StatusBadRequest, re.Status)
}

// =============================================================================
// Subscriptions, health and throttling
// =============================================================================

func TestSubscriptions(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	body := map[string]string{"email": "Reader@Example.com"}

	rec := do(t, h, http.MethodPost, "/inscricoes", "", body)
	assert.Equal(t, http.StatusCreated, rec.Code)
	var sub catalog.Subscription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.Equal(t, "reader@example.com", sub.Email)
	assert.True(t, sub.Active)

	rec = do(t, h, http.MethodPost, "/inscricoes", "", body)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/inscricoes/total", "", nil)
	assert.JSONEq(t, `{"total":1}`, rec.Body.String())

	rec = do(t, h, http.MethodDelete, "/inscricoes/reader@example.com", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodDelete, "/inscricoes/reader@example.com", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPost, "/inscricoes", "", body)
	assert.Equal(t, http.StatusOK, rec.Code, "reactivation is not a new subscription")

	rec = do(t, h, http.MethodPost, "/inscricoes", "", map[string]string{"email": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubscriptionListingIsAdminOnly(t *testing.T) {
	srv, svc := newTestServer(t)
	h := srv.Router()
	for _, email := range []string{"ana@example.com", "bruno@example.com"} {
		rec := do(t, h, http.MethodPost, "/inscricoes", "", map[string]string{"email": email})
		require.Equal(t, http.StatusCreated, rec.Code)
	}
	rec := do(t, h, http.MethodDelete, "/inscricoes/bruno@example.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/inscricoes", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	admin, err := svc.IssueToken("u1", adminUser, true)
	require.NoError(t, err)
	rec = do(t, h, http.MethodGet, "/inscricoes", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var subs []catalog.Subscription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &subs))
	require.Len(t, subs, 1)
	assert.Equal(t, "ana@example.com", subs[0].Email)
}

func TestAuthorSubscriptionRoutes(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()
	body := map[string]string{"email": "reader@example.com", "nome_autor": "Ana Silva"}

	rec := do(t, h, http.MethodPost, "/notificacoes/inscrever", "", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var sub catalog.AuthorSubscription
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sub))
	assert.NotEmpty(t, sub.ID)
	assert.Equal(t, "Ana Silva", sub.AuthorName)

	rec = do(t, h, http.MethodPost, "/notificacoes/inscrever", "", map[string]string{"email": "reader@example.com", "nome_autor": "ana silva"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CAT007", decodeError(t, rec).Code)

	rec = do(t, h, http.MethodPost, "/notificacoes/inscrever", "", map[string]string{"email": "reader@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/notificacoes/desinscrever/"+sub.ID, "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = do(t, h, http.MethodPost, "/notificacoes/desinscrever/"+sub.ID, "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t)
	h := srv.Router()

	rec := do(t, h, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var health healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.False(t, health.ImportRunning)
	assert.Equal(t, core.DefaultMaxConcurrentUploads, health.Uploads.MaxConcurrent)

	rec = do(t, h, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `elib_http_requests_total{method="GET",route="/healthz",status="200"} 1`)
}

func TestSecurityHeaders(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Router(), http.MethodGet, "/eventos", "", nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestUnknownRouteIsJSON(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(t, srv.Router(), http.MethodGet, "/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CAT001", decodeError(t, rec).Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	srv, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.Rate.Enabled = true
		cfg.Rate.RequestsPerMinute = 2
		cfg.Rate.UploadLimit = 1
	})
	h := srv.Router()

	for range 2 {
		rec := do(t, h, http.MethodGet, "/eventos", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	}
	rec := do(t, h, http.MethodGet, "/eventos", "", nil)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "RATE001", decodeError(t, rec).Code)
}

func TestRateLimiterWindow(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     2,
		window:   time.Minute,
		now:      func() time.Time { return now },
		done:     make(chan struct{}),
	}

	assert.True(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"), "limits are per IP")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.allow("10.0.0.1"))
}

func TestStatusOfServerErrors(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusOf(core.ErrTooManyUploads))
	assert.Equal(t, http.StatusConflict, statusOf(catalog.ErrImportInProgress))
	assert.Equal(t, http.StatusInternalServerError, statusOf(errors.New("boom")))
	assert.Equal(t, "Internal Server Error", errorText(errors.New("pq: secret detail"), http.StatusInternalServerError))
}
