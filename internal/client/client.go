// Package client is the HTTP client for the catalog service.
//
// Every failure is returned as a *catalog.RemoteError carrying the HTTP
// status (zero for transport failures) and the service's error message.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/reconcile"
	"github.com/gst-aqn42/TP1/internal/store"
)

var (
	_ store.Remote      = (*Client)(nil)
	_ reconcile.Catalog = (*Client)(nil)
)

// Client talks to the catalog REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token attached to requests.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the service at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token. An empty token disables the header.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// errorBody is the JSON error envelope written by the service.
type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// do sends a request and decodes a JSON response into out, if non-nil.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	op := method + " " + path

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &catalog.RemoteError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &catalog.RemoteError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return remoteError(op, resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if w, ok := out.(io.Writer); ok {
		if _, err := io.Copy(w, resp.Body); err != nil {
			return &catalog.RemoteError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
		}
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &catalog.RemoteError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func remoteError(op string, resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	re := &catalog.RemoteError{Op: op, Status: resp.StatusCode}

	var body errorBody
	if json.Unmarshal(data, &body) == nil {
		re.Message = body.Error
		if re.Message == "" {
			re.Message = body.Message
		}
	}
	if re.Message == "" {
		re.Message = strings.TrimSpace(string(data))
	}
	return re
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	contentType := ""
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &catalog.RemoteError{Op: method + " " + path, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, body, contentType, out)
}

// multipartForm builds a multipart body with fields and, if content is
// non-nil, one file part.
func multipartForm(fields map[string]string, fileField, filename string, content io.Reader) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	if content != nil {
		part, err := w.CreateFormFile(fileField, filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

func (c *Client) doMultipart(ctx context.Context, path string, fields map[string]string, fileField, filename string, content io.Reader, out any) error {
	body, contentType, err := multipartForm(fields, fileField, filename, content)
	if err != nil {
		return &catalog.RemoteError{Op: http.MethodPost + " " + path, Err: fmt.Errorf("build form: %w", err)}
	}
	return c.do(ctx, http.MethodPost, path, body, contentType, out)
}

func seg(s string) string { return url.PathEscape(s) }

// =============================================================================
// Auth
// =============================================================================

// Login exchanges credentials for a token and keeps it for later requests.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	in := map[string]string{"username": username, "password": password}
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", in, &out); err != nil {
		return "", err
	}
	c.SetToken(out.Token)
	return out.Token, nil
}

// =============================================================================
// Events
// =============================================================================

// ListEvents returns every Event.
func (c *Client) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	var out struct {
		Events []catalog.Event `json:"eventos"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/eventos", nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// GetEvent returns one Event.
func (c *Client) GetEvent(ctx context.Context, id string) (catalog.Event, error) {
	var ev catalog.Event
	err := c.doJSON(ctx, http.MethodGet, "/eventos/"+seg(id), nil, &ev)
	return ev, err
}

// CreateEvent creates an Event and returns it with its id.
func (c *Client) CreateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error) {
	var out catalog.Event
	err := c.doJSON(ctx, http.MethodPost, "/eventos", ev, &out)
	return out, err
}

// UpdateEvent replaces an Event's fields.
func (c *Client) UpdateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error) {
	var out catalog.Event
	err := c.doJSON(ctx, http.MethodPut, "/eventos/"+seg(ev.ID), ev, &out)
	return out, err
}

// DeleteEvent deletes an Event.
func (c *Client) DeleteEvent(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/eventos/"+seg(id), nil, nil)
}

// =============================================================================
// Editions
// =============================================================================

// ListEditionsOf returns the Editions of an Event.
func (c *Client) ListEditionsOf(ctx context.Context, eventID string) ([]catalog.Edition, error) {
	var out []catalog.Edition
	err := c.doJSON(ctx, http.MethodGet, "/edicoes/evento/"+seg(eventID), nil, &out)
	return out, err
}

// GetEdition returns one Edition.
func (c *Client) GetEdition(ctx context.Context, id string) (catalog.Edition, error) {
	var ed catalog.Edition
	err := c.doJSON(ctx, http.MethodGet, "/edicoes/"+seg(id), nil, &ed)
	return ed, err
}

// CreateEdition creates an Edition.
func (c *Client) CreateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error) {
	var out catalog.Edition
	err := c.doJSON(ctx, http.MethodPost, "/edicoes", ed, &out)
	return out, err
}

// UpdateEdition replaces an Edition's fields.
func (c *Client) UpdateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error) {
	var out catalog.Edition
	err := c.doJSON(ctx, http.MethodPut, "/edicoes/"+seg(ed.ID), ed, &out)
	return out, err
}

// DeleteEdition deletes an Edition.
func (c *Client) DeleteEdition(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/edicoes/"+seg(id), nil, nil)
}

// =============================================================================
// Articles
// =============================================================================

// ListArticlesOf returns the Articles of an Edition.
func (c *Client) ListArticlesOf(ctx context.Context, editionID string) ([]catalog.Article, error) {
	var out []catalog.Article
	err := c.doJSON(ctx, http.MethodGet, "/artigos/edicao/"+seg(editionID), nil, &out)
	return out, err
}

// GetArticle returns one Article.
func (c *Client) GetArticle(ctx context.Context, id string) (catalog.Article, error) {
	var a catalog.Article
	err := c.doJSON(ctx, http.MethodGet, "/artigos/"+seg(id), nil, &a)
	return a, err
}

// CreateArticle creates an Article from JSON metadata.
func (c *Client) CreateArticle(ctx context.Context, a catalog.Article) (catalog.Article, error) {
	var out catalog.Article
	err := c.doJSON(ctx, http.MethodPost, "/artigos/", a, &out)
	return out, err
}

// CreateArticleWithPDF creates an Article and its PDF in one multipart request.
func (c *Client) CreateArticleWithPDF(ctx context.Context, a catalog.Article, filename string, pdf io.Reader) (catalog.Article, error) {
	authors, _ := json.Marshal(a.Authors)
	keywords, _ := json.Marshal(a.Keywords)
	fields := map[string]string{
		"titulo":    a.Title,
		"autores":   string(authors),
		"edicao_id": a.EditionID,
		"resumo":    a.Abstract,
		"keywords":  string(keywords),
		"paginas":   a.Pages,
		"doi":       a.DOI,
	}
	var out catalog.Article
	err := c.doMultipart(ctx, "/artigos/", fields, "pdf", filename, pdf, &out)
	return out, err
}

// UpdateArticle replaces an Article's fields.
func (c *Client) UpdateArticle(ctx context.Context, a catalog.Article) (catalog.Article, error) {
	var out catalog.Article
	err := c.doJSON(ctx, http.MethodPut, "/artigos/"+seg(a.ID), a, &out)
	return out, err
}

// DeleteArticle deletes an Article.
func (c *Client) DeleteArticle(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/artigos/"+seg(id), nil, nil)
}

// UploadPDF attaches a PDF to an existing Article.
func (c *Client) UploadPDF(ctx context.Context, articleID, filename string, pdf io.Reader) (catalog.Article, error) {
	var out catalog.Article
	err := c.doMultipart(ctx, "/artigos/"+seg(articleID)+"/upload-pdf", nil, "pdf", filename, pdf, &out)
	return out, err
}

// DownloadPDF writes an Article's PDF to w.
func (c *Client) DownloadPDF(ctx context.Context, articleID string, w io.Writer) error {
	return c.do(ctx, http.MethodGet, "/artigos/"+seg(articleID)+"/pdf", nil, "", w)
}

// Search queries articles by title, author or event.
func (c *Client) Search(ctx context.Context, q catalog.SearchQuery) (catalog.SearchResponse, error) {
	v := url.Values{}
	v.Set("q", q.Text)
	if q.Kind != "" {
		v.Set("tipo", string(q.Kind))
	}
	if q.Author != "" {
		v.Set("autor", q.Author)
	}
	if q.Event != "" {
		v.Set("evento", q.Event)
	}
	var out catalog.SearchResponse
	err := c.doJSON(ctx, http.MethodGet, "/artigos/busca?"+v.Encode(), nil, &out)
	return out, err
}

// =============================================================================
// Batch import
// =============================================================================

// UploadBibTeX sends a batch file to the service, which imports it as one
// request and answers with the aggregated statistics.
func (c *Client) UploadBibTeX(ctx context.Context, filename string, content io.Reader) (catalog.ImportResponse, error) {
	var out catalog.ImportResponse
	err := c.doMultipart(ctx, "/batch/upload-bibtex", nil, "file", filename, content, &out)
	return out, err
}

// =============================================================================
// Subscriptions and public pages
// =============================================================================

// Subscribe registers an email for the newsletter.
func (c *Client) Subscribe(ctx context.Context, email string) (catalog.Subscription, error) {
	var out catalog.Subscription
	err := c.doJSON(ctx, http.MethodPost, "/inscricoes", map[string]string{"email": email}, &out)
	return out, err
}

// Unsubscribe cancels a newsletter subscription.
func (c *Client) Unsubscribe(ctx context.Context, email string) error {
	return c.doJSON(ctx, http.MethodDelete, "/inscricoes/"+seg(email), nil, nil)
}

// SubscriptionTotal returns the number of active subscriptions.
func (c *Client) SubscriptionTotal(ctx context.Context) (int, error) {
	var out struct {
		Total int `json:"total"`
	}
	err := c.doJSON(ctx, http.MethodGet, "/inscricoes/total", nil, &out)
	return out.Total, err
}

// PublicEvent returns an Event's public page.
func (c *Client) PublicEvent(ctx context.Context, code string) (catalog.EventPage, error) {
	var out catalog.EventPage
	err := c.doJSON(ctx, http.MethodGet, "/public/eventos/"+seg(code), nil, &out)
	return out, err
}

// PublicEdition returns an Edition's public page.
func (c *Client) PublicEdition(ctx context.Context, code string, year int) (catalog.EditionPage, error) {
	var out catalog.EditionPage
	err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/public/eventos/%s/%d", seg(code), year), nil, &out)
	return out, err
}
