package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gst-aqn42/TP1/internal/attachments"
	"github.com/gst-aqn42/TP1/internal/bibtex"
	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/database"
	"github.com/gst-aqn42/TP1/internal/notify"
	"github.com/gst-aqn42/TP1/internal/reconcile"
)

// Defaults applied to zero Options fields.
const (
	DefaultImportTimeout  = 10 * time.Minute
	DefaultMaxBibFileSize = 10 << 20
	DefaultMaxPDFSize     = 50 << 20
	DefaultTokenTTL       = 24 * time.Hour
	DefaultSearchLimit    = 200
)

// Options configures a Service.
type Options struct {
	Logger *slog.Logger
	Venues *bibtex.Venues

	JWTSecret []byte
	TokenTTL  time.Duration

	MaxConcurrentUploads int
	MaxWaitTime          time.Duration
	ImportTimeout        time.Duration
	MaxBibFileSize       int64
	MaxPDFSize           int64

	// OnImportOutcome is called once per imported entry.
	OnImportOutcome func(reconcile.Outcome)

	// Notifier delivers new-Article notices to author subscribers. Notices
	// are logged when nil.
	Notifier ArticleNotifier
}

// ArticleNotifier delivers the notice that a, naming author, was added to
// the subscriber at address to.
type ArticleNotifier interface {
	NotifyNewArticle(ctx context.Context, to, author string, a catalog.Article) error
}

// Service implements the catalog operations behind the REST API.
type Service struct {
	q      database.Querier
	files  attachments.Store
	logger *slog.Logger

	parser   *bibtex.Parser
	engine   *reconcile.Engine
	uploads  *UploadLimiter
	notifier ArticleNotifier

	jwtSecret      []byte
	tokenTTL       time.Duration
	importTimeout  time.Duration
	maxBibFileSize int64
	maxPDFSize     int64
	now            func() time.Time
}

// NewService creates a Service reading and writing through q and storing
// PDFs in files.
func NewService(q database.Querier, files attachments.Store, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Venues == nil {
		opts.Venues = bibtex.DefaultVenues()
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = DefaultTokenTTL
	}
	if opts.ImportTimeout <= 0 {
		opts.ImportTimeout = DefaultImportTimeout
	}
	if opts.MaxBibFileSize <= 0 {
		opts.MaxBibFileSize = DefaultMaxBibFileSize
	}
	if opts.MaxPDFSize <= 0 {
		opts.MaxPDFSize = DefaultMaxPDFSize
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.NewLog(opts.Logger.With("component", "notify"))
	}

	s := &Service{
		q:              q,
		files:          files,
		logger:         opts.Logger,
		parser:         bibtex.NewParser(opts.Venues),
		uploads:        NewUploadLimiter(opts.MaxConcurrentUploads, opts.MaxWaitTime),
		notifier:       opts.Notifier,
		jwtSecret:      opts.JWTSecret,
		tokenTTL:       opts.TokenTTL,
		importTimeout:  opts.ImportTimeout,
		maxBibFileSize: opts.MaxBibFileSize,
		maxPDFSize:     opts.MaxPDFSize,
		now:            time.Now,
	}

	engineOpts := []reconcile.Option{reconcile.WithLogger(opts.Logger.With("component", "import"))}
	if opts.OnImportOutcome != nil {
		engineOpts = append(engineOpts, reconcile.WithObserver(opts.OnImportOutcome))
	}
	s.engine = reconcile.NewEngine(importCatalog{s}, engineOpts...)
	return s
}

// Uploads returns the limiter bounding concurrent file uploads.
func (s *Service) Uploads() *UploadLimiter {
	return s.uploads
}

// ImportRunning reports whether a batch import is in flight.
func (s *Service) ImportRunning() bool {
	return s.engine.Running()
}

// WaitForDrain blocks until no upload or import is running, or ctx ends.
func (s *Service) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		if s.uploads.ActiveCount() == 0 && !s.engine.Running() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// notFound converts pgx.ErrNoRows into catalog.ErrNotFound.
func notFound(err error, entity, id string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s %s: %w", entity, id, catalog.ErrNotFound)
	}
	return err
}

// importCatalog lets the reconcile engine write through the service
// without recording an audit entry per created record.
type importCatalog struct{ s *Service }

func (c importCatalog) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	return c.s.ListEvents(ctx)
}

func (c importCatalog) ListEditionsOf(ctx context.Context, eventID string) ([]catalog.Edition, error) {
	return c.s.ListEditionsOf(ctx, eventID)
}

func (c importCatalog) ListArticlesOf(ctx context.Context, editionID string) ([]catalog.Article, error) {
	return c.s.ListArticlesOf(ctx, editionID)
}

func (c importCatalog) CreateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error) {
	return c.s.insertEvent(ctx, ev)
}

func (c importCatalog) CreateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error) {
	return c.s.insertEdition(ctx, ed)
}

func (c importCatalog) CreateArticle(ctx context.Context, a catalog.Article) (catalog.Article, error) {
	created, err := c.s.insertArticle(ctx, a, "")
	if err != nil {
		return catalog.Article{}, err
	}
	c.s.announceArticle(ctx, created)
	return created, nil
}

var _ reconcile.Catalog = importCatalog{}
