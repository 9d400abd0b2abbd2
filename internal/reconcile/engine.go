// Package reconcile imports parsed bibliographic entries into the catalog.
// Each entry resolves or creates its Event and Edition, then becomes a new
// Article unless an equivalent one already exists in that Edition.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gst-aqn42/TP1/internal/bibtex"
	"github.com/gst-aqn42/TP1/internal/catalog"
)

// Catalog is the subset of catalog operations an import needs.
type Catalog interface {
	ListEvents(ctx context.Context) ([]catalog.Event, error)
	ListEditionsOf(ctx context.Context, eventID string) ([]catalog.Edition, error)
	ListArticlesOf(ctx context.Context, editionID string) ([]catalog.Article, error)
	CreateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error)
	CreateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error)
	CreateArticle(ctx context.Context, a catalog.Article) (catalog.Article, error)
}

// Outcome classifies what happened to one entry.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeFailed    Outcome = "failed"
)

// Engine runs batch imports against a Catalog. An Engine runs at most one
// import at a time.
type Engine struct {
	catalog Catalog
	logger  *slog.Logger
	observe func(Outcome)
	running atomic.Bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for per-entry diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithObserver registers a callback invoked once per entry with its outcome.
func WithObserver(fn func(Outcome)) Option {
	return func(e *Engine) { e.observe = fn }
}

// NewEngine creates an Engine writing to c.
func NewEngine(c Catalog, opts ...Option) *Engine {
	e := &Engine{
		catalog: c,
		logger:  slog.Default(),
		observe: func(Outcome) {},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Running reports whether an import is in flight.
func (e *Engine) Running() bool { return e.running.Load() }

// Import reconciles every result in order and returns the aggregated
// statistics. Individual failures are recorded in the statistics; the only
// error returned is ErrImportInProgress.
func (e *Engine) Import(ctx context.Context, results iter.Seq[bibtex.Result]) (catalog.ImportStats, error) {
	if !e.running.CompareAndSwap(false, true) {
		return catalog.ImportStats{}, catalog.ErrImportInProgress
	}
	defer e.running.Store(false)

	start := time.Now()
	b := newBatch(e.catalog)
	stats := catalog.ImportStats{Errors: []catalog.SkippedEntry{}}

	for r := range results {
		stats.Total++
		outcome := e.importOne(ctx, b, r, &stats)
		e.observe(outcome)
	}

	e.logger.Info("import finished",
		"total", stats.Total,
		"articles_created", stats.ArticlesCreated,
		"events_created", stats.EventsCreated,
		"editions_created", stats.EditionsCreated,
		"duplicates", stats.Duplicates,
		"failures", stats.Failures,
		"duration", time.Since(start),
	)
	return stats, nil
}

func (e *Engine) importOne(ctx context.Context, b *batch, r bibtex.Result, stats *catalog.ImportStats) Outcome {
	fail := func(err error) Outcome {
		stats.Failures++
		stats.Errors = append(stats.Errors, catalog.SkippedEntry{
			Entry:  r.Label(),
			Line:   r.Entry.Line,
			Reason: err.Error(),
		})
		e.logger.Debug("entry failed", "entry", r.Label(), "line", r.Entry.Line, "error", err)
		return OutcomeFailed
	}

	if !r.OK() {
		return fail(r.Err)
	}
	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	c := r.Candidate

	ev, created, err := b.event(ctx, c)
	if err != nil {
		return fail(fmt.Errorf("event %s: %w", c.EventCode, err))
	}
	if created {
		stats.EventsCreated++
	}

	ed, created, err := b.edition(ctx, ev, c)
	if err != nil {
		return fail(fmt.Errorf("edition %s %d: %w", ev.Code, c.Year, err))
	}
	if created {
		stats.EditionsCreated++
	}

	keys, err := b.articleKeys(ctx, ed.ID)
	if err != nil {
		return fail(fmt.Errorf("articles of edition %s: %w", ed.ID, err))
	}
	key := DedupKey(c.Title, c.Authors, ed.ID)
	if _, dup := keys[key]; dup {
		stats.Duplicates++
		stats.DuplicateList = append(stats.DuplicateList, catalog.SkippedEntry{
			Entry:  r.Label(),
			Line:   r.Entry.Line,
			Reason: catalog.ReasonDuplicate,
		})
		return OutcomeDuplicate
	}

	_, err = e.catalog.CreateArticle(ctx, catalog.Article{
		Title:     c.Title,
		Authors:   catalog.AuthorsFromNames(c.Authors),
		EditionID: ed.ID,
		Abstract:  c.Abstract,
		Keywords:  c.Keywords,
		Pages:     c.Pages,
		DOI:       c.DOI,
	})
	if err != nil {
		return fail(fmt.Errorf("article: %w", err))
	}
	keys[key] = struct{}{}
	stats.ArticlesCreated++
	return OutcomeCreated
}

// batch indexes what the catalog holds, plus what this import created.
// Indexes are filled lazily and kept for the whole import.
type batch struct {
	catalog  Catalog
	events   map[string]catalog.Event // folded code -> event
	editions map[string]map[int]catalog.Edition
	articles map[string]map[string]struct{} // edition id -> dedup keys
}

func newBatch(c Catalog) *batch {
	return &batch{
		catalog:  c,
		editions: make(map[string]map[int]catalog.Edition),
		articles: make(map[string]map[string]struct{}),
	}
}

func codeKey(code string) string { return Normalize(code) }

func (b *batch) loadEvents(ctx context.Context) error {
	events, err := b.catalog.ListEvents(ctx)
	if err != nil {
		return err
	}
	b.events = make(map[string]catalog.Event, len(events))
	for _, ev := range events {
		b.events[codeKey(ev.Code)] = ev
	}
	return nil
}

func (b *batch) event(ctx context.Context, c bibtex.Candidate) (catalog.Event, bool, error) {
	if b.events == nil {
		if err := b.loadEvents(ctx); err != nil {
			return catalog.Event{}, false, err
		}
	}
	k := codeKey(c.EventCode)
	if ev, ok := b.events[k]; ok {
		return ev, false, nil
	}

	ev, err := b.catalog.CreateEvent(ctx, catalog.Event{
		Name:        c.EventName,
		Code:        c.EventCode,
		Description: c.EventDescription,
	})
	if errors.Is(err, catalog.ErrConflict) {
		// Created by someone else since the index was loaded.
		if lerr := b.loadEvents(ctx); lerr == nil {
			if ev, ok := b.events[k]; ok {
				return ev, false, nil
			}
		}
	}
	if err != nil {
		return catalog.Event{}, false, err
	}
	b.events[k] = ev
	b.editions[ev.ID] = make(map[int]catalog.Edition)
	return ev, true, nil
}

func (b *batch) loadEditions(ctx context.Context, eventID string) (map[int]catalog.Edition, error) {
	list, err := b.catalog.ListEditionsOf(ctx, eventID)
	if err != nil {
		return nil, err
	}
	byYear := make(map[int]catalog.Edition, len(list))
	for _, ed := range list {
		if ed.EventID == eventID {
			byYear[ed.Year] = ed
		}
	}
	b.editions[eventID] = byYear
	return byYear, nil
}

func (b *batch) edition(ctx context.Context, ev catalog.Event, c bibtex.Candidate) (catalog.Edition, bool, error) {
	byYear, ok := b.editions[ev.ID]
	if !ok {
		var err error
		if byYear, err = b.loadEditions(ctx, ev.ID); err != nil {
			return catalog.Edition{}, false, err
		}
	}
	if ed, ok := byYear[c.Year]; ok {
		return ed, false, nil
	}

	ed, err := b.catalog.CreateEdition(ctx, catalog.Edition{
		EventID:   ev.ID,
		Year:      c.Year,
		Location:  strings.TrimSpace(c.Location),
		StartDate: fmt.Sprintf("%d-01-01", c.Year),
		EndDate:   fmt.Sprintf("%d-12-31", c.Year),
	})
	if errors.Is(err, catalog.ErrConflict) {
		// (event, year) taken since the index was loaded.
		if reloaded, lerr := b.loadEditions(ctx, ev.ID); lerr == nil {
			if ed, ok := reloaded[c.Year]; ok {
				return ed, false, nil
			}
		}
	}
	if err != nil {
		return catalog.Edition{}, false, err
	}
	byYear = b.editions[ev.ID]
	byYear[c.Year] = ed
	b.articles[ed.ID] = make(map[string]struct{})
	return ed, true, nil
}

func (b *batch) articleKeys(ctx context.Context, editionID string) (map[string]struct{}, error) {
	if keys, ok := b.articles[editionID]; ok {
		return keys, nil
	}
	list, err := b.catalog.ListArticlesOf(ctx, editionID)
	if err != nil {
		return nil, err
	}
	keys := make(map[string]struct{}, len(list))
	for _, a := range list {
		keys[DedupKey(a.Title, a.AuthorNames(), editionID)] = struct{}{}
	}
	b.articles[editionID] = keys
	return keys, nil
}
