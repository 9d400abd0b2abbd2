// Package store keeps a local cache of the last successful catalog reads.
//
// The remote catalog is the source of truth. Every mutation is sent to the
// remote and followed by a reload of the affected list, whether the
// mutation succeeded or not; cached lists are never patched in place.
package store

import (
	"context"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

// Remote is the catalog service as seen from the client side.
type Remote interface {
	ListEvents(ctx context.Context) ([]catalog.Event, error)
	ListEditionsOf(ctx context.Context, eventID string) ([]catalog.Edition, error)
	ListArticlesOf(ctx context.Context, editionID string) ([]catalog.Article, error)

	CreateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error)
	UpdateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	CreateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error)
	UpdateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error)
	DeleteEdition(ctx context.Context, id string) error

	CreateArticle(ctx context.Context, a catalog.Article) (catalog.Article, error)
	CreateArticleWithPDF(ctx context.Context, a catalog.Article, filename string, pdf io.Reader) (catalog.Article, error)
	UpdateArticle(ctx context.Context, a catalog.Article) (catalog.Article, error)
	DeleteArticle(ctx context.Context, id string) error
	UploadPDF(ctx context.Context, articleID, filename string, pdf io.Reader) (catalog.Article, error)
}

// Store caches Events, Editions per Event and Articles per Edition.
type Store struct {
	remote Remote

	mu       sync.RWMutex
	events   []catalog.Event
	editions map[string][]catalog.Edition
	articles map[string][]catalog.Article
}

// New creates an empty Store backed by remote.
func New(remote Remote) *Store {
	return &Store{
		remote:   remote,
		editions: make(map[string][]catalog.Edition),
		articles: make(map[string][]catalog.Article),
	}
}

// =============================================================================
// Reads
// =============================================================================

// ListEvents fetches all Events and replaces the cached list.
func (s *Store) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	events, err := s.remote.ListEvents(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.events = slices.Clone(events)
	s.mu.Unlock()
	return events, nil
}

// ListEditionsOf fetches the Editions of an Event and replaces the cached
// list. Editions owned by other Events are dropped.
func (s *Store) ListEditionsOf(ctx context.Context, eventID string) ([]catalog.Edition, error) {
	list, err := s.remote.ListEditionsOf(ctx, eventID)
	if err != nil {
		return nil, err
	}
	owned := slices.DeleteFunc(slices.Clone(list), func(ed catalog.Edition) bool {
		return ed.EventID != eventID
	})
	s.mu.Lock()
	s.editions[eventID] = owned
	s.mu.Unlock()
	return slices.Clone(owned), nil
}

// ListArticlesOf fetches the Articles of an Edition and replaces the cached list.
func (s *Store) ListArticlesOf(ctx context.Context, editionID string) ([]catalog.Article, error) {
	list, err := s.remote.ListArticlesOf(ctx, editionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.articles[editionID] = slices.Clone(list)
	s.mu.Unlock()
	return list, nil
}

// Events returns the cached Events.
func (s *Store) Events() []catalog.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.events)
}

// EditionsOf returns the cached Editions of an Event.
func (s *Store) EditionsOf(eventID string) []catalog.Edition {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.editions[eventID])
}

// ArticlesOf returns the cached Articles of an Edition.
func (s *Store) ArticlesOf(editionID string) []catalog.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.articles[editionID])
}

// =============================================================================
// Mutations
// =============================================================================

// after runs reload once the mutation has completed. A mutation error wins
// over a reload error.
func after(ctx context.Context, opErr error, reload func(context.Context) error) error {
	if err := reload(ctx); err != nil && opErr == nil {
		return fmt.Errorf("refresh after mutation: %w", err)
	}
	return opErr
}

func (s *Store) reloadEvents(ctx context.Context) error {
	_, err := s.ListEvents(ctx)
	return err
}

func (s *Store) reloadEditions(eventIDs ...string) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, id := range eventIDs {
			if id == "" {
				continue
			}
			if _, err := s.ListEditionsOf(ctx, id); err != nil {
				return err
			}
		}
		return nil
	}
}

func (s *Store) reloadArticles(editionIDs ...string) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, id := range editionIDs {
			if id == "" {
				continue
			}
			if _, err := s.ListArticlesOf(ctx, id); err != nil {
				return err
			}
		}
		return nil
	}
}

// CreateEvent creates an Event and reloads the Event list.
func (s *Store) CreateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error) {
	created, err := s.remote.CreateEvent(ctx, ev)
	return created, after(ctx, err, s.reloadEvents)
}

// UpdateEvent updates an Event and reloads the Event list.
func (s *Store) UpdateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error) {
	updated, err := s.remote.UpdateEvent(ctx, ev)
	return updated, after(ctx, err, s.reloadEvents)
}

// DeleteEvent deletes an Event and reloads the Event list.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	err := s.remote.DeleteEvent(ctx, id)
	if err == nil {
		s.mu.Lock()
		delete(s.editions, id)
		s.mu.Unlock()
	}
	return after(ctx, err, s.reloadEvents)
}

// CreateEdition creates an Edition and reloads its Event's Editions.
func (s *Store) CreateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error) {
	created, err := s.remote.CreateEdition(ctx, ed)
	return created, after(ctx, err, s.reloadEditions(ed.EventID))
}

// UpdateEdition updates an Edition and reloads the Editions of its old and
// new owner.
func (s *Store) UpdateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error) {
	previous := s.ownerOf(ed.ID)
	updated, err := s.remote.UpdateEdition(ctx, ed)
	owners := []string{ed.EventID}
	if previous != ed.EventID {
		owners = append(owners, previous)
	}
	return updated, after(ctx, err, s.reloadEditions(owners...))
}

// DeleteEdition deletes an Edition and reloads its Event's Editions.
func (s *Store) DeleteEdition(ctx context.Context, ed catalog.Edition) error {
	err := s.remote.DeleteEdition(ctx, ed.ID)
	if err == nil {
		s.mu.Lock()
		delete(s.articles, ed.ID)
		s.mu.Unlock()
	}
	return after(ctx, err, s.reloadEditions(ed.EventID))
}

// CreateArticle creates an Article and reloads its Edition's Articles.
func (s *Store) CreateArticle(ctx context.Context, a catalog.Article) (catalog.Article, error) {
	created, err := s.remote.CreateArticle(ctx, a)
	return created, after(ctx, err, s.reloadArticles(a.EditionID))
}

// CreateArticleWithAttachment creates an Article together with its PDF and
// reloads its Edition's Articles.
func (s *Store) CreateArticleWithAttachment(ctx context.Context, a catalog.Article, filename string, pdf io.Reader) (catalog.Article, error) {
	created, err := s.remote.CreateArticleWithPDF(ctx, a, filename, pdf)
	return created, after(ctx, err, s.reloadArticles(a.EditionID))
}

// UpdateArticle updates an Article and reloads the affected Article lists.
func (s *Store) UpdateArticle(ctx context.Context, a catalog.Article, previousEditionID string) (catalog.Article, error) {
	updated, err := s.remote.UpdateArticle(ctx, a)
	editions := []string{a.EditionID}
	if previousEditionID != a.EditionID {
		editions = append(editions, previousEditionID)
	}
	return updated, after(ctx, err, s.reloadArticles(editions...))
}

// DeleteArticle deletes an Article and reloads its Edition's Articles.
func (s *Store) DeleteArticle(ctx context.Context, a catalog.Article) error {
	err := s.remote.DeleteArticle(ctx, a.ID)
	return after(ctx, err, s.reloadArticles(a.EditionID))
}

// UploadPDF attaches a PDF to an existing Article. The Article list is
// reloaded only when the upload succeeds.
func (s *Store) UploadPDF(ctx context.Context, a catalog.Article, filename string, pdf io.Reader) error {
	if _, err := s.remote.UploadPDF(ctx, a.ID, filename, pdf); err != nil {
		return err
	}
	return after(ctx, nil, s.reloadArticles(a.EditionID))
}

func (s *Store) ownerOf(editionID string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for eventID, list := range s.editions {
		for _, ed := range list {
			if ed.ID == editionID {
				return eventID
			}
		}
	}
	return ""
}
