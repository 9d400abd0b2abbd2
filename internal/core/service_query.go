package core

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/database"
)

// ListEvents returns every Event ordered by name.
func (s *Service) ListEvents(ctx context.Context) ([]catalog.Event, error) {
	rows, err := s.q.ListEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	events := make([]catalog.Event, len(rows))
	for i, r := range rows {
		events[i] = eventFromDB(r)
	}
	return events, nil
}

// GetEvent returns one Event.
func (s *Service) GetEvent(ctx context.Context, id string) (catalog.Event, error) {
	if err := validateID("event", id); err != nil {
		return catalog.Event{}, err
	}
	row, err := s.q.GetEvent(ctx, ToPgUUID(id))
	if err != nil {
		return catalog.Event{}, notFound(err, "event", id)
	}
	return eventFromDB(row), nil
}

// GetEventByCode looks an Event up by its code, ignoring case.
func (s *Service) GetEventByCode(ctx context.Context, code string) (catalog.Event, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return catalog.Event{}, catalog.Required("sigla")
	}
	row, err := s.q.GetEventByCode(ctx, code)
	if err != nil {
		return catalog.Event{}, notFound(err, "event", code)
	}
	return eventFromDB(row), nil
}

// ListEditionsOf returns the Editions of an Event, newest first. A missing
// Event is reported as a dangling reference.
func (s *Service) ListEditionsOf(ctx context.Context, eventID string) ([]catalog.Edition, error) {
	if err := s.requireEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rows, err := s.q.ListEditionsByEvent(ctx, ToPgUUID(eventID))
	if err != nil {
		return nil, fmt.Errorf("list editions: %w", err)
	}
	editions := make([]catalog.Edition, len(rows))
	for i, r := range rows {
		editions[i] = editionFromDB(r)
	}
	return editions, nil
}

// GetEdition returns one Edition.
func (s *Service) GetEdition(ctx context.Context, id string) (catalog.Edition, error) {
	if err := validateID("edition", id); err != nil {
		return catalog.Edition{}, err
	}
	row, err := s.q.GetEdition(ctx, ToPgUUID(id))
	if err != nil {
		return catalog.Edition{}, notFound(err, "edition", id)
	}
	return editionFromDB(row), nil
}

// ListArticlesOf returns the Articles of an Edition ordered by title. A
// missing Edition is reported as a dangling reference.
func (s *Service) ListArticlesOf(ctx context.Context, editionID string) ([]catalog.Article, error) {
	ed, err := s.requireEdition(ctx, editionID)
	if err != nil {
		return nil, err
	}
	rows, err := s.q.ListArticlesByEdition(ctx, ed.ID)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	articles := make([]catalog.Article, len(rows))
	for i, r := range rows {
		articles[i] = articleFromDB(r, int(ed.Year))
	}
	return articles, nil
}

// GetArticle returns one Article with its Edition's year.
func (s *Service) GetArticle(ctx context.Context, id string) (catalog.Article, error) {
	row, err := s.getArticleRow(ctx, id)
	if err != nil {
		return catalog.Article{}, err
	}
	year := 0
	if ed, err := s.q.GetEdition(ctx, row.EditionID); err == nil {
		year = int(ed.Year)
	}
	return articleFromDB(row, year), nil
}

func (s *Service) getArticleRow(ctx context.Context, id string) (database.Article, error) {
	if err := validateID("article", id); err != nil {
		return database.Article{}, err
	}
	row, err := s.q.GetArticle(ctx, ToPgUUID(id))
	if err != nil {
		return database.Article{}, notFound(err, "article", id)
	}
	return row, nil
}

// Search matches q against titles, authors or events depending on kind.
// Results carry their Event and Edition and are ordered newest first.
func (s *Service) Search(ctx context.Context, query catalog.SearchQuery) (catalog.SearchResponse, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return catalog.SearchResponse{}, catalog.Required("q")
	}
	kind := query.Kind
	if kind == "" {
		kind = catalog.SearchAll
	}

	rows, err := s.q.SearchArticles(ctx, database.SearchArticlesParams{
		Query:  text,
		Kind:   string(kind),
		Author: strings.TrimSpace(query.Author),
		Event:  strings.TrimSpace(query.Event),
		Limit:  DefaultSearchLimit,
	})
	if err != nil {
		return catalog.SearchResponse{}, fmt.Errorf("search articles: %w", err)
	}

	seen := make(map[string]struct{}, len(rows))
	results := make([]catalog.SearchResult, 0, len(rows))
	for _, r := range rows {
		res := searchResultFromDB(r)
		if _, dup := seen[res.ID]; dup {
			continue
		}
		seen[res.ID] = struct{}{}
		results = append(results, res)
	}

	return catalog.SearchResponse{
		Results: results,
		Total:   len(results),
		Query:   text,
		Kind:    kind,
	}, nil
}

// PublicEvent returns the homepage of the Event with the given code.
func (s *Service) PublicEvent(ctx context.Context, code string) (catalog.EventPage, error) {
	ev, err := s.GetEventByCode(ctx, code)
	if err != nil {
		return catalog.EventPage{}, err
	}
	editions, err := s.ListEditionsOf(ctx, ev.ID)
	if err != nil {
		return catalog.EventPage{}, err
	}
	slices.SortStableFunc(editions, func(a, b catalog.Edition) int {
		return cmp.Compare(b.Year, a.Year)
	})
	return catalog.EventPage{Event: ev, Editions: editions, Total: len(editions)}, nil
}

// PublicEdition returns the homepage of one Edition of the Event with the
// given code.
func (s *Service) PublicEdition(ctx context.Context, code string, year int) (catalog.EditionPage, error) {
	ev, err := s.GetEventByCode(ctx, code)
	if err != nil {
		return catalog.EditionPage{}, err
	}
	row, err := s.q.GetEditionByEventYear(ctx, database.GetEditionByEventYearParams{
		EventID: ToPgUUID(ev.ID),
		Year:    int32(year),
	})
	if err != nil {
		return catalog.EditionPage{}, notFound(err, "edition", fmt.Sprintf("%s %d", ev.Code, year))
	}
	ed := editionFromDB(row)
	articles, err := s.ListArticlesOf(ctx, ed.ID)
	if err != nil {
		return catalog.EditionPage{}, err
	}
	return catalog.EditionPage{Event: ev, Edition: ed, Articles: articles, Total: len(articles)}, nil
}

func (s *Service) requireEvent(ctx context.Context, id string) error {
	if err := validateID("evento_id", id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return &catalog.ConsistencyError{Entity: "event", ID: id}
		}
		return err
	}
	if _, err := s.q.GetEvent(ctx, ToPgUUID(id)); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &catalog.ConsistencyError{Entity: "event", ID: id}
		}
		return fmt.Errorf("get event: %w", err)
	}
	return nil
}

func (s *Service) requireEdition(ctx context.Context, id string) (database.Edition, error) {
	if err := validateID("edicao_id", id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			return database.Edition{}, &catalog.ConsistencyError{Entity: "edition", ID: id}
		}
		return database.Edition{}, err
	}
	ed, err := s.q.GetEdition(ctx, ToPgUUID(id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Edition{}, &catalog.ConsistencyError{Entity: "edition", ID: id}
		}
		return database.Edition{}, fmt.Errorf("get edition: %w", err)
	}
	return ed, nil
}
