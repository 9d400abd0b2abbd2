package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/database"
)

// =============================================================================
// Events
// =============================================================================

// CreateEvent adds an Event. Codes are unique regardless of case.
func (s *Service) CreateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error) {
	created, err := s.insertEvent(ctx, ev)
	if err != nil {
		return catalog.Event{}, err
	}
	s.audit(ctx, AuditLogParams{
		Action:   ActionEventCreate,
		Entity:   "event",
		EntityID: created.ID,
		Detail:   map[string]any{"sigla": created.Code, "nome": created.Name},
	})
	return created, nil
}

func (s *Service) insertEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error) {
	ev.Name = strings.TrimSpace(ev.Name)
	ev.Code = strings.TrimSpace(ev.Code)
	if err := ValidateEvent(ev); err != nil {
		return catalog.Event{}, err
	}
	if err := s.checkCodeFree(ctx, ev.Code, ""); err != nil {
		return catalog.Event{}, err
	}

	row, err := s.q.InsertEvent(ctx, database.InsertEventParams{
		ID:          newPgUUID(),
		Name:        ev.Name,
		Code:        ev.Code,
		Description: ToPgText(ev.Description),
	})
	if database.IsUniqueViolation(err) {
		return catalog.Event{}, codeConflict(ev.Code)
	}
	if err != nil {
		return catalog.Event{}, fmt.Errorf("insert event: %w", err)
	}
	return eventFromDB(row), nil
}

// UpdateEvent replaces an Event's fields.
func (s *Service) UpdateEvent(ctx context.Context, id string, ev catalog.Event) (catalog.Event, error) {
	if err := validateID("event", id); err != nil {
		return catalog.Event{}, err
	}
	ev.Name = strings.TrimSpace(ev.Name)
	ev.Code = strings.TrimSpace(ev.Code)
	if err := ValidateEvent(ev); err != nil {
		return catalog.Event{}, err
	}
	if err := s.checkCodeFree(ctx, ev.Code, id); err != nil {
		return catalog.Event{}, err
	}

	row, err := s.q.UpdateEvent(ctx, database.UpdateEventParams{
		ID:          ToPgUUID(id),
		Name:        ev.Name,
		Code:        ev.Code,
		Description: ToPgText(ev.Description),
	})
	if database.IsUniqueViolation(err) {
		return catalog.Event{}, codeConflict(ev.Code)
	}
	if err != nil {
		return catalog.Event{}, notFound(err, "event", id)
	}

	updated := eventFromDB(row)
	s.audit(ctx, AuditLogParams{
		Action:   ActionEventUpdate,
		Entity:   "event",
		EntityID: id,
		Detail:   map[string]any{"sigla": updated.Code, "nome": updated.Name},
	})
	return updated, nil
}

// DeleteEvent removes an Event. It is rejected while the Event has Editions.
func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	if err := validateID("event", id); err != nil {
		return err
	}
	n, err := s.q.CountEditionsByEvent(ctx, ToPgUUID(id))
	if err != nil {
		return fmt.Errorf("count editions: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("event %s has editions (%d): %w", id, n, catalog.ErrConflict)
	}

	deleted, err := s.q.DeleteEvent(ctx, ToPgUUID(id))
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("event %s has editions: %w", id, catalog.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("event %s: %w", id, catalog.ErrNotFound)
	}
	s.audit(ctx, AuditLogParams{Action: ActionEventDelete, Entity: "event", EntityID: id})
	return nil
}

func (s *Service) checkCodeFree(ctx context.Context, code, exceptID string) error {
	existing, err := s.q.GetEventByCode(ctx, code)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("get event by code: %w", err)
	case PgUUIDToString(existing.ID) == exceptID:
		return nil
	default:
		return codeConflict(code)
	}
}

func codeConflict(code string) error {
	return fmt.Errorf("event code %q already exists: %w", code, catalog.ErrConflict)
}

// =============================================================================
// Editions
// =============================================================================

// CreateEdition adds an Edition to an existing Event. (Event, year) is unique.
func (s *Service) CreateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error) {
	created, err := s.insertEdition(ctx, ed)
	if err != nil {
		return catalog.Edition{}, err
	}
	s.audit(ctx, AuditLogParams{
		Action:   ActionEditionCreate,
		Entity:   "edition",
		EntityID: created.ID,
		Detail:   map[string]any{"evento_id": created.EventID, "ano": created.Year},
	})
	return created, nil
}

func (s *Service) insertEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error) {
	ed.Location = strings.TrimSpace(ed.Location)
	if err := ValidateEdition(ed); err != nil {
		return catalog.Edition{}, err
	}
	if err := s.requireEvent(ctx, ed.EventID); err != nil {
		return catalog.Edition{}, err
	}
	if err := s.checkYearFree(ctx, ed.EventID, ed.Year, ""); err != nil {
		return catalog.Edition{}, err
	}

	row, err := s.q.InsertEdition(ctx, database.InsertEditionParams{
		ID:        newPgUUID(),
		EventID:   ToPgUUID(ed.EventID),
		Year:      int32(ed.Year),
		Location:  ToPgText(ed.Location),
		Number:    numberText(ed.Number),
		StartDate: ToPgDate(ed.StartDate),
		EndDate:   ToPgDate(ed.EndDate),
	})
	if err != nil {
		return catalog.Edition{}, s.editionWriteError(err, ed)
	}
	return editionFromDB(row), nil
}

// UpdateEdition replaces an Edition's fields.
func (s *Service) UpdateEdition(ctx context.Context, id string, ed catalog.Edition) (catalog.Edition, error) {
	if err := validateID("edition", id); err != nil {
		return catalog.Edition{}, err
	}
	ed.Location = strings.TrimSpace(ed.Location)
	if err := ValidateEdition(ed); err != nil {
		return catalog.Edition{}, err
	}
	if err := s.requireEvent(ctx, ed.EventID); err != nil {
		return catalog.Edition{}, err
	}
	if err := s.checkYearFree(ctx, ed.EventID, ed.Year, id); err != nil {
		return catalog.Edition{}, err
	}

	row, err := s.q.UpdateEdition(ctx, database.UpdateEditionParams{
		ID:        ToPgUUID(id),
		EventID:   ToPgUUID(ed.EventID),
		Year:      int32(ed.Year),
		Location:  ToPgText(ed.Location),
		Number:    numberText(ed.Number),
		StartDate: ToPgDate(ed.StartDate),
		EndDate:   ToPgDate(ed.EndDate),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return catalog.Edition{}, notFound(err, "edition", id)
		}
		return catalog.Edition{}, s.editionWriteError(err, ed)
	}

	updated := editionFromDB(row)
	s.audit(ctx, AuditLogParams{
		Action:   ActionEditionUpdate,
		Entity:   "edition",
		EntityID: id,
		Detail:   map[string]any{"evento_id": updated.EventID, "ano": updated.Year},
	})
	return updated, nil
}

// DeleteEdition removes an Edition. It is rejected while the Edition has
// Articles.
func (s *Service) DeleteEdition(ctx context.Context, id string) error {
	if err := validateID("edition", id); err != nil {
		return err
	}
	n, err := s.q.CountArticlesByEdition(ctx, ToPgUUID(id))
	if err != nil {
		return fmt.Errorf("count articles: %w", err)
	}
	if n > 0 {
		return fmt.Errorf("edition %s has articles (%d): %w", id, n, catalog.ErrConflict)
	}

	deleted, err := s.q.DeleteEdition(ctx, ToPgUUID(id))
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("edition %s has articles: %w", id, catalog.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("delete edition: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("edition %s: %w", id, catalog.ErrNotFound)
	}
	s.audit(ctx, AuditLogParams{Action: ActionEditionDelete, Entity: "edition", EntityID: id})
	return nil
}

func (s *Service) checkYearFree(ctx context.Context, eventID string, year int, exceptID string) error {
	existing, err := s.q.GetEditionByEventYear(ctx, database.GetEditionByEventYearParams{
		EventID: ToPgUUID(eventID),
		Year:    int32(year),
	})
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return nil
	case err != nil:
		return fmt.Errorf("get edition by year: %w", err)
	case PgUUIDToString(existing.ID) == exceptID:
		return nil
	default:
		return yearConflict(year)
	}
}

func yearConflict(year int) error {
	return fmt.Errorf("edition %d already exists for this event: %w", year, catalog.ErrConflict)
}

func (s *Service) editionWriteError(err error, ed catalog.Edition) error {
	switch {
	case database.IsUniqueViolation(err):
		return yearConflict(ed.Year)
	case database.IsForeignKeyViolation(err):
		return &catalog.ConsistencyError{Entity: "event", ID: ed.EventID}
	default:
		return fmt.Errorf("write edition: %w", err)
	}
}

// =============================================================================
// Articles
// =============================================================================

// CreateArticle adds an Article to an existing Edition.
func (s *Service) CreateArticle(ctx context.Context, a catalog.Article) (catalog.Article, error) {
	created, err := s.insertArticle(ctx, a, "")
	if err != nil {
		return catalog.Article{}, err
	}
	s.audit(ctx, AuditLogParams{
		Action:   ActionArticleCreate,
		Entity:   "article",
		EntityID: created.ID,
		Detail:   map[string]any{"titulo": created.Title, "edicao_id": created.EditionID},
	})
	s.announceArticle(ctx, created)
	return created, nil
}

func (s *Service) insertArticle(ctx context.Context, a catalog.Article, pdfPath string) (catalog.Article, error) {
	a.Title = strings.TrimSpace(a.Title)
	a.Authors = catalog.AuthorsFromNames(a.AuthorNames())
	if err := ValidateArticle(a); err != nil {
		return catalog.Article{}, err
	}
	ed, err := s.requireEdition(ctx, a.EditionID)
	if err != nil {
		return catalog.Article{}, err
	}

	row, err := s.q.InsertArticle(ctx, database.InsertArticleParams{
		ID:        newPgUUID(),
		EditionID: ed.ID,
		Title:     a.Title,
		Authors:   authorsJSON(a.Authors),
		Abstract:  ToPgText(a.Abstract),
		Keywords:  cleanKeywords(a.Keywords),
		Pages:     ToPgText(a.Pages),
		Doi:       ToPgText(a.DOI),
		PdfPath:   ToPgText(pdfPath),
	})
	if database.IsForeignKeyViolation(err) {
		return catalog.Article{}, &catalog.ConsistencyError{Entity: "edition", ID: a.EditionID}
	}
	if err != nil {
		return catalog.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return articleFromDB(row, int(ed.Year)), nil
}

// UpdateArticle replaces an Article's fields. An attached PDF is kept.
func (s *Service) UpdateArticle(ctx context.Context, id string, a catalog.Article) (catalog.Article, error) {
	if err := validateID("article", id); err != nil {
		return catalog.Article{}, err
	}
	a.Title = strings.TrimSpace(a.Title)
	a.Authors = catalog.AuthorsFromNames(a.AuthorNames())
	if err := ValidateArticle(a); err != nil {
		return catalog.Article{}, err
	}
	ed, err := s.requireEdition(ctx, a.EditionID)
	if err != nil {
		return catalog.Article{}, err
	}

	row, err := s.q.UpdateArticle(ctx, database.UpdateArticleParams{
		ID:        ToPgUUID(id),
		EditionID: ed.ID,
		Title:     a.Title,
		Authors:   authorsJSON(a.Authors),
		Abstract:  ToPgText(a.Abstract),
		Keywords:  cleanKeywords(a.Keywords),
		Pages:     ToPgText(a.Pages),
		Doi:       ToPgText(a.DOI),
	})
	if database.IsForeignKeyViolation(err) {
		return catalog.Article{}, &catalog.ConsistencyError{Entity: "edition", ID: a.EditionID}
	}
	if err != nil {
		return catalog.Article{}, notFound(err, "article", id)
	}

	updated := articleFromDB(row, int(ed.Year))
	s.audit(ctx, AuditLogParams{
		Action:   ActionArticleUpdate,
		Entity:   "article",
		EntityID: id,
		Detail:   map[string]any{"titulo": updated.Title},
	})
	return updated, nil
}

// DeleteArticle removes an Article and its PDF, if any.
func (s *Service) DeleteArticle(ctx context.Context, id string) error {
	row, err := s.getArticleRow(ctx, id)
	if err != nil {
		return err
	}
	deleted, err := s.q.DeleteArticle(ctx, row.ID)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if deleted == 0 {
		return fmt.Errorf("article %s: %w", id, catalog.ErrNotFound)
	}

	if key := textValue(row.PdfPath); key != "" {
		if err := s.files.Delete(ctx, key); err != nil {
			s.logger.Warn("delete article pdf failed", "article_id", id, "key", key, "error", err)
		}
	}
	s.audit(ctx, AuditLogParams{
		Action:   ActionArticleDelete,
		Entity:   "article",
		EntityID: id,
		Detail:   map[string]any{"titulo": row.Title},
	})
	return nil
}
