package database

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

// Memory is an in-process Querier with the same constraint behavior as the
// Postgres schema. It backs "memory://" database URLs and service tests.
type Memory struct {
	mu            sync.RWMutex
	now           func() time.Time
	events        map[[16]byte]Event
	editions      map[[16]byte]Edition
	articles      map[[16]byte]Article
	subscriptions map[string]Subscription
	authorSubs    map[[16]byte]AuthorSubscription
	users         map[string]User
	audit         []AuditLog
}

// NewMemory returns an empty Memory.
func NewMemory() *Memory {
	return &Memory{
		now:           time.Now,
		events:        make(map[[16]byte]Event),
		editions:      make(map[[16]byte]Edition),
		articles:      make(map[[16]byte]Article),
		subscriptions: make(map[string]Subscription),
		authorSubs:    make(map[[16]byte]AuthorSubscription),
		users:         make(map[string]User),
	}
}

// SetClock replaces the clock used for created_at columns.
func (m *Memory) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

func (m *Memory) timestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: m.now(), Valid: true}
}

func violation(code, constraint string) error {
	return &pgconn.PgError{Code: code, ConstraintName: constraint, Message: constraint + " violated"}
}

// =============================================================================
// Events
// =============================================================================

func (m *Memory) ListEvents(ctx context.Context) ([]Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]Event, 0, len(m.events))
	for _, ev := range m.events {
		items = append(items, ev)
	}
	slices.SortFunc(items, func(a, b Event) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.Code, b.Code))
	})
	return items, nil
}

func (m *Memory) GetEvent(ctx context.Context, id pgtype.UUID) (Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ev, ok := m.events[id.Bytes]
	if !ok || !id.Valid {
		return Event{}, pgx.ErrNoRows
	}
	return ev, nil
}

func (m *Memory) GetEventByCode(ctx context.Context, code string) (Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ev := range m.events {
		if strings.EqualFold(ev.Code, code) {
			return ev, nil
		}
	}
	return Event{}, pgx.ErrNoRows
}

func (m *Memory) codeTaken(code string, except [16]byte) bool {
	for id, ev := range m.events {
		if id != except && strings.ToLower(ev.Code) == strings.ToLower(code) {
			return true
		}
	}
	return false
}

func (m *Memory) InsertEvent(ctx context.Context, arg InsertEventParams) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[arg.ID.Bytes]; ok {
		return Event{}, violation(CodeUniqueViolation, "events_pkey")
	}
	if m.codeTaken(arg.Code, arg.ID.Bytes) {
		return Event{}, violation(CodeUniqueViolation, "events_code_lower_idx")
	}
	ev := Event{
		ID:          arg.ID,
		Name:        arg.Name,
		Code:        arg.Code,
		Description: arg.Description,
		CreatedAt:   m.timestamp(),
	}
	m.events[arg.ID.Bytes] = ev
	return ev, nil
}

func (m *Memory) UpdateEvent(ctx context.Context, arg UpdateEventParams) (Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev, ok := m.events[arg.ID.Bytes]
	if !ok {
		return Event{}, pgx.ErrNoRows
	}
	if m.codeTaken(arg.Code, arg.ID.Bytes) {
		return Event{}, violation(CodeUniqueViolation, "events_code_lower_idx")
	}
	ev.Name = arg.Name
	ev.Code = arg.Code
	ev.Description = arg.Description
	m.events[arg.ID.Bytes] = ev
	return ev, nil
}

func (m *Memory) DeleteEvent(ctx context.Context, id pgtype.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.events[id.Bytes]; !ok {
		return 0, nil
	}
	for _, ed := range m.editions {
		if ed.EventID.Bytes == id.Bytes {
			return 0, violation(CodeForeignKeyViolation, "editions_event_id_fkey")
		}
	}
	delete(m.events, id.Bytes)
	return 1, nil
}

func (m *Memory) CountEditionsByEvent(ctx context.Context, eventID pgtype.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, ed := range m.editions {
		if ed.EventID.Bytes == eventID.Bytes {
			n++
		}
	}
	return n, nil
}

// =============================================================================
// Editions
// =============================================================================

func (m *Memory) ListEditionsByEvent(ctx context.Context, eventID pgtype.UUID) ([]Edition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := []Edition{}
	for _, ed := range m.editions {
		if ed.EventID.Bytes == eventID.Bytes {
			items = append(items, ed)
		}
	}
	slices.SortFunc(items, func(a, b Edition) int { return cmp.Compare(b.Year, a.Year) })
	return items, nil
}

func (m *Memory) GetEdition(ctx context.Context, id pgtype.UUID) (Edition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ed, ok := m.editions[id.Bytes]
	if !ok || !id.Valid {
		return Edition{}, pgx.ErrNoRows
	}
	return ed, nil
}

func (m *Memory) GetEditionByEventYear(ctx context.Context, arg GetEditionByEventYearParams) (Edition, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, ed := range m.editions {
		if ed.EventID.Bytes == arg.EventID.Bytes && ed.Year == arg.Year {
			return ed, nil
		}
	}
	return Edition{}, pgx.ErrNoRows
}

func (m *Memory) checkEdition(id, eventID pgtype.UUID, year int32) error {
	if _, ok := m.events[eventID.Bytes]; !ok {
		return violation(CodeForeignKeyViolation, "editions_event_id_fkey")
	}
	for other, ed := range m.editions {
		if other != id.Bytes && ed.EventID.Bytes == eventID.Bytes && ed.Year == year {
			return violation(CodeUniqueViolation, "editions_event_id_year_key")
		}
	}
	return nil
}

func (m *Memory) InsertEdition(ctx context.Context, arg InsertEditionParams) (Edition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.editions[arg.ID.Bytes]; ok {
		return Edition{}, violation(CodeUniqueViolation, "editions_pkey")
	}
	if err := m.checkEdition(arg.ID, arg.EventID, arg.Year); err != nil {
		return Edition{}, err
	}
	ed := Edition{
		ID:        arg.ID,
		EventID:   arg.EventID,
		Year:      arg.Year,
		Location:  arg.Location,
		Number:    arg.Number,
		StartDate: arg.StartDate,
		EndDate:   arg.EndDate,
		CreatedAt: m.timestamp(),
	}
	m.editions[arg.ID.Bytes] = ed
	return ed, nil
}

func (m *Memory) UpdateEdition(ctx context.Context, arg UpdateEditionParams) (Edition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ed, ok := m.editions[arg.ID.Bytes]
	if !ok {
		return Edition{}, pgx.ErrNoRows
	}
	if err := m.checkEdition(arg.ID, arg.EventID, arg.Year); err != nil {
		return Edition{}, err
	}
	ed.EventID = arg.EventID
	ed.Year = arg.Year
	ed.Location = arg.Location
	ed.Number = arg.Number
	ed.StartDate = arg.StartDate
	ed.EndDate = arg.EndDate
	m.editions[arg.ID.Bytes] = ed
	return ed, nil
}

func (m *Memory) DeleteEdition(ctx context.Context, id pgtype.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.editions[id.Bytes]; !ok {
		return 0, nil
	}
	for _, a := range m.articles {
		if a.EditionID.Bytes == id.Bytes {
			return 0, violation(CodeForeignKeyViolation, "articles_edition_id_fkey")
		}
	}
	delete(m.editions, id.Bytes)
	return 1, nil
}

func (m *Memory) CountArticlesByEdition(ctx context.Context, editionID pgtype.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, a := range m.articles {
		if a.EditionID.Bytes == editionID.Bytes {
			n++
		}
	}
	return n, nil
}

// =============================================================================
// Articles
// =============================================================================

func cloneArticle(a Article) Article {
	a.Authors = slices.Clone(a.Authors)
	a.Keywords = slices.Clone(a.Keywords)
	return a
}

func (m *Memory) ListArticlesByEdition(ctx context.Context, editionID pgtype.UUID) ([]Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := []Article{}
	for _, a := range m.articles {
		if a.EditionID.Bytes == editionID.Bytes {
			items = append(items, cloneArticle(a))
		}
	}
	slices.SortFunc(items, func(a, b Article) int { return cmp.Compare(a.Title, b.Title) })
	return items, nil
}

func (m *Memory) GetArticle(ctx context.Context, id pgtype.UUID) (Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[id.Bytes]
	if !ok || !id.Valid {
		return Article{}, pgx.ErrNoRows
	}
	return cloneArticle(a), nil
}

func (m *Memory) InsertArticle(ctx context.Context, arg InsertArticleParams) (Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[arg.ID.Bytes]; ok {
		return Article{}, violation(CodeUniqueViolation, "articles_pkey")
	}
	if _, ok := m.editions[arg.EditionID.Bytes]; !ok {
		return Article{}, violation(CodeForeignKeyViolation, "articles_edition_id_fkey")
	}
	keywords := arg.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	a := Article{
		ID:        arg.ID,
		EditionID: arg.EditionID,
		Title:     arg.Title,
		Authors:   arg.Authors,
		Abstract:  arg.Abstract,
		Keywords:  keywords,
		Pages:     arg.Pages,
		Doi:       arg.Doi,
		PdfPath:   arg.PdfPath,
		CreatedAt: m.timestamp(),
	}
	a = cloneArticle(a)
	m.articles[arg.ID.Bytes] = a
	return cloneArticle(a), nil
}

func (m *Memory) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[arg.ID.Bytes]
	if !ok {
		return Article{}, pgx.ErrNoRows
	}
	if _, ok := m.editions[arg.EditionID.Bytes]; !ok {
		return Article{}, violation(CodeForeignKeyViolation, "articles_edition_id_fkey")
	}
	a.EditionID = arg.EditionID
	a.Title = arg.Title
	a.Authors = slices.Clone(arg.Authors)
	a.Abstract = arg.Abstract
	a.Keywords = slices.Clone(arg.Keywords)
	if a.Keywords == nil {
		a.Keywords = []string{}
	}
	a.Pages = arg.Pages
	a.Doi = arg.Doi
	m.articles[arg.ID.Bytes] = a
	return cloneArticle(a), nil
}

func (m *Memory) SetArticlePdfPath(ctx context.Context, arg SetArticlePdfPathParams) (Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.articles[arg.ID.Bytes]
	if !ok {
		return Article{}, pgx.ErrNoRows
	}
	a.PdfPath = arg.PdfPath
	m.articles[arg.ID.Bytes] = a
	return cloneArticle(a), nil
}

func (m *Memory) DeleteArticle(ctx context.Context, id pgtype.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id.Bytes]; !ok {
		return 0, nil
	}
	delete(m.articles, id.Bytes)
	return 1, nil
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func authorMatches(raw []byte, term string) bool {
	var authors []struct {
		Name string `json:"nome"`
	}
	if err := json.Unmarshal(raw, &authors); err != nil {
		return false
	}
	for _, a := range authors {
		if containsFold(a.Name, term) {
			return true
		}
	}
	return false
}

func (m *Memory) SearchArticles(ctx context.Context, arg SearchArticlesParams) ([]SearchArticlesRow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	kind := func(k string) bool { return arg.Kind == k || arg.Kind == "tudo" }
	items := []SearchArticlesRow{}
	for _, a := range m.articles {
		ed, ok := m.editions[a.EditionID.Bytes]
		if !ok {
			continue
		}
		ev, ok := m.events[ed.EventID.Bytes]
		if !ok {
			continue
		}
		eventMatch := func(term string) bool {
			return containsFold(ev.Name, term) || containsFold(ev.Code, term)
		}
		hit := (kind("titulo") && containsFold(a.Title, arg.Query)) ||
			(kind("autor") && authorMatches(a.Authors, arg.Query)) ||
			(kind("evento") && eventMatch(arg.Query))
		if !hit {
			continue
		}
		if arg.Author != "" && !authorMatches(a.Authors, arg.Author) {
			continue
		}
		if arg.Event != "" && !eventMatch(arg.Event) {
			continue
		}
		items = append(items, SearchArticlesRow{
			Article:     cloneArticle(a),
			EventName:   ev.Name,
			EventCode:   ev.Code,
			EditionYear: ed.Year,
		})
	}
	slices.SortFunc(items, func(a, b SearchArticlesRow) int {
		return cmp.Or(cmp.Compare(b.EditionYear, a.EditionYear), cmp.Compare(a.Title, b.Title))
	})
	if arg.Limit > 0 && len(items) > int(arg.Limit) {
		items = items[:arg.Limit]
	}
	return items, nil
}

// =============================================================================
// Subscriptions
// =============================================================================

func (m *Memory) GetSubscription(ctx context.Context, email string) (Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sub, ok := m.subscriptions[email]
	if !ok {
		return Subscription{}, pgx.ErrNoRows
	}
	return sub, nil
}

func (m *Memory) InsertSubscription(ctx context.Context, email string) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subscriptions[email]; ok {
		return Subscription{}, violation(CodeUniqueViolation, "subscriptions_pkey")
	}
	sub := Subscription{Email: email, Active: true, SubscribedAt: m.timestamp()}
	m.subscriptions[email] = sub
	return sub, nil
}

func (m *Memory) SetSubscriptionActive(ctx context.Context, arg SetSubscriptionActiveParams) (Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.subscriptions[arg.Email]
	if !ok {
		return Subscription{}, pgx.ErrNoRows
	}
	if arg.Active && !sub.Active {
		sub.ReactivatedAt = m.timestamp()
	}
	sub.Active = arg.Active
	m.subscriptions[arg.Email] = sub
	return sub, nil
}

func (m *Memory) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, sub := range m.subscriptions {
		if sub.Active {
			n++
		}
	}
	return n, nil
}

func (m *Memory) ListActiveSubscriptions(ctx context.Context) ([]Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []Subscription
	for _, sub := range m.subscriptions {
		if sub.Active {
			items = append(items, sub)
		}
	}
	slices.SortFunc(items, func(a, b Subscription) int {
		return cmp.Or(a.SubscribedAt.Time.Compare(b.SubscribedAt.Time), cmp.Compare(a.Email, b.Email))
	})
	return items, nil
}

// =============================================================================
// Author subscriptions
// =============================================================================

func (m *Memory) InsertAuthorSubscription(ctx context.Context, arg InsertAuthorSubscriptionParams) (AuthorSubscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sub := range m.authorSubs {
		if sub.Active && sub.Email == arg.Email && strings.EqualFold(sub.AuthorName, arg.AuthorName) {
			return AuthorSubscription{}, violation(CodeUniqueViolation, "author_subscriptions_active_idx")
		}
	}
	sub := AuthorSubscription{
		ID:           arg.ID,
		Email:        arg.Email,
		AuthorName:   arg.AuthorName,
		Active:       true,
		SubscribedAt: m.timestamp(),
	}
	m.authorSubs[arg.ID.Bytes] = sub
	return sub, nil
}

func (m *Memory) DeactivateAuthorSubscription(ctx context.Context, id pgtype.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sub, ok := m.authorSubs[id.Bytes]
	if !ok || !id.Valid || !sub.Active {
		return 0, nil
	}
	sub.Active = false
	m.authorSubs[id.Bytes] = sub
	return 1, nil
}

func (m *Memory) ListActiveAuthorSubscriptions(ctx context.Context) ([]AuthorSubscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var items []AuthorSubscription
	for _, sub := range m.authorSubs {
		if sub.Active {
			items = append(items, sub)
		}
	}
	slices.SortFunc(items, func(a, b AuthorSubscription) int {
		return cmp.Or(a.SubscribedAt.Time.Compare(b.SubscribedAt.Time), cmp.Compare(a.Email, b.Email))
	})
	return items, nil
}

// =============================================================================
// Users
// =============================================================================

func (m *Memory) GetUserByUsername(ctx context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (m *Memory) UpsertUser(ctx context.Context, arg UpsertUserParams) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[arg.Username]
	if !ok {
		u = User{ID: arg.ID, Username: arg.Username, CreatedAt: m.timestamp()}
	}
	u.PasswordHash = arg.PasswordHash
	u.IsAdmin = arg.IsAdmin
	m.users[arg.Username] = u
	return u, nil
}

func (m *Memory) InsertUser(ctx context.Context, arg InsertUserParams) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[arg.Username]; ok {
		return User{}, violation(CodeUniqueViolation, "users_username_key")
	}
	u := User{
		ID:           arg.ID,
		Username:     arg.Username,
		PasswordHash: arg.PasswordHash,
		IsAdmin:      arg.IsAdmin,
		CreatedAt:    m.timestamp(),
	}
	m.users[arg.Username] = u
	return u, nil
}

// =============================================================================
// Audit log
// =============================================================================

func (m *Memory) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) (AuditLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := AuditLog{
		ID:        arg.ID,
		Action:    arg.Action,
		Severity:  arg.Severity,
		Entity:    arg.Entity,
		EntityID:  arg.EntityID,
		UserName:  arg.UserName,
		IpAddress: arg.IpAddress,
		UserAgent: arg.UserAgent,
		Detail:    slices.Clone(arg.Detail),
		CreatedAt: m.timestamp(),
	}
	m.audit = append(m.audit, entry)
	return entry, nil
}

func (m *Memory) ListAuditLogs(ctx context.Context, arg ListAuditLogsParams) ([]AuditLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := []AuditLog{}
	for i := len(m.audit) - 1; i >= 0; i-- {
		entry := m.audit[i]
		if arg.Entity != "" && entry.Entity != arg.Entity {
			continue
		}
		items = append(items, entry)
		if arg.Limit > 0 && len(items) == int(arg.Limit) {
			break
		}
	}
	return items, nil
}

func (m *Memory) PurgeAuditLogs(ctx context.Context, olderThanDays int32) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := m.now().AddDate(0, 0, -int(olderThanDays))
	kept := m.audit[:0]
	var purged int64
	for _, entry := range m.audit {
		if entry.CreatedAt.Time.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, entry)
	}
	m.audit = kept
	return purged, nil
}
