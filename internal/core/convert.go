package core

// convert.go maps between the catalog domain types and the pgtype-based
// database rows.
//
// All ToPg* functions return pgtype values with Valid=false for empty or
// invalid input, letting the database store NULL.

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/database"
)

// dateLayouts are the accepted edition date formats, ISO first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	time.RFC3339,
}

// ToPgText converts a string to pgtype.Text.
// Returns invalid if the string is empty or only whitespace.
func ToPgText(s string) pgtype.Text {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

// ToPgDate converts a string to pgtype.Date.
func ToPgDate(s string) pgtype.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return pgtype.Date{Valid: false}
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return pgtype.Date{Time: t, Valid: true}
		}
	}
	return pgtype.Date{Valid: false}
}

// ToPgUUID converts a string to pgtype.UUID.
// Returns invalid if the string is empty or not a valid UUID.
func ToPgUUID(s string) pgtype.UUID {
	if s == "" {
		return pgtype.UUID{Valid: false}
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: parsed, Valid: true}
}

// PgUUIDToString converts a pgtype.UUID to its string representation.
// Returns empty string if the UUID is invalid.
func PgUUIDToString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}

func newPgUUID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}

func textValue(t pgtype.Text) string {
	if !t.Valid {
		return ""
	}
	return t.String
}

func dateValue(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

func numberText(n int) pgtype.Text {
	if n <= 0 {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: strconv.Itoa(n), Valid: true}
}

func numberValue(t pgtype.Text) int {
	if !t.Valid {
		return 0
	}
	n, _ := strconv.Atoi(strings.TrimSpace(t.String))
	return n
}

func eventFromDB(e database.Event) catalog.Event {
	return catalog.Event{
		ID:          PgUUIDToString(e.ID),
		Name:        e.Name,
		Code:        e.Code,
		Description: textValue(e.Description),
		CreatedAt:   e.CreatedAt.Time,
	}
}

func editionFromDB(e database.Edition) catalog.Edition {
	return catalog.Edition{
		ID:        PgUUIDToString(e.ID),
		EventID:   PgUUIDToString(e.EventID),
		Year:      int(e.Year),
		Location:  textValue(e.Location),
		Number:    numberValue(e.Number),
		StartDate: dateValue(e.StartDate),
		EndDate:   dateValue(e.EndDate),
	}
}

// articleFromDB converts a row; year is the owning edition's year, or zero
// when the caller does not know it.
func articleFromDB(a database.Article, year int) catalog.Article {
	out := catalog.Article{
		ID:        PgUUIDToString(a.ID),
		Title:     a.Title,
		Authors:   []catalog.Author{},
		EditionID: PgUUIDToString(a.EditionID),
		Abstract:  textValue(a.Abstract),
		Keywords:  a.Keywords,
		Pages:     textValue(a.Pages),
		DOI:       textValue(a.Doi),
		PDFPath:   textValue(a.PdfPath),
		Year:      year,
	}
	if len(a.Authors) > 0 {
		_ = json.Unmarshal(a.Authors, &out.Authors)
	}
	return out
}

func searchResultFromDB(r database.SearchArticlesRow) catalog.SearchResult {
	return catalog.SearchResult{
		Article:     articleFromDB(r.Article, int(r.EditionYear)),
		EventName:   r.EventName,
		EventCode:   r.EventCode,
		EditionYear: int(r.EditionYear),
	}
}

func subscriptionFromDB(s database.Subscription) catalog.Subscription {
	return catalog.Subscription{
		Email:        s.Email,
		Active:       s.Active,
		SubscribedAt: s.SubscribedAt.Time,
	}
}

func authorSubscriptionFromDB(s database.AuthorSubscription) catalog.AuthorSubscription {
	return catalog.AuthorSubscription{
		ID:           PgUUIDToString(s.ID),
		Email:        s.Email,
		AuthorName:   s.AuthorName,
		Active:       s.Active,
		SubscribedAt: s.SubscribedAt.Time,
	}
}

func authorsJSON(authors []catalog.Author) []byte {
	if authors == nil {
		authors = []catalog.Author{}
	}
	b, _ := json.Marshal(authors)
	return b
}

func cleanKeywords(kws []string) []string {
	out := make([]string, 0, len(kws))
	for _, k := range kws {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
