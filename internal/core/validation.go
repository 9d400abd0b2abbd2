package core

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail trims and lowercases an address and checks its shape.
func NormalizeEmail(raw string) (string, error) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", catalog.Required("email")
	}
	if !emailRegex.MatchString(email) {
		return "", catalog.ValidationError{Field: "email", Value: raw, Message: "invalid email address"}
	}
	return email, nil
}

func validateID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return catalog.Required(field)
	}
	if !ToPgUUID(id).Valid {
		return fmt.Errorf("%s %q: %w", field, id, catalog.ErrNotFound)
	}
	return nil
}

// ValidateEvent checks the mandatory Event fields.
func ValidateEvent(ev catalog.Event) error {
	if strings.TrimSpace(ev.Name) == "" {
		return catalog.Required("nome")
	}
	if strings.TrimSpace(ev.Code) == "" {
		return catalog.Required("sigla")
	}
	return nil
}

// ValidateEdition checks the Edition's owner, year and optional dates.
// The location is optional; imported entries often carry no address.
func ValidateEdition(ed catalog.Edition) error {
	if strings.TrimSpace(ed.EventID) == "" {
		return catalog.Required("evento_id")
	}
	if ed.Year < catalog.MinYear || ed.Year > catalog.MaxYear {
		return catalog.ValidationError{
			Field:   "ano",
			Value:   fmt.Sprint(ed.Year),
			Message: fmt.Sprintf("invalid year: must be between %d and %d", catalog.MinYear, catalog.MaxYear),
		}
	}
	for field, v := range map[string]string{"data_inicio": ed.StartDate, "data_fim": ed.EndDate} {
		if v != "" && !ToPgDate(v).Valid {
			return catalog.ValidationError{Field: field, Value: v, Message: "invalid date, use YYYY-MM-DD"}
		}
	}
	start, end := ToPgDate(ed.StartDate), ToPgDate(ed.EndDate)
	if start.Valid && end.Valid && end.Time.Before(start.Time) {
		return catalog.ValidationError{Field: "data_fim", Value: ed.EndDate, Message: "end date before start date"}
	}
	return nil
}

// ValidateArticle checks title, authors and owning Edition.
func ValidateArticle(a catalog.Article) error {
	if strings.TrimSpace(a.Title) == "" {
		return catalog.Required("titulo")
	}
	if len(catalog.AuthorsFromNames(a.AuthorNames())) == 0 {
		return catalog.Required("autores")
	}
	if strings.TrimSpace(a.EditionID) == "" {
		return catalog.Required("edicao_id")
	}
	return nil
}
