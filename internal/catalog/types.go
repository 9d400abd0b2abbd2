// Package catalog defines the conference catalog domain shared by the
// server and the client: Events own yearly Editions, Editions own Articles.
// This package has no transport or storage dependencies.
package catalog

import (
	"strings"
	"time"
)

// Year bounds accepted for Editions and imported entries.
const (
	MinYear = 1900
	MaxYear = 2100
)

// Event is a conference series, identified by a globally unique code.
type Event struct {
	ID          string    `json:"_id"`
	Name        string    `json:"nome"`
	Code        string    `json:"sigla"`
	Description string    `json:"descricao,omitempty"`
	CreatedAt   time.Time `json:"criado_em,omitzero"`
}

// Edition is one yearly occurrence of an Event.
type Edition struct {
	ID        string `json:"_id"`
	EventID   string `json:"evento_id"`
	Year      int    `json:"ano"`
	Location  string `json:"local"`
	Number    int    `json:"numero,omitempty"`
	StartDate string `json:"data_inicio,omitempty"`
	EndDate   string `json:"data_fim,omitempty"`
}

// Author is a single entry of an Article's ordered author list.
type Author struct {
	Name string `json:"nome"`
}

// Article is a paper published in an Edition.
type Article struct {
	ID        string   `json:"_id"`
	Title     string   `json:"titulo"`
	Authors   []Author `json:"autores"`
	EditionID string   `json:"edicao_id"`
	Abstract  string   `json:"resumo,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Pages     string   `json:"paginas,omitempty"`
	DOI       string   `json:"doi,omitempty"`
	PDFPath   string   `json:"pdf_path,omitempty"`
	// Year mirrors the owning Edition's year; filled on read, ignored on write.
	Year int `json:"ano,omitempty"`
}

// AuthorNames returns the author names in order.
func (a Article) AuthorNames() []string {
	names := make([]string, len(a.Authors))
	for i, au := range a.Authors {
		names[i] = au.Name
	}
	return names
}

// AuthorsFromNames builds an author list, skipping blank names.
func AuthorsFromNames(names []string) []Author {
	authors := make([]Author, 0, len(names))
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			authors = append(authors, Author{Name: n})
		}
	}
	return authors
}

// SearchResult is an Article enriched with its Edition and Event.
type SearchResult struct {
	Article
	EventName   string `json:"evento_nome"`
	EventCode   string `json:"evento_sigla"`
	EditionYear int    `json:"edicao_ano"`
}

// SearchKind selects the fields a search query is matched against.
type SearchKind string

const (
	SearchTitle  SearchKind = "titulo"
	SearchAuthor SearchKind = "autor"
	SearchEvent  SearchKind = "evento"
	SearchAll    SearchKind = "tudo"
)

// ParseSearchKind returns the kind for s, defaulting to SearchAll.
func ParseSearchKind(s string) SearchKind {
	switch SearchKind(strings.ToLower(strings.TrimSpace(s))) {
	case SearchTitle:
		return SearchTitle
	case SearchAuthor:
		return SearchAuthor
	case SearchEvent:
		return SearchEvent
	default:
		return SearchAll
	}
}

// SearchQuery holds the parameters of an article search.
type SearchQuery struct {
	Text   string
	Kind   SearchKind
	Author string
	Event  string
}

// SearchResponse is the body of GET /artigos/busca.
type SearchResponse struct {
	Results []SearchResult `json:"resultados"`
	Total   int            `json:"total"`
	Query   string         `json:"query"`
	Kind    SearchKind     `json:"tipo"`
}

// Subscription is a newsletter subscription.
type Subscription struct {
	Email        string    `json:"email"`
	Active       bool      `json:"ativo"`
	SubscribedAt time.Time `json:"data_inscricao"`
}

// AuthorSubscription asks for a notice whenever an Article naming the
// author is added.
type AuthorSubscription struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	AuthorName   string    `json:"nome_autor"`
	Active       bool      `json:"ativo"`
	SubscribedAt time.Time `json:"data_inscricao"`
}

// Account is a user account as shown to clients; the password hash never
// leaves the service.
type Account struct {
	ID       string `json:"user_id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// EventPage is the public homepage of an Event: the Event and its Editions,
// newest first.
type EventPage struct {
	Event    Event     `json:"evento"`
	Editions []Edition `json:"edicoes"`
	Total    int       `json:"total_edicoes"`
}

// EditionPage is the public homepage of one Edition.
type EditionPage struct {
	Event    Event     `json:"evento"`
	Edition  Edition   `json:"edicao"`
	Articles []Article `json:"artigos"`
	Total    int       `json:"total_artigos"`
}
