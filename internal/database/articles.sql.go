package database

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const articleColumns = `id, edition_id, title, authors, abstract, keywords, pages, doi, pdf_path, created_at`

func scanArticle(row pgx.Row) (Article, error) {
	var i Article
	err := row.Scan(
		&i.ID,
		&i.EditionID,
		&i.Title,
		&i.Authors,
		&i.Abstract,
		&i.Keywords,
		&i.Pages,
		&i.Doi,
		&i.PdfPath,
		&i.CreatedAt,
	)
	return i, err
}

const listArticlesByEdition = `-- name: ListArticlesByEdition :many
SELECT ` + articleColumns + `
FROM articles
WHERE edition_id = $1
ORDER BY title
`

func (q *Queries) ListArticlesByEdition(ctx context.Context, editionID pgtype.UUID) ([]Article, error) {
	rows, err := q.db.Query(ctx, listArticlesByEdition, editionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Article{}
	for rows.Next() {
		i, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getArticle = `-- name: GetArticle :one
SELECT ` + articleColumns + `
FROM articles
WHERE id = $1
`

func (q *Queries) GetArticle(ctx context.Context, id pgtype.UUID) (Article, error) {
	return scanArticle(q.db.QueryRow(ctx, getArticle, id))
}

const insertArticle = `-- name: InsertArticle :one
INSERT INTO articles (id, edition_id, title, authors, abstract, keywords, pages, doi, pdf_path)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + articleColumns

type InsertArticleParams struct {
	ID        pgtype.UUID
	EditionID pgtype.UUID
	Title     string
	Authors   []byte
	Abstract  pgtype.Text
	Keywords  []string
	Pages     pgtype.Text
	Doi       pgtype.Text
	PdfPath   pgtype.Text
}

func (q *Queries) InsertArticle(ctx context.Context, arg InsertArticleParams) (Article, error) {
	return scanArticle(q.db.QueryRow(ctx, insertArticle,
		arg.ID,
		arg.EditionID,
		arg.Title,
		arg.Authors,
		arg.Abstract,
		arg.Keywords,
		arg.Pages,
		arg.Doi,
		arg.PdfPath,
	))
}

const updateArticle = `-- name: UpdateArticle :one
UPDATE articles
SET edition_id = $2, title = $3, authors = $4, abstract = $5, keywords = $6, pages = $7, doi = $8
WHERE id = $1
RETURNING ` + articleColumns

type UpdateArticleParams struct {
	ID        pgtype.UUID
	EditionID pgtype.UUID
	Title     string
	Authors   []byte
	Abstract  pgtype.Text
	Keywords  []string
	Pages     pgtype.Text
	Doi       pgtype.Text
}

func (q *Queries) UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error) {
	return scanArticle(q.db.QueryRow(ctx, updateArticle,
		arg.ID,
		arg.EditionID,
		arg.Title,
		arg.Authors,
		arg.Abstract,
		arg.Keywords,
		arg.Pages,
		arg.Doi,
	))
}

const setArticlePdfPath = `-- name: SetArticlePdfPath :one
UPDATE articles SET pdf_path = $2
WHERE id = $1
RETURNING ` + articleColumns

type SetArticlePdfPathParams struct {
	ID      pgtype.UUID
	PdfPath pgtype.Text
}

func (q *Queries) SetArticlePdfPath(ctx context.Context, arg SetArticlePdfPathParams) (Article, error) {
	return scanArticle(q.db.QueryRow(ctx, setArticlePdfPath, arg.ID, arg.PdfPath))
}

const deleteArticle = `-- name: DeleteArticle :execrows
DELETE FROM articles WHERE id = $1
`

func (q *Queries) DeleteArticle(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteArticle, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const searchArticles = `-- name: SearchArticles :many
SELECT a.id, a.edition_id, a.title, a.authors, a.abstract, a.keywords, a.pages, a.doi, a.pdf_path, a.created_at,
       e.name, e.code, ed.year
FROM articles a
JOIN editions ed ON ed.id = a.edition_id
JOIN events e ON e.id = ed.event_id
WHERE (
       ($2 IN ('titulo', 'tudo') AND a.title ILIKE $1)
    OR ($2 IN ('autor', 'tudo') AND EXISTS (
           SELECT 1 FROM jsonb_array_elements(a.authors) au WHERE au->>'nome' ILIKE $1))
    OR ($2 IN ('evento', 'tudo') AND (e.name ILIKE $1 OR e.code ILIKE $1))
)
AND ($3 = '' OR EXISTS (
       SELECT 1 FROM jsonb_array_elements(a.authors) au WHERE au->>'nome' ILIKE $3))
AND ($4 = '' OR e.code ILIKE $4 OR e.name ILIKE $4)
ORDER BY ed.year DESC, a.title
LIMIT $5
`

// SearchArticlesParams holds raw search terms; the query matches each one
// as a case-insensitive substring. Kind is one of titulo, autor, evento,
// tudo. Empty Author and Event disable those filters.
type SearchArticlesParams struct {
	Query  string
	Kind   string
	Author string
	Event  string
	Limit  int32
}

type SearchArticlesRow struct {
	Article
	EventName   string
	EventCode   string
	EditionYear int32
}

func (q *Queries) SearchArticles(ctx context.Context, arg SearchArticlesParams) ([]SearchArticlesRow, error) {
	rows, err := q.db.Query(ctx, searchArticles,
		containsPattern(arg.Query),
		arg.Kind,
		optionalPattern(arg.Author),
		optionalPattern(arg.Event),
		arg.Limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []SearchArticlesRow{}
	for rows.Next() {
		var i SearchArticlesRow
		if err := rows.Scan(
			&i.ID,
			&i.EditionID,
			&i.Title,
			&i.Authors,
			&i.Abstract,
			&i.Keywords,
			&i.Pages,
			&i.Doi,
			&i.PdfPath,
			&i.CreatedAt,
			&i.EventName,
			&i.EventCode,
			&i.EditionYear,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns s into an ILIKE pattern matching it as a substring.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func optionalPattern(s string) string {
	if s == "" {
		return ""
	}
	return containsPattern(s)
}
