package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const editionColumns = `id, event_id, year, location, number, start_date, end_date, created_at`

func scanEdition(row pgx.Row) (Edition, error) {
	var i Edition
	err := row.Scan(
		&i.ID,
		&i.EventID,
		&i.Year,
		&i.Location,
		&i.Number,
		&i.StartDate,
		&i.EndDate,
		&i.CreatedAt,
	)
	return i, err
}

const listEditionsByEvent = `-- name: ListEditionsByEvent :many
SELECT ` + editionColumns + `
FROM editions
WHERE event_id = $1
ORDER BY year DESC
`

func (q *Queries) ListEditionsByEvent(ctx context.Context, eventID pgtype.UUID) ([]Edition, error) {
	rows, err := q.db.Query(ctx, listEditionsByEvent, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Edition{}
	for rows.Next() {
		i, err := scanEdition(rows)
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

const getEdition = `-- name: GetEdition :one
SELECT ` + editionColumns + `
FROM editions
WHERE id = $1
`

func (q *Queries) GetEdition(ctx context.Context, id pgtype.UUID) (Edition, error) {
	return scanEdition(q.db.QueryRow(ctx, getEdition, id))
}

const getEditionByEventYear = `-- name: GetEditionByEventYear :one
SELECT ` + editionColumns + `
FROM editions
WHERE event_id = $1 AND year = $2
`

type GetEditionByEventYearParams struct {
	EventID pgtype.UUID
	Year    int32
}

func (q *Queries) GetEditionByEventYear(ctx context.Context, arg GetEditionByEventYearParams) (Edition, error) {
	return scanEdition(q.db.QueryRow(ctx, getEditionByEventYear, arg.EventID, arg.Year))
}

const insertEdition = `-- name: InsertEdition :one
INSERT INTO editions (id, event_id, year, location, number, start_date, end_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + editionColumns

type InsertEditionParams struct {
	ID        pgtype.UUID
	EventID   pgtype.UUID
	Year      int32
	Location  pgtype.Text
	Number    pgtype.Text
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

func (q *Queries) InsertEdition(ctx context.Context, arg InsertEditionParams) (Edition, error) {
	return scanEdition(q.db.QueryRow(ctx, insertEdition,
		arg.ID,
		arg.EventID,
		arg.Year,
		arg.Location,
		arg.Number,
		arg.StartDate,
		arg.EndDate,
	))
}

const updateEdition = `-- name: UpdateEdition :one
UPDATE editions
SET event_id = $2, year = $3, location = $4, number = $5, start_date = $6, end_date = $7
WHERE id = $1
RETURNING ` + editionColumns

type UpdateEditionParams struct {
	ID        pgtype.UUID
	EventID   pgtype.UUID
	Year      int32
	Location  pgtype.Text
	Number    pgtype.Text
	StartDate pgtype.Date
	EndDate   pgtype.Date
}

func (q *Queries) UpdateEdition(ctx context.Context, arg UpdateEditionParams) (Edition, error) {
	return scanEdition(q.db.QueryRow(ctx, updateEdition,
		arg.ID,
		arg.EventID,
		arg.Year,
		arg.Location,
		arg.Number,
		arg.StartDate,
		arg.EndDate,
	))
}

const deleteEdition = `-- name: DeleteEdition :execrows
DELETE FROM editions WHERE id = $1
`

func (q *Queries) DeleteEdition(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteEdition, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countArticlesByEdition = `-- name: CountArticlesByEdition :one
SELECT count(*) FROM articles WHERE edition_id = $1
`

func (q *Queries) CountArticlesByEdition(ctx context.Context, editionID pgtype.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countArticlesByEdition, editionID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
