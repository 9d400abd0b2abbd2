package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const listEvents = `-- name: ListEvents :many
SELECT id, name, code, description, created_at
FROM events
ORDER BY name, code
`

func (q *Queries) ListEvents(ctx context.Context) ([]Event, error) {
	rows, err := q.db.Query(ctx, listEvents)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Event{}
	for rows.Next() {
		var i Event
		if err := rows.Scan(&i.ID, &i.Name, &i.Code, &i.Description, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getEvent = `-- name: GetEvent :one
SELECT id, name, code, description, created_at
FROM events
WHERE id = $1
`

func (q *Queries) GetEvent(ctx context.Context, id pgtype.UUID) (Event, error) {
	row := q.db.QueryRow(ctx, getEvent, id)
	var i Event
	err := row.Scan(&i.ID, &i.Name, &i.Code, &i.Description, &i.CreatedAt)
	return i, err
}

const getEventByCode = `-- name: GetEventByCode :one
SELECT id, name, code, description, created_at
FROM events
WHERE lower(code) = lower($1)
`

func (q *Queries) GetEventByCode(ctx context.Context, code string) (Event, error) {
	row := q.db.QueryRow(ctx, getEventByCode, code)
	var i Event
	err := row.Scan(&i.ID, &i.Name, &i.Code, &i.Description, &i.CreatedAt)
	return i, err
}

const insertEvent = `-- name: InsertEvent :one
INSERT INTO events (id, name, code, description)
VALUES ($1, $2, $3, $4)
RETURNING id, name, code, description, created_at
`

type InsertEventParams struct {
	ID          pgtype.UUID
	Name        string
	Code        string
	Description pgtype.Text
}

func (q *Queries) InsertEvent(ctx context.Context, arg InsertEventParams) (Event, error) {
	row := q.db.QueryRow(ctx, insertEvent, arg.ID, arg.Name, arg.Code, arg.Description)
	var i Event
	err := row.Scan(&i.ID, &i.Name, &i.Code, &i.Description, &i.CreatedAt)
	return i, err
}

const updateEvent = `-- name: UpdateEvent :one
UPDATE events
SET name = $2, code = $3, description = $4
WHERE id = $1
RETURNING id, name, code, description, created_at
`

type UpdateEventParams struct {
	ID          pgtype.UUID
	Name        string
	Code        string
	Description pgtype.Text
}

func (q *Queries) UpdateEvent(ctx context.Context, arg UpdateEventParams) (Event, error) {
	row := q.db.QueryRow(ctx, updateEvent, arg.ID, arg.Name, arg.Code, arg.Description)
	var i Event
	err := row.Scan(&i.ID, &i.Name, &i.Code, &i.Description, &i.CreatedAt)
	return i, err
}

const deleteEvent = `-- name: DeleteEvent :execrows
DELETE FROM events WHERE id = $1
`

func (q *Queries) DeleteEvent(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteEvent, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countEditionsByEvent = `-- name: CountEditionsByEvent :one
SELECT count(*) FROM editions WHERE event_id = $1
`

func (q *Queries) CountEditionsByEvent(ctx context.Context, eventID pgtype.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countEditionsByEvent, eventID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
