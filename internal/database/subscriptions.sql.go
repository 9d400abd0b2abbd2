package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getSubscription = `-- name: GetSubscription :one
SELECT email, active, subscribed_at, reactivated_at
FROM subscriptions
WHERE email = $1
`

func (q *Queries) GetSubscription(ctx context.Context, email string) (Subscription, error) {
	row := q.db.QueryRow(ctx, getSubscription, email)
	var i Subscription
	err := row.Scan(&i.Email, &i.Active, &i.SubscribedAt, &i.ReactivatedAt)
	return i, err
}

const insertSubscription = `-- name: InsertSubscription :one
INSERT INTO subscriptions (email) VALUES ($1)
RETURNING email, active, subscribed_at, reactivated_at
`

func (q *Queries) InsertSubscription(ctx context.Context, email string) (Subscription, error) {
	row := q.db.QueryRow(ctx, insertSubscription, email)
	var i Subscription
	err := row.Scan(&i.Email, &i.Active, &i.SubscribedAt, &i.ReactivatedAt)
	return i, err
}

const setSubscriptionActive = `-- name: SetSubscriptionActive :one
UPDATE subscriptions
SET active = $2,
    reactivated_at = CASE WHEN $2 AND NOT active THEN now() ELSE reactivated_at END
WHERE email = $1
RETURNING email, active, subscribed_at, reactivated_at
`

type SetSubscriptionActiveParams struct {
	Email  string
	Active bool
}

func (q *Queries) SetSubscriptionActive(ctx context.Context, arg SetSubscriptionActiveParams) (Subscription, error) {
	row := q.db.QueryRow(ctx, setSubscriptionActive, arg.Email, arg.Active)
	var i Subscription
	err := row.Scan(&i.Email, &i.Active, &i.SubscribedAt, &i.ReactivatedAt)
	return i, err
}

const countActiveSubscriptions = `-- name: CountActiveSubscriptions :one
SELECT count(*) FROM subscriptions WHERE active
`

func (q *Queries) CountActiveSubscriptions(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countActiveSubscriptions)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listActiveSubscriptions = `-- name: ListActiveSubscriptions :many
SELECT email, active, subscribed_at, reactivated_at
FROM subscriptions
WHERE active
ORDER BY subscribed_at, email
`

func (q *Queries) ListActiveSubscriptions(ctx context.Context) ([]Subscription, error) {
	rows, err := q.db.Query(ctx, listActiveSubscriptions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Subscription
	for rows.Next() {
		var i Subscription
		if err := rows.Scan(&i.Email, &i.Active, &i.SubscribedAt, &i.ReactivatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const insertAuthorSubscription = `-- name: InsertAuthorSubscription :one
INSERT INTO author_subscriptions (id, email, author_name)
VALUES ($1, $2, $3)
RETURNING id, email, author_name, active, subscribed_at
`

type InsertAuthorSubscriptionParams struct {
	ID         pgtype.UUID
	Email      string
	AuthorName string
}

func (q *Queries) InsertAuthorSubscription(ctx context.Context, arg InsertAuthorSubscriptionParams) (AuthorSubscription, error) {
	row := q.db.QueryRow(ctx, insertAuthorSubscription, arg.ID, arg.Email, arg.AuthorName)
	var i AuthorSubscription
	err := row.Scan(&i.ID, &i.Email, &i.AuthorName, &i.Active, &i.SubscribedAt)
	return i, err
}

const deactivateAuthorSubscription = `-- name: DeactivateAuthorSubscription :execrows
UPDATE author_subscriptions SET active = false WHERE id = $1 AND active
`

func (q *Queries) DeactivateAuthorSubscription(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deactivateAuthorSubscription, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const listActiveAuthorSubscriptions = `-- name: ListActiveAuthorSubscriptions :many
SELECT id, email, author_name, active, subscribed_at
FROM author_subscriptions
WHERE active
ORDER BY subscribed_at, email
`

func (q *Queries) ListActiveAuthorSubscriptions(ctx context.Context) ([]AuthorSubscription, error) {
	rows, err := q.db.Query(ctx, listActiveAuthorSubscriptions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AuthorSubscription
	for rows.Next() {
		var i AuthorSubscription
		if err := rows.Scan(&i.ID, &i.Email, &i.AuthorName, &i.Active, &i.SubscribedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
