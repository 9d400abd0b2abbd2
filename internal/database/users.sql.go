package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const getUserByUsername = `-- name: GetUserByUsername :one
SELECT id, username, password_hash, is_admin, created_at
FROM users
WHERE username = $1
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByUsername, username)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash, &i.IsAdmin, &i.CreatedAt)
	return i, err
}

const upsertUser = `-- name: UpsertUser :one
INSERT INTO users (id, username, password_hash, is_admin)
VALUES ($1, $2, $3, $4)
ON CONFLICT (username) DO UPDATE
SET password_hash = EXCLUDED.password_hash, is_admin = EXCLUDED.is_admin
RETURNING id, username, password_hash, is_admin, created_at
`

type UpsertUserParams struct {
	ID           pgtype.UUID
	Username     string
	PasswordHash string
	IsAdmin      bool
}

func (q *Queries) UpsertUser(ctx context.Context, arg UpsertUserParams) (User, error) {
	row := q.db.QueryRow(ctx, upsertUser, arg.ID, arg.Username, arg.PasswordHash, arg.IsAdmin)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash, &i.IsAdmin, &i.CreatedAt)
	return i, err
}

const insertUser = `-- name: InsertUser :one
INSERT INTO users (id, username, password_hash, is_admin)
VALUES ($1, $2, $3, $4)
RETURNING id, username, password_hash, is_admin, created_at
`

type InsertUserParams struct {
	ID           pgtype.UUID
	Username     string
	PasswordHash string
	IsAdmin      bool
}

func (q *Queries) InsertUser(ctx context.Context, arg InsertUserParams) (User, error) {
	row := q.db.QueryRow(ctx, insertUser, arg.ID, arg.Username, arg.PasswordHash, arg.IsAdmin)
	var i User
	err := row.Scan(&i.ID, &i.Username, &i.PasswordHash, &i.IsAdmin, &i.CreatedAt)
	return i, err
}
