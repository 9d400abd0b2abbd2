package database

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const auditColumns = `id, action, severity, entity, entity_id, user_name, ip_address, user_agent, detail, created_at`

func scanAuditLog(row pgx.Row) (AuditLog, error) {
	var i AuditLog
	err := row.Scan(
		&i.ID,
		&i.Action,
		&i.Severity,
		&i.Entity,
		&i.EntityID,
		&i.UserName,
		&i.IpAddress,
		&i.UserAgent,
		&i.Detail,
		&i.CreatedAt,
	)
	return i, err
}

const insertAuditLog = `-- name: InsertAuditLog :one
INSERT INTO audit_log (id, action, severity, entity, entity_id, user_name, ip_address, user_agent, detail)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING ` + auditColumns

type InsertAuditLogParams struct {
	ID        pgtype.UUID
	Action    string
	Severity  string
	Entity    string
	EntityID  pgtype.Text
	UserName  pgtype.Text
	IpAddress pgtype.Text
	UserAgent pgtype.Text
	Detail    []byte
}

func (q *Queries) InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) (AuditLog, error) {
	return scanAuditLog(q.db.QueryRow(ctx, insertAuditLog,
		arg.ID,
		arg.Action,
		arg.Severity,
		arg.Entity,
		arg.EntityID,
		arg.UserName,
		arg.IpAddress,
		arg.UserAgent,
		arg.Detail,
	))
}

const listAuditLogs = `-- name: ListAuditLogs :many
SELECT ` + auditColumns + `
FROM audit_log
WHERE ($1 = '' OR entity = $1)
ORDER BY created_at DESC
LIMIT $2
`

type ListAuditLogsParams struct {
	Entity string
	Limit  int32
}

func (q *Queries) ListAuditLogs(ctx context.Context, arg ListAuditLogsParams) ([]AuditLog, error) {
	rows, err := q.db.Query(ctx, listAuditLogs, arg.Entity, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []AuditLog{}
	for rows.Next() {
		i, err := scanAuditLog(rows)
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

const purgeAuditLogs = `-- name: PurgeAuditLogs :execrows
DELETE FROM audit_log
WHERE created_at < now() - make_interval(days => $1)
`

func (q *Queries) PurgeAuditLogs(ctx context.Context, olderThanDays int32) (int64, error) {
	result, err := q.db.Exec(ctx, purgeAuditLogs, olderThanDays)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}
