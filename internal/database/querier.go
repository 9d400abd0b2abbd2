package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the full set of catalog queries. Single-row lookups return
// pgx.ErrNoRows when nothing matches; constraint failures are returned as
// *pgconn.PgError.
type Querier interface {
	ListEvents(ctx context.Context) ([]Event, error)
	GetEvent(ctx context.Context, id pgtype.UUID) (Event, error)
	GetEventByCode(ctx context.Context, code string) (Event, error)
	InsertEvent(ctx context.Context, arg InsertEventParams) (Event, error)
	UpdateEvent(ctx context.Context, arg UpdateEventParams) (Event, error)
	DeleteEvent(ctx context.Context, id pgtype.UUID) (int64, error)
	CountEditionsByEvent(ctx context.Context, eventID pgtype.UUID) (int64, error)

	ListEditionsByEvent(ctx context.Context, eventID pgtype.UUID) ([]Edition, error)
	GetEdition(ctx context.Context, id pgtype.UUID) (Edition, error)
	GetEditionByEventYear(ctx context.Context, arg GetEditionByEventYearParams) (Edition, error)
	InsertEdition(ctx context.Context, arg InsertEditionParams) (Edition, error)
	UpdateEdition(ctx context.Context, arg UpdateEditionParams) (Edition, error)
	DeleteEdition(ctx context.Context, id pgtype.UUID) (int64, error)
	CountArticlesByEdition(ctx context.Context, editionID pgtype.UUID) (int64, error)

	ListArticlesByEdition(ctx context.Context, editionID pgtype.UUID) ([]Article, error)
	GetArticle(ctx context.Context, id pgtype.UUID) (Article, error)
	InsertArticle(ctx context.Context, arg InsertArticleParams) (Article, error)
	UpdateArticle(ctx context.Context, arg UpdateArticleParams) (Article, error)
	SetArticlePdfPath(ctx context.Context, arg SetArticlePdfPathParams) (Article, error)
	DeleteArticle(ctx context.Context, id pgtype.UUID) (int64, error)
	SearchArticles(ctx context.Context, arg SearchArticlesParams) ([]SearchArticlesRow, error)

	GetSubscription(ctx context.Context, email string) (Subscription, error)
	InsertSubscription(ctx context.Context, email string) (Subscription, error)
	SetSubscriptionActive(ctx context.Context, arg SetSubscriptionActiveParams) (Subscription, error)
	CountActiveSubscriptions(ctx context.Context) (int64, error)
	ListActiveSubscriptions(ctx context.Context) ([]Subscription, error)

	InsertAuthorSubscription(ctx context.Context, arg InsertAuthorSubscriptionParams) (AuthorSubscription, error)
	DeactivateAuthorSubscription(ctx context.Context, id pgtype.UUID) (int64, error)
	ListActiveAuthorSubscriptions(ctx context.Context) ([]AuthorSubscription, error)

	GetUserByUsername(ctx context.Context, username string) (User, error)
	UpsertUser(ctx context.Context, arg UpsertUserParams) (User, error)
	InsertUser(ctx context.Context, arg InsertUserParams) (User, error)

	InsertAuditLog(ctx context.Context, arg InsertAuditLogParams) (AuditLog, error)
	ListAuditLogs(ctx context.Context, arg ListAuditLogsParams) ([]AuditLog, error)
	PurgeAuditLogs(ctx context.Context, olderThanDays int32) (int64, error)
}

var (
	_ Querier = (*Queries)(nil)
	_ Querier = (*Memory)(nil)
)
