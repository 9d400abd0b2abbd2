package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Event struct {
	ID          pgtype.UUID
	Name        string
	Code        string
	Description pgtype.Text
	CreatedAt   pgtype.Timestamptz
}

type Edition struct {
	ID        pgtype.UUID
	EventID   pgtype.UUID
	Year      int32
	Location  pgtype.Text
	Number    pgtype.Text
	StartDate pgtype.Date
	EndDate   pgtype.Date
	CreatedAt pgtype.Timestamptz
}

type Article struct {
	ID        pgtype.UUID
	EditionID pgtype.UUID
	Title     string
	Authors   []byte
	Abstract  pgtype.Text
	Keywords  []string
	Pages     pgtype.Text
	Doi       pgtype.Text
	PdfPath   pgtype.Text
	CreatedAt pgtype.Timestamptz
}

type Subscription struct {
	Email         string
	Active        bool
	SubscribedAt  pgtype.Timestamptz
	ReactivatedAt pgtype.Timestamptz
}

type AuthorSubscription struct {
	ID           pgtype.UUID
	Email        string
	AuthorName   string
	Active       bool
	SubscribedAt pgtype.Timestamptz
}

type User struct {
	ID           pgtype.UUID
	Username     string
	PasswordHash string
	IsAdmin      bool
	CreatedAt    pgtype.Timestamptz
}

type AuditLog struct {
	ID        pgtype.UUID
	Action    string
	Severity  string
	Entity    string
	EntityID  pgtype.Text
	UserName  pgtype.Text
	IpAddress pgtype.Text
	UserAgent pgtype.Text
	Detail    []byte
	CreatedAt pgtype.Timestamptz
}
