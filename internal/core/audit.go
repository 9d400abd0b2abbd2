package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gst-aqn42/TP1/internal/database"
)

// AuditAction represents the type of action being audited.
type AuditAction string

const (
	ActionEventCreate   AuditAction = "event_create"
	ActionEventUpdate   AuditAction = "event_update"
	ActionEventDelete   AuditAction = "event_delete"
	ActionEditionCreate AuditAction = "edition_create"
	ActionEditionUpdate AuditAction = "edition_update"
	ActionEditionDelete AuditAction = "edition_delete"
	ActionArticleCreate AuditAction = "article_create"
	ActionArticleUpdate AuditAction = "article_update"
	ActionArticleDelete AuditAction = "article_delete"
	ActionPDFUpload     AuditAction = "pdf_upload"
	ActionImport        AuditAction = "bibtex_import"
	ActionSubscribe     AuditAction = "subscribe"
	ActionUnsubscribe   AuditAction = "unsubscribe"
	ActionLogin         AuditAction = "login"

	ActionAuthorSubscribe   AuditAction = "author_subscribe"
	ActionAuthorUnsubscribe AuditAction = "author_unsubscribe"
	ActionUserRegister      AuditAction = "user_register"
)

// AuditSeverity represents the severity level of an audit entry.
type AuditSeverity string

const (
	SeverityLow      AuditSeverity = "low"
	SeverityMedium   AuditSeverity = "medium"
	SeverityHigh     AuditSeverity = "high"
	SeverityCritical AuditSeverity = "critical"
)

// AuditEntry represents a single audit log entry.
type AuditEntry struct {
	ID        string         `json:"id"`
	Action    AuditAction    `json:"action"`
	Severity  AuditSeverity  `json:"severity"`
	Entity    string         `json:"entity"`
	EntityID  string         `json:"entityId,omitempty"`
	UserName  string         `json:"userName,omitempty"`
	IPAddress string         `json:"ipAddress,omitempty"`
	UserAgent string         `json:"userAgent,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// AuditLogParams contains parameters for creating an audit log entry.
// The caller, IP address and user agent are taken from the context.
type AuditLogParams struct {
	Action   AuditAction
	Entity   string
	EntityID string
	Detail   map[string]any
}

// determineSeverity returns the appropriate severity for an action.
func determineSeverity(action AuditAction) AuditSeverity {
	switch action {
	case ActionImport, ActionEventDelete, ActionEditionDelete, ActionUserRegister:
		return SeverityHigh
	case ActionArticleDelete, ActionPDFUpload:
		return SeverityMedium
	case ActionSubscribe, ActionUnsubscribe, ActionLogin,
		ActionAuthorSubscribe, ActionAuthorUnsubscribe:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// LogAudit creates a new audit log entry.
func (s *Service) LogAudit(ctx context.Context, params AuditLogParams) (*AuditEntry, error) {
	var detail []byte
	if params.Detail != nil {
		var err error
		detail, err = json.Marshal(params.Detail)
		if err != nil {
			detail = nil
		}
	}

	user := ""
	if c := ClaimsFromContext(ctx); c != nil {
		user = c.Username
	}

	row, err := s.q.InsertAuditLog(ctx, database.InsertAuditLogParams{
		ID:        newPgUUID(),
		Action:    string(params.Action),
		Severity:  string(determineSeverity(params.Action)),
		Entity:    params.Entity,
		EntityID:  ToPgText(params.EntityID),
		UserName:  ToPgText(user),
		IpAddress: ToPgText(GetIPAddressFromContext(ctx)),
		UserAgent: ToPgText(GetUserAgentFromContext(ctx)),
		Detail:    detail,
	})
	if err != nil {
		return nil, err
	}
	return auditEntryFromDB(row), nil
}

// audit records an entry; a failure is logged and never fails the caller.
func (s *Service) audit(ctx context.Context, params AuditLogParams) {
	if _, err := s.LogAudit(ctx, params); err != nil {
		s.logger.Warn("audit log write failed", "action", params.Action, "entity_id", params.EntityID, "error", err)
	}
}

// ListAudit returns the newest audit entries, optionally for one entity
// kind ("event", "edition", "article", ...).
func (s *Service) ListAudit(ctx context.Context, entity string, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	rows, err := s.q.ListAuditLogs(ctx, database.ListAuditLogsParams{Entity: entity, Limit: int32(limit)})
	if err != nil {
		return nil, err
	}
	entries := make([]AuditEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, *auditEntryFromDB(row))
	}
	return entries, nil
}

// DefaultHistoryLimit is the default number of audit entries returned.
const DefaultHistoryLimit = 100

func auditEntryFromDB(row database.AuditLog) *AuditEntry {
	entry := &AuditEntry{
		ID:        PgUUIDToString(row.ID),
		Action:    AuditAction(row.Action),
		Severity:  AuditSeverity(row.Severity),
		Entity:    row.Entity,
		EntityID:  textValue(row.EntityID),
		UserName:  textValue(row.UserName),
		IPAddress: textValue(row.IpAddress),
		UserAgent: textValue(row.UserAgent),
		CreatedAt: row.CreatedAt.Time,
	}
	if row.Detail != nil {
		_ = json.Unmarshal(row.Detail, &entry.Detail)
	}
	return entry
}
