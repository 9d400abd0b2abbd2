package notify

import (
	"context"
	"log/slog"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

// Log records notices in the log instead of sending them. It is the
// default backend.
type Log struct {
	logger *slog.Logger
}

// NewLog returns a Log writing to logger.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// NotifyNewArticle logs the notice for to.
func (l *Log) NotifyNewArticle(ctx context.Context, to, author string, a catalog.Article) error {
	subject, _ := Compose(author, a)
	l.logger.InfoContext(ctx, "article notice",
		"to", to,
		"author", author,
		"article_id", a.ID,
		"subject", subject,
	)
	return nil
}
