package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gst-aqn42/TP1/internal/attachments"
	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/database"
	"github.com/gst-aqn42/TP1/internal/logging"
)

// errFileTooLarge is wrapped by uploads that exceed their size limit.
var errFileTooLarge = errors.New("file too large")

func fileTooLarge(limit int64) error {
	return catalog.ValidationError{
		Field:   "file",
		Message: fmt.Sprintf("%v: limit is %d bytes", errFileTooLarge, limit),
	}
}

// limitedReader fails once more than limit bytes have been read.
type limitedReader struct {
	r         io.Reader
	limit     int64
	remaining int64
}

func newLimitedReader(r io.Reader, limit int64) *limitedReader {
	return &limitedReader{r: r, limit: limit, remaining: limit}
}

func (l *limitedReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, fileTooLarge(l.limit)
	}
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return 0, fileTooLarge(l.limit)
	}
	return n, err
}

// checkPDF validates the file name and header of an uploaded PDF.
func checkPDF(filename string, r io.Reader) (io.Reader, error) {
	if filename != "" && !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return nil, catalog.ValidationError{Field: "pdf", Value: filename, Message: "not a pdf file"}
	}
	body, ok, err := attachments.SniffPDF(r)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	if !ok {
		return nil, catalog.ValidationError{Field: "pdf", Value: filename, Message: "not a pdf file"}
	}
	return body, nil
}

// AttachPDF stores a PDF for an existing Article, replacing any previous one.
func (s *Service) AttachPDF(ctx context.Context, articleID, filename string, r io.Reader) (catalog.Article, error) {
	row, err := s.getArticleRow(ctx, articleID)
	if err != nil {
		return catalog.Article{}, err
	}
	body, err := checkPDF(filename, r)
	if err != nil {
		return catalog.Article{}, err
	}

	if err := s.uploads.Acquire(ctx); err != nil {
		return catalog.Article{}, err
	}
	defer s.uploads.Release()

	article, err := s.storePDF(ctx, row, body)
	if err != nil {
		return catalog.Article{}, err
	}
	s.audit(ctx, AuditLogParams{
		Action:   ActionPDFUpload,
		Entity:   "article",
		EntityID: article.ID,
		Detail:   map[string]any{"filename": filename},
	})
	return article, nil
}

func (s *Service) storePDF(ctx context.Context, row database.Article, body io.Reader) (catalog.Article, error) {
	id := PgUUIDToString(row.ID)
	key := attachments.ArticleKey(id)

	size, err := s.files.Put(ctx, key, newLimitedReader(body, s.maxPDFSize))
	if err != nil {
		var ve catalog.ValidationError
		if errors.As(err, &ve) {
			return catalog.Article{}, ve
		}
		return catalog.Article{}, fmt.Errorf("store pdf: %w", err)
	}

	updated, err := s.q.SetArticlePdfPath(ctx, database.SetArticlePdfPathParams{
		ID:      row.ID,
		PdfPath: ToPgText(key),
	})
	if err != nil {
		return catalog.Article{}, notFound(err, "article", id)
	}
	logging.WithFields(ctx, "article_id", id, "key", key).Info("pdf stored", "bytes", size)

	year := 0
	if ed, err := s.q.GetEdition(ctx, updated.EditionID); err == nil {
		year = int(ed.Year)
	}
	return articleFromDB(updated, year), nil
}

// CreateArticleWithPDF creates an Article and stores its PDF. The Article is
// removed again when the PDF cannot be stored.
func (s *Service) CreateArticleWithPDF(ctx context.Context, a catalog.Article, filename string, r io.Reader) (catalog.Article, error) {
	body, err := checkPDF(filename, r)
	if err != nil {
		return catalog.Article{}, err
	}

	if err := s.uploads.Acquire(ctx); err != nil {
		return catalog.Article{}, err
	}
	defer s.uploads.Release()

	created, err := s.insertArticle(ctx, a, "")
	if err != nil {
		return catalog.Article{}, err
	}
	row, err := s.getArticleRow(ctx, created.ID)
	if err != nil {
		return catalog.Article{}, err
	}

	article, err := s.storePDF(ctx, row, body)
	if err != nil {
		if _, derr := s.q.DeleteArticle(ctx, row.ID); derr != nil {
			s.logger.Error("remove article after failed pdf upload", "article_id", created.ID, "error", derr)
		}
		return catalog.Article{}, err
	}
	s.audit(ctx, AuditLogParams{
		Action:   ActionArticleCreate,
		Entity:   "article",
		EntityID: article.ID,
		Detail:   map[string]any{"titulo": article.Title, "edicao_id": article.EditionID, "filename": filename},
	})
	s.announceArticle(ctx, article)
	return article, nil
}

// OpenPDF opens an Article's PDF. The caller closes the reader.
func (s *Service) OpenPDF(ctx context.Context, articleID string) (io.ReadCloser, catalog.Article, error) {
	row, err := s.getArticleRow(ctx, articleID)
	if err != nil {
		return nil, catalog.Article{}, err
	}
	key := textValue(row.PdfPath)
	if key == "" {
		return nil, catalog.Article{}, fmt.Errorf("article %s: no pdf attached: %w", articleID, catalog.ErrNotFound)
	}
	rc, err := s.files.Open(ctx, key)
	if errors.Is(err, attachments.ErrNotFound) {
		return nil, catalog.Article{}, fmt.Errorf("article %s: no pdf attached: %w", articleID, catalog.ErrNotFound)
	}
	if err != nil {
		return nil, catalog.Article{}, fmt.Errorf("open pdf: %w", err)
	}
	return rc, articleFromDB(row, 0), nil
}

// ImportBibTeX parses a .bib file and reconciles every entry into the
// catalog. Only one import runs at a time.
func (s *Service) ImportBibTeX(ctx context.Context, filename string, r io.Reader) (catalog.ImportStats, error) {
	if !strings.EqualFold(filepath.Ext(filename), ".bib") {
		return catalog.ImportStats{}, catalog.ValidationError{Field: "file", Value: filename, Message: "not a bibtex file (.bib)"}
	}
	if s.engine.Running() {
		return catalog.ImportStats{}, catalog.ErrImportInProgress
	}

	data, err := io.ReadAll(newLimitedReader(r, s.maxBibFileSize))
	if err != nil {
		var ve catalog.ValidationError
		if errors.As(err, &ve) {
			return catalog.ImportStats{}, ve
		}
		return catalog.ImportStats{}, fmt.Errorf("read bibtex: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return catalog.ImportStats{}, catalog.ValidationError{Field: "file", Value: filename, Message: "empty file"}
	}

	ctx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	log := logging.WithFields(ctx, "file", filename, "bytes", len(data))
	log.Info("bibtex import started")

	stats, err := s.engine.Import(ctx, s.parser.Parse(data))
	if err != nil {
		return catalog.ImportStats{}, err
	}

	log.Info("bibtex import finished",
		"total", stats.Total,
		"created", stats.ArticlesCreated,
		"duplicates", stats.Duplicates,
		"failures", stats.Failures,
	)
	s.audit(ctx, AuditLogParams{
		Action: ActionImport,
		Entity: "article",
		Detail: map[string]any{
			"filename":           filename,
			"total_entries":      stats.Total,
			"artigos_criados":    stats.ArticlesCreated,
			"eventos_criados":    stats.EventsCreated,
			"edicoes_criadas":    stats.EditionsCreated,
			"artigos_duplicados": stats.Duplicates,
			"falhas":             stats.Failures,
		},
	})
	return stats, nil
}
