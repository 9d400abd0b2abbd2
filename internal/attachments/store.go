// Package attachments stores article PDFs, on local disk or in S3.
package attachments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when no object exists under a key.
var ErrNotFound = errors.New("attachment not found")

// pdfMagic is the header every PDF file starts with.
var pdfMagic = []byte("%PDF-")

// Store persists attachment bytes under slash-separated keys.
type Store interface {
	Put(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// ArticleKey returns the key an article's PDF is stored under.
func ArticleKey(articleID string) string {
	return path.Join("articles", articleID+".pdf")
}

// cleanKey rejects keys that are empty or escape the store root.
func cleanKey(key string) (string, error) {
	k := path.Clean("/" + strings.TrimSpace(key))
	k = strings.TrimPrefix(k, "/")
	if k == "" || k == "." {
		return "", fmt.Errorf("invalid attachment key %q", key)
	}
	return k, nil
}

// SniffPDF reads the first bytes of r and reports whether they carry the PDF
// header. The returned reader yields the complete original stream.
func SniffPDF(r io.Reader) (io.Reader, bool, error) {
	head := make([]byte, len(pdfMagic))
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, false, err
	}
	head = head[:n]
	return io.MultiReader(bytes.NewReader(head), r), bytes.Equal(head, pdfMagic), nil
}
