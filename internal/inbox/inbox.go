// Package inbox imports a drop directory of BibTeX files.
//
// Every .bib file directly inside the directory is imported in name order.
// Imported files move to the Uploaded subdirectory; entries rejected with an
// error are written to "<name> - failed.csv" next to the file. Duplicates
// are counted in the stats but are not failures and are not reported.
// A file whose identical copy is already in Uploaded is removed without
// importing it again.
package inbox

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

// UploadedDir is the subdirectory imported files are moved to.
const UploadedDir = "Uploaded"

// ImportFunc imports the contents of one file.
type ImportFunc func(ctx context.Context, name string, data []byte) (catalog.ImportStats, error)

// FileResult is the outcome for one file.
type FileResult struct {
	File    string
	Stats   catalog.ImportStats
	Skipped bool // already uploaded
	Report  string
}

// Process imports every .bib file in dir with fn. It stops at the first
// file whose import fails; files processed before it keep their results.
func Process(ctx context.Context, dir string, fn ImportFunc, logger *slog.Logger) ([]FileResult, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".bib") {
			continue
		}
		names = append(names, e.Name())
	}
	slices.Sort(names)

	results := make([]FileResult, 0, len(names))
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("operation cancelled: %w", err)
		}
		res, err := processFile(ctx, dir, name, fn)
		if err != nil {
			return results, fmt.Errorf("%s: %w", name, err)
		}
		logger.Info("inbox file processed",
			"file", name,
			"skipped", res.Skipped,
			"created", res.Stats.ArticlesCreated,
			"duplicates", res.Stats.Duplicates,
			"failures", res.Stats.Failures,
		)
		results = append(results, res)
	}
	return results, nil
}

func processFile(ctx context.Context, dir, name string, fn ImportFunc) (FileResult, error) {
	path := filepath.Join(dir, name)
	res := FileResult{File: name}

	data, err := os.ReadFile(path)
	if err != nil {
		return res, fmt.Errorf("read file: %w", err)
	}

	uploaded := filepath.Join(dir, UploadedDir, name)
	if prev, err := os.ReadFile(uploaded); err == nil && bytes.Equal(prev, data) {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return res, fmt.Errorf("remove already-uploaded file: %w", err)
		}
		res.Skipped = true
		return res, nil
	}

	stats, err := fn(ctx, name, data)
	if err != nil {
		return res, err
	}
	res.Stats = stats

	if len(stats.Errors) > 0 {
		report := filepath.Join(dir, strings.TrimSuffix(name, filepath.Ext(name))+" - failed.csv")
		if err := writeReport(report, stats.Errors); err != nil {
			return res, fmt.Errorf("write failure report: %w", err)
		}
		res.Report = report
	}

	if err := os.MkdirAll(filepath.Join(dir, UploadedDir), 0o755); err != nil {
		return res, fmt.Errorf("create %s directory: %w", UploadedDir, err)
	}
	if err := os.Rename(path, uploaded); err != nil {
		return res, fmt.Errorf("move file: %w", err)
	}
	return res, nil
}

func writeReport(path string, failed []catalog.SkippedEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	_ = w.Write([]string{"entry", "line", "error"})
	for _, e := range failed {
		line := ""
		if e.Line > 0 {
			line = strconv.Itoa(e.Line)
		}
		_ = w.Write([]string{e.Entry, line, e.Reason})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
