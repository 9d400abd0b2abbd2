package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/gst-aqn42/TP1/internal/bibtex"
	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/inbox"
	"github.com/gst-aqn42/TP1/internal/reconcile"
)

const importLockName = "elibctl-import.lock"

func newImportCommand(ctx *commandContext) *cobra.Command {
	var remote bool
	var venuesPath, dir string
	cmd := &cobra.Command{
		Use:   "import [FILE...]",
		Short: "Import BibTeX files into the catalog",
		Long: `Imports BibTeX files. By default entries are parsed and reconciled here
and created one by one through the API. With --remote each file is uploaded
to the service, which imports it in a single request.

With --dir every .bib file in the directory is imported and moved to its
Uploaded subdirectory; entries that failed are listed in "<name> - failed.csv".`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" && len(args) == 0 {
				return errors.New("nothing to import: pass files or --dir")
			}

			var importFn inbox.ImportFunc
			if remote {
				importFn = func(c context.Context, name string, data []byte) (catalog.ImportStats, error) {
					resp, err := ctx.apiClient().UploadBibTeX(c, name, bytes.NewReader(data))
					return resp.Stats, err
				}
			} else {
				unlock, err := lockLocalImport()
				if err != nil {
					return err
				}
				defer unlock()

				fn, err := ctx.localImporter(cmd, venuesPath)
				if err != nil {
					return err
				}
				importFn = fn
			}

			out := cmd.OutOrStdout()
			if dir != "" {
				results, err := inbox.Process(cmd.Context(), dir, importFn, ctx.logger(cmd))
				for _, res := range results {
					if res.Skipped {
						fmt.Fprintf(out, "%s: already uploaded, skipped\n", res.File)
						continue
					}
					printImport(cmd, res.File, res.Stats)
					if res.Report != "" {
						fmt.Fprintf(out, "Failed entries written to %s\n", res.Report)
					}
				}
				if err != nil {
					return err
				}
			}

			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				stats, err := importFn(cmd.Context(), filepath.Base(path), data)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				printImport(cmd, filepath.Base(path), stats)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&remote, "remote", false, "Upload files to the service instead of importing locally")
	cmd.Flags().StringVar(&venuesPath, "venues", "", "YAML venue catalogue for local imports")
	cmd.Flags().StringVar(&dir, "dir", "", "Import every .bib file in this directory")
	return cmd
}

// localImporter parses and reconciles files in-process against the API.
func (c *commandContext) localImporter(cmd *cobra.Command, venuesPath string) (inbox.ImportFunc, error) {
	venues := bibtex.DefaultVenues()
	if venuesPath != "" {
		v, err := bibtex.LoadVenues(venuesPath)
		if err != nil {
			return nil, err
		}
		venues = v
	}
	parser := bibtex.NewParser(venues)
	engine := reconcile.NewEngine(c.apiClient(), reconcile.WithLogger(c.logger(cmd)))
	return func(ctx context.Context, _ string, data []byte) (catalog.ImportStats, error) {
		return engine.Import(ctx, parser.Parse(data))
	}, nil
}

// lockLocalImport keeps two local imports on this machine from
// reconciling against the same catalog at once.
func lockLocalImport() (func(), error) {
	lock := flock.New(filepath.Join(os.TempDir(), importLockName))
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire import lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("another import is running (lock %s): %w", lock.Path(), catalog.ErrImportInProgress)
	}
	return func() { _ = lock.Unlock() }, nil
}

func printImport(cmd *cobra.Command, name string, stats catalog.ImportStats) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "== %s ==\n", name)
	fmt.Fprintln(out, stats.Summary())
}
