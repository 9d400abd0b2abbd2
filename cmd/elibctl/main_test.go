package main

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gst-aqn42/TP1/internal/attachments"
	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/client"
	"github.com/gst-aqn42/TP1/internal/config"
	"github.com/gst-aqn42/TP1/internal/core"
	"github.com/gst-aqn42/TP1/internal/database"
	"github.com/gst-aqn42/TP1/internal/logging"
	"github.com/gst-aqn42/TP1/internal/metrics"
	"github.com/gst-aqn42/TP1/internal/web"
)

const (
	adminUser = "admin"
	adminPass = "s3cret-pass"
)

const refsBib = `
@inproceedings{a1,
  title = {Mutation Testing at Scale},
  author = {Ana Silva and Bruno Lima},
  booktitle = {Anais do Simpósio Brasileiro de Engenharia de Software},
  year = 2023
}
@inproceedings{a2,
  title = {mutation testing at scale},
  author = {Bruno Lima and Ana Silva},
  booktitle = {SBES},
  year = 2023
}
@inproceedings{bad, title = {No Year}, author = {X}, booktitle = {SBES}}
`

type cliTestEnv struct {
	url   string
	token string
	api   *client.Client
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.RequestTimeout = 10 * time.Second
	cfg.Import.MaxPDFSize = 1 << 20
	cfg.Import.MaxBibFileSize = 1 << 20

	files, err := attachments.NewDiskStore(t.TempDir())
	require.NoError(t, err)
	svc := core.NewService(database.NewMemory(), files, core.Options{
		Logger:         logging.Discard(),
		JWTSecret:      []byte("0123456789abcdef0123"),
		MaxPDFSize:     cfg.Import.MaxPDFSize,
		MaxBibFileSize: cfg.Import.MaxBibFileSize,
	})
	require.NoError(t, svc.SeedAdmin(context.Background(), adminUser, adminPass))

	srv := web.NewServer(svc, cfg, metrics.New())
	hs := httptest.NewServer(srv.Router())
	t.Cleanup(func() {
		hs.Close()
		_ = srv.Shutdown(context.Background())
	})

	api := client.New(hs.URL)
	token, err := api.Login(context.Background(), adminUser, adminPass)
	require.NoError(t, err)
	return &cliTestEnv{url: hs.URL, token: token, api: api}
}

func runCLI(t *testing.T, env *cliTestEnv, token string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--url", env.url, "--token", token}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeBib(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(refsBib), 0o644))
	return path
}

func TestCLICatalogLifecycle(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()

	out, _, err := runCLI(t, env, env.token, "events", "create", "--name", "Simpósio Brasileiro de Redes", "--code", "SBRC")
	require.NoError(t, err)
	assert.Contains(t, out, "Event created")

	out, _, err = runCLI(t, env, "", "events", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "SBRC")

	events, err := env.api.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	eventID := events[0].ID

	out, _, err = runCLI(t, env, env.token, "editions", "create", "--event", eventID, "--year", "2024", "--location", "Niterói")
	require.NoError(t, err)
	assert.Contains(t, out, "Edition created")

	editions, err := env.api.ListEditionsOf(ctx, eventID)
	require.NoError(t, err)
	require.Len(t, editions, 1)
	editionID := editions[0].ID

	out, _, err = runCLI(t, env, env.token, "articles", "create",
		"--edition", editionID, "--title", "Routing Under Churn",
		"--author", "Ana Silva", "--author", "Carlos Souza")
	require.NoError(t, err)
	assert.Contains(t, out, "Article created")

	out, _, err = runCLI(t, env, "", "browse", "--event", "sbrc", "--year", "2024")
	require.NoError(t, err)
	assert.Contains(t, out, "Edition 2024: 1 articles")
	assert.Contains(t, out, "Routing Under Churn")
	assert.Contains(t, out, "Ana Silva; Carlos Souza")

	articles, err := env.api.ListArticlesOf(ctx, editionID)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	out, _, err = runCLI(t, env, env.token, "articles", "update", articles[0].ID, "--pages", "10-20")
	require.NoError(t, err)
	assert.Contains(t, out, "Article updated")
	updated, err := env.api.GetArticle(ctx, articles[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "10-20", updated.Pages)
	assert.Equal(t, "Routing Under Churn", updated.Title)

	_, stderr, err := runCLI(t, env, env.token, "events", "delete", eventID)
	assert.ErrorIs(t, err, catalog.ErrConflict)
	assert.Contains(t, stderr, "error:")

	out, _, err = runCLI(t, env, env.token, "articles", "delete", articles[0].ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Article deleted")
	out, _, err = runCLI(t, env, env.token, "editions", "delete", editionID)
	require.NoError(t, err)
	assert.Contains(t, out, "Edition deleted")
	out, _, err = runCLI(t, env, env.token, "events", "delete", eventID)
	require.NoError(t, err)
	assert.Contains(t, out, "Event deleted")

	_, err = env.api.GetEvent(ctx, eventID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCLIMutationWithoutTokenIsReported(t *testing.T) {
	env := setupCLITestEnv(t)

	_, stderr, err := runCLI(t, env, "", "events", "create", "--name", "X", "--code", "X")
	require.Error(t, err)
	var rep *reportedError
	assert.True(t, errors.As(err, &rep))
	assert.Contains(t, stderr, "error:")
	assert.ErrorIs(t, err, catalog.ErrUnauthorized)
}

func TestCLIImportLocalThenRemote(t *testing.T) {
	env := setupCLITestEnv(t)
	path := writeBib(t, t.TempDir(), "refs.bib")

	out, _, err := runCLI(t, env, env.token, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "== refs.bib ==")
	assert.Contains(t, out, "Entries processed: 3")
	assert.Contains(t, out, "Articles created: 1")
	assert.Contains(t, out, "Duplicates skipped: 1")
	assert.Contains(t, out, "Failures: 1")

	out, _, err = runCLI(t, env, env.token, "import", "--remote", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Articles created: 0")
	assert.Contains(t, out, "Duplicates skipped: 2")

	out, _, err = runCLI(t, env, "", "search", "mutation")
	require.NoError(t, err)
	assert.Contains(t, out, "Mutation Testing at Scale")
}

func TestCLIImportDirectory(t *testing.T) {
	env := setupCLITestEnv(t)
	dir := t.TempDir()
	writeBib(t, dir, "refs.bib")

	out, _, err := runCLI(t, env, env.token, "import", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Articles created: 1")
	assert.Contains(t, out, "Failed entries written to")
	assert.FileExists(t, filepath.Join(dir, "Uploaded", "refs.bib"))
	assert.FileExists(t, filepath.Join(dir, "refs - failed.csv"))
	assert.NoFileExists(t, filepath.Join(dir, "refs.bib"))
}

func TestCLIImportNeedsInput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, env.token, "import")
	assert.Error(t, err)
}

func TestCLIPublicPages(t *testing.T) {
	env := setupCLITestEnv(t)
	ctx := context.Background()
	_, err := env.api.UploadBibTeX(ctx, "refs.bib", strings.NewReader(refsBib))
	require.NoError(t, err)

	events, err := env.api.ListEvents(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	code := events[0].Code

	out, _, err := runCLI(t, env, "", "public", code)
	require.NoError(t, err)
	assert.Contains(t, out, "Editions: 1")

	out, _, err = runCLI(t, env, "", "public", code, "2023")
	require.NoError(t, err)
	assert.Contains(t, out, "Articles: 1")
	assert.Contains(t, out, "Mutation Testing at Scale")

	_, _, err = runCLI(t, env, "", "public", code, "next-year")
	assert.Error(t, err)

	_, _, err = runCLI(t, env, "", "public", "NOPE")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestCLISubscriptions(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "subscribe", "Reader@Example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "Subscribed reader@example.com")

	out, _, err = runCLI(t, env, "", "subscribers")
	require.NoError(t, err)
	assert.Equal(t, "1\n", out)

	_, _, err = runCLI(t, env, "", "unsubscribe", "reader@example.com")
	require.NoError(t, err)

	out, _, err = runCLI(t, env, "", "subscribers")
	require.NoError(t, err)
	assert.Equal(t, "0\n", out)
}

func TestCLILogin(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "", "login", "-u", adminUser, "-p", adminPass)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "."), 3)

	_, _, err = runCLI(t, env, "", "login", "-u", adminUser, "-p", "wrong")
	assert.Error(t, err)
}

func TestPrintTableWritesCSVWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	printTable(&buf, []string{"ID", "Name"}, [][]string{{"1", "alpha"}, {"2"}}, nil)
	out := buf.String()
	assert.Contains(t, out, "ID,Name")
	assert.Contains(t, out, "1,alpha")
	assert.NotContains(t, out, "╭")
}
