// Package core provides the business logic of the conference catalog.
//
// This package holds every rule the catalog enforces, independent of the
// HTTP layer. It is used by the web handlers, by the batch importer and by
// tests without modification. It depends only on [database.Querier] and
// [attachments.Store], so the same code runs against Postgres, the
// in-memory database, local disk or S3.
//
// # Architecture
//
// The package is organized around several key concepts:
//
//   - Service: The single entry point for Event, Edition and Article CRUD,
//     search, public pages, PDF attachments, imports, subscriptions and
//     accounts. Build one with [NewService].
//   - Ownership: Events own Editions and Editions own Articles. Writes
//     check the parent exists before touching the database.
//   - Upload limiter: [UploadLimiter] bounds concurrent PDF writes.
//   - Notifications: new Articles are announced to the addresses following
//     one of their authors through an [ArticleNotifier].
//   - Audit: every mutation is recorded with a severity.
//
// A typical caller:
//
//	svc := core.NewService(q, files, core.Options{
//	    Logger:    slog.Default(),
//	    JWTSecret: []byte(secret),
//	    Notifier:  notify.NewLog(slog.Default()),
//	})
//	ev, err := svc.CreateEvent(ctx, catalog.Event{Code: "sbes", Name: "SBES"})
//
// # Ownership Rules
//
// Event codes are unique ignoring case. An Edition belongs to exactly one
// Event and (Event, year) is unique; its location is optional. Deleting an
// Event with Editions, or an Edition with Articles, fails with
// [catalog.ErrConflict]. A write naming a parent that does not exist fails
// with a [catalog.ConsistencyError].
//
// # Batch Import
//
// [Service.ImportBibTeX] parses the file with the bibtex package and hands
// the entries to a reconcile.Engine writing through the service. The flow is:
//
//  1. The file is size checked and parsed into entries
//  2. Each entry is resolved to an Event and Edition, created when missing
//  3. Articles already in the Edition with the same title and authors are
//     counted as duplicates
//  4. New Articles are created and announced to author subscribers
//
// Only one import runs at a time; a second caller gets
// [catalog.ErrImportInProgress].
//
// # Subscriptions and Accounts
//
// [Service.Subscribe] registers an address for the mailing list and
// [Service.SubscribeAuthor] for notices about one author. Author names are
// matched after case and accent folding. A notice that fails to send is
// logged and never fails the write that produced the Article.
//
// [Service.Login] issues a signed token. [Service.RegisterUser] creates an
// account and [Service.CurrentAccount] resolves the token's owner.
//
// # Error Handling
//
// Technical errors are mapped to user-facing messages using
// [catalog.MapError]. Each category has a code for support reference:
//
//   - CAT001-CAT007: Catalog rules (duplicates, missing parents, in-use deletes)
//   - IMP001-IMP002: Import errors (already running, timed out)
//   - VAL001-VAL004: Validation errors (required fields, formats)
//   - FILE001-FILE005: File errors (size, type, storage)
//   - AUTH001-AUTH003: Authentication errors
//   - DB001-DB003: Database errors
//   - NET001-NET004: Network errors
//   - RATE001-RATE002: Throttling
//
// # Audit Logging
//
// Mutations are recorded in the audit log with severity levels:
//
//   - Low: subscriptions, author subscriptions, logins
//   - Medium: article edits, PDF uploads
//   - High: imports, event and edition deletions, account registration
//
// [Service.StartAuditPurgeScheduler] removes entries past the retention
// window.
package core
