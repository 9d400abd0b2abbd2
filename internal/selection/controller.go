package selection

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

// Catalog is the Entity Store as used by the Controller: remote reads that
// refresh the cache, cached reads, and mutations that reload what they
// touch. *store.Store satisfies it.
type Catalog interface {
	ListEvents(ctx context.Context) ([]catalog.Event, error)
	ListEditionsOf(ctx context.Context, eventID string) ([]catalog.Edition, error)
	ListArticlesOf(ctx context.Context, editionID string) ([]catalog.Article, error)
	Events() []catalog.Event
	EditionsOf(eventID string) []catalog.Edition
	ArticlesOf(editionID string) []catalog.Article

	CreateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error)
	UpdateEvent(ctx context.Context, ev catalog.Event) (catalog.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CreateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error)
	UpdateEdition(ctx context.Context, ed catalog.Edition) (catalog.Edition, error)
	DeleteEdition(ctx context.Context, ed catalog.Edition) error
	CreateArticle(ctx context.Context, a catalog.Article) (catalog.Article, error)
	CreateArticleWithAttachment(ctx context.Context, a catalog.Article, filename string, pdf io.Reader) (catalog.Article, error)
	UpdateArticle(ctx context.Context, a catalog.Article, previousEditionID string) (catalog.Article, error)
	DeleteArticle(ctx context.Context, a catalog.Article) error
	UploadPDF(ctx context.Context, a catalog.Article, filename string, pdf io.Reader) error
}

// Level is the severity of a Notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a transient, user-visible message.
type Notification struct {
	Level   Level
	Message string
}

// Notifier displays transient notifications.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

func (f NotifierFunc) Notify(n Notification) { f(n) }

// Controller owns a State and runs the loads its transitions request.
// Loads run in their own goroutines; results are applied in completion
// order, and results superseded by a newer load are discarded.
type Controller struct {
	catalog  Catalog
	notifier Notifier
	logger   *slog.Logger
	onChange func(State)

	mu    sync.Mutex
	state State
	seq   uint64 // bumped under mu with every published snapshot
	wg    sync.WaitGroup

	// notifyMu serializes onChange; delivered is the seq last handed to it.
	notifyMu  sync.Mutex
	delivered uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithNotifier sets the collaborator that displays notifications.
func WithNotifier(n Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// WithOnChange registers a callback receiving a snapshot after every
// applied change. Calls are serialized and arrive in the order the changes
// were applied; a snapshot overtaken by a newer one is skipped. The callback
// must not call back into the Controller's transitions.
func WithOnChange(fn func(State)) Option {
	return func(c *Controller) { c.onChange = fn }
}

// NewController creates a Controller with nothing selected.
func NewController(cat Catalog, opts ...Option) *Controller {
	c := &Controller{
		catalog:  cat,
		notifier: NotifierFunc(func(Notification) {}),
		logger:   slog.Default(),
		onChange: func(State) {},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// Wait blocks until every load started so far, and the loads they
// triggered, have completed.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// transition applies fn to the state under the lock and starts the load it
// returns.
func (c *Controller) transition(ctx context.Context, fn func(State) (State, Load)) {
	c.mu.Lock()
	next, l := fn(c.state)
	c.state = next
	c.seq++
	seq, snap := c.seq, next.Clone()
	c.mu.Unlock()

	c.publish(seq, snap)
	c.start(ctx, l)
}

// publish hands snap to onChange unless a newer snapshot already went out,
// so the observer never sees the state move backwards.
func (c *Controller) publish(seq uint64, snap State) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	if seq <= c.delivered {
		return
	}
	c.delivered = seq
	c.onChange(snap)
}

func (c *Controller) start(ctx context.Context, l Load) {
	if l.Kind == LoadNone {
		return
	}
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.run(ctx, l)
	}()
}

// Refresh reloads the Event list.
func (c *Controller) Refresh(ctx context.Context) {
	c.transition(ctx, State.ReloadEvents)
}

// SelectEvent selects an Event; an empty id clears the selection.
func (c *Controller) SelectEvent(ctx context.Context, id string) {
	c.transition(ctx, func(s State) (State, Load) { return s.SelectEvent(id) })
}

// SelectEdition selects an Edition of the selected Event.
func (c *Controller) SelectEdition(ctx context.Context, id string) error {
	var err error
	c.transition(ctx, func(s State) (State, Load) {
		var next State
		var l Load
		next, l, err = s.SelectEdition(id)
		return next, l
	})
	return err
}

// =============================================================================
// Loads
// =============================================================================

func (c *Controller) run(ctx context.Context, l Load) {
	var (
		applied bool
		follow  Load
		err     error
	)

	switch l.Kind {
	case LoadEvents:
		var events []catalog.Event
		if l.Cached {
			events = c.catalog.Events()
		} else {
			events, err = c.catalog.ListEvents(ctx)
		}
		if err == nil {
			applied = c.apply(func(s State) (State, bool) { return s.ApplyEvents(l, events) })
		}

	case LoadEditions:
		var editions []catalog.Edition
		if l.Cached {
			editions = c.catalog.EditionsOf(l.ID)
		} else {
			editions, err = c.catalog.ListEditionsOf(ctx, l.ID)
		}
		if err == nil {
			applied = c.apply(func(s State) (State, bool) {
				next, f, ok := s.ApplyEditions(l, editions)
				follow = f
				return next, ok
			})
		}

	case LoadArticles:
		var articles []catalog.Article
		if l.Cached {
			articles = c.catalog.ArticlesOf(l.ID)
		} else {
			articles, err = c.catalog.ListArticlesOf(ctx, l.ID)
		}
		if err == nil {
			applied = c.apply(func(s State) (State, bool) { return s.ApplyArticles(l, articles) })
		}
	}

	if err != nil {
		c.mu.Lock()
		current := c.state.Current(l)
		c.mu.Unlock()
		if current {
			c.logger.Warn("load failed", "kind", l.Kind, "id", l.ID, "error", err)
			c.notifyError(err)
		}
		return
	}
	if !applied {
		c.logger.Debug("discarded stale load", "kind", l.Kind, "id", l.ID, "gen", l.Gen)
		return
	}
	c.start(ctx, follow)
}

func (c *Controller) apply(fn func(State) (State, bool)) bool {
	c.mu.Lock()
	next, ok := fn(c.state)
	var seq uint64
	if ok {
		c.state = next
		c.seq++
		seq = c.seq
	}
	snap := next.Clone()
	c.mu.Unlock()

	if ok {
		c.publish(seq, snap)
	}
	return ok
}

// =============================================================================
// Mutations
// =============================================================================

// mutate runs op, reports its outcome, then reloads the affected list from
// the store, which has already refreshed it from the remote. A consistency
// failure also refetches the Event list.
func (c *Controller) mutate(ctx context.Context, success string, op func() error, reload func(State) (State, Load)) error {
	err := op()
	if err != nil {
		c.notifyError(err)
	} else {
		c.notifier.Notify(Notification{Level: LevelSuccess, Message: success})
	}

	c.mu.Lock()
	next, l := reload(c.state)
	c.state = next
	c.mu.Unlock()

	l.Cached = true
	if l.Kind != LoadNone {
		c.run(ctx, l)
	}

	// A parent may be gone; refetch the Events so a dead selection clears.
	var re *catalog.RemoteError
	if errors.As(err, &re) && re.IsConsistency() {
		c.mu.Lock()
		next, l := c.state.ReloadEvents()
		c.state = next
		c.mu.Unlock()
		c.run(ctx, l)
	}
	return err
}

func (c *Controller) notifyError(err error) {
	c.notifier.Notify(Notification{Level: LevelError, Message: catalog.FormatUserError(err)})
}

// CreateEvent creates an Event.
func (c *Controller) CreateEvent(ctx context.Context, ev catalog.Event) error {
	return c.mutate(ctx, "Event created", func() error {
		_, err := c.catalog.CreateEvent(ctx, ev)
		return err
	}, State.ReloadEvents)
}

// UpdateEvent updates an Event.
func (c *Controller) UpdateEvent(ctx context.Context, ev catalog.Event) error {
	return c.mutate(ctx, "Event updated", func() error {
		_, err := c.catalog.UpdateEvent(ctx, ev)
		return err
	}, State.ReloadEvents)
}

// DeleteEvent deletes an Event. Deleting the selected Event clears the
// selection.
func (c *Controller) DeleteEvent(ctx context.Context, id string) error {
	return c.mutate(ctx, "Event deleted", func() error {
		return c.catalog.DeleteEvent(ctx, id)
	}, State.ReloadEvents)
}

// CreateEdition creates an Edition. An empty EventID means the selected Event.
func (c *Controller) CreateEdition(ctx context.Context, ed catalog.Edition) error {
	if ed.EventID == "" {
		ed.EventID = c.Snapshot().EventID
	}
	return c.mutate(ctx, "Edition created", func() error {
		_, err := c.catalog.CreateEdition(ctx, ed)
		return err
	}, State.ReloadEditions)
}

// UpdateEdition updates an Edition.
func (c *Controller) UpdateEdition(ctx context.Context, ed catalog.Edition) error {
	return c.mutate(ctx, "Edition updated", func() error {
		_, err := c.catalog.UpdateEdition(ctx, ed)
		return err
	}, State.ReloadEditions)
}

// DeleteEdition deletes an Edition.
func (c *Controller) DeleteEdition(ctx context.Context, ed catalog.Edition) error {
	return c.mutate(ctx, "Edition deleted", func() error {
		return c.catalog.DeleteEdition(ctx, ed)
	}, State.ReloadEditions)
}

// CreateArticle creates an Article. An empty EditionID means the selected
// Edition.
func (c *Controller) CreateArticle(ctx context.Context, a catalog.Article) error {
	if a.EditionID == "" {
		a.EditionID = c.Snapshot().EditionID
	}
	return c.mutate(ctx, "Article created", func() error {
		_, err := c.catalog.CreateArticle(ctx, a)
		return err
	}, State.ReloadArticles)
}

// CreateArticleWithPDF creates an Article together with its PDF.
func (c *Controller) CreateArticleWithPDF(ctx context.Context, a catalog.Article, filename string, pdf io.Reader) error {
	if a.EditionID == "" {
		a.EditionID = c.Snapshot().EditionID
	}
	return c.mutate(ctx, "Article created", func() error {
		_, err := c.catalog.CreateArticleWithAttachment(ctx, a, filename, pdf)
		return err
	}, State.ReloadArticles)
}

// UpdateArticle updates an Article.
func (c *Controller) UpdateArticle(ctx context.Context, a catalog.Article) error {
	previous := c.Snapshot().EditionID
	return c.mutate(ctx, "Article updated", func() error {
		_, err := c.catalog.UpdateArticle(ctx, a, previous)
		return err
	}, State.ReloadArticles)
}

// DeleteArticle deletes an Article.
func (c *Controller) DeleteArticle(ctx context.Context, a catalog.Article) error {
	return c.mutate(ctx, "Article deleted", func() error {
		return c.catalog.DeleteArticle(ctx, a)
	}, State.ReloadArticles)
}

// UploadPDF attaches a PDF to an existing Article. The selection does not
// change; the Article list is reloaded only on success.
func (c *Controller) UploadPDF(ctx context.Context, a catalog.Article, filename string, pdf io.Reader) error {
	err := c.catalog.UploadPDF(ctx, a, filename, pdf)
	if err != nil {
		c.notifyError(err)
		return err
	}
	c.notifier.Notify(Notification{Level: LevelSuccess, Message: "PDF uploaded"})

	c.mu.Lock()
	next, l := c.state.ReloadArticles()
	c.state = next
	c.mu.Unlock()

	l.Cached = true
	if l.Kind != LoadNone {
		c.run(ctx, l)
	}
	return nil
}
