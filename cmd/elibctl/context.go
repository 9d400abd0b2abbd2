package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/gst-aqn42/TP1/internal/catalog"
	"github.com/gst-aqn42/TP1/internal/client"
	"github.com/gst-aqn42/TP1/internal/logging"
	"github.com/gst-aqn42/TP1/internal/selection"
	"github.com/gst-aqn42/TP1/internal/store"
)

type globalFlags struct {
	url      string
	token    string
	timeout  time.Duration
	logLevel string
}

type commandContext struct {
	flags *globalFlags

	clientOnce sync.Once
	client     *client.Client
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) apiClient() *client.Client {
	c.clientOnce.Do(func() {
		c.client = client.New(strings.TrimSpace(c.flags.url),
			client.WithToken(strings.TrimSpace(c.flags.token)),
			client.WithHTTPClient(&http.Client{Timeout: c.flags.timeout}),
		)
	})
	return c.client
}

func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	return logging.New(cmd.ErrOrStderr(), c.flags.logLevel, "text")
}

// controller builds a selection controller over a fresh entity store.
// Success notifications go to stdout and failures to stderr.
func (c *commandContext) controller(cmd *cobra.Command) *selection.Controller {
	notify := selection.NotifierFunc(func(n selection.Notification) {
		if n.Level == selection.LevelError {
			fmt.Fprintln(cmd.ErrOrStderr(), "error:", n.Message)
			return
		}
		fmt.Fprintln(cmd.OutOrStdout(), n.Message)
	})
	return selection.NewController(store.New(c.apiClient()),
		selection.WithNotifier(notify),
		selection.WithLogger(c.logger(cmd)),
	)
}

// focus selects ed and its Event, waiting for both lists to load.
func focus(ctx context.Context, ctrl *selection.Controller, ed catalog.Edition) error {
	ctrl.SelectEvent(ctx, ed.EventID)
	ctrl.Wait()
	if err := ctrl.SelectEdition(ctx, ed.ID); err != nil {
		return err
	}
	ctrl.Wait()
	return nil
}

// reportedError marks an error the controller already showed to the user.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

func reported(err error) error {
	if err == nil {
		return nil
	}
	return &reportedError{err: err}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
