package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

func main() {
	// ELIB_URL and ELIB_TOKEN may come from a local .env file.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmd := newRootCommand()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var rep *reportedError
		if !errors.Is(err, context.Canceled) && !errors.As(err, &rep) {
			fmt.Fprintln(os.Stderr, catalog.FormatUserError(err))
		}
		os.Exit(1)
	}
}
