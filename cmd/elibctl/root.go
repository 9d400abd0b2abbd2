package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

const defaultURL = "http://localhost:8080"

func newRootCommand() *cobra.Command {
	var flags globalFlags

	ctx := newCommandContext(&flags)

	rootCmd := &cobra.Command{
		Use:           "elibctl",
		Short:         "Command line client for the conference catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&flags.url, "url", envOr("ELIB_URL", defaultURL), "Catalog service base URL")
	rootCmd.PersistentFlags().StringVar(&flags.token, "token", os.Getenv("ELIB_TOKEN"), "Bearer token for admin operations")
	rootCmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 60*time.Second, "HTTP request timeout")
	rootCmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newEventsCommand(ctx))
	rootCmd.AddCommand(newEditionsCommand(ctx))
	rootCmd.AddCommand(newArticlesCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newPublicCommand(ctx))
	rootCmd.AddCommand(newSubscribeCommand(ctx))
	rootCmd.AddCommand(newUnsubscribeCommand(ctx))
	rootCmd.AddCommand(newSubscribersCommand(ctx))
	rootCmd.AddCommand(newImportCommand(ctx))
	rootCmd.AddCommand(newBrowseCommand(ctx))

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
