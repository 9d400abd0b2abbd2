package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var username, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Obtain an admin token",
		Long:  "Logs in and prints a bearer token. Export it as ELIB_TOKEN or pass it with --token.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("ELIB_PASSWORD")
			}
			if password == "" {
				return errors.New("password is required (--password or ELIB_PASSWORD)")
			}
			token, err := ctx.apiClient().Login(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "admin", "Admin username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Admin password")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var kind, author, event string
	cmd := &cobra.Command{
		Use:   "search [QUERY]",
		Short: "Search articles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := catalog.SearchQuery{
				Kind:   catalog.ParseSearchKind(kind),
				Author: author,
				Event:  event,
			}
			if len(args) == 1 {
				q.Text = args[0]
			}
			resp, err := ctx.apiClient().Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			if resp.Total == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No articles found")
				return nil
			}
			rows := make([][]string, 0, len(resp.Results))
			for _, r := range resp.Results {
				rows = append(rows, []string{r.ID, r.Title, strings.Join(r.AuthorNames(), "; "), r.EventCode, strconv.Itoa(r.EditionYear)})
			}
			printTable(cmd.OutOrStdout(),
				[]string{"ID", "Title", "Authors", "Event", "Year"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight},
			)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", string(catalog.SearchAll), "Fields to match: titulo, autor, evento or tudo")
	cmd.Flags().StringVar(&author, "author", "", "Only articles with an author matching this name")
	cmd.Flags().StringVar(&event, "event", "", "Only articles of events matching this name or code")
	return cmd
}

func newPublicCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "public CODE [YEAR]",
		Short: "Show an event's public page, or one of its editions",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				page, err := ctx.apiClient().PublicEvent(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s (%s)\n", page.Event.Name, page.Event.Code)
				if page.Event.Description != "" {
					fmt.Fprintln(out, page.Event.Description)
				}
				fmt.Fprintf(out, "Editions: %d\n", page.Total)
				if page.Total > 0 {
					printEditions(cmd, page.Editions)
				}
				return nil
			}

			year, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid year %q", args[1])
			}
			page, err := ctx.apiClient().PublicEdition(cmd.Context(), args[0], year)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s %d, %s\n", page.Event.Code, page.Edition.Year, page.Edition.Location)
			fmt.Fprintf(out, "Articles: %d\n", page.Total)
			if page.Total > 0 {
				printArticles(cmd, page.Articles)
			}
			return nil
		},
	}
}

func newSubscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribe EMAIL",
		Short: "Subscribe an email to the newsletter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sub, err := ctx.apiClient().Subscribe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Subscribed %s\n", sub.Email)
			return nil
		},
	}
}

func newUnsubscribeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unsubscribe EMAIL",
		Short: "Cancel a newsletter subscription",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ctx.apiClient().Unsubscribe(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Unsubscribed %s\n", args[0])
			return nil
		},
	}
}

func newSubscribersCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "subscribers",
		Short: "Print the number of active subscriptions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			total, err := ctx.apiClient().SubscriptionTotal(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), total)
			return nil
		},
	}
}
