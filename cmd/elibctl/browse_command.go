package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

func newBrowseCommand(ctx *commandContext) *cobra.Command {
	var code string
	var year int
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Walk the catalog from events down to articles",
		Long: `Without flags, lists the events. --event selects an event by code and
lists its editions; adding --year selects that edition and lists its articles.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c := cmd.Context()
			out := cmd.OutOrStdout()
			ctrl := ctx.controller(cmd)

			ctrl.Refresh(c)
			ctrl.Wait()
			state := ctrl.Snapshot()
			if code == "" {
				if len(state.Events) == 0 {
					fmt.Fprintln(out, "No events")
					return nil
				}
				rows := make([][]string, 0, len(state.Events))
				for _, ev := range state.Events {
					rows = append(rows, []string{ev.ID, ev.Code, ev.Name})
				}
				printTable(out, []string{"ID", "Code", "Name"}, rows, nil)
				return nil
			}

			var event *catalog.Event
			for i := range state.Events {
				if strings.EqualFold(state.Events[i].Code, code) {
					event = &state.Events[i]
					break
				}
			}
			if event == nil {
				return fmt.Errorf("event %q: %w", code, catalog.ErrNotFound)
			}

			ctrl.SelectEvent(c, event.ID)
			ctrl.Wait()
			state = ctrl.Snapshot()
			fmt.Fprintf(out, "%s (%s)\n", event.Name, event.Code)
			if year == 0 {
				if len(state.Editions) == 0 {
					fmt.Fprintln(out, "No editions")
					return nil
				}
				printEditions(cmd, state.Editions)
				return nil
			}

			editionID := ""
			for _, ed := range state.Editions {
				if ed.Year == year {
					editionID = ed.ID
					break
				}
			}
			if editionID == "" {
				return fmt.Errorf("edition %s %d: %w", event.Code, year, catalog.ErrNotFound)
			}
			if err := ctrl.SelectEdition(c, editionID); err != nil {
				return err
			}
			ctrl.Wait()
			state = ctrl.Snapshot()
			fmt.Fprintf(out, "Edition %d: %d articles\n", year, len(state.Articles))
			if len(state.Articles) > 0 {
				printArticles(cmd, state.Articles)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&code, "event", "", "Event code to select")
	cmd.Flags().IntVar(&year, "year", 0, "Edition year to select (requires --event)")
	return cmd
}
