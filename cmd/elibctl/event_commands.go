package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

func newEventsCommand(ctx *commandContext) *cobra.Command {
	eventsCmd := &cobra.Command{
		Use:     "events",
		Aliases: []string{"eventos"},
		Short:   "List and manage events",
	}
	eventsCmd.AddCommand(newEventsListCommand(ctx))
	eventsCmd.AddCommand(newEventsCreateCommand(ctx))
	eventsCmd.AddCommand(newEventsUpdateCommand(ctx))
	eventsCmd.AddCommand(newEventsDeleteCommand(ctx))
	return eventsCmd
}

func newEventsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := ctx.apiClient().ListEvents(cmd.Context())
			if err != nil {
				return err
			}
			if len(events) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No events")
				return nil
			}
			rows := make([][]string, 0, len(events))
			for _, ev := range events {
				rows = append(rows, []string{ev.ID, ev.Code, ev.Name, ev.Description})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "Code", "Name", "Description"}, rows, nil)
			return nil
		},
	}
}

func newEventsCreateCommand(ctx *commandContext) *cobra.Command {
	var ev catalog.Event
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an event",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl := ctx.controller(cmd)
			return reported(ctrl.CreateEvent(cmd.Context(), ev))
		},
	}
	cmd.Flags().StringVar(&ev.Name, "name", "", "Event name")
	cmd.Flags().StringVar(&ev.Code, "code", "", "Event code (sigla)")
	cmd.Flags().StringVar(&ev.Description, "description", "", "Event description")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("code")
	return cmd
}

func newEventsUpdateCommand(ctx *commandContext) *cobra.Command {
	var name, code, description string
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ev, err := ctx.apiClient().GetEvent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("name") {
				ev.Name = name
			}
			if flags.Changed("code") {
				ev.Code = code
			}
			if flags.Changed("description") {
				ev.Description = description
			}
			return reported(ctx.controller(cmd).UpdateEvent(cmd.Context(), ev))
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "New event name")
	cmd.Flags().StringVar(&code, "code", "", "New event code")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	return cmd
}

func newEventsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an event that has no editions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return reported(ctx.controller(cmd).DeleteEvent(cmd.Context(), args[0]))
		},
	}
}

func newEditionsCommand(ctx *commandContext) *cobra.Command {
	editionsCmd := &cobra.Command{
		Use:     "editions",
		Aliases: []string{"edicoes"},
		Short:   "List and manage editions",
	}
	editionsCmd.AddCommand(newEditionsListCommand(ctx))
	editionsCmd.AddCommand(newEditionsCreateCommand(ctx))
	editionsCmd.AddCommand(newEditionsUpdateCommand(ctx))
	editionsCmd.AddCommand(newEditionsDeleteCommand(ctx))
	return editionsCmd
}

func newEditionsListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list EVENT_ID",
		Short: "List the editions of an event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editions, err := ctx.apiClient().ListEditionsOf(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if len(editions) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No editions")
				return nil
			}
			printEditions(cmd, editions)
			return nil
		},
	}
}

func printEditions(cmd *cobra.Command, editions []catalog.Edition) {
	rows := make([][]string, 0, len(editions))
	for _, ed := range editions {
		number := ""
		if ed.Number > 0 {
			number = strconv.Itoa(ed.Number)
		}
		rows = append(rows, []string{ed.ID, strconv.Itoa(ed.Year), number, ed.Location, ed.StartDate, ed.EndDate})
	}
	printTable(cmd.OutOrStdout(),
		[]string{"ID", "Year", "Number", "Location", "Start", "End"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight},
	)
}

func bindEditionFlags(cmd *cobra.Command, ed *catalog.Edition) {
	cmd.Flags().IntVar(&ed.Year, "year", 0, "Edition year")
	cmd.Flags().StringVar(&ed.Location, "location", "", "Edition location")
	cmd.Flags().IntVar(&ed.Number, "number", 0, "Edition number")
	cmd.Flags().StringVar(&ed.StartDate, "start", "", "Start date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&ed.EndDate, "end", "", "End date (YYYY-MM-DD)")
}

func newEditionsCreateCommand(ctx *commandContext) *cobra.Command {
	var ed catalog.Edition
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an edition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return reported(ctx.controller(cmd).CreateEdition(cmd.Context(), ed))
		},
	}
	cmd.Flags().StringVar(&ed.EventID, "event", "", "Owning event ID")
	bindEditionFlags(cmd, &ed)
	_ = cmd.MarkFlagRequired("event")
	_ = cmd.MarkFlagRequired("year")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func newEditionsUpdateCommand(ctx *commandContext) *cobra.Command {
	var changes catalog.Edition
	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an edition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := ctx.apiClient().GetEdition(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("year") {
				ed.Year = changes.Year
			}
			if flags.Changed("location") {
				ed.Location = changes.Location
			}
			if flags.Changed("number") {
				ed.Number = changes.Number
			}
			if flags.Changed("start") {
				ed.StartDate = changes.StartDate
			}
			if flags.Changed("end") {
				ed.EndDate = changes.EndDate
			}
			ctrl := ctx.controller(cmd)
			ctrl.SelectEvent(cmd.Context(), ed.EventID)
			ctrl.Wait()
			return reported(ctrl.UpdateEdition(cmd.Context(), ed))
		},
	}
	bindEditionFlags(cmd, &changes)
	return cmd
}

func newEditionsDeleteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an edition that has no articles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ed, err := ctx.apiClient().GetEdition(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ctrl := ctx.controller(cmd)
			ctrl.SelectEvent(cmd.Context(), ed.EventID)
			ctrl.Wait()
			return reported(ctrl.DeleteEdition(cmd.Context(), ed))
		},
	}
}
