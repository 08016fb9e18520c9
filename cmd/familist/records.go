package main

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/familist/internal/apiclient"
	"github.com/dukerupert/familist/internal/calendar"
	"github.com/dukerupert/familist/internal/model"
)

func (a *app) recordsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Care records about the people you look after",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List recent care records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			months, _ := cmd.Flags().GetInt("months")
			subject, _ := cmd.Flags().GetString("subject")
			events, err := a.client.CareEvents(cmd.Context(), months, subject)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(events)
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				rows = append(rows, []string{
					formatTime(&e.OccurredAt), e.Subject, e.Severity, deref(e.Category), e.Description, e.RecorderName,
				})
			}
			return a.table("WHEN\tSUBJECT\tSEVERITY\tCATEGORY\tDESCRIPTION\tRECORDED BY", rows)
		},
	}
	list.Flags().Int("months", 1, "how many months back to show")
	list.Flags().String("subject", "", "only records about this person")

	add := &cobra.Command{
		Use:   "add <subject> <description>",
		Short: "Record an observation",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			severity, _ := cmd.Flags().GetString("severity")
			at, _ := cmd.Flags().GetString("at")
			if at == "" {
				at = time.Now().UTC().Format(time.RFC3339)
			}
			in := apiclient.NewCareEvent{
				Subject:     args[0],
				Description: strings.Join(args[1:], " "),
				Severity:    severity,
				OccurredAt:  at,
			}
			if cmd.Flags().Changed("category") {
				c, _ := cmd.Flags().GetString("category")
				in.Category = &c
			}
			event, err := a.client.CreateCareEvent(cmd.Context(), in)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(event)
			}
			a.printf("Recorded #%d for %s.\n", event.ID, event.Subject)
			return nil
		},
	}
	add.Flags().String("severity", "low", "how serious it is, e.g. low, medium, high")
	add.Flags().String("category", "", "optional category, e.g. sleep, meals, medication")
	add.Flags().String("at", "", "when it happened (default now)")

	for _, c := range []*cobra.Command{list, add} {
		protect(c, "/events")
	}
	cmd.AddCommand(list, add)
	return cmd
}

func (a *app) familyEventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "family-events",
		Aliases: []string{"fe"},
		Short:   "Shared family events such as birthdays and trips",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List family events",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := a.client.FamilyEvents(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(events)
			}
			return a.printFamilyEvents(events)
		},
	}

	add := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a family event",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := eventInput(cmd, strings.Join(args, " "))
			event, err := a.client.CreateFamilyEvent(cmd.Context(), in)
			if err != nil {
				return err
			}
			return a.printFamilyEvent("Added", event)
		},
	}

	edit := &cobra.Command{
		Use:   "edit <event-id> <title>",
		Short: "Replace a family event's details",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			in := eventInput(cmd, strings.Join(args[1:], " "))
			event, err := a.client.UpdateFamilyEvent(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return a.printFamilyEvent("Updated", event)
		},
	}

	for _, c := range []*cobra.Command{add, edit} {
		c.Flags().String("start", "", "start date, YYYY-MM-DD or YYYY-MM-DDTHH:MM (required)")
		c.Flags().String("end", "", "optional end date")
		c.Flags().StringP("description", "d", "", "optional details")
		c.MarkFlagRequired("start")
	}

	del := &cobra.Command{
		Use:   "delete <event-id>",
		Short: "Delete a family event",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := a.client.DeleteFamilyEvent(cmd.Context(), id); err != nil {
				return err
			}
			a.printf("Deleted event #%d.\n", id)
			return nil
		},
	}

	for _, c := range []*cobra.Command{list, add, edit, del} {
		protect(c, "/family-events")
	}
	cmd.AddCommand(list, add, edit, del)
	return cmd
}

func eventInput(cmd *cobra.Command, title string) apiclient.FamilyEventInput {
	in := apiclient.FamilyEventInput{Title: title}
	in.StartDate, _ = cmd.Flags().GetString("start")
	if cmd.Flags().Changed("end") {
		end, _ := cmd.Flags().GetString("end")
		in.EndDate = &end
	}
	if cmd.Flags().Changed("description") {
		d, _ := cmd.Flags().GetString("description")
		in.Description = &d
	}
	return in
}

func (a *app) printFamilyEvent(verb string, e *model.FamilyEvent) error {
	if a.jsonOut {
		return a.printJSON(e)
	}
	a.printf("%s event #%d %q on %s\n", verb, e.ID, e.Title, calendar.FormatEventDates(e.StartDate, e.EndDate))
	return nil
}

func (a *app) printFamilyEvents(events []model.FamilyEvent) error {
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			formatInt(e.ID), e.Title, calendar.FormatEventDates(e.StartDate, e.EndDate), deref(e.Description), e.CreatorName,
		})
	}
	return a.table("ID\tTITLE\tWHEN\tDESCRIPTION\tCREATED BY", rows)
}
