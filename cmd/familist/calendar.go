package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/familist/internal/calendar"
)

func (a *app) calendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Tasks with due dates and family events by day",
	}
	for _, view := range []calendar.View{calendar.Month, calendar.Week} {
		c := &cobra.Command{
			Use:   string(view),
			Short: "Show the " + string(view) + " around a date",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.showCalendar(cmd, view)
			},
		}
		c.Flags().String("date", "", "reference date, YYYY-MM-DD (default today)")
		c.Flags().Int("offset", 0, "move forward or back by this many "+string(view)+"s")
		cmd.AddCommand(protect(c, "/calendar"))
	}
	return cmd
}

func (a *app) showCalendar(cmd *cobra.Command, view calendar.View) error {
	ref := time.Now()
	if s, _ := cmd.Flags().GetString("date"); s != "" {
		d, err := time.ParseInLocation(time.DateOnly, s, time.Local)
		if err != nil {
			return err
		}
		ref = d
	}
	if n, _ := cmd.Flags().GetInt("offset"); n != 0 {
		ref = calendar.Shift(ref, view, n)
	}

	start, end := calendar.Range(ref, view)
	from, to := calendar.QueryBounds(start, end)
	items, err := a.client.Calendar(cmd.Context(), from, to)
	if err != nil {
		return err
	}
	if a.jsonOut {
		return a.printJSON(items)
	}

	merged := calendar.Merge(items.Tasks, items.Events)
	a.printf("%s – %s\n", start.Format("Mon Jan 2"), end.Format("Mon Jan 2, 2006"))
	for _, day := range calendar.Days(start, end) {
		onDay := calendar.OnDay(merged, day)
		if len(onDay) == 0 {
			continue
		}
		a.printf("\n%s\n", day.Format("Mon Jan 2"))
		for _, it := range onDay {
			if it.Task != nil {
				a.printf("  [task #%d] %s (%s, %s)\n", it.Task.ID, it.Title(), it.Task.Status, it.Task.Priority)
				continue
			}
			a.printf("  [event #%d] %s  %s\n", it.Event.ID, it.Title(),
				calendar.FormatEventDates(it.Event.StartDate, it.Event.EndDate))
		}
	}
	if len(merged) == 0 {
		a.printf("\nNothing scheduled.\n")
	}
	return nil
}
