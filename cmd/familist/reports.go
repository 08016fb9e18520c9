package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dukerupert/familist/internal/model"
)

func (a *app) reportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "How the work is shared",
	}

	fairness := &cobra.Command{
		Use:   "fairness",
		Short: "Completed tasks per member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			period, _ := cmd.Flags().GetString("period")
			report, err := a.client.Fairness(cmd.Context(), period)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(report)
			}
			a.printf("Completed tasks, period: %s\n\n", report.Period)
			top := 0
			for _, s := range report.Stats {
				top = max(top, s.CompletedCount)
			}
			rows := make([][]string, 0, len(report.Stats))
			for _, s := range report.Stats {
				rows = append(rows, []string{s.UserName, fmt.Sprint(s.CompletedCount), bar(s.CompletedCount, top)})
			}
			return a.table("MEMBER\tDONE\t", rows)
		},
	}
	fairness.Flags().String("period", "month", "week, month or all")

	open := &cobra.Command{
		Use:   "open",
		Short: "Tasks still waiting for a volunteer or in progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			report, err := a.client.OpenTasks(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(report)
			}
			a.printf("== Unclaimed (%d) ==\n", len(report.Unclaimed))
			if err := a.openTable(report.Unclaimed); err != nil {
				return err
			}
			a.printf("\n== In progress (%d) ==\n", len(report.InProgress))
			return a.openTable(report.InProgress)
		},
	}

	for _, c := range []*cobra.Command{fairness, open} {
		protect(c, "/reports")
	}
	cmd.AddCommand(fairness, open)
	return cmd
}

func (a *app) openTable(tasks []model.OpenTask) error {
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{formatInt(t.ID), t.Title, t.Priority, formatTime(t.DueDate), deref(t.VolunteerName)})
	}
	return a.table("ID\tTITLE\tPRIORITY\tDUE\tVOLUNTEER", rows)
}

const barWidth = 20

func bar(n, top int) string {
	if top == 0 {
		return ""
	}
	return strings.Repeat("#", n*barWidth/top)
}
