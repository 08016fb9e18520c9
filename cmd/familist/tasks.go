package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dukerupert/familist/internal/apiclient"
	"github.com/dukerupert/familist/internal/board"
	"github.com/dukerupert/familist/internal/guard"
	"github.com/dukerupert/familist/internal/model"
)

func (a *app) tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Work with the family task board",
	}

	boardCmd := &cobra.Command{
		Use:   "board",
		Short: "Show the task board",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.showBoard(cmd.Context())
		},
	}

	create := &cobra.Command{
		Use:   "create <title>",
		Short: "Add a task; the family is notified by email",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, _ := cmd.Flags().GetString("description")
			priority, _ := cmd.Flags().GetString("priority")
			due, _ := cmd.Flags().GetString("due")
			task, err := a.client.CreateTask(cmd.Context(), apiclient.NewTask{
				Title:       strings.Join(args, " "),
				Description: desc,
				Priority:    strings.ToLower(priority),
				DueDate:     due,
			})
			if err != nil {
				return err
			}
			return a.printTask("Created", task)
		},
	}
	create.Flags().StringP("description", "d", "", "task details")
	create.Flags().StringP("priority", "p", model.PriorityMedium, "low, medium or high")
	create.Flags().String("due", "", "due date, YYYY-MM-DD or YYYY-MM-DDTHH:MM")

	edit := &cobra.Command{
		Use:   "edit <task-id>",
		Short: "Change a task's title, description, priority or due date",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var patch apiclient.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("title") {
				v, _ := flags.GetString("title")
				patch.Title = &v
			}
			if flags.Changed("description") {
				v, _ := flags.GetString("description")
				patch.Description = &v
			}
			if flags.Changed("priority") {
				v, _ := flags.GetString("priority")
				v = strings.ToLower(v)
				patch.Priority = &v
			}
			if flags.Changed("due") {
				v, _ := flags.GetString("due")
				patch.DueDate = &v
			}
			patch.ClearDueDate, _ = flags.GetBool("clear-due")

			task, err := a.client.UpdateTask(cmd.Context(), id, patch)
			if err != nil {
				return err
			}
			return a.printTask("Updated", task)
		},
	}
	edit.Flags().String("title", "", "new title")
	edit.Flags().StringP("description", "d", "", "new description")
	edit.Flags().StringP("priority", "p", "", "low, medium or high")
	edit.Flags().String("due", "", "new due date")
	edit.Flags().Bool("clear-due", false, "remove the due date")

	volunteer := a.transitionCmd("volunteer", "Claim an unclaimed task", "Volunteered for", (*apiclient.Client).Volunteer)
	unvolunteer := a.transitionCmd("unvolunteer", "Give a claimed task back", "Released", (*apiclient.Client).Unvolunteer)
	complete := a.transitionCmd("complete", "Mark your task done", "Completed", (*apiclient.Client).Complete)

	reassign := &cobra.Command{
		Use:   "reassign <task-id> [user-id]",
		Short: "Hand a task to another member, or back to the pool without a user",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			var volunteer *int64
			if len(args) == 2 {
				uid, err := parseID(args[1])
				if err != nil {
					return err
				}
				volunteer = &uid
			}
			task, err := a.client.Reassign(cmd.Context(), id, volunteer)
			if err != nil {
				return err
			}
			return a.printTask("Reassigned", task)
		},
	}

	history := &cobra.Command{
		Use:   "history <task-id>",
		Short: "Show who did what to a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			entries, err := a.client.TaskHistory(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(entries)
			}
			rows := make([][]string, 0, len(entries))
			for _, h := range entries {
				rows = append(rows, []string{formatTime(&h.Timestamp), h.Action, formatInt(h.UserID)})
			}
			return a.table("WHEN\tACTION\tUSER", rows)
		},
	}

	for _, c := range []*cobra.Command{boardCmd, create, edit, volunteer, unvolunteer, complete, reassign, history} {
		protect(c, guard.RouteDashboard)
	}
	cmd.AddCommand(boardCmd, create, edit, volunteer, unvolunteer, complete, reassign, history)
	return cmd
}

func (a *app) transitionCmd(name, short, verb string, call func(*apiclient.Client, context.Context, int64) (*model.Task, error)) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <task-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			task, err := call(a.client, cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.printTask(verb, task)
		},
	}
}

func (a *app) printTask(verb string, t *model.Task) error {
	if a.jsonOut {
		return a.printJSON(t)
	}
	a.printf("%s task #%d %q (%s, %s)\n", verb, t.ID, t.Title, t.Status, t.Priority)
	return nil
}

func (a *app) showBoard(ctx context.Context) error {
	tasks, err := a.client.Tasks(ctx)
	if err != nil {
		return err
	}
	user := a.session.Snapshot().User
	b := board.NewBoard(tasks, user.ID)
	for _, t := range b.Anomalies {
		a.logger.Warn("task in progress without a volunteer", "task_id", t.ID, "title", t.Title)
	}
	if a.jsonOut {
		return a.printJSON(b)
	}

	sections := []struct {
		title string
		tasks []model.Task
	}{
		{"Unclaimed", b.Unclaimed},
		{"My tasks", b.Mine},
		{"Taken by others", b.Others},
		{fmt.Sprintf("Completed (latest %d of %d)", len(b.Completed), b.CompletedTotal), b.Completed},
	}
	for i, s := range sections {
		if i > 0 {
			a.printf("\n")
		}
		a.printf("== %s ==\n", s.title)
		if len(s.tasks) == 0 {
			a.printf("(none)\n")
			continue
		}
		rows := make([][]string, 0, len(s.tasks))
		for _, t := range s.tasks {
			rows = append(rows, []string{
				formatInt(t.ID), t.Title, t.Priority, formatTime(t.DueDate), deref(t.VolunteerName), t.CreatorName,
			})
		}
		if err := a.table("ID\tTITLE\tPRIORITY\tDUE\tVOLUNTEER\tCREATED BY", rows); err != nil {
			return err
		}
	}
	return nil
}
