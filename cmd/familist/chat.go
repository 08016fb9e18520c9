package main

import (
	"strings"

	"github.com/spf13/cobra"
)

func (a *app) chatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Family chat threads",
	}

	threads := &cobra.Command{
		Use:   "threads",
		Short: "List threads, most recently active first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := a.client.Threads(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(list)
			}
			rows := make([][]string, 0, len(list))
			for _, t := range list {
				last := "-"
				if t.LastMessage != nil {
					last = t.LastMessage.SenderName + ": " + t.LastMessage.Message
				}
				rows = append(rows, []string{formatInt(t.ID), t.Title, t.CreatorName, formatTime(&t.UpdatedAt), last})
			}
			return a.table("ID\tTITLE\tSTARTED BY\tACTIVE\tLAST MESSAGE", rows)
		},
	}

	newThread := &cobra.Command{
		Use:   "new <title>",
		Short: "Start a thread",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.client.CreateThread(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(t)
			}
			a.printf("Started thread #%d %q.\n", t.ID, t.Title)
			return nil
		},
	}

	show := &cobra.Command{
		Use:   "show <thread-id>",
		Short: "Show a thread's messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			detail, err := a.client.Thread(cmd.Context(), id)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(detail)
			}
			a.printf("# %s\n", detail.Thread.Title)
			for _, m := range detail.Messages {
				a.printf("[%s] %s: %s\n", formatTime(&m.CreatedAt), m.SenderName, m.Message)
			}
			return nil
		},
	}

	send := &cobra.Command{
		Use:   "send <thread-id> <message>",
		Short: "Post a message",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := a.client.SendMessage(cmd.Context(), id, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(m)
			}
			a.printf("Sent.\n")
			return nil
		},
	}

	for _, c := range []*cobra.Command{threads, newThread, show, send} {
		protect(c, "/chat")
	}
	cmd.AddCommand(threads, newThread, show, send)
	return cmd
}
