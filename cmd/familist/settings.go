package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dukerupert/familist/internal/guard"
	"github.com/dukerupert/familist/internal/session"
	"github.com/dukerupert/familist/internal/websocket"
)

func (a *app) debugCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "debug",
		Short: "Toggle debug logging and inspect the server",
	}

	toggle := func(on bool) *cobra.Command {
		name := "off"
		if on {
			name = "on"
		}
		return &cobra.Command{
			Use:   name,
			Short: "Turn debug logging " + name,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.prefs.SetDebug(on); err != nil {
					return err
				}
				a.printf("Debug mode %s.\n", name)
				return nil
			},
		}
	}

	health := &cobra.Command{
		Use:   "health",
		Short: "Show server health, with details when the server runs in debug mode",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := a.client.DebugHealth(cmd.Context())
			if err != nil {
				a.logger.Debug("debug health unavailable", "error", err)
				if body, err = a.client.Health(cmd.Context()); err != nil {
					return err
				}
			}
			return a.printJSON(body)
		},
	}

	cmd.AddCommand(toggle(true), toggle(false), health)
	return cmd
}

func (a *app) langCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lang",
		Short: "Show or change the display language",
	}

	get := &cobra.Command{
		Use:   "get",
		Short: "Show the current language",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.prefs.Get()
			if err != nil {
				return err
			}
			a.printf("%s (%s)\n", p.Language, direction(p.Language))
			return nil
		},
	}

	set := &cobra.Command{
		Use:   "set <code>",
		Short: "Change the language, e.g. en or he",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.prefs.SetLanguage(args[0]); err != nil {
				return err
			}
			a.printf("Language set to %s (%s).\n", args[0], direction(args[0]))
			return nil
		},
	}

	cmd.AddCommand(get, set)
	return cmd
}

func direction(lang string) string {
	if session.IsRTL(lang) {
		return "right-to-left"
	}
	return "left-to-right"
}

func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream live changes in your family until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a.logger.Debug("watching", "api", a.client.BaseURL())
			return a.client.Watch(ctx, func(m websocket.Message) {
				if a.jsonOut {
					a.printJSON(m)
					return
				}
				line := fmt.Sprintf("%s %s", m.Entity, m.Action)
				if m.ID != 0 {
					line += fmt.Sprintf(" #%d", m.ID)
				}
				a.printf("%s\n", line)
			})
		},
	}
	return protect(cmd, guard.RouteDashboard)
}
