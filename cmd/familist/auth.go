package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/dukerupert/familist/internal/guard"
	"github.com/dukerupert/familist/internal/model"
)

func (a *app) credentials(cmd *cobra.Command) (email, password string, err error) {
	email, _ = cmd.Flags().GetString("email")
	password, _ = cmd.Flags().GetString("password")
	if email == "" {
		if email, err = a.prompt("Email: "); err != nil {
			return "", "", err
		}
	}
	if password == "" {
		if password, err = a.prompt("Password: "); err != nil {
			return "", "", err
		}
	}
	if email == "" || password == "" {
		return "", "", errors.New("email and password are required")
	}
	return email, password, nil
}

func (a *app) loginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to FamiList",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, password, err := a.credentials(cmd)
			if err != nil {
				return err
			}
			if err := a.session.Login(cmd.Context(), email, password); err != nil {
				return err
			}
			return a.afterSignIn()
		},
	}
	cmd.Flags().StringP("email", "e", "", "account email")
	cmd.Flags().StringP("password", "p", "", "account password (prompted when empty)")
	return protect(cmd, guard.RouteLogin)
}

func (a *app) registerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a FamiList account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email, password, err := a.credentials(cmd)
			if err != nil {
				return err
			}
			name, _ := cmd.Flags().GetString("name")
			if err := a.session.Register(cmd.Context(), email, password, name); err != nil {
				return err
			}
			return a.afterSignIn()
		},
	}
	cmd.Flags().StringP("email", "e", "", "account email")
	cmd.Flags().StringP("password", "p", "", "account password (prompted when empty)")
	cmd.Flags().StringP("name", "n", "", "display name (defaults to the part of the email before @)")
	return protect(cmd, guard.RouteRegister)
}

// afterSignIn reports where the user lands, mirroring the dashboard
// redirect.
func (a *app) afterSignIn() error {
	snap := a.session.Snapshot()
	if a.jsonOut {
		return a.printJSON(snap.User)
	}
	a.printf("Signed in as %s <%s>\n", snap.User.Name, snap.User.Email)
	if !snap.User.HasFamily() {
		a.printf("You are not in a family yet. Run `familist family create <name>` or `familist family join <id>`.\n")
	}
	return nil
}

func (a *app) logoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.session.Logout(); err != nil {
				return err
			}
			a.printf("Signed out.\n")
			return nil
		},
	}
}

func (a *app) whoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.client.Me(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.session.UpdateUser(user); err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(user)
			}
			return a.printUser(user)
		},
	}
	return protect(cmd, guard.RouteFamilySetup)
}

func (a *app) printUser(u *model.User) error {
	family := "-"
	if u.FamilyID != nil {
		family = formatInt(*u.FamilyID)
	}
	return a.table("ID\tNAME\tEMAIL\tROLE\tFAMILY", [][]string{
		{formatInt(u.ID), u.Name, u.Email, u.Role, family},
	})
}
