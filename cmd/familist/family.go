package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dukerupert/familist/internal/apiclient"
	"github.com/dukerupert/familist/internal/guard"
	"github.com/dukerupert/familist/internal/model"
)

func (a *app) familyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "family",
		Short: "Create, join and inspect your family",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show your family and its members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := a.client.Family(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(detail)
			}
			a.printf("%s (id %d)\n\n", detail.Family.Name, detail.Family.ID)
			return a.printMembers(detail.Members)
		},
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List families you can join",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			families, err := a.client.ListFamilies(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(families)
			}
			rows := make([][]string, 0, len(families))
			for _, f := range families {
				rows = append(rows, []string{formatInt(f.ID), f.Name, formatTime(&f.CreatedAt)})
			}
			return a.table("ID\tNAME\tCREATED", rows)
		},
	}

	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a family and become its admin",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.client.CreateFamily(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return a.enterFamily(m)
		},
	}

	join := &cobra.Command{
		Use:   "join <family-id>",
		Short: "Join an existing family",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			m, err := a.client.JoinFamily(cmd.Context(), id)
			if err != nil {
				return err
			}
			return a.enterFamily(m)
		},
	}

	protect(show, guard.RouteDashboard)
	for _, c := range []*cobra.Command{list, create, join} {
		protect(c, guard.RouteFamilySetup)
	}
	cmd.AddCommand(show, list, create, join)
	return cmd
}

// enterFamily stores the rotated token so later calls carry the family
// claims.
func (a *app) enterFamily(m *apiclient.FamilyMembership) error {
	if err := a.session.Replace(m.User, m.Token); err != nil {
		return err
	}
	if a.jsonOut {
		return a.printJSON(m)
	}
	a.printf("You are now a %s of %s (id %d).\n", strings.ToLower(m.User.Role), m.Family.Name, m.Family.ID)
	return nil
}

func (a *app) printMembers(members []model.User) error {
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		rows = append(rows, []string{formatInt(m.ID), m.Name, m.Email, m.Role})
	}
	return a.table("ID\tNAME\tEMAIL\tROLE", rows)
}

func (a *app) membersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "members",
		Short: "Manage family members",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List family members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			members, err := a.client.Members(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(members)
			}
			return a.printMembers(members)
		},
	}

	add := &cobra.Command{
		Use:   "add <email> <name>",
		Short: "Add a member; they receive a temporary password by email",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			role, _ := cmd.Flags().GetString("role")
			user, err := a.client.AddMember(cmd.Context(), apiclient.NewMember{
				Email: args[0],
				Name:  strings.Join(args[1:], " "),
				Role:  strings.ToUpper(role),
			})
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(user)
			}
			a.printf("Added %s <%s> as %s. An invitation email is on its way.\n", user.Name, user.Email, user.Role)
			return nil
		},
	}
	add.Flags().String("role", model.RoleMember, "ADMIN, MEMBER or RESTRICTED")

	role := &cobra.Command{
		Use:   "role <user-id> <ADMIN|MEMBER|RESTRICTED>",
		Short: "Change a member's role",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			user, err := a.client.UpdateMemberRole(cmd.Context(), id, strings.ToUpper(args[1]))
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(user)
			}
			a.printf("%s is now %s.\n", user.Name, user.Role)
			return nil
		},
	}

	for _, c := range []*cobra.Command{list, add, role} {
		protect(c, "/settings")
	}
	cmd.AddCommand(list, add, role)
	return cmd
}
