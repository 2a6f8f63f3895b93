package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/member"
)

func usersCmd() *cobra.Command {
	cmd := screenCmd("users", "Approve and activate member users")

	for _, active := range []bool{true, false} {
		use := "deactivate"
		if active {
			use = "activate"
		}
		var lf listFlags
		c := &cobra.Command{
			Use:   use + " ID",
			Short: strings.ToUpper(use[:1]) + use[1:] + " a user on the selected page",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := argID(args[0])
				if err != nil {
					return err
				}
				return withScreen(cmd, "users", &lf, func(a *app, s listing.Screen) error {
					return finish(a.users.SetActive(cmd.Context(), id, active), "User %d %sd.", id, use)
				})
			},
		}
		lf.register(c)
		cmd.AddCommand(c)
	}

	var lf listFlags
	status := &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move a user through approval (" + strings.Join(member.Statuses.States, ", ") + ")",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			return withScreen(cmd, "users", &lf, func(a *app, s listing.Screen) error {
				return finish(a.users.ChangeStatus(cmd.Context(), id, args[1]), "User %d status is %s.", id, args[1])
			})
		},
	}
	lf.register(status)
	cmd.AddCommand(status)
	return cmd
}
