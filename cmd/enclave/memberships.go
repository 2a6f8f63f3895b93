package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/membership"
)

func bindMembershipForm(cmd *cobra.Command) *formFlags {
	f := newFormFlags(cmd)
	f.String("echs-no", "ECHS number")
	f.String("name", "member name")
	return f
}

func fillMembership(f *formFlags, in *membership.Input) {
	f.apply("echs-no", &in.EchsNo)
	f.apply("name", &in.Name)
}

func membershipsCmd() *cobra.Command {
	cmd := screenCmd("memberships", "Manage membership numbers")

	create := &cobra.Command{Use: "create", Short: "Create a membership number", Args: cobra.NoArgs}
	createForm := bindMembershipForm(create)
	create.RunE = func(cmd *cobra.Command, args []string) error {
		return withScreen(cmd, "memberships", nil, func(a *app, s listing.Screen) error {
			var in membership.Input
			fillMembership(createForm, &in)
			created, err := a.memberships.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return finish(nil, "Membership %s created (id %d).", created.EchsNo, created.ID)
		})
	}

	var uf listFlags
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a membership on the selected page",
		Args:  cobra.ExactArgs(1),
	}
	uf.register(update)
	updateForm := bindMembershipForm(update)
	update.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := argID(args[0])
		if err != nil {
			return err
		}
		return withScreen(cmd, "memberships", &uf, func(a *app, s listing.Screen) error {
			d, err := a.memberships.Edit(id)
			if err != nil {
				return err
			}
			fillMembership(updateForm, &d.Current)
			_, err = a.memberships.Save(cmd.Context(), id, d)
			return finish(err, "Membership %d updated.", id)
		})
	}

	var df listFlags
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a membership with no plots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			return withScreen(cmd, "memberships", &df, func(a *app, s listing.Screen) error {
				return finish(a.memberships.Delete(cmd.Context(), id), "Membership %d deleted.", id)
			})
		},
	}
	df.register(del)
	cmd.AddCommand(create, update, del)

	for _, active := range []bool{true, false} {
		use := "deactivate"
		if active {
			use = "activate"
		}
		var lf listFlags
		c := &cobra.Command{
			Use:   use + " ID",
			Short: strings.ToUpper(use[:1]) + use[1:] + " a membership on the selected page",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := argID(args[0])
				if err != nil {
					return err
				}
				return withScreen(cmd, "memberships", &lf, func(a *app, s listing.Screen) error {
					return finish(a.memberships.SetActive(cmd.Context(), id, active), "Membership %d %sd.", id, use)
				})
			},
		}
		lf.register(c)
		cmd.AddCommand(c)
	}
	return cmd
}
