package main

import (
	"github.com/spf13/cobra"

	"github.com/alecgard/enclave/internal/deptuser"
	"github.com/alecgard/enclave/internal/listing"
)

func bindDeptUserForm(cmd *cobra.Command) *formFlags {
	f := newFormFlags(cmd)
	f.String("email", "email address")
	f.String("first-name", "first name")
	f.String("last-name", "last name")
	f.String("gender", "gender (male, female)")
	f.String("dob", "date of birth (YYYY-MM-DD)")
	f.String("phone", "phone number")
	f.String("cnic", "CNIC number")
	return f
}

func fillDeptUser(f *formFlags, in *deptuser.Input) {
	f.apply("email", &in.Email)
	f.apply("first-name", &in.FirstName)
	f.apply("last-name", &in.LastName)
	f.apply("gender", &in.Gender)
	f.apply("dob", &in.Dob)
	f.apply("phone", &in.PhoneNumber)
	f.apply("cnic", &in.Cnic)
}

func departmentUsersCmd() *cobra.Command {
	cmd := screenCmd("department-users", "Manage department staff accounts")

	create := &cobra.Command{Use: "create", Short: "Create a department user", Args: cobra.NoArgs}
	createForm := bindDeptUserForm(create)
	create.RunE = func(cmd *cobra.Command, args []string) error {
		return withScreen(cmd, "department-users", nil, func(a *app, s listing.Screen) error {
			in := deptuser.Input{Gender: deptuser.GenderMale}
			fillDeptUser(createForm, &in)
			created, err := a.departmentUsers.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return finish(nil, "Department user %s created (id %d).", created.Email, created.ID)
		})
	}

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a department user; fields not given keep their value",
		Args:  cobra.ExactArgs(1),
	}
	updateForm := bindDeptUserForm(update)
	update.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := argID(args[0])
		if err != nil {
			return err
		}
		return withScreen(cmd, "department-users", nil, func(a *app, s listing.Screen) error {
			d, err := a.departmentUsers.Edit(cmd.Context(), id)
			if err != nil {
				return err
			}
			fillDeptUser(updateForm, &d.Current)
			_, err = a.departmentUsers.Save(cmd.Context(), id, d)
			return finish(err, "Department user %d updated.", id)
		})
	}

	var df listFlags
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a department user on the selected page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			return withScreen(cmd, "department-users", &df, func(a *app, s listing.Screen) error {
				return finish(a.departmentUsers.Delete(cmd.Context(), id), "Department user %d deleted.", id)
			})
		},
	}
	df.register(del)

	cmd.AddCommand(create, update, del)
	return cmd
}
