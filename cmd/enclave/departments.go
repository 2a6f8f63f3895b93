package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alecgard/enclave/internal/department"
	"github.com/alecgard/enclave/internal/listing"
)

func departmentsCmd() *cobra.Command {
	cmd := screenCmd("departments", "Manage departments")

	var in department.CreateInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a department and assign its user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScreen(cmd, "departments", nil, func(a *app, s listing.Screen) error {
				created, err := a.departments.Create(cmd.Context(), in)
				if err != nil {
					return err
				}
				return finish(nil, "Department %s created (id %d).", created.DepartmentName, created.ID)
			})
		},
	}
	create.Flags().StringVar(&in.DepartmentName, "name", "", "department name")
	create.Flags().IntVar(&in.UserID, "user-id", 0, "assigned department user id")
	create.Flags().StringVar(&in.Password, "password", "", "password for the assigned user (min 8 characters)")

	var up department.UpdateInput
	update := &cobra.Command{
		Use:   "update ID",
		Short: "Rename a department or reassign its user",
		Long:  "Rename a department or reassign its user. A password is required only when the user changes.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			return withScreen(cmd, "departments", nil, func(a *app, s listing.Screen) error {
				d, _, err := a.departments.Edit(cmd.Context(), id)
				if err != nil {
					return err
				}
				in := department.UpdateInput{DepartmentName: d.DepartmentName, UserID: d.UserID, Password: up.Password}
				if cmd.Flags().Changed("name") {
					in.DepartmentName = up.DepartmentName
				}
				if cmd.Flags().Changed("user-id") {
					in.UserID = up.UserID
				}
				if _, err := a.departments.Update(cmd.Context(), id, in); err != nil {
					return err
				}
				return finish(nil, "Department %d updated.", id)
			})
		},
	}
	update.Flags().StringVar(&up.DepartmentName, "name", "", "department name")
	update.Flags().IntVar(&up.UserID, "user-id", 0, "assigned department user id")
	update.Flags().StringVar(&up.Password, "password", "", "password for a newly assigned user")

	var current int
	users := &cobra.Command{
		Use:   "users",
		Short: "List department users that can be assigned",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScreen(cmd, "departments", nil, func(a *app, s listing.Screen) error {
				opts, err := a.departments.Users(cmd.Context(), current)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tNAME\tEMAIL")
				for _, u := range opts {
					fmt.Fprintf(w, "%d\t%s\t%s\n", u.ID, u.FullName, u.Email)
				}
				return w.Flush()
			})
		},
	}
	users.Flags().IntVar(&current, "current", 0, "include this already assigned user id")

	cmd.AddCommand(create, update, users)
	return cmd
}
