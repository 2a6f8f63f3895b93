package main

func init() {
	rootCmd.AddCommand(
		usersCmd(),
		plotsCmd(),
		membershipsCmd(),
		screenCmd("pets", "Browse registered pets"),
		complaintsCmd(),
		departmentsCmd(),
		departmentUsersCmd(),
	)
}
