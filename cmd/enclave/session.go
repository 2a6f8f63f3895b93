package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alecgard/enclave/internal/auth"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as an administrator",
	Long:  "Sign in and store the session. The password is read from ENCLAVE_PASSWORD or from stdin.",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), cliLogger(), cliPrompter(os.Stdin, os.Stdout))
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.sessions.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in administrator",
	RunE:  runWhoami,
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List the screens available to the signed-in role",
	RunE:  runMenu,
}

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show the greeting and record counts",
	RunE:  runDashboard,
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "administrator email")
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, menuCmd, dashboardCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cliLogger(), cliPrompter(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}
	defer a.Close()

	in := bufio.NewReader(os.Stdin)
	email := strings.TrimSpace(loginEmail)
	if email == "" {
		fmt.Print("Email: ")
		line, _ := in.ReadString('\n')
		email = strings.TrimSpace(line)
	}
	password := os.Getenv("ENCLAVE_PASSWORD")
	if password == "" {
		fmt.Print("Password: ")
		line, _ := in.ReadString('\n')
		password = strings.TrimRight(line, "\r\n")
	}

	s, err := a.sessions.Login(cmd.Context(), email, password)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s (%s).\n", s.Profile.DisplayName(), s.Profile.Role)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cliLogger(), cliPrompter(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.guard.Authenticate(); err != nil {
		return err
	}
	s, _ := a.sessions.Current()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name\t%s\n", s.Profile.DisplayName())
	fmt.Fprintf(w, "Email\t%s\n", s.Profile.Email)
	fmt.Fprintf(w, "Role\t%s\n", s.Profile.Role)
	if exp, err := a.sessions.ExpiresAt(); err == nil {
		fmt.Fprintf(w, "Expires\t%s (in %s)\n", exp.Local().Format(time.RFC1123), time.Until(exp).Round(time.Second))
	}
	return w.Flush()
}

func runMenu(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cliLogger(), cliPrompter(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}
	defer a.Close()

	u, err := a.guard.Authenticate()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MENU\tSCREEN\tROUTE")
	for _, item := range auth.MenuFor(u.Role) {
		screen := item.Screen
		if item.Disabled {
			screen = "(coming soon)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", item.Label, screen, item.Route)
	}
	return w.Flush()
}

func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cliLogger(), cliPrompter(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.guard.Check(auth.RouteDashboard); err != nil {
		return err
	}
	s, _ := a.sessions.Current()
	summary, err := a.dashboard.Build(cmd.Context(), s.Profile)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n%s (%s)\n\n", summary.Greeting, summary.Email, summary.Role)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, t := range summary.Tiles {
		if t.Error != "" {
			fmt.Fprintf(w, "%s\tunavailable: %s\n", t.Label, t.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\n", t.Label, t.Count)
	}
	return w.Flush()
}
