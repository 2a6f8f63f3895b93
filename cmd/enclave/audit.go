package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alecgard/enclave/internal/audit"
	"github.com/alecgard/enclave/internal/auth"
)

var auditQuery struct {
	audit.Query
	since time.Duration
}

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show writes recorded by the console server",
	Long:  "Show writes recorded by the console server, newest first. Requires audit.enabled and database.url.",
	Args:  cobra.NoArgs,
	RunE:  runAudit,
}

func init() {
	f := auditCmd.Flags()
	f.StringVar(&auditQuery.Action, "action", "", "only this action, e.g. plot.delete")
	f.StringVar(&auditQuery.ResourceType, "resource", "", "only this resource type, e.g. membership")
	f.IntVar(&auditQuery.ResourceID, "id", 0, "only this resource id")
	f.DurationVar(&auditQuery.since, "since", 0, "only events newer than this, e.g. 24h")
	f.Int64Var(&auditQuery.Before, "before", 0, "only events older than this event id")
	f.IntVar(&auditQuery.Limit, "limit", 50, "maximum events to show")
	rootCmd.AddCommand(auditCmd)
}

func runAudit(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), cliLogger(), cliPrompter(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.guard.Check(auth.RouteDashboard); err != nil {
		return err
	}
	pool, err := a.database(cmd.Context())
	if err != nil {
		return err
	}

	q := auditQuery.Query
	if auditQuery.since > 0 {
		q.Since = time.Now().Add(-auditQuery.since)
	}
	events, next, err := audit.NewStore(pool).List(cmd.Context(), q)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("No audit events.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tACTION\tRESOURCE\tUSER\tDETAIL")
	for _, ev := range events {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s %d\t%s\t%s\n",
			ev.ID, ev.Time.Local().Format(time.DateTime), ev.Action,
			ev.ResourceType, ev.ResourceID, ev.UserEmail, formatDetail(ev.Detail))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if next > 0 {
		fmt.Printf("\nMore events: enclave audit --before %d\n", next)
	}
	return nil
}

func formatDetail(d map[string]any) string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%v", k, d[k]))
	}
	return strings.Join(parts, " ")
}
