package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/report"
)

// listFlags selects the page a screen command works on.
type listFlags struct {
	page    int
	search  string
	filters []string
}

func (f *listFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.page, "page", 1, "page number")
	cmd.Flags().StringVar(&f.search, "search", "", "free-text search")
	cmd.Flags().StringArrayVar(&f.filters, "filter", nil, "filter as key=value (repeatable)")
}

// load applies filters and search, then moves to the requested page.
func (f *listFlags) load(ctx context.Context, s listing.Screen) error {
	refreshed := false
	filters := make(map[string]string, len(f.filters))
	for _, kv := range f.filters {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			return fmt.Errorf("filter %q must be key=value", kv)
		}
		filters[strings.TrimSpace(k)] = v
	}
	if len(filters) > 0 {
		if err := s.SetFilters(ctx, filters); err != nil {
			return err
		}
		refreshed = true
	}
	if f.search != "" {
		if err := s.SetSearch(ctx, f.search); err != nil {
			return err
		}
		refreshed = true
	}
	if !refreshed {
		if err := s.Refresh(ctx); err != nil {
			return err
		}
	}
	if f.page > 1 {
		if err := s.GoToPage(ctx, f.page); err != nil {
			return err
		}
		if snap := s.Snapshot(); snap.Page != f.page {
			return fmt.Errorf("page %d is out of range (1-%d)", f.page, max(snap.TotalPages, 1))
		}
	}
	return nil
}

// withScreen builds the app, checks the session against the screen's route
// and loads the page selected by f before calling fn.
func withScreen(cmd *cobra.Command, name string, f *listFlags, fn func(a *app, s listing.Screen) error) error {
	a, err := newApp(cmd.Context(), cliLogger(), cliPrompter(os.Stdin, os.Stdout))
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.authorize(name); err != nil {
		return err
	}
	s, err := a.screen(name)
	if err != nil {
		return err
	}
	if f != nil {
		if err := f.load(cmd.Context(), s); err != nil {
			return err
		}
	}
	return fn(a, s)
}

// screenCmd builds `enclave <name> list|browse|export`.
func screenCmd(name, short string) *cobra.Command {
	parent := &cobra.Command{Use: name, Short: short}

	var lf listFlags
	list := &cobra.Command{
		Use:   "list",
		Short: "Print one page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScreen(cmd, name, &lf, func(a *app, s listing.Screen) error {
				return printSnapshot(os.Stdout, s.Snapshot())
			})
		},
	}
	lf.register(list)

	var bf listFlags
	browse := &cobra.Command{
		Use:   "browse",
		Short: "Page through the list interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScreen(cmd, name, &bf, func(a *app, s listing.Screen) error {
				return browseLoop(cmd.Context(), s, os.Stdin, os.Stdout)
			})
		},
	}
	bf.register(browse)

	var ef listFlags
	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write one page as a PDF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScreen(cmd, name, &ef, func(a *app, s listing.Screen) error {
				snap := s.Snapshot()
				path := out
				if path == "" {
					path = fmt.Sprintf("%s-page-%d.pdf", snap.Screen, snap.Page)
				}
				if err := exportPDF(path, snap); err != nil {
					return err
				}
				fmt.Printf("Wrote %s (%s).\n", path, snap.Describe())
				return nil
			})
		},
	}
	ef.register(export)
	export.Flags().StringVarP(&out, "out", "o", "", "output file (default <screen>-page-<n>.pdf)")

	parent.AddCommand(list, browse, export)
	return parent
}

func exportPDF(path string, snap listing.Snapshot) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return report.WritePDF(f, report.Table{
		Title:       snap.Title,
		Subtitle:    snap.Describe(),
		Columns:     snap.Columns,
		Rows:        snap.Rows,
		GeneratedAt: time.Now(),
	})
}

func printSnapshot(w io.Writer, snap listing.Snapshot) error {
	fmt.Fprintf(w, "%s\n\n", snap.Title)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(snap.Columns, "\t")))
	for _, row := range snap.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if len(snap.Rows) == 0 {
		fmt.Fprintln(w, "No records found.")
	}
	fmt.Fprintf(w, "\n%s\n%s\n", snap.Describe(), pageBar(snap))
	return nil
}

// pageBar renders the visible page window, e.g. "< 1 [2] 3 4 5 >".
func pageBar(snap listing.Snapshot) string {
	var b strings.Builder
	if snap.HasPrevious {
		b.WriteString("< ")
	}
	for i, n := range snap.PageNumbers {
		if i > 0 {
			b.WriteByte(' ')
		}
		if n == snap.Page {
			fmt.Fprintf(&b, "[%d]", n)
		} else {
			b.WriteString(strconv.Itoa(n))
		}
	}
	if snap.HasNext {
		b.WriteString(" >")
	}
	return b.String()
}

const browseHelp = `n next page   p previous page   g N go to page N
s TERM search   s clear search   f KEY=VALUE filter (empty value clears)
r refresh   q quit`

// browseLoop drives a screen from line commands until q or EOF.
func browseLoop(ctx context.Context, s listing.Screen, in io.Reader, out io.Writer) error {
	if err := printSnapshot(out, s.Snapshot()); err != nil {
		return err
	}
	fmt.Fprintln(out, browseHelp)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			return sc.Err()
		}
		cmd, arg, _ := strings.Cut(strings.TrimSpace(sc.Text()), " ")
		arg = strings.TrimSpace(arg)

		var err error
		switch cmd {
		case "":
			continue
		case "q", "quit":
			return nil
		case "n":
			err = s.GoToPage(ctx, s.Snapshot().Page+1)
		case "p":
			err = s.GoToPage(ctx, s.Snapshot().Page-1)
		case "g":
			n, convErr := strconv.Atoi(arg)
			if convErr != nil {
				fmt.Fprintln(out, "usage: g N")
				continue
			}
			err = s.GoToPage(ctx, n)
		case "s":
			err = s.SetSearch(ctx, arg)
		case "f":
			k, v, ok := strings.Cut(arg, "=")
			if !ok {
				fmt.Fprintln(out, "usage: f KEY=VALUE")
				continue
			}
			err = s.SetFilter(ctx, strings.TrimSpace(k), v)
		case "r":
			err = s.Refresh(ctx)
		default:
			fmt.Fprintln(out, browseHelp)
			continue
		}
		if err != nil {
			fmt.Fprintln(out, describe(err))
			continue
		}
		if err := printSnapshot(out, s.Snapshot()); err != nil {
			return err
		}
	}
}
