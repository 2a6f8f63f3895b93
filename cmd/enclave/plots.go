package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alecgard/enclave/internal/listing"
	"github.com/alecgard/enclave/internal/plot"
)

// plotForm binds the plot create/edit fields.
type plotForm struct {
	*formFlags
	members []int
}

func bindPlotForm(cmd *cobra.Command) *plotForm {
	f := &plotForm{formFlags: newFormFlags(cmd)}
	f.String("plot-no", "plot number")
	f.String("type", "plot type ("+strings.Join(plot.Types, ", ")+")")
	f.String("status", "plot status ("+strings.Join(plot.Statuses, ", ")+")")
	f.String("possession-date", "possession date (YYYY-MM-DD)")
	f.String("covered-area", "covered area")
	f.String("street", "street number")
	f.String("block", "block")
	f.String("sector", "sector")
	f.String("house-no", "house number (residential plots)")
	f.String("plaza-no", "plaza number (commercial plots)")
	cmd.Flags().IntSliceVar(&f.members, "member", nil, "membership number id (repeatable)")
	return f
}

func (f *plotForm) fill(in *plot.Input) {
	f.apply("plot-no", &in.PlotNo)
	f.apply("type", &in.PlotType)
	f.apply("status", &in.PlotStatus)
	f.apply("possession-date", &in.PossessionDate)
	f.apply("covered-area", &in.CoveredArea)
	f.apply("street", &in.StreetNo)
	f.apply("block", &in.Block)
	f.apply("sector", &in.Sector)
	f.apply("house-no", &in.HouseNo)
	f.apply("plaza-no", &in.PlazaNo)
	if f.cmd.Flags().Changed("member") {
		in.MembershipNumberIDs = f.members
	}
}

func plotsCmd() *cobra.Command {
	cmd := screenCmd("plots", "Manage plots")

	create := &cobra.Command{
		Use:   "create",
		Short: "Create a plot",
		Args:  cobra.NoArgs,
	}
	createForm := bindPlotForm(create)
	create.RunE = func(cmd *cobra.Command, args []string) error {
		return withScreen(cmd, "plots", nil, func(a *app, s listing.Screen) error {
			var in plot.Input
			createForm.fill(&in)
			created, err := a.plots.Create(cmd.Context(), in)
			if err != nil {
				return err
			}
			return finish(nil, "Plot %s created (id %d).", created.PlotNo, created.ID)
		})
	}

	update := &cobra.Command{
		Use:   "update ID",
		Short: "Edit a plot; fields not given keep their value",
		Args:  cobra.ExactArgs(1),
	}
	updateForm := bindPlotForm(update)
	update.RunE = func(cmd *cobra.Command, args []string) error {
		id, err := argID(args[0])
		if err != nil {
			return err
		}
		return withScreen(cmd, "plots", nil, func(a *app, s listing.Screen) error {
			existing, err := a.plots.Lookup(cmd.Context(), id)
			if err != nil {
				return err
			}
			in := plot.InputFrom(*existing)
			updateForm.fill(&in)
			updated, err := a.plots.Update(cmd.Context(), id, in)
			if err != nil {
				return err
			}
			return finish(nil, "Plot %s updated.", updated.PlotNo)
		})
	}

	var df listFlags
	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a plot with no members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			return withScreen(cmd, "plots", &df, func(a *app, s listing.Screen) error {
				return finish(a.plots.Delete(cmd.Context(), id), "Plot %d deleted.", id)
			})
		},
	}
	df.register(del)

	var search string
	members := &cobra.Command{
		Use:   "memberships",
		Short: "List membership numbers that can be assigned to a plot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withScreen(cmd, "plots", nil, func(a *app, s listing.Screen) error {
				items, err := a.plots.Memberships(cmd.Context(), search)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tECHS NO\tNAME\tACTIVE")
				for _, m := range items {
					fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", m.ID, m.EchsNo, m.Name, listing.YesNo(m.IsActive))
				}
				return w.Flush()
			})
		},
	}
	members.Flags().StringVar(&search, "search", "", "match name or ECHS number")

	cmd.AddCommand(create, update, del, members)
	return cmd
}
