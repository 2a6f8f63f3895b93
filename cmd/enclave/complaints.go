package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/alecgard/enclave/internal/complaint"
	"github.com/alecgard/enclave/internal/listing"
)

func complaintsCmd() *cobra.Command {
	cmd := screenCmd("complaints", "Track resident complaints")

	var lf listFlags
	var reason string
	status := &cobra.Command{
		Use:   "status ID STATUS",
		Short: "Move a complaint forward (" + strings.Join(complaint.Statuses.States, ", ") + ")",
		Long:  "Move a complaint on the selected page forward. Closing requires --reason.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := argID(args[0])
			if err != nil {
				return err
			}
			return withScreen(cmd, "complaints", &lf, func(a *app, s listing.Screen) error {
				updated, err := a.complaints.UpdateStatus(cmd.Context(), id, args[1], reason)
				if err != nil {
					return err
				}
				return finish(nil, "Complaint %d is %s.", id, updated.Status)
			})
		},
	}
	lf.register(status)
	status.Flags().StringVar(&reason, "reason", "", "closing reason")
	cmd.AddCommand(status)
	return cmd
}
