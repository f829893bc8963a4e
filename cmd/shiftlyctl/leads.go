package main

import (
	"fmt"
	"text/tabwriter"

	"shiftly/internal/models"
	"shiftly/internal/state"

	"github.com/spf13/cobra"
)

func newLeadsCmd(flags *backendFlags) *cobra.Command {
	var band string

	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Rank leads by qualification score",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := state.ParseLeadFilter(band)
			if err != nil {
				return err
			}
			console, _, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			if err := console.Leads.Refresh(cmd.Context()); err != nil {
				return err
			}

			snap := console.Leads.Snapshot(filter)
			out := cmd.OutOrStdout()
			if len(snap.Leads) == 0 {
				fmt.Fprintln(out, "No leads in this band.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "RANK\tCUSTOMER\tPHONE\tSCORE\tBAND")
			for _, lead := range snap.Leads {
				fmt.Fprintf(w, "#%d\t%s\t%s\t%s\t%s\n", lead.Rank, lead.DisplayName(), lead.Phone,
					models.FormatPercent(*lead.QualificationScore), lead.Band)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&band, "band", "b", "all", "hot, warm or all")
	return cmd
}
