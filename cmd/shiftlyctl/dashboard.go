package main

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"shiftly/internal/analytics"
	"shiftly/internal/models"
	"shiftly/internal/state"

	"github.com/spf13/cobra"
)

func newHealthCmd(flags *backendFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the agent backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, client, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			if !client.CheckHealth(cmd.Context()) {
				return fmt.Errorf("backend is unhealthy")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "backend is healthy")
			return nil
		},
	}
}

func newDashboardCmd(flags *backendFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show conversation totals and score breakdown",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console, _, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			if err := console.Dashboard.Refresh(cmd.Context()); err != nil {
				return err
			}
			printDashboard(cmd, console.Dashboard.Snapshot())
			return nil
		},
	}
}

func printDashboard(cmd *cobra.Command, snap state.DashboardState) {
	out := cmd.OutOrStdout()
	m := snap.Data
	fmt.Fprintf(out, "Total conversations:  %d\n", m.TotalConversations)
	fmt.Fprintf(out, "Active conversations: %d\n", m.ActiveConversations)
	fmt.Fprintf(out, "Average score:        %s\n", models.FormatPercent(m.AverageQualificationScore))

	if snap.Analytics == nil {
		return
	}
	a := snap.Analytics
	fmt.Fprintf(out, "Completion rate:      %s\n", a.CompletionRateLabel)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\nBAND\tCOUNT")
	for _, band := range []models.ScoreBand{models.BandHigh, models.BandMid, models.BandLow} {
		fmt.Fprintf(w, "%s\t%d\n", band, a.BandCounts[band])
	}
	fmt.Fprintln(w, "\nSTATUS\tCOUNT")
	for _, status := range sortedKeys(a.StatusCounts) {
		fmt.Fprintf(w, "%s\t%d\n", analytics.StatusLabel(status), a.StatusCounts[status])
	}
	_ = w.Flush()

	if len(a.ScoreChart) > 0 {
		fmt.Fprintln(out, "\nRecent scores (oldest first):")
		for _, p := range a.ScoreChart {
			fmt.Fprintf(out, "  %-24s %s\n", p.Label, models.FormatPercent(p.Score))
		}
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
