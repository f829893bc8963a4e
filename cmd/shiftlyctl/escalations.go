package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"shiftly/internal/models"
	"shiftly/internal/state"

	"github.com/spf13/cobra"
)

func newEscalationsCmd(flags *backendFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escalations",
		Short: "List, claim and resolve escalations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List escalations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console, _, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			if err := console.Escalations.Refresh(cmd.Context()); err != nil {
				return err
			}
			printEscalations(cmd, console.Escalations.Snapshot())
			return nil
		},
	})
	cmd.AddCommand(newEscalationMutationCmd(flags, "claim", "Claim an escalation", (*state.EscalationsController).Claim))
	cmd.AddCommand(newEscalationMutationCmd(flags, "resolve", "Resolve an escalation", (*state.EscalationsController).Resolve))
	return cmd
}

type escalationMutation func(c *state.EscalationsController, ctx context.Context, id string) error

func newEscalationMutationCmd(flags *backendFlags, use, short string, mutate escalationMutation) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			console, _, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			if err := mutate(console.Escalations, cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("%s %s: %w", use, args[0], err)
			}
			printEscalations(cmd, console.Escalations.Snapshot())
			return nil
		},
	}
}

func printEscalations(cmd *cobra.Command, snap state.EscalationsState) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Active: %d\n", snap.ActiveCount)
	if snap.Data == nil || len(snap.Data.Escalations) == 0 {
		fmt.Fprintln(out, "No escalations.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPHONE\tSTATUS\tSCORE\tREASON")
	for _, e := range snap.Data.Escalations {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.CustomerPhone, e.Status, models.FormatPercent(e.Score()), e.EscalationReason)
	}
	_ = w.Flush()
}
