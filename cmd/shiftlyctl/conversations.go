package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"shiftly/internal/analytics"
	"shiftly/internal/state"

	"github.com/spf13/cobra"
)

func newConversationsCmd(flags *backendFlags) *cobra.Command {
	var status, search string

	cmd := &cobra.Command{
		Use:   "conversations",
		Short: "List conversations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console, _, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			ctrl := console.Conversations
			ctrl.SetStatusFilter(status)
			ctrl.SetSearch(search)
			if err := ctrl.Refresh(cmd.Context()); err != nil {
				return err
			}

			visible := ctrl.Filtered()
			out := cmd.OutOrStdout()
			if len(visible) == 0 {
				fmt.Fprintln(out, "No conversations found.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CUSTOMER\tPHONE\tSTATUS\tSCORE")
			for _, c := range visible {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.DisplayName(), c.Phone, analytics.StatusLabel(c.Status), c.FormattedScore())
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "only show this status (active, completed, abandoned)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "match customer name or phone")
	return cmd
}

func newConversationCmd(flags *backendFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "conversation <phone>",
		Short: "Show a conversation transcript",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := openDetail(cmd, flags, args[0])
			if err != nil {
				return err
			}
			printTranscript(cmd, detail.Snapshot())
			return nil
		},
	}
}

func newSendCmd(flags *backendFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "send <phone> <message>",
		Short: "Reply to a customer as the manager",
		Long:  "Sends a manager message that bypasses the AI agent, then prints the refreshed transcript.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := openDetail(cmd, flags, args[0])
			if err != nil {
				return err
			}
			if err := detail.SendMessage(cmd.Context(), strings.Join(args[1:], " ")); err != nil {
				return err
			}
			printTranscript(cmd, detail.Snapshot())
			return nil
		},
	}
}

func newEscalateCmd(flags *backendFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "escalate <phone> [reason]",
		Short: "Escalate a conversation to a human at high priority",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reason := strings.Join(args[1:], " ")
			if strings.TrimSpace(reason) == "" {
				reason = "Manager escalation"
			}
			detail, err := openDetail(cmd, flags, args[0])
			if err != nil {
				return err
			}
			if err := detail.Escalate(cmd.Context(), reason); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Escalated %s: %s\n", args[0], reason)
			return nil
		},
	}
}

func newCompleteCmd(flags *backendFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <phone>",
		Short: "Mark a conversation completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := openDetail(cmd, flags, args[0])
			if err != nil {
				return err
			}
			if err := detail.Complete(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Conversation %s marked %s\n", args[0], detail.Snapshot().Data.Status)
			return nil
		},
	}
}

// openDetail loads a transcript once. A failed load is returned as the
// command's error.
func openDetail(cmd *cobra.Command, flags *backendFlags, phone string) (*state.ConversationDetailController, error) {
	console, _, err := connect(cmd, flags)
	if err != nil {
		return nil, err
	}
	detail, err := console.Detail(phone, "")
	if err != nil {
		return nil, err
	}
	if err := detail.Refresh(cmd.Context()); err != nil {
		return nil, fmt.Errorf("load conversation %s: %w", phone, err)
	}
	return detail, nil
}

func printTranscript(cmd *cobra.Command, snap state.ConversationDetailState) {
	out := cmd.OutOrStdout()
	conv := snap.Data
	fmt.Fprintf(out, "%s (%s) - %s\n", snap.Name, conv.Phone, analytics.StatusLabel(conv.Status))
	for _, m := range conv.Messages {
		who := "Customer"
		switch {
		case m.IsManager():
			who = "Manager"
		case m.IsAgent():
			who = "Agent"
		}
		fmt.Fprintf(out, "  [%s] %s\n", who, m.Content)
	}
}
