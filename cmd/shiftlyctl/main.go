package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version info set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// backendFlags override the environment configuration for one invocation
type backendFlags struct {
	baseURL      string
	apiKey       string
	dealershipID string
	verbose      bool
}

func newRootCmd() *cobra.Command {
	flags := &backendFlags{}

	cmd := &cobra.Command{
		Use:           "shiftlyctl",
		Short:         "Shiftly manager console on the command line",
		Long:          "shiftlyctl reads dashboards, leads and escalations from the Shiftly agent backend and performs one-shot manager actions.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&flags.baseURL, "api-url", "", "backend API root (default $SHIFTLY_API_BASE_URL)")
	cmd.PersistentFlags().StringVar(&flags.apiKey, "api-key", "", "backend API key (default $SHIFTLY_API_KEY)")
	cmd.PersistentFlags().StringVar(&flags.dealershipID, "dealership", "", "dealership id (default $SHIFTLY_DEALERSHIP_ID)")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "log backend requests to stderr")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newHealthCmd(flags))
	cmd.AddCommand(newDashboardCmd(flags))
	cmd.AddCommand(newConversationsCmd(flags))
	cmd.AddCommand(newConversationCmd(flags))
	cmd.AddCommand(newSendCmd(flags))
	cmd.AddCommand(newEscalateCmd(flags))
	cmd.AddCommand(newCompleteCmd(flags))
	cmd.AddCommand(newEscalationsCmd(flags))
	cmd.AddCommand(newLeadsCmd(flags))
	cmd.AddCommand(newConfigCmd(flags))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "shiftlyctl %s (commit: %s, built: %s)\n", Version, Commit, Date)
		},
	}
}

func execute(cmd *cobra.Command) int {
	if err := cmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(execute(newRootCmd()))
}
