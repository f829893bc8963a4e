package main

import (
	"fmt"

	"shiftly/internal/state"

	"github.com/spf13/cobra"
)

func newConfigCmd(flags *backendFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the dealership agent configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Show dealership and agent configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console, _, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			console.Settings.Load(cmd.Context())
			printSettings(cmd, console.Settings.Snapshot())
			return nil
		},
	})
	cmd.AddCommand(newConfigSetCmd(flags))
	return cmd
}

func newConfigSetCmd(flags *backendFlags) *cobra.Command {
	var (
		threshold   int
		temperature float64
		maxTokens   int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save agent tuning",
		Long:  "Saves the qualification threshold (0-100), model temperature (0-1) and max tokens (100-500). Unset flags keep their current values.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			console, _, err := connect(cmd, flags)
			if err != nil {
				return err
			}
			settings := console.Settings
			settings.Load(cmd.Context())

			current := settings.Snapshot()
			if !cmd.Flags().Changed("threshold") {
				threshold = current.QualificationThreshold
			}
			if !cmd.Flags().Changed("temperature") {
				temperature = current.ModelTemperature
			}
			if !cmd.Flags().Changed("max-tokens") {
				maxTokens = current.MaxTokens
			}

			if err := settings.SetAgentConfig(threshold, temperature, maxTokens); err != nil {
				return err
			}
			if err := settings.SaveConfig(cmd.Context()); err != nil {
				return fmt.Errorf("save config: %w", err)
			}
			if settings.ConsumeSaveSuccess() {
				fmt.Fprintln(cmd.OutOrStdout(), "Configuration saved.")
			}
			printSettings(cmd, settings.Snapshot())
			return nil
		},
	}

	cmd.Flags().IntVar(&threshold, "threshold", state.DefaultQualificationThreshold, "qualification threshold (0-100)")
	cmd.Flags().Float64Var(&temperature, "temperature", state.DefaultModelTemperature, "model temperature (0-1)")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", state.DefaultMaxTokens, "max response tokens (100-500)")
	return cmd
}

func printSettings(cmd *cobra.Command, s state.SettingsState) {
	out := cmd.OutOrStdout()
	health := "unreachable"
	if s.APIHealthy {
		health = "healthy"
	}
	fmt.Fprintf(out, "Dealership:   %s\n", s.DealershipName)
	fmt.Fprintf(out, "Phone:        %s\n", s.Phone)
	fmt.Fprintf(out, "Timezone:     %s\n", s.Timezone)
	fmt.Fprintf(out, "SMS provider: %s\n", s.SMSProvider)
	fmt.Fprintf(out, "Threshold:    %d\n", s.QualificationThreshold)
	fmt.Fprintf(out, "Temperature:  %.2f\n", s.ModelTemperature)
	fmt.Fprintf(out, "Max tokens:   %d\n", s.MaxTokens)
	fmt.Fprintf(out, "Backend:      %s\n", health)
}
