package main

import (
	"fmt"

	"shiftly/internal/apiclient"
	"shiftly/internal/config"
	"shiftly/internal/state"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// connect builds a console against the configured backend. Pollers are
// never started; every command is a single round of fetches and intents.
func connect(cmd *cobra.Command, flags *backendFlags) (*state.Console, *apiclient.Client, error) {
	cfg := config.Load()
	if flags.baseURL != "" {
		cfg.APIBaseURL = flags.baseURL
	}
	if flags.apiKey != "" {
		cfg.APIKey = flags.apiKey
	}
	if flags.dealershipID != "" {
		cfg.DealershipID = flags.dealershipID
	}

	level := zerolog.WarnLevel
	if flags.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: true}).
		Level(level).With().Timestamp().Logger()

	client, err := apiclient.New(apiclient.Options{
		BaseURL:      cfg.APIBaseURL,
		APIKey:       cfg.APIKey,
		DealershipID: cfg.DealershipID,
		Timeout:      cfg.RequestTimeoutDuration(),
		Logger:       logger,
	})
	if err != nil {
		return nil, nil, err
	}

	console, err := state.NewConsole(state.Deps{API: client, Logger: logger}, state.ConsoleOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("create console: %w", err)
	}
	return console, client, nil
}
