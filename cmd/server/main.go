package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shiftly/internal/apiclient"
	"shiftly/internal/config"
	"shiftly/internal/metrics"
	"shiftly/internal/notify"
	"shiftly/internal/poller"
	"shiftly/internal/server"
	"shiftly/internal/state"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// schedule parses a poll schedule, falling back to the controller default
func schedule(logger *zerolog.Logger, name, spec string) cron.Schedule {
	if spec == "" {
		return nil
	}
	sched, err := poller.ParseSchedule(spec)
	if err != nil {
		logger.Warn().Err(err).Str("poller", name).Msg("Invalid poll schedule, using default")
		return nil
	}
	return sched
}

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	m := metrics.NewMetrics()

	client, err := apiclient.New(apiclient.Options{
		BaseURL:      cfg.APIBaseURL,
		APIKey:       cfg.APIKey,
		DealershipID: cfg.DealershipID,
		Timeout:      cfg.RequestTimeoutDuration(),
		Logger:       logger,
		Metrics:      m,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid backend configuration")
	}

	notifiers := []notify.Notifier{notify.NewLogNotifier(logger)}
	if cfg.AlertEmailEnabled {
		if cfg.SendGridAPIKey == "" || cfg.AlertEmail == "" {
			logger.Warn().Msg("Alert email enabled but SENDGRID_API_KEY or ALERT_EMAIL is empty, email alerts disabled")
		} else {
			notifiers = append(notifiers, notify.NewEmailNotifier(cfg.SendGridAPIKey, cfg.AlertEmail))
			logger.Info().Str("to", cfg.AlertEmail).Msg("Email alerts enabled")
		}
	}

	// The dispatcher consults the settings screen's preference on every
	// refresh, so it is created before the console and bound after
	var console *state.Console
	dispatcher := notify.NewDispatcher(notify.DispatcherOptions{
		Notifiers:    notifiers,
		DedupeWindow: cfg.AlertDedupeWindow(),
		Enabled:      func() bool { return console != nil && console.AlertsEnabled() },
		Logger:       logger,
		Metrics:      m,
	})

	console, err = state.NewConsole(state.Deps{API: client, Logger: logger, Metrics: m}, state.ConsoleOptions{
		Alerter:              dispatcher,
		LeadAlerter:          dispatcher,
		EscalationSchedule:   schedule(&logger, "escalations", cfg.EscalationPollSchedule),
		ConversationSchedule: schedule(&logger, "conversation_detail", cfg.ConversationPollSchedule),
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create console")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Create and initialize server
	srv := server.New(cfg, console, client, m, logger)
	srv.Initialize()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	// Initial loads can take several request timeouts against a dead
	// backend; /healthz answers meanwhile
	started := console.StartInBackground(ctx)

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("Server failed to start")
		}
	case <-ctx.Done():
	}

	// Cancelling ctx makes in-flight initial loads return promptly
	stop()
	<-started
	console.Shutdown()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server shutdown failed")
	}
}
