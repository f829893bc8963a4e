// Package notify delivers best-effort alerts for escalations that need a
// manager and for leads that cross the manager's score threshold.
// Delivery failures are logged and never reach the caller.
package notify

import (
	"context"
	"fmt"
	"time"

	"shiftly/internal/cache"
	"shiftly/internal/metrics"
	"shiftly/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultDedupeWindow is how long an escalation stays alerted
const DefaultDedupeWindow = 24 * time.Hour

// AlertKind tells escalation alerts from high-score lead alerts
type AlertKind string

const (
	KindEscalation AlertKind = "escalation"
	KindHighScore  AlertKind = "high_score"
)

// Alert describes one pending escalation or one high-scoring lead
type Alert struct {
	ID             string
	Kind           AlertKind
	EscalationID   string // empty for high-score alerts
	ConversationID string
	Phone          string
	Reason         string
	Score          float64
	CreatedAt      time.Time
}

// NewAlert builds an alert for an escalation
func NewAlert(e models.Escalation) Alert {
	return Alert{
		ID:             uuid.NewString(),
		Kind:           KindEscalation,
		EscalationID:   e.ID,
		ConversationID: e.ID,
		Phone:          e.CustomerPhone,
		Reason:         e.EscalationReason,
		Score:          e.Score(),
		CreatedAt:      time.Now().UTC(),
	}
}

// NewLeadAlert builds an alert for a scored conversation
func NewLeadAlert(s models.ConversationSummary) Alert {
	var score float64
	if s.QualificationScore != nil {
		score = models.ClampScore(*s.QualificationScore)
	}
	return Alert{
		ID:             uuid.NewString(),
		Kind:           KindHighScore,
		ConversationID: s.ID,
		Phone:          s.Phone,
		Reason:         fmt.Sprintf("%s scored %s", s.DisplayName(), models.FormatPercent(score)),
		Score:          score,
		CreatedAt:      time.Now().UTC(),
	}
}

// Title is the alert headline
func (a Alert) Title() string {
	if a.Kind == KindHighScore {
		return "High-score lead"
	}
	return "Escalation"
}

// Body is the alert text shown to the manager
func (a Alert) Body() string {
	if a.Kind == KindHighScore {
		return fmt.Sprintf("%s is a hot lead: %s", a.Phone, a.Reason)
	}
	return fmt.Sprintf("%s needs attention: %s", a.Phone, a.Reason)
}

// Notifier delivers alerts over one channel
type Notifier interface {
	Channel() string
	Notify(ctx context.Context, alert Alert) error
}

// LogNotifier writes alerts to the structured log
type LogNotifier struct {
	logger zerolog.Logger
}

// NewLogNotifier creates a notifier that only logs
func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Channel() string { return "log" }

func (n *LogNotifier) Notify(_ context.Context, alert Alert) error {
	n.logger.Warn().
		Str("alert_id", alert.ID).
		Str("kind", string(alert.Kind)).
		Str("conversation_id", alert.ConversationID).
		Str("phone", alert.Phone).
		Float64("score", alert.Score).
		Msg(alert.Body())
	return nil
}

// DispatcherOptions holds parameters for creating a Dispatcher
type DispatcherOptions struct {
	Notifiers    []Notifier
	DedupeWindow time.Duration // defaults to DefaultDedupeWindow
	Enabled      func() bool   // nil means always enabled
	Logger       zerolog.Logger
	Metrics      *metrics.Metrics
}

// Dispatcher fans alerts out to its notifiers, at most once per escalation
// within the dedupe window
type Dispatcher struct {
	notifiers []Notifier
	seen      *cache.Cache[string]
	window    time.Duration
	enabled   func() bool
	logger    zerolog.Logger
	metrics   *metrics.Metrics
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(opts DispatcherOptions) *Dispatcher {
	window := opts.DedupeWindow
	if window <= 0 {
		window = DefaultDedupeWindow
	}
	return &Dispatcher{
		notifiers: opts.Notifiers,
		seen:      cache.New[string](),
		window:    window,
		enabled:   opts.Enabled,
		logger:    opts.Logger.With().Str("component", "notify").Logger(),
		metrics:   opts.Metrics,
	}
}

// AlertPending alerts for every pending escalation not alerted before and
// returns how many new alerts were raised
func (d *Dispatcher) AlertPending(ctx context.Context, escalations []models.Escalation) int {
	if d == nil {
		return 0
	}
	if d.enabled != nil && !d.enabled() {
		return 0
	}
	d.seen.Prune()

	raised := 0
	for _, e := range escalations {
		key := escalationKey(e.ID)
		if !e.IsPending() {
			// a later re-escalation of the same conversation alerts again
			d.seen.Delete(key)
			continue
		}
		alert := NewAlert(e)
		if !d.seen.SetIfAbsent(key, alert.ID, d.window) {
			continue
		}
		raised++
		d.deliver(ctx, alert)
	}
	return raised
}

// AlertHighScores alerts once for every lead scoring at or above threshold
// (0-1) and returns how many new alerts were raised. Unscored leads never
// alert.
func (d *Dispatcher) AlertHighScores(ctx context.Context, leads []models.ConversationSummary, threshold float64) int {
	if d == nil {
		return 0
	}
	d.seen.Prune()

	raised := 0
	for _, lead := range leads {
		if lead.QualificationScore == nil || models.ClampScore(*lead.QualificationScore) < threshold {
			continue
		}
		alert := NewLeadAlert(lead)
		if !d.seen.SetIfAbsent(leadKey(lead.ID), alert.ID, d.window) {
			continue
		}
		raised++
		d.deliver(ctx, alert)
	}
	return raised
}

func (d *Dispatcher) deliver(ctx context.Context, alert Alert) {
	for _, n := range d.notifiers {
		err := n.Notify(ctx, alert)
		d.metrics.ObserveAlert(n.Channel(), err)
		if err != nil {
			d.logger.Warn().Err(err).
				Str("channel", n.Channel()).
				Str("kind", string(alert.Kind)).
				Str("conversation_id", alert.ConversationID).
				Msg("Failed to deliver alert")
		}
	}
}

func escalationKey(id string) string { return "escalation:" + id }

func leadKey(id string) string { return "lead:" + id }
