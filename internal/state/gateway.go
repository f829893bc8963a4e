// Package state holds the per-screen controllers of the manager console.
// Each controller owns its fetched data, loading and error flags, and any
// recurring refresh. Renderers read Snapshot values and call intents.
package state

import (
	"context"
	"errors"

	"shiftly/internal/metrics"
	"shiftly/internal/models"

	"github.com/rs/zerolog"
)

// Gateway is the subset of the backend client used by the controllers.
// *apiclient.Client satisfies it.
type Gateway interface {
	FetchDashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error)
	FetchConversation(ctx context.Context, phone string) (*models.Conversation, error)
	FetchEscalations(ctx context.Context) (*models.EscalationResponse, error)
	ClaimEscalation(ctx context.Context, id string) error
	ResolveEscalation(ctx context.Context, id string) error
	SendManagerMessage(ctx context.Context, conversationID, text string) error
	EscalateConversation(ctx context.Context, conversationID, reason string) error
	UpdateConversationStatus(ctx context.Context, conversationID, status string) error
	FetchDealershipConfig(ctx context.Context) (*models.DealershipConfig, error)
	UpdateDealershipConfig(ctx context.Context, threshold int, temperature float64, maxTokens int) error
	CheckHealth(ctx context.Context) bool
}

// Alerter raises side-channel alerts for pending escalations
type Alerter interface {
	AlertPending(ctx context.Context, escalations []models.Escalation) int
}

// LeadAlerter is told about every freshly ranked lead list. threshold is on
// the 0-1 score scale.
type LeadAlerter interface {
	AlertHighScores(ctx context.Context, leads []models.ConversationSummary, threshold float64) int
}

// Deps are the collaborators shared by every controller
type Deps struct {
	API     Gateway
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

var (
	// ErrNoConversation is returned by conversation intents before the
	// transcript has loaded
	ErrNoConversation = errors.New("conversation not loaded")
	// ErrEmptyMessage is returned when a manager reply is blank
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSendInProgress is returned while a previous reply is still sending
	ErrSendInProgress = errors.New("a message is already sending")
	// ErrInvalidConfig is returned for agent settings outside their ranges
	ErrInvalidConfig = errors.New("invalid agent configuration")
)
