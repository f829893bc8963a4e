package state

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"shiftly/internal/models"
	"shiftly/internal/poller"

	"github.com/robfig/cron/v3"
)

// DefaultConversationPoll is the conversation detail auto-refresh interval
const DefaultConversationPoll = 5 * time.Second

// ConversationDetailState is what the conversation detail screen renders
type ConversationDetailState struct {
	Resource[models.Conversation]
	Phone     string `json:"phone"`
	Name      string `json:"name,omitempty"`
	IsSending bool   `json:"is_sending"`
	Polling   bool   `json:"polling"`
}

// ConversationDetailController shows one transcript and carries the
// manager's interventions on it
type ConversationDetailController struct {
	api   Gateway
	phone string
	name  string
	load  *loader[models.Conversation]
	poll  *poller.Poller

	mu      sync.Mutex
	sending bool
}

// DetailOptions configures a ConversationDetailController
type DetailOptions struct {
	Phone    string
	Name     string        // display name known before the transcript loads
	Schedule cron.Schedule // defaults to every DefaultConversationPoll
}

// NewConversationDetailController creates a controller for one phone number
func NewConversationDetailController(deps Deps, opts DetailOptions) (*ConversationDetailController, error) {
	if strings.TrimSpace(opts.Phone) == "" {
		return nil, fmt.Errorf("state: conversation detail: phone is required")
	}
	c := &ConversationDetailController{
		api:   deps.API,
		phone: opts.Phone,
		name:  opts.Name,
		load:  newLoader[models.Conversation]("conversation_detail", deps),
	}
	c.load.logger = c.load.logger.With().Str("phone", opts.Phone).Logger()

	p, err := poller.New(poller.Options{
		Name:     "conversation_detail",
		Schedule: opts.Schedule,
		Interval: DefaultConversationPoll,
		Tick:     func(ctx context.Context) { _ = c.Refresh(ctx) },
		Logger:   c.load.logger,
		Metrics:  deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("state: conversation detail: %w", err)
	}
	c.poll = p
	return c, nil
}

// Phone returns the phone number this controller follows
func (c *ConversationDetailController) Phone() string { return c.phone }

// Refresh fetches the transcript
func (c *ConversationDetailController) Refresh(ctx context.Context) error {
	_, err := c.load.refresh(ctx, func(ctx context.Context) (*models.Conversation, error) {
		return c.api.FetchConversation(ctx, c.phone)
	})
	return err
}

// Retry dismisses the error banner and fetches again
func (c *ConversationDetailController) Retry(ctx context.Context) error {
	c.load.dismissError()
	return c.Refresh(ctx)
}

// DismissError hides the error banner
func (c *ConversationDetailController) DismissError() { c.load.dismissError() }

// Open loads the transcript and, while the conversation is active or has
// not loaded yet, starts polling for new messages
func (c *ConversationDetailController) Open(ctx context.Context) error {
	err := c.Refresh(ctx)
	conv := c.load.data()
	if conv == nil || conv.IsActive() {
		c.poll.Start(ctx)
	}
	return err
}

// Close stops polling. A refresh already in flight still completes.
func (c *ConversationDetailController) Close() {
	c.poll.Stop()
}

// Polling reports whether the recurring refresh is running
func (c *ConversationDetailController) Polling() bool { return c.poll.Running() }

// SendMessage posts a manager reply. The transcript is refreshed only when
// the send succeeds.
func (c *ConversationDetailController) SendMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	conv := c.load.data()
	if conv == nil {
		return ErrNoConversation
	}

	c.mu.Lock()
	if c.sending {
		c.mu.Unlock()
		return ErrSendInProgress
	}
	c.sending = true
	c.mu.Unlock()

	err := c.api.SendManagerMessage(ctx, conv.ID, text)

	c.mu.Lock()
	c.sending = false
	c.mu.Unlock()

	if err != nil {
		c.load.logger.Warn().Err(err).Msg("Manager message failed")
		c.load.raise(err)
		return err
	}
	return c.Refresh(ctx)
}

// Escalate hands the conversation to a human at high priority, then
// refreshes whatever the outcome
func (c *ConversationDetailController) Escalate(ctx context.Context, reason string) error {
	reason = strings.TrimSpace(reason)
	return c.mutate(ctx, "escalate", func(ctx context.Context, id string) error {
		return c.api.EscalateConversation(ctx, id, reason)
	})
}

// Complete marks the conversation completed, then refreshes whatever the
// outcome
func (c *ConversationDetailController) Complete(ctx context.Context) error {
	return c.mutate(ctx, "complete", func(ctx context.Context, id string) error {
		return c.api.UpdateConversationStatus(ctx, id, models.StatusCompleted)
	})
}

func (c *ConversationDetailController) mutate(ctx context.Context, action string, call func(context.Context, string) error) error {
	conv := c.load.data()
	if conv == nil {
		return ErrNoConversation
	}
	err := call(ctx, conv.ID)
	if err != nil {
		c.load.logger.Warn().Err(err).Str("action", action).Msg("Conversation update failed")
		c.load.raise(err)
	}
	refreshErr := c.Refresh(ctx)
	if err != nil {
		return err
	}
	return refreshErr
}

// Snapshot returns the current detail state
func (c *ConversationDetailController) Snapshot() ConversationDetailState {
	c.mu.Lock()
	sending := c.sending
	c.mu.Unlock()

	res := c.load.resource()
	name := c.name
	if res.Data != nil {
		name = res.Data.DisplayName()
	}
	return ConversationDetailState{
		Resource:  res,
		Phone:     c.phone,
		Name:      name,
		IsSending: sending,
		Polling:   c.poll.Running(),
	}
}
