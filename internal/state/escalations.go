package state

import (
	"context"
	"fmt"
	"time"

	"shiftly/internal/metrics"
	"shiftly/internal/models"
	"shiftly/internal/poller"

	"github.com/robfig/cron/v3"
)

// DefaultEscalationPoll is the escalations auto-refresh interval
const DefaultEscalationPoll = 30 * time.Second

// EscalationsState is what the escalations screen renders
type EscalationsState struct {
	Resource[models.EscalationResponse]
	ActiveCount int  `json:"active_count"`
	AutoRefresh bool `json:"auto_refresh"`
}

// EscalationsController lists escalations and lets a manager claim and
// resolve them. Status changes are never applied locally; they show up
// on the refresh that follows each mutation.
type EscalationsController struct {
	api     Gateway
	alerts  Alerter
	metrics *metrics.Metrics
	load    *loader[models.EscalationResponse]
	poll    *poller.Poller
}

// EscalationsOptions configures an EscalationsController
type EscalationsOptions struct {
	Alerter  Alerter       // may be nil
	Schedule cron.Schedule // defaults to every DefaultEscalationPoll
}

// NewEscalationsController creates an escalations controller
func NewEscalationsController(deps Deps, opts EscalationsOptions) (*EscalationsController, error) {
	c := &EscalationsController{
		api:     deps.API,
		alerts:  opts.Alerter,
		metrics: deps.Metrics,
		load:    newLoader[models.EscalationResponse]("escalations", deps),
	}

	p, err := poller.New(poller.Options{
		Name:     "escalations",
		Schedule: opts.Schedule,
		Interval: DefaultEscalationPoll,
		Tick:     func(ctx context.Context) { _ = c.Refresh(ctx) },
		Logger:   deps.Logger,
		Metrics:  deps.Metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("state: escalations: %w", err)
	}
	c.poll = p
	return c, nil
}

// Refresh fetches escalations. Each pending escalation raises an alert the
// first time it is seen.
func (c *EscalationsController) Refresh(ctx context.Context) error {
	resp, err := c.load.refresh(ctx, c.api.FetchEscalations)
	if err != nil {
		return err
	}
	if c.alerts != nil {
		c.alerts.AlertPending(ctx, resp.Escalations)
	}
	c.metrics.SetActiveEscalations(ActiveCount(resp))
	return nil
}

// Retry dismisses the error banner and fetches again
func (c *EscalationsController) Retry(ctx context.Context) error {
	c.load.dismissError()
	return c.Refresh(ctx)
}

// DismissError hides the error banner
func (c *EscalationsController) DismissError() { c.load.dismissError() }

// Claim assigns an escalation, then refreshes whatever the outcome.
// A claim failure is returned in preference to a refresh failure.
func (c *EscalationsController) Claim(ctx context.Context, id string) error {
	return c.mutate(ctx, "claim", id, c.api.ClaimEscalation)
}

// Resolve closes an escalation, then refreshes whatever the outcome
func (c *EscalationsController) Resolve(ctx context.Context, id string) error {
	return c.mutate(ctx, "resolve", id, c.api.ResolveEscalation)
}

func (c *EscalationsController) mutate(ctx context.Context, action, id string, call func(context.Context, string) error) error {
	err := call(ctx, id)
	if err != nil {
		c.load.logger.Warn().Err(err).Str("action", action).Str("escalation_id", id).Msg("Escalation update failed")
		c.load.raise(err)
	}
	refreshErr := c.Refresh(ctx)
	if err != nil {
		return err
	}
	return refreshErr
}

// StartAutoRefresh begins the recurring refresh; it is a no-op if running
func (c *EscalationsController) StartAutoRefresh(ctx context.Context) {
	c.poll.Start(ctx)
}

// StopAutoRefresh ends the recurring refresh
func (c *EscalationsController) StopAutoRefresh() {
	c.poll.Stop()
}

// Open refreshes and starts the recurring refresh, as when the screen appears
func (c *EscalationsController) Open(ctx context.Context) error {
	err := c.Refresh(ctx)
	c.StartAutoRefresh(ctx)
	return err
}

// ActiveCount returns the number of escalations needing attention
func (c *EscalationsController) ActiveCount() int {
	return ActiveCount(c.load.data())
}

// Snapshot returns the current escalations state
func (c *EscalationsController) Snapshot() EscalationsState {
	res := c.load.resource()
	return EscalationsState{
		Resource:    res,
		ActiveCount: ActiveCount(res.Data),
		AutoRefresh: c.poll.Running(),
	}
}

// ActiveCount uses the backend's aggregate when present and otherwise
// counts escalations that are not resolved
func ActiveCount(resp *models.EscalationResponse) int {
	if resp == nil {
		return 0
	}
	if resp.Stats != nil {
		return resp.Stats.ActiveCount
	}
	count := 0
	for _, e := range resp.Escalations {
		if !e.IsResolved() {
			count++
		}
	}
	return count
}
