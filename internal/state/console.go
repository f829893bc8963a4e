package state

import (
	"context"
	"strings"
	"sync"

	"github.com/robfig/cron/v3"
)

// MaxIdleDetails bounds how many detail controllers without a running poll
// the Console keeps between requests
const MaxIdleDetails = 32

// ConsoleOptions configures a Console
type ConsoleOptions struct {
	Alerter              Alerter       // may be nil
	LeadAlerter          LeadAlerter   // may be nil
	EscalationSchedule   cron.Schedule // nil means every DefaultEscalationPoll
	ConversationSchedule cron.Schedule // nil means every DefaultConversationPoll
}

// Console holds one controller per screen plus the conversation detail
// controllers opened so far, keyed by phone number
type Console struct {
	Dashboard     *DashboardController
	Conversations *ConversationsController
	Escalations   *EscalationsController
	Leads         *LeadsController
	Settings      *SettingsController

	deps         Deps
	convSchedule cron.Schedule

	mu      sync.Mutex
	details map[string]*ConversationDetailController
}

// NewConsole wires the controllers against a shared gateway
func NewConsole(deps Deps, opts ConsoleOptions) (*Console, error) {
	escalations, err := NewEscalationsController(deps, EscalationsOptions{
		Alerter:  opts.Alerter,
		Schedule: opts.EscalationSchedule,
	})
	if err != nil {
		return nil, err
	}

	settings := NewSettingsController(deps)
	leads := NewLeadsController(deps, LeadsOptions{
		Alerter:        opts.LeadAlerter,
		AlertThreshold: settings.HighScoreAlertThreshold,
	})

	return &Console{
		Dashboard:     NewDashboardController(deps),
		Conversations: NewConversationsController(deps),
		Escalations:   escalations,
		Leads:         leads,
		Settings:      settings,
		deps:          deps,
		convSchedule:  opts.ConversationSchedule,
		details:       make(map[string]*ConversationDetailController),
	}, nil
}

// Start performs the initial loads and begins the escalations poll.
// Load failures are left on the screens' banners.
func (c *Console) Start(ctx context.Context) {
	c.Settings.Load(ctx)
	if err := c.Escalations.Open(ctx); err != nil {
		c.deps.Logger.Warn().Err(err).Msg("Initial escalations load failed")
	}
}

// StartInBackground runs Start on its own goroutine and returns a channel
// closed once it finishes, so a listener can come up before the backend
// answers
func (c *Console) StartInBackground(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Start(ctx)
	}()
	return done
}

// AlertsEnabled reports the manager's escalation alert preference
func (c *Console) AlertsEnabled() bool {
	return c.Settings.EscalationAlertsEnabled()
}

// Detail returns the detail controller for phone, creating it on first use.
// name is the display name known from the list, if any.
func (c *Console) Detail(phone, name string) (*ConversationDetailController, error) {
	phone = strings.TrimSpace(phone)

	c.mu.Lock()
	defer c.mu.Unlock()
	if d, ok := c.details[phone]; ok {
		return d, nil
	}
	d, err := NewConversationDetailController(c.deps, DetailOptions{
		Phone:    phone,
		Name:     name,
		Schedule: c.convSchedule,
	})
	if err != nil {
		return nil, err
	}
	c.evictIdleLocked()
	c.details[phone] = d
	return d, nil
}

// evictIdleLocked forgets every non-polling detail controller once
// MaxIdleDetails of them have piled up. Watched conversations are kept.
// c.mu must be held.
func (c *Console) evictIdleLocked() {
	idle := 0
	for _, d := range c.details {
		if !d.Polling() {
			idle++
		}
	}
	if idle < MaxIdleDetails {
		return
	}
	for phone, d := range c.details {
		if !d.Polling() {
			delete(c.details, phone)
		}
	}
	c.deps.Logger.Debug().Int("evicted", idle).Msg("Evicted idle conversation details")
}

// LookupDetail returns an already opened detail controller
func (c *Console) LookupDetail(phone string) (*ConversationDetailController, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.details[strings.TrimSpace(phone)]
	return d, ok
}

// CloseDetail stops polling phone's conversation and forgets its controller
func (c *Console) CloseDetail(phone string) bool {
	phone = strings.TrimSpace(phone)

	c.mu.Lock()
	d, ok := c.details[phone]
	delete(c.details, phone)
	c.mu.Unlock()

	if ok {
		d.Close()
	}
	return ok
}

// Shutdown stops every recurring refresh
func (c *Console) Shutdown() {
	c.Escalations.StopAutoRefresh()

	c.mu.Lock()
	details := c.details
	c.details = make(map[string]*ConversationDetailController)
	c.mu.Unlock()

	for _, d := range details {
		d.Close()
	}
}
