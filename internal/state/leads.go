package state

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"shiftly/internal/models"
)

// LeadFilter selects a band of leads
type LeadFilter string

const (
	LeadsHot  LeadFilter = "hot"  // [0.70, 1.0]
	LeadsWarm LeadFilter = "warm" // [0.40, 0.70)
	LeadsAll  LeadFilter = "all"
)

// ParseLeadFilter maps user input to a LeadFilter; empty means all
func ParseLeadFilter(s string) (LeadFilter, error) {
	switch LeadFilter(strings.ToLower(strings.TrimSpace(s))) {
	case LeadsHot:
		return LeadsHot, nil
	case LeadsWarm:
		return LeadsWarm, nil
	case LeadsAll, "":
		return LeadsAll, nil
	}
	return "", fmt.Errorf("unknown lead filter %q", s)
}

// Matches reports whether a score belongs to the filter's band
func (f LeadFilter) Matches(score float64) bool {
	switch f {
	case LeadsHot:
		return score >= models.HighThreshold
	case LeadsWarm:
		return score >= models.MidThreshold && score < models.HighThreshold
	default:
		return true
	}
}

// RankedLead is a lead with its 1-based position in the full ranking
type RankedLead struct {
	models.ConversationSummary
	Rank int              `json:"rank"`
	Band models.ScoreBand `json:"band"`
}

// LeadsState is what the leads screen renders
type LeadsState struct {
	Resource[[]models.ConversationSummary]
	Filter LeadFilter   `json:"filter"`
	Leads  []RankedLead `json:"leads"`
}

// LeadsController ranks scored conversations for follow-up
type LeadsController struct {
	api       Gateway
	alerts    LeadAlerter
	threshold func() (float64, bool)
	load      *loader[[]models.ConversationSummary]
}

// LeadsOptions configures a LeadsController
type LeadsOptions struct {
	// Alerter may be nil
	Alerter LeadAlerter

	// AlertThreshold reports the 0-1 high-score alert threshold and whether
	// those alerts are on. nil disables them.
	AlertThreshold func() (float64, bool)
}

// NewLeadsController creates a leads controller
func NewLeadsController(deps Deps, opts LeadsOptions) *LeadsController {
	return &LeadsController{
		api:       deps.API,
		alerts:    opts.Alerter,
		threshold: opts.AlertThreshold,
		load:      newLoader[[]models.ConversationSummary]("leads", deps),
	}
}

// Refresh fetches the dashboard list and ranks it. When high-score alerts
// are on, leads at or above the threshold raise an alert the first time
// they are seen.
func (c *LeadsController) Refresh(ctx context.Context) error {
	leads, err := c.load.refresh(ctx, func(ctx context.Context) (*[]models.ConversationSummary, error) {
		metrics, err := c.api.FetchDashboardMetrics(ctx)
		if err != nil {
			return nil, err
		}
		leads := RankLeads(metrics.Conversations)
		return &leads, nil
	})
	if err != nil {
		return err
	}
	if c.alerts != nil && c.threshold != nil {
		if threshold, on := c.threshold(); on {
			c.alerts.AlertHighScores(ctx, *leads, threshold)
		}
	}
	return nil
}

// Retry dismisses the error banner and fetches again
func (c *LeadsController) Retry(ctx context.Context) error {
	c.load.dismissError()
	return c.Refresh(ctx)
}

// DismissError hides the error banner
func (c *LeadsController) DismissError() { c.load.dismissError() }

// Leads returns the full ranking
func (c *LeadsController) Leads() []models.ConversationSummary {
	data := c.load.data()
	if data == nil {
		return []models.ConversationSummary{}
	}
	return *data
}

// Filter returns the ranked leads in a band, preserving rank order
func (c *LeadsController) Filter(f LeadFilter) []models.ConversationSummary {
	return FilterLeads(c.Leads(), f)
}

// Rank returns the 1-based position of a conversation in the ranking, or 0
// when it is not a lead
func (c *LeadsController) Rank(conversationID string) int {
	return RankOf(c.Leads(), conversationID)
}

// Snapshot returns the leads state for a band
func (c *LeadsController) Snapshot(f LeadFilter) LeadsState {
	res := c.load.resource()
	state := LeadsState{Resource: res, Filter: f, Leads: []RankedLead{}}
	if res.Data == nil {
		return state
	}
	for i, lead := range *res.Data {
		score := *lead.QualificationScore
		if !f.Matches(score) {
			continue
		}
		state.Leads = append(state.Leads, RankedLead{
			ConversationSummary: lead,
			Rank:                i + 1,
			Band:                models.BandFor(score),
		})
	}
	return state
}

// RankLeads drops unscored conversations and sorts the rest by score,
// highest first. Equal scores keep their original order.
func RankLeads(list []models.ConversationSummary) []models.ConversationSummary {
	leads := make([]models.ConversationSummary, 0, len(list))
	for _, conv := range list {
		if conv.QualificationScore != nil {
			leads = append(leads, conv)
		}
	}
	sort.SliceStable(leads, func(i, j int) bool {
		return *leads[i].QualificationScore > *leads[j].QualificationScore
	})
	return leads
}

// FilterLeads keeps ranked leads whose score falls in the band
func FilterLeads(leads []models.ConversationSummary, f LeadFilter) []models.ConversationSummary {
	out := make([]models.ConversationSummary, 0, len(leads))
	for _, lead := range leads {
		if lead.QualificationScore != nil && f.Matches(*lead.QualificationScore) {
			out = append(out, lead)
		}
	}
	return out
}

// RankOf returns the 1-based index of id in leads, or 0 when absent
func RankOf(leads []models.ConversationSummary, id string) int {
	for i, lead := range leads {
		if lead.ID == id {
			return i + 1
		}
	}
	return 0
}
