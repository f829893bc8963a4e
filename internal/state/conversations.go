package state

import (
	"context"
	"strings"
	"sync"

	"shiftly/internal/models"

	"golang.org/x/text/cases"
)

// ConversationsState is what the conversation list screen renders
type ConversationsState struct {
	Resource[models.DashboardMetrics]
	StatusFilter string                       `json:"status_filter,omitempty"`
	Search       string                       `json:"search,omitempty"`
	Visible      []models.ConversationSummary `json:"visible"`
}

// ConversationsController backs the conversation list. The list comes from
// the dashboard endpoint; filtering and search are local.
type ConversationsController struct {
	api  Gateway
	load *loader[models.DashboardMetrics]

	mu           sync.Mutex
	statusFilter string
	search       string
}

// NewConversationsController creates a conversation list controller
func NewConversationsController(deps Deps) *ConversationsController {
	return &ConversationsController{
		api:  deps.API,
		load: newLoader[models.DashboardMetrics]("conversations", deps),
	}
}

// Refresh fetches the conversation list
func (c *ConversationsController) Refresh(ctx context.Context) error {
	_, err := c.load.refresh(ctx, c.api.FetchDashboardMetrics)
	return err
}

// Retry dismisses the error banner and fetches again
func (c *ConversationsController) Retry(ctx context.Context) error {
	c.load.dismissError()
	return c.Refresh(ctx)
}

// DismissError hides the error banner
func (c *ConversationsController) DismissError() { c.load.dismissError() }

// SetStatusFilter limits the list to one status; empty shows all
func (c *ConversationsController) SetStatusFilter(status string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statusFilter = strings.ToLower(strings.TrimSpace(status))
}

// SetSearch filters by customer name or phone
func (c *ConversationsController) SetSearch(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.search = strings.TrimSpace(query)
}

// Filtered returns the conversations matching the current filter and search
func (c *ConversationsController) Filtered() []models.ConversationSummary {
	c.mu.Lock()
	status, search := c.statusFilter, c.search
	c.mu.Unlock()

	data := c.load.data()
	if data == nil {
		return []models.ConversationSummary{}
	}
	return FilterConversations(data.Conversations, status, search)
}

// Snapshot returns the current list state
func (c *ConversationsController) Snapshot() ConversationsState {
	c.mu.Lock()
	status, search := c.statusFilter, c.search
	c.mu.Unlock()

	res := c.load.resource()
	state := ConversationsState{Resource: res, StatusFilter: status, Search: search, Visible: []models.ConversationSummary{}}
	if res.Data != nil {
		state.Visible = FilterConversations(res.Data.Conversations, status, search)
	}
	return state
}

// FilterConversations keeps conversations whose status equals status
// (ignoring case, empty matches all) and whose display name contains
// search ignoring case or whose phone contains search verbatim.
func FilterConversations(list []models.ConversationSummary, status, search string) []models.ConversationSummary {
	fold := cases.Fold()
	needle := fold.String(search)

	out := make([]models.ConversationSummary, 0, len(list))
	for _, conv := range list {
		if status != "" && !strings.EqualFold(conv.Status, status) {
			continue
		}
		if search != "" &&
			!strings.Contains(fold.String(conv.DisplayName()), needle) &&
			!strings.Contains(conv.Phone, search) {
			continue
		}
		out = append(out, conv)
	}
	return out
}
