package state

import (
	"context"

	"shiftly/internal/analytics"
	"shiftly/internal/models"
)

// DashboardState is what the dashboard screen renders
type DashboardState struct {
	Resource[models.DashboardMetrics]
	Analytics *analytics.Summary `json:"analytics,omitempty"`
}

// DashboardController loads the top-level dashboard metrics
type DashboardController struct {
	api  Gateway
	load *loader[models.DashboardMetrics]
}

// NewDashboardController creates a dashboard controller
func NewDashboardController(deps Deps) *DashboardController {
	return &DashboardController{
		api:  deps.API,
		load: newLoader[models.DashboardMetrics]("dashboard", deps),
	}
}

// Refresh fetches the dashboard metrics
func (c *DashboardController) Refresh(ctx context.Context) error {
	_, err := c.load.refresh(ctx, c.api.FetchDashboardMetrics)
	return err
}

// Retry dismisses the error banner and fetches again
func (c *DashboardController) Retry(ctx context.Context) error {
	c.load.dismissError()
	return c.Refresh(ctx)
}

// DismissError hides the error banner
func (c *DashboardController) DismissError() { c.load.dismissError() }

// Snapshot returns the current dashboard state
func (c *DashboardController) Snapshot() DashboardState {
	res := c.load.resource()
	state := DashboardState{Resource: res}
	if res.Data != nil {
		summary := analytics.Summarize(*res.Data)
		state.Analytics = &summary
	}
	return state
}
