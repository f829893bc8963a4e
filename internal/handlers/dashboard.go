package handlers

import (
	"net/http"

	"shiftly/internal/state"

	"github.com/labstack/echo/v4"
)

// DashboardHandler returns the dashboard snapshot, fetching first when the
// screen has never loaded or ?refresh is set
// @Summary Dashboard
// @Description Dashboard metrics with derived analytics
// @Tags dashboard
// @Produce json
// @Param refresh query bool false "Refresh before responding"
// @Success 200 {object} state.DashboardState
// @Router /api/dashboard [get]
func DashboardHandler(ctrl *state.DashboardController) echo.HandlerFunc {
	return func(c echo.Context) error {
		if wantsRefresh(c) || ctrl.Snapshot().Phase == state.PhaseIdle {
			// Failures are carried on the snapshot's banner
			_ = ctrl.Refresh(c.Request().Context())
		}
		return c.JSON(http.StatusOK, ctrl.Snapshot())
	}
}

// DashboardRetryHandler dismisses the banner and refetches
// @Summary Retry dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} state.DashboardState
// @Router /api/dashboard/retry [post]
func DashboardRetryHandler(ctrl *state.DashboardController) echo.HandlerFunc {
	return func(c echo.Context) error {
		_ = ctrl.Retry(c.Request().Context())
		return c.JSON(http.StatusOK, ctrl.Snapshot())
	}
}
