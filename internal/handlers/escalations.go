package handlers

import (
	"context"
	"net/http"
	"strings"

	"shiftly/internal/state"

	"github.com/labstack/echo/v4"
)

// EscalationsHandler returns the escalations snapshot with the active count
// @Summary Escalations
// @Tags escalations
// @Produce json
// @Param refresh query bool false "Refresh before responding"
// @Success 200 {object} state.EscalationsState
// @Router /api/escalations [get]
func EscalationsHandler(ctrl *state.EscalationsController) echo.HandlerFunc {
	return func(c echo.Context) error {
		if wantsRefresh(c) || ctrl.Snapshot().Phase == state.PhaseIdle {
			_ = ctrl.Refresh(c.Request().Context())
		}
		return c.JSON(http.StatusOK, ctrl.Snapshot())
	}
}

// ClaimEscalationHandler assigns an escalation to the manager
// @Summary Claim escalation
// @Tags escalations
// @Produce json
// @Param id path string true "Escalation (conversation) id"
// @Success 200 {object} state.EscalationsState
// @Failure 502 {object} models.ErrorResponse
// @Router /api/escalations/{id}/claim [post]
func ClaimEscalationHandler(ctrl *state.EscalationsController) echo.HandlerFunc {
	return escalationMutation(ctrl.Claim, ctrl)
}

// ResolveEscalationHandler closes an escalation
// @Summary Resolve escalation
// @Tags escalations
// @Produce json
// @Param id path string true "Escalation (conversation) id"
// @Success 200 {object} state.EscalationsState
// @Failure 502 {object} models.ErrorResponse
// @Router /api/escalations/{id}/resolve [post]
func ResolveEscalationHandler(ctrl *state.EscalationsController) echo.HandlerFunc {
	return escalationMutation(ctrl.Resolve, ctrl)
}

func escalationMutation(mutate func(ctx context.Context, id string) error, ctrl *state.EscalationsController) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := strings.TrimSpace(c.Param("id"))
		if id == "" {
			return badRequest(c, "escalation id is required")
		}
		if err := mutate(c.Request().Context(), id); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, ctrl.Snapshot())
	}
}
