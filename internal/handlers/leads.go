package handlers

import (
	"net/http"

	"shiftly/internal/state"

	"github.com/labstack/echo/v4"
)

// LeadsHandler returns ranked leads in the requested band
// @Summary Leads
// @Description Scored conversations ranked by qualification score
// @Tags leads
// @Produce json
// @Param band query string false "hot, warm or all" default(all)
// @Param refresh query bool false "Refresh before responding"
// @Success 200 {object} state.LeadsState
// @Failure 400 {object} models.ErrorResponse
// @Router /api/leads [get]
func LeadsHandler(ctrl *state.LeadsController) echo.HandlerFunc {
	return func(c echo.Context) error {
		band, err := state.ParseLeadFilter(c.QueryParam("band"))
		if err != nil {
			return badRequest(c, err.Error())
		}
		if wantsRefresh(c) || ctrl.Snapshot(band).Phase == state.PhaseIdle {
			_ = ctrl.Refresh(c.Request().Context())
		}
		return c.JSON(http.StatusOK, ctrl.Snapshot(band))
	}
}
