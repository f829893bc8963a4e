package handlers

import (
	"net/http"

	"shiftly/internal/models"
	"shiftly/internal/state"

	"github.com/labstack/echo/v4"
)

// SettingsHandler returns the settings snapshot
// @Summary Settings
// @Tags settings
// @Produce json
// @Success 200 {object} state.SettingsState
// @Router /api/settings [get]
func SettingsHandler(ctrl *state.SettingsController) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, ctrl.Snapshot())
	}
}

// UpdateSettingsHandler validates and saves the agent configuration. The
// save confirmation is reported once, in this response.
// @Summary Save agent configuration
// @Tags settings
// @Accept json
// @Produce json
// @Param request body models.SettingsUpdateRequest true "Agent configuration"
// @Success 200 {object} state.SettingsState
// @Failure 400 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/settings [put]
func UpdateSettingsHandler(ctrl *state.SettingsController) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.SettingsUpdateRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		if err := ctrl.SetAgentConfig(req.QualificationThreshold, req.ModelTemperature, req.MaxTokens); err != nil {
			return errorJSON(c, err)
		}
		if err := ctrl.SaveConfig(c.Request().Context()); err != nil {
			return errorJSON(c, err)
		}
		snapshot := ctrl.Snapshot()
		ctrl.ConsumeSaveSuccess()
		return c.JSON(http.StatusOK, snapshot)
	}
}

// ReloadSettingsHandler refetches dealership config and backend health
// @Summary Reload settings
// @Tags settings
// @Produce json
// @Success 200 {object} state.SettingsState
// @Router /api/settings/reload [post]
func ReloadSettingsHandler(ctrl *state.SettingsController) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctrl.Load(c.Request().Context())
		return c.JSON(http.StatusOK, ctrl.Snapshot())
	}
}
