package handlers

import (
	"context"
	"net/http"
	"strings"

	"shiftly/internal/models"
	"shiftly/internal/state"

	"github.com/labstack/echo/v4"
)

// ConversationsHandler returns the conversation list filtered by ?status
// and ?q
// @Summary Conversation list
// @Tags conversations
// @Produce json
// @Param status query string false "Status filter (active, completed, abandoned)"
// @Param q query string false "Search by customer name or phone"
// @Param refresh query bool false "Refresh before responding"
// @Success 200 {object} state.ConversationsState
// @Router /api/conversations [get]
func ConversationsHandler(ctrl *state.ConversationsController) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctrl.SetStatusFilter(c.QueryParam("status"))
		ctrl.SetSearch(c.QueryParam("q"))

		if wantsRefresh(c) || ctrl.Snapshot().Phase == state.PhaseIdle {
			_ = ctrl.Refresh(c.Request().Context())
		}
		return c.JSON(http.StatusOK, ctrl.Snapshot())
	}
}

// ConversationHandler returns one conversation's detail snapshot. The first
// request for a phone number opens its controller.
// @Summary Conversation detail
// @Tags conversations
// @Produce json
// @Param phone path string true "Customer phone number"
// @Param name query string false "Display name known from the list"
// @Success 200 {object} state.ConversationDetailState
// @Failure 400 {object} models.ErrorResponse
// @Router /api/conversations/{phone} [get]
func ConversationHandler(console *state.Console) echo.HandlerFunc {
	return func(c echo.Context) error {
		detail, err := detailFor(c, console)
		if err != nil {
			return badRequest(c, err.Error())
		}
		if wantsRefresh(c) || detail.Snapshot().Phase == state.PhaseIdle {
			_ = detail.Refresh(c.Request().Context())
		}
		return c.JSON(http.StatusOK, detail.Snapshot())
	}
}

// WatchConversationHandler refreshes a conversation and starts its poll
// @Summary Watch conversation
// @Tags conversations
// @Produce json
// @Param phone path string true "Customer phone number"
// @Success 200 {object} state.ConversationDetailState
// @Router /api/conversations/{phone}/watch [put]
func WatchConversationHandler(console *state.Console) echo.HandlerFunc {
	return func(c echo.Context) error {
		detail, err := detailFor(c, console)
		if err != nil {
			return badRequest(c, err.Error())
		}
		// The poll outlives this request
		_ = detail.Open(context.WithoutCancel(c.Request().Context()))
		return c.JSON(http.StatusOK, detail.Snapshot())
	}
}

// UnwatchConversationHandler stops a conversation's poll
// @Summary Stop watching conversation
// @Tags conversations
// @Param phone path string true "Customer phone number"
// @Success 204
// @Router /api/conversations/{phone}/watch [delete]
func UnwatchConversationHandler(console *state.Console) echo.HandlerFunc {
	return func(c echo.Context) error {
		phone, err := phoneParam(c)
		if err != nil {
			return badRequest(c, err.Error())
		}
		console.CloseDetail(phone)
		return c.NoContent(http.StatusNoContent)
	}
}

// SendMessageHandler posts a manager reply into the conversation
// @Summary Send manager message
// @Tags conversations
// @Accept json
// @Produce json
// @Param phone path string true "Customer phone number"
// @Param request body models.SendMessageRequest true "Reply"
// @Success 200 {object} state.ConversationDetailState
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Failure 502 {object} models.ErrorResponse
// @Router /api/conversations/{phone}/messages [post]
func SendMessageHandler(console *state.Console) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.SendMessageRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		detail, err := loadedDetail(c, console)
		if err != nil {
			return badRequest(c, err.Error())
		}
		if err := detail.SendMessage(c.Request().Context(), req.Message); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, detail.Snapshot())
	}
}

// EscalateConversationHandler hands the conversation to a human
// @Summary Escalate conversation
// @Tags conversations
// @Accept json
// @Produce json
// @Param phone path string true "Customer phone number"
// @Param request body models.EscalateConversationRequest false "Reason"
// @Success 200 {object} state.ConversationDetailState
// @Failure 502 {object} models.ErrorResponse
// @Router /api/conversations/{phone}/escalate [post]
func EscalateConversationHandler(console *state.Console) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req models.EscalateConversationRequest
		if err := c.Bind(&req); err != nil {
			return badRequest(c, "Invalid request body")
		}
		reason := strings.TrimSpace(req.Reason)
		if reason == "" {
			reason = "Manager escalation"
		}
		detail, err := loadedDetail(c, console)
		if err != nil {
			return badRequest(c, err.Error())
		}
		if err := detail.Escalate(c.Request().Context(), reason); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, detail.Snapshot())
	}
}

// CompleteConversationHandler marks the conversation completed
// @Summary Complete conversation
// @Tags conversations
// @Produce json
// @Param phone path string true "Customer phone number"
// @Success 200 {object} state.ConversationDetailState
// @Failure 502 {object} models.ErrorResponse
// @Router /api/conversations/{phone}/complete [post]
func CompleteConversationHandler(console *state.Console) echo.HandlerFunc {
	return func(c echo.Context) error {
		detail, err := loadedDetail(c, console)
		if err != nil {
			return badRequest(c, err.Error())
		}
		if err := detail.Complete(c.Request().Context()); err != nil {
			return errorJSON(c, err)
		}
		return c.JSON(http.StatusOK, detail.Snapshot())
	}
}

func detailFor(c echo.Context, console *state.Console) (*state.ConversationDetailController, error) {
	phone, err := phoneParam(c)
	if err != nil {
		return nil, err
	}
	return console.Detail(phone, c.QueryParam("name"))
}

// loadedDetail returns the detail controller, fetching the transcript once
// if it has never loaded so intents can address the conversation id
func loadedDetail(c echo.Context, console *state.Console) (*state.ConversationDetailController, error) {
	detail, err := detailFor(c, console)
	if err != nil {
		return nil, err
	}
	if detail.Snapshot().Data == nil {
		_ = detail.Refresh(c.Request().Context())
	}
	return detail, nil
}
