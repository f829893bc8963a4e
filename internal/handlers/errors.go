package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"shiftly/internal/apiclient"
	"shiftly/internal/models"
	"shiftly/internal/state"

	"github.com/labstack/echo/v4"
)

// errorStatus maps controller and backend errors to a response code
func errorStatus(err error) int {
	var (
		httpErr      *apiclient.HTTPError
		transportErr *apiclient.TransportError
		decodeErr    *apiclient.DecodeError
	)
	switch {
	case errors.Is(err, state.ErrEmptyMessage), errors.Is(err, state.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, state.ErrNoConversation), errors.Is(err, state.ErrSendInProgress):
		return http.StatusConflict
	case errors.As(err, &httpErr), errors.As(err, &decodeErr), errors.Is(err, apiclient.ErrNoResponse):
		return http.StatusBadGateway
	case errors.As(err, &transportErr):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorJSON writes err as an ErrorResponse
func errorJSON(c echo.Context, err error) error {
	return c.JSON(errorStatus(err), models.ErrorResponse{Error: err.Error()})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: msg})
}

// phoneParam returns the unescaped :phone path parameter
func phoneParam(c echo.Context) (string, error) {
	phone, err := url.PathUnescape(c.Param("phone"))
	if err != nil {
		return "", err
	}
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return "", errors.New("phone is required")
	}
	return phone, nil
}

// wantsRefresh reports whether ?refresh asks for a fetch before responding
func wantsRefresh(c echo.Context) bool {
	switch strings.ToLower(c.QueryParam("refresh")) {
	case "1", "true", "yes":
		return true
	}
	return false
}
