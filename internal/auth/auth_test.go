package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		key            string
		header         string
		value          string
		expectedStatus int
	}{
		{"disabled without key", "", "", "", http.StatusOK},
		{"valid api key header", "secret", HeaderAPIKey, "secret", http.StatusOK},
		{"valid bearer token", "secret", echo.HeaderAuthorization, "Bearer secret", http.StatusOK},
		{"lowercase bearer prefix", "secret", echo.HeaderAuthorization, "bearer secret", http.StatusOK},
		{"wrong key", "secret", HeaderAPIKey, "guess", http.StatusUnauthorized},
		{"missing key", "secret", "", "", http.StatusUnauthorized},
		{"bare authorization value", "secret", echo.HeaderAuthorization, "secret", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			// Execute
			handler := Middleware(tt.key)(func(c echo.Context) error {
				return c.String(http.StatusOK, "ok")
			})
			err := handler(c)

			// Assert
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedStatus, rec.Code)
		})
	}
}
