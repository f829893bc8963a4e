package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"shiftly/internal/config"
	"shiftly/internal/metrics"
	"shiftly/internal/models"
	"shiftly/internal/state"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// offlineGateway fails every fetch as if the backend were unreachable
type offlineGateway struct{}

func (offlineGateway) FetchDashboardMetrics(context.Context) (*models.DashboardMetrics, error) {
	return nil, context.DeadlineExceeded
}
func (offlineGateway) FetchConversation(context.Context, string) (*models.Conversation, error) {
	return nil, context.DeadlineExceeded
}
func (offlineGateway) FetchEscalations(context.Context) (*models.EscalationResponse, error) {
	return nil, context.DeadlineExceeded
}
func (offlineGateway) ClaimEscalation(context.Context, string) error   { return context.DeadlineExceeded }
func (offlineGateway) ResolveEscalation(context.Context, string) error { return context.DeadlineExceeded }
func (offlineGateway) SendManagerMessage(context.Context, string, string) error {
	return context.DeadlineExceeded
}
func (offlineGateway) EscalateConversation(context.Context, string, string) error {
	return context.DeadlineExceeded
}
func (offlineGateway) UpdateConversationStatus(context.Context, string, string) error {
	return context.DeadlineExceeded
}
func (offlineGateway) FetchDealershipConfig(context.Context) (*models.DealershipConfig, error) {
	return nil, context.DeadlineExceeded
}
func (offlineGateway) UpdateDealershipConfig(context.Context, int, float64, int) error {
	return context.DeadlineExceeded
}
func (offlineGateway) CheckHealth(context.Context) bool { return false }

func newTestServer(t *testing.T) *Server {
	t.Helper()
	m := metrics.NewMetrics()
	deps := state.Deps{API: offlineGateway{}, Logger: zerolog.Nop(), Metrics: m}
	console, err := state.NewConsole(deps, state.ConsoleOptions{})
	require.NoError(t, err)
	t.Cleanup(console.Shutdown)

	srv := New(&config.Config{Port: "0", Version: "test"}, console, offlineGateway{}, m, zerolog.Nop())
	srv.Initialize()
	return srv
}

func TestServer_Routes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name         string
		method       string
		target       string
		expectedCode int
		contains     string
	}{
		{"health", http.MethodGet, "/healthz", http.StatusOK, `"backend_healthy":false`},
		{"root", http.MethodGet, "/api/", http.StatusOK, "Shiftly Console"},
		{"dashboard shows error banner", http.MethodGet, "/api/dashboard", http.StatusOK, `"show_error":true`},
		{"conversations", http.MethodGet, "/api/conversations?status=active", http.StatusOK, `"phase":"error"`},
		{"conversation detail", http.MethodGet, "/api/conversations/%2B15551234567", http.StatusOK, `"phone":"+15551234567"`},
		{"escalations", http.MethodGet, "/api/escalations", http.StatusOK, `"active_count":0`},
		{"leads rejects unknown band", http.MethodGet, "/api/leads?band=cold", http.StatusBadRequest, "unknown lead filter"},
		{"settings defaults", http.MethodGet, "/api/settings", http.StatusOK, `"qualification_threshold":70`},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, "shiftly_refreshes_total"},
		{"unknown route", http.MethodGet, "/api/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, nil)
			rec := httptest.NewRecorder()

			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
			if tt.contains != "" {
				assert.True(t, strings.Contains(rec.Body.String(), tt.contains), rec.Body.String())
			}
		})
	}
}

func TestServer_ClaimFailureIsBadGateway(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/escalations/e1/claim", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	// context.DeadlineExceeded is not a backend error type
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "context deadline exceeded")
}

func TestServer_ConsoleKeyGuardsAPI(t *testing.T) {
	console, err := state.NewConsole(state.Deps{API: offlineGateway{}, Logger: zerolog.Nop()}, state.ConsoleOptions{})
	require.NoError(t, err)
	t.Cleanup(console.Shutdown)

	srv := New(&config.Config{Version: "test", ConsoleAPIKey: "secret"}, console, offlineGateway{}, nil, zerolog.Nop())
	srv.Initialize()

	tests := []struct {
		name         string
		target       string
		key          string
		expectedCode int
	}{
		{"api without key", "/api/settings", "", http.StatusUnauthorized},
		{"api with key", "/api/settings", "secret", http.StatusOK},
		{"health stays open", "/healthz", "", http.StatusOK},
		{"metrics route absent without registry", "/metrics", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.key != "" {
				req.Header.Set("X-API-Key", tt.key)
			}
			rec := httptest.NewRecorder()

			srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedCode, rec.Code)
		})
	}
}
