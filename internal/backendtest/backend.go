// Package backendtest provides an in-memory agent backend for tests. It
// serves the same routes as the real backend and keeps its state between
// requests, so intents are visible on the next fetch.
package backendtest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"shiftly/internal/models"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// APIKey is the only key the fake backend accepts
const APIKey = "test-key"

// Backend is a stateful fake of the agent backend
type Backend struct {
	mu            sync.Mutex
	conversations map[string]*models.Conversation // by phone
	order         []string
	escalations   []models.Escalation
	config        models.DealershipConfig
	healthy       bool
	failures      map[string]int // path prefix -> status code
	requests      []string
}

// New returns a backend seeded with a small dealership
func New() *Backend {
	b := &Backend{
		conversations: make(map[string]*models.Conversation),
		healthy:       true,
		failures:      make(map[string]int),
		config: models.DealershipConfig{
			DealershipName:         strPtr("Sunset Motors"),
			Phone:                  strPtr("+15550100"),
			Timezone:               strPtr("America/Los_Angeles"),
			QualificationThreshold: intPtr(75),
			ModelTemperature:       floatPtr(0.6),
			MaxTokens:              intPtr(250),
		},
	}
	b.AddConversation("conv-1", "+15551234567", "Dana Reyes", models.StatusActive, floatPtr(0.92))
	b.AddConversation("conv-2", "+15557654321", "", models.StatusActive, floatPtr(0.55))
	b.AddConversation("conv-3", "+15550000003", "Sam Ito", models.StatusCompleted, floatPtr(0.2))
	b.AddConversation("conv-4", "+15550000004", "Lee Park", models.StatusAbandoned, nil)
	b.escalations = []models.Escalation{{
		ID:                 "conv-1",
		CustomerPhone:      "+15551234567",
		VehicleInterest:    strPtr("2024 Tacoma"),
		QualificationScore: 92,
		EscalationReason:   "Ready to buy",
		EscalatedAt:        time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC).Format(time.RFC3339),
		Status:             models.EscalationPending,
	}}
	return b
}

// Start serves the backend on a local port until the test ends
func (b *Backend) Start(t testing.TB) *httptest.Server {
	srv := httptest.NewServer(b.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// AddConversation seeds a conversation with one customer message
func (b *Backend) AddConversation(id, phone, name, status string, score *float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	conv := &models.Conversation{
		ID:                 id,
		Phone:              phone,
		Status:             status,
		QualificationScore: score,
		Messages: []models.Message{{
			ID:      uuid.NewString(),
			Role:    models.RoleCustomer,
			Content: "Is the truck still available?",
		}},
	}
	if name != "" {
		conv.CustomerName = strPtr(name)
	}
	b.conversations[phone] = conv
	b.order = append(b.order, phone)
}

// Fail makes every request whose path starts with prefix answer code.
// A code of 0 clears the failure.
func (b *Backend) Fail(prefix string, code int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if code == 0 {
		delete(b.failures, prefix)
		return
	}
	b.failures[prefix] = code
}

// SetHealthy controls the /health answer
func (b *Backend) SetHealthy(healthy bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.healthy = healthy
}

// Requests returns "METHOD path" for every request received
func (b *Backend) Requests() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.requests...)
}

// Conversation returns a copy of the conversation for phone
func (b *Backend) Conversation(phone string) (models.Conversation, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	conv, ok := b.conversations[phone]
	if !ok {
		return models.Conversation{}, false
	}
	out := *conv
	out.Messages = append([]models.Message(nil), conv.Messages...)
	return out, true
}

// Escalations returns a copy of the escalation list
func (b *Backend) Escalations() []models.Escalation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Escalation(nil), b.escalations...)
}

// Config returns the stored dealership configuration
func (b *Backend) Config() models.DealershipConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.config
}

// Handler returns the backend's router
func (b *Backend) Handler() http.Handler {
	e := echo.New()
	e.HideBanner = true
	e.Use(b.middleware)

	e.GET("/health", b.health)
	e.GET("/admin/dashboard", b.dashboard)
	e.GET("/agent/conversation/:phone", b.conversation)
	e.POST("/agent/handle-message", b.handleMessage)
	e.POST("/agent/escalate", b.escalate)
	e.PUT("/admin/conversations/:id/status", b.updateStatus)
	e.GET("/admin/escalations", b.listEscalations)
	e.POST("/admin/escalations/:id/claim", b.transition(models.EscalationPending, models.EscalationClaimed))
	e.POST("/admin/escalations/:id/resolve", b.transition("", models.EscalationResolved))
	e.GET("/admin/config", b.getConfig)
	e.PUT("/admin/config", b.putConfig)
	return e
}

func (b *Backend) middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		b.mu.Lock()
		b.requests = append(b.requests, req.Method+" "+req.URL.Path)
		code := 0
		for prefix, status := range b.failures {
			if strings.HasPrefix(req.URL.Path, prefix) {
				code = status
			}
		}
		b.mu.Unlock()

		if req.Header.Get("X-API-Key") != APIKey {
			return c.JSON(http.StatusUnauthorized, map[string]string{"detail": "invalid api key"})
		}
		if c.QueryParam("dealership_id") == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"detail": "dealership_id is required"})
		}
		if code != 0 {
			return c.JSON(code, map[string]string{"detail": "injected failure"})
		}
		return next(c)
	}
}

func (b *Backend) health(c echo.Context) error {
	b.mu.Lock()
	healthy := b.healthy
	b.mu.Unlock()
	if !healthy {
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (b *Backend) dashboard(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := models.DashboardMetrics{Conversations: []models.ConversationSummary{}}
	var total float64
	var scored int
	for _, phone := range b.order {
		conv := b.conversations[phone]
		out.TotalConversations++
		if conv.IsActive() {
			out.ActiveConversations++
		}
		if conv.QualificationScore != nil {
			total += *conv.QualificationScore
			scored++
		}
		count := len(conv.Messages)
		out.Conversations = append(out.Conversations, models.ConversationSummary{
			ID:                 conv.ID,
			Phone:              conv.Phone,
			CustomerName:       conv.CustomerName,
			Status:             conv.Status,
			QualificationScore: conv.QualificationScore,
			MessageCount:       &count,
		})
	}
	if scored > 0 {
		out.AverageQualificationScore = total / float64(scored)
	}
	return c.JSON(http.StatusOK, out)
}

func (b *Backend) conversation(c echo.Context) error {
	phone, err := url.PathUnescape(c.Param("phone"))
	if err != nil {
		return c.NoContent(http.StatusBadRequest)
	}
	conv, ok := b.Conversation(phone)
	if !ok {
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "conversation not found"})
	}
	return c.JSON(http.StatusOK, conv)
}

func (b *Backend) byID(id string) *models.Conversation {
	for _, conv := range b.conversations {
		if conv.ID == id {
			return conv
		}
	}
	return nil
}

func (b *Backend) handleMessage(c echo.Context) error {
	var req models.ManagerMessageRequest
	if err := c.Bind(&req); err != nil || !req.BypassAI || req.Source != models.SourceManager {
		return c.NoContent(http.StatusBadRequest)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	conv := b.byID(req.ConversationID)
	if conv == nil {
		return c.NoContent(http.StatusNotFound)
	}
	conv.Messages = append(conv.Messages, models.Message{
		ID:             uuid.NewString(),
		ConversationID: strPtr(conv.ID),
		Role:           models.RoleManager,
		Content:        req.Message,
	})
	return c.JSON(http.StatusOK, map[string]string{"status": "sent"})
}

func (b *Backend) escalate(c echo.Context) error {
	var req models.EscalateRequest
	if err := c.Bind(&req); err != nil || req.Priority != models.PriorityHigh {
		return c.NoContent(http.StatusBadRequest)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	conv := b.byID(req.ConversationID)
	if conv == nil {
		return c.NoContent(http.StatusNotFound)
	}
	score := 0
	if conv.QualificationScore != nil {
		score = int(*conv.QualificationScore * 100)
	}
	b.escalations = append(b.escalations, models.Escalation{
		ID:                 conv.ID,
		CustomerPhone:      conv.Phone,
		QualificationScore: score,
		EscalationReason:   req.Reason,
		EscalatedAt:        time.Now().UTC().Format(time.RFC3339),
		Status:             models.EscalationPending,
	})
	return c.JSON(http.StatusOK, map[string]string{"status": "escalated"})
}

func (b *Backend) updateStatus(c echo.Context) error {
	var req models.StatusUpdateRequest
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.NoContent(http.StatusBadRequest)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	conv := b.byID(c.Param("id"))
	if conv == nil {
		return c.NoContent(http.StatusNotFound)
	}
	conv.Status = req.Status
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

func (b *Backend) listEscalations(c echo.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	active := 0
	for _, e := range b.escalations {
		if !e.IsResolved() {
			active++
		}
	}
	return c.JSON(http.StatusOK, models.EscalationResponse{
		Escalations: append([]models.Escalation{}, b.escalations...),
		Stats:       &models.EscalationStats{ActiveCount: active, AvgResolveTimeMin: 12.5},
	})
}

// transition moves an escalation to next. An empty from accepts any
// unresolved status.
func (b *Backend) transition(from, next string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")

		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.escalations {
			e := &b.escalations[i]
			if e.ID != id || e.IsResolved() {
				continue
			}
			if from != "" && e.Status != from {
				return c.NoContent(http.StatusConflict)
			}
			e.Status = next
			if next == models.EscalationClaimed {
				e.AssignedTo = strPtr("manager")
			}
			return c.JSON(http.StatusOK, e)
		}
		return c.JSON(http.StatusNotFound, map[string]string{"detail": "escalation not found"})
	}
}

func (b *Backend) getConfig(c echo.Context) error {
	return c.JSON(http.StatusOK, b.Config())
}

func (b *Backend) putConfig(c echo.Context) error {
	var req models.ConfigUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.NoContent(http.StatusBadRequest)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.config.QualificationThreshold = intPtr(req.QualificationThreshold)
	b.config.ModelTemperature = floatPtr(req.ModelTemperature)
	b.config.MaxTokens = intPtr(req.MaxTokens)
	return c.JSON(http.StatusOK, b.config)
}

func strPtr(s string) *string     { return &s }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }
