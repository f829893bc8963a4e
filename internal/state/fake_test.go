package state

import (
	"context"
	"sync"

	"shiftly/internal/apiclient"
	"shiftly/internal/models"

	"github.com/rs/zerolog"
)

// fakeGateway answers with the function fields that are set and records
// every call by operation name
type fakeGateway struct {
	mu    sync.Mutex
	calls []string

	dashboard    func() (*models.DashboardMetrics, error)
	conversation func(phone string) (*models.Conversation, error)
	escalations  func() (*models.EscalationResponse, error)
	claim        func(id string) error
	resolve      func(id string) error
	send         func(conversationID, text string) error
	escalate     func(conversationID, reason string) error
	status       func(conversationID, status string) error
	config       func() (*models.DealershipConfig, error)
	updateConfig func(threshold int, temperature float64, maxTokens int) error
	healthy      bool
}

func (f *fakeGateway) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op)
}

func (f *fakeGateway) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (f *fakeGateway) history() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeGateway) FetchDashboardMetrics(context.Context) (*models.DashboardMetrics, error) {
	f.record("dashboard")
	if f.dashboard == nil {
		return &models.DashboardMetrics{Conversations: []models.ConversationSummary{}}, nil
	}
	return f.dashboard()
}

func (f *fakeGateway) FetchConversation(_ context.Context, phone string) (*models.Conversation, error) {
	f.record("conversation")
	if f.conversation == nil {
		return nil, &apiclient.HTTPError{Code: 404}
	}
	return f.conversation(phone)
}

func (f *fakeGateway) FetchEscalations(context.Context) (*models.EscalationResponse, error) {
	f.record("escalations")
	if f.escalations == nil {
		return &models.EscalationResponse{}, nil
	}
	return f.escalations()
}

func (f *fakeGateway) ClaimEscalation(_ context.Context, id string) error {
	f.record("claim")
	if f.claim == nil {
		return nil
	}
	return f.claim(id)
}

func (f *fakeGateway) ResolveEscalation(_ context.Context, id string) error {
	f.record("resolve")
	if f.resolve == nil {
		return nil
	}
	return f.resolve(id)
}

func (f *fakeGateway) SendManagerMessage(_ context.Context, conversationID, text string) error {
	f.record("send")
	if f.send == nil {
		return nil
	}
	return f.send(conversationID, text)
}

func (f *fakeGateway) EscalateConversation(_ context.Context, conversationID, reason string) error {
	f.record("escalate")
	if f.escalate == nil {
		return nil
	}
	return f.escalate(conversationID, reason)
}

func (f *fakeGateway) UpdateConversationStatus(_ context.Context, conversationID, status string) error {
	f.record("status")
	if f.status == nil {
		return nil
	}
	return f.status(conversationID, status)
}

func (f *fakeGateway) FetchDealershipConfig(context.Context) (*models.DealershipConfig, error) {
	f.record("config")
	if f.config == nil {
		return &models.DealershipConfig{}, nil
	}
	return f.config()
}

func (f *fakeGateway) UpdateDealershipConfig(_ context.Context, threshold int, temperature float64, maxTokens int) error {
	f.record("update_config")
	if f.updateConfig == nil {
		return nil
	}
	return f.updateConfig(threshold, temperature, maxTokens)
}

func (f *fakeGateway) CheckHealth(context.Context) bool {
	f.record("health")
	return f.healthy
}

func testDeps(api Gateway) Deps {
	return Deps{API: api, Logger: zerolog.Nop()}
}

func ptr[T any](v T) *T { return &v }

func summary(id string, score *float64, status string) models.ConversationSummary {
	return models.ConversationSummary{ID: id, Phone: "+1555000" + id, Status: status, QualificationScore: score}
}

func statusOf(err error) int {
	code, _ := apiclient.StatusCode(err)
	return code
}
