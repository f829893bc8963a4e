package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBandFor(t *testing.T) {
	tests := []struct {
		name     string
		score    float64
		expected ScoreBand
	}{
		{"zero", 0, BandLow},
		{"just below mid", 0.3999, BandLow},
		{"mid boundary", 0.4, BandMid},
		{"inside mid", 0.55, BandMid},
		{"just below high", 0.6999, BandMid},
		{"high boundary", 0.7, BandHigh},
		{"max", 1.0, BandHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, BandFor(tt.score))
		})
	}
}

func TestDashboardMetrics_RoundTrip(t *testing.T) {
	blob := `{"total_conversations":10,"active_conversations":3,"average_qualification_score":0.55,` +
		`"conversations":[{"id":"c1","phone":"+15551234567","customer_name":"Jane Roe","status":"active",` +
		`"qualification_score":0.82,"last_message_at":"2025-01-02T03:04:05Z","message_count":7}]}`

	var metrics DashboardMetrics
	require.NoError(t, json.Unmarshal([]byte(blob), &metrics))

	encoded, err := json.Marshal(metrics)
	require.NoError(t, err)
	assert.JSONEq(t, blob, string(encoded))
}

func TestConversationSummary_ToleratesMissingOptionals(t *testing.T) {
	var summary ConversationSummary
	require.NoError(t, json.Unmarshal([]byte(`{"id":"c1","phone":"+15550000000","status":"active"}`), &summary))

	assert.Nil(t, summary.CustomerName)
	assert.Nil(t, summary.QualificationScore)
	assert.Nil(t, summary.MessageCount)
	assert.Equal(t, "+15550000000", summary.DisplayName())
	assert.Equal(t, "N/A", summary.FormattedScore())
}

func TestConversationSummary_FormattedScore(t *testing.T) {
	score := 0.856
	name := "Sam"
	summary := ConversationSummary{Phone: "+1", CustomerName: &name, QualificationScore: &score}

	assert.Equal(t, "86%", summary.FormattedScore())
	assert.Equal(t, "Sam", summary.DisplayName())
}

func TestMessage_Roles(t *testing.T) {
	tests := []struct {
		role     string
		customer bool
		agent    bool
		manager  bool
	}{
		{"customer", true, false, false},
		{"User", true, false, false},
		{"agent", false, true, false},
		{"ASSISTANT", false, true, false},
		{"manager", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			m := Message{Role: tt.role}
			assert.Equal(t, tt.customer, m.IsCustomer())
			assert.Equal(t, tt.agent, m.IsAgent())
			assert.Equal(t, tt.manager, m.IsManager())
		})
	}
}

func TestEscalation_Decode(t *testing.T) {
	blob := `{"escalations":[{"conversation_id":"e1","customer_phone":"+15551234567","qualification_score":85,` +
		`"escalation_reason":"wants a test drive","escalated_at":"2025-01-02T03:04:05Z","status":"Pending"}]}`

	var resp EscalationResponse
	require.NoError(t, json.Unmarshal([]byte(blob), &resp))
	require.Len(t, resp.Escalations, 1)

	e := resp.Escalations[0]
	assert.Equal(t, "e1", e.ID)
	assert.True(t, e.IsPending())
	assert.False(t, e.IsResolved())
	assert.InDelta(t, 0.85, e.Score(), 1e-9)
	assert.Nil(t, resp.Stats)
}

func TestRequestBodies(t *testing.T) {
	msg, err := json.Marshal(NewManagerMessageRequest("c1", "hello"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"conversation_id":"c1","message":"hello","source":"manager","bypass_ai":true}`, string(msg))

	esc, err := json.Marshal(NewEscalateRequest("c1", "angry"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"conversation_id":"c1","reason":"angry","priority":"high"}`, string(esc))
}
