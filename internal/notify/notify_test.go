package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"shiftly/internal/models"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureNotifier records alerts and optionally fails
type captureNotifier struct {
	mu     sync.Mutex
	alerts []Alert
	err    error
}

func (c *captureNotifier) Channel() string { return "capture" }

func (c *captureNotifier) Notify(_ context.Context, alert Alert) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.alerts = append(c.alerts, alert)
	return c.err
}

func (c *captureNotifier) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.alerts)
}

func escalation(id, status string) models.Escalation {
	return models.Escalation{
		ID:                 id,
		CustomerPhone:      "+1555000" + id,
		QualificationScore: 80,
		EscalationReason:   "asked for pricing",
		Status:             status,
	}
}

func TestDispatcher_AlertsPendingOnce(t *testing.T) {
	capture := &captureNotifier{}
	d := NewDispatcher(DispatcherOptions{Notifiers: []Notifier{capture}, Logger: zerolog.Nop()})

	list := []models.Escalation{
		escalation("1", models.EscalationPending),
		escalation("2", models.EscalationClaimed),
		escalation("3", models.EscalationResolved),
		escalation("4", "PENDING"),
	}

	assert.Equal(t, 2, d.AlertPending(context.Background(), list))
	assert.Equal(t, 0, d.AlertPending(context.Background(), list), "repeat refresh raises nothing new")
	assert.Equal(t, 2, capture.count())

	list = append(list, escalation("5", models.EscalationPending))
	assert.Equal(t, 1, d.AlertPending(context.Background(), list))
	assert.Equal(t, 3, capture.count())
}

func TestDispatcher_Disabled(t *testing.T) {
	capture := &captureNotifier{}
	enabled := false
	d := NewDispatcher(DispatcherOptions{
		Notifiers: []Notifier{capture},
		Enabled:   func() bool { return enabled },
		Logger:    zerolog.Nop(),
	})

	list := []models.Escalation{escalation("1", models.EscalationPending)}
	assert.Equal(t, 0, d.AlertPending(context.Background(), list))

	enabled = true
	assert.Equal(t, 1, d.AlertPending(context.Background(), list))
}

func TestDispatcher_NotifierFailureIsSwallowed(t *testing.T) {
	failing := &captureNotifier{err: errors.New("smtp down")}
	ok := &captureNotifier{}
	d := NewDispatcher(DispatcherOptions{Notifiers: []Notifier{failing, ok}, Logger: zerolog.Nop()})

	assert.Equal(t, 1, d.AlertPending(context.Background(), []models.Escalation{escalation("1", models.EscalationPending)}))
	assert.Equal(t, 1, ok.count(), "later notifiers still run")
}

func TestDispatcher_Nil(t *testing.T) {
	var d *Dispatcher
	assert.Equal(t, 0, d.AlertPending(context.Background(), []models.Escalation{escalation("1", models.EscalationPending)}))
}

func TestDispatcher_ReEscalationAlertsAgain(t *testing.T) {
	capture := &captureNotifier{}
	d := NewDispatcher(DispatcherOptions{Notifiers: []Notifier{capture}, Logger: zerolog.Nop()})
	ctx := context.Background()

	assert.Equal(t, 1, d.AlertPending(ctx, []models.Escalation{escalation("1", models.EscalationPending)}))
	assert.Equal(t, 0, d.AlertPending(ctx, []models.Escalation{escalation("1", models.EscalationClaimed)}))
	assert.Equal(t, 1, d.AlertPending(ctx, []models.Escalation{escalation("1", models.EscalationPending)}))
	assert.Equal(t, 2, capture.count())
}

func TestDispatcher_AlertHighScores(t *testing.T) {
	capture := &captureNotifier{}
	d := NewDispatcher(DispatcherOptions{
		Notifiers: []Notifier{capture},
		Enabled:   func() bool { return false },
		Logger:    zerolog.Nop(),
	})
	ctx := context.Background()
	score := func(v float64) *float64 { return &v }

	leads := []models.ConversationSummary{
		{ID: "hot", Phone: "+15550001", QualificationScore: score(0.92)},
		{ID: "edge", Phone: "+15550002", QualificationScore: score(0.7)},
		{ID: "warm", Phone: "+15550003", QualificationScore: score(0.5)},
		{ID: "unscored", Phone: "+15550004"},
	}

	assert.Equal(t, 2, d.AlertHighScores(ctx, leads, 0.7), "escalation toggle does not gate lead alerts")
	assert.Equal(t, 0, d.AlertHighScores(ctx, leads, 0.7))
	assert.Equal(t, 1, d.AlertHighScores(ctx, leads, 0.5))
	require.Equal(t, 3, capture.count())
	assert.Equal(t, KindHighScore, capture.alerts[0].Kind)
	assert.Equal(t, "hot", capture.alerts[0].ConversationID)
	assert.Empty(t, capture.alerts[0].EscalationID)

	var nilDispatcher *Dispatcher
	assert.Equal(t, 0, nilDispatcher.AlertHighScores(ctx, leads, 0))
}

func TestDispatcher_LeadAndEscalationKeysAreSeparate(t *testing.T) {
	capture := &captureNotifier{}
	d := NewDispatcher(DispatcherOptions{Notifiers: []Notifier{capture}, Logger: zerolog.Nop()})
	ctx := context.Background()
	score := 0.95

	assert.Equal(t, 1, d.AlertPending(ctx, []models.Escalation{escalation("1", models.EscalationPending)}))
	assert.Equal(t, 1, d.AlertHighScores(ctx, []models.ConversationSummary{{ID: "1", Phone: "+15550001", QualificationScore: &score}}, 0.7))
}

func TestLeadAlert_Body(t *testing.T) {
	name := "Dana"
	score := 0.92
	alert := NewLeadAlert(models.ConversationSummary{ID: "c1", Phone: "+15550001", CustomerName: &name, QualificationScore: &score})
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, "High-score lead", alert.Title())
	assert.Equal(t, "+15550001 is a hot lead: Dana scored 92%", alert.Body())
}

func TestAlert_Body(t *testing.T) {
	alert := NewAlert(escalation("9", models.EscalationPending))
	assert.NotEmpty(t, alert.ID)
	assert.Equal(t, "9", alert.EscalationID)
	assert.Equal(t, KindEscalation, alert.Kind)
	assert.Equal(t, "Escalation", alert.Title())
	assert.Equal(t, "+15550009 needs attention: asked for pricing", alert.Body())
	assert.InDelta(t, 0.8, alert.Score, 1e-9)
}

func TestLogNotifier(t *testing.T) {
	n := NewLogNotifier(zerolog.Nop())
	assert.Equal(t, "log", n.Channel())
	assert.NoError(t, n.Notify(context.Background(), NewAlert(escalation("1", models.EscalationPending))))
}

func TestEmailNotifier(t *testing.T) {
	alert := NewAlert(escalation("1", models.EscalationPending))

	t.Run("missing api key", func(t *testing.T) {
		err := NewEmailNotifier("", "manager@example.com").Notify(context.Background(), alert)
		assert.EqualError(t, err, "SendGrid API key not configured")
	})

	t.Run("missing recipient", func(t *testing.T) {
		err := NewEmailNotifier("SG.key", "").Notify(context.Background(), alert)
		assert.Error(t, err)
	})

	t.Run("sends message", func(t *testing.T) {
		n := NewEmailNotifier("SG.key", "manager@example.com")
		var sent *mail.SGMailV3
		n.send = func(m *mail.SGMailV3) (int, string, error) {
			sent = m
			return 202, "", nil
		}

		require.NoError(t, n.Notify(context.Background(), alert))
		require.NotNil(t, sent)
		assert.Equal(t, "Escalation: +15550001", sent.Subject)
		require.Len(t, sent.Personalizations, 1)
		assert.Equal(t, "manager@example.com", sent.Personalizations[0].To[0].Address)
	})

	t.Run("high-score lead", func(t *testing.T) {
		n := NewEmailNotifier("SG.key", "manager@example.com")
		var sent *mail.SGMailV3
		n.send = func(m *mail.SGMailV3) (int, string, error) {
			sent = m
			return 202, "", nil
		}
		score := 0.9
		lead := NewLeadAlert(models.ConversationSummary{ID: "c7", Phone: "+15550007", QualificationScore: &score})

		require.NoError(t, n.Notify(context.Background(), lead))
		require.NotNil(t, sent)
		assert.Equal(t, "High-score lead: +15550007", sent.Subject)
		require.NotEmpty(t, sent.Content)
		assert.Contains(t, sent.Content[0].Value, "crossed your score alert threshold")
		assert.Contains(t, sent.Content[0].Value, "Conversation: c7")
	})

	t.Run("provider error status", func(t *testing.T) {
		n := NewEmailNotifier("SG.key", "manager@example.com")
		n.send = func(*mail.SGMailV3) (int, string, error) { return 401, "unauthorized", nil }

		err := n.Notify(context.Background(), alert)
		assert.EqualError(t, err, "SendGrid API error: status 401, body: unauthorized")
	})

	t.Run("transport error", func(t *testing.T) {
		n := NewEmailNotifier("SG.key", "manager@example.com")
		n.send = func(*mail.SGMailV3) (int, string, error) { return 0, "", errors.New("timeout") }

		assert.ErrorContains(t, n.Notify(context.Background(), alert), "failed to send email")
	})
}
