package notify

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendFunc delivers a message and returns the provider's status and body
type sendFunc func(message *mail.SGMailV3) (int, string, error)

// EmailNotifier emails escalation alerts via SendGrid
type EmailNotifier struct {
	apiKey string
	to     string
	send   sendFunc
}

// NewEmailNotifier creates an email notifier addressed to the manager
func NewEmailNotifier(apiKey, to string) *EmailNotifier {
	n := &EmailNotifier{apiKey: apiKey, to: to}
	n.send = func(message *mail.SGMailV3) (int, string, error) {
		response, err := sendgrid.NewSendClient(n.apiKey).Send(message)
		if err != nil {
			return 0, "", err
		}
		return response.StatusCode, response.Body, nil
	}
	return n
}

func (n *EmailNotifier) Channel() string { return "email" }

// Notify sends one alert email
func (n *EmailNotifier) Notify(_ context.Context, alert Alert) error {
	if n.apiKey == "" {
		return fmt.Errorf("SendGrid API key not configured")
	}
	if n.to == "" {
		return fmt.Errorf("alert recipient not configured")
	}

	message := n.buildMessage(alert)
	status, body, err := n.send(message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	if status >= 400 {
		return fmt.Errorf("SendGrid API error: status %d, body: %s", status, body)
	}
	return nil
}

func (n *EmailNotifier) buildMessage(alert Alert) *mail.SGMailV3 {
	from := mail.NewEmail("Shiftly Alerts", "noreply@shiftly.app")
	to := mail.NewEmail("Sales Manager", n.to)
	subject := fmt.Sprintf("%s: %s", alert.Title(), alert.Phone)

	intro := "A conversation needs a manager."
	if alert.Kind == KindHighScore {
		intro = "A lead crossed your score alert threshold."
	}
	body := fmt.Sprintf(`%s

Customer: %s
Reason: %s
Qualification score: %.0f%%
Conversation: %s
Raised: %s`, intro, alert.Phone, alert.Reason, alert.Score*100, alert.ConversationID, alert.CreatedAt.Format("2006-01-02T15:04:05Z07:00"))

	return mail.NewSingleEmail(from, subject, to, body, body)
}
