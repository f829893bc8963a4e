package models

import "strings"

// Message roles as sent by the backend
const (
	RoleCustomer  = "customer"
	RoleUser      = "user"
	RoleAgent     = "agent"
	RoleAssistant = "assistant"
	RoleManager   = "manager"
)

// Conversation statuses understood by the console
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// Message represents a single message in a conversation transcript
type Message struct {
	ID             string  `json:"id"`                        // Message ID
	ConversationID *string `json:"conversation_id,omitempty"` // Owning conversation
	Role           string  `json:"role"`                      // customer, agent, manager, user, assistant
	Content        string  `json:"content"`                   // Message text
	CreatedAt      *string `json:"created_at,omitempty"`      // ISO-8601 timestamp
}

// IsCustomer reports whether the message was written by the customer
func (m Message) IsCustomer() bool {
	role := strings.ToLower(m.Role)
	return role == RoleCustomer || role == RoleUser
}

// IsAgent reports whether the message was written by the AI sales agent
func (m Message) IsAgent() bool {
	role := strings.ToLower(m.Role)
	return role == RoleAgent || role == RoleAssistant
}

// IsManager reports whether the message was written by a human manager
func (m Message) IsManager() bool {
	return strings.EqualFold(m.Role, RoleManager)
}

// Conversation is the full detail record of a customer conversation
type Conversation struct {
	ID                 string    `json:"id"`
	Phone              string    `json:"phone"`
	DealershipID       string    `json:"dealership_id,omitempty"`
	Status             string    `json:"status"`
	CustomerName       *string   `json:"customer_name,omitempty"`
	QualificationScore *float64  `json:"qualification_score,omitempty"` // 0-1
	CreatedAt          *string   `json:"created_at,omitempty"`
	UpdatedAt          *string   `json:"updated_at,omitempty"`
	Messages           []Message `json:"messages"`
}

// DisplayName returns the customer name, falling back to the phone number
func (c Conversation) DisplayName() string {
	return displayName(c.CustomerName, c.Phone)
}

// IsActive reports whether the conversation is still being worked by the agent
func (c Conversation) IsActive() bool {
	return strings.EqualFold(c.Status, StatusActive)
}

// ConversationSummary is the lightweight projection used by list screens
type ConversationSummary struct {
	ID                 string   `json:"id"`
	Phone              string   `json:"phone"`
	CustomerName       *string  `json:"customer_name,omitempty"`
	Status             string   `json:"status"`
	QualificationScore *float64 `json:"qualification_score,omitempty"` // 0-1
	LastMessageAt      *string  `json:"last_message_at,omitempty"`
	MessageCount       *int     `json:"message_count,omitempty"`
}

// DisplayName returns the customer name, falling back to the phone number
func (s ConversationSummary) DisplayName() string {
	return displayName(s.CustomerName, s.Phone)
}

// FormattedScore renders the qualification score as a whole percentage
func (s ConversationSummary) FormattedScore() string {
	if s.QualificationScore == nil {
		return "N/A"
	}
	return FormatPercent(*s.QualificationScore)
}

func displayName(name *string, phone string) string {
	if name != nil && *name != "" {
		return *name
	}
	return phone
}
