package models

// Fixed values carried by manager-originated requests
const (
	SourceManager = "manager"
	PriorityHigh  = "high"
)

// ManagerMessageRequest is the body of POST /agent/handle-message
type ManagerMessageRequest struct {
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
	Source         string `json:"source"`
	BypassAI       bool   `json:"bypass_ai"`
}

// NewManagerMessageRequest builds a message that skips the AI agent
func NewManagerMessageRequest(conversationID, message string) ManagerMessageRequest {
	return ManagerMessageRequest{
		ConversationID: conversationID,
		Message:        message,
		Source:         SourceManager,
		BypassAI:       true,
	}
}

// EscalateRequest is the body of POST /agent/escalate
type EscalateRequest struct {
	ConversationID string `json:"conversation_id"`
	Reason         string `json:"reason"`
	Priority       string `json:"priority"`
}

// NewEscalateRequest builds a high priority escalation
func NewEscalateRequest(conversationID, reason string) EscalateRequest {
	return EscalateRequest{
		ConversationID: conversationID,
		Reason:         reason,
		Priority:       PriorityHigh,
	}
}

// StatusUpdateRequest is the body of PUT /admin/conversations/{id}/status
type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// ConfigUpdateRequest is the body of PUT /admin/config
type ConfigUpdateRequest struct {
	QualificationThreshold int     `json:"qualification_threshold"`
	ModelTemperature       float64 `json:"model_temperature"`
	MaxTokens              int     `json:"max_tokens"`
}
