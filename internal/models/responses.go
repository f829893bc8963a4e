package models

import "time"

// HealthResponse represents the console's own health check response
// @Description Health check response
type HealthResponse struct {
	Status         string    `json:"status" example:"healthy"`                 // Health status
	Timestamp      time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version        string    `json:"version" example:"1.0.0"`                  // Application version
	BackendHealthy bool      `json:"backend_healthy" example:"true"`           // Whether the agent backend answered /health
}

// ErrorResponse is returned by the presentation API when an intent fails
// @Description Error response
type ErrorResponse struct {
	Error string `json:"error" example:"Server error (HTTP 404)"` // User-facing message
}

// SendMessageRequest is the presentation API body for a manager reply
// @Description Manager reply payload
type SendMessageRequest struct {
	Message string `json:"message" example:"I'll call you in five minutes."` // Reply text
}

// EscalateConversationRequest is the presentation API body for an escalation
// @Description Escalation payload
type EscalateConversationRequest struct {
	Reason string `json:"reason" example:"Customer asked for a manager"` // Escalation reason
}

// SettingsUpdateRequest is the presentation API body for saving agent config
// @Description Agent configuration payload
type SettingsUpdateRequest struct {
	QualificationThreshold int     `json:"qualification_threshold" example:"70"` // 0-100
	ModelTemperature       float64 `json:"model_temperature" example:"0.7"`      // Sampling temperature
	MaxTokens              int     `json:"max_tokens" example:"200"`             // Response length cap
}
