package models

// DashboardMetrics is the top-level result feeding the dashboard, the
// conversation list and the leads screen
type DashboardMetrics struct {
	TotalConversations        int                   `json:"total_conversations"`
	ActiveConversations       int                   `json:"active_conversations"`
	AverageQualificationScore float64               `json:"average_qualification_score"`
	Conversations             []ConversationSummary `json:"conversations"`
}

// DealershipConfig is the dealership and agent configuration.
// Every field is optional; consumers apply their own defaults.
type DealershipConfig struct {
	DealershipName         *string  `json:"dealership_name,omitempty"`
	Phone                  *string  `json:"phone,omitempty"`
	Timezone               *string  `json:"timezone,omitempty"`
	SMSProvider            *string  `json:"sms_provider,omitempty"`
	QualificationThreshold *int     `json:"qualification_threshold,omitempty"` // 0-100
	ModelTemperature       *float64 `json:"model_temperature,omitempty"`
	MaxTokens              *int     `json:"max_tokens,omitempty"`
}
