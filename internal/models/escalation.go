package models

import "strings"

// Escalation statuses; the lifecycle only moves pending -> claimed -> resolved
const (
	EscalationPending  = "pending"
	EscalationClaimed  = "claimed"
	EscalationResolved = "resolved"
)

// Escalation is a conversation flagged for human takeover.
// The backend identifies it by the conversation it belongs to.
type Escalation struct {
	ID                 string  `json:"conversation_id"`
	CustomerPhone      string  `json:"customer_phone"`
	VehicleInterest    *string `json:"vehicle_interest,omitempty"`
	QualificationScore int     `json:"qualification_score"` // 0-100, see Score
	EscalationReason   string  `json:"escalation_reason"`
	EscalatedAt        string  `json:"escalated_at"`
	AssignedTo         *string `json:"assigned_to,omitempty"`
	Status             string  `json:"status"`
}

// Score converts the escalation's 0-100 score to the 0-1 scale used
// everywhere else in the console.
func (e Escalation) Score() float64 {
	return ClampScore(float64(e.QualificationScore) / 100)
}

// IsPending reports whether nobody has claimed the escalation yet
func (e Escalation) IsPending() bool { return strings.EqualFold(e.Status, EscalationPending) }

// IsClaimed reports whether a manager has claimed the escalation
func (e Escalation) IsClaimed() bool { return strings.EqualFold(e.Status, EscalationClaimed) }

// IsResolved reports whether the escalation is closed
func (e Escalation) IsResolved() bool { return strings.EqualFold(e.Status, EscalationResolved) }

// EscalationStats holds aggregates recomputed by the backend on every fetch
type EscalationStats struct {
	ActiveCount         int     `json:"active_count"`
	AvgResolveTimeMin   float64 `json:"avg_resolve_time_min"`
	EscalationRateToday float64 `json:"escalation_rate_today"`
}

// EscalationResponse is the body of GET /admin/escalations
type EscalationResponse struct {
	Escalations []Escalation     `json:"escalations"`
	Stats       *EscalationStats `json:"stats,omitempty"`
}
