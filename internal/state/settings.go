package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Placeholder shown for dealership fields the backend did not send
const Placeholder = "—"

// Agent configuration defaults and bounds
const (
	DefaultQualificationThreshold = 70
	DefaultModelTemperature       = 0.7
	DefaultMaxTokens              = 200
	DefaultAlertThreshold         = 70

	MinMaxTokens = 100
	MaxMaxTokens = 500
)

// SettingsState is what the settings screen renders
type SettingsState struct {
	DealershipName string `json:"dealership_name"`
	Phone          string `json:"phone"`
	Timezone       string `json:"timezone"`
	SMSProvider    string `json:"sms_provider"`

	QualificationThreshold int     `json:"qualification_threshold"` // 0-100
	ModelTemperature       float64 `json:"model_temperature"`
	MaxTokens              int     `json:"max_tokens"`

	EscalationAlerts bool `json:"escalation_alerts"`
	HighScoreAlerts  bool `json:"high_score_alerts"`
	AlertThreshold   int  `json:"alert_threshold"` // 0-100

	APIHealthy      bool   `json:"api_healthy"`
	IsLoading       bool   `json:"is_loading"`
	ShowError       bool   `json:"show_error"`
	ErrorMessage    string `json:"error_message,omitempty"`
	ShowSaveSuccess bool   `json:"show_save_success"`
}

// ThresholdFraction converts the 0-100 threshold to the 0-1 score scale
func (s SettingsState) ThresholdFraction() float64 {
	return float64(s.QualificationThreshold) / 100
}

// DefaultSettings returns the values shown before, or instead of, a
// successful config fetch
func DefaultSettings() SettingsState {
	return SettingsState{
		DealershipName:         Placeholder,
		Phone:                  Placeholder,
		Timezone:               Placeholder,
		SMSProvider:            Placeholder,
		QualificationThreshold: DefaultQualificationThreshold,
		ModelTemperature:       DefaultModelTemperature,
		MaxTokens:              DefaultMaxTokens,
		EscalationAlerts:       true,
		HighScoreAlerts:        true,
		AlertThreshold:         DefaultAlertThreshold,
	}
}

// SettingsController shows the dealership configuration and saves agent
// tuning. Config display is best-effort: a failed fetch keeps defaults.
type SettingsController struct {
	api    Gateway
	logger zerolog.Logger

	mu    sync.Mutex
	state SettingsState
}

// NewSettingsController creates a settings controller
func NewSettingsController(deps Deps) *SettingsController {
	return &SettingsController{
		api:    deps.API,
		logger: deps.Logger.With().Str("controller", "settings").Logger(),
		state:  DefaultSettings(),
	}
}

// Load fetches config and health independently. A config failure is
// logged and otherwise ignored; the health result always overwrites.
func (c *SettingsController) Load(ctx context.Context) {
	c.mu.Lock()
	c.state.IsLoading = true
	c.mu.Unlock()

	cfg, err := c.api.FetchDealershipConfig(ctx)
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to load config, keeping defaults")
	} else {
		c.mu.Lock()
		c.state.DealershipName = orPlaceholder(cfg.DealershipName)
		c.state.Phone = orPlaceholder(cfg.Phone)
		c.state.Timezone = orPlaceholder(cfg.Timezone)
		c.state.SMSProvider = orPlaceholder(cfg.SMSProvider)
		c.state.QualificationThreshold = DefaultQualificationThreshold
		if cfg.QualificationThreshold != nil {
			c.state.QualificationThreshold = *cfg.QualificationThreshold
		}
		c.state.ModelTemperature = DefaultModelTemperature
		if cfg.ModelTemperature != nil {
			c.state.ModelTemperature = *cfg.ModelTemperature
		}
		c.state.MaxTokens = DefaultMaxTokens
		if cfg.MaxTokens != nil {
			c.state.MaxTokens = *cfg.MaxTokens
		}
		c.mu.Unlock()
	}

	healthy := c.api.CheckHealth(ctx)

	c.mu.Lock()
	c.state.APIHealthy = healthy
	c.state.IsLoading = false
	c.mu.Unlock()
}

// SetAgentConfig edits the agent tuning locally; SaveConfig sends it
func (c *SettingsController) SetAgentConfig(threshold int, temperature float64, maxTokens int) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: qualification threshold %d outside 0-100", ErrInvalidConfig, threshold)
	}
	if temperature < 0 || temperature > 1 {
		return fmt.Errorf("%w: temperature %.2f outside 0-1", ErrInvalidConfig, temperature)
	}
	if maxTokens < MinMaxTokens || maxTokens > MaxMaxTokens {
		return fmt.Errorf("%w: max tokens %d outside %d-%d", ErrInvalidConfig, maxTokens, MinMaxTokens, MaxMaxTokens)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.QualificationThreshold = threshold
	c.state.ModelTemperature = temperature
	c.state.MaxTokens = maxTokens
	return nil
}

// SetAlertPreferences updates the local notification preferences
func (c *SettingsController) SetAlertPreferences(escalationAlerts, highScoreAlerts bool, threshold int) error {
	if threshold < 0 || threshold > 100 {
		return fmt.Errorf("%w: alert threshold %d outside 0-100", ErrInvalidConfig, threshold)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.EscalationAlerts = escalationAlerts
	c.state.HighScoreAlerts = highScoreAlerts
	c.state.AlertThreshold = threshold
	return nil
}

// EscalationAlertsEnabled reports whether escalation alerts should fire
func (c *SettingsController) EscalationAlertsEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.EscalationAlerts
}

// HighScoreAlertThreshold returns the alert threshold on the 0-1 score
// scale and whether high-score alerts are on
func (c *SettingsController) HighScoreAlertThreshold() (float64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.state.AlertThreshold) / 100, c.state.HighScoreAlerts
}

// SaveConfig writes the agent tuning. Success raises a one-shot
// confirmation, failure raises the error banner.
func (c *SettingsController) SaveConfig(ctx context.Context) error {
	c.mu.Lock()
	threshold, temperature, maxTokens := c.state.QualificationThreshold, c.state.ModelTemperature, c.state.MaxTokens
	c.mu.Unlock()

	err := c.api.UpdateDealershipConfig(ctx, threshold, temperature, maxTokens)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.logger.Warn().Err(err).Msg("Failed to save config")
		c.state.ShowError = true
		c.state.ErrorMessage = err.Error()
		return err
	}
	c.state.ShowSaveSuccess = true
	return nil
}

// ConsumeSaveSuccess reports and clears the save confirmation
func (c *SettingsController) ConsumeSaveSuccess() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	shown := c.state.ShowSaveSuccess
	c.state.ShowSaveSuccess = false
	return shown
}

// DismissError hides the error banner
func (c *SettingsController) DismissError() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.ShowError = false
	c.state.ErrorMessage = ""
}

// Snapshot returns the current settings state
func (c *SettingsController) Snapshot() SettingsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func orPlaceholder(s *string) string {
	if s == nil || *s == "" {
		return Placeholder
	}
	return *s
}
