package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Port          string
	Version       string
	LogLevel      string
	ConsoleAPIKey string // Key required on /api routes; empty disables the check

	APIBaseURL     string // Backend API root, paths are appended to it
	APIKey         string // Static key sent as X-API-Key
	DealershipID   string // Tenant id sent as dealership_id query parameter
	RequestTimeout int    // Backend request timeout in seconds

	EscalationPollSchedule   string // cron spec for the escalations poll
	ConversationPollSchedule string // cron spec for the conversation detail poll

	AlertEmailEnabled bool   // Whether escalation alerts are also emailed
	SendGridAPIKey    string // SendGrid API key for escalation alert emails
	AlertEmail        string // Manager address that receives escalation alerts
	AlertDedupeHours  int    // How long a pending escalation stays alerted
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:                     getEnv("PORT", "8080"),
		Version:                  getEnv("VERSION", "1.0.0"),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		ConsoleAPIKey:            os.Getenv("CONSOLE_API_KEY"),
		APIBaseURL:               getEnv("SHIFTLY_API_BASE_URL", "https://ai-agent-backend.onrender.com/api"),
		APIKey:                   getEnv("SHIFTLY_API_KEY", "dev-key-12345"),
		DealershipID:             getEnv("SHIFTLY_DEALERSHIP_ID", "00000000-0000-0000-0000-000000000001"),
		RequestTimeout:           getEnvInt("SHIFTLY_REQUEST_TIMEOUT", 30),
		EscalationPollSchedule:   getEnv("ESCALATION_POLL_SCHEDULE", "@every 30s"),
		ConversationPollSchedule: getEnv("CONVERSATION_POLL_SCHEDULE", "@every 5s"),
		AlertEmailEnabled:        getEnvBool("ALERT_EMAIL_ENABLED", false),
		SendGridAPIKey:           os.Getenv("SENDGRID_API_KEY"),
		AlertEmail:               os.Getenv("ALERT_EMAIL"),
		AlertDedupeHours:         getEnvInt("ALERT_DEDUPE_HOURS", 24),
	}

	return config
}

// RequestTimeoutDuration returns the backend request timeout
func (c *Config) RequestTimeoutDuration() time.Duration {
	if c.RequestTimeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.RequestTimeout) * time.Second
}

// AlertDedupeWindow returns how long an escalation alert is remembered
func (c *Config) AlertDedupeWindow() time.Duration {
	if c.AlertDedupeHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.AlertDedupeHours) * time.Hour
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as boolean with a default fallback
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "shiftly").
		Str("version", c.Version).
		Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger = logger.Level(level)

	return logger
}
