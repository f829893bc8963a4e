// Package apiclient talks to the AI sales-agent backend. One Client is
// built at startup and shared by every screen controller; its
// configuration never changes after construction.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"shiftly/internal/metrics"
	"shiftly/internal/models"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single backend request
const DefaultTimeout = 30 * time.Second

// Options configures a Client
type Options struct {
	BaseURL      string
	APIKey       string
	DealershipID string
	Timeout      time.Duration // defaults to DefaultTimeout
	HTTPClient   *http.Client  // defaults to a client with Timeout
	Logger       zerolog.Logger
	Metrics      *metrics.Metrics
}

// Client performs authenticated calls against the backend API
type Client struct {
	baseURL      string
	apiKey       string
	dealershipID string
	http         *http.Client
	logger       zerolog.Logger
	metrics      *metrics.Metrics
}

// New creates a new backend client
func New(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("apiclient: invalid base url %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:      base,
		apiKey:       opts.APIKey,
		dealershipID: opts.DealershipID,
		http:         httpClient,
		logger:       opts.Logger.With().Str("component", "apiclient").Logger(),
		metrics:      opts.Metrics,
	}, nil
}

// FetchDashboardMetrics loads the dashboard aggregates and conversation list
func (c *Client) FetchDashboardMetrics(ctx context.Context) (*models.DashboardMetrics, error) {
	var out models.DashboardMetrics
	if err := c.do(ctx, "dashboard", http.MethodGet, "/admin/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchConversation loads the full transcript for a phone number
func (c *Client) FetchConversation(ctx context.Context, phone string) (*models.Conversation, error) {
	var out models.Conversation
	path := "/agent/conversation/" + url.PathEscape(phone)
	if err := c.do(ctx, "conversation", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchEscalations loads escalations together with their aggregate stats
func (c *Client) FetchEscalations(ctx context.Context) (*models.EscalationResponse, error) {
	var out models.EscalationResponse
	if err := c.do(ctx, "escalations", http.MethodGet, "/admin/escalations", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClaimEscalation assigns an escalation to the calling manager
func (c *Client) ClaimEscalation(ctx context.Context, id string) error {
	path := "/admin/escalations/" + url.PathEscape(id) + "/claim"
	return c.do(ctx, "claim_escalation", http.MethodPost, path, nil, nil)
}

// ResolveEscalation closes an escalation
func (c *Client) ResolveEscalation(ctx context.Context, id string) error {
	path := "/admin/escalations/" + url.PathEscape(id) + "/resolve"
	return c.do(ctx, "resolve_escalation", http.MethodPost, path, nil, nil)
}

// SendManagerMessage posts a manager reply that bypasses the AI agent
func (c *Client) SendManagerMessage(ctx context.Context, conversationID, text string) error {
	body := models.NewManagerMessageRequest(conversationID, text)
	return c.do(ctx, "send_manager_message", http.MethodPost, "/agent/handle-message", body, nil)
}

// EscalateConversation flags a conversation for human takeover at high priority
func (c *Client) EscalateConversation(ctx context.Context, conversationID, reason string) error {
	body := models.NewEscalateRequest(conversationID, reason)
	return c.do(ctx, "escalate_conversation", http.MethodPost, "/agent/escalate", body, nil)
}

// UpdateConversationStatus sets a conversation's status, e.g. "completed"
func (c *Client) UpdateConversationStatus(ctx context.Context, conversationID, status string) error {
	path := "/admin/conversations/" + url.PathEscape(conversationID) + "/status"
	return c.do(ctx, "update_conversation_status", http.MethodPut, path, models.StatusUpdateRequest{Status: status}, nil)
}

// FetchDealershipConfig loads the dealership and agent configuration
func (c *Client) FetchDealershipConfig(ctx context.Context) (*models.DealershipConfig, error) {
	var out models.DealershipConfig
	if err := c.do(ctx, "get_config", http.MethodGet, "/admin/config", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateDealershipConfig writes the agent tuning values
func (c *Client) UpdateDealershipConfig(ctx context.Context, threshold int, temperature float64, maxTokens int) error {
	body := models.ConfigUpdateRequest{
		QualificationThreshold: threshold,
		ModelTemperature:       temperature,
		MaxTokens:              maxTokens,
	}
	return c.do(ctx, "update_config", http.MethodPut, "/admin/config", body, nil)
}

// CheckHealth reports whether the backend answers /health with a 2xx.
// It never fails; any error reads as unhealthy.
func (c *Client) CheckHealth(ctx context.Context) bool {
	return c.do(ctx, "health", http.MethodGet, "/health", nil, nil) == nil
}

// newRequest builds an authenticated request for path
func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	query := u.Query()
	query.Set("dealership_id", c.dealershipID)
	u.RawQuery = query.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	req.Header.Set("X-API-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil || method != http.MethodGet {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do executes one call. out may be nil when the response body is ignored.
func (c *Client) do(ctx context.Context, operation, method, path string, body, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveAPIRequest(operation, 0, time.Since(start))
		c.logger.Warn().Err(err).Str("operation", operation).Msg("Backend request failed")
		return &TransportError{Err: err}
	}
	if resp == nil {
		return ErrNoResponse
	}
	defer resp.Body.Close()

	c.metrics.ObserveAPIRequest(operation, resp.StatusCode, time.Since(start))
	c.logger.Debug().
		Str("operation", operation).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Int64("latency_ms", time.Since(start).Milliseconds()).
		Msg("Backend request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &HTTPError{Code: resp.StatusCode}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &DecodeError{Err: err}
	}
	return nil
}
