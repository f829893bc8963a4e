package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the console's Prometheus instruments. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	Refreshes          *prometheus.CounterVec
	RefreshDuration    *prometheus.HistogramVec
	PollTicks          *prometheus.CounterVec
	ActiveEscalations  prometheus.Gauge
	AlertsSent         *prometheus.CounterVec
}

// NewMetrics registers all instruments on a fresh registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		APIRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftly_api_requests_total",
			Help: "Backend API requests by operation and HTTP status (0 for transport failures)",
		}, []string{"operation", "code"}),
		APIRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shiftly_api_request_duration_seconds",
			Help:    "Time taken by backend API requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		Refreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftly_refreshes_total",
			Help: "Controller refreshes by controller and outcome",
		}, []string{"controller", "outcome"}),
		RefreshDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shiftly_refresh_duration_seconds",
			Help:    "Time taken by controller refreshes",
			Buckets: prometheus.DefBuckets,
		}, []string{"controller"}),
		PollTicks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftly_poll_ticks_total",
			Help: "Poller wake-ups by poller name",
		}, []string{"poller"}),
		ActiveEscalations: factory.NewGauge(prometheus.GaugeOpts{
			Name: "shiftly_active_escalations",
			Help: "Escalations not yet resolved as of the last successful fetch",
		}),
		AlertsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shiftly_alerts_sent_total",
			Help: "Escalation alerts by channel and outcome",
		}, []string{"channel", "outcome"}),
	}
}

// ObserveAPIRequest records one backend call
func (m *Metrics) ObserveAPIRequest(operation string, code int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.APIRequests.WithLabelValues(operation, strconv.Itoa(code)).Inc()
	m.APIRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveRefresh records one controller refresh
func (m *Metrics) ObserveRefresh(controller string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Refreshes.WithLabelValues(controller, outcome(err)).Inc()
	m.RefreshDuration.WithLabelValues(controller).Observe(elapsed.Seconds())
}

// ObservePollTick records one poller wake-up
func (m *Metrics) ObservePollTick(poller string) {
	if m == nil {
		return
	}
	m.PollTicks.WithLabelValues(poller).Inc()
}

// SetActiveEscalations publishes the current active escalation count
func (m *Metrics) SetActiveEscalations(count int) {
	if m == nil {
		return
	}
	m.ActiveEscalations.Set(float64(count))
}

// ObserveAlert records one alert delivery attempt
func (m *Metrics) ObserveAlert(channel string, err error) {
	if m == nil {
		return
	}
	m.AlertsSent.WithLabelValues(channel, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
