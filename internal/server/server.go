package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"shiftly/internal/auth"
	"shiftly/internal/config"
	"shiftly/internal/handlers"
	"shiftly/internal/metrics"
	"shiftly/internal/state"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Server represents the application server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	console *state.Console
	backend handlers.HealthChecker
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// New creates a new server instance
func New(cfg *config.Config, console *state.Console, backend handlers.HealthChecker, m *metrics.Metrics, logger zerolog.Logger) *Server {
	return &Server{
		config:  cfg,
		console: console,
		backend: backend,
		metrics: m,
		logger:  logger,
	}
}

// zerologMiddleware creates a zerolog-based logging middleware for Echo
func (s *Server) zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			req := c.Request()
			res := c.Response()

			event := s.logger.Info()
			if res.Status >= http.StatusInternalServerError {
				event = s.logger.Warn()
			}
			event.
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Str("remote_ip", c.RealIP()).
				Int("status", res.Status).
				Int64("latency_ms", time.Since(start).Milliseconds()).
				Str("user_agent", req.UserAgent()).
				Msg("HTTP request")

			return err
		}
	}
}

// Initialize sets up the Echo framework with middleware and routes
func (s *Server) Initialize() {
	s.echo = echo.New()

	// Middleware
	s.echo.Use(s.zerologMiddleware())
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())

	// Hide Echo banner
	s.echo.HideBanner = true
	s.echo.HidePort = true

	// Setup routes
	s.setupRoutes()
}

// setupRoutes configures all the application routes
func (s *Server) setupRoutes() {
	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// Health and metrics stay at root level for monitoring
	s.echo.GET("/healthz", handlers.HealthHandler(s.config.Version, s.backend))
	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := s.echo.Group("/api", auth.Middleware(s.config.ConsoleAPIKey))
	api.GET("/", handlers.RootHandler(s.config.Version))

	api.GET("/dashboard", handlers.DashboardHandler(s.console.Dashboard))
	api.POST("/dashboard/retry", handlers.DashboardRetryHandler(s.console.Dashboard))

	api.GET("/conversations", handlers.ConversationsHandler(s.console.Conversations))
	api.GET("/conversations/:phone", handlers.ConversationHandler(s.console))
	api.PUT("/conversations/:phone/watch", handlers.WatchConversationHandler(s.console))
	api.DELETE("/conversations/:phone/watch", handlers.UnwatchConversationHandler(s.console))
	api.POST("/conversations/:phone/messages", handlers.SendMessageHandler(s.console))
	api.POST("/conversations/:phone/escalate", handlers.EscalateConversationHandler(s.console))
	api.POST("/conversations/:phone/complete", handlers.CompleteConversationHandler(s.console))

	api.GET("/escalations", handlers.EscalationsHandler(s.console.Escalations))
	api.POST("/escalations/:id/claim", handlers.ClaimEscalationHandler(s.console.Escalations))
	api.POST("/escalations/:id/resolve", handlers.ResolveEscalationHandler(s.console.Escalations))

	api.GET("/leads", handlers.LeadsHandler(s.console.Leads))

	api.GET("/settings", handlers.SettingsHandler(s.console.Settings))
	api.PUT("/settings", handlers.UpdateSettingsHandler(s.console.Settings))
	api.POST("/settings/reload", handlers.ReloadSettingsHandler(s.console.Settings))
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start starts the HTTP server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Info().Str("port", s.config.Port).Msg("Server starting")
	if err := s.echo.Start(":" + s.config.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("Server shutting down")
	return s.echo.Shutdown(ctx)
}
