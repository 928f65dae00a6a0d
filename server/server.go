// Package server exposes the concierge over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/tanpawarit/motel-concierge/agent/agents/orchestrator"
	contractx "github.com/tanpawarit/motel-concierge/agent/contract"
	metricsx "github.com/tanpawarit/motel-concierge/pkg/metrics"
)

// HealthCheck reports whether a dependency can serve requests.
type HealthCheck func(ctx context.Context) error

type Deps struct {
	Agent       contractx.Agent
	Metrics     *metricsx.Metrics
	MetricsPath string
	Checks      map[string]HealthCheck
}

type askRequest struct {
	SessionID string         `json:"session_id" binding:"required"`
	Message   string         `json:"message" binding:"required"`
	User      map[string]any `json:"user"`
}

type askResponse struct {
	Text     string  `json:"text"`
	VideoURL *string `json:"video_url"`
}

type handler struct {
	agent  contractx.Agent
	checks map[string]HealthCheck
}

func NewRouter(cfg Config, deps Deps) *gin.Engine {
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(requestLogger(deps.Metrics), recovery(), newCORS(cfg.CORSOrigins))

	h := &handler{agent: deps.Agent, checks: deps.Checks}
	r.GET("/", h.root)
	r.GET("/healthz", h.health)
	r.POST("/ask_agent", h.ask)

	if deps.Metrics != nil {
		path := deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}
	return r
}

func (h *handler) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Motel concierge is live!"})
}

func (h *handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	failed := gin.H{}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			failed[name] = err.Error()
		}
	}
	if len(failed) > 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "failed": failed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id and message are required"})
		return
	}

	ctx := c.Request.Context()
	zerolog.Ctx(ctx).Debug().Str("session_id", req.SessionID).Msg("ask_agent")

	resp, err := h.agent.Ask(ctx, contractx.ChatRequest{
		SessionID: req.SessionID,
		Message:   req.Message,
		User:      req.User,
	})
	if err != nil {
		_ = c.Error(err)
		if orchestrator.IsInvalidRequest(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if errors.Is(err, context.Canceled) {
			c.Status(499)
			return
		}
		c.JSON(http.StatusOK, askResponse{Text: "Something went wrong: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, askResponse{Text: resp.Text, VideoURL: resp.VideoURL})
}

// Server wraps the router in an http.Server with the configured timeouts.
type Server struct {
	srv             *http.Server
	shutdownTimeout time.Duration
}

func New(cfg Config, deps Deps) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(cfg, deps),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
	}
}

func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

// Start serves in the background. Errors other than a clean shutdown are logged.
func (s *Server) Start(ctx context.Context) {
	logger := zerolog.Ctx(ctx)
	go func() {
		logger.Info().Str("addr", s.srv.Addr).Msg("http server listening")
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()
}

func (s *Server) Stop(ctx context.Context) error {
	if s.shutdownTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.shutdownTimeout)
		defer cancel()
	}
	return s.srv.Shutdown(ctx)
}
