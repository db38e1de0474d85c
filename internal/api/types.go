package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/gmsas95/finbot/internal/agent"
	"github.com/gmsas95/finbot/internal/config"
	"github.com/gmsas95/finbot/internal/metrics"
	"github.com/gmsas95/finbot/internal/store"
)

const version = "0.1.0"

// Server exposes the agent over HTTP
type Server struct {
	app     *fiber.App
	config  *config.Config
	store   *store.Store
	agent   *agent.Agent
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// New creates the HTTP server. st may be nil, in which case /api/health
// does not probe storage.
func New(cfg *config.Config, st *store.Store, a *agent.Agent, m *metrics.Metrics, logger *zap.Logger) *Server {
	readTimeout := time.Duration(cfg.Server.ReadTimeout) * time.Second
	if readTimeout <= 0 {
		readTimeout = 30 * time.Second
	}
	writeTimeout := time.Duration(cfg.Server.WriteTimeout) * time.Second
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:           readTimeout,
		WriteTimeout:          writeTimeout,
		IdleTimeout:           120 * time.Second,
		DisableStartupMessage: true,
	})

	if m == nil {
		m = metrics.Default()
	}

	s := &Server{
		app:     app,
		config:  cfg,
		store:   st,
		agent:   a,
		metrics: m,
		logger:  logger,
	}

	s.setupRoutes()
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

type messageRequest struct {
	UserID   string `json:"user_id"`
	Text     string `json:"text"`
	Category string `json:"category,omitempty"`
}

type messageResponse struct {
	Reply     string `json:"reply"`
	Matched   bool   `json:"matched"`
	Handler   string `json:"handler,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
