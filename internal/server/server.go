// Package server exposes the report assistant over HTTP.
package server

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"rapport/internal/config"
	"rapport/internal/domain"
	"rapport/internal/session"
)

// Server wires the HTTP API around the analysis service. Reports are
// registered once per session and questions reference the session ID, so
// the report text travels over the wire a single time.
type Server struct {
	app      *fiber.App
	cfg      config.ServerConfig
	svc      AssistantPort
	resolver SourceResolver
	sessions *session.Store
	validate *validator.Validate
	log      *zap.Logger
}

// New builds the fiber app with its middleware and routes.
func New(cfg config.ServerConfig, svc AssistantPort, resolver SourceResolver, sessions *session.Store, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	app := fiber.New(fiber.Config{
		BodyLimit: 10 * 1024 * 1024, // reports can be large
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	s := &Server{
		app:      app,
		cfg:      cfg,
		svc:      svc,
		resolver: resolver,
		sessions: sessions,
		validate: validator.New(),
		log:      log,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")
	api.Post("/sessions", s.handleCreateSession)
	api.Post("/analyze", s.handleAnalyze)
	api.Post("/ask", s.handleAsk)
	api.Delete("/sessions/:id", s.handleEndSession)
}

// App exposes the underlying fiber app, mainly for tests.
func (s *Server) App() *fiber.App { return s.app }

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown() error { return s.app.Shutdown() }

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrNoText),
		errors.Is(err, domain.ErrUnsupportedType), errors.Is(err, domain.ErrEmptyContext):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrProvider):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
