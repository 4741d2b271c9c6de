package api

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/papercomputeco/reportkit/pkg/email"
	"github.com/papercomputeco/reportkit/pkg/storage"
)

// Server is the relay and API server.
type Server struct {
	config Config
	sender email.Sender
	repo   storage.Repository
	logger *slog.Logger
	app    *fiber.App
}

// NewServer creates a new API server.
// The repository is injected so the server can share it with the CLI
// process that started it. A nil sender makes every send-report call fail
// with a 500.
func NewServer(config Config, sender email.Sender, repo storage.Repository, logger *slog.Logger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	if config.AllowOrigins == "" {
		config.AllowOrigins = "*"
	}

	s := &Server{
		config: config,
		sender: sender,
		repo:   repo,
		logger: logger,
		app:    app,
	}

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{AllowOrigins: config.AllowOrigins}))

	app.Get("/ping", s.handlePing)
	app.Post("/api/send-report", s.handleSendReport)
	app.Get("/api/metrics", s.handleListMetrics)
	app.Get("/api/reports", s.handleListReports)
	app.Get("/api/reports/:id", s.handleGetReport)
	app.Get("/api/reports/:id/chart", s.handleReportChart)

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting relay server",
		"listen", s.config.ListenAddr,
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
