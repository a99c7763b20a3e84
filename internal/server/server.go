// Package server is the HTTP and websocket surface: the display, mobile and
// admin pages, the JSON API, the two websocket channels, and the
// observability endpoints.
package server

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tbraun92/gamehub/internal/config"
	"github.com/tbraun92/gamehub/internal/domain"
	"github.com/tbraun92/gamehub/internal/hub"
)

//go:embed templates/*.html
var templateFS embed.FS

// contentService is the slice of the content registry the server uses.
type contentService interface {
	Create(ctx context.Context, params domain.CreateContentParams) (*domain.ContentItem, error)
	Activate(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error)
	GetActive(ctx context.Context) (*domain.ContentItem, error)
	List(ctx context.Context) ([]domain.ContentItem, error)
}

// presenceService is the slice of the presence tracker the server uses.
type presenceService interface {
	RecordContact(ctx context.Context, sessionKey, address, userAgent string) error
	Heartbeat(ctx context.Context, sessionKey string) error
	MarkDisconnected(ctx context.Context, sessionKey string)
	CountActive() int
}

// statsService is the slice of the stats aggregator the server uses.
type statsService interface {
	Snapshot(ctx context.Context) (domain.StatsSnapshot, error)
	StartSession(ctx context.Context, name string) (*domain.Session, error)
	EndSession(ctx context.Context) (*domain.Session, error)
}

// storePinger reports storage health for the readiness endpoint.
type storePinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	echo      *echo.Echo
	config    *config.Config
	contents  contentService
	presence  presenceService
	stats     statsService
	hub       *hub.Hub
	store     storePinger
	clock     clockwork.Clock
	startTime time.Time

	displayTemplate *template.Template
	mobileTemplate  *template.Template
	adminTemplate   *template.Template
}

func NewServer(cfg *config.Config, contents contentService, presence presenceService, stats statsService, h *hub.Hub, store storePinger, clock clockwork.Clock) (*Server, error) {
	// Parse templates once at startup
	displayTmpl, err := template.ParseFS(templateFS, "templates/display.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse display template: %w", err)
	}
	mobileTmpl, err := template.ParseFS(templateFS, "templates/mobile.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse mobile template: %w", err)
	}
	adminTmpl, err := template.ParseFS(templateFS, "templates/admin.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse admin template: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:            e,
		config:          cfg,
		contents:        contents,
		presence:        presence,
		stats:           stats,
		hub:             h,
		store:           store,
		clock:           clock,
		startTime:       clock.Now(),
		displayTemplate: displayTmpl,
		mobileTemplate:  mobileTmpl,
		adminTemplate:   adminTmpl,
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
