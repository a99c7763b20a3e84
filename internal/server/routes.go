package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability endpoints
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Pages
	s.echo.GET("/", s.handleDisplayPage)
	s.echo.GET("/mobile", s.handleMobilePage)
	s.echo.GET("/admin", s.handleAdminPage)

	// Content API
	s.echo.POST("/api/content", s.handleCreateContent)
	s.echo.GET("/api/content", s.handleListContent)
	s.echo.GET("/api/content/active", s.handleActiveContent)
	s.echo.POST("/api/content/:id/activate", s.handleActivateContent)

	// Stats and session API
	s.echo.GET("/api/stats", s.handleStats)
	s.echo.POST("/api/session", s.handleStartSession)
	s.echo.POST("/api/session/end", s.handleEndSession)

	// Websocket channels
	s.echo.GET("/ws/content", s.handleContentSocket)
	s.echo.GET("/ws/stats", s.handleStatsSocket)
}
