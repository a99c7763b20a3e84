package server

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tbraun92/gamehub/internal/domain"
	apperrors "github.com/tbraun92/gamehub/internal/errors"
)

// createContentRequest mirrors the wire field names of the content
// projection so admin tooling can round-trip items.
type createContentRequest struct {
	Title           string `json:"title"`
	ContentType     string `json:"content_type"`
	TextContent     string `json:"text_content"`
	ImageURL        string `json:"image_url"`
	BackgroundColor string `json:"background_color"`
	TextColor       string `json:"text_color"`
	FontSize        int    `json:"font_size"`
}

type sessionResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	StartedAt           time.Time  `json:"started_at"`
	EndedAt             *time.Time `json:"ended_at"`
	Active              bool       `json:"active"`
	MaxConnectedDevices int        `json:"max_connected_devices"`
	ScanCount           int        `json:"scan_count"`
}

func toSessionResponse(session *domain.Session) sessionResponse {
	return sessionResponse{
		ID:                  session.ID.String(),
		Name:                session.Name,
		StartedAt:           session.StartedAt,
		EndedAt:             session.EndedAt,
		Active:              session.Active,
		MaxConnectedDevices: session.MaxConnectedDevices,
		ScanCount:           session.ScanCount,
	}
}

// jsonError classifies err and writes the matching status and body.
func jsonError(c echo.Context, err error) error {
	structured := apperrors.Classify(err)
	if structured.Type == apperrors.TypeInternal {
		slog.Error("Request failed", "path", c.Request().URL.Path, "error", err)
	}
	return c.JSON(structured.HTTPStatus(), structured.ToResponse())
}

func (s *Server) handleCreateContent(c echo.Context) error {
	var req createContentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apperrors.ErrorResponse{Error: "invalid request body", Type: apperrors.TypeValidation})
	}

	params := domain.CreateContentParams{
		Title:           req.Title,
		Kind:            domain.ContentKind(req.ContentType),
		Body:            req.TextContent,
		MediaRef:        req.ImageURL,
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
		FontSize:        req.FontSize,
	}

	item, err := s.contents.Create(c.Request().Context(), params)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(201, item.Projection())
}

func (s *Server) handleListContent(c echo.Context) error {
	items, err := s.contents.List(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}

	projections := make([]*domain.ContentProjection, 0, len(items))
	for i := range items {
		projections = append(projections, items[i].Projection())
	}
	return c.JSON(200, map[string]any{"content": projections})
}

func (s *Server) handleActiveContent(c echo.Context) error {
	item, err := s.contents.GetActive(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}

	var projection *domain.ContentProjection
	if item != nil {
		projection = item.Projection()
	}
	return c.JSON(200, map[string]any{"content": projection})
}

func (s *Server) handleActivateContent(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(400, apperrors.ErrorResponse{Error: "invalid content id", Type: apperrors.TypeValidation})
	}

	item, err := s.contents.Activate(c.Request().Context(), id)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(200, item.Projection())
}

func (s *Server) handleStats(c echo.Context) error {
	snapshot, err := s.stats.Snapshot(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}
	return c.JSON(200, snapshot)
}

func (s *Server) handleStartSession(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(400, apperrors.ErrorResponse{Error: "invalid request body", Type: apperrors.TypeValidation})
	}

	session, err := s.stats.StartSession(c.Request().Context(), req.Name)
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(201, toSessionResponse(session))
}

func (s *Server) handleEndSession(c echo.Context) error {
	session, err := s.stats.EndSession(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}

	return c.JSON(200, toSessionResponse(session))
}
