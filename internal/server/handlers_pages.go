package server

import (
	"bytes"
	"html/template"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tbraun92/gamehub/internal/netinfo"
	"github.com/tbraun92/gamehub/internal/qr"
)

// deviceCookieName carries the stable per-browser session key. One browser
// stays one device across reconnects and page reloads.
const deviceCookieName = "gamehub_device"

// renderTemplate renders to a buffer first so a failed execution never sends
// partial HTML.
func renderTemplate(c echo.Context, tmpl *template.Template, data any) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		slog.Error("Template execution failed", "path", c.Request().URL.Path, "error", err)
		return c.String(500, "Failed to render page")
	}
	return c.HTMLBlob(200, buf.Bytes())
}

// joinURL is the address phones open after joining the hotspot.
func (s *Server) joinURL() string {
	if s.config.PublicURL != "" {
		return strings.TrimSuffix(s.config.PublicURL, "/")
	}
	return "http://" + netinfo.LocalIP() + ":" + s.config.Port
}

func (s *Server) handleDisplayPage(c echo.Context) error {
	ctx := c.Request().Context()

	item, err := s.contents.GetActive(ctx)
	if err != nil {
		return jsonError(c, err)
	}

	snapshot, err := s.stats.Snapshot(ctx)
	if err != nil {
		return jsonError(c, err)
	}

	hotspot := netinfo.DiscoverHotspot(s.config.HotspotSSID, s.config.HotspotPassword)
	mobileURL := s.joinURL() + "/mobile"

	wifiQR, err := qr.DataURI(qr.WifiPayload(hotspot.SSID, hotspot.Password), qr.DefaultSize)
	if err != nil {
		slog.Warn("Failed to render wifi qr code", "error", err)
	}
	pageQR, err := qr.DataURI(mobileURL, qr.DefaultSize)
	if err != nil {
		slog.Warn("Failed to render page qr code", "error", err)
	}

	data := map[string]any{
		"HotspotSSID":     hotspot.SSID,
		"HotspotPassword": hotspot.Password,
		"MobileURL":       mobileURL,
		"WifiQR":          template.URL(wifiQR),
		"PageQR":          template.URL(pageQR),
		"Stats":           snapshot,
	}
	if item != nil {
		data["Content"] = item.Projection()
	}

	return renderTemplate(c, s.displayTemplate, data)
}

func (s *Server) handleMobilePage(c echo.Context) error {
	sessionKey := s.deviceSessionKey(c)

	if err := s.presence.RecordContact(c.Request().Context(), sessionKey, c.RealIP(), c.Request().UserAgent()); err != nil {
		slog.Warn("Failed to record device contact", "session_key", sessionKey, "error", err)
	}

	item, err := s.contents.GetActive(c.Request().Context())
	if err != nil {
		return jsonError(c, err)
	}

	data := map[string]any{
		"SessionKey": sessionKey,
	}
	if item != nil {
		data["Content"] = item.Projection()
	}

	return renderTemplate(c, s.mobileTemplate, data)
}

func (s *Server) handleAdminPage(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := s.contents.List(ctx)
	if err != nil {
		return jsonError(c, err)
	}

	snapshot, err := s.stats.Snapshot(ctx)
	if err != nil {
		return jsonError(c, err)
	}

	data := map[string]any{
		"Items": items,
		"Stats": snapshot,
	}

	return renderTemplate(c, s.adminTemplate, data)
}

// deviceSessionKey reads the device cookie, minting and setting a fresh key
// when the browser has none yet.
func (s *Server) deviceSessionKey(c echo.Context) string {
	if cookie, err := c.Cookie(deviceCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	key := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     deviceCookieName,
		Value:    key,
		Path:     "/",
		MaxAge:   86400 * 30,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	})
	return key
}
