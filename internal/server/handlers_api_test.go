package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tbraun92/gamehub/internal/domain"
)

func testContentItem(active bool) *domain.ContentItem {
	return &domain.ContentItem{
		ID:              uuid.New(),
		Title:           "Welcome",
		Kind:            domain.ContentText,
		Body:            "Hello everyone",
		BackgroundColor: "#ffffff",
		TextColor:       "#000000",
		FontSize:        24,
		Active:          active,
	}
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func TestHandleCreateContent(t *testing.T) {
	var gotParams domain.CreateContentParams
	contents := &mockContentService{
		createFn: func(_ context.Context, params domain.CreateContentParams) (*domain.ContentItem, error) {
			gotParams = params
			item := testContentItem(false)
			item.Title = params.Title
			return item, nil
		},
	}
	srv := newTestServer(t, withContents(contents))

	body := `{"title":"Game Rules","content_type":"text","text_content":"Be kind","font_size":24}`
	rec := doRequest(srv, http.MethodPost, "/api/content", body)

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "Game Rules", gotParams.Title)
	assert.Equal(t, domain.ContentText, gotParams.Kind)

	var projection domain.ContentProjection
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &projection))
	assert.Equal(t, "Game Rules", projection.Title)
}

func TestHandleCreateContent_ValidationError(t *testing.T) {
	contents := &mockContentService{
		createFn: func(_ context.Context, params domain.CreateContentParams) (*domain.ContentItem, error) {
			return nil, params.Validate()
		},
	}
	srv := newTestServer(t, withContents(contents))

	rec := doRequest(srv, http.MethodPost, "/api/content", `{"title":"","content_type":"text","font_size":24}`)

	assert.Equal(t, 400, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation")
}

func TestHandleActivateContent(t *testing.T) {
	item := testContentItem(true)
	var activatedID uuid.UUID
	contents := &mockContentService{
		activateFn: func(_ context.Context, id uuid.UUID) (*domain.ContentItem, error) {
			activatedID = id
			return item, nil
		},
	}
	srv := newTestServer(t, withContents(contents))

	rec := doRequest(srv, http.MethodPost, "/api/content/"+item.ID.String()+"/activate", "")

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, item.ID, activatedID)
}

func TestHandleActivateContent_BadID(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/content/not-a-uuid/activate", "")

	assert.Equal(t, 400, rec.Code)
}

func TestHandleActivateContent_NotFound(t *testing.T) {
	contents := &mockContentService{
		activateFn: func(_ context.Context, _ uuid.UUID) (*domain.ContentItem, error) {
			return nil, domain.ErrContentNotFound
		},
	}
	srv := newTestServer(t, withContents(contents))

	rec := doRequest(srv, http.MethodPost, "/api/content/"+uuid.NewString()+"/activate", "")

	assert.Equal(t, 404, rec.Code)
}

func TestHandleActiveContent_NoneActive(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodGet, "/api/content/active", "")

	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"content":null}`, rec.Body.String())
}

func TestHandleListContent(t *testing.T) {
	contents := &mockContentService{
		listFn: func(_ context.Context) ([]domain.ContentItem, error) {
			return []domain.ContentItem{*testContentItem(true), *testContentItem(false)}, nil
		},
	}
	srv := newTestServer(t, withContents(contents))

	rec := doRequest(srv, http.MethodGet, "/api/content", "")

	assert.Equal(t, 200, rec.Code)

	var body struct {
		Content []domain.ContentProjection `json:"content"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Content, 2)
}

func TestHandleStats(t *testing.T) {
	stats := &mockStatsService{
		snapshotFn: func(_ context.Context) (domain.StatsSnapshot, error) {
			return domain.StatsSnapshot{ConnectedDevices: 3, QRScans: 7, SessionName: "Friday Games"}, nil
		},
	}
	srv := newTestServer(t, withStats(stats))

	rec := doRequest(srv, http.MethodGet, "/api/stats", "")

	assert.Equal(t, 200, rec.Code)
	assert.JSONEq(t, `{"connected_devices":3,"qr_scans":7,"session_name":"Friday Games"}`, rec.Body.String())
}

func TestHandleStartSession(t *testing.T) {
	srv := newTestServer(t, withStats(&mockStatsService{
		startSessionFn: func(_ context.Context, name string) (*domain.Session, error) {
			return &domain.Session{ID: uuid.New(), Name: name, StartedAt: time.Now(), Active: true}, nil
		},
	}))

	rec := doRequest(srv, http.MethodPost, "/api/session", `{"name":"Friday Games"}`)

	assert.Equal(t, 201, rec.Code)

	var session sessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))
	assert.Equal(t, "Friday Games", session.Name)
	assert.True(t, session.Active)
}

func TestHandleEndSession_NoneActive(t *testing.T) {
	srv := newTestServer(t)

	rec := doRequest(srv, http.MethodPost, "/api/session/end", "")

	assert.Equal(t, 404, rec.Code)
}

func TestHandleMobilePage_RecordsContactAndSetsCookie(t *testing.T) {
	presence := &mockPresenceService{}
	srv := newTestServer(t, withPresence(presence))

	rec := doRequest(srv, http.MethodGet, "/mobile", "")

	assert.Equal(t, 200, rec.Code)
	assert.Equal(t, 1, presence.contactCount())

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, deviceCookieName, cookies[0].Name)
	assert.NotEmpty(t, cookies[0].Value)
}

func TestHandleMobilePage_ReusesCookie(t *testing.T) {
	presence := &mockPresenceService{}
	srv := newTestServer(t, withPresence(presence))

	req := httptest.NewRequest(http.MethodGet, "/mobile", nil)
	req.AddCookie(&http.Cookie{Name: deviceCookieName, Value: "existing-key"})
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)

	assert.Equal(t, 200, rec.Code)
	require.Equal(t, 1, presence.contactCount())
	assert.Equal(t, "existing-key", presence.contacts[0])
	assert.Empty(t, rec.Result().Cookies())
}

func TestHandleDisplayPage(t *testing.T) {
	contents := &mockContentService{
		getActiveFn: func(_ context.Context) (*domain.ContentItem, error) {
			return testContentItem(true), nil
		},
	}
	srv := newTestServer(t, withContents(contents))

	rec := doRequest(srv, http.MethodGet, "/", "")

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome")
	assert.Contains(t, rec.Body.String(), "data:image/png;base64,")
}

func TestHandleAdminPage(t *testing.T) {
	contents := &mockContentService{
		listFn: func(_ context.Context) ([]domain.ContentItem, error) {
			return []domain.ContentItem{*testContentItem(true)}, nil
		},
	}
	srv := newTestServer(t, withContents(contents))

	rec := doRequest(srv, http.MethodGet, "/admin", "")

	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "Welcome")
}
