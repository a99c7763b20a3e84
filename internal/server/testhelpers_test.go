package server

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	"github.com/tbraun92/gamehub/internal/config"
	"github.com/tbraun92/gamehub/internal/domain"
	"github.com/tbraun92/gamehub/internal/hub"
)

// --- Service mocks ---

type mockContentService struct {
	createFn    func(ctx context.Context, params domain.CreateContentParams) (*domain.ContentItem, error)
	activateFn  func(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error)
	getActiveFn func(ctx context.Context) (*domain.ContentItem, error)
	listFn      func(ctx context.Context) ([]domain.ContentItem, error)
}

func (m *mockContentService) Create(ctx context.Context, params domain.CreateContentParams) (*domain.ContentItem, error) {
	if m.createFn != nil {
		return m.createFn(ctx, params)
	}
	return nil, nil
}

func (m *mockContentService) Activate(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	if m.activateFn != nil {
		return m.activateFn(ctx, id)
	}
	return nil, domain.ErrContentNotFound
}

func (m *mockContentService) GetActive(ctx context.Context) (*domain.ContentItem, error) {
	if m.getActiveFn != nil {
		return m.getActiveFn(ctx)
	}
	return nil, nil
}

func (m *mockContentService) List(ctx context.Context) ([]domain.ContentItem, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

type mockPresenceService struct {
	mu            sync.Mutex
	contacts      []string
	heartbeats    []string
	disconnects   []string
	heartbeatErr  error
	activeDevices int
}

func (m *mockPresenceService) RecordContact(_ context.Context, sessionKey, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.contacts = append(m.contacts, sessionKey)
	return nil
}

func (m *mockPresenceService) Heartbeat(_ context.Context, sessionKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.heartbeatErr != nil {
		return m.heartbeatErr
	}
	m.heartbeats = append(m.heartbeats, sessionKey)
	return nil
}

func (m *mockPresenceService) MarkDisconnected(_ context.Context, sessionKey string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnects = append(m.disconnects, sessionKey)
}

func (m *mockPresenceService) CountActive() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeDevices
}

func (m *mockPresenceService) contactCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contacts)
}

func (m *mockPresenceService) heartbeatCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.heartbeats)
}

func (m *mockPresenceService) disconnectCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.disconnects)
}

type mockStatsService struct {
	snapshotFn     func(ctx context.Context) (domain.StatsSnapshot, error)
	startSessionFn func(ctx context.Context, name string) (*domain.Session, error)
	endSessionFn   func(ctx context.Context) (*domain.Session, error)
}

func (m *mockStatsService) Snapshot(ctx context.Context) (domain.StatsSnapshot, error) {
	if m.snapshotFn != nil {
		return m.snapshotFn(ctx)
	}
	return domain.StatsSnapshot{SessionName: "No active session"}, nil
}

func (m *mockStatsService) StartSession(ctx context.Context, name string) (*domain.Session, error) {
	if m.startSessionFn != nil {
		return m.startSessionFn(ctx, name)
	}
	return &domain.Session{ID: uuid.New(), Name: name, Active: true}, nil
}

func (m *mockStatsService) EndSession(ctx context.Context) (*domain.Session, error) {
	if m.endSessionFn != nil {
		return m.endSessionFn(ctx)
	}
	return nil, domain.ErrNoActiveSession
}

type mockStore struct {
	pingErr error
}

func (m *mockStore) Ping(context.Context) error {
	return m.pingErr
}

// --- Server construction ---

type serverOption func(*serverDeps)

type serverDeps struct {
	contents contentService
	presence presenceService
	stats    statsService
	store    storePinger
}

func withContents(contents contentService) serverOption {
	return func(d *serverDeps) { d.contents = contents }
}

func withPresence(presence presenceService) serverOption {
	return func(d *serverDeps) { d.presence = presence }
}

func withStats(stats statsService) serverOption {
	return func(d *serverDeps) { d.stats = stats }
}

func withStore(store storePinger) serverOption {
	return func(d *serverDeps) { d.store = store }
}

func newTestServer(t *testing.T, opts ...serverOption) *Server {
	t.Helper()

	deps := &serverDeps{
		contents: &mockContentService{},
		presence: &mockPresenceService{},
		stats:    &mockStatsService{},
		store:    &mockStore{},
	}
	for _, opt := range opts {
		opt(deps)
	}

	cfg := &config.Config{
		AppEnv:             "test",
		Port:               "8000",
		MaxClientsPerGroup: 10,
	}

	h := hub.New(cfg.MaxClientsPerGroup, hub.DefaultQueueSize)
	t.Cleanup(h.Stop)

	srv, err := NewServer(cfg, deps.contents, deps.presence, deps.stats, h, deps.store, clockwork.NewFakeClock())
	require.NoError(t, err)
	return srv
}
