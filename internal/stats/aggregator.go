// Package stats derives the connection statistics payload from the presence
// tracker and the active session, and broadcasts it on the device-stats
// group whenever presence changes.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/tbraun92/gamehub/internal/domain"
)

// NoActiveSessionName is reported in stats snapshots when no session is
// running. Clients render it as-is.
const NoActiveSessionName = "No active session"

// DeviceCounter reports the number of currently connected devices.
type DeviceCounter interface {
	CountActive() int
}

// Aggregator owns session lifecycle and the stats_update fan-out. Session
// counters (scan count, connected-device high-water mark) are bumped here,
// never by transport handlers.
type Aggregator struct {
	// sessionMu serializes session transitions so start/end pairs cannot
	// interleave and produce two active sessions.
	sessionMu sync.Mutex

	sessions    domain.SessionRepository
	counter     DeviceCounter
	broadcaster domain.Broadcaster
	clock       clockwork.Clock
}

func New(sessions domain.SessionRepository, counter DeviceCounter, broadcaster domain.Broadcaster, clock clockwork.Clock) *Aggregator {
	return &Aggregator{
		sessions:    sessions,
		counter:     counter,
		broadcaster: broadcaster,
		clock:       clock,
	}
}

// Snapshot assembles the current statistics. With no active session the scan
// count is zero and the session name is the fallback label.
func (a *Aggregator) Snapshot(ctx context.Context) (domain.StatsSnapshot, error) {
	snapshot := domain.StatsSnapshot{
		ConnectedDevices: a.counter.CountActive(),
		SessionName:      NoActiveSessionName,
	}

	session, err := a.sessions.GetActive(ctx)
	if err != nil {
		return domain.StatsSnapshot{}, fmt.Errorf("failed to load active session: %w", err)
	}
	if session != nil {
		snapshot.QRScans = session.ScanCount
		snapshot.SessionName = session.Name
	}

	return snapshot, nil
}

// OnPresenceChange is wired as the presence tracker's change callback. A new
// device counts as one QR scan and may raise the session's high-water mark;
// every change ends in a stats_update broadcast. Counter updates run under
// sessionMu so they never land on a session that a concurrent transition has
// already ended.
func (a *Aggregator) OnPresenceChange(ctx context.Context, newDevice bool) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	session, err := a.sessions.GetActive(ctx)
	if err != nil {
		slog.Error("Failed to load active session on presence change", "error", err)
		return
	}

	if session != nil {
		if newDevice {
			if err := a.sessions.IncrementScanCount(ctx, session.ID); err != nil {
				slog.Error("Failed to increment scan count", "session_id", session.ID.String(), "error", err)
			}
		}
		if err := a.sessions.RaiseMaxConnected(ctx, session.ID, a.counter.CountActive()); err != nil {
			slog.Error("Failed to raise connected-device high-water mark", "session_id", session.ID.String(), "error", err)
		}
	}

	a.PublishSnapshot(ctx)
}

// PublishSnapshot broadcasts the current statistics to the device-stats
// group. Failures are logged, never propagated; stats delivery is best
// effort.
func (a *Aggregator) PublishSnapshot(ctx context.Context) {
	snapshot, err := a.Snapshot(ctx)
	if err != nil {
		slog.Error("Failed to assemble stats snapshot", "error", err)
		return
	}

	payload, err := domain.EncodeStatsUpdate(snapshot)
	if err != nil {
		slog.Error("Failed to encode stats update", "error", err)
		return
	}

	a.broadcaster.Publish(domain.GroupDeviceStats, payload)
}

// StartSession ends any running session and starts a new one, so at most one
// session is ever active.
func (a *Aggregator) StartSession(ctx context.Context, name string) (*domain.Session, error) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	now := a.clock.Now()

	current, err := a.sessions.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active session: %w", err)
	}
	if current != nil {
		if err := a.sessions.End(ctx, current.ID, now); err != nil {
			return nil, fmt.Errorf("failed to end session %s: %w", current.ID, err)
		}
		slog.Info("Session ended", "session_id", current.ID.String(), "name", current.Name)
	}

	if name == "" {
		name = "Session " + now.Format("2006-01-02 15:04")
	}

	session := &domain.Session{
		ID:        uuid.New(),
		Name:      name,
		StartedAt: now,
		Active:    true,
	}
	if err := a.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	slog.Info("Session started", "session_id", session.ID.String(), "name", session.Name)
	a.PublishSnapshot(ctx)
	return session, nil
}

// EndSession ends the active session. It fails with ErrNoActiveSession when
// none is running; an ended session stays ended.
func (a *Aggregator) EndSession(ctx context.Context) (*domain.Session, error) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()

	session, err := a.sessions.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrNoActiveSession
	}

	endedAt := a.clock.Now()
	if err := a.sessions.End(ctx, session.ID, endedAt); err != nil {
		return nil, fmt.Errorf("failed to end session %s: %w", session.ID, err)
	}

	session.Active = false
	session.EndedAt = &endedAt

	slog.Info("Session ended", "session_id", session.ID.String(), "name", session.Name)
	a.PublishSnapshot(ctx)
	return session, nil
}
