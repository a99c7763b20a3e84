// Package presence tracks connected devices, their last-seen time, and
// liveness. In-memory state is authoritative for liveness decisions; device
// rows are written through to the store outside the critical section.
package presence

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/tbraun92/gamehub/internal/domain"
	"github.com/tbraun92/gamehub/internal/logging"
	"github.com/tbraun92/gamehub/internal/metrics"
)

// ChangeFunc is notified after any stats-relevant presence change.
// newDevice is true only for the first contact from a session key.
type ChangeFunc func(ctx context.Context, newDevice bool)

type deviceState struct {
	id       uuid.UUID
	lastSeen time.Time
	active   bool
}

// Tracker owns device presence state. Updates to the same session key are
// serialized by the tracker mutex; the sweep re-checks lastSeen under the
// same mutex, so a concurrent heartbeat is never clobbered.
type Tracker struct {
	mu      sync.Mutex
	devices map[string]*deviceState

	repo       domain.DeviceRepository
	clock      clockwork.Clock
	staleAfter time.Duration
	onChange   ChangeFunc

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a tracker hydrated with the known devices from the store, all
// initially inactive. onChange may be nil.
func New(ctx context.Context, repo domain.DeviceRepository, clock clockwork.Clock, staleAfter time.Duration, onChange ChangeFunc) (*Tracker, error) {
	known, err := repo.List(ctx)
	if err != nil {
		return nil, err
	}

	devices := make(map[string]*deviceState, len(known))
	for _, device := range known {
		devices[device.SessionKey] = &deviceState{
			id:       device.ID,
			lastSeen: device.LastSeenAt,
			active:   false,
		}
	}

	return &Tracker{
		devices:    devices,
		repo:       repo,
		clock:      clock,
		staleAfter: staleAfter,
		onChange:   onChange,
		stopCh:     make(chan struct{}),
	}, nil
}

// RecordContact registers first contact from a session key or refreshes an
// existing device. The create-vs-update decision is atomic per key, so
// repeated calls with the same key never produce duplicate devices.
func (t *Tracker) RecordContact(ctx context.Context, sessionKey, address, userAgent string) error {
	now := t.clock.Now()

	t.mu.Lock()
	state, known := t.devices[sessionKey]
	var wasActive bool
	if known {
		wasActive = state.active
		state.lastSeen = now
		state.active = true
	} else {
		state = &deviceState{id: uuid.New(), lastSeen: now, active: true}
		t.devices[sessionKey] = state
	}
	activeCount := t.countActiveLocked()
	t.mu.Unlock()

	metrics.PresenceActiveDevices.Set(float64(activeCount))

	if known {
		if err := t.repo.Touch(ctx, sessionKey, now, true); err != nil {
			logging.WithSessionKey(sessionKey).Error("Failed to persist device contact", "error", err)
		}
		if !wasActive {
			t.notify(ctx, false)
		}
		return nil
	}

	device := &domain.Device{
		ID:          state.id,
		SessionKey:  sessionKey,
		Address:     address,
		UserAgent:   userAgent,
		ConnectedAt: now,
		LastSeenAt:  now,
		Active:      true,
	}
	if err := t.repo.Create(ctx, device); err != nil {
		logging.WithSessionKey(sessionKey).Error("Failed to persist new device", "error", err)
	}

	logging.WithSessionKey(sessionKey).Info("New device connected", "address", address)
	t.notify(ctx, true)
	return nil
}

// Heartbeat refreshes lastSeen for a known device. Unknown keys return
// ErrDeviceNotFound; callers treat that as a logged no-op.
func (t *Tracker) Heartbeat(ctx context.Context, sessionKey string) error {
	now := t.clock.Now()

	t.mu.Lock()
	state, known := t.devices[sessionKey]
	if !known {
		t.mu.Unlock()
		return domain.ErrDeviceNotFound
	}
	wasActive := state.active
	state.lastSeen = now
	state.active = true
	activeCount := t.countActiveLocked()
	t.mu.Unlock()

	metrics.PresenceActiveDevices.Set(float64(activeCount))

	if err := t.repo.Touch(ctx, sessionKey, now, true); err != nil {
		logging.WithSessionKey(sessionKey).Error("Failed to persist heartbeat", "error", err)
	}
	if !wasActive {
		t.notify(ctx, false)
	}
	return nil
}

// MarkDisconnected flags a device inactive after a transport-level
// disconnect. Unknown keys are a no-op.
func (t *Tracker) MarkDisconnected(ctx context.Context, sessionKey string) {
	t.mu.Lock()
	state, known := t.devices[sessionKey]
	if !known || !state.active {
		t.mu.Unlock()
		return
	}
	state.active = false
	activeCount := t.countActiveLocked()
	t.mu.Unlock()

	metrics.PresenceActiveDevices.Set(float64(activeCount))

	if err := t.repo.SetActive(ctx, sessionKey, false); err != nil {
		logging.WithSessionKey(sessionKey).Error("Failed to persist disconnect", "error", err)
	}
	logging.WithSessionKey(sessionKey).Debug("Device disconnected")
	t.notify(ctx, false)
}

// CountActive returns the number of devices currently presumed connected.
func (t *Tracker) CountActive() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.countActiveLocked()
}

func (t *Tracker) countActiveLocked() int {
	count := 0
	for _, state := range t.devices {
		if state.active {
			count++
		}
	}
	return count
}

// Start runs the liveness sweep until Stop is called. The sweep marks
// devices inactive once their silence exceeds the staleness threshold, so
// CountActive does not overcount connections that died without a clean
// close.
func (t *Tracker) Start(interval time.Duration) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := t.clock.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.Chan():
				t.sweep(context.Background())
			case <-t.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the sweep goroutine.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() { close(t.stopCh) })
	t.wg.Wait()
}

func (t *Tracker) sweep(ctx context.Context) {
	now := t.clock.Now()

	t.mu.Lock()
	var stale []string
	for sessionKey, state := range t.devices {
		// lastSeen is re-read under the mutex heartbeats update it under, so
		// a heartbeat racing the sweep wins.
		if state.active && now.Sub(state.lastSeen) > t.staleAfter {
			state.active = false
			stale = append(stale, sessionKey)
		}
	}
	activeCount := t.countActiveLocked()
	t.mu.Unlock()

	if len(stale) == 0 {
		return
	}

	metrics.PresenceActiveDevices.Set(float64(activeCount))
	for _, sessionKey := range stale {
		metrics.PresenceSweepDeactivations.Inc()
		logging.WithSessionKey(sessionKey).Info("Device marked stale", "stale_after", t.staleAfter)
		if err := t.repo.SetActive(ctx, sessionKey, false); err != nil {
			logging.WithSessionKey(sessionKey).Error("Failed to persist stale device", "error", err)
		}
	}
	t.notify(ctx, false)
}

func (t *Tracker) notify(ctx context.Context, newDevice bool) {
	if t.onChange != nil {
		t.onChange(ctx, newDevice)
	}
}
