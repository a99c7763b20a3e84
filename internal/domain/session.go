package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Session is one run of the display. At most one session is active; an ended
// session is never reactivated.
type Session struct {
	ID                  uuid.UUID
	Name                string
	StartedAt           time.Time
	EndedAt             *time.Time
	Active              bool
	MaxConnectedDevices int
	ScanCount           int
}

// SessionRepository abstracts session persistence.
type SessionRepository interface {
	Create(ctx context.Context, session *Session) error

	// GetActive returns the active session, or (nil, nil) when none is active.
	GetActive(ctx context.Context) (*Session, error)

	// End marks the session inactive and records endedAt. It returns
	// ErrSessionEnded when the session is no longer active.
	End(ctx context.Context, id uuid.UUID, endedAt time.Time) error
	IncrementScanCount(ctx context.Context, id uuid.UUID) error

	// RaiseMaxConnected updates max_connected_devices to count if count is
	// higher than the stored high-water mark.
	RaiseMaxConnected(ctx context.Context, id uuid.UUID, count int) error
}
