package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Device is one connecting client, correlated across reconnects by its
// session key. Device rows are never deleted; history is kept for stats.
type Device struct {
	ID          uuid.UUID
	SessionKey  string
	Address     string
	UserAgent   string
	ConnectedAt time.Time
	LastSeenAt  time.Time
	Active      bool
}

// DeviceRepository abstracts device persistence.
type DeviceRepository interface {
	Create(ctx context.Context, device *Device) error

	// Touch refreshes last_seen_at and the active flag for an existing
	// device. Unknown keys are a no-op.
	Touch(ctx context.Context, sessionKey string, lastSeen time.Time, active bool) error

	SetActive(ctx context.Context, sessionKey string, active bool) error
	List(ctx context.Context) ([]Device, error)
}
