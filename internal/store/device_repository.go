package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/tbraun92/gamehub/internal/domain"
)

type deviceModel struct {
	bun.BaseModel `bun:"table:devices"`

	ID          string    `bun:"id,pk"`
	SessionKey  string    `bun:"session_key"`
	Address     string    `bun:"address"`
	UserAgent   string    `bun:"user_agent"`
	ConnectedAt time.Time `bun:"connected_at"`
	LastSeenAt  time.Time `bun:"last_seen_at"`
	Active      bool      `bun:"active"`
}

func deviceToDomain(m *deviceModel) *domain.Device {
	id, _ := uuid.Parse(m.ID)
	return &domain.Device{
		ID:          id,
		SessionKey:  m.SessionKey,
		Address:     m.Address,
		UserAgent:   m.UserAgent,
		ConnectedAt: m.ConnectedAt,
		LastSeenAt:  m.LastSeenAt,
		Active:      m.Active,
	}
}

// DeviceRepo is the SQLite-backed domain.DeviceRepository.
type DeviceRepo struct {
	db *bun.DB
}

func NewDeviceRepo(s *Store) *DeviceRepo {
	return &DeviceRepo{db: s.db}
}

func (r *DeviceRepo) Create(ctx context.Context, device *domain.Device) error {
	m := &deviceModel{
		ID:          device.ID.String(),
		SessionKey:  device.SessionKey,
		Address:     device.Address,
		UserAgent:   device.UserAgent,
		ConnectedAt: device.ConnectedAt,
		LastSeenAt:  device.LastSeenAt,
		Active:      device.Active,
	}
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert device: %w", err)
	}
	return nil
}

func (r *DeviceRepo) Touch(ctx context.Context, sessionKey string, lastSeen time.Time, active bool) error {
	_, err := r.db.NewUpdate().
		Model((*deviceModel)(nil)).
		Set("last_seen_at = ?", lastSeen).
		Set("active = ?", active).
		Where("session_key = ?", sessionKey).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to touch device: %w", err)
	}
	return nil
}

func (r *DeviceRepo) SetActive(ctx context.Context, sessionKey string, active bool) error {
	_, err := r.db.NewUpdate().
		Model((*deviceModel)(nil)).
		Set("active = ?", active).
		Where("session_key = ?", sessionKey).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to update device active flag: %w", err)
	}
	return nil
}

func (r *DeviceRepo) List(ctx context.Context) ([]domain.Device, error) {
	var models []deviceModel
	if err := r.db.NewSelect().Model(&models).Order("connected_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list devices: %w", err)
	}

	devices := make([]domain.Device, 0, len(models))
	for i := range models {
		devices = append(devices, *deviceToDomain(&models[i]))
	}
	return devices, nil
}
