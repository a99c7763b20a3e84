package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/tbraun92/gamehub/internal/domain"
)

type sessionModel struct {
	bun.BaseModel `bun:"table:sessions"`

	ID                  string     `bun:"id,pk"`
	Name                string     `bun:"name"`
	StartedAt           time.Time  `bun:"started_at"`
	EndedAt             *time.Time `bun:"ended_at"`
	Active              bool       `bun:"active"`
	MaxConnectedDevices int        `bun:"max_connected_devices"`
	ScanCount           int        `bun:"scan_count"`
}

func sessionToDomain(m *sessionModel) *domain.Session {
	id, _ := uuid.Parse(m.ID)
	return &domain.Session{
		ID:                  id,
		Name:                m.Name,
		StartedAt:           m.StartedAt,
		EndedAt:             m.EndedAt,
		Active:              m.Active,
		MaxConnectedDevices: m.MaxConnectedDevices,
		ScanCount:           m.ScanCount,
	}
}

// SessionRepo is the SQLite-backed domain.SessionRepository.
type SessionRepo struct {
	db *bun.DB
}

func NewSessionRepo(s *Store) *SessionRepo {
	return &SessionRepo{db: s.db}
}

func (r *SessionRepo) Create(ctx context.Context, session *domain.Session) error {
	m := &sessionModel{
		ID:                  session.ID.String(),
		Name:                session.Name,
		StartedAt:           session.StartedAt,
		EndedAt:             session.EndedAt,
		Active:              session.Active,
		MaxConnectedDevices: session.MaxConnectedDevices,
		ScanCount:           session.ScanCount,
	}
	if _, err := r.db.NewInsert().Model(m).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}
	return nil
}

func (r *SessionRepo) GetActive(ctx context.Context) (*domain.Session, error) {
	var m sessionModel
	err := r.db.NewSelect().Model(&m).Where("active = ?", true).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active session: %w", err)
	}
	return sessionToDomain(&m), nil
}

func (r *SessionRepo) End(ctx context.Context, id uuid.UUID, endedAt time.Time) error {
	res, err := r.db.NewUpdate().
		Model((*sessionModel)(nil)).
		Set("active = ?", false).
		Set("ended_at = ?", endedAt).
		Where("id = ?", id.String()).
		Where("active = ?", true).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	if affected == 0 {
		return domain.ErrSessionEnded
	}
	return nil
}

func (r *SessionRepo) IncrementScanCount(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.NewUpdate().
		Model((*sessionModel)(nil)).
		Set("scan_count = scan_count + 1").
		Where("id = ?", id.String()).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to increment scan count: %w", err)
	}
	return nil
}

func (r *SessionRepo) RaiseMaxConnected(ctx context.Context, id uuid.UUID, count int) error {
	_, err := r.db.NewUpdate().
		Model((*sessionModel)(nil)).
		Set("max_connected_devices = ?", count).
		Where("id = ?", id.String()).
		Where("max_connected_devices < ?", count).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to raise max connected devices: %w", err)
	}
	return nil
}
