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

type contentItemModel struct {
	bun.BaseModel `bun:"table:content_items"`

	ID              string    `bun:"id,pk"`
	Title           string    `bun:"title"`
	Kind            string    `bun:"kind"`
	Body            string    `bun:"body"`
	MediaRef        string    `bun:"media_ref"`
	BackgroundColor string    `bun:"background_color"`
	TextColor       string    `bun:"text_color"`
	FontSize        int       `bun:"font_size"`
	Active          bool      `bun:"active"`
	CreatedAt       time.Time `bun:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at"`
}

func contentToModel(item *domain.ContentItem) *contentItemModel {
	return &contentItemModel{
		ID:              item.ID.String(),
		Title:           item.Title,
		Kind:            string(item.Kind),
		Body:            item.Body,
		MediaRef:        item.MediaRef,
		BackgroundColor: item.BackgroundColor,
		TextColor:       item.TextColor,
		FontSize:        item.FontSize,
		Active:          item.Active,
		CreatedAt:       item.CreatedAt,
		UpdatedAt:       item.UpdatedAt,
	}
}

func contentToDomain(m *contentItemModel) *domain.ContentItem {
	id, _ := uuid.Parse(m.ID)
	return &domain.ContentItem{
		ID:              id,
		Title:           m.Title,
		Kind:            domain.ContentKind(m.Kind),
		Body:            m.Body,
		MediaRef:        m.MediaRef,
		BackgroundColor: m.BackgroundColor,
		TextColor:       m.TextColor,
		FontSize:        m.FontSize,
		Active:          m.Active,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// ContentRepo is the SQLite-backed domain.ContentRepository.
type ContentRepo struct {
	db *bun.DB
}

func NewContentRepo(s *Store) *ContentRepo {
	return &ContentRepo{db: s.db}
}

func (r *ContentRepo) Create(ctx context.Context, item *domain.ContentItem) error {
	if _, err := r.db.NewInsert().Model(contentToModel(item)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to insert content item: %w", err)
	}
	return nil
}

func (r *ContentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	var m contentItemModel
	err := r.db.NewSelect().Model(&m).Where("id = ?", id.String()).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrContentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load content item: %w", err)
	}
	return contentToDomain(&m), nil
}

func (r *ContentRepo) GetActive(ctx context.Context) (*domain.ContentItem, error) {
	var m contentItemModel
	err := r.db.NewSelect().Model(&m).Where("active = ?", true).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load active content item: %w", err)
	}
	return contentToDomain(&m), nil
}

// Activate clears the active flag on whatever item holds it and sets it on
// the target inside one transaction, so readers never observe two active
// items or a half-applied transition.
func (r *ContentRepo) Activate(ctx context.Context, id uuid.UUID, now time.Time) (*domain.ContentItem, error) {
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// Raw UPDATE: Bun requires a WHERE clause on Update queries, and here
		// the full-table clear is intentional.
		if _, err := tx.ExecContext(ctx, "UPDATE content_items SET active = 0 WHERE active = 1"); err != nil {
			return fmt.Errorf("failed to deactivate current item: %w", err)
		}

		res, err := tx.NewUpdate().
			Model((*contentItemModel)(nil)).
			Set("active = 1").
			Set("updated_at = ?", now).
			Where("id = ?", id.String()).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to activate item: %w", err)
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return domain.ErrContentNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *ContentRepo) List(ctx context.Context) ([]domain.ContentItem, error) {
	var models []contentItemModel
	if err := r.db.NewSelect().Model(&models).Order("created_at DESC").Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list content items: %w", err)
	}

	items := make([]domain.ContentItem, 0, len(models))
	for i := range models {
		items = append(items, *contentToDomain(&models[i]))
	}
	return items, nil
}
