// Package registry owns the content item set and the single-active-item
// state machine. It is the only writer of the active-flag transition.
package registry

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/tbraun92/gamehub/internal/domain"
	"github.com/tbraun92/gamehub/internal/metrics"
)

// Registry enforces the "exactly one active item" invariant. Handlers never
// mutate content fields directly; all writes go through here.
type Registry struct {
	// activateMu serializes the clear-old/set-new transition and the
	// broadcast that follows it. The store transaction keeps each transition
	// atomic for readers; the mutex keeps the published update stream in
	// commit order.
	activateMu sync.Mutex

	contents    domain.ContentRepository
	broadcaster domain.Broadcaster
	clock       clockwork.Clock
}

func New(contents domain.ContentRepository, broadcaster domain.Broadcaster, clock clockwork.Clock) *Registry {
	return &Registry{
		contents:    contents,
		broadcaster: broadcaster,
		clock:       clock,
	}
}

// Create validates and stores a new, inactive content item. It never
// auto-activates.
func (r *Registry) Create(ctx context.Context, params domain.CreateContentParams) (*domain.ContentItem, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	now := r.clock.Now()
	item := &domain.ContentItem{
		ID:              uuid.New(),
		Title:           params.Title,
		Kind:            params.Kind,
		Body:            params.Body,
		MediaRef:        params.MediaRef,
		BackgroundColor: defaultString(params.BackgroundColor, "#ffffff"),
		TextColor:       defaultString(params.TextColor, "#000000"),
		FontSize:        params.FontSize,
		Active:          false,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := r.contents.Create(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to create content item: %w", err)
	}

	slog.Info("Content item created", "content_id", item.ID.String(), "title", item.Title)
	return item, nil
}

// Activate atomically makes the target item the single active item and
// broadcasts the new projection to the content-updates group. On failure no
// item changes state and nothing is published. The mutex is held across the
// publish, so broadcast order always matches commit order; Publish is a
// non-blocking enqueue onto the hub's command channel.
func (r *Registry) Activate(ctx context.Context, id uuid.UUID) (*domain.ContentItem, error) {
	r.activateMu.Lock()
	defer r.activateMu.Unlock()

	item, err := r.contents.Activate(ctx, id, r.clock.Now())
	if err != nil {
		return nil, err
	}

	metrics.ContentActivations.Inc()
	slog.Info("Content item activated", "content_id", item.ID.String(), "title", item.Title)

	event, err := domain.EncodeContentUpdate(item.Projection())
	if err != nil {
		slog.Error("Failed to encode content update", "error", err)
		return item, nil
	}
	r.broadcaster.Publish(domain.GroupContentUpdates, event)

	return item, nil
}

// GetActive returns the current active item, or (nil, nil) when none is
// active.
func (r *Registry) GetActive(ctx context.Context) (*domain.ContentItem, error) {
	return r.contents.GetActive(ctx)
}

// List returns all content items, newest first.
func (r *Registry) List(ctx context.Context) ([]domain.ContentItem, error) {
	return r.contents.List(ctx)
}

func defaultString(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
