package domain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContentKind is the render type of a content item.
type ContentKind string

const (
	ContentText  ContentKind = "text"
	ContentImage ContentKind = "image"
	ContentMixed ContentKind = "mixed"
)

func (k ContentKind) Valid() bool {
	switch k {
	case ContentText, ContentImage, ContentMixed:
		return true
	}
	return false
}

// ContentItem is a single piece of displayable content. At most one item is
// active at any moment; the active item is what every display and mobile
// client shows.
type ContentItem struct {
	ID              uuid.UUID
	Title           string
	Kind            ContentKind
	Body            string
	MediaRef        string
	BackgroundColor string
	TextColor       string
	FontSize        int
	Active          bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Projection returns the wire representation sent to clients.
func (c *ContentItem) Projection() *ContentProjection {
	var imageURL *string
	if c.MediaRef != "" {
		ref := c.MediaRef
		imageURL = &ref
	}
	return &ContentProjection{
		ID:              c.ID.String(),
		Title:           c.Title,
		ContentType:     string(c.Kind),
		TextContent:     c.Body,
		ImageURL:        imageURL,
		BackgroundColor: c.BackgroundColor,
		TextColor:       c.TextColor,
		FontSize:        c.FontSize,
	}
}

// CreateContentParams carries the fields for creating a new content item.
type CreateContentParams struct {
	Title           string
	Kind            ContentKind
	Body            string
	MediaRef        string
	BackgroundColor string
	TextColor       string
	FontSize        int
}

const maxTitleLength = 200

// Validate rejects malformed creation input before any state mutation.
func (p CreateContentParams) Validate() error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidContent)
	}
	if len(p.Title) > maxTitleLength {
		return fmt.Errorf("%w: title exceeds %d characters", ErrInvalidContent, maxTitleLength)
	}
	if !p.Kind.Valid() {
		return fmt.Errorf("%w: unknown content type %q", ErrInvalidContent, p.Kind)
	}
	if p.FontSize <= 0 {
		return fmt.Errorf("%w: font size must be positive", ErrInvalidContent)
	}
	for _, color := range []string{p.BackgroundColor, p.TextColor} {
		if color != "" && !validHexColor(color) {
			return fmt.Errorf("%w: %q is not a hex color", ErrInvalidContent, color)
		}
	}
	return nil
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// ContentRepository abstracts content item persistence.
type ContentRepository interface {
	Create(ctx context.Context, item *ContentItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*ContentItem, error)

	// GetActive returns the currently active item, or (nil, nil) when no
	// item is active.
	GetActive(ctx context.Context) (*ContentItem, error)

	// Activate atomically deactivates the current active item (if any) and
	// activates the target. Returns ErrContentNotFound if id does not exist;
	// on any error no item changes state.
	Activate(ctx context.Context, id uuid.UUID, now time.Time) (*ContentItem, error)

	List(ctx context.Context) ([]ContentItem, error)
}
