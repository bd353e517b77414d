package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/enums"
	pkgerrors "github.com/ruwinya10/agrilink-backend/pkg/errors"
	"github.com/ruwinya10/agrilink-backend/pkg/pagination"
)

// Service records and lists per-user activity. Record is called from
// post-commit hooks, so it only ever appends.
type Service interface {
	Record(ctx context.Context, input RecordInput) error
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*FeedPage, error)
}

// RecordInput describes one feed entry to append.
type RecordInput struct {
	UserID  uuid.UUID
	Type    enums.ActivityType
	Message string
	OrderID *uuid.UUID
}

// EntryDTO is the API-facing shape of a feed entry.
type EntryDTO struct {
	ID        uuid.UUID          `json:"id"`
	Type      enums.ActivityType `json:"type"`
	Message   string             `json:"message"`
	OrderID   *uuid.UUID         `json:"order_id,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// FeedPage is one cursor page of the activity feed.
type FeedPage struct {
	Items      []EntryDTO `json:"items"`
	NextCursor string     `json:"next_cursor,omitempty"`
}

type service struct {
	repo Repository
}

// NewService constructs an activity service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("activity repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Record(ctx context.Context, input RecordInput) error {
	if input.UserID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "activity user is required")
	}
	if !input.Type.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid activity type %q", input.Type))
	}

	entry := &models.ActivityEntry{
		UserID:  input.UserID,
		Type:    input.Type,
		Message: input.Message,
		OrderID: input.OrderID,
	}
	if _, err := s.repo.CreateEntry(ctx, entry); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert activity entry")
	}
	return nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*FeedPage, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	limit := pagination.NormalizeLimit(params.Limit)

	entries, err := s.repo.FindByUser(ctx, userID, cursor, limit+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list activity")
	}

	page := &FeedPage{Items: make([]EntryDTO, 0, len(entries))}
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		page.NextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	for _, e := range entries {
		page.Items = append(page.Items, EntryDTO{
			ID:        e.ID,
			Type:      e.Type,
			Message:   e.Message,
			OrderID:   e.OrderID,
			CreatedAt: e.CreatedAt,
		})
	}
	return page, nil
}
