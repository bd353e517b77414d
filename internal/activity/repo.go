package activity

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ruwinya10/agrilink-backend/pkg/db/models"
	"github.com/ruwinya10/agrilink-backend/pkg/pagination"
)

// Repository persists the append-only activity feed.
type Repository interface {
	CreateEntry(ctx context.Context, entry *models.ActivityEntry) (*models.ActivityEntry, error)
	FindByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.ActivityEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an activity repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreateEntry(ctx context.Context, entry *models.ActivityEntry) (*models.ActivityEntry, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (r *repository) FindByUser(ctx context.Context, userID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.ActivityEntry, error) {
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var entries []models.ActivityEntry
	if err := query.Order("created_at DESC, id DESC").Limit(limit).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
