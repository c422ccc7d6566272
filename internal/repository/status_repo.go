package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"wcircle.app/watchcircle/internal/model"
)

type WatchStatusRepository interface {
	// Toggle mirrors RatingRepository.Toggle: selecting the current status
	// clears it, any other status replaces it.
	Toggle(ctx context.Context, status *model.WatchStatus) (string, string, error)
	Upsert(ctx context.Context, status *model.WatchStatus) error
	Get(ctx context.Context, userID uuid.UUID, mediaID string) (*model.WatchStatus, error)
	ListByMediaForUsers(ctx context.Context, mediaID string, userIDs []uuid.UUID) ([]model.WatchStatus, error)
}

type watchStatusRepository struct {
	db *gorm.DB
}

func NewWatchStatusRepository(db *gorm.DB) WatchStatusRepository {
	return &watchStatusRepository{db: db}
}

func (r *watchStatusRepository) Toggle(ctx context.Context, status *model.WatchStatus) (string, string, error) {
	var existing []model.WatchStatus
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ?", status.UserID, status.MediaID).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return "", "", err
	}

	if len(existing) > 0 {
		record := existing[0]
		oldStatus := record.Status

		if record.Status == status.Status {
			if err := r.db.WithContext(ctx).
				Where("user_id = ? AND media_id = ?", record.UserID, record.MediaID).
				Delete(&model.WatchStatus{}).Error; err != nil {
				return "", "", err
			}
			return oldStatus, "", nil
		}

		if err := r.Upsert(ctx, status); err != nil {
			return "", "", err
		}
		return oldStatus, status.Status, nil
	}

	// Upsert also covers the fresh-insert path: two concurrent first writes
	// converge on the later one instead of one hitting a duplicate key.
	if err := r.Upsert(ctx, status); err != nil {
		return "", "", err
	}
	return "", status.Status, nil
}

func (r *watchStatusRepository) Upsert(ctx context.Context, status *model.WatchStatus) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "media_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "media_type", "updated_at"}),
	}).Create(status).Error
}

func (r *watchStatusRepository) Get(ctx context.Context, userID uuid.UUID, mediaID string) (*model.WatchStatus, error) {
	var statuses []model.WatchStatus
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		Limit(1).
		Find(&statuses).Error
	if err != nil {
		return nil, err
	}
	if len(statuses) == 0 {
		return nil, nil
	}
	return &statuses[0], nil
}

func (r *watchStatusRepository) ListByMediaForUsers(ctx context.Context, mediaID string, userIDs []uuid.UUID) ([]model.WatchStatus, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var statuses []model.WatchStatus
	err := r.db.WithContext(ctx).
		Where("media_id = ? AND user_id IN ?", mediaID, userIDs).
		Find(&statuses).Error
	return statuses, err
}
