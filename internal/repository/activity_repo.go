package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wcircle.app/watchcircle/internal/model"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error)
	// ListForFeed fetches up to limit activities authored by the given users,
	// newest first, strictly older than before when set. The viewer's own rows
	// are never included because the viewer is not in userIDs.
	ListForFeed(ctx context.Context, userIDs []uuid.UUID, before *time.Time, limit int) ([]model.Activity, error)
	ListByUserAndMedia(ctx context.Context, userID uuid.UUID, mediaID string) ([]model.Activity, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		First(&activity, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepository) ListForFeed(ctx context.Context, userIDs []uuid.UUID, before *time.Time, limit int) ([]model.Activity, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	query := r.db.WithContext(ctx).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Where("user_id IN ?", userIDs)

	// Strict cursor: created_at < before. Keyset pagination does not skew when
	// new rows are inserted between page loads.
	if before != nil {
		query = query.Where("created_at < ?", *before)
	}

	var activities []model.Activity
	err := query.
		Order("created_at desc").
		Limit(limit).
		Find(&activities).Error
	return activities, err
}

func (r *activityRepository) ListByUserAndMedia(ctx context.Context, userID uuid.UUID, mediaID string) ([]model.Activity, error) {
	var activities []model.Activity
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		Order("created_at desc").
		Find(&activities).Error
	return activities, err
}
