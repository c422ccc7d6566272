package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wcircle.app/watchcircle/internal/model"
)

type LikeRepository interface {
	// Toggle adds the like if absent, removes it if present.
	// Returns true when the like is active after the call.
	Toggle(ctx context.Context, userID, activityID uuid.UUID) (bool, error)
	IsLiked(ctx context.Context, userID, activityID uuid.UUID) (bool, error)
	Count(ctx context.Context, activityID uuid.UUID) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, userID, activityID uuid.UUID) (bool, error) {
	var existing []model.ActivityLike
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return false, err
	}

	if len(existing) > 0 {
		err := r.db.WithContext(ctx).
			Where("user_id = ? AND activity_id = ?", userID, activityID).
			Delete(&model.ActivityLike{}).Error
		return false, err
	}

	like := model.ActivityLike{UserID: userID, ActivityID: activityID}
	return true, r.db.WithContext(ctx).Create(&like).Error
}

func (r *likeRepository) IsLiked(ctx context.Context, userID, activityID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ActivityLike{}).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, activityID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ActivityLike{}).
		Where("activity_id = ?", activityID).
		Count(&count).Error
	return count, err
}
