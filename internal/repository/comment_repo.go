package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wcircle.app/watchcircle/internal/model"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *model.Comment) error
	ListByActivity(ctx context.Context, activityID uuid.UUID) ([]model.Comment, error)
	ListByMedia(ctx context.Context, mediaID string, limit int) ([]model.Comment, error)
	CountByActivity(ctx context.Context, activityID uuid.UUID) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) ListByActivity(ctx context.Context, activityID uuid.UUID) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("activity_id = ?", activityID).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Order("created_at asc").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) ListByMedia(ctx context.Context, mediaID string, limit int) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.db.WithContext(ctx).
		Where("media_id = ?", mediaID).
		Preload("User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Order("created_at desc").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByActivity(ctx context.Context, activityID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Comment{}).
		Where("activity_id = ?", activityID).
		Count(&count).Error
	return count, err
}
