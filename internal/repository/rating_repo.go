package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"wcircle.app/watchcircle/internal/model"
)

type RatingRepository interface {
	// Toggle applies toggle-off semantics: same value deletes the row,
	// a different value replaces it, no row creates one.
	// Returns (oldValue, newValue); empty string means absent.
	Toggle(ctx context.Context, rating *model.Rating) (string, string, error)
	Upsert(ctx context.Context, rating *model.Rating) error
	Get(ctx context.Context, userID uuid.UUID, mediaID string) (*model.Rating, error)
	ListByMediaForUsers(ctx context.Context, mediaID string, userIDs []uuid.UUID) ([]model.Rating, error)
	ListLovedMediaIDs(ctx context.Context, userID uuid.UUID) ([]string, error)
}

type ratingRepository struct {
	db *gorm.DB
}

func NewRatingRepository(db *gorm.DB) RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Toggle(ctx context.Context, rating *model.Rating) (string, string, error) {
	var existing []model.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ?", rating.UserID, rating.MediaID).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return "", "", err
	}

	if len(existing) > 0 {
		record := existing[0]
		oldValue := record.Value

		if record.Value == rating.Value {
			// Clicked the currently-selected value -> toggle off
			if err := r.db.WithContext(ctx).
				Where("user_id = ? AND media_id = ?", record.UserID, record.MediaID).
				Delete(&model.Rating{}).Error; err != nil {
				return "", "", err
			}
			return oldValue, "", nil
		}

		if err := r.Upsert(ctx, rating); err != nil {
			return "", "", err
		}
		return oldValue, rating.Value, nil
	}

	// Upsert also covers the fresh-insert path: two concurrent first ratings
	// converge on the later write instead of one hitting a duplicate key.
	if err := r.Upsert(ctx, rating); err != nil {
		return "", "", err
	}
	return "", rating.Value, nil
}

func (r *ratingRepository) Upsert(ctx context.Context, rating *model.Rating) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "media_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "media_type", "updated_at"}),
	}).Create(rating).Error
}

func (r *ratingRepository) Get(ctx context.Context, userID uuid.UUID, mediaID string) (*model.Rating, error) {
	var ratings []model.Rating
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND media_id = ?", userID, mediaID).
		Limit(1).
		Find(&ratings).Error
	if err != nil {
		return nil, err
	}
	if len(ratings) == 0 {
		return nil, nil
	}
	return &ratings[0], nil
}

func (r *ratingRepository) ListByMediaForUsers(ctx context.Context, mediaID string, userIDs []uuid.UUID) ([]model.Rating, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var ratings []model.Rating
	err := r.db.WithContext(ctx).
		Where("media_id = ? AND user_id IN ?", mediaID, userIDs).
		Find(&ratings).Error
	return ratings, err
}

func (r *ratingRepository) ListLovedMediaIDs(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var mediaIDs []string
	err := r.db.WithContext(ctx).Model(&model.Rating{}).
		Where("user_id = ? AND value = ?", userID, model.RatingLove).
		Pluck("media_id", &mediaIDs).Error
	return mediaIDs, err
}
