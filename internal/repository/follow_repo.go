package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"wcircle.app/watchcircle/internal/model"
)

type FollowRepository interface {
	Upsert(ctx context.Context, follow *model.Follow) error
	Delete(ctx context.Context, followerID, followeeID uuid.UUID) error
	Find(ctx context.Context, followerID, followeeID uuid.UUID) (*model.Follow, error)
	Accept(ctx context.Context, followerID, followeeID uuid.UUID) error
	// FollowingIDs returns the ids of users the given user follows with
	// 'accepted' status. This is the viewer's friend set for feed and
	// enrichment queries.
	FollowingIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error)
	// FollowedIDs returns followee ids regardless of edge status; a pending
	// request still excludes the target from follow suggestions.
	FollowedIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error)
	ListRequests(ctx context.Context, followeeID uuid.UUID) ([]model.Follow, error)
	CountFollowers(ctx context.Context, followeeID uuid.UUID) (int64, error)
	// CountFollowersAmong counts how many of the given users follow the
	// candidate ("friends in common" on suggestion cards).
	CountFollowersAmong(ctx context.Context, candidateID uuid.UUID, userIDs []uuid.UUID) (int64, error)

	GetTasteMatch(ctx context.Context, userID, otherID uuid.UUID) (*model.TasteMatch, error)
	UpsertTasteMatch(ctx context.Context, match *model.TasteMatch) error
	DeleteTasteMatch(ctx context.Context, userID, otherID uuid.UUID) error
}

type followRepository struct {
	db *gorm.DB
}

func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

func (r *followRepository) Upsert(ctx context.Context, follow *model.Follow) error {
	// Idempotent: repeating the same follow converges on the same row.
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followee_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "updated_at"}),
	}).Create(follow).Error
}

func (r *followRepository) Delete(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&model.Follow{}).Error
}

func (r *followRepository) Find(ctx context.Context, followerID, followeeID uuid.UUID) (*model.Follow, error) {
	// Find with slice avoids "record not found" log noise from GORM's First()
	var edges []model.Follow
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Limit(1).
		Find(&edges).Error
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, nil
	}
	return &edges[0], nil
}

func (r *followRepository) Accept(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND followee_id = ? AND status = ?",
			followerID, followeeID, model.FollowStatusPending).
		Update("status", model.FollowStatusAccepted).Error
}

func (r *followRepository) FollowingIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ? AND status = ?", followerID, model.FollowStatusAccepted).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *followRepository) FollowedIDs(ctx context.Context, followerID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	return ids, err
}

func (r *followRepository) CountFollowers(ctx context.Context, followeeID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("followee_id = ? AND status = ?", followeeID, model.FollowStatusAccepted).
		Count(&count).Error
	return count, err
}

func (r *followRepository) CountFollowersAmong(ctx context.Context, candidateID uuid.UUID, userIDs []uuid.UUID) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Follow{}).
		Where("followee_id = ? AND status = ? AND follower_id IN ?",
			candidateID, model.FollowStatusAccepted, userIDs).
		Count(&count).Error
	return count, err
}

func (r *followRepository) ListRequests(ctx context.Context, followeeID uuid.UUID) ([]model.Follow, error) {
	var edges []model.Follow
	err := r.db.WithContext(ctx).
		Where("followee_id = ? AND status = ?", followeeID, model.FollowStatusPending).
		Preload("Follower", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "username", "avatar_url")
		}).
		Order("created_at desc").
		Find(&edges).Error
	return edges, err
}

func (r *followRepository) GetTasteMatch(ctx context.Context, userID, otherID uuid.UUID) (*model.TasteMatch, error) {
	var matches []model.TasteMatch
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND other_id = ?", userID, otherID).
		Limit(1).
		Find(&matches).Error
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}
	return &matches[0], nil
}

func (r *followRepository) UpsertTasteMatch(ctx context.Context, match *model.TasteMatch) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "other_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(match).Error
}

func (r *followRepository) DeleteTasteMatch(ctx context.Context, userID, otherID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND other_id = ?", userID, otherID).
		Delete(&model.TasteMatch{}).Error
}
