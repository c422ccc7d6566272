package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/redis/go-redis/v9"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/internal/repository"
	"wcircle.app/watchcircle/pkg/apperror"
)

// InteractionService covers the per-media social actions: rating, watch
// status, activity likes and comments. Rating and status use toggle-off
// semantics; all writes are optimistic with rollback.
type InteractionService interface {
	// Rate returns the rating value in effect after the call; empty string
	// means the rating was toggled off.
	Rate(ctx context.Context, userID uuid.UUID, mediaID, mediaType, value string) (string, error)
	SetStatus(ctx context.Context, userID uuid.UUID, mediaID, mediaType, status string) (string, error)
	// LikeActivity returns whether the like is active after the call.
	LikeActivity(ctx context.Context, userID, activityID uuid.UUID) (bool, error)
	ActivityLikeCount(ctx context.Context, activityID uuid.UUID) (int64, error)
	CommentActivity(ctx context.Context, userID, activityID uuid.UUID, body string) (*model.Comment, error)
	ListComments(ctx context.Context, activityID uuid.UUID) ([]model.Comment, error)
}

type interactionService struct {
	ratingRepo    repository.RatingRepository
	statusRepo    repository.WatchStatusRepository
	likeRepo      repository.LikeRepository
	commentRepo   repository.CommentRepository
	activityRepo  repository.ActivityRepository
	notifications NotificationService
	state         DisplayStateStore
	redisClient   *redis.Client
	sanitizer     *bluemonday.Policy
}

func NewInteractionService(
	ratingRepo repository.RatingRepository,
	statusRepo repository.WatchStatusRepository,
	likeRepo repository.LikeRepository,
	commentRepo repository.CommentRepository,
	activityRepo repository.ActivityRepository,
	notifications NotificationService,
	state DisplayStateStore,
	redisClient *redis.Client,
) InteractionService {
	return &interactionService{
		ratingRepo:    ratingRepo,
		statusRepo:    statusRepo,
		likeRepo:      likeRepo,
		commentRepo:   commentRepo,
		activityRepo:  activityRepo,
		notifications: notifications,
		state:         state,
		redisClient:   redisClient,
		sanitizer:     bluemonday.StrictPolicy(),
	}
}

func validRating(value string) bool {
	switch value {
	case model.RatingMeh, model.RatingLike, model.RatingLove:
		return true
	}
	return false
}

func validStatus(status string) bool {
	switch status {
	case model.StatusWatching, model.StatusWantToWatch, model.StatusWatched:
		return true
	}
	return false
}

func (s *interactionService) Rate(ctx context.Context, userID uuid.UUID, mediaID, mediaType, value string) (string, error) {
	if !validRating(value) {
		return "", apperror.ErrInvalidInput
	}

	stateKey := ratingStateKey(userID, mediaID)
	prevValue, hadPrev, err := s.state.Get(ctx, stateKey)
	if err != nil {
		log.Printf("rate: display state read failed: %v", err)
	}

	var newValue string
	_, err = RunMutation(ctx, Mutation{
		Name: fmt.Sprintf("rate %s %s", userID, mediaID),
		Apply: func(ctx context.Context) error {
			// Optimistically show the clicked value; a toggle-off is
			// corrected right after commit.
			return s.state.Set(ctx, stateKey, value, displayStateTTL)
		},
		Persist: func(ctx context.Context) error {
			_, newValue, err = s.ratingRepo.Toggle(ctx, &model.Rating{
				UserID:    userID,
				MediaID:   mediaID,
				MediaType: mediaType,
				Value:     value,
			})
			return err
		},
		Rollback: func(ctx context.Context) error {
			if hadPrev {
				return s.state.Set(ctx, stateKey, prevValue, displayStateTTL)
			}
			return s.state.Delete(ctx, stateKey)
		},
	})
	if err != nil {
		return "", err
	}

	if newValue == "" {
		if err := s.state.Delete(ctx, stateKey); err != nil {
			log.Printf("rate: failed to clear display state: %v", err)
		}
		// Clearing a rating is not feed-worthy; no activity row.
		return "", nil
	}

	s.recordActivity(ctx, &model.Activity{
		UserID:       userID,
		MediaID:      mediaID,
		MediaType:    mediaType,
		ActivityType: model.ActivityTypeRated,
		ActivityData: model.ActivityData{Rating: &newValue},
	})

	return newValue, nil
}

func (s *interactionService) SetStatus(ctx context.Context, userID uuid.UUID, mediaID, mediaType, status string) (string, error) {
	if !validStatus(status) {
		return "", apperror.ErrInvalidInput
	}

	stateKey := statusStateKey(userID, mediaID)
	prevValue, hadPrev, err := s.state.Get(ctx, stateKey)
	if err != nil {
		log.Printf("set status: display state read failed: %v", err)
	}

	var oldStatus, newStatus string
	_, err = RunMutation(ctx, Mutation{
		Name: fmt.Sprintf("status %s %s", userID, mediaID),
		Apply: func(ctx context.Context) error {
			return s.state.Set(ctx, stateKey, status, displayStateTTL)
		},
		Persist: func(ctx context.Context) error {
			oldStatus, newStatus, err = s.statusRepo.Toggle(ctx, &model.WatchStatus{
				UserID:    userID,
				MediaID:   mediaID,
				MediaType: mediaType,
				Status:    status,
			})
			return err
		},
		Rollback: func(ctx context.Context) error {
			if hadPrev {
				return s.state.Set(ctx, stateKey, prevValue, displayStateTTL)
			}
			return s.state.Delete(ctx, stateKey)
		},
	})
	if err != nil {
		return "", err
	}

	if newStatus == "" {
		if err := s.state.Delete(ctx, stateKey); err != nil {
			log.Printf("set status: failed to clear display state: %v", err)
		}
		return "", nil
	}

	data := model.ActivityData{Status: &newStatus}
	if oldStatus != "" {
		data.PreviousStatus = &oldStatus
	}
	s.recordActivity(ctx, &model.Activity{
		UserID:       userID,
		MediaID:      mediaID,
		MediaType:    mediaType,
		ActivityType: model.ActivityTypeStatusChanged,
		ActivityData: data,
	})

	return newStatus, nil
}

func (s *interactionService) LikeActivity(ctx context.Context, userID, activityID uuid.UUID) (bool, error) {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return false, apperror.New(404, "activity not found", apperror.ErrNotFound)
	}

	wasLiked, err := s.likeRepo.IsLiked(ctx, userID, activityID)
	if err != nil {
		return false, err
	}

	delta := int64(1)
	if wasLiked {
		delta = -1
	}

	var liked bool
	countKey := fmt.Sprintf("activity_like_counts:%s", activityID)
	_, err = RunMutation(ctx, Mutation{
		Name: fmt.Sprintf("like %s %s", userID, activityID),
		Apply: func(ctx context.Context) error {
			s.bumpLikeCount(ctx, countKey, delta)
			return nil
		},
		Persist: func(ctx context.Context) error {
			liked, err = s.likeRepo.Toggle(ctx, userID, activityID)
			return err
		},
		Rollback: func(ctx context.Context) error {
			s.bumpLikeCount(ctx, countKey, -delta)
			return nil
		},
	})
	if err != nil {
		return false, err
	}

	if liked && activity.UserID != userID && s.notifications != nil {
		notifErr := s.notifications.CreateNotification(ctx, &model.Notification{
			UserID:     activity.UserID,
			ActorID:    userID,
			EntityID:   activityID.String(),
			EntityType: "activity",
			Type:       model.NotificationLikeActivity,
			Message:    "liked your activity",
		})
		if notifErr != nil {
			log.Printf("like: notification write failed: %v", notifErr)
		}
	}

	return liked, nil
}

func (s *interactionService) bumpLikeCount(ctx context.Context, key string, delta int64) {
	if s.redisClient == nil {
		return
	}
	if err := s.redisClient.IncrBy(ctx, key, delta).Err(); err != nil {
		log.Printf("like: count cache update failed: %v", err)
	}
}

// ActivityLikeCount prefers the cache and rebuilds it from the DB on a miss.
func (s *interactionService) ActivityLikeCount(ctx context.Context, activityID uuid.UUID) (int64, error) {
	key := fmt.Sprintf("activity_like_counts:%s", activityID)
	if s.redisClient != nil {
		val, err := s.redisClient.Get(ctx, key).Result()
		if err == nil {
			if count, parseErr := strconv.ParseInt(val, 10, 64); parseErr == nil {
				return count, nil
			}
		}
	}

	count, err := s.likeRepo.Count(ctx, activityID)
	if err != nil {
		return 0, err
	}
	if s.redisClient != nil {
		s.redisClient.Set(ctx, key, count, 7*24*time.Hour)
	}
	return count, nil
}

func (s *interactionService) CommentActivity(ctx context.Context, userID, activityID uuid.UUID, body string) (*model.Comment, error) {
	activity, err := s.activityRepo.FindByID(ctx, activityID)
	if err != nil {
		return nil, apperror.New(404, "activity not found", apperror.ErrNotFound)
	}

	body = s.sanitizer.Sanitize(body)
	if body == "" {
		return nil, apperror.ErrInvalidInput
	}

	comment := &model.Comment{
		UserID:     userID,
		ActivityID: activityID,
		MediaID:    activity.MediaID,
		Body:       body,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	commentID := comment.ID.String()
	s.recordActivity(ctx, &model.Activity{
		UserID:       userID,
		MediaID:      activity.MediaID,
		MediaType:    activity.MediaType,
		ActivityType: model.ActivityTypeCommented,
		ActivityData: model.ActivityData{CommentID: &commentID},
	})

	if activity.UserID != userID && s.notifications != nil {
		notifErr := s.notifications.CreateNotification(ctx, &model.Notification{
			UserID:     activity.UserID,
			ActorID:    userID,
			EntityID:   activityID.String(),
			EntityType: "activity",
			Type:       model.NotificationComment,
			Message:    "commented on your activity",
		})
		if notifErr != nil {
			log.Printf("comment: notification write failed: %v", notifErr)
		}
	}

	return comment, nil
}

func (s *interactionService) ListComments(ctx context.Context, activityID uuid.UUID) ([]model.Comment, error) {
	return s.commentRepo.ListByActivity(ctx, activityID)
}

// recordActivity appends to the immutable activity log. A failure here loses
// one feed row but must not fail the interaction that already committed.
func (s *interactionService) recordActivity(ctx context.Context, activity *model.Activity) {
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		log.Printf("failed to record activity for %s on %s: %v", activity.UserID, activity.MediaID, err)
	}
}
