package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/internal/repository"
	"wcircle.app/watchcircle/pkg/apperror"
)

type FollowService interface {
	// Follow creates or refreshes a follow edge. Returns the resulting edge
	// status: 'pending' for private targets, 'accepted' otherwise.
	Follow(ctx context.Context, followerID, targetID uuid.UUID) (string, error)
	Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error
	AcceptRequest(ctx context.Context, followeeID, followerID uuid.UUID) error
	ListRequests(ctx context.Context, followeeID uuid.UUID) ([]model.Follow, error)
}

type followService struct {
	followRepo    repository.FollowRepository
	userRepo      repository.UserRepository
	ratingRepo    repository.RatingRepository
	notifications NotificationService
	state         DisplayStateStore
}

func NewFollowService(
	followRepo repository.FollowRepository,
	userRepo repository.UserRepository,
	ratingRepo repository.RatingRepository,
	notifications NotificationService,
	state DisplayStateStore,
) FollowService {
	return &followService{
		followRepo:    followRepo,
		userRepo:      userRepo,
		ratingRepo:    ratingRepo,
		notifications: notifications,
		state:         state,
	}
}

const displayStateTTL = 24 * time.Hour

func (s *followService) Follow(ctx context.Context, followerID, targetID uuid.UUID) (string, error) {
	if followerID == targetID {
		return "", apperror.ErrSelfFollow
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return "", apperror.New(404, "user not found", apperror.ErrNotFound)
	}

	desired := model.FollowStatusAccepted
	if target.IsPrivate {
		desired = model.FollowStatusPending
	}

	stateKey := followStateKey(followerID, targetID)
	prevState, hadPrev, err := s.state.Get(ctx, stateKey)
	if err != nil {
		log.Printf("follow: display state read failed: %v", err)
	}

	_, err = RunMutation(ctx, Mutation{
		Name: fmt.Sprintf("follow %s -> %s", followerID, targetID),
		Apply: func(ctx context.Context) error {
			return s.state.Set(ctx, stateKey, desired, displayStateTTL)
		},
		Persist: func(ctx context.Context) error {
			return s.followRepo.Upsert(ctx, &model.Follow{
				FollowerID: followerID,
				FolloweeID: targetID,
				Status:     desired,
			})
		},
		Rollback: func(ctx context.Context) error {
			if hadPrev {
				return s.state.Set(ctx, stateKey, prevState, displayStateTTL)
			}
			return s.state.Delete(ctx, stateKey)
		},
	})
	if err != nil {
		return "", err
	}

	// Notification is a second, independent write. If it fails the follow
	// stays committed; the gap is accepted rather than reconciled.
	s.notifyFollow(ctx, followerID, targetID, desired)

	if desired == model.FollowStatusAccepted {
		s.cacheTasteMatch(ctx, followerID, targetID)
	}

	return desired, nil
}

// cacheTasteMatch recomputes the shared-taste score for a newly accepted
// edge from loved-title overlap. Best-effort: the follow stands even when
// the score write fails.
func (s *followService) cacheTasteMatch(ctx context.Context, followerID, targetID uuid.UUID) {
	if s.ratingRepo == nil {
		return
	}

	mine, err := s.ratingRepo.ListLovedMediaIDs(ctx, followerID)
	if err != nil {
		log.Printf("taste match: loved list for %s failed: %v", followerID, err)
		return
	}
	theirs, err := s.ratingRepo.ListLovedMediaIDs(ctx, targetID)
	if err != nil {
		log.Printf("taste match: loved list for %s failed: %v", targetID, err)
		return
	}

	score := matchPercentage(targetID, sharedCount(mine, theirs))
	if err := s.followRepo.UpsertTasteMatch(ctx, &model.TasteMatch{
		UserID:  followerID,
		OtherID: targetID,
		Score:   score,
	}); err != nil {
		log.Printf("taste match: upsert for %s -> %s failed: %v", followerID, targetID, err)
		return
	}
	if err := s.state.Set(ctx, tasteMatchKey(followerID, targetID), strconv.Itoa(score), displayStateTTL); err != nil {
		log.Printf("taste match: display state write failed: %v", err)
	}
}

func (s *followService) notifyFollow(ctx context.Context, followerID, targetID uuid.UUID, status string) {
	if s.notifications == nil {
		return
	}

	notifType := model.NotificationFollow
	message := "started following you"
	if status == model.FollowStatusPending {
		notifType = model.NotificationFollowRequest
		message = "requested to follow you"
	}

	err := s.notifications.CreateNotification(ctx, &model.Notification{
		UserID:     targetID,
		ActorID:    followerID,
		EntityID:   followerID.String(),
		EntityType: "user",
		Type:       notifType,
		Message:    message,
	})
	if err != nil {
		log.Printf("follow: notification write failed (follow committed): %v", err)
	}
}

func (s *followService) Unfollow(ctx context.Context, followerID, targetID uuid.UUID) error {
	edge, err := s.followRepo.Find(ctx, followerID, targetID)
	if err != nil {
		return err
	}
	if edge == nil {
		return apperror.ErrNotFound
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return err
	}

	followKey := followStateKey(followerID, targetID)
	tasteKey := tasteMatchKey(followerID, targetID)

	prevScore, hadScore, err := s.state.Get(ctx, tasteKey)
	if err != nil {
		log.Printf("unfollow: taste match read failed: %v", err)
	}

	_, err = RunMutation(ctx, Mutation{
		Name: fmt.Sprintf("unfollow %s -> %s", followerID, targetID),
		Apply: func(ctx context.Context) error {
			if err := s.state.Delete(ctx, followKey); err != nil {
				return err
			}
			if err := s.state.Delete(ctx, tasteKey); err != nil {
				return err
			}
			// Private targets also lose cached activity visibility.
			if target.IsPrivate {
				return s.state.Delete(ctx, visibilityKey(followerID, targetID))
			}
			return nil
		},
		Persist: func(ctx context.Context) error {
			if err := s.followRepo.Delete(ctx, followerID, targetID); err != nil {
				return err
			}
			return s.followRepo.DeleteTasteMatch(ctx, followerID, targetID)
		},
		Rollback: func(ctx context.Context) error {
			// Restore the displayed follow state and the cached score exactly
			// as they were before the action.
			if err := s.state.Set(ctx, followKey, edge.Status, displayStateTTL); err != nil {
				return err
			}
			if hadScore {
				return s.state.Set(ctx, tasteKey, prevScore, displayStateTTL)
			}
			return nil
		},
	})
	return err
}

func (s *followService) AcceptRequest(ctx context.Context, followeeID, followerID uuid.UUID) error {
	edge, err := s.followRepo.Find(ctx, followerID, followeeID)
	if err != nil {
		return err
	}
	if edge == nil || edge.Status != model.FollowStatusPending {
		return apperror.ErrNotFound
	}

	if err := s.followRepo.Accept(ctx, followerID, followeeID); err != nil {
		return err
	}

	s.cacheTasteMatch(ctx, followerID, followeeID)

	if s.notifications != nil {
		err := s.notifications.CreateNotification(ctx, &model.Notification{
			UserID:     followerID,
			ActorID:    followeeID,
			EntityID:   followeeID.String(),
			EntityType: "user",
			Type:       model.NotificationFollowAccepted,
			Message:    "accepted your follow request",
		})
		if err != nil {
			log.Printf("accept request: notification write failed: %v", err)
		}
	}

	return nil
}

func (s *followService) ListRequests(ctx context.Context, followeeID uuid.UUID) ([]model.Follow, error) {
	return s.followRepo.ListRequests(ctx, followeeID)
}
