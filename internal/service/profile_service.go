package service

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/internal/repository"
	"wcircle.app/watchcircle/pkg/apperror"
	"wcircle.app/watchcircle/pkg/storage"
)

type UpdateProfileInput struct {
	DisplayName *string
	Bio         *string
	IsPrivate   *bool
}

type ProfileView struct {
	ID            uuid.UUID `json:"id"`
	Username      string    `json:"username"`
	DisplayName   string    `json:"display_name"`
	Bio           *string   `json:"bio,omitempty"`
	AvatarURL     *string   `json:"avatar_url,omitempty"`
	IsPrivate     bool      `json:"is_private"`
	FollowerCount int64     `json:"follower_count"`
	IsFollowing   bool      `json:"is_following"`
	IsPending     bool      `json:"is_pending"`
	// MatchPercentage is the cached taste score for followed users; absent
	// until the follow is accepted and the score computed.
	MatchPercentage *int `json:"match_percentage,omitempty"`
}

type ProfileService interface {
	GetByUsername(ctx context.Context, viewerID uuid.UUID, username string) (*ProfileView, error)
	GetMe(ctx context.Context, userID uuid.UUID) (*model.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*model.User, error)
	UploadAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, fileName string) (string, error)
}

type profileService struct {
	userRepo   repository.UserRepository
	followRepo repository.FollowRepository
	store      storage.ImageStorage
	search     SearchService
}

func NewProfileService(userRepo repository.UserRepository, followRepo repository.FollowRepository, store storage.ImageStorage, search SearchService) ProfileService {
	return &profileService{
		userRepo:   userRepo,
		followRepo: followRepo,
		store:      store,
		search:     search,
	}
}

func (s *profileService) GetByUsername(ctx context.Context, viewerID uuid.UUID, username string) (*ProfileView, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "user not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	view := &ProfileView{
		ID:        user.ID,
		Username:  user.Username,
		AvatarURL: user.AvatarURL,
		IsPrivate: user.IsPrivate,
	}
	if user.Profile != nil {
		view.DisplayName = user.Profile.DisplayName
		view.Bio = user.Profile.Bio
	}

	if count, err := s.followRepo.CountFollowers(ctx, user.ID); err == nil {
		view.FollowerCount = count
	}

	if viewerID != uuid.Nil && viewerID != user.ID {
		edge, err := s.followRepo.Find(ctx, viewerID, user.ID)
		if err == nil && edge != nil {
			view.IsFollowing = edge.Status == model.FollowStatusAccepted
			view.IsPending = edge.Status == model.FollowStatusPending
		}
		if view.IsFollowing {
			if match, err := s.followRepo.GetTasteMatch(ctx, viewerID, user.ID); err == nil && match != nil {
				score := match.Score
				view.MatchPercentage = &score
			}
		}
	}

	return view, nil
}

func (s *profileService) GetMe(ctx context.Context, userID uuid.UUID) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "user not found", apperror.ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperror.New(404, "user not found", apperror.ErrNotFound)
		}
		return nil, err
	}

	profile := user.Profile
	if profile == nil {
		profile = &model.Profile{UserID: user.ID, DisplayName: user.Username}
	}
	if input.DisplayName != nil {
		profile.DisplayName = *input.DisplayName
	}
	if input.Bio != nil {
		profile.Bio = input.Bio
	}
	if err := s.userRepo.UpsertProfile(ctx, profile); err != nil {
		return nil, err
	}
	user.Profile = profile

	if input.IsPrivate != nil && *input.IsPrivate != user.IsPrivate {
		if err := s.userRepo.SetPrivacy(ctx, userID, *input.IsPrivate); err != nil {
			return nil, err
		}
		user.IsPrivate = *input.IsPrivate
	}

	if s.search != nil {
		if err := s.search.IndexUser(user); err != nil {
			log.Printf("profile: failed to reindex user %s: %v", user.ID, err)
		}
	}

	return user, nil
}

func (s *profileService) UploadAvatar(ctx context.Context, userID uuid.UUID, file io.Reader, fileName string) (string, error) {
	if s.store == nil {
		return "", apperror.New(500, "image storage is not configured", apperror.ErrInternal)
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperror.New(404, "user not found", apperror.ErrNotFound)
		}
		return "", err
	}

	url, err := s.store.UploadImage(ctx, file, "avatars", fileName)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateAvatar(ctx, userID, url); err != nil {
		return "", err
	}

	// Old avatar cleanup is best-effort.
	if user.AvatarURL != nil && *user.AvatarURL != "" {
		if err := s.store.DeleteImage(ctx, *user.AvatarURL); err != nil {
			log.Printf("avatar: failed to delete previous image for %s: %v", userID, err)
		}
	}

	user.AvatarURL = &url
	if s.search != nil {
		if err := s.search.IndexUser(user); err != nil {
			log.Printf("avatar: failed to reindex user %s: %v", user.ID, err)
		}
	}

	return url, nil
}
