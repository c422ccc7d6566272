package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"wcircle.app/watchcircle/internal/metadata"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/internal/repository"
)

type UserRef struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	AvatarURL *string   `json:"avatar_url,omitempty"`
}

type RatingBreakdown struct {
	Meh  int `json:"meh"`
	Like int `json:"like"`
	Love int `json:"love"`
}

// FriendActivitySummary aggregates what the viewer's accepted follows are
// doing with one media item, plus the viewer's own rating and status.
type FriendActivitySummary struct {
	Watching    []UserRef       `json:"watching"`
	WantToWatch []UserRef       `json:"want_to_watch"`
	Watched     []UserRef       `json:"watched"`
	Ratings     RatingBreakdown `json:"ratings"`
	UserRating  *string         `json:"user_rating,omitempty"`
	UserStatus  *string         `json:"user_status,omitempty"`
}

type MediaSocialContext struct {
	Summary   FriendActivitySummary `json:"summary"`
	Platforms []string              `json:"platforms"`
}

type SocialEnricher interface {
	// Enrich resolves the viewer's accepted-follow set itself. Sub-query
	// failures degrade to empty fields, never to an error.
	Enrich(ctx context.Context, mediaID, mediaType string, viewerID uuid.UUID) *MediaSocialContext
	// EnrichWithFriends skips follow-set resolution; the feed assembler
	// resolves the set once per page and shares it across items.
	EnrichWithFriends(ctx context.Context, mediaID, mediaType string, viewerID uuid.UUID, friendIDs []uuid.UUID) *MediaSocialContext
}

type socialEnricher struct {
	followRepo  repository.FollowRepository
	statusRepo  repository.WatchStatusRepository
	ratingRepo  repository.RatingRepository
	userRepo    repository.UserRepository
	settingRepo repository.SettingRepository
	provider    metadata.Provider
	redisClient *redis.Client
	timeout     time.Duration
}

func NewSocialEnricher(
	followRepo repository.FollowRepository,
	statusRepo repository.WatchStatusRepository,
	ratingRepo repository.RatingRepository,
	userRepo repository.UserRepository,
	settingRepo repository.SettingRepository,
	provider metadata.Provider,
	redisClient *redis.Client,
	timeout time.Duration,
) SocialEnricher {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &socialEnricher{
		followRepo:  followRepo,
		statusRepo:  statusRepo,
		ratingRepo:  ratingRepo,
		userRepo:    userRepo,
		settingRepo: settingRepo,
		provider:    provider,
		redisClient: redisClient,
		timeout:     timeout,
	}
}

func (s *socialEnricher) Enrich(ctx context.Context, mediaID, mediaType string, viewerID uuid.UUID) *MediaSocialContext {
	friendIDs, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		log.Printf("enrich %s: failed to resolve follow set: %v", mediaID, err)
		friendIDs = nil
	}
	return s.EnrichWithFriends(ctx, mediaID, mediaType, viewerID, friendIDs)
}

func (s *socialEnricher) EnrichWithFriends(ctx context.Context, mediaID, mediaType string, viewerID uuid.UUID, friendIDs []uuid.UUID) *MediaSocialContext {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := &MediaSocialContext{}

	var (
		statuses     []model.WatchStatus
		ratings      []model.Rating
		viewerRating *model.Rating
		viewerStatus *model.WatchStatus
		platforms    []string
	)

	// Each sub-query degrades independently; goroutines log and return nil so
	// one failure never cancels the others.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		statuses, err = s.statusRepo.ListByMediaForUsers(gctx, mediaID, friendIDs)
		if err != nil {
			log.Printf("enrich %s: friend statuses failed: %v", mediaID, err)
			statuses = nil
		}
		return nil
	})

	g.Go(func() error {
		var err error
		ratings, err = s.ratingRepo.ListByMediaForUsers(gctx, mediaID, friendIDs)
		if err != nil {
			log.Printf("enrich %s: friend ratings failed: %v", mediaID, err)
			ratings = nil
		}
		return nil
	})

	g.Go(func() error {
		var err error
		viewerRating, err = s.ratingRepo.Get(gctx, viewerID, mediaID)
		if err != nil {
			log.Printf("enrich %s: viewer rating failed: %v", mediaID, err)
			viewerRating = nil
		}
		return nil
	})

	g.Go(func() error {
		var err error
		viewerStatus, err = s.statusRepo.Get(gctx, viewerID, mediaID)
		if err != nil {
			log.Printf("enrich %s: viewer status failed: %v", mediaID, err)
			viewerStatus = nil
		}
		return nil
	})

	g.Go(func() error {
		platforms = s.streamingPlatforms(gctx, mediaID, mediaType)
		return nil
	})

	_ = g.Wait()

	result.Summary = s.buildSummary(ctx, statuses, ratings)
	if viewerRating != nil {
		result.Summary.UserRating = &viewerRating.Value
	}
	if viewerStatus != nil {
		result.Summary.UserStatus = &viewerStatus.Status
	}
	result.Platforms = platforms

	return result
}

func (s *socialEnricher) buildSummary(ctx context.Context, statuses []model.WatchStatus, ratings []model.Rating) FriendActivitySummary {
	summary := FriendActivitySummary{
		Watching:    []UserRef{},
		WantToWatch: []UserRef{},
		Watched:     []UserRef{},
	}

	userIDs := make([]uuid.UUID, 0, len(statuses))
	for _, st := range statuses {
		userIDs = append(userIDs, st.UserID)
	}
	refs := s.userRefs(ctx, userIDs)

	for _, st := range statuses {
		ref, ok := refs[st.UserID]
		if !ok {
			ref = UserRef{ID: st.UserID}
		}
		switch st.Status {
		case model.StatusWatching:
			summary.Watching = append(summary.Watching, ref)
		case model.StatusWantToWatch:
			summary.WantToWatch = append(summary.WantToWatch, ref)
		case model.StatusWatched:
			summary.Watched = append(summary.Watched, ref)
		}
	}

	for _, r := range ratings {
		switch r.Value {
		case model.RatingMeh:
			summary.Ratings.Meh++
		case model.RatingLike:
			summary.Ratings.Like++
		case model.RatingLove:
			summary.Ratings.Love++
		}
	}

	return summary
}

func (s *socialEnricher) userRefs(ctx context.Context, ids []uuid.UUID) map[uuid.UUID]UserRef {
	refs := make(map[uuid.UUID]UserRef)
	if len(ids) == 0 {
		return refs
	}
	users, err := s.userRepo.ListByIDs(ctx, ids)
	if err != nil {
		log.Printf("enrich: user lookup failed: %v", err)
		return refs
	}
	for _, u := range users {
		refs[u.ID] = UserRef{ID: u.ID, Username: u.Username, AvatarURL: u.AvatarURL}
	}
	return refs
}

// streamingPlatforms fetches raw provider names, normalizes them, then
// filters against the admin allowlist. Errors degrade to an empty list.
func (s *socialEnricher) streamingPlatforms(ctx context.Context, mediaID, mediaType string) []string {
	if s.provider == nil {
		return nil
	}

	raw, err := s.provider.GetWatchProviders(ctx, mediaID, mediaType)
	if err != nil {
		log.Printf("enrich %s: watch providers failed: %v", mediaID, err)
		return nil
	}

	normalized := NormalizePlatforms(raw)
	return ApplyAllowlist(normalized, s.allowlist(ctx))
}

const allowlistCacheKey = "allowlist:streaming"

func (s *socialEnricher) allowlist(ctx context.Context) []string {
	if s.redisClient != nil {
		cached, err := s.redisClient.Get(ctx, allowlistCacheKey).Result()
		if err == nil {
			var entries []string
			if jsonErr := json.Unmarshal([]byte(cached), &entries); jsonErr == nil {
				return entries
			}
		}
	}

	setting, err := s.settingRepo.Get(ctx, model.SettingStreamingAllowlist)
	if err != nil {
		log.Printf("enrich: allowlist lookup failed: %v", err)
		return nil
	}
	if setting == nil || setting.Value == "" {
		return nil
	}

	var entries []string
	if err := json.Unmarshal([]byte(setting.Value), &entries); err != nil {
		log.Printf("enrich: allowlist is not valid JSON: %v", err)
		return nil
	}

	if s.redisClient != nil {
		s.redisClient.Set(ctx, allowlistCacheKey, setting.Value, 10*time.Minute)
	}

	return entries
}
