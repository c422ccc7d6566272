package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/internal/repository"
)

type SuggestionStats struct {
	SharedLoved     int `json:"shared_loved"`
	FriendsInCommon int `json:"friends_in_common"`
}

type FollowSuggestion struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Username        string          `json:"username"`
	Avatar          *string         `json:"avatar,omitempty"`
	MatchPercentage int             `json:"match_percentage"`
	Stats           SuggestionStats `json:"stats"`
	FriendsInCommon int             `json:"friends_in_common"`
}

type SuggestionService interface {
	// GetSuggestions returns fresh candidates for one suggestion card and
	// marks them as shown for the rest of the session. An empty result means
	// the card is skipped, never a placeholder.
	GetSuggestions(ctx context.Context, viewerID uuid.UUID, limit int) ([]FollowSuggestion, error)
	// Dismiss hides a candidate for the rest of the session only; dismissal
	// state is never persisted.
	Dismiss(ctx context.Context, viewerID, targetID uuid.UUID) error
}

type suggestionService struct {
	userRepo    repository.UserRepository
	followRepo  repository.FollowRepository
	ratingRepo  repository.RatingRepository
	search      SearchService
	redisClient *redis.Client
}

func NewSuggestionService(
	userRepo repository.UserRepository,
	followRepo repository.FollowRepository,
	ratingRepo repository.RatingRepository,
	search SearchService,
	redisClient *redis.Client,
) SuggestionService {
	return &suggestionService{
		userRepo:    userRepo,
		followRepo:  followRepo,
		ratingRepo:  ratingRepo,
		search:      search,
		redisClient: redisClient,
	}
}

const (
	suggestionPoolSize   = 50
	suggestionSessionTTL = 30 * time.Minute
)

func dismissedKey(viewerID uuid.UUID) string {
	return fmt.Sprintf("suggest_dismissed:%s", viewerID)
}

func shownKey(viewerID uuid.UUID) string {
	return fmt.Sprintf("suggest_shown:%s", viewerID)
}

func (s *suggestionService) GetSuggestions(ctx context.Context, viewerID uuid.UUID, limit int) ([]FollowSuggestion, error) {
	if limit <= 0 {
		limit = 5
	}

	candidates, err := s.candidatePool(ctx)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	followedIDs, err := s.followRepo.FollowedIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	excluded := make(map[uuid.UUID]bool, len(followedIDs)+1)
	excluded[viewerID] = true
	for _, id := range followedIDs {
		excluded[id] = true
	}
	for _, id := range s.sessionSet(ctx, dismissedKey(viewerID)) {
		excluded[id] = true
	}
	for _, id := range s.sessionSet(ctx, shownKey(viewerID)) {
		excluded[id] = true
	}

	fresh := filterSuggestionCandidates(candidates, excluded)
	if len(fresh) == 0 {
		return nil, nil
	}
	if len(fresh) > limit {
		fresh = fresh[:limit]
	}

	viewerLoved, err := s.ratingRepo.ListLovedMediaIDs(ctx, viewerID)
	if err != nil {
		log.Printf("suggestions: viewer loved list failed: %v", err)
		viewerLoved = nil
	}
	viewerFollowing, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		log.Printf("suggestions: viewer following failed: %v", err)
		viewerFollowing = nil
	}

	suggestions := make([]FollowSuggestion, 0, len(fresh))
	shown := make([]interface{}, 0, len(fresh))
	for _, candidate := range fresh {
		suggestion := s.buildSuggestion(ctx, candidate, viewerLoved, viewerFollowing)
		suggestions = append(suggestions, suggestion)
		shown = append(shown, candidate.ID.String())
	}

	s.markShown(ctx, viewerID, shown)

	return suggestions, nil
}

func (s *suggestionService) Dismiss(ctx context.Context, viewerID, targetID uuid.UUID) error {
	if s.redisClient == nil {
		return nil
	}
	key := dismissedKey(viewerID)
	if err := s.redisClient.SAdd(ctx, key, targetID.String()).Err(); err != nil {
		return err
	}
	return s.redisClient.Expire(ctx, key, suggestionSessionTTL).Err()
}

// candidatePool prefers the search index; when search is down or empty it
// falls back to recently registered users.
func (s *suggestionService) candidatePool(ctx context.Context) ([]model.User, error) {
	if s.search != nil {
		ids, err := s.search.SearchUsers("", suggestionPoolSize)
		if err != nil {
			log.Printf("suggestions: search index unavailable, falling back to recent users: %v", err)
		} else if len(ids) > 0 {
			users, err := s.userRepo.ListByIDs(ctx, ids)
			if err == nil && len(users) > 0 {
				return users, nil
			}
		}
	}
	return s.userRepo.ListRecent(ctx, suggestionPoolSize)
}

func (s *suggestionService) buildSuggestion(ctx context.Context, candidate model.User, viewerLoved []string, viewerFollowing []uuid.UUID) FollowSuggestion {
	shared := 0
	candidateLoved, err := s.ratingRepo.ListLovedMediaIDs(ctx, candidate.ID)
	if err == nil {
		shared = sharedCount(viewerLoved, candidateLoved)
	}

	inCommon := int64(0)
	if count, err := s.followRepo.CountFollowersAmong(ctx, candidate.ID, viewerFollowing); err == nil {
		inCommon = count
	}

	name := candidate.Username
	if candidate.Profile != nil && candidate.Profile.DisplayName != "" {
		name = candidate.Profile.DisplayName
	}

	return FollowSuggestion{
		ID:              candidate.ID,
		Name:            name,
		Username:        candidate.Username,
		Avatar:          candidate.AvatarURL,
		MatchPercentage: matchPercentage(candidate.ID, shared),
		Stats: SuggestionStats{
			SharedLoved:     shared,
			FriendsInCommon: int(inCommon),
		},
		FriendsInCommon: int(inCommon),
	}
}

func (s *suggestionService) sessionSet(ctx context.Context, key string) []uuid.UUID {
	if s.redisClient == nil {
		return nil
	}
	members, err := s.redisClient.SMembers(ctx, key).Result()
	if err != nil {
		log.Printf("suggestions: failed to read %s: %v", key, err)
		return nil
	}
	ids := make([]uuid.UUID, 0, len(members))
	for _, m := range members {
		if id, err := uuid.Parse(m); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *suggestionService) markShown(ctx context.Context, viewerID uuid.UUID, ids []interface{}) {
	if s.redisClient == nil || len(ids) == 0 {
		return
	}
	key := shownKey(viewerID)
	if err := s.redisClient.SAdd(ctx, key, ids...).Err(); err != nil {
		log.Printf("suggestions: failed to mark shown: %v", err)
		return
	}
	s.redisClient.Expire(ctx, key, suggestionSessionTTL)
}

func filterSuggestionCandidates(candidates []model.User, excluded map[uuid.UUID]bool) []model.User {
	var out []model.User
	for _, c := range candidates {
		if excluded[c.ID] {
			continue
		}
		out = append(out, c)
	}
	return out
}

func sharedCount(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, v := range a {
		set[v] = true
	}
	count := 0
	for _, v := range b {
		if set[v] {
			count++
		}
	}
	return count
}

// matchPercentage is a display heuristic, not a recommendation model. Shared
// loved titles push the score up; otherwise a stable pseudo-score derived
// from the candidate id keeps cards from all reading the same.
func matchPercentage(candidateID uuid.UUID, sharedLoved int) int {
	if sharedLoved > 0 {
		score := 50 + sharedLoved*10
		if score > 99 {
			score = 99
		}
		return score
	}
	return 35 + int(candidateID[0])%41 // 35..75
}
