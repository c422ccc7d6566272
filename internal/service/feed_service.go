package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/internal/repository"
	"wcircle.app/watchcircle/pkg/apperror"
)

const (
	FeedItemActivity    = "activity"
	FeedItemSuggestions = "follow_suggestions"

	// suggestionSlot is the fixed position of the suggestion card within the
	// first page.
	suggestionSlot = 2
	// suggestionPageInterval interleaves another card every 2nd page load.
	suggestionPageInterval = 2

	suggestionCardSize = 5

	feedSessionTTL   = 30 * time.Minute
	inflightGuardTTL = 10 * time.Second
)

// ActivityEntry is one enriched activity group, ready for display.
type ActivityEntry struct {
	Group        ActivityGroup       `json:"group"`
	Actor        UserRef             `json:"actor"`
	Social       *MediaSocialContext `json:"social,omitempty"`
	Comments     []model.Comment     `json:"comments"`
	LikeCount    int64               `json:"like_count"`
	ViewerLiked  bool                `json:"viewer_liked"`
}

// FeedItem is the tagged union the feed is made of. ID is stable for the
// lifetime of one page request; suggestion items are synthetic.
type FeedItem struct {
	Type        string             `json:"type"`
	ID          string             `json:"id"`
	Activity    *ActivityEntry     `json:"activity,omitempty"`
	Suggestions []FollowSuggestion `json:"suggestions,omitempty"`
}

type FeedPage struct {
	Items      []FeedItem `json:"items"`
	NextCursor *string    `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}

type FeedService interface {
	GetFeed(ctx context.Context, viewerID uuid.UUID, cursor *time.Time, pageSize int) (*FeedPage, error)
}

type feedService struct {
	activityRepo repository.ActivityRepository
	followRepo   repository.FollowRepository
	commentRepo  repository.CommentRepository
	likeRepo     repository.LikeRepository
	enricher     SocialEnricher
	suggestions  SuggestionService
	redisClient  *redis.Client
	pageSize     int
}

func NewFeedService(
	activityRepo repository.ActivityRepository,
	followRepo repository.FollowRepository,
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	enricher SocialEnricher,
	suggestions SuggestionService,
	redisClient *redis.Client,
	pageSize int,
) FeedService {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &feedService{
		activityRepo: activityRepo,
		followRepo:   followRepo,
		commentRepo:  commentRepo,
		likeRepo:     likeRepo,
		enricher:     enricher,
		suggestions:  suggestions,
		redisClient:  redisClient,
		pageSize:     pageSize,
	}
}

func (s *feedService) GetFeed(ctx context.Context, viewerID uuid.UUID, cursor *time.Time, pageSize int) (*FeedPage, error) {
	if viewerID == uuid.Nil {
		return nil, apperror.ErrUnauthorized
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = s.pageSize
	}

	// Reentrancy guard: an infinite-scroll trigger can fire twice before the
	// first load resolves. Second caller backs off instead of double-loading.
	release, err := s.acquireLoadGuard(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	defer release()

	friendIDs, err := s.followRepo.FollowingIDs(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve follow set: %w", err)
	}

	activities, err := s.activityRepo.ListForFeed(ctx, friendIDs, cursor, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	// A full batch implies more may exist. Heuristic, not an exact count.
	hasMore := len(activities) == pageSize

	var nextCursor *string
	if len(activities) > 0 {
		c := activities[len(activities)-1].CreatedAt.Format(time.RFC3339Nano)
		nextCursor = &c
	}

	groups := GroupActivities(activities)

	// Output order is fixed here, before any enrichment resolves.
	entries := make([]*ActivityEntry, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i := range groups {
		g.Go(func() error {
			entries[i] = s.buildEntry(gctx, groups[i], viewerID, friendIDs)
			return nil
		})
	}
	_ = g.Wait()

	items := make([]FeedItem, 0, len(entries)+1)
	for _, entry := range entries {
		if entry == nil {
			continue
		}
		items = append(items, FeedItem{
			Type:     FeedItemActivity,
			ID:       entry.Group.Primary.ID.String(),
			Activity: entry,
		})
	}

	loadCount := s.nextLoadCount(ctx, viewerID, cursor)
	if shouldInterleaveSuggestions(loadCount) {
		items = s.interleaveSuggestions(ctx, viewerID, items)
	}

	return &FeedPage{
		Items:      items,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (s *feedService) buildEntry(ctx context.Context, group ActivityGroup, viewerID uuid.UUID, friendIDs []uuid.UUID) *ActivityEntry {
	primary := group.Primary

	entry := &ActivityEntry{
		Group: group,
		Actor: UserRef{
			ID:        primary.UserID,
			Username:  primary.User.Username,
			AvatarURL: primary.User.AvatarURL,
		},
		Comments: []model.Comment{},
	}

	// Enrichment, comments and like state are independent; run them
	// concurrently and join before the entry is considered ready.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		entry.Social = s.enricher.EnrichWithFriends(gctx, primary.MediaID, primary.MediaType, viewerID, friendIDs)
		return nil
	})

	g.Go(func() error {
		comments, err := s.commentRepo.ListByActivity(gctx, primary.ID)
		if err != nil {
			log.Printf("feed: comments for %s failed: %v", primary.ID, err)
			return nil
		}
		// An empty result comes back as a nil slice; keep the non-nil
		// initializer so the entry serializes as [] rather than null.
		if comments != nil {
			entry.Comments = comments
		}
		return nil
	})

	g.Go(func() error {
		count, err := s.likeRepo.Count(gctx, primary.ID)
		if err != nil {
			log.Printf("feed: like count for %s failed: %v", primary.ID, err)
			return nil
		}
		entry.LikeCount = count
		return nil
	})

	g.Go(func() error {
		liked, err := s.likeRepo.IsLiked(gctx, viewerID, primary.ID)
		if err != nil {
			log.Printf("feed: viewer like for %s failed: %v", primary.ID, err)
			return nil
		}
		entry.ViewerLiked = liked
		return nil
	})

	_ = g.Wait()

	return entry
}

// nextLoadCount tracks how many pages this viewer has loaded this session.
// Without Redis only the first page (no cursor) gets a card.
func (s *feedService) nextLoadCount(ctx context.Context, viewerID uuid.UUID, cursor *time.Time) int64 {
	if s.redisClient == nil {
		if cursor == nil {
			return 1
		}
		return 0
	}

	key := fmt.Sprintf("feed_loads:%s", viewerID)
	count, err := s.redisClient.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("feed: load counter failed: %v", err)
		if cursor == nil {
			return 1
		}
		return 0
	}
	s.redisClient.Expire(ctx, key, feedSessionTTL)
	return count
}

// shouldInterleaveSuggestions: the first page always qualifies, then every
// 2nd page load after that (loads 1, 3, 5, ...).
func shouldInterleaveSuggestions(loadCount int64) bool {
	if loadCount <= 0 {
		return false
	}
	return loadCount == 1 || (loadCount-1)%suggestionPageInterval == 0
}

func (s *feedService) interleaveSuggestions(ctx context.Context, viewerID uuid.UUID, items []FeedItem) []FeedItem {
	if s.suggestions == nil {
		return items
	}

	candidates, err := s.suggestions.GetSuggestions(ctx, viewerID, suggestionCardSize)
	if err != nil {
		log.Printf("feed: suggestions failed: %v", err)
		return items
	}
	// No fresh candidates left: skip silently, no placeholder.
	if len(candidates) == 0 {
		return items
	}

	card := FeedItem{
		Type:        FeedItemSuggestions,
		ID:          fmt.Sprintf("suggestions-%s", uuid.New()),
		Suggestions: candidates,
	}

	return insertFeedItem(items, card, suggestionSlot)
}

func insertFeedItem(items []FeedItem, item FeedItem, at int) []FeedItem {
	if at >= len(items) {
		return append(items, item)
	}
	items = append(items, FeedItem{})
	copy(items[at+1:], items[at:])
	items[at] = item
	return items
}

func (s *feedService) acquireLoadGuard(ctx context.Context, viewerID uuid.UUID) (func(), error) {
	if s.redisClient == nil {
		return func() {}, nil
	}

	key := fmt.Sprintf("feed_inflight:%s", viewerID)
	wasSet, err := s.redisClient.SetNX(ctx, key, "1", inflightGuardTTL).Result()
	if err != nil {
		// Guard is best-effort; a Redis hiccup must not take the feed down.
		log.Printf("feed: in-flight guard failed: %v", err)
		return func() {}, nil
	}
	if !wasSet {
		return nil, apperror.ErrLoadInFlight
	}

	return func() {
		if err := s.redisClient.Del(context.WithoutCancel(ctx), key).Err(); err != nil {
			log.Printf("feed: failed to release in-flight guard: %v", err)
		}
	}, nil
}
