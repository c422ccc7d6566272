package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/pkg/apperror"
)

type feedFixture struct {
	activities  *fakeActivityRepo
	follows     *fakeFollowRepo
	comments    *fakeCommentRepo
	likes       *fakeLikeRepo
	suggestions *fakeSuggestions
	svc         FeedService
}

func newFeedFixture(pageSize int) *feedFixture {
	f := &feedFixture{
		activities:  newFakeActivityRepo(),
		follows:     newFakeFollowRepo(),
		comments:    &fakeCommentRepo{},
		likes:       newFakeLikeRepo(),
		suggestions: &fakeSuggestions{},
	}
	f.svc = NewFeedService(
		f.activities, f.follows, f.comments, f.likes,
		&fakeEnricher{context: &MediaSocialContext{Platforms: []string{"Netflix"}}},
		f.suggestions, nil, pageSize,
	)
	return f
}

func feedActivities(friend uuid.UUID, n int) []model.Activity {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	acts := make([]model.Activity, 0, n)
	for i := 0; i < n; i++ {
		value := "love"
		acts = append(acts, model.Activity{
			ID:           uuid.New(),
			UserID:       friend,
			User:         model.User{ID: friend, Username: "friend"},
			MediaID:      "m" + string(rune('a'+i)),
			MediaType:    "movie",
			ActivityType: model.ActivityTypeRated,
			ActivityData: model.ActivityData{Rating: &value},
			// Newest first, far enough apart that nothing groups.
			CreatedAt: base.Add(-time.Duration(i) * time.Hour),
		})
	}
	return acts
}

func TestGetFeedRequiresViewer(t *testing.T) {
	f := newFeedFixture(20)
	_, err := f.svc.GetFeed(context.Background(), uuid.Nil, nil, 0)
	assert.ErrorIs(t, err, apperror.ErrUnauthorized)
}

func TestGetFeedFirstPageInterleavesSuggestions(t *testing.T) {
	f := newFeedFixture(20)
	friend := uuid.New()
	f.follows.following = []uuid.UUID{friend}
	f.activities.feed = feedActivities(friend, 5)
	f.suggestions.suggestions = []FollowSuggestion{{ID: uuid.New(), Username: "u1"}}

	page, err := f.svc.GetFeed(context.Background(), uuid.New(), nil, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 6)

	// Card sits at index 2; everything else keeps feed order.
	assert.Equal(t, FeedItemSuggestions, page.Items[2].Type)
	for i, item := range page.Items {
		if i == 2 {
			continue
		}
		assert.Equal(t, FeedItemActivity, item.Type)
	}
	assert.False(t, page.HasMore)
	require.NotNil(t, page.NextCursor)

	last := f.activities.feed[len(f.activities.feed)-1]
	assert.Equal(t, last.CreatedAt.Format(time.RFC3339Nano), *page.NextCursor)
}

func TestGetFeedSuggestionCardAppendsOnShortPage(t *testing.T) {
	f := newFeedFixture(20)
	friend := uuid.New()
	f.follows.following = []uuid.UUID{friend}
	f.activities.feed = feedActivities(friend, 1)
	f.suggestions.suggestions = []FollowSuggestion{{ID: uuid.New(), Username: "u1"}}

	page, err := f.svc.GetFeed(context.Background(), uuid.New(), nil, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, FeedItemActivity, page.Items[0].Type)
	assert.Equal(t, FeedItemSuggestions, page.Items[1].Type)
}

func TestGetFeedSkipsCardWithoutCandidates(t *testing.T) {
	f := newFeedFixture(20)
	friend := uuid.New()
	f.follows.following = []uuid.UUID{friend}
	f.activities.feed = feedActivities(friend, 3)

	page, err := f.svc.GetFeed(context.Background(), uuid.New(), nil, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 3)
	for _, item := range page.Items {
		assert.Equal(t, FeedItemActivity, item.Type)
	}
}

func TestGetFeedLaterPagesSkipSuggestionsWithoutSession(t *testing.T) {
	// Without Redis only the first page (no cursor) counts as load 1.
	f := newFeedFixture(20)
	friend := uuid.New()
	f.follows.following = []uuid.UUID{friend}
	f.activities.feed = feedActivities(friend, 3)
	f.suggestions.suggestions = []FollowSuggestion{{ID: uuid.New(), Username: "u1"}}

	cursor := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	page, err := f.svc.GetFeed(context.Background(), uuid.New(), &cursor, 0)
	require.NoError(t, err)
	for _, item := range page.Items {
		assert.Equal(t, FeedItemActivity, item.Type)
	}
}

func TestGetFeedHasMoreOnFullBatch(t *testing.T) {
	f := newFeedFixture(3)
	friend := uuid.New()
	f.follows.following = []uuid.UUID{friend}
	f.activities.feed = feedActivities(friend, 3)

	page, err := f.svc.GetFeed(context.Background(), uuid.New(), nil, 3)
	require.NoError(t, err)
	assert.True(t, page.HasMore)
}

func TestGetFeedEmpty(t *testing.T) {
	f := newFeedFixture(20)

	page, err := f.svc.GetFeed(context.Background(), uuid.New(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextCursor)
}

func TestGetFeedEntriesCarryEnrichment(t *testing.T) {
	f := newFeedFixture(20)
	friend := uuid.New()
	f.follows.following = []uuid.UUID{friend}
	f.activities.feed = feedActivities(friend, 1)

	page, err := f.svc.GetFeed(context.Background(), uuid.New(), nil, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	entry := page.Items[0].Activity
	require.NotNil(t, entry)
	assert.Equal(t, "friend", entry.Actor.Username)
	require.NotNil(t, entry.Social)
	assert.Equal(t, []string{"Netflix"}, entry.Social.Platforms)
	assert.NotNil(t, entry.Comments)
}

func TestGetFeedCommentsNeverNull(t *testing.T) {
	f := newFeedFixture(20)
	friend := uuid.New()
	f.follows.following = []uuid.UUID{friend}
	f.activities.feed = feedActivities(friend, 2)

	// One activity has a comment, the other has none.
	commented := f.activities.feed[0]
	require.NoError(t, f.comments.Create(context.Background(), &model.Comment{
		UserID:     friend,
		ActivityID: commented.ID,
		MediaID:    commented.MediaID,
		Body:       "seen it twice",
	}))

	page, err := f.svc.GetFeed(context.Background(), uuid.New(), nil, 0)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	withComment := page.Items[0].Activity
	require.NotNil(t, withComment)
	require.Len(t, withComment.Comments, 1)
	assert.Equal(t, "seen it twice", withComment.Comments[0].Body)

	// The empty case must stay a non-nil slice so it serializes as [].
	without := page.Items[1].Activity
	require.NotNil(t, without)
	require.NotNil(t, without.Comments)
	assert.Empty(t, without.Comments)
}

func TestShouldInterleaveSuggestions(t *testing.T) {
	tests := []struct {
		load int64
		want bool
	}{
		{0, false},
		{1, true},
		{2, false},
		{3, true},
		{4, false},
		{5, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, shouldInterleaveSuggestions(tt.load), "load %d", tt.load)
	}
}

func TestInsertFeedItem(t *testing.T) {
	items := []FeedItem{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	t.Run("inserts in the middle", func(t *testing.T) {
		got := insertFeedItem(append([]FeedItem(nil), items...), FeedItem{ID: "x"}, 1)
		require.Len(t, got, 4)
		assert.Equal(t, []string{"a", "x", "b", "c"}, feedItemIDs(got))
	})

	t.Run("appends when index is past the end", func(t *testing.T) {
		got := insertFeedItem(append([]FeedItem(nil), items...), FeedItem{ID: "x"}, 10)
		assert.Equal(t, []string{"a", "b", "c", "x"}, feedItemIDs(got))
	})

	t.Run("inserts into empty slice", func(t *testing.T) {
		got := insertFeedItem(nil, FeedItem{ID: "x"}, 2)
		assert.Equal(t, []string{"x"}, feedItemIDs(got))
	})
}

func feedItemIDs(items []FeedItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}
