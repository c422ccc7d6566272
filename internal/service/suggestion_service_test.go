package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wcircle.app/watchcircle/internal/model"
)

func TestFilterSuggestionCandidates(t *testing.T) {
	keep := model.User{ID: uuid.New(), Username: "keep"}
	dropped := model.User{ID: uuid.New(), Username: "dropped"}

	out := filterSuggestionCandidates(
		[]model.User{keep, dropped},
		map[uuid.UUID]bool{dropped.ID: true},
	)

	require.Len(t, out, 1)
	assert.Equal(t, keep.ID, out[0].ID)
}

func TestSharedCount(t *testing.T) {
	assert.Equal(t, 2, sharedCount([]string{"m1", "m2", "m3"}, []string{"m2", "m3", "m4"}))
	assert.Equal(t, 0, sharedCount(nil, []string{"m1"}))
	assert.Equal(t, 0, sharedCount([]string{"m1"}, nil))
}

func TestMatchPercentage(t *testing.T) {
	id := uuid.New()

	t.Run("shared loved titles push the score", func(t *testing.T) {
		assert.Equal(t, 60, matchPercentage(id, 1))
		assert.Equal(t, 90, matchPercentage(id, 4))
	})

	t.Run("caps at 99", func(t *testing.T) {
		assert.Equal(t, 99, matchPercentage(id, 50))
	})

	t.Run("fallback score is stable and bounded", func(t *testing.T) {
		first := matchPercentage(id, 0)
		assert.Equal(t, first, matchPercentage(id, 0))
		assert.GreaterOrEqual(t, first, 35)
		assert.LessOrEqual(t, first, 75)
	})
}

func TestGetSuggestionsExcludesViewerAndFollowed(t *testing.T) {
	viewer := &model.User{ID: uuid.New(), Username: "viewer"}
	followed := &model.User{ID: uuid.New(), Username: "followed"}
	fresh := &model.User{ID: uuid.New(), Username: "fresh"}

	userRepo := newFakeUserRepo(viewer, followed, fresh)
	followRepo := newFakeFollowRepo()
	followRepo.followed = []uuid.UUID{followed.ID}

	svc := NewSuggestionService(userRepo, followRepo, newFakeRatingRepo(), nil, nil)

	suggestions, err := svc.GetSuggestions(context.Background(), viewer.ID, 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, fresh.ID, suggestions[0].ID)
	assert.Equal(t, "fresh", suggestions[0].Username)
}

func TestGetSuggestionsEmptyPool(t *testing.T) {
	viewer := uuid.New()
	svc := NewSuggestionService(newFakeUserRepo(), newFakeFollowRepo(), newFakeRatingRepo(), nil, nil)

	suggestions, err := svc.GetSuggestions(context.Background(), viewer, 5)
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}

func TestGetSuggestionsScoresSharedTaste(t *testing.T) {
	viewer := &model.User{ID: uuid.New(), Username: "viewer"}
	candidate := &model.User{ID: uuid.New(), Username: "candidate"}

	userRepo := newFakeUserRepo(viewer, candidate)
	ratings := newFakeRatingRepo()
	ratings.loved[viewer.ID] = []string{"m1", "m2"}
	ratings.loved[candidate.ID] = []string{"m2", "m3"}

	svc := NewSuggestionService(userRepo, newFakeFollowRepo(), ratings, nil, nil)

	suggestions, err := svc.GetSuggestions(context.Background(), viewer.ID, 5)
	require.NoError(t, err)

	var got *FollowSuggestion
	for i := range suggestions {
		if suggestions[i].ID == candidate.ID {
			got = &suggestions[i]
		}
	}
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Stats.SharedLoved)
	assert.Equal(t, 60, got.MatchPercentage)
}

func TestGetSuggestionsUsesDisplayName(t *testing.T) {
	viewer := &model.User{ID: uuid.New(), Username: "viewer"}
	candidate := &model.User{
		ID:       uuid.New(),
		Username: "candidate",
		Profile:  &model.Profile{DisplayName: "Candy Date"},
	}

	svc := NewSuggestionService(newFakeUserRepo(viewer, candidate), newFakeFollowRepo(), newFakeRatingRepo(), nil, nil)

	suggestions, err := svc.GetSuggestions(context.Background(), viewer.ID, 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Candy Date", suggestions[0].Name)
	assert.Equal(t, "candidate", suggestions[0].Username)
}
