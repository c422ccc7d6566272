package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wcircle.app/watchcircle/internal/model"
	"wcircle.app/watchcircle/pkg/apperror"
)

func TestGetByUsernameUnknownUser(t *testing.T) {
	svc := NewProfileService(newFakeUserRepo(), newFakeFollowRepo(), nil, nil)

	_, err := svc.GetByUsername(context.Background(), uuid.Nil, "ghost")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestGetByUsernameSurfacesTasteMatch(t *testing.T) {
	viewer := uuid.New()
	owner := uuid.New()
	userRepo := newFakeUserRepo(
		&model.User{ID: viewer, Username: "viewer"},
		&model.User{ID: owner, Username: "owner"},
	)
	followRepo := newFakeFollowRepo()
	followRepo.edges[followEdgeKey{viewer, owner}] = &model.Follow{
		FollowerID: viewer,
		FolloweeID: owner,
		Status:     model.FollowStatusAccepted,
	}
	require.NoError(t, followRepo.UpsertTasteMatch(context.Background(), &model.TasteMatch{
		UserID:  viewer,
		OtherID: owner,
		Score:   80,
	}))

	svc := NewProfileService(userRepo, followRepo, nil, nil)
	view, err := svc.GetByUsername(context.Background(), viewer, "owner")
	require.NoError(t, err)

	assert.True(t, view.IsFollowing)
	require.NotNil(t, view.MatchPercentage)
	assert.Equal(t, 80, *view.MatchPercentage)
}

func TestGetByUsernameNoTasteMatchWithoutFollow(t *testing.T) {
	viewer := uuid.New()
	owner := uuid.New()
	userRepo := newFakeUserRepo(
		&model.User{ID: viewer, Username: "viewer"},
		&model.User{ID: owner, Username: "owner"},
	)
	followRepo := newFakeFollowRepo()
	require.NoError(t, followRepo.UpsertTasteMatch(context.Background(), &model.TasteMatch{
		UserID:  viewer,
		OtherID: owner,
		Score:   80,
	}))

	svc := NewProfileService(userRepo, followRepo, nil, nil)
	view, err := svc.GetByUsername(context.Background(), viewer, "owner")
	require.NoError(t, err)

	assert.False(t, view.IsFollowing)
	assert.Nil(t, view.MatchPercentage)
}
