package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"wcircle.app/watchcircle/pkg/apperror"
)

func TestRunMutationCommits(t *testing.T) {
	var applied, persisted bool

	result, err := RunMutation(context.Background(), Mutation{
		Name:    "test",
		Apply:   func(ctx context.Context) error { applied = true; return nil },
		Persist: func(ctx context.Context) error { persisted = true; return nil },
		Rollback: func(ctx context.Context) error {
			t.Fatal("rollback must not run on success")
			return nil
		},
	})

	require.NoError(t, err)
	assert.True(t, applied)
	assert.True(t, persisted)
	assert.Equal(t, MutationCommitted, result.State)
	assert.Equal(t, []MutationState{MutationIdle, MutationPending, MutationCommitted}, result.Transitions)
}

func TestRunMutationRollsBackOnPersistFailure(t *testing.T) {
	var rolledBack bool

	result, err := RunMutation(context.Background(), Mutation{
		Name:     "test",
		Apply:    func(ctx context.Context) error { return nil },
		Persist:  func(ctx context.Context) error { return errors.New("db down") },
		Rollback: func(ctx context.Context) error { rolledBack = true; return nil },
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrMutationRolledBack)
	assert.True(t, rolledBack)
	assert.Equal(t, MutationRolledBack, result.State)
	assert.Equal(t, []MutationState{MutationIdle, MutationPending, MutationRolledBack}, result.Transitions)
}

func TestRunMutationApplyFailureStaysIdle(t *testing.T) {
	result, err := RunMutation(context.Background(), Mutation{
		Name:  "test",
		Apply: func(ctx context.Context) error { return errors.New("redis down") },
		Persist: func(ctx context.Context) error {
			t.Fatal("persist must not run when apply fails")
			return nil
		},
	})

	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrMutationRolledBack)
	assert.Equal(t, MutationIdle, result.State)
	assert.Equal(t, []MutationState{MutationIdle}, result.Transitions)
}

func TestRunMutationRollbackFailureStillReportsRolledBack(t *testing.T) {
	result, err := RunMutation(context.Background(), Mutation{
		Name:     "test",
		Apply:    func(ctx context.Context) error { return nil },
		Persist:  func(ctx context.Context) error { return errors.New("db down") },
		Rollback: func(ctx context.Context) error { return errors.New("redis down too") },
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrMutationRolledBack)
	assert.Equal(t, MutationRolledBack, result.State)
}

func TestRunMutationWithoutApply(t *testing.T) {
	result, err := RunMutation(context.Background(), Mutation{
		Name:    "test",
		Persist: func(ctx context.Context) error { return nil },
	})

	require.NoError(t, err)
	assert.Equal(t, MutationCommitted, result.State)
}
