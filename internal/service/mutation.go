package service

import (
	"context"
	"fmt"
	"log"

	"wcircle.app/watchcircle/pkg/apperror"
)

type MutationState string

const (
	MutationIdle       MutationState = "idle"
	MutationPending    MutationState = "pending"
	MutationCommitted  MutationState = "committed"
	MutationRolledBack MutationState = "rolled_back"
)

// Mutation is one optimistic state change: Apply writes the new value to
// display state immediately, Persist makes it durable, Rollback restores the
// prior display state when Persist fails.
type Mutation struct {
	Name     string
	Apply    func(ctx context.Context) error
	Persist  func(ctx context.Context) error
	Rollback func(ctx context.Context) error
}

// MutationResult records the transition history so callers (and tests) can
// assert how a mutation ended up, not just whether an error came back.
type MutationResult struct {
	State       MutationState
	Transitions []MutationState
}

func (r *MutationResult) transition(next MutationState) {
	r.State = next
	r.Transitions = append(r.Transitions, next)
}

// RunMutation drives one mutation through
// Idle -> Pending -> Committed | RolledBack.
func RunMutation(ctx context.Context, m Mutation) (*MutationResult, error) {
	result := &MutationResult{
		State:       MutationIdle,
		Transitions: []MutationState{MutationIdle},
	}

	if m.Apply != nil {
		if err := m.Apply(ctx); err != nil {
			// Display state never changed; nothing to roll back.
			return result, fmt.Errorf("%s: optimistic apply failed: %w", m.Name, err)
		}
	}
	result.transition(MutationPending)

	if err := m.Persist(ctx); err != nil {
		if m.Rollback != nil {
			if rbErr := m.Rollback(ctx); rbErr != nil {
				// The display state is now wrong until the next read-through.
				log.Printf("❌ rollback of %s failed: %v (persist error: %v)", m.Name, rbErr, err)
			}
		}
		result.transition(MutationRolledBack)
		return result, fmt.Errorf("%w: %s: %v", apperror.ErrMutationRolledBack, m.Name, err)
	}

	result.transition(MutationCommitted)
	return result, nil
}
