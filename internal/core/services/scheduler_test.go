package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pollbridge/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

func TestPollOnce(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the returned snapshot", func(t *testing.T) {
		states := memory.NewStateStore()
		dispatcher := NewTriggerDispatcher()
		next := domain.Snapshot{{ID: "r1", Watch: `"t1"`}}
		require.NoError(t, dispatcher.Register("airtable/new-record", func(_ context.Context, _ domain.TriggerInvocation) (*domain.TriggerResult, error) {
			return &domain.TriggerResult{State: next}, nil
		}))
		scheduler := NewPollScheduler(0, dispatcher, states, nil)

		err := scheduler.PollOnce(ctx, ScheduledTrigger{
			InstanceID: "inst-1",
			Trigger:    "airtable/new-record",
		})

		require.NoError(t, err)
		saved, err := states.Get(ctx, "inst-1")
		require.NoError(t, err)
		assert.Equal(t, next, saved)
	})

	t.Run("hands the stored snapshot to the handler", func(t *testing.T) {
		states := memory.NewStateStore()
		previous := domain.Snapshot{{ID: "r1", Watch: `"t1"`}}
		require.NoError(t, states.Save(ctx, "inst-1", previous))

		dispatcher := NewTriggerDispatcher()
		var seen domain.Snapshot
		require.NoError(t, dispatcher.Register("t", func(_ context.Context, inv domain.TriggerInvocation) (*domain.TriggerResult, error) {
			seen = inv.State
			return &domain.TriggerResult{State: inv.State}, nil
		}))
		scheduler := NewPollScheduler(0, dispatcher, states, nil)

		require.NoError(t, scheduler.PollOnce(ctx, ScheduledTrigger{InstanceID: "inst-1", Trigger: "t"}))
		assert.Equal(t, previous, seen)
	})

	t.Run("missing snapshot dispatches with nil state", func(t *testing.T) {
		states := memory.NewStateStore()
		dispatcher := NewTriggerDispatcher()
		seen := domain.Snapshot{{ID: "sentinel"}}
		require.NoError(t, dispatcher.Register("t", func(_ context.Context, inv domain.TriggerInvocation) (*domain.TriggerResult, error) {
			seen = inv.State
			return &domain.TriggerResult{}, nil
		}))
		scheduler := NewPollScheduler(0, dispatcher, states, nil)

		require.NoError(t, scheduler.PollOnce(ctx, ScheduledTrigger{InstanceID: "fresh", Trigger: "t"}))
		assert.Nil(t, seen)
	})

	t.Run("dispatch failure leaves the stored snapshot untouched", func(t *testing.T) {
		states := memory.NewStateStore()
		previous := domain.Snapshot{{ID: "r1", Watch: `"t1"`}}
		require.NoError(t, states.Save(ctx, "inst-1", previous))

		dispatcher := NewTriggerDispatcher()
		require.NoError(t, dispatcher.Register("t", func(context.Context, domain.TriggerInvocation) (*domain.TriggerResult, error) {
			return nil, errors.New("provider unavailable")
		}))
		scheduler := NewPollScheduler(0, dispatcher, states, nil)

		err := scheduler.PollOnce(ctx, ScheduledTrigger{InstanceID: "inst-1", Trigger: "t"})

		require.Error(t, err)
		saved, getErr := states.Get(ctx, "inst-1")
		require.NoError(t, getErr)
		assert.Equal(t, previous, saved)
	})

	t.Run("nil result state skips the save", func(t *testing.T) {
		states := memory.NewStateStore()
		dispatcher := NewTriggerDispatcher()
		require.NoError(t, dispatcher.Register("t", func(context.Context, domain.TriggerInvocation) (*domain.TriggerResult, error) {
			return &domain.TriggerResult{Events: []domain.Entity{{ID: "sample"}}}, nil
		}))
		scheduler := NewPollScheduler(0, dispatcher, states, nil)

		require.NoError(t, scheduler.PollOnce(ctx, ScheduledTrigger{InstanceID: "inst-1", Trigger: "t"}))
		_, err := states.Get(ctx, "inst-1")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}
