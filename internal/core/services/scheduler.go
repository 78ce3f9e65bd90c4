package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driven"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driving"
	"github.com/custodia-labs/pollbridge/internal/logger"
)

// ScheduledTrigger is one trigger instance the scheduler polls.
type ScheduledTrigger struct {
	// InstanceID keys the persisted snapshot for this trigger instance.
	InstanceID string

	// Trigger is the registered trigger identifier to dispatch.
	Trigger string

	// Params is the trigger configuration passed on every invocation.
	Params map[string]string
}

// PollScheduler invokes registered triggers on a fixed cadence and owns
// the snapshot read-modify-write cycle: it loads the previous snapshot,
// dispatches, and persists the returned one. Triggers run sequentially
// so no two invocations of the same instance ever overlap. A failed
// invocation leaves the stored snapshot untouched and is retried on the
// next tick.
type PollScheduler struct {
	interval   time.Duration
	dispatcher driving.Dispatcher
	states     driven.StateStore
	triggers   []ScheduledTrigger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewPollScheduler creates a scheduler over the given trigger instances.
func NewPollScheduler(
	interval time.Duration,
	dispatcher driving.Dispatcher,
	states driven.StateStore,
	triggers []ScheduledTrigger,
) *PollScheduler {
	return &PollScheduler{
		interval:   interval,
		dispatcher: dispatcher,
		states:     states,
		triggers:   triggers,
	}
}

// Start begins the polling loop. Blocks until Stop is called or the
// context is cancelled. Due triggers are polled immediately on startup.
func (s *PollScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	s.pollAll(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.pollAll(ctx)
		}
	}
}

// Stop gracefully shuts down the scheduler.
func (s *PollScheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// pollAll runs every trigger instance once, in order.
func (s *PollScheduler) pollAll(ctx context.Context) {
	s.wg.Add(1)
	defer s.wg.Done()

	for _, trig := range s.triggers {
		if err := s.PollOnce(ctx, trig); err != nil {
			logger.Warn("poll %s (%s): %v", trig.InstanceID, trig.Trigger, err)
		}
	}
}

// PollOnce performs one full invocation cycle for a trigger instance:
// load snapshot, dispatch, persist the returned snapshot. Events are
// delivered through the dispatcher's handler result to the host.
func (s *PollScheduler) PollOnce(ctx context.Context, trig ScheduledTrigger) error {
	previous, err := s.states.Get(ctx, trig.InstanceID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	result, err := s.dispatcher.Dispatch(ctx, trig.Trigger, domain.TriggerInvocation{
		Params: trig.Params,
		State:  previous,
	})
	if err != nil {
		return err
	}

	if result.State != nil {
		if err := s.states.Save(ctx, trig.InstanceID, result.State); err != nil {
			return err
		}
	}

	if len(result.Events) > 0 {
		logger.Info("trigger %s fired %d event(s)", trig.InstanceID, len(result.Events))
	}
	return nil
}
