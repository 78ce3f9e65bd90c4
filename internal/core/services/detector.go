package services

import (
	"context"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/logger"
)

// FetchFunc performs one remote listing call and returns the current
// candidate entities. The remote API, not the detector, is responsible
// for sorting (watch field descending) and page-size limits.
type FetchFunc func(ctx context.Context) ([]domain.Entity, error)

// ChangeDetector converts "list current entities" plus the previous
// snapshot into new events plus the next snapshot. It is stateless:
// every invocation receives and returns all cross-invocation state, so
// concurrent invocations on a stale snapshot are the host's problem to
// serialise, not the detector's.
type ChangeDetector struct{}

// NewChangeDetector creates a change detector.
func NewChangeDetector() *ChangeDetector {
	return &ChangeDetector{}
}

// Detect runs one polling invocation.
//
// Learning mode returns the first fetched entity (or none) and a nil
// next snapshot; it never reads the previous snapshot. A nil previous
// snapshot in any other mode bootstraps: no events, the full current
// list becomes the baseline. Incremental mode emits an entity iff its
// id is absent from the previous snapshot or, when watchField is set,
// its watch value differs from the recorded one.
//
// The next snapshot is always a wholesale replacement with the current
// list. Entities that disappeared drop out silently, and an entity that
// disappears and reappears between polls counts as new again.
//
// A fetch failure propagates unchanged with no partial state, so the
// host keeps its previous snapshot for the next scheduled attempt.
func (d *ChangeDetector) Detect(
	ctx context.Context,
	fetch FetchFunc,
	previous domain.Snapshot,
	watchField string,
	mode domain.PollMode,
) (*domain.Delta, error) {
	current, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if mode == domain.ModeLearning {
		sample := []domain.Entity{}
		if len(current) > 0 {
			sample = current[:1]
		}
		return &domain.Delta{Events: sample, NextSnapshot: nil}, nil
	}

	next := snapshotOf(current, watchField)

	if previous == nil {
		// First real activation: establish the baseline, fire nothing.
		logger.Debug("detector: bootstrap with %d entities", len(current))
		return &domain.Delta{Events: []domain.Entity{}, NextSnapshot: next}, nil
	}

	seen := previous.Lookup()
	events := make([]domain.Entity, 0, len(current))
	for _, entity := range current {
		recorded, ok := seen[entity.ID]
		if !ok {
			events = append(events, entity)
			continue
		}
		if watchField == "" {
			continue // creation-only: membership is the whole test
		}
		watch, _ := entity.WatchValue(watchField)
		if watch != recorded {
			events = append(events, entity)
		}
	}

	logger.Debug("detector: %d of %d entities are new or changed", len(events), len(current))
	return &domain.Delta{Events: events, NextSnapshot: next}, nil
}

// snapshotOf captures the current entity list as a snapshot. An empty
// fetch yields an empty, non-nil snapshot: emptiness is a valid state
// distinct from "never polled".
func snapshotOf(entities []domain.Entity, watchField string) domain.Snapshot {
	snapshot := make(domain.Snapshot, 0, len(entities))
	for _, entity := range entities {
		entry := domain.SnapshotEntry{ID: entity.ID}
		if watchField != "" {
			entry.Watch, _ = entity.WatchValue(watchField)
		}
		snapshot = append(snapshot, entry)
	}
	return snapshot
}
