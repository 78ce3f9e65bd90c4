package telegram

import (
	"context"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driving"
	"github.com/custodia-labs/pollbridge/internal/core/services"
)

// TriggerNewMessage is the polling trigger identifier.
const TriggerNewMessage = "telegram/new-message"

// pollLimit caps the updates fetched per poll.
const pollLimit = 100

// NewMessageTrigger fires for messages received since the last poll.
// Updates are identified by update id, so membership alone detects new
// ones; Telegram never mutates a delivered update.
func NewMessageTrigger(client *Client, detector *services.ChangeDetector) driving.TriggerFunc {
	return func(ctx context.Context, inv domain.TriggerInvocation) (*domain.TriggerResult, error) {
		fetch := func(ctx context.Context) ([]domain.Entity, error) {
			updates, err := client.GetUpdates(ctx, 0, pollLimit)
			if err != nil {
				return nil, err
			}
			entities := make([]domain.Entity, 0, len(updates))
			for _, update := range updates {
				if update.Message == nil {
					continue // not a message update
				}
				entities = append(entities, update.Entity())
			}
			return entities, nil
		}

		delta, err := detector.Detect(ctx, fetch, inv.State, "", inv.Mode())
		if err != nil {
			return nil, err
		}
		return &domain.TriggerResult{Events: delta.Events, State: delta.NextSnapshot}, nil
	}
}
