package airtable

import (
	"context"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driving"
	"github.com/custodia-labs/pollbridge/internal/core/services"
)

// Trigger identifiers registered with the dispatcher.
const (
	TriggerNewRecord     = "airtable/new-record"
	TriggerUpdatedRecord = "airtable/updated-record"
)

// Invocation parameter keys.
const (
	ParamBase        = "base"
	ParamTable       = "table"
	ParamWatchColumn = "watchColumn"
)

// NewRecordTrigger fires for records created since the last poll.
// Creation is detected by id membership alone; the listing is sorted by
// creation time descending so the newest records arrive first.
func NewRecordTrigger(client *Client, detector *services.ChangeDetector) driving.TriggerFunc {
	return func(ctx context.Context, inv domain.TriggerInvocation) (*domain.TriggerResult, error) {
		base, table := inv.Params[ParamBase], inv.Params[ParamTable]

		fetch := func(ctx context.Context) ([]domain.Entity, error) {
			entities, _, err := client.ListRecords(ctx, base, table, ListRecordsOptions{
				SortField: createdTimeField,
				SortDesc:  true,
			})
			return entities, err
		}

		delta, err := detector.Detect(ctx, fetch, inv.State, "", inv.Mode())
		if err != nil {
			return nil, err
		}
		return &domain.TriggerResult{Events: delta.Events, State: delta.NextSnapshot}, nil
	}
}

// UpdatedRecordTrigger fires for records whose configured last-modified
// column changed since the last poll (which also covers newly created
// records). The column must exist on the table: when no fetched record
// carries it, the watch cannot work and the poll fails with a
// configuration error rather than silently never firing.
func UpdatedRecordTrigger(client *Client, detector *services.ChangeDetector) driving.TriggerFunc {
	return func(ctx context.Context, inv domain.TriggerInvocation) (*domain.TriggerResult, error) {
		base, table := inv.Params[ParamBase], inv.Params[ParamTable]
		watchColumn := inv.Params[ParamWatchColumn]
		if watchColumn == "" {
			return nil, &domain.ValidationError{Reason: "watchColumn is required"}
		}

		fetch := func(ctx context.Context) ([]domain.Entity, error) {
			entities, _, err := client.ListRecords(ctx, base, table, ListRecordsOptions{
				SortField: watchColumn,
				SortDesc:  true,
			})
			if err != nil {
				return nil, err
			}
			if err := requireWatchField(entities, watchColumn); err != nil {
				return nil, err
			}
			return entities, nil
		}

		delta, err := detector.Detect(ctx, fetch, inv.State, watchColumn, inv.Mode())
		if err != nil {
			return nil, err
		}
		return &domain.TriggerResult{Events: delta.Events, State: delta.NextSnapshot}, nil
	}
}

// requireWatchField fails when a non-empty listing has the watch column
// on no record at all, which means the column is missing from the
// table's schema.
func requireWatchField(entities []domain.Entity, watchColumn string) error {
	if len(entities) == 0 {
		return nil
	}
	for _, entity := range entities {
		if _, ok := entity.Fields[watchColumn]; ok {
			return nil
		}
	}
	return &domain.ConfigurationError{
		Field:  watchColumn,
		Reason: "not present on any record; configure a last-modified column",
	}
}
