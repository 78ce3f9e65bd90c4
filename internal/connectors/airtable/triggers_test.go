package airtable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/services"
)

func recordsResponse(body string) *fakeCaller {
	return &fakeCaller{responses: map[string]string{"/v0/appX/tbl1": body}}
}

func triggerParams() map[string]string {
	return map[string]string{ParamBase: "appX", ParamTable: "tbl1"}
}

func TestNewRecordTrigger(t *testing.T) {
	ctx := context.Background()
	detector := services.NewChangeDetector()

	t.Run("first run establishes a baseline silently", func(t *testing.T) {
		caller := recordsResponse(`{"records":[
			{"id":"rec1","createdTime":"2026-01-01T00:00:00.000Z","fields":{}}
		]}`)
		trigger := NewRecordTrigger(NewClient(caller), detector)

		result, err := trigger(ctx, domain.TriggerInvocation{Params: triggerParams()})

		require.NoError(t, err)
		assert.Empty(t, result.Events)
		require.Len(t, result.State, 1)
		assert.Equal(t, "rec1", result.State[0].ID)
		assert.Equal(t, "createdTime", caller.lastQuery.Get("sort[0][field]"))
		assert.Equal(t, "desc", caller.lastQuery.Get("sort[0][direction]"))
	})

	t.Run("fires only for records absent from the snapshot", func(t *testing.T) {
		caller := recordsResponse(`{"records":[
			{"id":"rec2","createdTime":"2026-01-02T00:00:00.000Z","fields":{"Name":"new"}},
			{"id":"rec1","createdTime":"2026-01-01T00:00:00.000Z","fields":{"Name":"changed"}}
		]}`)
		trigger := NewRecordTrigger(NewClient(caller), detector)

		result, err := trigger(ctx, domain.TriggerInvocation{
			Params: triggerParams(),
			State:  domain.Snapshot{{ID: "rec1"}},
		})

		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, "rec2", result.Events[0].ID)
	})

	t.Run("learning returns one sample and no state", func(t *testing.T) {
		caller := recordsResponse(`{"records":[
			{"id":"rec1","createdTime":"2026-01-01T00:00:00.000Z","fields":{"Name":"sample"}},
			{"id":"rec2","createdTime":"2026-01-02T00:00:00.000Z","fields":{}}
		]}`)
		trigger := NewRecordTrigger(NewClient(caller), detector)

		result, err := trigger(ctx, domain.TriggerInvocation{Params: triggerParams(), LearningMode: true})

		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, "rec1", result.Events[0].ID)
		assert.Nil(t, result.State)
	})
}

func TestUpdatedRecordTrigger(t *testing.T) {
	ctx := context.Background()
	detector := services.NewChangeDetector()

	params := func() map[string]string {
		p := triggerParams()
		p[ParamWatchColumn] = "Last Modified"
		return p
	}

	t.Run("fires when the watched column changes", func(t *testing.T) {
		caller := recordsResponse(`{"records":[
			{"id":"rec1","createdTime":"2026-01-01T00:00:00.000Z","fields":{"Last Modified":"2026-02-01T00:00:00.000Z"}}
		]}`)
		trigger := UpdatedRecordTrigger(NewClient(caller), detector)

		result, err := trigger(ctx, domain.TriggerInvocation{
			Params: params(),
			State:  domain.Snapshot{{ID: "rec1", Watch: `"2026-01-15T00:00:00.000Z"`}},
		})

		require.NoError(t, err)
		require.Len(t, result.Events, 1)
		assert.Equal(t, "rec1", result.Events[0].ID)
		assert.Equal(t, "Last Modified", caller.lastQuery.Get("sort[0][field]"))
	})

	t.Run("stays silent when the column is unchanged", func(t *testing.T) {
		caller := recordsResponse(`{"records":[
			{"id":"rec1","createdTime":"2026-01-01T00:00:00.000Z","fields":{"Last Modified":"2026-01-15T00:00:00.000Z"}}
		]}`)
		trigger := UpdatedRecordTrigger(NewClient(caller), detector)

		result, err := trigger(ctx, domain.TriggerInvocation{
			Params: params(),
			State:  domain.Snapshot{{ID: "rec1", Watch: `"2026-01-15T00:00:00.000Z"`}},
		})

		require.NoError(t, err)
		assert.Empty(t, result.Events)
	})

	t.Run("missing watch column parameter fails validation", func(t *testing.T) {
		trigger := UpdatedRecordTrigger(NewClient(&fakeCaller{}), detector)

		_, err := trigger(ctx, domain.TriggerInvocation{Params: triggerParams()})

		var validationErr *domain.ValidationError
		assert.ErrorAs(t, err, &validationErr)
	})

	t.Run("column absent from every record is a configuration error", func(t *testing.T) {
		caller := recordsResponse(`{"records":[
			{"id":"rec1","createdTime":"2026-01-01T00:00:00.000Z","fields":{"Name":"x"}},
			{"id":"rec2","createdTime":"2026-01-02T00:00:00.000Z","fields":{"Name":"y"}}
		]}`)
		trigger := UpdatedRecordTrigger(NewClient(caller), detector)

		_, err := trigger(ctx, domain.TriggerInvocation{Params: params()})

		var configErr *domain.ConfigurationError
		require.ErrorAs(t, err, &configErr)
		assert.Equal(t, "Last Modified", configErr.Field)
	})

	t.Run("column present on some records passes", func(t *testing.T) {
		caller := recordsResponse(`{"records":[
			{"id":"rec1","createdTime":"2026-01-01T00:00:00.000Z","fields":{"Name":"x"}},
			{"id":"rec2","createdTime":"2026-01-02T00:00:00.000Z","fields":{"Last Modified":"2026-01-02T00:00:00.000Z"}}
		]}`)
		trigger := UpdatedRecordTrigger(NewClient(caller), detector)

		result, err := trigger(ctx, domain.TriggerInvocation{Params: params()})

		require.NoError(t, err)
		assert.Empty(t, result.Events)
		assert.Len(t, result.State, 2)
	})

	t.Run("empty table passes and bootstraps empty", func(t *testing.T) {
		caller := recordsResponse(`{"records":[]}`)
		trigger := UpdatedRecordTrigger(NewClient(caller), detector)

		result, err := trigger(ctx, domain.TriggerInvocation{Params: params()})

		require.NoError(t, err)
		assert.Empty(t, result.Events)
		assert.NotNil(t, result.State)
	})
}
