package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

func pageOf(next string, items ...map[string]any) PageFetch {
	return func(_ context.Context, _ string) ([]map[string]any, string, error) {
		return items, next, nil
	}
}

func projectNameID(item map[string]any) domain.DictionaryItem {
	label, _ := item["name"].(string)
	value, _ := item["id"].(string)
	return domain.DictionaryItem{Label: label, Value: value}
}

func TestDictionaryList(t *testing.T) {
	svc := NewDictionaryService()
	ctx := context.Background()

	t.Run("projects every item without a search", func(t *testing.T) {
		fetch := pageOf("",
			map[string]any{"id": "tbl1", "name": "Orders"},
			map[string]any{"id": "tbl2", "name": "Customers"},
		)

		page, err := svc.List(ctx, fetch, projectNameID, ListOptions{})

		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, "Orders", page.Items[0].Label)
		assert.Equal(t, "tbl1", page.Items[0].Value)
		assert.Empty(t, page.Cursor)
	})

	t.Run("search filters the fetched page case-insensitively", func(t *testing.T) {
		fetch := pageOf("",
			map[string]any{"id": "1", "name": "Apples"},
			map[string]any{"id": "2", "name": "Bananas"},
			map[string]any{"id": "3", "name": "Cherries"},
		)

		page, err := svc.List(ctx, fetch, projectNameID, ListOptions{
			Search:       "AN",
			SearchFields: []string{"name"},
		})

		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "Bananas", page.Items[0].Label)
	})

	t.Run("search spans multiple fields", func(t *testing.T) {
		fetch := pageOf("",
			map[string]any{"id": "rec-match", "name": "nothing"},
			map[string]any{"id": "other", "name": "also nothing"},
		)

		page, err := svc.List(ctx, fetch, projectNameID, ListOptions{
			Search:       "match",
			SearchFields: []string{"name", "id"},
		})

		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, "rec-match", page.Items[0].Value)
	})

	t.Run("blank label becomes the empty placeholder", func(t *testing.T) {
		fetch := pageOf("", map[string]any{"id": "tbl9"})

		page, err := svc.List(ctx, fetch, projectNameID, ListOptions{})

		require.NoError(t, err)
		require.Len(t, page.Items, 1)
		assert.Equal(t, domain.EmptyLabel, page.Items[0].Label)
		assert.Equal(t, "tbl9", page.Items[0].Value)
	})

	t.Run("cursor passes through to the fetch and back out", func(t *testing.T) {
		var seenCursor string
		fetch := func(_ context.Context, cursor string) ([]map[string]any, string, error) {
			seenCursor = cursor
			return []map[string]any{{"id": "1", "name": "x"}}, "page-3", nil
		}

		page, err := svc.List(ctx, fetch, projectNameID, ListOptions{Cursor: "page-2"})

		require.NoError(t, err)
		assert.Equal(t, "page-2", seenCursor)
		assert.Equal(t, "page-3", page.Cursor)
	})

	t.Run("a filtered-out page still carries the continuation cursor", func(t *testing.T) {
		fetch := pageOf("page-2", map[string]any{"id": "1", "name": "Apples"})

		page, err := svc.List(ctx, fetch, projectNameID, ListOptions{
			Search:       "zzz",
			SearchFields: []string{"name"},
		})

		require.NoError(t, err)
		assert.Empty(t, page.Items)
		assert.Equal(t, "page-2", page.Cursor, "caller must be able to keep paging past an empty page")
	})

	t.Run("fetch errors propagate", func(t *testing.T) {
		fetchErr := errors.New("listing failed")
		fetch := func(context.Context, string) ([]map[string]any, string, error) {
			return nil, "", fetchErr
		}

		page, err := svc.List(ctx, fetch, projectNameID, ListOptions{})

		require.ErrorIs(t, err, fetchErr)
		assert.Nil(t, page)
	})
}
