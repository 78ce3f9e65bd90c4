package airtable

import (
	"context"
	"fmt"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/services"
)

// Dictionaries populate host selection UIs from Airtable collections.
// Every method fetches exactly one page and applies the shared local
// filter; the opaque cursor in the result is the continuation signal.
type Dictionaries struct {
	client *Client
	dict   *services.DictionaryService
}

// NewDictionaries creates the dictionary set for one client.
func NewDictionaries(client *Client, dict *services.DictionaryService) *Dictionaries {
	return &Dictionaries{client: client, dict: dict}
}

// Bases lists the bases visible to the credential.
func (d *Dictionaries) Bases(ctx context.Context, search, cursor string) (*domain.DictionaryPage, error) {
	fetch := func(ctx context.Context, token string) ([]map[string]any, string, error) {
		offset, err := DecodeCursor(token)
		if err != nil {
			return nil, "", err
		}
		items, nextOffset, err := d.client.ListBases(ctx, offset)
		return items, EncodeCursor(nextOffset), err
	}

	return d.dict.List(ctx, fetch, func(item map[string]any) domain.DictionaryItem {
		return domain.DictionaryItem{
			Label: str(item["name"]),
			Value: str(item["id"]),
			Note:  str(item["permissionLevel"]),
		}
	}, services.ListOptions{Cursor: cursor, Search: search, SearchFields: []string{"name"}})
}

// Tables lists the tables of a base. The schema endpoint is not
// paginated, so the returned cursor is always empty.
func (d *Dictionaries) Tables(ctx context.Context, baseID, search string) (*domain.DictionaryPage, error) {
	fetch := func(ctx context.Context, _ string) ([]map[string]any, string, error) {
		items, err := d.client.ListTables(ctx, baseID)
		return items, "", err
	}

	return d.dict.List(ctx, fetch, func(item map[string]any) domain.DictionaryItem {
		return domain.DictionaryItem{
			Label: str(item["name"]),
			Value: str(item["id"]),
			Note:  str(item["description"]),
		}
	}, services.ListOptions{Search: search, SearchFields: []string{"name"}})
}

// Fields lists the fields of a table, from the base schema.
func (d *Dictionaries) Fields(ctx context.Context, baseID, tableID, search string) (*domain.DictionaryPage, error) {
	fetch := func(ctx context.Context, _ string) ([]map[string]any, string, error) {
		tables, err := d.client.ListTables(ctx, baseID)
		if err != nil {
			return nil, "", err
		}
		for _, table := range tables {
			if str(table["id"]) == tableID {
				return anySlice(table["fields"]), "", nil
			}
		}
		return nil, "", fmt.Errorf("table %s: %w", tableID, domain.ErrNotFound)
	}

	return d.dict.List(ctx, fetch, func(item map[string]any) domain.DictionaryItem {
		return domain.DictionaryItem{
			Label: str(item["name"]),
			Value: str(item["id"]),
			Note:  str(item["type"]),
		}
	}, services.ListOptions{Search: search, SearchFields: []string{"name"}})
}

// Records lists the records of a table, labelled by labelField.
func (d *Dictionaries) Records(
	ctx context.Context, baseID, tableID, labelField, search, cursor string,
) (*domain.DictionaryPage, error) {
	fetch := d.recordFetch(baseID, tableID, labelField, 0)

	return d.dict.List(ctx, fetch, projectRecord,
		services.ListOptions{Cursor: cursor, Search: search, SearchFields: []string{"label"}})
}

// RecordByID resolves a single record without pagination: one
// full-page fetch with the lookup bound to the record id.
func (d *Dictionaries) RecordByID(
	ctx context.Context, baseID, tableID, labelField, recordID string,
) (*domain.DictionaryPage, error) {
	fetch := d.recordFetch(baseID, tableID, labelField, maxPageSize)

	return d.dict.List(ctx, fetch, projectRecord,
		services.ListOptions{Search: recordID, SearchFields: []string{"id"}})
}

// Comments lists the comments on a record.
func (d *Dictionaries) Comments(
	ctx context.Context, baseID, tableID, recordID, search, cursor string,
) (*domain.DictionaryPage, error) {
	fetch := func(ctx context.Context, token string) ([]map[string]any, string, error) {
		offset, err := DecodeCursor(token)
		if err != nil {
			return nil, "", err
		}
		items, nextOffset, err := d.client.ListComments(ctx, baseID, tableID, recordID, offset)
		return items, EncodeCursor(nextOffset), err
	}

	return d.dict.List(ctx, fetch, func(item map[string]any) domain.DictionaryItem {
		author := ""
		if a, ok := item["author"].(map[string]any); ok {
			author = str(a["email"])
		}
		return domain.DictionaryItem{
			Label: str(item["text"]),
			Value: str(item["id"]),
			Note:  author,
		}
	}, services.ListOptions{Cursor: cursor, Search: search, SearchFields: []string{"text"}})
}

// recordFetch builds a page fetch over ListRecords, flattening each
// entity to the {id, label} shape the record projections consume.
func (d *Dictionaries) recordFetch(baseID, tableID, labelField string, pageSize int) services.PageFetch {
	return func(ctx context.Context, token string) ([]map[string]any, string, error) {
		offset, err := DecodeCursor(token)
		if err != nil {
			return nil, "", err
		}
		entities, nextOffset, err := d.client.ListRecords(ctx, baseID, tableID, ListRecordsOptions{
			PageSize: pageSize,
			Offset:   offset,
		})
		if err != nil {
			return nil, "", err
		}

		items := make([]map[string]any, 0, len(entities))
		for _, entity := range entities {
			items = append(items, map[string]any{
				"id":    entity.ID,
				"label": entity.Fields[labelField],
			})
		}
		return items, EncodeCursor(nextOffset), nil
	}
}

// projectRecord maps a flattened record to a dictionary item.
func projectRecord(item map[string]any) domain.DictionaryItem {
	return domain.DictionaryItem{
		Label: str(item["label"]),
		Value: str(item["id"]),
	}
}

// str renders a raw value as a string, empty for nil.
func str(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// anySlice coerces a decoded JSON array into a slice of objects.
func anySlice(v any) []map[string]any {
	raw, ok := v.([]any)
	if !ok {
		return nil
	}
	items := make([]map[string]any, 0, len(raw))
	for _, entry := range raw {
		if m, ok := entry.(map[string]any); ok {
			items = append(items, m)
		}
	}
	return items
}
