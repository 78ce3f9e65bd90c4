package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

// PageFetch fetches one page of raw items from a provider. cursor is
// the opaque continuation token from a previous page, empty for the
// first page. The returned cursor is empty at the end of pagination.
type PageFetch func(ctx context.Context, cursor string) (items []map[string]any, nextCursor string, err error)

// ProjectFunc maps one raw item to a dictionary item. Implementations
// are source-specific (a base, a table, a record...).
type ProjectFunc func(item map[string]any) domain.DictionaryItem

// ListOptions configure one dictionary page request.
type ListOptions struct {
	// Cursor is the continuation token from the previous page.
	Cursor string

	// Search, when non-empty, filters the fetched page to items where
	// any of SearchFields contains it, case-insensitively. This is a
	// per-page filter, not a global search across all pages.
	Search string

	// SearchFields names the raw item fields the search applies to.
	SearchFields []string
}

// DictionaryService provides the uniform list + locally-filter +
// paginate behaviour shared by every selector-population endpoint.
type DictionaryService struct{}

// NewDictionaryService creates a dictionary service.
func NewDictionaryService() *DictionaryService {
	return &DictionaryService{}
}

// List fetches exactly one page, filters it locally and projects the
// survivors. The output cursor's presence is the sole continuation
// signal: callers must treat an empty cursor as "no further pages"
// regardless of whether the page held any items.
func (s *DictionaryService) List(
	ctx context.Context,
	fetch PageFetch,
	project ProjectFunc,
	opts ListOptions,
) (*domain.DictionaryPage, error) {
	raw, nextCursor, err := fetch(ctx, opts.Cursor)
	if err != nil {
		return nil, err
	}

	items := make([]domain.DictionaryItem, 0, len(raw))
	for _, item := range raw {
		if !matchesSearch(item, opts.SearchFields, opts.Search) {
			continue
		}
		projected := project(item)
		if projected.Label == "" {
			projected.Label = domain.EmptyLabel
		}
		items = append(items, projected)
	}

	return &domain.DictionaryPage{Items: items, Cursor: nextCursor}, nil
}

// matchesSearch reports whether any of the named fields contains the
// search string, case-insensitively. An empty search matches everything.
func matchesSearch(item map[string]any, fields []string, search string) bool {
	if search == "" {
		return true
	}
	needle := strings.ToLower(search)
	for _, field := range fields {
		value, ok := item[field]
		if !ok || value == nil {
			continue
		}
		if strings.Contains(strings.ToLower(fmt.Sprint(value)), needle) {
			return true
		}
	}
	return false
}
