package domain

// EmptyLabel is the placeholder shown when an item has no natural name.
const EmptyLabel = "[empty]"

// DictionaryItem is one selectable option in a host selection UI.
type DictionaryItem struct {
	// Label is the human-readable name. Never empty; EmptyLabel is
	// substituted when the natural name is absent.
	Label string `json:"label"`

	// Value is the machine value submitted when the item is chosen.
	Value string `json:"value"`

	// Note is optional secondary text shown next to the label.
	Note string `json:"note,omitempty"`
}

// DictionaryPage is one page of dictionary items. The presence of
// Cursor is the sole continuation signal: an empty cursor means no
// further pages regardless of how many items this page holds.
type DictionaryPage struct {
	Items []DictionaryItem `json:"items"`

	// Cursor is the opaque continuation token for the next page, or
	// empty at the end of the collection.
	Cursor string `json:"cursor,omitempty"`
}
