package domain

import "encoding/json"

// Entity is a single remote record as seen at poll time.
type Entity struct {
	// ID is the stable identifier of the record within its collection.
	ID string `json:"id"`

	// Fields maps field names to untyped values. Values may be null,
	// scalar or nested, exactly as returned by the remote API.
	Fields map[string]any `json:"fields"`
}

// WatchValue returns the canonical string form of the named field.
// Values are canonicalised through JSON so a provider that flips between
// numeric and string timestamps still compares stably. Returns the empty
// string and false when the field is absent.
func (e Entity) WatchValue(field string) (string, bool) {
	v, ok := e.Fields[field]
	if !ok {
		return "", false
	}
	data, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// SnapshotEntry records one entity reference inside a snapshot.
type SnapshotEntry struct {
	// ID is the entity identifier.
	ID string `json:"id"`

	// Watch is the canonicalised watch-field value at capture time.
	// Empty for creation-only triggers that track membership alone.
	Watch string `json:"watch,omitempty"`
}

// Snapshot is the ordered set of entities considered relevant as of the
// last successful poll. The host persists it between invocations and
// treats it as opaque; a nil snapshot means "never polled".
type Snapshot []SnapshotEntry

// Lookup builds an id -> watch-value index over the snapshot.
func (s Snapshot) Lookup() map[string]string {
	m := make(map[string]string, len(s))
	for _, entry := range s {
		m[entry.ID] = entry.Watch
	}
	return m
}

// Encode serialises the snapshot to JSON for host-side storage.
func (s Snapshot) Encode() ([]byte, error) {
	return json.Marshal(s)
}

// DecodeSnapshot deserialises a snapshot previously produced by Encode.
// Empty input yields a nil snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, ErrInvalidCursor
	}
	return s, nil
}

// Delta is the outcome of one polling invocation.
type Delta struct {
	// Events holds the new or changed entities, in fetch order.
	Events []Entity

	// NextSnapshot is the full replacement snapshot to persist. Nil in
	// learning mode, which never produces state.
	NextSnapshot Snapshot
}
