package airtable

import (
	"encoding/base64"
	"encoding/json"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

// CursorVersion is the current cursor format version.
const CursorVersion = 1

// Cursor wraps Airtable's pagination offset in a versioned opaque token
// so hosts never depend on the provider's offset format.
type Cursor struct {
	// Version is the cursor format version for future compatibility.
	Version int `json:"v"`
	// Offset is Airtable's continuation offset, passed back verbatim.
	Offset string `json:"offset"`
}

// EncodeCursor serialises an offset into an opaque token. An empty
// offset yields an empty token, signalling the end of pagination.
func EncodeCursor(offset string) string {
	if offset == "" {
		return ""
	}
	data, err := json.Marshal(Cursor{Version: CursorVersion, Offset: offset})
	if err != nil {
		return ""
	}
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeCursor recovers the provider offset from an opaque token.
func DecodeCursor(token string) (string, error) {
	if token == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", domain.ErrInvalidCursor
	}

	var cursor Cursor
	if err := json.Unmarshal(data, &cursor); err != nil {
		return "", domain.ErrInvalidCursor
	}
	if cursor.Version > CursorVersion {
		return "", domain.ErrInvalidCursor
	}
	return cursor.Offset, nil
}
