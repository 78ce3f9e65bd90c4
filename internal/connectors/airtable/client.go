package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driven"
)

// DefaultBaseURL is the Airtable Web API root.
const DefaultBaseURL = "https://api.airtable.com"

// maxPageSize is the largest page Airtable serves per request.
const maxPageSize = 100

// createdTimeField is the synthetic field carrying the record creation
// timestamp, merged into each entity alongside its cell values.
const createdTimeField = "createdTime"

// Client exposes the Airtable endpoints pollbridge needs, all routed
// through the RemoteCaller port.
type Client struct {
	caller driven.RemoteCaller
}

// NewClient creates a client over the given remote caller.
func NewClient(caller driven.RemoteCaller) *Client {
	return &Client{caller: caller}
}

// ListRecordsOptions configure one record listing call.
type ListRecordsOptions struct {
	// SortField sorts the listing by this field.
	SortField string

	// SortDesc sorts newest-first when true.
	SortDesc bool

	// PageSize caps the number of records returned (max 100).
	PageSize int

	// Offset is Airtable's raw continuation offset.
	Offset string
}

// record is Airtable's wire shape for one record.
type record struct {
	ID          string         `json:"id"`
	CreatedTime string         `json:"createdTime"`
	Fields      map[string]any `json:"fields"`
}

// entity converts a wire record into a domain entity, folding the
// creation timestamp in as a regular field.
func (r record) entity() domain.Entity {
	fields := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		fields[k] = v
	}
	fields[createdTimeField] = r.CreatedTime
	return domain.Entity{ID: r.ID, Fields: fields}
}

// ListRecords fetches one page of records from a table. Returns the
// entities in listing order plus the raw continuation offset, empty on
// the last page.
func (c *Client) ListRecords(
	ctx context.Context, baseID, tableID string, opts ListRecordsOptions,
) ([]domain.Entity, string, error) {
	if baseID == "" || tableID == "" {
		return nil, "", &domain.ValidationError{Reason: "base and table are required"}
	}

	query := url.Values{}
	if opts.SortField != "" {
		query.Set("sort[0][field]", opts.SortField)
		direction := "asc"
		if opts.SortDesc {
			direction = "desc"
		}
		query.Set("sort[0][direction]", direction)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	query.Set("pageSize", strconv.Itoa(pageSize))
	if opts.Offset != "" {
		query.Set("offset", opts.Offset)
	}

	raw, err := c.caller.Request(ctx, http.MethodGet,
		fmt.Sprintf("/v0/%s/%s", baseID, tableID), query, nil)
	if err != nil {
		return nil, "", err
	}

	var resp struct {
		Records []record `json:"records"`
		Offset  string   `json:"offset"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, "", fmt.Errorf("decode records: %w", err)
	}

	entities := make([]domain.Entity, 0, len(resp.Records))
	for _, rec := range resp.Records {
		entities = append(entities, rec.entity())
	}
	return entities, resp.Offset, nil
}

// ListBases fetches one page of bases visible to the credential.
func (c *Client) ListBases(ctx context.Context, offset string) ([]map[string]any, string, error) {
	query := url.Values{}
	if offset != "" {
		query.Set("offset", offset)
	}

	raw, err := c.caller.Request(ctx, http.MethodGet, "/v0/meta/bases", query, nil)
	if err != nil {
		return nil, "", err
	}

	var resp struct {
		Bases  []map[string]any `json:"bases"`
		Offset string           `json:"offset"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, "", fmt.Errorf("decode bases: %w", err)
	}
	return resp.Bases, resp.Offset, nil
}

// ListTables fetches the table schema of a base. The endpoint is not
// paginated; tables carry their field definitions inline.
func (c *Client) ListTables(ctx context.Context, baseID string) ([]map[string]any, error) {
	if baseID == "" {
		return nil, &domain.ValidationError{Reason: "base is required"}
	}

	raw, err := c.caller.Request(ctx, http.MethodGet,
		fmt.Sprintf("/v0/meta/bases/%s/tables", baseID), nil, nil)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Tables []map[string]any `json:"tables"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode tables: %w", err)
	}
	return resp.Tables, nil
}

// ListComments fetches one page of comments on a record.
func (c *Client) ListComments(
	ctx context.Context, baseID, tableID, recordID, offset string,
) ([]map[string]any, string, error) {
	if baseID == "" || tableID == "" || recordID == "" {
		return nil, "", &domain.ValidationError{Reason: "base, table and record are required"}
	}

	query := url.Values{}
	if offset != "" {
		query.Set("offset", offset)
	}

	raw, err := c.caller.Request(ctx, http.MethodGet,
		fmt.Sprintf("/v0/%s/%s/%s/comments", baseID, tableID, recordID), query, nil)
	if err != nil {
		return nil, "", err
	}

	var resp struct {
		Comments []map[string]any `json:"comments"`
		Offset   string           `json:"offset"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, "", fmt.Errorf("decode comments: %w", err)
	}
	return resp.Comments, resp.Offset, nil
}

// Whoami fetches the authenticated account's identity.
func (c *Client) Whoami(ctx context.Context) (id, email string, err error) {
	raw, err := c.caller.Request(ctx, http.MethodGet, "/v0/meta/whoami", nil, nil)
	if err != nil {
		return "", "", err
	}

	var resp struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", "", fmt.Errorf("decode whoami: %w", err)
	}
	return resp.ID, resp.Email, nil
}
