package telegram

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

// BaseURL builds the Bot API root for a bot token.
func BaseURL(botToken string) string {
	return "https://api.telegram.org/bot" + botToken
}

// Client exposes the Bot API endpoints pollbridge needs.
type Client struct {
	caller driven.RemoteCaller
}

// NewClient creates a client over the given remote caller.
func NewClient(caller driven.RemoteCaller) *Client {
	return &Client{caller: caller}
}

// call issues one Bot API method and unwraps the {ok, result} envelope.
func (c *Client) call(ctx context.Context, method string, query url.Values) (json.RawMessage, error) {
	raw, err := c.caller.Request(ctx, http.MethodGet, "/"+method, query, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		OK          bool            `json:"ok"`
		Result      json.RawMessage `json:"result"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}
	if !envelope.OK {
		return nil, &domain.RemoteError{Message: envelope.Description, ProviderType: method}
	}
	return envelope.Result, nil
}

// Update is one inbound Bot API update.
type Update struct {
	UpdateID int64          `json:"update_id"`
	Message  map[string]any `json:"message"`
}

// Entity converts the update into a domain entity keyed by update id.
func (u Update) Entity() domain.Entity {
	fields := make(map[string]any, len(u.Message))
	for k, v := range u.Message {
		fields[k] = v
	}
	return domain.Entity{
		ID:     strconv.FormatInt(u.UpdateID, 10),
		Fields: fields,
	}
}

// GetUpdates fetches pending updates. offset acknowledges all updates
// with lower ids; zero fetches from the oldest pending one.
func (c *Client) GetUpdates(ctx context.Context, offset int64, limit int) ([]Update, error) {
	query := url.Values{}
	if offset > 0 {
		query.Set("offset", strconv.FormatInt(offset, 10))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	result, err := c.call(ctx, "getUpdates", query)
	if err != nil {
		return nil, err
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("decode updates: %w", err)
	}
	return updates, nil
}

// GetChat fetches one chat by id.
func (c *Client) GetChat(ctx context.Context, chatID string) (map[string]any, error) {
	if chatID == "" {
		return nil, &domain.ValidationError{Reason: "chat id is required"}
	}

	query := url.Values{"chat_id": {chatID}}
	result, err := c.call(ctx, "getChat", query)
	if err != nil {
		return nil, err
	}

	var chat map[string]any
	if err := json.Unmarshal(result, &chat); err != nil {
		return nil, fmt.Errorf("decode chat: %w", err)
	}
	return chat, nil
}

// SetWebhook registers callbackURL for push delivery. While a webhook
// is set, getUpdates polling is unavailable on the Telegram side.
func (c *Client) SetWebhook(ctx context.Context, callbackURL string) error {
	if callbackURL == "" {
		return &domain.ValidationError{Reason: "callback URL is required"}
	}
	_, err := c.call(ctx, "setWebhook", url.Values{"url": {callbackURL}})
	return err
}

// DeleteWebhook removes the current push registration.
func (c *Client) DeleteWebhook(ctx context.Context) error {
	_, err := c.call(ctx, "deleteWebhook", nil)
	return err
}
