package telegram

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driven"
)

// Ensure Registrar implements the interface.
var _ driven.WebhookRegistrar = (*Registrar)(nil)

// Registrar manages the bot's push registration.
type Registrar struct {
	client *Client
}

// NewRegistrar creates a webhook registrar for one bot.
func NewRegistrar(client *Client) *Registrar {
	return &Registrar{client: client}
}

// SetWebhook registers callbackURL to receive push notifications.
func (r *Registrar) SetWebhook(ctx context.Context, callbackURL string) error {
	return r.client.SetWebhook(ctx, callbackURL)
}

// DeleteWebhook removes the current push registration.
func (r *Registrar) DeleteWebhook(ctx context.Context) error {
	return r.client.DeleteWebhook(ctx)
}

// MapPushPayload converts an inbound webhook payload (one Bot API
// update) into the same events shape the polling trigger produces, so
// downstream handling is source-agnostic. Non-message updates map to no
// events.
func MapPushPayload(payload []byte) ([]domain.Entity, error) {
	var update Update
	if err := json.Unmarshal(payload, &update); err != nil {
		return nil, fmt.Errorf("decode push payload: %w", err)
	}
	if update.Message == nil {
		return []domain.Entity{}, nil
	}
	return []domain.Entity{update.Entity()}, nil
}
