package driven

import "context"

// WebhookRegistrar manages push registration for sources that support
// it. Inbound push payloads are mapped by the connector to the same
// event shape as polling triggers, so downstream handling is
// source-agnostic.
type WebhookRegistrar interface {
	// SetWebhook registers callbackURL to receive push notifications.
	SetWebhook(ctx context.Context, callbackURL string) error

	// DeleteWebhook removes the current push registration.
	DeleteWebhook(ctx context.Context) error
}
