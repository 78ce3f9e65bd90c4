package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pollbridge/internal/connectors/telegram"
)

var webhookURL string

var webhookCmd = &cobra.Command{
	Use:   "webhook {set|delete}",
	Short: "Manage push registration for the Telegram bot",
	Long: `Registers or removes the bot's webhook. While a webhook is set,
Telegram delivers updates by push instead of polling; inbound payloads
map to the same event shape the polling trigger produces.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"set", "delete"},
	RunE:      runWebhook,
}

func init() {
	webhookCmd.Flags().StringVar(&webhookURL, "url", "", "public callback URL (required for set)")
	rootCmd.AddCommand(webhookCmd)
}

func runWebhook(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	tg, err := telegramClient(ctx)
	if err != nil {
		return err
	}
	registrar := telegram.NewRegistrar(tg)

	switch args[0] {
	case "set":
		if webhookURL == "" {
			return errors.New("--url is required for set")
		}
		if err := registrar.SetWebhook(ctx, webhookURL); err != nil {
			return err
		}
		cmd.Printf("Webhook set to %s.\n", webhookURL)
	case "delete":
		if err := registrar.DeleteWebhook(ctx); err != nil {
			return err
		}
		cmd.Println("Webhook deleted.")
	}
	return nil
}
