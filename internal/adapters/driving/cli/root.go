// Package cli implements the pollbridge command-line host. The CLI
// owns everything the core deliberately does not: configuration,
// snapshot persistence and scheduling.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/pollbridge/internal/adapters/driven/config/file"
	"github.com/custodia-labs/pollbridge/internal/adapters/driven/remote"
	"github.com/custodia-labs/pollbridge/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/pollbridge/internal/connectors/airtable"
	"github.com/custodia-labs/pollbridge/internal/connectors/telegram"
	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driven"
	"github.com/custodia-labs/pollbridge/internal/core/ports/driving"
	"github.com/custodia-labs/pollbridge/internal/core/services"
	"github.com/custodia-labs/pollbridge/internal/logger"
)

// Config keys used by the CLI host.
const (
	keyAirtableClientID   = "airtable.client_id"
	keyAirtableSecret     = "airtable.client_secret"
	keyAirtableCredential = "airtable.credential_id"
	keyAirtableBase       = "airtable.base"
	keyAirtableTable      = "airtable.table"
	keyAirtableWatch      = "airtable.watch_column"
	keyTelegramBotToken   = "telegram.bot_token"
	keyPollInterval       = "poll.interval_seconds"
)

// Services wired once per process by initServices.
var (
	configStore driven.ConfigStore
	stateStore  driven.StateStore
	credStore   driven.CredentialsStore
	store       *sqlite.Store
	detector    *services.ChangeDetector
	dictionary  *services.DictionaryService
	dispatcher  driving.Dispatcher
)

var (
	verboseFlag bool
	configDir   string
	dataDir     string
)

var rootCmd = &cobra.Command{
	Use:   "pollbridge",
	Short: "Turn paginated APIs into automation trigger sources",
	Long: `pollbridge polls third-party APIs (Airtable, Telegram) and detects
new or changed records between invocations, without the remote system
offering push notifications and without keeping a process alive
between checks.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "config directory (default ~/.pollbridge)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.pollbridge/data)")
}

// Execute runs the CLI.
func Execute() error {
	defer func() {
		if store != nil {
			store.Close()
		}
	}()
	return rootCmd.Execute()
}

// initServices wires stores and core services before any command runs.
func initServices(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verboseFlag)

	var err error
	configStore, err = file.NewConfigStore(configDir)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}

	store, err = sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	stateStore = store.StateStore()
	credStore = store.CredentialsStore()

	detector = services.NewChangeDetector()
	dictionary = services.NewDictionaryService()
	dispatcher = services.NewTriggerDispatcher()
	return nil
}

// airtableClient builds an Airtable client from the stored credential,
// refreshing the access token first when it has expired.
func airtableClient(ctx context.Context) (*airtable.Client, error) {
	credID := configStore.GetString(keyAirtableCredential)
	if credID == "" {
		return nil, fmt.Errorf("no airtable connection: %w", domain.ErrAuthRequired)
	}

	cred, err := credStore.Get(ctx, credID)
	if err != nil {
		return nil, fmt.Errorf("load credential: %w", err)
	}

	if cred.IsExpired() && cred.RefreshToken != "" {
		flow := airtableAuthFlow("")
		refreshed, err := flow.Refresh(ctx, cred.RefreshToken)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrAuthRequired, err)
		}
		refreshed.ID = cred.ID
		if err := credStore.Save(ctx, *refreshed); err != nil {
			return nil, fmt.Errorf("save refreshed credential: %w", err)
		}
		cred = refreshed
	}

	caller := remote.NewCaller(ctx, airtable.DefaultBaseURL, cred.AccessToken)
	return airtable.NewClient(caller), nil
}

// airtableAuthFlow builds the auth flow for the configured client.
// clientSecret may be empty for refresh-only uses when the provider
// accepts public clients.
func airtableAuthFlow(redirectURI string) driving.AuthFlow {
	clientID := configStore.GetString(keyAirtableClientID)
	secret := configStore.GetString(keyAirtableSecret)

	identity := airtable.Identity(func(ctx context.Context, accessToken string) *airtable.Client {
		return airtable.NewClient(remote.NewCaller(ctx, airtable.DefaultBaseURL, accessToken))
	})
	return services.NewAuthFlowService(airtable.OAuthConfig(clientID, secret, redirectURI), identity)
}

// telegramClient builds a Bot API client from the configured token.
func telegramClient(ctx context.Context) (*telegram.Client, error) {
	token := configStore.GetString(keyTelegramBotToken)
	if token == "" {
		return nil, fmt.Errorf("no telegram bot token configured: %w", domain.ErrAuthRequired)
	}
	return telegram.NewClient(remote.NewCaller(ctx, telegram.BaseURL(token), "")), nil
}

// registerTriggers binds every available trigger on the dispatcher.
// Clients are built lazily per provider so a missing credential only
// fails the triggers that need it.
func registerTriggers(ctx context.Context) error {
	if at, err := airtableClient(ctx); err == nil {
		if err := dispatcher.Register(airtable.TriggerNewRecord, airtable.NewRecordTrigger(at, detector)); err != nil {
			return err
		}
		if err := dispatcher.Register(airtable.TriggerUpdatedRecord, airtable.UpdatedRecordTrigger(at, detector)); err != nil {
			return err
		}
	} else {
		logger.Debug("airtable triggers unavailable: %v", err)
	}

	if tg, err := telegramClient(ctx); err == nil {
		if err := dispatcher.Register(telegram.TriggerNewMessage, telegram.NewMessageTrigger(tg, detector)); err != nil {
			return err
		}
	} else {
		logger.Debug("telegram triggers unavailable: %v", err)
	}

	if len(dispatcher.Names()) == 0 {
		return fmt.Errorf("no triggers available; run 'pollbridge auth' or configure a bot token")
	}
	return nil
}

// scheduledTriggers builds the trigger instances the scheduler polls,
// from the configured connection parameters.
func scheduledTriggers() []services.ScheduledTrigger {
	var triggers []services.ScheduledTrigger

	base := configStore.GetString(keyAirtableBase)
	table := configStore.GetString(keyAirtableTable)
	if base != "" && table != "" {
		params := map[string]string{
			airtable.ParamBase:  base,
			airtable.ParamTable: table,
		}
		triggers = append(triggers, services.ScheduledTrigger{
			InstanceID: "airtable-new-record",
			Trigger:    airtable.TriggerNewRecord,
			Params:     params,
		})
		if watch := configStore.GetString(keyAirtableWatch); watch != "" {
			updated := map[string]string{
				airtable.ParamBase:        base,
				airtable.ParamTable:       table,
				airtable.ParamWatchColumn: watch,
			}
			triggers = append(triggers, services.ScheduledTrigger{
				InstanceID: "airtable-updated-record",
				Trigger:    airtable.TriggerUpdatedRecord,
				Params:     updated,
			})
		}
	}

	if configStore.GetString(keyTelegramBotToken) != "" {
		triggers = append(triggers, services.ScheduledTrigger{
			InstanceID: "telegram-new-message",
			Trigger:    telegram.TriggerNewMessage,
		})
	}
	return triggers
}

// pollInterval reads the configured cadence, defaulting to one minute.
func pollInterval() time.Duration {
	seconds := configStore.GetInt(keyPollInterval)
	if seconds <= 0 {
		seconds = 60
	}
	return time.Duration(seconds) * time.Second
}
