package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/pollbridge/internal/adapters/driving/oauth"
	"github.com/custodia-labs/pollbridge/internal/connectors/airtable"
	"github.com/custodia-labs/pollbridge/internal/core/domain"
)

// callbackTimeout bounds the wait for the browser redirect.
const callbackTimeout = 5 * time.Minute

var authClientID string

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Connect an Airtable account",
	Long: `Runs the authorization-code flow with PKCE against Airtable.
Opens the browser for consent, receives the redirect on a local
callback server and stores the resulting tokens.`,
	RunE: runAuth,
}

func init() {
	authCmd.Flags().StringVar(&authClientID, "client-id", "", "OAuth client id (stored in config)")
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	clientID := authClientID
	if clientID == "" {
		clientID = configStore.GetString(keyAirtableClientID)
	}
	if clientID == "" {
		return errors.New("no client id: pass --client-id or set airtable.client_id in config")
	}

	secret, err := promptSecret(cmd, "Client secret: ")
	if err != nil {
		return err
	}
	if err := configStore.Set(keyAirtableClientID, clientID); err != nil {
		return err
	}
	if err := configStore.Set(keyAirtableSecret, secret); err != nil {
		return err
	}

	server := oauth.NewCallbackServer(0)
	if err := server.Start(); err != nil {
		return fmt.Errorf("start callback server: %w", err)
	}
	defer server.Stop()

	flow := airtableAuthFlow(server.RedirectURI())
	authURL, err := flow.BuildAuthorizationURL(clientID, airtable.DefaultScopes)
	if err != nil {
		return fmt.Errorf("build authorization url: %w", err)
	}

	cmd.Println("Opening browser for authorization...")
	if err := oauth.OpenBrowser(authURL); err != nil {
		cmd.Printf("Could not open browser. Visit:\n%s\n", authURL)
	}

	callback, err := server.WaitForCallback(callbackTimeout)
	if err != nil {
		return fmt.Errorf("authorization callback: %w", err)
	}

	// The state parameter carries the PKCE verifier back to us.
	result := flow.ExchangeCode(ctx, callback.Code, server.RedirectURI(), callback.State)
	if result.Status != domain.ExchangeOK {
		cmd.Println("Connection failed. Check the client credentials and try again.")
		return nil
	}

	if err := credStore.Save(ctx, result.Credential); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}
	if err := configStore.Set(keyAirtableCredential, result.Credential.ID); err != nil {
		return err
	}

	cmd.Printf("Connected as %s.\n", result.AccountLabel)
	return nil
}

// promptSecret reads a secret without echoing when attached to a
// terminal, falling back to a plain line read otherwise.
func promptSecret(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		raw, err := term.ReadPassword(fd)
		cmd.Println()
		if err != nil {
			return "", fmt.Errorf("read secret: %w", err)
		}
		return strings.TrimSpace(string(raw)), nil
	}

	var line string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &line); err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	return strings.TrimSpace(line), nil
}
