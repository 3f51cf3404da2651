package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yukikurage/column-task-api/internal/config"
	"github.com/yukikurage/column-task-api/internal/constants"
	"github.com/yukikurage/column-task-api/internal/database"
	"github.com/yukikurage/column-task-api/internal/repository"
	"github.com/yukikurage/column-task-api/internal/services"
	"golang.org/x/oauth2"
)

var (
	importProvider string
	importAccount  string
	importScopes   string
)

func importTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import-token [token.json]",
		Short: "Store an OAuth token file for an external provider",
		Long: `Store an OAuth token for the external provider.

The file holds a JSON encoded OAuth token as written by most OAuth
helpers: access_token, refresh_token, token_type and expiry.

Examples:
  column-task-api import-token token.json --account me@example.com
  column-task-api import-token token.json --provider google --scopes "gmail.readonly calendar"`,
		Args: cobra.ExactArgs(1),
		RunE: runImportToken,
	}

	cmd.Flags().StringVar(&importProvider, "provider", constants.ProviderGoogle, "provider name")
	cmd.Flags().StringVar(&importAccount, "account", "", "provider account id (usually the e-mail address)")
	cmd.Flags().StringVar(&importScopes, "scopes", "", "space separated scopes granted to the token")

	return cmd
}

func runImportToken(cmd *cobra.Command, args []string) error {
	tok, err := readToken(args[0])
	if err != nil {
		return err
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	if err := database.MigrateDatabase(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	providerService := services.NewProviderService(repository.NewTokenRepository(db))
	if _, err := providerService.SaveToken(importProvider, importAccount, tok, strings.Fields(importScopes)); err != nil {
		return err
	}

	status, err := providerService.Status(importProvider)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Token stored for %s (connected: %t)\n", importProvider, status.Connected)
	return nil
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	tok := &oauth2.Token{}
	if err := json.Unmarshal(data, tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return tok, nil
}
