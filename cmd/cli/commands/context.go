package commands

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/internal/config"
	"github.com/staffing-platform/referral-matcher/pkg/clients/sheetsclient"
	"github.com/staffing-platform/referral-matcher/pkg/core/services"
	"github.com/staffing-platform/referral-matcher/pkg/db"
	"github.com/staffing-platform/referral-matcher/pkg/postgres"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Env      string
	Cfg      *config.Config
	Database db.Database
	Postgres *postgres.DB
	Clock    services.Clock
	Rand     *rand.Rand
	Logger   *zap.Logger
	Ctx      context.Context

	sheetsClient *sheetsclient.Client
}

// SheetsClient connects to Google Sheets on first use so only publishing needs OAuth
func (app *AppContext) SheetsClient() (*sheetsclient.Client, error) {
	if app.sheetsClient != nil {
		return app.sheetsClient, nil
	}

	app.Logger.Info("Loading OAuth client configuration")
	oauthCfg, err := config.LoadOAuthClientWithEnv(app.Env)
	if err != nil {
		return nil, fmt.Errorf("failed to load OAuth client config: %w", err)
	}

	app.Logger.Info("Initializing sheets client")
	client, err := sheetsclient.NewClient(app.Ctx, oauthCfg, app.Env, app.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}

	app.sheetsClient = client
	return client, nil
}

// maxFlag registers --max on a command
func maxFlag(cmd *cobra.Command) {
	cmd.Flags().Int("max", 0, "Maximum number of matches (defaults to defaultMaxMatches from config)")
}

// resolveMax returns --max when given, otherwise the configured default
func resolveMax(cmd *cobra.Command, cfg *config.Config) (int, error) {
	if !cmd.Flags().Changed("max") {
		return cfg.DefaultMaxMatches, nil
	}
	return cmd.Flags().GetInt("max")
}
