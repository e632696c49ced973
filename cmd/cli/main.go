package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/cmd/cli/commands"
	"github.com/staffing-platform/referral-matcher/internal/config"
	"github.com/staffing-platform/referral-matcher/pkg/core/model"
	"github.com/staffing-platform/referral-matcher/pkg/core/services"
	"github.com/staffing-platform/referral-matcher/pkg/db"
	"github.com/staffing-platform/referral-matcher/pkg/postgres"
	"github.com/staffing-platform/referral-matcher/pkg/utils/logging"
)

var (
	env     string
	debug   bool
	app     = &commands.AppContext{}
	cleanup []func()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	app.Ctx = ctx

	rootCmd := &cobra.Command{
		Use:           "matcher",
		Short:         "Referral matcher - rank and record candidate profiles for staffing requests",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdown()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log debug output to the console")
	rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.FindMatchesCmd(app))
	rootCmd.AddCommand(commands.PreviewMatchesCmd(app))
	rootCmd.AddCommand(commands.ListMatchesCmd(app))
	rootCmd.AddCommand(commands.MatchReadyCmd(app))
	rootCmd.AddCommand(commands.WatchCmd(app))
	rootCmd.AddCommand(commands.PublishMatchesCmd(app))
	rootCmd.AddCommand(commands.MigrateCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))

	if err := rootCmd.Execute(); err != nil {
		shutdown()
		os.Exit(1)
	}
}

// initApp sets up logger, config and database
func initApp() error {
	var err error
	app.Env = env

	app.Logger, err = logging.InitLogger(env, debug)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	cleanup = append(cleanup, func() { app.Logger.Sync() })

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.Duration("grace_period", app.Cfg.GracePeriod),
		zap.Int("default_max_matches", app.Cfg.DefaultMaxMatches))

	app.Clock = time.Now
	app.Rand = services.NewRand(app.Cfg.RandomSeed)

	app.Logger.Info("Connecting to database")
	app.Postgres, err = postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	cleanup = append(cleanup, app.Postgres.Close)
	app.Database = app.Postgres

	if app.Cfg.Redis.URL != "" {
		app.Logger.Info("Connecting to redis for WFA status cache")
		rdb, err := db.NewRedisClient(app.Ctx, app.Cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		cleanup = append(cleanup, func() { rdb.Close() })

		app.Database = withWFACache{
			Database: app.Postgres,
			cache:    db.NewCachedWFAStatusStore(app.Postgres, rdb, app.Cfg.Redis.TTL, app.Logger),
		}
	}

	app.Logger.Info("Database initialized successfully")
	return nil
}

// shutdown releases resources in reverse order of acquisition
func shutdown() {
	for i := len(cleanup) - 1; i >= 0; i-- {
		cleanup[i]()
	}
	cleanup = nil
}

// withWFACache serves WFA statuses through the redis cache and everything else from postgres
type withWFACache struct {
	db.Database
	cache *db.CachedWFAStatusStore
}

var _ services.WFAStatusRefresher = withWFACache{}

func (w withWFACache) ListWFAStatuses(ctx context.Context) ([]model.WFAStatus, error) {
	return w.cache.ListWFAStatuses(ctx)
}

func (w withWFACache) RefreshWFAStatuses(ctx context.Context) ([]model.WFAStatus, error) {
	return w.cache.RefreshWFAStatuses(ctx)
}
