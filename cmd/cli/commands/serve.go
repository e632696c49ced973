package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/pkg/core/services"
	"github.com/staffing-platform/referral-matcher/pkg/httpapi"
)

const shutdownTimeout = 10 * time.Second

// MigrateCmd creates the migrate command
func MigrateCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := app.Postgres.RunMigrations(app.Ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(applied) == 0 {
				fmt.Fprintln(out, "Database is up to date")
				return nil
			}
			for _, name := range applied {
				fmt.Fprintf(out, "✓ applied %s\n", name)
			}
			return nil
		},
	}
}

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the matching HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Env == "prod" {
				gin.SetMode(gin.ReleaseMode)
			}

			randSource := services.NewRandSource(app.Cfg.RandomSeed)
			router := httpapi.NewRouter(httpapi.RouterDeps{
				Store:   app.Database,
				Health:  app.Postgres,
				Clock:   app.Clock,
				NewRand: randSource.Next,
				Config:  app.Cfg,
				Logger:  app.Logger,
			})

			server := &http.Server{
				Addr:              app.Cfg.HTTP.Addr,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				app.Logger.Info("HTTP server listening", zap.String("addr", server.Addr))
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("http server failed: %w", err)
				}
				return nil
			case <-app.Ctx.Done():
			}

			app.Logger.Info("Shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}
}
