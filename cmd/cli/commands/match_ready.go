package commands

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/pkg/core/services"
)

// MatchReadyCmd creates the matchReady command
func MatchReadyCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "matchReady",
		Short: "Match every ready request that has no matches yet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			max, err := resolveMax(cmd, app.Cfg)
			if err != nil {
				return err
			}

			result, err := services.MatchReadyRequests(app.Ctx, app.Database, app.Clock, app.Rand, app.Cfg, app.Logger, max)
			if err != nil {
				return err
			}

			printBatch(cmd.OutOrStdout(), result)
			if len(result.Failed) > 0 {
				return fmt.Errorf("%d request(s) failed", len(result.Failed))
			}
			return nil
		},
	}
	maxFlag(cmd)
	return cmd
}

// WatchCmd creates the watch command
func WatchCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run matchReady on the configured matchSchedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			max, err := resolveMax(cmd, app.Cfg)
			if err != nil {
				return err
			}

			for {
				now := app.Clock()
				next, err := services.NextScheduledRun(app.Cfg.MatchSchedule, now)
				if err != nil {
					return err
				}

				app.Logger.Info("Waiting for next scheduled run", zap.Time("next_run", next))

				timer := time.NewTimer(next.Sub(now))
				select {
				case <-app.Ctx.Done():
					timer.Stop()
					app.Logger.Info("Watch stopped")
					return nil
				case <-timer.C:
				}

				result, err := services.MatchReadyRequests(app.Ctx, app.Database, app.Clock, app.Rand, app.Cfg, app.Logger, max)
				if err != nil {
					// One bad run shouldn't end the watch
					app.Logger.Error("Scheduled run failed", zap.Error(err))
					continue
				}
				printBatch(cmd.OutOrStdout(), result)
			}
		},
	}
	maxFlag(cmd)
	return cmd
}

func printBatch(w io.Writer, result *services.BatchResult) {
	fmt.Fprintf(w, "\nMatched %d request(s), skipped %d, failed %d\n",
		len(result.Matched), len(result.Skipped), len(result.Failed))

	for _, r := range result.Matched {
		fmt.Fprintf(w, "  ✓ %s: %d match(es), %s\n", r.RequestID, len(r.Matches), formatReport(r.Report))
	}

	failed := make([]string, 0, len(result.Failed))
	for id := range result.Failed {
		failed = append(failed, id)
	}
	sort.Strings(failed)
	for _, id := range failed {
		fmt.Fprintf(w, "  ✗ %s: %v\n", id, result.Failed[id])
	}
	fmt.Fprintln(w)
}
