package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/staffing-platform/referral-matcher/pkg/core/services"
)

// FindMatchesCmd creates the findMatches command
func FindMatchesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "findMatches <request_id>",
		Short: "Select and save the best-ranked eligible profiles for a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			max, err := resolveMax(cmd, app.Cfg)
			if err != nil {
				return err
			}

			app.Logger.Debug("findMatches command", zap.String("request_id", args[0]), zap.Int("max", max))

			result, err := services.FindMatches(app.Ctx, app.Database, app.Clock, app.Rand, app.Cfg, app.Logger, args[0], max)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\n✓ %d match(es) created for request %s\n", len(result.Matches), result.RequestID)
			fmt.Fprintf(out, "  %s\n\n", formatReport(result.Report))
			printMatches(out, result.Matches)
			fmt.Fprintln(out)

			return nil
		},
	}
	maxFlag(cmd)
	return cmd
}

// PreviewMatchesCmd creates the previewMatches command
func PreviewMatchesCmd(app *AppContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "previewMatches <request_id>",
		Short: "Show the ranked selection for a request without saving it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			max, err := resolveMax(cmd, app.Cfg)
			if err != nil {
				return err
			}

			result, err := services.PreviewMatches(app.Ctx, app.Database, app.Clock, app.Rand, app.Cfg, app.Logger, args[0], max)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nPreview for request %s (nothing saved)\n", result.RequestID)
			fmt.Fprintf(out, "  %s\n\n", formatReport(result.Report))
			printCandidates(out, result.Candidates)
			fmt.Fprintln(out)

			return nil
		},
	}
	maxFlag(cmd)
	return cmd
}

// ListMatchesCmd creates the listMatches command
func ListMatchesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "listMatches <request_id>",
		Short: "List the matches recorded for a request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches, err := services.ListMatches(app.Ctx, app.Database, app.Logger, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nMatches for request %s\n\n", args[0])
			printMatches(out, matches)
			fmt.Fprintln(out)

			return nil
		},
	}
}

// PublishMatchesCmd creates the publishMatches command
func PublishMatchesCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "publishMatches <request_id>",
		Short: "Publish a request's matches to the review spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sheets, err := app.SheetsClient()
			if err != nil {
				return err
			}

			published, err := services.PublishMatches(app.Ctx, app.Database, sheets, app.Cfg, app.Logger, args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "\n✓ Published %d row(s) to tab %q\n\n", len(published.Rows), published.TabTitle())
			return nil
		},
	}
}
