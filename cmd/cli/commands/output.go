package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/staffing-platform/referral-matcher/pkg/core/matcher"
	"github.com/staffing-platform/referral-matcher/pkg/core/model"
)

// printMatches writes one line per match, rank first
func printMatches(w io.Writer, matches []model.Match) {
	if len(matches) == 0 {
		fmt.Fprintln(w, "  (no matches)")
		return
	}

	fmt.Fprintf(w, "  %-4s  %-24s  %-9s  %-16s  %s\n", "Rank", "Profile", "Status", "Created", "Match ID")
	for _, m := range matches {
		fmt.Fprintf(w, "  %-4d  %-24s  %-9s  %-16s  %s\n",
			m.Rank, m.ProfileID, m.Status, m.CreatedAt.UTC().Format("2006-01-02 15:04"), m.ID)
	}
}

// printCandidates writes a ranked preview
func printCandidates(w io.Writer, profiles []model.Profile) {
	if len(profiles) == 0 {
		fmt.Fprintln(w, "  (no eligible profiles)")
		return
	}

	fmt.Fprintf(w, "  %-4s  %-24s  %-12s  %s\n", "Rank", "Profile", "WFA status", "WFA end")
	for i, p := range profiles {
		status := "-"
		if p.WFAStatus != nil {
			status = p.WFAStatus.Code
		}
		end := "-"
		if p.WFAEndDate != nil {
			end = p.WFAEndDate.Format(model.DateLayout)
		}
		fmt.Fprintf(w, "  %-4d  %-24s  %-12s  %s\n", i+1, p.ID, status, end)
	}
}

// formatReport summarises filter drop counts, e.g. "12 candidates, 5 eligible (City: 4, Status: 3)"
func formatReport(report matcher.FilterReport) string {
	summary := fmt.Sprintf("%d candidates, %d eligible", report.Initial, report.Left)

	var parts []string
	for name, count := range report.Dropped {
		if count > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", name, count))
		}
	}
	if len(parts) == 0 {
		return summary
	}

	sort.Strings(parts)
	return summary + " (" + strings.Join(parts, ", ") + ")"
}
