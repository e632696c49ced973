package sheetsclient

import (
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// PublishedMatchRow represents a single row in the published matches tab
type PublishedMatchRow struct {
	Rank      int
	ProfileID string
	Status    string
	Created   string // Format: "2006-01-02 15:04"
	MatchID   string
}

// PublishedMatches represents the complete published match list for one request
type PublishedMatches struct {
	RequestID               string
	ClassificationID        string
	CityIDs                 []string
	LanguageRequirementCode string
	Rows                    []PublishedMatchRow
}

// TabTitle returns the tab a request's matches are published to
func (p *PublishedMatches) TabTitle() string {
	return "Matches " + p.RequestID
}

// PublishMatches writes a request's matches to its own tab, creating the tab if needed.
// An existing tab is cleared and rewritten so reruns never leave stale rows behind.
func (c *Client) PublishMatches(spreadsheetID string, published *PublishedMatches) error {
	tabTitle := published.TabTitle()

	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).Do()
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	exists := false
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties.Title == tabTitle {
			exists = true
			break
		}
	}

	if !exists {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	} else {
		_, err := c.service.Spreadsheets.Values.Clear(
			spreadsheetID,
			fmt.Sprintf("%s!A1:ZZ", tabTitle),
			&sheets.ClearValuesRequest{},
		).Do()
		if err != nil {
			return fmt.Errorf("failed to clear existing tab: %w", err)
		}
	}

	_, err = c.service.Spreadsheets.Values.Update(
		spreadsheetID,
		fmt.Sprintf("%s!A1", tabTitle),
		&sheets.ValueRange{Values: generateMatchRows(published)},
	).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to write matches to tab: %w", err)
	}

	return nil
}

// generateMatchRows lays out the request summary, a blank row, the header on row 4 and one row per match
func generateMatchRows(published *PublishedMatches) [][]interface{} {
	rows := [][]interface{}{
		{"Request", published.RequestID, "Classification", published.ClassificationID},
		{"Cities", strings.Join(published.CityIDs, ", "), "Language", published.LanguageRequirementCode},
		{},
		{"Rank", "Profile", "Status", "Created", "Match ID"},
	}

	for _, row := range published.Rows {
		rows = append(rows, []interface{}{row.Rank, row.ProfileID, row.Status, row.Created, row.MatchID})
	}

	return rows
}
