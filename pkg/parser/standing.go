package parser

import (
	"strings"

	"github.com/myusername/tennis-stats-scraper/pkg/models"
)

const (
	currentTournamentHeading = "CURRENT TOURNAMENT"
	singlesMarker            = "Singles"
	noResultMarker           = "-"
	winMarker                = "W"

	// A match row carries round, opponent, result and score/time cells
	matchRowColumns = 4

	colRound    = 0
	colOpponent = 1
	colResult   = 2
	colDetail   = 3
)

// MatchTable is the normalized content of an athlete's tournament panel
type MatchTable struct {
	Heading string
	// TypeRow is the text of the row naming the event (singles/doubles)
	TypeRow string
	// Rows are the match rows in page order, one slice of cell texts per row
	Rows [][]string
}

// noRow marks the absence of a latest-result row
const noRow = -1

// DetectStanding derives the athlete's standing from the table and returns it
// together with the index into t.Rows of the latest-result row (noRow for NotPlaying).
func DetectStanding(t MatchTable) (models.Standing, int) {
	if t.Heading != currentTournamentHeading || !strings.Contains(t.TypeRow, singlesMarker) {
		return models.Standing{Kind: models.NotPlaying}, noRow
	}

	latest := latestResultIndex(t.Rows)
	if latest == noRow {
		return models.Standing{Kind: models.NotPlaying}, noRow
	}

	row := t.Rows[latest]
	switch row[colResult] {
	case noResultMarker:
		return models.Standing{Kind: models.Advanced, Round: row[colRound]}, latest
	case winMarker:
		return models.Standing{Kind: models.Winner}, latest
	default:
		return models.Standing{Kind: models.Out}, latest
	}
}

// latestResultIndex returns the last row of the leading run of fully populated rows
func latestResultIndex(rows [][]string) int {
	i := 0
	for i < len(rows) && len(rows[i]) >= matchRowColumns {
		i++
	}
	return i - 1
}

// LatestMatchResult formats the most recent completed match.
// An unplayed Advanced row shows the round before it; before the first round is
// played there is nothing to show.
func LatestMatchResult(t MatchTable, standing models.Standing, latest int) string {
	if standing.Kind == models.NotPlaying || latest < 0 || latest >= len(t.Rows) {
		return ""
	}

	row := t.Rows[latest]
	if standing.Kind == models.Advanced {
		if latest == 0 {
			return ""
		}
		row = t.Rows[latest-1]
	}

	round := row[colRound]
	opponent := row[colOpponent]
	if opponent == "" {
		return round + "- automatically advanced"
	}
	return round + "- " + opponent + " " + row[colDetail]
}
