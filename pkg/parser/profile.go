package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/myusername/tennis-stats-scraper/pkg/models"
)

// UnknownTitles is reported when the statistics panel has no season label
const UnknownTitles = "Singles titles: unknown"

// Month/day layouts accepted for upcoming match dates
var upcomingDateLayouts = []string{"January 2", "Jan 2", "Jan. 2"}

// ProfileParser extracts PlayerStats from athlete profile pages
type ProfileParser struct {
	// Location is the reference time zone that defines "today"
	Location *time.Location
	Now      func() time.Time
}

// NewProfileParser creates a parser that compares match dates in loc
func NewProfileParser(loc *time.Location) *ProfileParser {
	if loc == nil {
		loc = time.UTC
	}
	return &ProfileParser{Location: loc, Now: time.Now}
}

// Parse builds the stats of the athlete whose profile is doc.
// A page without a tournament panel is a NotPlaying athlete; a panel that lacks the
// elements it always carries yields ErrUnexpectedStructure.
func (p *ProfileParser) Parse(doc *goquery.Document, name, rank string) (models.PlayerStats, error) {
	stats := models.PlayerStats{
		Name:     name,
		Ranking:  "Current ranking: " + rank,
		Titles:   Titles(doc),
		Standing: models.Standing{Kind: models.NotPlaying},
	}

	panel := doc.Find("#my-players-table").First()
	if panel.Length() == 0 {
		return stats, nil
	}

	table, err := ReadMatchTable(panel)
	if err != nil {
		return stats, fmt.Errorf("profile of %s: %w", name, err)
	}

	standing, latest := DetectStanding(table)
	stats.Standing = standing
	if standing.Kind == models.NotPlaying {
		return stats, nil
	}

	stats.CurrentTournament = text(panel.Find("a").First())
	stats.LatestMatchResult = LatestMatchResult(table, standing, latest)

	if standing.Kind == models.Advanced {
		playerName := text(doc.Find("h1").First())
		if playerName == "" {
			playerName = name
		}
		stats.UpcomingMatch = p.upcomingMatch(table.Rows[latest][colDetail], playerName)
	}

	return stats, nil
}

// Titles returns "<season> singles titles: <n>" from the statistics panel
func Titles(doc *goquery.Document) string {
	panel := doc.Find("div.player-stats").First()
	paragraph := panel.Find("p").First()
	if paragraph.Length() == 0 {
		// The site sometimes drops the season label
		return UnknownTitles
	}

	season := firstWord(text(paragraph))
	count := text(panel.Find("table").First().Find("tr").Eq(1).Find("td").First())
	if season == "" || count == "" {
		return UnknownTitles
	}
	return season + " singles titles: " + count
}

// ReadMatchTable normalizes the match table of a tournament panel.
// The second table of the panel lists the event type in row 1 and matches from row 2.
func ReadMatchTable(panel *goquery.Selection) (MatchTable, error) {
	heading := panel.Find("h4").First()
	if heading.Length() == 0 {
		return MatchTable{}, fmt.Errorf("%w: tournament panel has no heading", ErrUnexpectedStructure)
	}

	table := MatchTable{Heading: text(heading)}
	if table.Heading != currentTournamentHeading {
		return table, nil
	}

	tables := panel.Find("table")
	if tables.Length() < 2 {
		return table, fmt.Errorf("%w: tournament panel has %d tables", ErrUnexpectedStructure, tables.Length())
	}

	rows := tables.Eq(1).Find("tr")
	if rows.Length() < 2 {
		return table, fmt.Errorf("%w: match table has no event type row", ErrUnexpectedStructure)
	}

	table.TypeRow = text(rows.Eq(1))
	rows.Slice(2, goquery.ToEnd).Each(func(_ int, row *goquery.Selection) {
		table.Rows = append(table.Rows, cellTexts(row))
	})
	return table, nil
}

// upcomingMatch returns "<name> <time>" when detail schedules a match for today
func (p *ProfileParser) upcomingMatch(detail, playerName string) string {
	if !strings.Contains(detail, "ET") {
		return ""
	}

	fields := strings.Fields(detail)
	if len(fields) < 3 {
		return ""
	}

	month, day, ok := parseMonthDay(fields[0] + " " + fields[1])
	if !ok {
		return ""
	}

	today := p.now().In(p.Location)
	if month != today.Month() || day != today.Day() {
		return ""
	}
	return playerName + " " + strings.Join(fields[2:], " ")
}

func (p *ProfileParser) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

// parseMonthDay reads a "October 14" style date without a year
func parseMonthDay(s string) (time.Month, int, bool) {
	for _, layout := range upcomingDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Month(), t.Day(), true
		}
	}
	return 0, 0, false
}
