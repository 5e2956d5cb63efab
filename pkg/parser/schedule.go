package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/myusername/tennis-stats-scraper/pkg/models"
)

// ScheduledMatch is one row of a daily schedule page
type ScheduledMatch struct {
	Players [2]string
	// Detail is the score of a completed match or the start time of a pending one
	Detail string
}

// ReadSchedule returns every schedule row that names two players
func ReadSchedule(doc *goquery.Document) []ScheduledMatch {
	var matches []ScheduledMatch
	if doc == nil {
		return matches
	}

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		var players []string
		row.Find("a").Each(func(_ int, a *goquery.Selection) {
			if name := text(a); name != "" && len(players) < 2 {
				players = append(players, name)
			}
		})
		if len(players) < 2 {
			return
		}

		cells := row.Find("td")
		match := ScheduledMatch{Players: [2]string{players[0], players[1]}}
		if cells.Length() > 0 {
			match.Detail = text(cells.Last())
			// A trailing player cell carries no detail
			if match.Detail == players[0] || match.Detail == players[1] {
				match.Detail = ""
			}
		}
		matches = append(matches, match)
	})

	return matches
}

// BuildDigest summarizes yesterday's results and today's matches involving any
// tracked athlete. It returns an empty string when no tracked athlete appears.
func BuildDigest(today, yesterday *goquery.Document, tracked []models.RankedAthlete) string {
	names := make(map[string]struct{}, len(tracked))
	for _, a := range tracked {
		names[normalizeName(a.Name)] = struct{}{}
		if a.DisplayName != "" {
			names[normalizeName(a.DisplayName)] = struct{}{}
		}
	}

	var b strings.Builder
	writeSection(&b, "Yesterday:", filterTracked(ReadSchedule(yesterday), names))
	writeSection(&b, "Today:", filterTracked(ReadSchedule(today), names))
	return strings.TrimRight(b.String(), "\n")
}

func filterTracked(matches []ScheduledMatch, names map[string]struct{}) []ScheduledMatch {
	var kept []ScheduledMatch
	for _, m := range matches {
		_, first := names[normalizeName(m.Players[0])]
		_, second := names[normalizeName(m.Players[1])]
		if first || second {
			kept = append(kept, m)
		}
	}
	return kept
}

func writeSection(b *strings.Builder, title string, matches []ScheduledMatch) {
	if len(matches) == 0 {
		return
	}
	b.WriteString(title)
	b.WriteString("\n")
	for _, m := range matches {
		b.WriteString(m.Players[0])
		b.WriteString(" vs ")
		b.WriteString(m.Players[1])
		if m.Detail != "" {
			b.WriteString(": ")
			b.WriteString(m.Detail)
		}
		b.WriteString("\n")
	}
}
