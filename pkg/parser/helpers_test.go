package parser

import (
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func newDoc(t *testing.T, rawURL, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	if rawURL != "" {
		u, err := url.Parse(rawURL)
		require.NoError(t, err)
		doc.Url = u
	}
	return doc
}

// rankingPage renders a ranking table with a header row and n athlete rows
func rankingPage(prefix string, n int) string {
	var b strings.Builder
	b.WriteString("<html><body><table><tr><th>RK</th><th>Name</th><th>Short</th></tr>")
	for i := 1; i <= n; i++ {
		fmt.Fprintf(&b, `<tr><td>%d</td><td><a href="/tennis/player/_/id/%d">%s %d</a></td><td>%s. %d</td></tr>`,
			i, i, prefix, i, prefix[:1], i)
	}
	b.WriteString("</table></body></html>")
	return b.String()
}

type matchRow struct {
	round, opponent, result, detail string
}

// profilePage renders an athlete profile with a stats panel and a tournament panel
func profilePage(name, season, titles, heading, eventType string, rows []matchRow) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	fmt.Fprintf(&b, "<h1>%s</h1>", name)
	b.WriteString(`<div class="player-stats">`)
	if season != "" {
		fmt.Fprintf(&b, "<p>%s Season Stats</p>", season)
	}
	fmt.Fprintf(&b, "<table><tr><th>Titles</th></tr><tr><td>%s</td></tr></table></div>", titles)

	fmt.Fprintf(&b, `<div id="my-players-table"><h4>%s</h4><a href="/tennis/tournament">US Open</a>`, heading)
	b.WriteString("<table><tr><td>Men's Singles Draw</td></tr></table>")
	fmt.Fprintf(&b, "<table><tr><th>Round</th><th>Opponent</th><th>Result</th><th>Score</th></tr><tr><td>%s</td></tr>", eventType)
	for _, r := range rows {
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>", r.round, r.opponent, r.result, r.detail)
	}
	b.WriteString("</table></div></body></html>")
	return b.String()
}
