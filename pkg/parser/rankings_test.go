package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myusername/tennis-stats-scraper/pkg/models"
)

const rankingsURL = "https://www.espn.com/tennis/rankings"

func TestRankingReaderRead(t *testing.T) {
	reader := NewRankingReader(DefaultTopN, nil)

	t.Run("reads at most the limit", func(t *testing.T) {
		doc := newDoc(t, rankingsURL, rankingPage("Man", 101))

		athletes := reader.Read(doc, models.Men)
		require.Len(t, athletes, 100)

		first := athletes[0]
		assert.Equal(t, "1", first.Rank)
		assert.Equal(t, "Man 1", first.Name)
		assert.Equal(t, "M. 1", first.DisplayName)
		assert.Equal(t, models.Men, first.Gender)
		assert.Equal(t, "https://www.espn.com/tennis/player/_/id/1", first.ProfileURL)
		assert.Equal(t, "100", athletes[99].Rank)
	})

	t.Run("short table is read to its end", func(t *testing.T) {
		doc := newDoc(t, rankingsURL, rankingPage("Woman", 37))

		athletes := reader.Read(doc, models.Women)
		require.Len(t, athletes, 37)
		assert.Equal(t, "Woman 37", athletes[36].Name)
	})

	t.Run("missing table yields empty list", func(t *testing.T) {
		doc := newDoc(t, rankingsURL, "<html><body><p>Rankings will be published soon</p></body></html>")

		athletes := reader.Read(doc, models.Men)
		require.NotNil(t, athletes)
		assert.Empty(t, athletes)
	})

	t.Run("header only table yields empty list", func(t *testing.T) {
		doc := newDoc(t, rankingsURL, rankingPage("Man", 0))
		assert.Empty(t, reader.Read(doc, models.Men))
	})

	t.Run("malformed rows are skipped", func(t *testing.T) {
		html := `<table><tr><th>RK</th></tr>
			<tr><td>1</td><td><a href="/tennis/player/_/id/1">Man 1</a></td></tr>
			<tr><td>2</td></tr>
			<tr><td>3</td><td>no link</td></tr>
			<tr><td>4</td><td><a href="https://other.example/p/4">Man 4</a></td></tr>
		</table>`
		doc := newDoc(t, rankingsURL, html)

		athletes := reader.Read(doc, models.Men)
		require.Len(t, athletes, 2)
		assert.Equal(t, "Man 1", athletes[0].DisplayName)
		assert.Equal(t, "https://other.example/p/4", athletes[1].ProfileURL)
	})

	t.Run("custom limit", func(t *testing.T) {
		doc := newDoc(t, rankingsURL, rankingPage("Man", 20))
		assert.Len(t, NewRankingReader(5, nil).Read(doc, models.Men), 5)
	})

	t.Run("whitespace and non-breaking spaces are collapsed", func(t *testing.T) {
		html := "<table><tr><th>RK</th></tr><tr><td> 7 </td><td><a href=\"/p/7\">Novak\u00a0\n  Djokovic</a></td><td>N.\u00a0Djokovic</td></tr></table>"
		doc := newDoc(t, rankingsURL, html)

		athletes := reader.Read(doc, models.Men)
		require.Len(t, athletes, 1)
		assert.Equal(t, "7", athletes[0].Rank)
		assert.Equal(t, "Novak Djokovic", athletes[0].Name)
		assert.Equal(t, "N. Djokovic", athletes[0].DisplayName)
		assert.Equal(t, "Novak Djokovic (7)", athletes[0].Key())
	})
}

func TestPlayerChoices(t *testing.T) {
	men := []models.RankedAthlete{
		{Name: "Man 1", DisplayName: "M. 1", Rank: "1"},
		{Name: "Man 2", DisplayName: "M. 2", Rank: "2"},
		{Name: "Man 3", DisplayName: "M. 3", Rank: "3"},
	}
	women := []models.RankedAthlete{
		{Name: "Woman 1", DisplayName: "W. 1", Rank: "1"},
	}

	assert.Equal(t, []string{"M. 1 (1)", "W. 1 (1)", "M. 2 (2)", "M. 3 (3)"}, PlayerChoices(men, women))
	assert.Equal(t, []string{"W. 1 (1)"}, PlayerChoices(nil, women))
	assert.Empty(t, PlayerChoices(nil, nil))
}
