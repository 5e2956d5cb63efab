package parser

import (
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/myusername/tennis-stats-scraper/pkg/models"
	"github.com/myusername/tennis-stats-scraper/pkg/scraper"
)

// DefaultTopN is the number of ranked athletes read from each table
const DefaultTopN = 100

// RankingReader reads ranked athletes from a ranking page
type RankingReader struct {
	Limit  int
	Logger *zap.Logger
}

// NewRankingReader creates a reader for the top limit athletes of each table
func NewRankingReader(limit int, logger *zap.Logger) *RankingReader {
	if limit <= 0 {
		limit = DefaultTopN
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RankingReader{Limit: limit, Logger: logger}
}

// Read returns the athletes listed in the first table of doc, in row order.
// A missing table means the season has not started and yields an empty slice.
// Tables shorter than the limit are read to their end.
func (r *RankingReader) Read(doc *goquery.Document, gender models.Gender) []models.RankedAthlete {
	log := r.Logger.Sugar()

	table := doc.Find("table").First()
	if table.Length() == 0 {
		log.Infow("No ranking table found", "gender", gender)
		return []models.RankedAthlete{}
	}

	rows := table.Find("tr")
	numRows := rows.Length()
	athletes := make([]models.RankedAthlete, 0, min(r.Limit, max(numRows-1, 0)))

	// Row 0 is the header
	for rowIndex := 1; rowIndex <= r.Limit && rowIndex < numRows; rowIndex++ {
		athlete, err := readRankingRow(rows.Eq(rowIndex), doc)
		if err != nil {
			log.Warnw("Skipping ranking row", "gender", gender, "row", rowIndex, "error", err)
			continue
		}
		athlete.Gender = gender
		athletes = append(athletes, athlete)
	}

	if numRows-1 < r.Limit {
		log.Infow("Ranking table shorter than limit",
			"gender", gender,
			"rows", numRows-1,
			"limit", r.Limit,
		)
	}

	return athletes
}

func readRankingRow(row *goquery.Selection, doc *goquery.Document) (models.RankedAthlete, error) {
	cells := row.Find("td")
	if cells.Length() < 2 {
		return models.RankedAthlete{}, fmt.Errorf("%w: ranking row has %d cells", ErrUnexpectedStructure, cells.Length())
	}

	nameCell := cells.Eq(1)
	link := nameCell.Find("a").First()
	href, ok := link.Attr("href")
	if !ok {
		return models.RankedAthlete{}, fmt.Errorf("%w: ranking row has no profile link", ErrUnexpectedStructure)
	}

	athlete := models.RankedAthlete{
		Rank:       text(cells.Eq(0)),
		Name:       text(nameCell),
		ProfileURL: scraper.ResolveRelativeURL(doc.Url, href),
	}
	if cells.Length() > 2 {
		athlete.DisplayName = text(cells.Eq(2))
	}
	if athlete.DisplayName == "" {
		athlete.DisplayName = athlete.Name
	}
	return athlete, nil
}

// PlayerChoices returns "display name (rank)" entries with each man followed by
// the woman of the same table row. Each list contributes only the rows it has.
func PlayerChoices(men, women []models.RankedAthlete) []string {
	choices := make([]string, 0, len(men)+len(women))
	for i := 0; i < max(len(men), len(women)); i++ {
		if i < len(men) {
			choices = append(choices, choiceLabel(men[i]))
		}
		if i < len(women) {
			choices = append(choices, choiceLabel(women[i]))
		}
	}
	return choices
}

func choiceLabel(a models.RankedAthlete) string {
	return fmt.Sprintf("%s (%s)", a.DisplayName, a.Rank)
}
