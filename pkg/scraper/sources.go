package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Sources holds the fixed page locations of one site
type Sources struct {
	BaseURL string
}

// MenRankingsURL returns the men's ranking table page
func (s Sources) MenRankingsURL() string {
	return s.base() + "/rankings"
}

// WomenRankingsURL returns the women's ranking table page
func (s Sources) WomenRankingsURL() string {
	return s.base() + "/rankings/_/type/wta"
}

// TodayScheduleURL returns the current day's match schedule page
func (s Sources) TodayScheduleURL() string {
	return s.base() + "/dailyResults"
}

// YesterdayScheduleURL returns the schedule page for the calendar day before now in loc
func (s Sources) YesterdayScheduleURL(now time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	yesterday := time.Date(local.Year(), local.Month(), local.Day()-1, 12, 0, 0, 0, loc)
	return s.base() + "/dailyResults?date=" + yesterday.Format("20060102")
}

func (s Sources) base() string {
	return strings.TrimRight(s.BaseURL, "/")
}

// CycleDocuments are the top-level pages every cycle starts from
type CycleDocuments struct {
	MenRankings       *goquery.Document
	WomenRankings     *goquery.Document
	TodaySchedule     *goquery.Document
	YesterdaySchedule *goquery.Document
}

// FetchCycleDocuments retrieves the four top-level pages one after another.
// The first failure aborts the fetch.
func (c *Client) FetchCycleDocuments(ctx context.Context, src Sources, now time.Time, loc *time.Location) (*CycleDocuments, error) {
	type target struct {
		name string
		url  string
		dest **goquery.Document
	}

	docs := &CycleDocuments{}
	targets := []target{
		{"men's rankings", src.MenRankingsURL(), &docs.MenRankings},
		{"women's rankings", src.WomenRankingsURL(), &docs.WomenRankings},
		{"today's schedule", src.TodayScheduleURL(), &docs.TodaySchedule},
		{"yesterday's schedule", src.YesterdayScheduleURL(now, loc), &docs.YesterdaySchedule},
	}

	for _, t := range targets {
		doc, err := c.FetchDocument(ctx, t.url)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s document: %w", t.name, err)
		}
		*t.dest = doc
		c.logger.Infow("Got document", "document", t.name, "url", t.url)
	}

	return docs, nil
}
