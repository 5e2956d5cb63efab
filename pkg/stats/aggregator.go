// Package stats assembles the per-athlete stats map of one fetch cycle
package stats

import (
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/myusername/tennis-stats-scraper/internal/metrics"
	"github.com/myusername/tennis-stats-scraper/pkg/models"
	"github.com/myusername/tennis-stats-scraper/pkg/parser"
	"github.com/myusername/tennis-stats-scraper/pkg/scraper"
)

// DocumentFetcher retrieves and parses one page
type DocumentFetcher interface {
	FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// ProfileParser turns a profile page into stats
type ProfileParser interface {
	Parse(doc *goquery.Document, name, rank string) (models.PlayerStats, error)
}

// Config configures an Aggregator
type Config struct {
	Fetcher DocumentFetcher
	Parser  ProfileParser
	// Concurrency bounds in-flight profile fetches; 1 fetches sequentially
	Concurrency int
	Logger      *zap.Logger
}

// Aggregator builds StatsMaps from ranked athletes
type Aggregator struct {
	fetcher     DocumentFetcher
	parser      ProfileParser
	concurrency int
	logger      *zap.SugaredLogger
}

// Result is the outcome of one aggregation
type Result struct {
	Stats models.StatsMap
	// Skipped counts athletes recorded as degraded entries
	Skipped int
}

type outcome struct {
	stats    models.PlayerStats
	degraded bool
}

// NewAggregator creates an Aggregator, applying defaults for unset fields
func NewAggregator(cfg Config) *Aggregator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Aggregator{
		fetcher:     cfg.Fetcher,
		parser:      cfg.Parser,
		concurrency: cfg.Concurrency,
		logger:      cfg.Logger.Sugar(),
	}
}

// Aggregate fetches and parses the profile of every athlete in men and women and
// keys the results by "name (rank)".
//
// A profile that cannot be parsed, or that fails to download for a non-network
// reason, becomes a NotPlaying entry with unknown titles and is counted in Skipped.
// Titles read before a parse fault are kept on the degraded entry.
// A transient network failure, an expired deadline or cancellation aborts the
// whole aggregation; only the first two are reported as transient.
func (a *Aggregator) Aggregate(ctx context.Context, men, women []models.RankedAthlete) (Result, error) {
	athletes := make([]models.RankedAthlete, 0, len(men)+len(women))
	athletes = append(athletes, men...)
	athletes = append(athletes, women...)

	start := time.Now()
	results := make([]outcome, len(athletes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, athlete := range athletes {
		i, athlete := i, athlete
		g.Go(func() error {
			res, err := a.collect(gctx, athlete)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	out := Result{Stats: make(models.StatsMap, len(athletes))}
	for i, athlete := range athletes {
		out.Stats[athlete.Key()] = results[i].stats
		if results[i].degraded {
			out.Skipped++
		}
	}

	a.logger.Infow("Built player stats map",
		"athletes", len(out.Stats),
		"skipped", out.Skipped,
		"duration", time.Since(start),
	)
	return out, nil
}

// collect fetches and parses one profile. An expired deadline is transient like
// any network failure, so a timed-out cycle is retried; cancellation is not.
func (a *Aggregator) collect(ctx context.Context, athlete models.RankedAthlete) (outcome, error) {
	if err := ctx.Err(); err != nil {
		return outcome{}, scraper.Classify(err)
	}

	doc, err := a.fetcher.FetchDocument(ctx, athlete.ProfileURL)
	if err != nil {
		if scraper.IsTransient(err) || ctx.Err() != nil {
			return outcome{}, scraper.Classify(fmt.Errorf("fetching profile of %s: %w", athlete.Key(), err))
		}
		return a.degrade(athlete, models.PlayerStats{}, err), nil
	}

	s, err := a.parser.Parse(doc, athlete.Name, athlete.Rank)
	if err != nil {
		return a.degrade(athlete, s, err), nil
	}
	return outcome{stats: s}, nil
}

// degrade records the placeholder entry, keeping titles the parser already read
func (a *Aggregator) degrade(athlete models.RankedAthlete, partial models.PlayerStats, cause error) outcome {
	metrics.ProfilesSkipped.Inc()
	a.logger.Warnw("Recording degraded player stats",
		"athlete", athlete.Key(),
		"url", athlete.ProfileURL,
		"error", cause,
	)
	stats := Degraded(athlete)
	if partial.Titles != "" {
		stats.Titles = partial.Titles
	}
	return outcome{
		stats:    stats,
		degraded: true,
	}
}

// Degraded is the placeholder entry for an athlete whose profile could not be read
func Degraded(athlete models.RankedAthlete) models.PlayerStats {
	return models.PlayerStats{
		Name:     athlete.Name,
		Ranking:  "Current ranking: " + athlete.Rank,
		Titles:   parser.UnknownTitles,
		Standing: models.Standing{Kind: models.NotPlaying},
	}
}
