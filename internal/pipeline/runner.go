// Package pipeline runs fetch cycles: documents, rankings, stats, digest, persistence
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/myusername/tennis-stats-scraper/internal/metrics"
	"github.com/myusername/tennis-stats-scraper/internal/store"
	"github.com/myusername/tennis-stats-scraper/pkg/models"
	"github.com/myusername/tennis-stats-scraper/pkg/parser"
	"github.com/myusername/tennis-stats-scraper/pkg/scraper"
	"github.com/myusername/tennis-stats-scraper/pkg/stats"
)

// Progress milestones reported during a cycle
const (
	ProgressStarted         = 0
	ProgressDocumentsLoaded = 10
	ProgressRankingsRead    = 40
	ProgressStatsBuilt      = 70
	ProgressDigestBuilt     = 99
	ProgressDone            = 100
)

// ProgressFunc observes cycle progress as a percentage
type ProgressFunc func(percent int)

// DocumentSource fetches the top-level pages of a cycle
type DocumentSource interface {
	FetchCycleDocuments(ctx context.Context, src scraper.Sources, now time.Time, loc *time.Location) (*scraper.CycleDocuments, error)
}

// Aggregator builds the stats map from ranked athletes
type Aggregator interface {
	Aggregate(ctx context.Context, men, women []models.RankedAthlete) (stats.Result, error)
}

// RunnerConfig configures a Runner
type RunnerConfig struct {
	Source     DocumentSource
	Sources    scraper.Sources
	Location   *time.Location
	Rankings   *parser.RankingReader
	Aggregator Aggregator
	Store      store.Store
	Progress   ProgressFunc
	Logger     *zap.Logger
	Now        func() time.Time
}

// Runner executes one complete fetch cycle at a time
type Runner struct {
	cfg    RunnerConfig
	logger *zap.SugaredLogger
}

// NewRunner creates a Runner, applying defaults for unset fields
func NewRunner(cfg RunnerConfig) *Runner {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Rankings == nil {
		cfg.Rankings = parser.NewRankingReader(parser.DefaultTopN, cfg.Logger)
	}
	return &Runner{cfg: cfg, logger: cfg.Logger.Sugar()}
}

// Run performs one cycle and persists its snapshot.
// Nothing is saved unless every stage completes.
func (r *Runner) Run(ctx context.Context) (*models.Snapshot, error) {
	start := time.Now()
	cycleID := uuid.NewString()
	log := r.logger.With("cycle_id", cycleID)

	snapshot, err := r.run(ctx, cycleID, log)
	metrics.CycleDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		outcome := "failure"
		if scraper.IsTransient(err) {
			outcome = "transient"
		}
		metrics.Cycles.WithLabelValues(outcome).Inc()
		log.Errorw("Fetch cycle failed", "error", err, "duration", time.Since(start))
		return nil, err
	}

	metrics.Cycles.WithLabelValues("success").Inc()
	metrics.LastCycleAthletes.Set(float64(len(snapshot.Stats)))
	log.Infow("Fetch cycle done",
		"athletes", len(snapshot.Stats),
		"skipped", snapshot.Skipped,
		"duration", time.Since(start),
	)
	return snapshot, nil
}

func (r *Runner) run(ctx context.Context, cycleID string, log *zap.SugaredLogger) (*models.Snapshot, error) {
	log.Info("Fetch cycle starting")
	r.progress(ProgressStarted)

	now := r.cfg.Now()
	docs, err := r.cfg.Source.FetchCycleDocuments(ctx, r.cfg.Sources, now, r.cfg.Location)
	if err != nil {
		return nil, err
	}
	r.progress(ProgressDocumentsLoaded)

	men := r.cfg.Rankings.Read(docs.MenRankings, models.Men)
	women := r.cfg.Rankings.Read(docs.WomenRankings, models.Women)
	choices := parser.PlayerChoices(men, women)
	log.Infow("Got player choices list", "men", len(men), "women", len(women))
	r.progress(ProgressRankingsRead)

	result, err := r.cfg.Aggregator.Aggregate(ctx, men, women)
	if err != nil {
		return nil, fmt.Errorf("failed to build player stats: %w", err)
	}
	log.Infow("Got player stats map", "athletes", len(result.Stats), "skipped", result.Skipped)
	r.progress(ProgressStatsBuilt)

	tracked := make([]models.RankedAthlete, 0, len(men)+len(women))
	tracked = append(append(tracked, men...), women...)
	digest := parser.BuildDigest(docs.TodaySchedule, docs.YesterdaySchedule, tracked)
	log.Infow("Got digest text", "length", len(digest))
	r.progress(ProgressDigestBuilt)

	snapshot := &models.Snapshot{
		CycleID:   cycleID,
		FetchedAt: now,
		Stats:     result.Stats,
		Choices:   choices,
		Digest:    digest,
		Skipped:   result.Skipped,
	}
	if r.cfg.Store != nil {
		if err := r.cfg.Store.Save(ctx, snapshot); err != nil {
			return nil, fmt.Errorf("failed to store snapshot: %w", err)
		}
		log.Info("Stored snapshot")
	}
	r.progress(ProgressDone)

	return snapshot, nil
}

func (r *Runner) progress(percent int) {
	if r.cfg.Progress != nil {
		r.cfg.Progress(percent)
	}
}
