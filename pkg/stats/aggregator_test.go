package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myusername/tennis-stats-scraper/pkg/models"
	"github.com/myusername/tennis-stats-scraper/pkg/parser"
	"github.com/myusername/tennis-stats-scraper/pkg/scraper"
)

// Mocks

type MockFetcher struct {
	FetchDocumentFunc func(ctx context.Context, rawURL string) (*goquery.Document, error)

	mu    sync.Mutex
	calls []string
}

func (m *MockFetcher) FetchDocument(ctx context.Context, rawURL string) (*goquery.Document, error) {
	m.mu.Lock()
	m.calls = append(m.calls, rawURL)
	m.mu.Unlock()
	if m.FetchDocumentFunc != nil {
		return m.FetchDocumentFunc(ctx, rawURL)
	}
	return emptyDoc(), nil
}

type MockParser struct {
	ParseFunc func(doc *goquery.Document, name, rank string) (models.PlayerStats, error)
}

func (m *MockParser) Parse(doc *goquery.Document, name, rank string) (models.PlayerStats, error) {
	if m.ParseFunc != nil {
		return m.ParseFunc(doc, name, rank)
	}
	return models.PlayerStats{Name: name, Ranking: "Current ranking: " + rank}, nil
}

func emptyDoc() *goquery.Document {
	doc, _ := goquery.NewDocumentFromReader(strings.NewReader("<html><body></body></html>"))
	return doc
}

func athletes(prefix string, gender models.Gender, n int) []models.RankedAthlete {
	out := make([]models.RankedAthlete, n)
	for i := range out {
		rank := fmt.Sprint(i + 1)
		out[i] = models.RankedAthlete{
			Name:        prefix + " " + rank,
			Rank:        rank,
			DisplayName: prefix[:1] + ". " + rank,
			ProfileURL:  "https://www.espn.com/tennis/player/_/id/" + string(gender) + rank,
			Gender:      gender,
		}
	}
	return out
}

func TestAggregateAllNotPlaying(t *testing.T) {
	men := athletes("Man", models.Men, 100)
	women := athletes("Woman", models.Women, 100)

	agg := NewAggregator(Config{
		Fetcher: &MockFetcher{},
		Parser:  parser.NewProfileParser(time.UTC),
	})

	result, err := agg.Aggregate(context.Background(), men, women)
	require.NoError(t, err)
	require.Len(t, result.Stats, 200)
	assert.Zero(t, result.Skipped)

	for _, a := range append(men, women...) {
		s, ok := result.Stats[a.Key()]
		require.True(t, ok, "missing %s", a.Key())
		assert.Equal(t, a.Name, s.Name)
		assert.Equal(t, "Current ranking: "+a.Rank, s.Ranking)
		assert.Equal(t, parser.UnknownTitles, s.Titles)
		assert.Equal(t, models.NotPlaying, s.Standing.Kind)
		assert.Empty(t, s.CurrentTournament)
		assert.Empty(t, s.LatestMatchResult)
		assert.Empty(t, s.UpcomingMatch)
	}
}

func TestAggregateFetchesInRankingOrder(t *testing.T) {
	men := athletes("Man", models.Men, 3)
	women := athletes("Woman", models.Women, 2)
	fetcher := &MockFetcher{}

	_, err := NewAggregator(Config{Fetcher: fetcher, Parser: &MockParser{}}).
		Aggregate(context.Background(), men, women)
	require.NoError(t, err)

	want := []string{men[0].ProfileURL, men[1].ProfileURL, men[2].ProfileURL, women[0].ProfileURL, women[1].ProfileURL}
	assert.Equal(t, want, fetcher.calls)
}

func TestAggregateDegradesFaultyProfiles(t *testing.T) {
	men := athletes("Man", models.Men, 5)
	women := athletes("Woman", models.Women, 5)
	brokenFetch := men[2]
	brokenParse := women[4]

	fetcher := &MockFetcher{
		FetchDocumentFunc: func(ctx context.Context, rawURL string) (*goquery.Document, error) {
			if rawURL == brokenFetch.ProfileURL {
				return nil, &scraper.StatusError{URL: rawURL, StatusCode: 404}
			}
			return emptyDoc(), nil
		},
	}
	p := &MockParser{
		ParseFunc: func(doc *goquery.Document, name, rank string) (models.PlayerStats, error) {
			if name == brokenParse.Name {
				return models.PlayerStats{}, fmt.Errorf("profile of %s: %w", name, parser.ErrUnexpectedStructure)
			}
			return models.PlayerStats{
				Name:     name,
				Ranking:  "Current ranking: " + rank,
				Titles:   "2026 singles titles: 1",
				Standing: models.Standing{Kind: models.Out},
			}, nil
		},
	}

	result, err := NewAggregator(Config{Fetcher: fetcher, Parser: p}).Aggregate(context.Background(), men, women)
	require.NoError(t, err)
	require.Len(t, result.Stats, 10)
	assert.Equal(t, 2, result.Skipped)

	assert.Equal(t, Degraded(brokenFetch), result.Stats[brokenFetch.Key()])
	assert.Equal(t, Degraded(brokenParse), result.Stats[brokenParse.Key()])
	assert.Equal(t, models.Out, result.Stats[men[0].Key()].Standing.Kind)
	assert.Equal(t, models.Out, result.Stats[women[3].Key()].Standing.Kind)
}

func TestAggregateAbortsOnTransientFailure(t *testing.T) {
	men := athletes("Man", models.Men, 4)
	fetcher := &MockFetcher{
		FetchDocumentFunc: func(ctx context.Context, rawURL string) (*goquery.Document, error) {
			if rawURL == men[1].ProfileURL {
				return nil, &scraper.TransientError{Err: errors.New("connection reset by peer")}
			}
			return emptyDoc(), nil
		},
	}

	result, err := NewAggregator(Config{Fetcher: fetcher, Parser: &MockParser{}}).Aggregate(context.Background(), men, nil)
	require.Error(t, err)
	assert.True(t, scraper.IsTransient(err))
	assert.Contains(t, err.Error(), men[1].Key())
	assert.Nil(t, result.Stats)
}

func TestAggregateStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAggregator(Config{Fetcher: &MockFetcher{}, Parser: &MockParser{}}).
		Aggregate(ctx, athletes("Man", models.Men, 3), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAggregateBoundedConcurrency(t *testing.T) {
	const limit = 4
	var inFlight, peak atomic.Int32

	fetcher := &MockFetcher{
		FetchDocumentFunc: func(ctx context.Context, rawURL string) (*goquery.Document, error) {
			n := inFlight.Add(1)
			defer inFlight.Add(-1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(2 * time.Millisecond)
			return emptyDoc(), nil
		},
	}

	men := athletes("Man", models.Men, 20)
	women := athletes("Woman", models.Women, 20)
	result, err := NewAggregator(Config{Fetcher: fetcher, Parser: &MockParser{}, Concurrency: limit}).
		Aggregate(context.Background(), men, women)
	require.NoError(t, err)

	assert.Len(t, result.Stats, 40)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
	for _, a := range append(men, women...) {
		assert.Equal(t, a.Name, result.Stats[a.Key()].Name)
	}
}

func TestDegraded(t *testing.T) {
	a := models.RankedAthlete{Name: "Man 7", Rank: "7"}
	assert.Equal(t, models.PlayerStats{
		Name:     "Man 7",
		Ranking:  "Current ranking: 7",
		Titles:   parser.UnknownTitles,
		Standing: models.Standing{Kind: models.NotPlaying},
	}, Degraded(a))
}

func TestAggregateExpiredDeadlineIsTransient(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()

	fetcher := &MockFetcher{
		FetchDocumentFunc: func(ctx context.Context, rawURL string) (*goquery.Document, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}

	_, err := NewAggregator(Config{Fetcher: fetcher, Parser: &MockParser{}}).
		Aggregate(ctx, athletes("Man", models.Men, 3), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, scraper.IsTransient(err))
}

func TestAggregateCancelIsNotTransient(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fetcher := &MockFetcher{
		FetchDocumentFunc: func(_ context.Context, rawURL string) (*goquery.Document, error) {
			cancel()
			return nil, fmt.Errorf("error fetching URL %s: %w", rawURL, context.Canceled)
		},
	}

	_, err := NewAggregator(Config{Fetcher: fetcher, Parser: &MockParser{}}).
		Aggregate(ctx, athletes("Man", models.Men, 2), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, scraper.IsTransient(err))
}

func TestAggregateKeepsTitlesOfFaultyProfile(t *testing.T) {
	men := athletes("Man", models.Men, 2)
	p := &MockParser{
		ParseFunc: func(doc *goquery.Document, name, rank string) (models.PlayerStats, error) {
			partial := models.PlayerStats{
				Name:     name,
				Ranking:  "Current ranking: " + rank,
				Titles:   "2026 singles titles: 3",
				Standing: models.Standing{Kind: models.NotPlaying},
			}
			if name == men[1].Name {
				return partial, fmt.Errorf("profile of %s: %w", name, parser.ErrUnexpectedStructure)
			}
			return partial, nil
		},
	}

	result, err := NewAggregator(Config{Fetcher: &MockFetcher{}, Parser: p}).Aggregate(context.Background(), men, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)

	got := result.Stats[men[1].Key()]
	assert.Equal(t, "2026 singles titles: 3", got.Titles)
	assert.Equal(t, models.NotPlaying, got.Standing.Kind)
	assert.Empty(t, got.CurrentTournament)
	assert.Equal(t, "Current ranking: 2", got.Ranking)
}
