// Package utils provides utility functions for the tennis-stats-scraper
package utils

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/myusername/tennis-stats-scraper/pkg/models"
)

var csvHeader = []string{"Key", "Player", "Ranking", "Titles", "Standing", "Tournament", "LatestResult", "UpcomingMatch"}

// SortedKeys returns the keys of stats in lexical order
func SortedKeys(stats models.StatsMap) []string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DisplayStats prints the stats of one cycle as a table
func DisplayStats(w io.Writer, snapshot *models.Snapshot) {
	fmt.Fprintf(w, "\n=========== PLAYER STATS (cycle %s) ===========\n", snapshot.CycleID)
	fmt.Fprintf(w, "%-32s | %-20s | %-28s | %-24s | %-30s | %s\n",
		"Player", "Ranking", "Titles", "Standing", "Tournament", "Latest Result")
	fmt.Fprintf(w, "%-32s | %-20s | %-28s | %-24s | %-30s | %s\n",
		strings.Repeat("-", 32), strings.Repeat("-", 20), strings.Repeat("-", 28),
		strings.Repeat("-", 24), strings.Repeat("-", 30), strings.Repeat("-", 20))

	for _, key := range SortedKeys(snapshot.Stats) {
		s := snapshot.Stats[key]
		fmt.Fprintf(w, "%-32s | %-20s | %-28s | %-24s | %-30s | %s\n",
			key, s.Ranking, s.Titles, s.Standing, s.CurrentTournament, s.LatestMatchResult)
		if s.UpcomingMatch != "" {
			fmt.Fprintf(w, "%-32s   next: %s\n", "", s.UpcomingMatch)
		}
	}

	if snapshot.Skipped > 0 {
		fmt.Fprintf(w, "\n%d profile(s) could not be read and are shown as not playing\n", snapshot.Skipped)
	}
	if snapshot.Digest != "" {
		fmt.Fprintf(w, "\n%s\n", snapshot.Digest)
	}

	fmt.Fprintln(w, strings.Repeat("=", 78))
}

// WriteStatsCSV writes one CSV line per athlete, ordered by key
func WriteStatsCSV(w io.Writer, stats models.StatsMap) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, key := range SortedKeys(stats) {
		s := stats[key]
		record := []string{
			key, s.Name, s.Ranking, s.Titles, s.Standing.String(),
			s.CurrentTournament, s.LatestMatchResult, s.UpcomingMatch,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write player data: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveStatsToCSV saves the stats map to a CSV file
func SaveStatsToCSV(stats models.StatsMap, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer f.Close()

	if err := WriteStatsCSV(f, stats); err != nil {
		return err
	}
	return f.Close()
}
