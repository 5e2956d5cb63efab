package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/myusername/tennis-stats-scraper/internal/utils"
	"github.com/myusername/tennis-stats-scraper/pkg/models"
)

const (
	snapshotFile = "snapshot.json"
	statsCSVFile = "player_stats.csv"
)

// FileStore writes the snapshot as JSON and the stats map as CSV into a directory
type FileStore struct {
	dir string
	// writeFile writes the staged snapshot JSON
	writeFile func(name string, data []byte) error
}

// NewFileStore creates the output directory if needed
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return &FileStore{dir: dir, writeFile: writeFile}, nil
}

// Save stages both files as temporaries and renames them into place only once
// both are written, so a failed write leaves the previous snapshot untouched.
func (f *FileStore) Save(_ context.Context, snapshot *models.Snapshot) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	csvTmp := filepath.Join(f.dir, statsCSVFile+".tmp")
	jsonTmp := filepath.Join(f.dir, snapshotFile+".tmp")
	cleanup := func() {
		os.Remove(csvTmp)
		os.Remove(jsonTmp)
	}

	if err := utils.SaveStatsToCSV(snapshot.Stats, csvTmp); err != nil {
		cleanup()
		return fmt.Errorf("failed to save stats CSV: %w", err)
	}
	if err := f.writeFile(jsonTmp, data); err != nil {
		cleanup()
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	if err := os.Rename(jsonTmp, filepath.Join(f.dir, snapshotFile)); err != nil {
		cleanup()
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	if err := os.Rename(csvTmp, filepath.Join(f.dir, statsCSVFile)); err != nil {
		cleanup()
		return fmt.Errorf("failed to save stats CSV: %w", err)
	}
	return nil
}

func (f *FileStore) Latest(_ context.Context) (*models.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(f.dir, snapshotFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snapshot models.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return &snapshot, nil
}

func writeFile(name string, data []byte) error {
	return os.WriteFile(name, data, 0o644)
}
