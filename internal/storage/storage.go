package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/stagedoor/london-acting-events/internal/event"
	"github.com/stagedoor/london-acting-events/internal/logger"
)

// SnapshotFile is the snapshot's name inside the data directory.
const SnapshotFile = "snapshot.json"

// Storage handles persistence of event snapshots
type Storage struct {
	dataDir string
}

// New creates a new Storage instance
func New(dataDir string) (*Storage, error) {
	// Expand ~ to home directory
	if strings.HasPrefix(dataDir, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, dataDir[2:])
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return &Storage{
		dataDir: dataDir,
	}, nil
}

// Path returns the location of the snapshot file.
func (s *Storage) Path() string {
	return filepath.Join(s.dataDir, SnapshotFile)
}

// LoadSnapshot reads the previous run's snapshot. A missing file is a first
// run and yields an empty snapshot. A file that is not a valid snapshot is
// logged and also treated as empty. Any other read error is returned.
func (s *Storage) LoadSnapshot() (event.Snapshot, error) {
	path := s.Path()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return event.NewSnapshot(), nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot event.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		logger.Warn("ignoring unreadable snapshot", logger.Fields{"path": path}, err)
		return event.NewSnapshot(), nil
	}
	if snapshot == nil {
		snapshot = event.NewSnapshot()
	}

	return snapshot, nil
}

// SaveSnapshot replaces the snapshot on disk. The file is written to a
// temporary name and renamed into place, so readers never see a partial file.
func (s *Storage) SaveSnapshot(snapshot event.Snapshot) error {
	if snapshot == nil {
		snapshot = event.NewSnapshot()
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(s.dataDir, SnapshotFile+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp snapshot: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("replacing snapshot: %w", err)
	}

	return nil
}
