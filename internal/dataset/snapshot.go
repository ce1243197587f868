package dataset

import (
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"superstore-dashboard/internal/models"
)

const snapshotVersion = "v1"

var ErrStaleSnapshot = errors.New("snapshot older than source file")

type snapshot struct {
	Version string
	SavedAt time.Time
	Records []models.OrderRecord
}

// SnapshotStore keeps parsed records on disk so restarts skip CSV parsing.
type SnapshotStore struct {
	dir string
}

func NewSnapshotStore(dir string) *SnapshotStore {
	return &SnapshotStore{dir: dir}
}

func (s *SnapshotStore) path(csvPath string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(csvPath)
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.gob", name, snapshotVersion))
}

// Save writes the snapshot to a temporary file and renames it into place, so a
// failed write never leaves a partial snapshot behind.
func (s *SnapshotStore) Save(csvPath string, records []models.OrderRecord) (err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	target := s.path(csvPath)
	file, err := os.CreateTemp(s.dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(file.Name())
		}
	}()

	snap := snapshot{
		Version: snapshotVersion,
		SavedAt: time.Now(),
		Records: records,
	}
	if err := gob.NewEncoder(file).Encode(&snap); err != nil {
		_ = file.Close()
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(file.Name(), target); err != nil {
		return fmt.Errorf("install snapshot: %w", err)
	}
	return nil
}

// Load returns the snapshot for csvPath if it was written after the CSV was
// last modified.
func (s *SnapshotStore) Load(csvPath string) ([]models.OrderRecord, error) {
	info, err := os.Stat(csvPath)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(s.path(csvPath))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var snap snapshot
	if err := gob.NewDecoder(file).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	if snap.Version != snapshotVersion || !info.ModTime().Before(snap.SavedAt) {
		return nil, ErrStaleSnapshot
	}
	return snap.Records, nil
}
