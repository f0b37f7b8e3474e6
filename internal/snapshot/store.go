package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Store persists snapshots on disk so consecutive CLI invocations within
// the TTL reuse one fetch. Corrupt or unreadable files are treated as a
// cache miss, never an error.
type Store struct {
	Path string
}

// DefaultStorePath returns the snapshot file under the user cache dir.
func DefaultStorePath() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("locating cache dir: %w", err)
	}
	return filepath.Join(base, "glint", "snapshot.json"), nil
}

// Load reads the persisted snapshot. Returns nil (no error) when the
// file is absent or unparseable.
func (s *Store) Load() *Snapshot {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil
	}
	return &snap
}

// Save writes the snapshot. Best effort; callers typically ignore the error.
func (s *Store) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("creating cache dir: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

// Clear removes the persisted snapshot. Missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing snapshot: %w", err)
	}
	return nil
}
