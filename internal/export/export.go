// Package export writes versioned JSON snapshots of week plans to disk, one
// file per week and revision, for backup and offline review.
package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"family-ops/internal/plan"
)

// Store provides file-based snapshot storage for week plans.
type Store struct {
	basePath string
}

// NewStore creates a new Store and ensures the base directory exists.
func NewStore(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory %s: %w", basePath, err)
	}
	return &Store{basePath: basePath}, nil
}

// sanitizeTimestamp makes a timestamp safe for filenames.
func sanitizeTimestamp(ts string) string {
	return strings.ReplaceAll(ts, ":", "-")
}

// snapshotPath returns the full path for a week id and revision timestamp.
func (s *Store) snapshotPath(weekID, updatedAt string) string {
	filename := fmt.Sprintf("%s_%s.json", weekID, sanitizeTimestamp(updatedAt))
	return filepath.Join(s.basePath, filename)
}

// Snapshot writes the plan to a revision file keyed by its UpdatedAt.
// Earlier revisions of the same week are kept.
func (s *Store) Snapshot(p *plan.WeekPlan) (string, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal week plan: %w", err)
	}

	filePath := s.snapshotPath(p.WeekID, p.UpdatedAt.UTC().Format("2006-01-02T15-04-05Z"))
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write snapshot file: %w", err)
	}
	return filePath, nil
}

// SnapshotAll writes a revision file for every plan and returns the paths.
func (s *Store) SnapshotAll(plans []plan.WeekPlan) ([]string, error) {
	paths := make([]string, 0, len(plans))
	for i := range plans {
		path, err := s.Snapshot(&plans[i])
		if err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Load reads a snapshot back from a revision file.
func (s *Store) Load(weekID, updatedAt string) (*plan.WeekPlan, error) {
	data, err := os.ReadFile(s.snapshotPath(weekID, sanitizeTimestamp(updatedAt)))
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var p plan.WeekPlan
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &p, nil
}

// Versions lists the snapshot files present for a week, oldest first.
func (s *Store) Versions(weekID string) ([]string, error) {
	pattern := filepath.Join(s.basePath, fmt.Sprintf("%s_*.json", weekID))
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to glob snapshots: %w", err)
	}
	return matches, nil
}

// Prune removes every snapshot for a week except the newest count files.
func (s *Store) Prune(weekID string, keep int) error {
	matches, err := s.Versions(weekID)
	if err != nil {
		return err
	}
	if len(matches) <= keep {
		return nil
	}

	// Glob results are sorted, and the timestamp suffix sorts chronologically.
	for _, match := range matches[:len(matches)-keep] {
		if err := os.Remove(match); err != nil {
			return fmt.Errorf("failed to remove snapshot %s: %w", match, err)
		}
	}
	return nil
}
