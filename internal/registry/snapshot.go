package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// SnapshotStore persists the entire task set as one JSON document, fully
// rewritten on every mutation. The write amplification buys a simple
// guarantee: any completed write leaves a fully parseable, consistent file.
// Intended for development and single-node deployments without a database.
type SnapshotStore struct {
	mu     sync.Mutex
	path   string
	tasks  map[string]domain.GenerationTask
	logger zerolog.Logger
}

// NewSnapshotStore opens (or initializes) the snapshot document at path. A
// missing file is an empty registry; an unparseable file is logged and also
// treated as empty rather than blocking startup.
func NewSnapshotStore(path string, logger zerolog.Logger) (*SnapshotStore, error) {
	if path == "" {
		return nil, errors.New("registry: snapshot path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("registry: ensure snapshot directory: %w", err)
	}

	s := &SnapshotStore{
		path:   path,
		tasks:  make(map[string]domain.GenerationTask),
		logger: logger,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("registry: read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &s.tasks); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("registry: snapshot unparseable, starting empty")
		s.tasks = make(map[string]domain.GenerationTask)
	}
	return s, nil
}

// LoadAll returns the tasks read from the snapshot document.
func (s *SnapshotStore) LoadAll(ctx context.Context) ([]domain.GenerationTask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.GenerationTask, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	return out, nil
}

// SaveTask upserts one record and rewrites the whole document.
func (s *SnapshotStore) SaveTask(ctx context.Context, task domain.GenerationTask) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.tasks[task.TaskID]
	s.tasks[task.TaskID] = task
	if err := s.writeLocked(); err != nil {
		if existed {
			s.tasks[task.TaskID] = prev
		} else {
			delete(s.tasks, task.TaskID)
		}
		return err
	}
	return nil
}

// ClaimCharge flips credits_deducted under the store mutex, so concurrent
// duplicate callbacks observe exactly one winner.
func (s *SnapshotStore) ClaimCharge(ctx context.Context, taskID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[taskID]
	if !ok {
		return false, domain.ErrNotFound
	}
	if task.CreditsDeducted {
		return false, nil
	}
	task.CreditsDeducted = true
	s.tasks[taskID] = task
	if err := s.writeLocked(); err != nil {
		task.CreditsDeducted = false
		s.tasks[taskID] = task
		return false, err
	}
	return true, nil
}

// writeLocked serializes the full task map and atomically replaces the
// document via a temp file rename. Callers must hold s.mu.
func (s *SnapshotStore) writeLocked() error {
	data, err := json.MarshalIndent(s.tasks, "", "  ")
	if err != nil {
		return fmt.Errorf("registry: encode snapshot: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("registry: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("registry: replace snapshot: %w", err)
	}
	return nil
}

var _ Store = (*SnapshotStore)(nil)
