package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"server/internal/domain"
)

// Store persists tasks durably on behalf of the Registry.
type Store interface {
	// LoadAll returns every persisted task for startup rehydration.
	LoadAll(ctx context.Context) ([]domain.GenerationTask, error)

	// SaveTask durably persists the full record for one task.
	SaveTask(ctx context.Context, task domain.GenerationTask) error

	// ClaimCharge atomically flips credits_deducted from false to true and
	// reports whether this caller won the claim. At most one caller ever
	// wins for a given task.
	ClaimCharge(ctx context.Context, taskID string) (bool, error)
}

// Registry is the single authoritative in-memory view of every tracked
// generation task, write-through backed by a Store. Load must complete
// before callback ingestion or status polling serve traffic.
type Registry struct {
	mu     sync.RWMutex
	tasks  map[string]domain.GenerationTask
	store  Store
	logger zerolog.Logger
}

// New creates a Registry over the given store.
func New(store Store, logger zerolog.Logger) *Registry {
	return &Registry{
		tasks:  make(map[string]domain.GenerationTask),
		store:  store,
		logger: logger,
	}
}

// Load rehydrates the in-memory map from the store.
func (r *Registry) Load(ctx context.Context) error {
	tasks, err := r.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("registry: load tasks: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = make(map[string]domain.GenerationTask, len(tasks))
	for _, t := range tasks {
		r.tasks[t.TaskID] = t
	}
	r.logger.Info().Int("count", len(tasks)).Msg("registry: rehydrated tasks")
	return nil
}

// Create inserts a new record for a freshly submitted job. Duplicate ids are
// rejected with domain.ErrTaskExists.
func (r *Registry) Create(ctx context.Context, task domain.GenerationTask) error {
	if task.TaskID == "" {
		return errors.New("registry: task id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.TaskID]; ok {
		return domain.ErrTaskExists
	}
	if task.Status == "" {
		task.Status = domain.TaskStatusProcessing
	}
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("registry: persist task %s: %w", task.TaskID, err)
	}
	r.tasks[task.TaskID] = task
	return nil
}

// Get returns the tracked record, or domain.ErrNotFound.
func (r *Registry) Get(ctx context.Context, taskID string) (domain.GenerationTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[taskID]
	if !ok {
		return domain.GenerationTask{}, domain.ErrNotFound
	}
	return task, nil
}

// Update merges the patch into the existing record and synchronously
// persists the result. A record is materialized from the patch when the id
// is unknown: callbacks can legitimately race the submission record's
// creation, and dropping them would lose the only durable evidence of
// completion. Once a task is terminal its status, result URL and error
// message are immutable; a patch touching them is ignored.
//
// The returned bool reports whether this call changed the stored record.
// Callers use it to run transition side effects exactly once: a redelivered
// terminal patch returns the unchanged record with false.
func (r *Registry) Update(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.GenerationTask, bool, error) {
	if taskID == "" {
		return domain.GenerationTask{}, false, errors.New("registry: task id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		task = domain.GenerationTask{
			TaskID:    taskID,
			Status:    domain.TaskStatusProcessing,
			CreatedAt: time.Now().UTC(),
		}
		r.logger.Warn().Str("task_id", taskID).Msg("registry: materializing record for unknown task")
	}

	next, changed := applyPatch(task, patch)
	if !ok {
		// A materialized record is always a change: it must be persisted
		// even when the patch itself added nothing.
		changed = true
	}
	if !changed {
		return task, false, nil
	}
	next.UpdatedAt = time.Now().UTC()

	if err := r.store.SaveTask(ctx, next); err != nil {
		return domain.GenerationTask{}, false, fmt.Errorf("registry: persist task %s: %w", taskID, err)
	}
	r.tasks[taskID] = next
	return next, true, nil
}

// MarkCharged claims the one-shot billing flag for the task. The claim is
// delegated to the store so the false-to-true transition is atomic even
// across processes; the in-memory view is updated only after a won claim.
func (r *Registry) MarkCharged(ctx context.Context, taskID string) (bool, error) {
	won, err := r.store.ClaimCharge(ctx, taskID)
	if err != nil {
		return false, fmt.Errorf("registry: claim charge for task %s: %w", taskID, err)
	}
	if !won {
		return false, nil
	}

	r.mu.Lock()
	if task, ok := r.tasks[taskID]; ok {
		task.CreditsDeducted = true
		r.tasks[taskID] = task
	}
	r.mu.Unlock()
	return true, nil
}

// Snapshot returns a copy of the current task set.
func (r *Registry) Snapshot() map[string]domain.GenerationTask {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]domain.GenerationTask, len(r.tasks))
	for id, t := range r.tasks {
		out[id] = t
	}
	return out
}

func applyPatch(task domain.GenerationTask, patch domain.TaskPatch) (domain.GenerationTask, bool) {
	if task.Status.Terminal() {
		return task, false
	}
	changed := false
	if patch.Status != nil && *patch.Status != task.Status {
		task.Status = *patch.Status
		changed = true
	}
	if patch.ResultURL != nil && *patch.ResultURL != task.ResultURL {
		task.ResultURL = *patch.ResultURL
		changed = true
	}
	if patch.ErrorMessage != nil && *patch.ErrorMessage != task.ErrorMessage {
		task.ErrorMessage = *patch.ErrorMessage
		changed = true
	}
	return task, changed
}
