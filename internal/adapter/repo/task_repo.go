package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"server/internal/domain"
	"server/internal/registry"
)

// TaskRepositoryPG implements registry.Store on PostgreSQL. Unlike the
// snapshot store it persists per-row, and the charge claim rides on a
// conditional UPDATE so the false-to-true transition is atomic across
// processes.
type TaskRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewTaskRepository creates a task store backed by PostgreSQL.
func NewTaskRepository(pool *pgxpool.Pool) *TaskRepositoryPG {
	return &TaskRepositoryPG{pool: pool}
}

// LoadAll reads every tracked task for startup rehydration. Tasks are never
// deleted, so this is the full history.
func (r *TaskRepositoryPG) LoadAll(ctx context.Context) ([]domain.GenerationTask, error) {
	query := `
SELECT id, kind, status, result_url, error_message, prompt, aspect_ratio, resolution,
       owner_user_id, owner_api_key, credits_deducted, created_at, updated_at
FROM generation_tasks;
`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.GenerationTask
	for rows.Next() {
		var t domain.GenerationTask
		if err := rows.Scan(
			&t.TaskID,
			&t.Kind,
			&t.Status,
			&t.ResultURL,
			&t.ErrorMessage,
			&t.RequestParams.Prompt,
			&t.RequestParams.AspectRatio,
			&t.RequestParams.Resolution,
			&t.OwnerUserID,
			&t.OwnerAPIKey,
			&t.CreditsDeducted,
			&t.CreatedAt,
			&t.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// SaveTask upserts the full record. credits_deducted is deliberately left
// out of the conflict update: only ClaimCharge may flip it.
func (r *TaskRepositoryPG) SaveTask(ctx context.Context, task domain.GenerationTask) error {
	query := `
INSERT INTO generation_tasks (id, kind, status, result_url, error_message, prompt, aspect_ratio,
                              resolution, owner_user_id, owner_api_key, credits_deducted, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO UPDATE SET
    kind          = EXCLUDED.kind,
    status        = EXCLUDED.status,
    result_url    = EXCLUDED.result_url,
    error_message = EXCLUDED.error_message,
    owner_user_id = EXCLUDED.owner_user_id,
    owner_api_key = EXCLUDED.owner_api_key,
    updated_at    = EXCLUDED.updated_at;
`
	_, err := r.pool.Exec(ctx, query,
		task.TaskID,
		task.Kind,
		task.Status,
		task.ResultURL,
		task.ErrorMessage,
		task.RequestParams.Prompt,
		task.RequestParams.AspectRatio,
		task.RequestParams.Resolution,
		task.OwnerUserID,
		task.OwnerAPIKey,
		task.CreditsDeducted,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert task: %w", err)
	}
	return nil
}

// ClaimCharge wins only when this statement is the one that observes
// credits_deducted = false.
func (r *TaskRepositoryPG) ClaimCharge(ctx context.Context, taskID string) (bool, error) {
	query := `
UPDATE generation_tasks
SET credits_deducted = TRUE, updated_at = now()
WHERE id = $1 AND credits_deducted = FALSE;
`
	tag, err := r.pool.Exec(ctx, query, taskID)
	if err != nil {
		return false, fmt.Errorf("claim charge: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return true, nil
	}

	var exists bool
	row := r.pool.QueryRow(ctx, `SELECT TRUE FROM generation_tasks WHERE id = $1;`, taskID)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, domain.ErrNotFound
		}
		return false, fmt.Errorf("claim charge lookup: %w", err)
	}
	return false, nil
}

var _ registry.Store = (*TaskRepositoryPG)(nil)
