package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"server/internal/domain"
)

// PGLedger bills against the users table in PostgreSQL. The conditional
// decrement and the audit append run in one transaction, so the balance and
// the ledger can never drift apart.
type PGLedger struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPG creates a PostgreSQL-backed ledger.
func NewPG(pool *pgxpool.Pool, logger zerolog.Logger) *PGLedger {
	return &PGLedger{pool: pool, logger: logger}
}

// Charge implements Ledger.
func (l *PGLedger) Charge(ctx context.Context, userID string, creditType domain.CreditType, taskID string) (bool, error) {
	cost := creditType.Cost()
	if cost <= 0 {
		return false, fmt.Errorf("ledger: unknown credit type %q", creditType)
	}

	tx, err := l.pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("ledger: begin charge: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	decrement := `
UPDATE users
SET credits = credits - $2, updated_at = now()
WHERE id = $1 AND credits >= $2;
`
	tag, err := tx.Exec(ctx, decrement, userID, cost)
	if err != nil {
		return false, fmt.Errorf("ledger: decrement balance: %w", err)
	}

	status := domain.TransactionCompleted
	if tag.RowsAffected() == 0 {
		status = domain.TransactionFailed
	}

	appendRow := `
INSERT INTO credit_transactions (id, user_id, credit_type, amount, task_id, status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, now());
`
	if _, err := tx.Exec(ctx, appendRow, uuid.NewString(), userID, creditType, cost, taskID, status); err != nil {
		return false, fmt.Errorf("ledger: append transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("ledger: commit charge: %w", err)
	}

	if status == domain.TransactionFailed {
		l.logger.Warn().
			Str("user_id", userID).
			Str("task_id", taskID).
			Str("credit_type", string(creditType)).
			Int("cost", cost).
			Msg("ledger: insufficient balance, recorded failed transaction")
		return false, nil
	}
	return true, nil
}

var _ Ledger = (*PGLedger)(nil)
