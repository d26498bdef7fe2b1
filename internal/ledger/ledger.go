// Package ledger translates one completed generation task into exactly one
// balance decrement plus one append-only audit row.
package ledger

import (
	"context"

	"server/internal/domain"
)

// Ledger bills completed generation tasks. Implementations must never let a
// balance go negative: an unaffordable charge returns false and records a
// failed transaction instead, so the miss stays visible to operators.
type Ledger interface {
	// Charge deducts the credit type's cost from the user's balance and
	// appends one CreditTransaction. It returns true when the balance was
	// decremented, false when the balance was insufficient.
	Charge(ctx context.Context, userID string, creditType domain.CreditType, taskID string) (bool, error)
}
