package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"server/internal/domain"
)

// MemoryLedger is an in-process Ledger for tests and database-less
// development runs. Users unseen before their first charge start with the
// configured grant.
type MemoryLedger struct {
	mu           sync.Mutex
	grant        int
	balances     map[string]int
	transactions []domain.CreditTransaction
}

// NewMemory creates a memory ledger granting each new user the given number
// of credits.
func NewMemory(grant int) *MemoryLedger {
	return &MemoryLedger{
		grant:    grant,
		balances: make(map[string]int),
	}
}

// SetBalance fixes a user's balance, overriding the default grant.
func (l *MemoryLedger) SetBalance(userID string, credits int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] = credits
}

// Balance returns the user's current balance.
func (l *MemoryLedger) Balance(userID string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if credits, ok := l.balances[userID]; ok {
		return credits
	}
	return l.grant
}

// Transactions returns the audit rows recorded for the task.
func (l *MemoryLedger) Transactions(taskID string) []domain.CreditTransaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []domain.CreditTransaction
	for _, tx := range l.transactions {
		if tx.TaskID == taskID {
			out = append(out, tx)
		}
	}
	return out
}

// Charge implements Ledger with the same semantics as the PostgreSQL
// implementation: no negative balances, every attempt leaves an audit row.
func (l *MemoryLedger) Charge(ctx context.Context, userID string, creditType domain.CreditType, taskID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	cost := creditType.Cost()
	if cost <= 0 {
		return false, fmt.Errorf("ledger: unknown credit type %q", creditType)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	balance, ok := l.balances[userID]
	if !ok {
		balance = l.grant
	}

	status := domain.TransactionCompleted
	if balance < cost {
		status = domain.TransactionFailed
	} else {
		l.balances[userID] = balance - cost
	}

	l.transactions = append(l.transactions, domain.CreditTransaction{
		ID:         uuid.NewString(),
		UserID:     userID,
		CreditType: creditType,
		Amount:     cost,
		TaskID:     taskID,
		Status:     status,
		CreatedAt:  time.Now().UTC(),
	})
	return status == domain.TransactionCompleted, nil
}

var _ Ledger = (*MemoryLedger)(nil)
