package domain

import (
	"strings"
	"time"
)

// CreditType prices a completed generation.
type CreditType string

const (
	CreditTypeImageStandard CreditType = "image_standard" // 1K renders
	CreditTypeImageHigh     CreditType = "image_high"     // 2K renders
	CreditTypeVideo         CreditType = "video"
)

// creditCosts is the fixed price table, in credit units.
var creditCosts = map[CreditType]int{
	CreditTypeImageStandard: 5,
	CreditTypeImageHigh:     7,
	CreditTypeVideo:         20,
}

// Cost returns the unit price for the credit type, or 0 for unknown types.
func (t CreditType) Cost() int {
	return creditCosts[t]
}

// CostFor resolves the credit type charged for a task of the given kind and,
// for images, the requested resolution tier.
func CostFor(kind TaskKind, resolution string) CreditType {
	if kind == TaskKindVideo {
		return CreditTypeVideo
	}
	if strings.EqualFold(strings.TrimSpace(resolution), "2K") {
		return CreditTypeImageHigh
	}
	return CreditTypeImageStandard
}

// TransactionStatus marks whether a ledger row represents a completed charge
// or a recorded billing miss.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
)

// CreditTransaction is one append-only audit row. Exactly one completed row
// exists per successfully billed task.
type CreditTransaction struct {
	ID         string            `json:"id"`
	UserID     string            `json:"user_id"`
	CreditType CreditType        `json:"credit_type"`
	Amount     int               `json:"amount"`
	TaskID     string            `json:"task_id"`
	Status     TransactionStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
}
