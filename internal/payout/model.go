package payout

import "time"

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusPaid       = "paid"
	StatusFailed     = "failed"
	StatusCancelled  = "cancelled"
)

// Payout is one withdrawal request. The platform_fees rows it consumes point
// back at it through payout_id, set atomically when the payout is created.
type Payout struct {
	ID            int       `db:"id" json:"id"`
	UserID        int       `db:"user_id" json:"user_id"`
	AmountCents   int64     `db:"amount_cents" json:"amount_cents"`
	Currency      string    `db:"currency" json:"currency"`
	Status        string    `db:"status" json:"status"`
	PaymentMethod string    `db:"payment_method" json:"payment_method"`
	TransactionID string    `db:"transaction_id" json:"transaction_id,omitempty"`
	FailureReason string    `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
