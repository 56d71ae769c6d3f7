package ledger

import "time"

const (
	TypeEarnings = "earnings"
	TypePayout   = "payout"
	TypeRefund   = "refund"
)

// Balance is one row per user, mutated only through Record.
type Balance struct {
	ID                int       `db:"id" json:"id"`
	UserID            int       `db:"user_id" json:"user_id"`
	AvailableCents    int64     `db:"available_cents" json:"available_cents"`
	PendingCents      int64     `db:"pending_cents" json:"pending_cents"`
	TotalEarnedCents  int64     `db:"total_earned_cents" json:"total_earned_cents"`
	TotalPaidOutCents int64     `db:"total_paid_out_cents" json:"total_paid_out_cents"`
	Currency          string    `db:"currency" json:"currency"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// Transaction is an append-only audit row. Balance state is a fold over
// these rows; once written they are never mutated.
type Transaction struct {
	ID                 int       `db:"id" json:"id"`
	UserID             int       `db:"user_id" json:"user_id"`
	Type               string    `db:"type" json:"type"`
	AmountCents        int64     `db:"amount_cents" json:"amount_cents"`
	BalanceBeforeCents int64     `db:"balance_before_cents" json:"balance_before_cents"`
	BalanceAfterCents  int64     `db:"balance_after_cents" json:"balance_after_cents"`
	ReferenceID        string    `db:"reference_id" json:"reference_id"`
	ReferenceType      string    `db:"reference_type" json:"reference_type"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
}
