package fees

import "time"

const (
	StatusPending   = "pending"
	StatusCollected = "collected"
	StatusRefunded  = "refunded"
)

const (
	PayoutStatusPending    = "pending"
	PayoutStatusReserved   = "reserved"
	PayoutStatusProcessing = "processing"
	PayoutStatusPaid       = "paid"
)

// Record is the persisted platform-fee breakdown for one business
// transaction. Created pending alongside the payment; collected or refunded
// by the webhook reconciler; consumed by payouts via payout_status.
type Record struct {
	ID                 int       `db:"id" json:"id"`
	TransactionID      string    `db:"transaction_id" json:"transaction_id"`
	TransactionType    Category  `db:"transaction_type" json:"transaction_type"`
	PayerID            int       `db:"payer_id" json:"payer_id"`
	PayeeID            int       `db:"payee_id" json:"payee_id"`
	SubtotalCents      int64     `db:"subtotal_cents" json:"subtotal_cents"`
	PlatformFeeCents   int64     `db:"platform_fee_cents" json:"platform_fee_cents"`
	ProcessingFeeCents int64     `db:"processing_fee_cents" json:"processing_fee_cents"`
	TotalFeesCents     int64     `db:"total_fees_cents" json:"total_fees_cents"`
	CreatorPayoutCents int64     `db:"creator_payout_cents" json:"creator_payout_cents"`
	Currency           string    `db:"currency" json:"currency"`
	Status             string    `db:"status" json:"status"`
	PayoutStatus       string    `db:"payout_status" json:"payout_status"`
	PayoutID           *int      `db:"payout_id" json:"payout_id,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time `db:"updated_at" json:"updated_at"`
}
