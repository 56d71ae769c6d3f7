package payment

import (
	"time"

	"blinno/internal/entity"
)

const (
	StatusPending   = "pending"
	StatusInitiated = "initiated"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Payment tracks one checkout with the external gateway. The typed entity
// columns carry the domain context the webhook reconciler dispatches on.
type Payment struct {
	ID                   int         `db:"id" json:"id"`
	OrderID              string      `db:"order_id" json:"order_id"`
	EntityType           entity.Type `db:"entity_type" json:"entity_type"`
	EntityID             int         `db:"entity_id" json:"entity_id"`
	EntityBuyerID        int         `db:"entity_buyer_id" json:"entity_buyer_id,omitempty"`
	UserID               int         `db:"user_id" json:"user_id"`
	AmountCents          int64       `db:"amount_cents" json:"amount_cents"`
	Currency             string      `db:"currency" json:"currency"`
	Status               string      `db:"status" json:"status"`
	GatewayPaymentID     string      `db:"gateway_payment_id" json:"gateway_payment_id,omitempty"`
	GatewayTransactionID string      `db:"gateway_transaction_id" json:"gateway_transaction_id,omitempty"`
	CheckoutURL          string      `db:"checkout_url" json:"checkout_url,omitempty"`
	FailureReason        string      `db:"failure_reason" json:"failure_reason,omitempty"`
	CreatedAt            time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time   `db:"updated_at" json:"updated_at"`
}

// EntityRef rebuilds the typed reference stored on the row.
func (p *Payment) EntityRef() entity.Ref {
	return entity.Ref{Type: p.EntityType, ID: p.EntityID, BuyerID: p.EntityBuyerID}
}
