package fees

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type Repository interface {
	Create(ctx context.Context, rec *Record) (*Record, error)
	GetByTransaction(ctx context.Context, transactionID string) ([]Record, error)
	CollectByTransaction(ctx context.Context, transactionID string) ([]Record, error)
	RefundByTransaction(ctx context.Context, transactionID string) (int64, error)
	CollectedUnreserved(ctx context.Context, payeeID int) ([]Record, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const recordColumns = `id, transaction_id, transaction_type, payer_id, payee_id,
		subtotal_cents, platform_fee_cents, processing_fee_cents, total_fees_cents,
		creator_payout_cents, currency, status, payout_status, payout_id, created_at, updated_at`

func (r *repository) Create(ctx context.Context, rec *Record) (*Record, error) {
	query := `
		INSERT INTO platform_fees (
			transaction_id, transaction_type, payer_id, payee_id,
			subtotal_cents, platform_fee_cents, processing_fee_cents, total_fees_cents,
			creator_payout_cents, currency, status, payout_status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 'pending', 'pending')
		RETURNING ` + recordColumns

	var created Record
	err := r.db.GetContext(ctx, &created, query,
		rec.TransactionID, rec.TransactionType, rec.PayerID, rec.PayeeID,
		rec.SubtotalCents, rec.PlatformFeeCents, rec.ProcessingFeeCents, rec.TotalFeesCents,
		rec.CreatorPayoutCents, rec.Currency,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByTransaction(ctx context.Context, transactionID string) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM platform_fees
		WHERE transaction_id = $1
		ORDER BY id
	`

	var recs []Record
	err := r.db.SelectContext(ctx, &recs, query, transactionID)
	if err != nil {
		return nil, err
	}

	return recs, nil
}

// CollectByTransaction flips pending fee records for a transaction to
// collected and returns the rows it actually changed. The status condition
// makes a retried webhook collect zero rows instead of double-collecting.
func (r *repository) CollectByTransaction(ctx context.Context, transactionID string) ([]Record, error) {
	query := `
		UPDATE platform_fees
		SET status = 'collected', updated_at = NOW()
		WHERE transaction_id = $1 AND status = 'pending'
		RETURNING ` + recordColumns

	var recs []Record
	err := r.db.SelectContext(ctx, &recs, query, transactionID)
	if err != nil {
		return nil, err
	}

	return recs, nil
}

// RefundByTransaction marks pending fee records for a transaction refunded.
// Returns the number of rows changed.
func (r *repository) RefundByTransaction(ctx context.Context, transactionID string) (int64, error) {
	query := `
		UPDATE platform_fees
		SET status = 'refunded', updated_at = NOW()
		WHERE transaction_id = $1 AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, transactionID)
	if err != nil {
		return 0, err
	}

	return result.RowsAffected()
}

// CollectedUnreserved returns a payee's fee records that are collected and
// not yet consumed by any payout, i.e. the earnings available for withdrawal.
func (r *repository) CollectedUnreserved(ctx context.Context, payeeID int) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM platform_fees
		WHERE payee_id = $1 AND status = 'collected' AND payout_status = 'pending'
		ORDER BY id
	`

	var recs []Record
	err := r.db.SelectContext(ctx, &recs, query, payeeID)
	if err != nil {
		return nil, err
	}

	return recs, nil
}
