package payout

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	ErrPayoutNotFound    = errors.New("payout not found")
	ErrInvalidTransition = errors.New("invalid payout state transition")
	ErrFeesUnavailable   = errors.New("fee records are no longer available")
)

type Repository interface {
	CreateReserving(ctx context.Context, p *Payout, feeIDs []int) (*Payout, error)
	GetByID(ctx context.Context, id int) (*Payout, error)
	ListByUser(ctx context.Context, userID, limit, offset int) ([]Payout, error)
	ListAll(ctx context.Context, limit, offset int) ([]Payout, error)
	MarkProcessing(ctx context.Context, id int) error
	MarkPaid(ctx context.Context, id int, transactionID string) error
	MarkFailed(ctx context.Context, id int, reason string) error
	MarkCancelled(ctx context.Context, id int) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const payoutColumns = `id, user_id, amount_cents, currency, status, payment_method,
		transaction_id, failure_reason, created_at, updated_at`

// CreateReserving inserts the payout row and flips the consumed fee records to
// reserved in the same database transaction. If any fee record was grabbed by
// a concurrent payout in the meantime, the whole thing rolls back, so two
// requests can never double-spend the same earnings.
func (r *repository) CreateReserving(ctx context.Context, p *Payout, feeIDs []int) (*Payout, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var created Payout
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO payouts (user_id, amount_cents, currency, status, payment_method)
		 VALUES ($1, $2, $3, 'pending', $4)
		 RETURNING `+payoutColumns,
		p.UserID, p.AmountCents, p.Currency, p.PaymentMethod,
	).StructScan(&created)
	if err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx,
		`UPDATE platform_fees
		 SET payout_status = 'reserved', payout_id = $1, updated_at = NOW()
		 WHERE id = ANY($2) AND status = 'collected' AND payout_status = 'pending'`,
		created.ID, pq.Array(feeIDs),
	)
	if err != nil {
		return nil, err
	}

	reserved, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if reserved != int64(len(feeIDs)) {
		return nil, ErrFeesUnavailable
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Payout, error) {
	var p Payout
	err := r.db.GetContext(ctx, &p, `SELECT `+payoutColumns+` FROM payouts WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPayoutNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListByUser(ctx context.Context, userID, limit, offset int) ([]Payout, error) {
	if limit <= 0 {
		limit = 50
	}

	var payouts []Payout
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT `+payoutColumns+`
		FROM payouts
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return payouts, nil
}

func (r *repository) ListAll(ctx context.Context, limit, offset int) ([]Payout, error) {
	if limit <= 0 {
		limit = 50
	}

	var payouts []Payout
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT `+payoutColumns+`
		FROM payouts
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}

	return payouts, nil
}

// MarkProcessing moves pending to processing and advances the consumed fee
// records with it. The status condition makes the transition idempotent under
// concurrent operator clicks.
func (r *repository) MarkProcessing(ctx context.Context, id int) error {
	return r.transition(ctx, id,
		`UPDATE payouts SET status = 'processing', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'`,
		`UPDATE platform_fees SET payout_status = 'processing', updated_at = NOW()
		 WHERE payout_id = $1`,
	)
}

func (r *repository) MarkPaid(ctx context.Context, id int, transactionID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE payouts SET status = 'paid', transaction_id = $1, updated_at = NOW()
		 WHERE id = $2 AND status = 'processing'`,
		transactionID, id,
	)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE platform_fees SET payout_status = 'paid', updated_at = NOW()
		 WHERE payout_id = $1`,
		id,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// MarkFailed moves processing to failed and releases the fee records back to
// pending so the earnings are not stranded.
func (r *repository) MarkFailed(ctx context.Context, id int, reason string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx,
		`UPDATE payouts SET status = 'failed', failure_reason = $1, updated_at = NOW()
		 WHERE id = $2 AND status = 'processing'`,
		reason, id,
	)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE platform_fees SET payout_status = 'pending', payout_id = NULL, updated_at = NOW()
		 WHERE payout_id = $1`,
		id,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// MarkCancelled is allowed from pending or processing, never from paid.
func (r *repository) MarkCancelled(ctx context.Context, id int) error {
	return r.transition(ctx, id,
		`UPDATE payouts SET status = 'cancelled', updated_at = NOW()
		 WHERE id = $1 AND status IN ('pending', 'processing')`,
		`UPDATE platform_fees SET payout_status = 'pending', payout_id = NULL, updated_at = NOW()
		 WHERE payout_id = $1`,
	)
}

func (r *repository) transition(ctx context.Context, id int, payoutQuery, feeQuery string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, payoutQuery, id)
	if err != nil {
		return err
	}
	if err := requireRow(result); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, feeQuery, id); err != nil {
		return err
	}

	return tx.Commit()
}

func requireRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrInvalidTransition
	}
	return nil
}
