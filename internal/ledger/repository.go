package ledger

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrUnknownType         = errors.New("unknown transaction type")
)

type Repository interface {
	GetOrCreateBalance(ctx context.Context, userID int) (*Balance, error)
	Record(ctx context.Context, userID int, txType string, amountCents int64, referenceID, referenceType string) (*Transaction, error)
	GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error)
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const balanceColumns = `id, user_id, available_cents, pending_cents, total_earned_cents,
		total_paid_out_cents, currency, created_at, updated_at`

func (r *repository) GetOrCreateBalance(ctx context.Context, userID int) (*Balance, error) {
	b := &Balance{}
	err := r.db.GetContext(ctx, b, `SELECT `+balanceColumns+` FROM user_balances WHERE user_id = $1`, userID)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	err = r.db.QueryRowxContext(ctx,
		`INSERT INTO user_balances (user_id)
		 VALUES ($1)
		 RETURNING `+balanceColumns,
		userID,
	).StructScan(b)

	if err != nil {
		return nil, err
	}

	return b, nil
}

// Record appends a ledger transaction and updates the user's balance as one
// database transaction. The balance row is locked for the duration so
// concurrent writes for the same user serialize.
func (r *repository) Record(ctx context.Context, userID int, txType string, amountCents int64, referenceID, referenceType string) (*Transaction, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var b Balance
	err = tx.QueryRowxContext(ctx,
		`SELECT `+balanceColumns+`
		 FROM user_balances
		 WHERE user_id = $1
		 FOR UPDATE`,
		userID,
	).StructScan(&b)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = tx.QueryRowxContext(ctx,
				`INSERT INTO user_balances (user_id)
				 VALUES ($1)
				 RETURNING `+balanceColumns,
				userID,
			).StructScan(&b)
			if err != nil {
				return nil, err
			}
		} else {
			return nil, err
		}
	}

	before := b.AvailableCents
	after := before
	totalEarned := b.TotalEarnedCents
	totalPaidOut := b.TotalPaidOutCents

	switch txType {
	case TypeEarnings:
		after = before + amountCents
		totalEarned += amountCents
	case TypePayout:
		after = before - amountCents
		totalPaidOut += amountCents
	case TypeRefund:
		after = before - amountCents
		totalEarned -= amountCents
	default:
		return nil, ErrUnknownType
	}

	if after < 0 {
		return nil, ErrInsufficientBalance
	}

	var entry Transaction
	err = tx.QueryRowxContext(ctx,
		`INSERT INTO ledger_transactions (user_id, type, amount_cents, balance_before_cents, balance_after_cents, reference_id, reference_type)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id, user_id, type, amount_cents, balance_before_cents, balance_after_cents, reference_id, reference_type, created_at`,
		userID, txType, amountCents, before, after, referenceID, referenceType,
	).StructScan(&entry)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE user_balances
		 SET available_cents = $1, total_earned_cents = $2, total_paid_out_cents = $3, updated_at = NOW()
		 WHERE id = $4`,
		after, totalEarned, totalPaidOut, b.ID,
	)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (r *repository) GetTransactions(ctx context.Context, userID int, limit, offset int) ([]Transaction, error) {
	if limit <= 0 {
		limit = 50
	}

	var txs []Transaction
	err := r.db.SelectContext(ctx, &txs, `
		SELECT id, user_id, type, amount_cents, balance_before_cents, balance_after_cents, reference_id, reference_type, created_at
		FROM ledger_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return txs, nil
}
