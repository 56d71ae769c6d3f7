package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var ErrPaymentNotFound = errors.New("payment not found")

type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	GetByID(ctx context.Context, id int) (*Payment, error)
	GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*Payment, error)
	MarkInitiated(ctx context.Context, id int, gatewayPaymentID, gatewayTransactionID, checkoutURL string) error
	MarkFailed(ctx context.Context, id int, reason string) error
	UpdateStatus(ctx context.Context, id int, status string) error
	UpdateGatewayTransactionID(ctx context.Context, id int, gatewayTransactionID string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const paymentColumns = `id, order_id, entity_type, entity_id, entity_buyer_id, user_id,
		amount_cents, currency, status, gateway_payment_id, gateway_transaction_id,
		checkout_url, failure_reason, created_at, updated_at`

func (r *repository) Create(ctx context.Context, p *Payment) (*Payment, error) {
	query := `
		INSERT INTO payments (order_id, entity_type, entity_id, entity_buyer_id, user_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'pending')
		RETURNING ` + paymentColumns

	var created Payment
	err := r.db.GetContext(ctx, &created, query,
		p.OrderID, p.EntityType, p.EntityID, p.EntityBuyerID, p.UserID, p.AmountCents, p.Currency,
	)
	if err != nil {
		return nil, err
	}

	return &created, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT `+paymentColumns+` FROM payments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByGatewayPaymentID(ctx context.Context, gatewayPaymentID string) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p,
		`SELECT `+paymentColumns+` FROM payments WHERE gateway_payment_id = $1`, gatewayPaymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) MarkInitiated(ctx context.Context, id int, gatewayPaymentID, gatewayTransactionID, checkoutURL string) error {
	query := `
		UPDATE payments
		SET status = 'initiated', gateway_payment_id = $1, gateway_transaction_id = $2, checkout_url = $3, updated_at = NOW()
		WHERE id = $4 AND status = 'pending'
	`

	result, err := r.db.ExecContext(ctx, query, gatewayPaymentID, gatewayTransactionID, checkoutURL, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrPaymentNotFound
	}

	return nil
}

func (r *repository) MarkFailed(ctx context.Context, id int, reason string) error {
	query := `
		UPDATE payments
		SET status = 'failed', failure_reason = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, reason, id)
	return err
}

func (r *repository) UpdateStatus(ctx context.Context, id int, status string) error {
	query := `
		UPDATE payments
		SET status = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, status, id)
	return err
}

func (r *repository) UpdateGatewayTransactionID(ctx context.Context, id int, gatewayTransactionID string) error {
	query := `
		UPDATE payments
		SET gateway_transaction_id = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, gatewayTransactionID, id)
	return err
}
