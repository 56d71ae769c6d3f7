package webhook

import (
	"context"
	"fmt"

	"blinno/internal/entity"
	"blinno/internal/fees"
	"blinno/internal/ledger"
	"blinno/internal/logger"
	"blinno/internal/metrics"
	"blinno/internal/notify"
	"blinno/internal/payment"
	"blinno/internal/user"
)

// Notification is the payload the gateway POSTs on payment status changes.
type Notification struct {
	PaymentID     string `json:"payment_id" validate:"required"`
	OrderID       string `json:"order_id"`
	Status        string `json:"status" validate:"required"`
	TransactionID string `json:"transaction_id"`
}

// Result tells the handler what the reconciler did with a delivery. Every
// result maps to a 200 so the gateway stops retrying.
type Result string

const (
	ResultCompleted Result = "completed"
	ResultFailed    Result = "failed"
	ResultDuplicate Result = "duplicate"
	ResultIgnored   Result = "ignored"
)

// statusMap translates the gateway's status vocabulary to ours.
var statusMap = map[string]string{
	"success":   payment.StatusCompleted,
	"completed": payment.StatusCompleted,
	"paid":      payment.StatusCompleted,
	"failed":    payment.StatusFailed,
	"cancelled": payment.StatusFailed,
	"rejected":  payment.StatusFailed,
	"pending":   payment.StatusPending,
}

type Service interface {
	HandleNotification(ctx context.Context, n Notification) (Result, error)
}

type service struct {
	payments payment.Repository
	feeRepo  fees.Repository
	ledgers  ledger.Repository
	entities entity.Store
	users    user.Repository
	notifier notify.Notifier
}

func NewService(
	payments payment.Repository,
	feeRepo fees.Repository,
	ledgers ledger.Repository,
	entities entity.Store,
	users user.Repository,
	notifier notify.Notifier,
) Service {
	return &service{
		payments: payments,
		feeRepo:  feeRepo,
		ledgers:  ledgers,
		entities: entities,
		users:    users,
		notifier: notifier,
	}
}

// HandleNotification reconciles one gateway delivery. Order matters: the
// payment row is the idempotency anchor, so its status is persisted before
// any downstream effect. A redelivered notification finds the status already
// final and only refreshes the gateway transaction id.
func (s *service) HandleNotification(ctx context.Context, n Notification) (Result, error) {
	p, err := s.payments.GetByGatewayPaymentID(ctx, n.PaymentID)
	if err != nil {
		return "", err
	}

	mapped, ok := statusMap[n.Status]
	if !ok {
		logger.Info("ignoring webhook with unknown status",
			"gateway_payment_id", n.PaymentID,
			"status", n.Status,
		)
		return ResultIgnored, nil
	}

	// A payment that already reached completed or failed never transitions
	// again, whatever the delivery says. Contradictory deliveries would
	// otherwise flip the payment while the ledger credit stays behind.
	terminal := p.Status == payment.StatusCompleted || p.Status == payment.StatusFailed
	if terminal || mapped == payment.StatusPending {
		if n.TransactionID != "" && n.TransactionID != p.GatewayTransactionID {
			if err := s.payments.UpdateGatewayTransactionID(ctx, p.ID, n.TransactionID); err != nil {
				return "", err
			}
		}
		logger.Info("webhook delivery is a no-op",
			"payment_id", p.ID,
			"payment_status", p.Status,
			"status", n.Status,
		)
		return ResultDuplicate, nil
	}

	if err := s.payments.UpdateStatus(ctx, p.ID, mapped); err != nil {
		return "", fmt.Errorf("failed to update payment status: %w", err)
	}
	if n.TransactionID != "" && n.TransactionID != p.GatewayTransactionID {
		if err := s.payments.UpdateGatewayTransactionID(ctx, p.ID, n.TransactionID); err != nil {
			logger.Error("failed to update gateway transaction id", "payment_id", p.ID, "error", err)
		}
	}

	if mapped == payment.StatusCompleted {
		return s.settle(ctx, p)
	}
	return s.fail(ctx, p)
}

// settle applies the side effects of a completed payment: flip the entity to
// its completed state, collect the fee records, and credit each payee's
// ledger with their payout share.
func (s *service) settle(ctx context.Context, p *payment.Payment) (Result, error) {
	rows, err := s.entities.MarkCompleted(ctx, p.EntityRef())
	if err != nil {
		return "", fmt.Errorf("failed to complete %s %d: %w", p.EntityType, p.EntityID, err)
	}
	if rows == 0 {
		logger.Error("no entity row matched webhook",
			"entity_type", p.EntityType,
			"entity_id", p.EntityID,
			"payment_id", p.ID,
		)
	}

	recs, err := s.feeRepo.CollectByTransaction(ctx, p.OrderID)
	if err != nil {
		return "", fmt.Errorf("failed to collect fees: %w", err)
	}

	for _, rec := range recs {
		if rec.CreatorPayoutCents <= 0 {
			continue
		}
		_, err := s.ledgers.Record(ctx, rec.PayeeID, ledger.TypeEarnings, rec.CreatorPayoutCents, rec.TransactionID, "platform_fee")
		if err != nil {
			return "", fmt.Errorf("failed to credit payee %d: %w", rec.PayeeID, err)
		}
		metrics.RecordLedgerTransaction(ledger.TypeEarnings)
		s.notifyEarnings(ctx, rec)
	}

	s.notifyPayer(ctx, p, true)
	metrics.RecordWebhook(string(ResultCompleted))
	logger.Info("payment completed",
		"payment_id", p.ID,
		"order_id", p.OrderID,
		"amount_cents", p.AmountCents,
	)

	return ResultCompleted, nil
}

// fail applies the side effects of a failed payment. Fee records still
// pending are marked refunded so they never reach collection.
func (s *service) fail(ctx context.Context, p *payment.Payment) (Result, error) {
	rows, err := s.entities.MarkFailed(ctx, p.EntityRef())
	if err != nil {
		return "", fmt.Errorf("failed to fail %s %d: %w", p.EntityType, p.EntityID, err)
	}
	if rows == 0 {
		logger.Error("no entity row matched webhook",
			"entity_type", p.EntityType,
			"entity_id", p.EntityID,
			"payment_id", p.ID,
		)
	}

	if _, err := s.feeRepo.RefundByTransaction(ctx, p.OrderID); err != nil {
		return "", fmt.Errorf("failed to refund fees: %w", err)
	}

	s.notifyPayer(ctx, p, false)
	metrics.RecordWebhook(string(ResultFailed))
	logger.Info("payment failed",
		"payment_id", p.ID,
		"order_id", p.OrderID,
	)

	return ResultFailed, nil
}

func (s *service) notifyPayer(ctx context.Context, p *payment.Payment, completed bool) {
	payer, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		logger.Error("failed to load payer for notification", "user_id", p.UserID, "error", err)
		return
	}

	if completed {
		err = s.notifier.PaymentCompleted(ctx, payer.Email, payer.Name, p.AmountCents, p.Currency, p.OrderID)
	} else {
		err = s.notifier.PaymentFailed(ctx, payer.Email, payer.Name, p.AmountCents, p.Currency, p.OrderID)
	}
	if err != nil {
		logger.Error("failed to queue payment notification", "user_id", p.UserID, "error", err)
	}
}

func (s *service) notifyEarnings(ctx context.Context, rec fees.Record) {
	payee, err := s.users.FindByID(ctx, rec.PayeeID)
	if err != nil {
		logger.Error("failed to load payee for notification", "user_id", rec.PayeeID, "error", err)
		return
	}
	if err := s.notifier.EarningsAvailable(ctx, payee.Email, payee.Name, rec.CreatorPayoutCents, rec.Currency, rec.TransactionID); err != nil {
		logger.Error("failed to queue earnings notification", "user_id", rec.PayeeID, "error", err)
	}
}
