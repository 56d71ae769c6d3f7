package payment

import (
	"context"
	"errors"
	"fmt"

	"blinno/internal/entity"
	"blinno/internal/fees"
	"blinno/internal/gateway"
	"blinno/internal/logger"
	"blinno/internal/metrics"
	"blinno/internal/user"
)

var (
	ErrInvalidEntity   = errors.New("invalid entity reference")
	ErrInvalidAmount   = errors.New("amount must be positive")
	ErrMissingPhone    = errors.New("payer has no phone number on file")
	ErrGatewayRejected = errors.New("payment rejected by gateway")
)

// CreateParams describes the transaction a payment intent is opened for.
type CreateParams struct {
	Ref         entity.Ref
	PayeeID     int
	AmountCents int64
	Currency    string
	Category    fees.Category
	Tier        *fees.PricingTier
	Description string
}

// Result is what the caller gets back synchronously. Completion arrives
// later through the webhook reconciler.
type Result struct {
	Payment     *Payment         `json:"payment"`
	Fees        fees.Calculation `json:"fees"`
	CheckoutURL string           `json:"checkout_url"`
}

type Service interface {
	CreatePayment(ctx context.Context, payerID int, params CreateParams) (*Result, error)
	GetPayment(ctx context.Context, id int) (*Payment, error)
}

type service struct {
	paymentRepo Repository
	feeRepo     fees.Repository
	calculator  *fees.Calculator
	gw          gateway.Client
	userRepo    user.Repository
	callbackURL string
}

func NewService(
	paymentRepo Repository,
	feeRepo fees.Repository,
	calculator *fees.Calculator,
	gw gateway.Client,
	userRepo user.Repository,
	callbackURL string,
) Service {
	return &service{
		paymentRepo: paymentRepo,
		feeRepo:     feeRepo,
		calculator:  calculator,
		gw:          gw,
		userRepo:    userRepo,
		callbackURL: callbackURL,
	}
}

// CreatePayment computes the fee breakdown, persists the pending payment and
// fee record, and opens a checkout session with the gateway. The buyer-facing
// amount sent to the gateway is subtotal plus processing fee.
func (s *service) CreatePayment(ctx context.Context, payerID int, params CreateParams) (*Result, error) {
	if !params.Ref.Valid() {
		return nil, ErrInvalidEntity
	}
	if params.AmountCents <= 0 {
		return nil, ErrInvalidAmount
	}

	payer, err := s.userRepo.FindByID(ctx, payerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load payer: %w", err)
	}
	if payer.Phone == "" {
		return nil, ErrMissingPhone
	}

	calc, err := s.calculator.Calculate(params.AmountCents, params.Category, params.Tier, params.Currency)
	if err != nil {
		return nil, err
	}

	orderID := params.Ref.OrderID()

	p, err := s.paymentRepo.Create(ctx, &Payment{
		OrderID:       orderID,
		EntityType:    params.Ref.Type,
		EntityID:      params.Ref.ID,
		EntityBuyerID: params.Ref.BuyerID,
		UserID:        payerID,
		AmountCents:   calc.Total,
		Currency:      params.Currency,
	})
	if err != nil {
		return nil, err
	}

	_, err = s.feeRepo.Create(ctx, &fees.Record{
		TransactionID:      orderID,
		TransactionType:    params.Category,
		PayerID:            payerID,
		PayeeID:            params.PayeeID,
		SubtotalCents:      calc.Subtotal,
		PlatformFeeCents:   calc.PlatformFee,
		ProcessingFeeCents: calc.ProcessingFee,
		TotalFeesCents:     calc.TotalFees,
		CreatorPayoutCents: calc.CreatorPayout,
		Currency:           calc.Currency,
	})
	if err != nil {
		return nil, err
	}

	resp, err := s.gw.CreatePayment(ctx, gateway.CreatePaymentRequest{
		AmountCents:   calc.Total,
		Currency:      params.Currency,
		OrderID:       orderID,
		CustomerPhone: payer.Phone,
		CustomerEmail: payer.Email,
		CustomerName:  payer.Name,
		Description:   params.Description,
		CallbackURL:   s.callbackURL,
	})
	if err != nil {
		// Transport failure or timeout: the payment must end up explicitly
		// failed, never silently initiated.
		if markErr := s.paymentRepo.MarkFailed(ctx, p.ID, err.Error()); markErr != nil {
			logger.Error("failed to mark payment failed", "payment_id", p.ID, "error", markErr)
		}
		metrics.RecordPaymentCreated(string(params.Category), StatusFailed)
		return nil, err
	}

	if !resp.Success {
		if markErr := s.paymentRepo.MarkFailed(ctx, p.ID, resp.Error); markErr != nil {
			logger.Error("failed to mark payment failed", "payment_id", p.ID, "error", markErr)
		}
		metrics.RecordPaymentCreated(string(params.Category), StatusFailed)
		return nil, fmt.Errorf("%w: %s", ErrGatewayRejected, resp.Error)
	}

	if err := s.paymentRepo.MarkInitiated(ctx, p.ID, resp.PaymentID, resp.TransactionID, resp.CheckoutURL); err != nil {
		return nil, err
	}

	p.Status = StatusInitiated
	p.GatewayPaymentID = resp.PaymentID
	p.GatewayTransactionID = resp.TransactionID
	p.CheckoutURL = resp.CheckoutURL

	metrics.RecordPaymentCreated(string(params.Category), StatusInitiated)
	logger.Info("payment initiated",
		"payment_id", p.ID,
		"order_id", orderID,
		"amount_cents", calc.Total,
		"currency", params.Currency,
	)

	return &Result{
		Payment:     p,
		Fees:        calc,
		CheckoutURL: resp.CheckoutURL,
	}, nil
}

func (s *service) GetPayment(ctx context.Context, id int) (*Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}
