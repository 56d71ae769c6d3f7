package payout

import (
	"context"
	"errors"
	"fmt"

	"blinno/internal/fees"
	"blinno/internal/gateway"
	"blinno/internal/ledger"
	"blinno/internal/logger"
	"blinno/internal/metrics"
	"blinno/internal/notify"
	"blinno/internal/user"
)

var (
	ErrBelowMinimum       = errors.New("amount is below the minimum payout threshold")
	ErrInsufficientFunds  = errors.New("insufficient collected earnings")
	ErrDisbursementFailed = errors.New("disbursement rejected by gateway")
)

type RequestParams struct {
	AmountCents   int64
	Currency      string
	PaymentMethod string
}

type Service interface {
	Request(ctx context.Context, userID int, params RequestParams) (*Payout, error)
	Get(ctx context.Context, userID, id int) (*Payout, error)
	ListForUser(ctx context.Context, userID, limit, offset int) ([]Payout, error)
	ListAll(ctx context.Context, limit, offset int) ([]Payout, error)
	Process(ctx context.Context, id int) error
	Complete(ctx context.Context, id int) error
	Cancel(ctx context.Context, id int) error
}

type service struct {
	repo        Repository
	feeRepo     fees.Repository
	ledgers     ledger.Repository
	gw          gateway.Client
	users       user.Repository
	notifier    notify.Notifier
	minAmount   int64
	callbackURL string
}

func NewService(
	repo Repository,
	feeRepo fees.Repository,
	ledgers ledger.Repository,
	gw gateway.Client,
	users user.Repository,
	notifier notify.Notifier,
	minAmountCents int64,
	callbackURL string,
) Service {
	return &service{
		repo:        repo,
		feeRepo:     feeRepo,
		ledgers:     ledgers,
		gw:          gw,
		users:       users,
		notifier:    notifier,
		minAmount:   minAmountCents,
		callbackURL: callbackURL,
	}
}

// Request validates the amount against the creator's collected unreserved
// earnings and creates a pending payout, reserving fee records oldest first
// until the requested amount is covered. Reservation happens in the same
// database transaction as the payout insert.
func (s *service) Request(ctx context.Context, userID int, params RequestParams) (*Payout, error) {
	if params.AmountCents < s.minAmount {
		return nil, ErrBelowMinimum
	}

	recs, err := s.feeRepo.CollectedUnreserved(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load collected earnings: %w", err)
	}

	var available int64
	for _, rec := range recs {
		available += rec.CreatorPayoutCents
	}
	if params.AmountCents > available {
		return nil, ErrInsufficientFunds
	}

	var feeIDs []int
	var covered int64
	for _, rec := range recs {
		feeIDs = append(feeIDs, rec.ID)
		covered += rec.CreatorPayoutCents
		if covered >= params.AmountCents {
			break
		}
	}

	p, err := s.repo.CreateReserving(ctx, &Payout{
		UserID:        userID,
		AmountCents:   params.AmountCents,
		Currency:      params.Currency,
		PaymentMethod: params.PaymentMethod,
	}, feeIDs)
	if err != nil {
		if errors.Is(err, ErrFeesUnavailable) {
			// A concurrent request won the records; to the caller this is
			// the same as not having the funds.
			return nil, ErrInsufficientFunds
		}
		return nil, err
	}

	metrics.RecordPayout(StatusPending)
	logger.Info("payout requested",
		"payout_id", p.ID,
		"user_id", userID,
		"amount_cents", params.AmountCents,
		"fee_records", len(feeIDs),
	)

	return p, nil
}

func (s *service) Get(ctx context.Context, userID, id int) (*Payout, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, ErrPayoutNotFound
	}
	return p, nil
}

func (s *service) ListForUser(ctx context.Context, userID, limit, offset int) ([]Payout, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

func (s *service) ListAll(ctx context.Context, limit, offset int) ([]Payout, error) {
	return s.repo.ListAll(ctx, limit, offset)
}

func (s *service) Process(ctx context.Context, id int) error {
	if err := s.repo.MarkProcessing(ctx, id); err != nil {
		return err
	}
	metrics.RecordPayout(StatusProcessing)
	logger.Info("payout processing", "payout_id", id)
	return nil
}

// Complete disburses a processing payout. A gateway rejection fails the
// payout and releases the fee records; a transport failure leaves it
// processing so the operator can retry once the gateway is reachable.
func (s *service) Complete(ctx context.Context, id int) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p.Status != StatusProcessing {
		return ErrInvalidTransition
	}

	recipient, err := s.users.FindByID(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to load recipient: %w", err)
	}

	resp, err := s.gw.CreateDisbursement(ctx, gateway.CreateDisbursementRequest{
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		RecipientPhone: recipient.Phone,
		RecipientName:  recipient.Name,
		// The reference is stable across retries so the gateway can
		// deduplicate a resent disbursement after a transport failure.
		Description:    fmt.Sprintf("Creator payout #%d", p.ID),
		Reference:      fmt.Sprintf("payout_%d", p.ID),
		CallbackURL:    s.callbackURL,
	})
	if err != nil {
		metrics.RecordDisbursementFailure()
		logger.Error("disbursement call failed", "payout_id", p.ID, "error", err)
		return err
	}

	if !resp.Success {
		metrics.RecordDisbursementFailure()
		if markErr := s.repo.MarkFailed(ctx, p.ID, resp.Error); markErr != nil {
			return markErr
		}
		metrics.RecordPayout(StatusFailed)
		s.notifyPayout(ctx, recipient, p, false, resp.Error)
		return fmt.Errorf("%w: %s", ErrDisbursementFailed, resp.Error)
	}

	_, err = s.ledgers.Record(ctx, p.UserID, ledger.TypePayout, p.AmountCents,
		fmt.Sprintf("payout_%d", p.ID), "payout")
	if err != nil {
		logger.Error("failed to debit ledger after disbursement",
			"payout_id", p.ID,
			"error", err,
		)
		return err
	}
	metrics.RecordLedgerTransaction(ledger.TypePayout)

	if err := s.repo.MarkPaid(ctx, p.ID, resp.DisbursementID); err != nil {
		return err
	}

	metrics.RecordPayout(StatusPaid)
	logger.Info("payout paid",
		"payout_id", p.ID,
		"disbursement_id", resp.DisbursementID,
		"amount_cents", p.AmountCents,
	)
	s.notifyPayout(ctx, recipient, p, true, "")

	return nil
}

func (s *service) Cancel(ctx context.Context, id int) error {
	if err := s.repo.MarkCancelled(ctx, id); err != nil {
		return err
	}
	metrics.RecordPayout(StatusCancelled)
	logger.Info("payout cancelled", "payout_id", id)
	return nil
}

func (s *service) notifyPayout(ctx context.Context, recipient *user.User, p *Payout, completed bool, reason string) {
	var err error
	if completed {
		err = s.notifier.PayoutCompleted(ctx, recipient.Email, recipient.Name, p.AmountCents, p.Currency)
	} else {
		err = s.notifier.PayoutFailed(ctx, recipient.Email, recipient.Name, p.AmountCents, p.Currency, reason)
	}
	if err != nil {
		logger.Error("failed to queue payout notification", "payout_id", p.ID, "error", err)
	}
}
