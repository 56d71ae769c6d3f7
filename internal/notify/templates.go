package notify

import (
	"context"
	"fmt"
)

func formatAmount(amountCents int64, currency string) string {
	sign := ""
	if amountCents < 0 {
		sign = "-"
		amountCents = -amountCents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, amountCents/100, amountCents%100, currency)
}

func (s *Service) PaymentCompleted(ctx context.Context, email, name string, amountCents int64, currency, orderID string) error {
	amount := formatAmount(amountCents, currency)
	return s.enqueue(ctx, Job{
		To:      email,
		Name:    name,
		Type:    "payment_completed",
		Subject: "Payment received",
		Body: fmt.Sprintf(`Hi %s,

We received your payment of %s for order %s.

You can view the details in your account dashboard.

Thanks,
The Blinno Team`, name, amount, orderID),
	})
}

func (s *Service) PaymentFailed(ctx context.Context, email, name string, amountCents int64, currency, orderID string) error {
	amount := formatAmount(amountCents, currency)
	return s.enqueue(ctx, Job{
		To:      email,
		Name:    name,
		Type:    "payment_failed",
		Subject: "Payment failed",
		Body: fmt.Sprintf(`Hi %s,

Your payment of %s for order %s could not be completed.

No money was taken from your account. Please try again or use a
different payment method.

Thanks,
The Blinno Team`, name, amount, orderID),
	})
}

func (s *Service) EarningsAvailable(ctx context.Context, email, name string, amountCents int64, currency, orderID string) error {
	amount := formatAmount(amountCents, currency)
	return s.enqueue(ctx, Job{
		To:      email,
		Name:    name,
		Type:    "earnings_available",
		Subject: "You have new earnings",
		Body: fmt.Sprintf(`Hi %s,

You just earned %s from order %s. The amount has been added to your
available balance and can be withdrawn at any time.

Thanks,
The Blinno Team`, name, amount, orderID),
	})
}

func (s *Service) PayoutCompleted(ctx context.Context, email, name string, amountCents int64, currency string) error {
	amount := formatAmount(amountCents, currency)
	return s.enqueue(ctx, Job{
		To:      email,
		Name:    name,
		Type:    "payout_completed",
		Subject: "Your payout is on its way",
		Body: fmt.Sprintf(`Hi %s,

Your payout of %s has been sent. Depending on your payment provider it
may take a few business days to arrive.

Thanks,
The Blinno Team`, name, amount),
	})
}

func (s *Service) PayoutFailed(ctx context.Context, email, name string, amountCents int64, currency, reason string) error {
	amount := formatAmount(amountCents, currency)
	return s.enqueue(ctx, Job{
		To:      email,
		Name:    name,
		Type:    "payout_failed",
		Subject: "Payout could not be processed",
		Body: fmt.Sprintf(`Hi %s,

We were unable to process your payout of %s (%s). Your earnings are
still in your balance and you can request the payout again.

Thanks,
The Blinno Team`, name, amount, reason),
	})
}
