package fees

import (
	"errors"

	"blinno/internal/currency"
)

var (
	ErrUnknownCategory = errors.New("unknown transaction category")
	ErrUnknownTier     = errors.New("unknown pricing tier")
	ErrNegativeAmount  = errors.New("amount must not be negative")
)

// Calculation is the full fee breakdown for one transaction.
// All amounts are in the currency's minor unit.
type Calculation struct {
	Subtotal      int64  `json:"subtotal_cents"`
	PlatformFee   int64  `json:"platform_fee_cents"`
	ProcessingFee int64  `json:"processing_fee_cents"`
	TotalFees     int64  `json:"total_fees_cents"`
	CreatorPayout int64  `json:"creator_payout_cents"`
	Total         int64  `json:"total_cents"`
	Currency      string `json:"currency"`
}

// Calculator computes fee breakdowns from an injected schedule.
// It is pure and safe for concurrent use.
type Calculator struct {
	schedule Schedule
}

func NewCalculator(schedule Schedule) *Calculator {
	return &Calculator{schedule: schedule}
}

// ResolveRate returns the commission rate in basis points for a category and
// optional tier. Subscription tier wins over percentage tier, which wins over
// the category default.
func (c *Calculator) ResolveRate(category Category, tier *PricingTier) (int64, error) {
	base, ok := c.schedule.CommissionRates[category]
	if !ok {
		return 0, ErrUnknownCategory
	}

	if tier == nil {
		return base, nil
	}

	if tier.SubscriptionTier != "" {
		rate, ok := c.schedule.SubscriptionTiers[tier.SubscriptionTier]
		if !ok {
			return 0, ErrUnknownTier
		}
		return rate, nil
	}

	if tier.PercentageTier != "" {
		rate, ok := c.schedule.PercentageTiers[tier.PercentageTier]
		if !ok {
			return 0, ErrUnknownTier
		}
		return rate, nil
	}

	return base, nil
}

// Calculate produces the fee breakdown for an amount in minor units.
// Invariants: Total = Subtotal + ProcessingFee, CreatorPayout = Subtotal - PlatformFee.
func (c *Calculator) Calculate(amount int64, category Category, tier *PricingTier, currencyCode string) (Calculation, error) {
	if amount < 0 {
		return Calculation{}, ErrNegativeAmount
	}

	rate, err := c.ResolveRate(category, tier)
	if err != nil {
		return Calculation{}, err
	}

	platformFee := applyRate(amount, rate)
	if rate > 0 && platformFee < c.schedule.MinPlatformFee {
		platformFee = c.schedule.MinPlatformFee
	}

	processingFee := applyRate(amount, c.schedule.ProcessingRate) + currency.FixedFee(currencyCode)

	return Calculation{
		Subtotal:      amount,
		PlatformFee:   platformFee,
		ProcessingFee: processingFee,
		TotalFees:     platformFee + processingFee,
		CreatorPayout: amount - platformFee,
		Total:         amount + processingFee,
		Currency:      currencyCode,
	}, nil
}

// applyRate multiplies an amount by a basis-point rate, rounding half up.
func applyRate(amount, bps int64) int64 {
	return (amount*bps + 5000) / 10000
}
