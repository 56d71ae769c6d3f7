package fees

// Category is the business transaction category a fee schedule applies to.
type Category string

const (
	CategoryMarketplace     Category = "marketplace"
	CategoryDigitalProduct  Category = "digital_product"
	CategoryServiceBooking  Category = "service_booking"
	CategoryCommission      Category = "commission"
	CategorySubscription    Category = "subscription"
	CategoryTip             Category = "tip"
	CategoryEventBooking    Category = "event_booking"
	CategoryRestaurantOrder Category = "restaurant_order"
	CategoryLodgingBooking  Category = "lodging_booking"
	CategoryFeaturedListing Category = "featured_listing"
)

// PricingTier optionally overrides the commission rate for a seller.
// A subscription tier takes precedence over a percentage tier.
type PricingTier struct {
	SubscriptionTier string
	PercentageTier   string
}

// Schedule holds all commission and processing rates, in basis points.
// It is immutable after construction; tests substitute their own.
type Schedule struct {
	CommissionRates   map[Category]int64
	PercentageTiers   map[string]int64
	SubscriptionTiers map[string]int64

	// ProcessingRate + per-currency fixed surcharge make up the processing fee.
	ProcessingRate int64

	// MinPlatformFee is the floor applied whenever the resolved commission
	// rate is nonzero, to keep micro-transactions from being loss-making.
	MinPlatformFee int64
}

// DefaultSchedule returns the platform's standard fee schedule.
func DefaultSchedule() Schedule {
	return Schedule{
		CommissionRates: map[Category]int64{
			CategoryMarketplace:     800,
			CategoryDigitalProduct:  600,
			CategoryServiceBooking:  1000,
			CategoryCommission:      1000,
			CategorySubscription:    500,
			CategoryTip:             500,
			CategoryEventBooking:    1000,
			CategoryRestaurantOrder: 800,
			CategoryLodgingBooking:  1000,
			CategoryFeaturedListing: 0,
		},
		PercentageTiers: map[string]int64{
			"standard": 800,
			"pro":      600,
			"premium":  400,
		},
		SubscriptionTiers: map[string]int64{
			"starter": 700,
			"growth":  500,
			"scale":   300,
		},
		ProcessingRate: 250,
		MinPlatformFee: 25,
	}
}

// ValidCategory reports whether the schedule has a rate for the category.
func (s Schedule) ValidCategory(c Category) bool {
	_, ok := s.CommissionRates[c]
	return ok
}
