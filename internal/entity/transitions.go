package entity

// Transition describes how a payment outcome moves a domain entity's status.
type Transition struct {
	Table     string
	Column    string
	Completed string
	Failed    string

	// KeyedByBuyer marks tables addressed by (id, buyer_id) rather than id.
	KeyedByBuyer bool
}

// transitions is the exhaustive dispatch table for payment outcomes. Every
// entity type routes to exactly one table and one pair of states.
var transitions = map[Type]Transition{
	TypeOrder:              {Table: "orders", Column: "payment_status", Completed: "paid", Failed: "failed"},
	TypeSubscription:       {Table: "subscriptions", Column: "status", Completed: "active", Failed: "payment_failed"},
	TypeTip:                {Table: "tips", Column: "status", Completed: "completed", Failed: "failed"},
	TypeCommission:         {Table: "commissions", Column: "status", Completed: "paid", Failed: "payment_failed"},
	TypePerformanceBooking: {Table: "performance_bookings", Column: "status", Completed: "confirmed", Failed: "cancelled"},
	TypeFeaturedListing:    {Table: "featured_listings", Column: "status", Completed: "active", Failed: "payment_failed"},
	TypeLodgingBooking:     {Table: "lodging_bookings", Column: "status", Completed: "confirmed", Failed: "cancelled"},
	TypeDigitalProduct:     {Table: "digital_purchases", Column: "status", Completed: "completed", Failed: "failed", KeyedByBuyer: true},
}

// TransitionFor returns the transition row for a type.
func TransitionFor(t Type) (Transition, bool) {
	tr, ok := transitions[t]
	return tr, ok
}

// Types lists every dispatchable entity type.
func Types() []Type {
	out := make([]Type, 0, len(transitions))
	for t := range transitions {
		out = append(out, t)
	}
	return out
}
