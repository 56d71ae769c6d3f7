package entity

import (
	"errors"
	"fmt"
)

// Type identifies which domain table a payment settles against.
type Type string

const (
	TypeOrder              Type = "order"
	TypeSubscription       Type = "subscription"
	TypeTip                Type = "tip"
	TypeCommission         Type = "commission"
	TypePerformanceBooking Type = "performance_booking"
	TypeFeaturedListing    Type = "featured_listing"
	TypeLodgingBooking     Type = "lodging_booking"
	TypeDigitalProduct     Type = "digital_product"
)

var ErrUnknownType = errors.New("unknown entity type")

// Ref is a typed reference to the domain entity a payment belongs to.
// It is stored on the payment row at creation time, so webhook dispatch never
// has to re-derive the entity from an opaque order id string.
type Ref struct {
	Type    Type `json:"type"`
	ID      int  `json:"id"`
	BuyerID int  `json:"buyer_id,omitempty"`
}

// Valid reports whether the reference names a known type and a concrete row.
func (r Ref) Valid() bool {
	if _, ok := transitions[r.Type]; !ok {
		return false
	}
	if r.ID <= 0 {
		return false
	}
	if r.Type == TypeDigitalProduct && r.BuyerID <= 0 {
		return false
	}
	return true
}

// OrderID renders the gateway-facing order identifier. The encoding survives
// only as a correlation string for the gateway; dispatch uses the typed ref.
func (r Ref) OrderID() string {
	if r.Type == TypeDigitalProduct {
		return fmt.Sprintf("%s_%d_%d", r.Type, r.ID, r.BuyerID)
	}
	return fmt.Sprintf("%s_%d", r.Type, r.ID)
}
