package currency

// Fixed processing surcharges charged by the payment gateway per transaction,
// expressed in the currency's minor unit (cents, tambala, kobo, ...).
var fixedFees = map[string]int64{
	"USD": 30,
	"EUR": 30,
	"GBP": 25,
	"CAD": 30,
	"AUD": 30,
	"KES": 2000,
	"NGN": 5000,
	"ZAR": 300,
	"MWK": 50000,
}

// DefaultFixedFee is used when a currency code is not in the table.
const DefaultFixedFee int64 = 30

// FixedFee returns the gateway's fixed surcharge for a currency code,
// falling back to DefaultFixedFee for unknown codes.
func FixedFee(code string) int64 {
	if fee, ok := fixedFees[code]; ok {
		return fee
	}
	return DefaultFixedFee
}

// Supported reports whether the currency code has an explicit fee entry.
func Supported(code string) bool {
	_, ok := fixedFees[code]
	return ok
}
