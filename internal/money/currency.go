package money

// Currency is a closed set. The mobile app let users type any symbol into
// the currency field while hardcoding Naira rules, which silently skipped
// minimum and balance checks for anything else; here unknown currencies are
// rejected outright and every supported currency carries an explicit policy.
type Currency string

const (
	NGN Currency = "NGN"
	USD Currency = "USD"
)

// Policy describes how transfers in a currency are validated locally.
type Policy struct {
	Symbol string
	// MinTransfer is the smallest amount accepted for a transfer.
	MinTransfer float64
	// BalanceChecked reports whether the cached account snapshot is
	// authoritative for this currency and must cover the amount.
	BalanceChecked bool
}

// DefaultPolicies returns the built-in policy table. Callers may copy and
// override entries (e.g. MIN_TRANSFER_NGN from the environment).
func DefaultPolicies() map[Currency]Policy {
	return map[Currency]Policy{
		NGN: {Symbol: "₦", MinTransfer: 50, BalanceChecked: true},
		USD: {Symbol: "$", MinTransfer: 1, BalanceChecked: false},
	}
}

// Valid reports whether c is a supported currency.
func (c Currency) Valid() bool {
	switch c {
	case NGN, USD:
		return true
	}
	return false
}
