package transfer

import (
	"regexp"
	"strconv"

	"tagpay/internal/models"
	"tagpay/internal/money"
)

// Mode selects the transfer channel. Exactly one mode-specific payload is
// populated at any time; switching modes clears the other payloads so an
// unvalidated field combination is unrepresentable.
type Mode int

const (
	ModeCrypto Mode = iota
	ModeFiat
	ModeTag
)

func (m Mode) String() string {
	switch m {
	case ModeCrypto:
		return "CRYPTO"
	case ModeFiat:
		return "FIAT"
	case ModeTag:
		return "TAG"
	default:
		return "UNKNOWN"
	}
}

// ConfirmationMethod is the authorization mechanism for one transfer.
// Selecting a new one deselects the previous.
type ConfirmationMethod int

const (
	MethodNone ConfirmationMethod = iota
	MethodPIN
	MethodFingerprint
	MethodPalmprint
)

func (m ConfirmationMethod) String() string {
	switch m {
	case MethodPIN:
		return "pin"
	case MethodFingerprint:
		return "fingerprint"
	case MethodPalmprint:
		return "palmprint"
	default:
		return "none"
	}
}

// TagDetails is the TAG payload.
type TagDetails struct {
	Tag string
}

// FiatDetails is the FIAT payload.
type FiatDetails struct {
	BankName      string
	BankCode      string
	AccountNumber string
}

// tagPattern is the tagname shape rule: starts with a letter, alphanumeric,
// at least three characters.
var tagPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{2,}$`)

// Request is the user-authored transfer intent. It is created empty,
// mutated field by field, validated before preview and read-only during
// submission. Mutating an identifier resets the recipient descriptor's
// Validated flag so a stale recipient can never be submitted.
type Request struct {
	mode      Mode
	amount    string // normalized
	currency  money.Currency
	note      string
	tag       TagDetails
	fiat      FiatDetails
	recipient models.RecipientDescriptor
}

func newRequest() Request {
	return Request{mode: ModeCrypto, currency: money.NGN}
}

func (r *Request) setMode(m Mode) {
	if r.mode == m {
		return
	}
	r.mode = m
	r.tag = TagDetails{}
	r.fiat = FiatDetails{}
	r.recipient = models.RecipientDescriptor{}
}

func (r *Request) setAmount(s string) {
	r.amount = money.Normalize(s)
}

func (r *Request) setNote(note string) {
	r.note = note
}

func (r *Request) setTag(tag string) {
	if r.tag.Tag != tag {
		r.recipient = models.RecipientDescriptor{}
	}
	r.tag.Tag = tag
}

func (r *Request) setBank(name, code string) {
	if r.fiat.BankCode != code {
		r.recipient = models.RecipientDescriptor{}
	}
	r.fiat.BankName = name
	r.fiat.BankCode = code
}

func (r *Request) setAccountNumber(account string) {
	account = digitsOnly(account)
	if r.fiat.AccountNumber != account {
		r.recipient = models.RecipientDescriptor{}
	}
	r.fiat.AccountNumber = account
}

// validate runs every local precondition for Editing -> Resolving. It
// returns nil when preview may proceed.
func (r *Request) validate(policies map[money.Currency]money.Policy, snapshot models.AccountSnapshot, hasSnapshot bool) *Failure {
	policy, ok := policies[r.currency]
	if !ok {
		return &Failure{Kind: FailureValidation, Field: "currency", Message: "Unsupported currency"}
	}

	amount, ok := money.Parse(r.amount)
	if !ok {
		return &Failure{Kind: FailureValidation, Field: "amount", Message: "Enter a valid amount"}
	}
	if amount < policy.MinTransfer {
		min := strconv.FormatFloat(policy.MinTransfer, 'f', -1, 64)
		return &Failure{
			Kind:    FailureValidation,
			Field:   "amount",
			Message: "Minimum transfer is " + policy.Symbol + min,
		}
	}
	if policy.BalanceChecked {
		if !hasSnapshot {
			return &Failure{Kind: FailureValidation, Field: "amount", Message: "Account balance unavailable, please refresh"}
		}
		if amount > snapshot.NGBalance {
			return &Failure{Kind: FailureValidation, Field: "amount", Message: "Insufficient fund, please top-up!"}
		}
	}

	switch r.mode {
	case ModeTag:
		if !tagPattern.MatchString(r.tag.Tag) {
			return &Failure{Kind: FailureValidation, Field: "tag", Message: "Please enter a valid tagname"}
		}
	case ModeFiat:
		if r.fiat.BankCode == "" {
			return &Failure{Kind: FailureValidation, Field: "bank", Message: "Please select a bank"}
		}
		if len(r.fiat.AccountNumber) != 10 {
			return &Failure{Kind: FailureValidation, Field: "account", Message: "Account number must be 10 digits"}
		}
	case ModeCrypto:
		return &Failure{Kind: FailureValidation, Field: "mode", Message: "Crypto transfers are not available yet"}
	}
	return nil
}

func digitsOnly(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] >= '0' && s[i] <= '9' {
			out = append(out, s[i])
		}
	}
	return string(out)
}

// Receipt carries the submitted transaction's reference for the receipt
// screen.
type Receipt struct {
	Reference string
}

// Summary is the preview rendering of a validated request.
type Summary struct {
	Amount    string // e.g. "₦50.00"
	Recipient string
	Note      string
}
