package transfer

import (
	"context"
	"errors"
	"log"
	"sync"

	"tagpay/internal/api"
	"tagpay/internal/biometric"
	"tagpay/internal/models"
	"tagpay/internal/money"
	"tagpay/internal/netcheck"
	"tagpay/internal/resolver"
)

// Phase is the workflow's current state. It is owned exclusively by the
// workflow; consumers read it and drive it through operations only.
type Phase int

const (
	PhaseEditing Phase = iota
	PhaseResolving
	// PhaseAwaitingMethod doubles as the preview state: the preview surface
	// and the method picker are presented together.
	PhaseAwaitingMethod
	PhaseAwaitingSecret
	PhaseSubmitting
	PhaseSucceeded
)

func (p Phase) String() string {
	switch p {
	case PhaseEditing:
		return "editing"
	case PhaseResolving:
		return "resolving"
	case PhaseAwaitingMethod:
		return "awaiting_method"
	case PhaseAwaitingSecret:
		return "awaiting_secret"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// Config holds workflow configuration.
type Config struct {
	// Policies overrides the per-currency policy table.
	Policies map[money.Currency]money.Policy
	// ChallengeReason is shown by the biometric prompt.
	ChallengeReason string
	// Refresher re-fetches the account snapshot after submissions whose
	// response carries only a reference. Optional.
	Refresher SnapshotRefresher
}

// Workflow drives one transfer attempt. All methods are safe for use from
// the single event loop the presentation layer runs on; a second goroutine
// calling in concurrently gets ErrBusy rather than interleaved transitions.
type Workflow struct {
	mu sync.Mutex

	cfg       Config
	resolver  Resolver
	submitter Submitter
	session   SessionAccessor
	auth      biometric.Authenticator

	req      Request
	phase    Phase
	method   ConfirmationMethod
	pin      *PINBuffer
	failure  *Failure
	receipt  *Receipt
	attempt  uint64
	inFlight bool
}

// New creates a Workflow.
func New(res Resolver, sub Submitter, sess SessionAccessor, auth biometric.Authenticator, cfg Config) *Workflow {
	if res == nil {
		panic("resolver is required")
	}
	if sub == nil {
		panic("submitter is required")
	}
	if sess == nil {
		panic("session accessor is required")
	}
	if auth == nil {
		auth = biometric.Unavailable{}
	}
	if cfg.Policies == nil {
		cfg.Policies = money.DefaultPolicies()
	}
	if cfg.ChallengeReason == "" {
		cfg.ChallengeReason = "Confirm transfer"
	}
	return &Workflow{
		cfg:       cfg,
		resolver:  res,
		submitter: sub,
		session:   sess,
		auth:      auth,
		req:       newRequest(),
		phase:     PhaseEditing,
		pin:       NewPINBuffer(DefaultPINLength),
	}
}

// Field mutators. Only legal while editing; every edit clears the attached
// failure, and identifier edits invalidate the resolved recipient.

func (w *Workflow) SetMode(m Mode) error {
	return w.edit(func() { w.req.setMode(m) })
}

func (w *Workflow) SetAmount(s string) error {
	return w.edit(func() { w.req.setAmount(s) })
}

func (w *Workflow) SetCurrency(c money.Currency) error {
	if !c.Valid() {
		return ErrUnsupportedCurrency
	}
	return w.edit(func() { w.req.currency = c })
}

func (w *Workflow) SetNote(note string) error {
	return w.edit(func() { w.req.setNote(note) })
}

func (w *Workflow) SetTag(tag string) error {
	return w.edit(func() { w.req.setTag(tag) })
}

func (w *Workflow) SetBank(name, code string) error {
	return w.edit(func() { w.req.setBank(name, code) })
}

func (w *Workflow) SetAccountNumber(account string) error {
	return w.edit(func() { w.req.setAccountNumber(account) })
}

func (w *Workflow) edit(apply func()) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.inFlight {
		return ErrBusy
	}
	if w.phase != PhaseEditing {
		return ErrInvalidPhase
	}
	apply()
	w.failure = nil
	return nil
}

// Preview validates the request locally, resolves the recipient and, on
// success, leaves the workflow awaiting a confirmation method. Validation
// failures keep the phase at Editing and attach a field-level failure; no
// network call is made. A recipient still validated from a previous
// round-trip (no identifier edits since) is reused without a new call.
func (w *Workflow) Preview(ctx context.Context) error {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.phase != PhaseEditing {
		w.mu.Unlock()
		return ErrInvalidPhase
	}

	snap, hasSnap := w.session.Snapshot()
	if f := w.req.validate(w.cfg.Policies, snap, hasSnap); f != nil {
		w.failure = f
		w.mu.Unlock()
		return f
	}
	if w.req.recipient.Validated {
		w.failure = nil
		w.phase = PhaseAwaitingMethod
		w.mu.Unlock()
		return nil
	}

	w.phase = PhaseResolving
	w.inFlight = true
	attempt := w.attempt
	mode := w.req.mode
	tag := w.req.tag
	fiat := w.req.fiat
	note := w.req.note
	w.mu.Unlock()

	var (
		desc models.RecipientDescriptor
		err  error
	)
	switch mode {
	case ModeTag:
		desc, err = w.resolver.ResolveTag(ctx, tag.Tag)
	case ModeFiat:
		desc, err = w.resolver.ResolveBankAccount(ctx, fiat.BankCode, fiat.AccountNumber, note)
	default:
		// validate blocks crypto before this point
		err = &Failure{Kind: FailureValidation, Field: "mode", Message: "Crypto transfers are not available yet"}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	if attempt != w.attempt {
		// Cancelled while resolving; drop the late result.
		return nil
	}
	if err != nil {
		w.phase = PhaseEditing
		w.failure = classify(err)
		return w.failure
	}
	w.req.recipient = desc
	w.failure = nil
	w.phase = PhaseAwaitingMethod
	return nil
}

// SelectMethod picks the confirmation method. PIN opens secret entry. The
// biometric methods run the challenge immediately: a match submits using
// the cached payment PIN, a non-match or cancellation returns to method
// selection with a retry affordance.
func (w *Workflow) SelectMethod(ctx context.Context, m ConfirmationMethod) error {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.phase != PhaseAwaitingMethod {
		w.mu.Unlock()
		return ErrInvalidPhase
	}

	switch m {
	case MethodPIN:
		w.method = m
		w.pin.Clear()
		w.failure = nil
		w.phase = PhaseAwaitingSecret
		w.mu.Unlock()
		return nil

	case MethodFingerprint, MethodPalmprint:
		w.method = m
		w.failure = nil
		w.phase = PhaseAwaitingSecret
		w.inFlight = true
		attempt := w.attempt
		w.mu.Unlock()

		result, err := w.auth.Challenge(ctx, w.cfg.ChallengeReason)

		w.mu.Lock()
		w.inFlight = false
		if attempt != w.attempt {
			w.mu.Unlock()
			return nil
		}
		if err != nil {
			log.Printf("biometric challenge: %v", err)
			result = biometric.SensorUnavailable
		}
		switch result {
		case biometric.Matched:
			pin, ok := w.session.PaymentPIN()
			if !ok {
				w.phase = PhaseAwaitingMethod
				w.failure = &Failure{Kind: FailureValidation, Message: "No payment PIN on this device, confirm with PIN instead"}
				f := w.failure
				w.mu.Unlock()
				return f
			}
			w.mu.Unlock()
			return w.submit(ctx, pin)
		case biometric.NotMatched, biometric.Cancelled:
			w.phase = PhaseAwaitingMethod
			w.failure = &Failure{Kind: FailureValidation, Message: "Biometric not recognized, try again"}
		default:
			w.phase = PhaseAwaitingMethod
			w.failure = &Failure{Kind: FailureValidation, Message: "Biometric sensor unavailable, use your PIN"}
		}
		f := w.failure
		w.mu.Unlock()
		return f

	default:
		w.mu.Unlock()
		return ErrUnknownMethod
	}
}

// AppendDigit adds a digit to the PIN buffer. A no-op outside PIN entry or
// once the buffer is full, matching keypad behavior.
func (w *Workflow) AppendDigit(d byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseAwaitingSecret && w.method == MethodPIN && !w.inFlight {
		w.pin.Append(d)
	}
}

// Backspace removes the last PIN digit. No-op when empty.
func (w *Workflow) Backspace() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseAwaitingSecret && w.method == MethodPIN && !w.inFlight {
		w.pin.Backspace()
	}
}

// Confirm submits the transfer with the entered PIN. An incomplete buffer
// is a validation failure; the submission itself happens at most once per
// confirmation.
func (w *Workflow) Confirm(ctx context.Context) error {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.phase != PhaseAwaitingSecret || w.method != MethodPIN {
		w.mu.Unlock()
		return ErrInvalidPhase
	}
	if !w.pin.Full() {
		w.failure = &Failure{Kind: FailureValidation, Field: "pin", Message: "Please enter a 4-digit PIN"}
		f := w.failure
		w.mu.Unlock()
		return f
	}
	secret := w.pin.String()
	w.mu.Unlock()
	return w.submit(ctx, secret)
}

// submit performs the final network submission. On success the session
// snapshot is refreshed, the secret buffer cleared and the receipt
// reference exposed. On failure the buffer is cleared and the workflow
// returns to AwaitingMethod so the user may retry without re-entering
// amount or recipient; no automatic retry ever happens.
func (w *Workflow) submit(ctx context.Context, secret string) error {
	w.mu.Lock()
	if w.inFlight {
		w.mu.Unlock()
		return ErrBusy
	}
	if w.phase != PhaseAwaitingSecret {
		w.mu.Unlock()
		return ErrInvalidPhase
	}
	w.phase = PhaseSubmitting
	w.inFlight = true
	attempt := w.attempt
	mode := w.req.mode
	amount, _ := money.Parse(w.req.amount)
	note := w.req.note
	handle := w.req.recipient.Handle
	w.mu.Unlock()

	var (
		reference string
		sender    *models.User
		err       error
	)
	switch mode {
	case ModeTag:
		var res models.TagTransferResult
		res, err = w.submitter.SubmitTagTransfer(ctx, models.TagTransferRequest{
			RecipientTag: handle,
			Amount:       amount,
			Reason:       note,
			PaymentPin:   secret,
		})
		if err == nil {
			reference = res.InternalRef
			sender = &res.Sender
		}
	case ModeFiat:
		var res models.BankTransferResult
		res, err = w.submitter.SubmitBankTransfer(ctx, models.BankTransferRequest{
			Amount:        amount,
			RecipientCode: handle,
			Reason:        note,
			PaymentPin:    secret,
		})
		if err == nil {
			reference = res.Reference
		}
	default:
		err = &Failure{Kind: FailureValidation, Field: "mode", Message: "Crypto transfers are not available yet"}
	}

	// Bank rails return only a reference. Ask the server for the post-debit
	// snapshot while unlocked so fees do not drift the cache; a failed
	// refresh falls back to a local adjustment below.
	var refreshed *models.AccountSnapshot
	if err == nil && sender == nil && w.cfg.Refresher != nil {
		if snap, rerr := w.cfg.Refresher.Refresh(ctx); rerr == nil {
			refreshed = &snap
		} else {
			log.Printf("post-transfer snapshot refresh: %v", rerr)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.inFlight = false
	w.pin.Clear()
	if attempt != w.attempt {
		return nil
	}
	if err != nil {
		w.phase = PhaseAwaitingMethod
		w.failure = classify(err)
		return w.failure
	}

	if sender != nil {
		w.refreshSnapshot(sender.Account)
	} else if refreshed != nil {
		w.refreshSnapshot(*refreshed)
	} else if snap, ok := w.session.Snapshot(); ok {
		snap.NGBalance -= amount
		w.refreshSnapshot(snap)
	}
	w.receipt = &Receipt{Reference: reference}
	w.failure = nil
	w.phase = PhaseSucceeded
	return nil
}

func (w *Workflow) refreshSnapshot(snap models.AccountSnapshot) {
	if err := w.session.SetSnapshot(snap); err != nil {
		log.Printf("session snapshot refresh: %v", err)
	}
}

// Cancel dismisses the current surface: in-progress secret input is
// discarded, any in-flight response will be dropped on arrival, and the
// workflow returns to Editing with amount, note and recipient fields
// preserved. Cancel after success is a no-op.
func (w *Workflow) Cancel() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.phase == PhaseSucceeded {
		return
	}
	w.attempt++
	w.pin.Clear()
	w.method = MethodNone
	w.failure = nil
	w.phase = PhaseEditing
}

// Read-only accessors for the presentation layer.

func (w *Workflow) Phase() Phase {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.phase
}

func (w *Workflow) Method() ConfirmationMethod {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.method
}

// LastFailure returns the failure attached to the last transition, nil
// when the last operation succeeded.
func (w *Workflow) LastFailure() *Failure {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.failure
}

// Receipt returns the submitted transaction's receipt once succeeded.
func (w *Workflow) Receipt() (Receipt, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.receipt == nil {
		return Receipt{}, false
	}
	return *w.receipt, true
}

// Recipient returns the current recipient descriptor.
func (w *Workflow) Recipient() models.RecipientDescriptor {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.req.recipient
}

// Amount returns the normalized amount string.
func (w *Workflow) Amount() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.req.amount
}

// Note returns the transfer memo.
func (w *Workflow) Note() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.req.note
}

// PINLen returns the number of filled PIN slots, for masked rendering.
func (w *Workflow) PINLen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.pin.Len()
}

// Summary renders the preview: symbol-prefixed formatted amount, resolved
// recipient name and the note.
func (w *Workflow) Summary() Summary {
	w.mu.Lock()
	defer w.mu.Unlock()
	policy := w.cfg.Policies[w.req.currency]
	return Summary{
		Amount:    policy.Symbol + money.Format(w.req.amount),
		Recipient: w.req.recipient.DisplayName,
		Note:      w.req.note,
	}
}

// classify maps an operation error onto the failure taxonomy.
func classify(err error) *Failure {
	var f *Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, netcheck.ErrOffline) {
		return &Failure{Kind: FailureConnectivity, Message: "No internet connection"}
	}
	if errors.Is(err, api.ErrUnauthorized) {
		return &Failure{Kind: FailureAuthorization, Message: "Session expired, please sign in again"}
	}
	var resErr *resolver.ResolutionError
	if errors.As(err, &resErr) {
		return &Failure{Kind: FailureResolution, Field: resErr.Field, Message: resErr.Message}
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = "Something went wrong, please try again."
		}
		return &Failure{Kind: FailureSubmission, Message: msg}
	}
	return &Failure{Kind: FailureSubmission, Message: "Something went wrong, please try again."}
}
