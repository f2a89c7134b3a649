package transfer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagpay/internal/api"
	"tagpay/internal/biometric"
	"tagpay/internal/models"
	"tagpay/internal/netcheck"
	"tagpay/internal/resolver"
	"tagpay/internal/session"
)

type fakeResolver struct {
	tagCalls  int
	bankCalls int
	desc      models.RecipientDescriptor
	err       error
}

func (f *fakeResolver) ResolveTag(ctx context.Context, tag string) (models.RecipientDescriptor, error) {
	f.tagCalls++
	if f.err != nil {
		return models.RecipientDescriptor{}, f.err
	}
	return f.desc, nil
}

func (f *fakeResolver) ResolveBankAccount(ctx context.Context, bankCode, accountNumber, memo string) (models.RecipientDescriptor, error) {
	f.bankCalls++
	if f.err != nil {
		return models.RecipientDescriptor{}, f.err
	}
	return f.desc, nil
}

type fakeSubmitter struct {
	tagReqs  []models.TagTransferRequest
	bankReqs []models.BankTransferRequest
	tagRes   models.TagTransferResult
	bankRes  models.BankTransferResult
	err      error
}

func (f *fakeSubmitter) SubmitTagTransfer(ctx context.Context, req models.TagTransferRequest) (models.TagTransferResult, error) {
	f.tagReqs = append(f.tagReqs, req)
	if f.err != nil {
		return models.TagTransferResult{}, f.err
	}
	return f.tagRes, nil
}

func (f *fakeSubmitter) SubmitBankTransfer(ctx context.Context, req models.BankTransferRequest) (models.BankTransferResult, error) {
	f.bankReqs = append(f.bankReqs, req)
	if f.err != nil {
		return models.BankTransferResult{}, f.err
	}
	return f.bankRes, nil
}

func newTestSession(balance float64) *session.MemoryStore {
	sess := session.NewMemoryStore()
	_ = sess.SetSnapshot(models.AccountSnapshot{Tagname: "me", NGBalance: balance})
	return sess
}

func enterPIN(w *Workflow, pin string) {
	for i := 0; i < len(pin); i++ {
		w.AppendDigit(pin[i])
	}
}

func TestWorkflowTagTransferHappyPath(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{DisplayName: "Ada Okafor", Handle: "ada", Validated: true}}
	sub := &fakeSubmitter{tagRes: models.TagTransferResult{
		Sender:      models.User{Account: models.AccountSnapshot{Tagname: "me", NGBalance: 9000}},
		InternalRef: "ref-123",
	}}
	sess := newTestSession(10_000)
	w := New(res, sub, sess, nil, Config{})

	require.NoError(t, w.SetMode(ModeTag))
	require.NoError(t, w.SetTag("ada"))
	require.NoError(t, w.SetAmount("₦1,000"))
	require.NoError(t, w.SetNote("lunch"))

	require.NoError(t, w.Preview(context.Background()))
	assert.Equal(t, PhaseAwaitingMethod, w.Phase())
	assert.Equal(t, 1, res.tagCalls)

	summary := w.Summary()
	assert.Equal(t, "₦1,000.00", summary.Amount)
	assert.Equal(t, "Ada Okafor", summary.Recipient)
	assert.Equal(t, "lunch", summary.Note)

	require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
	assert.Equal(t, PhaseAwaitingSecret, w.Phase())

	enterPIN(w, "1234")
	assert.Equal(t, 4, w.PINLen())

	require.NoError(t, w.Confirm(context.Background()))
	assert.Equal(t, PhaseSucceeded, w.Phase())

	receipt, ok := w.Receipt()
	require.True(t, ok)
	assert.Equal(t, "ref-123", receipt.Reference)

	require.Len(t, sub.tagReqs, 1)
	assert.Equal(t, "ada", sub.tagReqs[0].RecipientTag)
	assert.Equal(t, float64(1000), sub.tagReqs[0].Amount)
	assert.Equal(t, "1234", sub.tagReqs[0].PaymentPin)

	// snapshot refreshed from the submission response
	snap, ok := sess.Snapshot()
	require.True(t, ok)
	assert.Equal(t, float64(9000), snap.NGBalance)
}

func TestWorkflowBankTransferAdjustsBalance(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{DisplayName: "ADA OKAFOR", Handle: "RCP_1", Validated: true}}
	sub := &fakeSubmitter{bankRes: models.BankTransferResult{Reference: "BNK_9"}}
	sess := newTestSession(5_000)
	w := New(res, sub, sess, nil, Config{})

	require.NoError(t, w.SetMode(ModeFiat))
	require.NoError(t, w.SetBank("Guaranty Trust Bank", "058"))
	require.NoError(t, w.SetAccountNumber("0123456789"))
	require.NoError(t, w.SetAmount("2000"))

	require.NoError(t, w.Preview(context.Background()))
	assert.Equal(t, 1, res.bankCalls)

	require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
	enterPIN(w, "1234")
	require.NoError(t, w.Confirm(context.Background()))

	require.Len(t, sub.bankReqs, 1)
	assert.Equal(t, "RCP_1", sub.bankReqs[0].RecipientCode)

	// bank rails return only a reference, the cached balance is decremented
	snap, _ := sess.Snapshot()
	assert.Equal(t, float64(3000), snap.NGBalance)
}

type fakeRefresher struct {
	calls int
	snap  models.AccountSnapshot
	err   error
}

func (f *fakeRefresher) Refresh(ctx context.Context) (models.AccountSnapshot, error) {
	f.calls++
	if f.err != nil {
		return models.AccountSnapshot{}, f.err
	}
	return f.snap, nil
}

func TestWorkflowBankTransferRefreshesFromServer(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{Handle: "RCP_1", Validated: true}}
	sub := &fakeSubmitter{bankRes: models.BankTransferResult{Reference: "BNK_1"}}
	// server charged a ₦50 fee on top of the 2000
	refresher := &fakeRefresher{snap: models.AccountSnapshot{Tagname: "me", NGBalance: 2950}}
	sess := newTestSession(5_000)
	w := New(res, sub, sess, nil, Config{Refresher: refresher})

	_ = w.SetMode(ModeFiat)
	_ = w.SetBank("Access Bank", "044")
	_ = w.SetAccountNumber("0123456789")
	_ = w.SetAmount("2000")

	require.NoError(t, w.Preview(context.Background()))
	require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
	enterPIN(w, "1234")
	require.NoError(t, w.Confirm(context.Background()))

	assert.Equal(t, 1, refresher.calls)
	snap, _ := sess.Snapshot()
	assert.Equal(t, float64(2950), snap.NGBalance)
}

func TestWorkflowBankTransferRefreshFailureFallsBack(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{Handle: "RCP_1", Validated: true}}
	sub := &fakeSubmitter{bankRes: models.BankTransferResult{Reference: "BNK_1"}}
	refresher := &fakeRefresher{err: fmt.Errorf("%w: timeout", netcheck.ErrOffline)}
	sess := newTestSession(5_000)
	w := New(res, sub, sess, nil, Config{Refresher: refresher})

	_ = w.SetMode(ModeFiat)
	_ = w.SetBank("Access Bank", "044")
	_ = w.SetAccountNumber("0123456789")
	_ = w.SetAmount("2000")

	require.NoError(t, w.Preview(context.Background()))
	require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
	enterPIN(w, "1234")

	// the transfer itself succeeded; a failed refresh only degrades the
	// cache to a local adjustment
	require.NoError(t, w.Confirm(context.Background()))
	assert.Equal(t, PhaseSucceeded, w.Phase())
	snap, _ := sess.Snapshot()
	assert.Equal(t, float64(3000), snap.NGBalance)
}

func TestWorkflowTagTransferSkipsRefresher(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{Handle: "ada", Validated: true}}
	sub := &fakeSubmitter{tagRes: models.TagTransferResult{
		Sender:      models.User{Account: models.AccountSnapshot{NGBalance: 9500}},
		InternalRef: "ref-1",
	}}
	refresher := &fakeRefresher{}
	w := New(res, sub, newTestSession(10_000), nil, Config{Refresher: refresher})

	_ = w.SetMode(ModeTag)
	_ = w.SetTag("ada")
	_ = w.SetAmount("500")

	require.NoError(t, w.Preview(context.Background()))
	require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
	enterPIN(w, "1234")
	require.NoError(t, w.Confirm(context.Background()))

	// tag responses already carry the refreshed sender profile
	assert.Zero(t, refresher.calls)
}

func TestWorkflowValidationFailures(t *testing.T) {
	tests := []struct {
		name      string
		balance   float64
		setup     func(w *Workflow)
		wantField string
		wantMsg   string
	}{
		{
			name:    "unparseable amount",
			balance: 10_000,
			setup: func(w *Workflow) {
				_ = w.SetMode(ModeTag)
				_ = w.SetTag("ada")
				_ = w.SetAmount("abc")
			},
			wantField: "amount",
			wantMsg:   "Enter a valid amount",
		},
		{
			name:    "below minimum",
			balance: 10_000,
			setup: func(w *Workflow) {
				_ = w.SetMode(ModeTag)
				_ = w.SetTag("ada")
				_ = w.SetAmount("10")
			},
			wantField: "amount",
			wantMsg:   "Minimum transfer is ₦50",
		},
		{
			name:    "insufficient balance",
			balance: 100,
			setup: func(w *Workflow) {
				_ = w.SetMode(ModeTag)
				_ = w.SetTag("ada")
				_ = w.SetAmount("5000")
			},
			wantField: "amount",
			wantMsg:   "Insufficient fund, please top-up!",
		},
		{
			name:    "malformed tag",
			balance: 10_000,
			setup: func(w *Workflow) {
				_ = w.SetMode(ModeTag)
				_ = w.SetTag("9x")
				_ = w.SetAmount("500")
			},
			wantField: "tag",
			wantMsg:   "Please enter a valid tagname",
		},
		{
			name:    "missing bank",
			balance: 10_000,
			setup: func(w *Workflow) {
				_ = w.SetMode(ModeFiat)
				_ = w.SetAccountNumber("0123456789")
				_ = w.SetAmount("500")
			},
			wantField: "bank",
			wantMsg:   "Please select a bank",
		},
		{
			name:    "short account number",
			balance: 10_000,
			setup: func(w *Workflow) {
				_ = w.SetMode(ModeFiat)
				_ = w.SetBank("Access Bank", "044")
				_ = w.SetAccountNumber("12345")
				_ = w.SetAmount("500")
			},
			wantField: "account",
			wantMsg:   "Account number must be 10 digits",
		},
		{
			name:    "crypto unavailable",
			balance: 10_000,
			setup: func(w *Workflow) {
				_ = w.SetAmount("500")
			},
			wantField: "mode",
			wantMsg:   "Crypto transfers are not available yet",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &fakeResolver{}
			w := New(res, &fakeSubmitter{}, newTestSession(tt.balance), nil, Config{})
			tt.setup(w)

			err := w.Preview(context.Background())
			require.Error(t, err)

			f := w.LastFailure()
			require.NotNil(t, f)
			assert.Equal(t, FailureValidation, f.Kind)
			assert.Equal(t, tt.wantField, f.Field)
			assert.Equal(t, tt.wantMsg, f.Message)

			// validation failures never reach the network
			assert.Equal(t, PhaseEditing, w.Phase())
			assert.Zero(t, res.tagCalls)
			assert.Zero(t, res.bankCalls)
		})
	}
}

func TestWorkflowMissingSnapshotBlocksPreview(t *testing.T) {
	res := &fakeResolver{}
	w := New(res, &fakeSubmitter{}, session.NewMemoryStore(), nil, Config{})
	_ = w.SetMode(ModeTag)
	_ = w.SetTag("ada")
	_ = w.SetAmount("500")

	err := w.Preview(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Account balance unavailable, please refresh", w.LastFailure().Message)
	assert.Zero(t, res.tagCalls)
}

func TestWorkflowOfflinePreview(t *testing.T) {
	res := &fakeResolver{err: fmt.Errorf("%w: dial tcp: no route", netcheck.ErrOffline)}
	w := New(res, &fakeSubmitter{}, newTestSession(10_000), nil, Config{})
	_ = w.SetMode(ModeTag)
	_ = w.SetTag("ada")
	_ = w.SetAmount("500")

	err := w.Preview(context.Background())
	require.Error(t, err)

	f := w.LastFailure()
	require.NotNil(t, f)
	assert.Equal(t, FailureConnectivity, f.Kind)
	assert.Equal(t, "No internet connection", f.Message)
	assert.Equal(t, PhaseEditing, w.Phase())
}

func TestWorkflowResolutionFailureReturnsToEditing(t *testing.T) {
	res := &fakeResolver{err: &resolver.ResolutionError{Field: "tag", Message: "No account with this tagname"}}
	w := New(res, &fakeSubmitter{}, newTestSession(10_000), nil, Config{})
	_ = w.SetMode(ModeTag)
	_ = w.SetTag("nosuch")
	_ = w.SetAmount("500")

	err := w.Preview(context.Background())
	require.Error(t, err)
	assert.Equal(t, PhaseEditing, w.Phase())
	f := w.LastFailure()
	require.NotNil(t, f)
	assert.Equal(t, FailureResolution, f.Kind)
	assert.Equal(t, "tag", f.Field)

	// the amount and tag survive for correction
	assert.Equal(t, "500", w.Amount())
}

func TestWorkflowSubmitFailureRetainsRequest(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{DisplayName: "Ada", Handle: "ada", Validated: true}}
	sub := &fakeSubmitter{err: fmt.Errorf("%w: connection reset", netcheck.ErrOffline)}
	w := New(res, sub, newTestSession(10_000), nil, Config{})
	_ = w.SetMode(ModeTag)
	_ = w.SetTag("ada")
	_ = w.SetAmount("500")

	require.NoError(t, w.Preview(context.Background()))
	require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
	enterPIN(w, "1234")

	err := w.Confirm(context.Background())
	require.Error(t, err)

	f := w.LastFailure()
	require.NotNil(t, f)
	assert.Equal(t, FailureConnectivity, f.Kind)

	// back to method selection with the secret cleared and fields intact
	assert.Equal(t, PhaseAwaitingMethod, w.Phase())
	assert.Equal(t, 0, w.PINLen())
	assert.Equal(t, "500", w.Amount())
	assert.True(t, w.Recipient().Validated)

	// retry succeeds without re-resolving
	sub.err = nil
	sub.tagRes = models.TagTransferResult{InternalRef: "ref-2", Sender: models.User{Account: models.AccountSnapshot{NGBalance: 9500}}}
	require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
	enterPIN(w, "1234")
	require.NoError(t, w.Confirm(context.Background()))
	assert.Equal(t, PhaseSucceeded, w.Phase())
	assert.Equal(t, 1, res.tagCalls)
	assert.Len(t, sub.tagReqs, 2)
}

func TestWorkflowUnauthorizedSubmit(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{Handle: "ada", Validated: true}}
	sub := &fakeSubmitter{err: fmt.Errorf("%w: token expired", api.ErrUnauthorized)}
	w := New(res, sub, newTestSession(10_000), nil, Config{})
	_ = w.SetMode(ModeTag)
	_ = w.SetTag("ada")
	_ = w.SetAmount("500")

	require.NoError(t, w.Preview(context.Background()))
	require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
	enterPIN(w, "1234")

	err := w.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, FailureAuthorization, w.LastFailure().Kind)
}

func TestWorkflowIncompletePIN(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{Handle: "ada", Validated: true}}
	sub := &fakeSubmitter{tagRes: models.TagTransferResult{InternalRef: "ref-ok"}}
	w := New(res, sub, newTestSession(10_000), nil, Config{})
	_ = w.SetMode(ModeTag)
	_ = w.SetTag("ada")
	_ = w.SetAmount("500")

	require.NoError(t, w.Preview(context.Background()))
	require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
	enterPIN(w, "12")

	err := w.Confirm(context.Background())
	require.Error(t, err)
	assert.Equal(t, "pin", w.LastFailure().Field)
	assert.Empty(t, sub.tagReqs)
	assert.Equal(t, PhaseAwaitingSecret, w.Phase())

	// secret entry is still open: re-selecting the method is illegal, but
	// finishing the entry in place succeeds
	assert.ErrorIs(t, w.SelectMethod(context.Background(), MethodPIN), ErrInvalidPhase)
	for w.PINLen() > 0 {
		w.Backspace()
	}
	enterPIN(w, "1234")
	require.NoError(t, w.Confirm(context.Background()))
	assert.Equal(t, PhaseSucceeded, w.Phase())
	assert.Len(t, sub.tagReqs, 1)
}

func TestWorkflowEditInvalidatesRecipient(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{DisplayName: "Ada", Handle: "ada", Validated: true}}
	w := New(res, &fakeSubmitter{}, newTestSession(10_000), nil, Config{})
	_ = w.SetMode(ModeTag)
	_ = w.SetTag("ada")
	_ = w.SetAmount("500")

	require.NoError(t, w.Preview(context.Background()))
	w.Cancel()

	// unchanged identifier: the validated recipient is reused, no new call
	require.NoError(t, w.Preview(context.Background()))
	assert.Equal(t, 1, res.tagCalls)
	w.Cancel()

	// editing the tag resets validation, the next preview resolves again
	require.NoError(t, w.SetTag("bella"))
	assert.False(t, w.Recipient().Validated)
	require.NoError(t, w.Preview(context.Background()))
	assert.Equal(t, 2, res.tagCalls)
}

func TestWorkflowNoteEditKeepsRecipient(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{Handle: "ada", Validated: true}}
	w := New(res, &fakeSubmitter{}, newTestSession(10_000), nil, Config{})
	_ = w.SetMode(ModeTag)
	_ = w.SetTag("ada")
	_ = w.SetAmount("500")

	require.NoError(t, w.Preview(context.Background()))
	w.Cancel()

	_ = w.SetNote("rent")
	_ = w.SetAmount("600")
	require.NoError(t, w.Preview(context.Background()))
	assert.Equal(t, 1, res.tagCalls)
}

func TestWorkflowPhaseGuards(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{Handle: "ada", Validated: true}}
	w := New(res, &fakeSubmitter{tagRes: models.TagTransferResult{InternalRef: "r"}}, newTestSession(10_000), nil, Config{})
	_ = w.SetMode(ModeTag)
	_ = w.SetTag("ada")
	_ = w.SetAmount("500")

	// no method chosen yet
	assert.ErrorIs(t, w.Confirm(context.Background()), ErrInvalidPhase)
	assert.ErrorIs(t, w.SelectMethod(context.Background(), MethodPIN), ErrInvalidPhase)

	require.NoError(t, w.Preview(context.Background()))

	// edits are rejected outside Editing
	assert.ErrorIs(t, w.SetAmount("900"), ErrInvalidPhase)
	assert.Equal(t, "500", w.Amount())

	assert.ErrorIs(t, w.SelectMethod(context.Background(), ConfirmationMethod(99)), ErrUnknownMethod)

	require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
	enterPIN(w, "1234")
	require.NoError(t, w.Confirm(context.Background()))

	// terminal: cancel is a no-op after success
	w.Cancel()
	assert.Equal(t, PhaseSucceeded, w.Phase())
}

func TestWorkflowDigitsIgnoredOutsidePINEntry(t *testing.T) {
	res := &fakeResolver{desc: models.RecipientDescriptor{Handle: "ada", Validated: true}}
	w := New(res, &fakeSubmitter{}, newTestSession(10_000), nil, Config{})

	w.AppendDigit('1')
	w.Backspace()
	assert.Equal(t, 0, w.PINLen())
}

func TestWorkflowBiometric(t *testing.T) {
	newWF := func(auth biometric.Authenticator, cachePIN bool) (*Workflow, *fakeSubmitter) {
		res := &fakeResolver{desc: models.RecipientDescriptor{Handle: "ada", Validated: true}}
		sub := &fakeSubmitter{tagRes: models.TagTransferResult{InternalRef: "bio-ref"}}
		sess := newTestSession(10_000)
		if cachePIN {
			_ = sess.SetPaymentPIN("4321")
		}
		w := New(res, sub, sess, auth, Config{})
		_ = w.SetMode(ModeTag)
		_ = w.SetTag("ada")
		_ = w.SetAmount("500")
		if err := w.Preview(context.Background()); err != nil {
			t.Fatalf("preview: %v", err)
		}
		return w, sub
	}

	t.Run("match submits with cached pin", func(t *testing.T) {
		w, sub := newWF(&biometric.Scripted{Results: []biometric.Result{biometric.Matched}}, true)
		require.NoError(t, w.SelectMethod(context.Background(), MethodFingerprint))
		assert.Equal(t, PhaseSucceeded, w.Phase())
		require.Len(t, sub.tagReqs, 1)
		assert.Equal(t, "4321", sub.tagReqs[0].PaymentPin)
	})

	t.Run("match without cached pin falls back", func(t *testing.T) {
		w, sub := newWF(&biometric.Scripted{Results: []biometric.Result{biometric.Matched}}, false)
		err := w.SelectMethod(context.Background(), MethodFingerprint)
		require.Error(t, err)
		assert.Equal(t, PhaseAwaitingMethod, w.Phase())
		assert.Empty(t, sub.tagReqs)
	})

	t.Run("no match allows retry", func(t *testing.T) {
		w, sub := newWF(&biometric.Scripted{Results: []biometric.Result{biometric.NotMatched, biometric.Matched}}, true)
		err := w.SelectMethod(context.Background(), MethodPalmprint)
		require.Error(t, err)
		assert.Equal(t, PhaseAwaitingMethod, w.Phase())

		require.NoError(t, w.SelectMethod(context.Background(), MethodPalmprint))
		assert.Equal(t, PhaseSucceeded, w.Phase())
		assert.Len(t, sub.tagReqs, 1)
	})

	t.Run("sensor unavailable", func(t *testing.T) {
		w, sub := newWF(biometric.Unavailable{}, true)
		err := w.SelectMethod(context.Background(), MethodFingerprint)
		require.Error(t, err)
		assert.Equal(t, PhaseAwaitingMethod, w.Phase())
		assert.Empty(t, sub.tagReqs)

		// PIN entry still works after the sensor failure
		require.NoError(t, w.SelectMethod(context.Background(), MethodPIN))
		enterPIN(w, "1234")
		require.NoError(t, w.Confirm(context.Background()))
	})
}

func TestWorkflowUnsupportedCurrency(t *testing.T) {
	w := New(&fakeResolver{}, &fakeSubmitter{}, newTestSession(0), nil, Config{})
	assert.ErrorIs(t, w.SetCurrency("EUR"), ErrUnsupportedCurrency)
}
