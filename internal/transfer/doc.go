/*
Package transfer implements the transfer confirmation workflow: a single
transfer attempt driven from amount entry to a terminal outcome.

The workflow is an explicit state machine:

	Editing -> Resolving -> AwaitingMethod -> AwaitingSecret -> Submitting -> Succeeded

The preview surface and the confirmation-method picker are one surface, so
AwaitingMethod is entered directly once resolution succeeds. Failures are
never terminal: a failed resolution returns to Editing, a failed submission
returns to AwaitingMethod with the PIN buffer cleared, and the structured
failure is attached for display. The machine guarantees:

  - no network submission without passing validation and exactly one
    confirmed authorization method
  - at most one submission per confirmed secret; retries require the user
    to re-confirm
  - strictly sequential operations per instance (concurrent calls get
    ErrBusy)
  - responses arriving after Cancel are dropped (stale-response guard)

Usage:

	wf := transfer.New(resolver, submitter, store, authenticator, transfer.Config{})
	wf.SetMode(transfer.ModeTag)
	wf.SetAmount("50")
	wf.SetTag("johndoe")
	if err := wf.Preview(ctx); err != nil { ... }
	wf.SelectMethod(ctx, transfer.MethodPIN)
	for _, d := range "1234" { wf.AppendDigit(byte(d)) }
	if err := wf.Confirm(ctx); err != nil { ... }
	receipt, _ := wf.Receipt()

Collaborators (resolver, submitter, session access, biometrics) are
injected interfaces; the package never reaches for global state.
*/
package transfer
