// Package resolver turns user-entered recipient identifiers (a tagname, or
// a bank code plus account number) into canonical recipient descriptors.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"tagpay/internal/api"
	"tagpay/internal/models"
)

// ResolutionError is a definitive "could not resolve" outcome: the server
// answered and the recipient does not exist or was rejected. Transport and
// authorization failures are returned as-is, not wrapped.
type ResolutionError struct {
	Field   string // "tag" or "account"
	Message string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("could not resolve %s: %s", e.Field, e.Message)
}

// Resolver issues recipient lookups through a (usually gated) api.Doer. It
// never mutates workflow state; it only returns results for the workflow to
// apply.
type Resolver struct {
	client api.Doer
}

// New creates a Resolver.
func New(client api.Doer) *Resolver {
	if client == nil {
		panic("api client is required")
	}
	return &Resolver{client: client}
}

// ResolveTag checks that a tagname exists and is payable. The returned
// handle is the tag itself, echoed back by the submission call.
func (r *Resolver) ResolveTag(ctx context.Context, tag string) (models.RecipientDescriptor, error) {
	var resp models.TagLookupResponse
	err := r.client.Get(ctx, "/accounts/tag/"+url.PathEscape(tag), &resp)
	if err != nil {
		return models.RecipientDescriptor{}, classify(err, "tag", "Could not resolve tagname")
	}
	display := resp.Data.DisplayName
	if display == "" {
		display = resp.Data.Tagname
	}
	if display == "" {
		display = tag
	}
	return models.RecipientDescriptor{
		DisplayName: display,
		Handle:      tag,
		Validated:   true,
	}, nil
}

// ResolveBankAccount registers a bank account as a transfer recipient and
// returns its opaque recipient code. The account number must already be
// exactly ten digits; the workflow enforces that before calling here. The
// handle is not stable across edits and must be re-requested whenever the
// bank code or account number changes.
func (r *Resolver) ResolveBankAccount(ctx context.Context, bankCode, accountNumber, memo string) (models.RecipientDescriptor, error) {
	req := models.BankRecipientRequest{
		BankCode:      bankCode,
		AccountNumber: accountNumber,
		Description:   memo,
	}
	var resp models.BankRecipientResponse
	if err := r.client.Post(ctx, "/accounts/fiat/bank/recipient", req, &resp); err != nil {
		return models.RecipientDescriptor{}, classify(err, "account", "Could not resolve account")
	}
	return models.RecipientDescriptor{
		DisplayName: resp.Recipient.Details.AccountName,
		Handle:      resp.Recipient.RecipientCode,
		Validated:   true,
	}, nil
}

// NetworkStatus fetches the informational success-rate percentage for a
// bank rail. It plays no part in validation or handle staleness.
func (r *Resolver) NetworkStatus(ctx context.Context, bankCode string) (float64, error) {
	var resp models.NetworkStatusResponse
	err := r.client.Get(ctx, "/accounts/fiat/bank/network-status?bank_code="+url.QueryEscape(bankCode), &resp)
	if err != nil {
		return 0, err
	}
	return resp.NetworkStatus, nil
}

// classify converts a server rejection into a ResolutionError with the
// server's message when available, passing offline and authorization
// failures through untouched.
func classify(err error, field, fallback string) error {
	if errors.Is(err, api.ErrUnauthorized) {
		return err
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		msg := apiErr.Message
		if msg == "" {
			msg = fallback
		}
		return &ResolutionError{Field: field, Message: msg}
	}
	return err
}
