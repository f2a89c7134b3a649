package transfer

import (
	"context"

	"tagpay/internal/api"
	"tagpay/internal/models"
)

// APISubmitter performs transfer submissions against the wallet API,
// normally through the connectivity gate.
type APISubmitter struct {
	client api.Doer
}

// NewAPISubmitter creates an APISubmitter.
func NewAPISubmitter(client api.Doer) *APISubmitter {
	if client == nil {
		panic("api client is required")
	}
	return &APISubmitter{client: client}
}

// SubmitTagTransfer submits a tag-to-tag transfer. A 201 returns the
// refreshed sender profile and the internal reference.
func (s *APISubmitter) SubmitTagTransfer(ctx context.Context, req models.TagTransferRequest) (models.TagTransferResult, error) {
	var resp models.TagTransferResponse
	if err := s.client.Post(ctx, "/accounts/fiat/tag-transfer", req, &resp); err != nil {
		return models.TagTransferResult{}, err
	}
	return resp.Data, nil
}

// SubmitBankTransfer submits a bank transfer via a previously registered
// recipient code.
func (s *APISubmitter) SubmitBankTransfer(ctx context.Context, req models.BankTransferRequest) (models.BankTransferResult, error) {
	var resp models.BankTransferResult
	if err := s.client.Post(ctx, "/accounts/fiat/bank/transfer", req, &resp); err != nil {
		return models.BankTransferResult{}, err
	}
	return resp, nil
}
