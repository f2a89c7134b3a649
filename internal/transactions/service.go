// Package transactions lists and reports the user's transaction history.
package transactions

import (
	"context"
	"net/url"

	"tagpay/internal/api"
	"tagpay/internal/models"
)

// Service wraps the transaction endpoints.
type Service struct {
	client api.Doer
}

// NewService creates a transactions Service.
func NewService(client api.Doer) *Service {
	if client == nil {
		panic("api client is required")
	}
	return &Service{client: client}
}

// List returns the authenticated user's transaction history, newest first.
func (s *Service) List(ctx context.Context) ([]models.Transaction, error) {
	var resp models.TransactionListResponse
	if err := s.client.Get(ctx, "/accounts/transactions/me", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Detail fetches one tag-transfer transaction by its internal reference.
func (s *Service) Detail(ctx context.Context, internalRef string) (models.Transaction, error) {
	var resp models.TransactionDetailResponse
	if err := s.client.Get(ctx, "/accounts/fiat/tag/transactions/"+url.PathEscape(internalRef), &resp); err != nil {
		return models.Transaction{}, err
	}
	return resp.Data, nil
}

// Report files a complaint against a transaction.
func (s *Service) Report(ctx context.Context, internalRef, comment string) error {
	body := models.ReportTransactionRequest{Comment: comment}
	return s.client.Post(ctx, "/accounts/transactions/"+url.PathEscape(internalRef), body, nil)
}
