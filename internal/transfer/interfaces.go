package transfer

import (
	"context"

	"tagpay/internal/models"
)

// Resolver resolves recipient identifiers. Implemented by
// resolver.Resolver; faked in tests.
type Resolver interface {
	ResolveTag(ctx context.Context, tag string) (models.RecipientDescriptor, error)
	ResolveBankAccount(ctx context.Context, bankCode, accountNumber, memo string) (models.RecipientDescriptor, error)
}

// Submitter performs the final transfer submission.
type Submitter interface {
	SubmitTagTransfer(ctx context.Context, req models.TagTransferRequest) (models.TagTransferResult, error)
	SubmitBankTransfer(ctx context.Context, req models.BankTransferRequest) (models.BankTransferResult, error)
}

// SnapshotRefresher re-fetches the authoritative account snapshot after a
// submission whose response carries no profile payload. Optional; without
// one the workflow adjusts the cached balance locally.
type SnapshotRefresher interface {
	Refresh(ctx context.Context) (models.AccountSnapshot, error)
}

// SessionAccessor is the narrow session surface the workflow depends on:
// it reads the cached balance and PIN and writes back refreshed snapshots.
// Token issuance and revocation are none of its business.
type SessionAccessor interface {
	Snapshot() (models.AccountSnapshot, bool)
	SetSnapshot(models.AccountSnapshot) error
	PaymentPIN() (pin string, ok bool)
}
