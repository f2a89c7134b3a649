// Package session owns the client's persistent session state: the bearer
// access token, the returning-user flag, an optional cached payment PIN and
// the latest account snapshot. Token issuance and revocation happen in the
// auth flows; everything else only reads the token and writes back
// refreshed snapshots.
package session

import (
	"sync"

	"tagpay/internal/models"
)

// Store is the narrow session surface the rest of the client depends on.
// AccessToken doubles as the api.TokenSource implementation.
type Store interface {
	AccessToken() string
	SetAccessToken(token string) error
	ClearAccessToken() error

	IsReturningUser() bool
	SetReturningUser(v bool) error

	// PaymentPIN returns the cached payment PIN, if one was stored to back
	// biometric-confirmed transfers. ok is false when none is cached.
	PaymentPIN() (pin string, ok bool)
	SetPaymentPIN(pin string) error

	Snapshot() (models.AccountSnapshot, bool)
	SetSnapshot(models.AccountSnapshot) error
}

// MemoryStore is a process-local Store, used by tests and as the default
// when no persistence is configured.
type MemoryStore struct {
	mu          sync.RWMutex
	token       string
	returning   bool
	pin         string
	hasPIN      bool
	snapshot    models.AccountSnapshot
	hasSnapshot bool
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

func (s *MemoryStore) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) ClearAccessToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *MemoryStore) IsReturningUser() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.returning
}

func (s *MemoryStore) SetReturningUser(v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.returning = v
	return nil
}

func (s *MemoryStore) PaymentPIN() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pin, s.hasPIN
}

func (s *MemoryStore) SetPaymentPIN(pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pin = pin
	s.hasPIN = pin != ""
	return nil
}

func (s *MemoryStore) Snapshot() (models.AccountSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.hasSnapshot
}

func (s *MemoryStore) SetSnapshot(snap models.AccountSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
	s.hasSnapshot = true
	return nil
}
