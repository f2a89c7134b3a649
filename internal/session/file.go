package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"tagpay/internal/models"
)

// fileState is the on-disk layout. The payment PIN lives here only because
// a headless host has no platform keystore; the file is chmod 0600.
type fileState struct {
	DeviceID      string                  `json:"device_id,omitempty"`
	AccessToken   string                  `json:"access_token,omitempty"`
	ReturningUser bool                    `json:"returning_user,omitempty"`
	PaymentPIN    string                  `json:"payment_pin,omitempty"`
	Snapshot      *models.AccountSnapshot `json:"snapshot,omitempty"`
}

// FileStore persists the session as a JSON file, the CLI's stand-in for the
// mobile app's device storage.
type FileStore struct {
	mu    sync.Mutex
	path  string
	state fileState
}

// OpenFileStore loads (or initializes) the session file at path.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.state); err != nil {
		return nil, fmt.Errorf("parse session file: %w", err)
	}
	return s, nil
}

func (s *FileStore) save() error {
	raw, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session file: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create session dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	return nil
}

// DeviceID returns the persisted installation identity, minting and saving
// one on first use so the backend sees the same device across invocations.
func (s *FileStore) DeviceID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.DeviceID == "" {
		s.state.DeviceID = uuid.NewString()
		if err := s.save(); err != nil {
			return "", err
		}
	}
	return s.state.DeviceID, nil
}

func (s *FileStore) AccessToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.AccessToken
}

func (s *FileStore) SetAccessToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = token
	return s.save()
}

func (s *FileStore) ClearAccessToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.AccessToken = ""
	return s.save()
}

func (s *FileStore) IsReturningUser() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.ReturningUser
}

func (s *FileStore) SetReturningUser(v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.ReturningUser = v
	return s.save()
}

func (s *FileStore) PaymentPIN() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.PaymentPIN, s.state.PaymentPIN != ""
}

func (s *FileStore) SetPaymentPIN(pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PaymentPIN = pin
	return s.save()
}

func (s *FileStore) Snapshot() (models.AccountSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Snapshot == nil {
		return models.AccountSnapshot{}, false
	}
	return *s.state.Snapshot, true
}

func (s *FileStore) SetSnapshot(snap models.AccountSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Snapshot = &snap
	return s.save()
}
