// Package sandbox is a local stand-in for the remote wallet API, so the
// client can be exercised end to end without a deployed backend. State is
// in-memory on purpose: the sandbox is a zero-infrastructure dev target,
// not a database.
package sandbox

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"tagpay/internal/models"
)

var (
	ErrAccountExists      = errors.New("account already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotFound           = errors.New("not found")
	ErrTagTaken           = errors.New("tagname already taken")
	ErrWrongPin           = errors.New("incorrect payment pin")
	ErrNoPin              = errors.New("payment pin not set")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNotVerified        = errors.New("account not verified")
	ErrBadOTP             = errors.New("invalid or expired otp")
)

// Account is one sandbox wallet account.
type Account struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	PasswordHash []byte
	PinHash      []byte
	Tagname      string
	NGBalance    float64
	Verified     bool
	Transactions []models.Transaction
}

// User converts the account to its wire representation.
func (a *Account) User() models.User {
	return models.User{
		ID:    a.ID,
		Email: a.Email,
		Phone: a.Phone,
		Account: models.AccountSnapshot{
			Tagname:     a.Tagname,
			NGBalance:   a.NGBalance,
			CountryCode: "NG",
		},
	}
}

type bankRecipient struct {
	Code          string
	BankCode      string
	AccountNumber string
	AccountName   string
	OwnerID       string
}

// Store holds all sandbox state behind one lock. Volumes here are tiny, so
// a single mutex beats juggling per-entity locks.
type Store struct {
	mu         sync.Mutex
	byID       map[string]*Account
	byEmail    map[string]*Account
	byTag      map[string]*Account
	recipients map[string]bankRecipient
	otps       map[string]string // email -> pending otp
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{
		byID:       make(map[string]*Account),
		byEmail:    make(map[string]*Account),
		byTag:      make(map[string]*Account),
		recipients: make(map[string]bankRecipient),
		otps:       make(map[string]string),
	}
}

// CreateAccount registers an unverified account with a starting balance of
// zero.
func (s *Store) CreateAccount(firstName, lastName, email, password string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := s.byEmail[key]; exists {
		return nil, ErrAccountExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	acct := &Account{
		ID:           uuid.NewString(),
		FirstName:    firstName,
		LastName:     lastName,
		Email:        key,
		PasswordHash: hash,
	}
	s.byID[acct.ID] = acct
	s.byEmail[key] = acct
	return acct, nil
}

// Authenticate checks credentials for a verified account.
func (s *Store) Authenticate(email, password string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !acct.Verified {
		return nil, ErrNotVerified
	}
	return acct, nil
}

// IssueOTP stores a fresh OTP for the email and returns it. The sandbox
// "delivers" it via the server log instead of email.
func (s *Store) IssueOTP(email string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	if _, ok := s.byEmail[key]; !ok {
		return "", ErrNotFound
	}
	otp := fmt.Sprintf("%06d", time.Now().UnixNano()%1_000_000)
	s.otps[key] = otp
	return otp, nil
}

// VerifyAccount consumes an OTP and marks the account verified.
func (s *Store) VerifyAccount(email, password, otp string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	acct, ok := s.byEmail[key]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if s.otps[key] == "" || s.otps[key] != otp {
		return nil, ErrBadOTP
	}
	delete(s.otps, key)
	acct.Verified = true
	return acct, nil
}

// ResetPassword consumes an OTP and replaces the password.
func (s *Store) ResetPassword(email, newPassword, otp string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(email)
	acct, ok := s.byEmail[key]
	if !ok {
		return ErrNotFound
	}
	if s.otps[key] == "" || s.otps[key] != otp {
		return ErrBadOTP
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	delete(s.otps, key)
	acct.PasswordHash = hash
	return nil
}

// Get returns an account by ID.
func (s *Store) Get(id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return acct, nil
}

// SetTag claims a tagname for the account.
func (s *Store) SetTag(id, tagname string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	key := strings.ToLower(tagname)
	if owner, taken := s.byTag[key]; taken && owner.ID != id {
		return nil, ErrTagTaken
	}
	if acct.Tagname != "" {
		delete(s.byTag, strings.ToLower(acct.Tagname))
	}
	acct.Tagname = tagname
	s.byTag[key] = acct
	return acct, nil
}

// SetPin hashes and stores the payment PIN.
func (s *Store) SetPin(id, pin string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	acct.PinHash = hash
	return nil
}

// FindTag looks up a payable tagname.
func (s *Store) FindTag(tagname string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.byTag[strings.ToLower(tagname)]
	if !ok {
		return nil, ErrNotFound
	}
	return acct, nil
}

// RegisterRecipient registers a bank account as a transfer beneficiary and
// returns its opaque recipient code. Codes are fresh per registration;
// clients must not assume stability across edits.
func (s *Store) RegisterRecipient(ownerID, bankCode, accountNumber string) (bankRecipient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[ownerID]; !ok {
		return bankRecipient{}, ErrNotFound
	}
	rcp := bankRecipient{
		Code:          "RCP_" + uuid.NewString(),
		BankCode:      bankCode,
		AccountNumber: accountNumber,
		AccountName:   syntheticAccountName(bankCode, accountNumber),
		OwnerID:       ownerID,
	}
	s.recipients[rcp.Code] = rcp
	return rcp, nil
}

func (s *Store) checkPin(acct *Account, pin string) error {
	if len(acct.PinHash) == 0 {
		return ErrNoPin
	}
	if err := bcrypt.CompareHashAndPassword(acct.PinHash, []byte(pin)); err != nil {
		return ErrWrongPin
	}
	return nil
}

// TagTransfer moves funds between two tagged accounts and records a
// transaction on both sides.
func (s *Store) TagTransfer(senderID, recipientTag string, amount float64, reason, pin string) (*Account, models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.byID[senderID]
	if !ok {
		return nil, models.Transaction{}, ErrNotFound
	}
	recipient, ok := s.byTag[strings.ToLower(recipientTag)]
	if !ok {
		return nil, models.Transaction{}, ErrNotFound
	}
	if err := s.checkPin(sender, pin); err != nil {
		return nil, models.Transaction{}, err
	}
	if amount <= 0 || sender.NGBalance < amount {
		return nil, models.Transaction{}, ErrInsufficientFunds
	}

	sender.NGBalance -= amount
	recipient.NGBalance += amount

	txn := models.Transaction{
		InternalRef:  uuid.NewString(),
		Type:         "tag_transfer",
		Amount:       amount,
		Reason:       reason,
		Status:       "completed",
		SenderTag:    sender.Tagname,
		RecipientTag: recipient.Tagname,
		CreatedAt:    time.Now().UTC(),
	}
	sender.Transactions = append([]models.Transaction{txn}, sender.Transactions...)
	recipient.Transactions = append([]models.Transaction{txn}, recipient.Transactions...)
	return sender, txn, nil
}

// BankTransfer debits the sender against a registered recipient code and
// returns the rail reference.
func (s *Store) BankTransfer(senderID, recipientCode string, amount float64, reason, pin string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sender, ok := s.byID[senderID]
	if !ok {
		return "", ErrNotFound
	}
	rcp, ok := s.recipients[recipientCode]
	if !ok || rcp.OwnerID != senderID {
		return "", ErrNotFound
	}
	if err := s.checkPin(sender, pin); err != nil {
		return "", err
	}
	if amount <= 0 || sender.NGBalance < amount {
		return "", ErrInsufficientFunds
	}

	sender.NGBalance -= amount
	ref := "BNK_" + uuid.NewString()
	sender.Transactions = append([]models.Transaction{{
		InternalRef: ref,
		Type:        "bank_transfer",
		Amount:      amount,
		Reason:      reason,
		Status:      "completed",
		SenderTag:   sender.Tagname,
		CreatedAt:   time.Now().UTC(),
	}}, sender.Transactions...)
	return ref, nil
}

// TransactionsFor returns the account's history, newest first.
func (s *Store) TransactionsFor(id string) ([]models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]models.Transaction, len(acct.Transactions))
	copy(out, acct.Transactions)
	return out, nil
}

// TransactionByRef finds one of the account's transactions.
func (s *Store) TransactionByRef(id, ref string) (models.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.byID[id]
	if !ok {
		return models.Transaction{}, ErrNotFound
	}
	for _, txn := range acct.Transactions {
		if txn.InternalRef == ref {
			return txn, nil
		}
	}
	return models.Transaction{}, ErrNotFound
}

// Credit adds funds, for seeding demo balances.
func (s *Store) Credit(id string, amount float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acct, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	acct.NGBalance += amount
	return nil
}

// syntheticAccountName derives a stable fake beneficiary name so repeated
// resolutions of the same account agree.
func syntheticAccountName(bankCode, accountNumber string) string {
	firsts := []string{"ADA", "CHUKWU", "NGOZI", "OLU", "EMEKA", "AMINA", "TUNDE", "IFEOMA"}
	lasts := []string{"OKAFOR", "BELLO", "ADEYEMI", "EZE", "MOHAMMED", "OBI", "LAWAL", "NWOSU"}
	var sum int
	for _, r := range bankCode + accountNumber {
		sum += int(r)
	}
	return firsts[sum%len(firsts)] + " " + lasts[(sum/7)%len(lasts)]
}
