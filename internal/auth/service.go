// Package auth implements the client side of the account lifecycle:
// registration, login, OTP verification, password reset and the
// session-writing that follows. It is the only package that issues or
// revokes the session token.
package auth

import (
	"context"
	"errors"
	"fmt"

	"tagpay/internal/api"
	"tagpay/internal/models"
	"tagpay/internal/session"
)

const countryCode = "NG"

var ErrNoSession = errors.New("not signed in")

// Service drives auth flows through a (gated) api.Doer and persists the
// results in the session store.
type Service struct {
	client api.Doer
	store  session.Store
	device models.DeviceInfo
}

// NewService creates an auth Service.
func NewService(client api.Doer, store session.Store, device models.DeviceInfo) *Service {
	if client == nil {
		panic("api client is required")
	}
	if store == nil {
		panic("session store is required")
	}
	return &Service{client: client, store: store, device: device}
}

// Register creates a new wallet account. The account stays unverified
// until VerifyAccount succeeds with the emailed OTP.
func (s *Service) Register(ctx context.Context, firstName, lastName, email, password string) error {
	req := models.RegisterRequest{
		FirstName:   firstName,
		LastName:    lastName,
		Email:       email,
		Password:    password,
		DeviceInfo:  s.device,
		CountryCode: countryCode,
	}
	return s.client.Post(ctx, "/auth", req, nil)
}

// Login authenticates and establishes a session: the access token is
// persisted, the returning-user flag set and the account snapshot cached.
func (s *Service) Login(ctx context.Context, email, phone, password string) (*models.User, error) {
	req := models.LoginRequest{
		Email:       email,
		Phone:       phone,
		Password:    password,
		DeviceInfo:  s.device,
		CountryCode: countryCode,
	}
	var resp models.AuthResponse
	if err := s.client.Post(ctx, "/auth/login", req, &resp); err != nil {
		return nil, err
	}
	return s.establish(resp)
}

// VerifyAccount confirms the registration OTP and, like Login,
// establishes the session.
func (s *Service) VerifyAccount(ctx context.Context, email, phone, password, otp string) (*models.User, error) {
	req := models.VerifyAccountRequest{
		Email:       email,
		Phone:       phone,
		Password:    password,
		OTP:         otp,
		DeviceInfo:  s.device,
		CountryCode: countryCode,
	}
	var resp models.AuthResponse
	if err := s.client.Post(ctx, "/auth/verify-account", req, &resp); err != nil {
		return nil, err
	}
	return s.establish(resp)
}

// SendVerification requests (or re-requests) a verification OTP.
func (s *Service) SendVerification(ctx context.Context, email, phone string) error {
	req := models.SendVerificationRequest{
		Email:       email,
		Phone:       phone,
		DeviceInfo:  s.device,
		CountryCode: countryCode,
	}
	return s.client.Post(ctx, "/auth/send-verification", req, nil)
}

// RequestPasswordReset asks for a reset OTP to be sent.
func (s *Service) RequestPasswordReset(ctx context.Context, email, phone string) error {
	req := models.SendVerificationRequest{
		Email:       email,
		Phone:       phone,
		DeviceInfo:  s.device,
		CountryCode: countryCode,
	}
	return s.client.Post(ctx, "/auth/resetpassword/request", req, nil)
}

// SubmitPasswordReset sets a new password using the reset OTP.
func (s *Service) SubmitPasswordReset(ctx context.Context, email, phone, newPassword, otp string) error {
	req := models.ResetPasswordSubmitRequest{
		Email:       email,
		Phone:       phone,
		NewPassword: newPassword,
		OTP:         otp,
		DeviceInfo:  s.device,
		CountryCode: countryCode,
	}
	return s.client.Post(ctx, "/auth/resetpassword/submit", req, nil)
}

// Me fetches the authenticated profile and refreshes the cached snapshot.
func (s *Service) Me(ctx context.Context) (*models.User, error) {
	if s.store.AccessToken() == "" {
		return nil, ErrNoSession
	}
	var user models.User
	if err := s.client.Get(ctx, "/auth/me", &user); err != nil {
		return nil, err
	}
	if err := s.store.SetSnapshot(user.Account); err != nil {
		return nil, fmt.Errorf("cache snapshot: %w", err)
	}
	return &user, nil
}

// SetTagname claims a tagname for the account.
func (s *Service) SetTagname(ctx context.Context, tagname string) (*models.User, error) {
	var resp models.UserResponse
	if err := s.client.Post(ctx, "/accounts/set-tag", models.SetTagRequest{Tagname: tagname}, &resp); err != nil {
		return nil, err
	}
	if resp.Data != nil {
		if err := s.store.SetSnapshot(resp.Data.Account); err != nil {
			return nil, fmt.Errorf("cache snapshot: %w", err)
		}
	}
	return resp.Data, nil
}

// SetPaymentPin sets the payment PIN server-side and caches it locally to
// back biometric-confirmed transfers.
func (s *Service) SetPaymentPin(ctx context.Context, pin string) error {
	if err := s.client.Post(ctx, "/accounts/set-payment-pin", models.SetPaymentPinRequest{PaymentPin: pin}, nil); err != nil {
		return err
	}
	return s.store.SetPaymentPIN(pin)
}

// SignOut drops the local session. Server-side revocation is not part of
// the API contract.
func (s *Service) SignOut() error {
	return s.store.ClearAccessToken()
}

// establish persists a successful auth response.
func (s *Service) establish(resp models.AuthResponse) (*models.User, error) {
	if resp.AccessToken == "" {
		return nil, &api.Error{Status: 200, Message: "missing access token in auth response"}
	}
	if err := s.store.SetAccessToken(resp.AccessToken); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}
	if err := s.store.SetReturningUser(true); err != nil {
		return nil, fmt.Errorf("persist returning-user flag: %w", err)
	}
	if resp.Data != nil {
		if err := s.store.SetSnapshot(resp.Data.Account); err != nil {
			return nil, fmt.Errorf("cache snapshot: %w", err)
		}
	}
	return resp.Data, nil
}
