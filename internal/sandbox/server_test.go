package sandbox

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagpay/internal/models"
)

func newTestServer(t *testing.T) (*fiber.App, *Store) {
	t.Helper()
	store := NewStore()
	app := New(store, Config{JWTSecret: "test-secret", TokenTTL: time.Hour})
	return app, store
}

func request(t *testing.T, app *fiber.App, method, path, token string, body, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

// signUp registers, verifies and signs in one account, returning its token.
func signUp(t *testing.T, app *fiber.App, store *Store, email, tag string) string {
	t.Helper()
	code := request(t, app, http.MethodPost, "/auth/", "", models.RegisterRequest{
		FirstName: "Test", LastName: "User", Email: email, Password: "password",
	}, nil)
	require.Equal(t, http.StatusCreated, code)

	otp, err := store.IssueOTP(email)
	require.NoError(t, err)

	var auth models.AuthResponse
	code = request(t, app, http.MethodPost, "/auth/verify-account", "", models.VerifyAccountRequest{
		Email: email, Password: "password", OTP: otp,
	}, &auth)
	require.Equal(t, http.StatusOK, code)
	require.NotEmpty(t, auth.AccessToken)

	if tag != "" {
		code = request(t, app, http.MethodPost, "/accounts/set-tag", auth.AccessToken,
			models.SetTagRequest{Tagname: tag}, nil)
		require.Equal(t, http.StatusOK, code)
	}
	return auth.AccessToken
}

func TestRegisterVerifyLogin(t *testing.T) {
	app, store := newTestServer(t)
	signUp(t, app, store, "ada@example.com", "ada")

	// login before verification fails for a fresh account
	code := request(t, app, http.MethodPost, "/auth/login", "", models.LoginRequest{
		Email: "fresh@example.com", Password: "password",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	var auth models.AuthResponse
	code = request(t, app, http.MethodPost, "/auth/login", "", models.LoginRequest{
		Email: "ada@example.com", Password: "password",
	}, &auth)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, auth.Data)
	assert.Equal(t, "ada", auth.Data.Account.Tagname)

	// wrong password
	code = request(t, app, http.MethodPost, "/auth/login", "", models.LoginRequest{
		Email: "ada@example.com", Password: "nope",
	}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestDuplicateRegistration(t *testing.T) {
	app, store := newTestServer(t)
	signUp(t, app, store, "ada@example.com", "")

	code := request(t, app, http.MethodPost, "/auth/", "", models.RegisterRequest{
		Email: "ada@example.com", Password: "other",
	}, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestVerifyRejectsWrongOTP(t *testing.T) {
	app, _ := newTestServer(t)
	code := request(t, app, http.MethodPost, "/auth/", "", models.RegisterRequest{
		Email: "ada@example.com", Password: "password",
	}, nil)
	require.Equal(t, http.StatusCreated, code)

	code = request(t, app, http.MethodPost, "/auth/verify-account", "", models.VerifyAccountRequest{
		Email: "ada@example.com", Password: "password", OTP: "000000",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAuthRequired(t *testing.T) {
	app, _ := newTestServer(t)

	assert.Equal(t, http.StatusUnauthorized,
		request(t, app, http.MethodGet, "/auth/me", "", nil, nil))
	assert.Equal(t, http.StatusUnauthorized,
		request(t, app, http.MethodGet, "/accounts/transactions/me", "garbage-token", nil, nil))
}

func TestTagTransferEndToEnd(t *testing.T) {
	app, store := newTestServer(t)
	sender := signUp(t, app, store, "sender@example.com", "sender")
	_ = signUp(t, app, store, "ada@example.com", "ada")

	code := request(t, app, http.MethodPost, "/accounts/set-payment-pin", sender,
		models.SetPaymentPinRequest{PaymentPin: "1234"}, nil)
	require.Equal(t, http.StatusOK, code)

	acct, err := store.FindTag("sender")
	require.NoError(t, err)
	require.NoError(t, store.Credit(acct.ID, 10_000))

	// recipient lookup
	var lookup models.TagLookupResponse
	code = request(t, app, http.MethodGet, "/accounts/tag/ada", sender, nil, &lookup)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ada", lookup.Data.Tagname)

	assert.Equal(t, http.StatusNotFound,
		request(t, app, http.MethodGet, "/accounts/tag/ghost", sender, nil, nil))

	// wrong pin is rejected without moving funds
	code = request(t, app, http.MethodPost, "/accounts/fiat/tag-transfer", sender,
		models.TagTransferRequest{RecipientTag: "ada", Amount: 1000, PaymentPin: "9999"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	var transfer models.TagTransferResponse
	code = request(t, app, http.MethodPost, "/accounts/fiat/tag-transfer", sender,
		models.TagTransferRequest{RecipientTag: "ada", Amount: 1000, Reason: "lunch", PaymentPin: "1234"}, &transfer)
	require.Equal(t, http.StatusCreated, code)
	assert.NotEmpty(t, transfer.Data.InternalRef)
	assert.Equal(t, float64(9000), transfer.Data.Sender.Account.NGBalance)

	// both sides see the transaction
	var list models.TransactionListResponse
	code = request(t, app, http.MethodGet, "/accounts/transactions/me", sender, nil, &list)
	require.Equal(t, http.StatusOK, code)
	require.Len(t, list.Data, 1)
	assert.Equal(t, "ada", list.Data[0].RecipientTag)

	var detail models.TransactionDetailResponse
	code = request(t, app, http.MethodGet, "/accounts/fiat/tag/transactions/"+transfer.Data.InternalRef, sender, nil, &detail)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1000), detail.Data.Amount)

	// overdraft rejected
	code = request(t, app, http.MethodPost, "/accounts/fiat/tag-transfer", sender,
		models.TagTransferRequest{RecipientTag: "ada", Amount: 1_000_000, PaymentPin: "1234"}, nil)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestBankTransferEndToEnd(t *testing.T) {
	app, store := newTestServer(t)
	token := signUp(t, app, store, "sender@example.com", "sender")

	require.Equal(t, http.StatusOK,
		request(t, app, http.MethodPost, "/accounts/set-payment-pin", token,
			models.SetPaymentPinRequest{PaymentPin: "1234"}, nil))
	acct, err := store.FindTag("sender")
	require.NoError(t, err)
	require.NoError(t, store.Credit(acct.ID, 5_000))

	var rcp models.BankRecipientResponse
	code := request(t, app, http.MethodPost, "/accounts/fiat/bank/recipient", token,
		models.BankRecipientRequest{BankCode: "058", AccountNumber: "0123456789"}, &rcp)
	require.Equal(t, http.StatusCreated, code)
	require.NotEmpty(t, rcp.Recipient.RecipientCode)
	assert.NotEmpty(t, rcp.Recipient.Details.AccountName)

	// short account number rejected
	assert.Equal(t, http.StatusBadRequest,
		request(t, app, http.MethodPost, "/accounts/fiat/bank/recipient", token,
			models.BankRecipientRequest{BankCode: "058", AccountNumber: "123"}, nil))

	var status models.NetworkStatusResponse
	code = request(t, app, http.MethodGet, "/accounts/fiat/bank/network-status?bank_code=058", token, nil, &status)
	require.Equal(t, http.StatusOK, code)
	assert.GreaterOrEqual(t, status.NetworkStatus, float64(70))

	var result models.BankTransferResult
	code = request(t, app, http.MethodPost, "/accounts/fiat/bank/transfer", token,
		models.BankTransferRequest{Amount: 2000, RecipientCode: rcp.Recipient.RecipientCode, PaymentPin: "1234"}, &result)
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, result.Reference)

	// unknown recipient code
	assert.Equal(t, http.StatusNotFound,
		request(t, app, http.MethodPost, "/accounts/fiat/bank/transfer", token,
			models.BankTransferRequest{Amount: 100, RecipientCode: "RCP_nope", PaymentPin: "1234"}, nil))
}

func TestSetTagConflict(t *testing.T) {
	app, store := newTestServer(t)
	_ = signUp(t, app, store, "first@example.com", "ada")
	second := signUp(t, app, store, "second@example.com", "")

	code := request(t, app, http.MethodPost, "/accounts/set-tag", second,
		models.SetTagRequest{Tagname: "ada"}, nil)
	assert.Equal(t, http.StatusConflict, code)
}

func TestPasswordReset(t *testing.T) {
	app, store := newTestServer(t)
	_ = signUp(t, app, store, "ada@example.com", "")

	code := request(t, app, http.MethodPost, "/auth/resetpassword/request", "",
		models.SendVerificationRequest{Email: "ada@example.com"}, nil)
	require.Equal(t, http.StatusOK, code)

	otp, err := store.IssueOTP("ada@example.com")
	require.NoError(t, err)

	code = request(t, app, http.MethodPost, "/auth/resetpassword/submit", "",
		models.ResetPasswordSubmitRequest{Email: "ada@example.com", NewPassword: "changed", OTP: otp}, nil)
	require.Equal(t, http.StatusOK, code)

	// old password no longer works, new one does
	assert.Equal(t, http.StatusUnauthorized,
		request(t, app, http.MethodPost, "/auth/login", "",
			models.LoginRequest{Email: "ada@example.com", Password: "password"}, nil))
	assert.Equal(t, http.StatusOK,
		request(t, app, http.MethodPost, "/auth/login", "",
			models.LoginRequest{Email: "ada@example.com", Password: "changed"}, nil))
}

func TestBankDirectory(t *testing.T) {
	app, _ := newTestServer(t)

	var dir models.BankDirectoryResponse
	code := request(t, app, http.MethodGet, "/bank", "", nil, &dir)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, dir.Status)
	assert.NotEmpty(t, dir.Data)
}

func TestSeedDemo(t *testing.T) {
	store := NewStore()
	app := New(store, Config{JWTSecret: "test-secret", SeedDemo: true})

	var auth models.AuthResponse
	code := request(t, app, http.MethodPost, "/auth/login", "",
		models.LoginRequest{Email: "demo@tagpay.dev", Password: "password"}, &auth)
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, auth.Data)
	assert.Equal(t, "demo", auth.Data.Account.Tagname)
	assert.Equal(t, float64(250_000), auth.Data.Account.NGBalance)
}
