package sandbox

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"tagpay/internal/models"
)

// Handler carries the handlers for every sandbox route.
type Handler struct {
	store    *Store
	secret   []byte
	tokenTTL time.Duration
}

// NewHandler creates a Handler.
func NewHandler(store *Store, secret []byte, tokenTTL time.Duration) *Handler {
	if store == nil {
		panic("store is required")
	}
	if len(secret) == 0 {
		panic("jwt secret is required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Handler{store: store, secret: secret, tokenTTL: tokenTTL}
}

func fail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"message": msg})
}

// storeError maps store sentinels to HTTP responses.
func storeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fail(c, fiber.StatusNotFound, "not found")
	case errors.Is(err, ErrAccountExists):
		return fail(c, fiber.StatusConflict, "an account with this email already exists")
	case errors.Is(err, ErrInvalidCredentials):
		return fail(c, fiber.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, ErrNotVerified):
		return fail(c, fiber.StatusForbidden, "account not verified, please verify first")
	case errors.Is(err, ErrTagTaken):
		return fail(c, fiber.StatusConflict, "tagname already taken")
	case errors.Is(err, ErrWrongPin):
		return fail(c, fiber.StatusBadRequest, "incorrect payment pin")
	case errors.Is(err, ErrNoPin):
		return fail(c, fiber.StatusBadRequest, "payment pin not set")
	case errors.Is(err, ErrInsufficientFunds):
		return fail(c, fiber.StatusBadRequest, "insufficient funds")
	case errors.Is(err, ErrBadOTP):
		return fail(c, fiber.StatusBadRequest, "invalid or expired otp")
	default:
		log.Printf("sandbox: internal error: %v", err)
		return fail(c, fiber.StatusInternalServerError, "internal server error")
	}
}

func (h *Handler) issueToken(acct *Account) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   acct.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(h.secret)
}

// RequireAuth validates the Bearer token and stashes the account ID in
// locals under "accountID".
func (h *Handler) RequireAuth(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return fail(c, fiber.StatusUnauthorized, "missing bearer token")
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return h.secret, nil
	})
	if err != nil || !token.Valid {
		return fail(c, fiber.StatusUnauthorized, "invalid or expired token")
	}
	c.Locals("accountID", claims.Subject)
	return c.Next()
}

func (h *Handler) account(c *fiber.Ctx) (*Account, error) {
	id, _ := c.Locals("accountID").(string)
	return h.store.Get(id)
}

// Register handles POST /auth.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req models.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return fail(c, fiber.StatusBadRequest, "email and password are required")
	}
	acct, err := h.store.CreateAccount(req.FirstName, req.LastName, req.Email, req.Password)
	if err != nil {
		return storeError(c, err)
	}
	otp, err := h.store.IssueOTP(acct.Email)
	if err != nil {
		return storeError(c, err)
	}
	log.Printf("sandbox: verification otp for %s is %s", acct.Email, otp)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "account created, verification code sent",
	})
}

// Login handles POST /auth/login.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req models.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	acct, err := h.store.Authenticate(req.Email, req.Password)
	if err != nil {
		return storeError(c, err)
	}
	token, err := h.issueToken(acct)
	if err != nil {
		return storeError(c, err)
	}
	user := acct.User()
	return c.JSON(models.AuthResponse{
		Message:     "login successful",
		AccessToken: token,
		Data:        &user,
	})
}

// VerifyAccount handles POST /auth/verify-account.
func (h *Handler) VerifyAccount(c *fiber.Ctx) error {
	var req models.VerifyAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	acct, err := h.store.VerifyAccount(req.Email, req.Password, req.OTP)
	if err != nil {
		return storeError(c, err)
	}
	token, err := h.issueToken(acct)
	if err != nil {
		return storeError(c, err)
	}
	user := acct.User()
	return c.JSON(models.AuthResponse{
		Message:     "account verified",
		AccessToken: token,
		Data:        &user,
	})
}

// SendVerification handles POST /auth/send-verification.
func (h *Handler) SendVerification(c *fiber.Ctx) error {
	var req models.SendVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	otp, err := h.store.IssueOTP(req.Email)
	if err != nil {
		return storeError(c, err)
	}
	log.Printf("sandbox: verification otp for %s is %s", strings.ToLower(req.Email), otp)
	return c.JSON(fiber.Map{"message": "verification code sent"})
}

// RequestPasswordReset handles POST /auth/resetpassword/request.
func (h *Handler) RequestPasswordReset(c *fiber.Ctx) error {
	var req models.SendVerificationRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	otp, err := h.store.IssueOTP(req.Email)
	if err != nil {
		return storeError(c, err)
	}
	log.Printf("sandbox: reset otp for %s is %s", strings.ToLower(req.Email), otp)
	return c.JSON(fiber.Map{"message": "reset code sent"})
}

// SubmitPasswordReset handles POST /auth/resetpassword/submit.
func (h *Handler) SubmitPasswordReset(c *fiber.Ctx) error {
	var req models.ResetPasswordSubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.store.ResetPassword(req.Email, req.NewPassword, req.OTP); err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "password updated"})
}

// Me handles GET /auth/me.
func (h *Handler) Me(c *fiber.Ctx) error {
	acct, err := h.account(c)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(acct.User())
}

// SetTag handles POST /accounts/set-tag.
func (h *Handler) SetTag(c *fiber.Ctx) error {
	var req models.SetTagRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.Tagname == "" {
		return fail(c, fiber.StatusBadRequest, "tagname is required")
	}
	id, _ := c.Locals("accountID").(string)
	acct, err := h.store.SetTag(id, req.Tagname)
	if err != nil {
		return storeError(c, err)
	}
	user := acct.User()
	return c.JSON(models.UserResponse{Data: &user})
}

// SetPaymentPin handles POST /accounts/set-payment-pin.
func (h *Handler) SetPaymentPin(c *fiber.Ctx) error {
	var req models.SetPaymentPinRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if len(req.PaymentPin) != 4 {
		return fail(c, fiber.StatusBadRequest, "payment pin must be 4 digits")
	}
	id, _ := c.Locals("accountID").(string)
	if err := h.store.SetPin(id, req.PaymentPin); err != nil {
		return storeError(c, err)
	}
	return c.JSON(fiber.Map{"message": "payment pin set"})
}

// LookupTag handles GET /accounts/tag/:tag.
func (h *Handler) LookupTag(c *fiber.Ctx) error {
	acct, err := h.store.FindTag(c.Params("tag"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fail(c, fiber.StatusNotFound, "no account with this tagname")
		}
		return storeError(c, err)
	}
	var resp models.TagLookupResponse
	resp.Data.Tagname = acct.Tagname
	resp.Data.DisplayName = strings.TrimSpace(acct.FirstName + " " + acct.LastName)
	return c.JSON(resp)
}

// RegisterBankRecipient handles POST /accounts/fiat/bank/recipient.
func (h *Handler) RegisterBankRecipient(c *fiber.Ctx) error {
	var req models.BankRecipientRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	if req.BankCode == "" || len(req.AccountNumber) != 10 {
		return fail(c, fiber.StatusBadRequest, "bank code and a 10 digit account number are required")
	}
	id, _ := c.Locals("accountID").(string)
	rcp, err := h.store.RegisterRecipient(id, req.BankCode, req.AccountNumber)
	if err != nil {
		return storeError(c, err)
	}
	var resp models.BankRecipientResponse
	resp.Recipient.RecipientCode = rcp.Code
	resp.Recipient.Details.AccountName = rcp.AccountName
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// NetworkStatus handles GET /accounts/fiat/bank/network-status. The
// figure is advisory; transfers are accepted regardless.
func (h *Handler) NetworkStatus(c *fiber.Ctx) error {
	bankCode := c.Query("bank_code")
	if bankCode == "" {
		return fail(c, fiber.StatusBadRequest, "bank_code is required")
	}
	var sum int
	for _, r := range bankCode {
		sum += int(r)
	}
	return c.JSON(models.NetworkStatusResponse{NetworkStatus: float64(70 + sum%30)})
}

// TagTransfer handles POST /accounts/fiat/tag-transfer.
func (h *Handler) TagTransfer(c *fiber.Ctx) error {
	var req models.TagTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	id, _ := c.Locals("accountID").(string)
	sender, txn, err := h.store.TagTransfer(id, req.RecipientTag, req.Amount, req.Reason, req.PaymentPin)
	if err != nil {
		return storeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(models.TagTransferResponse{
		Data: models.TagTransferResult{
			Sender:      sender.User(),
			InternalRef: txn.InternalRef,
		},
	})
}

// BankTransfer handles POST /accounts/fiat/bank/transfer.
func (h *Handler) BankTransfer(c *fiber.Ctx) error {
	var req models.BankTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	id, _ := c.Locals("accountID").(string)
	ref, err := h.store.BankTransfer(id, req.RecipientCode, req.Amount, req.Reason, req.PaymentPin)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(models.BankTransferResult{Reference: ref})
}

// ListTransactions handles GET /accounts/transactions/me.
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	id, _ := c.Locals("accountID").(string)
	txns, err := h.store.TransactionsFor(id)
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(models.TransactionListResponse{Data: txns})
}

// TransactionDetail handles GET /accounts/fiat/tag/transactions/:ref.
func (h *Handler) TransactionDetail(c *fiber.Ctx) error {
	id, _ := c.Locals("accountID").(string)
	txn, err := h.store.TransactionByRef(id, c.Params("ref"))
	if err != nil {
		return storeError(c, err)
	}
	return c.JSON(models.TransactionDetailResponse{Data: txn})
}

// ReportTransaction handles POST /accounts/transactions/:ref.
func (h *Handler) ReportTransaction(c *fiber.Ctx) error {
	var req models.ReportTransactionRequest
	if err := c.BodyParser(&req); err != nil {
		return fail(c, fiber.StatusBadRequest, "invalid request body")
	}
	id, _ := c.Locals("accountID").(string)
	if _, err := h.store.TransactionByRef(id, c.Params("ref")); err != nil {
		return storeError(c, err)
	}
	log.Printf("sandbox: report filed against %s: %s", c.Params("ref"), req.Comment)
	return c.JSON(fiber.Map{"message": "report received"})
}

// BankDirectory handles GET /bank.
func (h *Handler) BankDirectory(c *fiber.Ctx) error {
	return c.JSON(models.BankDirectoryResponse{Status: true, Data: nigerianBanks})
}
