package sandbox

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Config controls sandbox server assembly.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	// SeedDemo creates a verified, funded demo account on startup:
	// demo@tagpay.dev / password / tag "demo" / pin 1234.
	SeedDemo bool
}

// New assembles the sandbox fiber app.
func New(store *Store, cfg Config) *fiber.App {
	if store == nil {
		panic("store is required")
	}
	if cfg.JWTSecret == "" {
		panic("jwt secret is required")
	}

	h := NewHandler(store, []byte(cfg.JWTSecret), cfg.TokenTTL)

	app := fiber.New(fiber.Config{
		AppName:               "tagpay sandbox",
		DisableStartupMessage: false,
	})
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := app.Group("/auth")
	auth.Post("/", h.Register)
	auth.Post("/login", h.Login)
	auth.Post("/verify-account", h.VerifyAccount)
	auth.Post("/send-verification", h.SendVerification)
	auth.Post("/resetpassword/request", h.RequestPasswordReset)
	auth.Post("/resetpassword/submit", h.SubmitPasswordReset)
	auth.Get("/me", h.RequireAuth, h.Me)

	accounts := app.Group("/accounts", h.RequireAuth)
	accounts.Post("/set-tag", h.SetTag)
	accounts.Post("/set-payment-pin", h.SetPaymentPin)
	accounts.Get("/tag/:tag", h.LookupTag)
	accounts.Post("/fiat/bank/recipient", h.RegisterBankRecipient)
	accounts.Get("/fiat/bank/network-status", h.NetworkStatus)
	accounts.Post("/fiat/tag-transfer", h.TagTransfer)
	accounts.Post("/fiat/bank/transfer", h.BankTransfer)
	accounts.Get("/transactions/me", h.ListTransactions)
	accounts.Get("/fiat/tag/transactions/:ref", h.TransactionDetail)
	accounts.Post("/transactions/:ref", h.ReportTransaction)

	app.Get("/bank", h.BankDirectory)

	if cfg.SeedDemo {
		seedDemo(store)
	}
	return app
}

// seedDemo provisions the demo account, skipping quietly if it exists.
func seedDemo(store *Store) {
	acct, err := store.CreateAccount("Demo", "User", "demo@tagpay.dev", "password")
	if err != nil {
		return
	}
	otp, _ := store.IssueOTP(acct.Email)
	if _, err := store.VerifyAccount(acct.Email, "password", otp); err != nil {
		log.Printf("sandbox: seed verify failed: %v", err)
		return
	}
	if _, err := store.SetTag(acct.ID, "demo"); err != nil {
		log.Printf("sandbox: seed tag failed: %v", err)
		return
	}
	if err := store.SetPin(acct.ID, "1234"); err != nil {
		log.Printf("sandbox: seed pin failed: %v", err)
		return
	}
	if err := store.Credit(acct.ID, 250_000); err != nil {
		log.Printf("sandbox: seed credit failed: %v", err)
		return
	}
	log.Printf("sandbox: seeded demo@tagpay.dev (tag @demo, pin 1234, balance 250000)")
}
