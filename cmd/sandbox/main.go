// Command sandbox runs the local stand-in for the wallet API so the
// client can be developed and demoed without a deployed backend.
package main

import (
	"log"
	"time"

	"tagpay/internal/config"
	"tagpay/internal/sandbox"
)

func main() {
	config.LoadEnv()

	store := sandbox.NewStore()
	app := sandbox.New(store, sandbox.Config{
		JWTSecret: config.GetEnv("SANDBOX_JWT_SECRET", "sandbox-dev-secret"),
		TokenTTL:  config.GetDurationEnv("SANDBOX_TOKEN_TTL", 24*time.Hour),
		SeedDemo:  config.GetBoolEnv("SANDBOX_SEED_DEMO", true),
	})

	log.Fatal(app.Listen(":" + config.GetEnv("PORT", "8000")))
}
