package main

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"tagpay/internal/api"
	"tagpay/internal/auth"
	"tagpay/internal/banks"
	"tagpay/internal/config"
	"tagpay/internal/models"
	"tagpay/internal/netcheck"
	"tagpay/internal/session"
	"tagpay/internal/transactions"
)

const appVersion = "0.1.0"

// app wires the client stack once per invocation and hands it to commands.
type app struct {
	store  *session.FileStore
	client api.Doer
	auth   *auth.Service
	txns   *transactions.Service
	banks  *banks.Directory
	stdin  *bufio.Reader
}

func defaultSessionPath() string {
	if p := config.GetEnv("TAGPAY_SESSION_FILE", ""); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "tagpay-session.json"
	}
	return filepath.Join(home, ".config", "tagpay", "session.json")
}

func newApp() (*app, error) {
	config.LoadEnv()

	store, err := session.OpenFileStore(defaultSessionPath())
	if err != nil {
		return nil, err
	}

	baseURL := config.GetEnv("TAGPAY_API_URL", "http://localhost:8000")
	httpClient := &http.Client{Timeout: config.GetDurationEnv("HTTP_TIMEOUT", 15*time.Second)}
	raw := api.New(baseURL,
		api.WithHTTPClient(httpClient),
		api.WithTokenSource(store),
		api.WithHeader("User-Agent", "tagpay-cli/"+appVersion),
		api.WithOnUnauthorized(func() {
			// global sign-out: the dead token is dropped so the next command
			// starts from a clean signed-out state
			if err := store.ClearAccessToken(); err != nil {
				fmt.Fprintln(os.Stderr, "warning: could not clear session:", err)
			}
			fmt.Fprintln(os.Stderr, "Session expired, please sign in again.")
		}),
	)
	gate := netcheck.NewGate(raw, netcheck.NewDialProbe(baseURL), func() {
		fmt.Fprintln(os.Stderr, "No internet connection.")
	})

	deviceID, err := store.DeviceID()
	if err != nil {
		return nil, err
	}
	device := models.CollectDeviceInfo(appVersion, deviceID)

	bankURL := config.GetEnv("TAGPAY_BANK_DIRECTORY_URL", baseURL)
	bankClient := netcheck.NewGate(api.New(bankURL), netcheck.NewDialProbe(bankURL), nil)

	return &app{
		store:  store,
		client: gate,
		auth:   auth.NewService(gate, store, device),
		txns:   transactions.NewService(gate),
		banks:  banks.New(bankClient, nil),
		stdin:  bufio.NewReader(os.Stdin),
	}, nil
}

// prompt reads one line from stdin after printing a label.
func (a *app) prompt(label string) (string, error) {
	fmt.Print(label)
	line, err := a.stdin.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newRootCmd() *cobra.Command {
	var a *app

	root := &cobra.Command{
		Use:           "tagpay",
		Short:         "Wallet client for tag and bank transfers",
		Version:       appVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp()
			return err
		},
	}

	root.AddCommand(
		newRegisterCmd(&a),
		newVerifyCmd(&a),
		newLoginCmd(&a),
		newLogoutCmd(&a),
		newMeCmd(&a),
		newSetTagCmd(&a),
		newSetPinCmd(&a),
		newBanksCmd(&a),
		newTransferCmd(&a),
		newTransactionsCmd(&a),
	)
	return root
}
