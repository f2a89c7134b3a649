package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tagpay/internal/auth"
	"tagpay/internal/biometric"
	"tagpay/internal/models"
	"tagpay/internal/resolver"
	"tagpay/internal/transfer"
)

func newTransferCmd(a **app) *cobra.Command {
	var (
		tag     string
		bank    string
		account string
		amount  string
		note    string
		yes     bool
	)
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Send money to a tag or a bank account",
		Long: `Send money to another wallet by tagname, or to a Nigerian bank
account via --bank and --account. The transfer is previewed before a
4-digit payment PIN confirms it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ap := *a

			res := resolver.New(ap.client)
			sub := transfer.NewAPISubmitter(ap.client)
			wf := transfer.New(res, sub, ap.store, biometric.Unavailable{}, transfer.Config{
				Refresher: profileRefresher{ap.auth},
			})

			switch {
			case tag != "" && (bank != "" || account != ""):
				return errors.New("use either --tag or --bank/--account, not both")
			case tag != "":
				if err := wf.SetMode(transfer.ModeTag); err != nil {
					return err
				}
				if err := wf.SetTag(tag); err != nil {
					return err
				}
			case bank != "" || account != "":
				if err := wf.SetMode(transfer.ModeFiat); err != nil {
					return err
				}
				b, err := ap.banks.Find(ctx, bank)
				if err != nil {
					return err
				}
				if err := wf.SetBank(b.Name, b.Code); err != nil {
					return err
				}
				if err := wf.SetAccountNumber(account); err != nil {
					return err
				}
			default:
				return errors.New("a recipient is required: --tag, or --bank and --account")
			}
			if err := wf.SetAmount(amount); err != nil {
				return err
			}
			if err := wf.SetNote(note); err != nil {
				return err
			}

			fmt.Println("Resolving recipient...")
			if err := wf.Preview(ctx); err != nil {
				return failureError(err)
			}

			summary := wf.Summary()
			fmt.Printf("\n  Send:    %s\n  To:      %s\n", summary.Amount, summary.Recipient)
			if summary.Note != "" {
				fmt.Printf("  Note:    %s\n", summary.Note)
			}
			fmt.Println()

			if !yes {
				answer, err := ap.prompt("Proceed? [y/N] ")
				if err != nil {
					return err
				}
				if answer != "y" && answer != "Y" {
					wf.Cancel()
					fmt.Println("Cancelled.")
					return nil
				}
			}

			for {
				// After an incomplete-PIN failure the workflow is still
				// awaiting the secret; re-selecting the method is only legal
				// from method selection.
				if wf.Phase() == transfer.PhaseAwaitingMethod {
					if err := wf.SelectMethod(ctx, transfer.MethodPIN); err != nil {
						return failureError(err)
					}
				}
				for wf.PINLen() > 0 {
					wf.Backspace()
				}
				pin, err := ap.prompt("Payment PIN: ")
				if err != nil {
					return err
				}
				for i := 0; i < len(pin); i++ {
					wf.AppendDigit(pin[i])
				}
				err = wf.Confirm(ctx)
				if err == nil {
					break
				}
				var f *transfer.Failure
				if errors.As(err, &f) && f.Kind != transfer.FailureAuthorization {
					fmt.Println(f.Message)
					retry, perr := ap.prompt("Try again? [y/N] ")
					if perr != nil {
						return perr
					}
					if retry == "y" || retry == "Y" {
						continue
					}
					wf.Cancel()
					fmt.Println("Cancelled.")
					return nil
				}
				return failureError(err)
			}

			if receipt, ok := wf.Receipt(); ok {
				fmt.Println("Transfer sent.")
				fmt.Printf("  Reference: %s\n", receipt.Reference)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "recipient tagname")
	cmd.Flags().StringVar(&bank, "bank", "", "recipient bank name or code")
	cmd.Flags().StringVar(&account, "account", "", "recipient account number (10 digits)")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to send")
	cmd.Flags().StringVar(&note, "note", "", "optional memo")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the preview confirmation")
	cmd.MarkFlagRequired("amount")
	return cmd
}

// profileRefresher re-fetches the profile after bank transfers so the
// cached balance reflects server-side fees.
type profileRefresher struct {
	auth *auth.Service
}

func (r profileRefresher) Refresh(ctx context.Context) (models.AccountSnapshot, error) {
	user, err := r.auth.Me(ctx)
	if err != nil {
		return models.AccountSnapshot{}, err
	}
	return user.Account, nil
}

// failureError strips the *Failure wrapper so the user sees only the
// message, not the taxonomy.
func failureError(err error) error {
	var f *transfer.Failure
	if errors.As(err, &f) {
		return errors.New(f.Message)
	}
	return err
}
