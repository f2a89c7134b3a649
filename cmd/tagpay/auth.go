package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagpay/internal/money"
)

func newRegisterCmd(a **app) *cobra.Command {
	var firstName, lastName string
	cmd := &cobra.Command{
		Use:   "register <email>",
		Short: "Create a wallet account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := (*a).prompt("Password: ")
			if err != nil {
				return err
			}
			if err := (*a).auth.Register(cmd.Context(), firstName, lastName, args[0], password); err != nil {
				return err
			}
			fmt.Println("Account created. Check your inbox for the verification code, then run:")
			fmt.Printf("  tagpay verify %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	return cmd
}

func newVerifyCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <email>",
		Short: "Verify a new account with the emailed code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := (*a).prompt("Password: ")
			if err != nil {
				return err
			}
			otp, err := (*a).prompt("Verification code: ")
			if err != nil {
				return err
			}
			user, err := (*a).auth.VerifyAccount(cmd.Context(), args[0], "", password, otp)
			if err != nil {
				return err
			}
			fmt.Println("Account verified, you are signed in.")
			if user != nil && user.Account.Tagname == "" {
				fmt.Println("Claim a tagname next: tagpay set-tag <name>")
			}
			return nil
		},
	}
}

func newLoginCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := (*a).prompt("Password: ")
			if err != nil {
				return err
			}
			user, err := (*a).auth.Login(cmd.Context(), args[0], "", password)
			if err != nil {
				return err
			}
			fmt.Println("Signed in.")
			if user != nil {
				printProfile(user.Account.Tagname, user.Email, user.Account.NGBalance)
			}
			return nil
		},
	}
}

func newLogoutCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Drop the local session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).auth.SignOut(); err != nil {
				return err
			}
			fmt.Println("Signed out.")
			return nil
		},
	}
}

func newMeCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the signed-in profile and balance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := (*a).auth.Me(cmd.Context())
			if err != nil {
				return err
			}
			printProfile(user.Account.Tagname, user.Email, user.Account.NGBalance)
			return nil
		},
	}
}

func newSetTagCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-tag <tagname>",
		Short: "Claim a tagname for receiving tag transfers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := (*a).auth.SetTagname(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if user != nil {
				fmt.Printf("Tagname set to @%s\n", user.Account.Tagname)
			}
			return nil
		},
	}
}

func newSetPinCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-pin",
		Short: "Set the 4-digit payment PIN",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pin, err := (*a).prompt("New payment PIN (4 digits): ")
			if err != nil {
				return err
			}
			if err := (*a).auth.SetPaymentPin(cmd.Context(), pin); err != nil {
				return err
			}
			fmt.Println("Payment PIN set.")
			return nil
		},
	}
}

func printProfile(tagname, email string, balance float64) {
	if tagname != "" {
		fmt.Printf("  Tag:     @%s\n", tagname)
	}
	fmt.Printf("  Email:   %s\n", email)
	fmt.Printf("  Balance: ₦%s\n", money.FormatFloat(balance))
}
