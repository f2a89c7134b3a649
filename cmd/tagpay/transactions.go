package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tagpay/internal/money"
)

func newTransactionsCmd(a **app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transactions",
		Aliases: []string{"txns"},
		Short:   "Show transaction history",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			txns, err := (*a).txns.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(txns) == 0 {
				fmt.Println("No transactions yet.")
				return nil
			}
			for _, t := range txns {
				who := t.RecipientTag
				if who == "" {
					who = t.SenderTag
				}
				fmt.Printf("%s  ₦%-14s %-14s @%-12s %s\n",
					t.CreatedAt.Format("2006-01-02 15:04"),
					money.FormatFloat(t.Amount), t.Type, who, t.InternalRef)
			}
			return nil
		},
	}

	detail := &cobra.Command{
		Use:   "show <reference>",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := (*a).txns.Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("  Reference: %s\n", t.InternalRef)
			fmt.Printf("  Type:      %s\n", t.Type)
			fmt.Printf("  Amount:    ₦%s\n", money.FormatFloat(t.Amount))
			fmt.Printf("  Status:    %s\n", t.Status)
			if t.SenderTag != "" {
				fmt.Printf("  From:      @%s\n", t.SenderTag)
			}
			if t.RecipientTag != "" {
				fmt.Printf("  To:        @%s\n", t.RecipientTag)
			}
			if t.Reason != "" {
				fmt.Printf("  Note:      %s\n", t.Reason)
			}
			fmt.Printf("  Date:      %s\n", t.CreatedAt.Format("2006-01-02 15:04:05"))
			return nil
		},
	}

	var comment string
	report := &cobra.Command{
		Use:   "report <reference>",
		Short: "File a complaint against a transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := (*a).txns.Report(cmd.Context(), args[0], comment); err != nil {
				return err
			}
			fmt.Println("Report filed.")
			return nil
		},
	}
	report.Flags().StringVar(&comment, "comment", "", "what went wrong")
	report.MarkFlagRequired("comment")

	cmd.AddCommand(detail, report)
	return cmd
}
