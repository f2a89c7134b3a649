package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newBanksCmd(a **app) *cobra.Command {
	return &cobra.Command{
		Use:   "banks [search]",
		Short: "List or search the bank directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			term := ""
			if len(args) == 1 {
				term = args[0]
			}
			list, err := (*a).banks.Search(cmd.Context(), term)
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Println("No banks match.")
				return nil
			}
			for _, b := range list {
				fmt.Printf("%-8s %s\n", b.Code, b.Name)
			}
			return nil
		},
	}
}
