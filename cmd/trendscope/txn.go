package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"TrendScope/internal/model"
	"TrendScope/internal/txn"
)

func txnCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "txn",
		Short: "Manage the transaction log",
	}
	cmd.AddCommand(txnImportCmd(a), txnListCmd(a))
	return cmd
}

func txnImportCmd(a *app) *cobra.Command {
	var since string
	cmd := &cobra.Command{
		Use:   "import EXPORT.csv",
		Short: "Merge a brokerage transaction export into the transaction log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var from time.Time
			if since != "" {
				d, err := model.ParseDate(since)
				if err != nil {
					return fmt.Errorf("--since: %w", err)
				}
				from = d
			}
			u, err := a.universe()
			if err != nil {
				return err
			}
			res, err := txn.Import(args[0], a.cfg.Storage.TxnStateFile, a.cfg.Storage.TxnFile, from, u)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%d entries, %d transactions written to %s\n", res.Entries, res.Transactions, a.cfg.Storage.TxnFile)
			for _, d := range res.Unmatched {
				fmt.Fprintf(out, "no ticker named %q\n", d)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&since, "since", "", "drop entries before this date (YYYY-MM-DD)")
	return cmd
}

func txnListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list [TICKER]",
		Short: "Print the logged transactions, optionally of one ticker",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := ""
			if len(args) == 1 {
				key = args[0]
			}
			txns, err := txn.LoadMatching(a.cfg.Storage.TxnFile, key)
			if err != nil {
				return err
			}
			return txn.Write(cmd.OutOrStdout(), txns)
		},
	}
}
