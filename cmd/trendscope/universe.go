package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"TrendScope/internal/universe"
)

func universeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "universe",
		Short: "Inspect or tidy the ticker list",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list [EXCHANGE]",
			Short: "Print the tickers, optionally of one exchange",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := a.universe()
				if err != nil {
					return err
				}
				tickers := u.Tickers()
				if len(args) == 1 {
					tickers = u.Exchange(args[0])
				}
				for _, t := range tickers {
					fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", t.Key(), t.DisplayName())
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "complete PREFIX",
			Short: "Print the ticker keys starting with PREFIX",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				u, err := a.universe()
				if err != nil {
					return err
				}
				for _, k := range u.Complete(args[0]) {
					fmt.Fprintln(cmd.OutOrStdout(), k)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "sort",
			Short: "Rewrite the ticker list sorted by exchange and symbol",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return universe.SortFile(a.cfg.Storage.UniverseFile)
			},
		},
	)
	return cmd
}
