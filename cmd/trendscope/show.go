package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"TrendScope/internal/calculator"
	"TrendScope/internal/model"
	"TrendScope/internal/store"
	"TrendScope/internal/strategy"
	"TrendScope/internal/txn"
)

func showCmd(a *app) *cobra.Command {
	var rows int
	cmd := &cobra.Command{
		Use:   "show TICKER",
		Short: "Print the recent derived series and the transactions of one ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe()
			if err != nil {
				return err
			}
			t, err := u.Lookup(args[0])
			if err != nil {
				return err
			}
			st, err := store.NewFileStore(a.cfg.Storage.DataDir)
			if err != nil {
				return err
			}
			rec, err := st.Load(t.Key())
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no stored data for %s, run \"trendscope run %s\" first", t.Key(), t.Key())
			}
			if err != nil {
				return err
			}
			an, err := a.analyzer(nil)
			if err != nil {
				return err
			}
			if err := an.Recompute(rec); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			sig := strategy.Evaluate(rec, a.cfg.Analysis.SignalWindow, a.cfg.Analysis.Thresholds)
			fmt.Fprintf(out, "%s (%s)  Rec%d: %s\n\n", t.DisplayName(), t.Key(), sig.Window, sig.Label)
			if err := renderSeries(out, rec, a.cfg.Analysis.PriceProxy, rows); err != nil {
				return err
			}

			txns, err := txn.LoadMatching(a.cfg.Storage.TxnFile, t.Key())
			if err != nil {
				return err
			}
			if len(txns) > 0 {
				fmt.Fprintln(out, "\nTransactions:")
				if err := txn.Write(out, txns); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&rows, "rows", 10, "number of most recent bars to print")
	return cmd
}

func renderSeries(w io.Writer, rec *model.Record, proxy model.PriceProxy, rows int) error {
	cb := calculator.CostBasis(rec.Bars, proxy)
	windows := rec.Windows()

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprint(tw, "Date\tPrice\tAvgPrice\tSurplus")
	for _, n := range windows {
		fmt.Fprintf(tw, "\tSlope%d", n)
	}
	fmt.Fprintln(tw, "\t")

	start := rec.Len() - rows
	if start < 0 || rows <= 0 {
		start = 0
	}
	for i := start; i < rec.Len(); i++ {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s", rec.Bars[i].Date.Format(model.DateFormat),
			num(cb.Price[i], 2), num(cb.AvgPrice[i], 2), num(cb.Surplus[i], 0))
		for _, n := range windows {
			fmt.Fprintf(tw, "\t%s", num(rec.Slopes[n][i], 4))
		}
		fmt.Fprintln(tw, "\t")
	}
	return tw.Flush()
}

func num(v float64, prec int) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}
