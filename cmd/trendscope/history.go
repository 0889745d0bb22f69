package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"TrendScope/internal/model"
	"TrendScope/internal/recorder"
)

func historyCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history TICKER",
		Short: "Print the recorded signals of a ticker, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := recorder.NewSQLiteRecorder(a.cfg.Storage.SQLitePath)
			if err != nil {
				return err
			}
			defer rec.Close()
			entries, err := rec.History(args[0], limit)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "Recorded\tAs of\tWindow\tLabel\tSlope")
			for _, e := range entries {
				asOf := "-"
				if !e.Signal.AsOf.IsZero() {
					asOf = e.Signal.AsOf.Format(model.DateFormat)
				}
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", e.RecordedAt.Format("2006-01-02 15:04"),
					asOf, e.Signal.Window, e.Signal.Label, num(e.Signal.Latest, 4))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries (0 for all)")
	return cmd
}
