package main

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TrendScope/internal/analyzer"
	"TrendScope/internal/notifier"
	"TrendScope/internal/recorder"
	"TrendScope/internal/report"
)

func runCmd(a *app) *cobra.Command {
	var notify bool
	cmd := &cobra.Command{
		Use:   "run [TICKER...]",
		Short: "Fetch new bars, recompute the slopes and print the report",
		Long: "Updates every ticker of the universe (or only the given TICKER.EXCHANGE keys),\n" +
			"persists the recomputed series and prints the recommendation table.",
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe()
			if err != nil {
				return err
			}
			tickers, err := a.tickers(u, args)
			if err != nil {
				return err
			}
			an, err := a.analyzer(nil)
			if err != nil {
				return err
			}
			rec := a.recorder()
			defer rec.Close()

			run := recorder.NewRun(time.Now())
			run.Tickers = len(tickers)
			results, err := an.Run(cmd.Context(), tickers)
			run.FinishedAt = time.Now()
			if err != nil {
				return err
			}
			run.Signals = analyzer.Signals(results)
			run.Failures = analyzer.Failures(results)
			for _, r := range results {
				if r.Err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Ticker.Key(), r.Err)
				}
			}
			if err := rec.RecordRun(run); err != nil {
				log.Warn().Err(err).Msg("record run")
			}

			window := a.cfg.Analysis.SignalWindow
			rows := report.Build(run.Signals)
			if err := report.Render(cmd.OutOrStdout(), rows, window); err != nil {
				return err
			}
			if !notify {
				return nil
			}
			tn := a.telegram()
			if tn == nil {
				return fmt.Errorf("--notify needs telegram.bot_token and telegram.chat_id")
			}
			return tn.SendWithRetry(cmd.Context(), notifier.FormatReport(rows, window, run.FinishedAt), 3)
		},
	}
	cmd.Flags().BoolVar(&notify, "notify", false, "also send the report via Telegram")
	return cmd
}

func reportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the recommendation table from stored data without fetching",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.universe()
			if err != nil {
				return err
			}
			an, err := a.analyzer(nil)
			if err != nil {
				return err
			}
			results, err := an.Evaluate(cmd.Context(), u.Tickers())
			if err != nil {
				return err
			}
			return report.Render(cmd.OutOrStdout(), report.Build(analyzer.Signals(results)), a.cfg.Analysis.SignalWindow)
		},
	}
}
