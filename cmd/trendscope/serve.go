package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TrendScope/internal/metrics"
	"TrendScope/internal/notifier"
	"TrendScope/internal/scheduler"
)

func serveCmd(a *app) *cobra.Command {
	var runOnStart bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run scheduled analyses, answer Telegram commands and expose /metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			u, err := a.universe()
			if err != nil {
				return err
			}
			m := metrics.New()
			an, err := a.analyzer(m)
			if err != nil {
				return err
			}
			rec := a.recorder()
			defer rec.Close()

			var n notifier.Notifier = notifier.Discard{}
			tn := a.telegram()
			if tn != nil {
				n = tn
			}

			sched := scheduler.NewScheduler(ctx, an, u, n, rec)
			sched.Durations = m
			if err := sched.Register(a.cfg.Schedule.RunCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: a.cfg.Metrics.Addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("metrics server listening")
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error().Err(err).Msg("metrics server")
				}
			}()

			if tn != nil {
				go tn.StartPolling(ctx, sched.HandleCommand)
				log.Info().Msg("telegram polling started")
			}
			if runOnStart {
				log.Info().Msg("running analysis on start")
				go sched.RunNow()
			}

			log.Info().Int("tickers", u.Len()).Str("cron", a.cfg.Schedule.RunCron).Msg("trendscope is running, press Ctrl+C to stop")
			<-ctx.Done()

			log.Info().Msg("shutdown signal received, stopping...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().BoolVar(&runOnStart, "run-on-start", false, "run the analysis immediately")
	return cmd
}
