package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"TrendScope/internal/analyzer"
	"TrendScope/internal/calculator"
	"TrendScope/internal/collector"
	"TrendScope/internal/config"
	"TrendScope/internal/logger"
	"TrendScope/internal/model"
	"TrendScope/internal/notifier"
	"TrendScope/internal/recorder"
	"TrendScope/internal/store"
	"TrendScope/internal/universe"
)

// app carries the loaded configuration to the subcommands.
type app struct {
	cfgPath string
	cfg     *config.Config
}

// Execute builds the command tree and runs it.
func Execute(ctx context.Context) error {
	root := newRootCmd()
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}

	root := &cobra.Command{
		Use:           "trendscope",
		Short:         "Rolling-window trend signals for a personal equity universe",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.cfgPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("config validation: %w", err)
			}
			if err := logger.Init(cfg.Logging.Level, cfg.Logging.Format); err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.PersistentFlags().StringVar(&a.cfgPath, "config", defaultPath, "path to the YAML config file")

	root.AddCommand(
		runCmd(a),
		reportCmd(a),
		showCmd(a),
		serveCmd(a),
		txnCmd(a),
		historyCmd(a),
		universeCmd(a),
	)
	return root
}

func (a *app) universe() (*universe.Universe, error) {
	return universe.Load(a.cfg.Storage.UniverseFile)
}

// tickers resolves keys against u, or returns the whole universe when keys is
// empty.
func (a *app) tickers(u *universe.Universe, keys []string) ([]model.Ticker, error) {
	if len(keys) == 0 {
		return u.Tickers(), nil
	}
	out := make([]model.Ticker, 0, len(keys))
	for _, k := range keys {
		t, err := u.Lookup(k)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (a *app) fetcher() collector.Fetcher {
	ds := a.cfg.DataSource
	var f collector.Fetcher
	switch ds.Provider {
	case "rest":
		f = collector.NewRESTFetcher(ds.BaseURL, ds.APIKey, ds.Proxy, ds.Timeout)
	default:
		f = collector.NewYahooFetcher(ds.BaseURL, ds.Proxy, ds.Timeout)
	}
	log.Debug().Str("provider", f.Name()).Msg("data source")
	return collector.NewGuarded(f, collector.GuardOptions{RatePerSecond: ds.RatePerSecond})
}

func (a *app) analyzer(m analyzer.Metrics) (*analyzer.Analyzer, error) {
	st, err := store.NewFileStore(a.cfg.Storage.DataDir)
	if err != nil {
		return nil, err
	}
	begin, err := a.cfg.BeginDate()
	if err != nil {
		return nil, err
	}
	an := a.cfg.Analysis
	opts := analyzer.Options{
		Windows:      an.Windows,
		SignalWindow: an.SignalWindow,
		Slope:        calculator.SlopeOptions{Proxy: an.PriceProxy, Anchor: an.CostBasisAnchor},
		Thresholds:   an.Thresholds,
		Workers:      an.Workers,
	}
	return analyzer.New(st, collector.NewCollector(a.fetcher(), begin), m, opts), nil
}

// recorder opens the SQLite history, falling back to a no-op recorder when it
// cannot be opened.
func (a *app) recorder() recorder.Recorder {
	if a.cfg.Storage.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(a.cfg.Storage.SQLitePath)
	if err != nil {
		log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		return recorder.NewNoopRecorder()
	}
	return sr
}

func (a *app) telegram() *notifier.TelegramNotifier {
	if !a.cfg.TelegramEnabled() {
		return nil
	}
	return notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID, a.cfg.DataSource.Proxy)
}
