package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"TrendScope/internal/calculator"
	"TrendScope/internal/model"
	"TrendScope/internal/strategy"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Provider      string        `yaml:"provider"` // yahoo or rest
		BaseURL       string        `yaml:"base_url"`
		APIKey        string        `yaml:"api_key"`
		Begin         string        `yaml:"begin"`
		Proxy         string        `yaml:"proxy"`
		RatePerSecond float64       `yaml:"rate_per_second"`
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"data_source"`
	Storage struct {
		DataDir      string `yaml:"data_dir"`
		UniverseFile string `yaml:"universe_file"`
		TxnFile      string `yaml:"txn_file"`
		TxnStateFile string `yaml:"txn_state_file"`
		SQLitePath   string `yaml:"sqlite_path"`
	} `yaml:"storage"`
	Analysis struct {
		PriceProxy      model.PriceProxy    `yaml:"price_proxy"`
		CostBasisAnchor calculator.Anchor   `yaml:"cost_basis_anchor"`
		Windows         []int               `yaml:"windows"`
		SignalWindow    int                 `yaml:"signal_window"`
		Thresholds      strategy.Thresholds `yaml:"thresholds"`
		Workers         int                 `yaml:"workers"`
	} `yaml:"analysis"`
	Schedule struct {
		RunCron string `yaml:"run_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"TRENDSCOPE_PROVIDER":       &c.DataSource.Provider,
		"TRENDSCOPE_BASE_URL":       &c.DataSource.BaseURL,
		"TRENDSCOPE_API_KEY":        &c.DataSource.APIKey,
		"TRENDSCOPE_BEGIN":          &c.DataSource.Begin,
		"TRENDSCOPE_DATA_DIR":       &c.Storage.DataDir,
		"TRENDSCOPE_UNIVERSE_FILE":  &c.Storage.UniverseFile,
		"TRENDSCOPE_TXN_FILE":       &c.Storage.TxnFile,
		"TRENDSCOPE_SQLITE_PATH":    &c.Storage.SQLitePath,
		"TRENDSCOPE_RUN_CRON":       &c.Schedule.RunCron,
		"TRENDSCOPE_METRICS_ADDR":   &c.Metrics.Addr,
		"TRENDSCOPE_LOG_LEVEL":      &c.Logging.Level,
		"TRENDSCOPE_LOG_FORMAT":     &c.Logging.Format,
		"TRENDSCOPE_TELEGRAM_TOKEN": &c.Telegram.BotToken,
		"TRENDSCOPE_TELEGRAM_CHAT":  &c.Telegram.ChatID,
	}
	for env, dst := range str {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" && c.DataSource.Proxy == "" {
		c.DataSource.Proxy = v
	}
	if v := os.Getenv("TRENDSCOPE_PRICE_PROXY"); v != "" {
		c.Analysis.PriceProxy = model.PriceProxy(v)
	}
	if v := os.Getenv("TRENDSCOPE_WINDOWS"); v != "" {
		windows, err := parseInts(v)
		if err != nil {
			return fmt.Errorf("TRENDSCOPE_WINDOWS: %w", err)
		}
		c.Analysis.Windows = windows
	}
	if v := os.Getenv("TRENDSCOPE_SIGNAL_WINDOW"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRENDSCOPE_SIGNAL_WINDOW: %w", err)
		}
		c.Analysis.SignalWindow = n
	}
	if v := os.Getenv("TRENDSCOPE_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("TRENDSCOPE_WORKERS: %w", err)
		}
		c.Analysis.Workers = n
	}
	return nil
}

func parseInts(s string) ([]int, error) {
	var out []int
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (c *Config) applyDefaults() {
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.DataSource.Begin == "" {
		c.DataSource.Begin = "2021-01-01"
	}
	if c.DataSource.RatePerSecond == 0 {
		c.DataSource.RatePerSecond = 2
	}
	if c.DataSource.Timeout == 0 {
		c.DataSource.Timeout = 30 * time.Second
	}
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = "yfdata"
	}
	if c.Storage.UniverseFile == "" {
		c.Storage.UniverseFile = "list.txt"
	}
	if c.Storage.TxnFile == "" {
		c.Storage.TxnFile = "txn.txt"
	}
	if c.Storage.TxnStateFile == "" {
		c.Storage.TxnStateFile = c.Storage.DataDir + "/data.csv"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = c.Storage.DataDir + "/history.db"
	}
	if c.Analysis.PriceProxy == "" {
		c.Analysis.PriceProxy = model.PriceOHLCAverage
	}
	if c.Analysis.CostBasisAnchor == "" {
		c.Analysis.CostBasisAnchor = calculator.AnchorInception
	}
	if len(c.Analysis.Windows) == 0 {
		c.Analysis.Windows = []int{60, 120, 360}
	}
	if c.Analysis.SignalWindow == 0 {
		c.Analysis.SignalWindow = 60
	}
	if c.Analysis.Thresholds == (strategy.Thresholds{}) {
		c.Analysis.Thresholds = strategy.DefaultThresholds
	}
	if c.Analysis.Workers == 0 {
		c.Analysis.Workers = 1
	}
	if c.Schedule.RunCron == "" {
		c.Schedule.RunCron = "0 30 22 * * 1-5"
	}
	if c.Metrics.Addr == "" {
		c.Metrics.Addr = ":9108"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks that the analysis settings are usable.
func (c *Config) Validate() error {
	switch c.DataSource.Provider {
	case "yahoo":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for the rest provider")
		}
	default:
		return fmt.Errorf("data_source.provider must be yahoo or rest, got %q", c.DataSource.Provider)
	}
	if _, err := c.BeginDate(); err != nil {
		return fmt.Errorf("data_source.begin: %w", err)
	}
	if c.DataSource.RatePerSecond < 0 {
		return fmt.Errorf("data_source.rate_per_second must not be negative")
	}
	if !c.Analysis.PriceProxy.Valid() {
		return fmt.Errorf("analysis.price_proxy must be %s or %s, got %q",
			model.PriceOHLCAverage, model.PriceAdjClose, c.Analysis.PriceProxy)
	}
	if !c.Analysis.CostBasisAnchor.Valid() {
		return fmt.Errorf("analysis.cost_basis_anchor must be %s or %s, got %q",
			calculator.AnchorInception, calculator.AnchorWindow, c.Analysis.CostBasisAnchor)
	}
	seen := map[int]bool{}
	for _, n := range c.Analysis.Windows {
		if n < 2 {
			return fmt.Errorf("analysis.windows: window %d must be at least 2", n)
		}
		if seen[n] {
			return fmt.Errorf("analysis.windows: duplicate window %d", n)
		}
		seen[n] = true
	}
	if !seen[c.Analysis.SignalWindow] {
		return fmt.Errorf("analysis.signal_window %d is not one of analysis.windows", c.Analysis.SignalWindow)
	}
	if !c.Analysis.Thresholds.Valid() {
		return fmt.Errorf("analysis.thresholds must satisfy 0 < strong <= medium <= weak <= 1")
	}
	if c.Analysis.Workers < 1 {
		return fmt.Errorf("analysis.workers must be positive")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	return nil
}

// BeginDate parses DataSource.Begin.
func (c *Config) BeginDate() (time.Time, error) {
	return model.ParseDate(c.DataSource.Begin)
}

// TelegramEnabled reports whether report delivery is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
