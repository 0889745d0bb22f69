package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"TrendScope/internal/analyzer"
	"TrendScope/internal/model"
	"TrendScope/internal/notifier"
	"TrendScope/internal/recorder"
	"TrendScope/internal/report"
	"TrendScope/internal/universe"
)

// DefaultRunCron runs after the European close on weekdays.
const DefaultRunCron = "0 30 22 * * 1-5"

// ErrRunInProgress is returned when a run is requested while one is active.
var ErrRunInProgress = errors.New("analysis run already in progress")

// DurationRecorder observes run durations in seconds.
type DurationRecorder interface {
	RecordRunDuration(seconds float64)
}

// Scheduler runs the analysis on a cron schedule, records each run and
// delivers the recommendation report.
type Scheduler struct {
	Cron      *cron.Cron
	Analyzer  *analyzer.Analyzer
	Universe  *universe.Universe
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Durations DurationRecorder
	Ctx       context.Context
	Now       func() time.Time

	running atomic.Bool
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, an *analyzer.Analyzer, u *universe.Universe, n notifier.Notifier, rec recorder.Recorder) *Scheduler {
	if n == nil {
		n = notifier.Discard{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Analyzer: an,
		Universe: u,
		Notifier: n,
		Recorder: rec,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// Register schedules the analysis run. An empty expression uses DefaultRunCron.
func (s *Scheduler) Register(runCron string) error {
	if runCron == "" {
		runCron = DefaultRunCron
	}
	if _, err := s.Cron.AddFunc(runCron, s.runTask); err != nil {
		return fmt.Errorf("register run task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running task to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) runTask() {
	if _, err := s.RunNow(); err != nil {
		if errors.Is(err, ErrRunInProgress) {
			log.Warn().Msg("previous run still active, skipping")
			return
		}
		log.Error().Err(err).Msg("scheduled run")
	}
}

// RunNow updates every ticker of the universe, records the run and sends the
// report. Overlapping calls fail with ErrRunInProgress.
func (s *Scheduler) RunNow() (*recorder.Run, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	tickers := s.Universe.Tickers()
	run := recorder.NewRun(s.Now())
	run.Tickers = len(tickers)
	log.Info().Str("run", run.ID.String()).Int("tickers", len(tickers)).Msg("running analysis")

	results, err := s.Analyzer.Run(s.Ctx, tickers)
	run.FinishedAt = s.Now()
	run.Signals = analyzer.Signals(results)
	run.Failures = analyzer.Failures(results)
	if s.Durations != nil {
		s.Durations.RecordRunDuration(run.FinishedAt.Sub(run.StartedAt).Seconds())
	}
	if err != nil {
		return run, fmt.Errorf("analysis run: %w", err)
	}
	log.Info().Str("run", run.ID.String()).Int("failures", run.Failures).
		Dur("took", run.FinishedAt.Sub(run.StartedAt)).Msg("analysis finished")

	if err := s.Recorder.RecordRun(run); err != nil {
		log.Error().Err(err).Msg("record run")
	}

	msg := notifier.FormatReport(report.Build(run.Signals), s.Analyzer.Options.SignalWindow, run.FinishedAt)
	if run.Failures > 0 {
		msg += fmt.Sprintf("\n⚠️ %d of %d tickers failed to update", run.Failures, run.Tickers)
	}
	s.trySend(msg)
	return run, nil
}

// HandleCommand processes a chat command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return help
	}
	switch fields[0] {
	case "/run":
		// RunNow delivers the report itself.
		if _, err := s.RunNow(); err != nil {
			return "❌ " + err.Error()
		}
		return ""
	case "/report":
		results, err := s.Analyzer.Evaluate(ctx, s.Universe.Tickers())
		if err != nil {
			return "❌ " + err.Error()
		}
		return notifier.FormatReport(report.Build(analyzer.Signals(results)), s.Analyzer.Options.SignalWindow, s.Now())
	case "/signal":
		if len(fields) != 2 {
			return "usage: /signal TICKER.EXCHANGE"
		}
		t, err := s.Universe.Lookup(fields[1])
		if err != nil {
			return "❌ " + err.Error()
		}
		results, err := s.Analyzer.Evaluate(ctx, []model.Ticker{t})
		if err != nil || len(results) == 0 {
			return "❌ evaluation cancelled"
		}
		return notifier.FormatSignal(results[0].Signal)
	default:
		return help
	}
}

const help = "Commands:\n/run - update all tickers and send the report\n/report - report from stored data\n/signal TICKER.EXCHANGE - one ticker's signal"

func (s *Scheduler) trySend(text string) {
	if err := notifier.Deliver(s.Ctx, s.Notifier, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
