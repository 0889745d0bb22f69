package recorder

import (
	"time"

	"github.com/google/uuid"

	"TrendScope/internal/model"
)

// Run is the outcome of one analysis run over the universe.
type Run struct {
	ID         uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Tickers    int
	Failures   int
	Signals    []model.Signal
}

// NewRun starts a run record with a fresh ID.
func NewRun(started time.Time) *Run {
	return &Run{ID: uuid.New(), StartedAt: started}
}

// Entry is a recorded signal together with the run that produced it.
type Entry struct {
	RunID      uuid.UUID
	RecordedAt time.Time
	Signal     model.Signal
}

// Recorder persists signal history for later review.
type Recorder interface {
	RecordRun(run *Run) error
	History(ticker string, limit int) ([]Entry, error)
	Close() error
}
