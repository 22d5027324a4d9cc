package worker

import (
	"context"
	"log/slog"
	"time"
)

// DayAdvancer defines the tracker operation needed by the advance worker.
type DayAdvancer interface {
	AdvanceDay(ctx context.Context) (int, error)
}

// DayAdvanceWorker periodically advances the simulated day clock.
type DayAdvanceWorker struct {
	tracker  DayAdvancer
	interval time.Duration
}

// NewDayAdvanceWorker creates a worker that advances the clock every interval.
func NewDayAdvanceWorker(tracker DayAdvancer, interval time.Duration) *DayAdvanceWorker {
	return &DayAdvanceWorker{
		tracker:  tracker,
		interval: interval,
	}
}

// Run starts the worker loop. Blocks until ctx is cancelled.
// Does NOT advance immediately on start.
func (w *DayAdvanceWorker) Run(ctx context.Context) {
	slog.Info("worker started",
		"component", "worker",
		"worker", "day-advance",
		"interval", w.interval.String(),
	)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped",
				"component", "worker",
				"worker", "day-advance",
				"reason", "context_cancelled",
			)
			return
		case <-ticker.C:
			w.advance(ctx)
		}
	}
}

// advance executes a single tick.
func (w *DayAdvanceWorker) advance(ctx context.Context) {
	start := time.Now()

	day, err := w.tracker.AdvanceDay(ctx)
	if err != nil {
		// Check for graceful shutdown
		if ctx.Err() != nil {
			return
		}
		slog.Error("day advance failed",
			"component", "worker",
			"action", "advance_failed",
			"error", err,
		)
		return
	}

	slog.Info("day advanced",
		"component", "worker",
		"action", "advance_complete",
		"day", day,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
