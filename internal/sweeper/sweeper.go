// Package sweeper runs periodic cleanup jobs.
package sweeper

import (
	"context"
	"log/slog"
	"time"
)

// Func removes expired entries as of now and reports how many went away.
type Func func(ctx context.Context, now time.Time) (int, error)

// Sweeper calls a Func on a fixed interval.
type Sweeper struct {
	name     string
	interval time.Duration
	fn       Func
	logger   *slog.Logger
}

// New creates a sweeper. name labels its log lines.
func New(name string, interval time.Duration, fn Func, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{name: name, interval: interval, fn: fn, logger: logger}
}

// Run sweeps once immediately and then every interval until ctx is done.
func (s *Sweeper) Run(ctx context.Context) error {
	s.logger.Info("sweeper started", slog.String("name", s.name), slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped", slog.String("name", s.name))
			return nil
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	n, err := s.fn(ctx, time.Now())
	if err != nil {
		s.logger.Error("sweep failed", slog.String("name", s.name), slog.String("error", err.Error()))
		return
	}
	if n > 0 {
		s.logger.Info("swept expired entries", slog.String("name", s.name), slog.Int("count", n))
	}
}
