package game

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Notifier delivers engine events to players. Calls come from scheduler
// goroutines, possibly for several communities at once.
type Notifier interface {
	RoundStarted(ctx context.Context, ev RoundStart)
	Hint(ctx context.Context, ev HintEvent)
	TimedOut(ctx context.Context, ev TimeoutEvent)
}

// Scheduler is the periodic driver that advances every community's timers.
type Scheduler struct {
	engine   *Engine
	notify   Notifier
	interval time.Duration
	parallel int
	log      zerolog.Logger
}

func NewScheduler(e *Engine, n Notifier, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Scheduler{engine: e, notify: n, interval: interval, parallel: 8, log: e.log}
}

// Run ticks until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	s.log.Info().Dur("interval", s.interval).Msg("scheduler started")
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return ctx.Err()
		case now := <-ticker.C:
			s.TickAll(ctx, now)
		}
	}
}

// TickAll advances every registered community once. A community whose gate
// is held is skipped until the next tick.
func (s *Scheduler) TickAll(ctx context.Context, now time.Time) {
	var g errgroup.Group
	g.SetLimit(s.parallel)
	for _, id := range s.engine.Communities() {
		id := id
		g.Go(func() error {
			events, err := s.engine.Tick(ctx, id, now)
			if errors.Is(err, ErrBusy) {
				s.log.Debug().Str("community", id).Msg("community busy, skipping tick")
				return nil
			}
			if err != nil {
				s.log.Error().Err(err).Str("community", id).Msg("tick failed")
				return nil
			}
			s.dispatch(ctx, events)
			return nil
		})
	}
	g.Wait()
}

func (s *Scheduler) dispatch(ctx context.Context, events []Event) {
	for _, ev := range events {
		switch ev := ev.(type) {
		case RoundStart:
			s.notify.RoundStarted(ctx, ev)
		case HintEvent:
			s.notify.Hint(ctx, ev)
		case TimeoutEvent:
			s.notify.TimedOut(ctx, ev)
		}
	}
}
