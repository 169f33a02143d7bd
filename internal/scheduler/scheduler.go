package scheduler

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context) error

// Every runs task immediately and then on each tick until ctx is done. Runs
// never overlap; ticks missed while a run is in progress are dropped.
func Every(ctx context.Context, interval time.Duration, name string, task Task, log *zap.Logger) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named(name)

	run := func() {
		start := time.Now()
		if err := task(ctx); err != nil {
			log.Error("task failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
			return
		}
		log.Debug("task done", zap.Duration("elapsed", time.Since(start)))
	}

	t := time.NewTicker(interval)
	defer t.Stop()

	run()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			run()
		}
	}
}
