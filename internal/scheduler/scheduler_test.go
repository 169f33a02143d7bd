package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEveryRunsImmediatelyAndRepeats(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	var runs atomic.Int32
	done := make(chan struct{})
	go func() {
		Every(ctx, 10*time.Millisecond, "test", func(context.Context) error {
			if runs.Add(1) == 3 {
				cancel()
			}
			return nil
		}, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.GreaterOrEqual(t, runs.Load(), int32(3))
}

func TestEveryLogsTaskErrors(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	ctx, cancel := context.WithCancel(t.Context())

	Every(ctx, time.Hour, "sync", func(context.Context) error {
		cancel()
		return errors.New("destination down")
	}, zap.New(core))

	entries := logs.FilterMessage("task failed").All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "sync", entries[0].LoggerName)
		assert.Equal(t, "destination down", entries[0].ContextMap()["error"])
	}
}
