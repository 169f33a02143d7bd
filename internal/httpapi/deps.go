package httpapi

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"

	"applysync/internal/events"
	"applysync/internal/store"
)

type RunLister interface {
	ListRuns(ctx context.Context, limit int) ([]store.Run, error)
}

type Deps struct {
	Runs    RunLister
	Tracker *Tracker
	Hub     *events.Hub

	CfgVal      *atomic.Value // stores config.Config
	UserCfgPath string

	// RunSync performs one run; POST /sync/run calls it in the background
	// with BaseCtx.
	RunSync func(ctx context.Context) error
	BaseCtx context.Context

	Log *zap.Logger
}
