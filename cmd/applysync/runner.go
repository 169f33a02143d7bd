package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"go.uber.org/zap"

	"applysync/internal/ats/jazzhr"
	"applysync/internal/ats/startupjobs"
	"applysync/internal/ats/util"
	"applysync/internal/config"
	"applysync/internal/domain"
	"applysync/internal/events"
	"applysync/internal/httpapi"
	"applysync/internal/secrets"
	"applysync/internal/store"
	appsync "applysync/internal/sync"
)

const (
	dbFileName   = "applysync.db"
	lockFileName = "applysync.lock"
)

var (
	errRunInProgress = errors.New("another sync run is in progress")
	errRunnerClosed  = errors.New("runner is closed")
)

// runner performs sync runs against one data directory. It holds the file
// lock for the duration of each run so separate processes never overlap.
type runner struct {
	cfg     config.Config
	db      *store.DB
	lock    *flock.Flock
	tracker *httpapi.Tracker
	hub     *events.Hub
	log     *zap.Logger

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup

	// token is swapped in tests.
	token func(name string) (string, error)
}

func openRunner(cfg config.Config, dataDir string, log *zap.Logger) (*runner, error) {
	db, err := store.Open(filepath.Join(dataDir, dbFileName))
	if err != nil {
		return nil, fmt.Errorf("open state db: %w", err)
	}
	return &runner{
		cfg:     cfg,
		db:      db,
		lock:    flock.New(filepath.Join(dataDir, lockFileName)),
		tracker: &httpapi.Tracker{},
		hub:     events.NewHub(),
		log:     log,
		token:   secrets.Token,
	}, nil
}

// Close waits for an in-flight run to finish recording, then closes the
// state db. Later runOnce calls fail with errRunnerClosed.
func (r *runner) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	r.inflight.Wait()
	return r.db.Close()
}

func (r *runner) enter() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	r.inflight.Add(1)
	return true
}

func (r *runner) orchestrator() (*appsync.Orchestrator, error) {
	sjToken, err := r.token(secrets.StartupJobs)
	if err != nil {
		return nil, err
	}
	jzToken, err := r.token(secrets.JazzHR)
	if err != nil {
		return nil, err
	}

	source := startupjobs.New(startupjobs.Config{
		BaseURL: r.cfg.Source.BaseURL,
		Token:   sjToken,
	}, util.NewHostLimiter(r.cfg.Source.RequestsPerSecond, r.cfg.Source.DetailConcurrency), r.log)
	dest := jazzhr.New(jazzhr.Config{
		BaseURL: r.cfg.Destination.BaseURL,
		Token:   jzToken,
	}, util.NewHostLimiter(r.cfg.Destination.RequestsPerSecond, r.cfg.Destination.DetailConcurrency), r.log)

	return appsync.NewOrchestrator(r.db, source, dest, appsync.Config{
		DetailConcurrency:   r.cfg.Destination.DetailConcurrency,
		SourceConcurrency:   r.cfg.Source.DetailConcurrency,
		TransferConcurrency: r.cfg.Transfer.Concurrency,
		SettleDelay:         r.cfg.Transfer.SettleDelay,
	}, r.log), nil
}

// runOnce performs one sync run and records it in the run history, failed
// runs included.
func (r *runner) runOnce(ctx context.Context) (domain.RunStats, error) {
	if !r.enter() {
		return domain.RunStats{}, errRunnerClosed
	}
	defer r.inflight.Done()

	if !r.tracker.Begin() {
		return domain.RunStats{}, errRunInProgress
	}
	ok, err := r.lock.TryLock()
	if err != nil {
		r.tracker.Finish(domain.RunStats{}, err)
		return domain.RunStats{}, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		r.tracker.Finish(domain.RunStats{}, errRunInProgress)
		return domain.RunStats{}, errRunInProgress
	}
	defer func() { _ = r.lock.Unlock() }()

	started := time.Now()
	r.hub.Publish(events.New(events.TypeRunStarted, "", nil))
	var stats domain.RunStats
	o, err := r.orchestrator()
	if err == nil {
		stats, err = o.Run(ctx)
	}
	r.tracker.Finish(stats, err)
	if name := rejectedToken(err); name != "" {
		r.log.Error("API token rejected, replace it with `applysync secrets set "+name+"`",
			zap.String("secret", name), zap.Error(err))
	}
	if err != nil {
		r.hub.Publish(events.New(events.TypeRunFailed, stats.RunID, map[string]string{"error": err.Error()}))
	} else {
		r.hub.Publish(events.New(events.TypeRunFinished, stats.RunID, stats))
	}

	rec := store.Run{RunStats: stats, StartedAt: started, FinishedAt: time.Now()}
	if rec.RunID == "" {
		rec.RunID = "failed-" + started.UTC().Format("20060102T150405.000")
	}
	if err != nil {
		rec.Error = err.Error()
	}
	// recorded even when ctx was cancelled
	recCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if recErr := r.db.RecordRun(recCtx, rec); recErr != nil {
		r.log.Warn("record run failed", zap.Error(recErr))
	}
	return stats, err
}

// rejectedToken names the secret whose API answered 401 or 403, if any.
func rejectedToken(err error) string {
	switch {
	case err == nil:
		return ""
	case jazzhr.IsUnauthorized(err):
		return secrets.JazzHR
	case startupjobs.IsUnauthorized(err):
		return secrets.StartupJobs
	}
	return ""
}
