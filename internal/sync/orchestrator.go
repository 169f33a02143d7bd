package sync

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"applysync/internal/domain"
	"applysync/internal/store"
)

// Config tunes a run. Zero values fall back to the package defaults.
type Config struct {
	DetailConcurrency   int
	SourceConcurrency   int
	TransferConcurrency int
	SettleDelay         time.Duration
}

func DefaultConfig() Config {
	return Config{
		DetailConcurrency:   DefaultDetailConcurrency,
		SourceConcurrency:   DefaultSourceConcurrency,
		TransferConcurrency: DefaultTransferConcurrency,
		SettleDelay:         DefaultSettleDelay,
	}
}

// Orchestrator sequences one sync run and is the only component that reads
// or writes persistent state.
type Orchestrator struct {
	kv     KV
	source Source
	dest   Destination
	cfg    Config
	log    *zap.Logger

	newRunID func() string
	sleep    func(ctx context.Context, d time.Duration) error
}

func NewOrchestrator(kv KV, source Source, dest Destination, cfg Config, log *zap.Logger) *Orchestrator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Orchestrator{
		kv:       kv,
		source:   source,
		dest:     dest,
		cfg:      cfg,
		log:      log,
		newRunID: uuid.NewString,
		sleep:    sleepCtx,
	}
}

type runState struct {
	ledger []domain.LedgerEntry
	cursor domain.RunCursor
	queue  []domain.TransferError
}

func (o *Orchestrator) load(ctx context.Context) (runState, error) {
	var st runState
	if _, err := o.kv.Get(ctx, store.KeyLedger, &st.ledger); err != nil {
		return st, fmt.Errorf("load ledger: %w", err)
	}
	if _, err := o.kv.Get(ctx, store.KeyCursor, &st.cursor); err != nil {
		return st, fmt.Errorf("load cursor: %w", err)
	}
	if _, err := o.kv.Get(ctx, store.KeyErrorQueue, &st.queue); err != nil {
		return st, fmt.Errorf("load error queue: %w", err)
	}
	return st, nil
}

// Run performs one sync. New ledger entries are persisted before any
// transfer starts; the error queue and cursor are persisted only once the
// transfer step has finished without a fatal error.
func (o *Orchestrator) Run(ctx context.Context) (domain.RunStats, error) {
	stats := domain.RunStats{RunID: o.newRunID()}
	log := o.log.With(zap.String("run_id", stats.RunID))
	log.Info("run started")

	st, err := o.load(ctx)
	if err != nil {
		return stats, err
	}

	slots, err := o.dest.ListOpenSlots(ctx)
	if err != nil {
		return stats, fmt.Errorf("list open slots: %w", err)
	}
	targets := BuildEligibleTargets(slots)
	log.Info("eligible slots", zap.Int("count", targets.Len()))

	newEntries, err := NewReconciler(o.dest, o.cfg.DetailConcurrency, log).Reconcile(ctx, st.ledger, targets)
	if err != nil {
		return stats, err
	}
	if len(newEntries) > 0 {
		st.ledger = append(st.ledger, newEntries...)
		if err := o.kv.Set(ctx, store.KeyLedger, st.ledger); err != nil {
			return stats, fmt.Errorf("save ledger: %w", err)
		}
	}
	stats.LedgerTotal = len(st.ledger)
	stats.LedgerNew = len(newEntries)

	candidates, err := fetchCandidates(ctx, o.source, st.cursor, st.ledger, targets, o.cfg.SourceConcurrency, log)
	if err != nil {
		return stats, err
	}

	pipeline := NewPipeline(o.source, o.dest, targets, PipelineConfig{
		Concurrency: o.cfg.TransferConcurrency,
		SettleDelay: o.cfg.SettleDelay,
	}, log)
	pipeline.sleep = o.sleep

	remaining, err := NewErrorQueue(pipeline, log).Resolve(ctx, st.queue)
	if err != nil {
		return stats, err
	}
	fresh, err := pipeline.Transfer(ctx, candidates)
	if err != nil {
		return stats, err
	}
	stats.CandidatesPosted = len(candidates)

	queue := make([]domain.TransferError, 0, len(remaining)+len(fresh))
	queue = append(queue, remaining...)
	queue = append(queue, fresh...)
	if err := o.kv.Set(ctx, store.KeyErrorQueue, queue); err != nil {
		return stats, fmt.Errorf("save error queue: %w", err)
	}
	stats.ErrorsRemaining = len(queue)

	if len(candidates) > 0 {
		next := domain.RunCursor{
			LastApplicationID:        candidates[0].ID,
			LastApplicationCreatedAt: candidates[0].CreatedAt,
		}
		if advances(st.cursor, next) {
			if err := o.kv.Set(ctx, store.KeyCursor, next); err != nil {
				return stats, fmt.Errorf("save cursor: %w", err)
			}
		} else {
			log.Warn("newest candidate does not advance the cursor, cursor kept",
				zap.String("cursor", st.cursor.LastApplicationCreatedAt),
				zap.String("candidate", next.LastApplicationCreatedAt))
		}
	}

	log.Info("run finished",
		zap.Int("ledger_total", stats.LedgerTotal),
		zap.Int("ledger_new", stats.LedgerNew),
		zap.Int("candidates_posted", stats.CandidatesPosted),
		zap.Int("errors_remaining", stats.ErrorsRemaining))
	return stats, nil
}

// advances reports whether next may replace prev without moving the cursor
// backwards in time.
// A next cursor with an unparseable timestamp never replaces prev.
func advances(prev, next domain.RunCursor) bool {
	n, err := domain.ParseCreatedAt(next.LastApplicationCreatedAt)
	if err != nil {
		return false
	}
	if prev.IsZero() || prev.LastApplicationCreatedAt == "" {
		return true
	}
	p, err := domain.ParseCreatedAt(prev.LastApplicationCreatedAt)
	if err != nil {
		return true
	}
	return !n.Before(p)
}
