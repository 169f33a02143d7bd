package sync

import (
	"context"
	"fmt"
	stdsync "sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"applysync/internal/domain"
)

const DefaultDetailConcurrency = 30

// Reconciler turns destination cross-references not yet in the ledger into
// ledger entries.
type Reconciler struct {
	dest        Destination
	concurrency int
	log         *zap.Logger
}

func NewReconciler(dest Destination, concurrency int, log *zap.Logger) *Reconciler {
	if concurrency <= 0 {
		concurrency = DefaultDetailConcurrency
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Reconciler{dest: dest, concurrency: concurrency, log: log.Named("reconcile")}
}

// Reconcile returns entries for every cross-reference whose id is absent from
// existing, in listing order. Any listing or detail failure aborts the whole
// step and no entries are returned.
func (r *Reconciler) Reconcile(ctx context.Context, existing []domain.LedgerEntry, targets EligibleTargets) ([]domain.LedgerEntry, error) {
	refs, err := r.dest.ListCrossReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("reconcile: list cross references: %w", err)
	}

	known := make(map[string]bool, len(existing)+len(refs))
	for _, e := range existing {
		known[e.ID] = true
	}
	var fresh []domain.CrossReference
	applicants := map[string]bool{}
	for _, ref := range refs {
		if ref.ID == "" || known[ref.ID] {
			continue
		}
		known[ref.ID] = true
		fresh = append(fresh, ref)
		applicants[ref.ApplicantID] = true
	}
	if len(fresh) == 0 {
		r.log.Debug("ledger up to date", zap.Int("cross_references", len(refs)))
		return nil, nil
	}

	var (
		mu      stdsync.Mutex
		details = make(map[string]domain.ApplicantDetail, len(applicants))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for id := range applicants {
		g.Go(func() error {
			d, err := r.dest.FetchApplicantDetail(gctx, id)
			if err != nil {
				return fmt.Errorf("applicant %s: %w", id, err)
			}
			mu.Lock()
			details[id] = d
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	entries := make([]domain.LedgerEntry, 0, len(fresh))
	untagged := 0
	for _, ref := range fresh {
		d := details[ref.ApplicantID]
		jobKey, _ := targets.Key(ref.SlotID)
		sourceID := ExtractSourceApplicationID(d)
		if sourceID == "" {
			untagged++
		}
		entries = append(entries, domain.LedgerEntry{
			ID:                     ref.ID,
			ApplyDate:              d.ApplyDate,
			NormalizedEmail:        NormalizeKey(d.Email),
			JobKey:                 jobKey,
			SourceApplicationID:    sourceID,
			DestinationApplicantID: ref.ApplicantID,
		})
	}
	r.log.Info("ledger reconciled",
		zap.Int("new_entries", len(entries)),
		zap.Int("applicants_fetched", len(details)),
		zap.Int("untagged", untagged))
	return entries, nil
}
