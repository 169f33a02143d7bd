package sync

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"applysync/internal/domain"
)

const DefaultSourceConcurrency = 20

// SelectCandidates keeps the summaries that still need a transfer: they
// name an offer matching an eligible slot, are not the cursor application
// itself and are not already recorded in the ledger.
func SelectCandidates(summaries []domain.SourceApplication, cursor domain.RunCursor, ledger []domain.LedgerEntry, targets EligibleTargets) []domain.SourceApplication {
	transferred := make(map[string]bool, len(ledger))
	for _, e := range ledger {
		if e.SourceApplicationID != "" {
			transferred[e.SourceApplicationID] = true
		}
	}

	var out []domain.SourceApplication
	for _, s := range summaries {
		switch {
		case s.OfferTitle == "":
		case cursor.LastApplicationID != "" && s.ID == cursor.LastApplicationID:
		case transferred[s.ID]:
		case !targets.Contains(NormalizeKey(s.OfferTitle)):
		default:
			out = append(out, s)
		}
	}
	return out
}

// hydrate fetches full records for the selected summaries and returns them
// newest first. A detail without an offer title keeps the summary's.
func hydrate(ctx context.Context, source Source, summaries []domain.SourceApplication, concurrency int) ([]domain.SourceApplication, error) {
	if concurrency <= 0 {
		concurrency = DefaultSourceConcurrency
	}
	out := make([]domain.SourceApplication, len(summaries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, s := range summaries {
		g.Go(func() error {
			d, err := source.FetchApplicationDetail(gctx, s.ID)
			if err != nil {
				return fmt.Errorf("application %s detail: %w", s.ID, err)
			}
			if d.ID == "" {
				d.ID = s.ID
			}
			if d.OfferTitle == "" {
				d.OfferTitle = s.OfferTitle
			}
			if d.CreatedAt == "" {
				d.CreatedAt = s.CreatedAt
			}
			out[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(apps []domain.SourceApplication) {
	sort.SliceStable(apps, func(i, j int) bool {
		return apps[i].Created().After(apps[j].Created())
	})
}

// fetchCandidates lists source applications since the cursor and returns
// the hydrated candidates, dropping any whose detail no longer matches an
// eligible slot.
func fetchCandidates(ctx context.Context, source Source, cursor domain.RunCursor, ledger []domain.LedgerEntry, targets EligibleTargets, concurrency int, log *zap.Logger) ([]domain.SourceApplication, error) {
	summaries, err := source.ListApplications(ctx, cursor.LastApplicationCreatedAt)
	if err != nil {
		return nil, fmt.Errorf("list source applications: %w", err)
	}
	selected := SelectCandidates(summaries, cursor, ledger, targets)
	detailed, err := hydrate(ctx, source, selected, concurrency)
	if err != nil {
		return nil, fmt.Errorf("hydrate candidates: %w", err)
	}

	out := detailed[:0]
	for _, app := range detailed {
		if !targets.Contains(NormalizeKey(app.OfferTitle)) {
			log.Warn("candidate offer changed to an ineligible title",
				zap.String("application_id", app.ID),
				zap.String("offer", app.OfferTitle))
			continue
		}
		out = append(out, app)
	}
	log.Info("candidates selected",
		zap.Int("listed", len(summaries)),
		zap.Int("selected", len(out)))
	return out, nil
}
