package sync

import (
	"context"
	"fmt"
	stdsync "sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"applysync/internal/domain"
)

// ErrorQueue replays the previous run's transfer errors through a Pipeline.
type ErrorQueue struct {
	pipeline *Pipeline
	log      *zap.Logger
}

func NewErrorQueue(p *Pipeline, log *zap.Logger) *ErrorQueue {
	if log == nil {
		log = zap.NewNop()
	}
	return &ErrorQueue{pipeline: p, log: log.Named("errorqueue")}
}

// Resolve retries each queued error and returns those still failing, plus
// any follow-up failures a retry produced. Entries that cannot be decoded
// are kept as they are.
func (q *ErrorQueue) Resolve(ctx context.Context, errs []domain.TransferError) ([]domain.TransferError, error) {
	if len(errs) == 0 {
		return nil, nil
	}

	var (
		mu        stdsync.Mutex
		remaining []domain.TransferError
	)
	keep := func(te ...domain.TransferError) {
		mu.Lock()
		remaining = append(remaining, te...)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(q.pipeline.cfg.Concurrency)
	for _, te := range errs {
		g.Go(func() error {
			out, err := q.retry(gctx, te)
			if err != nil {
				return err
			}
			keep(out...)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("resolve queued errors: %w", err)
	}
	q.log.Info("queued errors replayed",
		zap.Int("attempted", len(errs)),
		zap.Int("remaining", len(remaining)))
	return remaining, nil
}

func (q *ErrorQueue) retry(ctx context.Context, te domain.TransferError) ([]domain.TransferError, error) {
	switch te.Type {
	case domain.StageCreateApplicant:
		p, err := te.ApplicantPayload()
		if err != nil {
			q.log.Error("undecodable queued applicant", zap.Error(err))
			return []domain.TransferError{te}, nil
		}
		return q.pipeline.submit(ctx, p, te.Notes)
	case domain.StageCreateNote:
		p, err := te.NotePayload()
		if err != nil {
			q.log.Error("undecodable queued note", zap.Error(err))
			return []domain.TransferError{te}, nil
		}
		return q.pipeline.postNotes(ctx, p.ApplicantID, []string{p.Contents})
	default:
		q.log.Warn("unknown queued error type", zap.String("type", string(te.Type)))
		return []domain.TransferError{te}, nil
	}
}
