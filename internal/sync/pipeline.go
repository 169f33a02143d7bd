package sync

import (
	"context"
	"errors"
	"fmt"
	stdsync "sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"applysync/internal/domain"
)

const (
	DefaultTransferConcurrency = 10
	DefaultSettleDelay         = 2 * time.Second
)

// ErrIneligibleCandidate means a candidate reached the pipeline although its
// offer title matches no open slot. Candidate selection must prevent this.
var ErrIneligibleCandidate = errors.New("candidate has no eligible slot")

type PipelineConfig struct {
	Concurrency int
	// SettleDelay is waited between creating an applicant and adding its
	// notes; the destination does not accept notes on a brand-new record
	// straight away.
	SettleDelay time.Duration
}

// Pipeline submits candidates to the destination.
type Pipeline struct {
	source  Source
	dest    Destination
	targets EligibleTargets
	cfg     PipelineConfig
	log     *zap.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

func NewPipeline(source Source, dest Destination, targets EligibleTargets, cfg PipelineConfig, log *zap.Logger) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultTransferConcurrency
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		source:  source,
		dest:    dest,
		targets: targets,
		cfg:     cfg,
		log:     log.Named("pipeline"),
		sleep:   sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Transfer submits every candidate and returns the resolvable failures.
// Any other failure cancels the remaining work and is returned as the error.
func (p *Pipeline) Transfer(ctx context.Context, candidates []domain.SourceApplication) ([]domain.TransferError, error) {
	var (
		mu  stdsync.Mutex
		out []domain.TransferError
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)
	for _, app := range candidates {
		g.Go(func() error {
			errs, err := p.transferOne(gctx, app)
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				mu.Lock()
				out = append(out, errs...)
				mu.Unlock()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("transfer: %w", err)
	}
	p.log.Info("candidates transferred",
		zap.Int("candidates", len(candidates)),
		zap.Int("queued_errors", len(out)))
	return out, nil
}

func (p *Pipeline) transferOne(ctx context.Context, app domain.SourceApplication) ([]domain.TransferError, error) {
	slotID, ok := p.targets.SlotFor(NormalizeKey(app.OfferTitle))
	if !ok {
		return nil, fmt.Errorf("%w: application %s offer %q", ErrIneligibleCandidate, app.ID, app.OfferTitle)
	}

	var resume string
	if u := ResumeCandidateURL(app); u != "" {
		enc, err := p.source.FetchAttachmentEncoded(ctx, u)
		if err != nil {
			return nil, fmt.Errorf("application %s resume: %w", app.ID, err)
		}
		resume = enc
	}

	return p.submit(ctx, ToDestinationPayload(app, slotID, resume), ToNotes(app))
}

// submit creates the applicant and then its notes. A rejected creation is
// queued together with the notes it still owes.
func (p *Pipeline) submit(ctx context.Context, payload domain.ApplicantPayload, notes []string) ([]domain.TransferError, error) {
	applicantID, err := p.dest.CreateApplicant(ctx, payload)
	if err != nil {
		re, ok := domain.IsResolvable(err)
		if !ok {
			return nil, fmt.Errorf("create applicant %q: %w", payload.Source, err)
		}
		p.log.Warn("applicant rejected, queued for retry",
			zap.String("source", payload.Source),
			zap.String("reason", re.Message))
		te, mErr := domain.NewApplicantError(payload, notes, re.Message)
		if mErr != nil {
			return nil, mErr
		}
		return []domain.TransferError{te}, nil
	}
	p.log.Debug("applicant created",
		zap.String("source", payload.Source),
		zap.String("applicant_id", applicantID),
		zap.Int("notes", len(notes)))

	if len(notes) == 0 {
		return nil, nil
	}
	if err := p.sleep(ctx, p.cfg.SettleDelay); err != nil {
		return nil, err
	}
	return p.postNotes(ctx, applicantID, notes)
}

// postNotes adds notes in order. Each rejected note is queued on its own and
// the rest are still attempted.
func (p *Pipeline) postNotes(ctx context.Context, applicantID string, notes []string) ([]domain.TransferError, error) {
	var queued []domain.TransferError
	for _, note := range notes {
		err := p.dest.CreateNote(ctx, applicantID, note)
		if err == nil {
			continue
		}
		re, ok := domain.IsResolvable(err)
		if !ok {
			return nil, fmt.Errorf("create note for applicant %s: %w", applicantID, err)
		}
		p.log.Warn("note rejected, queued for retry",
			zap.String("applicant_id", applicantID),
			zap.String("reason", re.Message))
		te, mErr := domain.NewNoteError(domain.NotePayload{ApplicantID: applicantID, Contents: note}, re.Message)
		if mErr != nil {
			return nil, mErr
		}
		queued = append(queued, te)
	}
	return queued, nil
}
