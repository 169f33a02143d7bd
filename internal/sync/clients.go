package sync

import (
	"context"

	"applysync/internal/domain"
)

// Source is the read side of the source platform.
type Source interface {
	ListApplications(ctx context.Context, since string) ([]domain.SourceApplication, error)
	FetchApplicationDetail(ctx context.Context, id string) (domain.SourceApplication, error)
	FetchAttachmentEncoded(ctx context.Context, url string) (string, error)
}

// Destination is the applicant-tracking system receiving applications.
type Destination interface {
	ListOpenSlots(ctx context.Context) ([]domain.Slot, error)
	ListCrossReferences(ctx context.Context) ([]domain.CrossReference, error)
	FetchApplicantDetail(ctx context.Context, id string) (domain.ApplicantDetail, error)
	CreateApplicant(ctx context.Context, p domain.ApplicantPayload) (string, error)
	CreateNote(ctx context.Context, applicantID, contents string) error
}

// KV is the persistent key/value store the orchestrator owns.
type KV interface {
	Get(ctx context.Context, key string, v any) (bool, error)
	Set(ctx context.Context, key string, v any) error
}
