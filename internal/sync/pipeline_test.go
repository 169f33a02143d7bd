package sync

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applysync/internal/domain"
)

func newTestPipeline(src *fakeSource, dest *fakeDest, slots ...domain.Slot) (*Pipeline, *int) {
	if len(slots) == 0 {
		slots = []domain.Slot{{ID: "job_1", Title: "Backend Engineer"}}
	}
	p := NewPipeline(src, dest, BuildEligibleTargets(slots), PipelineConfig{Concurrency: 3, SettleDelay: time.Second}, nil)
	sleeps := new(int)
	p.sleep = func(context.Context, time.Duration) error {
		*sleeps++
		return nil
	}
	return p, sleeps
}

func janeDoe() domain.SourceApplication {
	return domain.SourceApplication{
		ID:         "a1",
		CreatedAt:  "2024-03-01T10:00:00",
		Name:       "Jane Doe",
		Email:      "jane@x.io",
		OfferTitle: "Backend Engineer",
		Attachments: []domain.Attachment{
			{URL: "https://f/cv.pdf"},
			{URL: "https://f/portfolio.png"},
		},
	}
}

func TestTransferCreatesApplicantAndNotes(t *testing.T) {
	src := &fakeSource{attachments: map[string]string{"https://f/cv.pdf": "Q1Y="}}
	dest := &fakeDest{}
	p, sleeps := newTestPipeline(src, dest)

	errs, err := p.Transfer(t.Context(), []domain.SourceApplication{janeDoe()})
	require.NoError(t, err)
	assert.Empty(t, errs)

	require.Len(t, dest.created, 1)
	got := dest.created[0]
	assert.Equal(t, "Jane", got.FirstName)
	assert.Equal(t, "Doe", got.LastName)
	assert.Equal(t, "2024-03-01", got.ApplyDate)
	assert.Equal(t, "job_1", got.Job)
	assert.Equal(t, "startupJobsId: a1", got.Source)
	assert.Equal(t, "Q1Y=", got.Base64Resume)

	assert.Equal(t, []domain.NotePayload{
		{ApplicantID: "prospect_1", Contents: "Startup jobs attachment links: https://f/portfolio.png"},
	}, dest.notes)
	assert.Equal(t, 1, *sleeps)
}

func TestTransferNoNotesSkipsSettle(t *testing.T) {
	dest := &fakeDest{}
	p, sleeps := newTestPipeline(&fakeSource{}, dest)

	app := domain.SourceApplication{ID: "a2", Name: "Bob", OfferTitle: "backend engineer"}
	errs, err := p.Transfer(t.Context(), []domain.SourceApplication{app})
	require.NoError(t, err)
	assert.Empty(t, errs)
	require.Len(t, dest.created, 1)
	assert.Equal(t, NoLastName, dest.created[0].LastName)
	assert.Empty(t, dest.created[0].Base64Resume)
	assert.Zero(t, *sleeps)
}

func TestTransferQueuesRejectedApplicantWithNotes(t *testing.T) {
	dest := &fakeDest{createErr: func(domain.ApplicantPayload) error { return resolvable("Invalid email") }}
	p, _ := newTestPipeline(&fakeSource{}, dest)

	app := domain.SourceApplication{ID: "a3", Name: "Jane Doe", OfferTitle: "Backend Engineer", Notes: "please review"}
	errs, err := p.Transfer(t.Context(), []domain.SourceApplication{app})
	require.NoError(t, err)
	require.Len(t, errs, 1)

	te := errs[0]
	assert.Equal(t, domain.StageCreateApplicant, te.Type)
	assert.Equal(t, "Invalid email", te.Message)
	assert.Equal(t, []string{"Startup jobs note: please review"}, te.Notes)
	payload, err := te.ApplicantPayload()
	require.NoError(t, err)
	assert.Equal(t, "startupJobsId: a3", payload.Source)
	assert.Empty(t, dest.notes)
}

func TestTransferQueuesEachRejectedNote(t *testing.T) {
	dest := &fakeDest{noteErr: func(_, contents string) error {
		if contents == "Startup jobs note: first" {
			return resolvable("busy")
		}
		return nil
	}}
	p, _ := newTestPipeline(&fakeSource{attachments: map[string]string{"https://f/cv.pdf": "x"}}, dest)

	app := janeDoe()
	app.Notes = "first"
	errs, err := p.Transfer(t.Context(), []domain.SourceApplication{app})
	require.NoError(t, err)
	require.Len(t, errs, 1)

	note, err := errs[0].NotePayload()
	require.NoError(t, err)
	assert.Equal(t, domain.NotePayload{ApplicantID: "prospect_1", Contents: "Startup jobs note: first"}, note)
	require.Len(t, dest.notes, 1, "remaining notes still posted")
	assert.Equal(t, "Startup jobs attachment links: https://f/portfolio.png", dest.notes[0].Contents)
}

func TestTransferFatalErrors(t *testing.T) {
	t.Run("create", func(t *testing.T) {
		dest := &fakeDest{createErr: func(domain.ApplicantPayload) error { return errBoom }}
		p, _ := newTestPipeline(&fakeSource{}, dest)
		errs, err := p.Transfer(t.Context(), []domain.SourceApplication{{ID: "a", OfferTitle: "Backend Engineer"}})
		require.ErrorIs(t, err, errBoom)
		assert.Nil(t, errs)
	})

	t.Run("resume download", func(t *testing.T) {
		dest := &fakeDest{}
		p, _ := newTestPipeline(&fakeSource{attachErr: errBoom}, dest)
		_, err := p.Transfer(t.Context(), []domain.SourceApplication{janeDoe()})
		require.ErrorIs(t, err, errBoom)
		assert.Empty(t, dest.created)
	})

	t.Run("note", func(t *testing.T) {
		dest := &fakeDest{noteErr: func(string, string) error { return errBoom }}
		p, _ := newTestPipeline(&fakeSource{}, dest)
		app := domain.SourceApplication{ID: "a", OfferTitle: "Backend Engineer", Notes: "n"}
		_, err := p.Transfer(t.Context(), []domain.SourceApplication{app})
		require.ErrorIs(t, err, errBoom)
	})

	t.Run("ineligible", func(t *testing.T) {
		p, _ := newTestPipeline(&fakeSource{}, &fakeDest{})
		_, err := p.Transfer(t.Context(), []domain.SourceApplication{{ID: "a", OfferTitle: "Chef"}})
		require.ErrorIs(t, err, ErrIneligibleCandidate)
	})
}

func TestTransferManyCandidates(t *testing.T) {
	dest := &fakeDest{createErr: func(p domain.ApplicantPayload) error {
		if p.Email == "bad" {
			return resolvable("Invalid email")
		}
		return nil
	}}
	p, _ := newTestPipeline(&fakeSource{}, dest)

	var apps []domain.SourceApplication
	for _, id := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		email := id + "@x.io"
		if id == "4" {
			email = "bad"
		}
		apps = append(apps, domain.SourceApplication{ID: id, Email: email, OfferTitle: "Backend Engineer"})
	}

	errs, err := p.Transfer(t.Context(), apps)
	require.NoError(t, err)
	assert.Len(t, errs, 1)
	assert.Len(t, dest.created, 6)
}
