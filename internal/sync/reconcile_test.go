package sync

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"applysync/internal/domain"
)

func reconcileTargets() EligibleTargets {
	return BuildEligibleTargets([]domain.Slot{{ID: "job_1", Title: "Backend Engineer"}})
}

func TestReconcileBuildsEntries(t *testing.T) {
	dest := &fakeDest{
		refs: []domain.CrossReference{
			{ID: "x1", ApplicantID: "p1", SlotID: "job_1"},
			{ID: "x2", ApplicantID: "p2", SlotID: "job_closed"},
		},
		details: map[string]domain.ApplicantDetail{
			"p1": {ID: "p1", Email: " Jane@X.io ", ApplyDate: "2024-03-01", Source: "startupJobsId: a1"},
			"p2": {ID: "p2", Email: "bob@x.io", ApplyDate: "2023-12-24", Comments: domain.Comments{{Text: "startupJobsId: a0"}}},
		},
	}

	entries, err := NewReconciler(dest, 2, nil).Reconcile(t.Context(), nil, reconcileTargets())
	require.NoError(t, err)
	assert.Equal(t, []domain.LedgerEntry{
		{ID: "x1", ApplyDate: "2024-03-01", NormalizedEmail: "jane@x.io", JobKey: "backend-engineer", SourceApplicationID: "a1", DestinationApplicantID: "p1"},
		{ID: "x2", ApplyDate: "2023-12-24", NormalizedEmail: "bob@x.io", JobKey: "", SourceApplicationID: "a0", DestinationApplicantID: "p2"},
	}, entries)
}

func TestReconcileSkipsKnownAndDuplicateReferences(t *testing.T) {
	dest := &fakeDest{
		refs: []domain.CrossReference{
			{ID: "x1", ApplicantID: "p1", SlotID: "job_1"},
			{ID: "x2", ApplicantID: "p2", SlotID: "job_1"},
			{ID: "x2", ApplicantID: "p2", SlotID: "job_1"},
			{ID: "x3", ApplicantID: "p2", SlotID: "job_1"},
		},
	}
	existing := []domain.LedgerEntry{{ID: "x1", DestinationApplicantID: "p1"}}

	entries, err := NewReconciler(dest, 0, nil).Reconcile(t.Context(), existing, reconcileTargets())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "x2", entries[0].ID)
	assert.Equal(t, "x3", entries[1].ID)
	assert.Equal(t, 1, dest.detailCalls, "one fetch per distinct applicant")
}

func TestReconcileIsIdempotent(t *testing.T) {
	dest := &fakeDest{refs: []domain.CrossReference{
		{ID: "x1", ApplicantID: "p1", SlotID: "job_1"},
		{ID: "x2", ApplicantID: "p2", SlotID: "job_1"},
	}}
	r := NewReconciler(dest, 0, nil)

	first, err := r.Reconcile(t.Context(), nil, reconcileTargets())
	require.NoError(t, err)
	require.Len(t, first, 2)
	calls := dest.detailCalls

	second, err := r.Reconcile(t.Context(), first, reconcileTargets())
	require.NoError(t, err)
	assert.Empty(t, second)
	assert.Equal(t, calls, dest.detailCalls)
}

func TestReconcileAbortsOnDetailFailure(t *testing.T) {
	dest := &fakeDest{
		refs: []domain.CrossReference{
			{ID: "x1", ApplicantID: "p1", SlotID: "job_1"},
			{ID: "x2", ApplicantID: "p2", SlotID: "job_1"},
		},
		detailErr: map[string]error{"p2": errBoom},
	}

	entries, err := NewReconciler(dest, 1, nil).Reconcile(t.Context(), nil, reconcileTargets())
	require.ErrorIs(t, err, errBoom)
	assert.Nil(t, entries)
}

func TestReconcileListingFailure(t *testing.T) {
	dest := &fakeDest{refsErr: errBoom}
	_, err := NewReconciler(dest, 1, nil).Reconcile(t.Context(), nil, reconcileTargets())
	require.ErrorIs(t, err, errBoom)
}
