package store

import (
	"path/filepath"
	"testing"
	"time"

	"applysync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestGetMissingKey(t *testing.T) {
	db := openTestDB(t)

	var cur domain.RunCursor
	found, err := db.Get(t.Context(), KeyCursor, &cur)
	require.NoError(t, err)
	assert.False(t, found)
	assert.True(t, cur.IsZero())
}

func TestSetThenGetOverwrites(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()

	ledger := []domain.LedgerEntry{{ID: "a1", SourceApplicationID: "42"}}
	require.NoError(t, db.Set(ctx, KeyLedger, ledger))
	ledger = append(ledger, domain.LedgerEntry{ID: "a2"})
	require.NoError(t, db.Set(ctx, KeyLedger, ledger))

	var got []domain.LedgerEntry
	found, err := db.Get(ctx, KeyLedger, &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, ledger, got)
}

func TestStatePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	db, err := Open(path)
	require.NoError(t, err)
	cur := domain.RunCursor{LastApplicationID: "9", LastApplicationCreatedAt: "2021-03-01T10:00:00"}
	require.NoError(t, db.Set(t.Context(), KeyCursor, cur))
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	var got domain.RunCursor
	found, err := db.Get(t.Context(), KeyCursor, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, cur, got)
}

func TestRecordAndListRuns(t *testing.T) {
	db := openTestDB(t)
	ctx := t.Context()
	base := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"r1", "r2", "r3"} {
		require.NoError(t, db.RecordRun(ctx, Run{
			RunStats:   domain.RunStats{RunID: id, LedgerTotal: i + 1},
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + time.Minute),
		}))
	}

	runs, err := db.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "r3", runs[0].RunID)
	assert.Equal(t, 3, runs[0].LedgerTotal)
	assert.Equal(t, base.Add(2*time.Hour), runs[0].StartedAt)
}
