package store

import (
	"context"
	"fmt"
	"time"

	"applysync/internal/domain"
)

type Run struct {
	domain.RunStats
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Error      string    `json:"error,omitempty"`
}

func (d *DB) RecordRun(ctx context.Context, r Run) error {
	_, err := d.Pool.ExecContext(ctx, `
INSERT OR REPLACE INTO runs(run_id, started_at, finished_at, ledger_total, ledger_new, candidates_posted, errors_remaining, error)
VALUES(?,?,?,?,?,?,?,?);`,
		r.RunID,
		r.StartedAt.UTC().Format(time.RFC3339),
		r.FinishedAt.UTC().Format(time.RFC3339),
		r.LedgerTotal,
		r.LedgerNew,
		r.CandidatesPosted,
		r.ErrorsRemaining,
		r.Error,
	)
	if err != nil {
		return fmt.Errorf("record run %s: %w", r.RunID, err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (d *DB) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.Pool.QueryContext(ctx, `
SELECT run_id, started_at, finished_at, ledger_total, ledger_new, candidates_posted, errors_remaining, error
FROM runs
ORDER BY started_at DESC
LIMIT ?;`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started, finished string
		if err := rows.Scan(
			&r.RunID,
			&started,
			&finished,
			&r.LedgerTotal,
			&r.LedgerNew,
			&r.CandidatesPosted,
			&r.ErrorsRemaining,
			&r.Error,
		); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
