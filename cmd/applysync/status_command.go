package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"applysync/internal/domain"
	"applysync/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent sync runs and the pending error queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			db, err := store.Open(filepath.Join(ctx.dataDir, dbFileName))
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := db.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			var queue []domain.TransferError
			if _, err := db.Get(cmd.Context(), store.KeyErrorQueue, &queue); err != nil {
				return err
			}
			var cursor domain.RunCursor
			if _, err := db.Get(cmd.Context(), store.KeyCursor, &cursor); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
			} else {
				fmt.Fprintln(out, renderRuns(runs, time.Now()))
			}
			fmt.Fprintf(out, "Cursor: %s\n", describeCursor(cursor))
			fmt.Fprintf(out, "Queued errors: %d\n", len(queue))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of runs to show")
	return cmd
}

func renderRuns(runs []store.Run, now time.Time) string {
	headers := []string{"Run", "Started", "Took", "Ledger", "New", "Posted", "Queued", "Result"}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		result := "ok"
		if r.Error != "" {
			result = r.Error
			if len(result) > 60 {
				result = result[:57] + "..."
			}
		}
		rows = append(rows, []string{
			shortID(r.RunID),
			humanize.RelTime(r.StartedAt, now, "ago", "from now"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
			humanize.Comma(int64(r.LedgerTotal)),
			strconv.Itoa(r.LedgerNew),
			strconv.Itoa(r.CandidatesPosted),
			strconv.Itoa(r.ErrorsRemaining),
			result,
		})
	}
	aligns := []columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}
	return renderTable(headers, rows, aligns)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func describeCursor(c domain.RunCursor) string {
	if c.IsZero() {
		return "none (next run lists every application)"
	}
	return fmt.Sprintf("application %s created %s", c.LastApplicationID, c.LastApplicationCreatedAt)
}
