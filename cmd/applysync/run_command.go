package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Perform one sync run and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			r, err := openRunner(cfg, ctx.dataDir, ctx.log())
			if err != nil {
				return err
			}
			defer r.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			stats, err := r.runOnce(runCtx)
			if err != nil {
				return fmt.Errorf("sync run failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d new ledger entries (%d total), %d candidates posted, %d errors queued\n",
				stats.RunID, stats.LedgerNew, stats.LedgerTotal, stats.CandidatesPosted, stats.ErrorsRemaining)
			return nil
		},
	}
}
