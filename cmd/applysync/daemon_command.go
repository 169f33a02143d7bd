package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"applysync/internal/httpapi"
	"applysync/internal/scheduler"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	var noServer bool
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run sync on the configured schedule and serve run status over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			log := ctx.log()
			r, err := openRunner(cfg, ctx.dataDir, log)
			if err != nil {
				return err
			}
			defer r.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			task := func(ctx context.Context) error {
				_, err := r.runOnce(ctx)
				switch {
				case errors.Is(err, errRunInProgress):
					log.Info("skipping tick, run in progress")
					return nil
				case errors.Is(err, errRunnerClosed):
					return nil
				}
				return err
			}

			if !noServer {
				var cfgVal atomic.Value
				cfgVal.Store(cfg)
				handler := httpapi.NewHandler(httpapi.Deps{
					Runs:        r.db,
					Tracker:     r.tracker,
					Hub:         r.hub,
					CfgVal:      &cfgVal,
					UserCfgPath: ctx.cfgPath,
					RunSync:     task,
					BaseCtx:     runCtx,
					Log:         log,
				})
				addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.StatusPort)
				ln, err := net.Listen("tcp", addr)
				if err != nil {
					return fmt.Errorf("status server: %w", err)
				}
				srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}
				go func() {
					if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
						log.Error("status server stopped", zap.Error(err))
					}
				}()
				defer func() {
					shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutCtx)
				}()
				log.Info("status server listening", zap.String("addr", "http://"+addr))
			}

			log.Info("daemon started",
				zap.Duration("interval", cfg.Schedule.Interval),
				zap.String("data_dir", ctx.dataDir))
			scheduler.Every(runCtx, cfg.Schedule.Interval, "sync", task, log)
			log.Info("daemon stopping")
			return nil
		},
	}
	cmd.Flags().BoolVar(&noServer, "no-server", false, "Do not start the HTTP status server")
	return cmd
}
