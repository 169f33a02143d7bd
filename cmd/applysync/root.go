package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	var dataDir string
	var verbose bool

	ctx := newCommandContext(&dataDir, &verbose)

	root := &cobra.Command{
		Use:           "applysync",
		Short:         "Copy new StartupJobs applications into JazzHR",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.sync()
		},
	}

	root.PersistentFlags().StringVar(&dataDir, "data-dir", "", "State and config directory (default $APPLYSYNC_DATA_DIR or ~/.applysync)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")

	root.AddCommand(newRunCommand(ctx))
	root.AddCommand(newDaemonCommand(ctx))
	root.AddCommand(newStatusCommand(ctx))
	root.AddCommand(newSecretsCommand(ctx))
	root.AddCommand(newConfigCommand(ctx))

	return root
}
