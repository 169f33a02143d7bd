package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"applysync/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "config",
		Short:       "Inspect the configuration file",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config.yml if none exists",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ResolveDataDir(*ctx.dataDirFlag)
			if err != nil {
				return err
			}
			path, created, err := config.EnsureUserConfig(dir)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ResolveDataDir(*ctx.dataDirFlag)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(dir, config.FileName))
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Check config.yml and print the effective values",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := config.ResolveDataDir(*ctx.dataDirFlag)
			if err != nil {
				return err
			}
			cfg, err := config.Load(filepath.Join(dir, config.FileName))
			if err != nil {
				return err
			}
			normalized, res := config.NormalizeAndValidate(cfg)
			out := cmd.OutOrStdout()
			for _, w := range res.Warnings {
				fmt.Fprintf(out, "warning: %s\n", w)
			}
			if !res.OK() {
				for _, e := range res.Errors {
					fmt.Fprintf(out, "error: %s\n", e)
				}
				return fmt.Errorf("config has %d error(s)", len(res.Errors))
			}
			b, err := yaml.Marshal(&normalized)
			if err != nil {
				return err
			}
			fmt.Fprint(out, string(b))
			return nil
		},
	}

	cmd.AddCommand(initCmd, pathCmd, validateCmd)
	return cmd
}
