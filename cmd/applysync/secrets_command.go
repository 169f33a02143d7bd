package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"applysync/internal/secrets"
)

func newSecretsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "secrets",
		Short:       "Manage API tokens in the OS keyring",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	set := &cobra.Command{
		Use:       "set <" + strings.Join(secrets.Names, "|") + ">",
		Short:     "Store a token read from stdin",
		Args:      cobra.ExactArgs(1),
		ValidArgs: secrets.Names,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.ErrOrStderr(), "Paste the %s token and press enter: ", args[0])
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && strings.TrimSpace(line) == "" {
				return fmt.Errorf("read token: %w", err)
			}
			if err := secrets.SetToken(args[0], line); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "stored %s token in keyring service %q\n", args[0], secrets.KeyringService)
			return nil
		},
	}

	del := &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a token from the keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return secrets.DeleteToken(args[0])
		},
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Report which tokens are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			missing := 0
			for _, name := range secrets.Names {
				state := "ok"
				if _, err := secrets.Token(name); err != nil {
					state = "missing"
					missing++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", name, state)
			}
			if missing > 0 {
				return fmt.Errorf("%d token(s) missing", missing)
			}
			return nil
		},
	}

	cmd.AddCommand(set, del, check)
	return cmd
}
