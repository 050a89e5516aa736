package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/stacksmith/internal/core/secrets"
)

func newSecretsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "secrets",
		Short: "Inspect and reset stored placeholder values",
	}
	cmd.AddCommand(newSecretsListCmd(a), newSecretsResetCmd(a))
	return cmd
}

func newSecretsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all stored placeholder values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, e := range entries {
				fmt.Fprintf(out, "%s/%s\t%s\n", e.Scope, e.Name, e.Value)
			}
			return nil
		},
	}
}

func newSecretsResetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reset SCOPE NAME",
		Short: "Remove one stored placeholder value",
		Long: `Reset removes one stored placeholder value so the next assembly run
generates a fresh one. This is the only way a stored value is ever
discarded; regeneration invalidates every container depending on that
credential, so reset is deliberate and explicit.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			key := secrets.Key{Scope: args[0], Name: args[1]}
			if err := st.Delete(cmd.Context(), key); err != nil {
				return err
			}
			a.logger.Info("placeholder reset", "key", key.String())
			return nil
		},
	}
}
