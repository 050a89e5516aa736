package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/stacksmith/internal/core/secrets"
	"github.com/artpar/stacksmith/internal/shell/manifest"
)

func newListCmd(a *app) *cobra.Command {
	var showSecrets bool
	var showAvailable bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the services in the current manifest",
		Long: `List prints the services present in the current manifest. With
--available, the services offered by the catalog are printed instead.
With --secrets, the stored placeholder values each service depends on
are printed alongside.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showAvailable {
				cat, err := a.loadCatalog()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, id := range cat.Registry.IDs() {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			doc, err := manifest.Read(a.cfg.Manifest.Path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			ids := doc.ServiceIDs()
			if !showSecrets {
				for _, id := range ids {
					fmt.Fprintln(out, id)
				}
				return nil
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			entries, err := st.List(cmd.Context())
			if err != nil {
				return err
			}
			byScope := make(map[string][]secrets.Entry)
			for _, e := range entries {
				byScope[e.Scope] = append(byScope[e.Scope], e)
			}

			for _, id := range ids {
				fmt.Fprintln(out, id)
				for _, e := range byScope[id] {
					fmt.Fprintf(out, "- %s: %s\n", e.Name, e.Value)
				}
			}
			for _, e := range byScope[secrets.GlobalScope] {
				fmt.Fprintf(out, "global %s: %s\n", e.Name, e.Value)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showAvailable, "available", false, "Print the services offered by the catalog instead of the manifest")
	cmd.Flags().BoolVar(&showSecrets, "secrets", false, "Print stored placeholder values per service")
	return cmd
}
