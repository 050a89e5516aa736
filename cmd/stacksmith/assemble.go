package main

import (
	"github.com/spf13/cobra"

	"github.com/artpar/stacksmith/internal/core/assembler"
	"github.com/artpar/stacksmith/internal/core/fragment"
	"github.com/artpar/stacksmith/internal/core/secrets"
	"github.com/artpar/stacksmith/internal/shell/manifest"
)

func newAssembleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "assemble SERVICE...",
		Short: "Assemble the stack manifest from the selected services",
		Long: `Assemble resolves the selected service fragments against the
placeholder store, derives network membership from the topology table
and writes one fully regenerated manifest. Running it twice with the
same selection and store yields byte-identical output.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}

			selected, err := cat.Registry.Select(args)
			if err != nil {
				return err
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			ctx := cmd.Context()
			opts := secrets.Options{DefaultPassword: a.cfg.Secrets.DefaultPassword}
			resolved := make([]*fragment.ServiceFragment, 0, len(selected))
			ids := make([]string, 0, len(selected))
			for _, f := range selected {
				rf, err := secrets.Resolve(ctx, f, st, opts)
				if err != nil {
					return err
				}
				resolved = append(resolved, rf)
				ids = append(ids, f.ID)
			}

			assignment := cat.Table.Assign(ids)
			doc, err := assembler.Assemble(resolved, assignment, cat.Header)
			if err != nil {
				return err
			}

			if err := manifest.Write(a.cfg.Manifest.Path, doc, a.cfg.Manifest.Backup); err != nil {
				return err
			}

			a.logger.Info("manifest written",
				"path", a.cfg.Manifest.Path,
				"services", len(resolved),
			)
			return nil
		},
	}
}
