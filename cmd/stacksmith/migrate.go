package main

import (
	"github.com/spf13/cobra"

	"github.com/artpar/stacksmith/internal/core/assembler"
	"github.com/artpar/stacksmith/internal/core/topology"
	"github.com/artpar/stacksmith/internal/shell/manifest"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Rewrite a manifest built under the legacy network scheme",
		Long: `Migrate inspects the current manifest and, if it was written under
the old network scheme (explicit default-network directives on every
service), rewrites its network annotations to the current scheme. All
other service directives and resolved secrets are preserved verbatim.
On failure the original manifest is left unmodified.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := manifest.Read(a.cfg.Manifest.Path)
			if err != nil {
				return err
			}

			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}

			migrated, scheme, err := assembler.Migrate(doc, cat.Registry, cat.Table)
			if err != nil {
				return err
			}
			if scheme == topology.SchemeCurrent {
				a.logger.Info("manifest already uses the current network scheme",
					"path", a.cfg.Manifest.Path,
				)
				return nil
			}

			if err := manifest.Write(a.cfg.Manifest.Path, migrated, a.cfg.Manifest.Backup); err != nil {
				return err
			}

			a.logger.Info("manifest migrated to the current network scheme",
				"path", a.cfg.Manifest.Path,
				"services", len(migrated.ServiceIDs()),
			)
			return nil
		},
	}
}
