package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/artpar/stacksmith/internal/core/ports"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check all catalog fragments for host port conflicts",
		Long: `Check scans every fragment in the catalog for host ports published
by more than one service. Use during fragment authoring. Ports shared
by intentionally alternative services (DNS resolvers on 53) are
reported but do not fail the check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := a.loadCatalog()
			if err != nil {
				return err
			}

			hard := 0
			for _, c := range ports.Conflicts(cat.Registry) {
				if c.Known {
					a.logger.Info("port shared by alternative services, select only one of them",
						"port", c.Port,
						"services", c.Services,
					)
					continue
				}
				hard++
				a.logger.Warn("services publish the same conflicting host port",
					"port", c.Port,
					"services", c.Services,
				)
			}
			if hard > 0 {
				return fmt.Errorf("%d conflicting host ports found", hard)
			}

			a.logger.Info("no conflicting host ports", "fragments", cat.Registry.Len())
			return nil
		},
	}
}
