package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/artpar/stacksmith/internal/core/secrets"
	"github.com/artpar/stacksmith/internal/shell/catalog"
	"github.com/artpar/stacksmith/internal/shell/store"
)

// app carries the loaded configuration and logger into the commands.
type app struct {
	cfg    *Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var configPath string
	var defaultPassword string

	root := &cobra.Command{
		Use:     "stacksmith",
		Short:   "Assemble a docker-compose stack from per-service fragment definitions",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Long: `Stacksmith assembles one docker-compose manifest from a catalog of
independently maintained service fragments. Secret placeholders are
filled from a persistent store, network membership is derived from the
catalog's topology table, and manifests written under the old network
scheme can be migrated in place.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			if defaultPassword != "" {
				cfg.Secrets.DefaultPassword = defaultPassword
			}
			a.cfg = cfg
			a.logger = SetupLogger(cfg)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	root.PersistentFlags().StringVarP(&defaultPassword, "default-password", "p", "",
		"Use PASSWORD for new password placeholders instead of generating random values")

	root.AddCommand(
		newAssembleCmd(a),
		newMigrateCmd(a),
		newCheckCmd(a),
		newListCmd(a),
		newSecretsCmd(a),
	)
	return root
}

// loadCatalog loads the configured fragment catalog.
func (a *app) loadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(a.cfg.Catalog.Dir)
}

// openStore opens the configured placeholder store backend.
func (a *app) openStore() (secrets.Store, error) {
	switch a.cfg.Store.Backend {
	case "file":
		return store.NewFileStore(a.cfg.Store.Path)
	case "sqlite":
		return store.NewSQLiteStore(a.cfg.Store.DSN)
	case "memory":
		return secrets.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.cfg.Store.Backend)
	}
}
