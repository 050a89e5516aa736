// Package catalog loads the fragment catalog from disk: per-service
// fragment files, the network membership table, and the common header.
// All parsing is delegated to the core; this package only does I/O.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/artpar/stacksmith/internal/core/assembler"
	"github.com/artpar/stacksmith/internal/core/fragment"
	"github.com/artpar/stacksmith/internal/core/topology"
	"github.com/artpar/stacksmith/internal/core/yamlkit"
)

// Catalog layout relative to the catalog root.
const (
	fragmentFileName = "service.yml"
	tableFileName    = "networks.yml"
	headerFileName   = "env.yml"
)

// DefaultVersion is the compose schema marker used when the catalog
// header does not override it.
const DefaultVersion = "3.9"

var (
	// ErrCatalogMissing is returned when the catalog root does not exist.
	ErrCatalogMissing = errors.New("catalog directory does not exist")

	// ErrCatalogEmpty is returned when the catalog contains no fragments.
	ErrCatalogEmpty = errors.New("no fragments found in catalog")
)

// Catalog is the loaded, read-only catalog state one assembly run
// operates on.
type Catalog struct {
	Registry *fragment.Registry
	Table    *topology.Table
	Header   assembler.Header
}

// Load reads the catalog at root: every <service>/service.yml fragment
// file, the networks.yml membership table and the env.yml header (both
// optional). All structural errors are detected eagerly here, before
// any output is written.
func Load(root string) (*Catalog, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCatalogMissing, root)
	}

	paths, err := filepath.Glob(filepath.Join(root, "*", fragmentFileName))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrCatalogEmpty, root)
	}

	registry := fragment.NewRegistry()
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		fragments, err := fragment.ParseCatalogFile(rel, data)
		if err != nil {
			return nil, err
		}
		for _, f := range fragments {
			if err := registry.Add(f); err != nil {
				return nil, err
			}
		}
	}

	table, err := loadTable(filepath.Join(root, tableFileName))
	if err != nil {
		return nil, err
	}

	header, err := loadHeader(filepath.Join(root, headerFileName))
	if err != nil {
		return nil, err
	}

	return &Catalog{
		Registry: registry,
		Table:    table,
		Header:   header,
	}, nil
}

// loadTable reads the membership table; a missing file means every
// service belongs to the default network only.
func loadTable(path string) (*topology.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return topology.EmptyTable(), nil
		}
		return nil, err
	}
	return topology.ParseTable(data)
}

// loadHeader reads the optional common header file. A "version" scalar
// overrides the default schema marker; every other top-level key is
// carried into the manifest as-is.
func loadHeader(path string) (assembler.Header, error) {
	header := assembler.Header{Version: DefaultVersion}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return header, nil
		}
		return assembler.Header{}, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return assembler.Header{}, fragment.NewFragmentError(headerFileName, "", "invalid YAML syntax", fragment.ErrMalformedFragment)
	}
	root := yamlkit.Root(&doc)
	if root == nil {
		return header, nil
	}
	if root.Kind != yaml.MappingNode {
		return assembler.Header{}, fragment.NewFragmentError(headerFileName, "", "header file must be a mapping", fragment.ErrMalformedFragment)
	}

	if v := yamlkit.Get(root, "version"); v != nil {
		header.Version = v.Value
		yamlkit.Delete(root, "version")
	}
	if len(root.Content) > 0 {
		header.Extra = root
	}
	return header, nil
}
