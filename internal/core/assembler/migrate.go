package assembler

import (
	"github.com/artpar/stacksmith/internal/core/fragment"
	"github.com/artpar/stacksmith/internal/core/topology"
	"github.com/artpar/stacksmith/internal/core/yamlkit"
)

// =============================================================================
// Legacy Manifest Migration
// =============================================================================

// Migrate rewrites a manifest built under the legacy topology scheme to
// the current one. It strips every networks directive from the service
// bodies and the top level, re-derives network assignment from the
// document's own service selection, and re-attaches directives under
// the current policy.
//
// Migration is a pure function of the input document's service
// selection: no non-network directive is touched and already-resolved
// placeholder values pass through verbatim (bodies are taken from the
// document, never re-resolved from the catalog). A document already on
// the current scheme is returned unchanged.
//
// A service identifier present in the document but absent from the
// catalog fails with ErrUnmigratableService before any rewriting.
func Migrate(doc *Document, registry *fragment.Registry, table *topology.Table) (*Document, topology.Scheme, error) {
	ids := doc.ServiceIDs()
	for _, id := range ids {
		if _, ok := registry.Get(id); !ok {
			return nil, topology.SchemeLegacy, &MigrationError{Service: id}
		}
	}

	scheme := table.DetectScheme(doc.ExplicitNetworks())
	if scheme == topology.SchemeCurrent {
		return doc, scheme, nil
	}

	out := &Document{root: yamlkit.Clone(doc.root)}
	yamlkit.Delete(out.root, networksKey)

	assignment := table.Assign(ids)
	services := out.services()
	for i := 0; i+1 < len(services.Content); i += 2 {
		id := services.Content[i].Value
		body := services.Content[i+1]
		yamlkit.Delete(body, networksKey)
		attachNetworks(body, assignment[id])
	}

	if active := topology.ActiveNetworks(assignment); len(active) > 0 {
		yamlkit.Set(out.root, networksKey, networksNode(active))
	}

	return out, topology.SchemeLegacy, nil
}
