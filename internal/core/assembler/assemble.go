package assembler

import (
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/artpar/stacksmith/internal/core/fragment"
	"github.com/artpar/stacksmith/internal/core/topology"
	"github.com/artpar/stacksmith/internal/core/yamlkit"
)

// =============================================================================
// Header
// =============================================================================

// Header carries the shared top of the manifest: the compose schema
// marker and any common declarations seeded by the catalog (env.yml).
type Header struct {
	// Version is the compose schema marker. Empty omits the field.
	Version string

	// Extra holds additional top-level entries from the catalog's
	// common header file. Keys owned by the assembler (services,
	// networks, volumes, version) are ignored.
	Extra *yaml.Node
}

// =============================================================================
// Assembly
// =============================================================================

// Assemble merges resolved, network-annotated fragments and the common
// header into one manifest document. The document is fully regenerated:
// callers overwrite any previous manifest rather than patching it.
//
// A networks directive is attached to a service only if its assigned
// set is not exactly the implicit default network; spelling out default
// membership for every service was the legacy behaviour being
// deprecated. The top-level networks section lists exactly the
// non-default networks with at least one member.
func Assemble(fragments []*fragment.ServiceFragment, assignment map[string][]string, header Header) (*Document, error) {
	sorted := make([]*fragment.ServiceFragment, len(fragments))
	copy(sorted, fragments)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	root := yamlkit.Mapping()
	if header.Version != "" {
		yamlkit.Set(root, versionKey, yamlkit.Scalar(header.Version))
	}
	if header.Extra != nil && header.Extra.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(header.Extra.Content); i += 2 {
			key := header.Extra.Content[i].Value
			if key == servicesKey || key == networksKey || key == volumesKey || key == versionKey {
				continue
			}
			yamlkit.Set(root, key, yamlkit.Clone(header.Extra.Content[i+1]))
		}
	}

	services := yamlkit.Mapping()
	volumes, err := collectVolumes(sorted)
	if err != nil {
		return nil, err
	}

	for _, f := range sorted {
		body := yamlkit.Clone(f.Body)
		// The assigner owns network membership; any directive carried
		// by the fragment source is discarded.
		yamlkit.Delete(body, networksKey)
		attachNetworks(body, assignment[f.ID])
		yamlkit.Set(services, f.ID, body)
	}
	yamlkit.Set(root, servicesKey, services)

	if len(volumes) > 0 {
		yamlkit.Set(root, volumesKey, volumesNode(volumes))
	}
	if active := topology.ActiveNetworks(assignment); len(active) > 0 {
		yamlkit.Set(root, networksKey, networksNode(active))
	}

	return &Document{root: root}, nil
}

// attachNetworks sets the networks directive on a service body iff the
// assigned set is more than implicit default membership.
func attachNetworks(body *yaml.Node, networks []string) {
	if len(networks) == 0 {
		return
	}
	if len(networks) == 1 && networks[0] == topology.DefaultNetwork {
		return
	}
	items := make([]*yaml.Node, 0, len(networks))
	for _, name := range networks {
		items = append(items, yamlkit.Scalar(name))
	}
	yamlkit.Set(body, networksKey, yamlkit.FlowSequence(items...))
}

// namedVolume pairs a volume declaration with its first contributor.
type namedVolume struct {
	name        string
	declaration *yaml.Node
	contributor string
}

// collectVolumes merges volume declarations contributed by the
// fragments, de-duplicated by name. A name collision with differing
// definitions fails naming both contributors.
func collectVolumes(fragments []*fragment.ServiceFragment) ([]namedVolume, error) {
	var merged []namedVolume
	index := make(map[string]int)

	for _, f := range fragments {
		names := make([]string, 0, len(f.Volumes))
		for name := range f.Volumes {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			declaration := f.Volumes[name]
			if at, ok := index[name]; ok {
				if !yamlkit.Equal(merged[at].declaration, declaration) {
					return nil, &VolumeConflictError{
						Volume: name,
						First:  merged[at].contributor,
						Second: f.ID,
					}
				}
				continue
			}
			index[name] = len(merged)
			merged = append(merged, namedVolume{name: name, declaration: declaration, contributor: f.ID})
		}
	}

	sort.Slice(merged, func(i, j int) bool { return merged[i].name < merged[j].name })
	return merged, nil
}

// volumesNode builds the top-level volumes mapping.
func volumesNode(volumes []namedVolume) *yaml.Node {
	node := yamlkit.Mapping()
	for _, v := range volumes {
		declaration := yamlkit.Clone(v.declaration)
		if declaration == nil {
			declaration = &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: ""}
		}
		yamlkit.Set(node, v.name, declaration)
	}
	return node
}

// networksNode builds the top-level networks mapping. The default
// network is created implicitly by the orchestrator and never declared.
func networksNode(active []string) *yaml.Node {
	node := yamlkit.Mapping()
	for _, name := range active {
		definition := yamlkit.Mapping()
		yamlkit.Set(definition, "driver", yamlkit.Scalar("bridge"))
		yamlkit.Set(node, name, definition)
	}
	return node
}
