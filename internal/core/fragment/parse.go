package fragment

import (
	"gopkg.in/yaml.v3"

	"github.com/artpar/stacksmith/internal/core/yamlkit"
)

// Top-level keys in a fragment file that do not define a service.
const (
	volumesKey  = "volumes"
	networksKey = "networks"
)

// ParseCatalogFile parses one catalog fragment file into its service
// fragments. The file must be a YAML mapping; every top-level key
// defines one service, except the reserved "volumes" key which
// contributes named volume declarations shared by the file's services.
// A file may define multiple services (an application and its paired
// database are commonly shipped in one file).
//
// Fragment files must not carry "networks" declarations: network
// membership is owned by the topology table, not individual fragments.
func ParseCatalogFile(source string, data []byte) ([]*ServiceFragment, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, NewFragmentError(source, "", "invalid YAML syntax", ErrMalformedFragment)
	}

	root := yamlkit.Root(&doc)
	if root == nil {
		return nil, NewFragmentError(source, "", "fragment file is empty", ErrMalformedFragment)
	}
	if root.Kind != yaml.MappingNode {
		return nil, NewFragmentError(source, "", "fragment file must be a mapping of service definitions", ErrMalformedFragment)
	}

	var fragments []*ServiceFragment
	var volumes map[string]*yaml.Node
	seen := make(map[string]bool)

	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i].Value
		value := root.Content[i+1]

		// yaml.v3 keeps duplicate keys when decoding into a node tree,
		// so the check has to happen here.
		if seen[key] {
			return nil, NewFragmentError(source, key, "defined twice in the same file", ErrDuplicateServiceID)
		}
		seen[key] = true

		switch key {
		case volumesKey:
			parsed, err := parseVolumeDeclarations(source, value)
			if err != nil {
				return nil, err
			}
			volumes = parsed

		case networksKey:
			return nil, NewFragmentError(source, "", "fragment files must not declare networks", ErrMalformedFragment)

		default:
			if value.Kind != yaml.MappingNode {
				return nil, NewFragmentError(source, key, "service body must be a mapping", ErrMalformedFragment)
			}
			fragments = append(fragments, &ServiceFragment{
				ID:     key,
				Body:   value,
				Source: source,
			})
		}
	}

	if len(fragments) == 0 {
		return nil, NewFragmentError(source, "", "fragment file defines no services", ErrMalformedFragment)
	}

	// Volume declarations are shared by every service in the file.
	for _, f := range fragments {
		f.Volumes = volumes
	}

	return fragments, nil
}

// parseVolumeDeclarations parses the reserved top-level "volumes" key.
// Each entry is either a bare name (null value) or a mapping with
// driver options.
func parseVolumeDeclarations(source string, node *yaml.Node) (map[string]*yaml.Node, error) {
	if node.Kind != yaml.MappingNode {
		if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
			return nil, nil
		}
		return nil, NewFragmentError(source, "", "volumes section must be a mapping of volume declarations", ErrMalformedFragment)
	}

	volumes := make(map[string]*yaml.Node, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		name := node.Content[i].Value
		value := node.Content[i+1]
		if value.Kind != yaml.MappingNode && !(value.Kind == yaml.ScalarNode && value.Tag == "!!null") {
			return nil, NewFragmentError(source, "", "volume "+name+" declaration must be a mapping or empty", ErrMalformedFragment)
		}
		volumes[name] = value
	}
	return volumes, nil
}
