// Package assembler merges resolved, network-annotated service
// fragments into one manifest document, and rewrites manifests built
// under the legacy topology scheme.
// This is part of the Functional Core - all functions are pure with no I/O.
package assembler

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/artpar/stacksmith/internal/core/yamlkit"
)

// Top-level and per-service manifest keys the assembler owns.
const (
	servicesKey = "services"
	networksKey = "networks"
	volumesKey  = "volumes"
	versionKey  = "version"
)

// =============================================================================
// Document
// =============================================================================

// Document is an assembled manifest held as a YAML node tree. Key order
// is deterministic given the same selection input, so repeated runs
// produce textually stable, diff-minimal output.
type Document struct {
	root *yaml.Node // mapping node
}

// Decode parses a manifest document.
func Decode(data []byte) (*Document, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, ErrMalformedManifest
	}
	root := yamlkit.Root(&doc)
	if root == nil || root.Kind != yaml.MappingNode {
		return nil, ErrMalformedManifest
	}
	return &Document{root: root}, nil
}

// Encode renders the document as YAML with two-space indentation.
func (d *Document) Encode() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d.root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// services returns the services mapping node, or nil.
func (d *Document) services() *yaml.Node {
	n := yamlkit.Get(d.root, servicesKey)
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	return n
}

// ServiceIDs returns the service identifiers in document order.
func (d *Document) ServiceIDs() []string {
	return yamlkit.Keys(d.services())
}

// Service returns the body mapping of one service, or nil.
func (d *Document) Service(id string) *yaml.Node {
	return yamlkit.Get(d.services(), id)
}

// ExplicitNetworks returns, per service, the networks listed by an
// explicit networks directive. Services without a directive are absent
// from the result. Input to scheme detection.
func (d *Document) ExplicitNetworks() map[string][]string {
	explicit := make(map[string][]string)
	services := d.services()
	if services == nil {
		return explicit
	}
	for i := 0; i+1 < len(services.Content); i += 2 {
		id := services.Content[i].Value
		body := services.Content[i+1]
		names := networkNames(yamlkit.Get(body, networksKey))
		if names == nil {
			continue
		}
		explicit[id] = names
	}
	return explicit
}

// networkNames lists the networks referenced by an explicit directive.
// Compose allows both the sequence form (networks: [a, b], items
// optionally being mappings with a name key) and the mapping form
// (networks: {a: {aliases: [...]}}). Scheme detection has to see all of
// them; a manifest is not less legacy for spelling its directives the
// long way.
func networkNames(directive *yaml.Node) []string {
	if directive == nil {
		return nil
	}
	switch directive.Kind {
	case yaml.SequenceNode:
		names := make([]string, 0, len(directive.Content))
		for _, item := range directive.Content {
			if item.Kind == yaml.MappingNode {
				if name := yamlkit.Get(item, "name"); name != nil {
					names = append(names, name.Value)
				}
				continue
			}
			names = append(names, item.Value)
		}
		return names
	case yaml.MappingNode:
		return yamlkit.Keys(directive)
	default:
		return nil
	}
}
