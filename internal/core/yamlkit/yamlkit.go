// Package yamlkit provides helpers for working with yaml.Node trees.
// Fragment bodies and manifests are kept as node trees rather than
// unmarshalled into maps so that mapping key order survives a
// load/modify/emit round trip.
// This is part of the Functional Core - all functions are pure with no I/O.
package yamlkit

import "gopkg.in/yaml.v3"

// =============================================================================
// Constructors
// =============================================================================

// Mapping returns an empty mapping node.
func Mapping() *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// Scalar returns a string scalar node.
func Scalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}

// Sequence returns a sequence node holding the given items.
func Sequence(items ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: items}
}

// FlowSequence returns a sequence node rendered in flow style ([a, b]).
func FlowSequence(items ...*yaml.Node) *yaml.Node {
	n := Sequence(items...)
	n.Style = yaml.FlowStyle
	return n
}

// =============================================================================
// Tree Operations
// =============================================================================

// Root unwraps a document node to its single content node.
// Returns the node itself if it is not a document.
func Root(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	if n.Kind == yaml.DocumentNode {
		if len(n.Content) == 0 {
			return nil
		}
		return n.Content[0]
	}
	return n
}

// Clone returns a deep copy of a node tree.
func Clone(n *yaml.Node) *yaml.Node {
	if n == nil {
		return nil
	}
	out := *n
	if len(n.Content) > 0 {
		out.Content = make([]*yaml.Node, len(n.Content))
		for i, c := range n.Content {
			out.Content[i] = Clone(c)
		}
	}
	return &out
}

// Equal reports whether two node trees carry the same structure and
// values. Style and position information is ignored.
func Equal(a, b *yaml.Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind || a.Tag != b.Tag || a.Value != b.Value {
		return false
	}
	if len(a.Content) != len(b.Content) {
		return false
	}
	for i := range a.Content {
		if !Equal(a.Content[i], b.Content[i]) {
			return false
		}
	}
	return true
}

// VisitScalars walks a node tree depth-first and calls fn for every
// scalar node. Mapping keys are not visited, only values.
func VisitScalars(n *yaml.Node, fn func(*yaml.Node)) {
	if n == nil {
		return
	}
	switch n.Kind {
	case yaml.ScalarNode:
		fn(n)
	case yaml.MappingNode:
		for i := 1; i < len(n.Content); i += 2 {
			VisitScalars(n.Content[i], fn)
		}
	default:
		for _, c := range n.Content {
			VisitScalars(c, fn)
		}
	}
}

// =============================================================================
// Mapping Access
// =============================================================================

// Get returns the value node for key in a mapping node, or nil if the
// key is absent or the node is not a mapping.
func Get(m *yaml.Node, key string) *yaml.Node {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// Set replaces the value for key in a mapping node, appending a new
// entry if the key is absent.
func Set(m *yaml.Node, key string, value *yaml.Node) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content[i+1] = value
			return
		}
	}
	m.Content = append(m.Content, Scalar(key), value)
}

// Delete removes the entry for key from a mapping node.
// Returns true if an entry was removed.
func Delete(m *yaml.Node, key string) bool {
	if m == nil || m.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return true
		}
	}
	return false
}

// Keys returns the keys of a mapping node in document order.
func Keys(m *yaml.Node) []string {
	if m == nil || m.Kind != yaml.MappingNode {
		return nil
	}
	keys := make([]string, 0, len(m.Content)/2)
	for i := 0; i+1 < len(m.Content); i += 2 {
		keys = append(keys, m.Content[i].Value)
	}
	return keys
}
