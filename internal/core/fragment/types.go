package fragment

import "gopkg.in/yaml.v3"

// =============================================================================
// ServiceFragment
// =============================================================================

// ServiceFragment is one service's declarative definition, authored
// independently in the catalog and merged into the final manifest.
// Fragments are read-only to the engine: Body is never mutated in
// place, resolution and assembly always operate on copies.
type ServiceFragment struct {
	// ID is the unique service identifier, used as the service key in
	// the emitted manifest.
	ID string

	// Body is the service definition as a YAML mapping node (image,
	// ports, volumes, environment, ...). May contain placeholder
	// markers in scalar values.
	Body *yaml.Node

	// Volumes holds named volume declarations contributed by the
	// fragment's source file, keyed by volume name. A nil node value
	// means a bare declaration (default driver).
	Volumes map[string]*yaml.Node

	// Source is the catalog-relative path of the file the fragment was
	// parsed from, used in error messages.
	Source string
}
