// Package topology computes per-service network membership from the
// static membership table shipped alongside the catalog, and detects
// which topology scheme an existing manifest was built under.
// This is part of the Functional Core - all functions are pure with no I/O.
package topology

import (
	"errors"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultNetwork is the implicit network every service joins unless the
// membership table isolates it. It is created by the orchestrator and
// must never be declared in the emitted manifest.
const DefaultNetwork = "default"

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrMalformedTable is returned when the membership table cannot be
	// parsed or is internally inconsistent.
	ErrMalformedTable = errors.New("malformed network membership table")
)

// =============================================================================
// Membership Table
// =============================================================================

// Membership lists the services that belong to one named network.
type Membership struct {
	// Members are the service identifiers joined to the network.
	Members []string `yaml:"members"`

	// Isolated lists members that leave the default network: they are
	// reachable only through this network. A paired database fragment
	// typically has no reason to be reachable from other services.
	Isolated []string `yaml:"isolated"`
}

// Table is the static service-to-network membership mapping maintained
// alongside the catalog. The default network is implicit and never
// appears in the table.
type Table struct {
	Networks map[string]Membership `yaml:"networks"`
}

// EmptyTable returns a table with no non-default networks. Every
// service then belongs to the default network only.
func EmptyTable() *Table {
	return &Table{Networks: map[string]Membership{}}
}

// ParseTable parses a membership table document.
func ParseTable(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedTable, err)
	}
	if t.Networks == nil {
		t.Networks = map[string]Membership{}
	}
	for name, m := range t.Networks {
		if name == DefaultNetwork {
			return nil, fmt.Errorf("%w: the %q network is implicit and must not be declared", ErrMalformedTable, DefaultNetwork)
		}
		members := make(map[string]bool, len(m.Members))
		for _, id := range m.Members {
			members[id] = true
		}
		for _, id := range m.Isolated {
			if !members[id] {
				return nil, fmt.Errorf("%w: network %q isolates %q which is not a member", ErrMalformedTable, name, id)
			}
		}
	}
	return &t, nil
}

// NetworksFor returns the non-default networks the given service
// belongs to, in lexicographic order.
func (t *Table) NetworksFor(id string) []string {
	var networks []string
	for name, m := range t.Networks {
		for _, member := range m.Members {
			if member == id {
				networks = append(networks, name)
				break
			}
		}
	}
	sort.Strings(networks)
	return networks
}

// InDefault reports whether the given service belongs to the default
// network. True unless some network isolates it.
func (t *Table) InDefault(id string) bool {
	for _, m := range t.Networks {
		for _, isolated := range m.Isolated {
			if isolated == id {
				return false
			}
		}
	}
	return true
}

// =============================================================================
// Assignment
// =============================================================================

// Assign computes the network membership for each selected service.
// Every service joins the default network unless the table isolates
// it, plus any non-default networks it is a member of. Pairing between
// fragments (an application and its database) is not enforced here:
// the networks a fragment declares are assigned whether or not its
// counterpart is selected.
//
// Each returned list is ordered with the default network first, then
// the remaining networks lexicographically.
func (t *Table) Assign(ids []string) map[string][]string {
	assignment := make(map[string][]string, len(ids))
	for _, id := range ids {
		var networks []string
		if t.InDefault(id) {
			networks = append(networks, DefaultNetwork)
		}
		networks = append(networks, t.NetworksFor(id)...)
		assignment[id] = networks
	}
	return assignment
}

// ActiveNetworks returns the non-default networks that have at least
// one member in the assignment, in lexicographic order. A network with
// zero selected members must not appear in the emitted manifest.
func ActiveNetworks(assignment map[string][]string) []string {
	seen := make(map[string]bool)
	for _, networks := range assignment {
		for _, name := range networks {
			if name != DefaultNetwork {
				seen[name] = true
			}
		}
	}
	active := make([]string, 0, len(seen))
	for name := range seen {
		active = append(active, name)
	}
	sort.Strings(active)
	return active
}
