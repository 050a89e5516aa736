package topology

// =============================================================================
// Topology Scheme Detection
// =============================================================================

// Scheme identifies which network policy a manifest was built under.
type Scheme int

const (
	// SchemeCurrent is the current policy: default membership is
	// implicit, a service only carries a networks directive when it
	// belongs to more than the default network.
	SchemeCurrent Scheme = iota

	// SchemeLegacy is the deprecated policy that spelled out network
	// membership (including the default network) on every service.
	SchemeLegacy
)

func (s Scheme) String() string {
	switch s {
	case SchemeCurrent:
		return "current"
	case SchemeLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// DetectScheme classifies a manifest from its explicit per-service
// networks directives (service identifier -> listed network names;
// services without a directive are absent from the map).
//
// A manifest is legacy if any directive spells out membership the
// current policy leaves implicit, or enumerates networks beyond what
// the current table assigns to that service.
func (t *Table) DetectScheme(explicit map[string][]string) Scheme {
	for id, listed := range explicit {
		expected := make(map[string]bool)
		if t.InDefault(id) {
			expected[DefaultNetwork] = true
		}
		nonDefault := t.NetworksFor(id)
		for _, name := range nonDefault {
			expected[name] = true
		}

		// Under the current policy a default-only service carries no
		// directive at all.
		if len(nonDefault) == 0 {
			return SchemeLegacy
		}

		if len(listed) != len(expected) {
			return SchemeLegacy
		}
		for _, name := range listed {
			if !expected[name] {
				return SchemeLegacy
			}
		}
	}
	return SchemeCurrent
}
