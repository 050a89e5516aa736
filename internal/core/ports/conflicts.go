// Package ports checks catalog fragments for host port collisions.
// A conflict means two services publish the same host-side port and
// cannot run in the same stack. Used during catalog authoring and by
// the check command.
// This is part of the Functional Core - all functions are pure with no I/O.
package ports

import (
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/artpar/stacksmith/internal/core/fragment"
	"github.com/artpar/stacksmith/internal/core/yamlkit"
)

// KnownConflicts are host ports that several catalog fragments
// intentionally share because operators are meant to select only one
// of them (DNS resolvers all want 53).
var KnownConflicts = map[int]bool{
	53: true,
}

// Conflict reports one host port claimed by more than one fragment.
type Conflict struct {
	Port     int
	Services []string // sorted service identifiers
	Known    bool     // true for allowlisted alternative-service ports
}

// HostPort extracts the host-side port from a compose port entry.
// Entries may be "80", "1080:80", "bind_addr:1080:80", each optionally
// suffixed with "/tcp" or "/udp". A bare container port publishes to a
// random host port and cannot conflict.
func HostPort(entry string) (int, bool) {
	if i := strings.IndexByte(entry, '/'); i >= 0 {
		entry = entry[:i]
	}
	parts := strings.Split(entry, ":")
	if len(parts) < 2 {
		return 0, false
	}
	port, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || port <= 0 || port > 65535 {
		return 0, false
	}
	return port, true
}

// Public returns the host ports a fragment publishes.
func Public(frag *fragment.ServiceFragment) []int {
	directive := yamlkit.Get(frag.Body, "ports")
	if directive == nil || directive.Kind != yaml.SequenceNode {
		return nil
	}
	var published []int
	for _, item := range directive.Content {
		if item.Kind != yaml.ScalarNode {
			continue
		}
		if port, ok := HostPort(item.Value); ok {
			published = append(published, port)
		}
	}
	return published
}

// Conflicts scans every fragment in the registry and returns the host
// ports claimed by more than one service, ordered by port number.
func Conflicts(registry *fragment.Registry) []Conflict {
	claims := make(map[int][]string)
	for _, f := range registry.Fragments() {
		seen := make(map[int]bool)
		for _, port := range Public(f) {
			if seen[port] {
				continue
			}
			seen[port] = true
			claims[port] = append(claims[port], f.ID)
		}
	}

	var conflicts []Conflict
	for port, services := range claims {
		if len(services) < 2 {
			continue
		}
		sort.Strings(services)
		conflicts = append(conflicts, Conflict{
			Port:     port,
			Services: services,
			Known:    KnownConflicts[port],
		})
	}
	sort.Slice(conflicts, func(i, j int) bool { return conflicts[i].Port < conflicts[j].Port })
	return conflicts
}
