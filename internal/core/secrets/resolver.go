package secrets

import (
	"context"
	"regexp"
	"strings"

	"github.com/artpar/stacksmith/internal/core/fragment"
	"github.com/artpar/stacksmith/internal/core/yamlkit"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// Placeholder Resolution
// =============================================================================

// markerRegex matches placeholder markers in scalar values.
// Groups:
//   - Group 1: "global:" prefix (optional) — selects the global scope
//   - Group 2: placeholder name
//
// Examples: %randomPassword%, %randomAdminPassword%, %global:apiToken%
var markerRegex = regexp.MustCompile(`%(global:)?([A-Za-z][A-Za-z0-9_]*)%`)

// Options controls resolution behaviour.
type Options struct {
	// DefaultPassword, when set, is used instead of a generated token
	// for password-named placeholders that have no stored value yet.
	// The override is persisted like a generated value, so later runs
	// stay stable.
	DefaultPassword string
}

// Resolve returns a copy of the fragment with every placeholder marker
// in its body substituted by a concrete value. Markers scoped to the
// fragment use the fragment identifier as scope; %global:name% markers
// share one value across all services.
//
// Missing values are generated and persisted before substitution;
// existing values are reused verbatim. The store is never truncated or
// rewritten here — only explicit operator resets remove entries.
func Resolve(ctx context.Context, frag *fragment.ServiceFragment, store Store, opts Options) (*fragment.ServiceFragment, error) {
	body := yamlkit.Clone(frag.Body)

	var resolveErr error
	yamlkit.VisitScalars(body, func(n *yaml.Node) {
		if resolveErr != nil || !strings.Contains(n.Value, "%") {
			return
		}
		n.Value = markerRegex.ReplaceAllStringFunc(n.Value, func(marker string) string {
			if resolveErr != nil {
				return marker
			}
			value, err := resolveMarker(ctx, marker, frag.ID, store, opts)
			if err != nil {
				resolveErr = err
				return marker
			}
			return value
		})
	})
	if resolveErr != nil {
		return nil, resolveErr
	}

	resolved := *frag
	resolved.Body = body
	return &resolved, nil
}

// resolveMarker looks up one marker in the store, generating and
// persisting a value if none exists.
func resolveMarker(ctx context.Context, marker, serviceID string, store Store, opts Options) (string, error) {
	key := MarkerKey(marker, serviceID)

	value, ok, err := store.Get(ctx, key)
	if err != nil {
		return "", err
	}
	if ok {
		return value, nil
	}

	if opts.DefaultPassword != "" && strings.Contains(strings.ToLower(key.Name), "password") {
		value = opts.DefaultPassword
	} else {
		value, err = GenerateToken(TokenLength)
		if err != nil {
			return "", err
		}
	}

	if err := store.Put(ctx, key, value); err != nil {
		return "", err
	}
	return value, nil
}

// MarkerKey returns the store key for a marker appearing in the body of
// the given service.
func MarkerKey(marker, serviceID string) Key {
	sub := markerRegex.FindStringSubmatch(marker)
	scope := serviceID
	if sub[1] != "" {
		scope = GlobalScope
	}
	return Key{Scope: scope, Name: sub[2]}
}

// Markers returns the placeholder keys referenced by a fragment body,
// in order of first appearance. Used to report which secrets a service
// depends on without resolving them.
func Markers(frag *fragment.ServiceFragment) []Key {
	var keys []Key
	seen := make(map[Key]bool)
	yamlkit.VisitScalars(frag.Body, func(n *yaml.Node) {
		for _, marker := range markerRegex.FindAllString(n.Value, -1) {
			key := MarkerKey(marker, frag.ID)
			if !seen[key] {
				seen[key] = true
				keys = append(keys, key)
			}
		}
	})
	return keys
}
