package assembler

import (
	"errors"
	"fmt"
)

// =============================================================================
// Error Types
// =============================================================================

var (
	// ErrMalformedManifest is returned when a manifest document is not
	// structurally well-formed.
	ErrMalformedManifest = errors.New("malformed manifest document")

	// ErrVolumeConflict is returned when two fragments declare the same
	// volume name with differing definitions.
	ErrVolumeConflict = errors.New("conflicting volume definitions")

	// ErrUnmigratableService is returned when a manifest names a
	// service that is absent from the current catalog.
	ErrUnmigratableService = errors.New("service missing from catalog")
)

// VolumeConflictError names the volume and both contributing fragments.
// The conflict is never auto-resolved; the operator resolves it in the
// catalog.
type VolumeConflictError struct {
	Volume string
	First  string // service identifier of the first contributor
	Second string // service identifier of the conflicting contributor
}

func (e *VolumeConflictError) Error() string {
	return fmt.Sprintf("volume %q: conflicting definitions contributed by %q and %q", e.Volume, e.First, e.Second)
}

func (e *VolumeConflictError) Unwrap() error {
	return ErrVolumeConflict
}

// MigrationError names the service that blocks a migration. The
// service is surfaced to the operator rather than silently dropped.
type MigrationError struct {
	Service string
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("cannot migrate service %q: not present in the current catalog", e.Service)
}

func (e *MigrationError) Unwrap() error {
	return ErrUnmigratableService
}
