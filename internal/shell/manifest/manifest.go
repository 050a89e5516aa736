// Package manifest reads and writes the emitted stack manifest.
// Writes are atomic (write-new-then-rename) and gated on a structural
// validation pass, so a failed run leaves the previous manifest
// untouched on disk.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/artpar/stacksmith/internal/core/assembler"
)

var (
	// ErrManifestMissing is returned when the manifest file does not exist.
	ErrManifestMissing = errors.New("manifest file does not exist")
)

// backupTimeFormat names backup files docker-compose.yml.20060102-150405.bak.
const backupTimeFormat = "20060102-150405"

// Read loads an existing manifest document from disk.
func Read(path string) (*assembler.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrManifestMissing, path)
		}
		return nil, err
	}
	doc, err := assembler.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Write encodes, validates and atomically writes the manifest. With
// backup enabled an existing manifest is first copied aside with a
// timestamped name. On any failure the previous manifest is left
// unmodified.
func Write(path string, doc *assembler.Document, backup bool) error {
	data, err := doc.Encode()
	if err != nil {
		return err
	}
	if err := Validate(data); err != nil {
		return err
	}

	if backup {
		if err := backupExisting(path); err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".manifest-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}

// backupExisting copies the current manifest to a timestamped .bak
// file. A missing manifest needs no backup.
func backupExisting(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	backupPath := fmt.Sprintf("%s.%s.bak", path, time.Now().Format(backupTimeFormat))
	return os.WriteFile(backupPath, data, 0o644)
}
