package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/stacksmith/internal/core/fragment"
)

// =============================================================================
// Test Helpers
// =============================================================================

func writeCatalogFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func seedCatalog(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeCatalogFile(t, root, "pihole/service.yml", `
pihole:
  image: pihole/pihole:latest
  ports:
    - "53:53/tcp"
`)
	writeCatalogFile(t, root, "nextcloud/service.yml", `
nextcloud:
  image: nextcloud:latest
nextcloud_db:
  image: mariadb:10

volumes:
  nextcloud_data:
`)
	writeCatalogFile(t, root, "networks.yml", `
networks:
  nextcloud:
    members: [nextcloud, nextcloud_db]
    isolated: [nextcloud_db]
`)
	return root
}

// =============================================================================
// Load Tests
// =============================================================================

func TestLoad(t *testing.T) {
	root := seedCatalog(t)
	catalog, err := Load(root)
	require.NoError(t, err)

	assert.Equal(t, []string{"nextcloud", "nextcloud_db", "pihole"}, catalog.Registry.IDs())
	assert.Equal(t, []string{"nextcloud"}, catalog.Table.NetworksFor("nextcloud_db"))
	assert.Equal(t, DefaultVersion, catalog.Header.Version)
}

func TestLoad_FragmentSourceIsRelative(t *testing.T) {
	root := seedCatalog(t)
	catalog, err := Load(root)
	require.NoError(t, err)

	f, ok := catalog.Registry.Get("pihole")
	require.True(t, ok)
	assert.Equal(t, filepath.Join("pihole", "service.yml"), f.Source)
}

func TestLoad_MissingRoot(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogMissing)
}

func TestLoad_EmptyCatalog(t *testing.T) {
	_, err := Load(t.TempDir())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCatalogEmpty)
}

func TestLoad_MissingTableMeansDefaultOnly(t *testing.T) {
	root := t.TempDir()
	writeCatalogFile(t, root, "plain/service.yml", "plain:\n  image: nginx:latest\n")

	catalog, err := Load(root)
	require.NoError(t, err)
	assert.Empty(t, catalog.Table.NetworksFor("plain"))
	assert.True(t, catalog.Table.InDefault("plain"))
}

func TestLoad_DuplicateServiceAcrossFiles(t *testing.T) {
	root := t.TempDir()
	writeCatalogFile(t, root, "a/service.yml", "web:\n  image: a:1\n")
	writeCatalogFile(t, root, "b/service.yml", "web:\n  image: b:1\n")

	_, err := Load(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, fragment.ErrDuplicateServiceID)
}

func TestLoad_MalformedFragmentNamesFile(t *testing.T) {
	root := t.TempDir()
	writeCatalogFile(t, root, "bad/service.yml", "- not\n- a\n- mapping\n")

	_, err := Load(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, fragment.ErrMalformedFragment)
	assert.Contains(t, err.Error(), filepath.Join("bad", "service.yml"))
}

// =============================================================================
// Header Tests
// =============================================================================

func TestLoad_HeaderOverridesVersion(t *testing.T) {
	root := seedCatalog(t)
	writeCatalogFile(t, root, "env.yml", `
version: "3.6"
x-logging:
  driver: json-file
`)

	catalog, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "3.6", catalog.Header.Version)
	require.NotNil(t, catalog.Header.Extra)
	assert.Equal(t, "x-logging", catalog.Header.Extra.Content[0].Value)
}

func TestLoad_HeaderVersionOnly(t *testing.T) {
	root := seedCatalog(t)
	writeCatalogFile(t, root, "env.yml", "version: \"2.4\"\n")

	catalog, err := Load(root)
	require.NoError(t, err)
	assert.Equal(t, "2.4", catalog.Header.Version)
	assert.Nil(t, catalog.Header.Extra)
}

func TestLoad_MalformedHeader(t *testing.T) {
	root := seedCatalog(t)
	writeCatalogFile(t, root, "env.yml", "- sequence\n")

	_, err := Load(root)
	require.Error(t, err)
	assert.ErrorIs(t, err, fragment.ErrMalformedFragment)
}
