package fragment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artpar/stacksmith/internal/core/yamlkit"
)

// =============================================================================
// Test Fixtures
// =============================================================================

const singleServiceFragment = `
pihole:
  image: pihole/pihole:latest
  ports:
    - "53:53/tcp"
    - "8053:80/tcp"
  environment:
    - WEBPASSWORD=%randomAdminPassword%
  restart: unless-stopped
`

const pairedServicesFragment = `
nextcloud:
  image: nextcloud:latest
  ports:
    - "9321:80"
  environment:
    - MYSQL_PASSWORD=%randomPassword%

nextcloud_db:
  image: mariadb:10
  environment:
    - MYSQL_ROOT_PASSWORD=%randomPassword%

volumes:
  nextcloud_data:
  nextcloud_db_data:
    driver: local
`

// =============================================================================
// ParseCatalogFile Tests
// =============================================================================

func TestParseCatalogFile_SingleService(t *testing.T) {
	fragments, err := ParseCatalogFile("pihole/service.yml", []byte(singleServiceFragment))
	require.NoError(t, err)
	require.Len(t, fragments, 1)

	f := fragments[0]
	assert.Equal(t, "pihole", f.ID)
	assert.Equal(t, "pihole/service.yml", f.Source)
	assert.Equal(t, "pihole/pihole:latest", yamlkit.Get(f.Body, "image").Value)
	assert.Empty(t, f.Volumes)
}

func TestParseCatalogFile_MultipleServicesSharedVolumes(t *testing.T) {
	fragments, err := ParseCatalogFile("nextcloud/service.yml", []byte(pairedServicesFragment))
	require.NoError(t, err)
	require.Len(t, fragments, 2)

	assert.Equal(t, "nextcloud", fragments[0].ID)
	assert.Equal(t, "nextcloud_db", fragments[1].ID)

	// volume declarations are shared by every service in the file
	for _, f := range fragments {
		assert.Contains(t, f.Volumes, "nextcloud_data")
		assert.Contains(t, f.Volumes, "nextcloud_db_data")
	}
	assert.Equal(t, "local", yamlkit.Get(fragments[0].Volumes["nextcloud_db_data"], "driver").Value)
}

func TestParseCatalogFile_InvalidYAML(t *testing.T) {
	_, err := ParseCatalogFile("bad/service.yml", []byte("services: [unclosed"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedFragment)
	assert.Contains(t, err.Error(), "bad/service.yml")
}

func TestParseCatalogFile_NotAMapping(t *testing.T) {
	_, err := ParseCatalogFile("bad/service.yml", []byte("- just\n- a\n- list\n"))
	assert.ErrorIs(t, err, ErrMalformedFragment)
}

func TestParseCatalogFile_Empty(t *testing.T) {
	_, err := ParseCatalogFile("empty/service.yml", []byte(""))
	assert.ErrorIs(t, err, ErrMalformedFragment)
}

func TestParseCatalogFile_ScalarServiceBody(t *testing.T) {
	_, err := ParseCatalogFile("bad/service.yml", []byte("app: just-a-string\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedFragment)
	assert.Contains(t, err.Error(), `"app"`)
}

func TestParseCatalogFile_NetworksDeclarationRejected(t *testing.T) {
	doc := `
app:
  image: myapp:1.0
networks:
  custom:
    driver: bridge
`
	_, err := ParseCatalogFile("app/service.yml", []byte(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedFragment)
	assert.Contains(t, err.Error(), "networks")
}

func TestParseCatalogFile_OnlyVolumes(t *testing.T) {
	_, err := ParseCatalogFile("vols/service.yml", []byte("volumes:\n  data:\n"))
	assert.ErrorIs(t, err, ErrMalformedFragment)
}

func TestParseCatalogFile_DuplicateKeyWithinFile(t *testing.T) {
	doc := "app:\n  image: a:1\napp:\n  image: a:2\n"
	_, err := ParseCatalogFile("app/service.yml", []byte(doc))
	assert.ErrorIs(t, err, ErrDuplicateServiceID)
}

// =============================================================================
// Registry Tests
// =============================================================================

func loadRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	for source, doc := range map[string]string{
		"pihole/service.yml":    singleServiceFragment,
		"nextcloud/service.yml": pairedServicesFragment,
	} {
		fragments, err := ParseCatalogFile(source, []byte(doc))
		require.NoError(t, err)
		for _, f := range fragments {
			require.NoError(t, r.Add(f))
		}
	}
	return r
}

func TestRegistry_IDsSorted(t *testing.T) {
	r := loadRegistry(t)
	assert.Equal(t, []string{"nextcloud", "nextcloud_db", "pihole"}, r.IDs())
	assert.Equal(t, 3, r.Len())
}

func TestRegistry_DuplicateAcrossFiles(t *testing.T) {
	r := loadRegistry(t)
	dupe, err := ParseCatalogFile("other/service.yml", []byte("pihole:\n  image: other/pihole:1\n"))
	require.NoError(t, err)

	err = r.Add(dupe[0])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateServiceID)
	assert.Contains(t, err.Error(), "pihole/service.yml")
	assert.Contains(t, err.Error(), "other/service.yml")
}

func TestRegistry_SelectCanonicalOrder(t *testing.T) {
	r := loadRegistry(t)

	forward, err := r.Select([]string{"nextcloud_db", "pihole", "nextcloud"})
	require.NoError(t, err)
	backward, err := r.Select([]string{"nextcloud", "nextcloud_db", "pihole"})
	require.NoError(t, err)

	ids := func(fragments []*ServiceFragment) []string {
		var out []string
		for _, f := range fragments {
			out = append(out, f.ID)
		}
		return out
	}
	assert.Equal(t, []string{"nextcloud", "nextcloud_db", "pihole"}, ids(forward))
	assert.Equal(t, ids(forward), ids(backward))
}

func TestRegistry_SelectDeduplicates(t *testing.T) {
	r := loadRegistry(t)
	selected, err := r.Select([]string{"pihole", "pihole"})
	require.NoError(t, err)
	assert.Len(t, selected, 1)
}

func TestRegistry_SelectUnknownService(t *testing.T) {
	r := loadRegistry(t)
	_, err := r.Select([]string{"pihole", "wireguard"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownService)
	assert.Contains(t, err.Error(), "wireguard")
}

func TestRegistry_Get(t *testing.T) {
	r := loadRegistry(t)
	f, ok := r.Get("nextcloud")
	require.True(t, ok)
	assert.Equal(t, "nextcloud", f.ID)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}
