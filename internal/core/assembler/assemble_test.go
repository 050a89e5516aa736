package assembler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/artpar/stacksmith/internal/core/fragment"
	"github.com/artpar/stacksmith/internal/core/topology"
)

// =============================================================================
// Test Fixtures
// =============================================================================

const appFragmentFile = `
app:
  image: myapp:1.0
  ports:
    - "8080:80"
  environment:
    - DB_PASSWORD=resolved-secret-value
`

const dbFragmentFile = `
db:
  image: postgres:15
  environment:
    - POSTGRES_PASSWORD=resolved-secret-value

volumes:
  pgdata:
`

const scenarioTable = `
networks:
  app:
    members: [app, db]
    isolated: [db]
`

func parseFragments(t *testing.T, source, doc string) []*fragment.ServiceFragment {
	t.Helper()
	fragments, err := fragment.ParseCatalogFile(source, []byte(doc))
	require.NoError(t, err)
	return fragments
}

func scenarioRegistry(t *testing.T) *fragment.Registry {
	t.Helper()
	r := fragment.NewRegistry()
	for _, f := range parseFragments(t, "app/service.yml", appFragmentFile) {
		require.NoError(t, r.Add(f))
	}
	for _, f := range parseFragments(t, "db/service.yml", dbFragmentFile) {
		require.NoError(t, r.Add(f))
	}
	return r
}

func scenarioTopology(t *testing.T) *topology.Table {
	t.Helper()
	table, err := topology.ParseTable([]byte(scenarioTable))
	require.NoError(t, err)
	return table
}

func assembleSelection(t *testing.T, ids ...string) *Document {
	t.Helper()
	registry := scenarioRegistry(t)
	table := scenarioTopology(t)
	selected, err := registry.Select(ids)
	require.NoError(t, err)
	doc, err := Assemble(selected, table.Assign(ids), Header{Version: "3.9"})
	require.NoError(t, err)
	return doc
}

// decoded unmarshals an encoded document for structural assertions.
func decoded(t *testing.T, doc *Document) map[string]any {
	t.Helper()
	data, err := doc.Encode()
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, yaml.Unmarshal(data, &out))
	return out
}

// =============================================================================
// Assemble Tests
// =============================================================================

func TestAssemble_DatabaseOnlySelection(t *testing.T) {
	doc := assembleSelection(t, "db")
	out := decoded(t, doc)

	services := out["services"].(map[string]any)
	db := services["db"].(map[string]any)
	assert.Equal(t, []any{"app"}, db["networks"])

	networks := out["networks"].(map[string]any)
	assert.Len(t, networks, 1)
	assert.Contains(t, networks, "app")
}

func TestAssemble_PairedSelection(t *testing.T) {
	doc := assembleSelection(t, "db", "app")
	out := decoded(t, doc)

	services := out["services"].(map[string]any)
	app := services["app"].(map[string]any)
	db := services["db"].(map[string]any)
	assert.Equal(t, []any{"default", "app"}, app["networks"])
	assert.Equal(t, []any{"app"}, db["networks"])

	networks := out["networks"].(map[string]any)
	assert.Len(t, networks, 1)
	assert.Contains(t, networks, "app")
}

func TestAssemble_DefaultOnlyServiceHasNoDirective(t *testing.T) {
	fragments := parseFragments(t, "plain/service.yml", "plain:\n  image: nginx:latest\n")
	table := topology.EmptyTable()
	doc, err := Assemble(fragments, table.Assign([]string{"plain"}), Header{Version: "3.9"})
	require.NoError(t, err)

	out := decoded(t, doc)
	plain := out["services"].(map[string]any)["plain"].(map[string]any)
	assert.NotContains(t, plain, "networks")
	assert.NotContains(t, out, "networks")
}

func TestAssemble_DefaultNeverDeclaredTopLevel(t *testing.T) {
	doc := assembleSelection(t, "app", "db")
	out := decoded(t, doc)
	networks := out["networks"].(map[string]any)
	assert.NotContains(t, networks, "default")
}

func TestAssemble_FragmentNetworksDirectiveDiscarded(t *testing.T) {
	// a networks key smuggled into a fragment body is overridden by the
	// assigner
	fragments := parseFragments(t, "plain/service.yml", "plain:\n  image: nginx:latest\n")
	body := fragments[0].Body
	body.Content = append(body.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: "networks"},
		&yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Tag: "!!str", Value: "rogue"},
		}})

	table := topology.EmptyTable()
	doc, err := Assemble(fragments, table.Assign([]string{"plain"}), Header{})
	require.NoError(t, err)

	out := decoded(t, doc)
	plain := out["services"].(map[string]any)["plain"].(map[string]any)
	assert.NotContains(t, plain, "networks")
}

func TestAssemble_Idempotent(t *testing.T) {
	first, err := assembleSelection(t, "app", "db").Encode()
	require.NoError(t, err)
	second, err := assembleSelection(t, "app", "db").Encode()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAssemble_SelectionOrderIrrelevant(t *testing.T) {
	forward, err := assembleSelection(t, "app", "db").Encode()
	require.NoError(t, err)
	backward, err := assembleSelection(t, "db", "app").Encode()
	require.NoError(t, err)
	assert.Equal(t, forward, backward)
}

func TestAssemble_HeaderVersionAndExtras(t *testing.T) {
	var node yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte("x-logging:\n  driver: json-file\n"), &node))

	fragments := parseFragments(t, "plain/service.yml", "plain:\n  image: nginx:latest\n")
	doc, aerr := Assemble(fragments, topology.EmptyTable().Assign([]string{"plain"}), Header{
		Version: "3.6",
		Extra:   node.Content[0],
	})
	require.NoError(t, aerr)

	out := decoded(t, doc)
	assert.Equal(t, "3.6", out["version"])
	assert.Contains(t, out, "x-logging")
}

func TestAssemble_PreservesServiceDirectives(t *testing.T) {
	doc := assembleSelection(t, "app")
	out := decoded(t, doc)
	app := out["services"].(map[string]any)["app"].(map[string]any)
	assert.Equal(t, "myapp:1.0", app["image"])
	assert.Equal(t, []any{"8080:80"}, app["ports"])
	assert.Equal(t, []any{"DB_PASSWORD=resolved-secret-value"}, app["environment"])
}

// =============================================================================
// Volume Merge Tests
// =============================================================================

func TestAssemble_VolumesMerged(t *testing.T) {
	doc := assembleSelection(t, "app", "db")
	out := decoded(t, doc)
	volumes := out["volumes"].(map[string]any)
	assert.Contains(t, volumes, "pgdata")
}

func TestAssemble_NoVolumesSectionWhenNoneContributed(t *testing.T) {
	doc := assembleSelection(t, "app")
	out := decoded(t, doc)
	assert.NotContains(t, out, "volumes")
}

func TestAssemble_EqualVolumeDeclarationsDeduplicated(t *testing.T) {
	a := parseFragments(t, "a/service.yml", "a:\n  image: a:1\nvolumes:\n  shared:\n    driver: local\n")
	b := parseFragments(t, "b/service.yml", "b:\n  image: b:1\nvolumes:\n  shared:\n    driver: local\n")
	fragments := append(a, b...)

	ids := []string{"a", "b"}
	doc, err := Assemble(fragments, topology.EmptyTable().Assign(ids), Header{})
	require.NoError(t, err)

	out := decoded(t, doc)
	volumes := out["volumes"].(map[string]any)
	assert.Len(t, volumes, 1)
}

func TestAssemble_VolumeDefinitionConflict(t *testing.T) {
	a := parseFragments(t, "a/service.yml", "a:\n  image: a:1\nvolumes:\n  shared:\n    driver: local\n")
	b := parseFragments(t, "b/service.yml", "b:\n  image: b:1\nvolumes:\n  shared:\n    driver: nfs\n")
	fragments := append(a, b...)

	_, err := Assemble(fragments, topology.EmptyTable().Assign([]string{"a", "b"}), Header{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrVolumeConflict)

	var conflict *VolumeConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "shared", conflict.Volume)
	assert.Equal(t, "a", conflict.First)
	assert.Equal(t, "b", conflict.Second)
}
