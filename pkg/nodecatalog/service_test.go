package nodecatalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
	"github.com/flowsmith/mcp-node-catalog-go/internal/snapshot"
)

func newSeededService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(&Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	require.NoError(t, svc.LoadEntities([]apptype.CatalogEntity{
		{Identifier: "slack", DisplayName: "Slack", Description: "Send messages to Slack channels", Category: "Communication"},
		{Identifier: "postgres", DisplayName: "PostgreSQL", Description: "Query and insert rows in PostgreSQL", Category: "Database"},
		{Identifier: "set", DisplayName: "Set", Description: "Set and transform workflow fields", Category: "Core"},
	}))
	return svc
}

func TestServiceSearchAndLookup(t *testing.T) {
	svc := newSeededService(t)

	result, err := svc.SearchNodes("slack", SearchOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, result.Nodes)
	assert.Equal(t, "slack", result.Nodes[0].Identifier)

	node, err := svc.Node("postgres")
	require.NoError(t, err)
	assert.Equal(t, "PostgreSQL", node.DisplayName)
}

func TestServiceDiscovery(t *testing.T) {
	svc := newSeededService(t)

	nodes, err := svc.DiscoverByCategory("messaging")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "slack", nodes[0].Identifier)

	nodes, err = svc.DiscoverByIntent("query database")
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, "postgres", nodes[0].Identifier)
}

func TestServiceStatistics(t *testing.T) {
	svc := newSeededService(t)

	stats, err := svc.Statistics()
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalNodes)
}

func TestServiceRefreshWithoutSource(t *testing.T) {
	svc := newSeededService(t)

	_, err := svc.Refresh(context.Background(), false)
	assert.Error(t, err)
	// Bootstrap without a source is a no-op, not an error.
	assert.NoError(t, svc.Bootstrap(context.Background()))
}

func TestServiceSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`nodes:
  - identifier: slack
    displayName: Slack
    category: Communication
`), 0o644))

	svc, err := NewService(&Config{SeedFile: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	node, err := svc.Node("slack")
	require.NoError(t, err)
	assert.Equal(t, "Slack", node.DisplayName)
}

func TestServiceBootstrapFromSnapshotWithoutSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.db")

	snaps, err := snapshot.Open(path)
	require.NoError(t, err)
	require.NoError(t, snaps.Save(context.Background(), "rev-1", []apptype.CatalogEntity{
		{Identifier: "slack", DisplayName: "Slack", Category: "Communication"},
	}))
	require.NoError(t, snaps.Close())

	// SnapshotPath without SourceURL: the persisted snapshot still loads
	// at startup.
	svc, err := NewService(&Config{SnapshotPath: path})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })

	require.NoError(t, svc.Bootstrap(context.Background()))
	node, err := svc.Node("slack")
	require.NoError(t, err)
	assert.Equal(t, "Slack", node.DisplayName)
}

func TestServiceDropChainOnMiss(t *testing.T) {
	svc, err := NewService(&Config{DropChainOnMiss: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	require.NoError(t, svc.LoadEntities([]apptype.CatalogEntity{
		{Identifier: "set", DisplayName: "Set", Category: "Core"},
	}))

	// The AI chain cannot fully resolve, so the policy drops it.
	suggestions, err := svc.SuggestChains(apptype.ChainIntent{Text: "generate a summary"})
	require.NoError(t, err)
	assert.Empty(t, suggestions)
}
