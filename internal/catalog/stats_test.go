package catalog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
)

func TestStatisticsCounts(t *testing.T) {
	store := setupTestStore(t)

	stats, err := Statistics(store)
	require.NoError(t, err)

	assert.Equal(t, store.Len(), stats.TotalNodes)
	assert.Equal(t, 1, stats.AINodes)
	assert.Equal(t, stats.TotalNodes-stats.AINodes, stats.RegularNodes)
	assert.Equal(t, 1, stats.TriggerNodes)

	assert.Equal(t, 3, stats.CategoryCounts["Database"])
	assert.Equal(t, 2, stats.CategoryCounts["Communication"])
	assert.Equal(t, 2, stats.CategoryCounts["Core"])
	assert.Equal(t, 1, stats.CategoryCounts["Language Models"])
}

func TestStatisticsTopCategoriesOrdering(t *testing.T) {
	stats, err := Statistics(setupTestStore(t))
	require.NoError(t, err)

	require.Len(t, stats.TopCategories, 4)
	assert.Equal(t, apptype.CategoryCount{Category: "Database", Count: 3}, stats.TopCategories[0])
	// Ties break alphabetically.
	assert.Equal(t, "Communication", stats.TopCategories[1].Category)
	assert.Equal(t, "Core", stats.TopCategories[2].Category)
	assert.Equal(t, "Language Models", stats.TopCategories[3].Category)
}

func TestStatisticsTopCategoriesCap(t *testing.T) {
	entities := make([]apptype.CatalogEntity, 0, 15)
	for i := 0; i < 15; i++ {
		entities = append(entities, apptype.CatalogEntity{
			Identifier:  fmt.Sprintf("node%02d", i),
			DisplayName: fmt.Sprintf("Node %02d", i),
			Category:    fmt.Sprintf("Category %02d", i),
		})
	}
	store := NewStore()
	require.NoError(t, store.Load(entities))

	stats, err := Statistics(store)
	require.NoError(t, err)
	assert.Len(t, stats.TopCategories, topCategoriesCap)
	assert.Equal(t, 15, len(stats.CategoryCounts))
}

func TestStatisticsUncategorized(t *testing.T) {
	store := NewStore()
	require.NoError(t, store.Load([]apptype.CatalogEntity{
		{Identifier: "mystery", DisplayName: "Mystery"},
	}))

	stats, err := Statistics(store)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.CategoryCounts["Uncategorized"])
	assert.Equal(t, "Uncategorized", stats.TopCategories[0].Category)
}

func TestStatisticsNotLoaded(t *testing.T) {
	_, err := Statistics(NewStore())
	assert.ErrorIs(t, err, ErrNotLoaded)
}
