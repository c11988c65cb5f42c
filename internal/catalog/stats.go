package catalog

import (
	"sort"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
)

const topCategoriesCap = 10

// Statistics aggregates the catalog in a single pass: per-category counts,
// the top-10 categories and the AI/trigger partitions. The AI partition
// comes from the load-time IsAI flag, never from a query-time heuristic.
func Statistics(store *Store) (apptype.CatalogStatistics, error) {
	if !store.Loaded() {
		return apptype.CatalogStatistics{}, ErrNotLoaded
	}

	entities := store.All()
	counts := make(map[string]int)
	stats := apptype.CatalogStatistics{
		TotalNodes: len(entities),
	}
	for _, e := range entities {
		cat := e.Category
		if cat == "" {
			cat = "Uncategorized"
		}
		counts[cat]++
		if e.IsAI {
			stats.AINodes++
		}
		if e.IsTriggerVariant {
			stats.TriggerNodes++
		}
	}
	stats.RegularNodes = stats.TotalNodes - stats.AINodes
	stats.CategoryCounts = counts

	top := make([]apptype.CategoryCount, 0, len(counts))
	for cat, n := range counts {
		top = append(top, apptype.CategoryCount{Category: cat, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Category < top[j].Category
	})
	if len(top) > topCategoriesCap {
		top = top[:topCategoriesCap]
	}
	stats.TopCategories = top
	return stats, nil
}
