package nodecatalog

import (
	"time"

	"github.com/flowsmith/mcp-node-catalog-go/internal/catalog"
	"github.com/flowsmith/mcp-node-catalog-go/internal/logger"
)

// Config configures a library-mode catalog Service.
type Config struct {
	// SourceURL is the remote catalog source base URL. Empty disables the
	// refresh path; the catalog must then be loaded from SeedFile or
	// LoadEntities.
	SourceURL string
	// SeedFile optionally bootstraps the catalog from a local YAML file.
	SeedFile string
	// SnapshotPath optionally enables last-good-snapshot persistence.
	SnapshotPath string
	// RequestInterval is the floor between source requests (min 1s).
	RequestInterval time.Duration
	// DropChainOnMiss discards a whole chain suggestion when any named
	// entity misses the catalog, instead of annotating the miss.
	DropChainOnMiss bool
	// Logger defaults to a no-op logger when nil.
	Logger logger.Logger
}

func (c *Config) missPolicy() catalog.MissPolicy {
	if c.DropChainOnMiss {
		return catalog.MissDropSuggestion
	}
	return catalog.MissAnnotate
}

// SearchOptions mirrors the internal search knobs for package mode. Nil
// pointers take defaults: MaxResults 50, FuzzySearch true.
type SearchOptions struct {
	Categories    []string
	Subcategories []string
	MaxResults    *int
	FuzzySearch   *bool
}

func (o SearchOptions) toInternal() catalog.SearchOptions {
	return catalog.SearchOptions{
		Categories:    o.Categories,
		Subcategories: o.Subcategories,
		MaxResults:    o.MaxResults,
		FuzzySearch:   o.FuzzySearch,
	}
}
