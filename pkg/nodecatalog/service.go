package nodecatalog

import (
	"context"
	"fmt"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
	"github.com/flowsmith/mcp-node-catalog-go/internal/catalog"
	"github.com/flowsmith/mcp-node-catalog-go/internal/ingest"
	"github.com/flowsmith/mcp-node-catalog-go/internal/logger"
	"github.com/flowsmith/mcp-node-catalog-go/internal/snapshot"
)

// Service provides a library-first API for catalog discovery without MCP
// transport.
type Service struct {
	catalog   *catalog.Service
	refresher *ingest.Refresher
	snaps     *snapshot.Store
	log       logger.Logger
}

// NewService constructs a Service with the provided config.
func NewService(cfg *Config) (*Service, error) {
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	store := catalog.NewStore()
	svc := catalog.NewService(store, catalog.WithMissPolicy(cfg.missPolicy()))

	var snaps *snapshot.Store
	if cfg.SnapshotPath != "" {
		var err error
		snaps, err = snapshot.Open(cfg.SnapshotPath)
		if err != nil {
			return nil, fmt.Errorf("open snapshot store: %w", err)
		}
	}

	var refresher *ingest.Refresher
	if cfg.SourceURL != "" {
		fetcher := ingest.NewFetcher(cfg.SourceURL, cfg.RequestInterval, log)
		var snapStore ingest.SnapshotStore
		if snaps != nil {
			snapStore = snaps
		}
		refresher = ingest.NewRefresher(fetcher, store, snapStore, log)
	}

	s := &Service{catalog: svc, refresher: refresher, snaps: snaps, log: log}

	if cfg.SeedFile != "" {
		entities, err := ingest.LoadSeed(cfg.SeedFile)
		if err != nil {
			s.closeQuietly()
			return nil, err
		}
		if err := store.Load(entities); err != nil {
			s.closeQuietly()
			return nil, fmt.Errorf("load seed catalog: %w", err)
		}
	}
	return s, nil
}

// Close releases resources.
func (s *Service) Close() error {
	if s.snaps != nil {
		return s.snaps.Close()
	}
	return nil
}

func (s *Service) closeQuietly() { _ = s.Close() }

// LoadEntities replaces the catalog with the given entities.
func (s *Service) LoadEntities(entities []apptype.CatalogEntity) error {
	return s.catalog.Store().Load(entities)
}

// Bootstrap restores a persisted snapshot into an empty catalog, if any.
// It works with or without a remote source configured.
func (s *Service) Bootstrap(ctx context.Context) error {
	if s.refresher != nil {
		return s.refresher.Bootstrap(ctx)
	}
	if s.snaps == nil {
		return nil
	}
	return ingest.RestoreSnapshot(ctx, s.catalog.Store(), s.snaps, s.log)
}

// Refresh pulls the latest definitions from the configured source.
func (s *Service) Refresh(ctx context.Context, force bool) (apptype.RefreshResult, error) {
	if s.refresher == nil {
		return apptype.RefreshResult{}, fmt.Errorf("no catalog source configured")
	}
	return s.refresher.Refresh(ctx, force)
}

// DiscoverByCategory returns entities for a category label or alias.
func (s *Service) DiscoverByCategory(label string) ([]apptype.CatalogEntity, error) {
	return s.catalog.DiscoverByCategory(label)
}

// DiscoverByIntent returns entities serving a natural-language intent.
func (s *Service) DiscoverByIntent(phrase string) ([]apptype.CatalogEntity, error) {
	return s.catalog.DiscoverByIntent(phrase)
}

// SearchNodes runs a text search over the catalog.
func (s *Service) SearchNodes(query string, opts SearchOptions) (apptype.SearchResult, error) {
	return s.catalog.SearchNodes(query, opts.toInternal())
}

// SuggestChains proposes entity chains for a workflow intent.
func (s *Service) SuggestChains(intent apptype.ChainIntent) ([]apptype.ChainSuggestion, error) {
	return s.catalog.SuggestChains(intent)
}

// Statistics aggregates catalog counts.
func (s *Service) Statistics() (apptype.CatalogStatistics, error) {
	return s.catalog.Statistics()
}

// Node looks up a single entity by identifier.
func (s *Service) Node(id string) (apptype.CatalogEntity, error) {
	return s.catalog.Node(id)
}

// Catalog exposes the underlying catalog service for embedding callers
// (the MCP server wires through this).
func (s *Service) Catalog() *catalog.Service { return s.catalog }

// Refresher exposes the refresh driver; nil when no source is configured.
func (s *Service) Refresher() *ingest.Refresher { return s.refresher }
