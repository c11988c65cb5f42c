package catalog

import (
	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
)

// Service bundles the discovery surface over one Store: category and intent
// discovery, text search, chain suggestions and statistics. It is an
// explicit, constructed object so tests can build isolated catalogs with
// controlled fixtures.
type Service struct {
	store    *Store
	index    *Index
	engine   *Engine
	composer *Composer
}

// Option configures a Service.
type Option func(*serviceConfig)

type serviceConfig struct {
	missPolicy MissPolicy
}

// WithMissPolicy sets the chain composer's lookup-miss policy.
func WithMissPolicy(p MissPolicy) Option {
	return func(c *serviceConfig) { c.missPolicy = p }
}

// NewService creates a Service over the given store.
func NewService(store *Store, opts ...Option) *Service {
	cfg := serviceConfig{missPolicy: MissAnnotate}
	for _, o := range opts {
		o(&cfg)
	}
	return &Service{
		store:    store,
		index:    NewIndex(store),
		engine:   NewEngine(store),
		composer: NewComposer(store, cfg.missPolicy),
	}
}

// Store returns the underlying catalog store.
func (s *Service) Store() *Store { return s.store }

// DiscoverByCategory returns entities for a category label or alias.
func (s *Service) DiscoverByCategory(label string) ([]apptype.CatalogEntity, error) {
	return s.index.ByCategory(label)
}

// DiscoverByIntent returns entities serving a natural-language intent.
func (s *Service) DiscoverByIntent(phrase string) ([]apptype.CatalogEntity, error) {
	return s.index.ByIntent(phrase)
}

// SearchNodes runs a text search over the catalog.
func (s *Service) SearchNodes(query string, opts SearchOptions) (apptype.SearchResult, error) {
	return s.engine.Search(query, opts)
}

// SuggestChains proposes entity chains for a workflow intent.
func (s *Service) SuggestChains(intent apptype.ChainIntent) ([]apptype.ChainSuggestion, error) {
	return s.composer.SuggestChains(intent)
}

// Statistics aggregates catalog counts.
func (s *Service) Statistics() (apptype.CatalogStatistics, error) {
	return Statistics(s.store)
}

// Node looks up a single entity by identifier.
func (s *Service) Node(id string) (apptype.CatalogEntity, error) {
	return s.store.ByIdentifier(id)
}
