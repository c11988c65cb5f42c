package apptype

// CatalogEntity represents one discoverable integration definition in the
// node catalog. Entities are immutable after load; a catalog refresh
// replaces the whole collection.
type CatalogEntity struct {
	Identifier       string   `json:"identifier"`
	DisplayName      string   `json:"displayName"`
	Description      string   `json:"description,omitempty"`
	Category         string   `json:"category,omitempty"`
	Subcategory      string   `json:"subcategory,omitempty"`
	Tags             []string `json:"tags,omitempty"`
	Aliases          []string `json:"aliases,omitempty"`
	IsTriggerVariant bool     `json:"isTriggerVariant,omitempty"`
	// IsAI is computed once at ingest time; consumers must not re-derive it.
	IsAI bool `json:"isAI,omitempty"`
}

// SearchResult aggregates the outcome of one catalog search. Exact substring
// matches come before fuzzy matches in Nodes.
type SearchResult struct {
	Query               string          `json:"query"`
	Nodes               []CatalogEntity `json:"nodes"`
	Categories          []string        `json:"categories"`
	Suggestions         []string        `json:"suggestions"`
	RelatedNodes        []CatalogEntity `json:"relatedNodes"`
	AIOptimizedVariants []CatalogEntity `json:"aiOptimizedVariants"`
}

// ChainIntent is a natural-language workflow intent plus optional user
// preferences.
type ChainIntent struct {
	Text        string            `json:"text"`
	Preferences *ChainPreferences `json:"preferences,omitempty"`
}

// ChainPreferences carries coarse user preferences for chain composition.
type ChainPreferences struct {
	Optimize string `json:"optimize,omitempty"` // "speed" | "reliability" | "cost"
}

// Chain complexity labels.
const (
	ComplexitySimple   = "simple"
	ComplexityModerate = "moderate"
	ComplexityComplex  = "complex"
)

// AlternativeChain is a short ordered list of entities offered as a fallback
// composition for a suggestion.
type AlternativeChain struct {
	Nodes     []CatalogEntity `json:"nodes"`
	Rationale string          `json:"rationale,omitempty"`
}

// ChainSuggestion proposes an ordered sequence of catalog entities as a
// starting point for a workflow. MissingEntities lists display names that
// the catalog could not resolve, when the composer is configured to
// annotate misses instead of dropping them silently.
type ChainSuggestion struct {
	Nodes           []CatalogEntity    `json:"nodes"`
	Rationale       string             `json:"rationale"`
	Confidence      float64            `json:"confidence"`
	Complexity      string             `json:"complexity"`
	EstimatedTime   string             `json:"estimatedTime,omitempty"`
	MissingEntities []string           `json:"missingEntities,omitempty"`
	Alternatives    []AlternativeChain `json:"alternatives,omitempty"`
}

// CategoryCount is one entry of a top-categories ranking.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CatalogStatistics is a single-pass aggregation over the catalog.
type CatalogStatistics struct {
	TotalNodes     int             `json:"totalNodes"`
	AINodes        int             `json:"aiNodes"`
	RegularNodes   int             `json:"regularNodes"`
	TriggerNodes   int             `json:"triggerNodes"`
	CategoryCounts map[string]int  `json:"categoryCounts"`
	TopCategories  []CategoryCount `json:"topCategories"`
}
