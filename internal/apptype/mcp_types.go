package apptype

// SearchNodesArgs represents the arguments for the search_nodes tool
type SearchNodesArgs struct {
	Query         string   `json:"query" jsonschema:"Free-text search query. An empty query matches everything up to the result cap."`
	Categories    []string `json:"categories,omitempty" jsonschema:"Optional category filters. An entity passes if any listed category matches (case-insensitive substring)."`
	Subcategories []string `json:"subcategories,omitempty" jsonschema:"Optional subcategory filters, ORed like categories."`
	MaxResults    *int     `json:"maxResults,omitempty" jsonschema:"Maximum number of results to return (default 50). Zero returns an empty list."`
	FuzzySearch   *bool    `json:"fuzzySearch,omitempty" jsonschema:"Whether to append fuzzy matches when exact matches fall short of the cap (default true)."`
}

// DiscoverByCategoryArgs represents the arguments for the discover_by_category tool
type DiscoverByCategoryArgs struct {
	Category string `json:"category" jsonschema:"Category label or alias, e.g. \"Communication\" or \"ai\"."`
}

// DiscoverByIntentArgs represents the arguments for the discover_by_intent tool
type DiscoverByIntentArgs struct {
	Phrase string `json:"phrase" jsonschema:"Short natural-language intent, e.g. \"send message\" or \"store data\"."`
}

// NodeListResult represents the result for discovery tools returning plain
// entity lists.
type NodeListResult struct {
	Nodes []CatalogEntity `json:"nodes"`
	Count int             `json:"count"`
}

// GetNodeArgs represents the arguments for the get_node tool
type GetNodeArgs struct {
	Identifier string `json:"identifier" jsonschema:"Stable identifier of the catalog entity."`
}

// SuggestChainsArgs represents the arguments for the suggest_node_chains tool
type SuggestChainsArgs struct {
	Text        string            `json:"text" jsonschema:"Natural-language workflow intent."`
	Preferences *ChainPreferences `json:"preferences,omitempty" jsonschema:"Optional coarse preferences (speed, reliability or cost)."`
}

// ChainSuggestionsResult represents the result for the suggest_node_chains tool
type ChainSuggestionsResult struct {
	Suggestions []ChainSuggestion `json:"suggestions"`
}

// NodeStatisticsArgs represents the arguments for the node_statistics tool
type NodeStatisticsArgs struct{}

// RefreshCatalogArgs represents the arguments for the refresh_catalog tool
type RefreshCatalogArgs struct {
	Force bool `json:"force,omitempty" jsonschema:"Bypass remote revision change-detection and reload unconditionally."`
}

// RefreshResult reports the outcome of a catalog refresh.
type RefreshResult struct {
	Refreshed bool   `json:"refreshed"`
	FellBack  bool   `json:"fellBack"`
	Revision  string `json:"revision,omitempty"`
	NodeCount int    `json:"nodeCount"`
}

// Health
type HealthArgs struct{}

type HealthResult struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Revision  string `json:"revision"`
	BuildDate string `json:"buildDate"`
	NodeCount int    `json:"nodeCount"`
	Source    string `json:"source,omitempty"`
}
