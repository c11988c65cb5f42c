package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
)

const (
	defaultMaxResults = 50
	fuzzyMatchCap     = 10
	relatedNodesCap   = 10
	suggestionsCap    = 5
	similarityGate    = 0.6
)

// querySuggestions is the static phrase list offered alongside results.
var querySuggestions = []string{
	"send a message to slack",
	"store records in postgres",
	"generate text with openai",
	"trigger on incoming webhook",
	"upload a file to google drive",
	"create an issue in github",
	"schedule a recurring workflow",
}

// SearchOptions are the optional knobs for one search call. Nil pointer
// fields take their defaults: MaxResults 50, FuzzySearch true. A filter
// list is ORed internally.
type SearchOptions struct {
	Categories    []string
	Subcategories []string
	MaxResults    *int
	FuzzySearch   *bool
}

// Engine performs substring-then-fuzzy search over the catalog.
type Engine struct {
	store *Store
}

// NewEngine creates a search engine over the given store.
func NewEngine(store *Store) *Engine {
	return &Engine{store: store}
}

// Search runs one catalog search. An empty query matches everything up to
// the result cap (the substring check is vacuously true); this is a
// documented decision, giving callers a deterministic browse path instead
// of an error. The call fails only when the catalog has never been loaded.
func (e *Engine) Search(query string, opts SearchOptions) (apptype.SearchResult, error) {
	if !e.store.Loaded() {
		return apptype.SearchResult{}, ErrNotLoaded
	}

	maxResults := defaultMaxResults
	if opts.MaxResults != nil {
		maxResults = *opts.MaxResults
	}
	if maxResults < 0 {
		maxResults = 0
	}
	fuzzy := true
	if opts.FuzzySearch != nil {
		fuzzy = *opts.FuzzySearch
	}

	candidates := filterByOptions(e.store.All(), opts)
	q := strings.ToLower(strings.TrimSpace(query))

	exact := make([]apptype.CatalogEntity, 0, len(candidates))
	rest := make([]apptype.CatalogEntity, 0, len(candidates))
	for _, c := range candidates {
		if matchesExact(c, q) {
			exact = append(exact, c)
		} else {
			rest = append(rest, c)
		}
	}

	results := exact
	if fuzzy && len(exact) < maxResults {
		results = append(results, fuzzyMatches(rest, q)...)
	}
	if len(results) > maxResults {
		results = results[:maxResults]
	}

	return apptype.SearchResult{
		Query:               query,
		Nodes:               results,
		Categories:          distinctCategories(results),
		Suggestions:         filteredSuggestions(q),
		RelatedNodes:        e.relatedNodes(results),
		AIOptimizedVariants: aiVariants(results),
	}, nil
}

// filterByOptions keeps entities passing any of the listed category or
// subcategory filters (case-insensitive substring). No filters means no
// restriction.
func filterByOptions(entities []apptype.CatalogEntity, opts SearchOptions) []apptype.CatalogEntity {
	if len(opts.Categories) == 0 && len(opts.Subcategories) == 0 {
		return entities
	}
	out := make([]apptype.CatalogEntity, 0, len(entities))
	for _, e := range entities {
		if passesFilter(e.Category, opts.Categories) || passesFilter(e.Subcategory, opts.Subcategories) {
			out = append(out, e)
		}
	}
	return out
}

func passesFilter(field string, filters []string) bool {
	f := strings.ToLower(field)
	for _, want := range filters {
		if strings.Contains(f, strings.ToLower(want)) {
			return true
		}
	}
	return false
}

// matchesExact reports literal substring containment of the lowercased
// query in the entity's text fields.
func matchesExact(e apptype.CatalogEntity, q string) bool {
	if strings.Contains(strings.ToLower(e.DisplayName), q) ||
		strings.Contains(strings.ToLower(e.Description), q) ||
		strings.Contains(strings.ToLower(e.Identifier), q) {
		return true
	}
	for _, t := range e.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	for _, a := range e.Aliases {
		if strings.Contains(strings.ToLower(a), q) {
			return true
		}
	}
	return false
}

// fuzzyMatches appends candidates where any query word is a substring of
// the entity's combined display name and description, or clears the
// normalized-similarity gate against that combined text. Capped at 10.
func fuzzyMatches(candidates []apptype.CatalogEntity, q string) []apptype.CatalogEntity {
	words := strings.Fields(q)
	if len(words) == 0 {
		return nil
	}
	var out []apptype.CatalogEntity
	for _, c := range candidates {
		combined := strings.ToLower(strings.TrimSpace(c.DisplayName + " " + c.Description))
		for _, w := range words {
			if strings.Contains(combined, w) || similarity(w, combined) > similarityGate {
				out = append(out, c)
				break
			}
		}
		if len(out) >= fuzzyMatchCap {
			break
		}
	}
	return out
}

func (e *Engine) relatedNodes(results []apptype.CatalogEntity) []apptype.CatalogEntity {
	if len(results) == 0 {
		return []apptype.CatalogEntity{}
	}
	inResult := make(map[string]bool, len(results))
	categories := make(map[string]bool)
	subcategories := make(map[string]bool)
	for _, r := range results {
		inResult[r.Identifier] = true
		if r.Category != "" {
			categories[strings.ToLower(r.Category)] = true
		}
		if r.Subcategory != "" {
			subcategories[strings.ToLower(r.Subcategory)] = true
		}
	}

	related := []apptype.CatalogEntity{}
	for _, ent := range e.store.All() {
		if inResult[ent.Identifier] {
			continue
		}
		if categories[strings.ToLower(ent.Category)] ||
			(ent.Subcategory != "" && subcategories[strings.ToLower(ent.Subcategory)]) {
			related = append(related, ent)
			if len(related) >= relatedNodesCap {
				break
			}
		}
	}
	return related
}

func distinctCategories(results []apptype.CatalogEntity) []string {
	seen := make(map[string]bool, len(results))
	out := []string{}
	for _, r := range results {
		if r.Category == "" || seen[r.Category] {
			continue
		}
		seen[r.Category] = true
		out = append(out, r.Category)
	}
	return out
}

// filteredSuggestions offers up to five phrases from the static list,
// excluding any phrase already containing the query text.
func filteredSuggestions(q string) []string {
	out := []string{}
	for _, s := range querySuggestions {
		if q != "" && strings.Contains(s, q) {
			continue
		}
		out = append(out, s)
		if len(out) >= suggestionsCap {
			break
		}
	}
	return out
}

func aiVariants(results []apptype.CatalogEntity) []apptype.CatalogEntity {
	out := []apptype.CatalogEntity{}
	for _, r := range results {
		if r.IsAI {
			out = append(out, r)
		}
	}
	return out
}

// levenshtein is the classic dynamic-programming edit distance with unit
// insert, delete and substitute costs.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, minInt(curr[j-1]+1, prev[j-1]+cost))
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

// similarity is the normalized edit-distance ratio: 1.0 for identical
// strings, decreasing toward 0 as distance grows relative to the longer
// string's length. Lengths are counted in runes to match the rune-based
// distance. It is used solely as a binary gate at 0.6.
func similarity(a, b string) float64 {
	longer, shorter := a, b
	longerLen := utf8.RuneCountInString(a)
	if lb := utf8.RuneCountInString(b); lb > longerLen {
		longer, shorter = b, a
		longerLen = lb
	}
	if longerLen == 0 {
		return 1.0
	}
	d := levenshtein(longer, shorter)
	return float64(longerLen-d) / float64(longerLen)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
