package catalog

import (
	"strings"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
)

// intentFallbackCap bounds the keyword-overlap fallback in ByIntent.
const intentFallbackCap = 20

// categoryAliases maps human labels to effective category labels. Keys are
// lowercase.
var categoryAliases = map[string]string{
	"ai":                      "Language Models",
	"artificial intelligence": "Language Models",
	"llm":                     "Language Models",
	"llms":                    "Language Models",
	"chat":                    "Communication",
	"messaging":               "Communication",
	"comms":                   "Communication",
	"db":                      "Database",
	"databases":               "Database",
	"storage":                 "Database",
	"crm":                     "Sales",
	"devops":                  "Development",
	"files":                   "Files",
	"scheduling":              "Core",
}

type intentEntry struct {
	phrase    string
	fragments []string
}

// intentTable maps canned intent phrases to identifier fragments of the
// integrations that serve them. Phrases are lowercase. The table is an
// ordered slice: the containment fallback in lookupIntent takes the first
// applicable entry, so the same phrase always resolves the same way.
var intentTable = []intentEntry{
	{"send message", []string{"slack", "discord", "telegram", "mattermost", "teams"}},
	{"send email", []string{"gmail", "sendgrid", "mailjet", "emailsend", "smtp"}},
	{"store data", []string{"postgres", "mysql", "mongodb", "redis", "airtable", "sheets"}},
	{"query database", []string{"postgres", "mysql", "mongodb", "snowflake"}},
	{"generate text", []string{"openai", "anthropic", "googleai", "cohere", "mistral"}},
	{"summarize content", []string{"openai", "anthropic", "googleai"}},
	{"call api", []string{"httprequest", "webhook", "graphql"}},
	{"receive webhook", []string{"webhook"}},
	{"schedule workflow", []string{"scheduletrigger", "cron", "interval"}},
	{"transform data", []string{"set", "code", "itemlists", "merge", "filter"}},
	{"upload file", []string{"googledrive", "dropbox", "awss3", "ftp"}},
	{"create ticket", []string{"jira", "github", "gitlab", "linear", "trello"}},
}

// Index answers category and intent discovery queries against a Store. Both
// paths are pure functions of the current catalog state and the input
// string.
type Index struct {
	store *Store
}

// NewIndex creates an Index over the given store.
func NewIndex(store *Store) *Index {
	return &Index{store: store}
}

// ByCategory returns entities matching the given category label. The label
// is resolved through the alias table first; either way, matching is
// case-insensitive substring containment against each entity's category and
// subcategory. An empty result is not an error.
func (ix *Index) ByCategory(label string) ([]apptype.CatalogEntity, error) {
	if !ix.store.Loaded() {
		return nil, ErrNotLoaded
	}
	effective := strings.ToLower(strings.TrimSpace(label))
	if alias, ok := categoryAliases[effective]; ok {
		effective = strings.ToLower(alias)
	}

	matched := []apptype.CatalogEntity{}
	for _, e := range ix.store.All() {
		if strings.Contains(strings.ToLower(e.Category), effective) ||
			strings.Contains(strings.ToLower(e.Subcategory), effective) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

// ByIntent returns entities serving the given intent phrase. The phrase is
// looked up against the static intent table (containment checked both
// ways); when no table entry applies, a keyword-overlap scan over entity
// text fields is used, capped at 20 results.
func (ix *Index) ByIntent(phrase string) ([]apptype.CatalogEntity, error) {
	if !ix.store.Loaded() {
		return nil, ErrNotLoaded
	}
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return []apptype.CatalogEntity{}, nil
	}

	if fragments := lookupIntent(p); fragments != nil {
		matched := []apptype.CatalogEntity{}
		for _, e := range ix.store.All() {
			id := strings.ToLower(e.Identifier)
			for _, frag := range fragments {
				if strings.Contains(id, frag) {
					matched = append(matched, e)
					break
				}
			}
		}
		return matched, nil
	}

	return ix.keywordScan(p), nil
}

// lookupIntent resolves a phrase against the intent table: an exact entry
// wins, otherwise the first entry in table order that contains or is
// contained by the phrase.
func lookupIntent(phrase string) []string {
	for _, e := range intentTable {
		if e.phrase == phrase {
			return e.fragments
		}
	}
	for _, e := range intentTable {
		if strings.Contains(e.phrase, phrase) || strings.Contains(phrase, e.phrase) {
			return e.fragments
		}
	}
	return nil
}

// keywordScan keeps any entity whose concatenated name, description and
// category contain any word of the phrase.
func (ix *Index) keywordScan(phrase string) []apptype.CatalogEntity {
	words := strings.Fields(phrase)
	matched := []apptype.CatalogEntity{}
	for _, e := range ix.store.All() {
		haystack := strings.ToLower(e.DisplayName + " " + e.Description + " " + e.Category)
		for _, w := range words {
			if strings.Contains(haystack, w) {
				matched = append(matched, e)
				break
			}
		}
		if len(matched) >= intentFallbackCap {
			break
		}
	}
	return matched
}
