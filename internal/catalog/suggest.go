package catalog

import (
	"strings"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
)

// MissPolicy controls what the composer does when a canned chain names an
// entity the catalog cannot resolve.
type MissPolicy int

const (
	// MissAnnotate keeps the chain and records the unresolved display
	// names on the suggestion.
	MissAnnotate MissPolicy = iota
	// MissOmit silently drops unresolved entities from the chain.
	MissOmit
	// MissDropSuggestion discards the whole suggestion on any miss.
	MissDropSuggestion
)

// chainTemplate is one canned keyword-group suggestion. Entities are named
// by display name and resolved against the live catalog at composition
// time.
type chainTemplate struct {
	keywords      []string
	entityNames   []string
	rationale     string
	confidence    float64
	complexity    string
	estimatedTime string
	alternatives  []alternativeTemplate
}

type alternativeTemplate struct {
	entityNames []string
	rationale   string
}

var chainTemplates = []chainTemplate{
	{
		keywords:      []string{"ai", "chat", "chatbot", "generate", "gpt", "llm", "summarize", "assistant"},
		entityNames:   []string{"OpenAI", "Set"},
		rationale:     "Generate content with a language model, then shape the output for downstream steps.",
		confidence:    0.9,
		complexity:    apptype.ComplexityModerate,
		estimatedTime: "15 minutes",
		alternatives: []alternativeTemplate{
			{entityNames: []string{"Anthropic", "Set"}, rationale: "Same shape with a different model provider."},
		},
	},
	{
		keywords:      []string{"data", "database", "store", "save", "record", "sql", "postgres"},
		entityNames:   []string{"Set", "PostgreSQL"},
		rationale:     "Normalize incoming fields, then persist them to a relational table.",
		confidence:    0.85,
		complexity:    apptype.ComplexitySimple,
		estimatedTime: "10 minutes",
		alternatives: []alternativeTemplate{
			{entityNames: []string{"Set", "MySQL"}, rationale: "Swap the target for MySQL."},
			{entityNames: []string{"Airtable"}, rationale: "Use a hosted table when no database is available."},
		},
	},
	{
		keywords:      []string{"notify", "notification", "alert", "message", "slack", "announce"},
		entityNames:   []string{"Slack"},
		rationale:     "Post a notification message to a channel.",
		confidence:    0.8,
		complexity:    apptype.ComplexitySimple,
		estimatedTime: "5 minutes",
		alternatives: []alternativeTemplate{
			{entityNames: []string{"Discord"}, rationale: "Deliver the alert to Discord instead."},
		},
	},
}

// Composer proposes canned entity chains for natural-language intents.
// This is deliberate pattern matching, not a planner.
type Composer struct {
	store      *Store
	missPolicy MissPolicy
}

// NewComposer creates a Composer with the given lookup-miss policy.
func NewComposer(store *Store, policy MissPolicy) *Composer {
	return &Composer{store: store, missPolicy: policy}
}

// SuggestChains emits one suggestion per keyword group present in the
// intent text. Suggestions whose chain resolves to no entities are dropped.
func (c *Composer) SuggestChains(intent apptype.ChainIntent) ([]apptype.ChainSuggestion, error) {
	if !c.store.Loaded() {
		return nil, ErrNotLoaded
	}
	text := strings.ToLower(intent.Text)

	suggestions := []apptype.ChainSuggestion{}
	for _, tmpl := range chainTemplates {
		if !containsAnyKeyword(text, tmpl.keywords) {
			continue
		}
		nodes, missing := c.resolve(tmpl.entityNames)
		if len(nodes) == 0 {
			continue
		}
		if c.missPolicy == MissDropSuggestion && len(missing) > 0 {
			continue
		}

		s := apptype.ChainSuggestion{
			Nodes:         nodes,
			Rationale:     tmpl.rationale,
			Confidence:    tmpl.confidence,
			Complexity:    tmpl.complexity,
			EstimatedTime: tmpl.estimatedTime,
		}
		if c.missPolicy == MissAnnotate {
			s.MissingEntities = missing
		}
		for _, alt := range tmpl.alternatives {
			altNodes, altMissing := c.resolve(alt.entityNames)
			if len(altNodes) == 0 {
				continue
			}
			if c.missPolicy == MissDropSuggestion && len(altMissing) > 0 {
				continue
			}
			s.Alternatives = append(s.Alternatives, apptype.AlternativeChain{
				Nodes:     altNodes,
				Rationale: alt.rationale,
			})
		}
		if intent.Preferences != nil && intent.Preferences.Optimize != "" {
			s.Rationale += " Tuned for " + intent.Preferences.Optimize + "."
		}
		suggestions = append(suggestions, s)
	}
	return suggestions, nil
}

// resolve looks up chain entities by display name, returning the resolved
// nodes in template order and the display names that missed.
func (c *Composer) resolve(names []string) ([]apptype.CatalogEntity, []string) {
	nodes := []apptype.CatalogEntity{}
	var missing []string
	for _, name := range names {
		if e, ok := c.store.ByDisplayName(name); ok {
			nodes = append(nodes, e)
		} else {
			missing = append(missing, name)
		}
	}
	return nodes, missing
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
