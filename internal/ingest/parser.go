package ingest

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/flowsmith/mcp-node-catalog-go/internal/apptype"
)

// MalformedRecordError indicates that a single catalog record could not be
// parsed. Callers skip and log it; it never aborts a batch.
type MalformedRecordError struct {
	Record string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("malformed catalog record %q: %s", e.Record, e.Reason)
}

// The remote definition format is semi-structured text, not a schema. The
// extraction below is best-effort field-level pattern matching; keep it
// behind ParseRecord so nothing else depends on the technique.
var (
	reDisplayName = regexp.MustCompile(`displayName:\s*['"]([^'"]+)['"]`)
	reName        = regexp.MustCompile(`\bname:\s*['"]([^'"]+)['"]`)
	reDescription = regexp.MustCompile(`description:\s*['"]([^'"]*)['"]`)
	reCategory    = regexp.MustCompile(`categor(?:y|ies):\s*\[?\s*['"]([^'"]+)['"]`)
	reSubcategory = regexp.MustCompile(`subcategor(?:y|ies):\s*\[?\s*['"]([^'"]+)['"]`)
	reAliasList   = regexp.MustCompile(`alias(?:es)?:\s*\[([^\]]*)\]`)
	reTagList     = regexp.MustCompile(`tags:\s*\[([^\]]*)\]`)
	reTriggerKind = regexp.MustCompile(`group:\s*\[[^\]]*['"]trigger['"]`)
	reQuoted      = regexp.MustCompile(`['"]([^'"]+)['"]`)
)

// ParseRecord extracts a CatalogEntity from one raw definition record.
// recordName is the resource name the record was fetched under; it serves
// as the identifier fallback when the record carries no name field.
func ParseRecord(recordName, raw string) (apptype.CatalogEntity, error) {
	display := firstGroup(reDisplayName, raw)
	if display == "" {
		return apptype.CatalogEntity{}, &MalformedRecordError{Record: recordName, Reason: "no displayName field"}
	}
	identifier := firstGroup(reName, raw)
	if identifier == "" {
		identifier = recordName
	}
	if identifier == "" {
		return apptype.CatalogEntity{}, &MalformedRecordError{Record: recordName, Reason: "no identifier"}
	}

	e := apptype.CatalogEntity{
		Identifier:       identifier,
		DisplayName:      display,
		Description:      firstGroup(reDescription, raw),
		Category:         firstGroup(reCategory, raw),
		Subcategory:      firstGroup(reSubcategory, raw),
		Tags:             quotedList(reTagList, raw),
		Aliases:          quotedList(reAliasList, raw),
		IsTriggerVariant: reTriggerKind.MatchString(raw) || strings.HasSuffix(identifier, "Trigger"),
	}
	e.IsAI = classifyAI(e)
	return e, nil
}

func firstGroup(re *regexp.Regexp, raw string) string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func quotedList(re *regexp.Regexp, raw string) []string {
	m := re.FindStringSubmatch(raw)
	if m == nil {
		return nil
	}
	var out []string
	for _, q := range reQuoted.FindAllStringSubmatch(m[1], -1) {
		out = append(out, q[1])
	}
	return out
}

// classifyAI decides the entity's AI partition once, at ingest. Everything
// downstream reads the resulting flag; nothing recomputes this at query
// time.
func classifyAI(e apptype.CatalogEntity) bool {
	if containsAIWord(e.Subcategory) || containsAIWord(e.Category) {
		return true
	}
	for _, t := range e.Tags {
		if containsAIWord(t) {
			return true
		}
	}
	return false
}

// containsAIWord matches "ai" as a whole word, or the language-model
// category labels, case-insensitively.
func containsAIWord(s string) bool {
	low := strings.ToLower(s)
	if strings.Contains(low, "language model") || strings.Contains(low, "machine learning") {
		return true
	}
	for _, w := range strings.FieldsFunc(low, func(r rune) bool {
		return r == ' ' || r == '/' || r == ',' || r == '-' || r == '(' || r == ')'
	}) {
		if w == "ai" {
			return true
		}
	}
	return false
}
