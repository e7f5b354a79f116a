// Package workflow finds workflow identifiers in free-form assistant text.
//
// Extraction is heuristic by design: the assistant mentions workflow ids in
// prose and in JSON fragments, and a fixed rule list covers the phrasings the
// workflow tools are known to produce. Over- or under-matching is accepted;
// ids are never validated against the workflow engine.
package workflow

import (
	"log/slog"
	"regexp"
)

// minIDLength filters out fragments like "ab" or "is" that the looser
// sentence patterns occasionally capture.
const minIDLength = 3

// Rule pairs a diagnostic name with a compiled pattern. The pattern's first
// capture group is the candidate workflow id.
type Rule struct {
	Name    string
	Pattern *regexp.Regexp
}

// DefaultRules returns the built-in extraction rules, applied in order.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "created", Pattern: regexp.MustCompile(`(?i)created workflow[:\s]+([a-zA-Z0-9_-]+)`)},
		{Name: "updated", Pattern: regexp.MustCompile(`(?i)updated workflow[:\s]+([a-zA-Z0-9_-]+)`)},
		{Name: "sentence", Pattern: regexp.MustCompile(`(?i)workflow[:\s]+['"]?([a-zA-Z0-9_-]+)['"]?\s+(?:has been |was )?(?:created|updated)`)},
		{Name: "workflowId", Pattern: regexp.MustCompile(`(?i)workflowId[:\s]+['"]?([a-zA-Z0-9_-]+)['"]?`)},
		{Name: "workflow_id", Pattern: regexp.MustCompile(`(?i)workflow_id[:\s]+['"]?([a-zA-Z0-9_-]+)['"]?`)},
		{Name: "json-id-type", Pattern: regexp.MustCompile(`(?i)"id":\s*"([a-zA-Z0-9_-]+)".*"type":\s*"workflow"`)},
		{Name: "json-type-id", Pattern: regexp.MustCompile(`(?i)"type":\s*"workflow".*"id":\s*"([a-zA-Z0-9_-]+)"`)},
	}
}

// Extractor scans response text against an ordered rule list.
type Extractor struct {
	rules []Rule
}

// NewExtractor builds an Extractor. A nil or empty rule list falls back to
// the defaults.
func NewExtractor(rules []Rule) *Extractor {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &Extractor{rules: rules}
}

// Extract returns the distinct workflow ids found in text, in discovery
// order. It is safe on any input, including the empty string.
func (e *Extractor) Extract(text string) []string {
	if text == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var ids []string

	for _, rule := range e.rules {
		for _, match := range rule.Pattern.FindAllStringSubmatch(text, -1) {
			if len(match) < 2 {
				continue
			}
			id := match[1]
			if len(id) < minIDLength {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	if len(ids) > 0 {
		slog.Info("detected workflow ids in response", "workflow_ids", ids)
	}

	return ids
}
