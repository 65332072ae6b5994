package schema

import (
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ValidationSummary accumulates every finding from a validation run so that
// all problems are reported in one pass instead of failing on the first.
type ValidationSummary struct {
	// Valid is false once any error, or any strict-mode warning, is recorded.
	Valid bool

	// Errors are hard failures regardless of strictness.
	Errors []string

	// StrictWarnings invalidate the config only when strict mode is on.
	StrictWarnings []string

	// Warnings are informational in every mode.
	Warnings []string

	// Strict is the resolved root-level strictness.
	Strict bool
}

// NewSummary starts a run with the resolved root strictness.
func NewSummary(strict bool) *ValidationSummary {
	return &ValidationSummary{Valid: true, Strict: strict}
}

// OK reports whether the configuration survived validation.
func (s *ValidationSummary) OK() bool {
	return s.Valid
}

// collect routes one finding into the right bucket. Errors always
// invalidate; warnings invalidate only under strict mode, where they are
// kept apart from plain warnings so callers can render them as failures.
func (s *ValidationSummary) collect(msg string, strict, isError bool) {
	switch {
	case isError:
		s.Errors = append(s.Errors, msg)
		s.Valid = false
	case strict:
		s.StrictWarnings = append(s.StrictWarnings, msg)
		s.Valid = false
	default:
		s.Warnings = append(s.Warnings, msg)
	}
}

// aggEntry groups one repeated-key finding with every key spelling and
// every context it was seen in.
type aggEntry struct {
	template string
	strict   bool
	keys     []string
	contexts []string
}

func (e *aggEntry) addKey(key string) {
	for _, k := range e.keys {
		if k == key {
			return
		}
	}
	e.keys = append(e.keys, key)
}

// aggregator collapses the same ignored-key finding across many builds into
// one message listing all the places it occurred.
type aggregator struct {
	order   []string
	entries map[string]*aggEntry
}

func newAggregator() *aggregator {
	return &aggregator{entries: make(map[string]*aggEntry)}
}

// add records one occurrence of a tagged finding. The template's {keys} and
// {ctx} placeholders are filled in at flush time.
func (a *aggregator) add(tag, template string, keys []string, context string, strict bool) {
	e, ok := a.entries[tag]
	if !ok {
		e = &aggEntry{template: template}
		a.entries[tag] = e
		a.order = append(a.order, tag)
	}
	if strict {
		e.strict = true
	}
	for _, k := range keys {
		e.addKey(k)
	}
	e.contexts = append(e.contexts, strings.TrimPrefix(context, "in "))
}

// flush emits every aggregated finding exactly once, in first-seen order.
func (a *aggregator) flush(summary *ValidationSummary) {
	for _, tag := range a.order {
		e := a.entries[tag]
		msg := strings.Replace(e.template, "{keys}", strings.Join(e.keys, ", "), 1)
		msg = strings.Replace(msg, "{ctx}", "in "+strings.Join(e.contexts, ", "), 1)
		summary.collect(msg, e.strict, false)
	}
}

// warnKeysOnce scans cfg for any of the given ignored keys (case
// insensitive) and, when found, records one aggregated finding. It returns
// the set of matched keys so the conformance walk can skip them.
func warnKeysOnce(agg *aggregator, tag, template, context string, ignoredKeys []string, cfg map[string]any, strict bool) map[string]bool {
	matched := make(map[string]bool)
	var seen []string
	for _, key := range ignoredKeys {
		for present := range cfg {
			if strings.EqualFold(present, key) {
				matched[present] = true
				seen = append(seen, "`"+present+"`")
			}
		}
	}
	if len(seen) == 0 {
		return matched
	}
	agg.add(tag, template, seen, context, strict)
	return matched
}

// closestField finds the most plausible intended field name for a typo, or
// empty when nothing is close enough to suggest.
func closestField(key string, def Definition) string {
	best := ""
	bestDist := -1
	for _, field := range def.sortedFields() {
		d := fuzzy.LevenshteinDistance(key, field)
		if bestDist == -1 || d < bestDist {
			best, bestDist = field, d
		}
	}
	if best == "" {
		return ""
	}
	longer := len(key)
	if len(best) > longer {
		longer = len(best)
	}
	// Suggest only when the edit distance is small relative to the name.
	if bestDist > 0 && bestDist*2 < longer {
		return best
	}
	return ""
}
