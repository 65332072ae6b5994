// Package schema validates loosely-typed parsed configuration against
// explicit, hand-built schema descriptions. The schema is a tree of
// field-name -> checker mappings constructed once at startup; nothing here
// reflects over Go types.
package schema

import (
	"fmt"
	"sort"
	"strings"
)

// Checker validates one declared field shape.
type Checker struct {
	// Label is the readable type name used in messages ("string",
	// "list[string]", ...).
	Label string

	// Valid type-checks a scalar value. Nil for pure container checkers.
	Valid func(v any) bool

	// Elem, when set, declares a homogeneous list of that element shape.
	Elem *Checker

	// Fields, when set, declares a nested object shape.
	Fields Definition
}

// Definition maps field names to their checkers.
type Definition map[string]Checker

var (
	stringChecker = Checker{Label: "string", Valid: func(v any) bool {
		_, ok := v.(string)
		return ok
	}}

	boolChecker = Checker{Label: "bool", Valid: func(v any) bool {
		_, ok := v.(bool)
		return ok
	}}

	numberChecker = Checker{Label: "number", Valid: func(v any) bool {
		switch v.(type) {
		case int, int32, int64, float32, float64:
			return true
		}
		return false
	}}
)

func listOf(elem Checker) Checker {
	e := elem
	return Checker{Label: "list[" + elem.Label + "]", Elem: &e}
}

// BuildDefinition describes one build entry.
func BuildDefinition() Definition {
	return Definition{
		"include":           listOf(stringChecker),
		"exclude":           listOf(stringChecker),
		"strict_config":     boolChecker,
		"out":               stringChecker,
		"respect_gitignore": boolChecker,
		"log_level":         stringChecker,
	}
}

// RootDefinition describes the top-level configuration. The builds list has
// its own per-entry validation pass and is ignored during the root
// conformance walk.
func RootDefinition() Definition {
	return Definition{
		"builds":            {Label: "list"},
		"log_level":         stringChecker,
		"out":               stringChecker,
		"respect_gitignore": boolChecker,
		"strict_config":     boolChecker,
		"watch_interval":    numberChecker,
	}
}

// sortedFields returns the definition's field names in stable order.
func (d Definition) sortedFields() []string {
	names := make([]string, 0, len(d))
	for name := range d {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// typeName renders a value's type for messages the way users see their
// config, not the way Go spells it.
func typeName(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int, int32, int64, float32, float64:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}

// checkConformance walks one object against a definition, collecting all
// findings into the summary. prewarn keys were already reported by a
// warn-once pass and are skipped entirely; ignore keys are declared but
// validated elsewhere.
func checkConformance(cfg map[string]any, def Definition, context string, strict bool, summary *ValidationSummary, prewarn, ignore map[string]bool) bool {
	valid := true

	for _, field := range def.sortedFields() {
		val, present := cfg[field]
		if !present || prewarn[field] || ignore[field] {
			// Missing optional fields are never failures.
			continue
		}

		checker := def[field]
		switch {
		case checker.Elem != nil:
			if !checkList(val, checker, context, field, strict, summary, prewarn) {
				valid = false
			}
		case checker.Fields != nil:
			sub, ok := val.(map[string]any)
			if !ok {
				summary.collect(fmt.Sprintf("%s: key `%s` expected an object with named keys, got %s",
					context, field, typeName(val)), strict, true)
				valid = false
				continue
			}
			if !checkConformance(sub, checker.Fields, context+"."+field, strict, summary, nil, nil) {
				valid = false
			}
		case checker.Valid != nil:
			if !checker.Valid(val) {
				summary.collect(fmt.Sprintf("%s: key `%s` expected %s, got %s",
					context, field, checker.Label, typeName(val)), strict, true)
				valid = false
			}
		}
	}

	if !reportUnknownKeys(cfg, def, context, strict, summary, prewarn) && strict {
		valid = false
	}

	return valid
}

// checkList type-checks every element of a homogeneous list, embedding the
// element index in each finding.
func checkList(val any, checker Checker, context, field string, strict bool, summary *ValidationSummary, prewarn map[string]bool) bool {
	items, ok := val.([]any)
	if !ok {
		// A pre-typed string slice can appear when callers hand in decoded
		// values instead of raw JSON shapes.
		if _, isTyped := val.([]string); isTyped && checker.Elem.Label == "string" {
			return true
		}
		summary.collect(fmt.Sprintf("%s: key `%s` expected %s, got %s",
			context, field, checker.Label, typeName(val)), strict, true)
		return false
	}

	valid := true
	for i, item := range items {
		if checker.Elem.Fields != nil {
			sub, ok := item.(map[string]any)
			if !ok {
				summary.collect(fmt.Sprintf("%s: key `%s` #%d expected an object with named keys, got %s",
					context, field, i+1, typeName(item)), strict, true)
				valid = false
				continue
			}
			if !checkConformance(sub, checker.Elem.Fields, fmt.Sprintf("%s.%s[%d]", context, field, i), strict, summary, prewarn, nil) {
				valid = false
			}
			continue
		}
		if checker.Elem.Valid != nil && !checker.Elem.Valid(item) {
			summary.collect(fmt.Sprintf("%s: key `%s[%d]` expected %s, got %s",
				context, field, i, checker.Elem.Label, typeName(item)), strict, true)
			valid = false
		}
	}
	return valid
}

// reportUnknownKeys collects all input keys absent from the definition into
// one message, with a closest-match hint for likely typos. Unknown keys are
// never a local error; strictness decides whether they count against
// validity.
func reportUnknownKeys(cfg map[string]any, def Definition, context string, strict bool, summary *ValidationSummary, prewarn map[string]bool) bool {
	var unknown []string
	for k := range cfg {
		if _, known := def[k]; !known && !prewarn[k] {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return true
	}
	sort.Strings(unknown)

	quoted := make([]string, len(unknown))
	for i, u := range unknown {
		quoted[i] = "`" + u + "`"
	}

	msg := fmt.Sprintf("Unknown key%s %s %s.", plural(len(unknown)), strings.Join(quoted, ", "), context)

	var hints []string
	for _, k := range unknown {
		if close := closestField(k, def); close != "" {
			hints = append(hints, fmt.Sprintf("'%s' → '%s'", k, close))
		}
	}
	if len(hints) > 0 {
		msg += "\nHint: did you mean " + strings.Join(hints, ", ") + "?"
	}

	summary.collect(msg, strict, false)
	return false
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
