// Package visibility evaluates property visibility conditions. The resolver is
// a pure predicate over (property schema, flat config snapshot): it has no side
// effects and no dependency on concrete node types, which keeps it
// independently testable and orthogonal to business-rule logic.
package visibility

import (
	"github.com/c360/flowcore/nodetype"
)

// IsVisible reports whether a property currently applies given the node's
// flat parameter values.
//
// A property with no display options is always visible. Show conditions form a
// conjunction: every referenced sibling must hold one of the allowed values.
// Hide conditions suppress the property when they all match. A referenced
// sibling absent from the config is treated as non-matching, never as an
// error: under Show the property stays hidden, under Hide it stays visible.
//
// Multi-level dependency chains (a property depending on a sibling whose own
// visibility is conditional) resolve naturally because evaluation reads the
// flat config snapshot, not the visible subset.
func IsVisible(prop *nodetype.PropertySchema, config map[string]any) bool {
	if prop == nil || prop.DisplayOptions == nil {
		return true
	}

	opts := prop.DisplayOptions

	for field, allowed := range opts.Show {
		value, exists := lookup(config, field)
		if !exists || !matchesAny(value, allowed) {
			return false
		}
	}

	if len(opts.Hide) > 0 {
		hidden := true
		for field, disallowed := range opts.Hide {
			value, exists := lookup(config, field)
			if !exists || !matchesAny(value, disallowed) {
				hidden = false
				break
			}
		}
		if hidden {
			return false
		}
	}

	return true
}

// VisibleProperties filters a schema's property list down to the subset that
// currently applies. The input order is preserved.
func VisibleProperties(props []nodetype.PropertySchema, config map[string]any) []nodetype.PropertySchema {
	visible := make([]nodetype.PropertySchema, 0, len(props))
	for i := range props {
		if IsVisible(&props[i], config) {
			visible = append(visible, props[i])
		}
	}
	return visible
}

func lookup(config map[string]any, field string) (any, bool) {
	if config == nil {
		return nil, false
	}
	value, exists := config[field]
	return value, exists
}

// matchesAny checks membership of value in the allowed set, comparing numbers
// across Go's numeric types (JSON decoding yields float64, builders often use
// int).
func matchesAny(value any, allowed []any) bool {
	for _, candidate := range allowed {
		if valueEqual(value, candidate) {
			return true
		}
	}
	return false
}

func valueEqual(a, b any) bool {
	if a == b {
		return true
	}

	aNum, aOK := toFloat(a)
	bNum, bOK := toFloat(b)
	if aOK && bOK {
		return aNum == bNum
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
