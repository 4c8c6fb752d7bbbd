// Package expression scans workflow parameter values for template-expression
// syntax. It detects malformed, nested, and empty expressions, resolves node
// back-references against the set of nodes present in the document, and
// enforces the prefix convention that marks a string as computed.
//
// All entry points are pure: the validator holds no state between calls and is
// safe for concurrent use.
package expression

import (
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"
)

const (
	// DefaultMaxDepth bounds recursive descent into parameter trees. Beyond
	// the ceiling one depth-exceeded warning is emitted and descent stops.
	DefaultMaxDepth = 100

	// Sentinel marks a string value as computed rather than literal.
	Sentinel = "="
)

var (
	// $node["Name"] or $node['Name']
	nodeRefPattern = regexp.MustCompile(`\$node\[\s*["']([^"']+)["']\s*\]`)
	// $("Name") or $('Name') indexed accessor calls
	accessorPattern = regexp.MustCompile(`\$\(\s*["']([^"']+)["']\s*\)`)
	// $variable tokens ($json, $env, $now, ...)
	variablePattern = regexp.MustCompile(`\$([a-zA-Z_][a-zA-Z0-9_]*)`)
)

// Issue is a single diagnostic found during expression validation.
type Issue struct {
	Path       string `json:"path,omitempty"` // dot/bracket field path, e.g. "body.headers[2].value"
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"` // corrected value for auto-correctable issues
}

// Result aggregates the outcome of one validation call.
type Result struct {
	Valid       bool     `json:"valid"`
	Errors      []Issue  `json:"errors"`
	Warnings    []Issue  `json:"warnings"`
	Variables   []string `json:"variables"`   // referenced $variables, sorted unique
	NodeRefs    []string `json:"nodeRefs"`    // referenced node names, sorted unique
	Expressions int      `json:"expressions"` // number of expressions encountered

	// PrefixIssues are prefix-convention violations found during a tree walk:
	// strings at any depth that contain expression syntax without the
	// sentinel. Each carries the corrected value. Kept apart from Errors so
	// callers can report them under their own issue type.
	PrefixIssues []Issue `json:"prefixIssues,omitempty"`
}

// Validator scans strings and parameter trees for expression syntax.
type Validator struct {
	maxDepth int
}

// NewValidator creates a validator with the default depth ceiling.
func NewValidator() *Validator {
	return &Validator{maxDepth: DefaultMaxDepth}
}

// NewValidatorWithDepth creates a validator with a custom depth ceiling.
// Non-positive values fall back to the default.
func NewValidatorWithDepth(maxDepth int) *Validator {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Validator{maxDepth: maxDepth}
}

// ContainsExpression reports whether s contains template-expression delimiters.
func ContainsExpression(s string) bool {
	return strings.Contains(s, "{{") || strings.Contains(s, "}}")
}

// ValidateString checks a single string value. availableNodes is the set of
// node names present in the document; back-references to any other name are
// errors. A nil set disables reference checking.
func (v *Validator) ValidateString(value string, availableNodes map[string]struct{}) *Result {
	state := newWalkState(availableNodes)
	v.scanString("", value, state)
	return state.result()
}

// ValidateTree walks a whole parameter tree (objects, arrays, scalars) and
// validates every string it contains, applying both the syntax checks and the
// prefix convention at every depth. Each diagnostic is prefixed with a
// locatable field path. Descent is bounded by the depth ceiling, and circular
// structures from caller-supplied data are detected by identity and terminated
// with a warning, never a crash.
func (v *Validator) ValidateTree(params map[string]any, availableNodes map[string]struct{}) *Result {
	state := newWalkState(availableNodes)
	v.walkValue("", params, 0, state)
	return state.result()
}

// walkState accumulates diagnostics and reference sets across one call.
type walkState struct {
	availableNodes map[string]struct{}
	errors         []Issue
	warnings       []Issue
	variables      map[string]struct{}
	nodeRefs       map[string]struct{}
	prefixes       []Issue
	expressions    int
	depthWarned    bool
	visiting       map[uintptr]bool // identity set of ancestor containers
}

func newWalkState(availableNodes map[string]struct{}) *walkState {
	return &walkState{
		availableNodes: availableNodes,
		variables:      make(map[string]struct{}),
		nodeRefs:       make(map[string]struct{}),
		visiting:       make(map[uintptr]bool),
	}
}

func (s *walkState) result() *Result {
	return &Result{
		Valid:        len(s.errors) == 0,
		Errors:       s.errors,
		Warnings:     s.warnings,
		Variables:    sortedKeys(s.variables),
		NodeRefs:     sortedKeys(s.nodeRefs),
		Expressions:  s.expressions,
		PrefixIssues: s.prefixes,
	}
}

func (s *walkState) addError(path, message string) {
	s.errors = append(s.errors, Issue{Path: path, Message: message})
}

func (s *walkState) addWarning(path, message string) {
	s.warnings = append(s.warnings, Issue{Path: path, Message: message})
}

func (v *Validator) walkValue(path string, value any, depth int, state *walkState) {
	if depth > v.maxDepth {
		if !state.depthWarned {
			state.depthWarned = true
			state.addWarning(path, fmt.Sprintf(
				"parameter tree exceeds maximum depth of %d; deeper values were not validated", v.maxDepth))
		}
		return
	}

	switch val := value.(type) {
	case string:
		v.scanString(path, val, state)
		if found := CheckPrefix(path, val); found != nil {
			state.prefixes = append(state.prefixes, *found)
		}

	case map[string]any:
		id := reflect.ValueOf(val).Pointer()
		if state.visiting[id] {
			state.addWarning(path, "circular parameter structure detected; traversal stopped")
			return
		}
		state.visiting[id] = true
		// Sorted keys keep diagnostics deterministic across calls
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			v.walkValue(joinPath(path, key), val[key], depth+1, state)
		}
		delete(state.visiting, id)

	case []any:
		if len(val) == 0 {
			return
		}
		id := reflect.ValueOf(val).Pointer()
		if state.visiting[id] {
			state.addWarning(path, "circular parameter structure detected; traversal stopped")
			return
		}
		state.visiting[id] = true
		for i, child := range val {
			v.walkValue(fmt.Sprintf("%s[%d]", path, i), child, depth+1, state)
		}
		delete(state.visiting, id)
	}
	// Other scalar types carry no expression syntax
}

// scanString runs the brace-depth state machine over one string value.
func (v *Validator) scanString(path, value string, state *walkState) {
	if !ContainsExpression(value) {
		return
	}

	depth := 0
	contentStart := 0
	for i := 0; i < len(value)-1; i++ {
		switch value[i : i+2] {
		case "{{":
			if depth > 0 {
				state.addError(path, "expression nested inside another expression; expressions never nest")
			} else {
				depth = 1
				contentStart = i + 2
			}
			i++
		case "}}":
			if depth == 0 {
				state.addError(path, "unmatched expression closer '}}'")
			} else {
				depth = 0
				state.expressions++
				content := value[contentStart:i]
				if strings.TrimSpace(content) == "" {
					state.addError(path, "empty expression")
				} else {
					v.scanContent(path, content, state)
				}
			}
			i++
		}
	}
	if depth > 0 {
		state.addError(path, "unmatched expression opener '{{'")
	}
}

// scanContent extracts node references and variable usages from the inside of
// one expression.
func (v *Validator) scanContent(path, content string, state *walkState) {
	for _, match := range nodeRefPattern.FindAllStringSubmatch(content, -1) {
		v.recordNodeRef(path, match[1], state)
	}
	for _, match := range accessorPattern.FindAllStringSubmatch(content, -1) {
		v.recordNodeRef(path, match[1], state)
	}
	for _, match := range variablePattern.FindAllStringSubmatch(content, -1) {
		if match[1] == "node" {
			continue // captured as a node reference above
		}
		state.variables["$"+match[1]] = struct{}{}
	}
}

func (v *Validator) recordNodeRef(path, name string, state *walkState) {
	state.nodeRefs[name] = struct{}{}
	if state.availableNodes == nil {
		return
	}
	if _, ok := state.availableNodes[name]; !ok {
		state.addError(path, fmt.Sprintf("expression references unknown node %q", name))
	}
}

// CheckPrefix enforces the prefix convention: a string containing expression
// syntax must begin with the sentinel to be interpreted as computed rather
// than literal. The returned issue, if any, is auto-correctable and carries
// the corrected value.
func CheckPrefix(path, value string) *Issue {
	if !ContainsExpression(value) {
		return nil
	}
	if strings.HasPrefix(value, Sentinel) {
		return nil
	}
	return &Issue{
		Path:       path,
		Message:    "string contains expression syntax but is missing the '=' prefix; it would be treated as a literal",
		Suggestion: Sentinel + value,
	}
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
