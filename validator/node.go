package validator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/c360/flowcore/expression"
	"github.com/c360/flowcore/nodetype"
	"github.com/c360/flowcore/types"
	"github.com/c360/flowcore/visibility"
)

// NodeRule is a node-type-specific execution-correctness check, keyed by
// normalized type name. Rules run under the runtime profile and above.
type NodeRule func(node *types.Node, desc *nodetype.Description, profile Profile) []Issue

// NodeValidator validates a single node's parameters against its type schema:
// required-field presence on the visible subset, type conformance, expression
// syntax, and per-type execution rules.
type NodeValidator struct {
	expr  *expression.Validator
	rules map[string]NodeRule
}

// NewNodeValidator creates a node validator with the built-in execution rules.
func NewNodeValidator() *NodeValidator {
	v := &NodeValidator{
		expr:  expression.NewValidator(),
		rules: make(map[string]NodeRule),
	}
	v.RegisterRule("core.code", codeNodeRule)
	v.RegisterRule("core.webhook", webhookNodeRule)
	return v
}

// RegisterRule installs (or replaces) an execution rule for a node type.
func (v *NodeValidator) RegisterRule(typeName string, rule NodeRule) {
	v.rules[nodetype.Normalize(typeName)] = rule
}

// ValidateNode checks one node against its resolved type schema. It returns
// the issues found and the number of template expressions encountered in the
// node's parameters. availableNodes is the set of node names in the document,
// used to resolve expression back-references.
func (v *NodeValidator) ValidateNode(node *types.Node, desc *nodetype.Description, availableNodes map[string]struct{}, profile Profile) ([]Issue, int) {
	var issues []Issue
	config := node.Parameters

	schemaNames := make(map[string]struct{}, len(desc.Properties))
	for i := range desc.Properties {
		prop := &desc.Properties[i]

		// Tolerate malformed schema entries: skip, never crash
		if prop.Name == "" || prop.Type == "" {
			issues = append(issues, Issue{
				Type:     "malformed_schema",
				Severity: SeverityWarning,
				Node:     node.Name,
				Message: fmt.Sprintf("node type %q has a schema entry with a missing name or type; the entry was skipped",
					desc.Name),
			})
			continue
		}
		schemaNames[prop.Name] = struct{}{}

		value, exists := config[prop.Name]
		visible := visibility.IsVisible(prop, config)

		if !visible {
			if exists && profile.stylisticChecks() {
				issues = append(issues, Issue{
					Type:     "hidden_parameter_set",
					Severity: profile.stylisticSeverity(),
					Node:     node.Name,
					Path:     prop.Name,
					Message: fmt.Sprintf("parameter %q is set but not applicable under the current values of its controlling fields",
						prop.Name),
				})
			}
			continue
		}

		if prop.Required && isMissing(value, exists) {
			issue := Issue{
				Type:     "missing_required",
				Severity: SeverityError,
				Node:     node.Name,
				Path:     prop.Name,
				Message:  fmt.Sprintf("required parameter %q is missing", prop.Name),
			}
			if profile.suggestions() {
				issue.Suggestions = requiredSuggestions(prop)
			}
			issues = append(issues, issue)
			continue
		}

		if exists && value != nil && profile.typeChecks() {
			issues = append(issues, v.checkValue(node.Name, prop, value, profile)...)
		}
	}

	if profile.stylisticChecks() {
		issues = append(issues, v.checkUnknownParameters(node.Name, config, schemaNames, profile)...)
	}

	expressions := 0
	if profile.typeChecks() {
		exprIssues, count := v.checkExpressions(node, availableNodes, profile)
		issues = append(issues, exprIssues...)
		expressions = count
	}

	if profile.executionRules() {
		if rule, ok := v.rules[desc.Name]; ok {
			issues = append(issues, rule(node, desc, profile)...)
		}
	}

	return issues, expressions
}

// isMissing reports whether a required parameter has no usable value. An empty
// string counts as missing for required fields.
func isMissing(value any, exists bool) bool {
	if !exists || value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}

// checkValue type-checks one present parameter value against its schema.
func (v *NodeValidator) checkValue(nodeName string, prop *nodetype.PropertySchema, value any, profile Profile) []Issue {
	// Computed values resolve at execution time; static type checks do not apply
	if s, ok := value.(string); ok && strings.HasPrefix(s, expression.Sentinel) {
		return nil
	}

	if prop.Type == "resourceLocator" {
		return v.checkResourceLocator(nodeName, prop, value, profile)
	}

	ok := true
	expected := prop.Type
	switch prop.Type {
	case "string":
		_, ok = value.(string)
	case "number":
		ok = isNumeric(value)
	case "boolean":
		_, ok = value.(bool)
	case "options":
		s, isString := value.(string)
		if !isString {
			ok = false
			expected = "string (one of the declared options)"
			break
		}
		if len(prop.Options) > 0 && !containsString(prop.Options, s) {
			issue := Issue{
				Type:     "invalid_option",
				Severity: SeverityError,
				Node:     nodeName,
				Path:     prop.Name,
				Message: fmt.Sprintf("parameter %q has value %q; valid options are %s",
					prop.Name, s, strings.Join(quoteAll(prop.Options), ", ")),
			}
			if profile.suggestions() {
				issue.Suggestions = []string{
					fmt.Sprintf("change %q to one of: %s", prop.Name, strings.Join(prop.Options, ", ")),
				}
			}
			return []Issue{issue}
		}
	case "json", "collection":
		switch value.(type) {
		case map[string]any, []any:
		case string:
			// Serialized form is accepted; content is checked at execution time
		default:
			ok = false
		}
	default:
		// Unrecognized schema type: tolerated, no static check possible
	}

	if ok {
		return nil
	}

	issue := Issue{
		Type:     "type_mismatch",
		Severity: SeverityError,
		Node:     nodeName,
		Path:     prop.Name,
		Message: fmt.Sprintf("parameter %q expects %s, got %T",
			prop.Name, expected, value),
	}
	if profile.suggestions() {
		issue.Suggestions = []string{
			fmt.Sprintf("supply a %s value for %q, or prefix the string with %q to compute it from an expression",
				prop.Type, prop.Name, expression.Sentinel),
		}
	}
	return []Issue{issue}
}

// checkResourceLocator validates the structured wrapper expected for
// resource-locator parameters. A bare expression string in place of the
// wrapper is auto-correctable.
func (v *NodeValidator) checkResourceLocator(nodeName string, prop *nodetype.PropertySchema, value any, profile Profile) []Issue {
	switch val := value.(type) {
	case string:
		if !expression.ContainsExpression(val) {
			break
		}
		issue := Issue{
			Type:     "bare_expression_for_resource",
			Severity: SeverityError,
			Node:     nodeName,
			Path:     prop.Name,
			Message: fmt.Sprintf("parameter %q expects a resource-locator object, got a bare expression string",
				prop.Name),
			SuggestedValue: map[string]any{
				"__rl":  true,
				"mode":  "id",
				"value": val,
			},
		}
		if profile.suggestions() {
			issue.Suggestions = []string{
				`wrap the expression in a resource locator: {"__rl": true, "mode": "id", "value": "<expression>"}`,
			}
		}
		return []Issue{issue}

	case map[string]any:
		var issues []Issue
		if rl, ok := val["__rl"].(bool); !ok || !rl {
			issues = append(issues, Issue{
				Type:     "invalid_resource_locator",
				Severity: SeverityError,
				Node:     nodeName,
				Path:     prop.Name,
				Message:  fmt.Sprintf("parameter %q resource locator is missing the \"__rl\": true marker", prop.Name),
			})
		}
		for _, key := range []string{"mode", "value"} {
			if _, ok := val[key]; !ok {
				issues = append(issues, Issue{
					Type:     "invalid_resource_locator",
					Severity: SeverityError,
					Node:     nodeName,
					Path:     prop.Name + "." + key,
					Message:  fmt.Sprintf("parameter %q resource locator is missing %q", prop.Name, key),
				})
			}
		}
		return issues
	}

	return []Issue{{
		Type:     "type_mismatch",
		Severity: SeverityError,
		Node:     nodeName,
		Path:     prop.Name,
		Message:  fmt.Sprintf("parameter %q expects a resource-locator object, got %T", prop.Name, value),
	}}
}

// checkExpressions validates every string in the node's parameter tree for
// expression syntax and the computed-value prefix convention.
func (v *NodeValidator) checkExpressions(node *types.Node, availableNodes map[string]struct{}, profile Profile) ([]Issue, int) {
	result := v.expr.ValidateTree(node.Parameters, availableNodes)

	var issues []Issue
	for _, e := range result.Errors {
		issue := Issue{
			Type:     "expression_invalid",
			Severity: SeverityError,
			Node:     node.Name,
			Path:     e.Path,
			Message:  e.Message,
		}
		if profile.suggestions() {
			issue.Suggestions = []string{
				"expression delimiters must pair as {{ ... }} with non-empty content and no nesting",
			}
		}
		issues = append(issues, issue)
	}
	for _, w := range result.Warnings {
		issues = append(issues, Issue{
			Type:     "expression_warning",
			Severity: SeverityWarning,
			Node:     node.Name,
			Path:     w.Path,
			Message:  w.Message,
		})
	}

	issues = append(issues, v.checkPrefixes(node.Name, result.PrefixIssues, profile)...)
	return issues, result.Expressions
}

// checkPrefixes maps the prefix-convention violations found during the tree
// walk onto report issues. The walk visits keys in sorted order and covers
// strings at any depth, so "body.headers[2].value" style paths are reported
// the same way top-level parameters are.
func (v *NodeValidator) checkPrefixes(nodeName string, found []expression.Issue, profile Profile) []Issue {
	issues := make([]Issue, 0, len(found))
	for _, f := range found {
		issue := Issue{
			Type:           "missing_expression_prefix",
			Severity:       SeverityError,
			Node:           nodeName,
			Path:           f.Path,
			Message:        f.Message,
			SuggestedValue: f.Suggestion,
		}
		if profile.suggestions() {
			issue.Suggestions = []string{
				fmt.Sprintf("prefix the value with %q so it is evaluated: %q", expression.Sentinel, f.Suggestion),
			}
		}
		issues = append(issues, issue)
	}
	return issues
}

// checkUnknownParameters flags top-level parameters that no schema entry
// declares. Sorted for deterministic reports.
func (v *NodeValidator) checkUnknownParameters(nodeName string, config map[string]any, schemaNames map[string]struct{}, profile Profile) []Issue {
	var unknown []string
	for key := range config {
		if _, ok := schemaNames[key]; !ok {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)

	issues := make([]Issue, 0, len(unknown))
	for _, key := range unknown {
		issues = append(issues, Issue{
			Type:     "unknown_parameter",
			Severity: profile.stylisticSeverity(),
			Node:     nodeName,
			Path:     key,
			Message:  fmt.Sprintf("parameter %q is not declared by the node type's schema", key),
		})
	}
	return issues
}

// codeNodeRule requires scripting nodes to contain a terminating return
// statement.
func codeNodeRule(node *types.Node, _ *nodetype.Description, profile Profile) []Issue {
	source := ""
	for _, key := range []string{"jsCode", "code"} {
		if s, ok := node.Parameters[key].(string); ok {
			source = s
			break
		}
	}
	if source == "" || strings.Contains(source, "return") {
		return nil
	}
	issue := Issue{
		Type:     "code_missing_return",
		Severity: SeverityError,
		Node:     node.Name,
		Path:     "jsCode",
		Message:  "code must end with a return statement so downstream nodes receive items",
	}
	if profile.suggestions() {
		issue.Suggestions = []string{"end the script with: return items;"}
	}
	return []Issue{issue}
}

// webhookNodeRule requires webhook triggers to declare a path.
func webhookNodeRule(node *types.Node, _ *nodetype.Description, profile Profile) []Issue {
	if s, ok := node.Parameters["path"].(string); ok && strings.TrimSpace(s) != "" {
		return nil
	}
	issue := Issue{
		Type:     "webhook_missing_path",
		Severity: SeverityError,
		Node:     node.Name,
		Path:     "path",
		Message:  "webhook trigger must declare a non-empty path",
	}
	if profile.suggestions() {
		issue.Suggestions = []string{`set "path" to the URL segment the webhook should listen on, e.g. "orders"`}
	}
	return []Issue{issue}
}

func requiredSuggestions(prop *nodetype.PropertySchema) []string {
	if prop.Default != nil {
		return []string{fmt.Sprintf("set %q; its default is %v", prop.Name, prop.Default)}
	}
	if len(prop.Options) > 0 {
		return []string{fmt.Sprintf("set %q to one of: %s", prop.Name, strings.Join(prop.Options, ", "))}
	}
	return []string{fmt.Sprintf("set %q to a %s value", prop.Name, prop.Type)}
}

func isNumeric(value any) bool {
	switch value.(type) {
	case int, int32, int64, float32, float64:
		return true
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, candidate := range list {
		if candidate == s {
			return true
		}
	}
	return false
}

func quoteAll(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}
