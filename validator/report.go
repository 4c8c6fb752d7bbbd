// Package validator implements node-level and graph-level validation of
// workflow documents against node-type capability schemas, under a selectable
// validation profile.
package validator

// Severity of a validation issue
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Issue represents a single validation problem
type Issue struct {
	Type           string   `json:"type"`     // "missing_required", "type_mismatch", "unknown_node_type", etc.
	Severity       Severity `json:"severity"` // "error", "warning", "info"
	Node           string   `json:"node"`     // node name, "(workflow)" for document-level issues
	Path           string   `json:"path,omitempty"`
	Message        string   `json:"message"`
	Suggestions    []string `json:"suggestions,omitempty"`
	SuggestedValue any      `json:"suggestedValue,omitempty"` // corrected value for auto-correctable issues
}

// WorkflowNode is the placeholder node name for document-level issues.
const WorkflowNode = "(workflow)"

// Summary holds aggregate counters for one validation pass
type Summary struct {
	NodeCount          int `json:"node_count"`
	EnabledNodeCount   int `json:"enabled_node_count"`
	TriggerCount       int `json:"trigger_count"`
	ValidConnections   int `json:"valid_connections"`
	InvalidConnections int `json:"invalid_connections"`
	ExpressionCount    int `json:"expression_count"`
}

// Report contains the results of a workflow validation pass. Errors, warnings,
// and notes are ordered: document-level issues first, then per-node issues in
// document order.
type Report struct {
	Valid    bool    `json:"valid"`
	Errors   []Issue `json:"errors"`
	Warnings []Issue `json:"warnings"`
	Notes    []Issue `json:"notes"`
	Summary  Summary `json:"summary"`
}

// add routes an issue into the matching report slice by severity.
func (r *Report) add(issue Issue) {
	switch issue.Severity {
	case SeverityError:
		r.Errors = append(r.Errors, issue)
	case SeverityWarning:
		r.Warnings = append(r.Warnings, issue)
	default:
		r.Notes = append(r.Notes, issue)
	}
}

// finish computes the final validity flag.
func (r *Report) finish() {
	r.Valid = len(r.Errors) == 0
	if r.Errors == nil {
		r.Errors = []Issue{}
	}
	if r.Warnings == nil {
		r.Warnings = []Issue{}
	}
	if r.Notes == nil {
		r.Notes = []Issue{}
	}
}
