package validator

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/c360/flowcore/nodetype"
	"github.com/c360/flowcore/types"
)

// GraphValidator validates a whole workflow document: node identity, node
// configurations via NodeValidator, and the connection graph against each
// node type's declared port cardinality.
type GraphValidator struct {
	repo   nodetype.Repository
	node   *NodeValidator
	logger *slog.Logger
}

// NewGraphValidator creates a graph validator backed by the given node-type
// repository. A nil logger falls back to slog.Default().
func NewGraphValidator(repo nodetype.Repository, logger *slog.Logger) *GraphValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphValidator{
		repo:   repo,
		node:   NewNodeValidator(),
		logger: logger,
	}
}

// NodeValidator exposes the inner node validator so callers can register
// additional execution rules.
func (v *GraphValidator) NodeValidator() *NodeValidator {
	return v.node
}

// Validate runs a full validation pass over the document under the given
// profile. The document is never mutated. Issues are ordered: document-level
// first, then per-node in document order, then connection issues by sorted
// source name, so repeated runs over the same document yield identical
// reports.
func (v *GraphValidator) Validate(doc *types.WorkflowDocument, profile Profile) *Report {
	report := &Report{}
	defer report.finish()

	if doc == nil {
		report.add(Issue{
			Type:     "invalid_document",
			Severity: SeverityError,
			Node:     WorkflowNode,
			Message:  "workflow document is nil",
		})
		return report
	}

	v.logger.Debug("validating workflow",
		"workflow", doc.Name,
		"nodes", len(doc.Nodes),
		"profile", string(profile))

	report.Summary.NodeCount = len(doc.Nodes)

	if len(doc.Nodes) == 0 {
		issue := Issue{
			Type:     "empty_workflow",
			Severity: SeverityWarning,
			Node:     WorkflowNode,
			Message:  "workflow has no nodes",
		}
		if profile.suggestions() {
			issue.Suggestions = []string{"add a trigger node to start the workflow, then connect processing nodes to it"}
		}
		v.emit(report, profile, issue)
		return report
	}

	descs := v.checkNodes(doc, profile, report)
	v.checkConnections(doc, descs, profile, report)

	v.logger.Debug("workflow validation complete",
		"workflow", doc.Name,
		"errors", len(report.Errors),
		"warnings", len(report.Warnings))
	return report
}

// checkNodes validates node identity and per-node configuration, and returns
// the resolved type schema per node name for the connection pass.
func (v *GraphValidator) checkNodes(doc *types.WorkflowDocument, profile Profile, report *Report) map[string]*nodetype.Description {
	descs := make(map[string]*nodetype.Description, len(doc.Nodes))
	seenNames := make(map[string]bool, len(doc.Nodes))
	seenIDs := make(map[string]bool, len(doc.Nodes))
	availableNodes := doc.NodeNames()

	for i := range doc.Nodes {
		node := &doc.Nodes[i]

		if seenNames[node.Name] {
			v.emit(report, profile, Issue{
				Type:     "duplicate_node_name",
				Severity: SeverityError,
				Node:     node.Name,
				Message:  fmt.Sprintf("node name %q is used more than once; names are the graph key and must be unique", node.Name),
			})
		}
		seenNames[node.Name] = true

		if node.ID != "" {
			if seenIDs[node.ID] {
				v.emit(report, profile, Issue{
					Type:     "duplicate_node_id",
					Severity: SeverityError,
					Node:     node.Name,
					Message:  fmt.Sprintf("node id %q is used more than once", node.ID),
				})
			}
			seenIDs[node.ID] = true
		}

		if !node.Disabled {
			report.Summary.EnabledNodeCount++
		}

		desc, found := v.repo.GetNodeType(nodetype.Normalize(node.Type))
		if !found {
			issue := Issue{
				Type:     "unknown_node_type",
				Severity: SeverityError,
				Node:     node.Name,
				Message:  fmt.Sprintf("node type %q is not in the catalog", node.Type),
			}
			if profile.suggestions() {
				issue.Suggestions = []string{"check the type name for typos, or install the package that provides it"}
			}
			v.emit(report, profile, issue)
			continue
		}
		descs[node.Name] = desc

		if desc.IsTrigger() {
			report.Summary.TriggerCount++
		}

		issues, expressions := v.node.ValidateNode(node, desc, availableNodes, profile)
		report.Summary.ExpressionCount += expressions
		for _, issue := range issues {
			v.emit(report, profile, issue)
		}
	}

	return descs
}

// checkConnections validates the connection map: endpoint existence, input
// index sanity, output-port cardinality, and the self-reference policy.
func (v *GraphValidator) checkConnections(doc *types.WorkflowDocument, descs map[string]*nodetype.Description, profile Profile, report *Report) {
	names := doc.NodeNames()

	sources := make([]string, 0, len(doc.Connections))
	for source := range doc.Connections {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	for _, source := range sources {
		desc := descs[source] // nil when the source type is unknown or the source is missing
		sourceExists := false
		if _, ok := names[source]; ok {
			sourceExists = true
		}

		for portIdx, targets := range doc.Connections[source] {
			portValid := true
			if !sourceExists {
				portValid = false
			} else if desc != nil && !desc.HasOutput(portIdx) {
				portValid = false
				message := fmt.Sprintf("node %q declares %d output(s); output index %d does not exist",
					source, desc.Outputs, portIdx)
				if len(desc.OutputNames) > 0 {
					named := make([]string, desc.Outputs)
					for i := range named {
						named[i] = fmt.Sprintf("%q", desc.OutputName(i))
					}
					message = fmt.Sprintf("%s (outputs are: %s)", message, strings.Join(named, ", "))
				}
				v.emit(report, profile, Issue{
					Type:     "invalid_output_index",
					Severity: SeverityError,
					Node:     source,
					Message:  message,
				})
			}

			for _, conn := range targets {
				valid := portValid

				if !sourceExists {
					v.emit(report, profile, Issue{
						Type:     "connection_source_missing",
						Severity: SeverityError,
						Node:     source,
						Message: fmt.Sprintf("connection %s -> %s refers to source node %q which does not exist",
							source, conn.Node, source),
					})
				}

				if _, ok := names[conn.Node]; !ok {
					valid = false
					v.emit(report, profile, Issue{
						Type:     "connection_target_missing",
						Severity: SeverityError,
						Node:     source,
						Message: fmt.Sprintf("connection %s -> %s refers to target node %q which does not exist",
							source, conn.Node, conn.Node),
					})
				}

				if conn.Index < 0 {
					valid = false
					v.emit(report, profile, Issue{
						Type:     "invalid_input_index",
						Severity: SeverityError,
						Node:     source,
						Message: fmt.Sprintf("connection %s -> %s has negative input index %d; indices are non-negative integers",
							source, conn.Node, conn.Index),
					})
				}

				if conn.Node == source {
					if desc == nil || !desc.LoopCapable {
						v.emit(report, profile, Issue{
							Type:     "self_reference",
							Severity: SeverityWarning,
							Node:     source,
							Message: fmt.Sprintf("node %q connects to itself; only loop-capable node types run self-referencing continuations",
								source),
						})
					}
				}

				if valid {
					report.Summary.ValidConnections++
				} else {
					report.Summary.InvalidConnections++
				}
			}
		}
	}
}

// emit applies the profile's reporting policy before adding an issue. The
// minimal profile reports errors only.
func (v *GraphValidator) emit(report *Report, profile Profile, issue Issue) {
	if issue.Severity != SeverityError && !profile.warningsReported() {
		return
	}
	report.add(issue)
}
