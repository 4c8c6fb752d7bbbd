package diff

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/c360/flowcore/errors"
	"github.com/c360/flowcore/types"
)

// Options controls batch application.
type Options struct {
	// ValidateOnly runs every operation against a scratch copy and reports
	// the outcome without producing a mutated document.
	ValidateOnly bool
}

// Engine applies diff batches to workflow documents. It is stateless and safe
// for concurrent use; all mutation happens on per-call clones.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a diff engine. A nil logger falls back to slog.Default().
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Apply runs an ordered batch of operations against the document. Each
// operation sees the effects of the ones before it. The input document is
// never mutated: on success the returned document carries all edits, and on
// any failure the error names the failing operation and the input is the
// authoritative state. With ValidateOnly the edits are checked the same way
// but the input document itself is returned.
func (e *Engine) Apply(doc *types.WorkflowDocument, ops []Operation, opts Options) (*types.WorkflowDocument, error) {
	if doc == nil {
		return nil, errors.WrapStructural(errors.ErrInvalidDocument, "Engine", "Apply", "batch precondition")
	}

	e.logger.Debug("applying diff batch",
		"workflow", doc.Name,
		"operations", len(ops),
		"validate_only", opts.ValidateOnly)

	work := doc.Clone()
	for i, op := range ops {
		if op == nil {
			return nil, errors.WrapStructural(errors.ErrInvalidOperation, "Engine", "Apply",
				fmt.Sprintf("operation %d is nil", i))
		}
		if err := op.Validate(); err != nil {
			return nil, errors.Wrap(err, "Engine", "Apply", fmt.Sprintf("operation %d", i))
		}
		if err := e.applyOne(work, op); err != nil {
			e.logger.Debug("diff batch rejected",
				"workflow", doc.Name,
				"operation", string(op.Kind()),
				"index", i,
				"error", err)
			return nil, errors.Wrap(err, "Engine", "Apply", fmt.Sprintf("operation %d (%s)", i, op.Kind()))
		}
	}

	if opts.ValidateOnly {
		return doc, nil
	}
	return work, nil
}

func (e *Engine) applyOne(doc *types.WorkflowDocument, op Operation) error {
	switch op := op.(type) {
	case AddNode:
		return e.addNode(doc, op.Node)
	case RemoveNode:
		node, err := op.resolve(doc)
		if err != nil {
			return err
		}
		doc.RemoveNode(node.Name)
		return nil
	case UpdateNode:
		node, err := op.resolve(doc)
		if err != nil {
			return err
		}
		mergeMap(&node.Parameters, op.Updates)
		return nil
	case MoveNode:
		node, err := op.resolve(doc)
		if err != nil {
			return err
		}
		node.Position = op.Position
		return nil
	case EnableNode:
		node, err := op.resolve(doc)
		if err != nil {
			return err
		}
		node.Disabled = false
		return nil
	case DisableNode:
		node, err := op.resolve(doc)
		if err != nil {
			return err
		}
		node.Disabled = true
		return nil
	case AddConnection:
		return e.addConnection(doc, op.ConnectionEndpoints)
	case RemoveConnection:
		return e.removeConnection(doc, op.ConnectionEndpoints)
	case UpdateConnection:
		return e.updateConnection(doc, op)
	case UpdateSettings:
		mergeMap(&doc.Settings, op.Settings)
		return nil
	case UpdateName:
		return e.updateName(doc, op)
	case AddTag:
		for _, tag := range doc.Tags {
			if tag == op.Tag {
				return nil // already present
			}
		}
		doc.Tags = append(doc.Tags, op.Tag)
		return nil
	case RemoveTag:
		for i, tag := range doc.Tags {
			if tag == op.Tag {
				doc.Tags = append(doc.Tags[:i], doc.Tags[i+1:]...)
				break
			}
		}
		return nil
	}
	// DecodeOperation rejects unknown discriminators; this guards hand-built
	// variants from outside the package.
	return errors.WrapStructural(
		fmt.Errorf("%w: %q", errors.ErrUnknownOperation, op.Kind()),
		"Engine", "applyOne", "dispatch")
}

func (e *Engine) addNode(doc *types.WorkflowDocument, node types.Node) error {
	if _, exists := doc.NodeByName(node.Name); exists {
		return fmt.Errorf("%w: %q", errors.ErrDuplicateNodeName, node.Name)
	}
	if node.ID == "" {
		node.ID = uuid.NewString()
	} else if _, exists := doc.NodeByID(node.ID); exists {
		return fmt.Errorf("%w: %q", errors.ErrDuplicateNodeID, node.ID)
	}

	doc.Nodes = append(doc.Nodes, node)
	return nil
}

func (e *Engine) addConnection(doc *types.WorkflowDocument, conn ConnectionEndpoints) error {
	if _, ok := doc.NodeByName(conn.Source); !ok {
		return fmt.Errorf("%w: source %q", errors.ErrNodeNotFound, conn.Source)
	}
	if _, ok := doc.NodeByName(conn.Target); !ok {
		return fmt.Errorf("%w: target %q", errors.ErrNodeNotFound, conn.Target)
	}

	if doc.Connections == nil {
		doc.Connections = types.ConnectionMap{}
	}
	ports := doc.Connections[conn.Source]
	for len(ports) <= conn.SourceIndex {
		ports = append(ports, nil)
	}

	for _, existing := range ports[conn.SourceIndex] {
		if existing.Node == conn.Target && existing.Index == conn.TargetIndex {
			return fmt.Errorf("%w: %s[%d] -> %s[%d]",
				errors.ErrConnectionExists, conn.Source, conn.SourceIndex, conn.Target, conn.TargetIndex)
		}
	}

	ports[conn.SourceIndex] = append(ports[conn.SourceIndex], types.Connection{Node: conn.Target, Index: conn.TargetIndex})
	doc.Connections[conn.Source] = ports
	return nil
}

func (e *Engine) removeConnection(doc *types.WorkflowDocument, conn ConnectionEndpoints) error {
	ports, ok := doc.Connections[conn.Source]
	if !ok || conn.SourceIndex >= len(ports) {
		return fmt.Errorf("%w: %s[%d] -> %s[%d] does not exist",
			errors.ErrInvalidConnection, conn.Source, conn.SourceIndex, conn.Target, conn.TargetIndex)
	}

	targets := ports[conn.SourceIndex]
	for i, existing := range targets {
		if existing.Node == conn.Target && existing.Index == conn.TargetIndex {
			ports[conn.SourceIndex] = append(targets[:i], targets[i+1:]...)
			doc.Connections[conn.Source] = ports
			return nil
		}
	}
	return fmt.Errorf("%w: %s[%d] -> %s[%d] does not exist",
		errors.ErrInvalidConnection, conn.Source, conn.SourceIndex, conn.Target, conn.TargetIndex)
}

func (e *Engine) updateConnection(doc *types.WorkflowDocument, op UpdateConnection) error {
	replacement := op.ConnectionEndpoints
	if op.NewSource != "" {
		replacement.Source = op.NewSource
	}
	if op.NewSourceIndex != nil {
		replacement.SourceIndex = *op.NewSourceIndex
	}
	if op.NewTarget != "" {
		replacement.Target = op.NewTarget
	}
	if op.NewTargetIndex != nil {
		replacement.TargetIndex = *op.NewTargetIndex
	}
	if replacement.SourceIndex < 0 || replacement.TargetIndex < 0 {
		return fmt.Errorf("%w: indices are non-negative integers", errors.ErrInvalidConnection)
	}

	if err := e.removeConnection(doc, op.ConnectionEndpoints); err != nil {
		return err
	}
	return e.addConnection(doc, replacement)
}

func (e *Engine) updateName(doc *types.WorkflowDocument, op UpdateName) error {
	if op.empty() {
		doc.Name = op.Name
		return nil
	}

	node, err := op.resolve(doc)
	if err != nil {
		return err
	}
	if node.Name == op.Name {
		return nil
	}
	if _, exists := doc.NodeByName(op.Name); exists {
		return fmt.Errorf("%w: %q", errors.ErrDuplicateNodeName, op.Name)
	}
	doc.RenameNode(node.Name, op.Name)
	return nil
}

// mergeMap applies a top-level merge into *dst, allocating it on first use.
// A nil value deletes the key.
func mergeMap(dst *map[string]any, updates map[string]any) {
	if *dst == nil {
		*dst = make(map[string]any, len(updates))
	}
	for key, value := range updates {
		if value == nil {
			delete(*dst, key)
			continue
		}
		(*dst)[key] = value
	}
}
