// Package diff defines typed workflow-edit operations and an engine that
// applies ordered batches of them atomically: either every operation in a
// batch succeeds against the evolving document, or the document is returned
// unchanged.
package diff

import (
	"encoding/json"
	"fmt"

	"github.com/c360/flowcore/errors"
	"github.com/c360/flowcore/types"
)

// OpType discriminates the operation union on the wire.
type OpType string

const (
	OpAddNode          OpType = "addNode"
	OpRemoveNode       OpType = "removeNode"
	OpUpdateNode       OpType = "updateNode"
	OpMoveNode         OpType = "moveNode"
	OpEnableNode       OpType = "enableNode"
	OpDisableNode      OpType = "disableNode"
	OpAddConnection    OpType = "addConnection"
	OpRemoveConnection OpType = "removeConnection"
	OpUpdateConnection OpType = "updateConnection"
	OpUpdateSettings   OpType = "updateSettings"
	OpUpdateName       OpType = "updateName"
	OpAddTag           OpType = "addTag"
	OpRemoveTag        OpType = "removeTag"
)

// Operation is one edit in a diff batch. Each variant carries only the fields
// its precondition check and apply step need.
type Operation interface {
	// Kind returns the wire discriminator of the variant.
	Kind() OpType

	// Validate checks the operation's shape. Shape errors are structural.
	Validate() error
}

// NodeRef addresses a node by stable id or current name. When both are set
// the id wins; a name matching more than one node is rejected as ambiguous.
type NodeRef struct {
	NodeID   string `json:"nodeId,omitempty"`
	NodeName string `json:"nodeName,omitempty"`
}

func (r NodeRef) empty() bool {
	return r.NodeID == "" && r.NodeName == ""
}

// resolve finds the addressed node in the document.
func (r NodeRef) resolve(doc *types.WorkflowDocument) (*types.Node, error) {
	if r.NodeID != "" {
		node, ok := doc.NodeByID(r.NodeID)
		if !ok {
			return nil, fmt.Errorf("%w: id %q", errors.ErrNodeNotFound, r.NodeID)
		}
		return node, nil
	}

	var found *types.Node
	for i := range doc.Nodes {
		if doc.Nodes[i].Name != r.NodeName {
			continue
		}
		if found != nil {
			return nil, fmt.Errorf("%w: name %q matches more than one node; address it by id",
				errors.ErrAmbiguousNodeRef, r.NodeName)
		}
		found = &doc.Nodes[i]
	}
	if found == nil {
		return nil, fmt.Errorf("%w: name %q", errors.ErrNodeNotFound, r.NodeName)
	}
	return found, nil
}

func shapeError(kind OpType, msg string) error {
	return errors.WrapStructural(
		fmt.Errorf("%w: %s %s", errors.ErrInvalidOperation, kind, msg),
		"Operation", "Validate", "shape check")
}

// AddNode appends a node to the document. A missing id is generated.
type AddNode struct {
	Node types.Node `json:"node"`
}

func (op AddNode) Kind() OpType { return OpAddNode }
func (op AddNode) Validate() error {
	if op.Node.Name == "" {
		return shapeError(op.Kind(), "requires a node name")
	}
	if op.Node.Type == "" {
		return shapeError(op.Kind(), "requires a node type")
	}
	return nil
}

// RemoveNode deletes the addressed node and every connection referencing it.
type RemoveNode struct {
	NodeRef
}

func (op RemoveNode) Kind() OpType { return OpRemoveNode }
func (op RemoveNode) Validate() error {
	if op.empty() {
		return shapeError(op.Kind(), "requires a node id or name")
	}
	return nil
}

// UpdateNode merges updates into the node's parameters at the top level. A
// nil value deletes the key.
type UpdateNode struct {
	NodeRef
	Updates map[string]any `json:"updates"`
}

func (op UpdateNode) Kind() OpType { return OpUpdateNode }
func (op UpdateNode) Validate() error {
	if op.empty() {
		return shapeError(op.Kind(), "requires a node id or name")
	}
	if len(op.Updates) == 0 {
		return shapeError(op.Kind(), "requires at least one update")
	}
	return nil
}

// MoveNode repositions a node on the canvas.
type MoveNode struct {
	NodeRef
	Position types.Position `json:"position"`
}

func (op MoveNode) Kind() OpType { return OpMoveNode }
func (op MoveNode) Validate() error {
	if op.empty() {
		return shapeError(op.Kind(), "requires a node id or name")
	}
	return nil
}

// EnableNode clears the node's disabled flag.
type EnableNode struct {
	NodeRef
}

func (op EnableNode) Kind() OpType { return OpEnableNode }
func (op EnableNode) Validate() error {
	if op.empty() {
		return shapeError(op.Kind(), "requires a node id or name")
	}
	return nil
}

// DisableNode sets the node's disabled flag.
type DisableNode struct {
	NodeRef
}

func (op DisableNode) Kind() OpType { return OpDisableNode }
func (op DisableNode) Validate() error {
	if op.empty() {
		return shapeError(op.Kind(), "requires a node id or name")
	}
	return nil
}

// ConnectionEndpoints names one connection: source output port to target
// input index.
type ConnectionEndpoints struct {
	Source      string `json:"source"`
	SourceIndex int    `json:"sourceIndex,omitempty"`
	Target      string `json:"target"`
	TargetIndex int    `json:"targetIndex,omitempty"`
}

func (c ConnectionEndpoints) validate(kind OpType) error {
	if c.Source == "" || c.Target == "" {
		return shapeError(kind, "requires source and target node names")
	}
	if c.SourceIndex < 0 || c.TargetIndex < 0 {
		return shapeError(kind, "indices are non-negative integers")
	}
	return nil
}

// AddConnection wires a new connection. Both endpoints must exist in the
// batch's evolving state.
type AddConnection struct {
	ConnectionEndpoints
}

func (op AddConnection) Kind() OpType    { return OpAddConnection }
func (op AddConnection) Validate() error { return op.validate(op.Kind()) }

// RemoveConnection deletes an existing connection.
type RemoveConnection struct {
	ConnectionEndpoints
}

func (op RemoveConnection) Kind() OpType    { return OpRemoveConnection }
func (op RemoveConnection) Validate() error { return op.validate(op.Kind()) }

// UpdateConnection rewires one existing connection. Unset replacement fields
// keep the old endpoint.
type UpdateConnection struct {
	ConnectionEndpoints
	NewSource      string `json:"newSource,omitempty"`
	NewSourceIndex *int   `json:"newSourceIndex,omitempty"`
	NewTarget      string `json:"newTarget,omitempty"`
	NewTargetIndex *int   `json:"newTargetIndex,omitempty"`
}

func (op UpdateConnection) Kind() OpType { return OpUpdateConnection }
func (op UpdateConnection) Validate() error {
	if err := op.validate(op.Kind()); err != nil {
		return err
	}
	if op.NewSource == "" && op.NewTarget == "" && op.NewSourceIndex == nil && op.NewTargetIndex == nil {
		return shapeError(op.Kind(), "requires at least one replacement field")
	}
	return nil
}

// UpdateSettings merges settings at the top level. A nil value deletes the key.
type UpdateSettings struct {
	Settings map[string]any `json:"settings"`
}

func (op UpdateSettings) Kind() OpType { return OpUpdateSettings }
func (op UpdateSettings) Validate() error {
	if len(op.Settings) == 0 {
		return shapeError(op.Kind(), "requires at least one setting")
	}
	return nil
}

// UpdateName renames the workflow, or a node when the ref addresses one.
// Node renames rewrite every connection entry referencing the old name.
type UpdateName struct {
	NodeRef
	Name string `json:"name"`
}

func (op UpdateName) Kind() OpType { return OpUpdateName }
func (op UpdateName) Validate() error {
	if op.Name == "" {
		return shapeError(op.Kind(), "requires a name")
	}
	return nil
}

// AddTag adds a workflow tag. Adding a present tag is a no-op.
type AddTag struct {
	Tag string `json:"tag"`
}

func (op AddTag) Kind() OpType { return OpAddTag }
func (op AddTag) Validate() error {
	if op.Tag == "" {
		return shapeError(op.Kind(), "requires a tag")
	}
	return nil
}

// RemoveTag removes a workflow tag. Removing an absent tag is a no-op.
type RemoveTag struct {
	Tag string `json:"tag"`
}

func (op RemoveTag) Kind() OpType { return OpRemoveTag }
func (op RemoveTag) Validate() error {
	if op.Tag == "" {
		return shapeError(op.Kind(), "requires a tag")
	}
	return nil
}

// envelope is the wire form of an operation: the variant's fields plus a
// "type" discriminator.
type envelope struct {
	Type OpType `json:"type"`
}

// DecodeOperations parses a JSON array of operation envelopes.
func DecodeOperations(data []byte) ([]Operation, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.WrapStructural(err, "Operation", "DecodeOperations", "parse operation array")
	}

	ops := make([]Operation, 0, len(raw))
	for i, message := range raw {
		op, err := DecodeOperation(message)
		if err != nil {
			return nil, errors.Wrap(err, "Operation", "DecodeOperations", fmt.Sprintf("operation %d", i))
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// DecodeOperation parses one operation envelope into its variant.
func DecodeOperation(data []byte) (Operation, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.WrapStructural(err, "Operation", "DecodeOperation", "read type discriminator")
	}

	var op Operation
	switch env.Type {
	case OpAddNode:
		op = &AddNode{}
	case OpRemoveNode:
		op = &RemoveNode{}
	case OpUpdateNode:
		op = &UpdateNode{}
	case OpMoveNode:
		op = &MoveNode{}
	case OpEnableNode:
		op = &EnableNode{}
	case OpDisableNode:
		op = &DisableNode{}
	case OpAddConnection:
		op = &AddConnection{}
	case OpRemoveConnection:
		op = &RemoveConnection{}
	case OpUpdateConnection:
		op = &UpdateConnection{}
	case OpUpdateSettings:
		op = &UpdateSettings{}
	case OpUpdateName:
		op = &UpdateName{}
	case OpAddTag:
		op = &AddTag{}
	case OpRemoveTag:
		op = &RemoveTag{}
	default:
		return nil, errors.WrapStructural(
			fmt.Errorf("%w: %q", errors.ErrUnknownOperation, env.Type),
			"Operation", "DecodeOperation", "type discriminator check")
	}

	if err := json.Unmarshal(data, op); err != nil {
		return nil, errors.WrapStructural(err, "Operation", "DecodeOperation",
			fmt.Sprintf("parse %s fields", env.Type))
	}
	return deref(op), nil
}

// EncodeOperations renders operations back into envelope form.
func EncodeOperations(ops []Operation) ([]byte, error) {
	encoded := make([]map[string]any, 0, len(ops))
	for i, op := range ops {
		fields, err := json.Marshal(op)
		if err != nil {
			return nil, errors.Wrap(err, "Operation", "EncodeOperations", fmt.Sprintf("operation %d", i))
		}
		var m map[string]any
		if err := json.Unmarshal(fields, &m); err != nil {
			return nil, errors.Wrap(err, "Operation", "EncodeOperations", fmt.Sprintf("operation %d", i))
		}
		m["type"] = op.Kind()
		encoded = append(encoded, m)
	}
	return json.Marshal(encoded)
}

// deref returns the value variant so decoded operations compare and dispatch
// the same way as literals.
func deref(op Operation) Operation {
	switch v := op.(type) {
	case *AddNode:
		return *v
	case *RemoveNode:
		return *v
	case *UpdateNode:
		return *v
	case *MoveNode:
		return *v
	case *EnableNode:
		return *v
	case *DisableNode:
		return *v
	case *AddConnection:
		return *v
	case *RemoveConnection:
		return *v
	case *UpdateConnection:
		return *v
	case *UpdateSettings:
		return *v
	case *UpdateName:
		return *v
	case *AddTag:
		return *v
	case *RemoveTag:
		return *v
	}
	return op
}
