// Package testutil provides workflow builders and a pre-loaded node-type
// catalog for tests.
package testutil

import (
	"github.com/c360/flowcore/nodetype"
	"github.com/c360/flowcore/types"
)

// Catalog returns a registry loaded with the node types the test suites use:
// a webhook trigger, an HTTP request node, a two-output if node, a code node,
// a loop-capable batch splitter, and a no-op.
func Catalog() *nodetype.Registry {
	reg := nodetype.NewRegistry()

	reg.MustRegister(&nodetype.Description{
		Name: "core.webhook", DisplayName: "Webhook", Group: "trigger", Version: 1, Outputs: 1,
		Properties: []nodetype.PropertySchema{
			{Name: "path", Type: "string", Required: true},
			{Name: "method", Type: "options", Options: []string{"GET", "POST", "PUT", "DELETE"}, Default: "GET"},
		},
	})
	reg.MustRegister(&nodetype.Description{
		Name: "core.httpRequest", DisplayName: "HTTP Request", Group: "transform", Version: 4, Outputs: 1,
		Credentials: []nodetype.CredentialSpec{{Name: "httpBasicAuth"}},
		Properties: []nodetype.PropertySchema{
			{Name: "method", Type: "options", Required: true, Options: []string{"GET", "POST", "PUT", "PATCH", "DELETE"}},
			{Name: "url", Type: "string", Required: true},
			{
				Name: "body", Type: "json",
				DisplayOptions: &nodetype.DisplayOptions{Show: map[string][]any{"method": {"POST", "PUT", "PATCH"}}},
			},
			{Name: "timeout", Type: "number"},
		},
	})
	reg.MustRegister(&nodetype.Description{
		Name: "core.if", DisplayName: "If", Group: "transform", Version: 2,
		Outputs: 2, OutputNames: []string{"true", "false"},
		Properties: []nodetype.PropertySchema{
			{Name: "conditions", Type: "json"},
		},
	})
	reg.MustRegister(&nodetype.Description{
		Name: "core.code", DisplayName: "Code", Group: "transform", Version: 2, Outputs: 1,
		Properties: []nodetype.PropertySchema{
			{Name: "jsCode", Type: "string", Required: true},
		},
	})
	reg.MustRegister(&nodetype.Description{
		Name: "core.splitInBatches", DisplayName: "Loop Over Items", Group: "transform", Version: 3,
		Outputs: 2, OutputNames: []string{"done", "loop"}, LoopCapable: true,
		Properties: []nodetype.PropertySchema{
			{Name: "batchSize", Type: "number", Default: 1},
		},
	})
	reg.MustRegister(&nodetype.Description{
		Name: "core.noOp", DisplayName: "No Operation", Group: "transform", Version: 1, Outputs: 1,
	})

	return reg
}

// WorkflowBuilder assembles workflow documents for tests.
type WorkflowBuilder struct {
	doc *types.WorkflowDocument
}

// NewWorkflow starts a builder for a named workflow.
func NewWorkflow(name string) *WorkflowBuilder {
	return &WorkflowBuilder{doc: &types.WorkflowDocument{
		Name:        name,
		Connections: types.ConnectionMap{},
	}}
}

// Node appends a node. The id defaults to "id-<name>".
func (b *WorkflowBuilder) Node(name, typeName string, params map[string]any) *WorkflowBuilder {
	b.doc.Nodes = append(b.doc.Nodes, types.Node{
		ID:         "id-" + name,
		Name:       name,
		Type:       typeName,
		Parameters: params,
	})
	return b
}

// Connect wires source output 0 to target input 0.
func (b *WorkflowBuilder) Connect(source, target string) *WorkflowBuilder {
	return b.ConnectPorts(source, 0, target, 0)
}

// ConnectPorts wires an explicit output port to an explicit input index.
func (b *WorkflowBuilder) ConnectPorts(source string, sourceIndex int, target string, targetIndex int) *WorkflowBuilder {
	ports := b.doc.Connections[source]
	for len(ports) <= sourceIndex {
		ports = append(ports, nil)
	}
	ports[sourceIndex] = append(ports[sourceIndex], types.Connection{Node: target, Index: targetIndex})
	b.doc.Connections[source] = ports
	return b
}

// Tag adds a workflow tag.
func (b *WorkflowBuilder) Tag(tag string) *WorkflowBuilder {
	b.doc.Tags = append(b.doc.Tags, tag)
	return b
}

// Build returns the assembled document.
func (b *WorkflowBuilder) Build() *types.WorkflowDocument {
	return b.doc
}

// LinearWorkflow builds webhook -> http -> code, all validly configured.
func LinearWorkflow(name string) *types.WorkflowDocument {
	return NewWorkflow(name).
		Node("Hook", "core.webhook", map[string]any{"path": "orders"}).
		Node("Fetch", "core.httpRequest", map[string]any{"method": "GET", "url": "https://example.com"}).
		Node("Transform", "core.code", map[string]any{"jsCode": "return items;"}).
		Connect("Hook", "Fetch").
		Connect("Fetch", "Transform").
		Build()
}
