package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/flowcore/errors"
	"github.com/c360/flowcore/types"
)

func baseDoc() *types.WorkflowDocument {
	return &types.WorkflowDocument{
		Name: "pipeline",
		Nodes: []types.Node{
			{ID: "n1", Name: "Hook", Type: "core.webhook", Parameters: map[string]any{"path": "orders"}},
			{ID: "n2", Name: "Fetch", Type: "core.httpRequest", Parameters: map[string]any{"method": "GET", "url": "https://example.com"}},
		},
		Connections: types.ConnectionMap{
			"Hook": {{{Node: "Fetch", Index: 0}}},
		},
		Tags: []string{"prod"},
	}
}

func ref(name string) NodeRef { return NodeRef{NodeName: name} }
func refID(id string) NodeRef { return NodeRef{NodeID: id} }
func endpoints(source string, sourceIndex int, target string, targetIndex int) ConnectionEndpoints {
	return ConnectionEndpoints{Source: source, SourceIndex: sourceIndex, Target: target, TargetIndex: targetIndex}
}

func TestApply_AddNode(t *testing.T) {
	e := NewEngine(nil)
	doc := baseDoc()

	result, err := e.Apply(doc, []Operation{
		AddNode{Node: types.Node{Name: "Store", Type: "core.noOp"}},
	}, Options{})
	require.NoError(t, err)

	node, ok := result.NodeByName("Store")
	require.True(t, ok)
	assert.NotEmpty(t, node.ID, "a missing id is generated")

	// Input document untouched
	_, ok = doc.NodeByName("Store")
	assert.False(t, ok)
}

func TestApply_AddNode_DuplicateName(t *testing.T) {
	e := NewEngine(nil)

	_, err := e.Apply(baseDoc(), []Operation{
		AddNode{Node: types.Node{Name: "Fetch", Type: "core.noOp"}},
	}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrDuplicateNodeName)
}

func TestApply_Atomicity(t *testing.T) {
	e := NewEngine(nil)
	doc := baseDoc()

	// The first operation succeeds against the evolving state, the second
	// fails; the input document must come through untouched.
	_, err := e.Apply(doc, []Operation{
		AddNode{Node: types.Node{Name: "Store", Type: "core.noOp"}},
		AddConnection{endpoints("Store", 0, "NonExistent", 0)},
	}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrNodeNotFound)

	_, ok := doc.NodeByName("Store")
	assert.False(t, ok, "no partial application")
	assert.Len(t, doc.Nodes, 2)
}

func TestApply_OperationsSeeEarlierEffects(t *testing.T) {
	e := NewEngine(nil)

	result, err := e.Apply(baseDoc(), []Operation{
		AddNode{Node: types.Node{Name: "Store", Type: "core.noOp"}},
		AddConnection{endpoints("Fetch", 0, "Store", 0)},
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []types.Connection{{Node: "Store", Index: 0}}, []types.Connection(result.Connections["Fetch"][0]))
}

func TestApply_RemoveNodeStripsConnections(t *testing.T) {
	e := NewEngine(nil)

	result, err := e.Apply(baseDoc(), []Operation{
		RemoveNode{ref("Fetch")},
	}, Options{})
	require.NoError(t, err)

	_, ok := result.NodeByName("Fetch")
	assert.False(t, ok)
	assert.Empty(t, result.Connections["Hook"][0], "connections referencing the removed node are gone")
}

func TestApply_UpdateNode(t *testing.T) {
	e := NewEngine(nil)

	result, err := e.Apply(baseDoc(), []Operation{
		UpdateNode{NodeRef: refID("n2"), Updates: map[string]any{
			"method": "POST",
			"url":    nil, // nil deletes
		}},
	}, Options{})
	require.NoError(t, err)

	node, _ := result.NodeByName("Fetch")
	assert.Equal(t, "POST", node.Parameters["method"])
	_, exists := node.Parameters["url"]
	assert.False(t, exists)
}

func TestApply_MoveEnableDisable(t *testing.T) {
	e := NewEngine(nil)

	result, err := e.Apply(baseDoc(), []Operation{
		MoveNode{NodeRef: ref("Fetch"), Position: types.Position{X: 420, Y: 80}},
		DisableNode{ref("Fetch")},
	}, Options{})
	require.NoError(t, err)

	node, _ := result.NodeByName("Fetch")
	assert.Equal(t, types.Position{X: 420, Y: 80}, node.Position)
	assert.True(t, node.Disabled)

	result, err = e.Apply(result, []Operation{
		EnableNode{refID("n2")},
	}, Options{})
	require.NoError(t, err)
	node, _ = result.NodeByName("Fetch")
	assert.False(t, node.Disabled)
}

func TestApply_AddConnection(t *testing.T) {
	e := NewEngine(nil)

	// Extends the port slice to reach a higher output index
	result, err := e.Apply(baseDoc(), []Operation{
		AddConnection{endpoints("Fetch", 1, "Hook", 0)},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, result.Connections["Fetch"], 2)
	assert.Empty(t, result.Connections["Fetch"][0])
	assert.Equal(t, "Hook", result.Connections["Fetch"][1][0].Node)
}

func TestApply_AddConnection_Duplicate(t *testing.T) {
	e := NewEngine(nil)

	_, err := e.Apply(baseDoc(), []Operation{
		AddConnection{endpoints("Hook", 0, "Fetch", 0)},
	}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrConnectionExists)
}

func TestApply_RemoveConnection(t *testing.T) {
	e := NewEngine(nil)

	result, err := e.Apply(baseDoc(), []Operation{
		RemoveConnection{endpoints("Hook", 0, "Fetch", 0)},
	}, Options{})
	require.NoError(t, err)
	assert.Empty(t, result.Connections["Hook"][0])

	_, err = e.Apply(baseDoc(), []Operation{
		RemoveConnection{endpoints("Hook", 0, "Gone", 0)},
	}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrInvalidConnection)
}

func TestApply_UpdateConnection(t *testing.T) {
	e := NewEngine(nil)
	one := 1

	result, err := e.Apply(baseDoc(), []Operation{
		AddNode{Node: types.Node{Name: "Store", Type: "core.noOp"}},
		UpdateConnection{
			ConnectionEndpoints: endpoints("Hook", 0, "Fetch", 0),
			NewTarget:           "Store",
			NewTargetIndex:      &one,
		},
	}, Options{})
	require.NoError(t, err)
	require.Len(t, result.Connections["Hook"][0], 1, "old entry replaced")
	assert.Equal(t, types.Connection{Node: "Store", Index: 1}, result.Connections["Hook"][0][0])
}

func TestApply_UpdateSettingsAndName(t *testing.T) {
	e := NewEngine(nil)

	result, err := e.Apply(baseDoc(), []Operation{
		UpdateSettings{Settings: map[string]any{"timezone": "Europe/Berlin"}},
		UpdateName{Name: "pipeline-v2"},
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "Europe/Berlin", result.Settings["timezone"])
	assert.Equal(t, "pipeline-v2", result.Name)
}

func TestApply_UpdateName_RenamesNodeAndRewiresConnections(t *testing.T) {
	e := NewEngine(nil)

	result, err := e.Apply(baseDoc(), []Operation{
		UpdateName{NodeRef: refID("n1"), Name: "Incoming"},
	}, Options{})
	require.NoError(t, err)

	_, ok := result.NodeByName("Hook")
	assert.False(t, ok)
	require.Contains(t, result.Connections, "Incoming")
	assert.Equal(t, "Fetch", result.Connections["Incoming"][0][0].Node)

	// Renaming onto an existing name is rejected
	_, err = e.Apply(baseDoc(), []Operation{
		UpdateName{NodeRef: refID("n1"), Name: "Fetch"},
	}, Options{})
	assert.ErrorIs(t, err, errors.ErrDuplicateNodeName)
}

func TestApply_Tags(t *testing.T) {
	e := NewEngine(nil)

	result, err := e.Apply(baseDoc(), []Operation{
		AddTag{Tag: "prod"}, // already present: no-op
		AddTag{Tag: "billing"},
		RemoveTag{Tag: "absent"}, // absent: no-op
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"prod", "billing"}, result.Tags)

	result, err = e.Apply(result, []Operation{
		RemoveTag{Tag: "prod"},
	}, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"billing"}, result.Tags)
}

func TestApply_NodeAddressing(t *testing.T) {
	e := NewEngine(nil)

	// Id wins over a conflicting name
	result, err := e.Apply(baseDoc(), []Operation{
		DisableNode{NodeRef{NodeID: "n1", NodeName: "Fetch"}},
	}, Options{})
	require.NoError(t, err)
	hook, _ := result.NodeByName("Hook")
	fetch, _ := result.NodeByName("Fetch")
	assert.True(t, hook.Disabled)
	assert.False(t, fetch.Disabled)

	// Ambiguous name is a structural rejection
	doc := baseDoc()
	doc.Nodes = append(doc.Nodes, types.Node{ID: "n3", Name: "Fetch", Type: "core.noOp"})
	_, err = e.Apply(doc, []Operation{
		DisableNode{ref("Fetch")},
	}, Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrAmbiguousNodeRef)
	assert.True(t, errors.IsStructural(err))
}

func TestApply_ValidateOnly(t *testing.T) {
	e := NewEngine(nil)
	doc := baseDoc()

	result, err := e.Apply(doc, []Operation{
		AddNode{Node: types.Node{Name: "Store", Type: "core.noOp"}},
	}, Options{ValidateOnly: true})
	require.NoError(t, err)
	assert.Same(t, doc, result, "dry run returns the input document")
	_, ok := doc.NodeByName("Store")
	assert.False(t, ok)

	// Dry run still reports failures
	_, err = e.Apply(doc, []Operation{
		RemoveNode{ref("Gone")},
	}, Options{ValidateOnly: true})
	assert.ErrorIs(t, err, errors.ErrNodeNotFound)
}

func TestOperation_Validate(t *testing.T) {
	tests := []struct {
		name string
		op   Operation
		ok   bool
	}{
		{"addNode without name", AddNode{Node: types.Node{Type: "core.noOp"}}, false},
		{"addNode without type", AddNode{Node: types.Node{Name: "X"}}, false},
		{"removeNode without addressing", RemoveNode{}, false},
		{"updateNode without updates", UpdateNode{NodeRef: ref("X")}, false},
		{"addConnection negative index", AddConnection{endpoints("A", 0, "B", -1)}, false},
		{"removeConnection without target", RemoveConnection{ConnectionEndpoints{Source: "A"}}, false},
		{"updateConnection without replacement", UpdateConnection{ConnectionEndpoints: endpoints("A", 0, "B", 0)}, false},
		{"updateName without name", UpdateName{}, false},
		{"addTag without tag", AddTag{}, false},
		{"valid move", MoveNode{NodeRef: ref("X"), Position: types.Position{X: 10, Y: 20}}, true},
		{"valid disable", DisableNode{ref("X")}, true},
		{"valid settings", UpdateSettings{Settings: map[string]any{"k": 1}}, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.op.Validate()
			if test.ok {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.True(t, errors.IsStructural(err))
			}
		})
	}
}
