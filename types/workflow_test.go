package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument() *WorkflowDocument {
	return &WorkflowDocument{
		Name: "test-workflow",
		Nodes: []Node{
			{ID: "1", Name: "Start", Type: "core.manualTrigger", TypeVersion: 1},
			{ID: "2", Name: "Fetch", Type: "core.httpRequest", TypeVersion: 4,
				Parameters: map[string]any{
					"url":     "https://example.com",
					"options": map[string]any{"timeout": float64(3000)},
				}},
			{ID: "3", Name: "Save", Type: "core.set", TypeVersion: 2},
		},
		Connections: ConnectionMap{
			"Start": {{{Node: "Fetch", Index: 0}}},
			"Fetch": {{{Node: "Save", Index: 0}}},
		},
		Settings: map[string]any{"timezone": "UTC"},
		Tags:     []string{"prod"},
	}
}

func TestNodeLookup(t *testing.T) {
	doc := testDocument()

	node, ok := doc.NodeByName("Fetch")
	require.True(t, ok)
	assert.Equal(t, "2", node.ID)

	node, ok = doc.NodeByID("3")
	require.True(t, ok)
	assert.Equal(t, "Save", node.Name)

	_, ok = doc.NodeByName("Missing")
	assert.False(t, ok)

	names := doc.NodeNames()
	assert.Len(t, names, 3)
	assert.Contains(t, names, "Start")
}

func TestRemoveNode(t *testing.T) {
	doc := testDocument()

	require.True(t, doc.RemoveNode("Fetch"))
	assert.Len(t, doc.Nodes, 2)

	// Source entry gone
	_, exists := doc.Connections["Fetch"]
	assert.False(t, exists)

	// Target references gone
	for _, ports := range doc.Connections {
		for _, targets := range ports {
			for _, conn := range targets {
				assert.NotEqual(t, "Fetch", conn.Node)
			}
		}
	}

	assert.False(t, doc.RemoveNode("Missing"))
}

func TestRenameNode(t *testing.T) {
	doc := testDocument()

	require.True(t, doc.RenameNode("Fetch", "Download"))

	node, ok := doc.NodeByName("Download")
	require.True(t, ok)
	assert.Equal(t, "2", node.ID)

	// Source key rewritten
	_, exists := doc.Connections["Download"]
	assert.True(t, exists)
	_, exists = doc.Connections["Fetch"]
	assert.False(t, exists)

	// Target reference rewritten
	assert.Equal(t, "Download", doc.Connections["Start"][0][0].Node)

	assert.False(t, doc.RenameNode("Missing", "Anything"))
}

func TestClone_DeepCopy(t *testing.T) {
	doc := testDocument()
	clone := doc.Clone()

	require.Equal(t, doc, clone)

	// Mutating the clone's parameter tree must not reach the original
	fetch, ok := clone.NodeByName("Fetch")
	require.True(t, ok)
	fetch.Parameters["url"] = "https://changed.example"
	fetch.Parameters["options"].(map[string]any)["timeout"] = float64(1)

	original, _ := doc.NodeByName("Fetch")
	assert.Equal(t, "https://example.com", original.Parameters["url"])
	assert.Equal(t, float64(3000), original.Parameters["options"].(map[string]any)["timeout"])

	// Connections are independent
	clone.Connections["Start"][0][0].Node = "Elsewhere"
	assert.Equal(t, "Fetch", doc.Connections["Start"][0][0].Node)

	// Settings and tags are independent
	clone.Settings["timezone"] = "PST"
	assert.Equal(t, "UTC", doc.Settings["timezone"])
	clone.Tags[0] = "dev"
	assert.Equal(t, "prod", doc.Tags[0])
}

func TestClone_NilMaps(t *testing.T) {
	doc := &WorkflowDocument{Name: "empty"}
	clone := doc.Clone()
	assert.Equal(t, doc, clone)
	assert.Nil(t, clone.Connections)
	assert.Nil(t, clone.Settings)
}
