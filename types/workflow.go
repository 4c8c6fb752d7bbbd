// Package types defines the workflow document model shared by the validation
// and diff packages. Documents are request-scoped, in-memory values: this
// package owns no persistent state and performs no I/O.
package types

// WorkflowDocument is the declarative automation graph this core validates and
// mutates. Node names are unique within a document and act as the graph key
// for connections.
type WorkflowDocument struct {
	Name        string         `json:"name"`
	Nodes       []Node         `json:"nodes"`
	Connections ConnectionMap  `json:"connections"`
	Settings    map[string]any `json:"settings,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// Node is a single typed node in a workflow document.
type Node struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	TypeVersion float64        `json:"typeVersion"`
	Position    Position       `json:"position"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Credentials map[string]any `json:"credentials,omitempty"`
	Disabled    bool           `json:"disabled,omitempty"`
	Notes       string         `json:"notes,omitempty"`

	// Execution-control attributes
	OnError          string `json:"onError,omitempty"` // "stopWorkflow", "continueRegularOutput", "continueErrorOutput"
	RetryOnFail      bool   `json:"retryOnFail,omitempty"`
	MaxTries         int    `json:"maxTries,omitempty"`
	WaitBetweenTries int    `json:"waitBetweenTries,omitempty"` // milliseconds
	AlwaysOutputData bool   `json:"alwaysOutputData,omitempty"`
	ExecuteOnce      bool   `json:"executeOnce,omitempty"`
}

// Position is the visual position of a node in the editor canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Connection identifies one target endpoint of an output port: the target
// node's name and the input index on that node.
type Connection struct {
	Node  string `json:"node"`
	Index int    `json:"index"`
}

// OutputPorts holds the ordered connection lists of a source node, indexed by
// output-port index.
type OutputPorts [][]Connection

// ConnectionMap maps a source node name to its output ports.
type ConnectionMap map[string]OutputPorts

// NodeByName returns the node with the given name, or false if absent.
func (d *WorkflowDocument) NodeByName(name string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].Name == name {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// NodeByID returns the node with the given stable id, or false if absent.
func (d *WorkflowDocument) NodeByID(id string) (*Node, bool) {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i], true
		}
	}
	return nil, false
}

// NodeNames returns the set of node names in the document. The set is built
// fresh on each call; callers may mutate it freely.
func (d *WorkflowDocument) NodeNames() map[string]struct{} {
	names := make(map[string]struct{}, len(d.Nodes))
	for i := range d.Nodes {
		names[d.Nodes[i].Name] = struct{}{}
	}
	return names
}

// RemoveNode deletes the named node and every connection that references it,
// as source or target. Returns true if the node existed.
func (d *WorkflowDocument) RemoveNode(name string) bool {
	found := false
	for i := range d.Nodes {
		if d.Nodes[i].Name == name {
			d.Nodes = append(d.Nodes[:i], d.Nodes[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return false
	}

	delete(d.Connections, name)
	for source, ports := range d.Connections {
		for p, targets := range ports {
			kept := targets[:0]
			for _, conn := range targets {
				if conn.Node != name {
					kept = append(kept, conn)
				}
			}
			ports[p] = kept
		}
		d.Connections[source] = ports
	}
	return true
}

// RenameNode updates the node's name and rewrites every connection entry that
// references the old name. Returns false if no node carries the old name.
func (d *WorkflowDocument) RenameNode(oldName, newName string) bool {
	node, ok := d.NodeByName(oldName)
	if !ok {
		return false
	}
	node.Name = newName

	if ports, ok := d.Connections[oldName]; ok {
		delete(d.Connections, oldName)
		d.Connections[newName] = ports
	}
	for _, ports := range d.Connections {
		for _, targets := range ports {
			for i := range targets {
				if targets[i].Node == oldName {
					targets[i].Node = newName
				}
			}
		}
	}
	return true
}

// Clone returns a deep copy of the document. Parameter trees, credentials,
// settings, and connection lists are all copied; mutating the clone never
// affects the original.
func (d *WorkflowDocument) Clone() *WorkflowDocument {
	clone := &WorkflowDocument{
		Name:  d.Name,
		Nodes: make([]Node, len(d.Nodes)),
	}

	for i := range d.Nodes {
		n := d.Nodes[i]
		n.Parameters = deepCopyMap(d.Nodes[i].Parameters)
		n.Credentials = deepCopyMap(d.Nodes[i].Credentials)
		clone.Nodes[i] = n
	}

	if d.Connections != nil {
		clone.Connections = make(ConnectionMap, len(d.Connections))
		for source, ports := range d.Connections {
			copied := make(OutputPorts, len(ports))
			for p, targets := range ports {
				copied[p] = append([]Connection(nil), targets...)
			}
			clone.Connections[source] = copied
		}
	}

	clone.Settings = deepCopyMap(d.Settings)
	if d.Tags != nil {
		clone.Tags = append([]string(nil), d.Tags...)
	}
	return clone
}

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return deepCopyMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = deepCopyValue(elem)
		}
		return out
	default:
		return v
	}
}
