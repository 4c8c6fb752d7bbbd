// Package nodetype defines the node-type capability schema and the Repository
// interface through which the validation core resolves node types. The catalog
// that supplies schemas is an external collaborator; this package only provides
// the contract, an in-memory registry, and a version-scoped cache.
package nodetype

import (
	"strings"
)

// DefaultPackage is prepended to type names that carry no package segment.
const DefaultPackage = "core"

// Description is the declarative capability schema of one node type: its
// properties, output-port cardinality, and credential requirements.
type Description struct {
	Name        string           `json:"name"` // normalized, e.g. "core.httpRequest"
	DisplayName string           `json:"displayName"`
	Group       string           `json:"group"` // "trigger", "transform", "output"
	Version     float64          `json:"version"`
	Outputs     int              `json:"outputs"`               // output-port cardinality
	OutputNames []string         `json:"outputNames,omitempty"` // named branching outputs
	LoopCapable bool             `json:"loopCapable,omitempty"` // self-referencing continuation permitted
	Credentials []CredentialSpec `json:"credentials,omitempty"`
	Properties  []PropertySchema `json:"properties"`
}

// CredentialSpec names one credential type a node type can use.
type CredentialSpec struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// PropertySchema describes a single node parameter.
type PropertySchema struct {
	Name           string           `json:"name"`
	Type           string           `json:"type"` // "string", "number", "boolean", "options", "json", "collection", "resourceLocator"
	Required       bool             `json:"required,omitempty"`
	Default        any              `json:"default,omitempty"`
	Description    string           `json:"description,omitempty"`
	Options        []string         `json:"options,omitempty"` // valid values for "options" type
	DisplayOptions *DisplayOptions  `json:"displayOptions,omitempty"`
	Properties     []PropertySchema `json:"properties,omitempty"` // nested schema for composite types
}

// DisplayOptions is a property's visibility condition: a conjunction of
// sibling-field predicates. Show entries must all match for the property to
// apply; the property is suppressed only when every Hide entry matches.
type DisplayOptions struct {
	Show map[string][]any `json:"show,omitempty"`
	Hide map[string][]any `json:"hide,omitempty"`
}

// Repository resolves a normalized node-type name to its schema.
// Implementations must be safe for concurrent use.
type Repository interface {
	// GetNodeType returns the schema for the given type name, or false when
	// the catalog has no such type. Callers surface absence as an "unknown
	// node type" validation error, never as a crash.
	GetNodeType(normalizedTypeName string) (*Description, bool)
}

// Versioned is implemented by repositories whose catalog can be reloaded.
// The cache layer uses the version to avoid serving stale schemas.
type Versioned interface {
	CatalogVersion() string
}

// Normalize canonicalizes a node-type name: whitespace is trimmed, the package
// segment is lowercased, and a missing package segment defaults to
// DefaultPackage. The node name segment keeps its case ("core.httpRequest").
func Normalize(typeName string) string {
	name := strings.TrimSpace(typeName)
	if name == "" {
		return ""
	}

	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return DefaultPackage + "." + name
	}
	return strings.ToLower(name[:idx]) + name[idx:]
}

// HasOutput reports whether the given output-port index is within the type's
// declared output cardinality.
func (d *Description) HasOutput(index int) bool {
	if index < 0 {
		return false
	}
	return index < d.Outputs
}

// OutputName returns the display name of an output port, or the empty string
// for types without named branching outputs.
func (d *Description) OutputName(index int) string {
	if index >= 0 && index < len(d.OutputNames) {
		return d.OutputNames[index]
	}
	return ""
}

// IsTrigger reports whether the node type starts workflow executions.
func (d *Description) IsTrigger() bool {
	return d.Group == "trigger"
}
