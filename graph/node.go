package graph

import "time"

// NodeType classifies a node's structural role in the canvas hierarchy.
type NodeType string

const (
	// TypeFolder is a container node. Folders may contain other folders
	// and documents.
	TypeFolder NodeType = "folder"

	// TypeDocument is a leaf node holding ingested content. Documents may
	// never contain folders.
	TypeDocument NodeType = "document"
)

// Status tracks a node's position in the shadow lifecycle.
type Status string

const (
	// StatusCommitted marks a node as permanent, authoritative content.
	StatusCommitted Status = "committed"

	// StatusShadow marks a provisional node awaiting promotion or removal.
	StatusShadow Status = "shadow"

	// StatusConflict marks a shadow node flagged by an external validation
	// pass. Conflicted nodes remain mutable and can still be committed.
	StatusConflict Status = "conflict"
)

// Well-known node attribute keys. Everything else in the property bag is
// opaque to the engine and round-trips through persistence untouched.
const (
	AttrType           = "type"
	AttrStatus         = "status"
	AttrTitle          = "title"
	AttrSummary        = "summary"
	AttrContent        = "content"
	AttrTags           = "tags"
	AttrModule         = "module"
	AttrCreatedAt      = "created_at"
	AttrConflictReason = "conflict_reason"
)

// DefaultModule is assigned to nodes that carry no module attribute.
const DefaultModule = "General"

// Node is a single entry in a canvas graph. Attributes are an open
// key-value bag: agents write arbitrary fields and the engine only
// interprets the well-known keys above, exposed through typed accessors.
type Node struct {
	// ID is the node identifier, unique within a canvas and immutable
	// once assigned.
	ID string `json:"id"`

	// Properties contains the node's attribute map.
	Properties map[string]any `json:"properties,omitempty"`
}

// NewNode creates a node with the given id and an initialized property map.
func NewNode(id string) *Node {
	return &Node{ID: id, Properties: make(map[string]any)}
}

// WithProperty sets a single attribute and returns the node for chaining.
func (n *Node) WithProperty(key string, value any) *Node {
	if n.Properties == nil {
		n.Properties = make(map[string]any)
	}
	n.Properties[key] = value
	return n
}

// WithType sets the node type attribute and returns the node for chaining.
func (n *Node) WithType(t NodeType) *Node {
	return n.WithProperty(AttrType, string(t))
}

// WithStatus sets the lifecycle status attribute and returns the node for
// chaining.
func (n *Node) WithStatus(s Status) *Node {
	return n.WithProperty(AttrStatus, string(s))
}

// Type returns the node's type attribute, or the empty NodeType when unset.
func (n *Node) Type() NodeType {
	return NodeType(stringProp(n.Properties, AttrType))
}

// Status returns the node's lifecycle status. Nodes without an explicit
// status are committed: directly ingested content never passes through the
// shadow lifecycle.
func (n *Node) Status() Status {
	if s := stringProp(n.Properties, AttrStatus); s != "" {
		return Status(s)
	}
	return StatusCommitted
}

// Title returns the title attribute, falling back to the node id.
func (n *Node) Title() string {
	if t := stringProp(n.Properties, AttrTitle); t != "" {
		return t
	}
	return n.ID
}

// Summary returns the summary attribute, or "" when unset.
func (n *Node) Summary() string {
	return stringProp(n.Properties, AttrSummary)
}

// Tags returns the tags attribute as a string slice. Tags written as
// []any (the shape JSON decoding produces) are converted element-wise.
func (n *Node) Tags() []string {
	return stringSliceProp(n.Properties, AttrTags)
}

// Module returns the module attribute, defaulting to DefaultModule.
func (n *Node) Module() string {
	if m := stringProp(n.Properties, AttrModule); m != "" {
		return m
	}
	return DefaultModule
}

// CreatedAt returns the creation timestamp, or the zero time when the
// attribute is absent or not RFC 3339.
func (n *Node) CreatedAt() time.Time {
	ts, err := time.Parse(time.RFC3339, stringProp(n.Properties, AttrCreatedAt))
	if err != nil {
		return time.Time{}
	}
	return ts
}

// clone returns a copy of the node with its own top-level property map.
// Nested values are shared; callers treat returned nodes as read-only.
func (n *Node) clone() *Node {
	c := &Node{ID: n.ID, Properties: make(map[string]any, len(n.Properties))}
	for k, v := range n.Properties {
		c.Properties[k] = v
	}
	return c
}

func stringProp(props map[string]any, key string) string {
	if props == nil {
		return ""
	}
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}

func stringSliceProp(props map[string]any, key string) []string {
	if props == nil {
		return nil
	}
	switch v := props[key].(type) {
	case []string:
		out := make([]string, len(v))
		copy(out, v)
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}
