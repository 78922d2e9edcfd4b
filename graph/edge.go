package graph

// EdgeType tags the semantic role of an edge.
type EdgeType string

const (
	// EdgeContains expresses containment: the source node owns the target
	// in the canvas hierarchy. Containment edges are subject to the
	// acyclicity and leaf-type rules enforced on insertion.
	EdgeContains EdgeType = "contains"

	// EdgeAgree and EdgeDisagree are argumentation edges. They carry no
	// hierarchy semantics and are exempt from the containment rules.
	EdgeAgree    EdgeType = "agree"
	EdgeDisagree EdgeType = "disagree"
)

// Well-known edge attribute keys.
const (
	AttrJustification = "justification"
	AttrConfidence    = "confidence"
)

// Edge is a directed connection between two nodes of the same canvas.
// At most one edge exists per (source, target) pair; re-adding overwrites
// the attribute map rather than duplicating the edge.
type Edge struct {
	// Source is the id of the originating node.
	Source string `json:"source"`

	// Target is the id of the destination node.
	Target string `json:"target"`

	// Properties contains the edge's attribute map. Justification is
	// required on insertion; everything else is optional.
	Properties map[string]any `json:"properties,omitempty"`
}

// NewEdge creates an edge with an initialized property map.
func NewEdge(source, target string) *Edge {
	return &Edge{Source: source, Target: target, Properties: make(map[string]any)}
}

// WithProperty sets a single attribute and returns the edge for chaining.
func (e *Edge) WithProperty(key string, value any) *Edge {
	if e.Properties == nil {
		e.Properties = make(map[string]any)
	}
	e.Properties[key] = value
	return e
}

// Type returns the edge type attribute, or "" for untagged edges.
func (e *Edge) Type() EdgeType {
	return EdgeType(stringProp(e.Properties, AttrType))
}

// Justification returns the edge's justification string.
func (e *Edge) Justification() string {
	return stringProp(e.Properties, AttrJustification)
}

// Confidence returns the edge confidence, defaulting to 1.0 when absent.
// Both float64 and json-decoded numeric forms are accepted.
func (e *Edge) Confidence() float64 {
	if e.Properties == nil {
		return 1.0
	}
	switch v := e.Properties[AttrConfidence].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 1.0
}

func (e *Edge) clone() *Edge {
	c := &Edge{Source: e.Source, Target: e.Target, Properties: make(map[string]any, len(e.Properties))}
	for k, v := range e.Properties {
		c.Properties[k] = v
	}
	return c
}
