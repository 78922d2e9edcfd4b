package graph

import "fmt"

// The containment hierarchy rules keep the folder tree of a canvas a DAG:
//
//  1. Both endpoints of an edge must exist.
//  2. A document may never contain a folder (leaf-into-container).
//  3. A containment edge may not close a directed cycle through the
//     existing containment edges.
//
// Only hierarchy edges are subject to rules 2 and 3. Argumentation edges
// (agree, disagree, or any other non-contains tag) are legitimately cyclic
// and pass through untouched.

// validateEdgeLocked runs the full edge admission check. Callers hold at
// least a read lock.
func (s *Store) validateEdgeLocked(edge *Edge) error {
	source, ok := s.nodes[edge.Source]
	if !ok {
		return fmt.Errorf("edge %s->%s: source: %w", edge.Source, edge.Target, ErrInvalidEndpoint)
	}
	target, ok := s.nodes[edge.Target]
	if !ok {
		return fmt.Errorf("edge %s->%s: target: %w", edge.Source, edge.Target, ErrInvalidEndpoint)
	}

	if !isHierarchyEdge(edge.Type(), source.Type(), target.Type()) {
		return nil
	}

	if source.Type() == TypeDocument && target.Type() == TypeFolder {
		return fmt.Errorf("edge %s->%s: document cannot contain folder: %w",
			edge.Source, edge.Target, ErrHierarchyViolation)
	}

	if s.wouldCloseCycleLocked(edge.Source, edge.Target) {
		return fmt.Errorf("edge %s->%s: containment cycle: %w",
			edge.Source, edge.Target, ErrHierarchyViolation)
	}
	return nil
}

// isHierarchyEdge reports whether an edge carries containment semantics.
// An explicit contains tag always does; an untagged edge does when both
// endpoints are hierarchy-bearing node types. Any other tag opts out.
func isHierarchyEdge(edgeType EdgeType, sourceType, targetType NodeType) bool {
	switch edgeType {
	case EdgeContains:
		return true
	case "":
		return hierarchyType(sourceType) && hierarchyType(targetType)
	default:
		return false
	}
}

func hierarchyType(t NodeType) bool {
	return t == TypeFolder || t == TypeDocument
}

// wouldCloseCycleLocked reports whether adding source->target would create
// a directed cycle through containment edges, by testing whether source is
// reachable from target. The walk is bounded to the containment component
// reachable from target, not the whole graph. Callers hold at least a read
// lock.
func (s *Store) wouldCloseCycleLocked(source, target string) bool {
	if source == target {
		return true
	}

	visited := map[string]struct{}{target: {}}
	stack := []string{target}
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for next, edge := range s.out[current] {
			from, to := s.nodes[current], s.nodes[next]
			if from == nil || to == nil {
				continue
			}
			if !isHierarchyEdge(edge.Type(), from.Type(), to.Type()) {
				continue
			}
			if next == source {
				return true
			}
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			stack = append(stack, next)
		}
	}
	return false
}
