package graph

import "fmt"

// MaxDepth is the largest neighborhood radius Subgraph accepts.
const MaxDepth = 2

// Fragment is the induced subgraph returned by Subgraph: every node in the
// result set with its full attribute map, plus every edge whose both
// endpoints are in the set.
type Fragment struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Subgraph extracts the bounded neighborhood of the seed set.
//
// Seeds that do not exist are ignored; if none exist the result is empty.
// Depth 0 returns exactly the surviving seeds. Depth 1 adds all direct
// predecessors and successors of each seed. Depth 2 additionally expands
// the one-hop frontier, using the frontier as it stood before the second
// expansion began, so the result is a true two-hop ball and never drifts
// further out.
//
// Subgraph is a pure read and safe to call concurrently with other reads.
func (s *Store) Subgraph(seedIDs []string, depth int) (*Fragment, error) {
	if depth < 0 || depth > MaxDepth {
		return nil, fmt.Errorf("subgraph depth %d out of range [0,%d]: %w", depth, MaxDepth, ErrInvalidArgument)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	included := make(map[string]struct{})
	frontier := make([]string, 0, len(seedIDs))
	for _, id := range seedIDs {
		if _, ok := s.nodes[id]; !ok {
			continue
		}
		if _, seen := included[id]; seen {
			continue
		}
		included[id] = struct{}{}
		frontier = append(frontier, id)
	}

	for hop := 0; hop < depth; hop++ {
		next := make([]string, 0)
		for _, id := range frontier {
			for _, neighbor := range s.neighborsLocked(id) {
				if _, seen := included[neighbor]; seen {
					continue
				}
				included[neighbor] = struct{}{}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}

	fragment := &Fragment{Nodes: make([]*Node, 0, len(included)), Edges: make([]*Edge, 0)}
	for _, node := range s.nodes {
		if _, ok := included[node.ID]; ok {
			fragment.Nodes = append(fragment.Nodes, node.clone())
		}
	}
	for source, targets := range s.out {
		if _, ok := included[source]; !ok {
			continue
		}
		for target, edge := range targets {
			if _, ok := included[target]; !ok {
				continue
			}
			fragment.Edges = append(fragment.Edges, edge.clone())
		}
	}
	sortFragment(fragment)
	return fragment, nil
}

// neighborsLocked returns the direct successors and predecessors of a
// node. Callers hold at least a read lock.
func (s *Store) neighborsLocked(id string) []string {
	neighbors := make([]string, 0, len(s.out[id])+len(s.in[id]))
	for target := range s.out[id] {
		neighbors = append(neighbors, target)
	}
	for source := range s.in[id] {
		neighbors = append(neighbors, source)
	}
	return neighbors
}

func sortFragment(f *Fragment) {
	sortNodes(f.Nodes)
	sortEdges(f.Edges)
}
