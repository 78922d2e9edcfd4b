package graph

import "sort"

// Snapshot is the durable wire form of a store: the full node list and the
// full edge list, each entry carrying its complete attribute map. The
// layout is a node-link document; loaders tolerate additive attributes and
// default missing ones through the typed accessors.
type Snapshot struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// EmptySnapshot returns a snapshot with no nodes or edges.
func EmptySnapshot() *Snapshot {
	return &Snapshot{Nodes: []*Node{}, Edges: []*Edge{}}
}

// Snapshot captures the current state of the store in deterministic order:
// nodes sorted by id, edges by source then target.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() *Snapshot {
	snap := &Snapshot{
		Nodes: make([]*Node, 0, len(s.nodes)),
		Edges: make([]*Edge, 0),
	}
	for _, node := range s.nodes {
		snap.Nodes = append(snap.Nodes, node.clone())
	}
	for _, targets := range s.out {
		for _, edge := range targets {
			snap.Edges = append(snap.Edges, edge.clone())
		}
	}
	sortNodes(snap.Nodes)
	sortEdges(snap.Edges)
	return snap
}

// Restore replaces the store contents with the given snapshot. Edges whose
// endpoints are missing from the snapshot are dropped rather than failing
// the load. A nil snapshot resets the store to empty.
func (s *Store) Restore(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[string]*Node)
	s.out = make(map[string]map[string]*Edge)
	s.in = make(map[string]map[string]struct{})
	if snap == nil {
		return
	}

	for _, node := range snap.Nodes {
		if node == nil || node.ID == "" {
			continue
		}
		restored := node.clone()
		if restored.Properties == nil {
			restored.Properties = make(map[string]any)
		}
		s.nodes[restored.ID] = restored
	}
	for _, edge := range snap.Edges {
		if edge == nil {
			continue
		}
		if _, ok := s.nodes[edge.Source]; !ok {
			continue
		}
		if _, ok := s.nodes[edge.Target]; !ok {
			continue
		}
		restored := edge.clone()
		if restored.Properties == nil {
			restored.Properties = make(map[string]any)
		}
		if s.out[restored.Source] == nil {
			s.out[restored.Source] = make(map[string]*Edge)
		}
		s.out[restored.Source][restored.Target] = restored
		if s.in[restored.Target] == nil {
			s.in[restored.Target] = make(map[string]struct{})
		}
		s.in[restored.Target][restored.Source] = struct{}{}
	}
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })
}

func sortEdges(edges []*Edge) {
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].Source != edges[j].Source {
			return edges[i].Source < edges[j].Source
		}
		return edges[i].Target < edges[j].Target
	})
}
