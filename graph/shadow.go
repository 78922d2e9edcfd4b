package graph

import (
	"context"
	"fmt"
)

// CommitResult reports the outcome of a bulk shadow commit.
type CommitResult struct {
	// Committed is the number of nodes promoted to committed status.
	Committed int `json:"committed"`

	// Failures lists per-node errors. The bulk commit is best-effort, not
	// transactional; failures are possible only when a node disappears
	// mid-batch.
	Failures []string `json:"failures,omitempty"`
}

// CommitShadows promotes every shadow node in the store to committed
// status. Promotion is unconditional: conflicted shadow nodes are committed
// as well, since prior validation is advisory only. Calling it again with
// no new shadow nodes commits zero additional nodes.
func (s *Store) CommitShadows(ctx context.Context) (*CommitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &CommitResult{}
	for _, id := range s.shadowIDsLocked() {
		node, ok := s.nodes[id]
		if !ok {
			result.Failures = append(result.Failures, fmt.Sprintf("node %q vanished during commit", id))
			continue
		}
		node.Properties[AttrStatus] = string(StatusCommitted)
		delete(node.Properties, AttrConflictReason)
		result.Committed++
	}

	if result.Committed > 0 {
		s.writeThrough(ctx, "CommitShadows")
	}
	return result, nil
}

// ReapShadows deletes every shadow node, including conflicted ones, along
// with all incident edges. Returns the number of nodes removed.
func (s *Store) ReapShadows(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := s.shadowIDsLocked()
	for _, id := range ids {
		s.removeNodeLocked(id)
	}

	if len(ids) > 0 {
		s.writeThrough(ctx, "ReapShadows")
	}
	return len(ids), nil
}

// FlagConflict marks a node as conflicted with the given reason. This is
// the hook for an external validation pass; it does not block a later
// commit.
func (s *Store) FlagConflict(ctx context.Context, id, reason string) error {
	return s.UpdateNode(ctx, id, map[string]any{
		AttrStatus:         string(StatusConflict),
		AttrConflictReason: reason,
	})
}

// ShadowCount returns the number of nodes still in the shadow lifecycle,
// conflicted nodes included.
func (s *Store) ShadowCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.shadowIDsLocked())
}

// shadowIDsLocked returns the ids of all nodes in shadow or conflict
// status. Callers hold at least a read lock.
func (s *Store) shadowIDsLocked() []string {
	var ids []string
	for id, node := range s.nodes {
		switch node.Status() {
		case StatusShadow, StatusConflict:
			ids = append(ids, id)
		}
	}
	return ids
}
