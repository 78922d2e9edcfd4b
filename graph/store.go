package graph

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Persister receives the full snapshot of a store after every successful
// mutation. persist.Store implementations satisfy this interface.
type Persister interface {
	Save(ctx context.Context, canvasID string, snap *Snapshot) error
}

// Store holds the node and edge tables for a single canvas.
//
// All mutating operations are mutually exclusive with each other and with
// the write-through persistence call that follows them; read operations run
// concurrently with each other but never observe a partially applied
// mutation. Preconditions are checked before any state is touched, so a
// rejected operation leaves the store unchanged.
//
// A failed write-through is logged and the in-memory state stays
// authoritative; the triggering mutation still reports success.
type Store struct {
	mu     sync.RWMutex
	canvas string
	nodes  map[string]*Node
	out    map[string]map[string]*Edge // source id -> target id -> edge
	in     map[string]map[string]struct{}

	persister Persister
	logger    *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersister attaches the write-through persistence target.
func WithPersister(p Persister) StoreOption {
	return func(s *Store) { s.persister = p }
}

// WithLogger sets the structured logger used for write-through failures.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty store for the named canvas.
func NewStore(canvasID string, opts ...StoreOption) *Store {
	s := &Store{
		canvas: canvasID,
		nodes:  make(map[string]*Node),
		out:    make(map[string]map[string]*Edge),
		in:     make(map[string]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Canvas returns the id of the canvas this store belongs to.
func (s *Store) Canvas() string {
	return s.canvas
}

// AddNode inserts or overwrites a node. The attribute map is copied; a
// missing status attribute defaults to committed, since directly ingested
// content never passes through the shadow lifecycle. Overwriting an
// existing node is not an error.
func (s *Store) AddNode(ctx context.Context, id string, attrs map[string]any) error {
	if id == "" {
		return fmt.Errorf("add node: empty id: %w", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	node := NewNode(id)
	for k, v := range attrs {
		node.Properties[k] = v
	}
	if stringProp(node.Properties, AttrStatus) == "" {
		node.Properties[AttrStatus] = string(StatusCommitted)
	}
	s.nodes[id] = node

	s.writeThrough(ctx, "AddNode")
	return nil
}

// AddShadowNode inserts a provisional node with the given content and
// metadata, forcing status to shadow. The id is minted by the caller; an
// exact collision with an existing node is rejected with ErrAlreadyExists.
// Returns the assigned id.
func (s *Store) AddShadowNode(ctx context.Context, id, content string, meta map[string]any) (string, error) {
	if id == "" {
		return "", fmt.Errorf("add shadow node: empty id: %w", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; ok {
		return "", fmt.Errorf("add shadow node %q: %w", id, ErrAlreadyExists)
	}

	node := NewNode(id)
	for k, v := range meta {
		node.Properties[k] = v
	}
	node.Properties[AttrContent] = content
	node.Properties[AttrStatus] = string(StatusShadow)
	if stringProp(node.Properties, AttrCreatedAt) == "" {
		node.Properties[AttrCreatedAt] = time.Now().Format(time.RFC3339)
	}
	s.nodes[id] = node

	s.writeThrough(ctx, "AddShadowNode")
	return id, nil
}

// AddDocumentNode ingests a document as a committed node. The node id is
// derived from the filename: slug-like basenames (containing a dash) are
// upper-cased with the extension stripped, anything else keeps the filename
// as-is. Returns the assigned id.
func (s *Store) AddDocumentNode(ctx context.Context, filename, content string, meta map[string]any) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("add document node: empty filename: %w", ErrInvalidArgument)
	}

	id := filename
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if strings.Contains(base, "-") {
		id = strings.ToUpper(base)
	}

	attrs := map[string]any{
		AttrType:      string(TypeDocument),
		AttrContent:   content,
		AttrCreatedAt: time.Now().Format(time.RFC3339),
		AttrModule:    DefaultModule,
	}
	for k, v := range meta {
		attrs[k] = v
	}
	if err := s.AddNode(ctx, id, attrs); err != nil {
		return "", err
	}
	return id, nil
}

// UpdateNode merges the given fields into an existing node's attributes.
func (s *Store) UpdateNode(ctx context.Context, id string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	node, ok := s.nodes[id]
	if !ok {
		return fmt.Errorf("update node %q: %w", id, ErrNotFound)
	}
	for k, v := range updates {
		node.Properties[k] = v
	}

	s.writeThrough(ctx, "UpdateNode")
	return nil
}

// DeleteNode removes a node together with all incident edges, in both
// directions.
func (s *Store) DeleteNode(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.nodes[id]; !ok {
		return fmt.Errorf("delete node %q: %w", id, ErrNotFound)
	}
	s.removeNodeLocked(id)

	s.writeThrough(ctx, "DeleteNode")
	return nil
}

// removeNodeLocked deletes a node and its incident edges. Callers hold the
// write lock.
func (s *Store) removeNodeLocked(id string) {
	for target := range s.out[id] {
		delete(s.in[target], id)
	}
	delete(s.out, id)
	for source := range s.in[id] {
		delete(s.out[source], id)
	}
	delete(s.in, id)
	delete(s.nodes, id)
}

// AddEdge inserts a directed edge from source to target with the given
// justification. Both endpoints must exist and the edge must pass the
// containment hierarchy rules; see ValidateEdge. Re-adding an existing
// (source, target) pair overwrites the edge attributes.
func (s *Store) AddEdge(ctx context.Context, source, target, justification string, attrs map[string]any) error {
	if justification == "" {
		justification = stringProp(attrs, AttrJustification)
	}
	if justification == "" {
		return fmt.Errorf("add edge %s->%s: missing justification: %w", source, target, ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	edge := NewEdge(source, target)
	for k, v := range attrs {
		edge.Properties[k] = v
	}
	edge.Properties[AttrJustification] = justification
	if _, ok := edge.Properties[AttrConfidence]; !ok {
		edge.Properties[AttrConfidence] = 1.0
	}

	if err := s.validateEdgeLocked(edge); err != nil {
		return err
	}

	if s.out[source] == nil {
		s.out[source] = make(map[string]*Edge)
	}
	s.out[source][target] = edge
	if s.in[target] == nil {
		s.in[target] = make(map[string]struct{})
	}
	s.in[target][source] = struct{}{}

	s.writeThrough(ctx, "AddEdge")
	return nil
}

// UpdateEdge merges the given fields into an existing edge's attributes.
func (s *Store) UpdateEdge(ctx context.Context, source, target string, updates map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	edge, ok := s.out[source][target]
	if !ok {
		return fmt.Errorf("update edge %s->%s: %w", source, target, ErrNotFound)
	}
	for k, v := range updates {
		edge.Properties[k] = v
	}

	s.writeThrough(ctx, "UpdateEdge")
	return nil
}

// DeleteEdge removes the edge from source to target.
func (s *Store) DeleteEdge(ctx context.Context, source, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.out[source][target]; !ok {
		return fmt.Errorf("delete edge %s->%s: %w", source, target, ErrNotFound)
	}
	delete(s.out[source], target)
	delete(s.in[target], source)

	s.writeThrough(ctx, "DeleteEdge")
	return nil
}

// Node returns a copy of the node with the given id.
func (s *Store) Node(id string) (*Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	node, ok := s.nodes[id]
	if !ok {
		return nil, fmt.Errorf("node %q: %w", id, ErrNotFound)
	}
	return node.clone(), nil
}

// HasNode reports whether a node with the given id exists.
func (s *Store) HasNode(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[id]
	return ok
}

// Edge returns a copy of the edge from source to target.
func (s *Store) Edge(source, target string) (*Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	edge, ok := s.out[source][target]
	if !ok {
		return nil, fmt.Errorf("edge %s->%s: %w", source, target, ErrNotFound)
	}
	return edge.clone(), nil
}

// Nodes returns copies of all nodes, sorted by id.
func (s *Store) Nodes() []*Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	nodes := make([]*Node, 0, len(s.nodes))
	for _, node := range s.nodes {
		nodes = append(nodes, node.clone())
	}
	sortNodes(nodes)
	return nodes
}

// Edges returns copies of all edges, sorted by source then target.
func (s *Store) Edges() []*Edge {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.edgesLocked()
}

func (s *Store) edgesLocked() []*Edge {
	edges := make([]*Edge, 0)
	for _, targets := range s.out {
		for _, edge := range targets {
			edges = append(edges, edge.clone())
		}
	}
	sortEdges(edges)
	return edges
}

// NodeCount returns the number of nodes in the store.
func (s *Store) NodeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}

// EdgeCount returns the number of edges in the store.
func (s *Store) EdgeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, targets := range s.out {
		count += len(targets)
	}
	return count
}

// writeThrough pushes the current snapshot to the persister. Called at the
// end of every mutation while the write lock is still held, so a snapshot
// and the mutation it reflects never interleave with another writer. A
// failure is logged and the in-memory state remains the source of truth.
func (s *Store) writeThrough(ctx context.Context, op string) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.canvas, s.snapshotLocked()); err != nil {
		s.logger.Error("graph write-through failed",
			"canvas", s.canvas,
			"op", op,
			"error", err)
	}
}
