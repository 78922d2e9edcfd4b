package graph

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

// recordingPersister captures write-through snapshots.
type recordingPersister struct {
	saves  int
	last   *Snapshot
	failAll bool
}

func (p *recordingPersister) Save(_ context.Context, _ string, snap *Snapshot) error {
	if p.failAll {
		return fmt.Errorf("disk full")
	}
	p.saves++
	p.last = snap
	return nil
}

func TestAddNode_Upsert(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")

	if err := s.AddNode(ctx, "A", map[string]any{"title": "first"}); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}

	node, err := s.Node("A")
	if err != nil {
		t.Fatalf("Node failed: %v", err)
	}
	if node.Status() != StatusCommitted {
		t.Errorf("expected default status committed, got %q", node.Status())
	}
	if node.Title() != "first" {
		t.Errorf("expected title 'first', got %q", node.Title())
	}

	// Overwrite is idempotent upsert, not an error.
	if err := s.AddNode(ctx, "A", map[string]any{"title": "second"}); err != nil {
		t.Fatalf("AddNode overwrite failed: %v", err)
	}
	node, _ = s.Node("A")
	if node.Title() != "second" {
		t.Errorf("expected overwritten title 'second', got %q", node.Title())
	}
	if s.NodeCount() != 1 {
		t.Errorf("expected 1 node after overwrite, got %d", s.NodeCount())
	}
}

func TestAddNode_EmptyID(t *testing.T) {
	s := NewStore("test")
	if err := s.AddNode(context.Background(), "", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestAddNode_KeepsExplicitStatus(t *testing.T) {
	s := NewStore("test")
	if err := s.AddNode(context.Background(), "A", map[string]any{"status": "shadow"}); err != nil {
		t.Fatalf("AddNode failed: %v", err)
	}
	node, _ := s.Node("A")
	if node.Status() != StatusShadow {
		t.Errorf("expected explicit shadow status preserved, got %q", node.Status())
	}
}

func TestUpdateNode(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")

	if err := s.UpdateNode(ctx, "missing", map[string]any{"x": 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_ = s.AddNode(ctx, "A", map[string]any{"title": "t", "summary": "s"})
	if err := s.UpdateNode(ctx, "A", map[string]any{"summary": "updated", "extra": true}); err != nil {
		t.Fatalf("UpdateNode failed: %v", err)
	}

	node, _ := s.Node("A")
	if node.Title() != "t" {
		t.Errorf("merge must keep untouched fields, title = %q", node.Title())
	}
	if node.Summary() != "updated" {
		t.Errorf("expected summary 'updated', got %q", node.Summary())
	}
	if node.Properties["extra"] != true {
		t.Errorf("expected agent-written field to round-trip, got %v", node.Properties["extra"])
	}
}

func TestDeleteNode_CascadesEdges(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")
	for _, id := range []string{"A", "B", "C"} {
		_ = s.AddNode(ctx, id, nil)
	}
	mustAddEdge(t, s, "A", "B")
	mustAddEdge(t, s, "C", "A")
	mustAddEdge(t, s, "B", "C")

	if err := s.DeleteNode(ctx, "A"); err != nil {
		t.Fatalf("DeleteNode failed: %v", err)
	}

	if s.HasNode("A") {
		t.Error("node A still present after delete")
	}
	if s.EdgeCount() != 1 {
		t.Errorf("expected only B->C to survive, have %d edges", s.EdgeCount())
	}
	if _, err := s.Edge("B", "C"); err != nil {
		t.Errorf("unrelated edge B->C removed: %v", err)
	}

	if err := s.DeleteNode(ctx, "A"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}

func TestAddEdge_Basics(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")
	_ = s.AddNode(ctx, "A", nil)
	_ = s.AddNode(ctx, "B", nil)

	if err := s.AddEdge(ctx, "A", "missing", "j", nil); !errors.Is(err, ErrInvalidEndpoint) {
		t.Errorf("expected ErrInvalidEndpoint for missing target, got %v", err)
	}
	if err := s.AddEdge(ctx, "missing", "B", "j", nil); !errors.Is(err, ErrInvalidEndpoint) {
		t.Errorf("expected ErrInvalidEndpoint for missing source, got %v", err)
	}
	if err := s.AddEdge(ctx, "A", "B", "", nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for missing justification, got %v", err)
	}

	if err := s.AddEdge(ctx, "A", "B", "related", nil); err != nil {
		t.Fatalf("AddEdge failed: %v", err)
	}

	edge, err := s.Edge("A", "B")
	if err != nil {
		t.Fatalf("Edge failed: %v", err)
	}
	if edge.Justification() != "related" {
		t.Errorf("expected justification 'related', got %q", edge.Justification())
	}
	if edge.Confidence() != 1.0 {
		t.Errorf("expected default confidence 1.0, got %v", edge.Confidence())
	}
}

func TestAddEdge_ReAddOverwrites(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")
	_ = s.AddNode(ctx, "A", nil)
	_ = s.AddNode(ctx, "B", nil)

	mustAddEdgeAttrs(t, s, "A", "B", "first", map[string]any{"confidence": 0.4})
	mustAddEdgeAttrs(t, s, "A", "B", "second", map[string]any{"confidence": 0.9})

	if s.EdgeCount() != 1 {
		t.Fatalf("expected a single edge per (source, target), got %d", s.EdgeCount())
	}
	edge, _ := s.Edge("A", "B")
	if edge.Justification() != "second" || edge.Confidence() != 0.9 {
		t.Errorf("re-add must overwrite attributes, got justification=%q confidence=%v",
			edge.Justification(), edge.Confidence())
	}
}

func TestUpdateAndDeleteEdge(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")
	_ = s.AddNode(ctx, "A", nil)
	_ = s.AddNode(ctx, "B", nil)

	if err := s.UpdateEdge(ctx, "A", "B", map[string]any{"x": 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound updating missing edge, got %v", err)
	}
	if err := s.DeleteEdge(ctx, "A", "B"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting missing edge, got %v", err)
	}

	mustAddEdge(t, s, "A", "B")
	if err := s.UpdateEdge(ctx, "A", "B", map[string]any{"confidence": 0.5}); err != nil {
		t.Fatalf("UpdateEdge failed: %v", err)
	}
	edge, _ := s.Edge("A", "B")
	if edge.Confidence() != 0.5 {
		t.Errorf("expected merged confidence 0.5, got %v", edge.Confidence())
	}

	if err := s.DeleteEdge(ctx, "A", "B"); err != nil {
		t.Fatalf("DeleteEdge failed: %v", err)
	}
	if s.EdgeCount() != 0 {
		t.Errorf("expected no edges after delete, got %d", s.EdgeCount())
	}
}

func TestAddDocumentNode(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")

	id, err := s.AddDocumentNode(ctx, "auth-notes.md", "content", map[string]any{"module": "Security"})
	if err != nil {
		t.Fatalf("AddDocumentNode failed: %v", err)
	}
	if id != "AUTH-NOTES" {
		t.Errorf("slug-like filename should upper-case to AUTH-NOTES, got %q", id)
	}

	node, _ := s.Node(id)
	if node.Type() != TypeDocument {
		t.Errorf("expected document type, got %q", node.Type())
	}
	if node.Status() != StatusCommitted {
		t.Errorf("ingested documents are committed, got %q", node.Status())
	}
	if node.Module() != "Security" {
		t.Errorf("caller meta must win over defaults, module = %q", node.Module())
	}
	if node.CreatedAt().IsZero() {
		t.Error("expected created_at to be stamped")
	}

	plain, err := s.AddDocumentNode(ctx, "readme.txt", "c", nil)
	if err != nil {
		t.Fatalf("AddDocumentNode failed: %v", err)
	}
	if plain != "readme.txt" {
		t.Errorf("plain filename keeps its name as id, got %q", plain)
	}
}

func TestNodeSummaries(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")
	_ = s.AddNode(ctx, "A", map[string]any{"title": "Alpha", "summary": "sum", "tags": []string{"x"}, "module": "Core"})
	_ = s.AddNode(ctx, "B", nil)
	_, _ = s.AddShadowNode(ctx, "S", "c", nil)

	summaries := s.NodeSummaries("")
	if len(summaries) != 3 {
		t.Fatalf("summaries do not filter by status, expected 3 got %d", len(summaries))
	}

	// Sorted by id: A, B, S.
	if summaries[0].Title != "Alpha" || summaries[0].Module != "Core" || summaries[0].Summary != "sum" {
		t.Errorf("unexpected projection for A: %+v", summaries[0])
	}
	if summaries[1].Title != "B" {
		t.Errorf("title must fall back to id, got %q", summaries[1].Title)
	}
	if summaries[1].Module != DefaultModule {
		t.Errorf("module must default to %q, got %q", DefaultModule, summaries[1].Module)
	}
	if summaries[1].Tags == nil {
		t.Error("tags must be emitted as an empty list, not nil")
	}

	excluded := s.NodeSummaries("A")
	if len(excluded) != 2 {
		t.Fatalf("expected 2 summaries with A excluded, got %d", len(excluded))
	}
	for _, sum := range excluded {
		if sum.ID == "A" {
			t.Error("excluded node still present")
		}
	}
}

func TestWriteThrough_AfterEveryMutation(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{}
	s := NewStore("test", WithPersister(p))

	_ = s.AddNode(ctx, "A", nil)
	_ = s.AddNode(ctx, "B", nil)
	mustAddEdge(t, s, "A", "B")
	_ = s.UpdateNode(ctx, "A", map[string]any{"x": 1})
	_ = s.DeleteEdge(ctx, "A", "B")
	_ = s.DeleteNode(ctx, "B")

	if p.saves != 6 {
		t.Errorf("expected 6 write-throughs, got %d", p.saves)
	}
	if len(p.last.Nodes) != 1 || len(p.last.Edges) != 0 {
		t.Errorf("last snapshot out of date: %d nodes, %d edges", len(p.last.Nodes), len(p.last.Edges))
	}
}

func TestWriteThrough_FailureDoesNotRollBack(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{failAll: true}
	s := NewStore("test", WithPersister(p))

	if err := s.AddNode(ctx, "A", nil); err != nil {
		t.Fatalf("mutation must succeed despite persistence failure, got %v", err)
	}
	if !s.HasNode("A") {
		t.Error("in-memory state must stay authoritative after a failed save")
	}
}

func TestRejectedMutationLeavesStoreUnchanged(t *testing.T) {
	ctx := context.Background()
	p := &recordingPersister{}
	s := NewStore("test", WithPersister(p))
	_ = s.AddNode(ctx, "A", nil)
	saves := p.saves

	if err := s.AddEdge(ctx, "A", "missing", "j", nil); err == nil {
		t.Fatal("expected rejection")
	}
	if s.EdgeCount() != 0 {
		t.Error("rejected edge must not mutate the store")
	}
	if p.saves != saves {
		t.Error("rejected mutation must not trigger a write-through")
	}
}

func mustAddEdge(t *testing.T, s *Store, source, target string) {
	t.Helper()
	mustAddEdgeAttrs(t, s, source, target, "test link", nil)
}

func mustAddEdgeAttrs(t *testing.T, s *Store, source, target, justification string, attrs map[string]any) {
	t.Helper()
	if err := s.AddEdge(context.Background(), source, target, justification, attrs); err != nil {
		t.Fatalf("AddEdge(%s, %s) failed: %v", source, target, err)
	}
}
