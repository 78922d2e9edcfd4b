package graph

import (
	"context"
	"encoding/json"
	"reflect"
	"testing"
)

func TestSnapshot_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")
	_ = s.AddNode(ctx, "A", map[string]any{
		"title": "日本語のタイトル 🚀",
		"tags":  []any{"one", "two"},
		"meta":  map[string]any{"nested": map[string]any{"depth": 2.0}, "flag": true},
	})
	_ = s.AddNode(ctx, "B", nil)
	mustAddEdgeAttrs(t, s, "A", "B", "multi-byte 内容", map[string]any{"confidence": 0.25})

	snap := s.Snapshot()

	restored := NewStore("restored")
	restored.Restore(snap)
	if !reflect.DeepEqual(snap, restored.Snapshot()) {
		t.Errorf("restore must reproduce the snapshot exactly\nwant %+v\ngot  %+v", snap, restored.Snapshot())
	}

	// The same must hold across JSON serialization, the persistence wire
	// form.
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	reloaded := NewStore("reloaded")
	reloaded.Restore(&decoded)
	if !reflect.DeepEqual(snap, reloaded.Snapshot()) {
		t.Errorf("JSON round-trip changed the snapshot\nwant %+v\ngot  %+v", snap, reloaded.Snapshot())
	}
}

func TestSnapshot_EmptyStore(t *testing.T) {
	s := NewStore("test")
	snap := s.Snapshot()
	if len(snap.Nodes) != 0 || len(snap.Edges) != 0 {
		t.Errorf("empty store must snapshot empty, got %+v", snap)
	}

	restored := NewStore("restored")
	restored.Restore(snap)
	if restored.NodeCount() != 0 || restored.EdgeCount() != 0 {
		t.Error("restoring an empty snapshot must leave the store empty")
	}
}

func TestSnapshot_DeterministicOrder(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")
	for _, id := range []string{"C", "A", "B"} {
		_ = s.AddNode(ctx, id, nil)
	}
	mustAddEdge(t, s, "C", "A")
	mustAddEdge(t, s, "A", "B")

	snap := s.Snapshot()
	if snap.Nodes[0].ID != "A" || snap.Nodes[1].ID != "B" || snap.Nodes[2].ID != "C" {
		t.Errorf("nodes must be sorted by id, got %v", fragmentIDs(&Fragment{Nodes: snap.Nodes}))
	}
	if snap.Edges[0].Source != "A" {
		t.Errorf("edges must be sorted by source, got %v first", snap.Edges[0])
	}
}

func TestRestore_ReplacesPriorState(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")
	_ = s.AddNode(ctx, "OLD", nil)

	s.Restore(&Snapshot{Nodes: []*Node{NewNode("NEW")}})
	if s.HasNode("OLD") {
		t.Error("restore must replace prior contents")
	}
	if !s.HasNode("NEW") {
		t.Error("restored node missing")
	}
}

func TestRestore_DropsDanglingEdges(t *testing.T) {
	s := NewStore("test")
	s.Restore(&Snapshot{
		Nodes: []*Node{NewNode("A")},
		Edges: []*Edge{NewEdge("A", "GONE"), NewEdge("GONE", "A")},
	})
	if s.EdgeCount() != 0 {
		t.Errorf("edges with missing endpoints must be dropped, got %d", s.EdgeCount())
	}
}

func TestRestore_NilSnapshotResets(t *testing.T) {
	ctx := context.Background()
	s := NewStore("test")
	_ = s.AddNode(ctx, "A", nil)

	s.Restore(nil)
	if s.NodeCount() != 0 {
		t.Error("nil snapshot must reset the store")
	}
}
