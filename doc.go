// Package weave is a graph engine for incrementally built, curated
// knowledge canvases.
//
// A canvas is an isolated directed graph of attribute-bag nodes and
// justified edges. Nodes enter either as committed content or as
// provisional "shadow" proposals that are later promoted in bulk
// (committed) or discarded in bulk (reaped). Edge insertion enforces the
// containment hierarchy: a document never contains a folder, and
// containment edges never form a cycle.
//
// The Engine facade resolves the active canvas and exposes the full
// mutation and query surface:
//
//	engine, err := weave.New(weave.WithConfigFile("weave.yaml"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx := context.Background()
//
//	_ = engine.AddNode(ctx, "ROOT", map[string]any{"type": "folder"})
//	docID, _ := engine.AddDocumentNode(ctx, "auth-notes.md", content, nil)
//	_ = engine.AddEdge(ctx, "ROOT", docID, "root owns ingested docs",
//	    map[string]any{"type": "contains"})
//
//	fragment, _ := engine.Subgraph(ctx, []string{docID}, 1)
//
// Every successful mutation is followed by a synchronous whole-snapshot
// write to the persistence backend (a JSON file per canvas by default,
// Redis optionally). A failed write is logged and the in-memory state
// stays authoritative; the mutation itself still succeeds.
//
// Subpackages:
//
//   - graph: the per-canvas store, hierarchy validation, shadow
//     lifecycle and bounded subgraph extraction
//   - canvas: the canvas registry and active-canvas tracking
//   - persist: snapshot persistence backends
//   - id: proposal id generation for shadow nodes
package weave
