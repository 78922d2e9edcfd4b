package weave

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/nexusgraph/weave/canvas"
	"github.com/nexusgraph/weave/graph"
)

// Engine is the entry point to the graph engine. It owns the canvas
// manager and routes every operation to the active canvas's graph store,
// wrapping failures in structured Errors and recording optional telemetry.
//
// All operations are safe for concurrent use. Mutations on one canvas are
// serialized by its store; different canvases proceed independently.
//
// Example:
//
//	engine, err := weave.New(
//	    weave.WithLogger(logger),
//	    weave.WithConfigFile("weave.yaml"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = engine.AddNode(ctx, "ARCH-OVERVIEW", map[string]any{
//	    "type":  "document",
//	    "title": "Architecture Overview",
//	})
type Engine struct {
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *engineMetrics
	canvases *canvas.Manager
}

// New creates an Engine. Without options it persists file snapshots under
// ./data and logs JSON to stdout.
func New(opts ...Option) (*Engine, error) {
	ec := &engineConfig{}
	for _, opt := range opts {
		opt(ec)
	}

	cfg := DefaultConfig()
	if ec.configPath != "" {
		loaded, err := LoadConfig(ec.configPath)
		if err != nil {
			return nil, fmt.Errorf("weave: %w", err)
		}
		cfg = loaded
	} else if ec.config != nil {
		cfg = *ec.config
		cfg.applyDefaults()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("weave: %w", err)
		}
	}

	logger := ec.logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	backend := ec.backend
	if backend == nil {
		built, err := cfg.buildBackend()
		if err != nil {
			return nil, fmt.Errorf("weave: %w", err)
		}
		backend = built
	}

	tracer := ec.tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("weave")
	}

	metrics, err := newEngineMetrics(ec.meter)
	if err != nil {
		return nil, fmt.Errorf("weave: init metrics: %w", err)
	}

	return &Engine{
		logger:  logger,
		tracer:  tracer,
		metrics: metrics,
		canvases: canvas.NewManager(
			canvas.WithPersistence(backend),
			canvas.WithLogger(logger),
		),
	}, nil
}

// CanvasStats summarizes the size of one canvas.
type CanvasStats struct {
	Canvas  string `json:"canvas"`
	Nodes   int    `json:"nodes"`
	Edges   int    `json:"edges"`
	Shadows int    `json:"shadows"`
}

// CreateCanvas registers a new empty canvas.
func (e *Engine) CreateCanvas(ctx context.Context, id string) error {
	ctx, span := e.tracer.Start(ctx, "Engine.CreateCanvas")
	defer span.End()

	if err := e.canvases.Create(ctx, id); err != nil {
		return wrapErr("Engine.CreateCanvas", err)
	}
	e.logger.Info("canvas created", "canvas", id)
	return nil
}

// SwitchCanvas makes the given canvas active.
func (e *Engine) SwitchCanvas(ctx context.Context, id string) error {
	_, span := e.tracer.Start(ctx, "Engine.SwitchCanvas")
	defer span.End()
	return wrapErr("Engine.SwitchCanvas", e.canvases.Switch(id))
}

// DeleteCanvas removes a canvas and its persisted snapshot. Deleting the
// active canvas falls back to the default canvas; the default canvas
// itself cannot be deleted.
func (e *Engine) DeleteCanvas(ctx context.Context, id string) error {
	ctx, span := e.tracer.Start(ctx, "Engine.DeleteCanvas")
	defer span.End()
	return wrapErr("Engine.DeleteCanvas", e.canvases.Delete(ctx, id))
}

// Canvases lists all known canvases, flagging the active one.
func (e *Engine) Canvases() []canvas.Info {
	return e.canvases.List()
}

// ActiveCanvas returns the id of the active canvas.
func (e *Engine) ActiveCanvas() string {
	return e.canvases.Active()
}

// ActiveStore returns the graph store of the active canvas for callers
// that want to hold a direct handle across several operations. The store
// enforces its own locking, so the handle stays valid under concurrency.
func (e *Engine) ActiveStore(ctx context.Context) (*graph.Store, error) {
	store, err := e.canvases.ActiveStore(ctx)
	return store, wrapErr("Engine.ActiveStore", err)
}

// AddNode inserts or overwrites a node on the active canvas.
func (e *Engine) AddNode(ctx context.Context, nodeID string, attrs map[string]any) error {
	ctx, span := e.tracer.Start(ctx, "Engine.AddNode")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return wrapErr("Engine.AddNode", err)
	}
	if err := store.AddNode(ctx, nodeID, attrs); err != nil {
		return wrapErr("Engine.AddNode", err)
	}
	e.metrics.recordMutation(ctx, "add_node")
	return nil
}

// AddShadowNode inserts a provisional node on the active canvas and
// returns its id.
func (e *Engine) AddShadowNode(ctx context.Context, nodeID, content string, meta map[string]any) (string, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.AddShadowNode")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return "", wrapErr("Engine.AddShadowNode", err)
	}
	assigned, err := store.AddShadowNode(ctx, nodeID, content, meta)
	if err != nil {
		return "", wrapErr("Engine.AddShadowNode", err)
	}
	e.metrics.recordMutation(ctx, "add_shadow_node")
	return assigned, nil
}

// AddDocumentNode ingests a document as a committed node on the active
// canvas and returns the id derived from the filename.
func (e *Engine) AddDocumentNode(ctx context.Context, filename, content string, meta map[string]any) (string, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.AddDocumentNode")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return "", wrapErr("Engine.AddDocumentNode", err)
	}
	assigned, err := store.AddDocumentNode(ctx, filename, content, meta)
	if err != nil {
		return "", wrapErr("Engine.AddDocumentNode", err)
	}
	e.metrics.recordMutation(ctx, "add_document_node")
	return assigned, nil
}

// UpdateNode merges attributes into an existing node on the active canvas.
func (e *Engine) UpdateNode(ctx context.Context, nodeID string, updates map[string]any) error {
	ctx, span := e.tracer.Start(ctx, "Engine.UpdateNode")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return wrapErr("Engine.UpdateNode", err)
	}
	if err := store.UpdateNode(ctx, nodeID, updates); err != nil {
		return wrapErr("Engine.UpdateNode", err)
	}
	e.metrics.recordMutation(ctx, "update_node")
	return nil
}

// DeleteNode removes a node and all incident edges on the active canvas.
func (e *Engine) DeleteNode(ctx context.Context, nodeID string) error {
	ctx, span := e.tracer.Start(ctx, "Engine.DeleteNode")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return wrapErr("Engine.DeleteNode", err)
	}
	if err := store.DeleteNode(ctx, nodeID); err != nil {
		return wrapErr("Engine.DeleteNode", err)
	}
	e.metrics.recordMutation(ctx, "delete_node")
	return nil
}

// AddEdge inserts a justified edge on the active canvas, subject to the
// containment hierarchy rules.
func (e *Engine) AddEdge(ctx context.Context, source, target, justification string, attrs map[string]any) error {
	ctx, span := e.tracer.Start(ctx, "Engine.AddEdge")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return wrapErr("Engine.AddEdge", err)
	}
	if err := store.AddEdge(ctx, source, target, justification, attrs); err != nil {
		return wrapErr("Engine.AddEdge", err)
	}
	e.metrics.recordMutation(ctx, "add_edge")
	return nil
}

// UpdateEdge merges attributes into an existing edge on the active canvas.
func (e *Engine) UpdateEdge(ctx context.Context, source, target string, updates map[string]any) error {
	ctx, span := e.tracer.Start(ctx, "Engine.UpdateEdge")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return wrapErr("Engine.UpdateEdge", err)
	}
	if err := store.UpdateEdge(ctx, source, target, updates); err != nil {
		return wrapErr("Engine.UpdateEdge", err)
	}
	e.metrics.recordMutation(ctx, "update_edge")
	return nil
}

// DeleteEdge removes an edge on the active canvas.
func (e *Engine) DeleteEdge(ctx context.Context, source, target string) error {
	ctx, span := e.tracer.Start(ctx, "Engine.DeleteEdge")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return wrapErr("Engine.DeleteEdge", err)
	}
	if err := store.DeleteEdge(ctx, source, target); err != nil {
		return wrapErr("Engine.DeleteEdge", err)
	}
	e.metrics.recordMutation(ctx, "delete_edge")
	return nil
}

// FlagConflict marks a node on the active canvas as conflicted.
func (e *Engine) FlagConflict(ctx context.Context, nodeID, reason string) error {
	ctx, span := e.tracer.Start(ctx, "Engine.FlagConflict")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return wrapErr("Engine.FlagConflict", err)
	}
	if err := store.FlagConflict(ctx, nodeID, reason); err != nil {
		return wrapErr("Engine.FlagConflict", err)
	}
	e.metrics.recordMutation(ctx, "flag_conflict")
	return nil
}

// NodeSummaries returns the lightweight node projection of the active
// canvas, optionally excluding one node id.
func (e *Engine) NodeSummaries(ctx context.Context, excludeID string) ([]graph.Summary, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.NodeSummaries")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return nil, wrapErr("Engine.NodeSummaries", err)
	}
	return store.NodeSummaries(excludeID), nil
}

// Subgraph extracts the depth-bounded neighborhood of the seed set on the
// active canvas.
func (e *Engine) Subgraph(ctx context.Context, seedIDs []string, depth int) (*graph.Fragment, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Subgraph")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return nil, wrapErr("Engine.Subgraph", err)
	}
	fragment, err := store.Subgraph(seedIDs, depth)
	return fragment, wrapErr("Engine.Subgraph", err)
}

// CommitShadows promotes every shadow node on the active canvas to
// committed status.
func (e *Engine) CommitShadows(ctx context.Context) (*graph.CommitResult, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.CommitShadows")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return nil, wrapErr("Engine.CommitShadows", err)
	}
	result, err := store.CommitShadows(ctx)
	if err != nil {
		return nil, wrapErr("Engine.CommitShadows", err)
	}
	e.metrics.recordCommitted(ctx, result.Committed)
	return result, nil
}

// ReapShadows deletes every shadow node on the active canvas, conflicted
// ones included, and returns the number removed.
func (e *Engine) ReapShadows(ctx context.Context) (int, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.ReapShadows")
	defer span.End()

	store, err := e.canvases.ActiveStore(ctx)
	if err != nil {
		return 0, wrapErr("Engine.ReapShadows", err)
	}
	reaped, err := store.ReapShadows(ctx)
	if err != nil {
		return 0, wrapErr("Engine.ReapShadows", err)
	}
	e.metrics.recordReaped(ctx, reaped)
	return reaped, nil
}

// Stats summarizes the given canvas, loading it if necessary.
func (e *Engine) Stats(ctx context.Context, canvasID string) (CanvasStats, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.Stats")
	defer span.End()

	store, err := e.canvases.Store(ctx, canvasID)
	if err != nil {
		return CanvasStats{}, wrapErr("Engine.Stats", err)
	}
	return CanvasStats{
		Canvas:  canvasID,
		Nodes:   store.NodeCount(),
		Edges:   store.EdgeCount(),
		Shadows: store.ShadowCount(),
	}, nil
}
