// Package canvas manages the set of named graph stores and tracks which
// one is active for callers that do not address a canvas explicitly.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/nexusgraph/weave/graph"
	"github.com/nexusgraph/weave/persist"
)

// Default is the canvas guaranteed to exist after initialization. It is
// also the fallback active canvas when the active one is deleted.
const Default = "default"

// Sentinel errors for canvas operations.
var (
	// ErrNotFound indicates the referenced canvas does not exist.
	ErrNotFound = errors.New("canvas: not found")

	// ErrAlreadyExists indicates a canvas id collision on creation.
	ErrAlreadyExists = errors.New("canvas: already exists")

	// ErrDefaultCanvas indicates an attempt to delete the default canvas,
	// which must always exist as the fallback switch target.
	ErrDefaultCanvas = errors.New("canvas: default canvas cannot be deleted")
)

// Info describes one canvas in a listing.
type Info struct {
	ID     string `json:"id"`
	Active bool   `json:"active"`
}

// Manager owns the canvas id to graph store mapping. Stores are loaded
// from persistence lazily on first access and each carries the manager's
// persistence backend as its write-through target. Different canvases are
// fully independent; the manager lock only guards the mapping itself.
type Manager struct {
	mu      sync.RWMutex
	stores  map[string]*graph.Store
	known   map[string]struct{}
	active  string
	backend persist.Store
	logger  *slog.Logger
}

// Option configures a Manager.
type Option func(*Manager)

// WithPersistence attaches the durable snapshot backend. Without one the
// manager runs purely in memory.
func WithPersistence(backend persist.Store) Option {
	return func(m *Manager) { m.backend = backend }
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// NewManager creates a manager, seeds the known canvas set from the
// persistence backend and guarantees the default canvas exists. A failure
// to list persisted canvases is logged and the manager starts with just
// the default canvas; persisted snapshots remain loadable by id once
// created again.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		stores: make(map[string]*graph.Store),
		known:  make(map[string]struct{}),
		active: Default,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}

	if m.backend != nil {
		ids, err := m.backend.List(context.Background())
		if err != nil {
			m.logger.Error("failed to list persisted canvases", "error", err)
		}
		for _, id := range ids {
			m.known[id] = struct{}{}
		}
	}
	m.known[Default] = struct{}{}
	return m
}

// Create registers a new empty canvas.
func (m *Manager) Create(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("create canvas: empty id: %w", graph.ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.known[id]; ok {
		return fmt.Errorf("create canvas %q: %w", id, ErrAlreadyExists)
	}
	m.known[id] = struct{}{}
	m.stores[id] = m.newStore(id)

	// An empty snapshot is written immediately so the canvas survives a
	// restart even if it is never mutated.
	if m.backend != nil {
		if err := m.backend.Save(ctx, id, graph.EmptySnapshot()); err != nil {
			m.logger.Error("failed to persist new canvas", "canvas", id, "error", err)
		}
	}
	return nil
}

// Switch makes the given canvas the active one.
func (m *Manager) Switch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.known[id]; !ok {
		return fmt.Errorf("switch canvas %q: %w", id, ErrNotFound)
	}
	m.active = id
	return nil
}

// Delete removes a canvas and its persisted snapshot. Deleting the active
// canvas succeeds and falls back to the default canvas; deleting the
// default canvas is rejected so the fallback target always exists.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if id == Default {
		return fmt.Errorf("delete canvas %q: %w", id, ErrDefaultCanvas)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.known[id]; !ok {
		return fmt.Errorf("delete canvas %q: %w", id, ErrNotFound)
	}
	delete(m.known, id)
	delete(m.stores, id)
	if m.active == id {
		m.active = Default
	}

	if m.backend != nil {
		if err := m.backend.Delete(ctx, id); err != nil {
			m.logger.Error("failed to delete persisted canvas", "canvas", id, "error", err)
		}
	}
	return nil
}

// Active returns the id of the active canvas.
func (m *Manager) Active() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.active
}

// ActiveStore returns the graph store of the active canvas, loading it
// from persistence on first access.
func (m *Manager) ActiveStore(ctx context.Context) (*graph.Store, error) {
	m.mu.RLock()
	active := m.active
	m.mu.RUnlock()
	return m.Store(ctx, active)
}

// Store returns the graph store for the given canvas, loading it from
// persistence on first access. A snapshot load failure is logged and the
// canvas starts empty; the in-memory state is authoritative from then on.
func (m *Manager) Store(ctx context.Context, id string) (*graph.Store, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if store, ok := m.stores[id]; ok {
		return store, nil
	}
	if _, ok := m.known[id]; !ok {
		return nil, fmt.Errorf("canvas %q: %w", id, ErrNotFound)
	}

	store := m.newStore(id)
	if m.backend != nil {
		snap, err := m.backend.Load(ctx, id)
		if err != nil {
			m.logger.Error("failed to load canvas snapshot, starting empty", "canvas", id, "error", err)
		} else {
			store.Restore(snap)
		}
	}
	m.stores[id] = store
	return store, nil
}

// List returns all known canvases sorted by id, flagging the active one.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]Info, 0, len(m.known))
	for id := range m.known {
		infos = append(infos, Info{ID: id, Active: id == m.active})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

func (m *Manager) newStore(id string) *graph.Store {
	opts := []graph.StoreOption{graph.WithLogger(m.logger)}
	if m.backend != nil {
		opts = append(opts, graph.WithPersister(m.backend))
	}
	return graph.NewStore(id, opts...)
}
