// Package persist provides durable storage for canvas snapshots.
//
// Each canvas is stored as a single whole-snapshot record keyed by its
// canvas id; every save overwrites the prior record. Two backends are
// provided: FileStore keeps one JSON document per canvas in a local data
// directory, RedisStore keeps one JSON value per canvas under a key
// prefix. Both round-trip arbitrary attribute values, including nested
// maps, lists and multi-byte text.
package persist

import (
	"context"
	"errors"

	"github.com/nexusgraph/weave/graph"
)

// ErrStorageFailed wraps backend failures so callers can classify them
// with errors.Is without knowing which backend is in use.
var ErrStorageFailed = errors.New("persist: storage operation failed")

// Store is the persistence contract consumed by the canvas manager. The
// Save method also satisfies graph.Persister, so a Store can be wired
// directly into a graph store as its write-through target.
type Store interface {
	// Save serializes the snapshot for the given canvas, overwriting any
	// prior record.
	Save(ctx context.Context, canvasID string, snap *graph.Snapshot) error

	// Load returns the latest snapshot for the canvas, or an empty
	// snapshot when none has ever been saved.
	Load(ctx context.Context, canvasID string) (*graph.Snapshot, error)

	// Delete removes the stored snapshot for the canvas. Deleting a
	// canvas that was never saved is not an error.
	Delete(ctx context.Context, canvasID string) error

	// List returns the ids of all canvases with a stored snapshot.
	List(ctx context.Context) ([]string, error)
}
