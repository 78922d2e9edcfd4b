package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/nexusgraph/weave/graph"
)

const snapshotExt = ".json"

// FileStore persists one JSON snapshot file per canvas inside a data
// directory. Writes go through a temp file followed by a rename, so a
// crash mid-save never leaves a truncated snapshot behind.
type FileStore struct {
	dir string
}

// NewFileStore creates the data directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("persist: empty data directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("persist: create data directory %q: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the data directory this store writes into.
func (f *FileStore) Dir() string {
	return f.dir
}

// Save writes the snapshot for the canvas, replacing any prior file.
func (f *FileStore) Save(ctx context.Context, canvasID string, snap *graph.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if snap == nil {
		snap = graph.EmptySnapshot()
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot for canvas %q: %v: %w", canvasID, err, ErrStorageFailed)
	}

	path := f.path(canvasID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot for canvas %q: %v: %w", canvasID, err, ErrStorageFailed)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace snapshot for canvas %q: %v: %w", canvasID, err, ErrStorageFailed)
	}
	return nil
}

// Load reads the snapshot for the canvas, returning an empty snapshot when
// no file exists.
func (f *FileStore) Load(ctx context.Context, canvasID string) (*graph.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.path(canvasID))
	if os.IsNotExist(err) {
		return graph.EmptySnapshot(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot for canvas %q: %v: %w", canvasID, err, ErrStorageFailed)
	}

	var snap graph.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot for canvas %q: %v: %w", canvasID, err, ErrStorageFailed)
	}
	return &snap, nil
}

// Delete removes the snapshot file for the canvas, if any.
func (f *FileStore) Delete(ctx context.Context, canvasID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(f.path(canvasID)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete snapshot for canvas %q: %v: %w", canvasID, err, ErrStorageFailed)
	}
	return nil
}

// List returns the canvas ids with a snapshot file, sorted.
func (f *FileStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %v: %w", err, ErrStorageFailed)
	}

	var ids []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, snapshotExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, snapshotExt))
	}
	sort.Strings(ids)
	return ids, nil
}

// path maps a canvas id to its snapshot file. Path separators and parent
// references in the id are flattened so a canvas name can never escape the
// data directory.
func (f *FileStore) path(canvasID string) string {
	safe := strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(canvasID)
	return filepath.Join(f.dir, safe+snapshotExt)
}

var _ Store = (*FileStore)(nil)
