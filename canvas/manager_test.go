package canvas

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusgraph/weave/persist"
)

func newFileManager(t *testing.T, dir string) *Manager {
	t.Helper()
	backend, err := persist.NewFileStore(dir)
	require.NoError(t, err)
	return NewManager(WithPersistence(backend))
}

func TestNewManager_DefaultCanvasAlwaysExists(t *testing.T) {
	m := NewManager()

	assert.Equal(t, Default, m.Active())
	infos := m.List()
	require.Len(t, infos, 1)
	assert.Equal(t, Default, infos[0].ID)
	assert.True(t, infos[0].Active)

	store, err := m.ActiveStore(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Default, store.Canvas())
}

func TestCreateSwitchDelete(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	require.NoError(t, m.Create(ctx, "research"))
	err := m.Create(ctx, "research")
	assert.ErrorIs(t, err, ErrAlreadyExists)

	assert.ErrorIs(t, m.Switch("missing"), ErrNotFound)
	require.NoError(t, m.Switch("research"))
	assert.Equal(t, "research", m.Active())

	assert.ErrorIs(t, m.Delete(ctx, "missing"), ErrNotFound)
	require.NoError(t, m.Delete(ctx, "research"))
	assert.NotContains(t, canvasIDs(m), "research")
}

func TestDelete_ActiveCanvasFallsBackToDefault(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	require.NoError(t, m.Create(ctx, "scratch"))
	require.NoError(t, m.Switch("scratch"))
	require.NoError(t, m.Delete(ctx, "scratch"))

	assert.Equal(t, Default, m.Active())
}

func TestDelete_DefaultCanvasRejected(t *testing.T) {
	m := NewManager()
	assert.ErrorIs(t, m.Delete(context.Background(), Default), ErrDefaultCanvas)
}

func TestCanvasIsolation(t *testing.T) {
	ctx := context.Background()
	m := NewManager()
	require.NoError(t, m.Create(ctx, "other"))

	defaultStore, err := m.Store(ctx, Default)
	require.NoError(t, err)
	otherStore, err := m.Store(ctx, "other")
	require.NoError(t, err)

	require.NoError(t, defaultStore.AddNode(ctx, "ONLY-IN-DEFAULT", nil))
	assert.False(t, otherStore.HasNode("ONLY-IN-DEFAULT"))
}

func TestLazyLoadFromPersistence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	// First lifetime: create a canvas and mutate it; the write-through
	// persists every change.
	m := newFileManager(t, dir)
	require.NoError(t, m.Create(ctx, "research"))
	store, err := m.Store(ctx, "research")
	require.NoError(t, err)
	require.NoError(t, store.AddNode(ctx, "SURVIVOR", map[string]any{"title": "kept"}))

	// Second lifetime: the canvas is known from the snapshot listing and
	// its contents load on first access.
	m2 := newFileManager(t, dir)
	assert.Contains(t, canvasIDs(m2), "research")

	reloaded, err := m2.Store(ctx, "research")
	require.NoError(t, err)
	assert.True(t, reloaded.HasNode("SURVIVOR"))

	node, err := reloaded.Node("SURVIVOR")
	require.NoError(t, err)
	assert.Equal(t, "kept", node.Title())
}

func TestDelete_RemovesPersistedSnapshot(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	m := newFileManager(t, dir)
	require.NoError(t, m.Create(ctx, "doomed"))
	require.NoError(t, m.Delete(ctx, "doomed"))

	m2 := newFileManager(t, dir)
	assert.NotContains(t, canvasIDs(m2), "doomed")
}

func TestStore_SameHandleOnRepeatedAccess(t *testing.T) {
	ctx := context.Background()
	m := NewManager()

	first, err := m.Store(ctx, Default)
	require.NoError(t, err)
	second, err := m.Store(ctx, Default)
	require.NoError(t, err)
	assert.Same(t, first, second)
}

func TestStore_UnknownCanvas(t *testing.T) {
	m := NewManager()
	_, err := m.Store(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func canvasIDs(m *Manager) []string {
	infos := m.List()
	ids := make([]string, 0, len(infos))
	for _, info := range infos {
		ids = append(ids, info.ID)
	}
	return ids
}
