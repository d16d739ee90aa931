package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "prefs.db"), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestGetViewModeFallback(t *testing.T) {
	store := newTestStore(t)

	mode, err := store.GetViewMode(context.Background(), DefaultProfile, "week")
	assert.NoError(t, err)
	assert.Equal(t, "week", mode)
}

func TestSetAndGetViewMode(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, store.SetViewMode(ctx, DefaultProfile, "day"))

	mode, err := store.GetViewMode(ctx, DefaultProfile, "week")
	assert.NoError(t, err)
	assert.Equal(t, "day", mode)

	// Upsert replaces the previous value.
	assert.NoError(t, store.SetViewMode(ctx, DefaultProfile, "week"))
	mode, err = store.GetViewMode(ctx, DefaultProfile, "day")
	assert.NoError(t, err)
	assert.Equal(t, "week", mode)
}

func TestProfilesAreIndependent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.NoError(t, store.SetViewMode(ctx, "service", "day"))

	mode, err := store.GetViewMode(ctx, "kitchen", "week")
	assert.NoError(t, err)
	assert.Equal(t, "week", mode)
}
