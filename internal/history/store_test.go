package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kicad-web-opener/kicad-web-opener/internal/domain"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func entryAt(name string, at time.Time) domain.HistoryEntry {
	return domain.HistoryEntry{
		Name:        name,
		Type:        domain.ProjectTypeRepository,
		SourceURL:   "https://example.com/user/" + name + ".git",
		Destination: "/tmp/" + name,
		ProjectFile: "/tmp/" + name + "/" + name + ".kicad_pro",
		OpenedAt:    at,
	}
}

func TestStore_RecordAndRecent(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, store.Record(ctx, entryAt("second", base.Add(time.Minute))))
	require.NoError(t, store.Record(ctx, entryAt("first", base)))
	require.NoError(t, store.Record(ctx, entryAt("third", base.Add(time.Hour))))

	entries, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "third", entries[0].Name)
	assert.Equal(t, "second", entries[1].Name)
	assert.Equal(t, "first", entries[2].Name)

	assert.Equal(t, domain.ProjectTypeRepository, entries[0].Type)
	assert.Equal(t, "/tmp/third/third.kicad_pro", entries[0].ProjectFile)
	assert.True(t, entries[0].OpenedAt.Equal(base.Add(time.Hour)))
}

func TestStore_Recent_Limit(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, store.Record(ctx, entryAt(fmt.Sprintf("p%d", i), base.Add(time.Duration(i)*time.Second))))
	}

	entries, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "p4", entries[0].Name)
	assert.Equal(t, "p3", entries[1].Name)
}

func TestStore_Recent_Empty(t *testing.T) {
	entries, err := openMemory(t).Recent(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_Record_SetsTime(t *testing.T) {
	store := openMemory(t)
	fixed := time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	store.now = func() time.Time { return fixed }

	require.NoError(t, store.Record(context.Background(), entryAt("board", time.Time{})))

	entries, err := store.Recent(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].OpenedAt.Equal(fixed))
}

func TestStore_Record_SameInstantDifferentSources(t *testing.T) {
	store := openMemory(t)
	at := time.Now()

	require.NoError(t, store.Record(context.Background(), entryAt("a", at)))
	require.NoError(t, store.Record(context.Background(), entryAt("b", at)))

	entries, err := store.Recent(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestStore_Record_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := openMemory(t).Record(ctx, entryAt("board", time.Now()))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStore_Clear(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	require.NoError(t, store.Record(ctx, entryAt("board", time.Now())))

	require.NoError(t, store.Clear())

	entries, err := store.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStore_PersistsOnDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := Open(Options{Directory: dir})
	require.NoError(t, err)
	require.NoError(t, store.Record(ctx, entryAt("board", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := Open(Options{Directory: dir})
	require.NoError(t, err)
	defer reopened.Close()

	entries, err := reopened.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "board", entries[0].Name)
}
