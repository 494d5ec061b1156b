package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"gridsync/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPlayerStore - общий сценарий для всех реализаций.
func testPlayerStore(t *testing.T, store PlayerStore) {
	t.Helper()
	ctx := context.Background()

	_, err := store.Load(ctx, 7)
	require.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	saved := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	rec := PlayerRecord{ID: 7, Tile: domain.NewTile(4, 0, 9), SavedAt: saved}
	require.NoError(t, store.Save(ctx, rec))

	got, err := store.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, rec.Tile, got.Tile)
	assert.True(t, saved.Equal(got.SavedAt))

	rec.Tile = domain.NewTile(5, 0, 9)
	require.NoError(t, store.Save(ctx, rec))
	got, err = store.Load(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.NewTile(5, 0, 9), got.Tile)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()
	testPlayerStore(t, store)
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err, "failed to create miniredis")
	defer mr.Close()

	store, err := NewRedisStore(mr.Addr())
	require.NoError(t, err)
	defer store.Close()

	testPlayerStore(t, store)
	assert.True(t, mr.Exists("gridsync:player:7"))
}

func TestRedisStore_CorruptedRecord(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	require.NoError(t, mr.Set("gridsync:player:3", "{not json"))

	store, err := NewRedisStore("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer store.Close()

	_, err = store.Load(context.Background(), 3)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("GRIDSYNC_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GRIDSYNC_TEST_POSTGRES_DSN not set")
	}

	store, err := NewPostgresStore(dsn)
	require.NoError(t, err)
	defer store.Close()

	_, err = store.db.Exec(`DELETE FROM gridsync_players WHERE id = 7`)
	require.NoError(t, err)
	testPlayerStore(t, store)
}

func TestOpen(t *testing.T) {
	store, err := Open(DriverMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, store)

	_, err = Open("sqlite", "")
	require.Error(t, err)
}

func TestSaver_FlushesOnClose(t *testing.T) {
	store := NewMemoryStore()
	saver := NewSaver(store)

	for id := uint64(1); id <= 3; id++ {
		require.True(t, saver.Enqueue(PlayerRecord{ID: id, Tile: domain.NewTile(uint32(id), 0, 0)}))
	}
	saver.Close()

	for id := uint64(1); id <= 3; id++ {
		rec, err := store.Load(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, uint32(id), rec.Tile.X)
	}
}
