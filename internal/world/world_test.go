package world

import (
	"testing"

	"gridsync/internal/domain"
	"gridsync/pkg/dungeon"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_Set(t *testing.T) {
	s := NewStore[domain.Health]()
	a, b := domain.PackEntityID(0, 1), domain.PackEntityID(1, 1)

	assert.True(t, s.Set(a, domain.NewHealth(10)), "insert is a change")
	assert.True(t, s.Set(b, domain.NewHealth(5)))
	assert.False(t, s.Set(a, domain.NewHealth(10)), "same value is not a change")
	assert.True(t, s.Set(a, domain.NewHealth(10).Damage(1)))

	assert.Equal(t, []domain.EntityID{a, b}, s.Changed(), "order of first change is kept")

	s.ClearChanges()
	assert.Empty(t, s.Changed())
	assert.False(t, s.IsChanged(a))
	assert.Equal(t, 2, s.Len())

	s.Set(b, domain.NewHealth(1))
	s.Remove(b)
	assert.Empty(t, s.Changed())
	assert.False(t, s.Has(b))
}

func TestAllocator_Generations(t *testing.T) {
	var a allocator

	first := a.alloc()
	assert.Equal(t, uint32(0), first.Index())
	assert.Equal(t, uint32(1), first.Generation())
	assert.False(t, first.IsNil())

	require.True(t, a.release(first))
	assert.False(t, a.release(first), "double release")

	reused := a.alloc()
	assert.Equal(t, first.Index(), reused.Index())
	assert.Equal(t, uint32(2), reused.Generation())
	assert.NotEqual(t, first, reused)
	assert.False(t, a.alive(first))
	assert.True(t, a.alive(reused))
}

func TestWorld_SpawnDespawn(t *testing.T) {
	w := New()
	at := domain.NewTile(3, 0, 6)

	sword := w.Spawn(domain.KindType(domain.EntitySword), at)
	floor := w.Spawn(domain.TileType(), at)
	require.Equal(t, 2, w.Len())

	assert.ElementsMatch(t, []domain.EntityID{sword, floor}, w.EntitiesAt(at))
	found, ok := w.FindAt(at, domain.EntitySword)
	require.True(t, ok)
	assert.Equal(t, sword, found)

	w.Health.Set(sword, domain.NewHealth(1))
	require.True(t, w.Despawn(sword))
	assert.False(t, w.Despawn(sword))
	assert.False(t, w.Alive(sword))
	assert.False(t, w.Health.Has(sword))
	assert.False(t, w.Tiles.Has(sword))
	assert.Equal(t, []domain.EntityID{floor}, w.Entities())

	_, ok = w.Type(sword)
	assert.False(t, ok)
}

func TestWorld_QueueDespawn(t *testing.T) {
	w := New()
	id := w.Spawn(domain.KindType(domain.EntitySword), domain.NewTile(0, 0, 0))

	w.QueueDespawn(id)
	w.QueueDespawn(id)
	w.QueueDespawn(domain.PackEntityID(99, 1))
	assert.True(t, w.IsDespawning(id))

	assert.Equal(t, []domain.EntityID{id}, w.TakeDespawns())
	assert.Empty(t, w.TakeDespawns())
	assert.False(t, w.IsDespawning(id))
	assert.True(t, w.Alive(id), "queueing does not remove")
}

func TestWorld_Populate(t *testing.T) {
	w := New()
	level := dungeon.Training(20, 20, domain.ChunkSize)
	ids := w.Populate(level)
	require.Len(t, ids, len(level.Placements))

	door, ok := w.FindAt(domain.NewTile(dungeon.WallX, 0, dungeon.DoorZ), domain.EntityDoor)
	require.True(t, ok)
	state, ok := w.Open.Get(door)
	require.True(t, ok)
	assert.Equal(t, domain.Closed, state)

	dummy, ok := w.FindAt(domain.NewTile(6, 0, 8), domain.EntityDummy)
	require.True(t, ok)
	hp, _ := w.Health.Get(dummy)
	assert.Equal(t, uint32(domain.DummyHealth), hp.HP)
	assert.Equal(t, MobIdle, w.Mobs[dummy])
}

func TestWorld_PlayerEntity(t *testing.T) {
	w := New()
	id := w.Spawn(domain.PlayerType(42), domain.NewTile(1, 0, 4))
	w.Players.Set(id, domain.Player{ID: 42})

	got, ok := w.PlayerEntity(42)
	require.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = w.PlayerEntity(7)
	assert.False(t, ok)
}

func TestWorld_ClearTick(t *testing.T) {
	w := New()
	id := w.Spawn(domain.TileType(), domain.NewTile(0, 0, 0))
	w.EmitOpen(domain.OpenEvent{Entity: id, State: domain.Open})
	require.Len(t, w.OpenEvents(), 1)
	require.True(t, w.Tiles.IsChanged(id))

	w.ClearTick()
	assert.Empty(t, w.OpenEvents())
	assert.False(t, w.Tiles.IsChanged(id))
}
