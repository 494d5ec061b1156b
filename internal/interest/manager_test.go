package interest

import (
	"math/rand"
	"testing"

	"gridsync/internal/domain"
	"gridsync/internal/network"
	networkmocks "gridsync/internal/network/mocks"
	"gridsync/internal/world"
	"gridsync/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const testRadius = 5

func encode(t *testing.T, msg any) []byte {
	t.Helper()
	data, err := api.Encode(msg)
	require.NoError(t, err)
	return data
}

func spawnPlayer(w *world.World, clientID uint64, at domain.Tile) domain.EntityID {
	id := w.Spawn(domain.PlayerType(clientID), at)
	w.Players.Set(id, domain.Player{ID: clientID})
	return id
}

func TestConnect_PopulatesWithoutSpawn(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := networkmocks.NewMockSender(ctrl) // любой вызов провалит тест

	w := world.New()
	near := w.Spawn(domain.TileType(), domain.NewTile(5, 0, 5))
	far := w.Spawn(domain.TileType(), domain.NewTile(6, 0, 0))
	player := spawnPlayer(w, 1, domain.NewTile(0, 0, 0))

	m := NewManager(testRadius, sender)
	require.NoError(t, m.Connect(w, 1, player))

	assert.True(t, m.IsScoped(1, near), "boundary tile is inside")
	assert.True(t, m.IsScoped(1, player))
	assert.False(t, m.IsScoped(1, far))

	err := m.Connect(w, 1, player)
	assert.ErrorIs(t, err, ErrClientExists)

	err = m.Connect(w, 2, domain.PackEntityID(500, 1))
	assert.ErrorIs(t, err, ErrNoControlledPos)
}

func TestTransitions_HandOffBetweenClients(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := networkmocks.NewMockSender(ctrl)

	w := world.New()
	playerA := spawnPlayer(w, 1, domain.NewTile(0, 0, 0))
	playerB := spawnPlayer(w, 2, domain.NewTile(20, 0, 20))

	m := NewManager(testRadius, sender)
	require.NoError(t, m.Connect(w, 1, playerA))
	require.NoError(t, m.Connect(w, 2, playerB))

	e := w.Spawn(domain.KindType(domain.EntitySlime), domain.NewTile(2, 0, 2))
	sender.EXPECT().
		Send(uint64(1), network.SpawnChannel, encode(t, api.SpawnMessage{
			Entity: e, Type: domain.KindType(domain.EntitySlime), Tile: domain.NewTile(2, 0, 2),
		})).
		Return(nil)

	stats := m.Transitions(w)
	assert.Equal(t, TransitionStats{Spawned: 1}, stats)
	assert.True(t, m.IsScoped(1, e))
	assert.False(t, m.IsScoped(2, e))

	w.Tiles.Set(e, domain.NewTile(18, 0, 18))
	gomock.InOrder(
		sender.EXPECT().
			Send(uint64(1), network.DespawnChannel, encode(t, api.DespawnMessage{Entity: e})).
			Return(nil),
		sender.EXPECT().
			Send(uint64(2), network.SpawnChannel, encode(t, api.SpawnMessage{
				Entity: e, Type: domain.KindType(domain.EntitySlime), Tile: domain.NewTile(18, 0, 18),
			})).
			Return(nil),
	)

	stats = m.Transitions(w)
	assert.Equal(t, TransitionStats{Spawned: 1, Despawned: 1}, stats)
	assert.Equal(t, []uint64{2}, m.ScopedClients(e))
}

func TestRecomputeScopes_FollowsControlledEntity(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := networkmocks.NewMockSender(ctrl)

	w := world.New()
	player := spawnPlayer(w, 1, domain.NewTile(0, 0, 0))
	m := NewManager(testRadius, sender)
	require.NoError(t, m.Connect(w, 1, player))
	w.ClearTick()

	assert.Equal(t, 0, m.RecomputeScopes(w), "nothing moved")

	// Шаг сделан на прошлом тике: флаги изменений уже сброшены
	w.Tiles.Set(player, domain.NewTile(3, 0, 9))
	w.ClearTick()
	assert.Equal(t, 1, m.RecomputeScopes(w))
	assert.Equal(t, 0, m.RecomputeScopes(w), "anchor already moved")

	scope, ok := m.Scope(1)
	require.True(t, ok)
	assert.Equal(t, domain.NewScope(domain.NewTile(3, 0, 9), testRadius), scope)
}

func TestRelease_BroadcastsAndForgets(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := networkmocks.NewMockSender(ctrl)

	w := world.New()
	player := spawnPlayer(w, 1, domain.NewTile(0, 0, 0))
	sword := w.Spawn(domain.KindType(domain.EntitySword), domain.NewTile(1, 0, 1))
	m := NewManager(testRadius, sender)
	require.NoError(t, m.Connect(w, 1, player))
	require.True(t, m.IsScoped(1, sword))

	sender.EXPECT().Broadcast(network.DespawnChannel, encode(t, api.DespawnMessage{Entity: sword})).Return(nil)

	assert.True(t, m.Release(w, sword))
	assert.False(t, m.IsScoped(1, sword))
	assert.False(t, w.Alive(sword))
	assert.False(t, m.Release(w, sword), "second release is a no-op")

	// следующий проход ничего не рассылает
	assert.Equal(t, TransitionStats{}, m.Transitions(w))
}

func TestTransitions_DropsVanishedEntities(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := networkmocks.NewMockSender(ctrl)

	w := world.New()
	player := spawnPlayer(w, 1, domain.NewTile(0, 0, 0))
	lever := w.Spawn(domain.KindType(domain.EntityLever), domain.NewTile(1, 0, 0))
	m := NewManager(testRadius, sender)
	require.NoError(t, m.Connect(w, 1, player))

	require.True(t, w.Despawn(lever))
	sender.EXPECT().Send(uint64(1), network.DespawnChannel, encode(t, api.DespawnMessage{Entity: lever})).Return(nil)

	assert.Equal(t, TransitionStats{Despawned: 1}, m.Transitions(w))
	assert.Empty(t, m.ScopedClients(lever))
}

func TestDisconnect(t *testing.T) {
	w := world.New()
	player := spawnPlayer(w, 1, domain.NewTile(0, 0, 0))
	m := NewManager(testRadius, networkmocks.NewMockSender(gomock.NewController(t)))
	require.NoError(t, m.Connect(w, 1, player))

	controlled, ok := m.Disconnect(1)
	require.True(t, ok)
	assert.Equal(t, player, controlled)
	assert.Empty(t, m.ClientIDs())

	_, ok = m.Disconnect(1)
	assert.False(t, ok)
}

// После каждого прохода Scoped совпадает с множеством сущностей внутри Scope.
func TestTransitions_ScopedMatchesScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	sender := networkmocks.NewMockSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	rng := rand.New(rand.NewSource(7))
	randomTile := func() domain.Tile {
		return domain.NewTile(uint32(rng.Intn(30)), 0, uint32(rng.Intn(30)))
	}

	w := world.New()
	players := []domain.EntityID{spawnPlayer(w, 1, randomTile()), spawnPlayer(w, 2, randomTile())}
	var mobs []domain.EntityID
	for range 40 {
		mobs = append(mobs, w.Spawn(domain.KindType(domain.EntitySlime), randomTile()))
	}

	m := NewManager(testRadius, sender)
	require.NoError(t, m.Connect(w, 1, players[0]))
	require.NoError(t, m.Connect(w, 2, players[1]))

	for range 50 {
		for _, id := range append(mobs, players...) {
			if rng.Intn(3) == 0 {
				w.Tiles.Set(id, randomTile())
			}
		}
		m.RecomputeScopes(w)
		m.Transitions(w)
		w.ClearTick()

		for _, clientID := range m.ClientIDs() {
			scope, _ := m.Scope(clientID)
			var want []domain.EntityID
			for _, id := range w.Entities() {
				if tile, _ := w.Tiles.Get(id); scope.Check(tile) {
					want = append(want, id)
				}
			}
			assert.ElementsMatch(t, want, m.ScopedEntities(clientID))
		}
	}
}
