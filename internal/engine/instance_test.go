package engine

import (
	"context"
	"testing"
	"time"

	"gridsync/internal/client"
	"gridsync/internal/domain"
	"gridsync/internal/infrastructure/storage"
	"gridsync/internal/network"

	"github.com/stretchr/testify/suite"
)

// Два игрока рядом с манекеном и мечом. Радиус 2: у обоих в области
// 25 клеток пола, меч (3,6), манекен (6,8) и оба игрока.
var (
	aliceTile = domain.NewTile(5, 0, 7)
	bobTile   = domain.NewTile(4, 0, 6)
)

const (
	aliceID uint64 = 1
	bobID   uint64 = 2
)

type peerConn struct {
	out       <-chan []byte
	endpoint  *network.Endpoint
	client    *client.Client
	connected bool
}

type InstanceSuite struct {
	suite.Suite

	hub     *network.Hub
	store   *storage.MemoryStore
	journal *storage.Journal
	inst    *Instance
	peers   map[uint64]*peerConn
	now     time.Time
}

func TestInstanceSuite(t *testing.T) {
	suite.Run(t, new(InstanceSuite))
}

func (s *InstanceSuite) SetupTest() {
	s.hub = network.NewHub(1024)
	s.store = storage.NewMemoryStore()
	s.journal = storage.NewJournal(42)
	s.now = time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)

	cfg := NewConfig()
	cfg.Seed = 42
	cfg.ScopeRadius = 2
	cfg.WorldWidth = 30
	cfg.WorldDepth = 30

	inst, err := NewInstance(cfg, Deps{
		Hub:     s.hub,
		Store:   s.store,
		Journal: s.journal,
		Clock:   func() time.Time { return s.now },
	})
	s.Require().NoError(err)
	s.inst = inst

	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, storage.PlayerRecord{ID: aliceID, Tile: aliceTile}))
	s.Require().NoError(s.store.Save(ctx, storage.PlayerRecord{ID: bobID, Tile: bobTile}))

	s.peers = make(map[uint64]*peerConn)
	for _, id := range []uint64{aliceID, bobID} {
		s.Require().NoError(s.inst.Preload(ctx, id))
		out, err := s.hub.Register(id, "")
		s.Require().NoError(err)

		conn := network.NewClientEndpoint()
		s.peers[id] = &peerConn{
			out:       out,
			endpoint:  conn,
			client:    client.New(id, conn, domain.DefaultStepInterval),
			connected: true,
		}
	}

	s.step()
}

func (s *InstanceSuite) TearDownTest() {
	if s.inst.saver != nil {
		s.inst.saver.Close()
	}
}

// step прогоняет тик сервера и один тик каждого клиента.
func (s *InstanceSuite) step() {
	s.inst.Step()
	s.now = s.now.Add(100 * time.Millisecond)

	for _, id := range []uint64{aliceID, bobID} {
		p := s.peers[id]
		if !p.connected {
			continue
		}
		s.drain(p)

		_, err := p.client.Tick()
		s.Require().NoError(err)

		frames := make(chan []byte, 256)
		p.endpoint.Flush(s.now, frames)
		close(frames)
		for frame := range frames {
			s.Require().NoError(s.hub.Deliver(id, frame))
		}
	}
}

func (s *InstanceSuite) drain(p *peerConn) {
	for {
		select {
		case frame, ok := <-p.out:
			if !ok {
				return
			}
			s.Require().NoError(p.endpoint.Deliver(frame))
		default:
			return
		}
	}
}

// stepUntil шагает, пока cond не выполнится, не больше limit тиков.
func (s *InstanceSuite) stepUntil(limit int, cond func() bool) bool {
	for range limit {
		if cond() {
			return true
		}
		s.step()
	}
	return cond()
}

func (s *InstanceSuite) client(id uint64) *client.Client {
	return s.peers[id].client
}

func (s *InstanceSuite) disconnect(id uint64) {
	s.hub.Unregister(id)
	s.peers[id].connected = false
}

func (s *InstanceSuite) serverEntity(kind domain.EntityKind) domain.EntityID {
	for _, id := range s.inst.World.Entities() {
		if t, _ := s.inst.World.Type(id); t.Kind == kind {
			return id
		}
	}
	s.FailNow("no entity of kind " + kind.String())
	return domain.NilEntityID
}

func (s *InstanceSuite) localTile(c *client.Client, local client.LocalID) domain.Tile {
	e, ok := c.State.Entity(local)
	s.Require().True(ok)
	return e.Tile
}

func (s *InstanceSuite) remotePlayer(c *client.Client, playerID uint64) (client.LocalID, bool) {
	for _, id := range c.State.FindKind(domain.EntityPlayer) {
		if e, _ := c.State.Entity(id); e.PlayerID == playerID {
			return id, true
		}
	}
	return 0, false
}

func (s *InstanceSuite) TestStagesOrder() {
	s.Equal([]string{
		StageConnection, StageScope, StageTransitions, StageCommands, StageUpdates, StageClear,
	}, s.inst.Stages())
}

func (s *InstanceSuite) TestConnect_LoadsScope() {
	alice := s.client(aliceID)

	tile, ok := alice.State.ControlledTile()
	s.Require().True(ok)
	s.Equal(aliceTile, tile)

	// 25 клеток пола, меч, манекен и два игрока
	s.Equal(29, alice.Mapper.Len())
	s.Len(alice.State.FindKind(domain.EntityTile), 25)
	s.Len(alice.State.FindKind(domain.EntitySword), 1)
	s.Len(alice.State.FindKind(domain.EntityDummy), 1)
	s.Len(alice.State.FindKind(domain.EntityPlayer), 2)
	s.Empty(alice.State.FindKind(domain.EntitySlime))
	s.Empty(alice.State.FindKind(domain.EntityLever))

	// полоски здоровья у манекена и двух игроков
	s.Equal(32, alice.State.Len())
	s.Equal([]uint64{aliceID, bobID}, alice.State.Lobby())
	s.Equal(uint64(0), alice.State.Tick)

	bob := s.client(bobID)
	_, sees := s.remotePlayer(bob, aliceID)
	s.True(sees)
}

func (s *InstanceSuite) TestSpawnTile_FallsBackOutsideWorld() {
	s.Require().NoError(s.store.Save(context.Background(), storage.PlayerRecord{ID: 3, Tile: domain.NewTile(500, 0, 1)}))
	s.Require().NoError(s.inst.Preload(context.Background(), 3))

	tile := s.inst.spawnTile(3)
	s.Less(tile.X, uint32(10))
	s.Equal(uint32(spawnRow), tile.Z)

	_, hinted := s.inst.takeHint(3)
	s.False(hinted, "hint is consumed")
}

func (s *InstanceSuite) TestWalk_ReplicatesToOtherClient() {
	alice, bob := s.client(aliceID), s.client(bobID)
	dest := domain.NewTile(5, 0, 8)
	s.Require().NoError(alice.Click(dest, client.WalkClick()))

	aliceOnBob, ok := s.remotePlayer(bob, aliceID)
	s.Require().True(ok)

	s.Require().True(s.stepUntil(20, func() bool {
		return s.localTile(bob, aliceOnBob) == dest
	}))

	tile, _ := alice.State.ControlledTile()
	s.Equal(dest, tile)
	s.Equal(1, s.journal.Len())
}

func (s *InstanceSuite) TestWalk_ScopeFollowsPlayer() {
	alice := s.client(aliceID)
	dest := domain.NewTile(5, 0, 9)
	s.Require().NoError(alice.Click(dest, client.WalkClick()))

	// с z=9 область доходит до z=11: появляется новый ряд пола
	s.Require().True(s.stepUntil(30, func() bool {
		for _, id := range alice.State.FindKind(domain.EntityTile) {
			if s.localTile(alice, id).Z == 11 {
				return true
			}
		}
		return false
	}))

	// ряд z=5 вышел из области
	for _, id := range alice.State.FindKind(domain.EntityTile) {
		s.NotEqual(uint32(5), s.localTile(alice, id).Z)
	}
	s.Equal(25, len(alice.State.FindKind(domain.EntityTile)))
}

func (s *InstanceSuite) TestPickup_RemovesItemForEveryone() {
	alice, bob := s.client(aliceID), s.client(bobID)
	swords := alice.State.FindKind(domain.EntitySword)
	s.Require().Len(swords, 1)
	sword := s.serverEntity(domain.EntitySword)

	s.Require().NoError(alice.Click(domain.NewTile(3, 0, 6), client.Click{Action: domain.ActionPickup, Target: swords[0]}))

	s.Require().True(s.stepUntil(30, func() bool {
		return len(bob.State.FindKind(domain.EntitySword)) == 0
	}))
	s.Empty(alice.State.FindKind(domain.EntitySword))
	s.False(s.inst.World.Alive(sword))
}

func (s *InstanceSuite) TestAutoAttack_DamagesDummy() {
	alice, bob := s.client(aliceID), s.client(bobID)
	dummies := alice.State.FindKind(domain.EntityDummy)
	s.Require().Len(dummies, 1)
	dummy := s.serverEntity(domain.EntityDummy)
	player, ok := s.inst.World.PlayerEntity(aliceID)
	s.Require().True(ok)

	s.Require().NoError(alice.Click(domain.NewTile(6, 0, 8), client.Click{Action: domain.ActionAttack, Target: dummies[0]}))
	s.Require().True(s.stepUntil(20, func() bool {
		target, _ := s.inst.World.Targets.Get(player)
		return target.Entity == dummy
	}))

	// второй удар попадает в кулдаун и ничего не меняет
	s.Require().NoError(alice.AutoAttack())
	s.Require().NoError(alice.AutoAttack())

	dummyOnBob := bob.State.FindKind(domain.EntityDummy)
	s.Require().Len(dummyOnBob, 1)
	s.Require().True(s.stepUntil(10, func() bool {
		e, _ := bob.State.Entity(dummyOnBob[0])
		return e.Health != nil
	}))

	e, _ := bob.State.Entity(dummyOnBob[0])
	s.Equal(uint32(domain.DummyHealth-domain.AutoAttackDamage), e.Health.HP)

	hp, _ := s.inst.World.Health.Get(dummy)
	s.Equal(uint32(domain.DummyHealth-domain.AutoAttackDamage), hp.HP)
}

func (s *InstanceSuite) TestDisconnect_RemovesPlayerAndSaves() {
	alice := s.client(aliceID)
	bobEntity, ok := s.inst.World.PlayerEntity(bobID)
	s.Require().True(ok)
	// запись из хранилища уже прочитана при рукопожатии
	s.Require().NoError(s.store.Save(context.Background(), storage.PlayerRecord{ID: bobID}))

	s.disconnect(bobID)
	s.Require().True(s.stepUntil(5, func() bool {
		_, sees := s.remotePlayer(alice, bobID)
		return !sees
	}))
	s.Equal([]uint64{aliceID}, alice.State.Lobby())
	s.False(s.inst.World.Alive(bobEntity))

	s.inst.shutdown()
	rec, err := s.store.Load(context.Background(), bobID)
	s.Require().NoError(err)
	s.Equal(bobTile, rec.Tile)
}

func (s *InstanceSuite) TestMalformedCommand_Ignored() {
	s.Require().NoError(s.peers[aliceID].endpoint.Send(network.CommandChannel, []byte{0xc1}))
	s.step()
	s.step()

	s.Equal(0, s.journal.Len())
	tile, _ := s.client(aliceID).State.ControlledTile()
	s.Equal(aliceTile, tile)
}

func (s *InstanceSuite) TestSnapshot() {
	snap := s.inst.Snapshot()

	s.Equal(uint64(0), snap.Tick)
	s.Equal(900, snap.FloorTiles)
	// 9 стен, дверь, рычаг, манекен, слайм, меч, арка и два игрока
	s.Len(snap.Entities, 17)
	s.Len(snap.Clients, 2)
	s.Len(snap.Peers, 2)
	s.Len(snap.Stages, 6)
	s.Zero(snap.PendingLoads)
	s.Positive(snap.Flush.Sent)
}

func (s *InstanceSuite) TestRun_StopsOnCancel() {
	s.Require().NoError(s.store.Save(context.Background(), storage.PlayerRecord{ID: aliceID}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.inst.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		s.NoError(err)
	case <-time.After(2 * time.Second):
		s.FailNow("instance did not stop")
	}

	rec, err := s.store.Load(context.Background(), aliceID)
	s.Require().NoError(err)
	s.Equal(aliceTile, rec.Tile)
}

func (s *InstanceSuite) TestNewInstance_RequiresHub() {
	_, err := NewInstance(NewConfig(), Deps{})
	s.EqualError(err, "hub is required")
}
