package client

import (
	"errors"
	"testing"
	"time"

	"gridsync/internal/domain"
	"gridsync/internal/network"
	"gridsync/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ClientSuite struct {
	suite.Suite

	server   *network.Endpoint
	conn     *network.Endpoint
	client   *Client
	playerID domain.EntityID
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func (s *ClientSuite) SetupTest() {
	s.server = network.NewServerEndpoint()
	s.conn = network.NewClientEndpoint()
	s.client = New(1, s.conn, testInterval)

	var load api.LoadMessage
	var next uint32
	for x := uint32(0); x < 10; x++ {
		for z := uint32(0); z < 10; z++ {
			next++
			load.Entities = append(load.Entities, api.SpawnMessage{
				Entity: domain.PackEntityID(next, 1), Type: domain.TileType(), Tile: domain.NewTile(x, 0, z),
			})
		}
	}
	s.playerID = domain.PackEntityID(500, 1)
	load.Entities = append(load.Entities, api.SpawnMessage{
		Entity: s.playerID, Type: domain.PlayerType(1), Tile: domain.NewTile(4, 0, 4),
	})

	s.serverSend(network.LoadChannel, load)
	s.serverSend(network.TickChannel, api.TickMessage{Tick: 100})
	s.deliverToClient()

	_, err := s.client.Tick()
	s.Require().NoError(err)
}

func (s *ClientSuite) serverSend(ch network.Channel, msg any) {
	payload, err := api.Encode(msg)
	s.Require().NoError(err)
	s.Require().NoError(s.server.Send(ch, payload))
}

func (s *ClientSuite) deliverToClient() {
	out := make(chan []byte, 256)
	s.server.Flush(time.Now(), out)
	close(out)
	for frame := range out {
		s.Require().NoError(s.conn.Deliver(frame))
	}
}

// commandsFromClient переносит исходящие кадры клиента на сервер и декодирует команды.
func (s *ClientSuite) commandsFromClient() []api.ClientCommand {
	out := make(chan []byte, 64)
	s.conn.Flush(time.Now(), out)
	close(out)
	for frame := range out {
		s.Require().NoError(s.server.Deliver(frame))
	}
	var cmds []api.ClientCommand
	for _, raw := range s.server.Receive(network.CommandChannel) {
		var cmd api.ClientCommand
		s.Require().NoError(api.Decode(raw, &cmd))
		cmds = append(cmds, cmd)
	}
	return cmds
}

func (s *ClientSuite) TestLoadMaterializesWorld() {
	s.Equal(uint64(100), s.client.State.Tick)
	s.Equal(101, s.client.Mapper.Len())

	tile, ok := s.client.State.ControlledTile()
	s.Require().True(ok)
	s.Equal(domain.NewTile(4, 0, 4), tile)

	local, ok := s.client.Mapper.LocalOf(s.playerID)
	s.Require().True(ok)
	s.Equal(local, s.client.State.Controlled)
}

func (s *ClientSuite) TestClickSendsOneCommandPerStep() {
	s.Require().NoError(s.client.Click(domain.NewTile(4, 0, 9), WalkClick()))
	s.Equal(5, s.client.Scheduler.Len())
	s.Empty(s.commandsFromClient(), "nothing is due before the first step tick")

	var walked []domain.Tile
	for tick := uint64(101); tick <= 112; tick++ {
		s.serverSend(network.TickChannel, api.TickMessage{Tick: tick})
		s.deliverToClient()
		_, err := s.client.Tick()
		s.Require().NoError(err)

		cmds := s.commandsFromClient()
		if (tick-100)%testInterval != 0 || tick > 100+5*testInterval {
			s.Empty(cmds, "tick %d", tick)
			continue
		}
		s.Require().Len(cmds, 1, "tick %d", tick)
		s.Equal(domain.ActionWalk, cmds[0].Action)
		var p api.TilePayload
		s.Require().NoError(api.Decode(cmds[0].Payload, &p))
		walked = append(walked, p.Tile)
	}

	s.Equal([]domain.Tile{
		domain.NewTile(4, 0, 5), domain.NewTile(4, 0, 6), domain.NewTile(4, 0, 7),
		domain.NewTile(4, 0, 8), domain.NewTile(4, 0, 9),
	}, walked)

	clicks := s.server.Receive(network.ClickChannel)
	s.Require().Len(clicks, 1)
	var click api.ClickMessage
	s.Require().NoError(api.Decode(clicks[0], &click))
	s.Equal(s.playerID, click.Entity)
	s.Equal(domain.NewTile(4, 0, 9), click.Destination)
}

func (s *ClientSuite) TestDespawnOfControlledEntity() {
	s.serverSend(network.DespawnChannel, api.DespawnMessage{Entity: s.playerID})
	s.deliverToClient()
	notices, err := s.client.Tick()
	s.Require().NoError(err)

	s.Require().Len(notices, 1)
	s.IsType(Removed{}, notices[0])
	s.Zero(s.client.State.Controlled)
	s.ErrorIs(s.client.Click(domain.NewTile(1, 0, 1), WalkClick()), ErrNoControlled)
}

func TestClient_AutoAttack(t *testing.T) {
	conn := network.NewClientEndpoint()
	c := New(3, conn, 0)
	require.NoError(t, c.AutoAttack())
	assert.Equal(t, uint64(domain.DefaultStepInterval), c.Scheduler.Interval())

	out := make(chan []byte, 4)
	conn.Flush(time.Now(), out)
	server := network.NewServerEndpoint()
	require.NoError(t, server.Deliver(<-out))

	raw := server.Receive(network.CommandChannel)
	require.Len(t, raw, 1)
	var cmd api.ClientCommand
	require.NoError(t, api.Decode(raw[0], &cmd))
	assert.Equal(t, domain.ActionAutoAttack, cmd.Action)
}

func TestClient_ClickBeforeOwnSpawn(t *testing.T) {
	c := New(3, network.NewClientEndpoint(), 0)
	err := c.Click(domain.NewTile(1, 0, 1), WalkClick())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoControlled))
	assert.Zero(t, c.Scheduler.Len())
}
