package api

import (
	"errors"
	"testing"

	"gridsync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClickCommand(t *testing.T) {
	target := domain.PackEntityID(12, 1)
	tile := domain.NewTile(4, 0, 9)

	tests := []struct {
		name   string
		click  domain.LeftClick
		decode func(t *testing.T, raw []byte)
	}{
		{
			name:  "walk carries only the tile",
			click: domain.Walk(),
			decode: func(t *testing.T, raw []byte) {
				var p TilePayload
				require.NoError(t, Decode(raw, &p))
				assert.Equal(t, tile, p.Tile)
			},
		},
		{
			name:  "attack carries the target",
			click: domain.Attack(target),
			decode: func(t *testing.T, raw []byte) {
				var p TargetPayload
				require.NoError(t, Decode(raw, &p))
				assert.Equal(t, target, p.Target)
				assert.Equal(t, tile, p.Tile)
			},
		},
		{
			name:  "pickup without target",
			click: domain.Pickup(domain.NilEntityID),
			decode: func(t *testing.T, raw []byte) {
				var p PickupPayload
				require.NoError(t, Decode(raw, &p))
				assert.True(t, p.Target.IsNil())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := NewClickCommand(tt.click, tile)
			require.NoError(t, err)
			assert.Equal(t, tt.click.Action, cmd.Action)

			wire, err := Encode(cmd)
			require.NoError(t, err)

			var back ClientCommand
			require.NoError(t, Decode(wire, &back))
			assert.Equal(t, tt.click.Action, back.Action)
			tt.decode(t, back.Payload)
		})
	}
}

func TestNewClickCommand_RejectsAutoAttack(t *testing.T) {
	_, err := NewClickCommand(domain.LeftClick{Action: domain.ActionAutoAttack}, domain.Tile{})
	assert.Error(t, err)
}

func TestDecode_Validates(t *testing.T) {
	raw, err := Encode(TargetPayload{Tile: domain.NewTile(1, 0, 1)})
	require.NoError(t, err)

	var p TargetPayload
	err = Decode(raw, &p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingTarget))

	raw, err = Encode(Handshake{ProtocolID: 3})
	require.NoError(t, err)
	var h Handshake
	assert.ErrorIs(t, Decode(raw, &h), ErrProtocolMismatch)

	raw, err = Encode(ClientCommand{Action: domain.ActionType(200)})
	require.NoError(t, err)
	var c ClientCommand
	assert.Error(t, Decode(raw, &c))
}

func TestUpdateMessage_RoundTripKeepsPayload(t *testing.T) {
	msg := UpdateMessage{
		Entity:    domain.PackEntityID(5, 2),
		Component: domain.Target{Entity: domain.PackEntityID(9, 1)}.Project(),
	}
	raw, err := Encode(msg)
	require.NoError(t, err)

	var back UpdateMessage
	require.NoError(t, Decode(raw, &back))
	require.NotNil(t, back.Component.Target)
	assert.Equal(t, msg.Component.Target.Entity, back.Component.Target.Entity)

	raw, err = Encode(UpdateMessage{Entity: msg.Entity, Component: domain.ComponentType{Kind: domain.ComponentHealth}})
	require.NoError(t, err)
	assert.Error(t, Decode(raw, &back))
}
