package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gridsync/internal/domain"
	"gridsync/internal/infrastructure/storage"
	"gridsync/internal/network"
	"gridsync/pkg/api"

	"github.com/sirupsen/logrus"
)

// spawnRow - ряд z, в котором появляются новые игроки.
const spawnRow = 4

// Preload загружает сохраненную клетку игрока до подключения.
// Вызывается из горутины рукопожатия, чтобы тик не ждал хранилище.
func (i *Instance) Preload(ctx context.Context, clientID uint64) error {
	if i.store == nil {
		return nil
	}
	rec, err := i.store.Load(ctx, clientID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to preload player %d: %w", clientID, err)
	}

	i.hintsMu.Lock()
	i.hints[clientID] = rec.Tile
	i.hintsMu.Unlock()
	return nil
}

// Welcome - параметры симуляции для ответа на рукопожатие.
func (i *Instance) Welcome(clientID uint64) api.Welcome {
	return api.Welcome{
		ClientID:     clientID,
		TickRate:     i.cfg.TickRate,
		StepInterval: i.cfg.StepInterval,
		ScopeRadius:  i.cfg.ScopeRadius,
	}
}

func (i *Instance) takeHint(clientID uint64) (domain.Tile, bool) {
	i.hintsMu.Lock()
	defer i.hintsMu.Unlock()

	t, ok := i.hints[clientID]
	delete(i.hints, clientID)
	return t, ok
}

// spawnTile - сохраненная клетка, если она внутри мира, иначе случайная в ряду spawnRow.
func (i *Instance) spawnTile(clientID uint64) domain.Tile {
	if t, ok := i.takeHint(clientID); ok && t.X < i.cfg.WorldWidth && t.Z < i.cfg.WorldDepth {
		return t
	}
	return domain.NewTile(uint32(i.Rng.Intn(10)), 0, spawnRow)
}

func (i *Instance) connectionStage() {
	for _, ev := range i.Hub.PollEvents() {
		switch ev.Kind {
		case network.ClientConnected:
			i.connect(ev.ClientID, ev.Name)
		case network.ClientDisconnected:
			i.disconnect(ev.ClientID)
		}
	}

	if served := i.Dispatcher.ServeChunks(); served > 0 {
		i.log.WithField("clients", served).Debug("Initial loads sent")
	}
}

// connect создает игрока, область интереса и запрос начального снимка.
func (i *Instance) connect(clientID uint64, name string) {
	tile := i.spawnTile(clientID)

	id := i.World.Spawn(domain.PlayerType(clientID), tile)
	i.World.Health.Set(id, domain.NewHealth(domain.PlayerHealth))
	i.World.Combat.Set(id, domain.Idle())
	i.World.Targets.Set(id, domain.Target{})
	i.World.Players.Set(id, domain.Player{ID: clientID})
	i.World.Running.Set(id, domain.Running{})

	if err := i.Interest.Connect(i.World, clientID, id); err != nil {
		i.log.WithError(err).WithField("client_id", clientID).Error("Connect rejected")
		i.World.Despawn(id)
		return
	}
	i.Dispatcher.RequestChunk(clientID)
	i.broadcastLobby(api.PlayerConnected, clientID)

	i.log.WithFields(logrus.Fields{
		"client_id": clientID,
		"name":      name,
		"entity_id": id.String(),
		"tile":      tile.String(),
	}).Info("Player connected")
}

// disconnect сохраняет позицию и ставит сущность игрока в очередь на удаление.
func (i *Instance) disconnect(clientID uint64) {
	id, ok := i.Interest.Disconnect(clientID)
	if !ok {
		return
	}

	i.savePlayer(clientID, id)
	i.World.QueueDespawn(id)
	i.broadcastLobby(api.PlayerDisconnected, clientID)

	i.log.WithFields(logrus.Fields{
		"client_id": clientID,
		"entity_id": id.String(),
	}).Info("Player disconnected")
}

func (i *Instance) savePlayer(clientID uint64, id domain.EntityID) {
	if i.saver == nil {
		return
	}
	tile, ok := i.World.Tiles.Get(id)
	if !ok {
		return
	}
	i.saver.Enqueue(storage.PlayerRecord{ID: clientID, Tile: tile, SavedAt: time.Now().UTC()})
}

func (i *Instance) broadcastLobby(kind api.ServerMessageKind, clientID uint64) {
	payload, err := api.Encode(api.ServerMessage{Kind: kind, PlayerID: clientID})
	if err != nil {
		i.log.WithError(err).Error("Failed to encode server message")
		return
	}
	if err := i.Hub.Broadcast(network.ServerMessagesChannel, payload); err != nil {
		i.log.WithError(err).WithField("kind", kind.String()).Debug("Lobby broadcast incomplete")
	}
}
