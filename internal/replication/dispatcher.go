// Package replication рассылает клиентам состояние мира:
// начальный снимок (Load), обновления компонентов и события.
package replication

import (
	"gridsync/internal/domain"
	"gridsync/internal/interest"
	"gridsync/internal/network"
	"gridsync/internal/world"
	"gridsync/pkg/api"
	"gridsync/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Dispatcher читает мир и области интереса, но ничего в них не меняет.
type Dispatcher struct {
	world    *world.World
	interest *interest.Manager
	sender   network.Sender
	filtered bool

	pending []uint64 // запросы снимка в порядке поступления
	log     *logrus.Entry
}

// NewDispatcher создает диспетчер. filtered ограничивает Load областью клиента.
func NewDispatcher(w *world.World, m *interest.Manager, sender network.Sender, filtered bool) *Dispatcher {
	return &Dispatcher{
		world:    w,
		interest: m,
		sender:   sender,
		filtered: filtered,
		log:      logger.Log.WithField("component", "replication"),
	}
}

// RequestChunk ставит клиента в очередь на получение снимка.
func (d *Dispatcher) RequestChunk(clientID uint64) {
	d.pending = append(d.pending, clientID)
}

// ServeChunks отвечает на все накопленные запросы снимка.
func (d *Dispatcher) ServeChunks() int {
	served := 0
	for _, clientID := range d.pending {
		if err := d.Load(clientID); err != nil {
			d.log.WithError(err).WithField("client_id", clientID).Warn("Load failed")
			continue
		}
		served++
	}
	d.pending = d.pending[:0]
	return served
}

// Load отправляет клиенту список (сущность, тип, клетка) одним сообщением
// по чанкованному каналу. Порядок - порядок сущностей в мире.
func (d *Dispatcher) Load(clientID uint64) error {
	var msg api.LoadMessage
	for _, id := range d.world.Entities() {
		tile, ok := d.world.Tiles.Get(id)
		if !ok {
			continue
		}
		if d.filtered && !d.interest.IsScoped(clientID, id) {
			continue
		}
		t, _ := d.world.Type(id)
		msg.Entities = append(msg.Entities, api.SpawnMessage{Entity: id, Type: t, Tile: tile})
	}

	payload, err := api.Encode(msg)
	if err != nil {
		return err
	}
	if err := d.sender.Send(clientID, network.LoadChannel, payload); err != nil {
		return err
	}

	d.log.WithFields(logrus.Fields{
		"client_id": clientID,
		"entities":  len(msg.Entities),
		"bytes":     len(payload),
	}).Debug("Load sent")
	return nil
}

// Update рассылает изменения одного вида компонента.
// Обновление получает только клиент, у которого сущность сейчас в области,
// поэтому оно никогда не опережает Spawn и не следует за Despawn.
func Update[C domain.Replicated](d *Dispatcher, store *world.Store[C]) int {
	sent := 0
	for _, id := range store.Changed() {
		clients := d.interest.ScopedClients(id)
		if len(clients) == 0 {
			continue
		}
		value, ok := store.Get(id)
		if !ok {
			continue
		}

		payload, err := api.Encode(api.UpdateMessage{Entity: id, Component: value.Project()})
		if err != nil {
			d.log.WithError(err).Error("Failed to encode update")
			continue
		}
		for _, clientID := range clients {
			if err := d.sender.Send(clientID, network.UpdateChannel, payload); err != nil {
				d.log.WithError(err).WithField("client_id", clientID).Debug("Update send failed")
				continue
			}
			sent++
		}
	}
	return sent
}

// Updates рассылает изменения всех реплицируемых компонентов в фиксированном порядке.
func (d *Dispatcher) Updates() int {
	w := d.world
	return Update(d, w.Tiles) +
		Update(d, w.Health) +
		Update(d, w.Running) +
		Update(d, w.Targets) +
		Update(d, w.Combat) +
		Update(d, w.Open) +
		Update(d, w.Players)
}

// Events рассылает события открытия тем, кто видит сущность.
func (d *Dispatcher) Events() int {
	sent := 0
	for _, ev := range d.world.OpenEvents() {
		clients := d.interest.ScopedClients(ev.Entity)
		if len(clients) == 0 {
			continue
		}
		payload, err := api.Encode(api.ServerEvent{Type: domain.EventOpen, Open: &ev})
		if err != nil {
			d.log.WithError(err).Error("Failed to encode event")
			continue
		}
		for _, clientID := range clients {
			if err := d.sender.Send(clientID, network.ServerEventsChannel, payload); err == nil {
				sent++
			}
		}
	}
	return sent
}

// BroadcastTick сообщает всем текущий тик.
func (d *Dispatcher) BroadcastTick(tick uint64) error {
	payload, err := api.Encode(api.TickMessage{Tick: tick})
	if err != nil {
		return err
	}
	return d.sender.Broadcast(network.TickChannel, payload)
}

// Pending - число необслуженных запросов снимка.
func (d *Dispatcher) Pending() int {
	return len(d.pending)
}
