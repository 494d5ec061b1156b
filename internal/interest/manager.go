// Package interest следит за областями интереса клиентов и рассылает
// Spawn/Despawn, когда сущности входят в область или покидают ее.
package interest

import (
	"errors"
	"fmt"
	"slices"

	"gridsync/internal/domain"
	"gridsync/internal/network"
	"gridsync/internal/world"
	"gridsync/pkg/api"
	"gridsync/pkg/logger"

	"github.com/sirupsen/logrus"
)

var (
	ErrClientExists    = errors.New("client already has a scope")
	ErrNoControlledPos = errors.New("controlled entity has no tile")
)

// Client - запись о клиенте. Меняется только Manager.
type Client struct {
	ID         uint64
	Scope      domain.Scope
	Scoped     map[domain.EntityID]struct{}
	Controlled domain.EntityID
	anchor     domain.Tile
}

// View - снимок клиента только для чтения.
type View struct {
	ID         uint64          `json:"id"`
	Controlled domain.EntityID `json:"controlled"`
	Anchor     domain.Tile     `json:"anchor"`
	Scope      domain.Scope    `json:"scope"`
	Scoped     int             `json:"scoped"`
}

// TransitionStats - что было разослано за проход.
type TransitionStats struct {
	Spawned   int
	Despawned int
}

// Manager владеет записями клиентов.
type Manager struct {
	radius  uint32
	sender  network.Sender
	clients map[uint64]*Client
	order   []uint64 // порядок подключения
	log     *logrus.Entry
}

func NewManager(radius uint32, sender network.Sender) *Manager {
	if radius == 0 {
		radius = domain.DefaultScopeRadius
	}
	return &Manager{
		radius:  radius,
		sender:  sender,
		clients: make(map[uint64]*Client),
		log:     logger.Log.WithField("component", "interest"),
	}
}

// Radius - радиус области интереса.
func (m *Manager) Radius() uint32 {
	return m.radius
}

// Connect создает область клиента вокруг его сущности и сразу заполняет ее.
// Spawn при этом не рассылается: клиент получит Load.
func (m *Manager) Connect(w *world.World, clientID uint64, controlled domain.EntityID) error {
	if _, ok := m.clients[clientID]; ok {
		return fmt.Errorf("%w: %d", ErrClientExists, clientID)
	}
	anchor, ok := w.Tiles.Get(controlled)
	if !ok {
		return fmt.Errorf("%w: %v", ErrNoControlledPos, controlled)
	}

	c := &Client{
		ID:         clientID,
		Scope:      domain.NewScope(anchor, m.radius),
		Scoped:     make(map[domain.EntityID]struct{}),
		Controlled: controlled,
		anchor:     anchor,
	}
	for _, id := range w.Entities() {
		if tile, ok := w.Tiles.Get(id); ok && c.Scope.Check(tile) {
			c.Scoped[id] = struct{}{}
		}
	}

	m.clients[clientID] = c
	m.order = append(m.order, clientID)

	m.log.WithFields(logrus.Fields{
		"client_id": clientID,
		"anchor":    anchor.String(),
		"scoped":    len(c.Scoped),
	}).Debug("Scope created")
	return nil
}

// Disconnect удаляет запись и возвращает сущность, которой управлял клиент.
func (m *Manager) Disconnect(clientID uint64) (domain.EntityID, bool) {
	c, ok := m.clients[clientID]
	if !ok {
		return domain.NilEntityID, false
	}
	delete(m.clients, clientID)
	m.order = slices.DeleteFunc(m.order, func(id uint64) bool { return id == clientID })
	return c.Controlled, true
}

// RecomputeScopes пересчитывает области клиентов, чья сущность ушла с опорной клетки.
// Сравнение идет с опорой, а не с флагом изменений: флаги сбрасываются в конце тика,
// в котором сущность сдвинулась. Возвращает число пересчитанных областей.
func (m *Manager) RecomputeScopes(w *world.World) int {
	n := 0
	for _, id := range m.order {
		c := m.clients[id]
		tile, ok := w.Tiles.Get(c.Controlled)
		if !ok || tile == c.anchor {
			continue
		}
		c.anchor = tile
		c.Scope = domain.NewScope(tile, m.radius)
		n++
	}
	return n
}

// Transitions сравнивает Scoped каждого клиента с текущими клетками сущностей
// и рассылает Spawn для вошедших и Despawn для вышедших.
func (m *Manager) Transitions(w *world.World) TransitionStats {
	var stats TransitionStats
	entities := w.Entities()

	for _, clientID := range m.order {
		c := m.clients[clientID]

		for _, id := range entities {
			tile, ok := w.Tiles.Get(id)
			if !ok {
				continue
			}
			_, scoped := c.Scoped[id]
			inside := c.Scope.Check(tile)

			switch {
			case scoped && !inside:
				delete(c.Scoped, id)
				m.send(clientID, network.DespawnChannel, api.DespawnMessage{Entity: id})
				stats.Despawned++
			case !scoped && inside:
				t, _ := w.Type(id)
				c.Scoped[id] = struct{}{}
				m.send(clientID, network.SpawnChannel, api.SpawnMessage{Entity: id, Type: t, Tile: tile})
				stats.Spawned++
			}
		}

		// Сущности, исчезнувшие из мира мимо Release
		var gone []domain.EntityID
		for id := range c.Scoped {
			if !w.Tiles.Has(id) {
				gone = append(gone, id)
			}
		}
		slices.Sort(gone)
		for _, id := range gone {
			delete(c.Scoped, id)
			m.send(clientID, network.DespawnChannel, api.DespawnMessage{Entity: id})
			stats.Despawned++
		}
	}
	return stats
}

// Release удаляет сущность из мира и из всех областей и рассылает Despawn всем.
func (m *Manager) Release(w *world.World, id domain.EntityID) bool {
	if !w.Despawn(id) {
		return false
	}
	for _, c := range m.clients {
		delete(c.Scoped, id)
	}

	payload, err := api.Encode(api.DespawnMessage{Entity: id})
	if err != nil {
		m.log.WithError(err).Error("Failed to encode despawn")
		return true
	}
	if err := m.sender.Broadcast(network.DespawnChannel, payload); err != nil {
		m.log.WithError(err).WithField("entity_id", id.String()).Warn("Despawn broadcast failed")
	}
	return true
}

func (m *Manager) send(clientID uint64, ch network.Channel, msg any) {
	payload, err := api.Encode(msg)
	if err != nil {
		m.log.WithError(err).Error("Failed to encode transition")
		return
	}
	if err := m.sender.Send(clientID, ch, payload); err != nil {
		m.log.WithError(err).WithField("client_id", clientID).Warn("Transition send failed")
	}
}

// IsScoped - сущность в области клиента.
func (m *Manager) IsScoped(clientID uint64, id domain.EntityID) bool {
	c, ok := m.clients[clientID]
	if !ok {
		return false
	}
	_, ok = c.Scoped[id]
	return ok
}

// ScopedClients возвращает клиентов, у которых сущность в области, в порядке подключения.
func (m *Manager) ScopedClients(id domain.EntityID) []uint64 {
	var out []uint64
	for _, clientID := range m.order {
		if _, ok := m.clients[clientID].Scoped[id]; ok {
			out = append(out, clientID)
		}
	}
	return out
}

// ClientIDs - клиенты в порядке подключения.
func (m *Manager) ClientIDs() []uint64 {
	return slices.Clone(m.order)
}

func (m *Manager) Scope(clientID uint64) (domain.Scope, bool) {
	c, ok := m.clients[clientID]
	if !ok {
		return domain.Scope{}, false
	}
	return c.Scope, true
}

func (m *Manager) Controlled(clientID uint64) (domain.EntityID, bool) {
	c, ok := m.clients[clientID]
	if !ok {
		return domain.NilEntityID, false
	}
	return c.Controlled, true
}

// ScopedEntities возвращает копию Scoped клиента, отсортированную по ID.
func (m *Manager) ScopedEntities(clientID uint64) []domain.EntityID {
	c, ok := m.clients[clientID]
	if !ok {
		return nil
	}
	out := make([]domain.EntityID, 0, len(c.Scoped))
	for id := range c.Scoped {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Views снимает состояние всех клиентов.
func (m *Manager) Views() []View {
	views := make([]View, 0, len(m.order))
	for _, id := range m.order {
		c := m.clients[id]
		views = append(views, View{
			ID:         c.ID,
			Controlled: c.Controlled,
			Anchor:     c.anchor,
			Scope:      c.Scope,
			Scoped:     len(c.Scoped),
		})
	}
	return views
}
