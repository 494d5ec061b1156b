package client

import (
	"slices"

	"gridsync/internal/domain"
	"gridsync/pkg/pathfinding"
)

// Entity - локальное представление сущности.
type Entity struct {
	ID       LocalID
	Type     domain.EntityType
	Tile     domain.Tile
	Health   *domain.Health
	Running  bool
	Target   LocalID
	Combat   domain.CombatState
	Open     domain.OpenState
	PlayerID uint64

	// HealthBar - дочерняя полоска здоровья, у нее нет пары на сервере.
	HealthBar bool
	Parent    LocalID
	Children  []LocalID
}

// State - локальный мир клиента. Принадлежит горутине тика клиента.
type State struct {
	ClientID   uint64
	Tick       uint64
	Controlled LocalID

	lobby    map[uint64]struct{}
	next     LocalID
	entities map[LocalID]*Entity
}

func NewState(clientID uint64) *State {
	return &State{
		ClientID: clientID,
		lobby:    make(map[uint64]struct{}),
		entities: make(map[LocalID]*Entity),
	}
}

// Allocate выдает новый локальный ID.
func (s *State) Allocate() LocalID {
	s.next++
	return s.next
}

// Apply применяет уведомления по порядку.
func (s *State) Apply(notices []Notice) {
	for _, n := range notices {
		switch n := n.(type) {
		case Appeared:
			s.materialize(n)
		case Removed:
			s.Remove(n.Local)
		case Updated:
			s.update(n)
		case Opened:
			if e, ok := s.entities[n.Local]; ok {
				e.Open = n.State
			}
		case Ticked:
			if n.Tick > s.Tick {
				s.Tick = n.Tick
			}
		case Joined:
			s.lobby[n.PlayerID] = struct{}{}
		case Left:
			delete(s.lobby, n.PlayerID)
		}
	}
}

func (s *State) materialize(n Appeared) {
	if _, ok := s.entities[n.Local]; ok {
		return
	}
	e := &Entity{ID: n.Local, Type: n.Type, Tile: n.Tile}
	s.entities[e.ID] = e

	if n.Type.Kind == domain.EntityPlayer {
		e.PlayerID = n.Type.PlayerID
		if n.Type.PlayerID == s.ClientID {
			s.Controlled = e.ID
		}
	}
	if n.Type.HasHealthBar() {
		bar := &Entity{ID: s.Allocate(), Tile: n.Tile, HealthBar: true, Parent: e.ID}
		s.entities[bar.ID] = bar
		e.Children = append(e.Children, bar.ID)
	}
}

func (s *State) update(n Updated) {
	e, ok := s.entities[n.Local]
	if !ok {
		return
	}
	c := n.Component
	switch c.Kind {
	case domain.ComponentTile:
		e.Tile = *c.Tile
		for _, child := range e.Children {
			if ch, ok := s.entities[child]; ok {
				ch.Tile = *c.Tile
			}
		}
	case domain.ComponentHealth:
		hp := *c.Health
		e.Health = &hp
	case domain.ComponentRunning:
		e.Running = c.Running.Active
	case domain.ComponentTarget:
		e.Target = 0
		if n.Target != nil {
			e.Target = *n.Target
		}
	case domain.ComponentCombatState:
		e.Combat = *c.Combat
	case domain.ComponentOpenState:
		e.Open = *c.Open
	case domain.ComponentPlayer:
		e.PlayerID = c.Player.ID
	}
}

// Remove удаляет сущность вместе со всеми дочерними. Возвращает удаленные ID.
func (s *State) Remove(id LocalID) []LocalID {
	e, ok := s.entities[id]
	if !ok {
		return nil
	}
	// родитель удаляется первым, поэтому дочерние не трогают его Children
	delete(s.entities, id)
	removed := []LocalID{id}
	for _, child := range e.Children {
		removed = append(removed, s.Remove(child)...)
	}

	if e.Parent != 0 {
		if parent, ok := s.entities[e.Parent]; ok {
			parent.Children = slices.DeleteFunc(parent.Children, func(c LocalID) bool { return c == id })
		}
	}
	if s.Controlled == id {
		s.Controlled = 0
	}
	return removed
}

// Entity возвращает копию сущности.
func (s *State) Entity(id LocalID) (Entity, bool) {
	e, ok := s.entities[id]
	if !ok {
		return Entity{}, false
	}
	out := *e
	out.Children = slices.Clone(e.Children)
	return out, true
}

func (s *State) Len() int {
	return len(s.entities)
}

// FindKind возвращает ID сущностей вида kind по возрастанию.
func (s *State) FindKind(kind domain.EntityKind) []LocalID {
	var out []LocalID
	for id, e := range s.entities {
		if !e.HealthBar && e.Type.Kind == kind {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

// ControlledTile - клетка управляемой сущности.
func (s *State) ControlledTile() (domain.Tile, bool) {
	e, ok := s.entities[s.Controlled]
	if !ok {
		return domain.Tile{}, false
	}
	return e.Tile, true
}

// Lobby - подключенные игроки по возрастанию ID.
func (s *State) Lobby() []uint64 {
	out := make([]uint64, 0, len(s.lobby))
	for id := range s.lobby {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Traversable - клетки пола и дверей за вычетом тех, что заняты стенами и опорами арок.
func (s *State) Traversable() map[domain.Tile]struct{} {
	floor := make(map[domain.Tile]struct{})
	blocked := make(map[domain.Tile]struct{})
	for _, e := range s.entities {
		if e.HealthBar {
			continue
		}
		if e.Type.IsFloor() {
			floor[e.Tile] = struct{}{}
		}
		for _, t := range e.Type.Blocks(e.Tile) {
			blocked[t] = struct{}{}
		}
	}
	for t := range blocked {
		delete(floor, t)
	}
	return floor
}

// Passable - проверка проходимости для планировщика.
func (s *State) Passable() pathfinding.Passable {
	return pathfinding.SetPassable(s.Traversable())
}
