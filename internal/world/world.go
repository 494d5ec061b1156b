package world

import (
	"slices"

	"gridsync/internal/domain"
	"gridsync/pkg/dungeon"
)

// MobMode - нереплицируемое состояние поведения сущности.
type MobMode uint8

const (
	MobIdle MobMode = iota
	MobCombat
)

func (m MobMode) String() string {
	if m == MobCombat {
		return "combat"
	}
	return "idle"
}

// World - авторитетное состояние сервера.
// Не потокобезопасен: принадлежит горутине тика.
type World struct {
	alloc    allocator
	entities []domain.EntityID
	index    map[domain.EntityID]int
	types    map[domain.EntityID]domain.EntityType

	// Реплицируемые компоненты
	Tiles   *Store[domain.Tile]
	Health  *Store[domain.Health]
	Running *Store[domain.Running]
	Targets *Store[domain.Target]
	Combat  *Store[domain.CombatState]
	Open    *Store[domain.OpenState]
	Players *Store[domain.Player]

	// Только сервер
	Mobs      map[domain.EntityID]MobMode
	Cooldowns map[domain.EntityID]uint64 // тик, до которого автоатака недоступна
	LastMove  map[domain.EntityID]uint64 // тик последнего шага

	despawns []domain.EntityID
	queued   map[domain.EntityID]struct{}
	events   []domain.OpenEvent
}

func New() *World {
	return &World{
		index:     make(map[domain.EntityID]int),
		types:     make(map[domain.EntityID]domain.EntityType),
		Tiles:     NewStore[domain.Tile](),
		Health:    NewStore[domain.Health](),
		Running:   NewStore[domain.Running](),
		Targets:   NewStore[domain.Target](),
		Combat:    NewStore[domain.CombatState](),
		Open:      NewStore[domain.OpenState](),
		Players:   NewStore[domain.Player](),
		Mobs:      make(map[domain.EntityID]MobMode),
		Cooldowns: make(map[domain.EntityID]uint64),
		LastMove:  make(map[domain.EntityID]uint64),
		queued:    make(map[domain.EntityID]struct{}),
	}
}

// Spawn создает сущность с типом и клеткой.
func (w *World) Spawn(t domain.EntityType, at domain.Tile) domain.EntityID {
	id := w.alloc.alloc()
	w.index[id] = len(w.entities)
	w.entities = append(w.entities, id)
	w.types[id] = t
	w.Tiles.Set(id, at)
	return id
}

// Populate создает все сущности уровня в порядке раскладки.
func (w *World) Populate(level dungeon.Level) []domain.EntityID {
	ids := make([]domain.EntityID, 0, len(level.Placements))
	for _, p := range level.Placements {
		id := w.Spawn(p.Type, p.Tile)
		if p.Health != nil {
			w.Health.Set(id, *p.Health)
			w.Mobs[id] = MobIdle
		}
		if p.Open != nil {
			w.Open.Set(id, *p.Open)
		}
		ids = append(ids, id)
	}
	return ids
}

// Despawn немедленно удаляет сущность и все ее компоненты.
func (w *World) Despawn(id domain.EntityID) bool {
	pos, ok := w.index[id]
	if !ok {
		return false
	}

	last := len(w.entities) - 1
	w.entities[pos] = w.entities[last]
	w.index[w.entities[pos]] = pos
	w.entities = w.entities[:last]
	delete(w.index, id)
	delete(w.types, id)

	w.Tiles.Remove(id)
	w.Health.Remove(id)
	w.Running.Remove(id)
	w.Targets.Remove(id)
	w.Combat.Remove(id)
	w.Open.Remove(id)
	w.Players.Remove(id)
	delete(w.Mobs, id)
	delete(w.Cooldowns, id)
	delete(w.LastMove, id)

	w.alloc.release(id)
	return true
}

// QueueDespawn откладывает удаление до стадии переходов.
func (w *World) QueueDespawn(id domain.EntityID) {
	if !w.Alive(id) {
		return
	}
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.despawns = append(w.despawns, id)
}

// TakeDespawns забирает отложенные удаления в порядке постановки.
func (w *World) TakeDespawns() []domain.EntityID {
	out := w.despawns
	w.despawns = nil
	clear(w.queued)
	return out
}

// IsDespawning - сущность стоит в очереди на удаление.
func (w *World) IsDespawning(id domain.EntityID) bool {
	_, ok := w.queued[id]
	return ok
}

func (w *World) Alive(id domain.EntityID) bool {
	_, ok := w.index[id]
	return ok
}

func (w *World) Type(id domain.EntityID) (domain.EntityType, bool) {
	t, ok := w.types[id]
	return t, ok
}

// Entities возвращает копию списка живых сущностей.
func (w *World) Entities() []domain.EntityID {
	return slices.Clone(w.entities)
}

func (w *World) Len() int {
	return len(w.entities)
}

// EntitiesAt возвращает сущности на клетке.
func (w *World) EntitiesAt(at domain.Tile) []domain.EntityID {
	var out []domain.EntityID
	for _, id := range w.entities {
		if t, ok := w.Tiles.Get(id); ok && t == at {
			out = append(out, id)
		}
	}
	return out
}

// FindAt ищет на клетке сущность заданного вида.
func (w *World) FindAt(at domain.Tile, kind domain.EntityKind) (domain.EntityID, bool) {
	for _, id := range w.EntitiesAt(at) {
		if w.types[id].Kind == kind {
			return id, true
		}
	}
	return domain.NilEntityID, false
}

// PlayerEntity ищет сущность игрока по ID клиента.
func (w *World) PlayerEntity(clientID uint64) (domain.EntityID, bool) {
	for _, id := range w.entities {
		if p, ok := w.Players.Get(id); ok && p.ID == clientID {
			return id, true
		}
	}
	return domain.NilEntityID, false
}

// EmitOpen публикует событие открытия/закрытия.
func (w *World) EmitOpen(ev domain.OpenEvent) {
	w.events = append(w.events, ev)
}

// OpenEvents - события текущего тика.
func (w *World) OpenEvents() []domain.OpenEvent {
	return w.events
}

// ClearTick сбрасывает флаги изменений и события тика.
func (w *World) ClearTick() {
	w.Tiles.ClearChanges()
	w.Health.ClearChanges()
	w.Running.ClearChanges()
	w.Targets.ClearChanges()
	w.Combat.ClearChanges()
	w.Open.ClearChanges()
	w.Players.ClearChanges()
	w.events = nil
}
