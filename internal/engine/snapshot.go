package engine

import (
	"time"

	"gridsync/internal/domain"
	"gridsync/internal/interest"
	"gridsync/internal/network"
)

// StageTiming - длительность стадии на последнем тике.
type StageTiming struct {
	Name string        `json:"name"`
	Last time.Duration `json:"last_ns"`
}

// EntityView - сущность для отладочных эндпоинтов. Клетки пола не попадают.
type EntityView struct {
	ID     domain.EntityID   `json:"id"`
	Type   string            `json:"type"`
	Tile   domain.Tile       `json:"tile"`
	Health *domain.Health    `json:"health,omitempty"`
	Open   *domain.OpenState `json:"open,omitempty"`
	Target domain.EntityID   `json:"target,omitempty"`
}

// Snapshot - копия состояния мира для чтения из других горутин.
type Snapshot struct {
	Tick         uint64              `json:"tick"`
	FloorTiles   int                 `json:"floor_tiles"`
	Entities     []EntityView        `json:"entities"`
	Clients      []interest.View     `json:"clients"`
	Peers        []network.PeerStats `json:"peers"`
	Stages       []StageTiming       `json:"stages"`
	Flush        network.FlushStats  `json:"flush"`
	PendingLoads int                 `json:"pending_loads"`
}

// Snapshot возвращает последний опубликованный снимок.
func (i *Instance) Snapshot() Snapshot {
	i.snapMu.RLock()
	defer i.snapMu.RUnlock()
	return i.snapshot
}

func (i *Instance) publishSnapshot(flush network.FlushStats) {
	snap := Snapshot{
		Tick:         i.CurrentTick,
		Clients:      i.Interest.Views(),
		Peers:        i.Hub.Stats(),
		Stages:       append([]StageTiming(nil), i.timings...),
		Flush:        flush,
		PendingLoads: i.Dispatcher.Pending(),
	}

	for _, id := range i.World.Entities() {
		t, _ := i.World.Type(id)
		if t.Kind == domain.EntityTile {
			snap.FloorTiles++
			continue
		}

		view := EntityView{ID: id, Type: t.String()}
		view.Tile, _ = i.World.Tiles.Get(id)
		if hp, ok := i.World.Health.Get(id); ok {
			view.Health = &hp
		}
		if open, ok := i.World.Open.Get(id); ok {
			view.Open = &open
		}
		if target, ok := i.World.Targets.Get(id); ok {
			view.Target = target.Entity
		}
		snap.Entities = append(snap.Entities, view)
	}

	i.snapMu.Lock()
	i.snapshot = snap
	i.snapMu.Unlock()
}
