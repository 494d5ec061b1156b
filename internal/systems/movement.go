package systems

import (
	"gridsync/internal/domain"
	"gridsync/internal/world"
)

// MoveTo ставит сущность на клетку и помечает ее бегущей.
// Возвращает прежнюю клетку.
func MoveTo(w *world.World, id domain.EntityID, to domain.Tile, tick uint64) (domain.Tile, bool) {
	from, ok := w.Tiles.Get(id)
	if !ok {
		return domain.Tile{}, false
	}
	w.Tiles.Set(id, to)
	w.Running.Set(id, domain.Running{Active: true})
	w.LastMove[id] = tick
	return from, true
}

// SettleRunning снимает Running с тех, кто не шагал interval тиков.
// Возвращает число остановившихся.
func SettleRunning(w *world.World, tick, interval uint64) int {
	stopped := 0
	for id, last := range w.LastMove {
		if tick < last+interval {
			continue
		}
		if w.Alive(id) {
			w.Running.Set(id, domain.Running{Active: false})
			stopped++
		}
		delete(w.LastMove, id)
	}
	return stopped
}
