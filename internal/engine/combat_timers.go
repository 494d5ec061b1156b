package engine

import (
	"container/heap"

	"gridsync/internal/domain"
	"gridsync/internal/systems"
	"gridsync/internal/world"
	"gridsync/pkg/logger"
)

// CombatTimers возвращает сущности из Punching в Idle.
// На сущность держится не больше одного таймера: новый удар переносит срок.
type CombatTimers struct {
	queue   TimerQueue
	itemMap map[domain.EntityID]*TimerItem
}

func NewCombatTimers() *CombatTimers {
	return &CombatTimers{
		queue:   make(TimerQueue, 0),
		itemMap: make(map[domain.EntityID]*TimerItem),
	}
}

// ResetCombatAt реализует handlers.Timers.
func (ct *CombatTimers) ResetCombatAt(id domain.EntityID, tick uint64) {
	if item, ok := ct.itemMap[id]; ok {
		ct.queue.Update(item, tick)
		return
	}

	item := &TimerItem{Entity: id, Due: tick}
	heap.Push(&ct.queue, item)
	ct.itemMap[id] = item

	logger.Log.WithField("entity_id", id.String()).Debug("Combat timer armed")
}

// Fire срабатывает все таймеры с Due <= tick. Возвращает число вернувшихся в Idle.
func (ct *CombatTimers) Fire(w *world.World, tick uint64) int {
	reset := 0
	for ct.queue.Len() > 0 && ct.queue[0].Due <= tick {
		item := heap.Pop(&ct.queue).(*TimerItem)
		delete(ct.itemMap, item.Entity)
		if systems.EndPunch(w, item.Entity, tick) {
			reset++
		}
	}
	return reset
}

// PeekNext возвращает ближайший таймер, не снимая его.
func (ct *CombatTimers) PeekNext() *TimerItem {
	if ct.queue.Len() == 0 {
		return nil
	}
	return ct.queue[0]
}

// Cancel снимает таймер сущности (например, при удалении).
func (ct *CombatTimers) Cancel(id domain.EntityID) {
	if item, ok := ct.itemMap[id]; ok {
		heap.Remove(&ct.queue, item.Index)
		delete(ct.itemMap, id)
	}
}

func (ct *CombatTimers) Len() int {
	return ct.queue.Len()
}
