package engine

import (
	"container/heap"

	"gridsync/internal/domain"
)

// TimerItem - отложенное действие над сущностью.
type TimerItem struct {
	Entity domain.EntityID
	Due    uint64 // тик срабатывания. Чем меньше, тем раньше.
	Index  int    // Индекс в куче (нужен для update)
}

// TimerQueue реализует heap.Interface и хранит TimerItems
type TimerQueue []*TimerItem

func (pq TimerQueue) Len() int { return len(pq) }

func (pq TimerQueue) Less(i, j int) bool {
	// MinHeap: при равном тике порядок детерминирован по ID
	if pq[i].Due != pq[j].Due {
		return pq[i].Due < pq[j].Due
	}
	return pq[i].Entity < pq[j].Entity
}

func (pq TimerQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].Index = i
	pq[j].Index = j
}

func (pq *TimerQueue) Push(x any) {
	n := len(*pq)
	item := x.(*TimerItem)
	item.Index = n
	*pq = append(*pq, item)
}

func (pq *TimerQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // избегаем утечки памяти
	item.Index = -1 // для безопасности
	*pq = old[0 : n-1]
	return item
}

// Update изменяет тик срабатывания элемента в очереди
func (pq *TimerQueue) Update(item *TimerItem, due uint64) {
	item.Due = due
	heap.Fix(pq, item.Index)
}
