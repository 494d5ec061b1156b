package world

import "gridsync/internal/domain"

// allocator выдает EntityID с поколениями и переиспользует освобожденные слоты.
type allocator struct {
	generations []uint32
	free        []uint32
}

func (a *allocator) alloc() domain.EntityID {
	if n := len(a.free); n > 0 {
		index := a.free[n-1]
		a.free = a.free[:n-1]
		return domain.PackEntityID(index, a.generations[index])
	}
	index := uint32(len(a.generations))
	a.generations = append(a.generations, 1)
	return domain.PackEntityID(index, 1)
}

// release освобождает слот. Устаревший или чужой ID игнорируется.
func (a *allocator) release(id domain.EntityID) bool {
	if !a.alive(id) {
		return false
	}
	index := id.Index()
	a.generations[index]++
	if a.generations[index] == 0 {
		a.generations[index] = 1
	}
	a.free = append(a.free, index)
	return true
}

func (a *allocator) alive(id domain.EntityID) bool {
	if id.IsNil() {
		return false
	}
	index := id.Index()
	return int(index) < len(a.generations) && a.generations[index] == id.Generation()
}
