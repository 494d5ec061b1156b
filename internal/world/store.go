package world

import "gridsync/internal/domain"

// Store хранит один вид компонента и помнит, у кого он изменился за тик.
// Порядок Changed совпадает с порядком первых изменений.
type Store[C comparable] struct {
	values  map[domain.EntityID]C
	changed []domain.EntityID
	marked  map[domain.EntityID]struct{}
}

func NewStore[C comparable]() *Store[C] {
	return &Store[C]{
		values: make(map[domain.EntityID]C),
		marked: make(map[domain.EntityID]struct{}),
	}
}

// Set записывает значение. Изменением считается новая запись или другое значение.
func (s *Store[C]) Set(id domain.EntityID, v C) bool {
	old, ok := s.values[id]
	if ok && old == v {
		return false
	}
	s.values[id] = v
	s.mark(id)
	return true
}

func (s *Store[C]) mark(id domain.EntityID) {
	if _, ok := s.marked[id]; ok {
		return
	}
	s.marked[id] = struct{}{}
	s.changed = append(s.changed, id)
}

func (s *Store[C]) Get(id domain.EntityID) (C, bool) {
	v, ok := s.values[id]
	return v, ok
}

func (s *Store[C]) Has(id domain.EntityID) bool {
	_, ok := s.values[id]
	return ok
}

// Remove удаляет компонент вместе с отметкой об изменении.
func (s *Store[C]) Remove(id domain.EntityID) {
	delete(s.values, id)
	if _, ok := s.marked[id]; !ok {
		return
	}
	delete(s.marked, id)
	for i, c := range s.changed {
		if c == id {
			s.changed = append(s.changed[:i], s.changed[i+1:]...)
			break
		}
	}
}

// Changed возвращает сущности с изменившимся компонентом.
// Срез принадлежит хранилищу и действителен до ClearChanges.
func (s *Store[C]) Changed() []domain.EntityID {
	return s.changed
}

func (s *Store[C]) IsChanged(id domain.EntityID) bool {
	_, ok := s.marked[id]
	return ok
}

func (s *Store[C]) ClearChanges() {
	s.changed = s.changed[:0]
	clear(s.marked)
}

func (s *Store[C]) Len() int {
	return len(s.values)
}
