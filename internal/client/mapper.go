// Package client - тонкий клиент: отображение ID, локальное состояние,
// прием сообщений сервера, планирование пути и расписание команд.
package client

import (
	"errors"
	"fmt"

	"gridsync/internal/domain"
)

// LocalID - идентификатор сущности в пространстве клиента. 0 - нет сущности.
type LocalID uint64

var ErrAlreadyMapped = errors.New("id already mapped")

// Mapper - взаимно однозначное соответствие ID сервера и локальных ID.
// Обе стороны всегда меняются вместе.
type Mapper struct {
	clientOf map[domain.EntityID]LocalID
	serverOf map[LocalID]domain.EntityID
}

func NewMapper() *Mapper {
	return &Mapper{
		clientOf: make(map[domain.EntityID]LocalID),
		serverOf: make(map[LocalID]domain.EntityID),
	}
}

// Insert связывает пару. Если любая сторона уже связана, ничего не меняется.
func (m *Mapper) Insert(server domain.EntityID, local LocalID) error {
	if _, ok := m.clientOf[server]; ok {
		return fmt.Errorf("%w: server %v", ErrAlreadyMapped, server)
	}
	if _, ok := m.serverOf[local]; ok {
		return fmt.Errorf("%w: local %d", ErrAlreadyMapped, local)
	}
	m.clientOf[server] = local
	m.serverOf[local] = server
	return nil
}

func (m *Mapper) LocalOf(server domain.EntityID) (LocalID, bool) {
	l, ok := m.clientOf[server]
	return l, ok
}

func (m *Mapper) ServerOf(local LocalID) (domain.EntityID, bool) {
	s, ok := m.serverOf[local]
	return s, ok
}

// RemoveServer удаляет пару по ID сервера.
func (m *Mapper) RemoveServer(server domain.EntityID) (LocalID, bool) {
	l, ok := m.clientOf[server]
	if !ok {
		return 0, false
	}
	delete(m.clientOf, server)
	delete(m.serverOf, l)
	return l, true
}

// RemoveLocal удаляет пару по локальному ID.
func (m *Mapper) RemoveLocal(local LocalID) (domain.EntityID, bool) {
	s, ok := m.serverOf[local]
	if !ok {
		return domain.NilEntityID, false
	}
	delete(m.serverOf, local)
	delete(m.clientOf, s)
	return s, true
}

func (m *Mapper) Len() int {
	return len(m.clientOf)
}
