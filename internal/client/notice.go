package client

import "gridsync/internal/domain"

// Notice - локальное событие, которое прием передает состоянию и показу.
type Notice interface {
	notice()
}

// Appeared - сущность появилась, показу нужно ее создать.
type Appeared struct {
	Local LocalID
	Type  domain.EntityType
	Tile  domain.Tile
}

// Removed - сущность исчезла вместе с дочерними.
type Removed struct {
	Local LocalID
}

// Updated - изменился компонент. Для TARGET ссылка уже переведена в Target
// (nil - цели нет или она неизвестна), а Component.Target очищен.
type Updated struct {
	Local     LocalID
	Component domain.ComponentType
	Target    *LocalID
}

// Opened - дверь или рычаг сменили состояние.
type Opened struct {
	Local LocalID
	State domain.OpenState
}

// Ticked - сервер сообщил тик.
type Ticked struct {
	Tick uint64
}

// Joined и Left - изменения лобби.
type Joined struct {
	PlayerID uint64
}

type Left struct {
	PlayerID uint64
}

func (Appeared) notice() {}
func (Removed) notice() {}
func (Updated) notice() {}
func (Opened) notice() {}
func (Ticked) notice() {}
func (Joined) notice() {}
func (Left) notice() {}
