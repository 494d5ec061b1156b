package client

import (
	"errors"
	"fmt"

	"gridsync/internal/domain"
	"gridsync/pkg/pathfinding"
)

var ErrNoPath = errors.New("no path")

// Click - действие по клику в локальных ID.
type Click struct {
	Action domain.ActionType
	Target LocalID // 0 - без цели
}

func WalkClick() Click { return Click{Action: domain.ActionWalk} }

func (c Click) String() string {
	if c.Target != 0 {
		return fmt.Sprintf("%s(%d)", c.Action, c.Target)
	}
	return c.Action.String()
}

// Step - один шаг расписания: на тике Tick выполнить Click в клетке Tile.
type Step struct {
	Tick  uint64
	Click Click
	Tile  domain.Tile
}

// Plan строит шаги от start до dest. Начальная клетка в шаги не входит;
// последний шаг несет click, остальные - Walk. Tick не проставлен.
func Plan(start, dest domain.Tile, click Click, passable pathfinding.Passable) ([]Step, error) {
	path, _, ok := pathfinding.Find(start, dest, passable)
	if !ok {
		return nil, fmt.Errorf("%w: %v -> %v", ErrNoPath, start, dest)
	}
	if len(path) > 1 {
		path = path[1:]
	}

	steps := make([]Step, len(path))
	for i, tile := range path {
		steps[i] = Step{Click: WalkClick(), Tile: tile}
	}
	steps[len(steps)-1].Click = click
	return steps, nil
}
