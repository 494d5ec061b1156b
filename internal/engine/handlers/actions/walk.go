package actions

import (
	"fmt"

	"gridsync/internal/engine/handlers"
	"gridsync/internal/systems"
	"gridsync/pkg/api"
)

// HandleWalk переносит управляемую сущность на клетку шага.
// Путь строит клиент, сервер принимает каждую клетку как есть.
func HandleWalk(ctx handlers.Context, p api.TilePayload) (handlers.Result, error) {
	from, ok := systems.MoveTo(ctx.World, ctx.Actor, p.Tile, ctx.Tick)
	if !ok {
		return handlers.Rejected("Некем ходить."), nil
	}
	if from == p.Tile {
		return handlers.EmptyResult(), nil
	}
	return handlers.Result{Msg: fmt.Sprintf("%s -> %s", from, p.Tile), MsgType: "MOVE"}, nil
}
