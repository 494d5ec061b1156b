package actions

import (
	"fmt"

	"gridsync/internal/domain"
	"gridsync/internal/engine/handlers"
	"gridsync/internal/systems"
	"gridsync/pkg/api"
)

// HandleOpen открывает дверь.
func HandleOpen(ctx handlers.Context, p api.TargetPayload) (handlers.Result, error) {
	return setOpenState(ctx, p.Target, domain.Open)
}

// HandleClose закрывает дверь.
func HandleClose(ctx handlers.Context, p api.TargetPayload) (handlers.Result, error) {
	return setOpenState(ctx, p.Target, domain.Closed)
}

func setOpenState(ctx handlers.Context, target domain.EntityID, state domain.OpenState) (handlers.Result, error) {
	res := systems.ValidateTarget(ctx.World, ctx.Actor, target, domain.EntityDoor)
	if !res.Valid {
		return handlers.Rejected(res.Message), nil
	}

	if !ctx.World.Open.Set(target, state) {
		return handlers.EmptyResult(), nil
	}
	ctx.World.EmitOpen(domain.OpenEvent{Entity: target, State: state})

	return handlers.Result{Msg: fmt.Sprintf("Дверь %s: %s", target, state), MsgType: "INTERACT"}, nil
}

// HandlePull переключает рычаг на клетке клика.
func HandlePull(ctx handlers.Context, p api.TilePayload) (handlers.Result, error) {
	lever, ok := ctx.World.FindAt(p.Tile, domain.EntityLever)
	if !ok || ctx.World.IsDespawning(lever) {
		return handlers.Rejected(fmt.Sprintf("На %s нет рычага.", p.Tile)), nil
	}

	current, _ := ctx.World.Open.Get(lever)
	next := current.Toggle()
	ctx.World.Open.Set(lever, next)
	ctx.World.EmitOpen(domain.OpenEvent{Entity: lever, State: next})

	return handlers.Result{Msg: fmt.Sprintf("Рычаг %s: %s", lever, next), MsgType: "INTERACT"}, nil
}
