package actions

import (
	"fmt"

	"gridsync/internal/domain"
	"gridsync/internal/engine/handlers"
	"gridsync/internal/systems"
	"gridsync/pkg/api"
)

// HandlePickup убирает предмет из мира. Despawn уходит всем клиентам
// на стадии переходов.
func HandlePickup(ctx handlers.Context, p api.PickupPayload) (handlers.Result, error) {
	if p.Target.IsNil() {
		return handlers.Rejected("Здесь нечего поднять."), nil
	}

	res := systems.ValidateTarget(ctx.World, ctx.Actor, p.Target, domain.EntitySword)
	if !res.Valid {
		return handlers.Rejected(res.Message), nil
	}

	ctx.World.QueueDespawn(p.Target)
	return handlers.Result{Msg: fmt.Sprintf("Поднят %s %s", res.Type, p.Target), MsgType: "INFO"}, nil
}
