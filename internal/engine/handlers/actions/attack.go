package actions

import (
	"errors"
	"fmt"

	"gridsync/internal/domain"
	"gridsync/internal/engine/handlers"
	"gridsync/internal/systems"
	"gridsync/pkg/api"
)

// attackable - виды, которые можно выбрать целью.
var attackable = []domain.EntityKind{domain.EntityPlayer, domain.EntityDummy, domain.EntitySlime}

// HandleAttack выбирает цель. Урон наносит только AUTO_ATTACK.
func HandleAttack(ctx handlers.Context, p api.TargetPayload) (handlers.Result, error) {
	res := systems.ValidateTarget(ctx.World, ctx.Actor, p.Target, attackable...)
	if !res.Valid {
		return handlers.Rejected(res.Message), nil
	}

	systems.SetTarget(ctx.World, ctx.Actor, p.Target)
	return handlers.Result{
		Msg:     fmt.Sprintf("Цель: %s %s", res.Type, p.Target),
		MsgType: "COMBAT",
	}, nil
}

// HandleAutoAttack бьет текущую цель, если прошел кулдаун.
func HandleAutoAttack(ctx handlers.Context) (handlers.Result, error) {
	out, err := systems.ApplyAutoAttack(ctx.World, ctx.Actor, ctx.Tick, ctx.Rules)
	switch {
	case errors.Is(err, systems.ErrCoolingDown):
		// Клиент жмет чаще, чем позволяет кулдаун
		return handlers.EmptyResult(), nil
	case err != nil:
		return handlers.Rejected(err.Error()), nil
	}

	ctx.Timers.ResetCombatAt(ctx.Actor, out.PunchUntil)
	return handlers.Result{
		Msg:     fmt.Sprintf("Удар по %s: -%d (осталось %d)", out.Target, out.Damage, out.HP),
		MsgType: "COMBAT",
	}, nil
}
