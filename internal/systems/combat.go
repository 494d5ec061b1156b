package systems

import (
	"errors"

	"gridsync/internal/domain"
	"gridsync/internal/world"
	"gridsync/pkg/logger"

	"github.com/sirupsen/logrus"
)

var (
	ErrNoTarget     = errors.New("no target")
	ErrTargetGone   = errors.New("target is gone")
	ErrCoolingDown  = errors.New("auto attack on cooldown")
	ErrNotAttacking = errors.New("entity cannot attack")
)

// CombatRules - боевые параметры из конфигурации.
type CombatRules struct {
	AutoAttackCooldown uint64
	PunchTicks         uint64
	AutoAttackDamage   uint32
}

func DefaultCombatRules() CombatRules {
	return CombatRules{
		AutoAttackCooldown: domain.AutoAttackCooldown,
		PunchTicks:         domain.PunchTicks,
		AutoAttackDamage:   domain.AutoAttackDamage,
	}
}

// AttackOutcome описывает состоявшийся удар.
type AttackOutcome struct {
	Target     domain.EntityID
	Damage     uint32
	HP         uint32 // здоровье цели после удара
	PunchUntil uint64
}

// SetTarget выбирает цель и переводит моба-цель в режим боя.
func SetTarget(w *world.World, attacker, target domain.EntityID) {
	w.Targets.Set(attacker, domain.Target{Entity: target})
	if _, ok := w.Mobs[target]; ok {
		w.Mobs[target] = world.MobCombat
	}
}

// ApplyAutoAttack бьет текущую цель attacker.
// Кулдаун расходуется только на состоявшийся удар.
func ApplyAutoAttack(w *world.World, attacker domain.EntityID, tick uint64, rules CombatRules) (AttackOutcome, error) {
	combatLogger := logger.Log.WithFields(logrus.Fields{
		"component":   "combat_system",
		"attacker_id": attacker.String(),
		"tick":        tick,
	})

	target, ok := w.Targets.Get(attacker)
	if !ok {
		return AttackOutcome{}, ErrNotAttacking
	}
	if !target.IsSet() {
		return AttackOutcome{}, ErrNoTarget
	}
	if !w.Alive(target.Entity) || w.IsDespawning(target.Entity) {
		return AttackOutcome{}, ErrTargetGone
	}
	if ready := w.Cooldowns[attacker]; tick < ready {
		return AttackOutcome{}, ErrCoolingDown
	}

	w.Cooldowns[attacker] = tick + rules.AutoAttackCooldown
	out := AttackOutcome{
		Target:     target.Entity,
		PunchUntil: tick + rules.PunchTicks,
	}
	w.Combat.Set(attacker, domain.Punching(out.PunchUntil))

	if hp, ok := w.Health.Get(target.Entity); ok {
		after := hp.Damage(rules.AutoAttackDamage)
		out.Damage = hp.HP - after.HP
		out.HP = after.HP
		w.Health.Set(target.Entity, after)
	} else {
		combatLogger.WithField("target_id", target.Entity.String()).Debug("Target has no health, hit ignored")
	}

	combatLogger.WithFields(logrus.Fields{
		"target_id": target.Entity.String(),
		"damage":    out.Damage,
		"hp":        out.HP,
	}).Debug("Auto attack landed")
	return out, nil
}

// EndPunch возвращает Idle, если удар до until еще не сменился новым.
func EndPunch(w *world.World, id domain.EntityID, tick uint64) bool {
	c, ok := w.Combat.Get(id)
	if !ok || c.Mode != domain.CombatPunching || c.Until > tick {
		return false
	}
	w.Combat.Set(id, domain.Idle())
	return true
}
