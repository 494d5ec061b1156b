// Package systems - правила игры поверх мира: выбор цели, движение, бой.
// Функции меняют world.World и вызываются только из горутины тика.
package systems

import (
	"slices"

	"gridsync/internal/domain"
	"gridsync/internal/world"
)

// ValidationResult - результат проверки цели
type ValidationResult struct {
	Type    domain.EntityType
	Valid   bool
	Message string // Сообщение об ошибке, если Valid == false
}

// ValidateTarget проверяет, может ли actor действовать на target.
// allowed ограничивает вид цели; пустой список разрешает любой вид.
func ValidateTarget(w *world.World, actor, target domain.EntityID, allowed ...domain.EntityKind) ValidationResult {
	// 1. Ссылка вообще есть
	if target.IsNil() {
		return ValidationResult{Message: "Цель не указана."}
	}
	if target == actor {
		return ValidationResult{Message: "Нельзя выбрать себя."}
	}

	// 2. Устаревшая ссылка или сущность уже уходит из мира
	t, ok := w.Type(target)
	if !ok || w.IsDespawning(target) {
		return ValidationResult{Message: "Цель не найдена."}
	}

	// 3. Вид цели
	if len(allowed) > 0 && !slices.Contains(allowed, t.Kind) {
		return ValidationResult{Type: t, Message: "С этим так нельзя."}
	}

	// 4. Один этаж
	from, okFrom := w.Tiles.Get(actor)
	to, okTo := w.Tiles.Get(target)
	if okFrom && okTo && from.Y != to.Y {
		return ValidationResult{Type: t, Message: "Цель слишком далеко."}
	}

	return ValidationResult{Type: t, Valid: true}
}
