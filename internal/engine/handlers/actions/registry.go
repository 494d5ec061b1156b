package actions

import (
	"gridsync/internal/domain"
	"gridsync/internal/engine/handlers"
)

// Registry возвращает хендлеры всех команд клиента.
func Registry() map[domain.ActionType]handlers.HandlerFunc {
	return map[domain.ActionType]handlers.HandlerFunc{
		domain.ActionWalk:       handlers.WithPayload(HandleWalk),
		domain.ActionAttack:     handlers.WithPayload(HandleAttack),
		domain.ActionPickup:     handlers.WithPayload(HandlePickup),
		domain.ActionPull:       handlers.WithPayload(HandlePull),
		domain.ActionOpen:       handlers.WithPayload(HandleOpen),
		domain.ActionClose:      handlers.WithPayload(HandleClose),
		domain.ActionAutoAttack: handlers.WithEmptyPayload(HandleAutoAttack),
	}
}
