package handlers

import (
	"gridsync/internal/domain"
	"gridsync/internal/systems"
	"gridsync/internal/world"

	"github.com/vmihailenco/msgpack/v5"
)

// Timers откладывает возврат боевого состояния в Idle.
// Реализуется очередью таймеров движка.
type Timers interface {
	ResetCombatAt(id domain.EntityID, tick uint64)
}

// Context передает хендлеру состояние мира.
// Хендлер меняет мир напрямую: он вызывается только из горутины тика.
type Context struct {
	World    *world.World
	Tick     uint64
	ClientID uint64
	Actor    domain.EntityID // управляемая сущность клиента
	Timers   Timers
	Rules    systems.CombatRules
}

// Result - возвращает результат выполнения команды.
// Хендлер НЕ пишет в логи сервиса напрямую, он возвращает данные.
type Result struct {
	Msg     string // Текст лога
	MsgType string // Тип лога (MOVE, COMBAT, INTERACT, ERROR)
}

// Rejected - команда корректна по форме, но не может быть выполнена.
func Rejected(msg string) Result {
	return Result{Msg: msg, MsgType: "ERROR"}
}

// IsRejected сообщает, что команда отклонена.
func (r Result) IsRejected() bool {
	return r.MsgType == "ERROR"
}

// HandlerFunc - это контракт для любой команды (WALK, ATTACK, etc).
type HandlerFunc func(ctx Context, payload msgpack.RawMessage) (Result, error)

// EmptyResult - вспомогательная функция для пустого успешного ответа
func EmptyResult() Result {
	return Result{}
}
