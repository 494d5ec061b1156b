package api

import (
	"fmt"

	"gridsync/internal/domain"

	"github.com/vmihailenco/msgpack/v5"
)

// ProtocolID сверяется при рукопожатии. Клиент с другим протоколом отклоняется.
const ProtocolID uint64 = 7

// --- РУКОПОЖАТИЕ ---

// Handshake - первое сообщение клиента после открытия соединения.
type Handshake struct {
	// ProtocolID должен совпадать с ProtocolID сервера.
	ProtocolID uint64 `msgpack:"proto"`

	// ClientID стабильный идентификатор игрока. 0 - сервер назначит сам.
	ClientID uint64 `msgpack:"id"`

	// Name отображаемое имя, только для логов.
	Name string `msgpack:"name,omitempty"`
}

// Welcome - ответ сервера на рукопожатие с параметрами симуляции.
type Welcome struct {
	ClientID     uint64 `msgpack:"id"`
	TickRate     int    `msgpack:"rate"`
	StepInterval uint64 `msgpack:"step"`
	ScopeRadius  uint32 `msgpack:"radius"`
}

// --- СЕРВЕР -> КЛИЕНТ ---

// SpawnMessage - сущность вошла в область интереса. Канал Spawn.
// Entity всегда в пространстве ID сервера.
type SpawnMessage struct {
	Entity domain.EntityID   `msgpack:"e"`
	Type   domain.EntityType `msgpack:"t"`
	Tile   domain.Tile       `msgpack:"p"`
}

// LoadMessage - начальный снимок области интереса одним упорядоченным списком.
// Канал Load (чанкованный).
type LoadMessage struct {
	Entities []SpawnMessage `msgpack:"es"`
}

// DespawnMessage - сущность покинула область интереса или удалена. Канал Despawn.
type DespawnMessage struct {
	Entity domain.EntityID `msgpack:"e"`
}

// UpdateMessage - изменился один компонент. Канал Update (ненадежный).
type UpdateMessage struct {
	Entity    domain.EntityID      `msgpack:"e"`
	Component domain.ComponentType `msgpack:"c"`
}

// TickMessage - текущий тик сервера. Канал Tick.
type TickMessage struct {
	Tick uint64 `msgpack:"t"`
}

// ServerMessageKind - вид уведомления о подключениях.
type ServerMessageKind uint8

const (
	PlayerConnected ServerMessageKind = iota + 1
	PlayerDisconnected
)

func (k ServerMessageKind) String() string {
	switch k {
	case PlayerConnected:
		return "PLAYER_CONNECTED"
	case PlayerDisconnected:
		return "PLAYER_DISCONNECTED"
	default:
		return "UNKNOWN"
	}
}

// ServerMessage - уведомление о подключении или отключении игрока. Канал ServerMessages.
type ServerMessage struct {
	Kind     ServerMessageKind `msgpack:"k"`
	PlayerID uint64            `msgpack:"id"`
}

// ServerEvent - событие, видимое только клиентам, у которых сущность в области интереса.
// Канал ServerEvents.
type ServerEvent struct {
	Type domain.EventType  `msgpack:"t"`
	Open *domain.OpenEvent `msgpack:"o,omitempty"`
}

// --- КЛИЕНТ -> СЕРВЕР ---

// ClientCommand это корневой объект для команд клиента. Канал Command.
type ClientCommand struct {
	// Action действие: вариант клика или AUTO_ATTACK.
	Action domain.ActionType `msgpack:"a"`

	// Payload данные действия. Структура зависит от Action.
	Payload msgpack.RawMessage `msgpack:"p,omitempty"`
}

// ClickMessage - диагностическое событие клика. Канал Click.
type ClickMessage struct {
	Entity      domain.EntityID  `msgpack:"e"`
	Click       domain.LeftClick `msgpack:"c"`
	Destination domain.Tile      `msgpack:"d"`
}

// --- Payloads ---

// TilePayload используется для WALK и PULL.
type TilePayload struct {
	Tile domain.Tile `msgpack:"t"`
}

// TargetPayload используется для ATTACK, OPEN и CLOSE.
type TargetPayload struct {
	Tile   domain.Tile     `msgpack:"t"`
	Target domain.EntityID `msgpack:"e"`
}

// PickupPayload используется для PICKUP. Target может отсутствовать.
type PickupPayload struct {
	Tile   domain.Tile     `msgpack:"t"`
	Target domain.EntityID `msgpack:"e,omitempty"`
}

// NewClickCommand упаковывает клик по клетке в команду.
// Target клика должен быть уже в пространстве ID сервера.
func NewClickCommand(click domain.LeftClick, tile domain.Tile) (ClientCommand, error) {
	var payload any
	switch click.Action {
	case domain.ActionWalk, domain.ActionPull:
		payload = TilePayload{Tile: tile}
	case domain.ActionAttack, domain.ActionOpen, domain.ActionClose:
		payload = TargetPayload{Tile: tile, Target: click.Target}
	case domain.ActionPickup:
		payload = PickupPayload{Tile: tile, Target: click.Target}
	default:
		return ClientCommand{}, fmt.Errorf("action %v is not a click", click.Action)
	}

	raw, err := Encode(payload)
	if err != nil {
		return ClientCommand{}, fmt.Errorf("failed to encode %v payload: %w", click.Action, err)
	}
	return ClientCommand{Action: click.Action, Payload: raw}, nil
}

// NewAutoAttackCommand - команда автоатаки по текущей цели.
func NewAutoAttackCommand() ClientCommand {
	return ClientCommand{Action: domain.ActionAutoAttack}
}
