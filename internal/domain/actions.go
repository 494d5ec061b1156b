package domain

import "strings"

// ActionType - числовой идентификатор действия игрока.
// Walk..Close - варианты клика (LeftClick), AutoAttack - отдельная команда.
type ActionType uint8

const (
	ActionUnknown ActionType = iota
	ActionWalk
	ActionAttack
	ActionPickup
	ActionPull
	ActionOpen
	ActionClose
	ActionAutoAttack
)

var actionStringToCmd = map[string]ActionType{
	"WALK":        ActionWalk,
	"ATTACK":      ActionAttack,
	"PICKUP":      ActionPickup,
	"PULL":        ActionPull,
	"OPEN":        ActionOpen,
	"CLOSE":       ActionClose,
	"AUTO_ATTACK": ActionAutoAttack,
}

var actionCmdToString = map[ActionType]string{
	ActionWalk:       "WALK",
	ActionAttack:     "ATTACK",
	ActionPickup:     "PICKUP",
	ActionPull:       "PULL",
	ActionOpen:       "OPEN",
	ActionClose:      "CLOSE",
	ActionAutoAttack: "AUTO_ATTACK",
}

// ParseAction конвертирует строку в ActionType (без учета регистра).
func ParseAction(s string) ActionType {
	upper := strings.ToUpper(s)
	if val, ok := actionStringToCmd[upper]; ok {
		return val
	}
	return ActionUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a ActionType) String() string {
	if val, ok := actionCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// IsClick - действие является вариантом LeftClick.
func (a ActionType) IsClick() bool {
	return a >= ActionWalk && a <= ActionClose
}

// NeedsTarget - действие не имеет смысла без цели.
func (a ActionType) NeedsTarget() bool {
	return a == ActionAttack || a == ActionOpen || a == ActionClose
}

// LeftClick - действие, выполняемое по прибытии в клетку.
// Target в пространстве ID отправителя; у Pickup цель необязательна,
// у Walk и Pull ее нет.
type LeftClick struct {
	Action ActionType `msgpack:"a" json:"action"`
	Target EntityID   `msgpack:"e,omitempty" json:"target,omitempty"`
}

func Walk() LeftClick { return LeftClick{Action: ActionWalk} }

func Attack(target EntityID) LeftClick { return LeftClick{Action: ActionAttack, Target: target} }

func Pickup(target EntityID) LeftClick { return LeftClick{Action: ActionPickup, Target: target} }

func Pull() LeftClick { return LeftClick{Action: ActionPull} }

func OpenDoor(target EntityID) LeftClick { return LeftClick{Action: ActionOpen, Target: target} }

func CloseDoor(target EntityID) LeftClick { return LeftClick{Action: ActionClose, Target: target} }

// HasTarget - в клике есть ссылка на сущность.
func (c LeftClick) HasTarget() bool {
	return !c.Target.IsNil()
}

func (c LeftClick) String() string {
	if c.HasTarget() {
		return c.Action.String() + "(" + c.Target.String() + ")"
	}
	return c.Action.String()
}
