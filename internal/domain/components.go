package domain

// ComponentKind - тег реплицируемого компонента.
type ComponentKind uint8

const (
	ComponentUnknown ComponentKind = iota
	ComponentTile
	ComponentHealth
	ComponentRunning
	ComponentTarget
	ComponentCombatState
	ComponentOpenState
	ComponentPlayer
)

var componentKindToString = map[ComponentKind]string{
	ComponentTile:        "TILE",
	ComponentHealth:      "HEALTH",
	ComponentRunning:     "RUNNING",
	ComponentTarget:      "TARGET",
	ComponentCombatState: "COMBAT_STATE",
	ComponentOpenState:   "OPEN_STATE",
	ComponentPlayer:      "PLAYER",
}

func (k ComponentKind) String() string {
	if val, ok := componentKindToString[k]; ok {
		return val
	}
	return "UNKNOWN"
}

// Replicated - компонент, который умеет проецироваться в ComponentType.
// Используется как ограничение обобщенной рассылки обновлений.
type Replicated interface {
	comparable
	Project() ComponentType
}

// ComponentType - закрытое объединение реплицируемых компонентов.
// Заполнено ровно одно поле, соответствующее Kind.
type ComponentType struct {
	Kind    ComponentKind `msgpack:"k" json:"kind"`
	Tile    *Tile         `msgpack:"t,omitempty" json:"tile,omitempty"`
	Health  *Health       `msgpack:"h,omitempty" json:"health,omitempty"`
	Running *Running      `msgpack:"r,omitempty" json:"running,omitempty"`
	Target  *Target       `msgpack:"tg,omitempty" json:"target,omitempty"`
	Combat  *CombatState  `msgpack:"c,omitempty" json:"combat,omitempty"`
	Open    *OpenState    `msgpack:"o,omitempty" json:"open,omitempty"`
	Player  *Player       `msgpack:"p,omitempty" json:"player,omitempty"`
}

// Valid проверяет, что поле, соответствующее Kind, заполнено.
func (c ComponentType) Valid() bool {
	switch c.Kind {
	case ComponentTile:
		return c.Tile != nil
	case ComponentHealth:
		return c.Health != nil
	case ComponentRunning:
		return c.Running != nil
	case ComponentTarget:
		return c.Target != nil
	case ComponentCombatState:
		return c.Combat != nil
	case ComponentOpenState:
		return c.Open != nil
	case ComponentPlayer:
		return c.Player != nil
	default:
		return false
	}
}

// Health - очки здоровья.
type Health struct {
	HP  uint32 `msgpack:"hp" json:"hp"`
	Max uint32 `msgpack:"max" json:"max"`
}

func NewHealth(hp uint32) Health {
	return Health{HP: hp, Max: hp}
}

// Damage уменьшает здоровье, не опускаясь ниже нуля.
func (h Health) Damage(n uint32) Health {
	if n >= h.HP {
		h.HP = 0
		return h
	}
	h.HP -= n
	return h
}

func (h Health) Project() ComponentType {
	return ComponentType{Kind: ComponentHealth, Health: &h}
}

// Running - сущность в движении.
type Running struct {
	Active bool `msgpack:"a" json:"active"`
}

func (r Running) Project() ComponentType {
	return ComponentType{Kind: ComponentRunning, Running: &r}
}

// Target - текущая цель в бою. Нулевой Entity означает отсутствие цели.
// Entity всегда в пространстве ID отправителя.
type Target struct {
	Entity EntityID `msgpack:"e" json:"entity"`
}

func (t Target) IsSet() bool {
	return !t.Entity.IsNil()
}

func (t Target) Project() ComponentType {
	return ComponentType{Kind: ComponentTarget, Target: &t}
}

// CombatMode - фаза боя.
type CombatMode uint8

const (
	CombatIdle CombatMode = iota
	CombatPunching
)

// CombatState - фаза боя; Until - тик окончания удара.
type CombatState struct {
	Mode  CombatMode `msgpack:"m" json:"mode"`
	Until uint64     `msgpack:"u,omitempty" json:"until,omitempty"`
}

func Idle() CombatState {
	return CombatState{Mode: CombatIdle}
}

func Punching(until uint64) CombatState {
	return CombatState{Mode: CombatPunching, Until: until}
}

func (c CombatState) Project() ComponentType {
	return ComponentType{Kind: ComponentCombatState, Combat: &c}
}

// OpenState - состояние двери или рычага.
type OpenState uint8

const (
	Closed OpenState = iota
	Open
)

// Toggle возвращает противоположное состояние.
func (o OpenState) Toggle() OpenState {
	if o == Open {
		return Closed
	}
	return Open
}

func (o OpenState) String() string {
	if o == Open {
		return "open"
	}
	return "closed"
}

func (o OpenState) Project() ComponentType {
	return ComponentType{Kind: ComponentOpenState, Open: &o}
}

// Player - принадлежность сущности подключенному игроку.
type Player struct {
	ID uint64 `msgpack:"id" json:"id"`
}

func (p Player) Project() ComponentType {
	return ComponentType{Kind: ComponentPlayer, Player: &p}
}
