package domain

import "strings"

// EventType - числовой идентификатор серверного события,
// которое рассылается только клиентам, видящим сущность.
type EventType uint8

const (
	EventUnknown EventType = iota
	EventOpen
)

var eventStringToCmd = map[string]EventType{
	"OPEN": EventOpen,
}

var eventCmdToString = map[EventType]string{
	EventOpen: "OPEN",
}

// ParseEvent конвертирует строку в EventType
func ParseEvent(s string) EventType {
	upper := strings.ToUpper(s)
	if val, ok := eventStringToCmd[upper]; ok {
		return val
	}
	return EventUnknown
}

// String реализует интерфейс Stringer (для fmt.Printf)
func (a EventType) String() string {
	if val, ok := eventCmdToString[a]; ok {
		return val
	}
	return "UNKNOWN"
}

// OpenEvent - дверь или рычаг сменили состояние.
type OpenEvent struct {
	Entity EntityID  `msgpack:"e" json:"entity"`
	State  OpenState `msgpack:"s" json:"state"`
}
