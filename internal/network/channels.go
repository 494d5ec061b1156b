package network

import (
	"errors"
	"fmt"
	"time"
)

// Channel - логический канал внутри одного соединения.
// Номера каналов сервер->клиент и клиент->сервер пересекаются:
// направление определяется набором каналов конечной точки.
type Channel uint8

// Каналы сервер -> клиент
const (
	SpawnChannel Channel = iota
	DespawnChannel
	UpdateChannel
	LoadChannel
	ServerMessagesChannel
	TickChannel
	TestChannel
	ServerEventsChannel
)

// Каналы клиент -> сервер
const (
	CommandChannel Channel = iota
	InputChannel
	ClickChannel
)

// Delivery - гарантия доставки канала.
type Delivery uint8

const (
	Reliable Delivery = iota
	Unreliable
	Chunked
)

func (d Delivery) String() string {
	switch d {
	case Reliable:
		return "reliable"
	case Unreliable:
		return "unreliable"
	case Chunked:
		return "chunked"
	default:
		return "unknown"
	}
}

// DefaultResendTime - через сколько повторять застрявшее надежное сообщение.
const DefaultResendTime = 200 * time.Millisecond

// ErrUnknownChannel - канал не объявлен в наборе конечной точки.
var ErrUnknownChannel = errors.New("unknown channel")

// ChannelConfig описывает один канал.
type ChannelConfig struct {
	ID         Channel
	Name       string
	Delivery   Delivery
	Sequenced  bool          // получатель отбрасывает сообщения старше последнего
	ResendTime time.Duration // только для Reliable и Chunked
}

// Reliable сообщает, что сообщения канала нельзя терять.
func (c ChannelConfig) Reliable() bool {
	return c.Delivery != Unreliable
}

// ChannelSet - набор каналов одного направления.
type ChannelSet map[Channel]ChannelConfig

func NewChannelSet(configs ...ChannelConfig) ChannelSet {
	set := make(ChannelSet, len(configs))
	for _, c := range configs {
		set[c.ID] = c
	}
	return set
}

// Lookup возвращает конфигурацию канала или ErrUnknownChannel.
func (s ChannelSet) Lookup(ch Channel) (ChannelConfig, error) {
	c, ok := s[ch]
	if !ok {
		return ChannelConfig{}, fmt.Errorf("%w: %d", ErrUnknownChannel, ch)
	}
	return c, nil
}

// Name возвращает имя канала для логов.
func (s ChannelSet) Name(ch Channel) string {
	if c, ok := s[ch]; ok {
		return c.Name
	}
	return fmt.Sprintf("channel_%d", ch)
}

// ServerChannels - каналы, по которым сервер пишет клиентам.
func ServerChannels() ChannelSet {
	return NewChannelSet(
		ChannelConfig{ID: SpawnChannel, Name: "spawn", Delivery: Reliable, ResendTime: DefaultResendTime},
		ChannelConfig{ID: DespawnChannel, Name: "despawn", Delivery: Reliable, ResendTime: DefaultResendTime},
		ChannelConfig{ID: UpdateChannel, Name: "update", Delivery: Unreliable},
		ChannelConfig{ID: LoadChannel, Name: "load", Delivery: Chunked, ResendTime: DefaultResendTime},
		ChannelConfig{ID: ServerMessagesChannel, Name: "server_messages", Delivery: Reliable, ResendTime: DefaultResendTime},
		ChannelConfig{ID: TickChannel, Name: "tick", Delivery: Unreliable, Sequenced: true},
		ChannelConfig{ID: TestChannel, Name: "test", Delivery: Reliable, ResendTime: DefaultResendTime},
		ChannelConfig{ID: ServerEventsChannel, Name: "server_events", Delivery: Reliable, ResendTime: DefaultResendTime},
	)
}

// ClientChannels - каналы, по которым клиент пишет серверу.
func ClientChannels() ChannelSet {
	return NewChannelSet(
		ChannelConfig{ID: CommandChannel, Name: "command", Delivery: Unreliable, Sequenced: true},
		ChannelConfig{ID: InputChannel, Name: "input", Delivery: Unreliable, Sequenced: true},
		ChannelConfig{ID: ClickChannel, Name: "click", Delivery: Unreliable},
	)
}
