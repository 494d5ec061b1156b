package client

import (
	"gridsync/internal/domain"
	"gridsync/internal/network"
	"gridsync/pkg/api"
	"gridsync/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Source - откуда прием забирает сообщения (network.Endpoint).
type Source interface {
	Receive(ch network.Channel) [][]byte
	ReceiveMerged(chs ...network.Channel) []network.Message
}

// Receiver декодирует сообщения сервера и переводит ID сервера в локальные.
// Только он пишет в Mapper при приеме.
type Receiver struct {
	mapper *Mapper
	alloc  func() LocalID
	log    *logrus.Entry
}

func NewReceiver(mapper *Mapper, alloc func() LocalID) *Receiver {
	return &Receiver{
		mapper: mapper,
		alloc:  alloc,
		log:    logger.Log.WithField("component", "receive"),
	}
}

// Poll забирает каналы в порядке: Tick, затем Load, Spawn и Despawn одной
// лентой в порядке отправки, затем Update, ServerMessages, ServerEvents.
// Despawn и повторный Spawn одной сущности из одного опроса применяются
// в том порядке, в каком их отправил сервер.
// Неразборчивые сообщения пропускаются.
func (r *Receiver) Poll(src Source) []Notice {
	var out []Notice

	for _, raw := range src.Receive(network.TickChannel) {
		var msg api.TickMessage
		if r.decode(raw, &msg, network.TickChannel) {
			out = append(out, Ticked{Tick: msg.Tick})
		}
	}
	for _, m := range src.ReceiveMerged(network.LoadChannel, network.SpawnChannel, network.DespawnChannel) {
		out = append(out, r.lifecycle(m)...)
	}
	for _, raw := range src.Receive(network.UpdateChannel) {
		var msg api.UpdateMessage
		if r.decode(raw, &msg, network.UpdateChannel) {
			if n, ok := r.Update(msg); ok {
				out = append(out, n)
			}
		}
	}
	for _, raw := range src.Receive(network.ServerMessagesChannel) {
		var msg api.ServerMessage
		if r.decode(raw, &msg, network.ServerMessagesChannel) {
			if n, ok := r.ServerMessage(msg); ok {
				out = append(out, n)
			}
		}
	}
	for _, raw := range src.Receive(network.ServerEventsChannel) {
		var msg api.ServerEvent
		if r.decode(raw, &msg, network.ServerEventsChannel) {
			if n, ok := r.ServerEvent(msg); ok {
				out = append(out, n)
			}
		}
	}
	return out
}

// lifecycle применяет одно сообщение о появлении или исчезновении сущностей.
func (r *Receiver) lifecycle(m network.Message) []Notice {
	switch m.Channel {
	case network.LoadChannel:
		var msg api.LoadMessage
		if r.decode(m.Payload, &msg, m.Channel) {
			return r.Load(msg)
		}
	case network.SpawnChannel:
		var msg api.SpawnMessage
		if r.decode(m.Payload, &msg, m.Channel) {
			if n, ok := r.Spawn(msg); ok {
				return []Notice{n}
			}
		}
	case network.DespawnChannel:
		var msg api.DespawnMessage
		if r.decode(m.Payload, &msg, m.Channel) {
			if n, ok := r.Despawn(msg); ok {
				return []Notice{n}
			}
		}
	}
	return nil
}

func (r *Receiver) decode(raw []byte, v any, ch network.Channel) bool {
	if err := api.Decode(raw, v); err != nil {
		r.log.WithError(err).WithField("channel", ch).Warn("Dropping malformed message")
		return false
	}
	return true
}

// Load применяет снимок: каждая неизвестная сущность появляется один раз.
func (r *Receiver) Load(msg api.LoadMessage) []Notice {
	var out []Notice
	for _, s := range msg.Entities {
		if n, ok := r.Spawn(s); ok {
			out = append(out, n)
		}
	}
	return out
}

// Spawn связывает новый ID сервера с новым локальным. Повтор - no-op.
func (r *Receiver) Spawn(msg api.SpawnMessage) (Notice, bool) {
	if _, known := r.mapper.LocalOf(msg.Entity); known {
		return nil, false
	}
	local := r.alloc()
	if err := r.mapper.Insert(msg.Entity, local); err != nil {
		r.log.WithError(err).Error("Mapping spawn failed")
		return nil, false
	}
	return Appeared{Local: local, Type: msg.Type, Tile: msg.Tile}, true
}

// Update переводит ID. Неизвестная сущность - сообщение отбрасывается;
// неизвестная цель внутри TARGET - отбрасывается только ссылка.
func (r *Receiver) Update(msg api.UpdateMessage) (Notice, bool) {
	local, ok := r.mapper.LocalOf(msg.Entity)
	if !ok {
		return nil, false
	}

	n := Updated{Local: local, Component: msg.Component}
	if msg.Component.Kind == domain.ComponentTarget {
		if target := msg.Component.Target.Entity; !target.IsNil() {
			if lt, ok := r.mapper.LocalOf(target); ok {
				n.Target = &lt
			}
		}
		n.Component.Target = &domain.Target{}
	}
	return n, true
}

// Despawn удаляет обе стороны пары.
func (r *Receiver) Despawn(msg api.DespawnMessage) (Notice, bool) {
	local, ok := r.mapper.RemoveServer(msg.Entity)
	if !ok {
		return nil, false
	}
	return Removed{Local: local}, true
}

func (r *Receiver) ServerMessage(msg api.ServerMessage) (Notice, bool) {
	switch msg.Kind {
	case api.PlayerConnected:
		return Joined{PlayerID: msg.PlayerID}, true
	case api.PlayerDisconnected:
		return Left{PlayerID: msg.PlayerID}, true
	default:
		return nil, false
	}
}

func (r *Receiver) ServerEvent(msg api.ServerEvent) (Notice, bool) {
	if msg.Type != domain.EventOpen || msg.Open == nil {
		return nil, false
	}
	local, ok := r.mapper.LocalOf(msg.Open.Entity)
	if !ok {
		return nil, false
	}
	return Opened{Local: local, State: msg.Open.State}, true
}
