package network

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
	"time"
)

type outFrame struct {
	channel  Channel
	data     []byte
	reliable bool
	resend   time.Duration
	due      time.Time
}

// Message - принятое сообщение вместе с каналом, из которого оно пришло.
type Message struct {
	Channel Channel
	Payload []byte
}

type inbound struct {
	order   uint64
	channel Channel
	payload []byte
}

// FlushStats - итог одного сброса очереди в канал соединения.
type FlushStats struct {
	Sent    int `json:"sent"`
	Dropped int `json:"dropped"`
	Backlog int `json:"backlog"`
}

// Endpoint - одна сторона соединения: нумерация, чанкование, надежность.
// Безопасен для конкурентного использования.
type Endpoint struct {
	mu sync.Mutex

	outgoing  ChannelSet
	incoming  ChannelSet
	chunkSize int

	sendSeq map[Channel]uint32
	recvSeq map[Channel]uint32
	nextMsg uint32

	queue   []outFrame
	backlog []outFrame // надежные кадры, которые не влезли в канал соединения

	assembler *assembler
	received  map[Channel][]inbound
	arrivals  uint64 // сквозной номер прихода по всем каналам
	dropped   int
}

// NewEndpoint создает конечную точку, пишущую в outgoing и читающую из incoming.
func NewEndpoint(outgoing, incoming ChannelSet, chunkSize int) *Endpoint {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Endpoint{
		outgoing:  outgoing,
		incoming:  incoming,
		chunkSize: chunkSize,
		sendSeq:   make(map[Channel]uint32),
		recvSeq:   make(map[Channel]uint32),
		assembler: newAssembler(),
		received:  make(map[Channel][]inbound),
	}
}

// NewServerEndpoint - серверная сторона соединения с клиентом.
func NewServerEndpoint() *Endpoint {
	return NewEndpoint(ServerChannels(), ClientChannels(), DefaultChunkSize)
}

// NewClientEndpoint - клиентская сторона соединения с сервером.
func NewClientEndpoint() *Endpoint {
	return NewEndpoint(ClientChannels(), ServerChannels(), DefaultChunkSize)
}

// Send ставит сообщение в очередь. Кадры уходят при следующем Flush.
func (e *Endpoint) Send(ch Channel, payload []byte) error {
	cfg, err := e.outgoing.Lookup(ch)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.sendSeq[ch]++
	seq := e.sendSeq[ch]

	if cfg.Delivery != Chunked {
		data, err := encodeEnvelope(Envelope{Channel: ch, Seq: seq, Payload: payload})
		if err != nil {
			return err
		}
		e.queue = append(e.queue, outFrame{channel: ch, data: data, reliable: cfg.Reliable(), resend: cfg.ResendTime})
		return nil
	}

	parts, err := split(payload, e.chunkSize)
	if err != nil {
		return err
	}
	e.nextMsg++
	for i, part := range parts {
		frag := &Fragment{Message: e.nextMsg, Index: uint16(i), Count: uint16(len(parts))}
		data, err := encodeEnvelope(Envelope{Channel: ch, Seq: seq, Fragment: frag, Payload: part})
		if err != nil {
			return err
		}
		e.queue = append(e.queue, outFrame{channel: ch, data: data, reliable: true, resend: cfg.ResendTime})
	}
	return nil
}

// Flush переносит очередь в out, не блокируясь.
// Ненадежные кадры при переполненном out отбрасываются. Надежные ждут в
// backlog и повторяются через ResendTime канала; порядок надежных кадров
// между собой сохраняется.
func (e *Endpoint) Flush(now time.Time, out chan<- []byte) FlushStats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var stats FlushStats

	blocked := false
	for len(e.backlog) > 0 {
		f := e.backlog[0]
		if now.Before(f.due) || !trySend(out, f.data) {
			if !now.Before(f.due) {
				e.backlog[0].due = now.Add(f.resend)
			}
			blocked = true
			break
		}
		e.backlog = e.backlog[1:]
		stats.Sent++
	}

	for _, f := range e.queue {
		if !f.reliable {
			if trySend(out, f.data) {
				stats.Sent++
			} else {
				stats.Dropped++
			}
			continue
		}
		if blocked {
			e.backlog = append(e.backlog, f)
			continue
		}
		if trySend(out, f.data) {
			stats.Sent++
			continue
		}
		f.due = now.Add(f.resend)
		e.backlog = append(e.backlog, f)
		blocked = true
	}
	e.queue = e.queue[:0]
	e.dropped += stats.Dropped
	stats.Backlog = len(e.backlog)
	return stats
}

func trySend(out chan<- []byte, data []byte) bool {
	select {
	case out <- data:
		return true
	default:
		return false
	}
}

// Deliver принимает кадр от удаленной стороны.
// Устаревшие кадры упорядоченных каналов молча отбрасываются.
func (e *Endpoint) Deliver(frame []byte) error {
	env, err := decodeEnvelope(frame)
	if err != nil {
		return err
	}
	cfg, err := e.incoming.Lookup(env.Channel)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if cfg.Sequenced {
		if last, seen := e.recvSeq[env.Channel]; seen && env.Seq <= last {
			return nil
		}
		e.recvSeq[env.Channel] = env.Seq
	}

	payload := env.Payload
	if env.Fragment != nil {
		if cfg.Delivery != Chunked {
			return fmt.Errorf("%w: fragment on %s channel", ErrMalformedFragment, cfg.Name)
		}
		msg, done, err := e.assembler.add(*env.Fragment, env.Payload)
		if err != nil {
			return err
		}
		if !done {
			return nil
		}
		payload = msg
	}

	e.arrivals++
	e.received[env.Channel] = append(e.received[env.Channel], inbound{order: e.arrivals, channel: env.Channel, payload: payload})
	return nil
}

// Receive забирает все принятые сообщения канала в порядке прихода.
func (e *Endpoint) Receive(ch Channel) [][]byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	msgs := e.received[ch]
	delete(e.received, ch)
	if len(msgs) == 0 {
		return nil
	}
	out := make([][]byte, len(msgs))
	for i, m := range msgs {
		out[i] = m.payload
	}
	return out
}

// ReceiveMerged забирает сообщения нескольких каналов одной лентой в порядке
// прихода. Надежные кадры приходят в порядке отправки, поэтому для надежных
// каналов это и порядок, в котором их отправил сервер.
func (e *Endpoint) ReceiveMerged(chs ...Channel) []Message {
	e.mu.Lock()
	defer e.mu.Unlock()

	var merged []inbound
	for _, ch := range chs {
		merged = append(merged, e.received[ch]...)
		delete(e.received, ch)
	}
	slices.SortFunc(merged, func(a, b inbound) int {
		return cmp.Compare(a.order, b.order)
	})

	out := make([]Message, len(merged))
	for i, m := range merged {
		out[i] = Message{Channel: m.channel, Payload: m.payload}
	}
	return out
}

// Backlog - число надежных кадров, ожидающих повтора.
func (e *Endpoint) Backlog() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.backlog)
}

// Dropped - сколько ненадежных кадров потеряно за все время.
func (e *Endpoint) Dropped() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dropped
}
