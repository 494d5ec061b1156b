package network

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// DefaultPeerBuffer - емкость канала исходящих кадров одного клиента.
const DefaultPeerBuffer = 256

var (
	ErrUnknownClient   = errors.New("unknown client")
	ErrClientConnected = errors.New("client already connected")
)

//go:generate mockgen -destination=mocks/mock_sender.go -package=networkmocks -source=hub.go Sender

// Sender - то, через что логика сервера пишет клиентам.
type Sender interface {
	Send(clientID uint64, ch Channel, payload []byte) error
	Broadcast(ch Channel, payload []byte) error
}

// ConnectionEventKind - подключение или отключение.
type ConnectionEventKind uint8

const (
	ClientConnected ConnectionEventKind = iota + 1
	ClientDisconnected
)

func (k ConnectionEventKind) String() string {
	switch k {
	case ClientConnected:
		return "connected"
	case ClientDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// ConnectionEvent ждет, пока тик сервера его заберет.
type ConnectionEvent struct {
	Kind     ConnectionEventKind
	ClientID uint64
	Name     string
}

type peer struct {
	endpoint *Endpoint
	out      chan []byte
}

// PeerStats - состояние соединения для отладочного HTTP.
type PeerStats struct {
	ClientID uint64 `json:"client_id"`
	Backlog  int    `json:"backlog"`
	Dropped  int    `json:"dropped"`
	Queued   int    `json:"queued"`
}

// Hub - серверный транспорт: по одной конечной точке на клиента.
// Горутины соединений вызывают Register, Deliver и Unregister,
// тик сервера - всё остальное.
type Hub struct {
	mu     sync.RWMutex
	peers  map[uint64]*peer
	events []ConnectionEvent
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultPeerBuffer
	}
	return &Hub{
		peers:  make(map[uint64]*peer),
		buffer: buffer,
	}
}

// Register создает конечную точку клиента и возвращает канал его исходящих кадров.
// Канал закрывается в Unregister.
func (h *Hub) Register(clientID uint64, name string) (<-chan []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.peers[clientID]; ok {
		return nil, fmt.Errorf("%w: %d", ErrClientConnected, clientID)
	}

	p := &peer{
		endpoint: NewServerEndpoint(),
		out:      make(chan []byte, h.buffer),
	}
	h.peers[clientID] = p
	h.events = append(h.events, ConnectionEvent{Kind: ClientConnected, ClientID: clientID, Name: name})
	return p.out, nil
}

// Unregister удаляет клиента.
func (h *Hub) Unregister(clientID uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.peers[clientID]
	if !ok {
		return
	}
	close(p.out)
	delete(h.peers, clientID)
	h.events = append(h.events, ConnectionEvent{Kind: ClientDisconnected, ClientID: clientID})
}

// PollEvents забирает накопленные события подключения в порядке появления.
func (h *Hub) PollEvents() []ConnectionEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	events := h.events
	h.events = nil
	return events
}

// Deliver передает кадр от клиента в его конечную точку.
func (h *Hub) Deliver(clientID uint64, frame []byte) error {
	p, err := h.peer(clientID)
	if err != nil {
		return err
	}
	return p.endpoint.Deliver(frame)
}

// Receive забирает сообщения клиента на канале.
func (h *Hub) Receive(clientID uint64, ch Channel) [][]byte {
	p, err := h.peer(clientID)
	if err != nil {
		return nil
	}
	return p.endpoint.Receive(ch)
}

// Send отправляет сообщение конкретному клиенту (Unicast).
func (h *Hub) Send(clientID uint64, ch Channel, payload []byte) error {
	p, err := h.peer(clientID)
	if err != nil {
		return err
	}
	return p.endpoint.Send(ch, payload)
}

// Broadcast отправляет всем подключенным.
func (h *Hub) Broadcast(ch Channel, payload []byte) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var errs []error
	for id, p := range h.peers {
		if err := p.endpoint.Send(ch, payload); err != nil {
			errs = append(errs, fmt.Errorf("client %d: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// ClientIDs возвращает подключенных клиентов по возрастанию ID.
func (h *Hub) ClientIDs() []uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]uint64, 0, len(h.peers))
	for id := range h.peers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Flush сбрасывает очереди всех клиентов в их каналы.
func (h *Hub) Flush(now time.Time) FlushStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var total FlushStats
	for _, p := range h.peers {
		s := p.endpoint.Flush(now, p.out)
		total.Sent += s.Sent
		total.Dropped += s.Dropped
		total.Backlog += s.Backlog
	}
	return total
}

// Stats снимает состояние всех соединений.
func (h *Hub) Stats() []PeerStats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	stats := make([]PeerStats, 0, len(h.peers))
	for id, p := range h.peers {
		stats = append(stats, PeerStats{
			ClientID: id,
			Backlog:  p.endpoint.Backlog(),
			Dropped:  p.endpoint.Dropped(),
			Queued:   len(p.out),
		})
	}
	slices.SortFunc(stats, func(a, b PeerStats) int {
		switch {
		case a.ClientID < b.ClientID:
			return -1
		case a.ClientID > b.ClientID:
			return 1
		default:
			return 0
		}
	})
	return stats
}

// Len - число подключенных клиентов.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

func (h *Hub) peer(clientID uint64) (*peer, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	p, ok := h.peers[clientID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownClient, clientID)
	}
	return p, nil
}
