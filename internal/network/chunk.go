package network

import (
	"errors"
	"fmt"
	"math"
)

// DefaultChunkSize - максимальный размер полезной нагрузки одного фрагмента.
const DefaultChunkSize = 1024

// maxPendingMessages ограничивает число недособранных сообщений на одного отправителя.
const maxPendingMessages = 64

var (
	ErrMalformedFragment = errors.New("malformed fragment")
	ErrMessageTooLarge   = errors.New("message too large for chunking")
)

// split режет payload на куски не длиннее size.
// Пустой payload дает один пустой кусок.
func split(payload []byte, size int) ([][]byte, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	count := (len(payload) + size - 1) / size
	if count == 0 {
		count = 1
	}
	if count > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes", ErrMessageTooLarge, len(payload))
	}

	parts := make([][]byte, 0, count)
	for start := 0; start < len(payload); start += size {
		end := min(start+size, len(payload))
		parts = append(parts, payload[start:end])
	}
	if len(parts) == 0 {
		parts = append(parts, nil)
	}
	return parts, nil
}

type partial struct {
	parts [][]byte
	got   int
}

// assembler собирает фрагменты обратно в сообщения.
type assembler struct {
	pending map[uint32]*partial
	order   []uint32
}

func newAssembler() *assembler {
	return &assembler{pending: make(map[uint32]*partial)}
}

// add принимает фрагмент. Возвращает сообщение целиком, когда пришли все части.
func (a *assembler) add(f Fragment, data []byte) ([]byte, bool, error) {
	if f.Count == 0 || f.Index >= f.Count {
		return nil, false, fmt.Errorf("%w: index %d of %d", ErrMalformedFragment, f.Index, f.Count)
	}

	p, ok := a.pending[f.Message]
	if !ok {
		if len(a.order) >= maxPendingMessages {
			a.evictOldest()
		}
		p = &partial{parts: make([][]byte, f.Count)}
		a.pending[f.Message] = p
		a.order = append(a.order, f.Message)
	}
	if len(p.parts) != int(f.Count) {
		return nil, false, fmt.Errorf("%w: message %d count changed from %d to %d",
			ErrMalformedFragment, f.Message, len(p.parts), f.Count)
	}

	if p.parts[f.Index] == nil {
		p.got++
	}
	// nil отличаем от пустого куска
	p.parts[f.Index] = append([]byte{}, data...)

	if p.got < len(p.parts) {
		return nil, false, nil
	}

	size := 0
	for _, part := range p.parts {
		size += len(part)
	}
	out := make([]byte, 0, size)
	for _, part := range p.parts {
		out = append(out, part...)
	}
	a.forget(f.Message)
	return out, true, nil
}

func (a *assembler) forget(id uint32) {
	delete(a.pending, id)
	for i, m := range a.order {
		if m == id {
			a.order = append(a.order[:i], a.order[i+1:]...)
			return
		}
	}
}

func (a *assembler) evictOldest() {
	if len(a.order) == 0 {
		return
	}
	delete(a.pending, a.order[0])
	a.order = a.order[1:]
}
