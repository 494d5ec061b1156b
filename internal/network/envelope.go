package network

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Envelope - один кадр в websocket-соединении.
type Envelope struct {
	Channel  Channel   `msgpack:"c"`
	Seq      uint32    `msgpack:"s"`
	Fragment *Fragment `msgpack:"f,omitempty"`
	Payload  []byte    `msgpack:"p"`
}

// Fragment - часть чанкованного сообщения.
type Fragment struct {
	Message uint32 `msgpack:"m"`
	Index   uint16 `msgpack:"i"`
	Count   uint16 `msgpack:"n"`
}

func encodeEnvelope(e Envelope) ([]byte, error) {
	data, err := msgpack.Marshal(&e)
	if err != nil {
		return nil, fmt.Errorf("encode envelope on channel %d: %w", e.Channel, err)
	}
	return data, nil
}

func decodeEnvelope(data []byte) (Envelope, error) {
	var e Envelope
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return e, nil
}
