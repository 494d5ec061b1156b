package utils

import (
	"crypto/rand"
	"encoding/binary"
)

// NewClientID выдает случайный ненулевой ID клиента для тех, кто не представился.
// Старший бит сброшен, чтобы не пересекаться с ID из конфигов и ботов.
func NewClientID() uint64 {
	var b [8]byte
	for {
		if _, err := rand.Read(b[:]); err != nil {
			panic("failed to generate random ID: " + err.Error())
		}
		if id := binary.BigEndian.Uint64(b[:]) >> 1; id != 0 {
			return id
		}
	}
}
