package storage

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// JournalFileHeader - точное представление заголовка файла в памяти.
// binary.Write пишет его целиком: только массивы и числа.
type JournalFileHeader struct {
	Magic       [4]byte // 4 байта
	Version     uint32  // 4 байта
	Seed        int64   // 8 байт
	Timestamp   int64   // 8 байт
	RecordCount uint32  // 4 байта
}

// RecordHeader - заголовок каждой записи.
type RecordHeader struct {
	Tick       uint64 // 8
	ClientID   uint64 // 8
	Channel    uint8  // 1
	_          uint8  // 1
	PayloadLen uint16 // 2
}

func writeBinary(w io.Writer, j *Journal) error {
	bw := bufio.NewWriter(w)

	header := JournalFileHeader{
		Version:     Version1,
		Seed:        j.Seed,
		Timestamp:   j.Timestamp,
		RecordCount: uint32(len(j.Records)),
	}
	copy(header.Magic[:], MagicHeader)

	if err := binary.Write(bw, binary.LittleEndian, &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range j.Records {
		if len(rec.Payload) > maxPayloadLen {
			return fmt.Errorf("record %d: payload too long: %d", i, len(rec.Payload))
		}

		rh := RecordHeader{
			Tick:       rec.Tick,
			ClientID:   rec.ClientID,
			Channel:    rec.Channel,
			PayloadLen: uint16(len(rec.Payload)),
		}
		if err := binary.Write(bw, binary.LittleEndian, &rh); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, err := bw.Write(rec.Payload); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}

	return bw.Flush()
}
