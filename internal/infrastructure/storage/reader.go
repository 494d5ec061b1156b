package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrInvalidJournal = errors.New("invalid journal")

func readBinary(r io.Reader) (*Journal, error) {
	var header JournalFileHeader
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	if string(header.Magic[:]) != MagicHeader {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidJournal, header.Magic[:])
	}
	if header.Version != Version1 {
		return nil, fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalidJournal, header.Version, Version1)
	}

	j := &Journal{
		Seed:      header.Seed,
		Timestamp: header.Timestamp,
		Records:   make([]JournalRecord, 0, header.RecordCount),
	}

	for i := uint32(0); i < header.RecordCount; i++ {
		var rh RecordHeader
		if err := binary.Read(r, binary.LittleEndian, &rh); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		rec := JournalRecord{
			Tick:     rh.Tick,
			ClientID: rh.ClientID,
			Channel:  rh.Channel,
			Payload:  make([]byte, rh.PayloadLen),
		}
		if _, err := io.ReadFull(r, rec.Payload); err != nil {
			return nil, fmt.Errorf("record %d payload: %w", i, err)
		}
		j.Records = append(j.Records, rec)
	}

	return j, nil
}
