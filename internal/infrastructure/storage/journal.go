// Package storage хранит то, что переживает процесс сервера:
// журнал команд и последние позиции игроков.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	MagicHeader string = `GSJR` // 4 байта
	Version1    uint32 = 1

	maxPayloadLen = 65535
)

// JournalRecord - одна принятая команда клиента.
type JournalRecord struct {
	Tick     uint64
	ClientID uint64
	Channel  uint8
	Payload  []byte
}

// Journal - лента команд одного запуска сервера.
// Не потокобезопасен: пишет только горутина тика.
type Journal struct {
	Seed      int64
	Timestamp int64
	Records   []JournalRecord
}

func NewJournal(seed int64) *Journal {
	return &Journal{
		Seed:      seed,
		Timestamp: time.Now().Unix(),
	}
}

// Record добавляет команду. Payload копируется, слишком длинные команды отбрасываются.
func (j *Journal) Record(tick, clientID uint64, channel uint8, payload []byte) bool {
	if len(payload) > maxPayloadLen {
		return false
	}
	j.Records = append(j.Records, JournalRecord{
		Tick:     tick,
		ClientID: clientID,
		Channel:  channel,
		Payload:  append([]byte(nil), payload...),
	})
	return true
}

func (j *Journal) Len() int {
	return len(j.Records)
}

// JournalService сохраняет журналы в каталог.
type JournalService struct {
	SaveDir string
}

func NewJournalService(dir string) (*JournalService, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal dir %s: %w", dir, err)
	}
	return &JournalService{SaveDir: dir}, nil
}

// Save пишет журнал в новый файл и возвращает путь к нему.
func (s *JournalService) Save(j *Journal) (string, error) {
	filename := fmt.Sprintf("journal_%d_%d.gsjr", j.Seed, j.Timestamp)
	path := filepath.Join(s.SaveDir, filename)

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := writeBinary(f, j); err != nil {
		return "", fmt.Errorf("failed to write journal %s: %w", path, err)
	}
	return path, nil
}

// Load читает журнал из файла.
func (s *JournalService) Load(path string) (*Journal, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return readBinary(f)
}
