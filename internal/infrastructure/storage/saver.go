package storage

import (
	"context"
	"sync"
	"time"

	"gridsync/pkg/logger"

	"github.com/sirupsen/logrus"
)

const (
	saveQueueSize = 128
	saveTimeout   = 5 * time.Second
)

// Saver пишет записи игроков в фоне, чтобы тик не ждал хранилище.
type Saver struct {
	store PlayerStore
	queue chan PlayerRecord
	wg    sync.WaitGroup
	log   *logrus.Entry
}

func NewSaver(store PlayerStore) *Saver {
	s := &Saver{
		store: store,
		queue: make(chan PlayerRecord, saveQueueSize),
		log:   logger.Log.WithField("component", "saver"),
	}
	s.wg.Add(1)
	go s.run()
	return s
}

// Enqueue ставит запись в очередь. При переполненной очереди запись теряется.
func (s *Saver) Enqueue(rec PlayerRecord) bool {
	select {
	case s.queue <- rec:
		return true
	default:
		s.log.WithField("player_id", rec.ID).Warn("Save queue full, record dropped")
		return false
	}
}

func (s *Saver) run() {
	defer s.wg.Done()
	for rec := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		if err := s.store.Save(ctx, rec); err != nil {
			s.log.WithError(err).WithField("player_id", rec.ID).Error("Failed to save player")
		} else {
			s.log.WithFields(logrus.Fields{"player_id": rec.ID, "tile": rec.Tile.String()}).Debug("Player saved")
		}
		cancel()
	}
}

// Close дожидается записи всей очереди. После Close Enqueue вызывать нельзя.
func (s *Saver) Close() {
	close(s.queue)
	s.wg.Wait()
}
