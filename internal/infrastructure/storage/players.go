package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gridsync/internal/domain"
)

// ErrNotFound - про игрока ничего не сохранено.
var ErrNotFound = errors.New("player not found")

// Драйверы хранилища игроков
const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
)

// PlayerRecord - то, что сервер помнит об игроке между подключениями.
type PlayerRecord struct {
	ID      uint64      `json:"id"`
	Tile    domain.Tile `json:"tile"`
	SavedAt time.Time   `json:"saved_at"`
}

// PlayerStore - хранилище последних позиций игроков.
type PlayerStore interface {
	Load(ctx context.Context, id uint64) (PlayerRecord, error)
	Save(ctx context.Context, rec PlayerRecord) error
	Close() error
}

// Open создает хранилище по имени драйвера.
func Open(driver, dsn string) (PlayerStore, error) {
	switch driver {
	case DriverMemory, "":
		return NewMemoryStore(), nil
	case DriverRedis:
		return NewRedisStore(dsn)
	case DriverPostgres:
		return NewPostgresStore(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
