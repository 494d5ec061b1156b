package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const playerKeyPrefix = "gridsync:player:"

// RedisStore хранит записи игроков JSON-строками по ключу gridsync:player:<id>.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore подключается по URL вида redis://host:port/db.
// Адрес без схемы тоже принимается.
func NewRedisStore(dsn string) (*RedisStore, error) {
	opts, err := redis.ParseURL(dsn)
	if err != nil {
		opts = &redis.Options{Addr: dsn}
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}
	return &RedisStore{client: client}, nil
}

func playerKey(id uint64) string {
	return playerKeyPrefix + strconv.FormatUint(id, 10)
}

func (s *RedisStore) Load(ctx context.Context, id uint64) (PlayerRecord, error) {
	raw, err := s.client.Get(ctx, playerKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return PlayerRecord{}, ErrNotFound
		}
		return PlayerRecord{}, fmt.Errorf("failed to get player %d: %w", id, err)
	}

	var rec PlayerRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return PlayerRecord{}, fmt.Errorf("failed to unmarshal player %d: %w", id, err)
	}
	return rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec PlayerRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal player %d: %w", rec.ID, err)
	}
	if err := s.client.Set(ctx, playerKey(rec.ID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save player %d: %w", rec.ID, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
