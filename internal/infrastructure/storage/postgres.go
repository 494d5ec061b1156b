package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"gridsync/internal/domain"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const playersSchema = `
CREATE TABLE IF NOT EXISTS gridsync_players (
	id BIGINT PRIMARY KEY,
	x BIGINT NOT NULL,
	y BIGINT NOT NULL,
	z BIGINT NOT NULL,
	saved_at TIMESTAMP WITH TIME ZONE NOT NULL
);`

// PostgresStore хранит записи игроков в таблице gridsync_players.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(playersSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Load(ctx context.Context, id uint64) (PlayerRecord, error) {
	const query = `SELECT x, y, z, saved_at FROM gridsync_players WHERE id = $1`

	rec := PlayerRecord{ID: id}
	var x, y, z int64
	err := s.db.QueryRowContext(ctx, query, int64(id)).Scan(&x, &y, &z, &rec.SavedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PlayerRecord{}, ErrNotFound
		}
		return PlayerRecord{}, fmt.Errorf("failed to load player %d: %w", id, err)
	}
	rec.Tile = domain.NewTile(uint32(x), uint32(y), uint32(z))
	return rec, nil
}

func (s *PostgresStore) Save(ctx context.Context, rec PlayerRecord) error {
	const query = `
	INSERT INTO gridsync_players (id, x, y, z, saved_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (id)
	DO UPDATE SET x = $2, y = $3, z = $4, saved_at = $5`

	_, err := s.db.ExecContext(ctx, query,
		int64(rec.ID), int64(rec.Tile.X), int64(rec.Tile.Y), int64(rec.Tile.Z), rec.SavedAt)
	if err != nil {
		return fmt.Errorf("failed to save player %d: %w", rec.ID, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
