// Package config собирает настройки сервера и бота из значений по умолчанию,
// YAML-файла и переменных окружения. Флаги CLI применяются поверх в cmd/server.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gridsync/internal/domain"
	"gridsync/internal/infrastructure/storage"

	"gopkg.in/yaml.v3"
)

const envPrefix = "GRIDSYNC_"

// Config хранит параметры запуска.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Sim     SimConfig     `yaml:"simulation"`
	World   WorldConfig   `yaml:"world"`
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	Bot     BotConfig     `yaml:"bot"`
}

type ServerConfig struct {
	Addr       string `yaml:"addr"`
	PeerBuffer int    `yaml:"peer_buffer"`
	Debug      bool   `yaml:"debug"` // /debug/* и pprof
}

type SimConfig struct {
	TickRate           int    `yaml:"tick_rate"` // тиков в секунду
	ScopeRadius        uint32 `yaml:"scope_radius"`
	StepInterval       uint64 `yaml:"step_interval"` // тиков на клетку
	AutoAttackCooldown uint64 `yaml:"auto_attack_cooldown"`
	FilteredLoad       bool   `yaml:"filtered_load"`
	Seed               int64  `yaml:"seed"` // 0 - случайный
}

type WorldConfig struct {
	Width     uint32 `yaml:"width"`
	Depth     uint32 `yaml:"depth"`
	ChunkSize uint32 `yaml:"chunk_size"`
}

type StorageConfig struct {
	Driver      string `yaml:"driver"`
	RedisURL    string `yaml:"redis_url"`
	PostgresDSN string `yaml:"postgres_dsn"`
	JournalDir  string `yaml:"journal_dir"` // пусто - журнал не пишется
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type BotConfig struct {
	URL      string        `yaml:"url"`
	Count    int           `yaml:"count"`
	Name     string        `yaml:"name"`
	ClientID uint64        `yaml:"client_id"` // 0 - сервер назначит сам
	Think    time.Duration `yaml:"think"`     // пауза между решениями
}

// Default возвращает конфигурацию по умолчанию.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:       ":8080",
			PeerBuffer: 256,
		},
		Sim: SimConfig{
			TickRate:           domain.DefaultTickRate,
			ScopeRadius:        domain.DefaultScopeRadius,
			StepInterval:       domain.DefaultStepInterval,
			AutoAttackCooldown: domain.AutoAttackCooldown,
			FilteredLoad:       true,
		},
		World: WorldConfig{
			Width:     domain.DefaultWorldWidth,
			Depth:     domain.DefaultWorldDepth,
			ChunkSize: domain.ChunkSize,
		},
		Storage: StorageConfig{
			Driver: storage.DriverMemory,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Bot: BotConfig{
			URL:   "ws://localhost:8080/ws",
			Count: 1,
			Name:  "bot",
			Think: 2 * time.Second,
		},
	}
}

// Load читает YAML-файл (если path не пуст) поверх значений по умолчанию,
// затем применяет переменные окружения.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	var errs []error

	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	u64 := func(key string, bits int, set func(uint64)) {
		if v, ok := lookup(key); ok {
			n, err := strconv.ParseUint(v, 10, bits)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			set(n)
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	// Общие переменные логгера
	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)

	str(envPrefix+"ADDR", &c.Server.Addr)
	integer(envPrefix+"PEER_BUFFER", &c.Server.PeerBuffer)
	boolean(envPrefix+"DEBUG", &c.Server.Debug)
	integer(envPrefix+"TICK_RATE", &c.Sim.TickRate)
	u64(envPrefix+"SCOPE_RADIUS", 32, func(n uint64) { c.Sim.ScopeRadius = uint32(n) })
	u64(envPrefix+"STEP_INTERVAL", 64, func(n uint64) { c.Sim.StepInterval = n })
	u64(envPrefix+"AUTO_ATTACK_COOLDOWN", 64, func(n uint64) { c.Sim.AutoAttackCooldown = n })
	boolean(envPrefix+"FILTERED_LOAD", &c.Sim.FilteredLoad)
	u64(envPrefix+"SEED", 63, func(n uint64) { c.Sim.Seed = int64(n) })
	u64(envPrefix+"WORLD_WIDTH", 32, func(n uint64) { c.World.Width = uint32(n) })
	u64(envPrefix+"WORLD_DEPTH", 32, func(n uint64) { c.World.Depth = uint32(n) })
	str(envPrefix+"STORAGE_DRIVER", &c.Storage.Driver)
	str(envPrefix+"REDIS_URL", &c.Storage.RedisURL)
	str(envPrefix+"POSTGRES_DSN", &c.Storage.PostgresDSN)
	str(envPrefix+"JOURNAL_DIR", &c.Storage.JournalDir)
	str(envPrefix+"BOT_URL", &c.Bot.URL)
	integer(envPrefix+"BOT_COUNT", &c.Bot.Count)

	return errors.Join(errs...)
}

// StorageDSN возвращает адрес для выбранного драйвера.
func (c Config) StorageDSN() string {
	switch c.Storage.Driver {
	case storage.DriverRedis:
		return c.Storage.RedisURL
	case storage.DriverPostgres:
		return c.Storage.PostgresDSN
	default:
		return ""
	}
}

// TickInterval - длительность одного тика.
func (c Config) TickInterval() time.Duration {
	if c.Sim.TickRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(c.Sim.TickRate)
}

// Validate проверяет согласованность настроек.
func (c Config) Validate() error {
	var errs []error

	if c.Sim.TickRate <= 0 {
		errs = append(errs, errors.New("tick_rate must be positive"))
	}
	if c.Sim.StepInterval == 0 {
		errs = append(errs, errors.New("step_interval must be positive"))
	}
	if c.World.Width == 0 || c.World.Depth == 0 {
		errs = append(errs, errors.New("world size must be positive"))
	}
	if c.World.ChunkSize == 0 {
		errs = append(errs, errors.New("chunk_size must be positive"))
	}

	switch c.Storage.Driver {
	case storage.DriverMemory:
	case storage.DriverRedis, storage.DriverPostgres:
		if c.StorageDSN() == "" {
			errs = append(errs, fmt.Errorf("storage driver %s needs a dsn", c.Storage.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage driver %q", c.Storage.Driver))
	}

	return errors.Join(errs...)
}
