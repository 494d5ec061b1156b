package engine

import (
	"time"

	"gridsync/internal/domain"
	"gridsync/internal/systems"
)

// Config хранит параметры запуска движка
type Config struct {
	// Seed - зерно генератора точек появления. 0 - от текущего времени.
	Seed int64

	TickRate     int    // тиков в секунду
	ScopeRadius  uint32 // полуширина области интереса в клетках
	StepInterval uint64 // через сколько тиков без шага снимается Running
	FilteredLoad bool   // Load только по области интереса клиента

	WorldWidth uint32
	WorldDepth uint32
	ChunkSize  uint32

	Combat systems.CombatRules
}

// NewConfig создает конфиг по умолчанию (случайный сид)
func NewConfig() Config {
	return Config{
		Seed:         time.Now().UnixNano(),
		TickRate:     domain.DefaultTickRate,
		ScopeRadius:  domain.DefaultScopeRadius,
		StepInterval: domain.DefaultStepInterval,
		FilteredLoad: true,
		WorldWidth:   domain.DefaultWorldWidth,
		WorldDepth:   domain.DefaultWorldDepth,
		ChunkSize:    domain.ChunkSize,
		Combat:       systems.DefaultCombatRules(),
	}
}

// TickInterval - длительность одного тика.
func (c Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / domain.DefaultTickRate
	}
	return time.Second / time.Duration(c.TickRate)
}
