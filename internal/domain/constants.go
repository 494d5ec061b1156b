package domain

// Тайминги в тиках
const (
	DefaultTickRate     = 10 // тиков в секунду
	DefaultStepInterval = 2  // тиков на одну клетку пути
	PunchTicks          = 5
	AutoAttackCooldown  = 10
)

// Боевые параметры
const (
	AutoAttackDamage = 10
	PlayerHealth     = 100
	DummyHealth      = 100
	SlimeHealth      = 50
)

// Параметры мира
const (
	ChunkSize         = 10
	DefaultWorldWidth = 100
	DefaultWorldDepth = 100
)
