package dungeon

import (
	"gridsync/internal/domain"
)

// Rect - прямоугольник клеток в плоскости x/z
type Rect struct {
	X, Z, W, D uint32
}

// Contains - клетка внутри прямоугольника (y не учитывается).
func (r Rect) Contains(t domain.Tile) bool {
	return t.X >= r.X && t.X < r.X+r.W && t.Z >= r.Z && t.Z < r.Z+r.D
}

// Intersects - прямоугольники имеют общую клетку.
func (r Rect) Intersects(other Rect) bool {
	return r.X < other.X+other.W && other.X < r.X+r.W &&
		r.Z < other.Z+other.D && other.Z < r.Z+r.D
}

// Placement - одна сущность уровня с ее начальными компонентами.
type Placement struct {
	Type   domain.EntityType
	Tile   domain.Tile
	Health *domain.Health
	Open   *domain.OpenState
}

// Level - готовая раскладка уровня.
type Level struct {
	Floor      uint32
	Width      uint32
	Depth      uint32
	Placements []Placement
}

// Bounds возвращает прямоугольник уровня.
func (l Level) Bounds() Rect {
	return Rect{W: l.Width, D: l.Depth}
}

// LevelBuilder предоставляет fluent API для создания уровней
type LevelBuilder struct {
	floor      uint32
	width      uint32
	depth      uint32
	chunk      uint32
	placements []Placement
}

// NewLevel создает новый builder для этажа y
func NewLevel(y uint32) *LevelBuilder {
	return &LevelBuilder{
		floor: y,
		width: domain.DefaultWorldWidth,
		depth: domain.DefaultWorldDepth,
		chunk: domain.ChunkSize,
	}
}

// WithSize устанавливает размер карты
func (b *LevelBuilder) WithSize(width, depth uint32) *LevelBuilder {
	b.width = width
	b.depth = depth
	return b
}

// WithChunkSize устанавливает сторону квадрата, которым выкладывается пол
func (b *LevelBuilder) WithChunkSize(size uint32) *LevelBuilder {
	if size > 0 {
		b.chunk = size
	}
	return b
}

// WithFloor выкладывает пол квадратами chunk x chunk.
// Клетки одного квадрата идут подряд, поэтому соседние ID попадают в одну область.
func (b *LevelBuilder) WithFloor() *LevelBuilder {
	for cz := uint32(0); cz < b.depth; cz += b.chunk {
		for cx := uint32(0); cx < b.width; cx += b.chunk {
			b.fill(Rect{X: cx, Z: cz, W: min(b.chunk, b.width-cx), D: min(b.chunk, b.depth-cz)})
		}
	}
	return b
}

func (b *LevelBuilder) fill(r Rect) {
	for z := r.Z; z < r.Z+r.D; z++ {
		for x := r.X; x < r.X+r.W; x++ {
			b.placements = append(b.placements, Placement{
				Type: domain.TileType(),
				Tile: domain.NewTile(x, b.floor, z),
			})
		}
	}
}

// WallLine ставит вертикальную стену вдоль z в столбце x, от z0 до z1 включительно.
func (b *LevelBuilder) WallLine(x, z0, z1 uint32) *LevelBuilder {
	for z := z0; z <= z1; z++ {
		b.placements = append(b.placements, Placement{
			Type: domain.WallType(domain.Vertical),
			Tile: domain.NewTile(x, b.floor, z),
		})
	}
	return b
}

// PlaceDoor ставит дверь в заданном состоянии
func (b *LevelBuilder) PlaceDoor(x, z uint32, o domain.Orientation, state domain.OpenState) *LevelBuilder {
	b.placements = append(b.placements, Placement{
		Type: domain.DoorType(o),
		Tile: domain.NewTile(x, b.floor, z),
		Open: &state,
	})
	return b
}

// PlaceLever ставит рычаг (выключен)
func (b *LevelBuilder) PlaceLever(x, z uint32) *LevelBuilder {
	state := domain.Closed
	b.placements = append(b.placements, Placement{
		Type: domain.KindType(domain.EntityLever),
		Tile: domain.NewTile(x, b.floor, z),
		Open: &state,
	})
	return b
}

// PlaceArch ставит арку; вторая опора - через клетку вдоль ориентации
func (b *LevelBuilder) PlaceArch(x, z uint32, o domain.Orientation) *LevelBuilder {
	b.placements = append(b.placements, Placement{
		Type: domain.ArchType(o),
		Tile: domain.NewTile(x, b.floor, z),
	})
	return b
}

// Spawn ставит объект из шаблона. Неизвестный шаблон игнорируется.
func (b *LevelBuilder) Spawn(templateName string, x, z uint32) *LevelBuilder {
	template, ok := Templates[templateName]
	if !ok {
		return b
	}
	b.placements = append(b.placements, template.Place(domain.NewTile(x, b.floor, z)))
	return b
}

// Build собирает и возвращает готовый уровень
func (b *LevelBuilder) Build() Level {
	placements := make([]Placement, len(b.placements))
	copy(placements, b.placements)
	return Level{
		Floor:      b.floor,
		Width:      b.width,
		Depth:      b.depth,
		Placements: placements,
	}
}
