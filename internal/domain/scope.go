package domain

import "math"

// DefaultScopeRadius - полуширина области интереса клиента в клетках.
const DefaultScopeRadius uint32 = 20

// Scope - область интереса клиента: прямоугольник в плоскости x/z
// вокруг опорной клетки и тонкая полоса по y (этаж выше и ниже).
//
// Инвариант: BottomRight <= TopLeft покомпонентно, отрицательных координат нет.
type Scope struct {
	TopLeft     Tile `json:"top_left"`
	BottomRight Tile `json:"bottom_right"`
	Up          Tile `json:"up"`
	Down        Tile `json:"down"`
}

// NewScope строит область вокруг anchor с радиусом radius.
func NewScope(anchor Tile, radius uint32) Scope {
	return Scope{
		TopLeft:     Tile{X: addClamped(anchor.X, radius), Y: anchor.Y, Z: addClamped(anchor.Z, radius)},
		BottomRight: Tile{X: subClamped(anchor.X, radius), Y: anchor.Y, Z: subClamped(anchor.Z, radius)},
		Up:          Tile{X: anchor.X, Y: addClamped(anchor.Y, 1), Z: anchor.Z},
		Down:        Tile{X: anchor.X, Y: subClamped(anchor.Y, 1), Z: anchor.Z},
	}
}

// Check - замкнутая проверка попадания в прямоугольник x/z (границы включены).
func (s Scope) Check(pos Tile) bool {
	return pos.X <= s.TopLeft.X && pos.X >= s.BottomRight.X &&
		pos.Z <= s.TopLeft.Z && pos.Z >= s.BottomRight.Z
}

func addClamped(v, d uint32) uint32 {
	if v > math.MaxUint32-d {
		return math.MaxUint32
	}
	return v + d
}

func subClamped(v, d uint32) uint32 {
	if v > d {
		return v - d
	}
	return 0
}
