package domain

import (
	"fmt"
	"math"
)

// Tile - координата клетки на целочисленной сетке.
// Плоскость движения - x/z, y - этаж.
type Tile struct {
	X uint32 `msgpack:"x" json:"x"`
	Y uint32 `msgpack:"y" json:"y"`
	Z uint32 `msgpack:"z" json:"z"`
}

func NewTile(x, y, z uint32) Tile {
	return Tile{X: x, Y: y, Z: z}
}

// Offset сдвигает клетку в плоскости x/z.
// ok == false, если результат выходит за пределы uint32.
func (t Tile) Offset(dx, dz int) (Tile, bool) {
	x := int64(t.X) + int64(dx)
	z := int64(t.Z) + int64(dz)
	if x < 0 || z < 0 || x > math.MaxUint32 || z > math.MaxUint32 {
		return t, false
	}
	return Tile{X: uint32(x), Y: t.Y, Z: uint32(z)}, true
}

func (t Tile) String() string {
	return fmt.Sprintf("(%d,%d,%d)", t.X, t.Y, t.Z)
}

// Project реализует Replicated.
func (t Tile) Project() ComponentType {
	return ComponentType{Kind: ComponentTile, Tile: &t}
}
