// Package pathfinding ищет путь по клеткам в плоскости x/z.
package pathfinding

import (
	"container/heap"

	"gridsync/internal/domain"
)

// Стоимость шага: по оси и по диагонали (10·√2 с отбрасыванием дробной части).
const (
	StraightCost uint32 = 10
	DiagonalCost uint32 = 14
)

// Passable сообщает, можно ли встать на клетку.
type Passable func(domain.Tile) bool

type neighbor struct {
	dx, dz int
	cost   uint32
}

// Порядок соседей фиксирован.
var neighborOffsets = [...]neighbor{
	{dx: 1, dz: 0, cost: StraightCost},
	{dx: 0, dz: 1, cost: StraightCost},
	{dx: -1, dz: 0, cost: StraightCost},
	{dx: 0, dz: -1, cost: StraightCost},
	{dx: 1, dz: 1, cost: DiagonalCost},
	{dx: -1, dz: 1, cost: DiagonalCost},
	{dx: -1, dz: -1, cost: DiagonalCost},
	{dx: 1, dz: -1, cost: DiagonalCost},
}

// Octile - допустимая эвристика для весов 10/14.
func Octile(a, b domain.Tile) uint32 {
	dx := absDiff(a.X, b.X)
	dz := absDiff(a.Z, b.Z)
	lo, hi := min(dx, dz), max(dx, dz)
	return StraightCost*hi + (DiagonalCost-StraightCost)*lo
}

func absDiff(a, b uint32) uint32 {
	if a > b {
		return a - b
	}
	return b - a
}

type node struct {
	tile   domain.Tile
	g, f   uint32
	seq    uint64
	index  int
	parent *node
}

type openSet []*node

func (pq openSet) Len() int { return len(pq) }

// Less: меньшая f, при равенстве меньшая g, затем раньше добавленный.
func (pq openSet) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.g != b.g {
		return a.g < b.g
	}
	return a.seq < b.seq
}

func (pq openSet) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *openSet) Push(x any) {
	n := len(*pq)
	item := x.(*node)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *openSet) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[:n-1]
	return item
}

// Find ищет кратчайший путь от start до goal включительно.
// Соседи - все восемь клеток вокруг, диагональ доступна независимо от
// клеток по осям.
// Цель должна быть проходимой; start проверяется только на совпадение этажа.
// Результат детерминирован для одинакового входа.
func Find(start, goal domain.Tile, passable Passable) ([]domain.Tile, uint32, bool) {
	if start.Y != goal.Y || !passable(goal) {
		return nil, 0, false
	}
	if start == goal {
		return []domain.Tile{start}, 0, true
	}

	var seq uint64
	open := &openSet{}
	heap.Push(open, &node{tile: start, f: Octile(start, goal)})
	best := map[domain.Tile]uint32{start: 0}
	closed := make(map[domain.Tile]struct{})

	for open.Len() > 0 {
		current := heap.Pop(open).(*node)
		if _, done := closed[current.tile]; done {
			continue
		}
		closed[current.tile] = struct{}{}
		if current.tile == goal {
			return reconstruct(current), current.g, true
		}

		for _, d := range neighborOffsets {
			next, ok := current.tile.Offset(d.dx, d.dz)
			if !ok || !passable(next) {
				continue
			}
			if _, done := closed[next]; done {
				continue
			}
			g := current.g + d.cost
			if prev, ok := best[next]; ok && g >= prev {
				continue
			}
			best[next] = g
			seq++
			heap.Push(open, &node{
				tile:   next,
				g:      g,
				f:      g + Octile(next, goal),
				seq:    seq,
				parent: current,
			})
		}
	}
	return nil, 0, false
}

func reconstruct(end *node) []domain.Tile {
	var path []domain.Tile
	for n := end; n != nil; n = n.parent {
		path = append(path, n.tile)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// SetPassable строит Passable из множества клеток.
func SetPassable(tiles map[domain.Tile]struct{}) Passable {
	return func(t domain.Tile) bool {
		_, ok := tiles[t]
		return ok
	}
}
