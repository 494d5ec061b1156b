package dungeon

import "gridsync/internal/domain"

// Координаты стартового уровня
const (
	WallX  = 10
	DoorZ  = 5
	WallZ1 = 9
)

// Training создает стартовый уровень: пол квадратами chunk, стена с дверью, рычаг,
// манекен, слайм, меч и арка.
func Training(width, depth, chunk uint32) Level {
	b := NewLevel(0).WithSize(width, depth).WithChunkSize(chunk).WithFloor()

	if width > WallX+4 && depth > WallZ1+4 {
		b.WallLine(WallX, 0, DoorZ-1).
			PlaceDoor(WallX, DoorZ, domain.Vertical, domain.Closed).
			WallLine(WallX, DoorZ+1, WallZ1).
			PlaceLever(8, 2).
			Spawn("dummy", 6, 8).
			Spawn("slime", 12, 12).
			Spawn("sword", 3, 6).
			PlaceArch(14, 4, domain.Horizontal)
	}
	return b.Build()
}
