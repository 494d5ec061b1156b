package domain

import "testing"

func TestNewScope(t *testing.T) {
	tests := []struct {
		name   string
		anchor Tile
		radius uint32
		tl     Tile
		br     Tile
		down   uint32
	}{
		{"centered", NewTile(30, 0, 40), 20, NewTile(50, 0, 60), NewTile(10, 0, 20), 0},
		{"clamped at origin", NewTile(4, 0, 4), 20, NewTile(24, 0, 24), NewTile(0, 0, 0), 0},
		{"radius equals coordinate", NewTile(20, 2, 20), 20, NewTile(40, 2, 40), NewTile(0, 2, 0), 1},
		{"zero radius", NewTile(7, 0, 9), 0, NewTile(7, 0, 9), NewTile(7, 0, 9), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScope(tt.anchor, tt.radius)
			if s.TopLeft != tt.tl {
				t.Errorf("TopLeft = %v, want %v", s.TopLeft, tt.tl)
			}
			if s.BottomRight != tt.br {
				t.Errorf("BottomRight = %v, want %v", s.BottomRight, tt.br)
			}
			if s.Up.Y != tt.anchor.Y+1 {
				t.Errorf("Up.Y = %d, want %d", s.Up.Y, tt.anchor.Y+1)
			}
			if s.Down.Y != tt.down {
				t.Errorf("Down.Y = %d, want %d", s.Down.Y, tt.down)
			}
			if s.BottomRight.X > s.TopLeft.X || s.BottomRight.Z > s.TopLeft.Z {
				t.Errorf("BottomRight %v exceeds TopLeft %v", s.BottomRight, s.TopLeft)
			}
		})
	}
}

func TestScope_Check(t *testing.T) {
	s := NewScope(NewTile(30, 0, 30), 5)

	tests := []struct {
		pos  Tile
		want bool
	}{
		{NewTile(30, 0, 30), true},
		{NewTile(35, 0, 35), true}, // верхняя граница включена
		{NewTile(25, 0, 25), true}, // нижняя граница включена
		{NewTile(36, 0, 30), false},
		{NewTile(30, 0, 24), false},
		{NewTile(30, 9, 30), true}, // y не участвует в проверке
	}

	for _, tt := range tests {
		if got := s.Check(tt.pos); got != tt.want {
			t.Errorf("Check(%v) = %v, want %v", tt.pos, got, tt.want)
		}
	}
}
