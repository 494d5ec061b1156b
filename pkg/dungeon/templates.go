package dungeon

import "gridsync/internal/domain"

// Template определяет шаблон для создания объекта
type Template struct {
	Kind   domain.EntityKind
	HP     uint32
	Pickup bool
}

// Place создает раскладку объекта из шаблона на заданной клетке
func (t Template) Place(at domain.Tile) Placement {
	p := Placement{
		Type: domain.KindType(t.Kind),
		Tile: at,
	}
	if t.HP > 0 {
		hp := domain.NewHealth(t.HP)
		p.Health = &hp
	}
	return p
}

// --- ОБЪЕКТЫ ---

var (
	Dummy = Template{Kind: domain.EntityDummy, HP: domain.DummyHealth}
	Slime = Template{Kind: domain.EntitySlime, HP: domain.SlimeHealth}
	Sword = Template{Kind: domain.EntitySword, Pickup: true}
)

// Templates - реестр шаблонов по имени
var Templates = map[string]Template{
	"dummy": Dummy,
	"slime": Slime,
	"sword": Sword,
}
