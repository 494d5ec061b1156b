package domain

import "fmt"

// EntityKind - вид игрового объекта.
type EntityKind uint8

const (
	EntityUnknown EntityKind = iota
	EntityTile
	EntityPlayer
	EntityWall
	EntityDoor
	EntityLever
	EntityDummy
	EntitySlime
	EntitySword
	EntityArch
)

var entityKindToString = map[EntityKind]string{
	EntityTile:   "TILE",
	EntityPlayer: "PLAYER",
	EntityWall:   "WALL",
	EntityDoor:   "DOOR",
	EntityLever:  "LEVER",
	EntityDummy:  "DUMMY",
	EntitySlime:  "SLIME",
	EntitySword:  "SWORD",
	EntityArch:   "ARCH",
}

func (k EntityKind) String() string {
	if val, ok := entityKindToString[k]; ok {
		return val
	}
	return "UNKNOWN"
}

// Orientation - поворот стен, дверей и арок.
type Orientation uint8

const (
	Vertical Orientation = iota
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

// EntityType описывает, что за объект появился у клиента.
// Передается только в Spawn и Load, после этого не меняется.
type EntityType struct {
	Kind        EntityKind  `msgpack:"k" json:"kind"`
	PlayerID    uint64      `msgpack:"p,omitempty" json:"player_id,omitempty"`
	Orientation Orientation `msgpack:"o,omitempty" json:"orientation,omitempty"`
}

func TileType() EntityType { return EntityType{Kind: EntityTile} }
func PlayerType(id uint64) EntityType { return EntityType{Kind: EntityPlayer, PlayerID: id} }
func WallType(o Orientation) EntityType { return EntityType{Kind: EntityWall, Orientation: o} }
func DoorType(o Orientation) EntityType { return EntityType{Kind: EntityDoor, Orientation: o} }
func ArchType(o Orientation) EntityType { return EntityType{Kind: EntityArch, Orientation: o} }
func KindType(kind EntityKind) EntityType { return EntityType{Kind: kind} }

// IsFloor - по объекту можно ходить (пол и двери).
func (t EntityType) IsFloor() bool {
	return t.Kind == EntityTile || t.Kind == EntityDoor
}

// HasHealthBar - у клиента к объекту крепится дочерняя полоска здоровья.
func (t EntityType) HasHealthBar() bool {
	return t.Kind == EntityPlayer || t.Kind == EntityDummy
}

// Pickable - объект можно подобрать.
func (t EntityType) Pickable() bool {
	return t.Kind == EntitySword
}

// Blocks возвращает клетки, которые объект делает непроходимыми.
// Арка занимает две опоры: свою клетку и клетку через одну вдоль ориентации.
func (t EntityType) Blocks(at Tile) []Tile {
	switch t.Kind {
	case EntityWall:
		return []Tile{at}
	case EntityArch:
		other := at
		if t.Orientation == Horizontal {
			other.Z += 2
		} else {
			other.X += 2
		}
		return []Tile{at, other}
	default:
		return nil
	}
}

func (t EntityType) String() string {
	switch t.Kind {
	case EntityPlayer:
		return fmt.Sprintf("PLAYER(%d)", t.PlayerID)
	case EntityWall, EntityDoor, EntityArch:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Orientation)
	default:
		return t.Kind.String()
	}
}
