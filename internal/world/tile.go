package world

import "github.com/otcraft/mobsim/internal/model"

// Item is a thing lying on a tile. Monsters that can push items shove the
// movable ones aside (or destroy them) to unblock their path.
type Item struct {
	Name        string
	Movable     bool
	BlocksPath  bool
	BlocksSight bool
	IsCorpse    bool
}

// Tile is one walkable cell of the map. Tiles are owned by the Map and
// must only be accessed through it.
type Tile struct {
	Position model.Position

	// Walkable is the static ground flag; a false value means a wall or
	// void that nothing ever crosses.
	Walkable bool

	// ProtectionZone tiles shelter players: monsters ignore creatures
	// standing here and never step in.
	ProtectionZone bool

	// CreatureID is the occupying creature, 0 for free.
	CreatureID uint32

	Items []Item
}

// BlockedByItem reports whether any item on the tile blocks walking.
func (t *Tile) BlockedByItem() bool {
	for _, it := range t.Items {
		if it.BlocksPath {
			return true
		}
	}
	return false
}

// BlocksProjectile reports whether the tile stops line of sight.
func (t *Tile) BlocksProjectile() bool {
	if !t.Walkable {
		return true
	}
	for _, it := range t.Items {
		if it.BlocksSight {
			return true
		}
	}
	return false
}
