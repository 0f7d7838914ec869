package world

import (
	"fmt"
	"sync"

	"github.com/otcraft/mobsim/internal/model"
)

// AwarenessRange is the Chebyshev radius (in tiles) within which creatures
// notice each other. Appear/disappear notifications and target search all
// use this viewport.
const AwarenessRange = 11

// Map is the tile world: static geometry, item stacks and creature
// occupancy. All mutation goes through its methods; the lock keeps tile
// state consistent while many monster agents read concurrently.
type Map struct {
	mu    sync.RWMutex
	tiles map[model.Position]*Tile

	registry *model.Registry
}

// NewMap creates an empty map over the given creature registry.
func NewMap(registry *model.Registry) *Map {
	return &Map{
		tiles:    make(map[model.Position]*Tile),
		registry: registry,
	}
}

// AddTile registers a tile. Intended for map loading and tests.
func (m *Map) AddTile(t *Tile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiles[t.Position] = t
}

// TileAt returns the tile at pos.
func (m *Map) TileAt(pos model.Position) (*Tile, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tiles[pos]
	return t, ok
}

// IsProtectionZone reports whether pos is sheltered ground.
func (m *Map) IsProtectionZone(pos model.Position) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tiles[pos]
	return ok && t.ProtectionZone
}

// IsWalkable reports whether a creature could stand at pos. ignoreID
// treats that creature as absent, so a mover does not block itself.
func (m *Map) IsWalkable(pos model.Position, ignoreID uint32) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isWalkableLocked(pos, ignoreID)
}

func (m *Map) isWalkableLocked(pos model.Position, ignoreID uint32) bool {
	t, ok := m.tiles[pos]
	if !ok || !t.Walkable || t.ProtectionZone {
		return false
	}
	if t.CreatureID != 0 && t.CreatureID != ignoreID {
		return false
	}
	return !t.BlockedByItem()
}

// PlaceCreature puts a at pos, falling back to the first free neighbor
// when the tile is taken. force skips the occupancy check entirely.
func (m *Map) PlaceCreature(a model.Actor, pos model.Position, force bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if force {
		t, ok := m.tiles[pos]
		if !ok {
			return fmt.Errorf("place %s: no tile at %v", a.Name(), pos)
		}
		t.CreatureID = a.ObjectID()
		a.SetPosition(pos)
		return nil
	}

	candidates := append([]model.Position{pos}, neighborsOf(pos)...)
	for _, c := range candidates {
		if m.isWalkableLocked(c, 0) {
			m.tiles[c].CreatureID = a.ObjectID()
			a.SetPosition(c)
			return nil
		}
	}
	return fmt.Errorf("place %s: no free tile near %v", a.Name(), pos)
}

// RemoveCreature frees the tile a occupies.
func (m *Map) RemoveCreature(a model.Actor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tiles[a.Position()]; ok && t.CreatureID == a.ObjectID() {
		t.CreatureID = 0
	}
}

// MoveCreature steps a onto dest when the tile accepts it. Returns false
// and leaves everything unchanged when the destination is blocked.
func (m *Map) MoveCreature(a model.Actor, dest model.Position) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.isWalkableLocked(dest, a.ObjectID()) {
		return false
	}
	from := a.Position()
	if t, ok := m.tiles[from]; ok && t.CreatureID == a.ObjectID() {
		t.CreatureID = 0
	}
	m.tiles[dest].CreatureID = a.ObjectID()
	a.SetPosition(dest)
	return true
}

// Teleport relocates a to dest unconditionally (despawn-guard recovery).
func (m *Map) Teleport(a model.Actor, dest model.Position) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tiles[a.Position()]; ok && t.CreatureID == a.ObjectID() {
		t.CreatureID = 0
	}
	if t, ok := m.tiles[dest]; ok {
		t.CreatureID = a.ObjectID()
	}
	a.SetPosition(dest)
}

// CreatureAt returns the creature occupying pos.
func (m *Map) CreatureAt(pos model.Position) (model.Actor, bool) {
	m.mu.RLock()
	t, ok := m.tiles[pos]
	if !ok || t.CreatureID == 0 {
		m.mu.RUnlock()
		return nil, false
	}
	id := t.CreatureID
	m.mu.RUnlock()
	return m.registry.Get(id)
}

// SpectatorsAround returns every live creature within the awareness
// viewport of center, excluding exceptID. Same floor only.
func (m *Map) SpectatorsAround(center model.Position, exceptID uint32) []model.Actor {
	var out []model.Actor
	m.registry.Range(func(a model.Actor) bool {
		if a.ObjectID() == exceptID {
			return true
		}
		pos := a.Position()
		if pos.Z != center.Z {
			return true
		}
		if pos.ChebyshevDistance(center) <= AwarenessRange {
			out = append(out, a)
		}
		return true
	})
	return out
}

// AddItem drops an item onto the tile at pos.
func (m *Map) AddItem(pos model.Position, item Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tiles[pos]; ok {
		t.Items = append(t.Items, item)
	}
}

// ItemsAt returns a copy of the item stack at pos.
func (m *Map) ItemsAt(pos model.Position) []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tiles[pos]
	if !ok {
		return nil
	}
	out := make([]Item, len(t.Items))
	copy(out, t.Items)
	return out
}

// ClearBlockingItems shoves movable path-blocking items off the tile at
// pos, relocating each to the first fitting neighbor and destroying the
// ones that fit nowhere (corpses are never destroyed). Stops after limit
// items. Returns how many were relocated and destroyed.
func (m *Map) ClearBlockingItems(pos model.Position, limit int) (relocated, destroyed int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tiles[pos]
	if !ok {
		return 0, 0
	}

	remaining := t.Items[:0]
	for _, item := range t.Items {
		if relocated+destroyed >= limit || !item.Movable || !item.BlocksPath {
			remaining = append(remaining, item)
			continue
		}

		moved := false
		for _, n := range neighborsOf(pos) {
			dest, ok := m.tiles[n]
			if !ok || !dest.Walkable || dest.ProtectionZone || dest.BlockedByItem() {
				continue
			}
			dest.Items = append(dest.Items, item)
			relocated++
			moved = true
			break
		}
		if moved {
			continue
		}
		if item.IsCorpse {
			remaining = append(remaining, item)
			continue
		}
		destroyed++
	}
	t.Items = remaining
	return relocated, destroyed
}

// SightClear walks a Bresenham line between from and to and reports
// whether no intermediate tile blocks projectiles. Different floors never
// see each other.
func (m *Map) SightClear(from, to model.Position) bool {
	if from.Z != to.Z {
		return false
	}
	if from == to {
		return true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	x, y := from.X, from.Y
	dx := abs32(to.X - from.X)
	dy := abs32(to.Y - from.Y)
	sx := int32(1)
	if from.X > to.X {
		sx = -1
	}
	sy := int32(1)
	if from.Y > to.Y {
		sy = -1
	}
	err := dx - dy

	for {
		e2 := err * 2
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
		if x == to.X && y == to.Y {
			return true
		}
		t, ok := m.tiles[model.Position{X: x, Y: y, Z: from.Z}]
		if !ok || t.BlocksProjectile() {
			return false
		}
	}
}

// FreeTileNear finds a standable tile at pos or one of its neighbors.
func (m *Map) FreeTileNear(pos model.Position) (model.Position, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.isWalkableLocked(pos, 0) {
		return pos, true
	}
	for _, n := range neighborsOf(pos) {
		if m.isWalkableLocked(n, 0) {
			return n, true
		}
	}
	return model.Position{}, false
}

func neighborsOf(pos model.Position) []model.Position {
	return []model.Position{
		{X: pos.X, Y: pos.Y - 1, Z: pos.Z},
		{X: pos.X + 1, Y: pos.Y, Z: pos.Z},
		{X: pos.X, Y: pos.Y + 1, Z: pos.Z},
		{X: pos.X - 1, Y: pos.Y, Z: pos.Z},
		{X: pos.X + 1, Y: pos.Y - 1, Z: pos.Z},
		{X: pos.X + 1, Y: pos.Y + 1, Z: pos.Z},
		{X: pos.X - 1, Y: pos.Y + 1, Z: pos.Z},
		{X: pos.X - 1, Y: pos.Y - 1, Z: pos.Z},
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
