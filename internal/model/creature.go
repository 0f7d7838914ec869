package model

import (
	"sync"
	"sync/atomic"
)

// Actor is the capability surface the decision engine needs from any
// creature in the simulation, player-controlled or not. Implementations
// must keep these reads safe for cross-agent snapshots during a tick.
type Actor interface {
	ObjectID() uint32
	Name() string
	Position() Position
	SetPosition(pos Position)
	Health() int32
	MaxHealth() int32
	ChangeHealth(delta int32)
	IsDead() bool
	IsRemoved() bool
	SetRemoved()
	Faction() Faction
	// MasterID returns the owning creature's objectID, 0 when not a summon.
	MasterID() uint32
	Attackable() bool
	Speed() int32
}

// Creature is the shared mutable state embedded by Monster and Player.
// Position and health are read by other agents during their think steps,
// so they sit behind a lock; everything else belongs to the owner.
type Creature struct {
	objectID uint32
	name     string

	mu       sync.RWMutex
	position Position
	health   int32
	maxHP    int32

	faction   Faction
	masterID  atomic.Uint32
	removed   atomic.Bool
	baseSpeed int32

	// conditions counts active status effects (poison, haste, ...). The
	// idle controller refuses to idle a monster with active conditions.
	conditions atomic.Int32
}

// NewCreature creates the shared creature core.
func NewCreature(objectID uint32, name string, pos Position, maxHP int32, faction Faction, speed int32) *Creature {
	return &Creature{
		objectID:  objectID,
		name:      name,
		position:  pos,
		health:    maxHP,
		maxHP:     maxHP,
		faction:   faction,
		baseSpeed: speed,
	}
}

// ObjectID returns the unique object ID (immutable after creation).
func (c *Creature) ObjectID() uint32 { return c.objectID }

// Name returns the creature name.
func (c *Creature) Name() string { return c.name }

// Position returns a copy of the creature position.
func (c *Creature) Position() Position {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

// SetPosition moves the creature to pos.
func (c *Creature) SetPosition(pos Position) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = pos
}

// Health returns current health.
func (c *Creature) Health() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.health
}

// MaxHealth returns maximum health.
func (c *Creature) MaxHealth() int32 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.maxHP
}

// ChangeHealth applies a health delta, clamped to [0, max].
func (c *Creature) ChangeHealth(delta int32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.health += delta
	if c.health < 0 {
		c.health = 0
	}
	if c.health > c.maxHP {
		c.health = c.maxHP
	}
}

// IsDead reports whether health has reached zero.
func (c *Creature) IsDead() bool {
	return c.Health() <= 0
}

// IsRemoved reports whether the creature left the world.
func (c *Creature) IsRemoved() bool { return c.removed.Load() }

// SetRemoved marks the creature as removed from the world.
func (c *Creature) SetRemoved() { c.removed.Store(true) }

// Faction returns the creature faction.
func (c *Creature) Faction() Faction { return c.faction }

// MasterID returns the owner objectID, 0 when the creature is not a summon.
func (c *Creature) MasterID() uint32 { return c.masterID.Load() }

// SetMasterID binds (or with 0, releases) the owner link.
func (c *Creature) SetMasterID(id uint32) { c.masterID.Store(id) }

// IsSummon reports whether the creature has an owner.
func (c *Creature) IsSummon() bool { return c.MasterID() != 0 }

// Speed returns base movement speed.
func (c *Creature) Speed() int32 { return c.baseSpeed }

// AddCondition registers one more active status effect.
func (c *Creature) AddCondition() { c.conditions.Add(1) }

// RemoveCondition drops one active status effect.
func (c *Creature) RemoveCondition() {
	if c.conditions.Add(-1) < 0 {
		c.conditions.Store(0)
	}
}

// HasConditions reports whether any status effect is active.
func (c *Creature) HasConditions() bool { return c.conditions.Load() > 0 }
