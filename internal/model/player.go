package model

import "sync/atomic"

// Player is a player-controlled creature as seen by the decision engine.
// The engine never drives players; it only reads their state when scoring
// targets and deciding idleness.
type Player struct {
	*Creature

	disconnected atomic.Bool
	ignored      atomic.Bool
}

// NewPlayer creates a player at pos with the given health pool.
func NewPlayer(objectID uint32, name string, pos Position, maxHP int32, speed int32) *Player {
	return &Player{
		Creature: NewCreature(objectID, name, pos, maxHP, FactionPlayer, speed),
	}
}

// Attackable reports whether monsters may target this player. Explicitly
// ignored players are skipped by target search and do not keep monsters
// awake. Disconnection is not folded in here: only free monsters drop a
// disconnected player, summons keep fighting one.
func (p *Player) Attackable() bool {
	return !p.ignored.Load() && !p.IsDead()
}

// SetDisconnected flips the connection flag.
func (p *Player) SetDisconnected(v bool) { p.disconnected.Store(v) }

// IsDisconnected reports whether the player's session is gone.
func (p *Player) IsDisconnected() bool { return p.disconnected.Load() }

// SetIgnored marks the player invisible to monster aggression (staff mode).
func (p *Player) SetIgnored(v bool) { p.ignored.Store(v) }

// IsIgnored reports whether monsters must pretend the player is absent.
func (p *Player) IsIgnored() bool { return p.ignored.Load() }
