package model

import "time"

// SpawnPoint is a static spawn definition loaded from the database: which
// archetype appears where, and how fast it comes back after death.
type SpawnPoint struct {
	ID           int32
	ArchetypeID  int32
	Position     Position
	Radius       int32 // wander/despawn leash radius in tiles, 0 = unleashed
	RespawnDelay time.Duration
}

// RandomizedPosition picks a tile inside the spawn radius using the given
// draws (already in [-Radius, Radius]). Z never varies.
func (s SpawnPoint) RandomizedPosition(dx, dy int32) Position {
	if s.Radius <= 0 {
		return s.Position
	}
	return Position{
		X: s.Position.X + dx,
		Y: s.Position.Y + dy,
		Z: s.Position.Z,
	}
}
