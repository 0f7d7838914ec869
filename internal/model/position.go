package model

// Position is a tile coordinate in the game world.
// Value type, passed by value (immutable).
type Position struct {
	X int32
	Y int32
	Z int32
}

// NewPosition creates a Position with the given coordinates.
func NewPosition(x, y, z int32) Position {
	return Position{X: x, Y: y, Z: z}
}

// OffsetX returns the signed X offset from other to p.
func (p Position) OffsetX(other Position) int32 {
	return p.X - other.X
}

// OffsetY returns the signed Y offset from other to p.
func (p Position) OffsetY(other Position) int32 {
	return p.Y - other.Y
}

// DistanceX returns the absolute X distance to other.
func (p Position) DistanceX(other Position) int32 {
	return abs32(p.X - other.X)
}

// DistanceY returns the absolute Y distance to other.
func (p Position) DistanceY(other Position) int32 {
	return abs32(p.Y - other.Y)
}

// DistanceZ returns the absolute Z distance to other.
func (p Position) DistanceZ(other Position) int32 {
	return abs32(p.Z - other.Z)
}

// ChebyshevDistance returns max(|dx|, |dy|), the tile walking distance
// used everywhere by targeting and range checks.
func (p Position) ChebyshevDistance(other Position) int32 {
	return max32(p.DistanceX(other), p.DistanceY(other))
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
