package model

// Direction is one of the eight step directions on the tile grid.
type Direction int32

const (
	DirectionNone Direction = iota
	DirectionNorth
	DirectionEast
	DirectionSouth
	DirectionWest
	DirectionNorthEast
	DirectionSouthEast
	DirectionSouthWest
	DirectionNorthWest
)

// String returns human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirectionNorth:
		return "N"
	case DirectionEast:
		return "E"
	case DirectionSouth:
		return "S"
	case DirectionWest:
		return "W"
	case DirectionNorthEast:
		return "NE"
	case DirectionSouthEast:
		return "SE"
	case DirectionSouthWest:
		return "SW"
	case DirectionNorthWest:
		return "NW"
	default:
		return "NONE"
	}
}

// IsDiagonal reports whether the direction moves on both axes.
func (d Direction) IsDiagonal() bool {
	switch d {
	case DirectionNorthEast, DirectionSouthEast, DirectionSouthWest, DirectionNorthWest:
		return true
	}
	return false
}

// NextPosition returns the tile adjacent to pos in direction d.
func NextPosition(d Direction, pos Position) Position {
	switch d {
	case DirectionNorth:
		pos.Y--
	case DirectionEast:
		pos.X++
	case DirectionSouth:
		pos.Y++
	case DirectionWest:
		pos.X--
	case DirectionNorthEast:
		pos.X++
		pos.Y--
	case DirectionSouthEast:
		pos.X++
		pos.Y++
	case DirectionSouthWest:
		pos.X--
		pos.Y++
	case DirectionNorthWest:
		pos.X--
		pos.Y--
	}
	return pos
}

// CardinalDirections in fixed N/W/E/S order; callers shuffle when they need
// an unbiased walk order.
func CardinalDirections() []Direction {
	return []Direction{DirectionNorth, DirectionWest, DirectionEast, DirectionSouth}
}

// DirectionTo returns the rough direction from `from` toward `to`
// (axis-dominant, diagonals when both offsets are non-zero and equal-ish).
func DirectionTo(from, to Position) Direction {
	dx := to.X - from.X
	dy := to.Y - from.Y

	if dx == 0 && dy == 0 {
		return DirectionNone
	}

	if abs32(dx) > abs32(dy) {
		if dx < 0 {
			return DirectionWest
		}
		return DirectionEast
	}
	if abs32(dy) > abs32(dx) {
		if dy < 0 {
			return DirectionNorth
		}
		return DirectionSouth
	}

	switch {
	case dx > 0 && dy < 0:
		return DirectionNorthEast
	case dx > 0 && dy > 0:
		return DirectionSouthEast
	case dx < 0 && dy > 0:
		return DirectionSouthWest
	default:
		return DirectionNorthWest
	}
}
