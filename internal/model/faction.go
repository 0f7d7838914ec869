package model

// Faction groups creatures for friend/enemy classification and for the
// deterministic scoring offset applied during target selection.
type Faction int32

const (
	// FactionDefault is for ordinary monsters with no faction relationships.
	FactionDefault Faction = 0
	// FactionPlayer marks player characters; always a valid target for any
	// non-default-faction monster.
	FactionPlayer Faction = 1
)

// Offset returns the deterministic scoring penalty for this faction scaled
// by the given multiplier. Used as a tie-break so candidates from distinct
// factions never compare equal by accident.
func (f Faction) Offset(scale int32) int32 {
	return int32(f) * scale
}
