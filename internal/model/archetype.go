package model

// Ability is one entry in an archetype's attack or defense list.
// Static per archetype, never mutated at runtime.
type Ability struct {
	Name     string
	Speed    int64 // cadence: milliseconds between eligible uses
	Chance   uint32
	MinRange int32 // 0 = no minimum
	Range    int32 // 0 = melee reach / self
	IsMelee  bool
	MinValue int32 // effect magnitude bounds, interpreted by the cast callback
	MaxValue int32
}

// SummonSpec describes one summon type an archetype may raise.
type SummonSpec struct {
	ArchetypeID int32
	Name        string
	Speed       int64 // cadence in milliseconds, shares the defense counter
	Chance      uint32
	Max         uint32 // per-type cap
	Force       bool   // place even on a crowded tile
}

// Voice is a flavor line the monster may say or yell.
type Voice struct {
	Text string
	Yell bool
}

// TargetStrategy identifies one of the target-selection algorithms.
type TargetStrategy int32

const (
	// StrategyDefault resolves to a weighted draw over the other strategies.
	StrategyDefault TargetStrategy = iota
	// StrategyNearest picks the minimal Chebyshev distance.
	StrategyNearest
	// StrategyLowestHealth picks the minimal current health.
	StrategyLowestHealth
	// StrategyMostDamage picks the maximal damage dealt by this monster.
	StrategyMostDamage
	// StrategyRandom picks uniformly among eligible candidates.
	StrategyRandom
)

// String returns human-readable strategy name.
func (s TargetStrategy) String() string {
	switch s {
	case StrategyNearest:
		return "NEAREST"
	case StrategyLowestHealth:
		return "HP"
	case StrategyMostDamage:
		return "DAMAGE"
	case StrategyRandom:
		return "RANDOM"
	default:
		return "DEFAULT"
	}
}

// StrategyWeights are the archetype-defined percentages for the weighted
// strategy draw. They are evaluated as cumulative thresholds against one
// uniform draw in [1,100]; Random is the final catch-all band.
type StrategyWeights struct {
	Nearest int32
	Health  int32
	Damage  int32
	Random  int32
}

// Archetype holds the static definition of a monster kind: stats, ability
// lists, targeting weights and movement tuning. Loaded once at startup and
// shared read-only between all instances.
type Archetype struct {
	ID              int32
	Name            string
	Description     string
	HealthMax       int32
	FleeHealth      int32 // flee mode below or at this health; 0 = never
	BaseSpeed       int32
	TargetDistance  int32 // preferred Chebyshev distance to the target
	Hostile         bool
	Pushable        bool
	CanPushItems    bool
	CanPushCreature bool

	Faction        Faction
	EnemyFactions  []Faction
	StrategyWeight StrategyWeights

	AttackAbilities  []Ability
	DefenseAbilities []Ability

	MaxSummons uint32
	Summons    []SummonSpec

	// Target re-roll cadence (milliseconds) and chance percentage.
	ChangeTargetSpeed  int64
	ChangeTargetChance uint32

	// Dance stepping: chance percentage to hold position instead of
	// repositioning while engaged.
	StaticAttackChance uint32

	Voices        []Voice
	YellSpeed     int64 // milliseconds between voice attempts
	YellChance    uint32
	UseFlavorText bool // ask the flavor service for lines instead of Voices
}

// IsEnemyFaction reports whether f is in this archetype's enemy set.
func (a *Archetype) IsEnemyFaction(f Faction) bool {
	for _, enemy := range a.EnemyFactions {
		if enemy == f {
			return true
		}
	}
	return false
}

// IsMeleeOnly reports whether the archetype prefers adjacency (no ranged
// positioning needed).
func (a *Archetype) IsMeleeOnly() bool {
	return a.TargetDistance <= 1
}
