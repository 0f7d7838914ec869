package model

// Monster is one AI-driven creature instance. The shared Creature core is
// safe for cross-goroutine reads; every other field is owned by the
// monster's agent and must only be touched on its tick goroutine.
type Monster struct {
	*Creature

	Archetype *Archetype

	// Relationship state. Targets are held as objectIDs so a departed
	// creature can never be kept alive by a monster's memory; stale IDs
	// are pruned lazily on lookup.
	targetList []uint32
	friendSet  map[uint32]struct{}

	// ActiveTargetID is the creature currently being attacked, 0 for none.
	ActiveTargetID uint32

	// Damage dealt per victim, feeds the MostDamage strategy.
	Damage *DamageLedger

	// Cadence accumulators in milliseconds, advanced every think.
	AttackTicks       int64
	DefenseTicks      int64
	YellTicks         int64
	TargetChangeTicks int64

	// ExtraMeleeAttack grants one guaranteed swing after a long gap
	// between melee attacks.
	ExtraMeleeAttack bool
	LastMeleeAttack  int64 // unix millis of the last melee swing, 0 = never

	// Mode flags.
	Idle        bool
	WalkingBack bool // returning to spawn after losing all targets

	// NextStepAt gates walking to the monster's speed (unix millis).
	NextStepAt int64

	// TargetChangeCooldown suppresses strategy re-rolls right after a
	// target change (milliseconds remaining).
	TargetChangeCooldown int64

	// StepSlow counts ticks spent adjacent to the target and slows dance
	// stepping while in melee contact. Capped low, decays when apart.
	StepSlow int32

	// Temporary behavior overrides. ChallengeMeleeRemaining (milliseconds)
	// times both the melee compulsion and a range override; while it runs
	// the monster also refuses to flee. TargetDistanceOverride is the
	// overridden engagement distance, 0 for plain melee compulsion.
	TargetDistanceOverride  int32
	ChallengeFocusRemaining int64
	ChallengeMeleeRemaining int64

	// PlayersOnScreen counts attackable players in the awareness range,
	// maintained by appear/disappear notifications.
	PlayersOnScreen int32

	// SummonIDs are the live summons this monster raised.
	SummonIDs []uint32

	// LookDir is the facing, updated toward the attacked creature before
	// casting.
	LookDir Direction

	// SpawnPos anchors wandering, walk-back and the despawn guard.
	SpawnPos Position
}

// NewMonster creates a monster instance of the given archetype at pos.
func NewMonster(objectID uint32, arch *Archetype, pos Position) *Monster {
	return &Monster{
		Creature:  NewCreature(objectID, arch.Name, pos, arch.HealthMax, arch.Faction, arch.BaseSpeed),
		Archetype: arch,
		friendSet: make(map[uint32]struct{}),
		Damage:    NewDamageLedger(),
		Idle:      true,
		SpawnPos:  pos,
	}
}

// Attackable reports whether other creatures may target this monster.
func (m *Monster) Attackable() bool {
	return !m.IsDead() && !m.IsRemoved()
}

// AddTarget records id as a hostile the monster knows about. front pushes
// the entry to the head of the list, which biases fallback selection.
// Returns false without modifying the list when id is the monster itself
// or already present; callers treat the self case as a bug worth logging.
func (m *Monster) AddTarget(id uint32, front bool) bool {
	if id == m.ObjectID() {
		return false
	}
	for _, existing := range m.targetList {
		if existing == id {
			return false
		}
	}
	if front {
		m.targetList = append([]uint32{id}, m.targetList...)
	} else {
		m.targetList = append(m.targetList, id)
	}
	return true
}

// RemoveTarget drops id from the target list and forgets its damage entry.
func (m *Monster) RemoveTarget(id uint32) {
	for i, existing := range m.targetList {
		if existing == id {
			m.targetList = append(m.targetList[:i], m.targetList[i+1:]...)
			break
		}
	}
	m.Damage.Forget(id)
	if m.ActiveTargetID == id {
		m.ActiveTargetID = 0
	}
}

// HasTarget reports whether id is in the target list.
func (m *Monster) HasTarget(id uint32) bool {
	for _, existing := range m.targetList {
		if existing == id {
			return true
		}
	}
	return false
}

// TargetIDs returns the target list in order. The returned slice is the
// live backing array; callers on the tick thread may iterate but must use
// RemoveTarget to mutate.
func (m *Monster) TargetIDs() []uint32 {
	return m.targetList
}

// TargetCount returns the number of known hostiles.
func (m *Monster) TargetCount() int {
	return len(m.targetList)
}

// ClearTargets empties the target list and the damage ledger.
func (m *Monster) ClearTargets() {
	m.targetList = m.targetList[:0]
	m.Damage.Reset()
	m.ActiveTargetID = 0
}

// AddFriend records an allied monster.
func (m *Monster) AddFriend(id uint32) {
	if id == m.ObjectID() {
		return
	}
	m.friendSet[id] = struct{}{}
}

// RemoveFriend forgets an allied monster.
func (m *Monster) RemoveFriend(id uint32) {
	delete(m.friendSet, id)
}

// IsFriend reports whether id is a known ally.
func (m *Monster) IsFriend(id uint32) bool {
	_, ok := m.friendSet[id]
	return ok
}

// FriendIDs returns the ally set as a slice, order unspecified.
func (m *Monster) FriendIDs() []uint32 {
	out := make([]uint32, 0, len(m.friendSet))
	for id := range m.friendSet {
		out = append(out, id)
	}
	return out
}

// FriendCount returns the number of known allies.
func (m *Monster) FriendCount() int {
	return len(m.friendSet)
}

// ClearFriends empties the ally set.
func (m *Monster) ClearFriends() {
	clear(m.friendSet)
}

// AddSummon registers a raised summon.
func (m *Monster) AddSummon(id uint32) {
	m.SummonIDs = append(m.SummonIDs, id)
}

// RemoveSummon drops a summon that died or was released.
func (m *Monster) RemoveSummon(id uint32) {
	for i, existing := range m.SummonIDs {
		if existing == id {
			m.SummonIDs = append(m.SummonIDs[:i], m.SummonIDs[i+1:]...)
			return
		}
	}
}

// TargetDistance returns the preferred engagement distance, honoring an
// active override and the challenge melee compulsion.
func (m *Monster) TargetDistance() int32 {
	if m.ChallengeMeleeRemaining > 0 {
		if m.TargetDistanceOverride > 0 {
			return m.TargetDistanceOverride
		}
		return 1
	}
	return m.Archetype.TargetDistance
}

// IsFleeing reports whether the monster is in flee mode: low on health,
// not a summon, and not compelled by a challenge.
func (m *Monster) IsFleeing() bool {
	if m.IsSummon() {
		return false
	}
	if m.ChallengeFocusRemaining > 0 || m.ChallengeMeleeRemaining > 0 {
		return false
	}
	return m.Archetype.FleeHealth > 0 && m.Health() <= m.Archetype.FleeHealth
}

// ResetThinkState drops all transient combat state. Used on death and on
// walk-back completion.
func (m *Monster) ResetThinkState() {
	m.ClearTargets()
	m.ClearFriends()
	m.AttackTicks = 0
	m.DefenseTicks = 0
	m.YellTicks = 0
	m.TargetChangeTicks = 0
	m.ExtraMeleeAttack = false
	m.WalkingBack = false
	m.TargetChangeCooldown = 0
	m.StepSlow = 0
	m.TargetDistanceOverride = 0
	m.ChallengeFocusRemaining = 0
	m.ChallengeMeleeRemaining = 0
}
