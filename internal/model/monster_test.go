package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArchetype() *Archetype {
	return &Archetype{
		ID:             1,
		Name:           "test wolf",
		HealthMax:      100,
		BaseSpeed:      100,
		TargetDistance: 1,
		Hostile:        true,
	}
}

func TestAddTargetRejectsSelfAndDuplicates(t *testing.T) {
	m := NewMonster(10, testArchetype(), NewPosition(1, 1, 7))

	assert.False(t, m.AddTarget(10, false), "self must be rejected")
	assert.Equal(t, 0, m.TargetCount())

	assert.True(t, m.AddTarget(20, false))
	assert.False(t, m.AddTarget(20, true), "duplicate must be rejected")
	assert.Equal(t, 1, m.TargetCount())
}

func TestAddTargetFrontInsertion(t *testing.T) {
	m := NewMonster(10, testArchetype(), NewPosition(1, 1, 7))

	require.True(t, m.AddTarget(20, false))
	require.True(t, m.AddTarget(30, false))
	require.True(t, m.AddTarget(40, true))

	assert.Equal(t, []uint32{40, 20, 30}, m.TargetIDs())
}

func TestRemoveTargetClearsActive(t *testing.T) {
	m := NewMonster(10, testArchetype(), NewPosition(1, 1, 7))
	m.AddTarget(20, false)
	m.ActiveTargetID = 20
	m.Damage.Record(20, 15)

	m.RemoveTarget(20)

	assert.Zero(t, m.ActiveTargetID)
	assert.False(t, m.HasTarget(20))
	assert.Zero(t, m.Damage.Dealt(20), "damage entry must be forgotten")
}

func TestTargetDistancePrecedence(t *testing.T) {
	arch := testArchetype()
	arch.TargetDistance = 4
	m := NewMonster(10, arch, NewPosition(1, 1, 7))

	assert.Equal(t, int32(4), m.TargetDistance())

	m.TargetDistanceOverride = 2
	m.ChallengeMeleeRemaining = 1000
	assert.Equal(t, int32(2), m.TargetDistance(), "active override wins over the archetype")

	m.TargetDistanceOverride = 0
	assert.Equal(t, int32(1), m.TargetDistance(), "bare melee compulsion forces adjacency")

	m.ChallengeMeleeRemaining = 0
	assert.Equal(t, int32(4), m.TargetDistance())
}

func TestIsFleeing(t *testing.T) {
	arch := testArchetype()
	arch.FleeHealth = 30
	m := NewMonster(10, arch, NewPosition(1, 1, 7))

	assert.False(t, m.IsFleeing(), "full health never flees")

	m.ChangeHealth(-70)
	assert.True(t, m.IsFleeing())

	m.ChallengeFocusRemaining = 1000
	assert.False(t, m.IsFleeing(), "a challenged monster stands its ground")
	m.ChallengeFocusRemaining = 0

	m.ChallengeMeleeRemaining = 1000
	assert.False(t, m.IsFleeing(), "a range override pins the monster in the fight")
	m.ChallengeMeleeRemaining = 0

	m.SetMasterID(99)
	assert.False(t, m.IsFleeing(), "summons never flee")
}

func TestResetThinkState(t *testing.T) {
	m := NewMonster(10, testArchetype(), NewPosition(1, 1, 7))
	m.AddTarget(20, false)
	m.AddFriend(30)
	m.ActiveTargetID = 20
	m.AttackTicks = 1500
	m.DefenseTicks = 700
	m.WalkingBack = true
	m.StepSlow = 2
	m.TargetChangeCooldown = 4000

	m.ResetThinkState()

	assert.Zero(t, m.TargetCount())
	assert.Zero(t, m.FriendCount())
	assert.Zero(t, m.ActiveTargetID)
	assert.Zero(t, m.AttackTicks)
	assert.Zero(t, m.DefenseTicks)
	assert.False(t, m.WalkingBack)
	assert.Zero(t, m.StepSlow)
	assert.Zero(t, m.TargetChangeCooldown)
}

func TestSummonBookkeeping(t *testing.T) {
	m := NewMonster(10, testArchetype(), NewPosition(1, 1, 7))
	m.AddSummon(20)
	m.AddSummon(30)
	m.RemoveSummon(20)

	assert.Equal(t, []uint32{30}, m.SummonIDs)
}

func TestDamageLedger(t *testing.T) {
	l := NewDamageLedger()
	l.Record(20, 15)
	l.Record(20, 10)
	l.Record(30, 5)

	assert.Equal(t, int64(25), l.Dealt(20))
	assert.Equal(t, int64(5), l.Dealt(30))
	assert.Zero(t, l.Dealt(40))

	l.Forget(20)
	assert.Zero(t, l.Dealt(20))

	l.Reset()
	assert.Zero(t, l.Dealt(30))
}

func TestChangeHealthClamps(t *testing.T) {
	m := NewMonster(10, testArchetype(), NewPosition(1, 1, 7))

	m.ChangeHealth(-150)
	assert.Zero(t, m.Health())
	assert.True(t, m.IsDead())

	m.ChangeHealth(500)
	assert.Equal(t, m.MaxHealth(), m.Health())
}

func TestPlayerAttackable(t *testing.T) {
	p := NewPlayer(10, "hero", NewPosition(1, 1, 7), 200, 100)
	assert.True(t, p.Attackable())

	p.SetDisconnected(true)
	assert.True(t, p.Attackable(), "disconnection is scoped per agent, not global")
	assert.True(t, p.IsDisconnected())
	p.SetDisconnected(false)

	p.SetIgnored(true)
	assert.False(t, p.Attackable())
	p.SetIgnored(false)

	p.ChangeHealth(-200)
	assert.False(t, p.Attackable())
}
