package ai

import (
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/otcraft/mobsim/internal/model"
	"github.com/otcraft/mobsim/internal/world"
)

// extraMeleeWindow is the gap after which a melee swing bypasses cadence.
const extraMeleeWindow = 1500 // ms

// maxStepSlow caps the dance-step slowdown accumulated in melee contact.
const maxStepSlow = 3

// MonsterAI is the decision engine for one monster. All of its mutable
// state (and the monster's think-state fields) is touched only on the
// scheduler goroutine.
type MonsterAI struct {
	ctx *Context
	m   *model.Monster

	running atomic.Bool

	// Cached walk route. hasFollowPath doubles as the "actively engaging"
	// signal the summon gate checks.
	followPath    []model.Direction
	hasFollowPath bool

	lastRandomStep int64 // unix millis
}

// NewMonsterAI creates a controller for m using ctx.
func NewMonsterAI(ctx *Context, m *model.Monster) *MonsterAI {
	return &MonsterAI{ctx: ctx, m: m}
}

// Monster returns the controlled monster.
func (a *MonsterAI) Monster() *model.Monster { return a.m }

// Start activates the controller.
func (a *MonsterAI) Start() {
	a.running.Store(true)
	if a.ctx.Hooks.OnSpawn != nil {
		a.ctx.Hooks.OnSpawn(a.m)
	}
	slog.Debug("monster AI started", "objectID", a.m.ObjectID(), "name", a.m.Name())
}

// Stop deactivates the controller.
func (a *MonsterAI) Stop() {
	a.running.Store(false)
	slog.Debug("monster AI stopped", "objectID", a.m.ObjectID(), "name", a.m.Name())
}

// Tick performs one think step: relationship refresh, target maintenance,
// cadence-driven casting, then one walk step.
func (a *MonsterAI) Tick(now time.Time, interval time.Duration) {
	m := a.m
	if !a.running.Load() || m.IsDead() || m.IsRemoved() {
		return
	}
	if a.ctx.Hooks.OnThink != nil && a.ctx.Hooks.OnThink(m) {
		return
	}

	pos := m.Position()
	if !a.inSpawnRange(pos) {
		// Strayed beyond the leash: snap home and go dormant.
		a.ctx.Map.Teleport(m, m.SpawnPos)
		a.followPath = nil
		a.hasFollowPath = false
		m.ResetThinkState()
		a.setIdle(true)
		slog.Debug("monster despawned back to anchor", "objectID", m.ObjectID(), "name", m.Name())
		return
	}

	ms := interval.Milliseconds()
	a.refreshRelationships()
	a.updateIdleStatus()
	if m.Idle {
		return
	}

	a.decayTimers(ms)
	a.maintainTarget()

	a.onThinkTarget(ms)
	a.onThinkYell(ms)
	a.onThinkDefense(ms)
	if m.ActiveTargetID != 0 {
		a.doAttacking(now, ms)
	}

	a.walk(now)
}

// decayTimers counts down the temporary behavior overrides.
func (a *MonsterAI) decayTimers(ms int64) {
	m := a.m
	if m.ChallengeMeleeRemaining > 0 {
		m.ChallengeMeleeRemaining -= ms
		if m.ChallengeMeleeRemaining <= 0 {
			m.TargetDistanceOverride = 0
		}
	}
}

// maintainTarget keeps ActiveTarget coherent with the target list: summons
// mirror their master's fight, everyone else searches when they have known
// hostiles but nothing valid to hit.
func (a *MonsterAI) maintainTarget() {
	m := a.m
	if m.IsSummon() {
		master, ok := a.ctx.Registry.GetMonster(m.MasterID())
		if !ok {
			m.SetMasterID(0)
			return
		}
		if m.ActiveTargetID == 0 && master.ActiveTargetID != 0 {
			if target, ok := a.ctx.Registry.Get(master.ActiveTargetID); ok {
				a.selectTarget(target)
			}
		}
		return
	}

	if m.TargetCount() == 0 {
		return
	}
	if m.ActiveTargetID == 0 || !a.hasFollowPath {
		a.searchTarget(model.StrategyDefault)
	} else if m.IsFleeing() {
		if target, ok := a.ctx.Registry.Get(m.ActiveTargetID); ok && !a.canUseAttack(m.Position(), target) {
			a.searchTarget(model.StrategyDefault)
		}
	}
}

// refreshRelationships prunes stale entries from the friend and target
// sets and reclassifies the current spectators. Runs once per tick before
// target selection.
func (a *MonsterAI) refreshRelationships() {
	m := a.m

	for _, id := range append([]uint32(nil), m.TargetIDs()...) {
		other, ok := a.ctx.Registry.Get(id)
		if !ok || !a.inAwareness(other) || !a.isTarget(other) {
			m.RemoveTarget(id)
		}
	}
	for _, id := range m.FriendIDs() {
		other, ok := a.ctx.Registry.Get(id)
		if !ok || !a.inAwareness(other) || other.IsDead() {
			m.RemoveFriend(id)
		}
	}

	for _, other := range a.ctx.Map.SpectatorsAround(m.Position(), m.ObjectID()) {
		a.onCreatureFound(other, false)
	}
}

// onCreatureFound classifies one creature and records it. pushFront marks
// just-noticed opponents for earlier evaluation.
func (a *MonsterAI) onCreatureFound(other model.Actor, pushFront bool) {
	m := a.m
	if other.ObjectID() == m.ObjectID() {
		return
	}
	if a.isFriend(other) {
		m.AddFriend(other.ObjectID())
		return
	}
	if a.isOpponent(other) {
		a.addTarget(other, pushFront)
	}
}

// addTarget inserts other into the target list, guarding against the
// self-targeting programmer error.
func (a *MonsterAI) addTarget(other model.Actor, pushFront bool) {
	m := a.m
	if other.ObjectID() == m.ObjectID() {
		slog.Error("monster tried to target itself",
			"objectID", m.ObjectID(), "name", m.Name())
		return
	}
	m.AddTarget(other.ObjectID(), pushFront)
}

// isFriend classifies other as an ally: same-faction free monsters stick
// together, and a summon sides with its master and its master's allies.
func (a *MonsterAI) isFriend(other model.Actor) bool {
	m := a.m
	if m.IsSummon() {
		if other.ObjectID() == m.MasterID() {
			return true
		}
		if om, ok := other.(*model.Monster); ok {
			if om.MasterID() == m.MasterID() && om.MasterID() != 0 {
				return true
			}
			if master, ok := a.ctx.Registry.GetMonster(m.MasterID()); ok {
				return !om.IsSummon() && om.Faction() == master.Faction()
			}
		}
		return false
	}
	om, ok := other.(*model.Monster)
	return ok && !om.IsSummon() && om.Faction() == m.Faction()
}

// isOpponent classifies other as attack-worthy: players for hostile
// archetypes, plus anything in an enemy faction.
func (a *MonsterAI) isOpponent(other model.Actor) bool {
	m := a.m
	if !a.isTarget(other) {
		return false
	}
	if _, ok := other.(*model.Player); ok {
		return m.Archetype.Hostile || m.Archetype.Faction != model.FactionDefault
	}
	return m.Archetype.Faction != model.FactionDefault &&
		m.Archetype.IsEnemyFaction(other.Faction())
}

// isTarget runs the live validity checks: alive, attackable, same floor,
// not sheltered. A disconnected player is invalid for free monsters only;
// a summon stays on one until its master calls it off.
func (a *MonsterAI) isTarget(other model.Actor) bool {
	m := a.m
	if other.IsDead() || other.IsRemoved() || !other.Attackable() {
		return false
	}
	if p, ok := other.(*model.Player); ok && p.IsDisconnected() && !m.IsSummon() {
		return false
	}
	if other.Position().Z != m.Position().Z {
		return false
	}
	return !a.ctx.Map.IsProtectionZone(other.Position())
}

// inAwareness reports whether other is inside the viewport.
func (a *MonsterAI) inAwareness(other model.Actor) bool {
	pos := a.m.Position()
	opos := other.Position()
	return opos.Z == pos.Z && opos.ChebyshevDistance(pos) <= world.AwarenessRange
}

// inSpawnRange reports whether pos is within the despawn leash.
func (a *MonsterAI) inSpawnRange(pos model.Position) bool {
	if a.ctx.DespawnRadius <= 0 || a.m.IsSummon() {
		return true
	}
	return pos.ChebyshevDistance(a.m.SpawnPos) <= a.ctx.DespawnRadius
}

// updateIdleStatus applies the dormancy rules: nothing to fight and home
// (or an unobserved faction summon) means sleep; away from home with no
// targets means walk back first.
func (a *MonsterAI) updateIdleStatus() {
	m := a.m
	idle := false
	if !m.HasConditions() {
		if !m.IsSummon() {
			if m.TargetCount() == 0 {
				if m.Position() == m.SpawnPos {
					idle = true
				} else {
					m.WalkingBack = true
				}
			}
		} else if master, ok := a.ctx.Registry.GetMonster(m.MasterID()); ok {
			if master.PlayersOnScreen == 0 && m.Faction() != model.FactionDefault {
				idle = true
			}
		}
	}
	a.setIdle(idle)
}

func (a *MonsterAI) setIdle(idle bool) {
	m := a.m
	if m.Idle == idle {
		return
	}
	m.Idle = idle
	if idle {
		m.ClearTargets()
		m.ClearFriends()
		a.followPath = nil
		a.hasFollowPath = false
		m.WalkingBack = false
	}
	if DebugEnabled() {
		slog.Debug("monster idle state changed",
			"objectID", m.ObjectID(), "name", m.Name(), "idle", idle)
	}
}

// NotifyCreatureAppeared handles a creature entering the viewport.
func (a *MonsterAI) NotifyCreatureAppeared(other model.Actor) {
	m := a.m
	if !a.running.Load() || other.ObjectID() == m.ObjectID() {
		return
	}
	if a.ctx.Hooks.OnAppear != nil && a.ctx.Hooks.OnAppear(m, other) {
		return
	}
	if p, ok := other.(*model.Player); ok && p.Attackable() && !p.IsDisconnected() {
		m.PlayersOnScreen++
	}
	a.onCreatureFound(other, true)
	a.updateIdleStatus()
}

// NotifyCreatureDisappeared handles a creature leaving the world or the
// viewport.
func (a *MonsterAI) NotifyCreatureDisappeared(other model.Actor) {
	m := a.m
	if !a.running.Load() || other.ObjectID() == m.ObjectID() {
		return
	}
	if a.ctx.Hooks.OnDisappear != nil && a.ctx.Hooks.OnDisappear(m, other) {
		return
	}
	if p, ok := other.(*model.Player); ok && p.Attackable() && !p.IsDisconnected() {
		if m.PlayersOnScreen > 0 {
			m.PlayersOnScreen--
		}
	}
	id := other.ObjectID()
	m.RemoveTarget(id)
	m.RemoveFriend(id)
	if m.ActiveTargetID == 0 && m.TargetCount() > 0 {
		a.searchTarget(model.StrategyDefault)
	}
	a.updateIdleStatus()
}

// NotifyCreatureMoved handles another creature stepping from oldPos,
// promoting it to appeared/disappeared when it crosses the viewport edge.
func (a *MonsterAI) NotifyCreatureMoved(other model.Actor, oldPos model.Position) {
	m := a.m
	if !a.running.Load() || other.ObjectID() == m.ObjectID() {
		return
	}
	if a.ctx.Hooks.OnMove != nil && a.ctx.Hooks.OnMove(m, other, oldPos) {
		return
	}

	pos := m.Position()
	wasIn := oldPos.Z == pos.Z && oldPos.ChebyshevDistance(pos) <= world.AwarenessRange
	isIn := a.inAwareness(other)
	switch {
	case isIn && !wasIn:
		a.NotifyCreatureAppeared(other)
	case !isIn && wasIn:
		a.NotifyCreatureDisappeared(other)
	case isIn:
		// Movement inside the viewport invalidates a cached route toward
		// the mover.
		if other.ObjectID() == m.ActiveTargetID {
			a.hasFollowPath = false
		}
	}
}

// NotifyDamaged registers retaliation against the attacker and wakes the
// monster if it was dormant.
func (a *MonsterAI) NotifyDamaged(attackerID uint32, amount int32) {
	m := a.m
	if !a.running.Load() || amount <= 0 || attackerID == m.ObjectID() {
		return
	}
	attacker, ok := a.ctx.Registry.Get(attackerID)
	if !ok || !a.isTarget(attacker) {
		return
	}
	if p, isPlayer := attacker.(*model.Player); isPlayer {
		if a.ctx.Hooks.OnAttacked != nil && a.ctx.Hooks.OnAttacked(m, p) {
			return
		}
	}
	a.addTarget(attacker, true)
	a.setIdle(false)
	if m.ActiveTargetID == 0 {
		a.selectTarget(attacker)
	}
}

// Challenge forces the monster onto the challenger and suppresses
// strategy-driven target changes for the given duration. Summons refuse.
func (a *MonsterAI) Challenge(challengerID uint32, duration time.Duration) bool {
	m := a.m
	if m.IsSummon() {
		return false
	}
	challenger, ok := a.ctx.Registry.Get(challengerID)
	if !ok || !a.isTarget(challenger) {
		return false
	}
	a.addTarget(challenger, true)
	if !a.selectTarget(challenger) {
		return false
	}
	m.ChallengeFocusRemaining = duration.Milliseconds()
	m.TargetChangeTicks = 0
	a.setIdle(false)
	return true
}

// OverrideTargetDistance temporarily replaces the archetype engagement
// distance (melee-lock mechanic). The override runs on the challenge-melee
// timer, so an overridden monster also stops fleeing until it expires.
// Refused for summons.
func (a *MonsterAI) OverrideTargetDistance(distance int32, duration time.Duration) bool {
	m := a.m
	if m.IsSummon() || distance <= 0 {
		return false
	}
	m.TargetDistanceOverride = distance
	if ms := duration.Milliseconds(); ms > m.ChallengeMeleeRemaining {
		m.ChallengeMeleeRemaining = ms
	}
	a.hasFollowPath = false
	return true
}

// OnDeath runs terminal cleanup: summons are put down and released, all
// relationship state is dropped, the controller stops.
func (a *MonsterAI) OnDeath() {
	m := a.m
	for _, id := range m.SummonIDs {
		summon, ok := a.ctx.Registry.GetMonster(id)
		if !ok {
			continue
		}
		summon.SetMasterID(0)
		summon.ChangeHealth(-summon.Health())
	}
	m.SummonIDs = nil
	m.ActiveTargetID = 0
	m.ResetThinkState()
	a.followPath = nil
	a.hasFollowPath = false
	a.running.Store(false)
	slog.Debug("monster died", "objectID", m.ObjectID(), "name", m.Name())
}
