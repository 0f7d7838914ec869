package ai

import (
	"log/slog"
	"time"

	"github.com/otcraft/mobsim/internal/model"
)

// doAttacking walks the attack ability list against the active target.
// Each ability runs its own cadence on the shared attack counter, a
// chance draw in [1,100], and range gating; melee swings get the
// extra-swing fast path after a long gap.
func (a *MonsterAI) doAttacking(now time.Time, interval int64) {
	m := a.m
	target, ok := a.ctx.Registry.Get(m.ActiveTargetID)
	if !ok || !a.isTarget(target) {
		m.RemoveTarget(m.ActiveTargetID)
		return
	}

	nowMs := now.UnixMilli()
	if m.LastMeleeAttack == 0 || nowMs-m.LastMeleeAttack >= extraMeleeWindow {
		m.ExtraMeleeAttack = true
	}

	updateLook := true
	resetTicks := interval != 0
	m.AttackTicks += interval
	fleeing := m.IsFleeing()
	pos := m.Position()
	tpos := target.Position()

	for _, ab := range m.Archetype.AttackAbilities {
		if ab.IsMelee && fleeing {
			continue
		}
		inRange := true
		if !a.canUseSpell(pos, tpos, ab, interval, m.AttackTicks, &inRange, &resetTicks) {
			if !inRange && ab.IsMelee {
				// Swing whiffed on reach; grant the fast path next time.
				m.ExtraMeleeAttack = true
			}
			continue
		}
		if a.ctx.Rand.Between(1, 100) > int32(ab.Chance) {
			continue
		}
		if updateLook {
			a.updateLookDirection(tpos)
			updateLook = false
		}
		a.cast(target, ab)
		if ab.IsMelee {
			m.ExtraMeleeAttack = false
			m.LastMeleeAttack = nowMs
		}
	}

	if resetTicks {
		m.AttackTicks = 0
	}
}

// canUseSpell checks cadence and range for one ability. inRange is set
// false when the rejection was positional; resetTicks is cleared when the
// rejection came purely from insufficient elapsed ticks, which keeps the
// shared counter alive for long-cadence abilities.
func (a *MonsterAI) canUseSpell(
	pos, targetPos model.Position,
	ab model.Ability,
	interval, ticks int64,
	inRange, resetTicks *bool,
) bool {
	m := a.m

	if !(ab.IsMelee && m.ExtraMeleeAttack) {
		if ab.Speed <= 0 {
			return false
		}
		if ticks < ab.Speed || ticks%ab.Speed >= interval {
			*resetTicks = false
			return false
		}
	}

	dist := pos.ChebyshevDistance(targetPos)
	if ab.Range != 0 {
		if dist > ab.Range || dist < ab.MinRange {
			*inRange = false
			return false
		}
		if !a.ctx.Map.SightClear(pos, targetPos) {
			*inRange = false
			return false
		}
	} else if ab.IsMelee && dist > 1 {
		*inRange = false
		return false
	}
	return true
}

func (a *MonsterAI) cast(target model.Actor, ab model.Ability) {
	m := a.m
	if a.ctx.CastSpell == nil {
		return
	}
	if DebugEnabled() {
		slog.Debug("monster casts",
			"objectID", m.ObjectID(), "name", m.Name(),
			"ability", ab.Name, "target", target.ObjectID())
	}
	a.ctx.CastSpell(m, target, ab)
}

// onThinkDefense runs the defense ability list against self, then the
// summon rules. Both share the defense cadence counter.
func (a *MonsterAI) onThinkDefense(interval int64) {
	m := a.m
	resetTicks := true
	m.DefenseTicks += interval

	for _, ab := range m.Archetype.DefenseAbilities {
		if ab.Speed <= 0 {
			continue
		}
		if m.DefenseTicks < ab.Speed || m.DefenseTicks%ab.Speed >= interval {
			resetTicks = false
			continue
		}
		if a.ctx.Rand.Between(1, 100) > int32(ab.Chance) {
			continue
		}
		a.cast(m, ab)
	}

	// Summons: only free monsters that are actively engaging raise them,
	// capped globally and per type.
	if !m.IsSummon() && uint32(len(m.SummonIDs)) < m.Archetype.MaxSummons && a.hasFollowPath {
		for _, spec := range m.Archetype.Summons {
			if spec.Speed > m.DefenseTicks {
				resetTicks = false
				continue
			}
			if uint32(len(m.SummonIDs)) >= m.Archetype.MaxSummons {
				break
			}
			if m.DefenseTicks%spec.Speed >= interval {
				continue
			}
			if a.countSummonsNamed(spec.Name) >= spec.Max {
				continue
			}
			if a.ctx.Rand.Between(1, 100) > int32(spec.Chance) {
				continue
			}
			a.raiseSummon(spec)
		}
	}

	if resetTicks {
		m.DefenseTicks = 0
	}
}

func (a *MonsterAI) countSummonsNamed(name string) uint32 {
	var count uint32
	for _, id := range a.m.SummonIDs {
		if s, ok := a.ctx.Registry.GetMonster(id); ok && s.Name() == name {
			count++
		}
	}
	return count
}

func (a *MonsterAI) raiseSummon(spec model.SummonSpec) {
	m := a.m
	if a.ctx.SummonMonster == nil {
		return
	}
	summon, err := a.ctx.SummonMonster(m, spec)
	if err != nil {
		slog.Debug("summon failed",
			"objectID", m.ObjectID(), "name", m.Name(),
			"summon", spec.Name, "error", err)
		return
	}
	m.AddSummon(summon.ObjectID())
	slog.Debug("monster raised summon",
		"objectID", m.ObjectID(), "name", m.Name(),
		"summon", summon.Name(), "summonID", summon.ObjectID())
}

// onThinkTarget is the periodic target re-roll for free monsters: every
// changeTargetSpeed a chance draw may force a new search, RANDOM for
// melee archetypes and NEAREST for ranged ones. Challenges and the
// post-change cooldown suppress it.
func (a *MonsterAI) onThinkTarget(interval int64) {
	m := a.m
	if m.IsSummon() || m.Archetype.ChangeTargetSpeed <= 0 {
		return
	}

	canChange := true
	if m.ChallengeFocusRemaining > 0 {
		m.ChallengeFocusRemaining -= interval
		canChange = false
	}
	if m.TargetChangeCooldown > 0 {
		m.TargetChangeCooldown -= interval
		canChange = false
	}
	if !canChange {
		return
	}

	m.TargetChangeTicks += interval
	if m.TargetChangeTicks < m.Archetype.ChangeTargetSpeed {
		return
	}
	m.TargetChangeTicks = 0
	m.TargetChangeCooldown = m.Archetype.ChangeTargetSpeed

	if a.ctx.Rand.Between(1, 100) > int32(m.Archetype.ChangeTargetChance) {
		return
	}
	if m.TargetDistance() <= 1 {
		a.searchTarget(model.StrategyRandom)
	} else {
		a.searchTarget(model.StrategyNearest)
	}
}

// onThinkYell voices a line on the yell cadence. Flavor-text archetypes
// ask the flavor service instead; the reply is applied on a later tick
// from the result queue, never here.
func (a *MonsterAI) onThinkYell(interval int64) {
	m := a.m
	arch := m.Archetype
	if arch.YellSpeed <= 0 {
		return
	}
	if len(arch.Voices) == 0 && !arch.UseFlavorText {
		return
	}

	m.YellTicks += interval
	if m.YellTicks < arch.YellSpeed {
		return
	}
	m.YellTicks = 0

	if a.ctx.Rand.Between(1, 100) > int32(arch.YellChance) {
		return
	}

	if arch.UseFlavorText && a.ctx.Flavor != nil {
		a.ctx.Flavor.Request(m.ObjectID(), arch.Description)
		return
	}
	if len(arch.Voices) == 0 {
		return
	}
	voice := arch.Voices[a.ctx.Rand.Between(0, int32(len(arch.Voices)-1))]
	a.ctx.say(m, voice.Text, voice.Yell)
}

// SayLine voices an externally produced line (flavor results).
func (a *MonsterAI) SayLine(text string) {
	if !a.running.Load() || a.m.IsDead() {
		return
	}
	a.ctx.say(a.m, text, false)
}

// updateLookDirection faces the monster toward targetPos, axis-dominant;
// exact diagonals resolve with a coin flip between the two cardinals.
func (a *MonsterAI) updateLookDirection(targetPos model.Position) {
	m := a.m
	dir := model.DirectionTo(m.Position(), targetPos)
	if dir == model.DirectionNone {
		return
	}
	if dir.IsDiagonal() {
		horizontal, vertical := splitDiagonal(dir)
		if a.ctx.Rand.Bool() {
			dir = horizontal
		} else {
			dir = vertical
		}
	}
	m.LookDir = dir
}

func splitDiagonal(d model.Direction) (horizontal, vertical model.Direction) {
	switch d {
	case model.DirectionNorthEast:
		return model.DirectionEast, model.DirectionNorth
	case model.DirectionSouthEast:
		return model.DirectionEast, model.DirectionSouth
	case model.DirectionSouthWest:
		return model.DirectionWest, model.DirectionSouth
	default:
		return model.DirectionWest, model.DirectionNorth
	}
}
