package ai

import (
	"log/slog"

	"github.com/otcraft/mobsim/internal/model"
)

// Faction offset scales: a deterministic penalty added to each metric so
// candidates from distinct factions never compare equal by accident.
const (
	factionOffsetDistance = 100
	factionOffsetStat     = 100000
)

// searchTarget picks a new active target from the target list using the
// given strategy. StrategyDefault resolves to a weighted draw over the
// archetype's strategy percentages. Returns false when nothing in the
// list is currently selectable.
func (a *MonsterAI) searchTarget(strategy model.TargetStrategy) bool {
	m := a.m
	if m.TargetCount() == 0 {
		return false
	}
	if strategy == model.StrategyDefault {
		strategy = a.drawStrategy()
	}

	candidates := a.collectCandidates()
	if DebugEnabled() {
		slog.Debug("searching target",
			"objectID", m.ObjectID(), "name", m.Name(),
			"strategy", strategy, "candidates", len(candidates))
	}

	var chosen model.Actor
	switch strategy {
	case model.StrategyNearest:
		chosen = a.pickByScore(candidates, func(c model.Actor) int64 {
			dist := int64(m.Position().ChebyshevDistance(c.Position()))
			return dist + int64(c.Faction().Offset(factionOffsetDistance))
		})
	case model.StrategyLowestHealth:
		chosen = a.pickByScore(candidates, func(c model.Actor) int64 {
			return int64(c.Health()) + int64(c.Faction().Offset(factionOffsetStat))
		})
	case model.StrategyMostDamage:
		chosen = a.pickByScore(candidates, func(c model.Actor) int64 {
			return -m.Damage.Dealt(c.ObjectID()) + int64(c.Faction().Offset(factionOffsetStat))
		})
	case model.StrategyRandom:
		if len(candidates) > 0 {
			chosen = candidates[a.ctx.Rand.Between(0, int32(len(candidates)-1))]
		}
	}

	if chosen != nil && a.selectTarget(chosen) {
		return true
	}

	// Any-of fallback: first list entry that still qualifies.
	for _, id := range m.TargetIDs() {
		other, ok := a.ctx.Registry.Get(id)
		if ok && a.isTarget(other) && a.selectTarget(other) {
			return true
		}
	}
	return false
}

// drawStrategy resolves StrategyDefault with one uniform draw in [1,100]
// against the archetype's cumulative weight bands; Random is the final
// catch-all band.
func (a *MonsterAI) drawStrategy() model.TargetStrategy {
	w := a.m.Archetype.StrategyWeight
	draw := a.ctx.Rand.Between(1, 100)
	switch {
	case draw <= w.Nearest:
		return model.StrategyNearest
	case draw <= w.Nearest+w.Health:
		return model.StrategyLowestHealth
	case draw <= w.Nearest+w.Health+w.Damage:
		return model.StrategyMostDamage
	default:
		return model.StrategyRandom
	}
}

// collectCandidates filters the target list down to entries that are
// still opponents and reachable: melee archetypes take anyone, ranged
// ones need some attack ability to connect from here.
func (a *MonsterAI) collectCandidates() []model.Actor {
	m := a.m
	pos := m.Position()
	var out []model.Actor
	for _, id := range m.TargetIDs() {
		other, ok := a.ctx.Registry.Get(id)
		if !ok || !a.isTarget(other) {
			continue
		}
		if m.Archetype.IsMeleeOnly() || a.canUseAttack(pos, other) {
			out = append(out, other)
		}
	}
	return out
}

// pickByScore returns the candidate with the strictly lowest score;
// earlier list entries win ties, which keeps repeated runs deterministic.
func (a *MonsterAI) pickByScore(candidates []model.Actor, score func(model.Actor) int64) model.Actor {
	var best model.Actor
	var bestScore int64
	for _, c := range candidates {
		s := score(c)
		if best == nil || s < bestScore {
			best = c
			bestScore = s
		}
	}
	return best
}

// selectTarget makes target the active one after live validity checks.
// Hostile monsters and summons also schedule a deferred attack check so
// target acquisition stays decoupled from combat resolution.
func (a *MonsterAI) selectTarget(target model.Actor) bool {
	m := a.m
	if target.ObjectID() == m.ObjectID() {
		slog.Error("monster tried to select itself as target",
			"objectID", m.ObjectID(), "name", m.Name())
		return false
	}
	if !a.isTarget(target) {
		return false
	}
	if !m.HasTarget(target.ObjectID()) {
		a.addTarget(target, false)
	}
	if m.ActiveTargetID != target.ObjectID() {
		m.ActiveTargetID = target.ObjectID()
		a.hasFollowPath = false
	}

	if m.Archetype.Hostile || m.IsSummon() {
		id := target.ObjectID()
		a.ctx.Events.Push(func() { a.checkAttack(id) })
	}
	return true
}

// checkAttack is the deferred follow-up after target acquisition: verify
// the victim is still a valid mark, drop it otherwise.
func (a *MonsterAI) checkAttack(targetID uint32) {
	m := a.m
	if m.IsDead() || m.IsRemoved() || m.ActiveTargetID != targetID {
		return
	}
	target, ok := a.ctx.Registry.Get(targetID)
	if !ok || !a.isTarget(target) {
		m.RemoveTarget(targetID)
		if m.TargetCount() > 0 {
			a.searchTarget(model.StrategyDefault)
		}
	}
}

// canUseAttack reports whether any attack ability could connect against
// target from pos: adjacency for melee, range plus clear sight for the
// rest.
func (a *MonsterAI) canUseAttack(pos model.Position, target model.Actor) bool {
	m := a.m
	tpos := target.Position()
	dist := pos.ChebyshevDistance(tpos)
	if dist <= 1 {
		return true
	}
	for _, ab := range m.Archetype.AttackAbilities {
		if ab.Range != 0 && dist <= ab.Range {
			return a.ctx.Map.SightClear(pos, tpos)
		}
	}
	return false
}
