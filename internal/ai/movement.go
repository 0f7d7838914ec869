package ai

import (
	"log/slog"
	"time"

	"github.com/otcraft/mobsim/internal/model"
	"github.com/otcraft/mobsim/internal/pathfind"
	"github.com/otcraft/mobsim/internal/world"
)

// randomStepSpacing is the minimum gap between wander steps.
const randomStepSpacing = 1000 // ms

// pushItemLimit caps item relocations per blocked tile per attempt.
const pushItemLimit = 20

// walk performs at most one step for this tick, gated by movement speed.
func (a *MonsterAI) walk(now time.Time) {
	m := a.m
	nowMs := now.UnixMilli()
	a.updateStepSlow()
	if nowMs < m.NextStepAt {
		return
	}

	dir, ok := a.nextStep(nowMs)
	if !ok || dir == model.DirectionNone {
		return
	}

	dest := model.NextPosition(dir, m.Position())
	if m.Archetype.CanPushItems || m.Archetype.CanPushCreature {
		a.clearDestination(dest)
	}

	oldPos := m.Position()
	if !a.ctx.Map.MoveCreature(m, dest) {
		// Blocked step invalidates the cached route.
		a.followPath = nil
		a.hasFollowPath = false
		return
	}
	m.LookDir = dir
	m.NextStepAt = nowMs + a.stepInterval()
	if a.ctx.NotifyMoved != nil {
		a.ctx.NotifyMoved(m, oldPos)
	}
}

// nextStep resolves the movement state machine in priority order:
// follow-path, flee/dance while engaged, walk-back, then wander.
func (a *MonsterAI) nextStep(nowMs int64) (model.Direction, bool) {
	m := a.m
	if m.Idle || m.IsDead() {
		return model.DirectionNone, false
	}

	target, engaged := a.ctx.Registry.Get(m.ActiveTargetID)
	if engaged && !a.isTarget(target) {
		engaged = false
	}

	if !engaged && m.IsSummon() {
		// Stray summon keeps station near its master.
		if master, ok := a.ctx.Registry.GetMonster(m.MasterID()); ok {
			if m.Position().ChebyshevDistance(master.Position()) > 2 {
				return a.followStep(master.Position(), 1)
			}
		}
		return model.DirectionNone, false
	}

	if !engaged {
		if m.WalkingBack {
			return a.walkBackStep()
		}
		if nowMs-a.lastRandomStep >= randomStepSpacing {
			if dir, ok := a.getRandomStep(); ok {
				a.lastRandomStep = nowMs
				return dir, true
			}
		}
		return model.DirectionNone, false
	}

	tpos := target.Position()
	if m.IsFleeing() {
		if dir, ok := a.getDistanceStep(tpos, true); ok {
			return dir, true
		}
		return a.fleeStep(tpos)
	}

	if len(a.followPath) > 0 {
		dir := a.followPath[0]
		a.followPath = a.followPath[1:]
		return dir, true
	}

	dist := m.Position().ChebyshevDistance(tpos)
	td := m.TargetDistance()
	if dist > td {
		return a.followStep(tpos, td)
	}

	if td > 1 && dist < td {
		if dir, ok := a.getDistanceStep(tpos, false); ok {
			return dir, true
		}
	}

	// In position: dance unless the static-attack draw holds the tile.
	if a.ctx.Rand.Between(1, 100) > int32(m.Archetype.StaticAttackChance) {
		if dir, ok := a.getDanceStep(tpos, true, true); ok {
			return dir, true
		}
	}
	return model.DirectionNone, false
}

// followStep recomputes the route toward dest and takes its first step.
func (a *MonsterAI) followStep(dest model.Position, targetDist int32) (model.Direction, bool) {
	m := a.m
	params := pathfind.Params{
		MinTargetDist: 1,
		MaxTargetDist: targetDist,
		ClearSight:    targetDist > 1,
		KeepDistance:  targetDist > 1,
		MaxSearchDist: 2 * world.AwarenessRange,
		Allowed:       a.inSpawnRange,
	}
	path, ok := a.ctx.Finder.FindPath(m.Position(), dest, m.ObjectID(), params)
	a.hasFollowPath = ok
	if !ok || len(path) == 0 {
		a.followPath = nil
		return model.DirectionNone, false
	}
	a.followPath = path[1:]
	return path[0], true
}

// fleeStep asks the pathfinder for a keep-distance retreat route beyond
// the view range when the local kiting step found no opening.
func (a *MonsterAI) fleeStep(threat model.Position) (model.Direction, bool) {
	m := a.m
	params := pathfind.Params{
		MinTargetDist: world.AwarenessRange,
		MaxTargetDist: world.AwarenessRange + 1,
		KeepDistance:  true,
		MaxSearchDist: 2 * world.AwarenessRange,
		Allowed:       a.inSpawnRange,
	}
	path, ok := a.ctx.Finder.FindPath(m.Position(), threat, m.ObjectID(), params)
	if !ok || len(path) == 0 {
		return model.DirectionNone, false
	}
	a.followPath = path[1:]
	a.hasFollowPath = true
	return path[0], true
}

// walkBackStep walks the cached route home, requesting a fresh one when
// it runs out. Arrival (or an unroutable anchor) clears the mode.
func (a *MonsterAI) walkBackStep() (model.Direction, bool) {
	m := a.m
	if m.Position() == m.SpawnPos {
		m.WalkingBack = false
		return model.DirectionNone, false
	}
	if len(a.followPath) > 0 {
		dir := a.followPath[0]
		a.followPath = a.followPath[1:]
		return dir, true
	}
	if m.Position().ChebyshevDistance(m.SpawnPos) == 1 {
		// The route stops next to the anchor; the last step is ours.
		if a.ctx.Map.IsWalkable(m.SpawnPos, m.ObjectID()) {
			return model.DirectionTo(m.Position(), m.SpawnPos), true
		}
		return model.DirectionNone, false
	}
	params := pathfind.Params{
		MinTargetDist: 0,
		MaxTargetDist: 1,
		MaxSearchDist: 2 * world.AwarenessRange,
	}
	path, ok := a.ctx.Finder.FindPath(m.Position(), m.SpawnPos, m.ObjectID(), params)
	if !ok || len(path) == 0 {
		m.WalkingBack = false
		slog.Debug("walk-back path lost, giving up",
			"objectID", m.ObjectID(), "name", m.Name())
		return model.DirectionNone, false
	}
	a.followPath = path[1:]
	return path[0], true
}

// getRandomStep picks a uniformly random walkable cardinal direction.
func (a *MonsterAI) getRandomStep() (model.Direction, bool) {
	dirs := model.CardinalDirections()
	a.shuffleDirections(dirs)
	for _, dir := range dirs {
		if a.canWalkTo(dir) {
			return dir, true
		}
	}
	return model.DirectionNone, false
}

// getDanceStep repositions around the target without changing range:
// cardinal candidates that keep the current Chebyshev distance, filtered
// by keepAttack so the monster never dances out of its own attack
// solution, picked uniformly. Standing exactly at the preferred distance
// with keepDistance set means hold position.
func (a *MonsterAI) getDanceStep(center model.Position, keepAttack, keepDistance bool) (model.Direction, bool) {
	m := a.m
	pos := m.Position()
	distX := pos.DistanceX(center)
	distY := pos.DistanceY(center)
	centerDist := max32(distX, distY)

	if keepDistance && centerDist == m.TargetDistance() {
		return model.DirectionNone, false
	}

	var canAttackNow bool
	target, engaged := a.ctx.Registry.Get(m.ActiveTargetID)
	if engaged {
		canAttackNow = a.canUseAttack(pos, target)
	}

	var candidates []model.Direction
	for _, dir := range model.CardinalDirections() {
		next := model.NextPosition(dir, pos)
		nextDist := max32(next.DistanceX(center), next.DistanceY(center))
		if nextDist != centerDist || !a.canWalkTo(dir) {
			continue
		}
		if keepAttack && engaged && canAttackNow && !a.canUseAttack(next, target) {
			continue
		}
		candidates = append(candidates, dir)
	}
	if len(candidates) == 0 {
		return model.DirectionNone, false
	}
	return candidates[a.ctx.Rand.Between(0, int32(len(candidates)-1))], true
}

// getDistanceStep is the quadrant-based kiting move. In flee mode it
// prefers the direction that opens the most distance, falling back
// through the alternatives and, as a last resort, stepping toward the
// threat rather than freezing. Outside flee mode a target beyond reach
// (or out of sight) is left to the pathfinder, and standing at the
// preferred distance counts as handled with no step.
func (a *MonsterAI) getDistanceStep(threat model.Position, flee bool) (model.Direction, bool) {
	m := a.m
	pos := m.Position()
	dist := pos.ChebyshevDistance(threat)
	td := m.TargetDistance()

	if !flee {
		if dist > td || !a.ctx.Map.SightClear(pos, threat) {
			return model.DirectionNone, false
		}
		if dist == td {
			return model.DirectionNone, true
		}
	}

	type option struct {
		dir  model.Direction
		gain int32
	}
	dirs := []model.Direction{
		model.DirectionNorthWest, model.DirectionNorthEast,
		model.DirectionSouthWest, model.DirectionSouthEast,
		model.DirectionNorth, model.DirectionSouth,
		model.DirectionWest, model.DirectionEast,
	}
	var options []option
	for _, dir := range dirs {
		if !a.canWalkTo(dir) {
			continue
		}
		next := model.NextPosition(dir, pos)
		options = append(options, option{dir: dir, gain: next.ChebyshevDistance(threat) - dist})
	}
	if len(options) == 0 {
		return model.DirectionNone, false
	}

	// Fixed priority: widest gain first, diagonals before cardinals
	// within the same gain (the candidate order above encodes that);
	// stepping toward the threat is the explicit last resort.
	best := options[0]
	for _, o := range options[1:] {
		if o.gain > best.gain {
			best = o
		}
	}
	if !flee && best.gain <= 0 {
		return model.DirectionNone, false
	}
	return best.dir, true
}

// canWalkTo checks one step from the current position: tile accepts the
// monster and the destination stays inside the spawn leash.
func (a *MonsterAI) canWalkTo(dir model.Direction) bool {
	m := a.m
	dest := model.NextPosition(dir, m.Position())
	if !a.inSpawnRange(dest) {
		return false
	}
	if a.ctx.Map.IsWalkable(dest, m.ObjectID()) {
		return true
	}
	// A pushable occupant or a movable blocker is still a viable step
	// for a monster that can clear it.
	if m.Archetype.CanPushCreature {
		if occupant, ok := a.ctx.Map.CreatureAt(dest); ok {
			if om, isMonster := occupant.(*model.Monster); isMonster && om.Archetype.Pushable {
				return true
			}
		}
	}
	if m.Archetype.CanPushItems {
		tile, ok := a.ctx.Map.TileAt(dest)
		if ok && tile.Walkable && !tile.ProtectionZone && tile.CreatureID == 0 {
			for _, it := range tile.Items {
				if it.BlocksPath && it.Movable {
					return true
				}
			}
		}
	}
	return false
}

// clearDestination shoves blocking items and pushable creatures off the
// tile the monster is about to enter.
func (a *MonsterAI) clearDestination(dest model.Position) {
	m := a.m
	if m.Archetype.CanPushItems {
		relocated, destroyed := a.ctx.Map.ClearBlockingItems(dest, pushItemLimit)
		if (relocated > 0 || destroyed > 0) && DebugEnabled() {
			slog.Debug("monster pushed items",
				"objectID", m.ObjectID(), "name", m.Name(),
				"relocated", relocated, "destroyed", destroyed)
		}
	}
	if m.Archetype.CanPushCreature {
		if occupant, ok := a.ctx.Map.CreatureAt(dest); ok {
			if om, isMonster := occupant.(*model.Monster); isMonster && om.Archetype.Pushable {
				a.pushCreature(om)
			}
		}
	}
}

// pushCreature shoves the blocker one tile in a shuffled cardinal order.
// A blocker with nowhere to go has its health zeroed: the unstick rule,
// not combat damage.
func (a *MonsterAI) pushCreature(blocker *model.Monster) {
	dirs := model.CardinalDirections()
	a.shuffleDirections(dirs)
	for _, dir := range dirs {
		dest := model.NextPosition(dir, blocker.Position())
		if a.ctx.Map.MoveCreature(blocker, dest) {
			return
		}
	}
	slog.Debug("unshovable blocker removed",
		"objectID", blocker.ObjectID(), "name", blocker.Name())
	blocker.ChangeHealth(-blocker.Health())
}

func (a *MonsterAI) shuffleDirections(dirs []model.Direction) {
	for i := int32(len(dirs)) - 1; i > 0; i-- {
		j := a.ctx.Rand.Between(0, i)
		dirs[i], dirs[j] = dirs[j], dirs[i]
	}
}

// updateStepSlow tracks melee contact: adjacency ramps the dance-step
// slowdown, distance bleeds it off.
func (a *MonsterAI) updateStepSlow() {
	m := a.m
	target, ok := a.ctx.Registry.Get(m.ActiveTargetID)
	if ok && m.Position().ChebyshevDistance(target.Position()) <= 1 {
		if m.StepSlow < maxStepSlow {
			m.StepSlow++
		}
	} else if m.StepSlow > 0 {
		m.StepSlow--
	}
}

// stepInterval converts movement speed to milliseconds per step, with the
// melee-contact slowdown applied.
func (a *MonsterAI) stepInterval() int64 {
	speed := a.m.Speed()
	if speed <= 0 {
		speed = 1
	}
	ms := int64(100000 / speed)
	if ms < 200 {
		ms = 200
	}
	if ms > 2000 {
		ms = 2000
	}
	return ms * int64(1+a.m.StepSlow)
}

func max32(x, y int32) int32 {
	if x > y {
		return x
	}
	return y
}
