package ai

import (
	"github.com/otcraft/mobsim/internal/model"
	"github.com/otcraft/mobsim/internal/pathfind"
	"github.com/otcraft/mobsim/internal/world"
)

// scriptRand replays scripted draws and falls back to min when the script
// runs out, which makes every probabilistic branch deterministic.
type scriptRand struct {
	draws []int32
	i     int
}

func (r *scriptRand) Between(min, max int32) int32 {
	if r.i < len(r.draws) {
		v := r.draws[r.i]
		r.i++
		if v < min {
			return min
		}
		if v > max {
			return max
		}
		return v
	}
	return min
}

func (r *scriptRand) Bool() bool { return false }

// newTestContext builds an open arena world and a Context wired with a
// scripted RNG.
func newTestContext(width, height int32, draws ...int32) *Context {
	registry := model.NewRegistry()
	m := world.NewMap(registry)
	for x := int32(0); x < width; x++ {
		for y := int32(0); y < height; y++ {
			border := x == 0 || y == 0 || x == width-1 || y == height-1
			m.AddTile(&world.Tile{
				Position: model.NewPosition(x, y, 0),
				Walkable: !border,
			})
		}
	}
	return &Context{
		Map:      m,
		Registry: registry,
		Finder:   pathfind.NewFinder(m),
		Rand:     &scriptRand{draws: draws},
		Events:   NewEventQueue(),
	}
}

func testArchetype() *model.Archetype {
	return &model.Archetype{
		ID:             1,
		Name:           "test wolf",
		HealthMax:      100,
		BaseSpeed:      100,
		TargetDistance: 1,
		Hostile:        true,
		StrategyWeight: model.StrategyWeights{Nearest: 100},
		AttackAbilities: []model.Ability{
			{Name: "bite", Speed: 2000, Chance: 100, IsMelee: true, MinValue: 1, MaxValue: 5},
		},
		StaticAttackChance: 95,
	}
}

// spawnTestMonster creates, places and registers a monster.
func spawnTestMonster(ctx *Context, arch *model.Archetype, pos model.Position) (*model.Monster, *MonsterAI) {
	m := model.NewMonster(ctx.Registry.NextObjectID(), arch, pos)
	ctx.Map.PlaceCreature(m, pos, true)
	ctx.Registry.Add(m)
	a := NewMonsterAI(ctx, m)
	a.Start()
	return m, a
}

func spawnTestPlayer(ctx *Context, pos model.Position) *model.Player {
	p := model.NewPlayer(ctx.Registry.NextObjectID(), "hero", pos, 200, 100)
	ctx.Map.PlaceCreature(p, pos, true)
	ctx.Registry.Add(p)
	return p
}
