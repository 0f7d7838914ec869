package ai

import (
	"testing"

	"github.com/otcraft/mobsim/internal/model"
)

func TestAddTargetRejectsSelf(t *testing.T) {
	ctx := newTestContext(10, 10)
	m, a := spawnTestMonster(ctx, testArchetype(), model.NewPosition(3, 3, 0))

	a.addTarget(m, false)

	if m.TargetCount() != 0 {
		t.Fatalf("self made it into the target list, count = %d", m.TargetCount())
	}
	if m.HasTarget(m.ObjectID()) {
		t.Fatal("monster is its own target")
	}
}

func TestSelectTargetRejectsSelf(t *testing.T) {
	ctx := newTestContext(10, 10)
	m, a := spawnTestMonster(ctx, testArchetype(), model.NewPosition(3, 3, 0))

	if a.selectTarget(m) {
		t.Fatal("selectTarget accepted the monster itself")
	}
	if m.ActiveTargetID != 0 {
		t.Fatalf("ActiveTargetID = %d, want 0", m.ActiveTargetID)
	}
}

func TestTargetListUniqueness(t *testing.T) {
	ctx := newTestContext(10, 10)
	m, a := spawnTestMonster(ctx, testArchetype(), model.NewPosition(3, 3, 0))
	p := spawnTestPlayer(ctx, model.NewPosition(5, 5, 0))

	a.addTarget(p, false)
	a.addTarget(p, true)
	a.onCreatureFound(p, true)

	if m.TargetCount() != 1 {
		t.Fatalf("target count = %d, want 1", m.TargetCount())
	}
}

func TestTargetListFrontInsertion(t *testing.T) {
	ctx := newTestContext(10, 10)
	m, a := spawnTestMonster(ctx, testArchetype(), model.NewPosition(3, 3, 0))
	first := spawnTestPlayer(ctx, model.NewPosition(5, 5, 0))
	second := spawnTestPlayer(ctx, model.NewPosition(6, 6, 0))

	a.addTarget(first, false)
	a.addTarget(second, true)

	ids := m.TargetIDs()
	if ids[0] != second.ObjectID() {
		t.Fatalf("front insertion lost: list head = %d, want %d", ids[0], second.ObjectID())
	}
}

func TestFactionTieBreakDeterminism(t *testing.T) {
	arch := testArchetype()
	arch.Faction = model.Faction(1)
	arch.EnemyFactions = []model.Faction{2, 3}

	// Two equidistant candidates from distinct factions: the lower
	// combined score must win, run after run.
	for run := 0; run < 2; run++ {
		ctx := newTestContext(20, 20)
		m, a := spawnTestMonster(ctx, arch, model.NewPosition(10, 10, 0))

		mkEnemy := func(faction model.Faction, pos model.Position) *model.Monster {
			earch := testArchetype()
			earch.Faction = faction
			e := model.NewMonster(ctx.Registry.NextObjectID(), earch, pos)
			ctx.Map.PlaceCreature(e, pos, true)
			ctx.Registry.Add(e)
			return e
		}
		high := mkEnemy(3, model.NewPosition(13, 10, 0))
		low := mkEnemy(2, model.NewPosition(7, 10, 0))

		a.addTarget(high, false)
		a.addTarget(low, false)

		if !a.searchTarget(model.StrategyNearest) {
			t.Fatal("searchTarget found nothing")
		}
		if m.ActiveTargetID != low.ObjectID() {
			t.Fatalf("run %d: selected %d, want lower-faction candidate %d",
				run, m.ActiveTargetID, low.ObjectID())
		}
	}
}

func TestSearchTargetFallsBackToFirstValid(t *testing.T) {
	arch := testArchetype()
	arch.TargetDistance = 3 // ranged, so reach matters for candidates
	ctx := newTestContext(40, 40)
	m, a := spawnTestMonster(ctx, arch, model.NewPosition(5, 5, 0))

	// In the list but beyond every ability range: no candidate survives
	// the reach filter, the any-of fallback still picks it.
	far := spawnTestPlayer(ctx, model.NewPosition(15, 5, 0))
	a.addTarget(far, false)

	if !a.searchTarget(model.StrategyNearest) {
		t.Fatal("fallback selection failed")
	}
	if m.ActiveTargetID != far.ObjectID() {
		t.Fatalf("ActiveTargetID = %d, want %d", m.ActiveTargetID, far.ObjectID())
	}
}

func TestSearchTargetStrategyDraw(t *testing.T) {
	tests := []struct {
		name string
		draw int32
		want model.TargetStrategy
	}{
		{"nearest band", 20, model.StrategyNearest},
		{"health band", 45, model.StrategyLowestHealth},
		{"damage band", 65, model.StrategyMostDamage},
		{"random catch-all", 95, model.StrategyRandom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := newTestContext(10, 10, tt.draw)
			arch := testArchetype()
			arch.StrategyWeight = model.StrategyWeights{Nearest: 40, Health: 10, Damage: 20, Random: 30}
			_, a := spawnTestMonster(ctx, arch, model.NewPosition(3, 3, 0))

			if got := a.drawStrategy(); got != tt.want {
				t.Errorf("draw %d resolved to %v, want %v", tt.draw, got, tt.want)
			}
		})
	}
}

func TestDisconnectedPlayerNotTargeted(t *testing.T) {
	ctx := newTestContext(10, 10)
	m, a := spawnTestMonster(ctx, testArchetype(), model.NewPosition(3, 3, 0))
	p := spawnTestPlayer(ctx, model.NewPosition(5, 5, 0))
	p.SetDisconnected(true)

	a.onCreatureFound(p, true)

	if m.TargetCount() != 0 {
		t.Fatalf("disconnected player was targeted, count = %d", m.TargetCount())
	}
}

func TestSummonKeepsFightingDisconnectedPlayer(t *testing.T) {
	ctx := newTestContext(10, 10)
	master, _ := spawnTestMonster(ctx, testArchetype(), model.NewPosition(3, 3, 0))
	summon, sa := spawnTestMonster(ctx, testArchetype(), model.NewPosition(4, 3, 0))
	summon.SetMasterID(master.ObjectID())
	p := spawnTestPlayer(ctx, model.NewPosition(5, 3, 0))
	p.SetDisconnected(true)

	sa.onCreatureFound(p, true)

	if !summon.HasTarget(p.ObjectID()) {
		t.Fatal("summon dropped its target on disconnect")
	}
}
