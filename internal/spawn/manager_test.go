package spawn

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/otcraft/mobsim/internal/ai"
	"github.com/otcraft/mobsim/internal/model"
	"github.com/otcraft/mobsim/internal/pathfind"
	"github.com/otcraft/mobsim/internal/world"
)

type memArchRepo struct{ archetypes []*model.Archetype }

func (r *memArchRepo) LoadAll(context.Context) ([]*model.Archetype, error) {
	return r.archetypes, nil
}

type memSpawnRepo struct{ points []model.SpawnPoint }

func (r *memSpawnRepo) LoadAll(context.Context) ([]model.SpawnPoint, error) {
	return r.points, nil
}

type testEnv struct {
	manager  *Manager
	respawns *RespawnTaskManager
	ticks    *ai.TickManager
	registry *model.Registry
	aiCtx    *ai.Context
}

func newTestEnv(t *testing.T, points ...model.SpawnPoint) *testEnv {
	t.Helper()

	registry := model.NewRegistry()
	worldMap := world.NewMap(registry)
	for x := int32(0); x < 30; x++ {
		for y := int32(0); y < 30; y++ {
			border := x == 0 || y == 0 || x == 29 || y == 29
			worldMap.AddTile(&world.Tile{
				Position: model.NewPosition(x, y, 7),
				Walkable: !border,
			})
		}
	}

	aiCtx := &ai.Context{
		Map:      worldMap,
		Registry: registry,
		Finder:   pathfind.NewFinder(worldMap),
		Rand:     model.NewRand(7, 11),
		Events:   ai.NewEventQueue(),
	}
	ticks := ai.NewTickManager(aiCtx, 500*time.Millisecond)

	archRepo := &memArchRepo{archetypes: []*model.Archetype{
		{ID: 1, Name: "test wolf", HealthMax: 100, BaseSpeed: 100, TargetDistance: 1, Hostile: true},
		{ID: 2, Name: "wolf pup", HealthMax: 30, BaseSpeed: 100, TargetDistance: 1, Hostile: true},
	}}
	spawnRepo := &memSpawnRepo{points: points}

	manager := NewManager(archRepo, spawnRepo, registry, worldMap, aiCtx, ticks, aiCtx.Rand)
	respawns := NewRespawnTaskManager(manager)

	aiCtx.SummonMonster = manager.SpawnSummon
	ticks.DeathHandler = func(m *model.Monster) { manager.HandleDeath(m, respawns) }

	require.NoError(t, manager.LoadData(context.Background()))
	return &testEnv{
		manager:  manager,
		respawns: respawns,
		ticks:    ticks,
		registry: registry,
		aiCtx:    aiCtx,
	}
}

func testSpawnPoint() model.SpawnPoint {
	return model.SpawnPoint{
		ID:           1,
		ArchetypeID:  1,
		Position:     model.NewPosition(10, 10, 7),
		RespawnDelay: 0,
	}
}

func TestDoSpawnRegistersController(t *testing.T) {
	env := newTestEnv(t, testSpawnPoint())

	monster, err := env.manager.DoSpawn(testSpawnPoint())
	require.NoError(t, err)

	_, ok := env.registry.GetMonster(monster.ObjectID())
	assert.True(t, ok)
	assert.Equal(t, 1, env.ticks.Count())
	assert.Equal(t, int32(1), env.manager.AliveCount())
	assert.Equal(t, model.NewPosition(10, 10, 7), monster.SpawnPos,
		"anchor is the spawn point, not the randomized tile")
}

func TestDoSpawnRandomizesWithinRadius(t *testing.T) {
	env := newTestEnv(t)
	sp := testSpawnPoint()
	sp.Radius = 3

	for i := 0; i < 5; i++ {
		monster, err := env.manager.DoSpawn(sp)
		require.NoError(t, err)
		dist := monster.Position().ChebyshevDistance(sp.Position)
		// Neighbor fallback on a taken tile can add one more step.
		assert.LessOrEqual(t, dist, sp.Radius+1)
	}
}

func TestDoSpawnUnknownArchetype(t *testing.T) {
	env := newTestEnv(t)
	sp := testSpawnPoint()
	sp.ArchetypeID = 99

	_, err := env.manager.DoSpawn(sp)
	assert.Error(t, err)
	assert.Zero(t, env.ticks.Count())
}

func TestSpawnSummonBindsMaster(t *testing.T) {
	env := newTestEnv(t)
	master, err := env.manager.DoSpawn(testSpawnPoint())
	require.NoError(t, err)

	summon, err := env.manager.SpawnSummon(master, model.SummonSpec{
		ArchetypeID: 2, Name: "wolf pup", Speed: 2000, Chance: 100, Max: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, master.ObjectID(), summon.MasterID())
	assert.True(t, summon.IsSummon())
	assert.Equal(t, master.SpawnPos, summon.SpawnPos, "summon shares its master's anchor")
	assert.LessOrEqual(t, summon.Position().ChebyshevDistance(master.Position()), int32(1))
	assert.Equal(t, 2, env.ticks.Count())
}

func TestSpawnSummonUnknownArchetype(t *testing.T) {
	env := newTestEnv(t)
	master, err := env.manager.DoSpawn(testSpawnPoint())
	require.NoError(t, err)

	_, err = env.manager.SpawnSummon(master, model.SummonSpec{ArchetypeID: 99, Name: "ghost"})
	assert.Error(t, err)
}

func TestHandleDeathSchedulesRespawn(t *testing.T) {
	env := newTestEnv(t, testSpawnPoint())
	monster, err := env.manager.DoSpawn(testSpawnPoint())
	require.NoError(t, err)

	monster.ChangeHealth(-monster.Health())
	env.ticks.RunTick(time.Now())

	assert.Equal(t, int32(0), env.manager.AliveCount())
	assert.Equal(t, 1, env.respawns.Pending())
	assert.Zero(t, env.ticks.Count())
	_, ok := env.registry.Get(monster.ObjectID())
	assert.False(t, ok)
}

func TestHandleDeathSummonDoesNotRespawn(t *testing.T) {
	env := newTestEnv(t, testSpawnPoint())
	master, err := env.manager.DoSpawn(testSpawnPoint())
	require.NoError(t, err)
	summon, err := env.manager.SpawnSummon(master, model.SummonSpec{
		ArchetypeID: 2, Name: "wolf pup",
	})
	require.NoError(t, err)

	summon.ChangeHealth(-summon.Health())
	env.ticks.RunTick(time.Now())

	assert.Zero(t, env.respawns.Pending(), "summons vanish for good")
	assert.Equal(t, int32(1), env.manager.AliveCount())
}

func TestRespawnRunsOnSchedulerGoroutine(t *testing.T) {
	env := newTestEnv(t, testSpawnPoint())

	env.respawns.Schedule(testSpawnPoint())
	env.respawns.processDue(time.Now().Add(time.Second))

	// The due task only queued the spawn; it has not happened yet.
	assert.Zero(t, env.respawns.Pending())
	assert.Equal(t, int32(0), env.manager.AliveCount())
	assert.Equal(t, 1, env.aiCtx.Events.Len())

	env.ticks.RunTick(time.Now())
	assert.Equal(t, int32(1), env.manager.AliveCount())
	assert.Equal(t, 1, env.ticks.Count())
}

func TestSpawnAll(t *testing.T) {
	env := newTestEnv(t,
		model.SpawnPoint{ID: 1, ArchetypeID: 1, Position: model.NewPosition(5, 5, 7)},
		model.SpawnPoint{ID: 2, ArchetypeID: 2, Position: model.NewPosition(20, 20, 7)},
	)

	require.NoError(t, env.manager.SpawnAll())
	assert.Equal(t, int32(2), env.manager.AliveCount())
	assert.Equal(t, 2, env.ticks.Count())
}
