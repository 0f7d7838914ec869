package spawn

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/otcraft/mobsim/internal/ai"
	"github.com/otcraft/mobsim/internal/model"
	"github.com/otcraft/mobsim/internal/world"
)

// ArchetypeRepository loads monster archetypes.
type ArchetypeRepository interface {
	LoadAll(ctx context.Context) ([]*model.Archetype, error)
}

// SpawnRepository loads spawn points.
type SpawnRepository interface {
	LoadAll(ctx context.Context) ([]model.SpawnPoint, error)
}

// Manager owns monster population: initial spawns, summons, death
// handling and respawn scheduling.
type Manager struct {
	archRepo  ArchetypeRepository
	spawnRepo SpawnRepository
	registry  *model.Registry
	worldMap  *world.Map
	aiCtx     *ai.Context
	ticks     *ai.TickManager
	rand      model.Rand

	archetypes map[int32]*model.Archetype

	mu          sync.Mutex
	spawnPoints map[int32]model.SpawnPoint
	spawnedFrom map[uint32]int32 // objectID -> spawn point ID

	aliveCount atomic.Int32
}

// NewManager creates a spawn manager. LoadData must run before the first
// DoSpawn.
func NewManager(
	archRepo ArchetypeRepository,
	spawnRepo SpawnRepository,
	registry *model.Registry,
	worldMap *world.Map,
	aiCtx *ai.Context,
	ticks *ai.TickManager,
	rand model.Rand,
) *Manager {
	return &Manager{
		archRepo:    archRepo,
		spawnRepo:   spawnRepo,
		registry:    registry,
		worldMap:    worldMap,
		aiCtx:       aiCtx,
		ticks:       ticks,
		rand:        rand,
		archetypes:  make(map[int32]*model.Archetype),
		spawnPoints: make(map[int32]model.SpawnPoint),
		spawnedFrom: make(map[uint32]int32),
	}
}

// LoadData loads archetypes and spawn points from the repositories.
func (m *Manager) LoadData(ctx context.Context) error {
	archetypes, err := m.archRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading archetypes: %w", err)
	}
	for _, arch := range archetypes {
		m.archetypes[arch.ID] = arch
	}

	points, err := m.spawnRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("loading spawn points: %w", err)
	}
	m.mu.Lock()
	for _, sp := range points {
		m.spawnPoints[sp.ID] = sp
	}
	m.mu.Unlock()

	slog.Info("spawn data loaded", "archetypes", len(archetypes), "spawnPoints", len(points))
	return nil
}

// Archetype returns a loaded archetype by ID.
func (m *Manager) Archetype(id int32) (*model.Archetype, bool) {
	arch, ok := m.archetypes[id]
	return arch, ok
}

// SpawnAll performs the initial population pass over every spawn point.
func (m *Manager) SpawnAll() error {
	m.mu.Lock()
	points := make([]model.SpawnPoint, 0, len(m.spawnPoints))
	for _, sp := range m.spawnPoints {
		points = append(points, sp)
	}
	m.mu.Unlock()

	spawned := 0
	for _, sp := range points {
		if _, err := m.DoSpawn(sp); err != nil {
			slog.Warn("spawn failed", "spawnID", sp.ID, "error", err)
			continue
		}
		spawned++
	}
	slog.Info("initial population spawned", "monsters", spawned)
	return nil
}

// DoSpawn creates a monster at the given spawn point and registers its
// controller.
func (m *Manager) DoSpawn(sp model.SpawnPoint) (*model.Monster, error) {
	arch, ok := m.archetypes[sp.ArchetypeID]
	if !ok {
		return nil, fmt.Errorf("spawn %d references unknown archetype %d", sp.ID, sp.ArchetypeID)
	}

	pos := sp.Position
	if sp.Radius > 0 {
		pos = sp.RandomizedPosition(
			m.rand.Between(-sp.Radius, sp.Radius),
			m.rand.Between(-sp.Radius, sp.Radius),
		)
	}

	monster := model.NewMonster(m.registry.NextObjectID(), arch, pos)
	monster.SpawnPos = sp.Position
	if err := m.worldMap.PlaceCreature(monster, pos, false); err != nil {
		return nil, fmt.Errorf("spawning %s: %w", arch.Name, err)
	}

	m.registry.Add(monster)
	m.mu.Lock()
	m.spawnedFrom[monster.ObjectID()] = sp.ID
	m.mu.Unlock()
	m.aliveCount.Add(1)

	m.ticks.Register(monster.ObjectID(), ai.NewMonsterAI(m.aiCtx, monster))
	m.ticks.BroadcastAppeared(monster)

	slog.Debug("monster spawned",
		"objectID", monster.ObjectID(), "name", monster.Name(),
		"spawnID", sp.ID, "position", pos)
	return monster, nil
}

// SpawnSummon raises a summon for master near its position. Wired as the
// ai.Context summon callback.
func (m *Manager) SpawnSummon(master *model.Monster, spec model.SummonSpec) (*model.Monster, error) {
	arch, ok := m.archetypes[spec.ArchetypeID]
	if !ok {
		return nil, fmt.Errorf("summon %q references unknown archetype %d", spec.Name, spec.ArchetypeID)
	}

	pos, found := m.worldMap.FreeTileNear(master.Position())
	if !found {
		if !spec.Force {
			return nil, fmt.Errorf("no free tile near %v for summon %q", master.Position(), spec.Name)
		}
		pos = master.Position()
	}

	summon := model.NewMonster(m.registry.NextObjectID(), arch, pos)
	summon.SetMasterID(master.ObjectID())
	summon.SpawnPos = master.SpawnPos
	if err := m.worldMap.PlaceCreature(summon, pos, spec.Force); err != nil {
		return nil, fmt.Errorf("placing summon %q: %w", spec.Name, err)
	}

	m.registry.Add(summon)
	m.aliveCount.Add(1)
	m.ticks.Register(summon.ObjectID(), ai.NewMonsterAI(m.aiCtx, summon))
	m.ticks.BroadcastAppeared(summon)
	return summon, nil
}

// HandleDeath is the TickManager death hook: summons vanish for good,
// spawned monsters come back after their point's respawn delay.
func (m *Manager) HandleDeath(monster *model.Monster, respawns *RespawnTaskManager) {
	m.aliveCount.Add(-1)

	m.mu.Lock()
	spawnID, fromSpawn := m.spawnedFrom[monster.ObjectID()]
	delete(m.spawnedFrom, monster.ObjectID())
	sp, haveSpawn := m.spawnPoints[spawnID]
	m.mu.Unlock()

	if !fromSpawn || !haveSpawn {
		return
	}
	respawns.Schedule(sp)
}

// AliveCount returns the current monster population.
func (m *Manager) AliveCount() int32 {
	return m.aliveCount.Load()
}
