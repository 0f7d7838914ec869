package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/otcraft/mobsim/internal/ai"
	"github.com/otcraft/mobsim/internal/config"
	"github.com/otcraft/mobsim/internal/db"
	"github.com/otcraft/mobsim/internal/flavor"
	"github.com/otcraft/mobsim/internal/model"
	"github.com/otcraft/mobsim/internal/pathfind"
	"github.com/otcraft/mobsim/internal/spawn"
	"github.com/otcraft/mobsim/internal/world"
)

const ConfigPath = "config/simserver.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("MOBSIM_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulation(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.SetDebugLogging(logLevel == slog.LevelDebug)

	slog.Info("mobsim starting",
		"log_level", cfg.LogLevel,
		"tick_interval", cfg.TickInterval)

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database migrations applied")

	registry := model.NewRegistry()
	worldMap := world.NewMap(registry)
	buildArena(worldMap, cfg.MapWidth, cfg.MapHeight)
	slog.Info("world built", "width", cfg.MapWidth, "height", cfg.MapHeight)

	seed := cfg.RandSeed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	rng := model.NewRand(seed, seed^0x9e3779b97f4a7c15)

	var flavorClient *flavor.Client
	if cfg.Flavor.Enabled {
		flavorClient = flavor.NewClient(cfg.Flavor)
	}

	aiCtx := &ai.Context{
		Map:           worldMap,
		Registry:      registry,
		Finder:        pathfind.NewFinder(worldMap),
		Rand:          rng,
		Events:        ai.NewEventQueue(),
		DespawnRadius: cfg.DespawnRadius,
	}
	if flavorClient != nil {
		aiCtx.Flavor = flavorClient
	}

	tickMgr := ai.NewTickManager(aiCtx, cfg.TickInterval)
	aiCtx.NotifyMoved = tickMgr.NotifyMoved

	archRepo := db.NewArchetypeRepository(database.Pool())
	spawnRepo := db.NewSpawnRepository(database.Pool())
	spawnMgr := spawn.NewManager(archRepo, spawnRepo, registry, worldMap, aiCtx, tickMgr, rng)
	respawnMgr := spawn.NewRespawnTaskManager(spawnMgr)

	aiCtx.SummonMonster = spawnMgr.SpawnSummon
	aiCtx.CastSpell = makeCastSpell(rng, tickMgr)
	tickMgr.DeathHandler = func(m *model.Monster) {
		spawnMgr.HandleDeath(m, respawnMgr)
	}

	if err := spawnMgr.LoadData(ctx); err != nil {
		return fmt.Errorf("loading spawn data: %w", err)
	}
	if err := spawnMgr.SpawnAll(); err != nil {
		return fmt.Errorf("spawning initial population: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := tickMgr.Start(gctx); err != nil {
			return fmt.Errorf("AI tick manager: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := respawnMgr.Start(gctx); err != nil {
			return fmt.Errorf("respawn task manager: %w", err)
		}
		return nil
	})

	if flavorClient != nil {
		g.Go(func() error {
			if err := flavorClient.Start(gctx); err != nil {
				return fmt.Errorf("flavor worker: %w", err)
			}
			return nil
		})
	}

	slog.Info("mobsim running", "monsters", spawnMgr.AliveCount())

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// makeCastSpell builds the ability application callback: draws the effect
// magnitude, applies it, records it in the caster's damage ledger and
// routes the hit notification to the victim's controller.
func makeCastSpell(rng model.Rand, tickMgr *ai.TickManager) func(*model.Monster, model.Actor, model.Ability) {
	return func(caster *model.Monster, target model.Actor, ab model.Ability) {
		amount := rng.Between(ab.MinValue, ab.MaxValue)
		if amount <= 0 {
			return
		}

		if target.ObjectID() == caster.ObjectID() {
			// Defense abilities aimed at self are restorative.
			target.ChangeHealth(amount)
			return
		}

		target.ChangeHealth(-amount)
		caster.Damage.Record(target.ObjectID(), int64(amount))

		if c, err := tickMgr.GetController(target.ObjectID()); err == nil {
			c.NotifyDamaged(caster.ObjectID(), amount)
		}
	}
}

// buildArena fills the map with an open walkable field enclosed by walls.
func buildArena(m *world.Map, width, height int32) {
	const floor = 7
	for x := int32(0); x < width; x++ {
		for y := int32(0); y < height; y++ {
			border := x == 0 || y == 0 || x == width-1 || y == height-1
			m.AddTile(&world.Tile{
				Position: model.NewPosition(x, y, floor),
				Walkable: !border,
			})
		}
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
