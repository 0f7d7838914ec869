package ai

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/otcraft/mobsim/internal/model"
	"github.com/otcraft/mobsim/internal/world"
)

// TickManager owns the scheduler goroutine: it drains deferred events,
// applies flavor results, ticks every registered controller and sweeps
// the dead, in that order, once per interval.
type TickManager struct {
	ctx      *Context
	interval time.Duration

	controllers     sync.Map // objectID -> Controller
	controllerCount atomic.Int32

	stopCh chan struct{}

	// DeathHandler runs after a controller's OnDeath, on the scheduler
	// goroutine. The spawn layer hooks respawn scheduling here.
	DeathHandler func(m *model.Monster)
}

// NewTickManager creates a manager ticking controllers every interval.
func NewTickManager(ctx *Context, interval time.Duration) *TickManager {
	return &TickManager{
		ctx:      ctx,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Register adds a controller and starts it.
func (tm *TickManager) Register(objectID uint32, c Controller) {
	tm.controllers.Store(objectID, c)
	tm.controllerCount.Add(1)
	c.Start()

	slog.Debug("AI controller registered", "objectID", objectID)
}

// Unregister removes and stops a controller.
func (tm *TickManager) Unregister(objectID uint32) {
	value, ok := tm.controllers.LoadAndDelete(objectID)
	if !ok {
		return
	}
	tm.controllerCount.Add(-1)
	value.(Controller).Stop()

	slog.Debug("AI controller unregistered", "objectID", objectID)
}

// Start runs the tick loop until ctx is canceled or Stop is called.
func (tm *TickManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(tm.interval)
	defer ticker.Stop()

	slog.Info("AI tick manager started", "interval", tm.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("AI tick manager stopping")
			return ctx.Err()

		case <-tm.stopCh:
			slog.Info("AI tick manager stopped")
			return nil

		case now := <-ticker.C:
			tm.RunTick(now)
		}
	}
}

// Stop stops the tick loop.
func (tm *TickManager) Stop() {
	close(tm.stopCh)
}

// RunTick performs one full scheduler pass. Exposed so tests can drive
// simulated time without a ticker.
func (tm *TickManager) RunTick(now time.Time) {
	drained := tm.ctx.Events.Drain()
	tm.applyFlavorResults()

	count := 0
	tm.controllers.Range(func(_, value any) bool {
		value.(Controller).Tick(now, tm.interval)
		count++
		return true
	})

	tm.sweepDead()

	if count > 0 && DebugEnabled() {
		slog.Debug("AI tick completed", "controllers", count, "deferredEvents", drained)
	}
}

// applyFlavorResults hands completed flavor lines to their agents on the
// scheduler goroutine; the background worker never touches agent state.
func (tm *TickManager) applyFlavorResults() {
	if tm.ctx.Flavor == nil {
		return
	}
	for _, line := range tm.ctx.Flavor.Drain() {
		value, ok := tm.controllers.Load(line.ObjectID)
		if !ok {
			continue
		}
		if mc, ok := value.(*MonsterAI); ok {
			mc.SayLine(line.Text)
		}
	}
}

// sweepDead runs death processing for every controller whose monster hit
// zero health during this tick.
func (tm *TickManager) sweepDead() {
	var dead []uint32
	tm.controllers.Range(func(key, value any) bool {
		mc, ok := value.(*MonsterAI)
		if ok && mc.Monster().IsDead() && !mc.Monster().IsRemoved() {
			dead = append(dead, key.(uint32))
		}
		return true
	})

	for _, id := range dead {
		value, ok := tm.controllers.Load(id)
		if !ok {
			continue
		}
		mc := value.(*MonsterAI)
		m := mc.Monster()

		mc.OnDeath()
		tm.ctx.Map.RemoveCreature(m)
		tm.BroadcastDisappeared(m)
		tm.ctx.Registry.Remove(m.ObjectID())
		tm.Unregister(m.ObjectID())

		if tm.DeathHandler != nil {
			tm.DeathHandler(m)
		}
	}
}

// NotifyMoved fans a completed step out to agents near either end of it.
func (tm *TickManager) NotifyMoved(moved model.Actor, oldPos model.Position) {
	newPos := moved.Position()
	tm.controllers.Range(func(key, value any) bool {
		if key.(uint32) == moved.ObjectID() {
			return true
		}
		c := value.(Controller)
		if nearController(c, oldPos) || nearController(c, newPos) {
			c.NotifyCreatureMoved(moved, oldPos)
		}
		return true
	})
}

// BroadcastAppeared announces a creature entering the world to nearby
// agents.
func (tm *TickManager) BroadcastAppeared(a model.Actor) {
	pos := a.Position()
	tm.controllers.Range(func(key, value any) bool {
		if key.(uint32) == a.ObjectID() {
			return true
		}
		c := value.(Controller)
		if nearController(c, pos) {
			c.NotifyCreatureAppeared(a)
		}
		return true
	})
}

// BroadcastDisappeared announces a creature leaving the world.
func (tm *TickManager) BroadcastDisappeared(a model.Actor) {
	pos := a.Position()
	tm.controllers.Range(func(key, value any) bool {
		if key.(uint32) == a.ObjectID() {
			return true
		}
		c := value.(Controller)
		if nearController(c, pos) {
			c.NotifyCreatureDisappeared(a)
		}
		return true
	})
}

func nearController(c Controller, pos model.Position) bool {
	mc, ok := c.(*MonsterAI)
	if !ok {
		return true
	}
	mpos := mc.Monster().Position()
	return mpos.Z == pos.Z && mpos.ChebyshevDistance(pos) <= world.AwarenessRange
}

// Count returns the number of registered controllers.
func (tm *TickManager) Count() int {
	return int(tm.controllerCount.Load())
}

// GetController returns the controller for objectID.
func (tm *TickManager) GetController(objectID uint32) (Controller, error) {
	value, ok := tm.controllers.Load(objectID)
	if !ok {
		return nil, fmt.Errorf("controller not found for objectID %d", objectID)
	}
	return value.(Controller), nil
}
