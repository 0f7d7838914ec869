package spawn

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/otcraft/mobsim/internal/model"
)

// respawnTask is one scheduled repopulation of a spawn point.
type respawnTask struct {
	point model.SpawnPoint
	due   time.Time
}

// RespawnTaskManager brings dead monsters back on their spawn delay.
type RespawnTaskManager struct {
	spawns *Manager
	stopCh chan struct{}

	mu     sync.Mutex
	nextID int64
	tasks  map[int64]respawnTask
}

// NewRespawnTaskManager creates a respawn scheduler over spawns.
func NewRespawnTaskManager(spawns *Manager) *RespawnTaskManager {
	return &RespawnTaskManager{
		spawns: spawns,
		stopCh: make(chan struct{}),
		tasks:  make(map[int64]respawnTask),
	}
}

// Start runs the scheduler until ctx is canceled or Stop is called.
func (r *RespawnTaskManager) Start(ctx context.Context) error {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	slog.Info("respawn task manager started", "interval", "1s")

	for {
		select {
		case <-ctx.Done():
			slog.Info("respawn task manager stopping")
			return ctx.Err()

		case <-r.stopCh:
			slog.Info("respawn task manager stopped")
			return nil

		case now := <-ticker.C:
			r.processDue(now)
		}
	}
}

// Stop stops the scheduler.
func (r *RespawnTaskManager) Stop() {
	close(r.stopCh)
}

// Schedule queues a respawn of sp after its delay.
func (r *RespawnTaskManager) Schedule(sp model.SpawnPoint) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	r.tasks[r.nextID] = respawnTask{
		point: sp,
		due:   time.Now().Add(sp.RespawnDelay),
	}

	slog.Debug("respawn scheduled",
		"spawnID", sp.ID, "delay", sp.RespawnDelay)
}

// Pending returns the number of queued respawns.
func (r *RespawnTaskManager) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

func (r *RespawnTaskManager) processDue(now time.Time) {
	r.mu.Lock()
	var due []respawnTask
	for id, task := range r.tasks {
		if !task.due.After(now) {
			due = append(due, task)
			delete(r.tasks, id)
		}
	}
	r.mu.Unlock()

	// The actual spawn runs on the scheduler goroutine via the deferred
	// event queue; agent state is never touched from this one.
	for _, task := range due {
		point := task.point
		r.spawns.aiCtx.Events.Push(func() {
			if _, err := r.spawns.DoSpawn(point); err != nil {
				slog.Warn("respawn failed, rescheduling",
					"spawnID", point.ID, "error", err)
				r.Schedule(point)
			}
		})
	}
}
