package ai

import (
	"time"

	"github.com/otcraft/mobsim/internal/model"
)

// Controller drives one agent. Tick is called by the TickManager on the
// scheduler goroutine; all notifications arrive on that same goroutine,
// so controller-owned state needs no locking.
type Controller interface {
	// Start activates the controller.
	Start()

	// Stop deactivates the controller; further ticks are no-ops.
	Stop()

	// Tick performs one think step for the elapsed interval.
	Tick(now time.Time, interval time.Duration)

	// NotifyCreatureAppeared reports a creature entering the viewport.
	NotifyCreatureAppeared(other model.Actor)

	// NotifyCreatureDisappeared reports a creature leaving the world or
	// the viewport.
	NotifyCreatureDisappeared(other model.Actor)

	// NotifyCreatureMoved reports a creature stepping from oldPos.
	NotifyCreatureMoved(other model.Actor, oldPos model.Position)

	// NotifyDamaged reports damage taken from attackerID.
	NotifyDamaged(attackerID uint32, amount int32)

	// OnDeath runs death cleanup for the controlled agent.
	OnDeath()
}
