package ai

import (
	"log/slog"

	"github.com/otcraft/mobsim/internal/model"
	"github.com/otcraft/mobsim/internal/pathfind"
	"github.com/otcraft/mobsim/internal/world"
)

// FlavorLine is a completed flavor-text result handed back to the tick
// thread.
type FlavorLine struct {
	ObjectID uint32
	Text     string
}

// FlavorSource produces monster dialogue off-thread. Request never blocks;
// results come back later through Drain, called on the tick thread.
type FlavorSource interface {
	Request(objectID uint32, description string) bool
	Drain() []FlavorLine
}

// Hooks are optional scripting overrides. A hook returning true
// short-circuits the default behavior for that event.
type Hooks struct {
	OnAppear    func(m *model.Monster, other model.Actor) bool
	OnDisappear func(m *model.Monster, other model.Actor) bool
	OnMove      func(m *model.Monster, other model.Actor, oldPos model.Position) bool
	OnSay       func(m *model.Monster, text string, yell bool) bool
	OnAttacked  func(m *model.Monster, attacker *model.Player) bool
	OnSpawn     func(m *model.Monster)
	OnThink     func(m *model.Monster) bool
}

// Context bundles everything a monster agent consumes during its think
// step. One shared instance is built at wiring time; agents never reach
// for globals.
type Context struct {
	Map      *world.Map
	Registry *model.Registry
	Finder   *pathfind.Finder
	Rand     model.Rand
	Events   *EventQueue
	Flavor   FlavorSource // nil disables flavor text

	// DespawnRadius leashes monsters to their spawn anchor, in tiles.
	// 0 disables the leash.
	DespawnRadius int32

	// CastSpell applies an ability from caster against target. Damage
	// bookkeeping and death detection live behind this callback.
	CastSpell func(caster *model.Monster, target model.Actor, ab model.Ability)

	// SummonMonster raises a new summon bound to master. Returns the new
	// monster, or an error when placement failed.
	SummonMonster func(master *model.Monster, spec model.SummonSpec) (*model.Monster, error)

	// Say voices a line. nil falls back to logging.
	Say func(m *model.Monster, text string, yell bool)

	// NotifyMoved fans a completed step out to nearby agents.
	NotifyMoved func(moved model.Actor, oldPos model.Position)

	Hooks Hooks
}

func (c *Context) say(m *model.Monster, text string, yell bool) {
	if c.Hooks.OnSay != nil && c.Hooks.OnSay(m, text, yell) {
		return
	}
	if c.Say != nil {
		c.Say(m, text, yell)
		return
	}
	slog.Info("monster says", "objectID", m.ObjectID(), "name", m.Name(), "text", text, "yell", yell)
}
