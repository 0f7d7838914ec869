package ai

import (
	"testing"
	"time"

	"github.com/otcraft/mobsim/internal/model"
)

// fakeFlavor records dialogue requests and hands back whatever lines the
// test queued, standing in for the background flavor worker.
type fakeFlavor struct {
	requests []string
	queued   []FlavorLine
}

func (f *fakeFlavor) Request(_ uint32, description string) bool {
	f.requests = append(f.requests, description)
	return true
}

func (f *fakeFlavor) Drain() []FlavorLine {
	out := f.queued
	f.queued = nil
	return out
}

func TestYellCadence(t *testing.T) {
	arch := testArchetype()
	arch.Voices = []model.Voice{{Text: "Grrr!", Yell: true}}
	arch.YellSpeed = 2000
	arch.YellChance = 100
	ctx := newTestContext(10, 10)
	var said []string
	ctx.Say = func(_ *model.Monster, text string, _ bool) { said = append(said, text) }
	_, a := spawnTestMonster(ctx, arch, model.NewPosition(3, 3, 0))

	// 8 rounds of 500ms = 4s; a 2s cadence with chance 100 yells exactly
	// once per window.
	for i := 0; i < 8; i++ {
		a.onThinkYell(500)
	}
	if len(said) != 2 {
		t.Fatalf("yelled %d times over 4s, want 2 (once per 2s window)", len(said))
	}
	if said[0] != "Grrr!" {
		t.Fatalf("said %q, want the archetype voice line", said[0])
	}
}

func TestYellChanceGate(t *testing.T) {
	arch := testArchetype()
	arch.Voices = []model.Voice{{Text: "Grrr!"}}
	arch.YellSpeed = 1000
	arch.YellChance = 0
	ctx := newTestContext(10, 10)
	var said []string
	ctx.Say = func(_ *model.Monster, text string, _ bool) { said = append(said, text) }
	_, a := spawnTestMonster(ctx, arch, model.NewPosition(3, 3, 0))

	for i := 0; i < 8; i++ {
		a.onThinkYell(500)
	}
	if len(said) != 0 {
		t.Fatalf("zero-chance archetype yelled %d times", len(said))
	}
}

func TestYellRoutedToFlavorService(t *testing.T) {
	arch := testArchetype()
	arch.UseFlavorText = true
	arch.Description = "a mangy test wolf"
	arch.Voices = []model.Voice{{Text: "Grrr!"}}
	arch.YellSpeed = 1000
	arch.YellChance = 100
	ctx := newTestContext(10, 10)
	flavor := &fakeFlavor{}
	ctx.Flavor = flavor
	var said []string
	ctx.Say = func(_ *model.Monster, text string, _ bool) { said = append(said, text) }
	_, a := spawnTestMonster(ctx, arch, model.NewPosition(3, 3, 0))

	a.onThinkYell(500)
	a.onThinkYell(500)

	if len(flavor.requests) != 1 {
		t.Fatalf("flavor service got %d requests, want 1", len(flavor.requests))
	}
	if flavor.requests[0] != "a mangy test wolf" {
		t.Fatalf("flavor request carried %q, want the archetype description", flavor.requests[0])
	}
	if len(said) != 0 {
		t.Fatal("flavor-text archetype voiced a canned line instead of waiting")
	}
}

func TestFlavorLineAppliedOnTick(t *testing.T) {
	ctx := newTestContext(10, 10)
	flavor := &fakeFlavor{}
	ctx.Flavor = flavor
	var said []string
	ctx.Say = func(_ *model.Monster, text string, _ bool) { said = append(said, text) }

	tm := NewTickManager(ctx, 500*time.Millisecond)
	m, a := spawnTestMonster(ctx, testArchetype(), model.NewPosition(3, 3, 0))
	tm.Register(m.ObjectID(), a)

	// One line for the monster, one for an agent that no longer exists.
	flavor.queued = []FlavorLine{
		{ObjectID: m.ObjectID(), Text: "I smell fear."},
		{ObjectID: 9999, Text: "lost line"},
	}
	tm.RunTick(time.UnixMilli(1_000_000))

	if len(said) != 1 || said[0] != "I smell fear." {
		t.Fatalf("said = %v, want the drained flavor line only", said)
	}
}
