package model

import (
	"sync"
	"sync/atomic"
)

// Registry is the authoritative index of live creatures keyed by objectID.
// ObjectIDs are allocated from a monotonic counter and never reused, so a
// stored ID works as a weak reference: once the creature is removed the
// lookup simply fails and the holder prunes its entry.
type Registry struct {
	nextID  atomic.Uint32
	actors  sync.Map // objectID -> Actor
	players atomic.Int32
}

// NewRegistry creates an empty registry. IDs start above zero so that 0
// always means "no creature".
func NewRegistry() *Registry {
	r := &Registry{}
	r.nextID.Store(1)
	return r
}

// NextObjectID allocates a fresh, never-recycled objectID.
func (r *Registry) NextObjectID() uint32 {
	return r.nextID.Add(1)
}

// Add registers a creature.
func (r *Registry) Add(a Actor) {
	r.actors.Store(a.ObjectID(), a)
	if _, ok := a.(*Player); ok {
		r.players.Add(1)
	}
}

// Remove deletes a creature and marks it removed, so holders of its ID see
// the reference as dead even if they race the deletion.
func (r *Registry) Remove(id uint32) {
	if v, ok := r.actors.LoadAndDelete(id); ok {
		a := v.(Actor)
		a.SetRemoved()
		if _, isPlayer := a.(*Player); isPlayer {
			r.players.Add(-1)
		}
	}
}

// Get resolves an objectID to a live creature. Removed creatures resolve
// as absent.
func (r *Registry) Get(id uint32) (Actor, bool) {
	v, ok := r.actors.Load(id)
	if !ok {
		return nil, false
	}
	a := v.(Actor)
	if a.IsRemoved() {
		return nil, false
	}
	return a, true
}

// GetMonster resolves id when it refers to a live monster.
func (r *Registry) GetMonster(id uint32) (*Monster, bool) {
	a, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	m, ok := a.(*Monster)
	return m, ok
}

// GetPlayer resolves id when it refers to a live player.
func (r *Registry) GetPlayer(id uint32) (*Player, bool) {
	a, ok := r.Get(id)
	if !ok {
		return nil, false
	}
	p, ok := a.(*Player)
	return p, ok
}

// PlayerCount returns the number of registered players.
func (r *Registry) PlayerCount() int32 {
	return r.players.Load()
}

// Range calls fn for every live creature until fn returns false.
func (r *Registry) Range(fn func(a Actor) bool) {
	r.actors.Range(func(_, v any) bool {
		a := v.(Actor)
		if a.IsRemoved() {
			return true
		}
		return fn(a)
	})
}
