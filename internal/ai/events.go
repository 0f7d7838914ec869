package ai

import "sync"

// EventQueue holds deferred actions scheduled during a tick and run at the
// start of the next one, in FIFO order. Casting a spell that wants a
// follow-up validity check enqueues it here instead of re-entering the
// caster's own think step.
type EventQueue struct {
	mu     sync.Mutex
	events []func()
}

// NewEventQueue creates an empty queue.
func NewEventQueue() *EventQueue {
	return &EventQueue{}
}

// Push appends fn to the queue.
func (q *EventQueue) Push(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.events = append(q.events, fn)
}

// Drain runs every queued event in FIFO order. Events pushed while
// draining land in the next batch, not this one.
func (q *EventQueue) Drain() int {
	q.mu.Lock()
	batch := q.events
	q.events = nil
	q.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.events)
}
