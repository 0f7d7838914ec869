package ai

import "testing"

func TestEventQueueFIFO(t *testing.T) {
	q := NewEventQueue()
	var order []int
	for i := 0; i < 5; i++ {
		i := i
		q.Push(func() { order = append(order, i) })
	}

	if got := q.Drain(); got != 5 {
		t.Fatalf("drained %d events, want 5", got)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("event order %v is not FIFO", order)
		}
	}
}

func TestEventQueueDeferredDuringDrain(t *testing.T) {
	q := NewEventQueue()
	ran := false
	q.Push(func() {
		q.Push(func() { ran = true })
	})

	q.Drain()
	if ran {
		t.Fatal("event pushed during drain ran in the same batch")
	}
	if q.Len() != 1 {
		t.Fatalf("pending events = %d, want 1", q.Len())
	}

	q.Drain()
	if !ran {
		t.Fatal("deferred event never ran")
	}
}
