package model

// DamageLedger tracks how much damage this monster has dealt to each
// attacker it knows about. Owned by a single monster's agent goroutine,
// so no locking: all access happens on the tick thread.
type DamageLedger struct {
	dealt map[uint32]int64
}

// NewDamageLedger creates an empty ledger.
func NewDamageLedger() *DamageLedger {
	return &DamageLedger{dealt: make(map[uint32]int64)}
}

// Record adds amount to the total dealt to the given creature.
func (l *DamageLedger) Record(objectID uint32, amount int64) {
	if amount <= 0 {
		return
	}
	l.dealt[objectID] += amount
}

// Dealt returns the total damage dealt to the given creature.
func (l *DamageLedger) Dealt(objectID uint32) int64 {
	return l.dealt[objectID]
}

// Forget drops the entry for a creature that left the monster's awareness.
func (l *DamageLedger) Forget(objectID uint32) {
	delete(l.dealt, objectID)
}

// Reset clears all entries.
func (l *DamageLedger) Reset() {
	clear(l.dealt)
}
