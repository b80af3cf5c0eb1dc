// Package stock buffers quantity adjustments made during a visit. Nothing
// touches the database until the batch is committed at finalize.
package stock

import (
	"sort"

	"github.com/ptessari/turnkey/internal/models"
	"github.com/ptessari/turnkey/internal/store"
)

// Accumulator holds pending quantity edits for one unit's stock assignments,
// keyed by assignment id. The zero value is not usable; call NewAccumulator.
type Accumulator struct {
	assignments map[uint]models.Assignment
	pending     map[uint]int
}

// NewAccumulator seeds an accumulator with a unit's stock assignments.
func NewAccumulator(assignments []models.Assignment) *Accumulator {
	acc := &Accumulator{
		assignments: make(map[uint]models.Assignment, len(assignments)),
		pending:     make(map[uint]int),
	}
	for _, a := range assignments {
		if a.Kind == models.KindStock {
			acc.assignments[a.ID] = a
		}
	}
	return acc
}

// Quantity returns the effective quantity for an assignment: the pending
// value if one exists, else the persisted one. Unknown ids read as zero.
func (acc *Accumulator) Quantity(assignmentID uint) int {
	if q, ok := acc.pending[assignmentID]; ok {
		return q
	}
	if a, ok := acc.assignments[assignmentID]; ok {
		return a.Quantity
	}
	return 0
}

// Set records an absolute quantity, clamped at zero.
func (acc *Accumulator) Set(assignmentID uint, quantity int) {
	if _, ok := acc.assignments[assignmentID]; !ok {
		return
	}
	if quantity < 0 {
		quantity = 0
	}
	acc.pending[assignmentID] = quantity
}

// Increment bumps the effective quantity by one.
func (acc *Accumulator) Increment(assignmentID uint) {
	acc.Set(assignmentID, acc.Quantity(assignmentID)+1)
}

// Decrement lowers the effective quantity by one, never below zero.
func (acc *Accumulator) Decrement(assignmentID uint) {
	acc.Set(assignmentID, acc.Quantity(assignmentID)-1)
}

// LowStock reports whether an assignment's effective quantity is at or below
// its minimum. Sitting exactly at the minimum already counts as low.
func (acc *Accumulator) LowStock(assignmentID uint) bool {
	a, ok := acc.assignments[assignmentID]
	if !ok {
		return false
	}
	return acc.Quantity(assignmentID) <= a.MinQuantity
}

// Dirty reports whether any quantity differs from its persisted value.
func (acc *Accumulator) Dirty() bool {
	return len(acc.Updates()) > 0
}

// Updates returns the touched quantities as a batch for the store, in
// ascending assignment id order. Entries whose pending value matches the
// persisted one are dropped.
func (acc *Accumulator) Updates() []store.QuantityUpdate {
	var updates []store.QuantityUpdate
	for id, q := range acc.pending {
		if acc.assignments[id].Quantity == q {
			continue
		}
		updates = append(updates, store.QuantityUpdate{AssignmentID: id, Quantity: q})
	}
	sort.Slice(updates, func(i, j int) bool {
		return updates[i].AssignmentID < updates[j].AssignmentID
	})
	return updates
}

// Clear drops all pending edits, typically after a successful commit.
func (acc *Accumulator) Clear() {
	acc.pending = make(map[uint]int)
}
