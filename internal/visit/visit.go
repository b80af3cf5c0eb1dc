// Package visit drives the operator workflow for one unit: pick the unit,
// work the checklist, adjust stock, leave notes, finalize.
package visit

import (
	"fmt"
	"time"

	"github.com/ptessari/turnkey/internal/checkoff"
	"github.com/ptessari/turnkey/internal/models"
	"github.com/ptessari/turnkey/internal/stock"
	"github.com/ptessari/turnkey/internal/store"
)

// Step is the workflow position. Transitions only move forward, except the
// single back edge from Checklist to Selecting.
type Step int

const (
	StepSelecting Step = iota + 1
	StepChecklist
	StepStock
	StepNotes
	StepDone
)

func (s Step) String() string {
	switch s {
	case StepSelecting:
		return "selecting"
	case StepChecklist:
		return "checklist"
	case StepStock:
		return "stock"
	case StepNotes:
		return "notes"
	case StepDone:
		return "done"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Visit is one operator's walk through a unit. It owns the session, the
// completion tracker and the stock buffer for the duration of the workflow.
type Visit struct {
	st         store.Store
	operatorID uint

	step         Step
	unit         *models.Unit
	session      *models.WorkSession
	checklist    []models.Assignment
	stockEntries []models.Assignment
	tracker      *checkoff.Tracker
	stock        *stock.Accumulator
	notes        string
}

// New starts a visit at the unit-selection step.
func New(st store.Store, operatorID uint) *Visit {
	return &Visit{st: st, operatorID: operatorID, step: StepSelecting}
}

// Step returns the current workflow position.
func (v *Visit) Step() Step { return v.step }

// Unit returns the selected unit, nil before selection.
func (v *Visit) Unit() *models.Unit { return v.unit }

// SessionID returns the open session id, zero before Begin.
func (v *Visit) SessionID() uint {
	if v.session == nil {
		return 0
	}
	return v.session.ID
}

// Checklist returns the unit's checklist assignments in flat order.
func (v *Visit) Checklist() []models.Assignment { return v.checklist }

// StockAssignments returns the unit's stock assignments, nil outside an
// active session. Quantities live in the accumulator, not here.
func (v *Visit) StockAssignments() []models.Assignment { return v.stockEntries }

// Tracker exposes the completion tracker, nil outside an active session.
func (v *Visit) Tracker() *checkoff.Tracker { return v.tracker }

// Stock exposes the quantity buffer, nil outside an active session.
func (v *Visit) Stock() *stock.Accumulator { return v.stock }

// SetNotes stores the free-text notes to be saved at finalize.
func (v *Visit) SetNotes(notes string) { v.notes = notes }

func (v *Visit) requireStep(want Step, op string) error {
	if v.step != want {
		return fmt.Errorf("visit: %s: step is %s, want %s: %w", op, v.step, want, store.ErrInvalid)
	}
	return nil
}

// SelectUnit picks the unit to work. Only valid while selecting.
func (v *Visit) SelectUnit(unit models.Unit) error {
	if err := v.requireStep(StepSelecting, "select unit"); err != nil {
		return err
	}
	v.unit = &unit
	return nil
}

// Begin opens the work session and moves to the checklist. It refuses to
// start against a unit with an empty checklist: there would be nothing to
// complete and the gate to the stock step could never open.
func (v *Visit) Begin() error {
	if err := v.requireStep(StepSelecting, "begin"); err != nil {
		return err
	}
	if v.unit == nil {
		return fmt.Errorf("visit: begin: no unit selected: %w", store.ErrInvalid)
	}

	checklist, err := v.st.Assignments(v.unit.ID, models.KindChecklist)
	if err != nil {
		return fmt.Errorf("visit: begin: %w", err)
	}
	if len(checklist) == 0 {
		return fmt.Errorf("visit: begin: unit %d has no checklist: %w", v.unit.ID, store.ErrInvalid)
	}
	stockAssignments, err := v.st.Assignments(v.unit.ID, models.KindStock)
	if err != nil {
		return fmt.Errorf("visit: begin: %w", err)
	}

	sess := &models.WorkSession{UnitID: v.unit.ID, OperatorID: v.operatorID}
	if err := v.st.CreateSession(sess); err != nil {
		return fmt.Errorf("visit: begin: %w", err)
	}
	tracker, err := checkoff.NewTracker(v.st, sess.ID, v.operatorID)
	if err != nil {
		return fmt.Errorf("visit: begin: %w", err)
	}

	v.session = sess
	v.checklist = checklist
	v.stockEntries = stockAssignments
	v.tracker = tracker
	v.stock = stock.NewAccumulator(stockAssignments)
	v.step = StepChecklist
	return nil
}

// Back abandons the checklist and returns to unit selection. The session
// stays open on the server; the orphan sweeper reaps it later. Local state
// is dropped so a new Begin starts clean.
func (v *Visit) Back() error {
	if err := v.requireStep(StepChecklist, "back"); err != nil {
		return err
	}
	v.session = nil
	v.checklist = nil
	v.stockEntries = nil
	v.tracker = nil
	v.stock = nil
	v.step = StepSelecting
	return nil
}

// AdvanceToStock moves to the stock step once every checklist item has a
// completion. Numeric values below the expected count still count: the item
// was looked at, the shortfall shows up on the dashboard instead.
func (v *Visit) AdvanceToStock() error {
	if err := v.requireStep(StepChecklist, "advance to stock"); err != nil {
		return err
	}
	if v.tracker.Count() < len(v.checklist) {
		return fmt.Errorf("visit: advance to stock: %d of %d items completed: %w",
			v.tracker.Count(), len(v.checklist), store.ErrInvalid)
	}
	v.step = StepStock
	return nil
}

// AdvanceToNotes moves to the notes step. Stock adjustments are optional.
func (v *Visit) AdvanceToNotes() error {
	if err := v.requireStep(StepStock, "advance to notes"); err != nil {
		return err
	}
	v.step = StepNotes
	return nil
}

// FinalizeResult reports what Finalize managed to do. When Success is false
// the visit stays at the notes step and Finalize can be called again; work
// already done is not repeated.
type FinalizeResult struct {
	QuantitiesCommitted int
	CommitErr           error
	SessionClosed       bool
	CloseErr            error
}

// Success reports whether every finalize sub-operation went through.
func (r FinalizeResult) Success() bool {
	return r.CommitErr == nil && r.CloseErr == nil
}

// Err returns the first failure, nil on success.
func (r FinalizeResult) Err() error {
	if r.CommitErr != nil {
		return r.CommitErr
	}
	return r.CloseErr
}

// Finalize commits buffered stock quantities in one batch, then closes the
// session with the notes. The visit reaches Done only when both succeed;
// otherwise it stays at Notes and the result says which half is pending.
func (v *Visit) Finalize() FinalizeResult {
	var res FinalizeResult
	if err := v.requireStep(StepNotes, "finalize"); err != nil {
		res.CommitErr = err
		return res
	}

	updates := v.stock.Updates()
	if len(updates) > 0 {
		if err := v.st.CommitQuantities(v.unit.ID, updates); err != nil {
			res.CommitErr = fmt.Errorf("visit: finalize: %w", err)
			return res
		}
		res.QuantitiesCommitted = len(updates)
		v.stock.Clear()
	}

	if err := v.st.CloseSession(v.session.ID, time.Now().UTC(), v.notes); err != nil {
		res.CloseErr = fmt.Errorf("visit: finalize: %w", err)
		return res
	}
	res.SessionClosed = true
	v.step = StepDone
	return res
}

// Reset returns a finished visit to unit selection for the next round.
func (v *Visit) Reset() error {
	if err := v.requireStep(StepDone, "reset"); err != nil {
		return err
	}
	v.unit = nil
	v.session = nil
	v.checklist = nil
	v.stockEntries = nil
	v.tracker = nil
	v.stock = nil
	v.notes = ""
	v.step = StepSelecting
	return nil
}
