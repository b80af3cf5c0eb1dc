// Package store defines the persistence contract the visit workflow and the
// ordering engine run against, plus its GORM implementation.
package store

import (
	"errors"
	"time"

	"github.com/ptessari/turnkey/internal/models"
)

// Sentinel errors. Callers classify store failures with errors.Is; anything
// not wrapping one of these is a transport-level failure and is retryable.
var (
	// ErrNotFound marks operations that referenced a missing record.
	ErrNotFound = errors.New("not found")
	// ErrInvalid marks operations rejected before touching the database.
	ErrInvalid = errors.New("invalid")
)

// OrderUpdate assigns a new flat position to one checklist assignment.
type OrderUpdate struct {
	AssignmentID uint
	Order        int
}

// QuantityUpdate sets the on-hand quantity of one stock assignment.
type QuantityUpdate struct {
	AssignmentID uint
	Quantity     int
}

// CompletionFilter narrows Completions queries. Zero fields are ignored.
type CompletionFilter struct {
	ItemID     uint
	OperatorID uint
	SessionID  uint
	UnitID     uint
	Limit      int
}

// Store is the persistence surface for visits, ordering and stock. Reorder
// and CommitQuantities are transactional batches: either every row in the
// batch is written or none is.
type Store interface {
	Properties() ([]models.Property, error)
	Units(propertyID uint) ([]models.Unit, error)

	Assignments(unitID uint, kind string) ([]models.Assignment, error)
	Reorder(unitID uint, updates []OrderUpdate) error
	CommitQuantities(unitID uint, updates []QuantityUpdate) error

	CreateCompletion(c *models.Completion) error
	DeleteCompletion(id uint) error
	Completions(f CompletionFilter) ([]models.Completion, error)

	CreateSession(s *models.WorkSession) error
	Session(id uint) (models.WorkSession, error)
	CloseSession(id uint, endTime time.Time, notes string) error
}
