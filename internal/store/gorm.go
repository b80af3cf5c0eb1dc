package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/ptessari/turnkey/internal/models"
	"gorm.io/gorm"
)

// DB is the GORM-backed Store.
type DB struct {
	db *gorm.DB
}

// New wraps a GORM handle in a Store.
func New(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Properties returns all active properties ordered by name.
func (s *DB) Properties() ([]models.Property, error) {
	var props []models.Property
	if err := s.db.Where("active = ?", true).Order("name").Find(&props).Error; err != nil {
		return nil, fmt.Errorf("store: list properties: %w", err)
	}
	return props, nil
}

// Units returns the active units of a property ordered by name.
func (s *DB) Units(propertyID uint) ([]models.Unit, error) {
	var units []models.Unit
	err := s.db.Where("property_id = ? AND active = ?", propertyID, true).
		Order("name").Find(&units).Error
	if err != nil {
		return nil, fmt.Errorf("store: list units of property %d: %w", propertyID, err)
	}
	return units, nil
}

// Assignments returns a unit's assignments of the given kind with their
// items preloaded, checklist assignments in persisted flat order.
func (s *DB) Assignments(unitID uint, kind string) ([]models.Assignment, error) {
	var assignments []models.Assignment
	err := s.db.Preload("Item").
		Where("unit_id = ? AND kind = ?", unitID, kind).
		Order("sort_order, id").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("store: assignments for unit %d: %w", unitID, err)
	}
	return assignments, nil
}

// Reorder writes a batch of flat positions in one transaction. Every update
// must reference a checklist assignment of the unit or the whole batch is
// rolled back.
func (s *DB) Reorder(unitID uint, updates []OrderUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	ids := make([]uint, len(updates))
	for i, u := range updates {
		if u.Order < 0 {
			return fmt.Errorf("store: reorder: negative order %d for assignment %d: %w", u.Order, u.AssignmentID, ErrInvalid)
		}
		ids[i] = u.AssignmentID
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Assignment{}).
			Where("unit_id = ? AND kind = ? AND id IN ?", unitID, models.KindChecklist, ids).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return fmt.Errorf("%d of %d assignments not in unit %d: %w", int64(len(ids))-count, len(ids), unitID, ErrNotFound)
		}
		for _, u := range updates {
			err := tx.Model(&models.Assignment{}).
				Where("id = ?", u.AssignmentID).
				Update("sort_order", u.Order).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: reorder unit %d: %w", unitID, err)
	}
	return nil
}

// CommitQuantities writes a batch of stock quantities in one transaction.
func (s *DB) CommitQuantities(unitID uint, updates []QuantityUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	ids := make([]uint, len(updates))
	for i, u := range updates {
		if u.Quantity < 0 {
			return fmt.Errorf("store: commit quantities: negative quantity %d for assignment %d: %w", u.Quantity, u.AssignmentID, ErrInvalid)
		}
		ids[i] = u.AssignmentID
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.Assignment{}).
			Where("unit_id = ? AND kind = ? AND id IN ?", unitID, models.KindStock, ids).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count != int64(len(ids)) {
			return fmt.Errorf("%d of %d assignments not in unit %d: %w", int64(len(ids))-count, len(ids), unitID, ErrNotFound)
		}
		for _, u := range updates {
			err := tx.Model(&models.Assignment{}).
				Where("id = ?", u.AssignmentID).
				Update("quantity", u.Quantity).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("store: commit quantities for unit %d: %w", unitID, err)
	}
	return nil
}

// CreateCompletion inserts a completion, stamping CompletedAt if unset.
func (s *DB) CreateCompletion(c *models.Completion) error {
	if c.ItemID == 0 {
		return fmt.Errorf("store: create completion: item id is required: %w", ErrInvalid)
	}
	if c.CompletedAt.IsZero() {
		c.CompletedAt = time.Now().UTC()
	}
	if err := s.db.Create(c).Error; err != nil {
		return fmt.Errorf("store: create completion for item %d: %w", c.ItemID, err)
	}
	return nil
}

// DeleteCompletion removes a completion by id.
func (s *DB) DeleteCompletion(id uint) error {
	result := s.db.Delete(&models.Completion{}, id)
	if result.Error != nil {
		return fmt.Errorf("store: delete completion %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("store: delete completion %d: %w", id, ErrNotFound)
	}
	return nil
}

// Completions returns completions matching the filter, most recent first.
// The UnitID filter matches completions recorded in any session of the unit.
func (s *DB) Completions(f CompletionFilter) ([]models.Completion, error) {
	q := s.db.Model(&models.Completion{})
	if f.ItemID != 0 {
		q = q.Where("item_id = ?", f.ItemID)
	}
	if f.OperatorID != 0 {
		q = q.Where("operator_id = ?", f.OperatorID)
	}
	if f.SessionID != 0 {
		q = q.Where("session_id = ?", f.SessionID)
	}
	if f.UnitID != 0 {
		q = q.Where("session_id IN (?)",
			s.db.Model(&models.WorkSession{}).Select("id").Where("unit_id = ?", f.UnitID))
	}
	q = q.Order("completed_at DESC, id DESC")
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	var completions []models.Completion
	if err := q.Find(&completions).Error; err != nil {
		return nil, fmt.Errorf("store: list completions: %w", err)
	}
	return completions, nil
}

// CreateSession inserts a work session, stamping StartTime if unset.
func (s *DB) CreateSession(sess *models.WorkSession) error {
	if sess.UnitID == 0 || sess.OperatorID == 0 {
		return fmt.Errorf("store: create session: unit and operator are required: %w", ErrInvalid)
	}
	if sess.StartTime.IsZero() {
		sess.StartTime = time.Now().UTC()
	}
	if err := s.db.Create(sess).Error; err != nil {
		return fmt.Errorf("store: create session for unit %d: %w", sess.UnitID, err)
	}
	return nil
}

// Session fetches a work session by id.
func (s *DB) Session(id uint) (models.WorkSession, error) {
	var sess models.WorkSession
	err := s.db.First(&sess, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sess, fmt.Errorf("store: session %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return sess, fmt.Errorf("store: session %d: %w", id, err)
	}
	return sess, nil
}

// CloseSession sets a session's end time and notes. The end time is written
// exactly once: closing an already closed session fails with ErrInvalid.
func (s *DB) CloseSession(id uint, endTime time.Time, notes string) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	if sess.EndTime != nil {
		return fmt.Errorf("store: close session %d: already closed: %w", id, ErrInvalid)
	}
	err = s.db.Model(&models.WorkSession{}).Where("id = ?", id).
		Updates(map[string]interface{}{"end_time": endTime, "notes": notes}).Error
	if err != nil {
		return fmt.Errorf("store: close session %d: %w", id, err)
	}
	return nil
}
