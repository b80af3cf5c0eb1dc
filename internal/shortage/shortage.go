// Package shortage derives restocking needs from recorded data: counted
// items that came up short and consumables at or below their minimum.
package shortage

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ptessari/turnkey/internal/models"
	"gorm.io/gorm"
)

// MissingRow is one counted item whose latest recorded value is below the
// expected count for its unit.
type MissingRow struct {
	UnitID    uint   `json:"unit_id"`
	UnitName  string `json:"unit_name"`
	ItemID    uint   `json:"item_id"`
	ItemName  string `json:"item_name"`
	Current   int    `json:"current"`
	Expected  int    `json:"expected"`
	Shortfall int    `json:"shortfall"`
	ShopLink  string `json:"shop_link,omitempty"`
}

// MissingEquipment scans every checklist assignment of a number item and
// reports those whose most recent completion, across all of the unit's
// sessions, counts fewer than expected. Items never counted read as zero.
// Rows sort by shortfall, worst first.
func MissingEquipment(db *gorm.DB) ([]MissingRow, error) {
	var assignments []models.Assignment
	err := db.Preload("Item").Preload("Unit").
		Joins("JOIN items ON items.id = assignments.item_id").
		Where("assignments.kind = ? AND items.type = ?", models.KindChecklist, models.ItemTypeNumber).
		Order("assignments.unit_id, assignments.sort_order").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("shortage: load counted assignments: %w", err)
	}

	var rows []MissingRow
	for _, a := range assignments {
		if a.Item == nil {
			continue
		}
		expected := a.Item.Expected()
		if expected == 0 {
			continue
		}

		current := 0
		var latest models.Completion
		err := db.Where("item_id = ? AND session_id IN (?)", a.ItemID,
			db.Model(&models.WorkSession{}).Select("id").Where("unit_id = ?", a.UnitID)).
			Order("completed_at DESC, id DESC").
			First(&latest).Error
		switch {
		case err == nil:
			current = latest.Number()
		case errors.Is(err, gorm.ErrRecordNotFound):
			// never counted, stays zero
		default:
			return nil, fmt.Errorf("shortage: latest completion for item %d: %w", a.ItemID, err)
		}

		if current >= expected {
			continue
		}
		row := MissingRow{
			UnitID:    a.UnitID,
			ItemID:    a.ItemID,
			ItemName:  a.Item.Title,
			Current:   current,
			Expected:  expected,
			Shortfall: expected - current,
			ShopLink:  a.Item.ShopLink,
		}
		if a.Unit != nil {
			row.UnitName = a.Unit.Name
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Shortfall > rows[j].Shortfall
	})
	return rows, nil
}

// LowRow is one stock assignment at or below its minimum quantity.
type LowRow struct {
	AssignmentID uint   `json:"assignment_id"`
	UnitID       uint   `json:"unit_id"`
	UnitName     string `json:"unit_name"`
	ItemID       uint   `json:"item_id"`
	ItemName     string `json:"item_name"`
	Quantity     int    `json:"quantity"`
	MinQuantity  int    `json:"min_quantity"`
	ShopLink     string `json:"shop_link,omitempty"`
}

// LowStock returns every stock assignment whose quantity is at or below its
// minimum, largest deficit first. The boundary is inclusive: exactly at the
// minimum already counts.
func LowStock(db *gorm.DB) ([]LowRow, error) {
	var assignments []models.Assignment
	err := db.Preload("Item").Preload("Unit").
		Where("kind = ? AND quantity <= min_quantity", models.KindStock).
		Order("unit_id, id").
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("shortage: load stock assignments: %w", err)
	}

	rows := make([]LowRow, 0, len(assignments))
	for _, a := range assignments {
		row := LowRow{
			AssignmentID: a.ID,
			UnitID:       a.UnitID,
			Quantity:     a.Quantity,
			MinQuantity:  a.MinQuantity,
		}
		if a.Item != nil {
			row.ItemID = a.ItemID
			row.ItemName = a.Item.Title
			row.ShopLink = a.Item.ShopLink
		}
		if a.Unit != nil {
			row.UnitName = a.Unit.Name
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MinQuantity-rows[i].Quantity > rows[j].MinQuantity-rows[j].Quantity
	})
	return rows, nil
}
