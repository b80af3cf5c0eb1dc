package models

import "time"

// Assignment kinds.
const (
	KindChecklist = "checklist"
	KindStock     = "stock"
)

// Assignment binds a catalog item to a unit. Order is meaningful only for
// checklist assignments; Quantity and MinQuantity only for stock assignments.
type Assignment struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	UnitID      uint   `gorm:"index:idx_unit_kind;not null"`
	ItemID      uint   `gorm:"index;not null"`
	Kind        string `gorm:"size:16;default:checklist;index:idx_unit_kind"`
	Order       int    `gorm:"column:sort_order;default:0"`
	Quantity    int    `gorm:"default:0"`
	MinQuantity int    `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Unit *Unit `gorm:"foreignKey:UnitID"`
	Item *Item `gorm:"foreignKey:ItemID"`
}

// LowStock reports whether a stock assignment needs restocking. The boundary
// is inclusive: sitting exactly at the minimum already counts as low.
func (a Assignment) LowStock() bool {
	return a.Kind == KindStock && a.Quantity <= a.MinQuantity
}
