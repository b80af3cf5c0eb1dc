package models

import "time"

// Property groups the units of a single building or owner.
type Property struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:128;not null"`
	Address   string `gorm:"type:text"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Units []Unit `gorm:"foreignKey:PropertyID"`
}

// Unit is a single rentable apartment within a property. All checklist and
// stock assignments hang off a unit.
type Unit struct {
	ID         uint   `gorm:"primaryKey;autoIncrement"`
	PropertyID uint   `gorm:"index;not null"`
	Name       string `gorm:"size:128;not null"`
	Floor      string `gorm:"size:32"`
	Notes      string `gorm:"type:text"`
	Active     bool   `gorm:"default:true"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Property    *Property    `gorm:"foreignKey:PropertyID"`
	Assignments []Assignment `gorm:"foreignKey:UnitID"`
}
