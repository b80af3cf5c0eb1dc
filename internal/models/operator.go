package models

import "time"

// Operator is a person who runs visits: a cleaner, inspector or manager.
type Operator struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:128;not null"`
	Email     string `gorm:"size:256;uniqueIndex"`
	Role      string `gorm:"size:16;default:operator"`
	Active    bool   `gorm:"default:true"`
	CreatedAt time.Time
}
