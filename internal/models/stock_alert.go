package models

import "time"

// StockAlert is raised by the digest pipeline when a stock assignment sits
// at or below its minimum. Resolved alerts are kept for history.
type StockAlert struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	AssignmentID uint   `gorm:"index;not null"`
	Message      string `gorm:"type:text"`
	Resolved     bool   `gorm:"default:false;index"`
	CreatedAt    time.Time
	ResolvedAt   *time.Time

	Assignment *Assignment `gorm:"foreignKey:AssignmentID"`
}
