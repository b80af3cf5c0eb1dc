package models

import "time"

// WorkSession is one operator's visit to one unit. EndTime stays nil while
// the visit is in progress and is set exactly once at finalize (or by the
// orphan sweeper for sessions that were abandoned).
type WorkSession struct {
	ID         uint `gorm:"primaryKey;autoIncrement"`
	UnitID     uint `gorm:"index;not null"`
	OperatorID uint `gorm:"index;not null"`
	StartTime  time.Time
	EndTime    *time.Time `gorm:"index"`
	Notes      string     `gorm:"type:text"`

	Unit        *Unit        `gorm:"foreignKey:UnitID"`
	Operator    *Operator    `gorm:"foreignKey:OperatorID"`
	Completions []Completion `gorm:"foreignKey:SessionID"`
}

// Open reports whether the session has not been finalized yet.
func (s WorkSession) Open() bool {
	return s.EndTime == nil
}
