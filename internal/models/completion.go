package models

import "time"

// Completion records that an item was done during a session. Its existence
// is the completion signal; ValueBool and ValueNumber qualify it for yes/no
// and number items. Rows are never edited in place: changing a recorded
// value is a delete followed by a fresh create.
type Completion struct {
	ID          uint `gorm:"primaryKey;autoIncrement"`
	ItemID      uint `gorm:"index:idx_item_session;not null"`
	OperatorID  uint `gorm:"index"`
	SessionID   uint `gorm:"index:idx_item_session"`
	ValueBool   *bool
	ValueNumber *int
	Notes       string    `gorm:"type:text"`
	CompletedAt time.Time `gorm:"index"`

	Item     *Item        `gorm:"foreignKey:ItemID"`
	Operator *Operator    `gorm:"foreignKey:OperatorID"`
	Session  *WorkSession `gorm:"foreignKey:SessionID"`
}

// Number returns the counted value, zero when the completion carries none.
func (c Completion) Number() int {
	if c.ValueNumber == nil {
		return 0
	}
	return *c.ValueNumber
}
