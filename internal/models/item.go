package models

import "time"

// Item types. Check and yes/no items complete with a plain toggle; number
// items carry a counted value; stock items are consumables tracked per unit.
const (
	ItemTypeCheck  = "check"
	ItemTypeYesNo  = "yes_no"
	ItemTypeNumber = "number"
	ItemTypeStock  = "stock"
)

// Item is a catalog entry: one task or consumable that can be assigned to
// any number of units.
type Item struct {
	ID             uint   `gorm:"primaryKey;autoIncrement"`
	Title          string `gorm:"size:256;not null"`
	Description    string `gorm:"type:text"`
	RoomName       string `gorm:"size:64;index"`
	Type           string `gorm:"size:16;default:check"`
	ExpectedNumber *int
	Measure        string `gorm:"size:16"`
	ShopLink       string `gorm:"type:text"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Boolean reports whether completions of this item carry no counted value.
// Check and yes/no items share the same completion path; yes_no only changes
// how the prompt is worded.
func (i Item) Boolean() bool {
	return i.Type == ItemTypeCheck || i.Type == ItemTypeYesNo
}

// Expected returns the target count for a number item, zero when unset.
func (i Item) Expected() int {
	if i.ExpectedNumber == nil {
		return 0
	}
	return *i.ExpectedNumber
}
