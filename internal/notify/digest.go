package notify

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/ptessari/turnkey/internal/models"
	"github.com/ptessari/turnkey/internal/shortage"
)

// Digest is one scheduled restocking report: counted items below their
// expected number and consumables at or below their minimum.
type Digest struct {
	Missing []shortage.MissingRow
	Low     []shortage.LowRow
}

// BuildDigest derives the current restocking state from the database.
func BuildDigest(db *gorm.DB) (Digest, error) {
	missing, err := shortage.MissingEquipment(db)
	if err != nil {
		return Digest{}, fmt.Errorf("notify: build digest: %w", err)
	}
	low, err := shortage.LowStock(db)
	if err != nil {
		return Digest{}, fmt.Errorf("notify: build digest: %w", err)
	}
	return Digest{Missing: missing, Low: low}, nil
}

// Empty reports whether there is nothing to send.
func (d Digest) Empty() bool {
	return len(d.Missing) == 0 && len(d.Low) == 0
}

// Event formats the digest for delivery. Severity escalates to critical
// when any consumable has run out completely.
func (d Digest) Event() Event {
	evt := Event{
		Title:    "Restocking digest",
		Body:     fmt.Sprintf("%d item(s) below expected count, %d consumable(s) low on stock.", len(d.Missing), len(d.Low)),
		Severity: SeverityWarning,
	}
	for _, m := range d.Missing {
		evt.Fields = append(evt.Fields, Field{
			Name:  fmt.Sprintf("%s — %s", m.UnitName, m.ItemName),
			Value: fmt.Sprintf("counted %d of %d (missing %d)", m.Current, m.Expected, m.Shortfall),
			Short: true,
		})
	}
	for _, l := range d.Low {
		evt.Fields = append(evt.Fields, Field{
			Name:  fmt.Sprintf("%s — %s", l.UnitName, l.ItemName),
			Value: fmt.Sprintf("%d left (minimum %d)", l.Quantity, l.MinQuantity),
			Short: true,
		})
		if l.Quantity == 0 {
			evt.Severity = SeverityCritical
		}
	}
	return evt
}

// RecordAlerts persists a StockAlert for each low consumable that does not
// already carry an open alert, and returns how many were created. Resolved
// alerts do not suppress new ones.
func RecordAlerts(db *gorm.DB, low []shortage.LowRow) (int, error) {
	created := 0
	for _, l := range low {
		var count int64
		err := db.Model(&models.StockAlert{}).
			Where("assignment_id = ? AND resolved = ?", l.AssignmentID, false).
			Count(&count).Error
		if err != nil {
			return created, fmt.Errorf("notify: check open alert: %w", err)
		}
		if count > 0 {
			continue
		}
		alert := models.StockAlert{
			AssignmentID: l.AssignmentID,
			Message:      fmt.Sprintf("%s: %s at %d (minimum %d)", l.UnitName, l.ItemName, l.Quantity, l.MinQuantity),
		}
		if err := db.Create(&alert).Error; err != nil {
			return created, fmt.Errorf("notify: create alert: %w", err)
		}
		created++
	}
	return created, nil
}

// SendDigest builds the digest, records stock alerts and delivers the event
// through the adapter. Nothing is sent when the digest is empty.
func SendDigest(ctx context.Context, db *gorm.DB, a Adapter) error {
	d, err := BuildDigest(db)
	if err != nil {
		return err
	}
	if d.Empty() {
		return nil
	}
	if _, err := RecordAlerts(db, d.Low); err != nil {
		return err
	}
	if err := a.Send(ctx, d.Event()); err != nil {
		return fmt.Errorf("notify: send digest: %w", err)
	}
	return nil
}
