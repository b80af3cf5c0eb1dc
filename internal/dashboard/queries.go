package dashboard

import (
	"fmt"
	"time"

	"github.com/ptessari/turnkey/internal/models"
	"gorm.io/gorm"
)

// SessionRow holds work session data for display.
type SessionRow struct {
	ID           uint       `json:"id"`
	UnitID       uint       `json:"unit_id"`
	UnitName     string     `json:"unit_name"`
	OperatorName string     `json:"operator_name"`
	StartTime    time.Time  `json:"start_time"`
	EndTime      *time.Time `json:"end_time,omitempty"`
	Open         bool       `json:"open"`
	Duration     string     `json:"duration"`
	Notes        string     `json:"notes,omitempty"`
	Completions  int        `json:"completions"`
}

// RecentSessions returns the most recent work sessions, open ones first.
func RecentSessions(db *gorm.DB) ([]SessionRow, error) {
	var sessions []models.WorkSession
	err := db.Preload("Unit").Preload("Operator").
		Order("end_time IS NULL DESC, start_time DESC").
		Limit(50).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}

	rows := make([]SessionRow, len(sessions))
	for i, s := range sessions {
		row := SessionRow{
			ID:        s.ID,
			UnitID:    s.UnitID,
			StartTime: s.StartTime,
			EndTime:   s.EndTime,
			Open:      s.Open(),
			Notes:     s.Notes,
		}
		if s.Unit != nil {
			row.UnitName = s.Unit.Name
		}
		if s.Operator != nil {
			row.OperatorName = s.Operator.Name
		}
		if s.EndTime != nil {
			row.Duration = formatDuration(s.EndTime.Sub(s.StartTime))
		} else {
			row.Duration = formatDuration(time.Since(s.StartTime))
		}
		var count int64
		db.Model(&models.Completion{}).Where("session_id = ?", s.ID).Count(&count)
		row.Completions = int(count)
		rows[i] = row
	}
	return rows, nil
}

// AlertRow holds a stock alert for display.
type AlertRow struct {
	ID        uint      `json:"id"`
	UnitName  string    `json:"unit_name"`
	ItemName  string    `json:"item_name"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// OpenAlerts returns unresolved stock alerts, newest first.
func OpenAlerts(db *gorm.DB) ([]AlertRow, error) {
	var alerts []models.StockAlert
	err := db.Preload("Assignment").Preload("Assignment.Item").Preload("Assignment.Unit").
		Where("resolved = ?", false).
		Order("created_at DESC").
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}

	rows := make([]AlertRow, len(alerts))
	for i, a := range alerts {
		row := AlertRow{
			ID:        a.ID,
			Message:   a.Message,
			CreatedAt: a.CreatedAt,
		}
		if a.Assignment != nil {
			if a.Assignment.Item != nil {
				row.ItemName = a.Assignment.Item.Title
			}
			if a.Assignment.Unit != nil {
				row.UnitName = a.Assignment.Unit.Name
			}
		}
		rows[i] = row
	}
	return rows, nil
}

// ResolveAlert marks an alert resolved. Resolving twice is a no-op.
func ResolveAlert(db *gorm.DB, id uint) error {
	var alert models.StockAlert
	if err := db.First(&alert, id).Error; err != nil {
		return err
	}
	if alert.Resolved {
		return nil
	}
	now := time.Now().UTC()
	return db.Model(&alert).Updates(map[string]interface{}{
		"resolved":    true,
		"resolved_at": now,
	}).Error
}

// formatDuration formats a duration as a human-readable string like "2h 15m".
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	if h >= 24 {
		days := h / 24
		h = h % 24
		return fmt.Sprintf("%dd %dh", days, h)
	}
	return fmt.Sprintf("%dh %dm", h, m)
}
