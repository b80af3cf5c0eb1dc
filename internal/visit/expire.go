package visit

import (
	"fmt"
	"time"

	"github.com/ptessari/turnkey/internal/models"
	"gorm.io/gorm"
)

// SweepOrphans closes work sessions that were started more than ttl ago and
// never finalized, typically because an operator backed out of the checklist
// or lost their device. Returns the number of sessions closed.
func SweepOrphans(db *gorm.DB, ttl time.Duration) (int64, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-ttl)
	result := db.Model(&models.WorkSession{}).
		Where("end_time IS NULL AND start_time < ?", cutoff).
		Update("end_time", now)
	if result.Error != nil {
		return 0, fmt.Errorf("visit: sweep orphans: %w", result.Error)
	}
	return result.RowsAffected, nil
}
