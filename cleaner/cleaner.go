package cleaner

import (
	"time"

	"github.com/koinoniahq/koinonia/model"
	Logger "github.com/koinoniahq/koinonia/utils/log"
	"gorm.io/gorm"
)

// SweepResult reports how many rows each sweep removed.
type SweepResult struct {
	Questions int64
	Messages  int64
	Presences int64
}

// RetentionSweep deletes questions and messages older than the retention
// window, plus presence rows that went stale. The sweep is idempotent: it is
// triggered by an outside scheduler and safe to repeat.
func RetentionSweep(db *gorm.DB, retentionDays int, now time.Time) (SweepResult, error) {
	cutoff := now.AddDate(0, 0, -retentionDays)
	result := SweepResult{}

	res := db.Unscoped().Where("created_at < ?", cutoff).Delete(&model.Question{})
	if res.Error != nil {
		return result, res.Error
	}
	result.Questions = res.RowsAffected

	res = db.Unscoped().Where("created_at < ?", cutoff).Delete(&model.Message{})
	if res.Error != nil {
		return result, res.Error
	}
	result.Messages = res.RowsAffected

	// Presence rows carry no history value once outside any possible window,
	// sweep everything older than a day.
	res = db.Where("last_seen_at < ?", now.Add(-24*time.Hour)).Delete(&model.Presence{})
	if res.Error != nil {
		return result, res.Error
	}
	result.Presences = res.RowsAffected

	Logger.Log.Info(
		"retention sweep done, questions=", result.Questions,
		" messages=", result.Messages,
		" presences=", result.Presences)

	return result, nil
}
