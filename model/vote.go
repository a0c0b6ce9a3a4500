package model

import "time"

/*

Vote is a user's single vote inside a category

Id: primary key
UserID, CategoryID: at most one row per pair, enforced by a unique index.
		Casting again replaces the contestant through an upsert on that
		index, so the replacement is atomic under concurrent requests.
ContestantID: the nominee this vote currently points at

Vote counts are always derived with count queries, never maintained as
running counters.

*/

type Vote struct {
	Id           string `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       string `gorm:"uniqueIndex:idx_votes_user_category"`
	CategoryID   string `gorm:"uniqueIndex:idx_votes_user_category"`
	ContestantID string `gorm:"index"`
}
