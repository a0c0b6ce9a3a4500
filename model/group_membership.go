package model

import "time"

// GroupMembership is the join row for a user belonging to a group. The
// composite primary key makes the (user, group) pair unique; joining twice
// is a storage conflict, not a silent no-op.
type GroupMembership struct {
	UserID    string `gorm:"primaryKey"`
	GroupID   string `gorm:"primaryKey"`
	CreatedAt time.Time
}
