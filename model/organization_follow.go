package model

import "time"

// OrganizationFollow is the join row for a user following an organization.
// Unique per (user, organization) through the composite primary key.
type OrganizationFollow struct {
	UserID         string `gorm:"primaryKey"`
	OrganizationID string `gorm:"primaryKey"`
	CreatedAt      time.Time
}
