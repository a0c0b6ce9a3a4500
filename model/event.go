package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Event struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt
	Title       string
	Description string
	Location    string
	StartsAt    time.Time `gorm:"index"`
	EndsAt      *time.Time
	CoverUrl    string
	Links       datatypes.JSON
}
