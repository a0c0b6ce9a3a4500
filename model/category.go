package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Category is a nomination category users vote in

Id: primary key, use to identify a category
Name: category's display name (title)
Description: what the nomination is about
IsOpen: whether votes are currently accepted
Contestants: nominees in this category, "has-many" relation

*/

type Category struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt
	Name        string
	Description string
	IsOpen      bool
	Contestants []Contestant `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Contestant is a nominee inside a category. Identity is the stable Id, never
// a (name, surname) string match, so renaming a contestant can not merge or
// split vote tallies.
type Contestant struct {
	Id         string `gorm:"primaryKey"`
	CreatedAt  time.Time
	CategoryID string `gorm:"index"`
	Name       string
	Surname    string
	AvatarUrl  string
}
