package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	Id        string         `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time      `json:"createdAt"`
	DeletedAt gorm.DeletedAt `json:"-"`
	Name      string         `json:"name"`
	Username  string         `json:"username" gorm:"uniqueIndex"`
	Email     string         `json:"email"`
	Bio       string         `json:"bio"`
	AvatarUrl string         `json:"avatarUrl"`

	Following             []*User         `json:"following" gorm:"many2many:user_follows;"`
	FollowedOrganizations []*Organization `json:"followed_organizations" gorm:"many2many:organization_follows;"`
	Groups                []*Group        `json:"groups" gorm:"many2many:group_memberships;"`
}
