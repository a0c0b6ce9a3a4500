package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

/*

Organization is a data model for a ministry or partner organization

Id: primary key, use to identify an organization
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Name: the display name of the organization
Description: short blurb shown in the directory
AvatarUrl: logo image url
Links: free-form JSON of external links (website, socials)
Followers: all users following this organization, "many-to-many" relation
Groups: groups owned by this organization, "has-many" relation

*/

type Organization struct {
	Id          string `gorm:"primaryKey"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt
	Name        string
	Description string
	AvatarUrl   string
	Links       datatypes.JSON
	Followers   []*User `json:"followers" gorm:"many2many:organization_follows;"`
	Groups      []Group `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
}
