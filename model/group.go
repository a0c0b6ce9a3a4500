package model

import (
	"time"

	"gorm.io/gorm"
)

/*

Group is a data model for a small group / chatroom of the community

Id: primary key, use to identify a group
CreatedAt: time when entity is created
DeletedAt: time when entity is deleted

Name: group's display name
Description: group's description shown on the group page
OrganizationID:
Organization: owning organization, optional, "belongs-to" relation
Members: all users who joined this group, "many-to-many" relation
ChatroomSetting: per-group chatroom gate, "has-one" relation

*/

type Group struct {
	Id              string `gorm:"primaryKey"`
	CreatedAt       time.Time
	DeletedAt       gorm.DeletedAt
	Name            string
	Description     string
	OrganizationID  *string       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Organization    *Organization `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;"`
	Members         []*User       `json:"members" gorm:"many2many:group_memberships;"`
	ChatroomSetting *ChatroomSetting
}
