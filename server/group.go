package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/model"
	"github.com/koinoniahq/koinonia/utils"
	"gorm.io/gorm"
)

func groupSummary(db *gorm.DB, group *model.Group) gin.H {
	var memberCount int64
	db.Model(&model.GroupMembership{}).Where("group_id = ?", group.Id).Count(&memberCount)
	var org *OrganizationSummary
	if group.Organization != nil {
		org = &OrganizationSummary{Id: group.Organization.Id, Name: group.Organization.Name}
	}
	isActive := true
	if group.ChatroomSetting != nil {
		isActive = group.ChatroomSetting.IsActive
	}
	return gin.H{
		"id":               group.Id,
		"name":             group.Name,
		"description":      group.Description,
		"organization":     org,
		"memberCount":      memberCount,
		"chatroomIsActive": isActive,
	}
}

// ListGroupsHandler serves GET /api/groups.
func ListGroupsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var groups []model.Group
		err := db.Preload("Organization").Preload("ChatroomSetting").
			Order("created_at").Find(&groups).Error
		if err != nil {
			internalError(c, err)
			return
		}
		out := []gin.H{}
		for i := range groups {
			out = append(out, groupSummary(db, &groups[i]))
		}
		c.JSON(http.StatusOK, gin.H{"groups": out})
	}
}

// GetGroupHandler serves GET /api/groups/:id.
func GetGroupHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var group model.Group
		queryResult := db.Preload("Organization").Preload("ChatroomSetting").Preload("Members").
			Where("id = ?", c.Param("id")).First(&group)
		if queryResult.RowsAffected != 1 {
			notFound(c, "group not found")
			return
		}
		summary := groupSummary(db, &group)
		summary["members"] = toDirectoryUsers(db, derefUsers(group.Members))
		c.JSON(http.StatusOK, summary)
	}
}

func derefUsers(users []*model.User) []model.User {
	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, *u)
	}
	return out
}

type createGroupForm struct {
	Name           string  `json:"name" binding:"required"`
	Description    string  `json:"description"`
	OrganizationId *string `json:"organizationId"`
}

// CreateGroupHandler serves POST /api/groups (admin). A fresh group starts
// with an active chatroom.
func CreateGroupHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form createGroupForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "group name is required")
			return
		}
		if form.OrganizationId != nil {
			var org model.Organization
			if db.Where("id = ?", *form.OrganizationId).First(&org).RowsAffected != 1 {
				notFound(c, "organization not found")
				return
			}
		}
		group := model.Group{
			Id:             uuid.New().String(),
			Name:           form.Name,
			Description:    form.Description,
			OrganizationID: form.OrganizationId,
		}
		var createGroupTxn utils.GormTransaction = func(tx *gorm.DB) error {
			if err := tx.Create(&group).Error; err != nil {
				return err
			}
			return tx.Create(&model.ChatroomSetting{GroupID: group.Id, IsActive: true}).Error
		}
		err := db.Transaction(createGroupTxn)
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": group.Id})
	}
}

// JoinGroupHandler serves POST /api/groups/:id/join. Joining twice is a
// conflict.
func JoinGroupHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupId := c.Param("id")
		var form followForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "User ID is required")
			return
		}

		var group model.Group
		if db.Where("id = ?", groupId).First(&group).RowsAffected != 1 {
			notFound(c, "group not found")
			return
		}
		var user model.User
		if db.Where("id = ?", form.UserId).First(&user).RowsAffected != 1 {
			notFound(c, "user not found")
			return
		}

		var existing model.GroupMembership
		if db.Where("user_id = ? AND group_id = ?", form.UserId, groupId).
			First(&existing).RowsAffected == 1 {
			conflict(c, "already a member of this group")
			return
		}

		if err := db.Create(&model.GroupMembership{UserID: form.UserId, GroupID: groupId}).Error; err != nil {
			conflict(c, "already a member of this group")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true})
	}
}

// LeaveGroupHandler serves DELETE /api/groups/:id/join.
func LeaveGroupHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupId := c.Param("id")
		var form followForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "User ID is required")
			return
		}

		res := db.Where("user_id = ? AND group_id = ?", form.UserId, groupId).
			Delete(&model.GroupMembership{})
		if res.Error != nil {
			internalError(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			notFound(c, "not a member of this group")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
