package server

import (
	"fmt"
	"net/http"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/koinoniahq/koinonia/model"
	"github.com/koinoniahq/koinonia/notifier"
	Logger "github.com/koinoniahq/koinonia/utils/log"
	"gorm.io/gorm"
)

type followForm struct {
	UserId string `json:"userId" binding:"required"`
}

// FollowUserHandler serves POST /api/users/:id/follow. The edge is unique
// per (follower, following) pair, a duplicate attempt is a conflict rather
// than a silent no-op.
func FollowUserHandler(db *gorm.DB, bus *gochannel.GoChannel) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetId := c.Param("id")
		var form followForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "User ID is required")
			return
		}
		if form.UserId == targetId {
			badRequest(c, "cannot follow yourself")
			return
		}

		var target model.User
		if db.Where("id = ?", targetId).First(&target).RowsAffected != 1 {
			notFound(c, "user not found")
			return
		}
		var me model.User
		if db.Where("id = ?", form.UserId).First(&me).RowsAffected != 1 {
			notFound(c, "user not found")
			return
		}

		var existing model.UserFollow
		if db.Where("user_id = ? AND following_id = ?", form.UserId, targetId).
			First(&existing).RowsAffected == 1 {
			conflict(c, "already following this user")
			return
		}

		if err := db.Create(&model.UserFollow{UserID: form.UserId, FollowingID: targetId}).Error; err != nil {
			// The composite primary key catches the race between the existence
			// check and the insert.
			conflict(c, "already following this user")
			return
		}

		if err := notifier.Publish(bus, notifier.Event{
			Kind:        model.NotificationKindUserFollow,
			RecipientID: targetId,
			ActorID:     &me.Id,
			SubjectID:   me.Id,
			Body:        fmt.Sprintf("%s started following you", me.Name),
		}); err != nil {
			Logger.Log.Warn("cannot publish follow event: ", err)
		}

		c.JSON(http.StatusCreated, gin.H{"ok": true})
	}
}

// UnfollowUserHandler serves DELETE /api/users/:id/follow.
func UnfollowUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		targetId := c.Param("id")
		var form followForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "User ID is required")
			return
		}

		res := db.Where("user_id = ? AND following_id = ?", form.UserId, targetId).
			Delete(&model.UserFollow{})
		if res.Error != nil {
			internalError(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			notFound(c, "not following this user")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// FollowOrganizationHandler serves POST /api/organizations/:id/follow.
func FollowOrganizationHandler(db *gorm.DB, bus *gochannel.GoChannel) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgId := c.Param("id")
		var form followForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "User ID is required")
			return
		}

		var org model.Organization
		if db.Where("id = ?", orgId).First(&org).RowsAffected != 1 {
			notFound(c, "organization not found")
			return
		}
		var me model.User
		if db.Where("id = ?", form.UserId).First(&me).RowsAffected != 1 {
			notFound(c, "user not found")
			return
		}

		var existing model.OrganizationFollow
		if db.Where("user_id = ? AND organization_id = ?", form.UserId, orgId).
			First(&existing).RowsAffected == 1 {
			conflict(c, "already following this organization")
			return
		}

		if err := db.Create(&model.OrganizationFollow{UserID: form.UserId, OrganizationID: orgId}).Error; err != nil {
			conflict(c, "already following this organization")
			return
		}

		if err := notifier.Publish(bus, notifier.Event{
			Kind:      model.NotificationKindOrgFollow,
			ActorID:   &me.Id,
			SubjectID: org.Id,
			Body:      fmt.Sprintf("%s started following %s", me.Name, org.Name),
		}); err != nil {
			Logger.Log.Warn("cannot publish follow event: ", err)
		}

		c.JSON(http.StatusCreated, gin.H{"ok": true})
	}
}

// UnfollowOrganizationHandler serves DELETE /api/organizations/:id/follow.
func UnfollowOrganizationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orgId := c.Param("id")
		var form followForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "User ID is required")
			return
		}

		res := db.Where("user_id = ? AND organization_id = ?", form.UserId, orgId).
			Delete(&model.OrganizationFollow{})
		if res.Error != nil {
			internalError(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			notFound(c, "not following this organization")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// ListFollowersHandler serves GET /api/users/:id/followers.
func ListFollowersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.Param("id")
		var followers []model.User
		err := db.Model(&model.User{}).
			Joins("JOIN user_follows ON user_follows.user_id = users.id").
			Where("user_follows.following_id = ?", userId).
			Order("user_follows.created_at").
			Find(&followers).Error
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"followers": toDirectoryUsers(db, followers)})
	}
}

// ListFollowingHandler serves GET /api/users/:id/following.
func ListFollowingHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.Param("id")
		var followed []model.User
		err := db.Model(&model.User{}).
			Joins("JOIN user_follows ON user_follows.following_id = users.id").
			Where("user_follows.user_id = ?", userId).
			Order("user_follows.created_at").
			Find(&followed).Error
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"following": toDirectoryUsers(db, followed)})
	}
}
