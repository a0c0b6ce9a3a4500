package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/koinoniahq/koinonia/app_setting"
	"github.com/koinoniahq/koinonia/model"
	"gorm.io/gorm"
)

const notificationPageLimit = 50

// ListNotificationsHandler serves GET /api/notifications?userId=. Clients
// poll this endpoint on a slow loop, the response echoes the interval hint.
func ListNotificationsHandler(db *gorm.DB, setting app_setting.KoinoniaAppSetting) gin.HandlerFunc {
	return func(c *gin.Context) {
		userId := c.Query("userId")
		if userId == "" {
			badRequest(c, "User ID is required")
			return
		}

		var notifications []model.Notification
		err := db.Where("user_id = ?", userId).
			Order("created_at desc").
			Limit(notificationPageLimit).
			Find(&notifications).Error
		if err != nil {
			internalError(c, err)
			return
		}

		var unread int64
		db.Model(&model.Notification{}).Where("user_id = ? AND read_at IS NULL", userId).Count(&unread)

		c.JSON(http.StatusOK, gin.H{
			"notifications":      notifications,
			"unreadCount":        unread,
			"pollIntervalSecond": setting.NOTIFICATION_POLL_INTERVAL_SECOND,
		})
	}
}

type markReadForm struct {
	UserId string   `json:"userId" binding:"required"`
	Ids    []string `json:"ids"`
}

// MarkNotificationsReadHandler serves POST /api/notifications/read. With no
// ids given every unread notification of the user is marked.
func MarkNotificationsReadHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form markReadForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "User ID is required")
			return
		}

		query := db.Model(&model.Notification{}).Where("user_id = ? AND read_at IS NULL", form.UserId)
		if len(form.Ids) > 0 {
			query = query.Where("id IN ?", form.Ids)
		}
		res := query.Update("read_at", time.Now())
		if res.Error != nil {
			internalError(c, res.Error)
			return
		}
		c.JSON(http.StatusOK, gin.H{"marked": res.RowsAffected})
	}
}
