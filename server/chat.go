package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/app_setting"
	"github.com/koinoniahq/koinonia/model"
	"github.com/koinoniahq/koinonia/notifier"
	Logger "github.com/koinoniahq/koinonia/utils/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const chatPageLimit = 100

// chatroomWritable reports whether the group's chatroom accepts new messages
// and questions. A group without a settings row defaults to writable. The
// gate applies to writes only, reads are always permitted.
func chatroomWritable(db *gorm.DB, groupId string) bool {
	var setting model.ChatroomSetting
	if db.Where("group_id = ?", groupId).First(&setting).RowsAffected != 1 {
		return true
	}
	return setting.IsActive
}

// ListMessagesHandler serves GET /api/groups/:id/messages?since=<RFC3339>.
// Clients poll this on an interval, the response echoes the interval hint.
func ListMessagesHandler(db *gorm.DB, setting app_setting.KoinoniaAppSetting) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupId := c.Param("id")
		var group model.Group
		if db.Where("id = ?", groupId).First(&group).RowsAffected != 1 {
			notFound(c, "group not found")
			return
		}

		query := db.Preload("User").Where("group_id = ?", groupId)
		if since := c.Query("since"); since != "" {
			ts, err := time.Parse(time.RFC3339, since)
			if err != nil {
				badRequest(c, "since must be RFC3339")
				return
			}
			query = query.Where("created_at > ?", ts)
		}

		var messages []model.Message
		if err := query.Order("created_at").Limit(chatPageLimit).Find(&messages).Error; err != nil {
			internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"messages":           messages,
			"pollIntervalSecond": setting.CHAT_POLL_INTERVAL_SECOND,
		})
	}
}

type postMessageForm struct {
	UserId  string `json:"userId" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// PostMessageHandler serves POST /api/groups/:id/messages. Submission is
// rejected while the chatroom gate is off.
func PostMessageHandler(db *gorm.DB, bus *gochannel.GoChannel) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupId := c.Param("id")
		var form postMessageForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "userId and content are required")
			return
		}

		var group model.Group
		if db.Preload("Members").Where("id = ?", groupId).First(&group).RowsAffected != 1 {
			notFound(c, "group not found")
			return
		}
		var author model.User
		if db.Where("id = ?", form.UserId).First(&author).RowsAffected != 1 {
			notFound(c, "user not found")
			return
		}
		if !chatroomWritable(db, groupId) {
			forbidden(c, "chatroom is not active")
			return
		}

		message := model.Message{
			Id:      uuid.New().String(),
			GroupID: groupId,
			UserID:  form.UserId,
			Content: form.Content,
		}
		if err := db.Create(&message).Error; err != nil {
			internalError(c, err)
			return
		}

		for _, member := range group.Members {
			if member.Id == author.Id {
				continue
			}
			if err := notifier.Publish(bus, notifier.Event{
				Kind:        model.NotificationKindMessagePosted,
				RecipientID: member.Id,
				ActorID:     &author.Id,
				SubjectID:   groupId,
				Body:        fmt.Sprintf("%s posted in %s", author.Name, group.Name),
			}); err != nil {
				Logger.Log.Warn("cannot publish message event: ", err)
			}
		}

		c.JSON(http.StatusCreated, gin.H{"id": message.Id})
	}
}

// ListQuestionsHandler serves GET /api/groups/:id/questions.
func ListQuestionsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupId := c.Param("id")
		var group model.Group
		if db.Where("id = ?", groupId).First(&group).RowsAffected != 1 {
			notFound(c, "group not found")
			return
		}
		var questions []model.Question
		err := db.Preload("User").Where("group_id = ?", groupId).
			Order("created_at").Limit(chatPageLimit).Find(&questions).Error
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"questions": questions})
	}
}

// PostQuestionHandler serves POST /api/groups/:id/questions. Gated by the
// same chatroom flag as messages.
func PostQuestionHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupId := c.Param("id")
		var form postMessageForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "userId and content are required")
			return
		}

		var group model.Group
		if db.Where("id = ?", groupId).First(&group).RowsAffected != 1 {
			notFound(c, "group not found")
			return
		}
		var author model.User
		if db.Where("id = ?", form.UserId).First(&author).RowsAffected != 1 {
			notFound(c, "user not found")
			return
		}
		if !chatroomWritable(db, groupId) {
			forbidden(c, "chatroom is not active")
			return
		}

		question := model.Question{
			Id:      uuid.New().String(),
			GroupID: groupId,
			UserID:  form.UserId,
			Content: form.Content,
		}
		if err := db.Create(&question).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": question.Id})
	}
}

type answerForm struct {
	AdminId string `json:"adminId" binding:"required"`
	Answer  string `json:"answer" binding:"required"`
}

// AnswerQuestionHandler serves POST /api/questions/:id/answer (admin). The
// question's author gets a notification.
func AnswerQuestionHandler(db *gorm.DB, bus *gochannel.GoChannel) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form answerForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "adminId and answer are required")
			return
		}

		var question model.Question
		if db.Where("id = ?", c.Param("id")).First(&question).RowsAffected != 1 {
			notFound(c, "question not found")
			return
		}

		now := time.Now()
		question.Answer = form.Answer
		question.AnsweredByID = &form.AdminId
		question.AnsweredAt = &now
		if err := db.Save(&question).Error; err != nil {
			internalError(c, err)
			return
		}

		if err := notifier.Publish(bus, notifier.Event{
			Kind:        model.NotificationKindQuestionAnswered,
			RecipientID: question.UserID,
			ActorID:     &form.AdminId,
			SubjectID:   question.Id,
			Body:        "your question got answered",
		}); err != nil {
			Logger.Log.Warn("cannot publish answer event: ", err)
		}

		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// HeartbeatHandler serves POST /api/groups/:id/presence. The heartbeat is an
// idempotent upsert keyed by (user, group), safe to repeat on every poll.
func HeartbeatHandler(db *gorm.DB) gin.HandlerFunc {
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

		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "group_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"last_seen_at"}),
		}).Create(&model.Presence{
			UserID:     form.UserId,
			GroupID:    groupId,
			LastSeenAt: time.Now(),
		})
		if res.Error != nil {
			internalError(c, res.Error)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// ListPresenceHandler serves GET /api/groups/:id/presence, the users whose
// last heartbeat falls within the trailing presence window.
func ListPresenceHandler(db *gorm.DB, setting app_setting.KoinoniaAppSetting) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupId := c.Param("id")
		var group model.Group
		if db.Where("id = ?", groupId).First(&group).RowsAffected != 1 {
			notFound(c, "group not found")
			return
		}

		cutoff := time.Now().Add(-time.Duration(setting.PRESENCE_WINDOW_SECOND) * time.Second)
		var present []model.User
		err := db.Model(&model.User{}).
			Joins("JOIN presences ON presences.user_id = users.id").
			Where("presences.group_id = ? AND presences.last_seen_at > ?", groupId, cutoff).
			Order("presences.last_seen_at desc").
			Find(&present).Error
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"present": toDirectoryUsers(db, present)})
	}
}

type chatroomForm struct {
	IsActive *bool `json:"isActive" binding:"required"`
}

// UpdateChatroomHandler serves PUT /api/groups/:id/chatroom (admin), toggling
// the write gate.
func UpdateChatroomHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		groupId := c.Param("id")
		var form chatroomForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "isActive is required")
			return
		}

		var group model.Group
		if db.Where("id = ?", groupId).First(&group).RowsAffected != 1 {
			notFound(c, "group not found")
			return
		}

		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"is_active", "updated_at"}),
		}).Create(&model.ChatroomSetting{
			GroupID:  groupId,
			IsActive: *form.IsActive,
		})
		if res.Error != nil {
			internalError(c, res.Error)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
