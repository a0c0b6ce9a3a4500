package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ListEventsHandler serves GET /api/events. Upcoming events only by default,
// soonest first; pass includePast=true for the full history.
func ListEventsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := db.Order("starts_at")
		if c.Query("includePast") != "true" {
			query = query.Where("starts_at >= ?", time.Now())
		}
		var events []model.Event
		if err := query.Find(&events).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"events": events})
	}
}

type eventForm struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Location    string     `json:"location"`
	StartsAt    time.Time  `json:"startsAt" binding:"required"`
	EndsAt      *time.Time `json:"endsAt"`
	CoverUrl    string     `json:"coverUrl"`
	Links       string     `json:"links"`
}

// CreateEventHandler serves POST /api/events (admin).
func CreateEventHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form eventForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "title and startsAt are required")
			return
		}
		event := model.Event{
			Id:          uuid.New().String(),
			Title:       form.Title,
			Description: form.Description,
			Location:    form.Location,
			StartsAt:    form.StartsAt,
			EndsAt:      form.EndsAt,
			CoverUrl:    form.CoverUrl,
			Links:       datatypes.JSON(form.Links),
		}
		if err := db.Create(&event).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": event.Id})
	}
}

// UpdateEventHandler serves PUT /api/events/:id (admin).
func UpdateEventHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var event model.Event
		if db.Where("id = ?", c.Param("id")).First(&event).RowsAffected != 1 {
			notFound(c, "event not found")
			return
		}
		var form eventForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "title and startsAt are required")
			return
		}
		event.Title = form.Title
		event.Description = form.Description
		event.Location = form.Location
		event.StartsAt = form.StartsAt
		event.EndsAt = form.EndsAt
		event.CoverUrl = form.CoverUrl
		if form.Links != "" {
			event.Links = datatypes.JSON(form.Links)
		}
		if err := db.Save(&event).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

// DeleteEventHandler serves DELETE /api/events/:id (admin).
func DeleteEventHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := db.Where("id = ?", c.Param("id")).Delete(&model.Event{})
		if res.Error != nil {
			internalError(c, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			notFound(c, "event not found")
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
