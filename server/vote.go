package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type castVoteForm struct {
	UserId       string `json:"userId" binding:"required"`
	CategoryId   string `json:"categoryId" binding:"required"`
	ContestantId string `json:"contestantId" binding:"required"`
}

// CastVoteHandler serves POST /api/votes. A user holds at most one vote per
// category; casting again replaces the contestant. The replacement is a
// single upsert on the (user_id, category_id) unique index, so two
// concurrent casts by the same user can never leave two rows behind.
func CastVoteHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form castVoteForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "userId, categoryId and contestantId are required")
			return
		}

		var category model.Category
		if db.Where("id = ?", form.CategoryId).First(&category).RowsAffected != 1 {
			notFound(c, "category not found")
			return
		}
		if !category.IsOpen {
			forbidden(c, "voting is closed for this category")
			return
		}

		var contestant model.Contestant
		if db.Where("id = ?", form.ContestantId).First(&contestant).RowsAffected != 1 {
			notFound(c, "contestant not found")
			return
		}
		if contestant.CategoryID != form.CategoryId {
			badRequest(c, "contestant does not belong to this category")
			return
		}

		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"contestant_id", "updated_at"}),
		}).Create(&model.Vote{
			Id:           uuid.New().String(),
			UserID:       form.UserId,
			CategoryID:   form.CategoryId,
			ContestantID: form.ContestantId,
		})
		if res.Error != nil {
			internalError(c, res.Error)
			return
		}

		c.JSON(http.StatusCreated, gin.H{"ok": true})
	}
}

type contestantResult struct {
	ContestantId string `json:"contestantId"`
	Votes        int64  `json:"votes"`
}

// CategoryResultsHandler serves GET /api/categories/:id/results. Counts are
// always derived with count queries, never running counters.
func CategoryResultsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId := c.Param("id")
		var category model.Category
		if db.Preload("Contestants").Where("id = ?", categoryId).First(&category).RowsAffected != 1 {
			notFound(c, "category not found")
			return
		}

		results := []contestantResult{}
		err := db.Model(&model.Vote{}).
			Select("contestant_id, count(*) as votes").
			Where("category_id = ?", categoryId).
			Group("contestant_id").
			Order("votes desc").
			Scan(&results).Error
		if err != nil {
			internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"categoryId": categoryId,
			"results":    results,
		})
	}
}
