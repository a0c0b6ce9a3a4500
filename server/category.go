package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/model"
	"github.com/koinoniahq/koinonia/utils"
	"gorm.io/gorm"
)

// ListCategoriesHandler serves GET /api/categories with contestants and
// per-category vote totals.
func ListCategoriesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var categories []model.Category
		if err := db.Preload("Contestants").Order("created_at").Find(&categories).Error; err != nil {
			internalError(c, err)
			return
		}
		out := []gin.H{}
		for i := range categories {
			var totalVotes int64
			db.Model(&model.Vote{}).Where("category_id = ?", categories[i].Id).Count(&totalVotes)
			out = append(out, gin.H{
				"id":          categories[i].Id,
				"name":        categories[i].Name,
				"description": categories[i].Description,
				"isOpen":      categories[i].IsOpen,
				"contestants": categories[i].Contestants,
				"totalVotes":  totalVotes,
			})
		}
		c.JSON(http.StatusOK, gin.H{"categories": out})
	}
}

type categoryForm struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsOpen      *bool  `json:"isOpen"`
}

// CreateCategoryHandler serves POST /api/categories (admin).
func CreateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form categoryForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "category name is required")
			return
		}
		isOpen := true
		if form.IsOpen != nil {
			isOpen = *form.IsOpen
		}
		category := model.Category{
			Id:          uuid.New().String(),
			Name:        form.Name,
			Description: form.Description,
			IsOpen:      isOpen,
		}
		if err := db.Create(&category).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": category.Id})
	}
}

// UpdateCategoryHandler serves PUT /api/categories/:id (admin). Used mainly
// to open or close voting.
func UpdateCategoryHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var category model.Category
		if db.Where("id = ?", c.Param("id")).First(&category).RowsAffected != 1 {
			notFound(c, "category not found")
			return
		}
		var form categoryForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "category name is required")
			return
		}
		category.Name = form.Name
		category.Description = form.Description
		if form.IsOpen != nil {
			category.IsOpen = *form.IsOpen
		}
		if err := db.Save(&category).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}

type contestantForm struct {
	Name      string `json:"name" binding:"required"`
	Surname   string `json:"surname"`
	AvatarUrl string `json:"avatarUrl"`
}

// AddContestantHandler serves POST /api/categories/:id/contestants (admin).
// Contestants are identified by their stable id only. Two contestants may
// share the exact same name without ever being merged.
func AddContestantHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		categoryId := c.Param("id")
		var category model.Category
		if db.Where("id = ?", categoryId).First(&category).RowsAffected != 1 {
			notFound(c, "category not found")
			return
		}
		var form contestantForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "contestant name is required")
			return
		}
		contestant := model.Contestant{
			Id:         uuid.New().String(),
			CategoryID: categoryId,
			Name:       form.Name,
			Surname:    form.Surname,
			AvatarUrl:  form.AvatarUrl,
		}
		if err := db.Create(&contestant).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": contestant.Id})
	}
}

// RemoveContestantHandler serves DELETE /api/contestants/:id (admin). Votes
// pointing at the contestant are removed in the same transaction.
func RemoveContestantHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		contestantId := c.Param("id")
		var contestant model.Contestant
		if db.Where("id = ?", contestantId).First(&contestant).RowsAffected != 1 {
			notFound(c, "contestant not found")
			return
		}
		var removeTxn utils.GormTransaction = func(tx *gorm.DB) error {
			if err := tx.Where("contestant_id = ?", contestantId).Delete(&model.Vote{}).Error; err != nil {
				return err
			}
			return tx.Delete(&contestant).Error
		}
		err := db.Transaction(removeTxn)
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
