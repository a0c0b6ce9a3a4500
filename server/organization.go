package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type organizationForm struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	AvatarUrl   string `json:"avatarUrl"`
	Links       string `json:"links"`
}

// CreateOrganizationHandler serves POST /api/organizations (admin).
func CreateOrganizationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form organizationForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "organization name is required")
			return
		}
		org := model.Organization{
			Id:          uuid.New().String(),
			Name:        form.Name,
			Description: form.Description,
			AvatarUrl:   form.AvatarUrl,
			Links:       datatypes.JSON(form.Links),
		}
		if err := db.Create(&org).Error; err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": org.Id})
	}
}

// GetOrganizationHandler serves GET /api/organizations/:id.
func GetOrganizationHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var org model.Organization
		queryResult := db.Preload("Groups").Where("id = ?", c.Param("id")).First(&org)
		if queryResult.RowsAffected != 1 {
			notFound(c, "organization not found")
			return
		}

		var followerCount int64
		db.Model(&model.OrganizationFollow{}).Where("organization_id = ?", org.Id).Count(&followerCount)

		c.JSON(http.StatusOK, gin.H{
			"id":            org.Id,
			"name":          org.Name,
			"description":   org.Description,
			"avatarUrl":     org.AvatarUrl,
			"links":         org.Links,
			"followerCount": followerCount,
			"groups":        org.Groups,
		})
	}
}
