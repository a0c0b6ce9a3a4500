package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/model"
	"gorm.io/gorm"
)

type createUserForm struct {
	Name      string `json:"name" binding:"required"`
	Username  string `json:"username" binding:"required"`
	Email     string `json:"email"`
	Bio       string `json:"bio"`
	AvatarUrl string `json:"avatarUrl"`
}

// CreateUserHandler serves POST /api/users. Usernames are unique, a taken
// one is a conflict.
func CreateUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form createUserForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "name and username are required")
			return
		}

		var existing model.User
		if db.Where("username = ?", form.Username).First(&existing).RowsAffected == 1 {
			conflict(c, "username is taken")
			return
		}

		user := model.User{
			Id:        uuid.New().String(),
			Name:      form.Name,
			Username:  form.Username,
			Email:     form.Email,
			Bio:       form.Bio,
			AvatarUrl: form.AvatarUrl,
		}
		if err := db.Create(&user).Error; err != nil {
			conflict(c, "username is taken")
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": user.Id})
	}
}

// GetUserHandler serves GET /api/users/:id.
func GetUserHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var user model.User
		queryResult := db.Preload("Groups").Preload("FollowedOrganizations").
			Where("id = ?", c.Param("id")).First(&user)
		if queryResult.RowsAffected != 1 {
			notFound(c, "user not found")
			return
		}

		var followerCount int64
		db.Model(&model.UserFollow{}).Where("following_id = ?", user.Id).Count(&followerCount)
		var followingCount int64
		db.Model(&model.UserFollow{}).Where("user_id = ?", user.Id).Count(&followingCount)

		c.JSON(http.StatusOK, gin.H{
			"id":             user.Id,
			"name":           user.Name,
			"username":       user.Username,
			"email":          user.Email,
			"bio":            user.Bio,
			"avatarUrl":      user.AvatarUrl,
			"followerCount":  followerCount,
			"followingCount": followingCount,
			"groups":         user.Groups,
			"organizations":  user.FollowedOrganizations,
		})
	}
}
