package server

import (
	"crypto/subtle"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/koinoniahq/koinonia/utils"
	"gorm.io/gorm"
)

const adminSessionTTL = 24 * time.Hour

type loginForm struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginHandler serves POST /api/admin/login. On success it issues a
// signed token carrying a session id and records that session in Redis, so
// authorization is always verified server side. A client-local flag is never
// trusted.
func AdminLoginHandler(db *gorm.DB, sessions *utils.RedisSessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			forbidden(c, "admin auth is disabled")
			return
		}
		var form loginForm
		if err := c.ShouldBindJSON(&form); err != nil {
			badRequest(c, "username and password are required")
			return
		}

		userOk := subtle.ConstantTimeCompare([]byte(form.Username), []byte(os.Getenv("ADMIN_USER"))) == 1
		passOk := subtle.ConstantTimeCompare([]byte(form.Password), []byte(os.Getenv("ADMIN_PASS"))) == 1
		if !userOk || !passOk {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}

		sessionId := uuid.New().String()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"sid": sessionId,
			"exp": time.Now().Add(adminSessionTTL).Unix(),
		})
		signed, err := token.SignedString([]byte(os.Getenv("ADMIN_JWT_SECRET")))
		if err != nil {
			internalError(c, err)
			return
		}

		if err := sessions.CreateSession(sessionId, adminSessionTTL); err != nil {
			internalError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"token": signed})
	}
}

// AdminLogoutHandler serves POST /api/admin/logout, revoking the Redis
// session even though the token itself has not expired yet.
func AdminLogoutHandler(sessions *utils.RedisSessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			forbidden(c, "admin auth is disabled")
			return
		}
		sid := c.GetString("sid")
		if sid == "" {
			badRequest(c, "no active session")
			return
		}
		if err := sessions.RevokeSession(sid); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
