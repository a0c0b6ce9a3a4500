package middlewares

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/koinoniahq/koinonia/utils"
	Logger "github.com/koinoniahq/koinonia/utils/log"
)

var (
	// sessionStore tracks live admin sessions. Before using any middleware,
	// make sure it's initialized correctly via Setup.
	sessionStore *utils.RedisSessionStore
)

// Setup initialized all package scoped variables that are needed to perform
// middleware functionalities, such as the Redis session store. This function
// must be called before any middleware is used.
func Setup() {
	store, err := utils.GetRedisSessionStore()
	if err != nil {
		// Abort directly if the session store isn't reachable, which is
		// crucial for server side authorization.
		Logger.Log.Fatalf("fail to setup session store: %s", err.Error())
	}
	SetSessionStore(store)
}

func SetSessionStore(store *utils.RedisSessionStore) {
	sessionStore = store
}

// SessionStore exposes the configured store so that handlers sharing the
// session lifecycle (login/logout) use the same client.
func SessionStore() *utils.RedisSessionStore {
	return sessionStore
}

// AdminAuth verifies the bearer token on admin routes: the signature must
// check out AND the embedded session id must still be alive in Redis. A
// signed token whose session was revoked is rejected.
func AdminAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		raw = strings.TrimPrefix(raw, "Bearer ")
		if raw == "" {
			raw = c.Query("token")
		}
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing admin token"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(os.Getenv("ADMIN_JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid admin token"})
			c.Abort()
			return
		}
		sid, _ := claims["sid"].(string)

		alive, err := sessionStore.IsSessionAlive(sid)
		if err != nil {
			Logger.Log.Error("session store unavailable: ", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "cannot verify session"})
			c.Abort()
			return
		}
		if !alive {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired or revoked"})
			c.Abort()
			return
		}

		c.Set("sid", sid)
		c.Next()
	}
}
