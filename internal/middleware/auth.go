package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"blogroll/internal/logger"
	"blogroll/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const CurrentUserKey = "user"

// LoginPath is where anonymous users are sent by AuthRequired.
const LoginPath = "/auth/login/"

const sessionUserKey = "user_id"

// UserLoader resolves the user id kept in the session.
type UserLoader interface {
	ByID(ctx context.Context, id uint) (*models.User, error)
}

// LoadUser retrieves user from session and sets to context
func LoadUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID, ok := session.Get(sessionUserKey).(uint)
		if ok {
			user, err := users.ByID(c.Request.Context(), userID)
			if err == nil {
				c.Set(CurrentUserKey, user)
			} else {
				// 用户已被删除，清理失效的会话
				logger.Log.Debug("dropping stale session", zap.Uint("user_id", userID), zap.Error(err))
				session.Delete(sessionUserKey)
				_ = session.Save()
			}
		}
		c.Next()
	}
}

// AuthRequired ensures a user is logged in. LoadUser must run first.
// Anonymous requests are redirected to the login page with the current URL as next.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if CurrentUser(c) == nil {
			c.Redirect(http.StatusFound, LoginURL(c.Request.RequestURI))
			c.Abort()
			return
		}
		c.Next()
	}
}

// LoginURL builds /auth/login/?next=<next>, keeping slashes in next readable.
func LoginURL(next string) string {
	return LoginPath + "?next=" + strings.ReplaceAll(url.QueryEscape(next), "%2F", "/")
}

// CurrentUser returns the logged in user or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// Login stores the user in the session.
func Login(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(sessionUserKey, user.ID)
	return session.Save()
}

func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}
