package handlers

import (
	"errors"
	"net/http"

	"blogroll/internal/logger"
	"blogroll/internal/middleware"
	"blogroll/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Render helper to inject common variables like 'current user'
func Render(c *gin.Context, code int, name string, obj gin.H) {
	if obj == nil {
		obj = gin.H{}
	}

	if user := middleware.CurrentUser(c); user != nil {
		obj["CurrentUser"] = user
	}
	obj["CurrentPath"] = c.Request.URL.Path

	c.HTML(code, name, obj)
}

// Error helper
func RenderError(c *gin.Context, code int, message string) {
	Render(c, code, "error.html", gin.H{"Title": http.StatusText(code), "Error": message})
}

// NotFound renders the 404 page naming the requested path.
func NotFound(c *gin.Context) {
	Render(c, http.StatusNotFound, "core/404.html", gin.H{
		"Title": "Page not found",
		"Path":  c.Request.URL.Path,
	})
}

// fail maps a service error to a response. Not-found errors render the 404
// page, anything else is logged and rendered as a 500.
func fail(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		NotFound(c)
		return
	}
	_ = c.Error(err)
	logger.Log.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	RenderError(c, http.StatusInternalServerError, "Something went wrong. Please try again later.")
}

// Health answers liveness probes.
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
