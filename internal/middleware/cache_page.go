package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"blogroll/internal/cache"
	"blogroll/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type cachedPage struct {
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}

// bodyWriter 在写给客户端的同时记录响应体
type bodyWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *bodyWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageCacheKey is the key CachePage stores a response under. The viewer is part
// of the key because the page shows who is logged in.
func PageCacheKey(prefix, requestURI string, viewerID uint) string {
	return fmt.Sprintf("%s:%s:u%d", prefix, requestURI, viewerID)
}

// CachePage caches successful GET and HEAD responses for ttl. Entries are not
// invalidated by writes; they expire or are removed with store.Clear.
func CachePage(store cache.Cache, ttl time.Duration, prefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.Next()
			return
		}

		var viewerID uint
		if user := CurrentUser(c); user != nil {
			viewerID = user.ID
		}
		key := PageCacheKey(prefix, c.Request.RequestURI, viewerID)
		ctx := c.Request.Context()

		if raw, ok := store.Get(ctx, key); ok {
			var page cachedPage
			if err := json.Unmarshal(raw, &page); err == nil {
				cacheLookups.WithLabelValues(prefix, "hit").Inc()
				c.Header("X-Cache", "HIT")
				c.Data(http.StatusOK, page.ContentType, page.Body)
				c.Abort()
				return
			}
			store.Delete(ctx, key)
		}
		cacheLookups.WithLabelValues(prefix, "miss").Inc()

		w := &bodyWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if w.Status() != http.StatusOK || len(c.Errors) > 0 {
			return
		}
		raw, err := json.Marshal(cachedPage{ContentType: w.Header().Get("Content-Type"), Body: w.body.Bytes()})
		if err != nil {
			logger.Log.Warn("encode cached page", zap.String("key", key), zap.Error(err))
			return
		}
		store.Set(ctx, key, raw, ttl)
	}
}
