package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"blogroll/internal/cache"
	"blogroll/internal/models"
	"blogroll/internal/services"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeUsers map[uint]*models.User

func (f fakeUsers) ByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, services.ErrNotFound
}

func newEngine(users fakeUsers) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	r.Use(LoadUser(users))
	r.GET("/login-as/:id", func(c *gin.Context) {
		id, _ := strconv.Atoi(c.Param("id"))
		if err := Login(c, &models.User{ID: uint(id)}); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	r.GET("/logout", func(c *gin.Context) {
		_ = Logout(c)
		c.Status(http.StatusNoContent)
	})
	return r
}

func do(r http.Handler, method, target string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/auth/login/?next=/posts/3/comment/", LoginURL("/posts/3/comment/"))
	assert.Equal(t, "/auth/login/?next=/follow/%3Fpage%3D2", LoginURL("/follow/?page=2"))
}

func TestAuthRequired(t *testing.T) {
	users := fakeUsers{7: {ID: 7, Username: "kate"}}
	r := newEngine(users)
	r.GET("/private/", AuthRequired(), func(c *gin.Context) {
		c.String(http.StatusOK, CurrentUser(c).Username)
	})

	w := do(r, http.MethodGet, "/private/", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/auth/login/?next=/private/", w.Header().Get("Location"))

	login := do(r, http.MethodGet, "/login-as/7", nil)
	require.Equal(t, http.StatusNoContent, login.Code)
	cookies := login.Result().Cookies()

	w = do(r, http.MethodGet, "/private/", cookies)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "kate", w.Body.String())

	// session of a user that no longer exists counts as anonymous
	stale := do(r, http.MethodGet, "/login-as/99", nil).Result().Cookies()
	w = do(r, http.MethodGet, "/private/", stale)
	assert.Equal(t, http.StatusFound, w.Code)

	out := do(r, http.MethodGet, "/logout", cookies).Result().Cookies()
	w = do(r, http.MethodGet, "/private/", out)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestCachePage(t *testing.T) {
	clock := cache.NewManualClock(time.Now())
	store, err := cache.NewMemory(16, clock)
	require.NoError(t, err)

	users := fakeUsers{1: {ID: 1, Username: "amy"}}
	r := newEngine(users)
	hits := 0
	r.GET("/", CachePage(store, 20*time.Second, "index_page"), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "render %d", hits)
	})
	r.GET("/missing", CachePage(store, 20*time.Second, "index_page"), func(c *gin.Context) {
		hits++
		c.String(http.StatusNotFound, "nope")
	})

	first := do(r, http.MethodGet, "/", nil)
	assert.Equal(t, "render 1", first.Body.String())
	assert.Empty(t, first.Header().Get("X-Cache"))

	second := do(r, http.MethodGet, "/", nil)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Header().Get("Content-Type"), second.Header().Get("Content-Type"))

	// query string is part of the key
	assert.Equal(t, "render 2", do(r, http.MethodGet, "/?page=2", nil).Body.String())

	// logged in viewers get their own entry
	cookies := do(r, http.MethodGet, "/login-as/1", nil).Result().Cookies()
	assert.Equal(t, "render 3", do(r, http.MethodGet, "/", cookies).Body.String())

	clock.Advance(21 * time.Second)
	assert.Equal(t, "render 4", do(r, http.MethodGet, "/", nil).Body.String())

	store.Clear(context.Background())
	assert.Equal(t, "render 5", do(r, http.MethodGet, "/", nil).Body.String())

	do(r, http.MethodGet, "/missing", nil)
	do(r, http.MethodGet, "/missing", nil)
	assert.Equal(t, 7, hits, "non-200 responses are not cached")
}

func TestCachePageSkipsWrites(t *testing.T) {
	store, err := cache.NewMemory(16, cache.SystemClock)
	require.NoError(t, err)
	r := gin.New()
	calls := 0
	r.POST("/", CachePage(store, time.Minute, "p"), func(c *gin.Context) {
		calls++
		c.String(http.StatusOK, "ok")
	})
	do(r, http.MethodPost, "/", nil)
	do(r, http.MethodPost, "/", nil)
	assert.Equal(t, 2, calls)
}
