package router

import (
	"time"

	"blogroll/internal/cache"
	"blogroll/internal/handlers"
	"blogroll/internal/middleware"
	"blogroll/internal/services"
	"blogroll/web"

	"github.com/gin-contrib/gzip"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	// IndexCacheTTL is how long a rendered index page is served from cache.
	IndexCacheTTL = 20 * time.Second
	// IndexCacheKey prefixes the cache keys of the index page.
	IndexCacheKey = "index_page"
)

// Deps is everything the HTTP layer needs from the outside.
type Deps struct {
	DB            *gorm.DB
	Cache         cache.Cache
	Media         *services.MediaStore
	SessionName   string
	SessionSecret string
	SiteURL       string
}

// New builds the engine with all middleware, templates and routes.
func New(deps Deps) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(), middleware.Metrics("blogroll"))
	// promhttp compresses on its own, images are already compressed
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/media/"})))

	renderer, err := loadTemplates(web.Templates)
	if err != nil {
		return nil, err
	}
	r.HTMLRender = renderer

	users := services.NewUserService(deps.DB)
	posts := services.NewPostService(deps.DB, deps.Media)
	follows := services.NewFollowService(deps.DB)

	r.GET("/healthz", handlers.Health)
	r.GET("/metrics", middleware.MetricsHandler())
	r.Static("/media", deps.Media.Root())

	seoHandler := handlers.NewSEOHandler(posts, deps.SiteURL)
	r.GET("/robots.txt", seoHandler.RobotsTxt)
	r.GET("/sitemap.xml", seoHandler.SitemapXML)

	store := cookie.NewStore([]byte(deps.SessionSecret))
	store.Options(sessions.Options{Path: "/", MaxAge: 14 * 24 * 3600, HttpOnly: true})
	r.Use(sessions.Sessions(deps.SessionName, store))
	r.Use(middleware.LoadUser(users))

	RegisterRoutes(r, deps.Cache, users, posts, follows)
	r.NoRoute(handlers.NotFound)
	return r, nil
}

func RegisterRoutes(r *gin.Engine, pageCache cache.Cache, users *services.UserService, posts *services.PostService, follows *services.FollowService) {
	// Handlers
	authHandler := handlers.NewAuthHandler(users)
	postHandler := handlers.NewPostHandler(posts, follows, users)
	followHandler := handlers.NewFollowHandler(follows, users)

	// 公共路由 (Public Routes)
	r.GET("/", middleware.CachePage(pageCache, IndexCacheTTL, IndexCacheKey), postHandler.Index) // 首页，缓存 20 秒
	r.GET("/group/:slug/", postHandler.GroupPosts)                                               // 分组帖子
	r.GET("/profile/:username/", postHandler.Profile)                                            // 用户主页
	r.GET("/posts/:post_id/", postHandler.PostDetail)                                            // 帖子详情

	r.GET("/auth/signup/", authHandler.ShowSignup) // 注册页面
	r.POST("/auth/signup/", authHandler.Signup)    // 提交注册
	r.GET("/auth/login/", authHandler.ShowLogin)   // 登录页面
	r.POST("/auth/login/", authHandler.Login)      // 提交登录
	r.GET("/auth/logout/", authHandler.Logout)     // 退出登录

	// 受保护路由 (Protected Routes)
	authorized := r.Group("/")
	authorized.Use(middleware.AuthRequired())
	{
		authorized.GET("/create/", postHandler.ShowCreate)                     // 发帖页面
		authorized.POST("/create/", postHandler.Create)                        // 提交新帖
		authorized.GET("/posts/:post_id/edit/", postHandler.ShowEdit)          // 编辑页面
		authorized.POST("/posts/:post_id/edit/", postHandler.Update)           // 提交编辑
		authorized.POST("/posts/:post_id/comment/", postHandler.AddComment)    // 发表评论
		authorized.GET("/follow/", postHandler.FollowIndex)                    // 关注的作者的帖子
		authorized.GET("/profile/:username/follow/", followHandler.Follow)     // 关注
		authorized.GET("/profile/:username/unfollow/", followHandler.Unfollow) // 取消关注
	}
}
