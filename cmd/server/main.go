package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"blogroll/internal/cache"
	"blogroll/internal/config"
	"blogroll/internal/db"
	"blogroll/internal/logger"
	"blogroll/internal/router"
	"blogroll/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	configPath := flag.String("config", os.Getenv("BLOG_CONFIG"), "path to the YAML config file")
	flag.Parse()

	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, finding env vars from system")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	zl, err := logger.Init(cfg.Logs.Level, cfg.Logs.Development)
	if err != nil {
		log.Fatal(err)
	}
	defer zl.Sync()

	if err := cfg.Validate(); err != nil {
		zl.Fatal("invalid configuration", zap.Error(err))
	}
	if !cfg.Logs.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize Database
	gdb, err := db.Open(cfg.Database)
	if err != nil {
		zl.Fatal("database init failed", zap.Error(err))
	}

	pageCache, err := newPageCache(cfg)
	if err != nil {
		zl.Fatal("cache init failed", zap.Error(err))
	}

	r, err := router.New(router.Deps{
		DB:            gdb,
		Cache:         pageCache,
		Media:         services.NewMediaStore(cfg.Media.Root, int64(cfg.Media.MaxUploadMB)<<20),
		SessionName:   cfg.Server.SessionName,
		SessionSecret: cfg.Server.SessionSecret,
		SiteURL:       cfg.Server.SiteURL,
	})
	if err != nil {
		zl.Fatal("router init failed", zap.Error(err))
	}

	zl.Info("blogroll server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		zl.Fatal("server stopped", zap.Error(err))
	}
}

func newPageCache(cfg *config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "", "memory":
		return cache.NewMemory(cfg.Cache.Size, cache.SystemClock)
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		client, err := cache.Dial(ctx, cfg.Cache.Redis.Addr, cfg.Cache.Redis.Password, cfg.Cache.Redis.DB)
		if err != nil {
			return nil, err
		}
		return cache.NewRedis(client, cfg.Cache.Namespace), nil
	}
	return nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}
