package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Port          string `yaml:"port"`
		SessionName   string `yaml:"session_name"`
		SessionSecret string `yaml:"session_secret"`
		SiteURL       string `yaml:"site_url"` // absolute base used in sitemap.xml
	} `yaml:"server"`
	Database Database `yaml:"db"`
	Cache    struct {
		Backend   string `yaml:"backend"` // memory | redis
		Size      int    `yaml:"size"`
		Namespace string `yaml:"namespace"`
		Redis     struct {
			Addr     string `yaml:"addr"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Media struct {
		Root        string `yaml:"root"`
		MaxUploadMB int    `yaml:"max_upload_mb"`
	} `yaml:"media"`
	Logs struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"logs"`
}

type Database struct {
	Driver   string   `yaml:"driver"` // postgres | mysql | sqlite
	DSN      string   `yaml:"dsn"`
	Replicas []string `yaml:"replicas"`
}

// DefaultSessionSecret only exists so local development works out of the box.
const DefaultSessionSecret = "secret_key_change_me"

// Default 返回本地开发可直接运行的配置
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Server.SessionName = "blogroll_session"
	cfg.Server.SessionSecret = DefaultSessionSecret
	cfg.Server.SiteURL = "http://localhost:8080"
	cfg.Database.Driver = "postgres"
	cfg.Database.DSN = "host=localhost user=postgres password=postgres dbname=blogroll port=5432 sslmode=disable TimeZone=UTC"
	cfg.Cache.Backend = "memory"
	cfg.Cache.Size = 500
	cfg.Cache.Namespace = "blogroll"
	cfg.Cache.Redis.Addr = "localhost:6379"
	cfg.Media.Root = "./media"
	cfg.Media.MaxUploadMB = 5
	cfg.Logs.Level = "info"
	return cfg
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that are unsafe outside development.
func (c *Config) Validate() error {
	if !c.Logs.Development && (c.Server.SessionSecret == "" || c.Server.SessionSecret == DefaultSessionSecret) {
		return fmt.Errorf("session secret must be set (SESSION_SECRET or server.session_secret) when logs.development is false")
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Server.Port, "PORT")
	setString(&c.Server.SessionSecret, "SESSION_SECRET")
	setString(&c.Server.SiteURL, "SITE_URL")
	setString(&c.Database.Driver, "DATABASE_DRIVER")
	setString(&c.Database.DSN, "DATABASE_URL")
	if v := os.Getenv("DATABASE_REPLICAS"); v != "" {
		c.Database.Replicas = strings.Split(v, ",")
	}
	setString(&c.Cache.Backend, "CACHE_BACKEND")
	setString(&c.Cache.Redis.Addr, "REDIS_ADDR")
	setString(&c.Cache.Redis.Password, "REDIS_PASSWORD")
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Cache.Redis.DB = n
	}
	setString(&c.Media.Root, "MEDIA_ROOT")
	setString(&c.Logs.Level, "LOG_LEVEL")
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
