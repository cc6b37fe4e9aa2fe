package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/kdimtricp/damagecheck/internal/database"
)

const (
	CameraBrowser = "browser"
	CameraDevice  = "device"
)

type Config struct {
	Server   ServerConfig
	Session  SessionConfig
	Backend  BackendConfig
	Database DatabaseConfig
	Camera   CameraConfig
}

type ServerConfig struct {
	Address       string `envconfig:"ADDRESS" default:":8080"`
	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	MaxUploadSize int64  `envconfig:"MAX_UPLOAD_SIZE" default:"33554432"`
	PreviewDir    string `envconfig:"PREVIEW_DIR" default:"./previews"`
}

type SessionConfig struct {
	CookieName     string        `envconfig:"SESSION_COOKIE" default:"damagecheck_session"`
	IdleTTL        time.Duration `envconfig:"SESSION_IDLE_TTL" default:"30m"`
	AuthCookieName string        `envconfig:"AUTH_COOKIE" default:"token"`
}

type BackendConfig struct {
	URL          string        `envconfig:"BACKEND_URL" default:"http://localhost:5000/api"`
	Timeout      time.Duration `envconfig:"BACKEND_TIMEOUT" default:"120s"`
	MediaBaseURL string        `envconfig:"MEDIA_BASE_URL" default:"http://localhost:5000/"`
}

type DatabaseConfig struct {
	Type     string `envconfig:"DB_TYPE" default:"sqlite"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"damagecheck"`
	Password string `envconfig:"DB_PASSWORD" default:"damagecheck_dev"`
	Name     string `envconfig:"DB_NAME" default:"damagecheck"`
	Path     string `envconfig:"DB_PATH" default:"./damagecheck.db"`
}

type CameraConfig struct {
	Source      string `envconfig:"CAMERA_SOURCE" default:"browser"`
	BackDevice  int    `envconfig:"CAMERA_BACK_DEVICE" default:"0"`
	FrontDevice int    `envconfig:"CAMERA_FRONT_DEVICE" default:"1"`
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := new(Config)
	if err := envconfig.Process("", cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if c.Session.IdleTTL <= 0 {
		return fmt.Errorf("SESSION_IDLE_TTL must be positive")
	}
	if _, err := url.ParseRequestURI(c.Backend.URL); err != nil {
		return fmt.Errorf("invalid BACKEND_URL: %w", err)
	}
	if _, err := c.MediaBase(); err != nil {
		return err
	}
	switch c.Database.Type {
	case database.TypeSQLite, database.TypePostgres:
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", c.Database.Type)
	}
	switch c.Camera.Source {
	case CameraBrowser, CameraDevice:
	default:
		return fmt.Errorf("unsupported CAMERA_SOURCE %q", c.Camera.Source)
	}
	return nil
}

// MediaBase is the base for relative image urls; nil when unset.
func (c *Config) MediaBase() (*url.URL, error) {
	if c.Backend.MediaBaseURL == "" {
		return nil, nil
	}
	u, err := url.Parse(c.Backend.MediaBaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid MEDIA_BASE_URL: %w", err)
	}
	return u, nil
}

func (c *Config) DB() database.Config {
	return database.Config{
		Type:       c.Database.Type,
		Host:       c.Database.Host,
		Port:       c.Database.Port,
		User:       c.Database.User,
		Password:   c.Database.Password,
		Name:       c.Database.Name,
		SQLitePath: c.Database.Path,
	}
}
