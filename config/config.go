// Package config loads service settings from the environment (and .env).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Backends accepted by STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRemote   = "remote"
	BackendPostgres = "postgres"
)

type Config struct {
	Port         string `env:"PORT" envDefault:"5300"`
	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	DatabaseURL  string `env:"DATABASE_URL"`
	LogFormat    string `env:"LOG_FORMAT" envDefault:"text"`
	LogLevel     string `env:"LOG_LEVEL" envDefault:"info"`

	Remote RemoteConfig
	R2     R2Config

	MemoryLatency time.Duration `env:"MEMORY_LATENCY" envDefault:"0s"`
	CurrentUserID string        `env:"CURRENT_USER_ID" envDefault:"1"`
	VoteReward    int64         `env:"VOTE_REWARD" envDefault:"10"`

	GatewayToken   string   `env:"GATEWAY_TOKEN"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
	UploadDir      string   `env:"UPLOAD_DIR" envDefault:"./uploads"`
	BodyLimitMB    int      `env:"BODY_LIMIT_MB" envDefault:"16"`

	ChallengeSweepInterval time.Duration `env:"CHALLENGE_SWEEP_INTERVAL" envDefault:"1m"`
	MirrorInterval         time.Duration `env:"MIRROR_INTERVAL" envDefault:"30s"`
}

// RemoteConfig points at the hosted table API.
type RemoteConfig struct {
	URL       string  `env:"REMOTE_API_URL"`
	ProjectID string  `env:"REMOTE_PROJECT_ID"`
	PublicKey string  `env:"REMOTE_PUBLIC_KEY"`
	RateLimit float64 `env:"REMOTE_RATE_LIMIT" envDefault:"10"`
	MaxTries  uint    `env:"REMOTE_MAX_TRIES" envDefault:"4"`
}

func (r RemoteConfig) Enabled() bool {
	return r.URL != "" && r.ProjectID != ""
}

// R2Config holds Cloudflare R2 credentials. Uploads fall back to local disk
// when any of them is missing.
type R2Config struct {
	AccountID       string `env:"CLOUDFLARE_ACCOUNT_ID"`
	AccessKeyID     string `env:"R2_ACCESS_KEY_ID"`
	AccessKeySecret string `env:"R2_ACCESS_KEY_SECRET"`
	Bucket          string `env:"R2_BUCKET_NAME"`
	CDNBaseURL      string `env:"CDN_BASE_URL"`
}

func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.AccessKeySecret != "" && r.Bucket != ""
}

// Load reads .env (when present) and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("⚠️  No .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse reads the process environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	switch c.StoreBackend {
	case BackendMemory:
	case BackendRemote:
		if !c.Remote.Enabled() {
			return fmt.Errorf("STORE_BACKEND=remote requires REMOTE_API_URL and REMOTE_PROJECT_ID")
		}
	case BackendPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("STORE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}
	if c.CurrentUserID == "" {
		return fmt.Errorf("CURRENT_USER_ID must not be empty")
	}
	if c.ChallengeSweepInterval <= 0 {
		return fmt.Errorf("CHALLENGE_SWEEP_INTERVAL must be positive")
	}
	if c.MirrorInterval <= 0 {
		return fmt.Errorf("MIRROR_INTERVAL must be positive")
	}
	if c.VoteReward < 0 {
		return fmt.Errorf("VOTE_REWARD must not be negative")
	}
	for i, o := range c.AllowedOrigins {
		c.AllowedOrigins[i] = strings.TrimSpace(o)
	}
	return nil
}

// SetupLogging configures the global logrus logger.
func (c Config) SetupLogging() {
	if strings.EqualFold(c.LogFormat, "json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
