package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type AppConfig struct {
	IrisBaseURL string `mapstructure:"iris_base_url"`
	IrisWSURL   string `mapstructure:"iris_ws_url"`

	BotPrefix string `mapstructure:"bot_prefix"`

	XUserID    string `mapstructure:"x_user_id"`
	XUserEmail string `mapstructure:"x_user_email"`
	XSessionID string `mapstructure:"x_session_id"`

	EgressMode   string `mapstructure:"egress_mode"`
	EgressDryrun bool   `mapstructure:"egress_dryrun"`

	StoreDriver string `mapstructure:"store_driver"`
	DatabaseURL string `mapstructure:"database_url"`
	RedisURL    string `mapstructure:"redis_url"`

	OperatorRoom string   `mapstructure:"operator_room"`
	AdminIDs     []string `mapstructure:"-"`
	AllowedRooms []string `mapstructure:"-"`

	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	CommitTimeout     time.Duration `mapstructure:"commit_timeout"`
	NotifyTimeout     time.Duration `mapstructure:"notify_timeout"`
	EventTimeout      time.Duration `mapstructure:"event_timeout"`
	HeartbeatInterval time.Duration `mapstructure:"heartbeat_interval"`
	HeartbeatMessage  string        `mapstructure:"heartbeat_message"`

	RecentTournamentsLimit int `mapstructure:"recent_tournaments_limit"`

	MessagesDir string `mapstructure:"messages_dir"`
	OpsAddr     string `mapstructure:"ops_addr"`
}

// Load reads .env (when present), then CONFIG_FILE, then the environment.
// Environment variables win over the file.
func Load() (*AppConfig, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.AdminIDs = splitList(v.GetString("admin_ids"))
	cfg.AllowedRooms = splitList(v.GetString("allowed_rooms"))
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	for _, key := range []string{
		"iris_base_url", "iris_ws_url",
		"x_user_id", "x_user_email", "x_session_id",
		"database_url", "redis_url",
		"operator_room", "admin_ids", "allowed_rooms",
		"heartbeat_message", "messages_dir",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("bot_prefix", "/")
	v.SetDefault("egress_mode", "auto")
	v.SetDefault("egress_dryrun", false)
	v.SetDefault("store_driver", StoreDriverPostgres)
	v.SetDefault("session_ttl", 30*time.Minute)
	v.SetDefault("commit_timeout", 5*time.Second)
	v.SetDefault("notify_timeout", 5*time.Second)
	v.SetDefault("event_timeout", 15*time.Second)
	v.SetDefault("heartbeat_interval", time.Hour)
	v.SetDefault("recent_tournaments_limit", 5)
	v.SetDefault("ops_addr", ":9090")
}

func loadDotEnv() error {
	path := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat env file: %w", err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file: %w", err)
	}
	return nil
}

func (c *AppConfig) normalize() {
	c.IrisBaseURL = strings.TrimSpace(c.IrisBaseURL)
	c.IrisWSURL = strings.TrimSpace(c.IrisWSURL)
	c.BotPrefix = strings.TrimSpace(c.BotPrefix)
	c.OperatorRoom = strings.TrimSpace(c.OperatorRoom)
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.RedisURL = strings.TrimSpace(c.RedisURL)
	c.EgressMode = strings.ToLower(strings.TrimSpace(c.EgressMode))
	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	c.OpsAddr = strings.TrimSpace(c.OpsAddr)
}

// Validate checks required keys and value ranges.
func (c *AppConfig) Validate() error {
	if c.IrisBaseURL == "" {
		return errors.New("IRIS_BASE_URL is required")
	}
	if c.IrisWSURL == "" {
		return errors.New("IRIS_WS_URL is required")
	}
	if c.BotPrefix == "" {
		return errors.New("BOT_PREFIX must not be empty")
	}
	if c.OperatorRoom == "" {
		return errors.New("OPERATOR_ROOM is required")
	}
	switch c.EgressMode {
	case "http", "ws", "auto":
	default:
		return fmt.Errorf("EGRESS_MODE %q is not one of http, ws, auto", c.EgressMode)
	}
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required for the postgres store")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER %q is not one of postgres, memory", c.StoreDriver)
	}
	if c.SessionTTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	if c.CommitTimeout <= 0 || c.NotifyTimeout <= 0 || c.EventTimeout <= 0 {
		return errors.New("COMMIT_TIMEOUT, NOTIFY_TIMEOUT and EVENT_TIMEOUT must be positive")
	}
	if c.HeartbeatInterval < 0 {
		return errors.New("HEARTBEAT_INTERVAL must not be negative")
	}
	if c.RecentTournamentsLimit <= 0 {
		return errors.New("RECENT_TOURNAMENTS_LIMIT must be positive")
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
