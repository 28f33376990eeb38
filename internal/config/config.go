package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/weiawesome/wes-io-blog/pkg/config"
	"github.com/weiawesome/wes-io-blog/pkg/storage"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Reconciler ReconcilerConfig
	Auth       AuthConfig
	Feed       FeedConfig
	Storage    storage.Config
	RateLimit  RateLimitConfig `mapstructure:"rate_limit"`
	CORS       CORSConfig      `mapstructure:"cors"`
	Log        LogConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	FilePath        string `mapstructure:"file_path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

// RedisConfig configures the follower-count cache. An empty address
// disables it and counts are read from the database.
type RedisConfig struct {
	Address  string        `mapstructure:"address"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CountTTL time.Duration `mapstructure:"count_ttl"`
}

// KafkaConfig configures the optional follows CDC consumer.
type KafkaConfig struct {
	Brokers string `mapstructure:"brokers"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type ReconcilerConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	TopN     int           `mapstructure:"top_n"`
}

type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

type FeedConfig struct {
	PageSize    int           `mapstructure:"page_size"`
	TimelineTTL time.Duration `mapstructure:"timeline_ttl"`
	ImageURLTTL time.Duration `mapstructure:"image_url_ttl"`
	MaxImageMB  int64         `mapstructure:"max_image_mb"`
}

type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads ./config/config.yaml (optional), .env and the environment.
func Load() (*Config, error) {
	return LoadFrom("./config", "config")
}

// LoadFrom is Load with an explicit config location.
func LoadFrom(configPath, configName string) (*Config, error) {
	v, err := pkgconfig.Load(configPath, configName,
		pkgconfig.WithDefaults(defaults),
		pkgconfig.WithEnv(envNames),
	)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Feed.PageSize < 1 {
		return fmt.Errorf("feed.page_size must be positive, got %d", c.Feed.PageSize)
	}
	if c.Feed.TimelineTTL < 0 {
		return fmt.Errorf("feed.timeline_ttl must not be negative, got %s", c.Feed.TimelineTTL)
	}
	switch c.Database.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("database.driver %q is not one of postgres, mysql, sqlite", c.Database.Driver)
	}
	return nil
}

var defaults = map[string]any{
	"server.host":                  "0.0.0.0",
	"server.port":                  8080,
	"database.driver":              "sqlite",
	"database.host":                "localhost",
	"database.port":                5432,
	"database.user":                "postgres",
	"database.password":            "postgres",
	"database.dbname":              "blog",
	"database.sslmode":             "disable",
	"database.file_path":           "./data/blog.db",
	"database.max_idle_conns":      10,
	"database.max_open_conns":      100,
	"database.conn_max_lifetime":   60,
	"database.log_level":           "warn",
	"redis.address":                "",
	"redis.password":               "",
	"redis.db":                     0,
	"redis.count_ttl":              "0s",
	"kafka.brokers":                "",
	"kafka.topic":                  "blog.public.follows",
	"kafka.group_id":               "blog-follow-counts",
	"reconciler.interval":          "60s",
	"reconciler.top_n":             100,
	"auth.jwt_secret":              "",
	"auth.issuer":                  "wes-io-blog",
	"auth.access_token_ttl":        "24h",
	"feed.page_size":               10,
	"feed.timeline_ttl":            "20s",
	"feed.image_url_ttl":           "1h",
	"feed.max_image_mb":            5,
	"storage.type":                 "local",
	"storage.local.base_path":      "./media",
	"storage.local.url_prefix":     "/media",
	"storage.s3.region":            "us-east-1",
	"storage.s3.bucket":            "",
	"storage.s3.key_prefix":        "",
	"storage.s3.endpoint":          "",
	"storage.s3.access_key_id":     "",
	"storage.s3.secret_access_key": "",
	"storage.s3.use_path_style":    false,
	"storage.s3.public_url":        "",
	"rate_limit.rps":               5,
	"rate_limit.burst":             10,
	"cors.allowed_origins":         []string{"*"},
	"log.level":                    "info",
	"log.pretty":                   false,
}

// envNames are deployment variable names that differ from the automatic
// SECTION_KEY mapping (e.g. FEED_PAGE_SIZE, REDIS_ADDRESS).
var envNames = map[string]string{
	"server.port":                  "PORT",
	"database.driver":              "DB_DRIVER",
	"database.host":                "DB_HOST",
	"database.port":                "DB_PORT",
	"database.user":                "DB_USER",
	"database.password":            "DB_PASSWORD",
	"database.dbname":              "DB_NAME",
	"database.sslmode":             "DB_SSLMODE",
	"database.file_path":           "DB_FILE_PATH",
	"database.max_idle_conns":      "DB_MAX_IDLE_CONNS",
	"database.max_open_conns":      "DB_MAX_OPEN_CONNS",
	"database.conn_max_lifetime":   "DB_CONN_MAX_LIFETIME",
	"database.log_level":           "DB_LOG_LEVEL",
	"auth.jwt_secret":              "JWT_SECRET",
	"auth.issuer":                  "JWT_ISSUER",
	"auth.access_token_ttl":        "JWT_ACCESS_TOKEN_TTL",
	"storage.s3.endpoint":          "S3_ENDPOINT",
	"storage.s3.region":            "S3_REGION",
	"storage.s3.bucket":            "S3_BUCKET",
	"storage.s3.key_prefix":        "S3_KEY_PREFIX",
	"storage.s3.access_key_id":     "S3_ACCESS_KEY_ID",
	"storage.s3.secret_access_key": "S3_SECRET_ACCESS_KEY",
	"storage.s3.use_path_style":    "S3_USE_PATH_STYLE",
	"storage.s3.public_url":        "S3_PUBLIC_URL",
}
