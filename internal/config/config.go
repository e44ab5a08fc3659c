// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// StorageConfig selects where mail photos are written.
type StorageConfig struct {
	Driver    string `mapstructure:"storage_driver"` // fs or s3
	Dir       string `mapstructure:"storage_dir"`
	Endpoint  string `mapstructure:"s3_endpoint"`
	AccessKey string `mapstructure:"s3_access_key"` // Secret
	SecretKey string `mapstructure:"s3_secret_key"` // Secret
	UseSSL    bool   `mapstructure:"s3_use_ssl"`
	Region    string `mapstructure:"s3_region"`
	Bucket    string `mapstructure:"photo_bucket"`
	// PublicBaseURL prefixes stored object names to form photo URLs.
	PublicBaseURL string `mapstructure:"public_base_url"`
}

type DatabaseConfig struct {
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"db_user"`
	Password string `mapstructure:"db_password"` // Secret
	Host     string `mapstructure:"db_host"`
	Port     string `mapstructure:"db_port"`
	Name     string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"db_sslmode"`
}

// DSN returns DATABASE_URL when set, otherwise a URL built from the DB_* parts.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

type Config struct {
	HTTPAddr     string        `mapstructure:"http_addr"`
	LogLevel     string        `mapstructure:"log_level"`
	Timezone     string        `mapstructure:"timezone"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	AllowSignup  bool          `mapstructure:"allow_signup"`
	// CookieSecure marks the session cookie Secure; enable behind HTTPS.
	CookieSecure bool          `mapstructure:"cookie_secure"`
	CORSOrigins  []string      `mapstructure:"cors_allowed_origins"`
	MaxUploadMB  int64         `mapstructure:"max_upload_mb"`

	AMQPURL      string `mapstructure:"amqp_url"`
	AMQPExchange string `mapstructure:"amqp_exchange"`

	Database DatabaseConfig `mapstructure:",squash"`
	Storage  StorageConfig  `mapstructure:",squash"`

	location *time.Location
}

// Location is the business time zone used for day and month boundaries.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}

var keys = []string{
	"http_addr", "log_level", "timezone", "session_ttl", "allow_signup", "cookie_secure",
	"cors_allowed_origins", "max_upload_mb", "amqp_url", "amqp_exchange",
	"database_url", "db_user", "db_password", "db_host", "db_port", "db_name", "db_sslmode",
	"storage_driver", "storage_dir", "s3_endpoint", "s3_access_key", "s3_secret_key",
	"s3_use_ssl", "s3_region", "photo_bucket", "public_base_url",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http_addr", ":8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("timezone", "Asia/Hong_Kong")
	v.SetDefault("session_ttl", "168h")
	v.SetDefault("allow_signup", true)
	v.SetDefault("cookie_secure", false)
	v.SetDefault("cors_allowed_origins", "*")
	v.SetDefault("max_upload_mb", 32)
	v.SetDefault("amqp_exchange", "mailtrack.events")
	v.SetDefault("db_host", "localhost")
	v.SetDefault("db_port", "5432")
	v.SetDefault("db_sslmode", "disable")
	v.SetDefault("storage_driver", "fs")
	v.SetDefault("storage_dir", "./data/photos")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("photo_bucket", "mail-photos")
	v.SetDefault("public_base_url", "http://localhost:8080/photos")
}

// Load reads .env (if present) and the process environment into a Config.
// envFiles defaults to ".env"; a missing file is not an error.
func Load(envFiles ...string) (*Config, error) {
	_ = godotenv.Load(envFiles...)
	return FromViper(viper.New())
}

// FromViper decodes a Config from v after applying defaults and binding the
// environment.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()
	for _, k := range keys {
		if err := v.BindEnv(k, strings.ToUpper(k)); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc

	switch c.Storage.Driver {
	case "fs":
		if c.Storage.Dir == "" {
			return fmt.Errorf("STORAGE_DIR is required for the fs storage driver")
		}
	case "s3":
		if c.Storage.Endpoint == "" {
			return fmt.Errorf("S3_ENDPOINT is required for the s3 storage driver")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.Storage.Driver)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}
	return nil
}
