package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Gateway modes.
const (
	GatewayERP   = "erp"
	GatewayStore = "store"
)

// Config is the service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	ERP      ERPConfig      `mapstructure:"erp"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Editing  EditingConfig  `mapstructure:"editing"`
	Log      LogConfig      `mapstructure:"log"`
}

// ServerConfig HTTP server settings.
type ServerConfig struct {
	Port     int        `mapstructure:"port"`
	BaseURL  string     `mapstructure:"base_url"`
	Timezone string     `mapstructure:"timezone"`
	CORS     CORSConfig `mapstructure:"cors"`
}

// CORSConfig cross-origin settings.
type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// GatewayConfig selects where timetables live.
type GatewayConfig struct {
	Mode string `mapstructure:"mode"` // erp | store
}

// ERPConfig is everything the ERP client needs. It is passed to the client
// explicitly; nothing is read from process-wide state.
type ERPConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	SessionID string        `mapstructure:"session_id"`
	Database  string        `mapstructure:"database"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// DatabaseConfig PostgreSQL settings, used by the store gateway.
type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Name            string `mapstructure:"name"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"sslmode"`
	Timezone        string `mapstructure:"timezone"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`  // minutes
	ConnMaxIdleTime int    `mapstructure:"conn_max_idle_time"` // minutes
}

// DSN builds the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode, c.Timezone,
	)
}

// RedisConfig settings. An empty Addr disables Redis; commit locks and
// rate limits then stay process-local.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis address is configured.
func (c *RedisConfig) Enabled() bool { return c.Addr != "" }

// AuthConfig bearer token settings. A secret is required unless
// AllowAnonymous is set; then, with no secret, every request runs as the
// local admin.
type AuthConfig struct {
	JWTSecret      string        `mapstructure:"jwt_secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
	AllowAnonymous bool          `mapstructure:"allow_anonymous"` // development only
}

// Enabled reports whether tokens are verified.
func (c *AuthConfig) Enabled() bool { return c.JWTSecret != "" }

// EditingConfig controls editing sessions.
type EditingConfig struct {
	SessionTTL       time.Duration `mapstructure:"session_ttl"`
	SweepSpec        string        `mapstructure:"sweep_spec"`
	EnforceConflicts bool          `mapstructure:"enforce_conflicts"`
	CommitLockTTL    time.Duration `mapstructure:"commit_lock_ttl"`
	CommitRateLimit  int           `mapstructure:"commit_rate_limit"` // per user per minute, 0 disables
}

// LogConfig logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration with precedence env > file > defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	// ── defaults ──
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.timezone", "UTC")
	v.SetDefault("server.cors.allow_origins", []string{"http://localhost:5173"})

	v.SetDefault("gateway.mode", GatewayERP)

	v.SetDefault("erp.base_url", "http://localhost:8069")
	v.SetDefault("erp.session_id", "")
	v.SetDefault("erp.database", "")
	v.SetDefault("erp.timeout", "15s")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.name", "edusync")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("db.max_open_conns", 25)
	v.SetDefault("db.max_idle_conns", 10)
	v.SetDefault("db.conn_max_lifetime", 60)
	v.SetDefault("db.conn_max_idle_time", 30)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "edusync")
	v.SetDefault("auth.access_token_ttl", "15m")
	v.SetDefault("auth.allow_anonymous", false)

	v.SetDefault("editing.session_ttl", "30m")
	v.SetDefault("editing.sweep_spec", "@every 1m")
	v.SetDefault("editing.enforce_conflicts", true)
	v.SetDefault("editing.commit_lock_ttl", "30s")
	v.SetDefault("editing.commit_rate_limit", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// ── config file ──
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	// ── environment ──
	v.SetEnvPrefix("EDUSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// no file: defaults and environment only
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the settings the service cannot start without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid config: server.port must be between 1 and 65535")
	}
	switch c.Gateway.Mode {
	case GatewayERP:
		if c.ERP.BaseURL == "" {
			return fmt.Errorf("invalid config: erp.base_url is required in erp mode")
		}
	case GatewayStore:
	default:
		return fmt.Errorf("invalid config: gateway.mode must be %q or %q, got %q", GatewayERP, GatewayStore, c.Gateway.Mode)
	}
	if c.Auth.JWTSecret == "" && !c.Auth.AllowAnonymous {
		return fmt.Errorf("invalid config: auth.jwt_secret is required unless auth.allow_anonymous is set")
	}
	if c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 16 {
		return fmt.Errorf("invalid config: auth.jwt_secret must be at least 16 characters")
	}
	if c.Editing.SessionTTL <= 0 {
		return fmt.Errorf("invalid config: editing.session_ttl must be positive")
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("invalid config: server.timezone: %w", err)
	}
	return nil
}
