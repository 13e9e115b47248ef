// Package config loads the service configuration from defaults, an optional
// YAML file, a .env file and environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr            string        `mapstructure:"addr" yaml:"addr"`
		ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
		WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
		AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
		Mode            string        `mapstructure:"mode" yaml:"mode"`
	} `mapstructure:"server" yaml:"server"`

	Admin struct {
		Addr  string `mapstructure:"addr" yaml:"addr"`
		Token string `mapstructure:"token" yaml:"-"`
	} `mapstructure:"admin" yaml:"admin"`

	Database Database `mapstructure:"database" yaml:"database"`

	JWT struct {
		Secret string        `mapstructure:"secret" yaml:"-"`
		Issuer string        `mapstructure:"issuer" yaml:"issuer"`
		TTL    time.Duration `mapstructure:"ttl" yaml:"ttl"`
	} `mapstructure:"jwt" yaml:"jwt"`

	Log Log `mapstructure:"log" yaml:"log"`

	Reconcile struct {
		// Schedule is a cron spec for the read-only integrity audit. Empty disables it.
		Schedule string `mapstructure:"schedule" yaml:"schedule"`
	} `mapstructure:"reconcile" yaml:"reconcile"`
}

type Database struct {
	URL      string `mapstructure:"url" yaml:"-"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"-"`
	Name     string `mapstructure:"name" yaml:"name"`
	MaxConns int32  `mapstructure:"max_conns" yaml:"max_conns"`
}

// DSN returns URL when set, otherwise a postgres URL built from the parts.
func (d Database) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	return u.String()
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Load reads the configuration. path names a YAML file; when empty, config.yaml
// is looked up in the working directory and ./config, and a missing file is not
// an error. A .env file in the working directory is loaded into the process
// environment first, without overriding variables already set.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("LEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unprefixed names used by the deployment .env files.
	binds := map[string][]string{
		"database.url":      {"LEDGER_DATABASE_URL", "DATABASE_URL"},
		"database.host":     {"LEDGER_DATABASE_HOST", "DB_HOST"},
		"database.user":     {"LEDGER_DATABASE_USER", "DB_USER"},
		"database.password": {"LEDGER_DATABASE_PASSWORD", "DB_PASSWORD"},
		"database.name":     {"LEDGER_DATABASE_NAME", "DB_NAME"},
		"jwt.secret":        {"LEDGER_JWT_SECRET", "JWT_SECRET"},
	}
	for key, envs := range binds {
		if err := v.BindEnv(append([]string{key}, envs...)...); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:3001"})
	v.SetDefault("server.mode", "release")

	v.SetDefault("admin.addr", "127.0.0.1:8081")
	v.SetDefault("admin.token", "")

	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "finance_db")
	v.SetDefault("database.max_conns", 10)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "budget-ledger")
	v.SetDefault("jwt.ttl", 24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("reconcile.schedule", "")
}

// Validate checks values that have no safe fallback. The JWT secret is only
// required by commands that serve or sign tokens, see RequireJWT.
func (c *Config) Validate() error {
	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", c.Log.Level)
	}
	if c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", c.Log.Format)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("invalid server mode: %s (must be 'debug', 'release' or 'test')", c.Server.Mode)
	}
	if c.Database.URL == "" && (c.Database.Host == "" || c.Database.Name == "") {
		return errors.New("database.url or database.host and database.name are required")
	}
	if c.Database.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be positive, got: %d", c.Database.MaxConns)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("jwt.ttl must be positive, got: %s", c.JWT.TTL)
	}
	if c.Reconcile.Schedule != "" {
		if _, err := cron.ParseStandard(c.Reconcile.Schedule); err != nil {
			return fmt.Errorf("invalid reconcile.schedule %q: %w", c.Reconcile.Schedule, err)
		}
	}
	return nil
}

// RequireJWT reports a missing token secret.
func (c *Config) RequireJWT() error {
	if len(c.JWT.Secret) < 16 {
		return errors.New("jwt.secret must be set and at least 16 characters long")
	}
	return nil
}
