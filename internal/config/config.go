// Package config loads wbsctl settings from flags, WBS_* environment
// variables, an optional wbsctl.yaml and built-in defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverRedis    = "redis"
)

// EnvPrefix is prepended to every environment key, e.g. WBS_STORE_DRIVER.
const EnvPrefix = "WBS"

type Config struct {
	Store    StoreConfig  `mapstructure:"store"`
	Server   ServerConfig `mapstructure:"server"`
	Auth     AuthConfig   `mapstructure:"auth"`
	Log      LogConfig    `mapstructure:"log"`
	User     string       `mapstructure:"user"`
	Baseline string       `mapstructure:"baseline"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

type StoreConfig struct {
	Driver      string `mapstructure:"driver"`
	SQLitePath  string `mapstructure:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn"`
	RedisURL    string `mapstructure:"redis_url"`
	RedisPrefix string `mapstructure:"redis_prefix"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	Environment     string        `mapstructure:"environment"` // development, production
}

// Addr is the listen address.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console, json, or empty for auto
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.driver", DriverSQLite)
	v.SetDefault("store.sqlite_path", filepath.Join("~", ".wbsctl", "wbsctl.db"))
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("store.redis_url", "")
	v.SetDefault("store.redis_prefix", "wbs:")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.environment", "development")

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "")

	v.SetDefault("user", "local")
	v.SetDefault("baseline", "")
}

// flagKeys maps command-line flags onto config keys.
var flagKeys = map[string]string{
	"user":      "user",
	"baseline":  "baseline",
	"store":     "store.driver",
	"db":        "store.sqlite_path",
	"log-level": "log.level",
}

// Load reads configuration. When file is empty, wbsctl.yaml is looked up in
// the working directory and $HOME/.wbsctl and may be absent; an explicit
// file must exist. Flags present in flags and changed by the user win over
// every other source.
func Load(file string, flags *pflag.FlagSet) (*Config, error) {
	// .env is optional and never overrides the real environment
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("wbsctl")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".wbsctl"))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("binding flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))

	path, err := expandHome(cfg.Store.SQLitePath)
	if err != nil {
		return nil, err
	}
	cfg.Store.SQLitePath = path

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Validate checks the store selection and basic server settings.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLitePath == "" {
			return fmt.Errorf("store.sqlite_path is required for the sqlite driver")
		}
	case DriverPostgres:
		if c.Store.PostgresDSN == "" {
			return fmt.Errorf("store.postgres_dsn is required for the postgres driver")
		}
	case DriverRedis:
		if c.Store.RedisURL == "" {
			return fmt.Errorf("store.redis_url is required for the redis driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q (want sqlite, postgres or redis)", c.Store.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if strings.TrimSpace(c.User) == "" {
		return fmt.Errorf("user must not be blank")
	}
	return nil
}

// ValidateServe adds the requirements of the HTTP host.
func (c *Config) ValidateServe() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret (WBS_AUTH_JWT_SECRET) is required to serve")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
