package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	APIKey      string
	BaseURL     string
	HTTPTimeout time.Duration
	StrictLogin bool

	Port string
	Env  string

	DBSource      string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration
}

// Load resolves configuration from flags, then environment, then defaults.
// Callers may register their own flags on fs before calling Load.
func Load(fs *pflag.FlagSet, args []string) (*Config, error) {
	v := viper.New()

	fs.String("tmdb_api_key", "", "Movie API key")
	fs.String("tmdb_base_url", "https://api.themoviedb.org/3/", "Movie API base URL")
	fs.Duration("http_timeout", 10*time.Second, "Timeout for a single movie API request")
	fs.Bool("strict_login", true, "Require success=true when validating the login")
	fs.String("port", "8080", "HTTP listen port")
	fs.String("env", "development", "Environment name")
	fs.String("db_source", "", "Postgres connection string")
	fs.String("redis_addr", "", "Redis address")
	fs.String("redis_password", "", "Redis password")
	fs.Int("redis_db", 0, "Redis DB number")
	fs.Duration("session_ttl", 24*time.Hour, "Lifetime of a cached session handle")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range map[string]string{
		"tmdb_api_key":   "TMDB_API_KEY",
		"tmdb_base_url":  "TMDB_BASE_URL",
		"http_timeout":   "HTTP_TIMEOUT",
		"strict_login":   "STRICT_LOGIN",
		"port":           "SERVER_PORT",
		"env":            "ENVIRONMENT",
		"db_source":      "DB_SOURCE",
		"redis_addr":     "REDIS_ADDR",
		"redis_password": "REDIS_PASSWORD",
		"redis_db":       "REDIS_DB",
		"session_ttl":    "SESSION_TTL",
	} {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	cfg := &Config{
		APIKey:        v.GetString("tmdb_api_key"),
		BaseURL:       v.GetString("tmdb_base_url"),
		HTTPTimeout:   v.GetDuration("http_timeout"),
		StrictLogin:   v.GetBool("strict_login"),
		Port:          v.GetString("port"),
		Env:           v.GetString("env"),
		DBSource:      v.GetString("db_source"),
		RedisAddr:     v.GetString("redis_addr"),
		RedisPassword: v.GetString("redis_password"),
		RedisDB:       v.GetInt("redis_db"),
		SessionTTL:    v.GetDuration("session_ttl"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("TMDB_API_KEY environment variable is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || !u.IsAbs() {
		return fmt.Errorf("tmdb base url %q must be absolute", c.BaseURL)
	}
	if !strings.HasSuffix(c.BaseURL, "/") {
		c.BaseURL += "/"
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}
	return nil
}
