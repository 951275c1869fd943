package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/kelseyhightower/envconfig"

	"blogGraph/database"
)

// Config holds everything the app needs to know at startup. It's read from a
// .config.json file if there is one, then any BLOG_* environment variable wins.
type Config struct {
	Port     int            `json:"port"`
	Env      string         `json:"env"`
	Pepper   string         `json:"pepper"`
	HMACKey  string         `json:"hmac_key" split_words:"true"`
	Database DatabaseConfig `json:"database"`
}

// IsProd reports whether we're running in production.
func (c Config) IsProd() bool {
	return c.Env == "prod"
}

// DatabaseConfig describes how to reach the database. Postgres needs the
// host, port etc., sqlite only a Path.
type DatabaseConfig struct {
	Dialect  string `json:"dialect"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

// ConnectionInfo returns the dsn for postgres, or the file path for sqlite.
func (dc DatabaseConfig) ConnectionInfo() string {
	if dc.Dialect == database.DialectSQLite {
		return dc.Path
	}
	if dc.Password == "" {
		return fmt.Sprintf("host=%s port=%d user=%s dbname=%s sslmode=disable", dc.Host, dc.Port, dc.User, dc.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", dc.Host, dc.Port, dc.User, dc.Password, dc.Name)
}

func DefaultConfig() Config {
	return Config{
		Port:     1111,
		Env:      "dev",
		Pepper:   "secret-random-string",
		HMACKey:  "secret-hmac-key",
		Database: DefaultDatabaseConfig(),
	}
}

func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Dialect:  database.DialectPostgres,
		Host:     "localhost",
		Port:     5432,
		User:     "postgres",
		Password: "",
		Name:     "blog_graph",
		Path:     "blog_graph.db",
	}
}

// LoadConfig reads the config file at path on top of the defaults. In production
// the file is required, so that the dev secrets never end up in use there.
func LoadConfig(path string, isProd bool) (Config, error) {
	c := DefaultConfig()

	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !isProd:
		slog.Info("no config file, using the dev setup", "path", path)
	case err != nil:
		return c, fmt.Errorf("err opening config file: %w", err)
	default:
		defer f.Close()
		if err := json.NewDecoder(f).Decode(&c); err != nil {
			return c, fmt.Errorf("err decoding config file %s: %w", path, err)
		}
		slog.Info("loaded config file", "path", path)
	}

	if err := envconfig.Process("blog", &c); err != nil {
		return c, fmt.Errorf("err reading environment: %w", err)
	}
	if isProd {
		c.Env = "prod"
	}
	return c, nil
}
