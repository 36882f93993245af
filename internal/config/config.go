package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level YAML configuration.
type Config struct {
	Source Source `yaml:"source"`
	Search Search `yaml:"search"`
	Log    Log    `yaml:"log"`
}

// Source selects where the schema comes from. Exactly one of Files, SQLite
// or Postgres must be set.
type Source struct {
	Files    []string    `yaml:"files"`
	SQLite   string      `yaml:"sqlite"`
	Postgres *Connection `yaml:"postgres"`
	Schemas  []string    `yaml:"schemas"`
}

// Connection holds database connection parameters.
type Connection struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// Search tunes the join path search.
type Search struct {
	// MaxDepth caps the number of joined resources; 0 means no cap.
	MaxDepth int `yaml:"max_depth"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DSN builds a PostgreSQL connection string.
func (c *Connection) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Database, c.User, c.Password, c.SSLMode,
	)
}

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyEnv fills in empty Connection fields from environment variables.
// YAML values take precedence; env vars are used only as fallback.
func (c *Config) applyEnv() {
	conn := c.Source.Postgres
	if conn == nil {
		return
	}
	if conn.Host == "" {
		conn.Host = envOr("PGHOST", "POSTGRES_HOST")
	}
	if conn.Port == 0 {
		if s := envOr("PGPORT", "POSTGRES_PORT"); s != "" {
			if p, err := strconv.Atoi(s); err == nil {
				conn.Port = p
			}
		}
	}
	if conn.Database == "" {
		conn.Database = envOr("PGDATABASE", "POSTGRES_DB")
	}
	if conn.User == "" {
		conn.User = envOr("PGUSER", "POSTGRES_USER")
	}
	if conn.Password == "" {
		conn.Password = envOr("PGPASSWORD", "POSTGRES_PASSWORD")
	}
	if conn.SSLMode == "" {
		conn.SSLMode = envOr("PGSSLMODE")
	}
}

// envOr returns the first non-empty value from the given env var names.
func envOr(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// Validate checks the source selection and fills defaults.
func (c *Config) Validate() error {
	kinds := 0
	if len(c.Source.Files) > 0 {
		kinds++
	}
	if c.Source.SQLite != "" {
		kinds++
	}
	if c.Source.Postgres != nil {
		kinds++
	}
	switch kinds {
	case 0:
		return fmt.Errorf("one of source.files, source.sqlite or source.postgres is required")
	case 1:
	default:
		return fmt.Errorf("only one of source.files, source.sqlite or source.postgres may be set")
	}

	if conn := c.Source.Postgres; conn != nil {
		if conn.Host == "" {
			return fmt.Errorf("source.postgres.host is required")
		}
		if conn.Port == 0 {
			conn.Port = 5432
		}
		if conn.Database == "" {
			return fmt.Errorf("source.postgres.database is required")
		}
		if conn.User == "" {
			return fmt.Errorf("source.postgres.user is required")
		}
		if conn.SSLMode == "" {
			conn.SSLMode = "disable"
		}
		if len(c.Source.Schemas) == 0 {
			c.Source.Schemas = []string{"public"}
		}
	}

	if c.Search.MaxDepth < 0 {
		return fmt.Errorf("search.max_depth must not be negative")
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	return nil
}

// UseFiles replaces the configured source with the given schema files.
func (c *Config) UseFiles(files []string) {
	c.Source = Source{Files: files}
}
