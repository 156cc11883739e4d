package database

import (
	"errors"
	"fmt"
	"time"
)

// Config holds database configuration
type Config struct {
	DatabasePath    string        `json:"database_path"`
	MaxConnections  int           `json:"max_connections"`
	ConnMaxLifetime time.Duration `json:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `json:"conn_max_idle_time"`
	BusyTimeout     time.Duration `json:"busy_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
}

// DefaultConfig returns production-ready database configuration.
// SQLite serves concurrent reads well with a small pool; writes go through
// a single writer regardless of pool size.
func DefaultConfig() *Config {
	return &Config{
		DatabasePath:    "./data/intouch.db",
		MaxConnections:  10,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: time.Minute * 10,
		BusyTimeout:     5 * time.Second,
		WriteTimeout:    30 * time.Second,
	}
}

// Validate ensures the configuration is valid
func (c *Config) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("database path cannot be empty")
	}
	if c.MaxConnections <= 0 {
		return errors.New("max connections must be greater than 0")
	}
	if c.ConnMaxLifetime <= 0 {
		return errors.New("connection max lifetime must be greater than 0")
	}
	if c.ConnMaxIdleTime <= 0 {
		return errors.New("connection max idle time must be greater than 0")
	}
	if c.BusyTimeout < 0 {
		return errors.New("busy timeout cannot be negative")
	}
	if c.WriteTimeout <= 0 {
		return errors.New("write timeout must be greater than 0")
	}
	return nil
}

// DSN returns the go-sqlite3 connection string for this configuration.
func (c *Config) DSN() string {
	return fmt.Sprintf("%s?_busy_timeout=%d&_journal_mode=WAL&_foreign_keys=on",
		c.DatabasePath, c.BusyTimeout.Milliseconds())
}
