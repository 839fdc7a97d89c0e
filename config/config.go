// Package config loads service settings from the environment and an optional
// .env file.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backends accepted by BOARD_BACKEND.
const (
	BackendBolt   = "bolt"
	BackendRedis  = "redis"
	BackendTable  = "table"
	BackendMemory = "memory"
)

type Config struct {
	Debug      bool
	ListenAddr string

	Backend       string
	BoltPath      string
	TasksKey      string
	SchedulesKey  string
	RedisPrefix   string
	BoardTable    string
	StorageConn   string
	RedisConn     string
	DatabaseURL   string
	PanelCacheTTL time.Duration

	RequestTimeout time.Duration
}

// Load reads settings from the process environment. When dotEnvPath exists it
// is loaded first; variables already set in the environment win.
func Load(dotEnvPath string) (*Config, error) {
	if dotEnvPath != "" {
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, fmt.Errorf("config.godotenv(%s): %w", dotEnvPath, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("config.os.Stat(%s): %w", dotEnvPath, err)
		}
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("DEBUG", false)
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("BOARD_BACKEND", BackendBolt)
	v.SetDefault("BOARD_BOLT_PATH", "board.db")
	v.SetDefault("BOARD_TASKS_KEY", "tasks")
	v.SetDefault("BOARD_SCHEDULES_KEY", "schedules")
	v.SetDefault("BOARD_REDIS_PREFIX", "board:")
	v.SetDefault("BOARD_TABLE", "Board")
	v.SetDefault("STORAGE_CONNECTION_STRING", "")
	v.SetDefault("REDIS_CONNECTION_STRING", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("PANEL_CACHE_TTL", time.Minute)
	v.SetDefault("REQUEST_TIMEOUT", 10*time.Second)
	v.AutomaticEnv()

	c := &Config{
		Debug:          v.GetBool("DEBUG"),
		ListenAddr:     v.GetString("LISTEN_ADDR"),
		Backend:        strings.ToLower(strings.TrimSpace(v.GetString("BOARD_BACKEND"))),
		BoltPath:       v.GetString("BOARD_BOLT_PATH"),
		TasksKey:       v.GetString("BOARD_TASKS_KEY"),
		SchedulesKey:   v.GetString("BOARD_SCHEDULES_KEY"),
		RedisPrefix:    v.GetString("BOARD_REDIS_PREFIX"),
		BoardTable:     v.GetString("BOARD_TABLE"),
		StorageConn:    v.GetString("STORAGE_CONNECTION_STRING"),
		RedisConn:      v.GetString("REDIS_CONNECTION_STRING"),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		PanelCacheTTL:  v.GetDuration("PANEL_CACHE_TTL"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),
	}
	if port, ok := os.LookupEnv("FUNCTIONS_CUSTOMHANDLER_PORT"); ok && port != "" {
		c.ListenAddr = ":" + port
	}
	return c, c.validate()
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendBolt:
		if c.BoltPath == "" {
			return fmt.Errorf("BOARD_BOLT_PATH is required for the %s backend", c.Backend)
		}
	case BackendRedis:
		if c.RedisConn == "" {
			return fmt.Errorf("REDIS_CONNECTION_STRING is required for the %s backend", c.Backend)
		}
	case BackendTable:
		if c.StorageConn == "" || c.BoardTable == "" {
			return fmt.Errorf("STORAGE_CONNECTION_STRING and BOARD_TABLE are required for the %s backend", c.Backend)
		}
	case BackendMemory:
	default:
		return fmt.Errorf("invalid BOARD_BACKEND %q", c.Backend)
	}
	if c.PanelCacheTTL < 0 {
		return fmt.Errorf("invalid PANEL_CACHE_TTL: %v", c.PanelCacheTTL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("invalid REQUEST_TIMEOUT: must be greater than zero")
	}
	return nil
}
