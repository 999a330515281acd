// Package config loads server settings from defaults, an optional YAML file
// and the environment, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// FileEnv names the environment variable holding the YAML config path.
const FileEnv = "SYMPTOMCHECK_CONFIG"

const (
	DefaultPort             = "8080"
	DefaultStoreDriver      = "sqlite"
	DefaultSQLitePath       = "symptomcheck.db"
	DefaultLogLevel         = "info"
	DefaultAnalysisInterval = time.Second
	DefaultSessionTTL       = 30 * time.Minute
	DefaultSweepInterval    = time.Minute
)

type Config struct {
	Port             string        `yaml:"port"`
	StoreDriver      string        `yaml:"store_driver"`
	DatabaseURL      string        `yaml:"database_url"`
	SQLitePath       string        `yaml:"sqlite_path"`
	RedisAddr        string        `yaml:"redis_addr"`
	TelegramToken    string        `yaml:"telegram_bot_token"`
	DoctorChatID     int64         `yaml:"doctor_chat_id"`
	LogLevel         string        `yaml:"log_level"`
	LogJSON          bool          `yaml:"log_json"`
	AnalysisInterval time.Duration `yaml:"analysis_interval"`
	SessionTTL       time.Duration `yaml:"session_ttl"`
	SweepInterval    time.Duration `yaml:"sweep_interval"`

	// Path is the YAML file the config was read from. It stays empty when
	// the named file does not exist.
	Path string `yaml:"-"`
}

func Default() Config {
	return Config{
		Port:             DefaultPort,
		StoreDriver:      DefaultStoreDriver,
		SQLitePath:       DefaultSQLitePath,
		LogLevel:         DefaultLogLevel,
		AnalysisInterval: DefaultAnalysisInterval,
		SessionTTL:       DefaultSessionTTL,
		SweepInterval:    DefaultSweepInterval,
	}
}

// Load builds the config from defaults, the file named by SYMPTOMCHECK_CONFIG
// and then environment overrides. A missing file is not an error.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv(FileEnv); path != "" {
		if err := cfg.readFile(path); err != nil {
			return cfg, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadFile is Load with an explicit YAML path.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if err := cfg.readFile(path); err != nil {
		return cfg, err
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.Path = path
	return nil
}

func (c *Config) applyEnv() error {
	str := map[string]*string{
		"PORT":               &c.Port,
		"STORE_DRIVER":       &c.StoreDriver,
		"DATABASE_URL":       &c.DatabaseURL,
		"SQLITE_PATH":        &c.SQLitePath,
		"REDIS_ADDR":         &c.RedisAddr,
		"TELEGRAM_BOT_TOKEN": &c.TelegramToken,
		"LOG_LEVEL":          &c.LogLevel,
	}
	for env, dst := range str {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	if v := os.Getenv("DOCTOR_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("DOCTOR_CHAT_ID: %w", err)
		}
		c.DoctorChatID = id
	}
	if v := os.Getenv("LOG_JSON"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_JSON: %w", err)
		}
		c.LogJSON = b
	}

	durations := map[string]*time.Duration{
		"ANALYSIS_INTERVAL": &c.AnalysisInterval,
		"SESSION_TTL":       &c.SessionTTL,
		"SWEEP_INTERVAL":    &c.SweepInterval,
	}
	for env, dst := range durations {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", env, err)
		}
		*dst = d
	}
	return nil
}
