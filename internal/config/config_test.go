package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

var envKeys = []string{
	FileEnv, "PORT", "STORE_DRIVER", "DATABASE_URL", "SQLITE_PATH", "REDIS_ADDR",
	"TELEGRAM_BOT_TOKEN", "DOCTOR_CHAT_ID", "LOG_LEVEL", "LOG_JSON",
	"ANALYSIS_INTERVAL", "SESSION_TTL", "SWEEP_INTERVAL",
}

type ConfigSuite struct {
	suite.Suite
	dir string
}

func (s *ConfigSuite) SetupTest() {
	s.dir = s.T().TempDir()
	for _, k := range envKeys {
		s.T().Setenv(k, "")
	}
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) writeFile(body string) string {
	path := filepath.Join(s.dir, "symptomcheck.yaml")
	s.Require().NoError(os.WriteFile(path, []byte(body), 0o600))
	return path
}

func (s *ConfigSuite) TestDefault() {
	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal(Default(), cfg)
	s.Equal("8080", cfg.Port)
	s.Equal("sqlite", cfg.StoreDriver)
	s.Equal(time.Second, cfg.AnalysisInterval)
	s.Equal(30*time.Minute, cfg.SessionTTL)
}

func (s *ConfigSuite) TestFile() {
	path := s.writeFile(`
port: "9090"
store_driver: redis
redis_addr: localhost:6379
doctor_chat_id: 42
analysis_interval: 250ms
session_ttl: 1h
log_json: true
`)
	s.T().Setenv(FileEnv, path)

	cfg, err := Load()
	s.Require().NoError(err)
	s.Equal("9090", cfg.Port)
	s.Equal("redis", cfg.StoreDriver)
	s.Equal("localhost:6379", cfg.RedisAddr)
	s.Equal(int64(42), cfg.DoctorChatID)
	s.Equal(250*time.Millisecond, cfg.AnalysisInterval)
	s.Equal(time.Hour, cfg.SessionTTL)
	s.True(cfg.LogJSON)
	s.Equal(path, cfg.Path)
	s.Equal(DefaultSQLitePath, cfg.SQLitePath, "unset keys keep defaults")
}

func (s *ConfigSuite) TestMissingFileUsesDefaults() {
	cfg, err := LoadFile(filepath.Join(s.dir, "absent.yaml"))
	s.Require().NoError(err)
	s.Equal(DefaultPort, cfg.Port)
	s.Empty(cfg.Path, "a missing file is not watched")

	s.T().Setenv(FileEnv, filepath.Join(s.dir, "nope", "cfg.yaml"))
	cfg, err = Load()
	s.Require().NoError(err)
	s.Empty(cfg.Path)
}

func (s *ConfigSuite) TestWatchMissingDirectory() {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, filepath.Join(s.dir, "nope", "cfg.yaml"), func() {})
	}()

	select {
	case err := <-done:
		s.FailNow("watch returned early", "err=%v", err)
	case <-time.After(50 * time.Millisecond):
	}

	cancel()
	s.NoError(<-done)
}

func (s *ConfigSuite) TestMalformedFile() {
	_, err := LoadFile(s.writeFile("port: [unterminated"))
	s.Error(err)
}

func (s *ConfigSuite) TestEnvOverridesFile() {
	path := s.writeFile("port: \"9090\"\nstore_driver: redis\n")
	s.T().Setenv("PORT", "7070")
	s.T().Setenv("STORE_DRIVER", "postgres")
	s.T().Setenv("DATABASE_URL", "postgres://u:p@db/symptoms")
	s.T().Setenv("DOCTOR_CHAT_ID", "-100123")
	s.T().Setenv("SESSION_TTL", "5m")
	s.T().Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadFile(path)
	s.Require().NoError(err)
	s.Equal("7070", cfg.Port)
	s.Equal("postgres", cfg.StoreDriver)
	s.Equal("postgres://u:p@db/symptoms", cfg.DatabaseURL)
	s.Equal(int64(-100123), cfg.DoctorChatID)
	s.Equal(5*time.Minute, cfg.SessionTTL)
	s.Equal("debug", cfg.LogLevel)
}

func (s *ConfigSuite) TestInvalidEnv() {
	for env, val := range map[string]string{
		"DOCTOR_CHAT_ID":    "doctor",
		"ANALYSIS_INTERVAL": "soon",
		"LOG_JSON":          "maybe",
	} {
		s.Run(env, func() {
			s.T().Setenv(env, val)
			_, err := Load()
			s.ErrorContains(err, env)
		})
	}
}

func (s *ConfigSuite) TestWatch() {
	path := s.writeFile("port: \"9090\"\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		})
	}()

	// Keep writing until the watcher has registered and reports the change.
	deadline := time.After(5 * time.Second)
	tick := time.NewTicker(50 * time.Millisecond)
	defer tick.Stop()
loop:
	for {
		select {
		case <-changed:
			break loop
		case <-tick.C:
			s.Require().NoError(os.WriteFile(path, []byte("port: \"9191\"\n"), 0o600))
		case <-deadline:
			s.FailNow("config change not observed")
		}
	}

	cancel()
	s.NoError(<-done)
}
