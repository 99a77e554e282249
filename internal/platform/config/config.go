package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	apperrors "studyhub/internal/platform/errors"
)

const (
	RemoteNone  = "none"
	RemoteHTTP  = "http"
	RemoteRedis = "redis"
)

type Config struct {
	DataDir  string
	DBPath   string
	KVPath   string
	Location *time.Location
	Log      LogConfig
	Remote   RemoteConfig
	Sync     SyncConfig
	Timer    TimerConfig
	Mirror   MirrorConfig
}

type LogConfig struct {
	Level  string
	File   string
	Stderr bool
}

type RemoteConfig struct {
	Kind     string
	BaseURL  string
	RedisURL string
	Timeout  time.Duration
}

type SyncConfig struct {
	Outbox     bool
	OutboxPath string
}

type TimerConfig struct {
	Pomodoro   time.Duration
	ShortBreak time.Duration
	LongBreak  time.Duration
	MinSession time.Duration
}

type MirrorConfig struct {
	Addr      string
	DBPath    string
	JWTSecret string
}

// New returns the defaults for dataDir without reading files or env.
func New(dataDir string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("%w: data dir is required", apperrors.ErrInvalidInput)
	}
	return decode(newViper(dataDir), dataDir)
}

// Load layers defaults, an optional YAML file and STUDYHUB_* env vars. A .env
// file in the working directory is applied to the environment first.
func Load(dataDir, configFile string) (Config, error) {
	if strings.TrimSpace(dataDir) == "" {
		return Config{}, fmt.Errorf("%w: data dir is required", apperrors.ErrInvalidInput)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := newViper(dataDir)
	v.SetEnvPrefix("STUDYHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("studyhub")
		v.SetConfigType("yaml")
		v.AddConfigPath(dataDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}
	return decode(v, dataDir)
}

func newViper(dataDir string) *viper.Viper {
	v := viper.New()
	v.SetDefault("db_path", filepath.Join(dataDir, "studyhub.db"))
	v.SetDefault("kv_path", filepath.Join(dataDir, "local.json"))
	v.SetDefault("timezone", "Local")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", filepath.Join(dataDir, "logs", "studyhub.log"))
	v.SetDefault("log.stderr", false)
	v.SetDefault("remote.kind", RemoteNone)
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.redis_url", "")
	v.SetDefault("remote.timeout", "10s")
	v.SetDefault("sync.outbox", false)
	v.SetDefault("sync.outbox_path", filepath.Join(dataDir, "outbox.jsonl"))
	v.SetDefault("timer.pomodoro", "25m")
	v.SetDefault("timer.short_break", "5m")
	v.SetDefault("timer.long_break", "15m")
	v.SetDefault("timer.min_session", "1s")
	v.SetDefault("mirror.addr", ":8787")
	v.SetDefault("mirror.db_path", filepath.Join(dataDir, "mirror.db"))
	v.SetDefault("mirror.jwt_secret", "")
	return v
}

func decode(v *viper.Viper, dataDir string) (Config, error) {
	loc, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return Config{}, fmt.Errorf("%w: timezone: %v", apperrors.ErrInvalidInput, err)
	}
	cfg := Config{
		DataDir:  dataDir,
		DBPath:   v.GetString("db_path"),
		KVPath:   v.GetString("kv_path"),
		Location: loc,
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("log.level"))),
			File:   v.GetString("log.file"),
			Stderr: v.GetBool("log.stderr"),
		},
		Remote: RemoteConfig{
			Kind:     strings.ToLower(strings.TrimSpace(v.GetString("remote.kind"))),
			BaseURL:  strings.TrimRight(strings.TrimSpace(v.GetString("remote.base_url")), "/"),
			RedisURL: strings.TrimSpace(v.GetString("remote.redis_url")),
			Timeout:  v.GetDuration("remote.timeout"),
		},
		Sync: SyncConfig{
			Outbox:     v.GetBool("sync.outbox"),
			OutboxPath: v.GetString("sync.outbox_path"),
		},
		Timer: TimerConfig{
			Pomodoro:   v.GetDuration("timer.pomodoro"),
			ShortBreak: v.GetDuration("timer.short_break"),
			LongBreak:  v.GetDuration("timer.long_break"),
			MinSession: v.GetDuration("timer.min_session"),
		},
		Mirror: MirrorConfig{
			Addr:      v.GetString("mirror.addr"),
			DBPath:    v.GetString("mirror.db_path"),
			JWTSecret: v.GetString("mirror.jwt_secret"),
		},
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Remote.Kind {
	case RemoteNone:
	case RemoteHTTP:
		if c.Remote.BaseURL == "" {
			return fmt.Errorf("%w: remote.base_url is required for http remote", apperrors.ErrInvalidInput)
		}
	case RemoteRedis:
		if c.Remote.RedisURL == "" {
			return fmt.Errorf("%w: remote.redis_url is required for redis remote", apperrors.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown remote kind %q", apperrors.ErrInvalidInput, c.Remote.Kind)
	}
	durations := map[string]time.Duration{
		"timer.pomodoro":    c.Timer.Pomodoro,
		"timer.short_break": c.Timer.ShortBreak,
		"timer.long_break":  c.Timer.LongBreak,
		"remote.timeout":    c.Remote.Timeout,
	}
	for key, d := range durations {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", apperrors.ErrInvalidInput, key)
		}
	}
	if c.Timer.MinSession < 0 {
		return fmt.Errorf("%w: timer.min_session must not be negative", apperrors.ErrInvalidInput)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", apperrors.ErrInvalidInput, c.Log.Level)
	}
	return nil
}
