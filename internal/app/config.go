package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/hphuyvu-stack/inclusing/internal/data/kv"
	"github.com/hphuyvu-stack/inclusing/internal/observability"
	"github.com/hphuyvu-stack/inclusing/internal/platform/envutil"
	"github.com/hphuyvu-stack/inclusing/internal/platform/gemini"
	"github.com/hphuyvu-stack/inclusing/internal/settings"
)

const configPathEnv = "A11Y_CONFIG_PATH"

type StorageConfig struct {
	// Backend is one of memory, sqlite, postgres, redis.
	Backend     string `yaml:"backend"`
	SQLitePath  string `yaml:"sqlite_path"`
	PostgresDSN string `yaml:"postgres_dsn"`
	// LoadPolicy governs snapshots that fail to decode: defaults or strict.
	LoadPolicy string `yaml:"load_policy"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
	Channel  string `yaml:"channel"`
}

type Config struct {
	Addr            string        `yaml:"addr"`
	LogMode         string        `yaml:"log_mode"`
	InstanceID      string        `yaml:"instance_id"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	// JWTSecret enables bearer-token profile identity when set.
	JWTSecret string `yaml:"jwt_secret"`
	// Bus is local or redis.
	Bus     string                   `yaml:"bus"`
	Storage StorageConfig            `yaml:"storage"`
	Redis   RedisConfig              `yaml:"redis"`
	Gemini  gemini.Config            `yaml:"gemini"`
	OTel    observability.OtelConfig `yaml:"otel"`
}

func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		LogMode:         "development",
		ShutdownTimeout: 10 * time.Second,
		Bus:             "local",
		Storage: StorageConfig{
			Backend:    "sqlite",
			SQLitePath: "inclusing.db",
			LoadPolicy: string(settings.PolicyDefaults),
		},
		Redis: RedisConfig{Prefix: "a11y"},
		OTel:  observability.OtelConfig{ServiceName: "inclusing", SampleRatio: 0.1},
	}
}

// LoadConfig starts from DefaultConfig, applies the YAML file named by
// A11Y_CONFIG_PATH if any, then lets environment variables override.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if path := envutil.String(configPathEnv, ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg = applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg Config) Config {
	cfg.Addr = envutil.String("HTTP_ADDR", cfg.Addr)
	if port := envutil.String("PORT", ""); port != "" {
		cfg.Addr = ":" + port
	}
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.InstanceID = envutil.String("INSTANCE_ID", cfg.InstanceID)
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	cfg.ShutdownTimeout = envutil.Duration("SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	cfg.AllowedOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.AllowedOrigins)
	cfg.JWTSecret = envutil.String("AUTH_JWT_SECRET", cfg.JWTSecret)
	cfg.Bus = strings.ToLower(envutil.String("REALTIME_BUS", cfg.Bus))

	cfg.Storage.Backend = strings.ToLower(envutil.String("STORAGE_BACKEND", cfg.Storage.Backend))
	cfg.Storage.SQLitePath = envutil.String("SQLITE_PATH", cfg.Storage.SQLitePath)
	cfg.Storage.PostgresDSN = envutil.String("POSTGRES_DSN", cfg.Storage.PostgresDSN)
	cfg.Storage.LoadPolicy = envutil.String("SETTINGS_LOAD_POLICY", cfg.Storage.LoadPolicy)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = envutil.String("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = envutil.Int("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.Prefix = envutil.String("REDIS_PREFIX", cfg.Redis.Prefix)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.Gemini = gemini.ConfigFromEnv(cfg.Gemini)
	cfg.OTel = observability.OtelConfigFromEnv(cfg.OTel)
	return cfg
}

func (c Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "sqlite", "postgres", "redis":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	switch c.Bus {
	case "local", "redis":
	default:
		return fmt.Errorf("unknown REALTIME_BUS %q", c.Bus)
	}
	if (c.Storage.Backend == "redis" || c.Bus == "redis") && c.Redis.Addr == "" {
		return fmt.Errorf("REDIS_ADDR required for redis storage or bus")
	}
	if _, err := settings.ParseLoadPolicy(c.Storage.LoadPolicy); err != nil {
		return err
	}
	return nil
}

func (c Config) redisKV() kv.RedisConfig {
	return kv.RedisConfig{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB, Prefix: c.Redis.Prefix}
}
