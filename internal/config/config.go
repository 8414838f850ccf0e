package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "RIDEFLOW"

// Config captures every tunable of the CLI and the local dashboard server.
// Precedence, lowest first: defaults, config file, .env, environment, flags.
type Config struct {
	API struct {
		BaseURL string
		Timeout time.Duration
	}
	Session struct {
		Backend string
		Path    string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
		Prefix   string
	}
	HTTP struct {
		Addr            string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		IdleTimeout     time.Duration
		ShutdownTimeout time.Duration
	}
	Log struct {
		Level  string
		Format string
	}
	Kafka struct {
		Brokers []string
		Topic   string
	}
	PGDSN string

	LivePollInterval time.Duration
	PageSize         int
	SpeedMps         float64
}

var sessionBackends = map[string]bool{"file": true, "redis": true, "memory": true}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()
	v.SetDefault("api.base_url", "http://localhost:5000/api")
	v.SetDefault("api.timeout", 10*time.Second)
	v.SetDefault("session.backend", "file")
	v.SetDefault("session.path", filepath.Join(home, ".rideflow", "session.json"))
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "rideflow:session:")
	v.SetDefault("http.addr", "127.0.0.1:8080")
	v.SetDefault("http.read_timeout", 5*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.idle_timeout", 120*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("kafka.topic", "rideflow-activity")
	v.SetDefault("live.poll_interval", 5*time.Second)
	v.SetDefault("list.page_size", 5)
	v.SetDefault("fare.speed_mps", 8.0)
}

// Load reads the config file (if one is set or found), a .env file in the
// working directory, and RIDEFLOW_* environment variables into v, then
// decodes and validates the result. Validation problems are joined.
func Load(v *viper.Viper) (Config, error) {
	SetDefaults(v)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if v.ConfigFileUsed() == "" {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigName(".rideflow")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (Config, error) {
	var cfg Config
	var errs []error

	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(v.GetString("api.base_url")), "/")
	cfg.API.Timeout = v.GetDuration("api.timeout")
	cfg.Session.Backend = strings.ToLower(strings.TrimSpace(v.GetString("session.backend")))
	cfg.Session.Path = v.GetString("session.path")
	cfg.Redis.Addr = strings.TrimSpace(v.GetString("redis.addr"))
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Redis.Prefix = v.GetString("redis.prefix")
	cfg.HTTP.Addr = v.GetString("http.addr")
	cfg.HTTP.ReadTimeout = v.GetDuration("http.read_timeout")
	cfg.HTTP.WriteTimeout = v.GetDuration("http.write_timeout")
	cfg.HTTP.IdleTimeout = v.GetDuration("http.idle_timeout")
	cfg.HTTP.ShutdownTimeout = v.GetDuration("http.shutdown_timeout")
	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))
	cfg.Kafka.Brokers = splitAndTrim(v.GetString("kafka.brokers"))
	cfg.Kafka.Topic = v.GetString("kafka.topic")
	cfg.PGDSN = v.GetString("pg.dsn")
	cfg.LivePollInterval = v.GetDuration("live.poll_interval")
	cfg.PageSize = v.GetInt("list.page_size")
	cfg.SpeedMps = v.GetFloat64("fare.speed_mps")

	if u, err := url.Parse(cfg.API.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("api.base_url must be an absolute URL, got %q", cfg.API.BaseURL))
	}
	if cfg.API.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("api.timeout must be > 0"))
	}
	if !sessionBackends[cfg.Session.Backend] {
		errs = append(errs, fmt.Errorf("session.backend must be file, redis or memory, got %q", cfg.Session.Backend))
	}
	if cfg.Session.Backend == "file" && cfg.Session.Path == "" {
		errs = append(errs, fmt.Errorf("session.path is required for the file backend"))
	}
	if cfg.Session.Backend == "redis" && cfg.Redis.Addr == "" {
		errs = append(errs, fmt.Errorf("redis.addr is required for the redis backend"))
	}
	if cfg.LivePollInterval <= 0 {
		errs = append(errs, fmt.Errorf("live.poll_interval must be > 0"))
	}
	if cfg.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("list.page_size must be > 0"))
	}
	if cfg.SpeedMps <= 0 {
		errs = append(errs, fmt.Errorf("fare.speed_mps must be > 0"))
	}
	if len(cfg.Kafka.Brokers) > 0 && cfg.Kafka.Topic == "" {
		errs = append(errs, fmt.Errorf("kafka.topic is required when kafka.brokers is set"))
	}

	return cfg, errors.Join(errs...)
}

func splitAndTrim(v string) []string {
	raw := strings.Split(v, ",")
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}
