package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Identity IdentityConfig
	OpenAI   OpenAIConfig
	Safety   SafetyConfig
	Quota    QuotaConfig
	Log      LogConfig
}

type ServerConfig struct {
	Host               string
	Port               int
	CORSAllowedOrigins []string
}

type DBConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxConns       int32
	MigrationsPath string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type NATSConfig struct {
	URL string
}

// IdentityConfig configures verification of tokens minted by the external
// identity provider. The gateway trusts the provider's claims; it only
// checks the signature.
type IdentityConfig struct {
	TokenSecret string
}

type OpenAIConfig struct {
	APIKey            string
	BaseURL           string
	CompletionModel   string
	ModerationModel   string
	CompletionTimeout time.Duration
	ModerationTimeout time.Duration
}

// SafetyConfig carries the chat-pipeline tunables. Everything here is
// injected at construction so tests can substitute values.
type SafetyConfig struct {
	MaxMessageLength   int
	ContextMessages    int
	ModerationCacheTTL time.Duration
	CacheSweepInterval time.Duration
	IPRateLimitMax     int
	IPRateLimitWindow  int // seconds
}

// QuotaConfig holds the per-tier limit tables.
type QuotaConfig struct {
	Guest     TierLimits
	Free      TierLimits
	Premium   TierLimits
	Unlimited TierLimits
}

type TierLimits struct {
	RequestsPerDay    int
	TokensPerDay      int
	RequestsPerMinute int
	RequestsPerHour   int
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	k := koanf.New(".")

	// Load .env file if it exists (ignore error if missing)
	_ = k.Load(file.Provider(".env"), dotenv.Parser())

	// Load environment variables (override .env)
	err := k.Load(env.Provider("", ".", func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "_", "."))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:               k.String("server.host"),
			Port:               k.Int("server.port"),
			CORSAllowedOrigins: k.Strings("server.cors.origins"),
		},
		DB: DBConfig{
			Host:           k.String("db.host"),
			Port:           k.Int("db.port"),
			User:           k.String("db.user"),
			Password:       k.String("db.password"),
			Name:           k.String("db.name"),
			SSLMode:        k.String("db.sslmode"),
			MaxConns:       int32(k.Int("db.max.conns")),
			MigrationsPath: k.String("db.migrations.path"),
		},
		Redis: RedisConfig{
			Host:     k.String("redis.host"),
			Port:     k.Int("redis.port"),
			Password: k.String("redis.password"),
			DB:       k.Int("redis.db"),
		},
		NATS: NATSConfig{
			URL: k.String("nats.url"),
		},
		Identity: IdentityConfig{
			TokenSecret: k.String("identity.token.secret"),
		},
		OpenAI: OpenAIConfig{
			APIKey:          k.String("openai.api.key"),
			BaseURL:         k.String("openai.base.url"),
			CompletionModel: k.String("openai.completion.model"),
			ModerationModel: k.String("openai.moderation.model"),
		},
		Safety: SafetyConfig{
			MaxMessageLength:  k.Int("safety.max.message.length"),
			ContextMessages:   k.Int("safety.context.messages"),
			IPRateLimitMax:    k.Int("safety.ip.ratelimit.max"),
			IPRateLimitWindow: k.Int("safety.ip.ratelimit.window"),
		},
		Log: LogConfig{
			Level:  k.String("log.level"),
			Format: k.String("log.format"),
		},
	}

	// Apply defaults
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.DB.Host == "" {
		cfg.DB.Host = "localhost"
	}
	if cfg.DB.Port == 0 {
		cfg.DB.Port = 5432
	}
	if cfg.DB.User == "" {
		cfg.DB.User = "solace"
	}
	if cfg.DB.Name == "" {
		cfg.DB.Name = "solace"
	}
	if cfg.DB.SSLMode == "" {
		cfg.DB.SSLMode = "disable"
	}
	if cfg.DB.MaxConns == 0 {
		cfg.DB.MaxConns = 25
	}
	if cfg.DB.MigrationsPath == "" {
		cfg.DB.MigrationsPath = "migrations"
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.NATS.URL == "" {
		cfg.NATS.URL = "nats://localhost:4222"
	}
	if cfg.OpenAI.CompletionModel == "" {
		cfg.OpenAI.CompletionModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.ModerationModel == "" {
		cfg.OpenAI.ModerationModel = "text-moderation-stable"
	}
	if cfg.Safety.MaxMessageLength == 0 {
		cfg.Safety.MaxMessageLength = 1000
	}
	if cfg.Safety.ContextMessages == 0 {
		cfg.Safety.ContextMessages = 10
	}
	if cfg.Safety.IPRateLimitMax == 0 {
		cfg.Safety.IPRateLimitMax = 30
	}
	if cfg.Safety.IPRateLimitWindow == 0 {
		cfg.Safety.IPRateLimitWindow = 60
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}

	// Parse durations
	cfg.OpenAI.CompletionTimeout, err = durationOrDefault(k, "openai.completion.timeout", "30s")
	if err != nil {
		return nil, err
	}
	cfg.OpenAI.ModerationTimeout, err = durationOrDefault(k, "openai.moderation.timeout", "5s")
	if err != nil {
		return nil, err
	}
	cfg.Safety.ModerationCacheTTL, err = durationOrDefault(k, "safety.moderation.cache.ttl", "5m")
	if err != nil {
		return nil, err
	}
	cfg.Safety.CacheSweepInterval, err = durationOrDefault(k, "safety.cache.sweep.interval", "1m")
	if err != nil {
		return nil, err
	}

	cfg.Quota = QuotaConfig{
		Guest: TierLimits{
			RequestsPerDay:    intOrDefault(k, "quota.guest.requests.day", 3),
			TokensPerDay:      intOrDefault(k, "quota.guest.tokens.day", 2000),
			RequestsPerMinute: intOrDefault(k, "quota.guest.requests.minute", 2),
			RequestsPerHour:   intOrDefault(k, "quota.guest.requests.hour", 3),
		},
		Free: TierLimits{
			RequestsPerDay:    intOrDefault(k, "quota.free.requests.day", 20),
			TokensPerDay:      intOrDefault(k, "quota.free.tokens.day", 15000),
			RequestsPerMinute: intOrDefault(k, "quota.free.requests.minute", 4),
			RequestsPerHour:   intOrDefault(k, "quota.free.requests.hour", 10),
		},
		Premium: TierLimits{
			RequestsPerDay:    intOrDefault(k, "quota.premium.requests.day", 200),
			TokensPerDay:      intOrDefault(k, "quota.premium.tokens.day", 150000),
			RequestsPerMinute: intOrDefault(k, "quota.premium.requests.minute", 10),
			RequestsPerHour:   intOrDefault(k, "quota.premium.requests.hour", 60),
		},
		Unlimited: TierLimits{
			RequestsPerDay:    intOrDefault(k, "quota.unlimited.requests.day", 100000),
			TokensPerDay:      intOrDefault(k, "quota.unlimited.tokens.day", 10000000),
			RequestsPerMinute: intOrDefault(k, "quota.unlimited.requests.minute", 60),
			RequestsPerHour:   intOrDefault(k, "quota.unlimited.requests.hour", 1000),
		},
	}

	return cfg, nil
}

func durationOrDefault(k *koanf.Koanf, key, def string) (time.Duration, error) {
	s := k.String(key)
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parsing %s: %w", key, err)
	}
	return d, nil
}

func intOrDefault(k *koanf.Koanf, key string, def int) int {
	if v := k.Int(key); v != 0 {
		return v
	}
	return def
}
