package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	limits := TierLimits{RequestsPerDay: 10, TokensPerDay: 1000, RequestsPerMinute: 2, RequestsPerHour: 5}
	return &Config{
		Server:   ServerConfig{Host: "0.0.0.0", Port: 8080},
		DB:       DBConfig{Host: "localhost", Port: 5432, Password: "secret", Name: "solace"},
		Redis:    RedisConfig{Host: "localhost", Port: 6379},
		Identity: IdentityConfig{TokenSecret: strings.Repeat("s", 32)},
		Safety: SafetyConfig{
			MaxMessageLength:   1000,
			ContextMessages:    10,
			ModerationCacheTTL: 5 * time.Minute,
		},
		Quota: QuotaConfig{Guest: limits, Free: limits, Premium: limits, Unlimited: limits},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "short token secret",
			mutate: func(c *Config) { c.Identity.TokenSecret = "short" },
			want:   "IDENTITY_TOKEN_SECRET",
		},
		{
			name:   "missing db password",
			mutate: func(c *Config) { c.DB.Password = "" },
			want:   "DB_PASSWORD",
		},
		{
			name:   "bad server port",
			mutate: func(c *Config) { c.Server.Port = 0 },
			want:   "SERVER_PORT",
		},
		{
			name:   "bad redis port",
			mutate: func(c *Config) { c.Redis.Port = 99999 },
			want:   "REDIS_PORT",
		},
		{
			name:   "zero message length",
			mutate: func(c *Config) { c.Safety.MaxMessageLength = 0 },
			want:   "SAFETY_MAX_MESSAGE_LENGTH",
		},
		{
			name:   "zero cache ttl",
			mutate: func(c *Config) { c.Safety.ModerationCacheTTL = 0 },
			want:   "SAFETY_MODERATION_CACHE_TTL",
		},
		{
			name:   "non-positive tier limit",
			mutate: func(c *Config) { c.Quota.Guest.RequestsPerDay = 0 },
			want:   `tier "guest"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.Identity.TokenSecret = ""
	cfg.DB.Password = ""
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "IDENTITY_TOKEN_SECRET")
	assert.Contains(t, err.Error(), "DB_PASSWORD")
}
