package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Validate checks Config for production-critical problems.
// It collects all errors into a single joined error.
func (c *Config) Validate() error {
	var errs []string

	if len(c.Identity.TokenSecret) < 32 {
		errs = append(errs, "IDENTITY_TOKEN_SECRET must be at least 32 characters")
	}

	if c.DB.Password == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}

	// Port ranges
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("SERVER_PORT must be 1–65535, got %d", c.Server.Port))
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT must be 1–65535, got %d", c.DB.Port))
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		errs = append(errs, fmt.Sprintf("REDIS_PORT must be 1–65535, got %d", c.Redis.Port))
	}

	if c.Safety.MaxMessageLength < 1 {
		errs = append(errs, "SAFETY_MAX_MESSAGE_LENGTH must be positive")
	}
	if c.Safety.ContextMessages < 1 {
		errs = append(errs, "SAFETY_CONTEXT_MESSAGES must be positive")
	}
	if c.Safety.ModerationCacheTTL <= 0 {
		errs = append(errs, "SAFETY_MODERATION_CACHE_TTL must be positive")
	}

	for name, t := range map[string]TierLimits{
		"guest":     c.Quota.Guest,
		"free":      c.Quota.Free,
		"premium":   c.Quota.Premium,
		"unlimited": c.Quota.Unlimited,
	} {
		if t.RequestsPerDay < 1 || t.TokensPerDay < 1 || t.RequestsPerMinute < 1 || t.RequestsPerHour < 1 {
			errs = append(errs, fmt.Sprintf("quota tier %q has a non-positive limit", name))
		}
	}

	// OpenAI key: warn only — the pipeline degrades to heuristics and the
	// canned fallback without it, which is still a functioning deployment.
	if c.OpenAI.APIKey == "" {
		slog.Warn("OPENAI_API_KEY is empty — moderation and completion will run in degraded mode")
	}

	if len(errs) > 0 {
		return errors.New("config validation failed:\n  " + strings.Join(errs, "\n  "))
	}
	return nil
}
