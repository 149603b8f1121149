package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/solace-platform/solace/internal/api"
	"github.com/solace-platform/solace/internal/audit"
	"github.com/solace-platform/solace/internal/chat"
	"github.com/solace-platform/solace/internal/config"
	"github.com/solace-platform/solace/internal/crisislog"
	"github.com/solace-platform/solace/internal/database"
	"github.com/solace-platform/solace/internal/events"
	"github.com/solace-platform/solace/internal/identity"
	"github.com/solace-platform/solace/internal/llm"
	"github.com/solace-platform/solace/internal/middleware"
	"github.com/solace-platform/solace/internal/moderation"
	"github.com/solace-platform/solace/internal/quota"
	iredis "github.com/solace-platform/solace/internal/redis"
	"github.com/solace-platform/solace/internal/server"
	"github.com/solace-platform/solace/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// PostgreSQL
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		slog.Error("connecting to postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := database.RunMigrations(cfg.DB.DSN(), cfg.DB.MigrationsPath); err != nil {
		slog.Error("running migrations", "error", err)
		os.Exit(1)
	}

	// Redis
	redisClient, err := iredis.NewClient(ctx, cfg.Redis)
	if err != nil {
		slog.Error("connecting to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// NATS
	natsClient, err := events.NewClient(ctx, cfg.NATS)
	if err != nil {
		slog.Error("connecting to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()

	publisher := events.NewPublisher(natsClient.JetStream())
	consumerMgr := events.NewConsumerManager(natsClient.JetStream())

	// Audit trail
	auditRepo := audit.NewRepository(pool)
	auditConsumer := audit.NewConsumer(auditRepo, consumerMgr)
	go func() {
		if err := auditConsumer.Start(ctx); err != nil {
			slog.Error("audit consumer stopped", "error", err)
		}
	}()
	auditHandler := audit.NewHandler(auditRepo)

	// Quota
	tiers := quota.TiersFromConfig(cfg.Quota)
	classifier := quota.NewClassifier(quota.NewPostgresSubscriptions(pool), tiers)
	enforcer := quota.NewEnforcer(quota.NewRedisStore(redisClient))
	quotaHandler := quota.NewHandler(enforcer, classifier)

	// Moderation
	modCache := moderation.NewCache(cfg.Safety.ModerationCacheTTL)
	modCache.StartSweeper(ctx, cfg.Safety.CacheSweepInterval)
	moderator := moderation.NewModerator(
		moderation.NewOpenAIClassifier(cfg.OpenAI),
		modCache,
		cfg.OpenAI.ModerationTimeout,
	)

	// Conversation history
	history := session.NewStore(
		session.NewPostgresRepository(pool),
		session.NewShortTermStore(redisClient),
	)

	// Chat pipeline
	chatSvc := chat.NewService(
		classifier,
		enforcer,
		moderator,
		llm.NewOpenAICompleter(cfg.OpenAI),
		history,
		crisislog.NewRepository(pool),
		publisher,
		cfg.Safety,
	)
	chatHandler := chat.NewHandler(chatSvc)

	// Identity
	verifier := identity.NewVerifier(cfg.Identity.TokenSecret)

	// Pre-auth IP rate limiter for the chat endpoint
	ipLimiter := middleware.NewRateLimiter(redisClient, cfg.Safety.IPRateLimitMax, cfg.Safety.IPRateLimitWindow)

	router := api.NewRouter(pool, natsClient, api.RouterConfig{
		CORSAllowedOrigins: cfg.Server.CORSAllowedOrigins,
		ChatRateLimiter:    ipLimiter.Middleware,
	}, api.HandlerSet{
		SendMessage:        chatHandler.Send,
		GetQuota:           quotaHandler.GetStatus,
		ListAuditLogs:      auditHandler.List,
		IdentityMiddleware: identity.Middleware(verifier),
	})

	// Start server
	srv := server.New(cfg.Server, router)
	if err := srv.Start(); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func setupLogger(cfg config.LogConfig) {
	var handler slog.Handler

	opts := &slog.HandlerOptions{}
	switch cfg.Level {
	case "debug":
		opts.Level = slog.LevelDebug
	case "info":
		opts.Level = slog.LevelInfo
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
