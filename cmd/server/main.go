package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"notaryfix/internal/admin"
	"notaryfix/internal/compliance"
	compliancehandler "notaryfix/internal/compliance/handler"
	compliancemetrics "notaryfix/internal/compliance/metrics"
	"notaryfix/internal/gates"
	gateshandler "notaryfix/internal/gates/handler"
	gatesmetrics "notaryfix/internal/gates/metrics"
	"notaryfix/internal/jurisdiction"
	jurisdictionmetrics "notaryfix/internal/jurisdiction/metrics"
	"notaryfix/internal/jurisdiction/source"
	"notaryfix/internal/jurisdiction/store"
	jwttoken "notaryfix/internal/jwt_token"
	"notaryfix/internal/platform/config"
	"notaryfix/internal/platform/httpserver"
	"notaryfix/internal/platform/logger"
	"notaryfix/internal/platform/metrics"
	"notaryfix/internal/platform/postgres"
	"notaryfix/internal/platform/redis"
	"notaryfix/internal/ratelimit"
	ratelimitmetrics "notaryfix/internal/ratelimit/metrics"
	ratelimitstore "notaryfix/internal/ratelimit/store"
	httptransport "notaryfix/internal/transport/http"
	"notaryfix/pkg/platform/audit"
	"notaryfix/pkg/platform/audit/publisher"
	"notaryfix/pkg/platform/audit/publishers/kafka"
	"notaryfix/pkg/platform/audit/publishers/ops"
	"notaryfix/pkg/platform/audit/store/memory"
	auditpostgres "notaryfix/pkg/platform/audit/store/postgres"
	adminmw "notaryfix/pkg/platform/middleware/admin"
	"notaryfix/pkg/platform/middleware/auth"
	"notaryfix/pkg/requestcontext"
)

const shutdownTimeout = 10 * time.Second

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("notaryfix stopped", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	health := map[string]httptransport.HealthCheck{}

	var pool *pgxpool.Pool
	if cfg.DatabaseURL != "" {
		p, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer p.Close()
		if cfg.RunMigrations {
			if err := postgres.Migrate(ctx, p, log); err != nil {
				return err
			}
		}
		pool = p
		health["postgres"] = p.Ping
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		health["redis"] = redisClient.Health
	}

	auditStore, closeStream, err := buildAuditStore(ctx, cfg, pool, log)
	if err != nil {
		return err
	}
	defer closeStream()

	auditor := publisher.NewPublisher(auditStore,
		publisher.WithAsyncBuffer(cfg.Audit.BufferSize),
		publisher.WithLogger(log),
		publisher.WithSampler(ops.NewSampler(cfg.Audit.SampleRate, nil)),
		publisher.WithCircuitBreaker(ops.NewCircuitBreaker(cfg.Audit.BreakerFailures, cfg.Audit.BreakerCooldown)),
		publisher.WithMetrics(ops.NewMetrics()),
	)
	// Close drains the buffer; it must run before the stream is flushed.
	defer auditor.Close()

	holder := store.NewHolder()
	src := datasetSource(cfg, pool, redisClient, log)
	refreshOpts := []jurisdiction.Option{
		jurisdiction.WithInterval(cfg.RefreshInterval),
		jurisdiction.WithLogger(log),
		jurisdiction.WithMetrics(jurisdictionmetrics.New()),
		jurisdiction.WithAuditor(auditor),
	}
	if file, ok := src.(*source.File); ok && cfg.WatchDataset {
		refreshOpts = append(refreshOpts, jurisdiction.WithWatchPath(file.Path()))
	}
	refresher := jurisdiction.NewRefresher(src, holder, refreshOpts...)
	if src == nil {
		log.WarnContext(ctx, "no dataset source configured; serving built-in rules only")
	} else if _, err := refresher.Reload(ctx); err != nil {
		log.WarnContext(ctx, "initial dataset load failed; serving built-in rules only", "error", err)
	}

	complianceSvc := compliance.NewService(compliance.HolderProvider(holder),
		compliance.WithAuditor(auditor),
		compliance.WithLogger(log),
		compliance.WithMetrics(compliancemetrics.New()),
	)

	gateOpts := []gates.Option{gates.WithAdminBypass(cfg.AdminBypass)}
	if role, ok := gates.ParseRole(cfg.UnknownRoleFallback); ok {
		gateOpts = append(gateOpts, gates.WithUnknownRoleFallback(role))
	} else {
		log.WarnContext(ctx, "ignoring unknown gate fallback role", "role", cfg.UnknownRoleFallback)
	}
	evaluator := gates.New(gateOpts...)
	if evaluator.UnknownRoleFallback() == gates.RoleAdmin && evaluator.AdminBypass() {
		log.WarnContext(ctx, "callers with unknown roles are treated as admin and bypass every feature gate")
	}
	defaults := requestcontext.Subject{PlanTier: cfg.PlanTier, Role: cfg.UserRole}
	gatesSvc := gates.NewService(evaluator,
		gates.WithDefaultSubject(gates.Subject{PlanTier: defaults.PlanTier, Role: defaults.Role}),
		gates.WithAuditPublisher(auditor),
		gates.WithServiceLogger(log),
		gates.WithServiceMetrics(gatesmetrics.New()),
	)

	tokens := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	if cfg.UsesDefaultSigningKey() {
		log.WarnContext(ctx, "JWT_SIGNING_KEY is the development default; anyone can mint tokens for any plan and role")
	}
	if cfg.AdminToken == "" {
		log.WarnContext(ctx, "ADMIN_API_TOKEN is empty; admin endpoints are disabled")
	}

	limiter, limiterCleanup := rateLimiter(cfg.RateLimit, redisClient, log)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:     log,
		Metrics:    metrics.New(),
		RateLimit:  limiter,
		Principal:  auth.Principal(jwttoken.NewJWTServiceAdapter(tokens), defaults, log),
		AdminGuard: adminmw.RequireAdminToken(cfg.AdminToken, auditor, log),
		Public: []httptransport.Registrar{
			compliancehandler.New(complianceSvc, log, cfg.DefaultStateCode),
			gateshandler.New(gatesSvc, log),
		},
		Admin: []httptransport.Registrar{
			admin.New(refresher, holder, auditor, log),
		},
		Health:         health,
		MetricsHandler: promhttp.Handler(),
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	if src != nil {
		g.Go(func() error { return refresher.Run(gctx) })
	}
	if limiterCleanup != nil {
		g.Go(func() error {
			if err := limiterCleanup(gctx); !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		log.InfoContext(gctx, "starting notaryfix", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down notaryfix")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// datasetSource picks the dataset source from config. A YAML path wins over
// the database and is never cached, since the watcher already reloads it on
// change. Redis, when configured, caches the database source.
func datasetSource(cfg config.Server, pool *pgxpool.Pool, rc *redis.Client, log *slog.Logger) source.Source {
	switch {
	case cfg.DatasetPath != "":
		return source.NewFile(cfg.DatasetPath)
	case pool == nil:
		return nil
	case rc == nil:
		return source.NewPostgres(pool)
	default:
		return source.NewCached(source.NewPostgres(pool), rc.Client, cfg.DatasetCacheTTL, source.WithCacheLogger(log))
	}
}

// rateLimiter returns the public route limiter, shared through Redis when it
// is configured, or nil when limiting is disabled. The in-memory store also
// returns its cleanup loop; Redis expires keys itself.
func rateLimiter(cfg config.RateLimitConfig, rc *redis.Client, log *slog.Logger) (func(http.Handler) http.Handler, func(context.Context) error) {
	if cfg.Requests <= 0 {
		return nil, nil
	}
	var (
		counter ratelimit.Store
		cleanup func(context.Context) error
	)
	if rc != nil {
		counter = ratelimitstore.NewRedisStore(rc.Client)
	} else {
		mem := ratelimitstore.NewInMemoryStore()
		counter = mem
		cleanup = func(ctx context.Context) error { return mem.StartCleanup(ctx, cfg.Window) }
	}
	return ratelimit.New(counter, cfg.Requests, cfg.Window,
		ratelimit.WithLogger(log),
		ratelimit.WithMetrics(ratelimitmetrics.New()),
	).Middleware, cleanup
}

// buildAuditStore returns the primary audit store, mirrored to Kafka when
// brokers are configured, plus a func that flushes the stream.
func buildAuditStore(ctx context.Context, cfg config.Server, pool *pgxpool.Pool, log *slog.Logger) (audit.Store, func(), error) {
	var primary audit.Store = memory.NewInMemoryStore()
	if pool != nil {
		primary = auditpostgres.New(pool)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		return primary, func() {}, nil
	}

	stream, err := kafka.New(kafka.Config{
		Brokers:           cfg.Kafka.Brokers,
		Topic:             cfg.Kafka.Topic,
		Partitions:        cfg.Kafka.Partitions,
		ReplicationFactor: cfg.Kafka.ReplicationFactor,
	}, log)
	if err != nil {
		return nil, nil, err
	}
	closeStream := func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := stream.Close(flushCtx); err != nil {
			log.Warn("failed to flush audit stream", "error", err)
		}
	}
	if err := stream.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.ReplicationFactor); err != nil {
		closeStream()
		return nil, nil, err
	}
	return audit.NewTee(primary, stream), closeStream, nil
}
