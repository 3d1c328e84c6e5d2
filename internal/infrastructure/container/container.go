// Package container wires the application together using Uber FX.
package container

import (
	"context"
	"fmt"
	"net/http"

	"github.com/forkcast/v1/internal/application/recommend"
	"github.com/forkcast/v1/internal/infrastructure/ai"
	"github.com/forkcast/v1/internal/infrastructure/cache"
	"github.com/forkcast/v1/internal/infrastructure/config"
	"github.com/forkcast/v1/internal/infrastructure/email"
	"github.com/forkcast/v1/internal/infrastructure/http/handlers"
	"github.com/forkcast/v1/internal/infrastructure/http/server"
	gormRepo "github.com/forkcast/v1/internal/infrastructure/persistence/gorm"
	"github.com/forkcast/v1/internal/ports/outbound"
	"github.com/forkcast/v1/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

// Module provides all dependency injection modules.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	DatabaseModule,
	CacheModule,
	MetricsModule,
	RepositoryModule,
	ServiceModule,
	HTTPModule,
	LifecycleModule,
)

// ConfigModule provides configuration.
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: !cfg.IsProduction(),
		})
	},
)

// DatabaseModule provides the PostgreSQL connection with GORM.
var DatabaseModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
		logLevel := gormLogger.Silent
		if !cfg.IsProduction() {
			logLevel = gormLogger.Warn
		}

		db, err := gorm.Open(postgres.Open(cfg.GetDSN()), &gorm.Config{
			Logger: gormLogger.Default.LogMode(logLevel),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}

		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLife)

		if cfg.Database.AutoMigrate {
			if err := gormRepo.AutoMigrate(db); err != nil {
				return nil, fmt.Errorf("failed to run migrations: %w", err)
			}
			log.Info("database migrations applied")
		}

		log.Info("connected to database",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Database),
		)
		return db, nil
	},
)

// CacheModule provides the completion cache. When Redis is disabled the
// orchestrator receives a nil cache and calls providers directly.
var CacheModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) (outbound.CompletionCache, error) {
		if !cfg.Redis.Enable {
			log.Info("completion cache disabled")
			return nil, nil
		}
		return cache.NewCompletionCache(cfg.Redis, log)
	},
)

// MetricsModule provides the Prometheus registry and the engine metrics.
var MetricsModule = fx.Provide(
	func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector())
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		return reg
	},
	func(reg *prometheus.Registry) *recommend.Metrics {
		return recommend.NewMetrics(reg)
	},
)

// RepositoryModule provides the GORM-backed repository implementations.
var RepositoryModule = fx.Provide(
	gormRepo.NewModelConfigRepository,
	gormRepo.NewSuggestionRepository,
	gormRepo.NewWeeklyPlanRepository,
	fx.Annotate(
		gormRepo.NewPreferenceRepository,
		fx.As(new(outbound.PreferenceRepository)),
	),
	fx.Annotate(
		gormRepo.NewRatingRepository,
		fx.As(new(outbound.RatingRepository)),
	),
	fx.Annotate(
		gormRepo.NewCuisineRepository,
		fx.As(new(outbound.CuisineRepository)),
	),
)

// ServiceModule provides the application services.
var ServiceModule = fx.Provide(
	func(cfg *config.Config, log *zap.Logger) *ai.Registry {
		return ai.NewRegistry(log, cfg.AI.RequestTimeout, cfg.AI.MaxTokens)
	},

	func(cfg *config.Config, log *zap.Logger) outbound.EmailService {
		return email.NewSMTPSender(cfg.Email, log)
	},

	func(
		configs outbound.ModelConfigRepository,
		prefs outbound.PreferenceRepository,
		cfg *config.Config,
		log *zap.Logger,
	) *recommend.ModelSelector {
		return recommend.NewModelSelector(configs, prefs, cfg.AI, log.Named("selector"))
	},

	func(
		selector *recommend.ModelSelector,
		registry *ai.Registry,
		cuisines outbound.CuisineRepository,
		prefs outbound.PreferenceRepository,
		ratings outbound.RatingRepository,
		suggestions outbound.SuggestionRepository,
		weekly outbound.WeeklyPlanRepository,
		emailSvc outbound.EmailService,
		completionCache outbound.CompletionCache,
		metrics *recommend.Metrics,
		cfg *config.Config,
		log *zap.Logger,
	) *recommend.Orchestrator {
		return recommend.NewOrchestrator(recommend.OrchestratorDeps{
			Selector:    selector,
			Registry:    registry,
			Cuisines:    cuisines,
			Preferences: prefs,
			Ratings:     ratings,
			Suggestions: suggestions,
			Weekly:      weekly,
			Email:       emailSvc,
			Cache:       completionCache,
			CacheTTL:    cfg.Redis.CacheTTL,
			Metrics:     metrics,
			Logger:      log,
		})
	},
)

// HTTPModule provides HTTP handlers and the server.
var HTTPModule = fx.Provide(
	func(orchestrator *recommend.Orchestrator, log *zap.Logger) *handlers.RecommendHandlers {
		return handlers.NewRecommendHandlers(orchestrator, log.Named("http"))
	},

	func(cfg *config.Config, db *gorm.DB, completionCache outbound.CompletionCache, log *zap.Logger) *handlers.HealthHandlers {
		checks := map[string]handlers.DependencyChecker{
			"database": func(ctx context.Context) error {
				sqlDB, err := db.DB()
				if err != nil {
					return err
				}
				return sqlDB.PingContext(ctx)
			},
		}
		if completionCache != nil {
			checks["redis"] = func(ctx context.Context) error {
				_, _, err := completionCache.Get(ctx, "health:ping")
				return err
			}
		}
		return handlers.NewHealthHandlers(cfg.App.Version, checks, log.Named("health"))
	},

	server.NewServer,
)

// LifecycleModule registers the start and stop hooks.
var LifecycleModule = fx.Invoke(
	RegisterLifecycleHooks,
)

// RegisterLifecycleHooks starts the HTTP server on application start and
// drains it on stop.
func RegisterLifecycleHooks(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	completionCache outbound.CompletionCache,
	srv *server.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting forkcast",
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatal("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("HTTP server shutdown failed", zap.Error(err))
			}

			if closer, ok := completionCache.(*cache.CompletionCache); ok && closer != nil {
				if err := closer.Close(); err != nil {
					log.Error("cache close failed", zap.Error(err))
				}
			}

			if sqlDB, err := db.DB(); err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("database close failed", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}
