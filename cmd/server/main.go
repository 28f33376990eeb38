package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/weiawesome/wes-io-blog/internal/cache"
	"github.com/weiawesome/wes-io-blog/internal/config"
	"github.com/weiawesome/wes-io-blog/internal/consumer"
	"github.com/weiawesome/wes-io-blog/internal/domain"
	"github.com/weiawesome/wes-io-blog/internal/handler"
	"github.com/weiawesome/wes-io-blog/internal/reconciler"
	"github.com/weiawesome/wes-io-blog/internal/repository"
	"github.com/weiawesome/wes-io-blog/internal/service"
	"github.com/weiawesome/wes-io-blog/internal/store"
	"github.com/weiawesome/wes-io-blog/pkg/database"
	"github.com/weiawesome/wes-io-blog/pkg/jwt"
	pkglog "github.com/weiawesome/wes-io-blog/pkg/log"
	"github.com/weiawesome/wes-io-blog/pkg/middleware"
	"github.com/weiawesome/wes-io-blog/pkg/storage"
)

const serviceName = "blog-service"

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		l := pkglog.L()
		l.Fatal().Err(err).Msg("failed to load config")
	}

	// 2. Initialize structured logger
	pkglog.Init(pkglog.Config{
		Level:       cfg.Log.Level,
		Pretty:      cfg.Log.Pretty || cfg.Log.Level == "debug",
		ServiceName: serviceName,
	})
	logger := pkglog.L()

	if cfg.Auth.JWTSecret == "" {
		logger.Fatal().Msg("JWT_SECRET is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Init DB and migrate
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		FilePath:        cfg.Database.FilePath,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to get underlying sql.DB")
	}
	defer sqlDB.Close()

	if err := database.AutoMigrate(db, domain.Models()...); err != nil {
		logger.Fatal().Err(err).Msg("failed to auto-migrate")
	}
	logger.Info().Str("driver", cfg.Database.Driver).Msg("database migration completed")

	// Hard-delete CDC events need the full before-row to decrement counts.
	if cfg.Kafka.Brokers != "" && cfg.Database.Driver == "postgres" {
		if err := db.Exec(`ALTER TABLE follows REPLICA IDENTITY FULL`).Error; err != nil {
			logger.Fatal().Err(err).Msg("failed to set REPLICA IDENTITY FULL on follows table")
		}
	}

	// 4. Follower-count cache
	var followStore store.FollowStore = store.NoopFollowStore{}
	if cfg.Redis.Address != "" {
		redisStore, err := store.NewRedisFollowStore(ctx, store.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			CountTTL: cfg.Redis.CountTTL,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisStore.Close()
		followStore = redisStore
		logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	} else {
		logger.Warn().Msg("REDIS_ADDRESS not configured; follower counts read from the database")
	}

	// 5. Image storage
	images, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init image storage")
	}

	// 6. Repositories, cache and services
	userRepo := repository.NewGormUserRepository(db)
	postRepo := repository.NewGormPostRepository(db)
	groupRepo := repository.NewGormGroupRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	followRepo := repository.NewGormFollowRepository(db)

	timeline := cache.NewMemoryTimelineCache(postRepo.ListAll, cache.WithTTL(cfg.Feed.TimelineTTL))

	// The consumer is created before the service so the service knows
	// whether CDC keeps the counts in step. Nothing is consumed until Start.
	var socialSvc service.SocialGraphService
	var kafkaConsumer *consumer.ConfluentConsumer
	if cfg.Kafka.Brokers != "" {
		kc, err := consumer.NewConfluentConsumer(
			cfg.Kafka.Brokers,
			cfg.Kafka.Topic,
			cfg.Kafka.GroupID,
			consumer.HandlerFunc(func(ctx context.Context, event *consumer.DebeziumMessage) error {
				return socialSvc.HandleCDCEvent(ctx, event)
			}),
		)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to create kafka consumer, CDC updates disabled")
		} else {
			kafkaConsumer = kc
		}
	} else {
		logger.Warn().Msg("KAFKA_BROKERS not configured; CDC consumer disabled")
	}

	socialSvc = service.NewSocialGraphService(followRepo, userRepo, followStore, kafkaConsumer != nil)
	feedSvc := service.NewFeedService(postRepo, groupRepo, userRepo, socialSvc, timeline)
	postSvc := service.NewPostService(postRepo, commentRepo, groupRepo, images, service.PostOptions{
		MaxImageBytes: cfg.Feed.MaxImageMB << 20,
		ImageURLTTL:   cfg.Feed.ImageURLTTL,
	})
	groupSvc := service.NewGroupService(groupRepo)
	identitySvc := service.NewIdentityService(userRepo)

	// 7. Auth
	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.Issuer)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create token manager")
	}
	authMiddleware := middleware.NewAuthMiddleware(tokens, identitySvc)

	// 8. Start CDC consumer
	if kafkaConsumer != nil {
		if err := kafkaConsumer.Start(ctx); err != nil {
			logger.Fatal().Err(err).Msg("failed to start kafka consumer")
		}
	}

	// 9. Init reconciler and start
	rec := reconciler.New(followStore, followRepo, cfg.Reconciler)
	rec.Start(ctx)
	logger.Info().Dur("interval", cfg.Reconciler.Interval).Int("top_n", cfg.Reconciler.TopN).Msg("reconciler started")

	// 10. Setup Gin router + HTTP server
	var writeLimiter *middleware.IPRateLimiter
	if cfg.RateLimit.RPS > 0 {
		writeLimiter = middleware.NewIPRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	httpHandler := handler.NewHandler(feedSvc, socialSvc, postSvc, groupSvc, authMiddleware, handler.Options{
		PageSize:     cfg.Feed.PageSize,
		WriteLimiter: writeLimiter,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(pkglog.GinMiddleware(logger, pkglog.WithSkipPaths("/health", "/metrics"), pkglog.WithSlowThreshold(time.Second)))
	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))

	r.GET("/health", func(c *gin.Context) {
		pingCtx, pingCancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer pingCancel()
		if err := database.Ping(pingCtx, db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if local, ok := images.(*storage.LocalStorage); ok {
		r.Static(cfg.Storage.Local.URLPrefix, local.BasePath())
	}
	httpHandler.RegisterRoutes(r)

	// 11. Start server goroutine
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logger.Info().Str("addr", addr).Msg(serviceName + " starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("HTTP server error")
		}
	}()

	// 12. Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("shutdown signal received")

	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		cancel()

		if kafkaConsumer != nil {
			if err := kafkaConsumer.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing kafka consumer")
			}
		}

		rec.Stop()
		<-rec.Done()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("HTTP server forced to shutdown")
		}
	}()

	select {
	case <-shutdownDone:
		logger.Info().Msg(serviceName + " stopped")
	case <-time.After(30 * time.Second):
		logger.Warn().Msg("shutdown timed out after 30s")
	}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Location"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}
