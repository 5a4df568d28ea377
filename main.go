package main

import (
	"Homemade/middleware"
	"Homemade/pkg/cache"
	"Homemade/pkg/config"
	"Homemade/pkg/database"
	"Homemade/pkg/logger"
	"Homemade/pkg/messaging"
	"Homemade/pkg/services"
	"Homemade/routes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "server terminated with error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := logger.New(config.LogLevel, config.LogJSON)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("config loaded",
		zap.String("app_env", config.AppEnv),
		zap.String("db_driver", config.DBDriver),
		zap.Bool("gemini_key_present", config.GeminiAPIKey != ""),
		zap.Int("rate_limit_window_s", config.RateLimitWindowSeconds),
		zap.Int("rate_limit_capacity", config.RateLimitCapacity),
		zap.Int("chat_cache_ttl_s", config.ChatCacheTTLSeconds),
		zap.Bool("allow_self_messages", config.AllowSelfMessages))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(config.DBDriver, config.DBDSN, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("closing database", zap.Error(err))
		}
	}()

	chatCache := cache.New(config.ChatCacheMaxItems)
	go chatCache.RunJanitor(ctx, time.Minute)

	store := messaging.NewCachedStore(
		messaging.NewStore(db, log),
		chatCache,
		time.Duration(config.ChatCacheTTLSeconds)*time.Second,
	)
	msgSvc := messaging.NewService(store, log, messaging.WithSelfMessages(config.AllowSelfMessages))

	rec, err := services.NewGeminiService(ctx, config.GeminiAPIKey, config.GeminiModel, log)
	if err != nil {
		return err
	}

	if config.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log.Named("http")))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     config.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, routes.Deps{
		DB:          db,
		Messaging:   msgSvc,
		Recommender: rec,
		SendLimiter: middleware.NewRateLimiter(
			time.Duration(config.RateLimitWindowSeconds)*time.Second, config.RateLimitCapacity),
	})

	srv := &http.Server{
		Addr:              ":" + config.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return serve(ctx, srv, log)
}

// serve runs srv until ctx is cancelled or the listener fails, then shuts it
// down gracefully.
func serve(ctx context.Context, srv *http.Server, log *zap.Logger) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
