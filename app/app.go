package app

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"dishguru-api/config"
	"dishguru-api/db"
	"dishguru-api/handler"
	"dishguru-api/llm"
	"dishguru-api/logger"
	"dishguru-api/repository"
	"dishguru-api/router"
	"dishguru-api/service"

	"github.com/redis/go-redis/v9"
)

const limiterIdle = 10 * time.Minute

// Container owns the process-wide resources and the assembled router.
type Container struct {
	Config  *config.Config
	DB      *sql.DB
	Redis   *redis.Client
	Router  http.Handler
	Limiter *handler.RateLimiter
}

// New wires repositories, services and handlers over already-open
// connections. rdb may be nil, in which case recipe reads are not cached.
func New(cfg *config.Config, database *sql.DB, rdb *redis.Client) *Container {
	userRepo := repository.NewUserRepository(database)
	tokenRepo := repository.NewTokenRepository(database)
	recipeRepo := repository.NewRecipeRepository(database)

	var cacheClient service.ICacheClient
	if rdb != nil {
		cacheClient = rdb
	}
	cache := service.NewRecipeCache(cacheClient, cfg.Redis.CacheTTL)

	hasher := service.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := service.NewTokenManager(service.TokenConfig{
		AccessSecret:  cfg.JWT.AccessSecret,
		RefreshSecret: cfg.JWT.RefreshSecret,
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
	})
	generator := llm.NewClient(llm.Config{
		BaseURL:   cfg.LLM.BaseURL,
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		Timeout:   cfg.LLM.Timeout,
	})

	authService := service.NewAuthService(userRepo, tokenRepo, tokens, hasher)
	userService := service.NewUserService(userRepo, recipeRepo, hasher)
	recipeService := service.NewRecipeService(recipeRepo, cache, generator)
	ratingService := service.NewRatingService(database, recipeRepo, cache)

	limiter := handler.NewRateLimiter(cfg.Auth.RateLimit, cfg.Auth.RateBurst)
	if err := limiter.TrustProxies(cfg.Auth.TrustedProxies...); err != nil {
		logger.Log.WithError(err).Error("Ignoring trusted proxies, keying rate limits on the peer address")
	}
	cookies := handler.CookieConfig{Secure: cfg.Cookie.Secure, MaxAge: cfg.Cookie.MaxAge}

	r := router.NewRouter(router.Handlers{
		Auth:    handler.NewAuthHandler(authService, userService, cookies),
		User:    handler.NewUserHandler(userService),
		Recipe:  handler.NewRecipeHandler(recipeService, ratingService),
		Guard:   handler.NewAuthMiddleware(authService),
		Limiter: limiter,
	})

	return &Container{Config: cfg, DB: database, Redis: rdb, Router: r, Limiter: limiter}
}

func (c *Container) Close() {
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			logger.Log.WithError(err).Warn("Error closing Redis client")
		}
	}
	if err := c.DB.Close(); err != nil {
		logger.Log.WithError(err).Warn("Error closing database")
	}
}

// sweepLimiter drops idle rate-limiter entries until ctx is done.
func (c *Container) sweepLimiter(ctx context.Context) {
	ticker := time.NewTicker(limiterIdle)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := c.Limiter.Sweep(limiterIdle); n > 0 {
				logger.Log.WithField("dropped", n).Debug("Swept idle rate-limiter entries")
			}
		}
	}
}

func Run() {
	cfg := config.LoadConfig(".")
	logger.SetLevel(cfg.Log.Level)
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect(cfg.Database)
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	if err := db.Migrate(cfg.Database.DSN(), cfg.Database.MigrationsPath); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	rdb, err := db.ConnectRedis(cfg.Redis)
	if err != nil {
		logger.Log.WithError(err).Warn("Redis unavailable, continuing without recipe cache")
		rdb = nil
	}

	container := New(cfg, database, rdb)
	defer container.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go container.sweepLimiter(ctx)

	port := cfg.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      container.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
