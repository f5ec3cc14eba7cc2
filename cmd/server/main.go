package main

import (
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/dftlabs-home/oyoagro-api/internal/cache"
	"github.com/dftlabs-home/oyoagro-api/internal/config"
	"github.com/dftlabs-home/oyoagro-api/internal/controllers"
	"github.com/dftlabs-home/oyoagro-api/internal/database"
	"github.com/dftlabs-home/oyoagro-api/internal/email"
	"github.com/dftlabs-home/oyoagro-api/internal/middleware"
	"github.com/dftlabs-home/oyoagro-api/internal/repositories"
	"github.com/dftlabs-home/oyoagro-api/internal/routes"
	"github.com/dftlabs-home/oyoagro-api/internal/security"
	"github.com/dftlabs-home/oyoagro-api/internal/services"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := buildLogger(&cfg.Logging)

	db, err := database.Connect(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}()

	if err := database.RunMigrations(&cfg.Database); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	clock := security.NewSystemClock()
	randSource := security.NewCryptoRandomSource()
	mailer := email.NewMailer(&cfg.Email, logger)

	userRepo := repositories.NewUserRepository(db)
	resetTokenRepo := repositories.NewResetTokenRepository(db)

	tokenService, err := services.NewTokenService(&cfg.JWT, clock)
	if err != nil {
		log.Fatalf("failed to initialize token service: %v", err)
	}

	authService := services.NewAuthService(
		userRepo, tokenService, mailer, clock, logger, cfg.Auth.LockoutThreshold,
	)
	if cfg.Redis.Enabled {
		sessionCache := cache.NewRedisSessionCache(&cfg.Redis)
		defer sessionCache.Close()
		authService.WithSessionCache(sessionCache)
		logger.Info("redis session cache enabled", "addr", cfg.Redis.GetAddr())
	}

	resetService := services.NewPasswordResetService(
		resetTokenRepo, userRepo, randSource, clock, mailer, logger,
		cfg.Auth.GetResetTokenExpiry(),
	)
	userService := services.NewUserService(userRepo, randSource, clock, mailer, logger)

	authController := controllers.NewAuthController(authService, resetService)
	userController := controllers.NewUserController(userService)

	gin.SetMode(cfg.Server.Mode)
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	authMiddleware := middleware.AuthMiddleware(authService)
	optionalAuthMiddleware := middleware.OptionalAuthMiddleware(authService)
	routes.SetupRoutes(router, authController, userController, authMiddleware, optionalAuthMiddleware)

	addr := cfg.Server.Host + ":" + strconv.Itoa(cfg.Server.Port)
	go func() {
		logger.Info("server running", "addr", addr)
		if err := router.Run(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("failed to run server: %v", err)
		}
	}()

	waitForShutdown(logger)
}

func buildLogger(cfg *config.LoggingConfig) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}
	return slog.New(handler)
}

func waitForShutdown(logger *slog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	logger.Info("shutting down server")
}
