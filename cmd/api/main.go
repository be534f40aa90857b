package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"rentaloc/internal/config"
	"rentaloc/internal/db"
	"rentaloc/internal/email"
	apihttp "rentaloc/internal/http"
	"rentaloc/internal/repository"
	"rentaloc/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	if err := godotenv.Load(); err != nil {
		log.Printf("warning: loading .env: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer pool.Close()

	userRepo := repository.NewPgUserRepository(pool)
	pendingRepo := repository.NewPgPendingRepository(pool)
	propertyRepo := repository.NewPgPropertyRepository(pool)
	categoryRepo := repository.NewPgCategoryRepository(pool)
	reviewRepo := repository.NewPgReviewRepository(pool)
	contactRepo := repository.NewPgContactRepository(pool)

	emailSender := email.NewDisabledSender("email sender not configured")
	if cfg.SMTPHost != "" {
		sender, err := email.NewGomailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom, cfg.SMTPFromName)
		if err != nil {
			logger.Warn("smtp sender init failed", zap.Error(err))
		} else {
			emailSender = sender
		}
	}
	mailer := email.NewDispatcher(logger, emailSender, 0)
	defer mailer.Close()

	signupLimiter := service.NewMemoryRateLimiter(10*time.Minute, 5)
	var tokenStore service.RefreshTokenStore = service.NewMemoryRefreshTokenStore()
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctxPing, cancel := context.WithTimeout(ctx, 2*time.Second)
		if err := redisClient.Ping(ctxPing).Err(); err != nil {
			logger.Warn("redis ping failed", zap.Error(err))
		} else {
			signupLimiter = service.NewRedisRateLimiter(redisClient, 10*time.Minute, 5)
			tokenStore = service.NewRedisRefreshTokenStore(redisClient)
		}
		cancel()
	}

	jwtServ := service.NewJWTServiceWithStore(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLMinutes)*time.Minute,
		tokenStore,
	)
	if cfg.JWTSecret == "" {
		logger.Warn("jwt secret not configured")
	}

	hasher := service.NewBcryptHasher()
	signupServ := service.NewSignupService(logger, userRepo, pendingRepo, mailer, hasher, signupLimiter)
	accountServ := service.NewAccountService(logger, userRepo, hasher)
	propServ := service.NewPropertyService(logger, propertyRepo, categoryRepo)
	reviewServ := service.NewReviewService(logger, reviewRepo, propertyRepo)
	contactServ := service.NewContactService(logger, contactRepo, mailer, cfg.ContactEmail)

	authHandler := apihttp.NewAuthHandler(logger, signupServ, accountServ, jwtServ)
	propHandler := apihttp.NewPropertyHandler(logger, propServ, cfg.MediaRoot)
	reviewHandler := apihttp.NewReviewHandler(logger, reviewServ)
	contactHandler := apihttp.NewContactHandler(logger, contactServ)
	adminHandler := apihttp.NewAdminHandler(logger, accountServ)

	router := apihttp.NewRouter(logger, jwtServ, authHandler, propHandler, reviewHandler, contactHandler, adminHandler)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("starting server", zap.String("port", cfg.HTTPPort))

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
}
