package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"estatehub/backend/internal/api/handler"
	"estatehub/backend/internal/chathub"
	"estatehub/backend/internal/complaint"
	"estatehub/backend/internal/config"
	"estatehub/backend/internal/localization"
	"estatehub/backend/internal/reservation"
	"estatehub/backend/internal/storage"
	"estatehub/backend/internal/telegram"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const defaultJWTSecret = "dev-jwt-secret-not-for-production"

func setupDependencies(cfg *config.Config) (*gorm.DB, *redis.Client) {
	// 1. PostgreSQL
	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect PostgreSQL: %v", err)
	}

	// 2. Redis (optional: without it chat is delivered on this instance only)
	if cfg.RedisAddr == "" {
		log.Println("WARNING: REDIS_ADDR is empty, running without Redis.")
		return db, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	// Перевірка з'єднання Redis
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect Redis: %v", err)
	}

	log.Println("Database and Redis connections established.")
	return db, rdb
}

func main() {
	log.Println("Starting EstateHub Backend...")

	cfg := config.Load()
	if cfg.IsProduction() {
		if cfg.JWTSecret == defaultJWTSecret {
			log.Fatal("JWT_SECRET must be set in production")
		}
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Ініціалізація залежностей
	db, rdb := setupDependencies(cfg)
	s := storage.NewStorageService(db, rdb)
	if err := s.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	localizer, err := localization.NewLocalizer()
	if err != nil {
		log.Fatalf("Failed to load translations: %v", err)
	}
	tokens := handler.NewTokens(cfg.JWTSecret)

	// 2. Telegram notifications
	var notifier telegram.Notifier = telegram.NopNotifier{}
	botName := ""
	if cfg.TelegramToken != "" {
		botService, err := telegram.NewBotService(cfg.TelegramToken, s, tokens.VerifyTelegramLink)
		if err != nil {
			log.Fatalf("Failed to start Telegram bot: %v", err)
		}
		notifier = telegram.NewBotNotifier(botService.Sender)
		botName = botService.BotAPI.Self.UserName
		go botService.Run(ctx)
	} else {
		log.Println("WARNING: TELEGRAM_BOT_TOKEN is not set, notifications are disabled.")
	}

	// 3. Chat Hub та сервіси
	hub := chathub.NewManagerService(s)
	go hub.Run(ctx) // Головний диспетчер

	reservations := reservation.NewService(s, notifier, localizer)
	complaints := complaint.NewService(s, notifier, localizer)

	// 4. Налаштування Gin та роутингу
	r := gin.Default()
	h := handler.NewHandler(s, hub, reservations, complaints, localizer, tokens, handler.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		TelegramBot:    botName,
	})
	h.Register(r)

	server := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("INFO: Listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: HTTP shutdown: %v", err)
	}
	<-hub.Done()
	if rdb != nil {
		rdb.Close()
	}
}
