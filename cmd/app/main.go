package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"learnplatform/config"
	"learnplatform/internal/application"
	"learnplatform/internal/domain"
	"learnplatform/internal/infrastructure/cache"
	"learnplatform/internal/infrastructure/email"
	"learnplatform/internal/infrastructure/payment"
	"learnplatform/internal/infrastructure/security"
	"learnplatform/internal/middleware"
	"learnplatform/internal/repository"
	handlers "learnplatform/internal/transport/http"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.Course{},
		&domain.Lesson{},
		&domain.Purchase{},
		&domain.LessonProgress{},
	); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	courseRepo := repository.NewCourseRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	progressRepo := repository.NewProgressRepository(db)

	ledger := application.NewPurchaseLedger(purchaseRepo, courseRepo)
	policy := application.NewAccessPolicy(courseRepo, ledger)
	tracker := application.NewProgressTracker(courseRepo, progressRepo)
	catalog := application.NewCatalog(courseRepo, purchaseRepo, progressRepo, tracker, application.NewFlightRegistry())

	checkout := payment.NewClient(cfg.StripeSecretKey)
	events := cache.NewEventCache(rdb)
	sender := email.NewEmailSender(cfg.EmailAPIKey, cfg.EmailFrom, cfg.ContactEmail)
	verifier := security.NewTokenVerifier(cfg.IdentityJWTSecret)
	limiter := middleware.NewRateLimiter(rdb)

	paymentHandler := handlers.NewPaymentHandler(ledger, courseRepo, checkout, events, cfg.StripeWebhookSecret, cfg.FrontendURL)
	courseHandler := handlers.NewCourseHandler(catalog, policy, tracker)
	progressHandler := handlers.NewProgressHandler(tracker, courseRepo, courseHandler)
	contactHandler := handlers.NewContactHandler(sender)

	router := handlers.NewRouter(paymentHandler, courseHandler, progressHandler, contactHandler, limiter, verifier)

	srv := &http.Server{
		Addr:    cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server is running on port %s...", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Forced shutdown: %v", err)
	}
}
