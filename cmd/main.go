package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sokoni-market/checkout-service-go/internal/cart"
	"github.com/sokoni-market/checkout-service-go/internal/chat"
	"github.com/sokoni-market/checkout-service-go/internal/checkout"
	"github.com/sokoni-market/checkout-service-go/internal/config"
	"github.com/sokoni-market/checkout-service-go/internal/db"
	"github.com/sokoni-market/checkout-service-go/internal/events"
	httpserver "github.com/sokoni-market/checkout-service-go/internal/http"
	"github.com/sokoni-market/checkout-service-go/internal/mpesa"
	"github.com/sokoni-market/checkout-service-go/internal/order"
	"github.com/sokoni-market/checkout-service-go/internal/sequence"
	"github.com/sokoni-market/checkout-service-go/internal/shipping"
)

func main() {
	cfg := config.Load()

	logger := log.New(os.Stdout, "[checkout-service] ", log.LstdFlags|log.Lshortfile)

	// DB
	if err := db.RunMigrations(cfg.DatabaseDSN, logger); err != nil {
		logger.Fatalf("migrations: %v", err)
	}
	database := db.MustOpen(cfg.DatabaseDSN)
	orderRepo := order.NewRepository(database)
	cartStore := cart.NewStore(database)

	// Redis (shipping prefill)
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	prefill := shipping.NewCache(redisClient, cfg.PrefillTTL)

	// RabbitMQ
	rabbitConn := events.MustDialRabbit(cfg.RabbitURL)
	defer rabbitConn.Close()

	publisher, err := events.NewPublisher(rabbitConn, sequence.NewRepository(database))
	if err != nil {
		logger.Fatalf("create publisher: %v", err)
	}
	defer publisher.Close()

	// Payment gateway
	gateway := mpesa.NewClient(cfg.MpesaBaseURL, cfg.GatewayTimeout)
	newPoller := func() checkout.StatusPoller {
		return mpesa.NewPoller(gateway, cfg.PollInterval, cfg.PollMaxAttempts, logger)
	}

	svc := checkout.NewService(
		cartStore,
		orderRepo,
		gateway,
		newPoller,
		publisher,
		chat.NewHandoff(cfg.WhatsAppNumber),
		logger,
	)
	defer svc.Close()

	// HTTP
	router := httpserver.NewRouter(svc, orderRepo, cartStore, prefill)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("checkout-service listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
