package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"family-ops/internal/app"
	"family-ops/internal/config"
	"family-ops/internal/telegram"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to wire application: %v", err)
	}
	defer a.Close()

	mux := http.NewServeMux()
	a.Server().Routes(mux)

	if cfg.HasTelegram() {
		bot, err := telegram.NewBot(cfg, a.Plans, a.Suggester, a.Clipper, a.MetricsStore)
		if err != nil {
			log.Fatalf("Failed to initialize Telegram bot: %v", err)
		}
		bot.RegisterHandlers(mux)
		go bot.WatchChanges(ctx, a.Broadcaster)
	} else {
		log.Println("Telegram not configured, webhook disabled")
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: mux,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	cancel()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
