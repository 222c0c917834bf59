package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sanketnaik99/trivia-sub000/internal/auth"
	"github.com/sanketnaik99/trivia-sub000/internal/config"
	"github.com/sanketnaik99/trivia-sub000/internal/game"
	"github.com/sanketnaik99/trivia-sub000/internal/server"
	"github.com/sanketnaik99/trivia-sub000/internal/store"
)

func main() {
	cfg := config.Load()

	if cfg.DatabaseURL == "" {
		log.Fatal("[main] DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("[main] JWT_SECRET is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	st, err := store.NewPostgresStore(ctx, cfg.DatabaseURL)
	if err != nil {
		cancel()
		log.Fatalf("[main] failed to connect to database: %v", err)
	}
	defer st.Close()

	bank, err := game.LoadQuestionBank(ctx, st)
	cancel()
	if err != nil {
		log.Fatalf("[main] failed to load question bank: %v", err)
	}

	hub := game.NewHub(cfg, st, bank, auth.NewJWTVerifier(cfg.JWTSecret))
	srv := server.NewServer(cfg, hub)

	go func() {
		log.Printf("[main] listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[main] server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("[main] shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] shutdown error: %v", err)
	}
}
