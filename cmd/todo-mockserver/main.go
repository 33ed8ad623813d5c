package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/idilsaglam/tada-remote/internal/config"
	"github.com/idilsaglam/tada-remote/internal/mockstore"
)

func main() {
	cfg, err := config.LoadMock()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	seed := mockstore.DemoSeed()
	if cfg.SeedFile != "" {
		if seed, err = mockstore.LoadSeed(cfg.SeedFile); err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Printf("seeded %d users and %d todos from %s", len(seed.Users), len(seed.Todos), cfg.SeedFile)
	} else {
		log.Printf("no MOCK_SEED_FILE set, using demo data (bob/x, alice/wonderland)")
	}

	store, err := mockstore.New(seed, 0)
	if err != nil {
		log.Fatalf("store init: %v", err)
	}

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      mockstore.NewRouter(store),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("mock store listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
