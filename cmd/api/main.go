package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tastebook/backend/config"
	"github.com/tastebook/backend/internal/database"
	"github.com/tastebook/backend/internal/middleware"
	"github.com/tastebook/backend/internal/server"
	"github.com/tastebook/backend/internal/service"
	"github.com/tastebook/backend/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	s3Cfg, err := config.NewS3Config(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to initialize object store client: %v", err)
	}

	var limiter *middleware.RateLimiter
	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Printf("Redis unavailable, rate limiting disabled: %v", err)
	} else {
		limiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
			Window:    time.Minute,
			Limit:     30,
			KeyPrefix: "ratelimit:recipes",
		})
	}

	recipeStore := store.NewRecipeStore(db)
	media := service.NewMediaService()
	objects := service.NewS3Store(s3Cfg)

	recipes := service.NewRecipeService(recipeStore, media, objects)
	queries := service.NewQueryService(db)
	auth := service.NewAuthService(cfg.JWTSecret)

	srv := server.NewServer(recipes, queries, auth, limiter, nil)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on port %s", cfg.ServerPort)
		errChan <- srv.Start(cfg.ServerPort)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
