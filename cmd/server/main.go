package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/dropfour/server/internal/analytics"
	"github.com/dropfour/server/internal/config"
	"github.com/dropfour/server/internal/jobs"
	"github.com/dropfour/server/internal/repository/postgres"
	"github.com/dropfour/server/internal/repository/redis"
	"github.com/dropfour/server/internal/service/game"
	"github.com/dropfour/server/internal/service/matchmaking"
	"github.com/dropfour/server/internal/transport/httpapi"
	"github.com/dropfour/server/internal/transport/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	cfg := config.LoadConfig()

	// Persistence is optional; the game server keeps running without it
	// and simply skips saving finished games.
	var db *sql.DB
	var gameRepo *postgres.GameRepo
	if cfg.DatabaseURL != "" {
		var err error
		db, err = postgres.Connect(cfg.DatabaseURL, cfg.DBMaxOpenConns, cfg.DBMaxIdleConns, cfg.DBConnMaxLifetimeMin)
		if err != nil {
			log.Printf("[DB] Warning: %v. Running without persistence.", err)
		} else {
			defer db.Close()
			if err := postgres.RunMigrations(db); err != nil {
				log.Fatalf("[DB] Migration failed: %v", err)
			}
			log.Println("[DB] Connected and migrated")
			gameRepo = postgres.NewGameRepo(db)
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, running without persistence")
	}

	var cache *redis.Cache
	if cfg.RedisAddr != "" {
		cache = redis.New(cfg.RedisAddr, cfg.RedisPassword)
		defer cache.Close()
	}

	producer := analytics.NewProducer(cfg.KafkaBroker, cfg.KafkaTopic)
	defer producer.Close()

	var repo game.Repository
	if gameRepo != nil {
		repo = gameRepo
	}
	var gameCache game.Cache
	if cache != nil {
		gameCache = cache
	}

	gameService := game.NewService(repo, gameCache, producer, cfg.BotMoveDelay)
	queue := matchmaking.NewQueue(gameService, cfg.MatchmakingTimeout)

	hub := ws.NewHub()
	wsHandler := ws.NewHandler(hub, gameService, queue, producer)

	cleanup := jobs.NewCleanupWorker(gameService, cfg.CleanupInterval, cfg.FinishedGameTTL, cfg.AbandonedGameTTL)
	cleanup.Start()
	defer cleanup.Stop()

	var leaderboardRepo httpapi.LeaderboardRepository
	if gameRepo != nil {
		leaderboardRepo = gameRepo
	}
	var leaderboardCache httpapi.LeaderboardCache
	if cache != nil {
		leaderboardCache = cache
	}
	leaderboard := httpapi.NewLeaderboardHandler(leaderboardRepo, leaderboardCache)

	router := httpapi.NewRouter(cfg.AllowedOrigins, db, leaderboard, hub, wsHandler)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
