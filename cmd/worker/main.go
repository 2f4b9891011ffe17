package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/janseva/constituency-admin/internal/config"
	"github.com/janseva/constituency-admin/internal/database"
	"github.com/janseva/constituency-admin/internal/logging"
	"github.com/janseva/constituency-admin/internal/queue"
	"github.com/janseva/constituency-admin/internal/sidebar"
	"github.com/redis/go-redis/v9"
)

// Standalone sidebar projection worker, for deployments that run the API
// with SERVER_EMBEDDED_WORKER=false.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := logging.Init(&cfg.Logging); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, &cfg.Mongo)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close(context.Background())

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	svc := sidebar.NewService(db.Roles(), db.SidebarAccess(), sidebar.NewRedisCache(redisClient, cfg.Sidebar.CacheTTL))

	worker, err := queue.NewWorker(&cfg.Redis, svc, cfg.Sidebar.RebuildSchedule)
	if err != nil {
		log.Fatalf("Failed to create worker: %v", err)
	}

	log.Println("Starting queue worker...")
	if err := worker.Start(); err != nil {
		log.Fatalf("Worker failed to start: %v", err)
	}

	<-ctx.Done()
	log.Println("Stopping queue worker...")
	worker.Close()
}
