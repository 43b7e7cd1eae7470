package main

import (
	"context"
	"log"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/intellijobs/api/internal/client"
	"github.com/intellijobs/api/internal/config"
	"github.com/intellijobs/api/internal/database"
	"github.com/intellijobs/api/internal/repository"
	"github.com/intellijobs/api/internal/service"
	ws "github.com/intellijobs/api/internal/websocket"
	"github.com/intellijobs/api/internal/worker"
)

// The standalone worker consumes the resume queue. Push events reach the
// API process through Redis pub/sub.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to Postgres: %v", err)
	}
	defer pool.Close()

	asynqClient := asynq.NewClient(worker.RedisOpt(cfg))
	defer asynqClient.Close()

	embedder, err := client.NewEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedder: %v", err)
	}

	store, err := client.NewFileStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create file store: %v", err)
	}

	taskService := service.NewTaskService(redisClient, asynqClient, nil)
	parserService := service.NewParserService(client.NewGroqClient(&cfg.Groq))
	resumeWorker := worker.NewResumeWorker(
		taskService,
		store,
		repository.NewUserRepository(pool),
		parserService,
		embedder,
		ws.NewPublisher(redisClient),
	)

	mux := asynq.NewServeMux()
	resumeWorker.Register(mux)

	log.Printf("Worker consuming queue %q with concurrency %d", service.QueueResume, cfg.Worker.Concurrency)
	// Run blocks until SIGTERM/SIGINT and then drains in-flight tasks.
	if err := worker.NewServer(cfg).Run(mux); err != nil {
		log.Fatalf("Asynq worker error: %v", err)
	}
}
