package main

import (
	"context"
	"log"

	"healthbridge-be/internal/bootstrap"
	"healthbridge-be/internal/config"
	"healthbridge-be/internal/server"
	"healthbridge-be/internal/tracer"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer container.Logger.Sync()
	defer container.RelayLogger.Sync()
	if container.NatsPublisher != nil {
		defer container.NatsPublisher.Close()
	}

	ctx := context.Background()

	if cfg.Knowledge.RebuildIndex {
		chunks, err := container.KnowledgeService.RebuildCollection(ctx, cfg.Knowledge.DocumentDir)
		if err != nil {
			log.Fatalf("index rebuild failed: %v", err)
		}
		log.Printf("knowledge index rebuilt: %d chunks", chunks)
	}

	// Background ingestion consumer for documents queued at runtime.
	if err := container.KnowledgeService.Consume(ctx); err != nil {
		log.Fatalf("failed to start ingestion consumer: %v", err)
	}

	go container.Hub.Run()

	srv := server.New(cfg, container)
	if err := srv.Run(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
