package main

import (
	"context"
	"flag"
	"log"

	"healthbridge-be/internal/bootstrap"
	"healthbridge-be/internal/config"
)

// Standalone ingestion: rebuilds the knowledge collection from a
// directory of documents and exits. The same code path the REST binary
// runs when REBUILD_INDEX=true, usable from cron or CI.
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	dir := flag.String("dir", cfg.Knowledge.DocumentDir, "directory of documents to ingest")
	flag.Parse()

	container, err := bootstrap.NewContainer(cfg)
	if err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}
	defer container.Logger.Sync()
	if container.NatsPublisher != nil {
		defer container.NatsPublisher.Close()
	}

	chunks, err := container.KnowledgeService.RebuildCollection(context.Background(), *dir)
	if err != nil {
		log.Fatalf("ingestion failed: %v", err)
	}

	log.Printf("ingestion complete: %d chunks stored in collection %q", chunks, cfg.Knowledge.Collection)
}
