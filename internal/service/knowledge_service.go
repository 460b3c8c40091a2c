package service

import (
	"context"
	"encoding/json"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/constant"
	"healthbridge-be/internal/dto"
	"healthbridge-be/internal/entity"
	"healthbridge-be/internal/pkg/logger"
	"healthbridge-be/internal/repository/unitofwork"
	"healthbridge-be/pkg/embedding"
	"healthbridge-be/pkg/events"
	"healthbridge-be/pkg/ingest"
	"healthbridge-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IKnowledgeService interface {
	// PublishDocuments loads the directory and queues one ingestion
	// message per source document. Returns the number of chunks queued.
	PublishDocuments(ctx context.Context, dir string) (int, error)

	// Consume starts the background worker that embeds and persists
	// queued chunks.
	Consume(ctx context.Context) error

	// RebuildCollection drops the collection and re-ingests the
	// directory synchronously. Returns the number of chunks stored.
	RebuildCollection(ctx context.Context, dir string) (int, error)

	Search(ctx context.Context, query string, k int) ([]dto.KnowledgeSearchResult, error)
	Stats(ctx context.Context) (*dto.KnowledgeStatsResponse, error)
}

type knowledgeService struct {
	pubSub            *gochannel.GoChannel
	topicName         string
	uowFactory        unitofwork.RepositoryFactory
	embeddingProvider embedding.EmbeddingProvider
	loader            *ingest.Loader
	collection        string
	eventPublisher    *nats.Publisher
	logger            logger.ILogger
}

func NewKnowledgeService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	loader *ingest.Loader,
	collection string,
	eventPublisher *nats.Publisher,
	log logger.ILogger,
) IKnowledgeService {
	return &knowledgeService{
		pubSub:            pubSub,
		topicName:         topicName,
		uowFactory:        uowFactory,
		embeddingProvider: embeddingProvider,
		loader:            loader,
		collection:        collection,
		eventPublisher:    eventPublisher,
		logger:            log,
	}
}

func (ks *knowledgeService) PublishDocuments(ctx context.Context, dir string) (int, error) {
	chunks, err := ks.loader.LoadDir(ctx, dir)
	if err != nil {
		return 0, apperror.Validation("failed to load documents: " + err.Error())
	}

	// Group chunks per source document so one message is one file.
	batches := groupBySource(ks.collection, chunks)

	total := 0
	for _, batch := range batches {
		payload, err := json.Marshal(batch)
		if err != nil {
			return total, apperror.Storage("failed to marshal ingest batch", err)
		}
		if err := ks.pubSub.Publish(ks.topicName, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
			return total, apperror.Storage("failed to queue ingest batch", err)
		}
		total += len(batch.Chunks)
	}

	ks.logger.Info("knowledge", "documents queued for ingestion", map[string]interface{}{
		"dir":     dir,
		"batches": len(batches),
		"chunks":  total,
	})
	return total, nil
}

func (ks *knowledgeService) Consume(ctx context.Context) error {
	messages, err := ks.pubSub.Subscribe(ctx, ks.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			ks.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (ks *knowledgeService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestBatchMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		ks.logger.Error("knowledge", "invalid ingest message", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // malformed messages never become valid, do not retry
		return
	}

	if _, err := ks.storeChunks(ctx, payload.Collection, payload.Chunks); err != nil {
		ks.logger.Error("knowledge", "ingest batch failed", map[string]interface{}{
			"source": payload.Source,
			"error":  err.Error(),
		})
		msg.Nack()
		return
	}

	ks.logger.Info("knowledge", "ingest batch stored", map[string]interface{}{
		"source": payload.Source,
		"chunks": len(payload.Chunks),
	})
	msg.Ack()
}

func (ks *knowledgeService) storeChunks(ctx context.Context, collection string, chunks []dto.IngestChunk) (int, error) {
	if len(chunks) == 0 {
		return 0, nil
	}

	entities := make([]*entity.DocumentChunk, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := ks.embeddingProvider.Generate(ctx, chunk.Text, constant.TaskRetrievalDocument)
		if err != nil {
			return 0, apperror.UpstreamModel("document embedding failed", err)
		}
		entities = append(entities, &entity.DocumentChunk{
			Collection: collection,
			Document:   chunk.Text,
			Metadata:   chunk.Metadata,
			Embedding:  vector,
			ChunkIndex: chunk.Index,
		})
	}

	uow := ks.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentChunkRepository().CreateBulk(ctx, entities); err != nil {
		return 0, apperror.Storage("failed to store chunks", err)
	}
	return len(entities), nil
}

func (ks *knowledgeService) RebuildCollection(ctx context.Context, dir string) (int, error) {
	chunks, err := ks.loader.LoadDir(ctx, dir)
	if err != nil {
		return 0, apperror.Validation("failed to load documents: " + err.Error())
	}

	uow := ks.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentChunkRepository().DeleteByCollection(ctx, ks.collection); err != nil {
		return 0, apperror.Storage("failed to clear collection", err)
	}

	total := 0
	for _, batch := range groupBySource(ks.collection, chunks) {
		stored, err := ks.storeChunks(ctx, batch.Collection, batch.Chunks)
		if err != nil {
			return total, err
		}
		total += stored
	}

	if ks.eventPublisher != nil {
		if err := ks.eventPublisher.Publish(ctx, events.NewIndexRebuilt(ks.collection, total)); err != nil {
			ks.logger.Warn("knowledge", "failed to publish rebuild event", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	ks.logger.Info("knowledge", "collection rebuilt", map[string]interface{}{
		"collection": ks.collection,
		"chunks":     total,
	})
	return total, nil
}

func (ks *knowledgeService) Search(ctx context.Context, query string, k int) ([]dto.KnowledgeSearchResult, error) {
	if k <= 0 {
		k = constant.SearchTopK
	}

	uow := ks.uowFactory.NewUnitOfWork(ctx)
	repo := uow.DocumentChunkRepository()

	count, err := repo.CountByCollection(ctx, ks.collection)
	if err != nil {
		return nil, apperror.Storage("failed to check knowledge index", err)
	}
	if count == 0 {
		return nil, apperror.Storage("knowledge index is empty, run ingestion first", nil)
	}

	vector, err := ks.embeddingProvider.Generate(ctx, query, constant.TaskRetrievalQuery)
	if err != nil {
		return nil, apperror.UpstreamModel("query embedding failed", err)
	}

	results, err := repo.SearchSimilar(ctx, ks.collection, vector, k)
	if err != nil {
		return nil, apperror.Storage("similarity search failed", err)
	}

	out := make([]dto.KnowledgeSearchResult, len(results))
	for i, chunk := range results {
		out[i] = dto.KnowledgeSearchResult{
			Document:   chunk.Document,
			Metadata:   chunk.Metadata,
			ChunkIndex: chunk.ChunkIndex,
		}
	}
	return out, nil
}

func (ks *knowledgeService) Stats(ctx context.Context) (*dto.KnowledgeStatsResponse, error) {
	uow := ks.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.DocumentChunkRepository().CountByCollection(ctx, ks.collection)
	if err != nil {
		return nil, apperror.Storage("failed to count chunks", err)
	}

	return &dto.KnowledgeStatsResponse{
		Collection:  ks.collection,
		Chunks:      count,
		IndexExists: count > 0,
	}, nil
}

func groupBySource(collection string, chunks []ingest.Chunk) []dto.IngestBatchMessage {
	order := make([]string, 0)
	bySource := make(map[string][]dto.IngestChunk)
	for _, chunk := range chunks {
		source, _ := chunk.Metadata["source"].(string)
		if _, seen := bySource[source]; !seen {
			order = append(order, source)
		}
		bySource[source] = append(bySource[source], dto.IngestChunk{
			Text:     chunk.Text,
			Metadata: chunk.Metadata,
			Index:    chunk.Index,
		})
	}

	batches := make([]dto.IngestBatchMessage, 0, len(order))
	for _, source := range order {
		batches = append(batches, dto.IngestBatchMessage{
			Collection: collection,
			Source:     source,
			Chunks:     bySource[source],
		})
	}
	return batches
}
