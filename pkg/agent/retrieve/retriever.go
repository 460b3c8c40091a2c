package retrieve

import (
	"context"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/constant"
	"healthbridge-be/internal/repository/contract"
	"healthbridge-be/pkg/embedding"
)

// Retriever answers a query with the k nearest chunks of a collection.
type Retriever struct {
	embedder   embedding.EmbeddingProvider
	chunks     contract.DocumentChunkRepository
	collection string
}

func NewRetriever(embedder embedding.EmbeddingProvider, chunks contract.DocumentChunkRepository, collection string) *Retriever {
	return &Retriever{
		embedder:   embedder,
		chunks:     chunks,
		collection: collection,
	}
}

// Retrieve embeds the query and returns the text of the k nearest chunks.
// An empty collection is a hard failure: answering without the knowledge
// base when the query was classified as needing it would be misleading.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	count, err := r.chunks.CountByCollection(ctx, r.collection)
	if err != nil {
		return nil, apperror.Storage("failed to check knowledge index", err)
	}
	if count == 0 {
		return nil, apperror.Storage("knowledge index is empty, run ingestion first", nil)
	}

	vector, err := r.embedder.Generate(ctx, query, constant.TaskRetrievalQuery)
	if err != nil {
		return nil, apperror.UpstreamModel("query embedding failed", err)
	}

	results, err := r.chunks.SearchSimilar(ctx, r.collection, vector, k)
	if err != nil {
		return nil, apperror.Storage("similarity search failed", err)
	}

	docs := make([]string, len(results))
	for i, chunk := range results {
		docs[i] = chunk.Document
	}
	return docs, nil
}
