package contract

import (
	"context"

	"healthbridge-be/internal/entity"
	"healthbridge-be/internal/repository/specification"
)

type DocumentChunkRepository interface {
	CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error
	DeleteByCollection(ctx context.Context, collection string) error
	CountByCollection(ctx context.Context, collection string) (int64, error)
	// SearchSimilar returns the k chunks of a collection nearest to the
	// query embedding by cosine distance.
	SearchSimilar(ctx context.Context, collection string, embedding []float32, k int) ([]*entity.DocumentChunk, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
}
