package retrieve

import (
	"context"
	"testing"

	"healthbridge-be/internal/apperror"
	"healthbridge-be/internal/entity"
	"healthbridge-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector []float32
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) ([]float32, error) {
	return f.vector, nil
}

type fakeChunkRepo struct {
	count   int64
	results []*entity.DocumentChunk
	lastK   int
}

func (f *fakeChunkRepo) CreateBulk(ctx context.Context, chunks []*entity.DocumentChunk) error {
	return nil
}

func (f *fakeChunkRepo) DeleteByCollection(ctx context.Context, collection string) error {
	return nil
}

func (f *fakeChunkRepo) CountByCollection(ctx context.Context, collection string) (int64, error) {
	return f.count, nil
}

func (f *fakeChunkRepo) SearchSimilar(ctx context.Context, collection string, embedding []float32, k int) ([]*entity.DocumentChunk, error) {
	f.lastK = k
	if len(f.results) > k {
		return f.results[:k], nil
	}
	return f.results, nil
}

func (f *fakeChunkRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error) {
	return f.results, nil
}

func TestRetrieveEmptyCollection(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeChunkRepo{count: 0}, "health_documents")

	_, err := r.Retrieve(context.Background(), "schemes in kerala", 5)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindStorage))
}

func TestRetrieveReturnsDocumentText(t *testing.T) {
	repo := &fakeChunkRepo{
		count: 3,
		results: []*entity.DocumentChunk{
			{Document: "first chunk"},
			{Document: "second chunk"},
		},
	}
	r := NewRetriever(&fakeEmbedder{vector: []float32{0.1, 0.2}}, repo, "health_documents")

	docs, err := r.Retrieve(context.Background(), "schemes", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"first chunk", "second chunk"}, docs)
	assert.Equal(t, 5, repo.lastK)
}
